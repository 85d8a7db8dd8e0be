package service

import (
	"context"

	"safereturn/internal/followup/models"
	notificationModels "safereturn/internal/notifications/models"
	id "safereturn/pkg/domain"
	dErrors "safereturn/pkg/domain-errors"
	"safereturn/pkg/requestcontext"
)

// SendMessage forwards a beneficiary's message to their case worker, or to
// the worker pool when none is assigned. Closed plans can still message.
func (s *Service) SendMessage(ctx context.Context, pid id.ProfileID, topic, body string) (*notificationModels.Notification, error) {
	t, err := models.ParseMessageTopic(topic)
	if err != nil {
		return nil, err
	}
	body, err = models.NormalizeMessageBody(body)
	if err != nil {
		return nil, err
	}
	p, err := s.profiles.FindByID(ctx, pid)
	if err != nil {
		return nil, translateProfileErr(err)
	}

	sent := s.emitter.MessageSent(ctx, subjectOf(p), string(t), body)
	if len(sent) == 0 {
		return nil, dErrors.New(dErrors.CodeInternal, "failed to deliver message")
	}
	s.logger.InfoContext(ctx, "beneficiary message sent",
		"request_id", requestcontext.RequestID(ctx),
		"profile_id", p.ID.String(),
		"topic", string(t),
		"recipient_kind", string(sent[0].Recipient.Kind),
	)
	return sent[0], nil
}
