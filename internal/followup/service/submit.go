package service

import (
	"context"
	"errors"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"safereturn/internal/followup/models"
	"safereturn/internal/risk"
	"safereturn/internal/tickets"
	ticketModels "safereturn/internal/tickets/models"
	id "safereturn/pkg/domain"
	dErrors "safereturn/pkg/domain-errors"
	"safereturn/pkg/platform/sentinel"
	"safereturn/pkg/requestcontext"
)

// outcome is what a committed submission hands to the notification step.
type outcome struct {
	profile   *models.ReleaseProfile
	checkIn   *models.CheckIn
	previous  risk.Tier
	tickets   []*ticketModels.SupportTicket
	completed bool
}

// SubmitCheckIn validates, classifies and records one monthly check-in.
// Plan advancement and ticket creation commit together with the check-in;
// notifications follow the commit and never fail the submission.
//
// A lost (profile, month) uniqueness race is retried once, after which the
// duplicate is reported as DuplicateSubmission.
func (s *Service) SubmitCheckIn(ctx context.Context, sub models.Submission) (*models.SubmissionResult, error) {
	start := time.Now()
	defer s.metrics.ObserveSubmit(start)

	ctx, span := tracer.Start(ctx, "followup.SubmitCheckIn", trace.WithAttributes(
		attribute.String("profile_id", sub.ProfileID.String()),
		attribute.Int("month_index", sub.MonthIndex),
	))
	defer span.End()

	assessment, err := risk.ParseAssessment(sub.Housing, sub.Job, sub.Mental, sub.Family)
	if err != nil {
		return nil, s.reject(ctx, span, sub, err)
	}
	if sub.SubmittedAt.IsZero() {
		sub.SubmittedAt = requestcontext.Now(ctx)
	}

	var out *outcome
	unit := func(ctx context.Context) error {
		var err error
		out, err = s.process(ctx, sub, assessment)
		return err
	}

	err = s.tx.RunInTx(ctx, sub.ProfileID, unit)
	if errors.Is(err, sentinel.ErrConflict) {
		s.metrics.IncDuplicateRetry()
		s.logger.InfoContext(ctx, "retrying check-in after uniqueness conflict",
			"request_id", requestcontext.RequestID(ctx),
			"profile_id", sub.ProfileID.String(),
			"month_index", sub.MonthIndex,
		)
		err = s.tx.RunInTx(ctx, sub.ProfileID, unit)
		if errors.Is(err, sentinel.ErrConflict) {
			err = dErrors.New(dErrors.CodeDuplicateSubmission, "check-in for this month already submitted")
		}
	}
	if err != nil {
		return nil, s.reject(ctx, span, sub, err)
	}

	result := &models.SubmissionResult{
		CheckIn:        out.checkIn,
		PreviousTier:   out.previous,
		RiskTier:       out.checkIn.Tier,
		PlanStatus:     out.profile.Plan.Status,
		PlanMonth:      out.profile.Plan.CurrentMonth,
		TicketsCreated: out.tickets,
	}
	s.metrics.IncAccepted(string(result.RiskTier))
	for _, t := range out.tickets {
		s.metrics.IncTicket(string(t.Category))
	}
	if out.completed {
		s.metrics.IncPlanClosed(string(models.PlanCompleted))
	}

	subject := subjectOf(out.profile)
	result.NotificationsEmitted = append(result.NotificationsEmitted,
		s.emitter.TierChanged(ctx, subject, out.previous, result.RiskTier)...)
	for _, t := range out.tickets {
		result.NotificationsEmitted = append(result.NotificationsEmitted,
			s.emitter.TicketRaised(ctx, subject, t.ID, string(t.Category), true)...)
	}
	if out.completed {
		result.NotificationsEmitted = append(result.NotificationsEmitted,
			s.emitter.PlanClosed(ctx, subject, string(models.PlanCompleted), "")...)
	}

	span.SetAttributes(attribute.String("risk_tier", string(result.RiskTier)))
	s.logger.InfoContext(ctx, "check-in accepted",
		"request_id", requestcontext.RequestID(ctx),
		"profile_id", sub.ProfileID.String(),
		"month_index", sub.MonthIndex,
		"risk_tier", string(result.RiskTier),
		"tickets_created", len(result.TicketsCreated),
		"plan_status", string(result.PlanStatus),
	)
	return result, nil
}

// process is one attempt at the unit of work. It writes nothing until every
// check has passed.
func (s *Service) process(ctx context.Context, sub models.Submission, a risk.Assessment) (*outcome, error) {
	p, err := s.profiles.FindByIDForUpdate(ctx, sub.ProfileID)
	if err != nil {
		return nil, translateProfileErr(err)
	}
	if err := s.validateSubmission(ctx, p, sub); err != nil {
		return nil, err
	}

	now := requestcontext.Now(ctx)
	checkIn := &models.CheckIn{
		ID:          id.NewCheckInID(),
		ProfileID:   p.ID,
		MonthIndex:  sub.MonthIndex,
		Assessment:  a,
		Notes:       sub.Notes,
		Tier:        risk.Classify(a),
		SubmittedAt: sub.SubmittedAt,
	}

	var pending map[ticketModels.Category]bool
	if s.generator.Dedup() {
		if pending, err = s.tickets.PendingCategories(ctx, p.ID); err != nil {
			return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load pending tickets")
		}
	}
	generated := s.generator.Generate(tickets.Source{
		ProfileID:  p.ID,
		CheckInID:  checkIn.ID,
		MonthIndex: checkIn.MonthIndex,
		Assessment: a,
	}, pending, now)

	previous := p.Plan.LastTier
	completed, err := p.Plan.RecordCheckIn(checkIn.Tier, now)
	if err != nil {
		return nil, err
	}
	p.UpdatedAt = now

	if err := s.checkins.Save(ctx, checkIn); err != nil {
		if errors.Is(err, sentinel.ErrConflict) {
			return nil, err
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to save check-in")
	}
	if err := s.profiles.Update(ctx, p); err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to update follow-up plan")
	}
	for _, t := range generated {
		if err := s.tickets.Create(ctx, t); err != nil {
			return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to create support ticket")
		}
	}

	return &outcome{
		profile:   p,
		checkIn:   checkIn,
		previous:  previous,
		tickets:   generated,
		completed: completed,
	}, nil
}

func (s *Service) reject(ctx context.Context, span trace.Span, sub models.Submission, err error) error {
	code := dErrors.CodeOf(err)
	s.metrics.IncRejected(string(code))
	span.SetStatus(codes.Error, string(code))

	if code == dErrors.CodeInternal || code == dErrors.CodeTimeout {
		span.RecordError(err)
		s.logger.ErrorContext(ctx, "check-in processing failed",
			"request_id", requestcontext.RequestID(ctx),
			"profile_id", sub.ProfileID.String(),
			"month_index", sub.MonthIndex,
			"error", err,
		)
		if code == dErrors.CodeInternal && !isCoded(err) {
			return dErrors.Wrap(err, dErrors.CodeInternal, "failed to process check-in")
		}
		return err
	}
	s.logger.InfoContext(ctx, "check-in rejected",
		"request_id", requestcontext.RequestID(ctx),
		"profile_id", sub.ProfileID.String(),
		"month_index", sub.MonthIndex,
		"code", string(code),
	)
	return err
}

func isCoded(err error) bool {
	var de *dErrors.Error
	return errors.As(err, &de)
}
