package service

import (
	"context"
	"errors"

	"github.com/google/uuid"

	"safereturn/internal/notifications/models"
	id "safereturn/pkg/domain"
	dErrors "safereturn/pkg/domain-errors"
	"safereturn/pkg/platform/sentinel"
)

type Store interface {
	ListByRecipient(ctx context.Context, r models.Recipient, unreadOnly bool) ([]*models.Notification, error)
	MarkRead(ctx context.Context, nid id.NotificationID) (*models.Notification, error)
}

// Service is the read side of notifications: inbox listing and read receipts.
type Service struct {
	store Store
}

func New(store Store) *Service {
	return &Service{store: store}
}

func (s *Service) List(ctx context.Context, r models.Recipient, unreadOnly bool) ([]*models.Notification, error) {
	if r.Kind != models.RecipientWorkerPool && r.ID == uuid.Nil {
		return nil, dErrors.New(dErrors.CodeValidation, "recipient_id is required")
	}
	items, err := s.store.ListByRecipient(ctx, r, unreadOnly)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to list notifications")
	}
	return items, nil
}

func (s *Service) MarkRead(ctx context.Context, nid id.NotificationID) (*models.Notification, error) {
	n, err := s.store.MarkRead(ctx, nid)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return nil, dErrors.New(dErrors.CodeNotFound, "notification not found")
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to mark notification read")
	}
	return n, nil
}
