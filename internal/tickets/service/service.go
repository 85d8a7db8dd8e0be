package service

import (
	"context"
	"errors"
	"log/slog"
	"time"

	followupModels "safereturn/internal/followup/models"
	"safereturn/internal/notifications"
	notificationModels "safereturn/internal/notifications/models"
	"safereturn/internal/tickets/metrics"
	"safereturn/internal/tickets/models"
	id "safereturn/pkg/domain"
	dErrors "safereturn/pkg/domain-errors"
	"safereturn/pkg/platform/sentinel"
	"safereturn/pkg/requestcontext"
)

type Store interface {
	Create(ctx context.Context, t *models.SupportTicket) error
	FindByID(ctx context.Context, tid id.TicketID) (*models.SupportTicket, error)
	FindByIDForUpdate(ctx context.Context, tid id.TicketID) (*models.SupportTicket, error)
	Update(ctx context.Context, t *models.SupportTicket) error
	List(ctx context.Context, f models.Filter) ([]*models.SupportTicket, error)
}

type ProfileStore interface {
	FindByID(ctx context.Context, pid id.ProfileID) (*followupModels.ReleaseProfile, error)
}

// StoreTx serializes units of work per profile. Ticket changes share the
// profile's lock with check-in submissions.
type StoreTx interface {
	RunInTx(ctx context.Context, profileID id.ProfileID, fn func(ctx context.Context) error) error
}

type Emitter interface {
	TicketRaised(ctx context.Context, s notifications.Subject, ticketID id.TicketID, category string, auto bool) []*notificationModels.Notification
	TicketStatusChanged(ctx context.Context, profileID id.ProfileID, ticketID id.TicketID, category, status string) []*notificationModels.Notification
}

// Service handles case-worker ticket operations.
type Service struct {
	store    Store
	profiles ProfileStore
	tx       StoreTx
	emitter  Emitter
	logger   *slog.Logger
	metrics  *metrics.Metrics
}

type Option func(*Service)

func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) {
		s.logger = logger
	}
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(s *Service) {
		s.metrics = m
	}
}

func New(store Store, profiles ProfileStore, tx StoreTx, emitter Emitter, opts ...Option) *Service {
	s := &Service{
		store:    store,
		profiles: profiles,
		tx:       tx,
		emitter:  emitter,
		logger:   slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *Service) List(ctx context.Context, f models.Filter) ([]*models.SupportTicket, error) {
	out, err := s.store.List(ctx, f)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to list tickets")
	}
	return out, nil
}

func (s *Service) Get(ctx context.Context, tid id.TicketID) (*models.SupportTicket, error) {
	t, err := s.store.FindByID(ctx, tid)
	if err != nil {
		return nil, translateTicketErr(err)
	}
	return t, nil
}

// CreateInput is a manual ticket raised by a case worker.
type CreateInput struct {
	ProfileID id.ProfileID
	Category  models.Category
	CreatedBy id.WorkerID
	Notes     string
}

func (s *Service) Create(ctx context.Context, in CreateInput) (*models.SupportTicket, error) {
	p, err := s.profiles.FindByID(ctx, in.ProfileID)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return nil, dErrors.New(dErrors.CodeNotFound, "profile not found")
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load profile")
	}
	t, err := models.NewManualTicket(p.ID, in.Category, in.CreatedBy, in.Notes, requestcontext.Now(ctx))
	if err != nil {
		return nil, err
	}
	err = s.tx.RunInTx(ctx, p.ID, func(ctx context.Context) error {
		return s.store.Create(ctx, t)
	})
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to create ticket")
	}

	s.metrics.IncManual(string(t.Category))
	s.emitter.TicketRaised(ctx, notifications.Subject{
		ProfileID:      p.ID,
		FullName:       p.FullName,
		AssignedWorker: p.AssignedWorker,
	}, t.ID, string(t.Category), false)
	s.logger.InfoContext(ctx, "manual ticket created",
		"request_id", requestcontext.RequestID(ctx),
		"ticket_id", t.ID.String(),
		"profile_id", p.ID.String(),
		"category", string(t.Category),
	)
	return t, nil
}

// Start moves an open ticket to in_progress under the given worker.
func (s *Service) Start(ctx context.Context, tid id.TicketID, worker id.WorkerID) (*models.SupportTicket, error) {
	if worker.IsNil() {
		return nil, dErrors.New(dErrors.CodeValidation, "worker_id is required")
	}
	return s.transition(ctx, tid, func(t *models.SupportTicket, now time.Time) error {
		return t.Start(worker, now)
	})
}

// ResolveTicket closes a pending ticket on behalf of the resolving worker.
func (s *Service) ResolveTicket(ctx context.Context, tid id.TicketID, worker id.WorkerID) (*models.SupportTicket, error) {
	if worker.IsNil() {
		return nil, dErrors.New(dErrors.CodeValidation, "worker_id is required")
	}
	return s.transition(ctx, tid, func(t *models.SupportTicket, now time.Time) error {
		return t.Resolve(worker, now)
	})
}

// Reopen returns a resolved ticket to open.
func (s *Service) Reopen(ctx context.Context, tid id.TicketID) (*models.SupportTicket, error) {
	return s.transition(ctx, tid, func(t *models.SupportTicket, now time.Time) error {
		return t.Reopen(now)
	})
}

func (s *Service) transition(ctx context.Context, tid id.TicketID, apply func(t *models.SupportTicket, now time.Time) error) (*models.SupportTicket, error) {
	current, err := s.store.FindByID(ctx, tid)
	if err != nil {
		return nil, translateTicketErr(err)
	}

	var out *models.SupportTicket
	err = s.tx.RunInTx(ctx, current.ProfileID, func(ctx context.Context) error {
		t, err := s.store.FindByIDForUpdate(ctx, tid)
		if err != nil {
			return translateTicketErr(err)
		}
		if err := apply(t, requestcontext.Now(ctx)); err != nil {
			return err
		}
		if err := s.store.Update(ctx, t); err != nil {
			return dErrors.Wrap(err, dErrors.CodeInternal, "failed to update ticket")
		}
		out = t
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.metrics.IncTransition(string(out.Status))
	s.emitter.TicketStatusChanged(ctx, out.ProfileID, out.ID, string(out.Category), string(out.Status))
	s.logger.InfoContext(ctx, "ticket status changed",
		"request_id", requestcontext.RequestID(ctx),
		"ticket_id", out.ID.String(),
		"status", string(out.Status),
	)
	return out, nil
}

func translateTicketErr(err error) error {
	if errors.Is(err, sentinel.ErrNotFound) {
		return dErrors.New(dErrors.CodeNotFound, "ticket not found")
	}
	if dErrors.CodeOf(err) != dErrors.CodeInternal {
		return err
	}
	return dErrors.Wrap(err, dErrors.CodeInternal, "failed to load ticket")
}
