package service

import (
	"context"
	"errors"
	"log/slog"

	"go.opentelemetry.io/otel"

	"safereturn/internal/followup/metrics"
	"safereturn/internal/followup/models"
	"safereturn/internal/notifications"
	notificationModels "safereturn/internal/notifications/models"
	"safereturn/internal/risk"
	"safereturn/internal/tickets"
	ticketModels "safereturn/internal/tickets/models"
	id "safereturn/pkg/domain"
	dErrors "safereturn/pkg/domain-errors"
	"safereturn/pkg/platform/sentinel"
)

var tracer = otel.Tracer("safereturn/followup")

// ProfileStore persists release profiles and their embedded plan.
type ProfileStore interface {
	Create(ctx context.Context, p *models.ReleaseProfile) error
	FindByID(ctx context.Context, pid id.ProfileID) (*models.ReleaseProfile, error)
	FindByIDForUpdate(ctx context.Context, pid id.ProfileID) (*models.ReleaseProfile, error)
	Update(ctx context.Context, p *models.ReleaseProfile) error
}

// CheckInStore is append-only. Save reports sentinel.ErrConflict when the
// (profile, month) pair already exists.
type CheckInStore interface {
	Save(ctx context.Context, c *models.CheckIn) error
	FindByProfileAndMonth(ctx context.Context, pid id.ProfileID, month int) (*models.CheckIn, error)
	ListByProfile(ctx context.Context, pid id.ProfileID) ([]*models.CheckIn, error)
}

// TicketStore is the part of the ticket store a submission writes to.
type TicketStore interface {
	Create(ctx context.Context, t *ticketModels.SupportTicket) error
	PendingCategories(ctx context.Context, pid id.ProfileID) (map[ticketModels.Category]bool, error)
}

// Emitter records notifications after a unit of work commits.
type Emitter interface {
	TierChanged(ctx context.Context, s notifications.Subject, from, to risk.Tier) []*notificationModels.Notification
	TicketRaised(ctx context.Context, s notifications.Subject, ticketID id.TicketID, category string, auto bool) []*notificationModels.Notification
	PlanClosed(ctx context.Context, s notifications.Subject, status, reason string) []*notificationModels.Notification
	MessageSent(ctx context.Context, s notifications.Subject, topic, body string) []*notificationModels.Notification
}

// Service runs the follow-up lifecycle: intake, monthly check-ins, risk
// summaries and case-worker plan actions.
type Service struct {
	profiles        ProfileStore
	checkins        CheckInStore
	tickets         TicketStore
	tx              StoreTx
	emitter         Emitter
	generator       *tickets.Generator
	logger          *slog.Logger
	metrics         *metrics.Metrics
	enforceSchedule bool
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

// WithGenerator replaces the default non-deduplicating ticket generator.
func WithGenerator(g *tickets.Generator) Option {
	return func(s *Service) {
		s.generator = g
	}
}

// WithScheduleEnforcement toggles the calendar check on submissions.
func WithScheduleEnforcement(enabled bool) Option {
	return func(s *Service) {
		s.enforceSchedule = enabled
	}
}

func New(profiles ProfileStore, checkins CheckInStore, ticketStore TicketStore, tx StoreTx, emitter Emitter, opts ...Option) *Service {
	s := &Service{
		profiles:        profiles,
		checkins:        checkins,
		tickets:         ticketStore,
		tx:              tx,
		emitter:         emitter,
		generator:       tickets.NewGenerator(false),
		logger:          slog.Default(),
		enforceSchedule: true,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *Service) GetProfile(ctx context.Context, pid id.ProfileID) (*models.ReleaseProfile, error) {
	p, err := s.profiles.FindByID(ctx, pid)
	if err != nil {
		return nil, translateProfileErr(err)
	}
	return p, nil
}

func translateProfileErr(err error) error {
	if errors.Is(err, sentinel.ErrNotFound) {
		return dErrors.New(dErrors.CodeNotFound, "profile not found")
	}
	if dErrors.CodeOf(err) != dErrors.CodeInternal {
		return err
	}
	return dErrors.Wrap(err, dErrors.CodeInternal, "failed to load profile")
}

func subjectOf(p *models.ReleaseProfile) notifications.Subject {
	return notifications.Subject{
		ProfileID:      p.ID,
		FullName:       p.FullName,
		AssignedWorker: p.AssignedWorker,
	}
}
