// Package dashboard builds the case-worker overview: active plans per risk
// tier, pending ticket load, and the filtered profile list.
package dashboard

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	followupModels "safereturn/internal/followup/models"
	"safereturn/internal/risk"
	ticketModels "safereturn/internal/tickets/models"
	id "safereturn/pkg/domain"
	dErrors "safereturn/pkg/domain-errors"
	"safereturn/pkg/requestcontext"
)

const overviewTimeout = 5 * time.Second

type ProfileStore interface {
	List(ctx context.Context, f followupModels.ProfileFilter) ([]*followupModels.ReleaseProfile, error)
	CountActiveByTier(ctx context.Context, tier risk.Tier) (int, error)
}

type TicketStore interface {
	CountByStatus(ctx context.Context, status ticketModels.Status) (int, error)
}

// Row is one active profile in the overview list.
type Row struct {
	ProfileID      id.ProfileID
	NationalID     id.NationalID
	FullName       string
	City           followupModels.City
	Tier           risk.Tier
	PlanMonth      int
	AssignedWorker *id.WorkerID
	ReleaseDate    time.Time
}

// Filter narrows the profile list. Zero values match everything.
type Filter struct {
	Tier risk.Tier
	City followupModels.City
}

// Overview is a point-in-time snapshot. Counts are gathered concurrently
// and are not mutually consistent under concurrent writes.
type Overview struct {
	GeneratedAt       time.Time
	Filter            Filter
	TierCounts        map[risk.Tier]int
	OpenTickets       int
	InProgressTickets int
	Profiles          []Row
}

// Total returns the number of active plans across all tiers.
func (o *Overview) Total() int {
	n := 0
	for _, c := range o.TierCounts {
		n += c
	}
	return n
}

type Service struct {
	profiles ProfileStore
	tickets  TicketStore
	logger   *slog.Logger
}

type Option func(*Service)

func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) {
		s.logger = logger
	}
}

func New(profiles ProfileStore, tickets TicketStore, opts ...Option) *Service {
	s := &Service{profiles: profiles, tickets: tickets, logger: slog.Default()}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Overview gathers tier counts, ticket counts and the active profile list
// in parallel. The filter narrows the profile list only; tier counts cover
// every active plan.
func (s *Service) Overview(ctx context.Context, f Filter) (*Overview, error) {
	if f.Tier != "" && !f.Tier.IsValid() {
		return nil, dErrors.New(dErrors.CodeInvalidEnum, "tier must be RED, YELLOW or GREEN")
	}
	if f.City != "" {
		if _, err := followupModels.ParseCity(string(f.City)); err != nil {
			return nil, err
		}
	}
	out := &Overview{
		GeneratedAt: requestcontext.Now(ctx),
		Filter:      f,
		TierCounts:  make(map[risk.Tier]int, len(risk.Tiers)),
	}

	ctx, cancel := context.WithTimeout(ctx, overviewTimeout)
	defer cancel()
	g, ctx := errgroup.WithContext(ctx)

	var mu sync.Mutex
	for _, t := range risk.Tiers {
		g.Go(func() error {
			n, err := s.profiles.CountActiveByTier(ctx, t)
			if err != nil {
				return err
			}
			mu.Lock()
			out.TierCounts[t] = n
			mu.Unlock()
			return nil
		})
	}
	g.Go(func() error {
		n, err := s.tickets.CountByStatus(ctx, ticketModels.StatusOpen)
		out.OpenTickets = n
		return err
	})
	g.Go(func() error {
		n, err := s.tickets.CountByStatus(ctx, ticketModels.StatusInProgress)
		out.InProgressTickets = n
		return err
	})
	g.Go(func() error {
		profiles, err := s.profiles.List(ctx, followupModels.ProfileFilter{
			Tier:   f.Tier,
			City:   f.City,
			Status: followupModels.PlanActive,
		})
		if err != nil {
			return err
		}
		out.Profiles = make([]Row, 0, len(profiles))
		for _, p := range profiles {
			out.Profiles = append(out.Profiles, Row{
				ProfileID:      p.ID,
				NationalID:     p.NationalID,
				FullName:       p.FullName,
				City:           p.City,
				Tier:           p.Plan.LastTier,
				PlanMonth:      p.Plan.CurrentMonth,
				AssignedWorker: p.AssignedWorker,
				ReleaseDate:    p.ReleaseDate,
			})
		}
		return nil
	})

	if err := g.Wait(); err != nil {
		s.logger.ErrorContext(ctx, "failed to build dashboard",
			"request_id", requestcontext.RequestID(ctx),
			"error", err,
		)
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to build dashboard")
	}
	return out, nil
}
