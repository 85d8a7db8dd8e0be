package service

import (
	"context"
	"errors"
	"time"

	"safereturn/internal/followup/models"
	id "safereturn/pkg/domain"
	dErrors "safereturn/pkg/domain-errors"
	"safereturn/pkg/platform/sentinel"
	"safereturn/pkg/requestcontext"
)

// CreateProfileInput is an intake request.
type CreateProfileInput struct {
	NationalID     string
	FullName       string
	City           string
	ReleaseDate    time.Time
	AssignedWorker *id.WorkerID
}

// CreateProfile enrolls a released individual with an active 12-month plan.
func (s *Service) CreateProfile(ctx context.Context, in CreateProfileInput) (*models.ReleaseProfile, error) {
	nationalID, err := id.ParseNationalID(in.NationalID)
	if err != nil {
		return nil, err
	}
	city, err := models.ParseCity(in.City)
	if err != nil {
		return nil, err
	}
	now := requestcontext.Now(ctx)
	p, err := models.NewReleaseProfile(nationalID, in.FullName, city, in.ReleaseDate, now)
	if err != nil {
		return nil, err
	}
	if in.AssignedWorker != nil {
		if err := p.Assign(*in.AssignedWorker, now); err != nil {
			return nil, err
		}
	}

	if err := s.profiles.Create(ctx, p); err != nil {
		if errors.Is(err, sentinel.ErrConflict) {
			return nil, dErrors.New(dErrors.CodeConflict, "a profile with this national ID already exists")
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to create profile")
	}
	s.logger.InfoContext(ctx, "profile enrolled",
		"request_id", requestcontext.RequestID(ctx),
		"profile_id", p.ID.String(),
		"city", string(p.City),
	)
	return p, nil
}

// AssignCaseWorker sets or replaces the profile's case worker.
func (s *Service) AssignCaseWorker(ctx context.Context, pid id.ProfileID, worker id.WorkerID) (*models.ReleaseProfile, error) {
	return s.mutateProfile(ctx, pid, func(p *models.ReleaseProfile, now time.Time) error {
		return p.Assign(worker, now)
	})
}

// TerminatePlan ends an active plan early on a case worker's decision.
func (s *Service) TerminatePlan(ctx context.Context, pid id.ProfileID, reason string) (*models.ReleaseProfile, error) {
	p, err := s.mutateProfile(ctx, pid, func(p *models.ReleaseProfile, now time.Time) error {
		if err := p.Plan.Terminate(reason, now); err != nil {
			return err
		}
		p.UpdatedAt = now
		return nil
	})
	if err != nil {
		return nil, err
	}
	s.planClosed(ctx, p)
	return p, nil
}

// CompletePlan archives an active plan before all twelve check-ins are in.
func (s *Service) CompletePlan(ctx context.Context, pid id.ProfileID) (*models.ReleaseProfile, error) {
	p, err := s.mutateProfile(ctx, pid, func(p *models.ReleaseProfile, now time.Time) error {
		if err := p.Plan.Complete(now); err != nil {
			return err
		}
		p.UpdatedAt = now
		return nil
	})
	if err != nil {
		return nil, err
	}
	s.planClosed(ctx, p)
	return p, nil
}

func (s *Service) planClosed(ctx context.Context, p *models.ReleaseProfile) {
	s.metrics.IncPlanClosed(string(p.Plan.Status))
	s.emitter.PlanClosed(ctx, subjectOf(p), string(p.Plan.Status), p.Plan.CloseReason)
	s.logger.InfoContext(ctx, "follow-up plan closed",
		"request_id", requestcontext.RequestID(ctx),
		"profile_id", p.ID.String(),
		"plan_status", string(p.Plan.Status),
	)
}

// mutateProfile loads, mutates and saves a profile inside one unit of work.
func (s *Service) mutateProfile(ctx context.Context, pid id.ProfileID, mutate func(p *models.ReleaseProfile, now time.Time) error) (*models.ReleaseProfile, error) {
	var out *models.ReleaseProfile
	err := s.tx.RunInTx(ctx, pid, func(ctx context.Context) error {
		p, err := s.profiles.FindByIDForUpdate(ctx, pid)
		if err != nil {
			return translateProfileErr(err)
		}
		if err := mutate(p, requestcontext.Now(ctx)); err != nil {
			return err
		}
		if err := s.profiles.Update(ctx, p); err != nil {
			return dErrors.Wrap(err, dErrors.CodeInternal, "failed to update profile")
		}
		out = p
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}
