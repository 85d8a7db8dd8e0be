package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"safereturn/internal/followup/models"
	dErrors "safereturn/pkg/domain-errors"
	"safereturn/pkg/platform/sentinel"
	"safereturn/pkg/requestcontext"
)

// maxClockSkew is how far past the request time a client timestamp may be.
const maxClockSkew = 5 * time.Minute

// validateSubmission runs the stateful checks, in order, against a profile
// read inside the unit of work. Enum parsing has already happened.
func (s *Service) validateSubmission(ctx context.Context, p *models.ReleaseProfile, sub models.Submission) error {
	if !p.Plan.IsActive() {
		return dErrors.New(dErrors.CodePlanNotActive, fmt.Sprintf("follow-up plan is %s", p.Plan.Status))
	}

	_, err := s.checkins.FindByProfileAndMonth(ctx, p.ID, sub.MonthIndex)
	switch {
	case err == nil:
		return dErrors.New(dErrors.CodeDuplicateSubmission, fmt.Sprintf("check-in for month %d already submitted", sub.MonthIndex))
	case !errors.Is(err, sentinel.ErrNotFound):
		return dErrors.Wrap(err, dErrors.CodeInternal, "failed to look up check-in")
	}

	if sub.MonthIndex != p.Plan.CurrentMonth {
		return dErrors.New(dErrors.CodePlanNotActive,
			fmt.Sprintf("month %d is not open for submission; current month is %d", sub.MonthIndex, p.Plan.CurrentMonth))
	}

	if sub.SubmittedAt.After(requestcontext.Now(ctx).Add(maxClockSkew)) {
		return dErrors.New(dErrors.CodeValidation, "submitted_at cannot be in the future")
	}
	if !s.enforceSchedule {
		return nil
	}
	if sub.SubmittedAt.Before(p.ReleaseDate) {
		return dErrors.New(dErrors.CodePlanNotActive, "check-in submitted before the release date")
	}
	if open := p.Plan.CalendarMonth(sub.SubmittedAt); sub.MonthIndex > open {
		opensOn := p.Plan.StartDate.AddDate(0, 0, (sub.MonthIndex-1)*30)
		return dErrors.New(dErrors.CodePlanNotActive,
			fmt.Sprintf("month %d opens on %s", sub.MonthIndex, opensOn.Format("2006-01-02")))
	}
	return nil
}
