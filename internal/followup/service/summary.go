package service

import (
	"context"

	"safereturn/internal/followup/models"
	"safereturn/internal/risk"
	id "safereturn/pkg/domain"
	dErrors "safereturn/pkg/domain-errors"
)

// GetRiskSummary reports the cached tier, plan position, factors drawn from
// the latest check-in, and every check-in submitted so far.
func (s *Service) GetRiskSummary(ctx context.Context, pid id.ProfileID) (*models.RiskSummary, error) {
	p, err := s.profiles.FindByID(ctx, pid)
	if err != nil {
		return nil, translateProfileErr(err)
	}
	history, err := s.checkins.ListByProfile(ctx, pid)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load check-in history")
	}

	summary := &models.RiskSummary{
		ProfileID:   p.ID,
		CurrentTier: p.Plan.LastTier,
		PlanMonth:   p.Plan.CurrentMonth,
		PlanStatus:  p.Plan.Status,
		Progress:    p.Plan.Progress(len(history)),
		History:     history,
	}
	if summary.History == nil {
		summary.History = []*models.CheckIn{}
	}

	if len(history) == 0 {
		summary.Factors = []risk.Factor{}
		summary.Recommendations = []string{risk.FirstCheckInRecommendation}
		return summary, nil
	}
	latest := history[len(history)-1]
	summary.Factors = risk.Factors(latest.Assessment)
	if summary.Factors == nil {
		summary.Factors = []risk.Factor{}
	}
	summary.Recommendations = risk.Recommendations(summary.Factors)
	return summary, nil
}
