package models

import (
	"fmt"
	"time"

	"safereturn/internal/risk"
	dErrors "safereturn/pkg/domain-errors"
)

// PlanMonths is the number of monthly check-ins in a plan.
const PlanMonths = 12

// daysPerMonth is the calendar length of one follow-up month.
const daysPerMonth = 30

// PlanStatus is the follow-up plan lifecycle state.
type PlanStatus string

const (
	PlanActive     PlanStatus = "active"
	PlanCompleted  PlanStatus = "completed"
	PlanTerminated PlanStatus = "terminated"
)

func ParsePlanStatus(s string) (PlanStatus, error) {
	switch PlanStatus(s) {
	case PlanActive, PlanCompleted, PlanTerminated:
		return PlanStatus(s), nil
	}
	return "", dErrors.New(dErrors.CodeInvalidEnum, fmt.Sprintf("plan_status: unknown value %q", s))
}

// FollowUpPlan tracks progress through the twelve monthly check-ins.
//
// CurrentMonth is the month open for submission. It only moves forward and
// stays at 12 once the plan completes.
type FollowUpPlan struct {
	StartDate    time.Time
	CurrentMonth int
	Status       PlanStatus
	LastTier     risk.Tier
	ClosedAt     *time.Time
	CloseReason  string
}

func NewFollowUpPlan(start time.Time) FollowUpPlan {
	return FollowUpPlan{
		StartDate:    start,
		CurrentMonth: 1,
		Status:       PlanActive,
		LastTier:     risk.TierGreen,
	}
}

func (p *FollowUpPlan) IsActive() bool {
	return p.Status == PlanActive
}

// CalendarMonth is the latest month open on the calendar at the given time,
// capped at PlanMonths. It is 0 before the start date.
func (p *FollowUpPlan) CalendarMonth(at time.Time) int {
	if at.Before(p.StartDate) {
		return 0
	}
	days := int(at.Sub(p.StartDate).Hours() / 24)
	return min(days/daysPerMonth+1, PlanMonths)
}

// RecordCheckIn applies an accepted check-in for the current month: the
// cached tier is overwritten and the plan advances or completes.
// It reports whether the plan completed.
func (p *FollowUpPlan) RecordCheckIn(tier risk.Tier, at time.Time) (bool, error) {
	if !p.IsActive() {
		return false, dErrors.New(dErrors.CodePlanNotActive, "follow-up plan is "+string(p.Status))
	}
	p.LastTier = tier
	if p.CurrentMonth >= PlanMonths {
		p.CurrentMonth = PlanMonths
		p.close(PlanCompleted, "", at)
		return true, nil
	}
	p.CurrentMonth++
	return false, nil
}

// Terminate ends an active plan early.
func (p *FollowUpPlan) Terminate(reason string, at time.Time) error {
	if reason == "" {
		return dErrors.New(dErrors.CodeValidation, "termination reason is required")
	}
	if !p.IsActive() {
		return dErrors.New(dErrors.CodePlanNotActive, "follow-up plan is "+string(p.Status))
	}
	p.close(PlanTerminated, reason, at)
	return nil
}

// Complete closes an active plan before all twelve check-ins are in.
func (p *FollowUpPlan) Complete(at time.Time) error {
	if !p.IsActive() {
		return dErrors.New(dErrors.CodePlanNotActive, "follow-up plan is "+string(p.Status))
	}
	p.close(PlanCompleted, "", at)
	return nil
}

// Progress is the share of the program's months already checked in, 0..100.
func (p *FollowUpPlan) Progress(submitted int) int {
	if submitted >= PlanMonths {
		return 100
	}
	return submitted * 100 / PlanMonths
}

func (p *FollowUpPlan) close(status PlanStatus, reason string, at time.Time) {
	p.Status = status
	p.CloseReason = reason
	p.ClosedAt = &at
}
