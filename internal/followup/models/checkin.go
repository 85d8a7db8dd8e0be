package models

import (
	"time"

	notificationModels "safereturn/internal/notifications/models"
	"safereturn/internal/risk"
	ticketModels "safereturn/internal/tickets/models"
	id "safereturn/pkg/domain"
)

// CheckIn is one immutable monthly self-report.
type CheckIn struct {
	ID          id.CheckInID
	ProfileID   id.ProfileID
	MonthIndex  int
	Assessment  risk.Assessment
	Notes       string
	Tier        risk.Tier
	SubmittedAt time.Time
}

// Submission is a check-in as received, before parsing.
type Submission struct {
	ProfileID   id.ProfileID
	MonthIndex  int
	Housing     string
	Job         string
	Mental      string
	Family      string
	Notes       string
	SubmittedAt time.Time
}

// SubmissionResult describes the effects of an accepted check-in.
type SubmissionResult struct {
	CheckIn              *CheckIn
	PreviousTier         risk.Tier
	RiskTier             risk.Tier
	PlanStatus           PlanStatus
	PlanMonth            int
	TicketsCreated       []*ticketModels.SupportTicket
	NotificationsEmitted []*notificationModels.Notification
}

// TierChanged reports whether the check-in moved the cached tier.
func (r SubmissionResult) TierChanged() bool {
	return r.PreviousTier != r.RiskTier
}

// RiskSummary is the case-worker view of a beneficiary's risk.
type RiskSummary struct {
	ProfileID       id.ProfileID
	CurrentTier     risk.Tier
	PlanMonth       int
	PlanStatus      PlanStatus
	Progress        int
	Factors         []risk.Factor
	Recommendations []string
	History         []*CheckIn // oldest first
}

// ProfileFilter narrows profile listings. Zero values match everything.
type ProfileFilter struct {
	Tier   risk.Tier
	Status PlanStatus
	City   City
}
