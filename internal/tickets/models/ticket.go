package models

import (
	"fmt"
	"time"

	id "safereturn/pkg/domain"
	dErrors "safereturn/pkg/domain-errors"
)

// Category is the kind of support a ticket requests.
type Category string

const (
	CategoryPsychological Category = "psychological"
	CategoryHousing       Category = "housing"
	CategoryJob           Category = "job"
	CategorySocial        Category = "social"
	// CategoryFinancial is only raised manually by a case worker.
	CategoryFinancial Category = "financial"
)

var Categories = []Category{CategoryPsychological, CategoryHousing, CategoryJob, CategorySocial, CategoryFinancial}

func ParseCategory(s string) (Category, error) {
	for _, c := range Categories {
		if string(c) == s {
			return c, nil
		}
	}
	return "", dErrors.New(dErrors.CodeInvalidEnum, fmt.Sprintf("category: unknown value %q", s))
}

// Status is the ticket lifecycle state.
type Status string

const (
	StatusOpen       Status = "open"
	StatusInProgress Status = "in_progress"
	StatusResolved   Status = "resolved"
)

func ParseStatus(s string) (Status, error) {
	switch Status(s) {
	case StatusOpen, StatusInProgress, StatusResolved:
		return Status(s), nil
	}
	return "", dErrors.New(dErrors.CodeInvalidEnum, fmt.Sprintf("status: unknown value %q", s))
}

// IsPending reports whether the ticket still needs work.
func (s Status) IsPending() bool {
	return s == StatusOpen || s == StatusInProgress
}

// SupportTicket is a unit of case-worker work for one profile.
// Auto-generated tickets reference the check-in that raised them; manual
// tickets reference the worker who created them.
type SupportTicket struct {
	ID             id.TicketID
	ProfileID      id.ProfileID
	CheckInID      *id.CheckInID
	Category       Category
	Status         Status
	AutoGenerated  bool
	CreatedBy      *id.WorkerID
	AssignedWorker *id.WorkerID
	ResolvedBy     *id.WorkerID
	Notes          string
	CreatedAt      time.Time
	UpdatedAt      time.Time
	ResolvedAt     *time.Time
}

// NewManualTicket builds a ticket raised by a case worker.
func NewManualTicket(profileID id.ProfileID, category Category, createdBy id.WorkerID, notes string, now time.Time) (*SupportTicket, error) {
	if profileID.IsNil() {
		return nil, dErrors.New(dErrors.CodeValidation, "profile_id is required")
	}
	if createdBy.IsNil() {
		return nil, dErrors.New(dErrors.CodeValidation, "created_by is required for manual tickets")
	}
	return &SupportTicket{
		ID:        id.NewTicketID(),
		ProfileID: profileID,
		Category:  category,
		Status:    StatusOpen,
		CreatedBy: &createdBy,
		Notes:     notes,
		CreatedAt: now,
		UpdatedAt: now,
	}, nil
}

// Start moves an open ticket to in_progress and assigns the worker.
func (t *SupportTicket) Start(worker id.WorkerID, now time.Time) error {
	if t.Status != StatusOpen {
		return invalidTransition(t.Status, StatusInProgress)
	}
	t.Status = StatusInProgress
	t.AssignedWorker = &worker
	t.UpdatedAt = now
	return nil
}

// Resolve closes a pending ticket.
func (t *SupportTicket) Resolve(worker id.WorkerID, now time.Time) error {
	if !t.Status.IsPending() {
		return invalidTransition(t.Status, StatusResolved)
	}
	t.Status = StatusResolved
	t.ResolvedBy = &worker
	t.ResolvedAt = &now
	if t.AssignedWorker == nil {
		t.AssignedWorker = &worker
	}
	t.UpdatedAt = now
	return nil
}

// Reopen returns a resolved ticket to open. Resolution data is cleared.
func (t *SupportTicket) Reopen(now time.Time) error {
	if t.Status != StatusResolved {
		return invalidTransition(t.Status, StatusOpen)
	}
	t.Status = StatusOpen
	t.ResolvedBy = nil
	t.ResolvedAt = nil
	t.UpdatedAt = now
	return nil
}

func invalidTransition(from, to Status) error {
	return dErrors.New(dErrors.CodeInvalidState, fmt.Sprintf("ticket cannot move from %s to %s", from, to))
}

// Filter narrows ticket listings. Zero values match everything.
type Filter struct {
	Status    Status
	Category  Category
	ProfileID id.ProfileID
}

// Matches reports whether t passes the filter.
func (f Filter) Matches(t *SupportTicket) bool {
	if f.Status != "" && t.Status != f.Status {
		return false
	}
	if f.Category != "" && t.Category != f.Category {
		return false
	}
	if !f.ProfileID.IsNil() && t.ProfileID != f.ProfileID {
		return false
	}
	return true
}
