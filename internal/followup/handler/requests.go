package handler

import (
	"strings"
	"time"

	id "safereturn/pkg/domain"
	dErrors "safereturn/pkg/domain-errors"
)

const dateLayout = "2006-01-02"

type CreateProfileRequest struct {
	NationalID       string `json:"national_id"`
	FullName         string `json:"full_name"`
	City             string `json:"city"`
	ReleaseDate      string `json:"release_date"`
	AssignedWorkerID string `json:"assigned_worker_id,omitempty"`

	releaseDate time.Time
	worker      *id.WorkerID
}

func (r *CreateProfileRequest) Validate() error {
	r.NationalID = strings.TrimSpace(r.NationalID)
	r.FullName = strings.TrimSpace(r.FullName)
	r.City = strings.ToLower(strings.TrimSpace(r.City))
	if r.FullName == "" {
		return dErrors.New(dErrors.CodeValidation, "full_name is required")
	}
	d, err := time.Parse(dateLayout, r.ReleaseDate)
	if err != nil {
		return dErrors.New(dErrors.CodeValidation, "release_date must be YYYY-MM-DD")
	}
	r.releaseDate = d
	if r.AssignedWorkerID != "" {
		w, err := id.ParseWorkerID(r.AssignedWorkerID)
		if err != nil {
			return err
		}
		r.worker = &w
	}
	return nil
}

type AssignRequest struct {
	WorkerID string `json:"worker_id"`

	worker id.WorkerID
}

func (r *AssignRequest) Validate() error {
	w, err := id.ParseWorkerID(r.WorkerID)
	if err != nil {
		return err
	}
	r.worker = w
	return nil
}

type TerminateRequest struct {
	Reason string `json:"reason"`
}

func (r *TerminateRequest) Validate() error {
	r.Reason = strings.TrimSpace(r.Reason)
	if r.Reason == "" {
		return dErrors.New(dErrors.CodeValidation, "reason is required")
	}
	return nil
}

// MessageRequest is a beneficiary message. The service trims and bounds
// the body.
type MessageRequest struct {
	Topic string `json:"topic,omitempty"`
	Body  string `json:"body"`
}

func (r *MessageRequest) Validate() error {
	r.Topic = strings.ToLower(strings.TrimSpace(r.Topic))
	return nil
}

// CheckInRequest carries the raw statuses. Enumerations are parsed by the
// service so that unknown values surface as invalid_enum.
type CheckInRequest struct {
	MonthIndex  int        `json:"month_index"`
	Housing     string     `json:"housing_status"`
	Job         string     `json:"job_status"`
	Mental      string     `json:"mental_state"`
	Family      string     `json:"family_status"`
	Notes       string     `json:"notes,omitempty"`
	SubmittedAt *time.Time `json:"submitted_at,omitempty"`
}
