package handler

import (
	"strings"

	"safereturn/internal/tickets/models"
	id "safereturn/pkg/domain"
	dErrors "safereturn/pkg/domain-errors"
)

type CreateTicketRequest struct {
	ProfileID string `json:"profile_id"`
	Category  string `json:"category"`
	CreatedBy string `json:"created_by"`
	Notes     string `json:"notes"`

	profileID id.ProfileID
	category  models.Category
	createdBy id.WorkerID
}

func (r *CreateTicketRequest) Validate() error {
	var err error
	if r.profileID, err = id.ParseProfileID(r.ProfileID); err != nil {
		return err
	}
	if r.category, err = models.ParseCategory(r.Category); err != nil {
		return err
	}
	if strings.TrimSpace(r.CreatedBy) == "" {
		return dErrors.New(dErrors.CodeValidation, "created_by is required for manual tickets")
	}
	if r.createdBy, err = id.ParseWorkerID(r.CreatedBy); err != nil {
		return err
	}
	r.Notes = strings.TrimSpace(r.Notes)
	return nil
}

// WorkerRequest names the acting worker. When omitted the X-Worker-ID
// header is used.
type WorkerRequest struct {
	WorkerID string `json:"worker_id"`
}
