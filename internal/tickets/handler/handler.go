package handler

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"safereturn/internal/tickets/models"
	"safereturn/internal/tickets/service"
	id "safereturn/pkg/domain"
	dErrors "safereturn/pkg/domain-errors"
	"safereturn/pkg/platform/httputil"
	"safereturn/pkg/requestcontext"
)

// Service defines the ticket operations exposed over HTTP.
type Service interface {
	List(ctx context.Context, f models.Filter) ([]*models.SupportTicket, error)
	Get(ctx context.Context, tid id.TicketID) (*models.SupportTicket, error)
	Create(ctx context.Context, in service.CreateInput) (*models.SupportTicket, error)
	Start(ctx context.Context, tid id.TicketID, worker id.WorkerID) (*models.SupportTicket, error)
	ResolveTicket(ctx context.Context, tid id.TicketID, worker id.WorkerID) (*models.SupportTicket, error)
	Reopen(ctx context.Context, tid id.TicketID) (*models.SupportTicket, error)
}

type Handler struct {
	service Service
	logger  *slog.Logger
}

func New(service Service, logger *slog.Logger) *Handler {
	return &Handler{service: service, logger: logger}
}

func (h *Handler) Register(r chi.Router) {
	r.Get("/tickets", h.handleList)
	r.Post("/tickets", h.handleCreate)
	r.Get("/tickets/{id}", h.handleGet)
	r.Post("/tickets/{id}/start", h.handleStart)
	r.Post("/tickets/{id}/resolve", h.handleResolve)
	r.Post("/tickets/{id}/reopen", h.handleReopen)
}

type TicketResponse struct {
	ID             string     `json:"id"`
	ProfileID      string     `json:"profile_id"`
	CheckInID      string     `json:"checkin_id,omitempty"`
	Category       string     `json:"category"`
	Status         string     `json:"status"`
	AutoGenerated  bool       `json:"auto_generated"`
	CreatedBy      string     `json:"created_by,omitempty"`
	AssignedWorker string     `json:"assigned_worker_id,omitempty"`
	ResolvedBy     string     `json:"resolved_by,omitempty"`
	Notes          string     `json:"notes,omitempty"`
	CreatedAt      time.Time  `json:"created_at"`
	UpdatedAt      time.Time  `json:"updated_at"`
	ResolvedAt     *time.Time `json:"resolved_at,omitempty"`
}

type ListResponse struct {
	Tickets []TicketResponse `json:"tickets"`
	Count   int              `json:"count"`
}

// ToResponse renders a ticket for the API.
func ToResponse(t *models.SupportTicket) TicketResponse {
	resp := TicketResponse{
		ID:            t.ID.String(),
		ProfileID:     t.ProfileID.String(),
		Category:      string(t.Category),
		Status:        string(t.Status),
		AutoGenerated: t.AutoGenerated,
		Notes:         t.Notes,
		CreatedAt:     t.CreatedAt,
		UpdatedAt:     t.UpdatedAt,
		ResolvedAt:    t.ResolvedAt,
	}
	if t.CheckInID != nil {
		resp.CheckInID = t.CheckInID.String()
	}
	if t.CreatedBy != nil {
		resp.CreatedBy = t.CreatedBy.String()
	}
	if t.AssignedWorker != nil {
		resp.AssignedWorker = t.AssignedWorker.String()
	}
	if t.ResolvedBy != nil {
		resp.ResolvedBy = t.ResolvedBy.String()
	}
	return resp
}

func (h *Handler) handleList(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)

	filter, err := parseFilter(r)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	items, err := h.service.List(ctx, filter)
	if err != nil {
		h.logger.ErrorContext(ctx, "failed to list tickets",
			"request_id", requestID,
			"error", err,
		)
		httputil.WriteError(w, err)
		return
	}
	resp := ListResponse{Tickets: make([]TicketResponse, 0, len(items)), Count: len(items)}
	for _, t := range items {
		resp.Tickets = append(resp.Tickets, ToResponse(t))
	}
	httputil.WriteJSON(w, http.StatusOK, resp)
}

func parseFilter(r *http.Request) (models.Filter, error) {
	var (
		f   models.Filter
		err error
	)
	q := r.URL.Query()
	if v := q.Get("status"); v != "" {
		if f.Status, err = models.ParseStatus(v); err != nil {
			return models.Filter{}, err
		}
	}
	if v := q.Get("category"); v != "" {
		if f.Category, err = models.ParseCategory(v); err != nil {
			return models.Filter{}, err
		}
	}
	if v := q.Get("profile_id"); v != "" {
		if f.ProfileID, err = id.ParseProfileID(v); err != nil {
			return models.Filter{}, err
		}
	}
	return f, nil
}

func (h *Handler) handleCreate(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)

	req, ok := httputil.DecodeAndPrepare[CreateTicketRequest](w, r, h.logger, ctx, requestID)
	if !ok {
		return
	}
	t, err := h.service.Create(ctx, service.CreateInput{
		ProfileID: req.profileID,
		Category:  req.category,
		CreatedBy: req.createdBy,
		Notes:     req.Notes,
	})
	if err != nil {
		h.writeServiceError(ctx, w, "failed to create ticket", err)
		return
	}
	httputil.WriteJSON(w, http.StatusCreated, ToResponse(t))
}

func (h *Handler) handleGet(w http.ResponseWriter, r *http.Request) {
	tid, err := id.ParseTicketID(chi.URLParam(r, "id"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	t, err := h.service.Get(r.Context(), tid)
	if err != nil {
		h.writeServiceError(r.Context(), w, "failed to get ticket", err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, ToResponse(t))
}

func (h *Handler) handleStart(w http.ResponseWriter, r *http.Request) {
	h.workerTransition(w, r, "failed to start ticket", h.service.Start)
}

func (h *Handler) handleResolve(w http.ResponseWriter, r *http.Request) {
	h.workerTransition(w, r, "failed to resolve ticket", h.service.ResolveTicket)
}

func (h *Handler) handleReopen(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	tid, err := id.ParseTicketID(chi.URLParam(r, "id"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	t, err := h.service.Reopen(ctx, tid)
	if err != nil {
		h.writeServiceError(ctx, w, "failed to reopen ticket", err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, ToResponse(t))
}

type workerAction func(ctx context.Context, tid id.TicketID, worker id.WorkerID) (*models.SupportTicket, error)

func (h *Handler) workerTransition(w http.ResponseWriter, r *http.Request, failMsg string, action workerAction) {
	ctx := r.Context()
	tid, err := id.ParseTicketID(chi.URLParam(r, "id"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	worker, err := actingWorker(r)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	t, err := action(ctx, tid, worker)
	if err != nil {
		h.writeServiceError(ctx, w, failMsg, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, ToResponse(t))
}

// actingWorker reads worker_id from an optional JSON body, falling back to
// the actor recorded by middleware.
func actingWorker(r *http.Request) (id.WorkerID, error) {
	var req WorkerRequest
	if r.Body != nil && r.ContentLength != 0 {
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			return id.WorkerID{}, dErrors.New(dErrors.CodeBadRequest, "invalid request body")
		}
	}
	if req.WorkerID != "" {
		return id.ParseWorkerID(req.WorkerID)
	}
	if actor, ok := requestcontext.Actor(r.Context()); ok {
		return actor, nil
	}
	return id.WorkerID{}, dErrors.New(dErrors.CodeValidation, "worker_id is required")
}

func (h *Handler) writeServiceError(ctx context.Context, w http.ResponseWriter, msg string, err error) {
	code := dErrors.CodeOf(err)
	if code == dErrors.CodeInternal || code == dErrors.CodeTimeout {
		h.logger.ErrorContext(ctx, msg,
			"request_id", requestcontext.RequestID(ctx),
			"error", err,
		)
	} else {
		h.logger.WarnContext(ctx, msg,
			"request_id", requestcontext.RequestID(ctx),
			"code", string(code),
		)
	}
	httputil.WriteError(w, err)
}
