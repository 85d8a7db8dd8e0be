package handler

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"safereturn/internal/followup/models"
	"safereturn/internal/followup/service"
	notificationHandler "safereturn/internal/notifications/handler"
	notificationModels "safereturn/internal/notifications/models"
	"safereturn/internal/risk"
	ticketHandler "safereturn/internal/tickets/handler"
	id "safereturn/pkg/domain"
	dErrors "safereturn/pkg/domain-errors"
	"safereturn/pkg/platform/httputil"
	"safereturn/pkg/requestcontext"
)

// Service defines the follow-up operations exposed over HTTP.
type Service interface {
	CreateProfile(ctx context.Context, in service.CreateProfileInput) (*models.ReleaseProfile, error)
	GetProfile(ctx context.Context, pid id.ProfileID) (*models.ReleaseProfile, error)
	AssignCaseWorker(ctx context.Context, pid id.ProfileID, worker id.WorkerID) (*models.ReleaseProfile, error)
	TerminatePlan(ctx context.Context, pid id.ProfileID, reason string) (*models.ReleaseProfile, error)
	CompletePlan(ctx context.Context, pid id.ProfileID) (*models.ReleaseProfile, error)
	SubmitCheckIn(ctx context.Context, sub models.Submission) (*models.SubmissionResult, error)
	GetRiskSummary(ctx context.Context, pid id.ProfileID) (*models.RiskSummary, error)
	SendMessage(ctx context.Context, pid id.ProfileID, topic, body string) (*notificationModels.Notification, error)
}

// Handler serves profile, check-in and risk summary endpoints.
type Handler struct {
	service Service
	logger  *slog.Logger
}

func New(service Service, logger *slog.Logger) *Handler {
	return &Handler{service: service, logger: logger}
}

func (h *Handler) Register(r chi.Router) {
	r.Post("/profiles", h.handleCreateProfile)
	r.Route("/profiles/{id}", func(r chi.Router) {
		r.Get("/", h.handleGetProfile)
		r.Post("/assign", h.handleAssign)
		r.Post("/terminate", h.handleTerminate)
		r.Post("/complete", h.handleComplete)
		r.Post("/checkins", h.handleSubmitCheckIn)
		r.Get("/risk-summary", h.handleRiskSummary)
		r.Post("/messages", h.handleSendMessage)
	})
}

func (h *Handler) handleCreateProfile(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)

	req, ok := httputil.DecodeAndPrepare[CreateProfileRequest](w, r, h.logger, ctx, requestID)
	if !ok {
		return
	}
	p, err := h.service.CreateProfile(ctx, service.CreateProfileInput{
		NationalID:     req.NationalID,
		FullName:       req.FullName,
		City:           req.City,
		ReleaseDate:    req.releaseDate,
		AssignedWorker: req.worker,
	})
	if err != nil {
		h.writeServiceError(ctx, w, "failed to create profile", err)
		return
	}
	httputil.WriteJSON(w, http.StatusCreated, toProfileResponse(p))
}

func (h *Handler) handleGetProfile(w http.ResponseWriter, r *http.Request) {
	pid, ok := profileID(w, r)
	if !ok {
		return
	}
	p, err := h.service.GetProfile(r.Context(), pid)
	if err != nil {
		h.writeServiceError(r.Context(), w, "failed to get profile", err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, toProfileResponse(p))
}

func (h *Handler) handleAssign(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	pid, ok := profileID(w, r)
	if !ok {
		return
	}
	req, ok := httputil.DecodeAndPrepare[AssignRequest](w, r, h.logger, ctx, requestcontext.RequestID(ctx))
	if !ok {
		return
	}
	p, err := h.service.AssignCaseWorker(ctx, pid, req.worker)
	if err != nil {
		h.writeServiceError(ctx, w, "failed to assign case worker", err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, toProfileResponse(p))
}

func (h *Handler) handleTerminate(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	pid, ok := profileID(w, r)
	if !ok {
		return
	}
	req, ok := httputil.DecodeAndPrepare[TerminateRequest](w, r, h.logger, ctx, requestcontext.RequestID(ctx))
	if !ok {
		return
	}
	p, err := h.service.TerminatePlan(ctx, pid, req.Reason)
	if err != nil {
		h.writeServiceError(ctx, w, "failed to terminate plan", err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, toProfileResponse(p))
}

func (h *Handler) handleComplete(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	pid, ok := profileID(w, r)
	if !ok {
		return
	}
	p, err := h.service.CompletePlan(ctx, pid)
	if err != nil {
		h.writeServiceError(ctx, w, "failed to complete plan", err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, toProfileResponse(p))
}

func (h *Handler) handleSubmitCheckIn(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	pid, ok := profileID(w, r)
	if !ok {
		return
	}
	req, ok := httputil.DecodeAndPrepare[CheckInRequest](w, r, h.logger, ctx, requestcontext.RequestID(ctx))
	if !ok {
		return
	}
	sub := models.Submission{
		ProfileID:  pid,
		MonthIndex: req.MonthIndex,
		Housing:    req.Housing,
		Job:        req.Job,
		Mental:     req.Mental,
		Family:     req.Family,
		Notes:      req.Notes,
	}
	if req.SubmittedAt != nil {
		sub.SubmittedAt = req.SubmittedAt.UTC()
	}
	result, err := h.service.SubmitCheckIn(ctx, sub)
	if err != nil {
		h.writeServiceError(ctx, w, "check-in rejected", err)
		return
	}
	httputil.WriteJSON(w, http.StatusCreated, toSubmissionResponse(result))
}

func (h *Handler) handleRiskSummary(w http.ResponseWriter, r *http.Request) {
	pid, ok := profileID(w, r)
	if !ok {
		return
	}
	summary, err := h.service.GetRiskSummary(r.Context(), pid)
	if err != nil {
		h.writeServiceError(r.Context(), w, "failed to build risk summary", err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, toSummaryResponse(summary))
}

func (h *Handler) handleSendMessage(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	pid, ok := profileID(w, r)
	if !ok {
		return
	}
	req, ok := httputil.DecodeAndPrepare[MessageRequest](w, r, h.logger, ctx, requestcontext.RequestID(ctx))
	if !ok {
		return
	}
	n, err := h.service.SendMessage(ctx, pid, req.Topic, req.Body)
	if err != nil {
		h.writeServiceError(ctx, w, "failed to send message", err)
		return
	}
	httputil.WriteJSON(w, http.StatusCreated, notificationHandler.ToResponse(n))
}

func profileID(w http.ResponseWriter, r *http.Request) (id.ProfileID, bool) {
	pid, err := id.ParseProfileID(chi.URLParam(r, "id"))
	if err != nil {
		httputil.WriteError(w, err)
		return id.ProfileID{}, false
	}
	return pid, true
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

type PlanResponse struct {
	StartDate    string     `json:"start_date"`
	CurrentMonth int        `json:"current_month"`
	Status       string     `json:"status"`
	LastTier     string     `json:"last_risk_tier"`
	ClosedAt     *time.Time `json:"closed_at,omitempty"`
	CloseReason  string     `json:"close_reason,omitempty"`
}

type ProfileResponse struct {
	ID                string       `json:"id"`
	NationalID        string       `json:"national_id"`
	FullName          string       `json:"full_name"`
	City              string       `json:"city"`
	ReleaseDate       string       `json:"release_date"`
	EndOfFollowUpDate string       `json:"end_of_followup_date"`
	AssignedWorkerID  string       `json:"assigned_worker_id,omitempty"`
	Plan              PlanResponse `json:"plan"`
	CreatedAt         time.Time    `json:"created_at"`
	UpdatedAt         time.Time    `json:"updated_at"`
}

func toProfileResponse(p *models.ReleaseProfile) ProfileResponse {
	resp := ProfileResponse{
		ID:                p.ID.String(),
		NationalID:        string(p.NationalID),
		FullName:          p.FullName,
		City:              string(p.City),
		ReleaseDate:       p.ReleaseDate.Format(dateLayout),
		EndOfFollowUpDate: p.EndOfFollowUpDate.Format(dateLayout),
		Plan: PlanResponse{
			StartDate:    p.Plan.StartDate.Format(dateLayout),
			CurrentMonth: p.Plan.CurrentMonth,
			Status:       string(p.Plan.Status),
			LastTier:     string(p.Plan.LastTier),
			ClosedAt:     p.Plan.ClosedAt,
			CloseReason:  p.Plan.CloseReason,
		},
		CreatedAt: p.CreatedAt,
		UpdatedAt: p.UpdatedAt,
	}
	if p.AssignedWorker != nil {
		resp.AssignedWorkerID = p.AssignedWorker.String()
	}
	return resp
}

type SubmissionResponse struct {
	CheckInID            string                                     `json:"checkin_id"`
	MonthIndex           int                                        `json:"month_index"`
	RiskTier             string                                     `json:"risk_tier"`
	PreviousTier         string                                     `json:"previous_tier"`
	PlanStatus           string                                     `json:"plan_status"`
	PlanMonth            int                                        `json:"plan_month"`
	TicketsCreated       []ticketHandler.TicketResponse             `json:"tickets_created"`
	NotificationsEmitted []notificationHandler.NotificationResponse `json:"notifications_emitted"`
}

func toSubmissionResponse(r *models.SubmissionResult) SubmissionResponse {
	resp := SubmissionResponse{
		CheckInID:            r.CheckIn.ID.String(),
		MonthIndex:           r.CheckIn.MonthIndex,
		RiskTier:             string(r.RiskTier),
		PreviousTier:         string(r.PreviousTier),
		PlanStatus:           string(r.PlanStatus),
		PlanMonth:            r.PlanMonth,
		TicketsCreated:       make([]ticketHandler.TicketResponse, 0, len(r.TicketsCreated)),
		NotificationsEmitted: make([]notificationHandler.NotificationResponse, 0, len(r.NotificationsEmitted)),
	}
	for _, t := range r.TicketsCreated {
		resp.TicketsCreated = append(resp.TicketsCreated, ticketHandler.ToResponse(t))
	}
	for _, n := range r.NotificationsEmitted {
		resp.NotificationsEmitted = append(resp.NotificationsEmitted, notificationHandler.ToResponse(n))
	}
	return resp
}

// HistoryResponse is one submitted check-in as shown in a risk summary.
type HistoryResponse struct {
	CheckInID   string    `json:"checkin_id"`
	MonthIndex  int       `json:"month_index"`
	Housing     string    `json:"housing_status"`
	Job         string    `json:"job_status"`
	Mental      string    `json:"mental_state"`
	Family      string    `json:"family_status"`
	Notes       string    `json:"notes,omitempty"`
	Tier        string    `json:"risk_tier"`
	SubmittedAt time.Time `json:"submitted_at"`
}

type SummaryResponse struct {
	ProfileID       string            `json:"profile_id"`
	CurrentTier     string            `json:"current_tier"`
	PlanMonth       int               `json:"plan_month"`
	PlanStatus      string            `json:"plan_status"`
	Progress        int               `json:"progress"`
	Factors         []risk.Factor     `json:"factors"`
	Recommendations []string          `json:"recommendations"`
	History         []HistoryResponse `json:"history"`
}

func toSummaryResponse(s *models.RiskSummary) SummaryResponse {
	resp := SummaryResponse{
		ProfileID:       s.ProfileID.String(),
		CurrentTier:     string(s.CurrentTier),
		PlanMonth:       s.PlanMonth,
		PlanStatus:      string(s.PlanStatus),
		Progress:        s.Progress,
		Factors:         s.Factors,
		Recommendations: s.Recommendations,
		History:         make([]HistoryResponse, 0, len(s.History)),
	}
	for _, e := range s.History {
		resp.History = append(resp.History, HistoryResponse{
			CheckInID:   e.ID.String(),
			MonthIndex:  e.MonthIndex,
			Housing:     string(e.Assessment.Housing),
			Job:         string(e.Assessment.Job),
			Mental:      string(e.Assessment.Mental),
			Family:      string(e.Assessment.Family),
			Notes:       e.Notes,
			Tier:        string(e.Tier),
			SubmittedAt: e.SubmittedAt,
		})
	}
	return resp
}
