package handler

import (
	"context"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"safereturn/internal/dashboard"
	followupModels "safereturn/internal/followup/models"
	"safereturn/internal/risk"
	"safereturn/pkg/platform/httputil"
	"safereturn/pkg/requestcontext"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

type Service interface {
	Overview(ctx context.Context, f dashboard.Filter) (*dashboard.Overview, error)
}

type Handler struct {
	service Service
	logger  *slog.Logger
}

func New(service Service, logger *slog.Logger) *Handler {
	return &Handler{service: service, logger: logger}
}

func (h *Handler) Register(r chi.Router) {
	r.Get("/dashboard", h.handleOverview)
	r.Get("/dashboard/export.xlsx", h.handleExport)
}

type RowResponse struct {
	ProfileID        string `json:"profile_id"`
	FullName         string `json:"full_name"`
	City             string `json:"city"`
	RiskTier         string `json:"risk_tier"`
	PlanMonth        int    `json:"plan_month"`
	AssignedWorkerID string `json:"assigned_worker_id,omitempty"`
}

type OverviewResponse struct {
	GeneratedAt       time.Time      `json:"generated_at"`
	Tier              string         `json:"tier,omitempty"`
	City              string         `json:"city,omitempty"`
	TierCounts        map[string]int `json:"tier_counts"`
	ActiveTotal       int            `json:"active_total"`
	OpenTickets       int            `json:"open_tickets"`
	InProgressTickets int            `json:"in_progress_tickets"`
	Profiles          []RowResponse  `json:"profiles"`
}

func toResponse(o *dashboard.Overview) OverviewResponse {
	resp := OverviewResponse{
		GeneratedAt:       o.GeneratedAt,
		Tier:              string(o.Filter.Tier),
		City:              string(o.Filter.City),
		TierCounts:        make(map[string]int, len(o.TierCounts)),
		ActiveTotal:       o.Total(),
		OpenTickets:       o.OpenTickets,
		InProgressTickets: o.InProgressTickets,
		Profiles:          make([]RowResponse, 0, len(o.Profiles)),
	}
	for t, n := range o.TierCounts {
		resp.TierCounts[string(t)] = n
	}
	for _, r := range o.Profiles {
		row := RowResponse{
			ProfileID: r.ProfileID.String(),
			FullName:  r.FullName,
			City:      string(r.City),
			RiskTier:  string(r.Tier),
			PlanMonth: r.PlanMonth,
		}
		if r.AssignedWorker != nil {
			row.AssignedWorkerID = r.AssignedWorker.String()
		}
		resp.Profiles = append(resp.Profiles, row)
	}
	return resp
}

func (h *Handler) overview(w http.ResponseWriter, r *http.Request) (*dashboard.Overview, bool) {
	var f dashboard.Filter
	q := r.URL.Query()
	if v := q.Get("tier"); v != "" {
		t, err := risk.ParseTier(strings.ToUpper(v))
		if err != nil {
			httputil.WriteError(w, err)
			return nil, false
		}
		f.Tier = t
	}
	if v := q.Get("city"); v != "" {
		c, err := followupModels.ParseCity(strings.ToLower(v))
		if err != nil {
			httputil.WriteError(w, err)
			return nil, false
		}
		f.City = c
	}
	o, err := h.service.Overview(r.Context(), f)
	if err != nil {
		httputil.WriteError(w, err)
		return nil, false
	}
	return o, true
}

func (h *Handler) handleOverview(w http.ResponseWriter, r *http.Request) {
	o, ok := h.overview(w, r)
	if !ok {
		return
	}
	httputil.WriteJSON(w, http.StatusOK, toResponse(o))
}

func (h *Handler) handleExport(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	o, ok := h.overview(w, r)
	if !ok {
		return
	}
	data, err := dashboard.ExportXLSX(o)
	if err != nil {
		h.logger.ErrorContext(ctx, "failed to export dashboard",
			"request_id", requestcontext.RequestID(ctx),
			"error", err,
		)
		httputil.WriteError(w, err)
		return
	}
	filename := "dashboard-" + o.GeneratedAt.UTC().Format("20060102") + ".xlsx"
	w.Header().Set("Content-Type", xlsxContentType)
	w.Header().Set("Content-Disposition", `attachment; filename="`+filename+`"`)
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(data)
}
