package handler

import (
	"context"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"safereturn/internal/notifications/models"
	id "safereturn/pkg/domain"
	dErrors "safereturn/pkg/domain-errors"
	"safereturn/pkg/platform/httputil"
	"safereturn/pkg/requestcontext"
)

// Service defines the notification inbox operations.
type Service interface {
	List(ctx context.Context, r models.Recipient, unreadOnly bool) ([]*models.Notification, error)
	MarkRead(ctx context.Context, nid id.NotificationID) (*models.Notification, error)
}

type Handler struct {
	service Service
	logger  *slog.Logger
}

func New(service Service, logger *slog.Logger) *Handler {
	return &Handler{service: service, logger: logger}
}

func (h *Handler) Register(r chi.Router) {
	r.Get("/notifications", h.handleList)
	r.Post("/notifications/{id}/read", h.handleMarkRead)
}

type NotificationResponse struct {
	ID            string    `json:"id"`
	RecipientKind string    `json:"recipient_kind"`
	RecipientID   string    `json:"recipient_id,omitempty"`
	Message       string    `json:"message"`
	Link          string    `json:"link,omitempty"`
	IsRead        bool      `json:"is_read"`
	CreatedAt     time.Time `json:"created_at"`
}

type ListResponse struct {
	Notifications []NotificationResponse `json:"notifications"`
	Count         int                    `json:"count"`
}

// ToResponse renders a notification for the API.
func ToResponse(n *models.Notification) NotificationResponse {
	resp := NotificationResponse{
		ID:            n.ID.String(),
		RecipientKind: string(n.Recipient.Kind),
		Message:       n.Message,
		Link:          n.Link,
		IsRead:        n.IsRead,
		CreatedAt:     n.CreatedAt,
	}
	if n.Recipient.ID != uuid.Nil {
		resp.RecipientID = n.Recipient.ID.String()
	}
	return resp
}

func (h *Handler) handleList(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)

	recipient, unread, err := parseListQuery(r)
	if err != nil {
		h.logger.WarnContext(ctx, "invalid notification query",
			"request_id", requestID,
			"error", err,
		)
		httputil.WriteError(w, err)
		return
	}

	items, err := h.service.List(ctx, recipient, unread)
	if err != nil {
		h.logger.ErrorContext(ctx, "failed to list notifications",
			"request_id", requestID,
			"error", err,
		)
		httputil.WriteError(w, err)
		return
	}

	resp := ListResponse{Notifications: make([]NotificationResponse, 0, len(items)), Count: len(items)}
	for _, n := range items {
		resp.Notifications = append(resp.Notifications, ToResponse(n))
	}
	httputil.WriteJSON(w, http.StatusOK, resp)
}

func parseListQuery(r *http.Request) (models.Recipient, bool, error) {
	q := r.URL.Query()
	kind, err := models.ParseRecipientKind(q.Get("recipient_kind"))
	if err != nil {
		return models.Recipient{}, false, err
	}
	recipient := models.Recipient{Kind: kind}
	if raw := q.Get("recipient_id"); raw != "" {
		parsed, err := uuid.Parse(raw)
		if err != nil {
			return models.Recipient{}, false, dErrors.New(dErrors.CodeInvalidInput, "invalid recipient_id")
		}
		recipient.ID = parsed
	}
	unread := false
	if raw := q.Get("unread"); raw != "" {
		unread, err = strconv.ParseBool(raw)
		if err != nil {
			return models.Recipient{}, false, dErrors.New(dErrors.CodeInvalidInput, "unread must be a boolean")
		}
	}
	return recipient, unread, nil
}

func (h *Handler) handleMarkRead(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)

	nid, err := id.ParseNotificationID(chi.URLParam(r, "id"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	n, err := h.service.MarkRead(ctx, nid)
	if err != nil {
		if !dErrors.HasCode(err, dErrors.CodeNotFound) {
			h.logger.ErrorContext(ctx, "failed to mark notification read",
				"request_id", requestID,
				"notification_id", nid.String(),
				"error", err,
			)
		}
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, ToResponse(n))
}
