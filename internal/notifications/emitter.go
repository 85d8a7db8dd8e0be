// Package notifications records pull-based notifications for beneficiaries
// and case workers. Nothing is pushed; recipients list their inbox.
package notifications

import (
	"context"
	"fmt"
	"log/slog"

	"safereturn/internal/notifications/metrics"
	"safereturn/internal/notifications/models"
	"safereturn/internal/risk"
	id "safereturn/pkg/domain"
	"safereturn/pkg/requestcontext"
)

// Store is the write side the emitter needs.
type Store interface {
	Save(ctx context.Context, n *models.Notification) error
}

// Subject is the profile a notification is about.
type Subject struct {
	ProfileID      id.ProfileID
	FullName       string
	AssignedWorker *id.WorkerID
}

// Emitter persists notifications on a best-effort basis. Store failures are
// logged and counted but never returned to the caller; every method returns
// only the notifications that were actually stored.
type Emitter struct {
	store   Store
	logger  *slog.Logger
	metrics *metrics.Metrics
}

type Option func(*Emitter)

func WithLogger(logger *slog.Logger) Option {
	return func(e *Emitter) {
		e.logger = logger
	}
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(e *Emitter) {
		e.metrics = m
	}
}

func NewEmitter(store Store, opts ...Option) *Emitter {
	e := &Emitter{store: store, logger: slog.Default()}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

var tierMessages = map[risk.Tier]string{
	risk.TierGreen:  "Your situation looks stable. Keep it up!",
	risk.TierYellow: "There are some concerns. A case worker will contact you soon.",
	risk.TierRed:    "We need to reach you urgently. Please expect a call from your case worker.",
}

// TierChanged notifies the beneficiary and the responsible worker (or the
// pool) that the cached tier moved.
func (e *Emitter) TierChanged(ctx context.Context, s Subject, from, to risk.Tier) []*models.Notification {
	if from == to {
		return nil
	}
	return collect(
		e.emit(ctx, "tier_changed", models.Beneficiary(s.ProfileID), tierMessages[to], beneficiaryLink(s.ProfileID)),
		e.emit(ctx, "tier_changed", models.WorkerOrPool(s.AssignedWorker),
			fmt.Sprintf("%s moved from %s to %s", s.FullName, from, to), workerLink(s.ProfileID)),
	)
}

// TicketRaised notifies about a new ticket. Auto-generated tickets go to the
// assigned worker or the pool; manual tickets go to the beneficiary.
func (e *Emitter) TicketRaised(ctx context.Context, s Subject, ticketID id.TicketID, category string, auto bool) []*models.Notification {
	if auto {
		return collect(e.emit(ctx, "ticket_raised", models.WorkerOrPool(s.AssignedWorker),
			fmt.Sprintf("%s needs %s support", s.FullName, category), ticketLink(ticketID)))
	}
	return collect(e.emit(ctx, "ticket_raised", models.Beneficiary(s.ProfileID),
		fmt.Sprintf("A %s support request was opened for you", category), ticketLink(ticketID)))
}

// TicketStatusChanged tells the beneficiary a ticket moved.
func (e *Emitter) TicketStatusChanged(ctx context.Context, profileID id.ProfileID, ticketID id.TicketID, category, status string) []*models.Notification {
	return collect(e.emit(ctx, "ticket_status_changed", models.Beneficiary(profileID),
		fmt.Sprintf("Your %s support request is now %s", category, status), ticketLink(ticketID)))
}

// PlanClosed tells the beneficiary the follow-up plan ended.
func (e *Emitter) PlanClosed(ctx context.Context, s Subject, status, reason string) []*models.Notification {
	msg := "Your follow-up plan is " + status
	if reason != "" {
		msg += ": " + reason
	}
	return collect(e.emit(ctx, "plan_closed", models.Beneficiary(s.ProfileID), msg, beneficiaryLink(s.ProfileID)))
}

// MessageSent delivers a beneficiary's message to the assigned worker, or
// to the pool when nobody is assigned.
func (e *Emitter) MessageSent(ctx context.Context, s Subject, topic, body string) []*models.Notification {
	return collect(e.emit(ctx, "message_sent", models.WorkerOrPool(s.AssignedWorker),
		fmt.Sprintf("Message from %s (%s): %s", s.FullName, topic, body), beneficiaryLink(s.ProfileID)))
}

func (e *Emitter) emit(ctx context.Context, event string, to models.Recipient, message, link string) *models.Notification {
	n := &models.Notification{
		ID:        id.NewNotificationID(),
		Recipient: to,
		Message:   message,
		Link:      link,
		CreatedAt: requestcontext.Now(ctx),
	}
	if err := e.store.Save(ctx, n); err != nil {
		e.metrics.IncFailure(event)
		e.logger.ErrorContext(ctx, "failed to emit notification",
			"request_id", requestcontext.RequestID(ctx),
			"event", event,
			"recipient_kind", string(to.Kind),
			"error", err,
		)
		return nil
	}
	e.metrics.IncEmitted(event, string(to.Kind))
	return n
}

func collect(ns ...*models.Notification) []*models.Notification {
	var out []*models.Notification
	for _, n := range ns {
		if n != nil {
			out = append(out, n)
		}
	}
	return out
}

func beneficiaryLink(p id.ProfileID) string { return "/profiles/" + p.String() }
func workerLink(p id.ProfileID) string      { return "/profiles/" + p.String() + "/risk-summary" }
func ticketLink(t id.TicketID) string       { return "/tickets/" + t.String() }
