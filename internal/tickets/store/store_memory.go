package store

import (
	"context"
	"sort"
	"sync"

	"safereturn/internal/tickets/models"
	id "safereturn/pkg/domain"
	"safereturn/pkg/platform/sentinel"
)

// InMemoryStore keeps tickets in a map. Reads return copies.
type InMemoryStore struct {
	mu      sync.RWMutex
	tickets map[id.TicketID]*models.SupportTicket
}

func NewInMemory() *InMemoryStore {
	return &InMemoryStore{tickets: make(map[id.TicketID]*models.SupportTicket)}
}

func (s *InMemoryStore) Create(_ context.Context, t *models.SupportTicket) error {
	if t.CheckInID == nil && t.CreatedBy == nil {
		return sentinel.ErrInvalidState
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.tickets[t.ID]; ok {
		return sentinel.ErrConflict
	}
	cp := *t
	s.tickets[t.ID] = &cp
	return nil
}

func (s *InMemoryStore) FindByID(_ context.Context, tid id.TicketID) (*models.SupportTicket, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	t, ok := s.tickets[tid]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	cp := *t
	return &cp, nil
}

// FindByIDForUpdate is FindByID; the caller's unit-of-work lock covers it.
func (s *InMemoryStore) FindByIDForUpdate(ctx context.Context, tid id.TicketID) (*models.SupportTicket, error) {
	return s.FindByID(ctx, tid)
}

func (s *InMemoryStore) Update(_ context.Context, t *models.SupportTicket) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.tickets[t.ID]; !ok {
		return sentinel.ErrNotFound
	}
	cp := *t
	s.tickets[t.ID] = &cp
	return nil
}

// List returns matching tickets, newest first.
func (s *InMemoryStore) List(_ context.Context, f models.Filter) ([]*models.SupportTicket, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []*models.SupportTicket
	for _, t := range s.tickets {
		if !f.Matches(t) {
			continue
		}
		cp := *t
		out = append(out, &cp)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].Category < out[j].Category
		}
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	return out, nil
}

func (s *InMemoryStore) PendingCategories(_ context.Context, pid id.ProfileID) (map[models.Category]bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make(map[models.Category]bool)
	for _, t := range s.tickets {
		if t.ProfileID == pid && t.Status.IsPending() {
			out[t.Category] = true
		}
	}
	return out, nil
}

func (s *InMemoryStore) CountByStatus(_ context.Context, status models.Status) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	n := 0
	for _, t := range s.tickets {
		if t.Status == status {
			n++
		}
	}
	return n, nil
}
