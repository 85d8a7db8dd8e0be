package store

import (
	"context"
	"sort"
	"sync"

	"safereturn/internal/notifications/models"
	id "safereturn/pkg/domain"
	"safereturn/pkg/platform/sentinel"
)

// InMemoryStore keeps notifications in a map, for tests and single-node runs.
type InMemoryStore struct {
	mu    sync.RWMutex
	items map[id.NotificationID]*models.Notification
}

func NewInMemory() *InMemoryStore {
	return &InMemoryStore{items: make(map[id.NotificationID]*models.Notification)}
}

func (s *InMemoryStore) Save(_ context.Context, n *models.Notification) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.items[n.ID]; ok {
		return sentinel.ErrConflict
	}
	cp := *n
	s.items[n.ID] = &cp
	return nil
}

// ListByRecipient returns newest first.
func (s *InMemoryStore) ListByRecipient(_ context.Context, r models.Recipient, unreadOnly bool) ([]*models.Notification, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []*models.Notification
	for _, n := range s.items {
		if n.Recipient != r || (unreadOnly && n.IsRead) {
			continue
		}
		cp := *n
		out = append(out, &cp)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (s *InMemoryStore) MarkRead(_ context.Context, nid id.NotificationID) (*models.Notification, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	n, ok := s.items[nid]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	n.IsRead = true
	cp := *n
	return &cp, nil
}
