package store

import (
	"context"
	"sort"
	"sync"

	"safereturn/internal/followup/models"
	"safereturn/internal/risk"
	id "safereturn/pkg/domain"
	"safereturn/pkg/platform/sentinel"
)

// InMemoryProfileStore keeps profiles in a map. Reads return copies so a
// caller's edits are invisible until Update.
type InMemoryProfileStore struct {
	mu         sync.RWMutex
	profiles   map[id.ProfileID]*models.ReleaseProfile
	byNational map[id.NationalID]id.ProfileID
}

func NewInMemoryProfiles() *InMemoryProfileStore {
	return &InMemoryProfileStore{
		profiles:   make(map[id.ProfileID]*models.ReleaseProfile),
		byNational: make(map[id.NationalID]id.ProfileID),
	}
}

func (s *InMemoryProfileStore) Create(_ context.Context, p *models.ReleaseProfile) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.byNational[p.NationalID]; ok {
		return sentinel.ErrConflict
	}
	if _, ok := s.profiles[p.ID]; ok {
		return sentinel.ErrConflict
	}
	cp := *p
	s.profiles[p.ID] = &cp
	s.byNational[p.NationalID] = p.ID
	return nil
}

func (s *InMemoryProfileStore) FindByID(_ context.Context, pid id.ProfileID) (*models.ReleaseProfile, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	p, ok := s.profiles[pid]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	cp := *p
	return &cp, nil
}

// FindByIDForUpdate is FindByID; in memory the caller's shard lock is the row lock.
func (s *InMemoryProfileStore) FindByIDForUpdate(ctx context.Context, pid id.ProfileID) (*models.ReleaseProfile, error) {
	return s.FindByID(ctx, pid)
}

func (s *InMemoryProfileStore) Update(_ context.Context, p *models.ReleaseProfile) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.profiles[p.ID]; !ok {
		return sentinel.ErrNotFound
	}
	cp := *p
	s.profiles[p.ID] = &cp
	return nil
}

// List returns matching profiles ordered by creation time.
func (s *InMemoryProfileStore) List(_ context.Context, f models.ProfileFilter) ([]*models.ReleaseProfile, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []*models.ReleaseProfile
	for _, p := range s.profiles {
		if f.Status != "" && p.Plan.Status != f.Status {
			continue
		}
		if f.Tier != "" && p.Plan.LastTier != f.Tier {
			continue
		}
		if f.City != "" && p.City != f.City {
			continue
		}
		cp := *p
		out = append(out, &cp)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out, nil
}

// CountActiveByTier counts active plans with the given cached tier.
func (s *InMemoryProfileStore) CountActiveByTier(_ context.Context, tier risk.Tier) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	n := 0
	for _, p := range s.profiles {
		if p.Plan.IsActive() && p.Plan.LastTier == tier {
			n++
		}
	}
	return n, nil
}

type checkInKey struct {
	profile id.ProfileID
	month   int
}

// InMemoryCheckInStore is append-only; (profile, month) is unique.
type InMemoryCheckInStore struct {
	mu       sync.RWMutex
	checkins map[checkInKey]*models.CheckIn
}

func NewInMemoryCheckIns() *InMemoryCheckInStore {
	return &InMemoryCheckInStore{checkins: make(map[checkInKey]*models.CheckIn)}
}

func (s *InMemoryCheckInStore) Save(_ context.Context, c *models.CheckIn) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	key := checkInKey{c.ProfileID, c.MonthIndex}
	if _, ok := s.checkins[key]; ok {
		return sentinel.ErrConflict
	}
	cp := *c
	s.checkins[key] = &cp
	return nil
}

func (s *InMemoryCheckInStore) FindByProfileAndMonth(_ context.Context, pid id.ProfileID, month int) (*models.CheckIn, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	c, ok := s.checkins[checkInKey{pid, month}]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	cp := *c
	return &cp, nil
}

// ListByProfile returns check-ins in month order.
func (s *InMemoryCheckInStore) ListByProfile(_ context.Context, pid id.ProfileID) ([]*models.CheckIn, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []*models.CheckIn
	for key, c := range s.checkins {
		if key.profile != pid {
			continue
		}
		cp := *c
		out = append(out, &cp)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].MonthIndex < out[j].MonthIndex })
	return out, nil
}
