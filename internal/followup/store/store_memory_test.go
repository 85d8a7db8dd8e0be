package store

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"safereturn/internal/followup/models"
	"safereturn/internal/risk"
	id "safereturn/pkg/domain"
	"safereturn/pkg/platform/sentinel"
)

var created = time.Date(2026, 1, 10, 9, 0, 0, 0, time.UTC)

func newProfile(national string, at time.Time) *models.ReleaseProfile {
	p, err := models.NewReleaseProfile(id.NationalID(national), "Test Person", models.CityMedina, created, at)
	if err != nil {
		panic(err)
	}
	return p
}

type InMemoryStoreSuite struct {
	suite.Suite
	ctx      context.Context
	profiles *InMemoryProfileStore
	checkins *InMemoryCheckInStore
}

func TestInMemoryStoreSuite(t *testing.T) {
	suite.Run(t, new(InMemoryStoreSuite))
}

func (s *InMemoryStoreSuite) SetupTest() {
	s.ctx = context.Background()
	s.profiles = NewInMemoryProfiles()
	s.checkins = NewInMemoryCheckIns()
}

func (s *InMemoryStoreSuite) TestProfileCreateAndFind() {
	p := newProfile("1000000001", created)
	s.Require().NoError(s.profiles.Create(s.ctx, p))

	s.Run("national id is unique", func() {
		s.ErrorIs(s.profiles.Create(s.ctx, newProfile("1000000001", created)), sentinel.ErrConflict)
	})

	s.Run("reads are copies", func() {
		got, err := s.profiles.FindByID(s.ctx, p.ID)
		s.Require().NoError(err)
		got.Plan.CurrentMonth = 7
		again, err := s.profiles.FindByIDForUpdate(s.ctx, p.ID)
		s.Require().NoError(err)
		s.Equal(1, again.Plan.CurrentMonth)
	})

	s.Run("missing", func() {
		_, err := s.profiles.FindByID(s.ctx, id.NewProfileID())
		s.ErrorIs(err, sentinel.ErrNotFound)
		s.ErrorIs(s.profiles.Update(s.ctx, newProfile("1000000099", created)), sentinel.ErrNotFound)
	})
}

func (s *InMemoryStoreSuite) TestListAndCount() {
	red := newProfile("1000000002", created)
	red.Plan.LastTier = risk.TierRed
	green := newProfile("1000000003", created.Add(time.Minute))
	closed := newProfile("1000000004", created.Add(2*time.Minute))
	closed.Plan.LastTier = risk.TierRed
	s.Require().NoError(closed.Plan.Terminate("moved", created))
	for _, p := range []*models.ReleaseProfile{red, green, closed} {
		s.Require().NoError(s.profiles.Create(s.ctx, p))
	}

	all, err := s.profiles.List(s.ctx, models.ProfileFilter{})
	s.Require().NoError(err)
	s.Require().Len(all, 3)
	s.Equal(red.ID, all[0].ID)

	reds, err := s.profiles.List(s.ctx, models.ProfileFilter{Tier: risk.TierRed, Status: models.PlanActive})
	s.Require().NoError(err)
	s.Require().Len(reds, 1)
	s.Equal(red.ID, reds[0].ID)

	elsewhere := newProfile("1000000005", created.Add(3*time.Minute))
	elsewhere.City = models.CityJeddah
	s.Require().NoError(s.profiles.Create(s.ctx, elsewhere))
	jeddah, err := s.profiles.List(s.ctx, models.ProfileFilter{City: models.CityJeddah})
	s.Require().NoError(err)
	s.Require().Len(jeddah, 1)
	s.Equal(elsewhere.ID, jeddah[0].ID)

	n, err := s.profiles.CountActiveByTier(s.ctx, risk.TierRed)
	s.Require().NoError(err)
	s.Equal(1, n)
}

func (s *InMemoryStoreSuite) TestCheckInsUniquePerMonth() {
	pid := id.NewProfileID()
	for _, month := range []int{2, 1} {
		s.Require().NoError(s.checkins.Save(s.ctx, &models.CheckIn{ID: id.NewCheckInID(), ProfileID: pid, MonthIndex: month}))
	}
	s.ErrorIs(s.checkins.Save(s.ctx, &models.CheckIn{ID: id.NewCheckInID(), ProfileID: pid, MonthIndex: 1}), sentinel.ErrConflict)

	list, err := s.checkins.ListByProfile(s.ctx, pid)
	s.Require().NoError(err)
	s.Require().Len(list, 2)
	s.Equal(1, list[0].MonthIndex)

	_, err = s.checkins.FindByProfileAndMonth(s.ctx, pid, 3)
	s.ErrorIs(err, sentinel.ErrNotFound)
}
