package service

import (
	"github.com/google/uuid"

	"safereturn/internal/followup/models"
	notificationModels "safereturn/internal/notifications/models"
	"safereturn/internal/risk"
	id "safereturn/pkg/domain"
	dErrors "safereturn/pkg/domain-errors"
)

func (s *SubmitSuite) TestCreateProfile() {
	s.Run("rejects duplicate national id", func() {
		p := s.enroll()
		_, err := s.service.CreateProfile(s.ctx, CreateProfileInput{
			NationalID: string(p.NationalID), FullName: "Other", City: "taif", ReleaseDate: releaseDate,
		})
		s.True(dErrors.HasCode(err, dErrors.CodeConflict))
	})

	s.Run("rejects unknown city", func() {
		_, err := s.service.CreateProfile(s.ctx, CreateProfileInput{
			NationalID: nextNationalID(), FullName: "X", City: "atlantis", ReleaseDate: releaseDate,
		})
		s.True(dErrors.HasCode(err, dErrors.CodeInvalidEnum))
	})

	s.Run("rejects malformed national id", func() {
		_, err := s.service.CreateProfile(s.ctx, CreateProfileInput{
			NationalID: "12ab", FullName: "X", City: "taif", ReleaseDate: releaseDate,
		})
		s.True(dErrors.HasCode(err, dErrors.CodeInvalidInput))
	})
}

func (s *SubmitSuite) TestTerminatePlan() {
	p := s.enroll()
	got, err := s.service.TerminatePlan(s.ctx, p.ID, "re-arrested")
	s.Require().NoError(err)
	s.Equal(models.PlanTerminated, got.Plan.Status)

	_, err = s.service.SubmitCheckIn(s.ctx, stable(p, 1))
	s.True(dErrors.HasCode(err, dErrors.CodePlanNotActive))

	_, err = s.service.TerminatePlan(s.ctx, p.ID, "again")
	s.True(dErrors.HasCode(err, dErrors.CodePlanNotActive))

	inbox, err := s.notifications.ListByRecipient(s.ctx, notificationModels.Beneficiary(p.ID), false)
	s.Require().NoError(err)
	s.Require().Len(inbox, 1)
	s.Contains(inbox[0].Message, "re-arrested")
}

func (s *SubmitSuite) TestCompletePlan() {
	p := s.enroll()
	_, err := s.service.SubmitCheckIn(s.ctx, stable(p, 1))
	s.Require().NoError(err)

	got, err := s.service.CompletePlan(s.ctx, p.ID)
	s.Require().NoError(err)
	s.Equal(models.PlanCompleted, got.Plan.Status)
	s.Equal(2, got.Plan.CurrentMonth)

	_, err = s.service.CompletePlan(s.ctx, p.ID)
	s.True(dErrors.HasCode(err, dErrors.CodePlanNotActive))
}

func (s *SubmitSuite) TestAssignCaseWorker() {
	_, err := s.service.AssignCaseWorker(s.ctx, id.NewProfileID(), id.WorkerID(uuid.New()))
	s.True(dErrors.HasCode(err, dErrors.CodeNotFound))

	p := s.enroll()
	_, err = s.service.AssignCaseWorker(s.ctx, p.ID, id.WorkerID(uuid.Nil))
	s.True(dErrors.HasCode(err, dErrors.CodeValidation))
}

func (s *SubmitSuite) TestGetRiskSummary() {
	s.Run("before any check-in", func() {
		p := s.enroll()
		summary, err := s.service.GetRiskSummary(s.ctx, p.ID)
		s.Require().NoError(err)
		s.Equal(risk.TierGreen, summary.CurrentTier)
		s.Equal(0, summary.Progress)
		s.Empty(summary.Factors)
		s.Equal([]string{risk.FirstCheckInRecommendation}, summary.Recommendations)
	})

	s.Run("reflects the latest check-in only", func() {
		p := s.enroll()
		_, err := s.service.SubmitCheckIn(s.ctx, sub(p, 1, "homeless", "unemployed", "bad", "problematic"))
		s.Require().NoError(err)
		_, err = s.service.SubmitCheckIn(s.ctx, sub(p, 2, "stable", "employed", "good", "no_contact"))
		s.Require().NoError(err)

		summary, err := s.service.GetRiskSummary(s.ctx, p.ID)
		s.Require().NoError(err)
		s.Equal(risk.TierGreen, summary.CurrentTier)
		s.Equal(3, summary.PlanMonth)
		s.Equal(16, summary.Progress)
		s.Require().Len(summary.History, 2)
		s.Equal(risk.TierRed, summary.History[0].Tier)
		s.Equal(risk.TierGreen, summary.History[1].Tier)
		s.Equal(risk.Assessment{
			Housing: risk.HousingHomeless,
			Job:     risk.JobUnemployed,
			Mental:  risk.MentalBad,
			Family:  risk.FamilyProblematic,
		}, summary.History[0].Assessment)
		s.Equal(risk.FamilyNoContact, summary.History[1].Assessment.Family)
		s.Equal(2, summary.History[1].MonthIndex)
		s.Require().Len(summary.Factors, 1)
		s.Equal("family_no_contact", summary.Factors[0].Code)
	})

	s.Run("tier is recomputable from the latest check-in", func() {
		p := s.enroll()
		_, err := s.service.SubmitCheckIn(s.ctx, sub(p, 1, "temporary", "unemployed", "moderate", "neutral"))
		s.Require().NoError(err)
		history, err := s.checkins.ListByProfile(s.ctx, p.ID)
		s.Require().NoError(err)
		got, err := s.service.GetProfile(s.ctx, p.ID)
		s.Require().NoError(err)
		s.Equal(risk.Classify(history[len(history)-1].Assessment), got.Plan.LastTier)
	})

	s.Run("unknown profile", func() {
		_, err := s.service.GetRiskSummary(s.ctx, id.NewProfileID())
		s.True(dErrors.HasCode(err, dErrors.CodeNotFound))
	})
}
