package handler

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/suite"

	"safereturn/internal/followup/service"
	"safereturn/internal/followup/store"
	"safereturn/internal/notifications"
	notificationHandler "safereturn/internal/notifications/handler"
	notificationStore "safereturn/internal/notifications/store"
	ticketStore "safereturn/internal/tickets/store"
	"safereturn/pkg/testutil"
)

type HandlerSuite struct {
	suite.Suite
	router chi.Router
}

func TestHandlerSuite(t *testing.T) {
	suite.Run(t, new(HandlerSuite))
}

func (s *HandlerSuite) SetupTest() {
	emitter := notifications.NewEmitter(notificationStore.NewInMemory(), notifications.WithLogger(testutil.DiscardLogger()))
	svc := service.New(store.NewInMemoryProfiles(), store.NewInMemoryCheckIns(), ticketStore.NewInMemory(),
		service.NewShardedTx(time.Second), emitter, service.WithLogger(testutil.DiscardLogger()))
	s.router = chi.NewRouter()
	New(svc, testutil.DiscardLogger()).Register(s.router)
}

func (s *HandlerSuite) enroll(nationalID string) ProfileResponse {
	rr := testutil.DoRequest(s.router, testutil.NewJSONRequest(s.T(), http.MethodPost, "/profiles", map[string]string{
		"national_id":  nationalID,
		"full_name":    " Sara M. ",
		"city":         "Dammam",
		"release_date": "2025-01-01",
	}))
	s.Require().Equal(http.StatusCreated, rr.Code, rr.Body.String())
	return *testutil.UnmarshalResponse[ProfileResponse](s.T(), rr)
}

func (s *HandlerSuite) checkIn(pid string, body map[string]any) *httptest.ResponseRecorder {
	return testutil.DoRequest(s.router, testutil.NewJSONRequest(s.T(), http.MethodPost, "/profiles/"+pid+"/checkins", body))
}

func checkInBody(month int, housing, job, mental, family string) map[string]any {
	return map[string]any{
		"month_index":    month,
		"housing_status": housing,
		"job_status":     job,
		"mental_state":   mental,
		"family_status":  family,
	}
}

func (s *HandlerSuite) TestCreateProfile() {
	s.Run("enrolls with an active plan", func() {
		p := s.enroll("2000000001")
		s.Equal("Sara M.", p.FullName)
		s.Equal("dammam", p.City)
		s.Equal("2025-01-01", p.ReleaseDate)
		s.Equal("2026-01-01", p.EndOfFollowUpDate)
		s.Equal("active", p.Plan.Status)
		s.Equal(1, p.Plan.CurrentMonth)
		s.Equal("GREEN", p.Plan.LastTier)
	})

	s.Run("duplicate national id", func() {
		rr := testutil.DoRequest(s.router, testutil.NewJSONRequest(s.T(), http.MethodPost, "/profiles", map[string]string{
			"national_id": "2000000001", "full_name": "Other", "city": "riyadh", "release_date": "2025-02-01",
		}))
		testutil.AssertStatusAndError(s.T(), rr, http.StatusConflict, "conflict")
	})

	s.Run("bad release date", func() {
		rr := testutil.DoRequest(s.router, testutil.NewJSONRequest(s.T(), http.MethodPost, "/profiles", map[string]string{
			"national_id": "2000000002", "full_name": "Other", "city": "riyadh", "release_date": "01/02/2025",
		}))
		testutil.AssertStatusAndError(s.T(), rr, http.StatusBadRequest, "validation_error")
	})

	s.Run("unknown city", func() {
		rr := testutil.DoRequest(s.router, testutil.NewJSONRequest(s.T(), http.MethodPost, "/profiles", map[string]string{
			"national_id": "2000000003", "full_name": "Other", "city": "atlantis", "release_date": "2025-02-01",
		}))
		testutil.AssertStatusAndError(s.T(), rr, http.StatusBadRequest, "invalid_enum")
	})
}

func (s *HandlerSuite) TestSubmitCheckIn() {
	p := s.enroll("2000000010")

	s.Run("red check-in raises tickets", func() {
		rr := s.checkIn(p.ID, checkInBody(1, "homeless", "unemployed", "bad", "problematic"))
		s.Require().Equal(http.StatusCreated, rr.Code, rr.Body.String())
		res := testutil.UnmarshalResponse[SubmissionResponse](s.T(), rr)
		s.Equal("RED", res.RiskTier)
		s.Equal("GREEN", res.PreviousTier)
		s.Equal(2, res.PlanMonth)
		s.Len(res.TicketsCreated, 4)
		s.NotEmpty(res.NotificationsEmitted)
		for _, t := range res.TicketsCreated {
			s.True(t.AutoGenerated)
			s.Equal(res.CheckInID, t.CheckInID)
		}
	})

	s.Run("duplicate month", func() {
		rr := s.checkIn(p.ID, checkInBody(1, "stable", "employed", "good", "supportive"))
		testutil.AssertStatusAndError(s.T(), rr, http.StatusConflict, "duplicate_submission")
	})

	s.Run("invalid enum", func() {
		rr := s.checkIn(p.ID, checkInBody(2, "castle", "employed", "good", "supportive"))
		testutil.AssertStatusAndError(s.T(), rr, http.StatusBadRequest, "invalid_enum")
	})

	s.Run("skipping ahead", func() {
		rr := s.checkIn(p.ID, checkInBody(4, "stable", "employed", "good", "supportive"))
		testutil.AssertStatusAndError(s.T(), rr, http.StatusConflict, "plan_not_active")
	})

	s.Run("unknown profile", func() {
		rr := s.checkIn(uuid.NewString(), checkInBody(1, "stable", "employed", "good", "supportive"))
		testutil.AssertStatusAndError(s.T(), rr, http.StatusNotFound, "not_found")
	})

	s.Run("malformed profile id", func() {
		rr := s.checkIn("abc", checkInBody(1, "stable", "employed", "good", "supportive"))
		testutil.AssertStatusAndError(s.T(), rr, http.StatusBadRequest, "invalid_input")
	})
}

func (s *HandlerSuite) TestRiskSummary() {
	p := s.enroll("2000000020")
	body := checkInBody(1, "temporary", "unemployed", "good", "supportive")
	body["notes"] = "looking for work in the port"
	s.Require().Equal(http.StatusCreated, s.checkIn(p.ID, body).Code)

	rr := testutil.DoRequest(s.router, httptest.NewRequest(http.MethodGet, "/profiles/"+p.ID+"/risk-summary", nil))
	s.Require().Equal(http.StatusOK, rr.Code, rr.Body.String())
	summary := testutil.UnmarshalResponse[SummaryResponse](s.T(), rr)
	s.Equal("YELLOW", summary.CurrentTier)
	s.Equal(2, summary.PlanMonth)
	s.Require().Len(summary.History, 1)
	entry := summary.History[0]
	s.Equal("YELLOW", entry.Tier)
	s.Equal(1, entry.MonthIndex)
	s.NotEmpty(entry.CheckInID)
	s.Equal("temporary", entry.Housing)
	s.Equal("unemployed", entry.Job)
	s.Equal("good", entry.Mental)
	s.Equal("supportive", entry.Family)
	s.Equal("looking for work in the port", entry.Notes)
	s.NotEmpty(summary.Factors)
	s.NotEmpty(summary.Recommendations)
}

func (s *HandlerSuite) TestSendMessage() {
	p := s.enroll("2000000040")
	path := "/profiles/" + p.ID + "/messages"

	rr := testutil.DoRequest(s.router, testutil.NewJSONRequest(s.T(), http.MethodPost, path, map[string]string{
		"topic": " Housing ",
		"body":  "landlord wants the deposit",
	}))
	s.Require().Equal(http.StatusCreated, rr.Code, rr.Body.String())
	sent := testutil.UnmarshalResponse[notificationHandler.NotificationResponse](s.T(), rr)
	s.Equal("worker_pool", sent.RecipientKind)
	s.Empty(sent.RecipientID)
	s.Equal("Message from Sara M. (housing): landlord wants the deposit", sent.Message)
	s.Equal("/profiles/"+p.ID, sent.Link)
	s.False(sent.IsRead)

	s.Run("empty body", func() {
		rr := testutil.DoRequest(s.router, testutil.NewJSONRequest(s.T(), http.MethodPost, path, map[string]string{"body": "  "}))
		testutil.AssertStatusAndError(s.T(), rr, http.StatusBadRequest, "validation_error")
	})

	s.Run("unknown topic", func() {
		rr := testutil.DoRequest(s.router, testutil.NewJSONRequest(s.T(), http.MethodPost, path, map[string]string{"topic": "legal", "body": "hi"}))
		testutil.AssertStatusAndError(s.T(), rr, http.StatusBadRequest, "invalid_enum")
	})

	s.Run("unknown profile", func() {
		rr := testutil.DoRequest(s.router, testutil.NewJSONRequest(s.T(), http.MethodPost, "/profiles/"+uuid.NewString()+"/messages", map[string]string{"body": "hi"}))
		testutil.AssertStatusAndError(s.T(), rr, http.StatusNotFound, "not_found")
	})
}

func (s *HandlerSuite) TestPlanLifecycle() {
	p := s.enroll("2000000030")
	worker := uuid.NewString()

	rr := testutil.DoRequest(s.router, testutil.NewJSONRequest(s.T(), http.MethodPost, "/profiles/"+p.ID+"/assign", map[string]string{"worker_id": worker}))
	s.Require().Equal(http.StatusOK, rr.Code, rr.Body.String())
	s.Equal(worker, testutil.UnmarshalResponse[ProfileResponse](s.T(), rr).AssignedWorkerID)

	s.Run("terminate needs a reason", func() {
		rr := testutil.DoRequest(s.router, testutil.NewJSONRequest(s.T(), http.MethodPost, "/profiles/"+p.ID+"/terminate", map[string]string{"reason": " "}))
		testutil.AssertStatusAndError(s.T(), rr, http.StatusBadRequest, "validation_error")
	})

	rr = testutil.DoRequest(s.router, testutil.NewJSONRequest(s.T(), http.MethodPost, "/profiles/"+p.ID+"/terminate", map[string]string{"reason": "relocated abroad"}))
	s.Require().Equal(http.StatusOK, rr.Code, rr.Body.String())
	closed := testutil.UnmarshalResponse[ProfileResponse](s.T(), rr)
	s.Equal("terminated", closed.Plan.Status)
	s.Equal("relocated abroad", closed.Plan.CloseReason)
	s.NotNil(closed.Plan.ClosedAt)

	s.Run("closed plan rejects check-ins", func() {
		rr := s.checkIn(p.ID, checkInBody(1, "stable", "employed", "good", "supportive"))
		testutil.AssertStatusAndError(s.T(), rr, http.StatusConflict, "plan_not_active")
	})

	s.Run("get profile", func() {
		rr := testutil.DoRequest(s.router, httptest.NewRequest(http.MethodGet, "/profiles/"+p.ID+"/", nil))
		s.Require().Equal(http.StatusOK, rr.Code, rr.Body.String())
		s.Equal("terminated", testutil.UnmarshalResponse[ProfileResponse](s.T(), rr).Plan.Status)
	})
}
