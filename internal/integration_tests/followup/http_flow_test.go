package followup

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"safereturn/internal/app"
	dashboardHandler "safereturn/internal/dashboard/handler"
	followupHandler "safereturn/internal/followup/handler"
	notificationHandler "safereturn/internal/notifications/handler"
	"safereturn/internal/platform/config"
	ticketHandler "safereturn/internal/tickets/handler"
	"safereturn/pkg/testutil"
)

func newApp(t *testing.T) *app.App {
	t.Helper()
	a, err := app.New(testutil.Context(), config.Config{
		Server:   config.Server{RequestTimeout: 5 * time.Second},
		FollowUp: config.FollowUp{EnforceSchedule: false, TxTimeout: time.Second},
	}, testutil.DiscardLogger())
	require.NoError(t, err)
	t.Cleanup(func() { _ = a.Close() })
	return a
}

func post(t *testing.T, h http.Handler, path string, body any, worker string) *httptest.ResponseRecorder {
	t.Helper()
	req := testutil.NewJSONRequest(t, http.MethodPost, path, body)
	if worker != "" {
		req.Header.Set("X-Worker-ID", worker)
	}
	return testutil.DoRequest(h, req)
}

func get(h http.Handler, path string) *httptest.ResponseRecorder {
	return testutil.DoRequest(h, httptest.NewRequest(http.MethodGet, path, nil))
}

func TestCaseWorkerFlow(t *testing.T) {
	a := newApp(t)
	worker := uuid.NewString()
	var (
		profile followupHandler.ProfileResponse
		ticket  ticketHandler.TicketResponse
	)

	testutil.Given(t, "an enrolled beneficiary with an assigned case worker", func(t *testing.T) {
		rr := post(t, a.Router, "/profiles", map[string]string{
			"national_id":        "1122334455",
			"full_name":          "Omar S.",
			"city":               "mecca",
			"release_date":       "2026-03-01",
			"assigned_worker_id": worker,
		}, "")
		require.Equal(t, http.StatusCreated, rr.Code, rr.Body.String())
		profile = *testutil.UnmarshalResponse[followupHandler.ProfileResponse](t, rr)
		assert.Equal(t, worker, profile.AssignedWorkerID)
	})

	testutil.When(t, "a RED check-in is submitted", func(t *testing.T) {
		rr := post(t, a.Router, "/profiles/"+profile.ID+"/checkins", map[string]any{
			"month_index":    1,
			"housing_status": "stable",
			"job_status":     "employed",
			"mental_state":   "bad",
			"family_status":  "supportive",
		}, "")
		require.Equal(t, http.StatusCreated, rr.Code, rr.Body.String())
		res := testutil.UnmarshalResponse[followupHandler.SubmissionResponse](t, rr)
		assert.Equal(t, "RED", res.RiskTier)
		require.Len(t, res.TicketsCreated, 1)
		ticket = res.TicketsCreated[0]
		assert.Equal(t, "psychological", ticket.Category)
	})

	testutil.Then(t, "the case worker is notified and sees the profile on the dashboard", func(t *testing.T) {
		rr := get(a.Router, "/notifications?recipient_kind=case_worker&recipient_id="+worker)
		require.Equal(t, http.StatusOK, rr.Code)
		inbox := testutil.UnmarshalResponse[notificationHandler.ListResponse](t, rr)
		assert.Equal(t, 2, inbox.Count)

		rr = get(a.Router, "/dashboard?tier=RED")
		require.Equal(t, http.StatusOK, rr.Code)
		board := testutil.UnmarshalResponse[dashboardHandler.OverviewResponse](t, rr)
		require.Len(t, board.Profiles, 1)
		assert.Equal(t, profile.ID, board.Profiles[0].ProfileID)
		assert.Equal(t, 1, board.OpenTickets)
	})

	testutil.When(t, "the case worker resolves the ticket", func(t *testing.T) {
		rr := post(t, a.Router, "/tickets/"+ticket.ID+"/resolve", nil, worker)
		require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())
		assert.Equal(t, worker, testutil.UnmarshalResponse[ticketHandler.TicketResponse](t, rr).ResolvedBy)
	})

	testutil.Then(t, "the beneficiary hears about the ticket and the tier change", func(t *testing.T) {
		rr := get(a.Router, "/notifications?recipient_kind=beneficiary&recipient_id="+profile.ID)
		require.Equal(t, http.StatusOK, rr.Code)
		inbox := testutil.UnmarshalResponse[notificationHandler.ListResponse](t, rr)
		assert.Equal(t, 2, inbox.Count)
	})

	testutil.Then(t, "the risk summary reflects the latest check-in", func(t *testing.T) {
		rr := get(a.Router, "/profiles/"+profile.ID+"/risk-summary")
		require.Equal(t, http.StatusOK, rr.Code)
		summary := testutil.UnmarshalResponse[followupHandler.SummaryResponse](t, rr)
		assert.Equal(t, "RED", summary.CurrentTier)
		assert.Equal(t, 2, summary.PlanMonth)
		require.Len(t, summary.Factors, 1)
		assert.Equal(t, "mental_bad", summary.Factors[0].Code)
	})

	testutil.Then(t, "a message from the beneficiary lands in the worker's inbox", func(t *testing.T) {
		rr := post(t, a.Router, "/profiles/"+profile.ID+"/messages", map[string]string{
			"topic": "health",
			"body":  "the clinic moved my appointment",
		}, "")
		require.Equal(t, http.StatusCreated, rr.Code, rr.Body.String())

		rr = get(a.Router, "/notifications?recipient_kind=case_worker&recipient_id="+worker)
		require.Equal(t, http.StatusOK, rr.Code)
		inbox := testutil.UnmarshalResponse[notificationHandler.ListResponse](t, rr)
		assert.Equal(t, 3, inbox.Count)
	})
}
