package httptransport

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"safereturn/internal/platform/metrics"
	"safereturn/pkg/testutil"
)

type pingHandler struct{}

func (pingHandler) Register(r chi.Router) {
	r.Get("/ping/{id}", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("pong"))
	})
	r.Get("/panic", func(http.ResponseWriter, *http.Request) {
		panic("boom")
	})
}

func newTestRouter(checks map[string]HealthCheck) (http.Handler, *prometheus.Registry) {
	reg := prometheus.NewRegistry()
	return NewRouter(Config{
		Logger:       testutil.DiscardLogger(),
		Metrics:      metrics.New(reg),
		Gatherer:     reg,
		Handlers:     []Registrar{pingHandler{}},
		HealthChecks: checks,
	}), reg
}

func TestRouterMountsHandlersAndMetrics(t *testing.T) {
	router, _ := newTestRouter(nil)

	rr := testutil.DoRequest(router, httptest.NewRequest(http.MethodGet, "/ping/1", nil))
	require.Equal(t, http.StatusOK, rr.Code)
	assert.NotEmpty(t, rr.Header().Get("X-Request-ID"))

	rr = testutil.DoRequest(router, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, rr.Code)
	assert.True(t, strings.Contains(rr.Body.String(), `safereturn_http_request_duration_seconds_count{method="GET",route="/ping/{id}",status="200"} 1`))
}

func TestRouterRecoversPanics(t *testing.T) {
	router, _ := newTestRouter(nil)
	rr := testutil.DoRequest(router, httptest.NewRequest(http.MethodGet, "/panic", nil))
	testutil.AssertStatusAndError(t, rr, http.StatusInternalServerError, "internal_error")
}

func TestHealthz(t *testing.T) {
	t.Run("no dependencies", func(t *testing.T) {
		router, _ := newTestRouter(nil)
		rr := testutil.DoRequest(router, httptest.NewRequest(http.MethodGet, "/healthz", nil))
		require.Equal(t, http.StatusOK, rr.Code)
		assert.Equal(t, "ok", testutil.UnmarshalResponse[healthResponse](t, rr).Status)
	})

	t.Run("failing dependency", func(t *testing.T) {
		router, _ := newTestRouter(map[string]HealthCheck{
			"postgres": func(context.Context) error { return nil },
			"redis":    func(context.Context) error { return errors.New("connection refused") },
		})
		rr := testutil.DoRequest(router, httptest.NewRequest(http.MethodGet, "/healthz", nil))
		require.Equal(t, http.StatusServiceUnavailable, rr.Code)
		resp := testutil.UnmarshalResponse[healthResponse](t, rr)
		assert.Equal(t, "degraded", resp.Status)
		assert.Equal(t, "ok", resp.Checks["postgres"])
		assert.Equal(t, "connection refused", resp.Checks["redis"])
	})
}
