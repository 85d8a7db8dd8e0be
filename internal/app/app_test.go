package app

import (
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"safereturn/internal/dashboard"
	"safereturn/internal/platform/config"
	"safereturn/internal/risk"
	"safereturn/pkg/testutil"
)

func memoryConfig() config.Config {
	return config.Config{
		Server:   config.Server{RequestTimeout: 5 * time.Second},
		FollowUp: config.FollowUp{EnforceSchedule: true, TxTimeout: time.Second},
	}
}

func TestNewInMemory(t *testing.T) {
	a, err := New(testutil.Context(), memoryConfig(), testutil.DiscardLogger())
	require.NoError(t, err)
	t.Cleanup(func() { _ = a.Close() })
	assert.Nil(t, a.DB())

	rr := testutil.DoRequest(a.Router, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	assert.Equal(t, http.StatusOK, rr.Code)

	rr = testutil.DoRequest(a.Router, httptest.NewRequest(http.MethodGet, "/dashboard", nil))
	assert.Equal(t, http.StatusOK, rr.Code)

	rr = testutil.DoRequest(a.Router, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Body.String(), "go_goroutines")
}

func TestSeed(t *testing.T) {
	ctx := testutil.Context()
	a, err := New(ctx, memoryConfig(), testutil.DiscardLogger())
	require.NoError(t, err)

	f, err := LoadSeedFile(filepath.Join("testdata", "seed.yaml"))
	require.NoError(t, err)
	require.Len(t, f.Profiles, 2)

	res, err := Seed(ctx, a.FollowUp, f)
	require.NoError(t, err)
	assert.Equal(t, SeedResult{Profiles: 2, CheckIns: 3, Tickets: 2}, res)

	o, err := a.Dashboard.Overview(ctx, dashboard.Filter{})
	require.NoError(t, err)
	assert.Equal(t, 1, o.TierCounts[risk.TierRed])
	assert.Equal(t, 1, o.TierCounts[risk.TierGreen])
	assert.Equal(t, 2, o.OpenTickets)

	t.Run("reseeding conflicts", func(t *testing.T) {
		_, err := Seed(ctx, a.FollowUp, f)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "1098765432")
	})
}

func TestParseSeedRejectsUnknownKeys(t *testing.T) {
	_, err := ParseSeed([]byte("profiles:\n  - national_id: \"1000000001\"\n    nickname: x\n"))
	require.Error(t, err)
}

func TestSeedRejectsBadReleaseDate(t *testing.T) {
	ctx := testutil.Context()
	a, err := New(ctx, memoryConfig(), testutil.DiscardLogger())
	require.NoError(t, err)

	_, err = Seed(ctx, a.FollowUp, &SeedFile{Profiles: []SeedProfile{{
		NationalID: "1000000001", FullName: "A", City: "riyadh", ReleaseDate: "March 1",
	}}})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "release_date")
}
