package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFromEnv(t *testing.T) {
	t.Run("defaults", func(t *testing.T) {
		cfg, err := FromEnv()
		require.NoError(t, err)
		assert.Equal(t, ":8080", cfg.Server.Addr)
		assert.Equal(t, "postgres", cfg.Database.Driver)
		assert.True(t, cfg.FollowUp.EnforceSchedule)
		assert.False(t, cfg.Tickets.Dedup)
		assert.Equal(t, 10*time.Second, cfg.Redis.LockTTL)
	})

	t.Run("overrides", func(t *testing.T) {
		t.Setenv("SAFERETURN_ADDR", ":9090")
		t.Setenv("TICKETS_DEDUP", "true")
		t.Setenv("FOLLOWUP_ENFORCE_SCHEDULE", "false")
		t.Setenv("DATABASE_DRIVER", "pgx")

		cfg, err := FromEnv()
		require.NoError(t, err)
		assert.Equal(t, ":9090", cfg.Server.Addr)
		assert.True(t, cfg.Tickets.Dedup)
		assert.False(t, cfg.FollowUp.EnforceSchedule)
		assert.Equal(t, "pgx", cfg.Database.Driver)
	})

	t.Run("rejects unknown driver", func(t *testing.T) {
		t.Setenv("DATABASE_DRIVER", "sqlite")
		_, err := FromEnv()
		require.Error(t, err)
	})
}
