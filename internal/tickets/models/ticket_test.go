package models

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	id "safereturn/pkg/domain"
	dErrors "safereturn/pkg/domain-errors"
)

func newTicket(t *testing.T) *SupportTicket {
	t.Helper()
	tk, err := NewManualTicket(id.NewProfileID(), CategoryFinancial, id.WorkerID(uuid.New()), "rent arrears", time.Now())
	require.NoError(t, err)
	return tk
}

func TestTicketLifecycle(t *testing.T) {
	worker := id.WorkerID(uuid.New())
	now := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)

	t.Run("open to in_progress to resolved", func(t *testing.T) {
		tk := newTicket(t)
		require.NoError(t, tk.Start(worker, now))
		assert.Equal(t, StatusInProgress, tk.Status)
		assert.Equal(t, worker, *tk.AssignedWorker)

		require.NoError(t, tk.Resolve(worker, now))
		assert.Equal(t, StatusResolved, tk.Status)
		assert.Equal(t, worker, *tk.ResolvedBy)
		assert.Equal(t, now, *tk.ResolvedAt)
	})

	t.Run("open resolves directly", func(t *testing.T) {
		tk := newTicket(t)
		require.NoError(t, tk.Resolve(worker, now))
		assert.Equal(t, StatusResolved, tk.Status)
		assert.Equal(t, worker, *tk.AssignedWorker)
	})

	t.Run("resolved only reopens", func(t *testing.T) {
		tk := newTicket(t)
		require.NoError(t, tk.Resolve(worker, now))

		assert.True(t, dErrors.HasCode(tk.Resolve(worker, now), dErrors.CodeInvalidState))
		assert.True(t, dErrors.HasCode(tk.Start(worker, now), dErrors.CodeInvalidState))

		require.NoError(t, tk.Reopen(now))
		assert.Equal(t, StatusOpen, tk.Status)
		assert.Nil(t, tk.ResolvedBy)
		assert.Nil(t, tk.ResolvedAt)
	})

	t.Run("in_progress cannot restart or reopen", func(t *testing.T) {
		tk := newTicket(t)
		require.NoError(t, tk.Start(worker, now))
		assert.True(t, dErrors.HasCode(tk.Start(worker, now), dErrors.CodeInvalidState))
		assert.True(t, dErrors.HasCode(tk.Reopen(now), dErrors.CodeInvalidState))
	})
}

func TestNewManualTicketRequiresCreator(t *testing.T) {
	_, err := NewManualTicket(id.NewProfileID(), CategoryJob, id.WorkerID(uuid.Nil), "", time.Now())
	assert.True(t, dErrors.HasCode(err, dErrors.CodeValidation))
}

func TestFilterMatches(t *testing.T) {
	tk := newTicket(t)
	assert.True(t, Filter{}.Matches(tk))
	assert.True(t, Filter{Status: StatusOpen, Category: CategoryFinancial, ProfileID: tk.ProfileID}.Matches(tk))
	assert.False(t, Filter{Status: StatusResolved}.Matches(tk))
	assert.False(t, Filter{Category: CategoryJob}.Matches(tk))
	assert.False(t, Filter{ProfileID: id.NewProfileID()}.Matches(tk))
}
