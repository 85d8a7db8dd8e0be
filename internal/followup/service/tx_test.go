package service

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	id "safereturn/pkg/domain"
	dErrors "safereturn/pkg/domain-errors"
)

func TestShardedTxCancelledContext(t *testing.T) {
	tx := NewShardedTx(time.Second)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	called := false
	err := tx.RunInTx(ctx, id.NewProfileID(), func(context.Context) error {
		called = true
		return nil
	})
	require.Error(t, err)
	assert.True(t, dErrors.HasCode(err, dErrors.CodeTimeout))
	assert.False(t, called)
}

func TestShardedTxSerializesSameProfile(t *testing.T) {
	tx := NewShardedTx(time.Second)
	pid := id.NewProfileID()

	var (
		wg      sync.WaitGroup
		counter int
	)
	for range 50 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_ = tx.RunInTx(context.Background(), pid, func(context.Context) error {
				v := counter
				time.Sleep(time.Microsecond)
				counter = v + 1
				return nil
			})
		}()
	}
	wg.Wait()
	assert.Equal(t, 50, counter)
}

func TestShardedTxAppliesTimeout(t *testing.T) {
	tx := NewShardedTx(50 * time.Millisecond)
	err := tx.RunInTx(context.Background(), id.NewProfileID(), func(ctx context.Context) error {
		_, ok := ctx.Deadline()
		assert.True(t, ok)
		return nil
	})
	require.NoError(t, err)
}
