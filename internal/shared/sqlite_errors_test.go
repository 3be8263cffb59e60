package shared

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestIsSQLiteConflictError(t *testing.T) {
	assert.False(t, IsSQLiteConflictError(nil))
	assert.True(t, IsSQLiteConflictError(errors.New("exec: SQLITE_BUSY (5)")))
	assert.True(t, IsSQLiteConflictError(fmt.Errorf("save: %w", errors.New("database is locked"))))
	assert.False(t, IsSQLiteConflictError(errors.New("no such table")))
}

func TestRetryOnConflict(t *testing.T) {
	policy := RetryPolicy{Attempts: 3, BaseDelay: time.Millisecond}

	t.Run("succeeds after conflicts", func(t *testing.T) {
		calls := 0
		err := RetryOnConflict(context.Background(), nil, "save", policy, func() error {
			calls++
			if calls < 3 {
				return errors.New("database is locked")
			}
			return nil
		})
		assert.NoError(t, err)
		assert.Equal(t, 3, calls)
	})

	t.Run("non-conflict error stops immediately", func(t *testing.T) {
		calls := 0
		err := RetryOnConflict(context.Background(), nil, "save", policy, func() error {
			calls++
			return errors.New("disk full")
		})
		assert.EqualError(t, err, "disk full")
		assert.Equal(t, 1, calls)
	})

	t.Run("gives up after attempts", func(t *testing.T) {
		calls := 0
		err := RetryOnConflict(context.Background(), nil, "save", policy, func() error {
			calls++
			return errors.New("SQLITE_BUSY")
		})
		assert.Error(t, err)
		assert.Equal(t, 3, calls)
	})

	t.Run("context cancellation", func(t *testing.T) {
		ctx, cancel := context.WithCancel(context.Background())
		cancel()
		err := RetryOnConflict(ctx, nil, "save", RetryPolicy{Attempts: 3, BaseDelay: time.Hour}, func() error {
			return errors.New("SQLITE_BUSY")
		})
		assert.ErrorIs(t, err, context.Canceled)
	})
}
