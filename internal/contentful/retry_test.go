package contentful

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWithConflictRetryFirstAttemptSucceeds(t *testing.T) {
	calls := 0
	err := WithConflictRetry(context.Background(), 2, func(ctx context.Context) error {
		calls++
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, 1, calls)
}

func TestWithConflictRetryResolvesSingleConflict(t *testing.T) {
	calls := 0
	err := WithConflictRetry(context.Background(), 2, func(ctx context.Context) error {
		calls++
		if calls == 1 {
			return fmt.Errorf("updating entry reg-1: %w", ErrVersionConflict)
		}
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, 2, calls)
}

func TestWithConflictRetrySecondConflictPropagates(t *testing.T) {
	calls := 0
	err := WithConflictRetry(context.Background(), 2, func(ctx context.Context) error {
		calls++
		return ErrVersionConflict
	})
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrVersionConflict)
	assert.Equal(t, 2, calls)
}

func TestWithConflictRetryDoesNotRetryOtherErrors(t *testing.T) {
	boom := errors.New("boom")
	calls := 0
	err := WithConflictRetry(context.Background(), 2, func(ctx context.Context) error {
		calls++
		return boom
	})
	assert.ErrorIs(t, err, boom)
	assert.Equal(t, 1, calls)
}

func TestWithConflictRetrySingleAttemptBudget(t *testing.T) {
	// The webhook reconciliation path runs with maxAttempts=1: first
	// writer in the common case, no retry.
	calls := 0
	err := WithConflictRetry(context.Background(), 1, func(ctx context.Context) error {
		calls++
		return ErrVersionConflict
	})
	assert.ErrorIs(t, err, ErrVersionConflict)
	assert.Equal(t, 1, calls)
}

func TestWithConflictRetryHonorsContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	err := WithConflictRetry(ctx, 2, func(ctx context.Context) error {
		t.Fatal("op should not run with a canceled context")
		return nil
	})
	assert.ErrorIs(t, err, context.Canceled)
}
