package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func fastRetry(attempts int) *RetryConfig {
	return &RetryConfig{MaxAttempts: attempts, Delay: time.Millisecond, MaxDelay: 2 * time.Millisecond}
}

func TestRetryWithBackoff_SucceedsAfterFailures(t *testing.T) {
	req := require.New(t)
	calls := 0
	err := RetryWithBackoff(context.Background(), fastRetry(5), func(context.Context) error {
		calls++
		if calls < 3 {
			return errors.New("not yet")
		}
		return nil
	})
	req.NoError(err)
	req.Equal(3, calls)
}

func TestRetryWithBackoff_GivesUp(t *testing.T) {
	req := require.New(t)
	boom := errors.New("boom")
	calls := 0
	err := RetryWithBackoff(context.Background(), fastRetry(3), func(context.Context) error {
		calls++
		return boom
	})
	req.ErrorIs(err, boom)
	req.Equal(3, calls)
}

func TestRetryWithBackoff_StopsOnPermanentError(t *testing.T) {
	req := require.New(t)
	bad := errors.New("bad config")
	calls := 0
	err := RetryWithBackoff(context.Background(), fastRetry(5), func(context.Context) error {
		calls++
		return Permanent(bad)
	})
	req.Equal(bad, err)
	req.Equal(1, calls)
}

func TestRetryWithBackoff_HonoursContext(t *testing.T) {
	req := require.New(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	err := RetryWithBackoff(ctx, &RetryConfig{MaxAttempts: 3, Delay: time.Hour}, func(context.Context) error {
		return errors.New("down")
	})
	req.ErrorIs(err, context.Canceled)
}
