package retry

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fastOptions(attempts int) Options {
	return Options{MaxAttempts: attempts, Delay: time.Millisecond}
}

func TestDoSucceedsAfterFailures(t *testing.T) {
	for _, maxAttempts := range []int{1, 2, 4} {
		t.Run(fmt.Sprintf("max=%d", maxAttempts), func(t *testing.T) {
			calls := 0
			got, err := Do(context.Background(), fastOptions(maxAttempts), func(ctx context.Context) (string, error) {
				calls++
				if calls < maxAttempts {
					return "", errors.New("transient")
				}
				return "ok", nil
			})

			require.NoError(t, err)
			assert.Equal(t, "ok", got)
			assert.Equal(t, maxAttempts, calls)
		})
	}
}

func TestDoReturnsLastErrorAfterExactAttempts(t *testing.T) {
	calls := 0
	_, err := Do(context.Background(), fastOptions(3), func(ctx context.Context) (int, error) {
		calls++
		return 0, fmt.Errorf("failure %d", calls)
	})

	require.Error(t, err)
	assert.Equal(t, "failure 3", err.Error())
	assert.Equal(t, 3, calls)
}

func TestDoDefaultsToTwoAttempts(t *testing.T) {
	calls := 0
	_, err := Do(context.Background(), Options{Delay: time.Millisecond}, func(ctx context.Context) (int, error) {
		calls++
		return 0, errors.New("boom")
	})

	require.Error(t, err)
	assert.Equal(t, DefaultMaxAttempts, calls)
}

func TestZeroOptionsMatchDefaults(t *testing.T) {
	assert.Equal(t, Defaults(), Options{}.withDefaults())
	assert.Equal(t, DefaultDelay, Options{MaxAttempts: 3}.withDefaults().Delay)
	assert.Equal(t, DefaultDelay, Options{Delay: -time.Second}.withDefaults().Delay)
	assert.Equal(t, 20*time.Millisecond, Options{Delay: 20 * time.Millisecond}.withDefaults().Delay)
}

func TestDoWaitsFixedDelay(t *testing.T) {
	start := time.Now()
	_, _ = Do(context.Background(), Options{MaxAttempts: 3, Delay: 20 * time.Millisecond}, func(ctx context.Context) (int, error) {
		return 0, errors.New("boom")
	})

	assert.GreaterOrEqual(t, time.Since(start), 40*time.Millisecond)
}

func TestDoCallsOnRetry(t *testing.T) {
	var seen []int
	opts := fastOptions(3)
	opts.OnRetry = func(next int, err error) {
		seen = append(seen, next)
	}

	_, _ = Do(context.Background(), opts, func(ctx context.Context) (int, error) {
		return 0, errors.New("boom")
	})

	assert.Equal(t, []int{2, 3}, seen)
}

func TestDoStopsOnCancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	calls := 0
	_, err := Do(ctx, Options{MaxAttempts: 5, Delay: time.Hour}, func(ctx context.Context) (int, error) {
		calls++
		cancel()
		return 0, errors.New("boom")
	})

	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, 1, calls)
}
