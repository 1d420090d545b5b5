// Package retry runs an operation a bounded number of times with a fixed delay.
package retry

import (
	"context"
	"time"

	"github.com/cenkalti/backoff/v4"
)

const (
	DefaultMaxAttempts = 2
	DefaultDelay       = time.Second
)

// Options configures Do. A MaxAttempts below one or a Delay that is not
// positive falls back to the default, so Options{} behaves like Defaults().
type Options struct {
	MaxAttempts int
	Delay       time.Duration
	// OnRetry runs before attempt number next (2-based) with the error that caused it.
	OnRetry func(next int, err error)
}

func (o Options) withDefaults() Options {
	if o.MaxAttempts < 1 {
		o.MaxAttempts = DefaultMaxAttempts
	}
	if o.Delay <= 0 {
		o.Delay = DefaultDelay
	}
	return o
}

// Do calls op up to MaxAttempts times, sleeping Delay between attempts.
// Every error is retried; after the last attempt its error is returned as is.
func Do[T any](ctx context.Context, opts Options, op func(ctx context.Context) (T, error)) (T, error) {
	opts = opts.withDefaults()

	policy := backoff.WithContext(
		backoff.WithMaxRetries(backoff.NewConstantBackOff(opts.Delay), uint64(opts.MaxAttempts-1)),
		ctx,
	)

	attempt := 1
	notify := func(err error, _ time.Duration) {
		attempt++
		if opts.OnRetry != nil {
			opts.OnRetry(attempt, err)
		}
	}

	return backoff.RetryNotifyWithData(func() (T, error) {
		return op(ctx)
	}, policy, notify)
}

// Defaults returns the options used when the caller has no configuration.
func Defaults() Options {
	return Options{MaxAttempts: DefaultMaxAttempts, Delay: DefaultDelay}
}
