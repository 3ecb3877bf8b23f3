// Package resilience hardens fallible operations with retry-with-backoff and
// a circuit breaker. Both primitives are generic over the result type and
// classify failures through the apperr taxonomy: only transient kinds are
// retried, and breaker rejections surface as a non-retryable CircuitOpen
// error.
package resilience

import (
	"context"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/tourenq/weekcal/internal/apperr"
	"github.com/tourenq/weekcal/internal/config"
)

// RetryConfig controls the retry schedule. Zero values take the defaults:
// 3 attempts, 1s base delay, multiplier 2, 10s cap.
type RetryConfig struct {
	MaxAttempts int
	BaseDelay   time.Duration
	Multiplier  float64
	MaxDelay    time.Duration
}

func (c RetryConfig) withDefaults() RetryConfig {
	if c.MaxAttempts <= 0 {
		c.MaxAttempts = config.DefaultMaxAttempts
	}
	if c.BaseDelay <= 0 {
		c.BaseDelay = config.DefaultBaseDelay
	}
	if c.Multiplier <= 0 {
		c.Multiplier = config.DefaultBackoffMult
	}
	if c.MaxDelay <= 0 {
		c.MaxDelay = config.DefaultMaxDelay
	}
	return c
}

// RetryState is a snapshot of the retry state machine, delivered to the
// observer before each wait. Keeping it an explicit struct rather than
// closure-captured bookkeeping makes the machine independently observable
// and testable.
type RetryState struct {
	Attempt     int
	LastErr     error
	Retrying    bool
	NextRetryAt time.Time
}

// RetryObserver receives state snapshots; nil observers are skipped.
type RetryObserver func(RetryState)

// Retry runs op until it succeeds, fails permanently, exhausts
// cfg.MaxAttempts, or the context is cancelled. Failure classification comes
// from apperr.Retryable: a permanent error aborts immediately without
// consuming further attempts, and exhausting all attempts propagates the
// last error unchanged. The wait between attempts is
// min(base×mult^(n-1), max) and suspends on the context rather than
// busy-waiting, so concurrent callers are never blocked.
func Retry[T any](ctx context.Context, cfg RetryConfig, observe RetryObserver, op func(context.Context) (T, error)) (T, error) {
	cfg = cfg.withDefaults()

	bo := backoff.NewExponentialBackOff()
	bo.InitialInterval = cfg.BaseDelay
	bo.Multiplier = cfg.Multiplier
	bo.MaxInterval = cfg.MaxDelay
	bo.RandomizationFactor = 0
	bo.MaxElapsedTime = 0
	bo.Reset()

	var b backoff.BackOff = backoff.WithMaxRetries(bo, uint64(cfg.MaxAttempts-1))
	b = backoff.WithContext(b, ctx)

	attempt := 0
	operation := func() (T, error) {
		attempt++
		v, err := op(ctx)
		if err != nil && !apperr.Retryable(err) {
			// Permanent failures must not consume attempts.
			return v, backoff.Permanent(err)
		}
		return v, err
	}

	notify := func(err error, next time.Duration) {
		if observe == nil {
			return
		}
		observe(RetryState{
			Attempt:     attempt,
			LastErr:     err,
			Retrying:    true,
			NextRetryAt: time.Now().Add(next),
		})
	}

	v, err := backoff.RetryNotifyWithData(operation, b, notify)
	if observe != nil {
		observe(RetryState{Attempt: attempt, LastErr: err, Retrying: false})
	}
	return v, err
}
