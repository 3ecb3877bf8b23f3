package resilience

import (
	"errors"
	"log/slog"
	"time"

	"github.com/sony/gobreaker/v2"
	"github.com/tourenq/weekcal/internal/apperr"
	"github.com/tourenq/weekcal/internal/config"
)

// BreakerConfig controls when the circuit opens and how long it stays open.
// Zero values take the defaults: 5 consecutive failures, 60s recovery.
type BreakerConfig struct {
	Name             string
	FailureThreshold uint32
	RecoveryTimeout  time.Duration
}

// Breaker guards an operation behind a CLOSED / OPEN / HALF_OPEN state
// machine. While OPEN, calls are rejected without invoking the operation;
// after the recovery timeout one probe is let through, and its outcome
// decides between closing again and restarting the timer. The underlying
// state is safe under concurrent callers sharing one instance.
type Breaker[T any] struct {
	cb *gobreaker.CircuitBreaker[T]
}

// NewBreaker constructs a breaker with the given thresholds. State changes
// are logged so operators can see the circuit flip.
func NewBreaker[T any](cfg BreakerConfig) *Breaker[T] {
	if cfg.Name == "" {
		cfg.Name = config.BreakerName
	}
	if cfg.FailureThreshold == 0 {
		cfg.FailureThreshold = config.DefaultFailureThreshold
	}
	if cfg.RecoveryTimeout <= 0 {
		cfg.RecoveryTimeout = config.DefaultRecoveryTimeout
	}

	settings := gobreaker.Settings{
		Name:        cfg.Name,
		MaxRequests: 1, // single probe in HALF_OPEN
		Timeout:     cfg.RecoveryTimeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= cfg.FailureThreshold
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			slog.Info(config.MsgBreakerState,
				config.LogKeyComponent, config.CompResilience,
				config.LogKeyBreaker, name,
				config.LogKeyFromState, from.String(),
				config.LogKeyToState, to.String(),
			)
		},
	}

	return &Breaker[T]{cb: gobreaker.NewCircuitBreaker[T](settings)}
}

// Execute runs op through the breaker. A rejection while OPEN (or while the
// HALF_OPEN probe slot is taken) comes back as a CircuitOpen taxonomy error,
// which the retry layer treats as permanent.
func (b *Breaker[T]) Execute(op func() (T, error)) (T, error) {
	v, err := b.cb.Execute(op)
	if err != nil && (errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests)) {
		return v, apperr.Wrap(apperr.KindCircuitOpen, config.ErrCircuitOpen, err)
	}
	return v, err
}

// State reports the current breaker state name, for diagnostics.
func (b *Breaker[T]) State() string {
	return b.cb.State().String()
}
