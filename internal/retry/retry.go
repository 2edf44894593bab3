// Package retry runs operations with bounded attempts and exponential backoff.
package retry

import (
	"context"
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/alexanderramin/tasksync/internal/logging"
	"github.com/cenkalti/backoff/v4"
	"github.com/rs/zerolog"
)

// ErrRetryExhausted wraps the last error once every attempt has failed.
var ErrRetryExhausted = errors.New("retry attempts exhausted")

type permanentError struct {
	err error
}

func (e *permanentError) Error() string { return e.err.Error() }
func (e *permanentError) Unwrap() error { return e.err }

// Permanent marks err as not worth retrying. The result still matches err
// under errors.Is and errors.As.
func Permanent(err error) error {
	if err == nil {
		return nil
	}
	return &permanentError{err: err}
}

// IsPermanent reports whether err was marked with Permanent.
func IsPermanent(err error) bool {
	var p *permanentError
	return errors.As(err, &p)
}

// Policy controls how an operation is retried.
type Policy struct {
	MaxAttempts  int
	InitialDelay time.Duration
	Multiplier   float64

	// Sleep waits between attempts. Nil uses a real timer. A Sleep that
	// returns an error must do so because ctx is done.
	Sleep func(ctx context.Context, d time.Duration) error

	Logger *zerolog.Logger
}

// DefaultPolicy is three attempts starting at one second, doubling each time.
func DefaultPolicy() Policy {
	return Policy{
		MaxAttempts:  3,
		InitialDelay: time.Second,
		Multiplier:   2,
	}
}

// Delays returns the wait before each retry, one entry per retry.
func (p Policy) Delays() []time.Duration {
	attempts := p.attempts()
	delays := make([]time.Duration, 0, attempts-1)
	d := p.InitialDelay
	for i := 1; i < attempts; i++ {
		delays = append(delays, d)
		d = time.Duration(float64(d) * p.multiplier())
	}
	return delays
}

func (p Policy) attempts() int {
	if p.MaxAttempts < 1 {
		return 1
	}
	return p.MaxAttempts
}

func (p Policy) multiplier() float64 {
	if p.Multiplier < 1 {
		return 1
	}
	return p.Multiplier
}

// Do runs op until it succeeds or the policy is exhausted.
func Do(ctx context.Context, p Policy, name string, op func(ctx context.Context) error) error {
	_, err := DoValue(ctx, p, name, func(ctx context.Context) (struct{}, error) {
		return struct{}{}, op(ctx)
	})
	return err
}

// DoValue is Do for operations that return a value.
func DoValue[T any](ctx context.Context, p Policy, name string, op func(ctx context.Context) (T, error)) (T, error) {
	var zero T
	log := p.Logger
	if log == nil {
		log = logging.FromContext(ctx)
	}
	attempts := p.attempts()

	var (
		attempt   int
		lastErr   error
		permanent bool
	)
	operation := func() (T, error) {
		attempt++
		v, err := op(ctx)
		if err == nil {
			return v, nil
		}
		lastErr = err
		if IsPermanent(err) {
			permanent = true
			return v, backoff.Permanent(err)
		}
		return v, err
	}
	notify := func(err error, delay time.Duration) {
		log.Warn().
			Err(err).
			Str("operation", name).
			Int("attempt", attempt).
			Dur("retry_in", delay).
			Msg("attempt failed, retrying")
	}

	b := backoff.WithContext(backoff.WithMaxRetries(p.backOff(), uint64(attempts-1)), ctx)
	var timer backoff.Timer
	if p.Sleep != nil {
		timer = &sleepTimer{ctx: ctx, sleep: p.Sleep}
	}

	v, err := backoff.RetryNotifyWithTimerAndData[T](operation, b, notify, timer)
	switch {
	case err == nil:
		return v, nil
	case permanent:
		log.Error().
			Err(err).
			Str("operation", name).
			Int("attempt", attempt).
			Msg("operation failed permanently")
		return zero, fmt.Errorf("%s: %w", name, err)
	case ctx.Err() != nil && attempt < attempts:
		return zero, fmt.Errorf("%s: %w (last error: %v)", name, ctx.Err(), lastErr)
	}

	log.Error().
		Err(lastErr).
		Str("operation", name).
		Int("attempts", attempt).
		Msg("operation failed after all attempts")
	return zero, fmt.Errorf("%s: %w after %d attempts: %w", name, ErrRetryExhausted, attempt, lastErr)
}

// backOff is the deterministic exponential schedule of p.
func (p Policy) backOff() backoff.BackOff {
	b := backoff.NewExponentialBackOff()
	b.InitialInterval = p.InitialDelay
	b.Multiplier = p.multiplier()
	b.RandomizationFactor = 0
	b.MaxInterval = time.Duration(math.MaxInt64)
	b.MaxElapsedTime = 0
	return b
}

// sleepTimer runs Policy.Sleep as a backoff.Timer. C only fires when the
// sleep completed, so a cancelled sleep ends the retry through ctx.
type sleepTimer struct {
	ctx   context.Context
	sleep func(ctx context.Context, d time.Duration) error
	c     chan time.Time
}

func (t *sleepTimer) Start(d time.Duration) {
	t.c = make(chan time.Time, 1)
	if err := t.sleep(t.ctx, d); err == nil {
		t.c <- time.Now()
	}
}

func (t *sleepTimer) Stop() {}

func (t *sleepTimer) C() <-chan time.Time { return t.c }
