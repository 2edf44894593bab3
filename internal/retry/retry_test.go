package retry

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/alexanderramin/tasksync/internal/logging"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// recordingSleep captures requested delays without waiting.
type recordingSleep struct {
	delays []time.Duration
}

func (r *recordingSleep) sleep(_ context.Context, d time.Duration) error {
	r.delays = append(r.delays, d)
	return nil
}

func testPolicy(t *testing.T, rs *recordingSleep) Policy {
	p := DefaultPolicy()
	p.Sleep = rs.sleep
	p.Logger = logging.NewTestLogger(t).Logger
	return p
}

func TestDefaultPolicy_Delays(t *testing.T) {
	assert.Equal(t, []time.Duration{time.Second, 2 * time.Second}, DefaultPolicy().Delays())
}

func TestDo_SucceedsFirstAttempt(t *testing.T) {
	rs := &recordingSleep{}
	calls := 0
	err := Do(context.Background(), testPolicy(t, rs), "noop", func(context.Context) error {
		calls++
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, 1, calls)
	assert.Empty(t, rs.delays)
}

func TestDo_RetriesThenSucceeds(t *testing.T) {
	rs := &recordingSleep{}
	calls := 0
	v, err := DoValue(context.Background(), testPolicy(t, rs), "flaky", func(context.Context) (string, error) {
		calls++
		if calls < 3 {
			return "", errors.New("transient")
		}
		return "ok", nil
	})
	require.NoError(t, err)
	assert.Equal(t, "ok", v)
	assert.Equal(t, 3, calls)
	assert.Equal(t, []time.Duration{time.Second, 2 * time.Second}, rs.delays)
}

func TestDo_ExhaustedSurfacesLastError(t *testing.T) {
	rs := &recordingSleep{}
	calls := 0
	last := errors.New("third failure")
	err := Do(context.Background(), testPolicy(t, rs), "create page", func(context.Context) error {
		calls++
		if calls == 3 {
			return last
		}
		return errors.New("earlier failure")
	})
	require.Error(t, err)
	assert.Equal(t, 3, calls)
	assert.ErrorIs(t, err, ErrRetryExhausted)
	assert.ErrorIs(t, err, last)
	assert.Contains(t, err.Error(), "create page")
}

func TestDo_StopsWhenSleepCancelled(t *testing.T) {
	p := DefaultPolicy()
	p.Logger = logging.NewTestLogger(t).Logger
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	calls := 0
	err := Do(ctx, p, "cancelled", func(context.Context) error {
		calls++
		return errors.New("boom")
	})
	require.Error(t, err)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, 1, calls)
}

func TestPolicy_ZeroAttemptsRunsOnce(t *testing.T) {
	rs := &recordingSleep{}
	p := Policy{Sleep: rs.sleep, Logger: logging.NewTestLogger(t).Logger}
	calls := 0
	err := Do(context.Background(), p, "once", func(context.Context) error {
		calls++
		return errors.New("fail")
	})
	assert.Error(t, err)
	assert.Equal(t, 1, calls)
}

type statusError struct {
	code int
}

func (e *statusError) Error() string { return "status error" }

func TestDo_PermanentErrorStopsRetrying(t *testing.T) {
	rs := &recordingSleep{}
	calls := 0
	cause := &statusError{code: 404}
	err := Do(context.Background(), testPolicy(t, rs), "update page", func(context.Context) error {
		calls++
		return Permanent(cause)
	})
	require.Error(t, err)
	assert.Equal(t, 1, calls)
	assert.Empty(t, rs.delays)
	assert.NotErrorIs(t, err, ErrRetryExhausted)
	assert.True(t, IsPermanent(err))

	var se *statusError
	require.ErrorAs(t, err, &se)
	assert.Equal(t, 404, se.code)
}

func TestPermanent_Nil(t *testing.T) {
	assert.NoError(t, Permanent(nil))
	assert.False(t, IsPermanent(errors.New("plain")))
}

func TestDo_CancelDuringSleepStopsRetrying(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	p := DefaultPolicy()
	p.Logger = logging.NewTestLogger(t).Logger
	p.Sleep = func(ctx context.Context, _ time.Duration) error {
		cancel()
		return ctx.Err()
	}

	calls := 0
	err := Do(ctx, p, "query", func(context.Context) error {
		calls++
		return errors.New("unavailable")
	})
	require.Error(t, err)
	assert.Equal(t, 1, calls)
	assert.ErrorIs(t, err, context.Canceled)
	assert.NotErrorIs(t, err, ErrRetryExhausted)
	assert.Contains(t, err.Error(), "unavailable")
}

func TestDo_DelaysFollowPolicy(t *testing.T) {
	rs := &recordingSleep{}
	p := Policy{MaxAttempts: 4, InitialDelay: 100 * time.Millisecond, Multiplier: 3, Sleep: rs.sleep}
	p.Logger = logging.NewTestLogger(t).Logger

	err := Do(context.Background(), p, "always fails", func(context.Context) error {
		return errors.New("fail")
	})
	require.ErrorIs(t, err, ErrRetryExhausted)
	assert.Equal(t, p.Delays(), rs.delays)
	assert.Equal(t, []time.Duration{100 * time.Millisecond, 300 * time.Millisecond, 900 * time.Millisecond}, rs.delays)
}
