package notify

import (
	"bytes"
	"context"
	"errors"
	"testing"
	"time"

	"github.com/alexanderramin/tasksync/internal/domain"
	"github.com/alexanderramin/tasksync/internal/logging"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleSummary() Summary {
	return Summary{
		RunID:     "run-1",
		TaskDate:  time.Date(2025, 3, 10, 0, 0, 0, 0, time.UTC),
		Status:    domain.RunPartial,
		TaskCount: 4,
		Created:   1,
		Updated:   2,
		Skipped:   1,
		Problems:  []string{`task "Gym" (route): routing gap`},
	}
}

func TestSummary_Headline(t *testing.T) {
	s := sampleSummary()
	assert.Equal(t, "sync 2025-03-10 partial: 1 created, 2 updated, 1 skipped, 0 failed", s.Headline())

	s.Fatal = errors.New("routing table invalid")
	assert.Equal(t, "sync 2025-03-10 failed: routing table invalid", s.Headline())
}

func TestSummary_NeedsAttention(t *testing.T) {
	assert.True(t, sampleSummary().NeedsAttention())
	assert.False(t, Summary{Status: domain.RunSucceeded, Created: 3}.NeedsAttention())
	assert.True(t, Summary{Fatal: errors.New("boom")}.NeedsAttention())
}

func TestConsoleNotifier_PlainOutput(t *testing.T) {
	var buf bytes.Buffer
	n := ConsoleNotifier{Out: &buf, NoColor: true}

	require.NoError(t, n.Notify(context.Background(), sampleSummary()))
	assert.Equal(t,
		"sync 2025-03-10 partial: 1 created, 2 updated, 1 skipped, 0 failed\n"+
			"  ! task \"Gym\" (route): routing gap\n",
		buf.String())
}

func TestConsoleNotifier_ColoredOutput(t *testing.T) {
	var buf bytes.Buffer
	n := ConsoleNotifier{Out: &buf}

	s := sampleSummary()
	s.Fatal = errors.New("boom")
	require.NoError(t, n.Notify(context.Background(), s))
	assert.Contains(t, buf.String(), "\x1b[31;1m")
}

func TestLogNotifier_LevelFollowsOutcome(t *testing.T) {
	tl := logging.NewTestLogger(t)
	n := LogNotifier{Logger: tl.Logger}
	ctx := context.Background()

	require.NoError(t, n.Notify(ctx, Summary{Status: domain.RunSucceeded}))
	require.NoError(t, n.Notify(ctx, sampleSummary()))
	require.NoError(t, n.Notify(ctx, Summary{Status: domain.RunFailed, Fatal: errors.New("boom")}))

	lines := tl.Lines()
	require.Len(t, lines, 3)
	assert.Contains(t, lines[0], `"level":"info"`)
	assert.Contains(t, lines[1], `"level":"warn"`)
	assert.Contains(t, lines[1], `"problems":["task \"Gym\" (route): routing gap"]`)
	assert.Contains(t, lines[2], `"level":"error"`)
	assert.Contains(t, lines[2], `"error":"boom"`)
}

type failingNotifier struct{ err error }

func (f failingNotifier) Notify(context.Context, Summary) error { return f.err }

func TestMulti_DeliversToAllAndJoinsErrors(t *testing.T) {
	var buf bytes.Buffer
	errA := errors.New("smtp down")
	m := Multi{failingNotifier{errA}, ConsoleNotifier{Out: &buf, NoColor: true}}

	err := m.Notify(context.Background(), sampleSummary())
	assert.ErrorIs(t, err, errA)
	assert.NotEmpty(t, buf.String(), "later notifiers still run")
}

type recordingNotifier struct {
	got []Summary
}

func (r *recordingNotifier) Notify(_ context.Context, s Summary) error {
	r.got = append(r.got, s)
	return nil
}

func TestAttentionOnly(t *testing.T) {
	rec := &recordingNotifier{}
	n := AttentionOnly{Notifier: rec}

	clean := sampleSummary()
	clean.Skipped = 0
	clean.Problems = nil
	clean.Status = domain.RunSucceeded
	require.NoError(t, n.Notify(context.Background(), clean))
	assert.Empty(t, rec.got)

	require.NoError(t, n.Notify(context.Background(), sampleSummary()))
	assert.Len(t, rec.got, 1)

	fatal := Summary{Fatal: errors.New("boom"), Status: domain.RunFailed}
	require.NoError(t, n.Notify(context.Background(), fatal))
	assert.Len(t, rec.got, 2)
}
