package logging

import (
	"bytes"
	"strings"
	"testing"

	"github.com/rs/zerolog"
)

// TestLogger captures JSON log output for assertions.
type TestLogger struct {
	*zerolog.Logger
	Buffer *bytes.Buffer
}

// NewTestLogger returns a trace-level logger writing into a buffer.
func NewTestLogger(t testing.TB) *TestLogger {
	t.Helper()
	buf := &bytes.Buffer{}
	logger := zerolog.New(buf).Level(zerolog.TraceLevel).With().Timestamp().Logger()
	return &TestLogger{Logger: &logger, Buffer: buf}
}

func (tl *TestLogger) Output() string {
	return tl.Buffer.String()
}

func (tl *TestLogger) Contains(substr string) bool {
	return strings.Contains(tl.Output(), substr)
}

// Lines returns one entry per logged event.
func (tl *TestLogger) Lines() []string {
	out := strings.TrimSpace(tl.Output())
	if out == "" {
		return nil
	}
	return strings.Split(out, "\n")
}

// Count returns how many logged events contain substr.
func (tl *TestLogger) Count(substr string) int {
	n := 0
	for _, line := range tl.Lines() {
		if strings.Contains(line, substr) {
			n++
		}
	}
	return n
}
