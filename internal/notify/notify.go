// Package notify tells the operator how a sync run went.
package notify

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/alexanderramin/tasksync/internal/domain"
	"github.com/fatih/color"
	"github.com/rs/zerolog"
)

// Summary describes the outcome of one sync run.
type Summary struct {
	RunID     string
	TaskDate  time.Time
	Status    domain.RunStatus
	TaskCount int
	Created   int
	Updated   int
	Skipped   int
	Failed    int

	// Problems lists per-task skips and failures.
	Problems []string

	// Fatal is set when the run aborted.
	Fatal error
}

// Headline is a one-line description of the run.
func (s Summary) Headline() string {
	date := s.TaskDate.Format("2006-01-02")
	if s.Fatal != nil {
		return fmt.Sprintf("sync %s failed: %v", date, s.Fatal)
	}
	return fmt.Sprintf("sync %s %s: %d created, %d updated, %d skipped, %d failed",
		date, s.Status, s.Created, s.Updated, s.Skipped, s.Failed)
}

// NeedsAttention reports whether an operator should look at the run.
func (s Summary) NeedsAttention() bool {
	return s.Fatal != nil || s.Failed > 0 || s.Skipped > 0
}

// Notifier delivers a run summary.
type Notifier interface {
	Notify(ctx context.Context, s Summary) error
}

// Multi fans a summary out to every notifier and joins their errors.
type Multi []Notifier

func (m Multi) Notify(ctx context.Context, s Summary) error {
	var errs []error
	for _, n := range m {
		if err := n.Notify(ctx, s); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// AttentionOnly forwards a summary only when the run needs an operator.
type AttentionOnly struct {
	Notifier Notifier
}

func (a AttentionOnly) Notify(ctx context.Context, s Summary) error {
	if !s.NeedsAttention() {
		return nil
	}
	return a.Notifier.Notify(ctx, s)
}

// LogNotifier writes the summary as a structured log event.
type LogNotifier struct {
	Logger *zerolog.Logger
}

func (n LogNotifier) Notify(_ context.Context, s Summary) error {
	level := zerolog.InfoLevel
	switch {
	case s.Fatal != nil || s.Status == domain.RunFailed:
		level = zerolog.ErrorLevel
	case s.NeedsAttention():
		level = zerolog.WarnLevel
	}

	ev := n.Logger.WithLevel(level).
		Str("run_id", s.RunID).
		Str("date", s.TaskDate.Format("2006-01-02")).
		Str("status", string(s.Status)).
		Int("tasks", s.TaskCount).
		Int("created", s.Created).
		Int("updated", s.Updated).
		Int("skipped", s.Skipped).
		Int("failed", s.Failed).
		Strs("problems", s.Problems)
	if s.Fatal != nil {
		ev = ev.Err(s.Fatal)
	}
	ev.Msg("sync run finished")
	return nil
}

// ConsoleNotifier prints a colored summary for an interactive operator.
type ConsoleNotifier struct {
	Out     io.Writer
	NoColor bool
}

func (n ConsoleNotifier) Notify(_ context.Context, s Summary) error {
	c := n.statusColor(s)
	if _, err := fmt.Fprintln(n.Out, c.Sprint(s.Headline())); err != nil {
		return fmt.Errorf("writing summary: %w", err)
	}

	warn := n.color(color.FgYellow)
	for _, p := range s.Problems {
		if _, err := fmt.Fprintf(n.Out, "  %s %s\n", warn.Sprint("!"), p); err != nil {
			return fmt.Errorf("writing summary: %w", err)
		}
	}
	return nil
}

func (n ConsoleNotifier) statusColor(s Summary) *color.Color {
	switch {
	case s.Fatal != nil || s.Status == domain.RunFailed:
		return n.color(color.FgRed, color.Bold)
	case s.Status == domain.RunPartial:
		return n.color(color.FgYellow)
	case s.Status == domain.RunDryRun:
		return n.color(color.FgCyan)
	default:
		return n.color(color.FgHiGreen)
	}
}

func (n ConsoleNotifier) color(attrs ...color.Attribute) *color.Color {
	c := color.New(attrs...)
	if n.NoColor {
		c.DisableColor()
	} else {
		c.EnableColor()
	}
	return c
}
