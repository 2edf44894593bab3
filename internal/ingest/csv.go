// Package ingest reads time-tracking exports into domain tasks.
package ingest

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/alexanderramin/tasksync/internal/domain"
	"github.com/alexanderramin/tasksync/internal/reconcile"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// DefaultHeaderRows is the size of the export's preamble.
const DefaultHeaderRows = 6

const (
	colName = iota
	colDuration
	colPercentage
	colTaskID
	minColumns
)

// RowError reports a row that could not be turned into a task.
type RowError struct {
	Line int
	Name string
	Err  error
}

func (e *RowError) Error() string {
	return fmt.Sprintf("line %d (%q): %v", e.Line, e.Name, e.Err)
}

func (e *RowError) Unwrap() error {
	return e.Err
}

// TaskSource yields the tasks of one export.
type TaskSource interface {
	ReadTasks(ctx context.Context) ([]domain.Task, []*RowError, error)
}

// CSVSource reads a summary export: a preamble of HeaderRows lines, then one
// row per task with name, H:MM:SS duration, percentage and task ID columns.
// Rows whose name is empty or starts with '#' are ignored.
type CSVSource struct {
	Path       string
	HeaderRows int

	// WriteBack stores generated task IDs into the file so later runs reuse them.
	WriteBack bool

	NewID  func() string
	Logger *zerolog.Logger
}

// NewCSVSource returns a CSVSource with the default preamble and write-back on.
func NewCSVSource(path string, logger *zerolog.Logger) *CSVSource {
	return &CSVSource{Path: path, HeaderRows: DefaultHeaderRows, WriteBack: true, Logger: logger}
}

func (s *CSVSource) ReadTasks(ctx context.Context) ([]domain.Task, []*RowError, error) {
	log := s.Logger
	if log == nil {
		nop := zerolog.Nop()
		log = &nop
	}
	newID := s.NewID
	if newID == nil {
		newID = func() string { return uuid.New().String() }
	}

	rows, err := s.readRows()
	if err != nil {
		return nil, nil, err
	}

	var (
		tasks     []domain.Task
		rowErrs   []*RowError
		generated int
	)
	for i := s.HeaderRows; i < len(rows); i++ {
		if err := ctx.Err(); err != nil {
			return nil, nil, err
		}
		row := rows[i]
		line := i + 1
		name := strings.TrimSpace(cell(row, colName))
		if name == "" || strings.HasPrefix(name, "#") {
			continue
		}

		raw := strings.TrimSpace(cell(row, colDuration))
		hours, err := reconcile.ParseDuration(raw)
		if err != nil {
			rowErr := &RowError{Line: line, Name: name, Err: err}
			log.Warn().Err(err).Int("line", line).Str("task", name).Msg("skipping row")
			rowErrs = append(rowErrs, rowErr)
			continue
		}

		task := domain.Task{
			Name:          name,
			RawDuration:   raw,
			DurationHours: hours,
			StableID:      strings.TrimSpace(cell(row, colTaskID)),
		}
		if task.StableID == "" {
			task.StableID = newID()
			task.GeneratedID = true
			rows[i] = withTaskID(row, task.StableID)
			generated++
		}
		log.Debug().
			Str("task", name).
			Str("duration", raw).
			Float64("hours", hours).
			Str("task_id", task.StableID).
			Msg("read task")
		tasks = append(tasks, task)
	}

	if generated > 0 && s.WriteBack {
		if err := writeAtomic(s.Path, rows); err != nil {
			return nil, nil, fmt.Errorf("storing generated task ids: %w", err)
		}
		log.Info().Int("generated", generated).Str("path", s.Path).Msg("stored generated task ids")
	}

	log.Info().Int("tasks", len(tasks)).Int("skipped", len(rowErrs)).Msg("read task export")
	return tasks, rowErrs, nil
}

func (s *CSVSource) readRows() ([][]string, error) {
	f, err := os.Open(s.Path)
	if err != nil {
		return nil, fmt.Errorf("opening task export: %w", err)
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.FieldsPerRecord = -1
	r.LazyQuotes = true

	var rows [][]string
	for {
		row, err := r.Read()
		if errors.Is(err, io.EOF) {
			return rows, nil
		}
		if err != nil {
			return nil, fmt.Errorf("reading task export %s: %w", s.Path, err)
		}
		rows = append(rows, row)
	}
}

func cell(row []string, i int) string {
	if i < len(row) {
		return row[i]
	}
	return ""
}

func withTaskID(row []string, id string) []string {
	if len(row) < minColumns {
		padded := make([]string, minColumns)
		copy(padded, row)
		row = padded
	}
	row[colTaskID] = id
	return row
}

// writeAtomic replaces path with rows via a temp file in the same directory.
func writeAtomic(path string, rows [][]string) error {
	mode := os.FileMode(0o644)
	if info, err := os.Stat(path); err == nil {
		mode = info.Mode().Perm()
	}

	tmp, err := os.CreateTemp(filepath.Dir(path), "."+filepath.Base(path)+".*")
	if err != nil {
		return fmt.Errorf("creating temp file: %w", err)
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName)

	w := csv.NewWriter(tmp)
	if err := w.WriteAll(rows); err != nil {
		tmp.Close()
		return fmt.Errorf("writing temp file: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return fmt.Errorf("syncing temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("closing temp file: %w", err)
	}
	if err := os.Chmod(tmpName, mode); err != nil {
		return fmt.Errorf("setting file mode: %w", err)
	}
	if err := os.Rename(tmpName, path); err != nil {
		return fmt.Errorf("replacing %s: %w", path, err)
	}
	return nil
}
