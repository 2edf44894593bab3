package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/alexanderramin/tasksync/internal/classify"
	"github.com/alexanderramin/tasksync/internal/domain"
	"github.com/alexanderramin/tasksync/internal/ingest"
	"github.com/alexanderramin/tasksync/internal/logging"
	"github.com/alexanderramin/tasksync/internal/notify"
	"github.com/alexanderramin/tasksync/internal/reconcile"
	"github.com/alexanderramin/tasksync/internal/repository"
	"github.com/alexanderramin/tasksync/internal/retry"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// SyncDeps are the collaborators of a sync run. Runs and Notifier are optional.
type SyncDeps struct {
	Routing    RoutingLoader
	Source     ingest.TaskSource
	Classifier classify.Classifier
	Planner    Planner
	Writer     RecordWriter
	Runs       repository.SyncRunRepo
	Notifier   notify.Notifier
	Retry      retry.Policy
	Logger     *zerolog.Logger

	// Now defaults to time.Now.
	Now func() time.Time
}

type syncService struct {
	deps     SyncDeps
	observer UseCaseObserver
}

func NewSyncService(deps SyncDeps, observers ...UseCaseObserver) SyncService {
	if deps.Now == nil {
		deps.Now = time.Now
	}
	if deps.Retry.MaxAttempts == 0 {
		deps.Retry = retry.DefaultPolicy()
	}
	return &syncService{deps: deps, observer: useCaseObserverOrNoop(observers)}
}

func (s *syncService) Run(ctx context.Context, req SyncRequest) (report *SyncReport, err error) {
	startedAt := s.deps.Now()
	date := req.Date
	if date.IsZero() {
		date = startedAt
	}
	date = time.Date(date.Year(), date.Month(), date.Day(), 0, 0, 0, 0, time.UTC)

	run := &domain.SyncRun{
		ID:        uuid.New().String(),
		StartedAt: startedAt,
		TaskDate:  date,
	}
	log := s.log(ctx).With().Str("run_id", run.ID).Str("date", date.Format("2006-01-02")).Logger()
	ctx = logging.WithLogger(ctx, &log)
	report = &SyncReport{Run: run}

	defer func() {
		run.FinishedAt = s.deps.Now()
		if err != nil {
			run.Status = domain.RunFailed
			run.Error = err.Error()
		}
		s.finish(ctx, report, err)
		s.observer.ObserveUseCase(ctx, UseCaseEvent{
			Name:      "sync",
			StartedAt: startedAt,
			Duration:  run.FinishedAt.Sub(startedAt),
			Success:   err == nil,
			Err:       err,
			Fields: map[string]any{
				"status":  string(run.Status),
				"created": run.Created,
				"updated": run.Updated,
				"skipped": run.Skipped,
				"failed":  run.Failed,
				"dry_run": req.DryRun,
			},
		})
	}()

	table, err := s.deps.Routing.Load(ctx)
	if err != nil {
		return report, fmt.Errorf("loading routing table: %w", err)
	}

	tasks, rowErrs, err := s.deps.Source.ReadTasks(ctx)
	if err != nil {
		return report, fmt.Errorf("reading tasks: %w", err)
	}
	report.RowErrors = rowErrs
	run.TaskCount = len(tasks)
	if len(tasks) == 0 {
		log.Info().Msg("no tasks to sync")
		run.Skipped = len(rowErrs)
		run.Status = statusFor(run, req.DryRun)
		return report, nil
	}

	names := make([]string, len(tasks))
	for i, t := range tasks {
		names[i] = t.Name
	}
	categorized, err := s.deps.Classifier.Classify(ctx, names)
	if err != nil {
		return report, err
	}
	report.Unclassified = unclassified(tasks, categorized)
	for _, u := range report.Unclassified {
		log.Warn().Str("task", u.Task).Msg("task not classified")
	}

	plan, err := s.deps.Planner.Plan(ctx, reconcile.PlanInput{
		Date:        date,
		Tasks:       tasks,
		Categorized: categorized,
		Routing:     table,
	})
	report.Plan = plan
	if err != nil {
		return report, fmt.Errorf("planning: %w", err)
	}
	run.Skipped = len(rowErrs) + len(report.Unclassified) + len(plan.Skipped)

	if req.DryRun {
		run.Created, run.Updated = plan.Counts()
		run.Status = domain.RunDryRun
		return report, nil
	}

	for _, in := range plan.Intents {
		res, err := s.apply(ctx, in)
		if err != nil {
			return report, err
		}
		report.Results = append(report.Results, res)
		switch {
		case res.Err != nil:
			run.Failed++
		case in.Kind == domain.IntentCreate:
			run.Created++
		default:
			run.Updated++
		}
	}
	run.Status = statusFor(run, false)
	return report, nil
}

// apply writes one intent through the retry policy. Store failures are
// returned in the result; only cancellation is returned as an error.
func (s *syncService) apply(ctx context.Context, in domain.Intent) (IntentResult, error) {
	log := logging.FromContext(ctx)
	policy := s.deps.Retry
	if policy.Logger == nil {
		policy.Logger = log
	}

	res := IntentResult{Intent: in, RecordID: in.RecordID}
	var (
		err    error
		op     string
		target string
	)
	switch in.Kind {
	case domain.IntentCreate:
		op, target = "create", string(in.DatabaseRef)
		res.RecordID, err = retry.DoValue(ctx, policy, "create record", func(ctx context.Context) (string, error) {
			return s.deps.Writer.CreateRecord(ctx, target, in.Fields())
		})
	case domain.IntentUpdate:
		op, target = "update", in.RecordID
		err = retry.Do(ctx, policy, "update record", func(ctx context.Context) error {
			return s.deps.Writer.UpdateRecord(ctx, target, in.Fields())
		})
	default:
		return res, fmt.Errorf("unknown intent kind %q", in.Kind)
	}

	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return res, ctxErr
		}
		res.Err = &domain.RemoteOperationError{Operation: op, Target: target, Err: err}
		log.Error().Err(err).Str("task", in.Name).Str("operation", op).Msg("applying intent failed")
		return res, nil
	}

	log.Info().
		Str("task", in.Name).
		Str("operation", op).
		Str("record_id", res.RecordID).
		Float64("duration_hours", in.DurationHours).
		Msg("applied intent")
	return res, nil
}

// finish persists the run and notifies the operator. Failures here are logged
// and never override the run outcome.
func (s *syncService) finish(ctx context.Context, report *SyncReport, runErr error) {
	log := logging.FromContext(ctx)
	run := report.Run

	if s.deps.Runs != nil {
		if err := s.deps.Runs.Create(ctx, run); err != nil {
			log.Error().Err(err).Msg("recording sync run")
		}
	}

	if s.deps.Notifier == nil {
		return
	}
	summary := notify.Summary{
		RunID:     run.ID,
		TaskDate:  run.TaskDate,
		Status:    run.Status,
		TaskCount: run.TaskCount,
		Created:   run.Created,
		Updated:   run.Updated,
		Skipped:   run.Skipped,
		Failed:    run.Failed,
		Problems:  problems(report),
		Fatal:     runErr,
	}
	if err := s.deps.Notifier.Notify(ctx, summary); err != nil {
		log.Warn().Err(err).Msg("notifying operator")
	}
}

func (s *syncService) log(ctx context.Context) *zerolog.Logger {
	if s.deps.Logger != nil {
		return s.deps.Logger
	}
	return logging.FromContext(ctx)
}

func statusFor(run *domain.SyncRun, dryRun bool) domain.RunStatus {
	switch {
	case dryRun:
		return domain.RunDryRun
	case run.Failed > 0 && run.Created+run.Updated == 0:
		return domain.RunFailed
	case run.Failed > 0 || run.Skipped > 0:
		return domain.RunPartial
	default:
		return domain.RunSucceeded
	}
}

// unclassified returns the tasks no classifier entry refers to.
func unclassified(tasks []domain.Task, categorized []domain.CategorizedTask) []*domain.TaskError {
	seen := make(map[string]bool, len(categorized)*2)
	for _, c := range categorized {
		seen[c.OriginalName] = true
		stripped, _ := domain.ExtractTaskIDMarker(c.OriginalName)
		seen[stripped] = true
	}

	var out []*domain.TaskError
	for _, t := range tasks {
		stripped, _ := domain.ExtractTaskIDMarker(t.Name)
		if seen[t.Name] || seen[stripped] {
			continue
		}
		out = append(out, &domain.TaskError{
			Task:  t.Name,
			Stage: domain.StageClassify,
			Err:   errors.New("no classification returned"),
		})
	}
	return out
}

func problems(r *SyncReport) []string {
	var out []string
	for _, e := range r.RowErrors {
		out = append(out, e.Error())
	}
	for _, e := range r.Unclassified {
		out = append(out, e.Error())
	}
	if r.Plan != nil {
		for _, e := range r.Plan.Skipped {
			out = append(out, e.Error())
		}
	}
	for _, e := range r.Failures() {
		out = append(out, e.Error())
	}
	return out
}
