package reconcile

import (
	"context"
	"fmt"
	"time"

	"github.com/alexanderramin/tasksync/internal/domain"
	"github.com/alexanderramin/tasksync/internal/logging"
	"github.com/alexanderramin/tasksync/internal/retry"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// PlanInput is everything one reconciliation pass needs.
type PlanInput struct {
	Date        time.Time
	Tasks       []domain.Task
	Categorized []domain.CategorizedTask
	Routing     domain.RoutingTable
}

// Plan is the outcome of a pass: intents to apply and tasks that were dropped.
type Plan struct {
	Date    time.Time
	Intents []domain.Intent
	Skipped []*domain.TaskError
}

// Counts returns the number of create and update intents.
func (p *Plan) Counts() (creates, updates int) {
	for _, in := range p.Intents {
		switch in.Kind {
		case domain.IntentCreate:
			creates++
		case domain.IntentUpdate:
			updates++
		}
	}
	return creates, updates
}

// Engine turns classified tasks into create/update intents.
type Engine struct {
	store  SnapshotReader
	policy retry.Policy
	logger *zerolog.Logger
	newID  func() string
}

// Option configures an Engine.
type Option func(*Engine)

func WithRetryPolicy(p retry.Policy) Option {
	return func(e *Engine) { e.policy = p }
}

func WithLogger(l *zerolog.Logger) Option {
	return func(e *Engine) { e.logger = l }
}

// WithIDGenerator overrides how fresh stable IDs are minted.
func WithIDGenerator(fn func() string) Option {
	return func(e *Engine) { e.newID = fn }
}

// NewEngine creates an Engine reading snapshots from store.
func NewEngine(store SnapshotReader, opts ...Option) *Engine {
	e := &Engine{
		store:  store,
		policy: retry.DefaultPolicy(),
		newID:  func() string { return uuid.New().String() },
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// pass holds the per-collection reads of a single Plan call. Nothing in it
// outlives the call.
type pass struct {
	date      time.Time
	snapshots map[domain.DatabaseRef]snapshot
	anchors   map[domain.DatabaseRef]anchor
}

type snapshot struct {
	records []domain.ExistingRecord
	err     error
}

type anchor struct {
	day int
	err error
}

// Plan reconciles every categorized task. Per-task failures are collected in
// Plan.Skipped; only context cancellation aborts the pass.
func (e *Engine) Plan(ctx context.Context, in PlanInput) (*Plan, error) {
	log := e.log(ctx)
	date := dateOnly(in.Date)
	byName := indexTasks(in.Tasks)

	p := &pass{
		date:      date,
		snapshots: make(map[domain.DatabaseRef]snapshot),
		anchors:   make(map[domain.DatabaseRef]anchor),
	}
	plan := &Plan{Date: date}

	for _, cat := range in.Categorized {
		if err := ctx.Err(); err != nil {
			return plan, err
		}

		intent, terr := e.reconcileOne(ctx, p, byName, cat, in.Routing)
		if terr != nil {
			level := zerolog.WarnLevel
			if terr.Stage == domain.StageMatch || terr.Stage == domain.StageBilling {
				level = zerolog.ErrorLevel
			}
			log.WithLevel(level).
				Err(terr.Err).
				Str("task", terr.Task).
				Str("stage", string(terr.Stage)).
				Msg("skipping task")
			plan.Skipped = append(plan.Skipped, terr)
			continue
		}

		log.Debug().
			Str("task", intent.Name).
			Str("kind", string(intent.Kind)).
			Float64("duration_hours", intent.DurationHours).
			Msg("planned intent")
		plan.Intents = append(plan.Intents, *intent)
	}

	creates, updates := plan.Counts()
	log.Info().
		Time("date", date).
		Int("creates", creates).
		Int("updates", updates).
		Int("skipped", len(plan.Skipped)).
		Msg("reconciliation planned")
	return plan, nil
}

func (e *Engine) reconcileOne(
	ctx context.Context,
	p *pass,
	byName map[string]domain.Task,
	cat domain.CategorizedTask,
	table domain.RoutingTable,
) (*domain.Intent, *domain.TaskError) {
	name := cat.DisplayName()

	// Parsed
	task, ok := lookupTask(byName, cat.OriginalName)
	if !ok {
		return nil, &domain.TaskError{Task: cat.OriginalName, Stage: domain.StageIngest, Err: domain.ErrUnknownTask}
	}

	// Routed
	ref := Route(cat.Category, cat.ClientName, table)
	if ref == "" {
		return nil, &domain.TaskError{
			Task:  name,
			Stage: domain.StageRoute,
			Err:   fmt.Errorf("%w: category %q client %q", domain.ErrRoutingGap, cat.Category, cat.ClientName),
		}
	}

	// Matched
	snap := e.snapshotFor(ctx, p, ref)
	if snap.err != nil {
		return nil, &domain.TaskError{Task: name, Stage: domain.StageMatch, Err: snap.err}
	}

	candidateID := cat.StableID
	if candidateID == "" && !task.GeneratedID {
		candidateID = task.StableID
	}

	existing, found := FindMatch(name, candidateID, snap.records)
	if !found {
		return &domain.Intent{
			Kind:          domain.IntentCreate,
			DatabaseRef:   ref,
			Name:          name,
			DurationHours: task.DurationHours,
			Date:          p.date,
			Category:      cat.Category,
			Client:        cat.ClientName,
			StableID:      domain.CoalesceStr(candidateID, task.StableID, e.newID()),
		}, nil
	}

	a := e.anchorFor(ctx, p, ref)
	if a.err != nil {
		return nil, &domain.TaskError{Task: name, Stage: domain.StageBilling, Err: a.err}
	}

	// The task's ID wins over the record's so the ID written back to the
	// export is the one the record carries on the next run.
	update := &domain.Intent{
		Kind:          domain.IntentUpdate,
		RecordID:      existing.RecordID,
		Name:          name,
		DurationHours: task.DurationHours,
		Category:      cat.Category,
		StableID:      domain.CoalesceStr(candidateID, task.StableID, existing.StableID, e.newID()),
	}

	billing, err := AllocateBillingHours(p.date, a.day, task.DurationHours)
	if err != nil {
		// The duration is still replaced; the stored month total is left alone.
		e.log(ctx).Warn().
			Err(err).
			Str("task", name).
			Str("database_id", string(ref)).
			Msg("billing hours not updated")
		return update, nil
	}
	update.BillingMonthHours = &billing
	return update, nil
}

func (e *Engine) snapshotFor(ctx context.Context, p *pass, ref domain.DatabaseRef) snapshot {
	if s, ok := p.snapshots[ref]; ok {
		return s
	}
	records, err := retry.DoValue(ctx, e.retryPolicy(ctx), "query existing records", func(ctx context.Context) ([]domain.ExistingRecord, error) {
		return e.store.QueryExisting(ctx, string(ref), p.date)
	})
	s := snapshot{records: records}
	if err != nil {
		s.err = &domain.RemoteOperationError{Operation: "query", Target: string(ref), Err: err}
	} else {
		e.log(ctx).Info().
			Str("database_id", string(ref)).
			Int("existing", len(records)).
			Msg("loaded existing records")
	}
	p.snapshots[ref] = s
	return s
}

func (e *Engine) anchorFor(ctx context.Context, p *pass, ref domain.DatabaseRef) anchor {
	if a, ok := p.anchors[ref]; ok {
		return a
	}
	day, err := retry.DoValue(ctx, e.retryPolicy(ctx), "fetch billing anchor", func(ctx context.Context) (int, error) {
		return e.store.GetBillingAnchor(ctx, string(ref))
	})
	a := anchor{day: day}
	if err != nil {
		a.err = &domain.RemoteOperationError{Operation: "billing anchor", Target: string(ref), Err: err}
	}
	p.anchors[ref] = a
	return a
}

func (e *Engine) log(ctx context.Context) *zerolog.Logger {
	if e.logger != nil {
		return e.logger
	}
	return logging.FromContext(ctx)
}

func (e *Engine) retryPolicy(ctx context.Context) retry.Policy {
	p := e.policy
	if p.Logger == nil {
		p.Logger = e.log(ctx)
	}
	return p
}

// indexTasks keys tasks by name, both as ingested and with any TaskID marker
// removed. The first task with a given key wins.
func indexTasks(tasks []domain.Task) map[string]domain.Task {
	byName := make(map[string]domain.Task, len(tasks)*2)
	for _, t := range tasks {
		if _, ok := byName[t.Name]; !ok {
			byName[t.Name] = t
		}
		stripped, _ := domain.ExtractTaskIDMarker(t.Name)
		if _, ok := byName[stripped]; !ok {
			byName[stripped] = t
		}
	}
	return byName
}

func lookupTask(byName map[string]domain.Task, name string) (domain.Task, bool) {
	if t, ok := byName[name]; ok {
		return t, true
	}
	stripped, _ := domain.ExtractTaskIDMarker(name)
	t, ok := byName[stripped]
	return t, ok
}
