package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/alexanderramin/tasksync/internal/classify"
	"github.com/alexanderramin/tasksync/internal/cli"
	"github.com/alexanderramin/tasksync/internal/config"
	"github.com/alexanderramin/tasksync/internal/db"
	"github.com/alexanderramin/tasksync/internal/domain"
	"github.com/alexanderramin/tasksync/internal/ingest"
	"github.com/alexanderramin/tasksync/internal/llm"
	"github.com/alexanderramin/tasksync/internal/logging"
	"github.com/alexanderramin/tasksync/internal/notify"
	"github.com/alexanderramin/tasksync/internal/notion"
	"github.com/alexanderramin/tasksync/internal/reconcile"
	"github.com/alexanderramin/tasksync/internal/repository"
	"github.com/alexanderramin/tasksync/internal/routing"
	"github.com/alexanderramin/tasksync/internal/service"
	"github.com/mattn/go-isatty"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load(config.LoadOptions{ConfigFile: os.Getenv("TASKSYNC_CONFIG")})
	if err != nil {
		return err
	}

	logger := logging.New(cfg.Log.Logging())
	logging.SetDefault(logger)
	log := &logger

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	ctx = logging.WithLogger(ctx, log)

	// Open database
	database, err := db.OpenDB(cfg.DBPath)
	if err != nil {
		return fmt.Errorf("opening database: %w", err)
	}
	defer database.Close()

	// Wire repositories
	collectionRepo := repository.NewSQLiteCollectionRepo(database)
	recordRepo := repository.NewSQLiteRecordRepo(database)
	runRepo := repository.NewSQLiteSyncRunRepo(database)
	cacheRepo := repository.NewSQLiteCacheRepo(database)
	uow := db.NewSQLiteUnitOfWork(database)

	if n, err := cacheRepo.PurgeExpired(ctx); err != nil {
		log.Warn().Err(err).Msg("purging expired cache entries")
	} else if n > 0 {
		log.Debug().Int64("purged", n).Msg("purged expired cache entries")
	}

	policy := cfg.Retry.Policy()
	policy.Logger = log

	// Notion client (only when a component needs it)
	var notionClient *notion.Client
	if cfg.NeedsNotion() && cfg.Notion.APIKey != "" {
		opts := []notion.Option{notion.WithLogger(log)}
		if cfg.Notion.BaseURL != "" {
			opts = append(opts, notion.WithBaseURL(cfg.Notion.BaseURL))
		}
		if notionClient, err = notion.NewClient(cfg.Notion.APIKey, opts...); err != nil {
			return err
		}
	}

	// Routing table
	var source routing.Source
	switch {
	case cfg.Routing.Source == config.RoutingFile:
		source = routing.FileSource{Path: cfg.Routing.File}
	case notionClient != nil:
		source = notion.ConfigSource{Client: notionClient, DatabaseID: cfg.Notion.ConfigDatabaseID}
	default:
		source = routing.SourceFunc(func(context.Context) (domain.RoutingTable, error) {
			return domain.RoutingTable{}, cfg.Validate()
		})
	}
	routingStore := routing.NewStore(source, cacheRepo,
		routing.WithTTL(cfg.Routing.CacheTTL),
		routing.WithRetryPolicy(policy),
		routing.WithLogger(log),
	)

	// Record store
	var store reconcile.RecordStore = recordRepo
	if cfg.Store == config.StoreNotion && notionClient != nil {
		store = notionClient
	}

	noColor := cfg.Log.NoColor || !isatty.IsTerminal(os.Stdout.Fd())
	notifier := notify.Multi{
		notify.LogNotifier{Logger: log},
		notify.AttentionOnly{Notifier: notify.ConsoleNotifier{Out: os.Stderr, NoColor: noColor}},
	}

	app := &cli.App{
		Routing:     routingStore,
		Collections: service.NewCollectionService(collectionRepo, uow),
		Runs:        service.NewRunService(runRepo),
		Records:     recordRepo,
		DefaultCSV:  cfg.CSVPath,
	}

	app.NewSync = func(opts cli.SyncOptions) (service.SyncService, error) {
		if err := cfg.Validate(); err != nil {
			return nil, err
		}

		var observer llm.Observer = llm.NoopObserver{}
		if cfg.LLM.LogCalls {
			observer = llm.NewLogObserver(log)
		}
		llmClient, err := llm.NewClient(cfg.LLM, observer)
		if err != nil {
			return nil, err
		}

		csvSource := ingest.NewCSVSource(opts.CSVPath, log)
		csvSource.WriteBack = !opts.DryRun

		return service.NewSyncService(service.SyncDeps{
			Routing:    routingStore,
			Source:     csvSource,
			Classifier: classify.NewLLMClassifier(llmClient, log),
			Planner:    reconcile.NewEngine(store, reconcile.WithRetryPolicy(policy), reconcile.WithLogger(log)),
			Writer:     store,
			Runs:       runRepo,
			Notifier:   notifier,
			Retry:      policy,
			Logger:     log,
		}, service.NewLogUseCaseObserver(log)), nil
	}

	return cli.Execute(ctx, app, os.Args[1:], os.Stdout, os.Stderr)
}
