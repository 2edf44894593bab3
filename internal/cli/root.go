package cli

import (
	"context"
	"io"
	"time"

	"github.com/alexanderramin/tasksync/internal/domain"
	"github.com/alexanderramin/tasksync/internal/repository"
	"github.com/alexanderramin/tasksync/internal/service"
	"github.com/spf13/cobra"
)

// SyncOptions are the per-invocation choices that shape a sync service.
type SyncOptions struct {
	CSVPath string
	DryRun  bool
}

// RoutingStore serves the cached routing table.
type RoutingStore interface {
	RoutingTable(ctx context.Context) (domain.RoutingTable, error)
	Refresh(ctx context.Context) (domain.RoutingTable, error)
}

// App holds references to the services used by CLI commands.
type App struct {
	// NewSync builds a sync service for one run. It is a factory because the
	// task source depends on command flags.
	NewSync func(opts SyncOptions) (service.SyncService, error)

	Routing     RoutingStore
	Collections service.CollectionService
	Runs        service.RunService
	Records     repository.RecordRepo

	// DefaultCSV is used when --csv is not given.
	DefaultCSV string

	// Now defaults to time.Now.
	Now func() time.Time
}

func (a *App) now() time.Time {
	if a.Now != nil {
		return a.Now()
	}
	return time.Now()
}

// NewRootCmd creates the top-level "tasksync" command and registers all
// subcommands against the provided App.
func NewRootCmd(app *App) *cobra.Command {
	root := &cobra.Command{
		Use:           "tasksync",
		Short:         "Reconcile tracked time into billing databases",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	root.AddCommand(
		newSyncCmd(app),
		newRoutingCmd(app),
		newRunsCmd(app),
		newRecordsCmd(app),
		newCollectionsCmd(app),
		newDurationCmd(),
	)

	return root
}

// Execute runs the command tree with the given arguments and writers.
func Execute(ctx context.Context, app *App, args []string, out, errOut io.Writer) error {
	root := NewRootCmd(app)
	root.SetArgs(args)
	root.SetOut(out)
	root.SetErr(errOut)
	return root.ExecuteContext(ctx)
}
