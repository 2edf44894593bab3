package cli

import (
	"errors"
	"fmt"

	"github.com/alexanderramin/tasksync/internal/cli/formatter"
	"github.com/alexanderramin/tasksync/internal/service"
	"github.com/spf13/cobra"
)

func newSyncCmd(app *App) *cobra.Command {
	var csvPath string
	var date dateFlag
	var dryRun bool

	cmd := &cobra.Command{
		Use:   "sync",
		Short: "Reconcile a time-tracking export into the record store",
		Long: `Reads the task summary export, classifies each task, and creates or
updates one record per task in the database its category routes to.
With --dry-run the planned writes are shown and nothing is written.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if app.NewSync == nil {
				return errors.New("sync is not configured")
			}
			if csvPath == "" {
				csvPath = app.DefaultCSV
			}
			if csvPath == "" {
				return errors.New("no task export given: pass --csv or set csv_path")
			}

			req := service.SyncRequest{DryRun: dryRun, Date: app.now()}
			if d := date.Ptr(); d != nil {
				req.Date = *d
			}

			svc, err := app.NewSync(SyncOptions{CSVPath: csvPath, DryRun: dryRun})
			if err != nil {
				return err
			}
			report, runErr := svc.Run(cmd.Context(), req)
			if report != nil {
				fmt.Fprintln(cmd.OutOrStdout(), formatter.FormatSyncReport(report))
			}
			return runErr
		},
	}

	cmd.Flags().StringVar(&csvPath, "csv", "", "Path to the task summary export")
	addDateFlag(cmd.Flags(), &date, "Date the tasks were worked (YYYY-MM-DD, default today)")
	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "Plan only; write nothing")

	return cmd
}
