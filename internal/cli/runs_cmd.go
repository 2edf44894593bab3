package cli

import (
	"fmt"

	"github.com/alexanderramin/tasksync/internal/cli/formatter"
	"github.com/spf13/cobra"
)

func newRunsCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "runs",
		Short: "Inspect past sync runs",
	}
	cmd.AddCommand(newRunsListCmd(app))
	return cmd
}

func newRunsListCmd(app *App) *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List recent sync runs",
		RunE: func(cmd *cobra.Command, args []string) error {
			runs, err := app.Runs.ListRecent(cmd.Context(), limit)
			if err != nil {
				return err
			}
			fmt.Fprint(cmd.OutOrStdout(), formatter.FormatRuns(runs, app.now()))
			return nil
		},
	}

	cmd.Flags().IntVar(&limit, "limit", 20, "Number of runs to show")
	return cmd
}
