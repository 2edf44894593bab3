package cli

import (
	"errors"
	"fmt"

	"github.com/alexanderramin/tasksync/internal/cli/formatter"
	"github.com/alexanderramin/tasksync/internal/routing"
	"github.com/spf13/cobra"
)

func newRoutingCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "routing",
		Short: "Inspect the category to database routing table",
	}
	cmd.AddCommand(newRoutingShowCmd(app))
	cmd.AddCommand(newRoutingExportCmd(app))
	return cmd
}

func newRoutingShowCmd(app *App) *cobra.Command {
	var refresh bool

	cmd := &cobra.Command{
		Use:   "show",
		Short: "Show the routing table",
		RunE: func(cmd *cobra.Command, args []string) error {
			if app.Routing == nil {
				return errors.New("routing is not configured")
			}
			load := app.Routing.RoutingTable
			if refresh {
				load = app.Routing.Refresh
			}
			table, err := load(cmd.Context())
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), formatter.FormatRoutingTable(table))
			return nil
		},
	}

	cmd.Flags().BoolVar(&refresh, "refresh", false, "Bypass the cache and fetch the table again")
	return cmd
}

func newRoutingExportCmd(app *App) *cobra.Command {
	var refresh bool

	cmd := &cobra.Command{
		Use:   "export <file>",
		Short: "Write the routing table to a YAML file usable as routing_file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if app.Routing == nil {
				return errors.New("routing is not configured")
			}
			load := app.Routing.RoutingTable
			if refresh {
				load = app.Routing.Refresh
			}
			table, err := load(cmd.Context())
			if err != nil {
				return err
			}
			if err := routing.WriteFile(args[0], table); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Routing table written to %s\n", args[0])
			return nil
		},
	}

	cmd.Flags().BoolVar(&refresh, "refresh", false, "Bypass the cache and fetch the table again")
	return cmd
}
