package cli

import (
	"fmt"

	"github.com/alexanderramin/tasksync/internal/cli/formatter"
	"github.com/spf13/cobra"
)

func newRecordsCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "records",
		Short: "Inspect records in the local ledger",
	}
	cmd.AddCommand(newRecordsListCmd(app))
	return cmd
}

func newRecordsListCmd(app *App) *cobra.Command {
	var collection string
	var date dateFlag

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List records of a collection",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			c, err := resolveCollection(ctx, app, collection)
			if err != nil {
				return err
			}

			records, err := app.Records.ListByCollection(ctx, c.ID, date.Ptr())
			if err != nil {
				return err
			}
			fmt.Fprint(cmd.OutOrStdout(), formatter.FormatRecords(c, records))
			return nil
		},
	}

	cmd.Flags().StringVar(&collection, "collection", "", "Collection ID, name or ID prefix")
	addDateFlag(cmd.Flags(), &date, "Only records for this date (YYYY-MM-DD)")
	_ = cmd.MarkFlagRequired("collection")
	return cmd
}
