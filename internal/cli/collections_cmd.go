package cli

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/alexanderramin/tasksync/internal/cli/formatter"
	"github.com/alexanderramin/tasksync/internal/domain"
	"github.com/spf13/cobra"
)

// resolveCollection finds a collection by exact ID, then by case-insensitive
// name, then by unique ID prefix.
func resolveCollection(ctx context.Context, app *App, input string) (*domain.Collection, error) {
	if input == "" {
		return nil, errors.New("collection is required")
	}
	all, err := app.Collections.List(ctx)
	if err != nil {
		return nil, err
	}

	for _, c := range all {
		if c.ID == input {
			return c, nil
		}
	}
	for _, c := range all {
		if strings.EqualFold(c.Name, input) {
			return c, nil
		}
	}

	var matches []*domain.Collection
	for _, c := range all {
		if strings.HasPrefix(c.ID, input) {
			matches = append(matches, c)
		}
	}
	switch len(matches) {
	case 0:
		return nil, fmt.Errorf("collection not found: %q", input)
	case 1:
		return matches[0], nil
	default:
		return nil, fmt.Errorf("collection ID prefix %q is ambiguous (%d matches)", input, len(matches))
	}
}

func newCollectionsCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "collections",
		Short: "Manage local ledger collections",
	}
	cmd.AddCommand(
		newCollectionsAddCmd(app),
		newCollectionsListCmd(app),
		newCollectionsInitCmd(app),
	)
	return cmd
}

func newCollectionsAddCmd(app *App) *cobra.Command {
	var name string
	var anchor int

	cmd := &cobra.Command{
		Use:   "add",
		Short: "Create a collection",
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := app.Collections.Add(cmd.Context(), name, anchor)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Created collection %s [%s]\n", c.Name, c.ID)
			return nil
		},
	}

	cmd.Flags().StringVar(&name, "name", "", "Collection name")
	cmd.Flags().IntVar(&anchor, "anchor", 1, "Billing anchor day of month (1-31)")
	_ = cmd.MarkFlagRequired("name")
	return cmd
}

func newCollectionsListCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List collections",
		RunE: func(cmd *cobra.Command, args []string) error {
			cs, err := app.Collections.List(cmd.Context())
			if err != nil {
				return err
			}
			fmt.Fprint(cmd.OutOrStdout(), formatter.FormatCollections(cs))
			return nil
		},
	}
}

func newCollectionsInitCmd(app *App) *cobra.Command {
	var anchor int

	cmd := &cobra.Command{
		Use:   "init",
		Short: "Create a collection for every database in the routing table",
		RunE: func(cmd *cobra.Command, args []string) error {
			if app.Routing == nil {
				return errors.New("routing is not configured")
			}
			table, err := app.Routing.RoutingTable(cmd.Context())
			if err != nil {
				return err
			}
			created, err := app.Collections.EnsureFromRouting(cmd.Context(), table, anchor)
			if err != nil {
				return err
			}
			if len(created) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "All routed collections already exist.")
				return nil
			}
			fmt.Fprint(cmd.OutOrStdout(), formatter.FormatCollections(created))
			return nil
		},
	}

	cmd.Flags().IntVar(&anchor, "anchor", 1, "Billing anchor day for new collections")
	return cmd
}
