package cli

import (
	"fmt"

	"github.com/alexanderramin/tasksync/internal/reconcile"
	"github.com/spf13/cobra"
)

func newDurationCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "duration H:MM:SS...",
		Short: "Convert durations to billable quarter hours",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var failed int
			for _, text := range args {
				hours, err := reconcile.ParseDuration(text)
				if err != nil {
					fmt.Fprintf(cmd.ErrOrStderr(), "%s: %v\n", text, err)
					failed++
					continue
				}
				fmt.Fprintf(cmd.OutOrStdout(), "%s\t%.2f\n", text, hours)
			}
			if failed > 0 {
				return fmt.Errorf("%d of %d durations could not be parsed", failed, len(args))
			}
			return nil
		},
	}
}
