package command

import (
	"time"

	"github.com/spf13/cobra"
)

// NewListCmd creates the list command.
func NewListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List all jobs, newest first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, err := GetContext(cmd)
			if err != nil {
				return writeCommandError(cmd, err)
			}

			summaries, err := ctx.Store.List(time.Now())
			if err != nil {
				return writeCommandError(cmd, err)
			}

			return writeIndented(cmd, summaries)
		},
	}
}
