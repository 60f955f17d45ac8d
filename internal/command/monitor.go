package command

import (
	"github.com/spf13/cobra"

	"github.com/adamavenir/agentjob/internal/tui"
)

// NewMonitorCmd creates the monitor command.
func NewMonitorCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "monitor",
		Short: "Watch all jobs in a live dashboard",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, err := GetContext(cmd)
			if err != nil {
				return writeCommandError(cmd, err)
			}

			if err := tui.Run(ctx.Store, ctx.Config.Refresh()); err != nil {
				return writeCommandError(cmd, err)
			}
			return nil
		},
	}
}
