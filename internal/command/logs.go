package command

import (
	"fmt"

	"github.com/spf13/cobra"
)

// NewLogsCmd creates the logs command.
func NewLogsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "logs <job_id>",
		Short: "Print a job's harness log",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, err := GetContext(cmd)
			if err != nil {
				return writeCommandError(cmd, err)
			}

			jobID := args[0]
			if _, err := ctx.Store.Read(jobID); err != nil {
				return writeIndentedExit(cmd, map[string]string{
					"error": fmt.Sprintf("Job not found: %s", jobID),
				}, 1)
			}

			tail, _ := cmd.Flags().GetInt("tail")
			lines, err := ctx.Store.TailLog(jobID, tail)
			if err != nil {
				return writeCommandError(cmd, err)
			}

			out := cmd.OutOrStdout()
			for _, line := range lines {
				fmt.Fprintln(out, line)
			}
			return nil
		},
	}

	cmd.Flags().Int("tail", 0, "print only the last N lines (0 = all)")

	return cmd
}
