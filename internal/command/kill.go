package command

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/adamavenir/agentjob/internal/supervisor"
)

// NewKillCmd creates the kill command.
func NewKillCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "kill <job_id>",
		Short: "Terminate a job's harness process",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, err := GetContext(cmd)
			if err != nil {
				return writeCommandError(cmd, err)
			}

			jobID := args[0]
			st, err := ctx.Store.Read(jobID)
			if err != nil {
				return writeIndentedExit(cmd, map[string]string{
					"error": fmt.Sprintf("Job not found: %s", jobID),
				}, 1)
			}

			// The job's monitor notices the death and finalizes the record.
			killed := supervisor.KillJob(st.PID)
			return writeIndented(cmd, map[string]any{
				"job_id": jobID,
				"killed": killed,
			})
		},
	}
}
