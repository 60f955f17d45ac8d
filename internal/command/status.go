package command

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"
)

// NewStatusCmd creates the status command.
func NewStatusCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "status <job_id>",
		Short: "Show the status record for one job",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, err := GetContext(cmd)
			if err != nil {
				return writeCommandError(cmd, err)
			}

			jobID := args[0]
			st, err := ctx.Store.Read(jobID)
			if err != nil {
				// Missing and unreadable records look the same to callers.
				return writeIndentedExit(cmd, map[string]string{
					"error": fmt.Sprintf("Job not found: %s", jobID),
				}, 1)
			}

			return writeIndented(cmd, st.Detail(time.Now()))
		},
	}
}
