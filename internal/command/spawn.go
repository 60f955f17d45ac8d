package command

import (
	"errors"
	"fmt"
	"os"
	"os/signal"
	"strings"

	"github.com/spf13/cobra"

	"github.com/adamavenir/agentjob/internal/supervisor"
	"github.com/adamavenir/agentjob/internal/types"
)

type spawnResult struct {
	handle *types.SpawnHandle
	err    error
}

// NewSpawnCmd creates the spawn command.
func NewSpawnCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "spawn --harness <codex|gemini> -- <assignment...>",
		Short: "Launch an agent harness as a background job",
		Args:  cobra.ArbitraryArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			harnessName, _ := cmd.Flags().GetString("harness")
			h, err := types.ParseHarness(harnessName)
			if err != nil {
				return writeCommandError(cmd, err)
			}

			assignment := strings.TrimSpace(strings.Join(args, " "))
			if assignment == "" {
				return writeJSONError(cmd, "No assignment provided", 1)
			}

			results := make(chan spawnResult, 1)
			go func() {
				handle, err := supervisor.SpawnDetached(h, assignment)
				results <- spawnResult{handle: handle, err: err}
			}()

			stop := make(chan os.Signal, 1)
			signal.Notify(stop, os.Interrupt)
			defer signal.Stop(stop)

			select {
			case <-stop:
				// The detached monitor keeps going; only this wait ends.
				return writeJSONError(cmd, "Interrupted", 130)
			case res := <-results:
				if res.err != nil {
					var launch *supervisor.LaunchError
					if errors.As(res.err, &launch) {
						return writeIndentedExit(cmd, launch.Failure(), 1)
					}
					return writeJSONError(cmd, res.err.Error(), 1)
				}

				jsonMode, _ := cmd.Flags().GetBool("json")
				if jsonMode {
					return writeIndented(cmd, res.handle)
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Agent running. Check status with: %s status %s\n", AppName, res.handle.JobID)
				return nil
			}
		},
	}

	cmd.Flags().String("harness", "", "harness to launch (codex or gemini)")
	_ = cmd.MarkFlagRequired("harness")

	return cmd
}
