package command

import (
	"encoding/json"
	"errors"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/adamavenir/agentjob/internal/config"
	"github.com/adamavenir/agentjob/internal/store"
	"github.com/adamavenir/agentjob/internal/supervisor"
	"github.com/adamavenir/agentjob/internal/types"
)

// NewMonitorDaemonCmd creates the hidden entry point that spawn
// re-executes in a detached session. It reports exactly one JSON line on
// stdout (the spawn handle or a failure), then supervises the harness
// until it finishes.
func NewMonitorDaemonCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:    supervisor.MonitorCommand,
		Hidden: true,
		Args:   cobra.ArbitraryArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			harnessName, _ := cmd.Flags().GetString("harness")
			runMonitor(harnessName, strings.Join(args, " "))
			return nil
		},
	}

	cmd.Flags().String("harness", "", "harness to launch")

	return cmd
}

func runMonitor(harnessName, assignment string) {
	enc := json.NewEncoder(os.Stdout)

	h, err := types.ParseHarness(harnessName)
	if err != nil {
		_ = enc.Encode(map[string]string{"error": err.Error()})
		return
	}
	cfg, err := config.Load()
	if err != nil {
		_ = enc.Encode(map[string]string{"error": err.Error()})
		return
	}

	sup, err := supervisor.New(supervisor.Options{
		Harness:     h,
		Assignment:  assignment,
		Store:       store.New(cfg.JobsRoot),
		IdleTimeout: cfg.IdleTimeout(),
	})
	if err != nil {
		_ = enc.Encode(map[string]string{"error": err.Error()})
		return
	}

	handle, err := sup.Start()
	if err != nil {
		var launch *supervisor.LaunchError
		if errors.As(err, &launch) {
			_ = enc.Encode(launch.Failure())
			return
		}
		_ = enc.Encode(map[string]string{"error": err.Error()})
		return
	}
	_ = enc.Encode(handle)

	detachStdout()
	sup.Run()
}

// detachStdout repoints stdout at /dev/null once the spawn report has
// been delivered; the parent closes its end of the pipe after one line.
func detachStdout() {
	devnull, err := os.OpenFile(os.DevNull, os.O_WRONLY, 0)
	if err != nil {
		return
	}
	_ = os.Stdout.Close()
	os.Stdout = devnull
}
