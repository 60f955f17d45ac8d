package supervisor

import (
	"bufio"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"strings"
	"syscall"

	"github.com/adamavenir/agentjob/internal/types"
)

// MonitorCommand is the hidden subcommand the CLI re-executes itself
// with to host a detached monitor process.
const MonitorCommand = "_monitor"

// spawnReport is the single JSON line a monitor writes to stdout
// before detaching: either a spawn handle or a structured failure.
type spawnReport struct {
	JobID      string   `json:"job_id"`
	StatusPath string   `json:"status_path"`
	LogPath    string   `json:"log_path"`
	Error      string   `json:"error"`
	ExitCode   *int     `json:"exit_code"`
	Output     []string `json:"output"`
}

// SpawnDetached re-executes the current binary as a background monitor
// in its own session and waits only for the monitor's first report:
// a spawn handle once the harness identifies the job, or a launch
// failure. The monitor runs on after this returns; it survives the
// caller exiting and the controlling terminal closing. Configuration
// reaches the monitor through the inherited environment.
func SpawnDetached(h types.Harness, assignment string) (*types.SpawnHandle, error) {
	exe, err := os.Executable()
	if err != nil {
		return nil, fmt.Errorf("resolve executable: %w", err)
	}

	cmd := exec.Command(exe, MonitorCommand, "--harness", string(h), "--", assignment)
	cmd.Env = os.Environ()
	cmd.SysProcAttr = &syscall.SysProcAttr{Setsid: true}
	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return nil, fmt.Errorf("stdout pipe: %w", err)
	}
	if err := cmd.Start(); err != nil {
		return nil, fmt.Errorf("start monitor: %w", err)
	}
	debugf("spawned %s monitor pid %d", h, cmd.Process.Pid)

	line, readErr := bufio.NewReader(stdout).ReadString('\n')
	// The monitor owns the job from here; drop our handle to it.
	_ = cmd.Process.Release()

	if strings.TrimSpace(line) == "" {
		if readErr != nil {
			return nil, fmt.Errorf("monitor exited before reporting: %w", readErr)
		}
		return nil, errors.New("monitor reported nothing")
	}
	return decodeSpawnReport([]byte(line))
}

func decodeSpawnReport(line []byte) (*types.SpawnHandle, error) {
	var rep spawnReport
	if err := json.Unmarshal(line, &rep); err != nil {
		return nil, fmt.Errorf("parse monitor report: %w", err)
	}
	if rep.Error != "" {
		if rep.ExitCode != nil {
			return nil, &LaunchError{ExitCode: *rep.ExitCode, Output: rep.Output}
		}
		return nil, errors.New(rep.Error)
	}
	if rep.JobID == "" {
		return nil, errors.New("monitor report missing job id")
	}
	return &types.SpawnHandle{
		JobID:      rep.JobID,
		StatusPath: rep.StatusPath,
		LogPath:    rep.LogPath,
	}, nil
}
