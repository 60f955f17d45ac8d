// Package supervisor owns one harness subprocess end-to-end: it
// launches the process, waits for its identifying event, then monitors
// the event stream from a detached process, keeping the job's status
// record current until a terminal state is reached.
package supervisor

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"os/exec"
	"strings"
	"syscall"
	"time"

	"github.com/adamavenir/agentjob/internal/harness"
	"github.com/adamavenir/agentjob/internal/store"
	"github.com/adamavenir/agentjob/internal/types"
)

const (
	// defaultKillGrace is how long a signaled subprocess gets to exit
	// before escalating to SIGKILL.
	defaultKillGrace = 5 * time.Second

	// idlePollInterval bounds how long the monitor waits on a silent
	// stream before re-checking the idle clock. A harness that stops
	// producing output entirely must still hit the idle timeout.
	idlePollInterval = time.Second

	// headLines caps how much output is kept for launch failure reports.
	headLines = 10

	// lineBacklog is the channel buffer between the stream reader and
	// the monitor loop. Lines read between identification and the start
	// of monitoring queue here; none are lost.
	lineBacklog = 256
)

// Options configures one supervised job.
type Options struct {
	Harness     types.Harness
	Assignment  string
	Store       *store.Store
	IdleTimeout time.Duration

	// Argv overrides the harness command template. Tests use this to
	// substitute a scripted stand-in for the real CLI.
	Argv []string
}

// LaunchError reports a harness that exited before identifying itself.
// No job record exists for such a run.
type LaunchError struct {
	ExitCode int
	Output   []string
}

func (e *LaunchError) Error() string {
	return fmt.Sprintf("failed to extract job id from harness output (exit %d)", e.ExitCode)
}

// LaunchFailure is the structured form of a LaunchError that callers
// emit: the failure message, the harness exit code, and up to the
// first ten raw output lines for diagnosis.
type LaunchFailure struct {
	Error    string   `json:"error"`
	ExitCode int      `json:"exit_code"`
	Output   []string `json:"output"`
}

// Failure converts the error into its emittable form.
func (e *LaunchError) Failure() LaunchFailure {
	return LaunchFailure{
		Error:    "Failed to extract job ID from harness output",
		ExitCode: e.ExitCode,
		Output:   e.Output,
	}
}

// Supervisor runs one job. Create it with New, call Start to launch
// the subprocess and wait for its identifying event, then Run to
// monitor the stream until the job finishes.
type Supervisor struct {
	opts   Options
	parser harness.Parser

	cmd     *exec.Cmd
	lines   chan string
	status  *types.JobStatus
	logFile *os.File

	// killGrace is the SIGTERM-to-SIGKILL escalation window. Tests
	// shorten it.
	killGrace time.Duration

	lastParsed    time.Time
	sawCompletion bool
}

// New validates the options and prepares a supervisor. The parser
// instance created here is owned by this job for its whole lifetime.
func New(opts Options) (*Supervisor, error) {
	parser := harness.NewParser(opts.Harness)
	if parser == nil {
		return nil, fmt.Errorf("unknown harness: %s", opts.Harness)
	}
	if opts.Store == nil {
		return nil, fmt.Errorf("store is required")
	}
	if opts.IdleTimeout <= 0 {
		return nil, fmt.Errorf("idle timeout must be positive")
	}
	return &Supervisor{opts: opts, parser: parser, killGrace: defaultKillGrace}, nil
}

// Start launches the subprocess and reads its merged output until the
// harness identifies the job. On success the initial record is on disk
// and the returned handle points at it; output read after the
// identifying event stays queued for Run. A harness that exits without
// ever producing an id yields a *LaunchError instead, and no record is
// created.
func (s *Supervisor) Start() (*types.SpawnHandle, error) {
	argv := s.opts.Argv
	if len(argv) == 0 {
		argv = harness.Command(s.opts.Harness, s.opts.Assignment)
	}

	cmd := exec.Command(argv[0], argv[1:]...)
	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return nil, fmt.Errorf("stdout pipe: %w", err)
	}
	cmd.Stderr = cmd.Stdout // events and noise share one stream
	if err := cmd.Start(); err != nil {
		stdout.Close()
		return nil, fmt.Errorf("start %s: %w", argv[0], err)
	}
	s.cmd = cmd

	s.lines = make(chan string, lineBacklog)
	go pumpLines(stdout, s.lines)

	var head []string
	for line := range s.lines {
		if len(head) < headLines {
			head = append(head, strings.TrimRight(line, "\r\n"))
		}

		ev, ok := harness.ParseEvent([]byte(line))
		if !ok {
			continue
		}
		jobID, ok := s.parser.ExtractJobID(ev)
		if !ok {
			continue
		}

		handle, err := s.identify(jobID, line)
		if err != nil {
			s.abort()
			return nil, err
		}
		debugf("job %s identified, harness pid %d", jobID, s.cmd.Process.Pid)
		return handle, nil
	}

	// Stream closed without an identifying event; report the exit.
	_ = cmd.Wait()
	exitCode := 0
	if state := cmd.ProcessState; state != nil {
		exitCode = state.ExitCode()
	}
	return nil, &LaunchError{ExitCode: exitCode, Output: head}
}

// identify creates the job's storage, writes the identifying line as
// the first log entry, and persists the initial record. The
// identifying event counts as the first operation.
func (s *Supervisor) identify(jobID, line string) (*types.SpawnHandle, error) {
	st := s.opts.Store
	if err := st.CreateJobDir(jobID); err != nil {
		return nil, err
	}
	logFile, err := os.Create(st.LogPath(jobID))
	if err != nil {
		return nil, fmt.Errorf("create log: %w", err)
	}
	if _, err := logFile.WriteString(line); err != nil {
		logFile.Close()
		return nil, fmt.Errorf("write log: %w", err)
	}

	s.logFile = logFile
	s.status = types.NewJobStatus(jobID, s.opts.Harness, s.cmd.Process.Pid, st.LogPath(jobID))
	if err := st.Write(s.status); err != nil {
		logFile.Close()
		return nil, err
	}

	return &types.SpawnHandle{
		JobID:      jobID,
		StatusPath: st.StatusPath(jobID),
		LogPath:    st.LogPath(jobID),
	}, nil
}

// abort signals the subprocess after a startup failure. The caller is
// about to exit; the orphan is reparented and reaped by the system.
func (s *Supervisor) abort() {
	if s.cmd.Process != nil {
		_ = s.cmd.Process.Signal(syscall.SIGTERM)
	}
}

// pumpLines delivers each output line to ch, preserving the trailing
// newline, and closes ch when the stream ends.
func pumpLines(r io.Reader, ch chan<- string) {
	defer close(ch)
	reader := bufio.NewReader(r)
	for {
		line, err := reader.ReadBytes('\n')
		if len(line) > 0 {
			ch <- string(line)
		}
		if err != nil {
			return
		}
	}
}
