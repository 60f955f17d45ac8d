package supervisor

import (
	"fmt"
	"syscall"
	"time"

	"github.com/adamavenir/agentjob/internal/harness"
	"github.com/adamavenir/agentjob/internal/types"
)

// Run consumes the subprocess output until the job reaches a terminal
// state, enforcing the idle timeout along the way. Every raw line is
// appended to the log; parsed events update and persist the status
// record. The log file is closed on every exit path. Run must only be
// called after a successful Start.
func (s *Supervisor) Run() {
	defer s.logFile.Close()

	s.lastParsed = time.Now()
	if err := s.loop(); err != nil {
		s.fail(err)
	}
}

// loop is the monitor's main cycle. It returns nil once the job is
// finalized (exit or timeout) and an error only for internal faults,
// which the caller turns into an error finalization.
func (s *Supervisor) loop() error {
	ticker := time.NewTicker(idlePollInterval)
	defer ticker.Stop()

	for {
		select {
		case line, ok := <-s.lines:
			if !ok {
				return s.finishExit()
			}
			// Checked before processing: a line arriving after the
			// threshold does not rescue the job.
			if s.idleExpired() {
				return s.finishTimeout()
			}
			if err := s.handleLine(line); err != nil {
				return err
			}
		case <-ticker.C:
			if s.idleExpired() {
				return s.finishTimeout()
			}
		}
	}
}

func (s *Supervisor) idleExpired() bool {
	return time.Since(s.lastParsed) > s.opts.IdleTimeout
}

// handleLine applies one raw output line: log, parse, update, persist.
// Lines that fail to parse still reach the log; harnesses mix
// human-readable noise into the event stream.
func (s *Supervisor) handleLine(line string) error {
	if _, err := s.logFile.WriteString(line); err != nil {
		return fmt.Errorf("write log: %w", err)
	}
	if ev, ok := harness.ParseEvent([]byte(line)); ok {
		s.lastParsed = time.Now()
		s.status.Operations++
		s.status.LastEventTime = types.NowISO()
		s.parser.ProcessEvent(ev, s.status)
		if s.parser.IsCompletionEvent(ev) {
			s.sawCompletion = true
		}
		if err := s.opts.Store.Write(s.status); err != nil {
			return err
		}
	}
	return nil
}

// finishExit reaps the exited subprocess and finalizes the record.
// Completion requires both a zero exit code and an observed completion
// event; anything else is an error with the exit code in the reason.
func (s *Supervisor) finishExit() error {
	_ = s.cmd.Wait()
	exitCode := 0
	if state := s.cmd.ProcessState; state != nil {
		exitCode = state.ExitCode()
		// Signal deaths carry the negative signal number, so an
		// externally killed harness reads process_exit_-15.
		if ws, ok := state.Sys().(syscall.WaitStatus); ok && ws.Signaled() {
			exitCode = -int(ws.Signal())
		}
	}

	if exitCode == 0 && s.sawCompletion {
		s.status.Finalize(types.JobStateComplete, s.status.StatusReason)
	} else {
		s.status.Finalize(types.JobStateError, fmt.Sprintf("process_exit_%d", exitCode))
	}
	debugf("job %s exited %d, finalized %s", s.status.JobID, exitCode, s.status.Status)
	return s.opts.Store.Write(s.status)
}

// finishTimeout terminates the subprocess and finalizes the job as
// timed out.
func (s *Supervisor) finishTimeout() error {
	debugf("job %s idle for %s, terminating", s.status.JobID, time.Since(s.lastParsed).Truncate(time.Second))
	s.terminate()
	s.status.Finalize(types.JobStateTimeout, "idle_timeout")
	return s.opts.Store.Write(s.status)
}

// terminate stops the subprocess: SIGTERM, then SIGKILL if it is still
// alive when the grace period runs out. Escalation is keyed on process
// exit, not on the output stream closing; a child that shuts its pipes
// but keeps running is still killed. Output produced while it winds
// down is drained into the log. Returns once the child is reaped.
func (s *Supervisor) terminate() {
	proc := s.cmd.Process
	if proc == nil {
		return
	}
	_ = proc.Signal(syscall.SIGTERM)

	exited := make(chan struct{})
	go func() {
		_ = s.cmd.Wait()
		close(exited)
	}()

	grace := time.NewTimer(s.killGrace)
	defer grace.Stop()

	lines := s.lines
	for {
		select {
		case line, ok := <-lines:
			if !ok {
				lines = nil
				continue
			}
			_, _ = s.logFile.WriteString(line)
		case <-grace.C:
			debugf("job %s still alive after %s, killing", s.status.JobID, s.killGrace)
			_ = proc.Kill()
		case <-exited:
			s.drainBacklog(lines)
			return
		}
	}
}

// drainBacklog moves lines already queued by the reader into the log.
// Wait has closed the pipe by now, so nothing more is coming.
func (s *Supervisor) drainBacklog(lines <-chan string) {
	if lines == nil {
		return
	}
	for {
		select {
		case line, ok := <-lines:
			if !ok {
				return
			}
			_, _ = s.logFile.WriteString(line)
		default:
			return
		}
	}
}

// fail finalizes the job after an internal fault, terminating the
// subprocess if it is still alive.
func (s *Supervisor) fail(err error) {
	debugf("job %s monitor fault: %v", s.status.JobID, err)
	if proc := s.cmd.Process; proc != nil && s.cmd.ProcessState == nil {
		_ = proc.Signal(syscall.SIGTERM)
	}
	s.status.Finalize(types.JobStateError, err.Error())
	_ = s.opts.Store.Write(s.status)
}
