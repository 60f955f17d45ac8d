package supervisor

import (
	"errors"
	"syscall"
	"time"
)

// killProbeDelay is how long an operator kill waits after SIGTERM
// before probing and escalating to SIGKILL.
const killProbeDelay = 500 * time.Millisecond

// ProcessAlive reports whether a process with the given pid exists.
// Signal 0 probes for existence without delivering anything.
func ProcessAlive(pid int) bool {
	if pid <= 0 {
		return false
	}
	return syscall.Kill(pid, 0) == nil
}

// KillJob terminates a job's subprocess by pid: SIGTERM, a short wait,
// then SIGKILL if it is still around. Returns false when the signal
// could not be delivered; a process that is already gone counts as
// killed. The job's supervisor observes the death as an ordinary exit
// and finalizes the record itself.
func KillJob(pid int) bool {
	if pid <= 0 {
		return false
	}
	if err := syscall.Kill(pid, syscall.SIGTERM); err != nil {
		return errors.Is(err, syscall.ESRCH)
	}
	time.Sleep(killProbeDelay)
	if ProcessAlive(pid) {
		_ = syscall.Kill(pid, syscall.SIGKILL)
	}
	return true
}
