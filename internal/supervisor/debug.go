package supervisor

import (
	"fmt"
	"os"
)

// debugEnabled is read once at startup. The spawn parent passes its
// environment to the detached monitor, so setting AGENT_JOB_DEBUG covers
// both sides of the handshake.
var debugEnabled = os.Getenv("AGENT_JOB_DEBUG") != ""

// debugf logs a diagnostic line to stderr if debug mode is enabled. A
// detached monitor's stderr points at /dev/null, so these only surface
// when a command runs in the foreground.
func debugf(format string, args ...any) {
	if debugEnabled {
		fmt.Fprintf(os.Stderr, "[monitor] "+format+"\n", args...)
	}
}
