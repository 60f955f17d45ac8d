package tui

import (
	"fmt"

	"github.com/gen2brain/beeep"

	"github.com/adamavenir/agentjob/internal/types"
)

// notifyTransitions fires a desktop notification for every job that was
// last seen running and has since reached a terminal state. Jobs already
// finished when the dashboard starts stay quiet.
func (m *Model) notifyTransitions(jobs []types.JobSummary) {
	for _, job := range jobs {
		prev, seen := m.known[job.JobID]
		if seen && prev == types.JobStateRunning && job.Status.Terminal() {
			m.notify(job)
		}
		m.known[job.JobID] = job.Status
	}
}

func sendNotification(job types.JobSummary) {
	_ = beeep.Notify("agentjob", notificationBody(job), "")
}

func notificationBody(job types.JobSummary) string {
	switch job.Status {
	case types.JobStateComplete:
		return fmt.Sprintf("%s completed", job.JobID)
	case types.JobStateTimeout:
		return fmt.Sprintf("%s timed out", job.JobID)
	default:
		return fmt.Sprintf("%s failed (%s)", job.JobID, job.StatusReason)
	}
}
