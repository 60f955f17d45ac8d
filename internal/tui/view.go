package tui

import (
	"fmt"
	"strings"
	"time"

	"github.com/dustin/go-humanize"

	"github.com/adamavenir/agentjob/internal/types"
)

func (m *Model) View() string {
	if m.viewingLog {
		return m.renderLogView()
	}
	return m.renderDashboard()
}

func (m *Model) renderDashboard() string {
	var b strings.Builder

	b.WriteString(headerStyle.Render("agentjob dashboard"))
	b.WriteString("  ")
	b.WriteString(countStyle.Render(summarizeCounts(m.jobs)))
	b.WriteString("\n\n")

	if len(m.jobs) == 0 {
		b.WriteString(countStyle.Render("No jobs yet. Start one with: agentjob spawn --harness codex -- <assignment>"))
		b.WriteString("\n")
	} else {
		b.WriteString(m.renderTable())
	}

	b.WriteString("\n")
	if m.status != "" {
		b.WriteString(statusLineStyle.Render(m.status))
		b.WriteString("\n")
	}
	b.WriteString(helpStyle.Render("j/k move · enter logs · r refresh · x kill · q quit"))
	return b.String()
}

func (m *Model) renderTable() string {
	var b strings.Builder

	idWidth := 6
	for _, job := range m.jobs {
		if len(job.JobID) > idWidth {
			idWidth = len(job.JobID)
		}
	}

	header := fmt.Sprintf("    %-*s  %-7s  %-9s  %-14s  %8s  %6s  %4s  %s",
		idWidth, "JOB", "HARNESS", "STATUS", "REASON", "RUNTIME", "IDLE", "OPS", "STARTED")
	b.WriteString(countStyle.Render(header))
	b.WriteString("\n")

	for i, job := range m.jobs {
		marker := "  "
		if i == m.selected {
			marker = "> "
		}

		style := stateStyle(job.Status)
		if i == m.selected {
			style = style.Bold(true)
		}

		row := fmt.Sprintf("%-*s  %-7s  %-9s  %-14s  %8s  %6s  %4d  %s",
			idWidth, job.JobID, job.Harness, job.Status, truncate(job.StatusReason, 14),
			formatSeconds(job.RuntimeSec), formatIdle(job.IdleSec), job.Operations,
			startedAgo(job.StartTime))

		b.WriteString(marker)
		b.WriteString(style.Render("● " + row))
		b.WriteString("\n")
	}
	return b.String()
}

func (m *Model) renderLogView() string {
	var b strings.Builder
	b.WriteString(headerStyle.Render("log · " + m.logJobID))
	b.WriteString("\n")
	b.WriteString(m.logView.View())
	b.WriteString("\n")
	b.WriteString(helpStyle.Render("scroll with arrows · r reload · esc back · q quit"))
	return b.String()
}

func summarizeCounts(jobs []types.JobSummary) string {
	var running, complete, failed int
	for _, job := range jobs {
		switch job.Status {
		case types.JobStateRunning:
			running++
		case types.JobStateComplete:
			complete++
		default:
			failed++
		}
	}
	return fmt.Sprintf("%d running · %d complete · %d failed", running, complete, failed)
}

func formatSeconds(sec float64) string {
	d := time.Duration(sec * float64(time.Second)).Truncate(time.Second)
	if d < time.Second {
		return "0s"
	}
	return d.String()
}

func formatIdle(idle *float64) string {
	if idle == nil {
		return "-"
	}
	return formatSeconds(*idle)
}

func startedAgo(startTime string) string {
	t, err := types.ParseISO(startTime)
	if err != nil {
		return "-"
	}
	return humanize.Time(t)
}

func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	if max <= 1 {
		return s[:max]
	}
	return s[:max-1] + "…"
}
