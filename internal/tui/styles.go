package tui

import (
	"github.com/charmbracelet/lipgloss"

	"github.com/adamavenir/agentjob/internal/types"
)

var (
	headerStyle     = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("111"))
	countStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
	helpStyle       = lipgloss.NewStyle().Foreground(lipgloss.Color("243"))
	statusLineStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("215"))

	runningStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("220"))
	completeStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("78"))
	failedStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("203"))
)

func stateStyle(state types.JobState) lipgloss.Style {
	switch state {
	case types.JobStateRunning:
		return runningStyle
	case types.JobStateComplete:
		return completeStyle
	default:
		return failedStyle
	}
}
