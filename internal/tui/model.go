// Package tui renders a live dashboard over the job store: one row per
// job, a scrollable log view, and kill/refresh controls. The store is
// the only synchronization point; the dashboard just polls and watches.
package tui

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/adamavenir/agentjob/internal/store"
	"github.com/adamavenir/agentjob/internal/supervisor"
	"github.com/adamavenir/agentjob/internal/types"
)

const logTailLines = 500

type jobsMsg struct {
	jobs []types.JobSummary
}

type logMsg struct {
	jobID   string
	content string
}

type killResultMsg struct {
	jobID  string
	killed bool
}

type tickMsg time.Time

type watchMsg struct{}

type errMsg struct {
	err error
}

// Model implements the jobs dashboard UI.
type Model struct {
	store   *store.Store
	refresh time.Duration
	notify  func(types.JobSummary)

	jobs     []types.JobSummary
	known    map[string]types.JobState
	selected int
	status   string

	viewingLog bool
	logJobID   string
	logView    viewport.Model

	watch *watcher

	width  int
	height int
}

// Run starts the dashboard UI.
func Run(st *store.Store, refresh time.Duration) error {
	model := NewModel(st, refresh)
	program := tea.NewProgram(model, tea.WithAltScreen())
	_, err := program.Run()
	model.Close()
	return err
}

// NewModel creates a dashboard over the given store. The filesystem
// watcher is best-effort; polling covers for it when it cannot start.
func NewModel(st *store.Store, refresh time.Duration) *Model {
	watch, err := newWatcher(st.Root())
	if err != nil {
		watch = nil
	}
	return &Model{
		store:   st,
		refresh: refresh,
		notify:  sendNotification,
		known:   make(map[string]types.JobState),
		watch:   watch,
	}
}

// Close releases the filesystem watcher.
func (m *Model) Close() {
	if m.watch != nil {
		m.watch.Close()
	}
}

func (m *Model) Init() tea.Cmd {
	return tea.Batch(m.loadJobsCmd(), m.tickCmd(), m.waitWatchCmd())
}

func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		return m.handleWindowSize(msg)
	case tea.KeyMsg:
		return m.handleKey(msg)
	case jobsMsg:
		return m.handleJobs(msg)
	case tickMsg:
		return m, tea.Batch(m.loadJobsCmd(), m.tickCmd())
	case watchMsg:
		return m, tea.Batch(m.loadJobsCmd(), m.waitWatchCmd())
	case logMsg:
		return m.handleLog(msg)
	case killResultMsg:
		return m.handleKillResult(msg)
	case errMsg:
		m.status = msg.err.Error()
		return m, nil
	}
	return m, nil
}

func (m *Model) handleWindowSize(msg tea.WindowSizeMsg) (tea.Model, tea.Cmd) {
	m.width = msg.Width
	m.height = msg.Height
	m.logView.Width = msg.Width
	m.logView.Height = logViewHeight(msg.Height)
	return m, nil
}

func (m *Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if m.viewingLog {
		return m.handleLogKey(msg)
	}

	switch msg.String() {
	case "q", "ctrl+c":
		return m, tea.Quit
	case "j", "down":
		m.moveSelection(1)
		return m, nil
	case "k", "up":
		m.moveSelection(-1)
		return m, nil
	case "r":
		m.status = ""
		return m, m.loadJobsCmd()
	case "enter":
		job, ok := m.selectedJob()
		if !ok {
			return m, nil
		}
		m.viewingLog = true
		m.logJobID = job.JobID
		m.logView = viewport.New(m.width, logViewHeight(m.height))
		return m, m.loadLogCmd(job.JobID)
	case "x":
		job, ok := m.selectedJob()
		if !ok {
			return m, nil
		}
		if job.Status != types.JobStateRunning {
			m.status = fmt.Sprintf("%s is not running", job.JobID)
			return m, nil
		}
		return m, killCmd(job)
	}
	return m, nil
}

func (m *Model) handleLogKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "q", "ctrl+c":
		return m, tea.Quit
	case "esc", "backspace":
		m.viewingLog = false
		m.logJobID = ""
		return m, nil
	case "r":
		return m, m.loadLogCmd(m.logJobID)
	}

	var cmd tea.Cmd
	m.logView, cmd = m.logView.Update(msg)
	return m, cmd
}

func (m *Model) handleJobs(msg jobsMsg) (tea.Model, tea.Cmd) {
	m.notifyTransitions(msg.jobs)
	m.jobs = msg.jobs
	m.clampSelection()
	return m, nil
}

func (m *Model) handleLog(msg logMsg) (tea.Model, tea.Cmd) {
	if !m.viewingLog || msg.jobID != m.logJobID {
		return m, nil
	}
	m.logView.SetContent(msg.content)
	m.logView.GotoBottom()
	return m, nil
}

func (m *Model) handleKillResult(msg killResultMsg) (tea.Model, tea.Cmd) {
	if msg.killed {
		m.status = fmt.Sprintf("terminated %s", msg.jobID)
	} else {
		m.status = fmt.Sprintf("could not signal %s", msg.jobID)
	}
	return m, m.loadJobsCmd()
}

func (m *Model) moveSelection(delta int) {
	m.selected += delta
	m.clampSelection()
}

func (m *Model) clampSelection() {
	if m.selected >= len(m.jobs) {
		m.selected = len(m.jobs) - 1
	}
	if m.selected < 0 {
		m.selected = 0
	}
}

func (m *Model) selectedJob() (types.JobSummary, bool) {
	if len(m.jobs) == 0 || m.selected >= len(m.jobs) {
		return types.JobSummary{}, false
	}
	return m.jobs[m.selected], true
}

func (m *Model) tickCmd() tea.Cmd {
	return tea.Tick(m.refresh, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

func (m *Model) loadJobsCmd() tea.Cmd {
	st := m.store
	return func() tea.Msg {
		jobs, err := st.List(time.Now())
		if err != nil {
			return errMsg{err: err}
		}
		return jobsMsg{jobs: jobs}
	}
}

func (m *Model) loadLogCmd(jobID string) tea.Cmd {
	st := m.store
	return func() tea.Msg {
		lines, err := st.TailLog(jobID, logTailLines)
		if err != nil {
			return errMsg{err: err}
		}
		return logMsg{jobID: jobID, content: strings.Join(lines, "\n")}
	}
}

func (m *Model) waitWatchCmd() tea.Cmd {
	if m.watch == nil {
		return nil
	}
	ch := m.watch.C
	return func() tea.Msg {
		if _, ok := <-ch; !ok {
			return nil
		}
		return watchMsg{}
	}
}

func killCmd(job types.JobSummary) tea.Cmd {
	return func() tea.Msg {
		return killResultMsg{jobID: job.JobID, killed: supervisor.KillJob(job.PID)}
	}
}

func logViewHeight(total int) int {
	height := total - 3
	if height < 1 {
		height = 1
	}
	return height
}
