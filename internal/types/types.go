package types

import (
	"fmt"
	"math"
	"time"
)

// Harness identifies which agent CLI runs a job.
type Harness string

const (
	HarnessCodex  Harness = "codex"
	HarnessGemini Harness = "gemini"
)

// ParseHarness validates a harness name.
func ParseHarness(s string) (Harness, error) {
	switch Harness(s) {
	case HarnessCodex:
		return HarnessCodex, nil
	case HarnessGemini:
		return HarnessGemini, nil
	}
	return "", fmt.Errorf("unknown harness: %s", s)
}

// JobState represents job lifecycle state.
type JobState string

const (
	JobStateRunning  JobState = "running"
	JobStateComplete JobState = "complete"
	JobStateError    JobState = "error"
	JobStateTimeout  JobState = "timeout"
)

// Terminal reports whether the state is final.
func (s JobState) Terminal() bool {
	return s == JobStateComplete || s == JobStateError || s == JobStateTimeout
}

// TokenStats holds token usage reported by a harness.
type TokenStats struct {
	Input  *int `json:"input"`
	Output *int `json:"output"`
	Total  *int `json:"total"`
}

// Completion accumulates a job's produced messages and usage.
type Completion struct {
	Messages     []string   `json:"messages"`
	FinalMessage *string    `json:"final_message"`
	Tokens       TokenStats `json:"tokens"`
	DurationMS   *int       `json:"duration_ms"`
}

// JobStatus is the persisted record for one supervised job.
type JobStatus struct {
	JobID         string     `json:"job_id"`
	Harness       Harness    `json:"harness"`
	AgentID       string     `json:"agent_id"`
	PID           int        `json:"pid"`
	Logs          string     `json:"logs"`
	Status        JobState   `json:"status"`
	StatusReason  string     `json:"status_reason"`
	StartTime     string     `json:"start_time"`
	LastEventTime string     `json:"last_event_time"`
	EndTime       *string    `json:"end_time"`
	Operations    int        `json:"operations"`
	Completion    Completion `json:"completion"`
}

// NewJobStatus creates the initial record for a freshly identified job.
// The identifying event counts as the first operation.
func NewJobStatus(jobID string, harness Harness, pid int, logPath string) *JobStatus {
	now := NowISO()
	return &JobStatus{
		JobID:         jobID,
		Harness:       harness,
		AgentID:       jobID,
		PID:           pid,
		Logs:          logPath,
		Status:        JobStateRunning,
		StatusReason:  "initializing",
		StartTime:     now,
		LastEventTime: now,
		Operations:    1,
		Completion:    Completion{Messages: []string{}},
	}
}

// Finalize moves the record into a terminal state. It is a no-op when the
// record is already terminal.
func (s *JobStatus) Finalize(state JobState, reason string) {
	if s.Status.Terminal() {
		return
	}
	s.Status = state
	s.StatusReason = reason
	end := NowISO()
	s.EndTime = &end
}

// SpawnHandle is returned to the caller once a job is identified.
type SpawnHandle struct {
	JobID      string `json:"job_id"`
	StatusPath string `json:"status_path"`
	LogPath    string `json:"log_path"`
}

// JobSummary is the derived listing projection of a job record.
type JobSummary struct {
	JobID         string   `json:"job_id"`
	Harness       Harness  `json:"harness"`
	PID           int      `json:"pid"`
	Logs          string   `json:"logs"`
	Status        JobState `json:"status"`
	StatusReason  string   `json:"status_reason"`
	StartTime     string   `json:"start_time"`
	LastEventTime string   `json:"last_event_time"`
	RuntimeSec    float64  `json:"runtime_sec"`
	Operations    int      `json:"operations"`
	IdleSec       *float64 `json:"idle_sec,omitempty"`
	EndTime       *string  `json:"end_time,omitempty"`
}

// CompletionSummary is the completion projection included for finished jobs.
type CompletionSummary struct {
	Messages   []string   `json:"messages"`
	Tokens     TokenStats `json:"tokens"`
	DurationMS *int       `json:"duration_ms"`
}

// JobDetail is the full status projection for one job, including
// completion details once the job has finished.
type JobDetail struct {
	JobSummary
	Completion *CompletionSummary `json:"completion,omitempty"`
}

// Summary computes the listing projection at the given instant.
// idle_sec is only reported while the job is running; end_time only once
// it has finished.
func (s *JobStatus) Summary(now time.Time) JobSummary {
	var runtime float64
	if s.StartTime != "" {
		if start, err := ParseISO(s.StartTime); err == nil {
			end := now
			if s.EndTime != nil {
				if t, err := ParseISO(*s.EndTime); err == nil {
					end = t
				}
			}
			runtime = end.Sub(start).Seconds()
		}
	}

	summary := JobSummary{
		JobID:         s.JobID,
		Harness:       s.Harness,
		PID:           s.PID,
		Logs:          s.Logs,
		Status:        s.Status,
		StatusReason:  s.StatusReason,
		StartTime:     s.StartTime,
		LastEventTime: s.LastEventTime,
		RuntimeSec:    roundTenth(runtime),
		Operations:    s.Operations,
	}

	if s.Status == JobStateRunning && s.LastEventTime != "" {
		if last, err := ParseISO(s.LastEventTime); err == nil {
			idle := roundTenth(now.Sub(last).Seconds())
			summary.IdleSec = &idle
		}
	}
	if s.EndTime != nil {
		summary.EndTime = s.EndTime
	}
	return summary
}

// Detail computes the full status projection at the given instant.
func (s *JobStatus) Detail(now time.Time) JobDetail {
	detail := JobDetail{JobSummary: s.Summary(now)}
	if s.EndTime != nil {
		detail.Completion = &CompletionSummary{
			Messages:   s.Completion.Messages,
			Tokens:     s.Completion.Tokens,
			DurationMS: s.Completion.DurationMS,
		}
	}
	return detail
}

func roundTenth(v float64) float64 {
	return math.Round(v*10) / 10
}
