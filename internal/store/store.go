// Package store persists job status records under an on-disk jobs root.
//
// Directory layout:
//
//	<root>/<job_id>/status.json
//	<root>/<job_id>/agent.log
//
// status.json is replaced atomically on every update, so concurrent
// readers always observe a complete record. Each job's files are written
// by exactly one supervisor for the job's entire lifetime.
package store

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/adamavenir/agentjob/internal/types"
)

// ErrNotFound is returned when a job has no persisted record.
var ErrNotFound = errors.New("job not found")

// StatusFile is the per-job record filename.
const StatusFile = "status.json"

const logFile = "agent.log"

// Store reads and writes per-job status records.
type Store struct {
	root string
}

// New creates a store rooted at dir.
func New(root string) *Store {
	return &Store{root: root}
}

// Root returns the jobs root directory.
func (s *Store) Root() string {
	return s.root
}

// JobDir returns the directory for a job.
func (s *Store) JobDir(jobID string) string {
	return filepath.Join(s.root, jobID)
}

// StatusPath returns the status.json path for a job.
func (s *Store) StatusPath(jobID string) string {
	return filepath.Join(s.JobDir(jobID), StatusFile)
}

// LogPath returns the agent.log path for a job.
func (s *Store) LogPath(jobID string) string {
	return filepath.Join(s.JobDir(jobID), logFile)
}

// CreateJobDir creates the directory structure for a job.
func (s *Store) CreateJobDir(jobID string) error {
	return os.MkdirAll(s.JobDir(jobID), 0755)
}

// Write persists the full record atomically: marshal to a temp file in
// the job directory, flush to durable storage, then rename over
// status.json.
func (s *Store) Write(st *types.JobStatus) error {
	if st == nil || st.JobID == "" {
		return fmt.Errorf("job_id is required")
	}
	jobDir := s.JobDir(st.JobID)
	if err := os.MkdirAll(jobDir, 0755); err != nil {
		return fmt.Errorf("create job dir: %w", err)
	}

	b, err := json.MarshalIndent(st, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal status: %w", err)
	}
	b = append(b, '\n')

	tmp, err := os.CreateTemp(jobDir, "status.json.tmp.*")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	tmpName := tmp.Name()
	defer func() { _ = os.Remove(tmpName) }()

	if _, err := tmp.Write(b); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("write temp status: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("sync temp status: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close temp status: %w", err)
	}

	if err := os.Rename(tmpName, s.StatusPath(st.JobID)); err != nil {
		return fmt.Errorf("rename status: %w", err)
	}
	return nil
}

// Read returns the last persisted record for a job, or ErrNotFound.
func (s *Store) Read(jobID string) (*types.JobStatus, error) {
	if jobID == "" {
		return nil, fmt.Errorf("job_id is required")
	}
	b, err := os.ReadFile(s.StatusPath(jobID))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("read status: %w", err)
	}

	var st types.JobStatus
	if err := json.Unmarshal(b, &st); err != nil {
		return nil, fmt.Errorf("parse status.json: %w", err)
	}
	return &st, nil
}

// TailLog returns the last n lines of a job's log, or every line when n
// is zero or negative.
func (s *Store) TailLog(jobID string, n int) ([]string, error) {
	data, err := os.ReadFile(s.LogPath(jobID))
	if err != nil {
		return nil, err
	}

	text := strings.TrimRight(string(data), "\n")
	if text == "" {
		return nil, nil
	}
	lines := strings.Split(text, "\n")
	if n > 0 && len(lines) > n {
		lines = lines[len(lines)-n:]
	}
	return lines, nil
}
