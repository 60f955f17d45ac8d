// Package harness adapts the streaming JSON event protocols of the
// supported agent CLIs into harness-agnostic job status updates.
package harness

import (
	"github.com/adamavenir/agentjob/internal/types"
)

// Parser translates decoded stream events into updates against a job
// record. Each job owns exactly one parser instance for its lifetime;
// the gemini variant keeps per-job accumulation state in it.
type Parser interface {
	// ExtractJobID recognizes the harness's run-started event and
	// returns its identifier. Called only before a job record exists.
	ExtractJobID(ev *Event) (string, bool)

	// ProcessEvent applies one event to the record: activity reason,
	// produced messages, token and duration counters. Fields are only
	// overwritten when the event actually carries a value.
	ProcessEvent(ev *Event, st *types.JobStatus)

	// IsCompletionEvent reports the harness's run-succeeded event.
	// Completion alone never finalizes a job; the supervisor also
	// requires a zero exit code.
	IsCompletionEvent(ev *Event) bool
}

// NewParser returns the parser for a harness. The harness set is closed;
// unknown values yield nil.
func NewParser(h types.Harness) Parser {
	switch h {
	case types.HarnessCodex:
		return &codexParser{}
	case types.HarnessGemini:
		return &geminiParser{}
	default:
		return nil
	}
}

// Command returns the argv template for running an assignment.
func Command(h types.Harness, assignment string) []string {
	switch h {
	case types.HarnessGemini:
		return []string{
			"gemini",
			"--yolo",
			"-m", "gemini-3-pro-preview",
			"--output-format", "stream-json",
			assignment,
		}
	case types.HarnessCodex:
		return []string{
			"codex",
			"--yolo",
			"e",
			assignment,
			"--json",
		}
	default:
		return nil
	}
}
