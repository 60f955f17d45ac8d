package harness

import (
	"bytes"
	"encoding/json"
)

// Event is one decoded stream event. The fields cover both harness
// vocabularies; absent fields stay zero. Counters are pointers so a
// missing value is distinguishable from a reported zero.
type Event struct {
	Type      string       `json:"type"`
	ThreadID  string       `json:"thread_id"`
	SessionID string       `json:"session_id"`
	Status    string       `json:"status"`
	Role      string       `json:"role"`
	Content   string       `json:"content"`
	ToolName  string       `json:"tool_name"`
	Item      *eventItem   `json:"item"`
	Usage     *eventUsage  `json:"usage"`
	Stats     *resultStats `json:"stats"`
}

// eventItem is the item payload of codex item.started/item.completed.
type eventItem struct {
	Type string `json:"type"`
	Text string `json:"text"`
}

// eventUsage is the usage payload of codex turn.completed.
type eventUsage struct {
	InputTokens  *int `json:"input_tokens"`
	OutputTokens *int `json:"output_tokens"`
}

// resultStats is the stats payload of gemini result events.
type resultStats struct {
	InputTokens  *int `json:"input_tokens"`
	OutputTokens *int `json:"output_tokens"`
	TotalTokens  *int `json:"total_tokens"`
	DurationMS   *int `json:"duration_ms"`
}

// ParseEvent decodes one line of harness output. Harnesses interleave
// human-readable noise with the event stream, so anything that is not a
// JSON object is reported as not-an-event rather than an error.
func ParseEvent(line []byte) (*Event, bool) {
	trimmed := bytes.TrimSpace(line)
	if len(trimmed) == 0 || trimmed[0] != '{' {
		return nil, false
	}
	var ev Event
	if err := json.Unmarshal(trimmed, &ev); err != nil {
		return nil, false
	}
	return &ev, true
}
