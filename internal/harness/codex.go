package harness

import (
	"github.com/adamavenir/agentjob/internal/types"
)

// codexParser handles codex exec --json streams. Codex frames its output
// as discrete completed items, so messages are committed as they arrive
// and no accumulation state is needed.
type codexParser struct{}

func (p *codexParser) ExtractJobID(ev *Event) (string, bool) {
	if ev.Type == "thread.started" && ev.ThreadID != "" {
		return ev.ThreadID, true
	}
	return "", false
}

func (p *codexParser) ProcessEvent(ev *Event, st *types.JobStatus) {
	switch ev.Type {
	case "turn.started":
		st.StatusReason = "thinking"

	case "item.started":
		if ev.Item != nil && ev.Item.Type != "" {
			st.StatusReason = ev.Item.Type
		}

	case "item.completed":
		if ev.Item == nil {
			return
		}
		if ev.Item.Type != "" {
			st.StatusReason = ev.Item.Type
		}
		if ev.Item.Type == "agent_message" && ev.Item.Text != "" {
			text := ev.Item.Text
			st.Completion.Messages = append(st.Completion.Messages, text)
			st.Completion.FinalMessage = &text
		}

	case "turn.completed":
		st.StatusReason = "completed"
		if ev.Usage == nil {
			return
		}
		if ev.Usage.InputTokens != nil {
			st.Completion.Tokens.Input = ev.Usage.InputTokens
		}
		if ev.Usage.OutputTokens != nil {
			st.Completion.Tokens.Output = ev.Usage.OutputTokens
		}
		in, out := st.Completion.Tokens.Input, st.Completion.Tokens.Output
		if in != nil && out != nil && *in != 0 && *out != 0 {
			total := *in + *out
			st.Completion.Tokens.Total = &total
		}
	}
}

func (p *codexParser) IsCompletionEvent(ev *Event) bool {
	return ev.Type == "turn.completed"
}
