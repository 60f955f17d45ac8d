package harness

import (
	"strings"

	"github.com/adamavenir/agentjob/internal/types"
)

// geminiParser handles gemini --output-format stream-json streams.
// Gemini emits assistant text as incremental deltas, so the parser
// accumulates them here and only commits the buffer to the record on the
// terminal result event.
type geminiParser struct {
	assistant strings.Builder
}

func (p *geminiParser) ExtractJobID(ev *Event) (string, bool) {
	if ev.Type == "init" && ev.SessionID != "" {
		return ev.SessionID, true
	}
	return "", false
}

func (p *geminiParser) ProcessEvent(ev *Event, st *types.JobStatus) {
	switch ev.Type {
	case "tool_use":
		if ev.ToolName != "" {
			st.StatusReason = ev.ToolName
		}

	case "message":
		if ev.Role != "assistant" {
			return
		}
		st.StatusReason = "responding"
		if ev.Content != "" {
			p.assistant.WriteString(ev.Content)
		}

	case "result":
		st.StatusReason = "completed"
		if ev.Stats != nil {
			if ev.Stats.InputTokens != nil {
				st.Completion.Tokens.Input = ev.Stats.InputTokens
			}
			if ev.Stats.OutputTokens != nil {
				st.Completion.Tokens.Output = ev.Stats.OutputTokens
			}
			if ev.Stats.TotalTokens != nil {
				st.Completion.Tokens.Total = ev.Stats.TotalTokens
			}
			if ev.Stats.DurationMS != nil {
				st.Completion.DurationMS = ev.Stats.DurationMS
			}
		}
		if p.assistant.Len() > 0 {
			text := p.assistant.String()
			st.Completion.FinalMessage = &text
			st.Completion.Messages = []string{text}
		}
	}
}

func (p *geminiParser) IsCompletionEvent(ev *Event) bool {
	return ev.Type == "result" && ev.Status == "success"
}
