package aisdk

import (
	"encoding/json"
	"strings"
)

// ToModelMessages converts UI messages into provider messages. A non-empty
// system prompt is prepended.
//
// Assistant messages are split at step boundaries: each step becomes an
// assistant message carrying its text and tool calls, followed by one tool
// message per call. Tool parts that never settled are dropped since the
// provider would reject a call without a result.
func ToModelMessages(system string, messages []UIMessage) []*Message {
	out := make([]*Message, 0, len(messages)+1)
	if system != "" {
		out = append(out, &Message{Role: string(RoleSystem), Content: system})
	}

	for _, msg := range messages {
		switch msg.Role {
		case RoleUser, RoleSystem:
			out = append(out, &Message{Role: string(msg.Role), Content: msg.Text()})
		case RoleAssistant:
			out = append(out, assistantSteps(msg)...)
		}
	}
	return out
}

func assistantSteps(msg UIMessage) []*Message {
	var out []*Message

	var text strings.Builder
	var calls []ToolCall
	var results []*Message

	flush := func() {
		if text.Len() == 0 && len(calls) == 0 {
			return
		}
		out = append(out, &Message{
			Role:      string(RoleAssistant),
			Content:   text.String(),
			ToolCalls: calls,
		})
		out = append(out, results...)
		text.Reset()
		calls = nil
		results = nil
	}

	for _, part := range msg.Parts {
		switch {
		case part.Type == PartStepStart:
			flush()
		case part.Type == PartText:
			if text.Len() > 0 {
				text.WriteString("\n")
			}
			text.WriteString(part.Text)
		case part.IsToolPart() && IsToolSettled(part):
			args := part.Input
			if len(args) == 0 {
				args = json.RawMessage("{}")
			}
			calls = append(calls, ToolCall{
				ID:   part.ToolCallID,
				Type: "function",
				Function: FunctionCall{
					Name:      part.ToolName(),
					Arguments: args,
				},
			})
			results = append(results, &Message{
				Role:       "tool",
				Name:       part.ToolName(),
				ToolCallID: part.ToolCallID,
				Content:    toolResultContent(part),
			})
		}
	}
	flush()
	return out
}

func toolResultContent(part Part) string {
	switch part.ToolState() {
	case ToolOutputAvailable:
		return string(part.Output)
	case ToolOutputDenied:
		if part.ErrorText != "" {
			return "tool call denied: " + part.ErrorText
		}
		return "tool call denied"
	default:
		return "error: " + part.ErrorText
	}
}
