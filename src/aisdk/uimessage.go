package aisdk

import (
	"encoding/json"
	"strings"
	"time"
)

// Role is the author of a UI message.
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
	RoleSystem    Role = "system"
)

// PartType tags a message part. Tool parts use "tool-<name>".
type PartType string

const (
	PartText      PartType = "text"
	PartReasoning PartType = "reasoning"
	PartStepStart PartType = "step-start"

	toolPartPrefix = "tool-"
)

// ToolPartType returns the part type used for calls to the named tool.
func ToolPartType(toolName string) PartType {
	return PartType(toolPartPrefix + toolName)
}

// Text part states.
const (
	TextStreaming = "streaming"
	TextDone      = "done"
)

// ToolState is the lifecycle state of a tool call part.
type ToolState string

const (
	ToolInputStreaming  ToolState = "input-streaming"
	ToolInputAvailable  ToolState = "input-available"
	ToolOutputAvailable ToolState = "output-available"
	ToolOutputDenied    ToolState = "output-denied"
	ToolOutputError     ToolState = "output-error"
)

// Settled reports whether the state is terminal.
func (s ToolState) Settled() bool {
	switch s {
	case ToolOutputAvailable, ToolOutputDenied, ToolOutputError:
		return true
	}
	return false
}

// Rank orders states along the forward-only lifecycle. All terminal states
// share the highest rank.
func (s ToolState) Rank() int {
	switch s {
	case ToolInputStreaming:
		return 0
	case ToolInputAvailable:
		return 1
	case ToolOutputAvailable, ToolOutputDenied, ToolOutputError:
		return 2
	}
	return -1
}

// ChatStatus is the status of the overall agent run.
type ChatStatus string

const (
	StatusSubmitted ChatStatus = "submitted"
	StatusStreaming ChatStatus = "streaming"
	StatusReady     ChatStatus = "ready"
	StatusError     ChatStatus = "error"
)

// UIMessage is a chat message as rendered and persisted: an ordered list of
// parts authored by one role.
type UIMessage struct {
	ID        string    `json:"id"`
	Role      Role      `json:"role"`
	Parts     []Part    `json:"parts"`
	CreatedAt time.Time `json:"createdAt,omitempty"`
}

// Part is one segment of a message. Which fields are meaningful depends on Type:
// text and reasoning parts use Text and State, tool parts use ToolCallID, State,
// Input, Output and ErrorText.
type Part struct {
	Type       PartType        `json:"type"`
	Text       string          `json:"text,omitempty"`
	State      string          `json:"state,omitempty"`
	ToolCallID string          `json:"toolCallId,omitempty"`
	Input      json.RawMessage `json:"input,omitempty"`
	Output     json.RawMessage `json:"output,omitempty"`
	ErrorText  string          `json:"errorText,omitempty"`
}

// NewTextPart returns a completed text part.
func NewTextPart(text string) Part {
	return Part{Type: PartText, Text: text, State: TextDone}
}

// IsToolPart reports whether the part is a tool invocation.
func (p Part) IsToolPart() bool {
	return strings.HasPrefix(string(p.Type), toolPartPrefix)
}

// ToolName returns the tool name of a tool part, or "" for other parts.
func (p Part) ToolName() string {
	if !p.IsToolPart() {
		return ""
	}
	return strings.TrimPrefix(string(p.Type), toolPartPrefix)
}

// ToolState returns the lifecycle state of a tool part.
func (p Part) ToolState() ToolState {
	return ToolState(p.State)
}

// IsStreaming reports whether a text or reasoning part is still receiving deltas.
func (p Part) IsStreaming() bool {
	return (p.Type == PartText || p.Type == PartReasoning) && p.State == TextStreaming
}

// Advance moves a tool part to next. Unknown states, backward moves and any
// move away from a terminal state are refused and reported as false.
func (p *Part) Advance(next ToolState) bool {
	if next.Rank() < 0 {
		return false
	}
	cur := p.ToolState()
	if cur.Settled() {
		return cur == next
	}
	if p.State != "" && next.Rank() < cur.Rank() {
		return false
	}
	p.State = string(next)
	return true
}

// DecodeInput unmarshals the tool input into v. It returns false when no input
// is present or it does not decode.
func (p Part) DecodeInput(v any) bool {
	if len(p.Input) == 0 {
		return false
	}
	return json.Unmarshal(p.Input, v) == nil
}

// DecodeOutput unmarshals the tool output into v. It returns false when no
// output is present or it does not decode.
func (p Part) DecodeOutput(v any) bool {
	if len(p.Output) == 0 {
		return false
	}
	return json.Unmarshal(p.Output, v) == nil
}

// Text joins the text parts of the message with newlines.
func (m UIMessage) Text() string {
	var texts []string
	for _, part := range m.Parts {
		if part.Type == PartText {
			texts = append(texts, part.Text)
		}
	}
	return strings.Join(texts, "\n")
}

// ToolParts returns the tool parts of the message in order.
func (m UIMessage) ToolParts() []Part {
	var out []Part
	for _, part := range m.Parts {
		if part.IsToolPart() {
			out = append(out, part)
		}
	}
	return out
}
