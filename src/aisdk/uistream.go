package aisdk

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/google/uuid"
)

// ChunkType tags a UI message stream frame.
type ChunkType string

const (
	ChunkStart              ChunkType = "start"
	ChunkStartStep          ChunkType = "start-step"
	ChunkTextStart          ChunkType = "text-start"
	ChunkTextDelta          ChunkType = "text-delta"
	ChunkTextEnd            ChunkType = "text-end"
	ChunkReasoningStart     ChunkType = "reasoning-start"
	ChunkReasoningDelta     ChunkType = "reasoning-delta"
	ChunkReasoningEnd       ChunkType = "reasoning-end"
	ChunkToolInputStart     ChunkType = "tool-input-start"
	ChunkToolInputDelta     ChunkType = "tool-input-delta"
	ChunkToolInputAvailable ChunkType = "tool-input-available"
	ChunkToolOutput         ChunkType = "tool-output-available"
	ChunkToolOutputError    ChunkType = "tool-output-error"
	ChunkToolOutputDenied   ChunkType = "tool-output-denied"
	ChunkFinishStep         ChunkType = "finish-step"
	ChunkFinish             ChunkType = "finish"
	ChunkAbort              ChunkType = "abort"
	ChunkError              ChunkType = "error"
)

// UIChunk is one frame of the UI message stream sent to chat clients.
type UIChunk struct {
	Type           ChunkType       `json:"type"`
	MessageID      string          `json:"messageId,omitempty"`
	ID             string          `json:"id,omitempty"`
	Delta          string          `json:"delta,omitempty"`
	ToolCallID     string          `json:"toolCallId,omitempty"`
	ToolName       string          `json:"toolName,omitempty"`
	InputTextDelta string          `json:"inputTextDelta,omitempty"`
	Input          json.RawMessage `json:"input,omitempty"`
	Output         json.RawMessage `json:"output,omitempty"`
	ErrorText      string          `json:"errorText,omitempty"`
	FinishReason   string          `json:"finishReason,omitempty"`
}

// Accumulator folds UI chunks into a message list. It is the only writer of
// that list while a run is active, so it carries no locks; readers take
// snapshots through Messages.
type Accumulator struct {
	messages []UIMessage
	status   ChatStatus
	current  int

	textParts map[string]int
	toolParts map[string]int
	inputs    map[string]*strings.Builder
}

// NewAccumulator starts from an existing history with status ready.
func NewAccumulator(history []UIMessage) *Accumulator {
	msgs := make([]UIMessage, len(history))
	copy(msgs, history)
	return &Accumulator{
		messages:  msgs,
		status:    StatusReady,
		current:   -1,
		textParts: make(map[string]int),
		toolParts: make(map[string]int),
		inputs:    make(map[string]*strings.Builder),
	}
}

// Submit appends a user message and marks the run submitted.
func (a *Accumulator) Submit(message UIMessage) {
	if message.Role == "" {
		message.Role = RoleUser
	}
	a.messages = append(a.messages, message)
	a.status = StatusSubmitted
	a.current = -1
	a.resetParts()
}

// Status returns the current run status.
func (a *Accumulator) Status() ChatStatus {
	return a.status
}

// Messages returns a copy of the message list.
func (a *Accumulator) Messages() []UIMessage {
	out := make([]UIMessage, len(a.messages))
	for i, m := range a.messages {
		out[i] = m
		out[i].Parts = append([]Part(nil), m.Parts...)
	}
	return out
}

// Response returns the assistant message being built by the current run, if any.
func (a *Accumulator) Response() *UIMessage {
	if a.current < 0 {
		return nil
	}
	msg := a.messages[a.current]
	msg.Parts = append([]Part(nil), msg.Parts...)
	return &msg
}

// Generating reports whether the agent is still producing content.
func (a *Accumulator) Generating() bool {
	return IsAgentGenerating(a.status, a.messages)
}

// Apply folds a single chunk into the message list.
func (a *Accumulator) Apply(chunk UIChunk) error {
	switch chunk.Type {
	case ChunkStart:
		a.begin(chunk.MessageID)
	case ChunkStartStep:
		a.appendPart(Part{Type: PartStepStart})
	case ChunkFinishStep:
	case ChunkTextStart, ChunkReasoningStart:
		typ := PartText
		if chunk.Type == ChunkReasoningStart {
			typ = PartReasoning
		}
		a.textParts[chunk.ID] = a.appendPart(Part{Type: typ, State: TextStreaming})
	case ChunkTextDelta, ChunkReasoningDelta:
		part, err := a.textPart(chunk.ID)
		if err != nil {
			return err
		}
		part.Text += chunk.Delta
	case ChunkTextEnd, ChunkReasoningEnd:
		part, err := a.textPart(chunk.ID)
		if err != nil {
			return err
		}
		part.State = TextDone
	case ChunkToolInputStart:
		a.toolParts[chunk.ToolCallID] = a.appendPart(Part{
			Type:       ToolPartType(chunk.ToolName),
			ToolCallID: chunk.ToolCallID,
			State:      string(ToolInputStreaming),
		})
		a.inputs[chunk.ToolCallID] = &strings.Builder{}
	case ChunkToolInputDelta:
		if _, err := a.toolPart(chunk.ToolCallID); err != nil {
			return err
		}
		if buf, ok := a.inputs[chunk.ToolCallID]; ok {
			buf.WriteString(chunk.InputTextDelta)
		}
	case ChunkToolInputAvailable:
		part, err := a.toolPart(chunk.ToolCallID)
		if err != nil {
			a.toolParts[chunk.ToolCallID] = a.appendPart(Part{
				Type:       ToolPartType(chunk.ToolName),
				ToolCallID: chunk.ToolCallID,
				State:      string(ToolInputStreaming),
			})
			part, _ = a.toolPart(chunk.ToolCallID)
		}
		input := chunk.Input
		if len(input) == 0 {
			if buf, ok := a.inputs[chunk.ToolCallID]; ok {
				input = json.RawMessage(buf.String())
			}
		}
		if part.Advance(ToolInputAvailable) {
			part.Input = input
		}
		delete(a.inputs, chunk.ToolCallID)
	case ChunkToolOutput:
		part, err := a.toolPart(chunk.ToolCallID)
		if err != nil {
			return err
		}
		if part.Advance(ToolOutputAvailable) {
			part.Output = chunk.Output
		}
	case ChunkToolOutputError:
		part, err := a.toolPart(chunk.ToolCallID)
		if err != nil {
			return err
		}
		if part.Advance(ToolOutputError) {
			part.ErrorText = chunk.ErrorText
		}
	case ChunkToolOutputDenied:
		part, err := a.toolPart(chunk.ToolCallID)
		if err != nil {
			return err
		}
		part.Advance(ToolOutputDenied)
	case ChunkFinish:
		a.status = StatusReady
	case ChunkAbort:
		a.abort("")
		a.status = StatusReady
	case ChunkError:
		a.abort(chunk.ErrorText)
		a.status = StatusError
	default:
		return fmt.Errorf("unknown chunk type %q", chunk.Type)
	}
	return nil
}

func (a *Accumulator) begin(messageID string) {
	if a.current >= 0 && (messageID == "" || a.messages[a.current].ID == messageID) {
		a.status = StatusStreaming
		return
	}
	if messageID == "" {
		messageID = uuid.New().String()
	}
	a.messages = append(a.messages, UIMessage{ID: messageID, Role: RoleAssistant})
	a.current = len(a.messages) - 1
	a.status = StatusStreaming
	a.resetParts()
}

// resetParts forgets part ids of the previous message. Ids are only valid
// within the message that introduced them.
func (a *Accumulator) resetParts() {
	clear(a.textParts)
	clear(a.toolParts)
	clear(a.inputs)
}

func (a *Accumulator) appendPart(part Part) int {
	if a.current < 0 {
		a.begin("")
	}
	msg := &a.messages[a.current]
	msg.Parts = append(msg.Parts, part)
	return len(msg.Parts) - 1
}

func (a *Accumulator) textPart(id string) (*Part, error) {
	idx, ok := a.textParts[id]
	if !ok || a.current < 0 {
		return nil, fmt.Errorf("unknown text part %q", id)
	}
	return &a.messages[a.current].Parts[idx], nil
}

func (a *Accumulator) toolPart(toolCallID string) (*Part, error) {
	idx, ok := a.toolParts[toolCallID]
	if !ok || a.current < 0 {
		return nil, fmt.Errorf("unknown tool call %q", toolCallID)
	}
	return &a.messages[a.current].Parts[idx], nil
}

func (a *Accumulator) abort(reason string) {
	if a.current < 0 {
		return
	}
	Abort(&a.messages[a.current], reason)
}
