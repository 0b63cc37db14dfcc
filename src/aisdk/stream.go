package aisdk

import (
	"errors"
	"io"
	"sort"
	"strings"
)

// StreamCallback is a function called for each chunk in a stream.
type StreamCallback func(chunk *StreamChunk) error

// StreamToCallback reads a stream and calls the callback for each chunk.
func StreamToCallback(stream StreamInterface, callback StreamCallback) error {
	defer stream.Close()

	for {
		chunk, err := stream.Read()
		if err != nil {
			if errors.Is(err, io.EOF) {
				return nil // End of stream
			}
			return err
		}

		if chunk == nil {
			return nil // End of stream
		}

		if err := callback(chunk); err != nil {
			return err
		}
	}
}

// StreamAggregator helps aggregate streaming responses into a final response.
type StreamAggregator struct {
	ID        string
	Object    string
	Created   int64
	Model     string
	Content   strings.Builder
	Reasoning strings.Builder

	// Tracking state
	FinishReason string
	Usage        *Usage

	toolCalls map[int]*pendingToolCall
}

type pendingToolCall struct {
	id   string
	name string
	args strings.Builder
}

// NewStreamAggregator creates a new stream aggregator.
func NewStreamAggregator() *StreamAggregator {
	return &StreamAggregator{
		Object:    "chat.completion",
		toolCalls: make(map[int]*pendingToolCall),
	}
}

// AddChunk processes a stream chunk and updates the aggregated state.
func (a *StreamAggregator) AddChunk(chunk *StreamChunk) {
	if a.ID == "" {
		a.ID = chunk.ID
	}
	if a.Created == 0 {
		a.Created = chunk.Created
	}
	if a.Model == "" {
		a.Model = chunk.Model
	}
	if chunk.Usage != nil {
		a.Usage = chunk.Usage
	}

	if len(chunk.Choices) == 0 {
		return
	}
	choice := chunk.Choices[0]

	if choice.Delta != nil {
		a.Content.WriteString(choice.Delta.Content)
		a.Reasoning.WriteString(choice.Delta.ReasoningContent)

		for pos, tc := range choice.Delta.ToolCalls {
			idx := pos
			if tc.Index != nil {
				idx = *tc.Index
			}
			pending, ok := a.toolCalls[idx]
			if !ok {
				pending = &pendingToolCall{}
				a.toolCalls[idx] = pending
			}
			if tc.ID != "" {
				pending.id = tc.ID
			}
			if tc.Function.Name != "" {
				pending.name = tc.Function.Name
			}
			pending.args.Write(tc.Function.Arguments)
		}
	}

	if choice.FinishReason != "" {
		a.FinishReason = choice.FinishReason
	}
}

// ToolCalls returns the tool calls assembled so far, ordered by stream index.
func (a *StreamAggregator) ToolCalls() []ToolCall {
	if len(a.toolCalls) == 0 {
		return nil
	}
	indexes := make([]int, 0, len(a.toolCalls))
	for idx := range a.toolCalls {
		indexes = append(indexes, idx)
	}
	sort.Ints(indexes)

	out := make([]ToolCall, 0, len(indexes))
	for _, idx := range indexes {
		p := a.toolCalls[idx]
		args := p.args.String()
		if args == "" {
			args = "{}"
		}
		out = append(out, ToolCall{
			ID:   p.id,
			Type: "function",
			Function: FunctionCall{
				Name:      p.name,
				Arguments: []byte(args),
			},
		})
	}
	return out
}

// ToResponse converts the aggregated stream into a ChatCompletionResponse.
func (a *StreamAggregator) ToResponse() *ChatCompletionResponse {
	response := &ChatCompletionResponse{
		ID:      a.ID,
		Object:  a.Object,
		Created: a.Created,
		Model:   a.Model,
		Choices: []Choice{
			{
				Index: 0,
				Message: Message{
					Role:             "assistant",
					Content:          a.Content.String(),
					ReasoningContent: a.Reasoning.String(),
					ToolCalls:        a.ToolCalls(),
				},
				FinishReason: a.FinishReason,
			},
		},
	}

	if a.Usage != nil {
		response.Usage = *a.Usage
	}

	return response
}

// AggregateStream reads a stream and returns the aggregated response.
func AggregateStream(stream StreamInterface) (*ChatCompletionResponse, error) {
	aggregator := NewStreamAggregator()

	err := StreamToCallback(stream, func(chunk *StreamChunk) error {
		aggregator.AddChunk(chunk)
		return nil
	})

	if err != nil {
		return nil, err
	}

	return aggregator.ToResponse(), nil
}
