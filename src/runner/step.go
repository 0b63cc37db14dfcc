package runner

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"sort"

	"github.com/elee1766/naochat/src/aisdk"
	"github.com/google/uuid"
)

type stepOutcome struct {
	finishReason string
	usage        *aisdk.Usage
	toolCalls    int
}

// pendingCall is a tool call assembled from stream deltas.
type pendingCall struct {
	id      string
	name    string
	args    []byte
	started bool
}

// stepStream turns the deltas of one completion into UI chunks.
type stepStream struct {
	step    int
	emitter *emitter

	seq         int
	textID      string
	reasoningID string
	calls       map[int]*pendingCall
}

func modelID(mc aisdk.ModelClient) string {
	if info := mc.GetModelInfo(); info != nil {
		return info.ID
	}
	return ""
}

// step runs one model call and the tool calls it asks for.
func (r *Runner) step(ctx context.Context, rn *run, step int) (*stepOutcome, error) {
	e := rn.emitter
	e.emit(aisdk.UIChunk{Type: aisdk.ChunkStartStep})

	req := &aisdk.ChatCompletionRequest{
		Model:    modelID(rn.req.Model),
		Messages: aisdk.ToModelMessages(rn.req.SystemPrompt, e.acc.Messages()),
		Stream:   true,
	}
	if r.temperature > 0 {
		t := float64(r.temperature)
		req.Temperature = &t
	}
	if r.maxTokens > 0 {
		n := r.maxTokens
		req.MaxTokens = &n
	}
	if rn.req.Toolbox != nil {
		req.Tools = rn.req.Toolbox.ChatTools()
	}

	stream, err := rn.req.Model.CreateChatCompletionStream(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("failed to start completion: %w", err)
	}
	defer stream.Close()

	agg := aisdk.NewStreamAggregator()
	ss := &stepStream{step: step, emitter: e, calls: make(map[int]*pendingCall)}
	for {
		chunk, err := stream.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			ss.closeText()
			return nil, fmt.Errorf("completion stream failed: %w", err)
		}
		agg.AddChunk(chunk)
		ss.apply(chunk)
	}
	ss.closeText()

	calls := ss.toolCalls()
	for _, call := range calls {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		r.executeTool(ctx, rn, call)
	}

	e.emit(aisdk.UIChunk{Type: aisdk.ChunkFinishStep})
	return &stepOutcome{
		finishReason: agg.FinishReason,
		usage:        agg.Usage,
		toolCalls:    len(calls),
	}, nil
}

func (ss *stepStream) nextID(kind string) string {
	ss.seq++
	return fmt.Sprintf("%s-%d-%d", kind, ss.step, ss.seq)
}

func (ss *stepStream) apply(chunk *aisdk.StreamChunk) {
	if len(chunk.Choices) == 0 || chunk.Choices[0].Delta == nil {
		return
	}
	delta := chunk.Choices[0].Delta

	if delta.ReasoningContent != "" {
		if ss.reasoningID == "" {
			ss.reasoningID = ss.nextID("reasoning")
			ss.emitter.emit(aisdk.UIChunk{Type: aisdk.ChunkReasoningStart, ID: ss.reasoningID})
		}
		ss.emitter.emit(aisdk.UIChunk{Type: aisdk.ChunkReasoningDelta, ID: ss.reasoningID, Delta: delta.ReasoningContent})
	}

	if delta.Content != "" {
		ss.closeReasoning()
		if ss.textID == "" {
			ss.textID = ss.nextID("text")
			ss.emitter.emit(aisdk.UIChunk{Type: aisdk.ChunkTextStart, ID: ss.textID})
		}
		ss.emitter.emit(aisdk.UIChunk{Type: aisdk.ChunkTextDelta, ID: ss.textID, Delta: delta.Content})
	}

	for pos, tc := range delta.ToolCalls {
		idx := pos
		if tc.Index != nil {
			idx = *tc.Index
		}
		call, ok := ss.calls[idx]
		if !ok {
			call = &pendingCall{}
			ss.calls[idx] = call
		}
		if call.id == "" && tc.ID != "" {
			call.id = tc.ID
		}
		if call.name == "" && tc.Function.Name != "" {
			call.name = tc.Function.Name
		}

		args := tc.Function.Arguments
		if !call.started && call.name != "" {
			ss.closeText()
			if call.id == "" {
				call.id = "call_" + uuid.NewString()
			}
			call.started = true
			ss.emitter.emit(aisdk.UIChunk{Type: aisdk.ChunkToolInputStart, ToolCallID: call.id, ToolName: call.name})
			// Arguments that arrived before the name are replayed.
			if len(call.args) > 0 {
				ss.emitter.emit(aisdk.UIChunk{Type: aisdk.ChunkToolInputDelta, ToolCallID: call.id, InputTextDelta: string(call.args)})
			}
		}
		if len(args) > 0 {
			call.args = append(call.args, args...)
			if call.started {
				ss.emitter.emit(aisdk.UIChunk{Type: aisdk.ChunkToolInputDelta, ToolCallID: call.id, InputTextDelta: string(args)})
			}
		}
	}
}

func (ss *stepStream) closeReasoning() {
	if ss.reasoningID != "" {
		ss.emitter.emit(aisdk.UIChunk{Type: aisdk.ChunkReasoningEnd, ID: ss.reasoningID})
		ss.reasoningID = ""
	}
}

func (ss *stepStream) closeText() {
	ss.closeReasoning()
	if ss.textID != "" {
		ss.emitter.emit(aisdk.UIChunk{Type: aisdk.ChunkTextEnd, ID: ss.textID})
		ss.textID = ""
	}
}

// toolCalls finalizes the calls of the step in stream order. Each call with
// well-formed arguments gets its input-available chunk. A call whose
// arguments are not JSON fails right away; a call that never got a name is
// dropped.
func (ss *stepStream) toolCalls() []aisdk.ToolCall {
	indexes := make([]int, 0, len(ss.calls))
	for idx := range ss.calls {
		indexes = append(indexes, idx)
	}
	sort.Ints(indexes)

	var out []aisdk.ToolCall
	for _, idx := range indexes {
		call := ss.calls[idx]
		if !call.started {
			ss.emitter.logger.Warn("dropping tool call without a name", "index", idx)
			continue
		}
		args := call.args
		if len(args) == 0 {
			args = []byte("{}")
		}
		if !json.Valid(args) {
			ss.emitter.emit(aisdk.UIChunk{
				Type:       aisdk.ChunkToolOutputError,
				ToolCallID: call.id,
				ErrorText:  fmt.Sprintf("invalid tool input: %s", args),
			})
			continue
		}
		ss.emitter.emit(aisdk.UIChunk{
			Type:       aisdk.ChunkToolInputAvailable,
			ToolCallID: call.id,
			ToolName:   call.name,
			Input:      json.RawMessage(args),
		})
		out = append(out, aisdk.ToolCall{
			ID:       call.id,
			Type:     "function",
			Function: aisdk.FunctionCall{Name: call.name, Arguments: json.RawMessage(args)},
		})
	}
	return out
}

// executeTool runs one call and emits its outcome. Tool failures are results
// for the model to read, not run errors.
func (r *Runner) executeTool(ctx context.Context, rn *run, call aisdk.ToolCall) {
	e := rn.emitter
	if rn.req.Toolbox == nil {
		e.emit(aisdk.UIChunk{Type: aisdk.ChunkToolOutputError, ToolCallID: call.ID, ErrorText: "no tools are available"})
		return
	}

	resp, err := rn.req.Toolbox.ExecuteTool(ctx, &call)
	switch {
	case err != nil:
		e.emit(aisdk.UIChunk{Type: aisdk.ChunkToolOutputError, ToolCallID: call.ID, ErrorText: err.Error()})
	case resp == nil:
		e.emit(aisdk.UIChunk{Type: aisdk.ChunkToolOutputError, ToolCallID: call.ID, ErrorText: "tool returned no response"})
	case resp.IsError:
		e.emit(aisdk.UIChunk{Type: aisdk.ChunkToolOutputError, ToolCallID: call.ID, ErrorText: string(resp.Content)})
	default:
		output := json.RawMessage(resp.Content)
		if !json.Valid(output) {
			output, _ = json.Marshal(string(resp.Content))
		}
		e.emit(aisdk.UIChunk{Type: aisdk.ChunkToolOutput, ToolCallID: call.ID, Output: output})
	}
}
