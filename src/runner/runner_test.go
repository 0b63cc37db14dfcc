package runner

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"path/filepath"
	"strings"
	"testing"

	"github.com/elee1766/naochat/src/aisdk"
	"github.com/elee1766/naochat/src/config"
	"github.com/elee1766/naochat/src/projectconfig"
	"github.com/elee1766/naochat/src/storage"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeStream replays chunks, then returns err or io.EOF.
type fakeStream struct {
	chunks []*aisdk.StreamChunk
	err    error
	closed bool
}

func (s *fakeStream) Read() (*aisdk.StreamChunk, error) {
	if len(s.chunks) == 0 {
		if s.err != nil {
			return nil, s.err
		}
		return nil, io.EOF
	}
	c := s.chunks[0]
	s.chunks = s.chunks[1:]
	return c, nil
}

func (s *fakeStream) Close() error {
	s.closed = true
	return nil
}

// fakeModel answers each call with the next scripted stream.
type fakeModel struct {
	steps    [][]*aisdk.StreamChunk
	err      error
	requests []*aisdk.ChatCompletionRequest
}

func (m *fakeModel) CreateChatCompletion(ctx context.Context, req *aisdk.ChatCompletionRequest) (*aisdk.ChatCompletionResponse, error) {
	return nil, errors.New("not used")
}

func (m *fakeModel) CreateChatCompletionStream(ctx context.Context, req *aisdk.ChatCompletionRequest) (aisdk.StreamInterface, error) {
	m.requests = append(m.requests, req)
	if m.err != nil {
		return nil, m.err
	}
	if len(m.steps) == 0 {
		return &fakeStream{chunks: textChunks("nothing left")}, nil
	}
	next := m.steps[0]
	if len(m.steps) > 1 {
		m.steps = m.steps[1:]
	}
	return &fakeStream{chunks: next}, nil
}

func (m *fakeModel) GetModelInfo() *aisdk.ModelInfo {
	return &aisdk.ModelInfo{ID: "fake-model"}
}

func delta(msg aisdk.Message) *aisdk.StreamChunk {
	return &aisdk.StreamChunk{Choices: []aisdk.Choice{{Delta: &msg}}}
}

func finish(reason string) *aisdk.StreamChunk {
	return &aisdk.StreamChunk{
		Choices: []aisdk.Choice{{Delta: &aisdk.Message{}, FinishReason: reason}},
		Usage:   &aisdk.Usage{PromptTokens: 10, CompletionTokens: 5, TotalTokens: 15},
	}
}

func textChunks(parts ...string) []*aisdk.StreamChunk {
	var out []*aisdk.StreamChunk
	for _, p := range parts {
		out = append(out, delta(aisdk.Message{Content: p}))
	}
	return append(out, finish(aisdk.FinishReasonStop))
}

func toolCallChunks(calls ...aisdk.ToolCall) []*aisdk.StreamChunk {
	var out []*aisdk.StreamChunk
	for i, c := range calls {
		idx := i
		args := string(c.Function.Arguments)
		half := len(args) / 2
		out = append(out,
			delta(aisdk.Message{ToolCalls: []aisdk.ToolCall{{Index: &idx, ID: c.ID, Function: aisdk.FunctionCall{Name: c.Function.Name, Arguments: json.RawMessage(args[:half])}}}}),
			delta(aisdk.Message{ToolCalls: []aisdk.ToolCall{{Index: &idx, Function: aisdk.FunctionCall{Arguments: json.RawMessage(args[half:])}}}}),
		)
	}
	return append(out, finish(aisdk.FinishReasonToolCalls))
}

func call(id, name, args string) aisdk.ToolCall {
	return aisdk.ToolCall{ID: id, Function: aisdk.FunctionCall{Name: name, Arguments: json.RawMessage(args)}}
}

// fakeToolbox echoes its input back. Calls named "fail" return an error
// response; onCall runs before every call.
type fakeToolbox struct {
	calls  []string
	onCall func()
}

func (f *fakeToolbox) ChatTools() []*aisdk.ChatTool {
	return []*aisdk.ChatTool{{Type: "function", Function: aisdk.ChatToolFunction{Name: "echo"}}}
}

func (f *fakeToolbox) ExecuteTool(ctx context.Context, call *aisdk.ToolCall) (*aisdk.ToolResponse, error) {
	f.calls = append(f.calls, call.ID)
	if f.onCall != nil {
		f.onCall()
	}
	if call.Function.Name == "fail" {
		return &aisdk.ToolResponse{Type: "error", Content: []byte("boom"), IsError: true}, nil
	}
	return &aisdk.ToolResponse{Type: "success", Content: call.Function.Arguments}, nil
}

type recorder struct {
	chunks []aisdk.UIChunk
	err    error
}

func (r *recorder) Send(chunk aisdk.UIChunk) error {
	r.chunks = append(r.chunks, chunk)
	return r.err
}

func (r *recorder) types() []aisdk.ChunkType {
	out := make([]aisdk.ChunkType, len(r.chunks))
	for i, c := range r.chunks {
		out[i] = c.Type
	}
	return out
}

func userMessage(text string) aisdk.UIMessage {
	return aisdk.UIMessage{Parts: []aisdk.Part{aisdk.NewTextPart(text)}}
}

func partTypes(msg *aisdk.UIMessage) []aisdk.PartType {
	out := make([]aisdk.PartType, len(msg.Parts))
	for i, p := range msg.Parts {
		out[i] = p.Type
	}
	return out
}

func TestRunTextOnly(t *testing.T) {
	model := &fakeModel{steps: [][]*aisdk.StreamChunk{textChunks("Hel", "lo")}}
	sink := &recorder{}

	res, err := New(Config{}).Run(context.Background(), &Request{
		Message:      userMessage("hi"),
		Model:        model,
		SystemPrompt: "be brief",
	}, sink)
	require.NoError(t, err)

	assert.Equal(t, []aisdk.ChunkType{
		aisdk.ChunkStart,
		aisdk.ChunkStartStep,
		aisdk.ChunkTextStart,
		aisdk.ChunkTextDelta,
		aisdk.ChunkTextDelta,
		aisdk.ChunkTextEnd,
		aisdk.ChunkFinishStep,
		aisdk.ChunkFinish,
	}, sink.types())

	assert.Equal(t, 1, res.Steps)
	assert.Equal(t, aisdk.FinishReasonStop, res.FinishReason)
	assert.Equal(t, 15, res.Usage.TotalTokens)
	assert.False(t, res.Aborted)
	require.NotNil(t, res.Message)
	assert.Equal(t, aisdk.RoleAssistant, res.Message.Role)
	assert.Equal(t, "Hello", res.Message.Text())
	assert.Equal(t, res.Message.ID, sink.chunks[0].MessageID)

	require.Len(t, model.requests, 1)
	req := model.requests[0]
	assert.True(t, req.Stream)
	assert.Equal(t, "fake-model", req.Model)
	require.Len(t, req.Messages, 2)
	assert.Equal(t, "system", req.Messages[0].Role)
	assert.Equal(t, "be brief", req.Messages[0].Content)
	assert.Equal(t, "hi", req.Messages[1].Content)
}

func TestRunToolLoop(t *testing.T) {
	model := &fakeModel{steps: [][]*aisdk.StreamChunk{
		toolCallChunks(call("call_1", "echo", `{"text":"ping"}`)),
		textChunks("done"),
	}}
	tools := &fakeToolbox{}
	sink := &recorder{}

	res, err := New(Config{}).Run(context.Background(), &Request{
		Message: userMessage("ping it"),
		Model:   model,
		Toolbox: tools,
	}, sink)
	require.NoError(t, err)

	assert.Equal(t, 2, res.Steps)
	assert.Equal(t, 30, res.Usage.TotalTokens)
	assert.Equal(t, []string{"call_1"}, tools.calls)
	assert.Equal(t, []aisdk.PartType{
		aisdk.PartStepStart,
		aisdk.ToolPartType("echo"),
		aisdk.PartStepStart,
		aisdk.PartText,
	}, partTypes(res.Message))

	tool := res.Message.Parts[1]
	assert.Equal(t, aisdk.ToolOutputAvailable, tool.ToolState())
	assert.JSONEq(t, `{"text":"ping"}`, string(tool.Input))
	assert.JSONEq(t, `{"text":"ping"}`, string(tool.Output))

	var deltas []string
	for _, c := range sink.chunks {
		if c.Type == aisdk.ChunkToolInputDelta {
			deltas = append(deltas, c.InputTextDelta)
		}
	}
	assert.Equal(t, `{"text":"ping"}`, strings.Join(deltas, ""))

	// The second call sees the tool call and its result.
	require.Len(t, model.requests, 2)
	msgs := model.requests[1].Messages
	require.Len(t, msgs, 3)
	assert.Equal(t, "assistant", msgs[1].Role)
	require.Len(t, msgs[1].ToolCalls, 1)
	assert.Equal(t, "call_1", msgs[1].ToolCalls[0].ID)
	assert.Equal(t, "tool", msgs[2].Role)
	assert.Equal(t, "call_1", msgs[2].ToolCallID)
	assert.JSONEq(t, `{"text":"ping"}`, msgs[2].Content)
	require.Len(t, model.requests[1].Tools, 1)
}

func TestRunToolErrors(t *testing.T) {
	model := &fakeModel{steps: [][]*aisdk.StreamChunk{
		toolCallChunks(
			call("call_bad", "echo", `{"text":`),
			call("call_fail", "fail", `{}`),
		),
		textChunks("sorry"),
	}}
	tools := &fakeToolbox{}

	res, err := New(Config{}).Run(context.Background(), &Request{
		Message: userMessage("go"),
		Model:   model,
		Toolbox: tools,
	}, nil)
	require.NoError(t, err)

	assert.Equal(t, []string{"call_fail"}, tools.calls, "malformed input never reaches the tool")

	parts := res.Message.ToolParts()
	require.Len(t, parts, 2)
	assert.Equal(t, aisdk.ToolOutputError, parts[0].ToolState())
	assert.Contains(t, parts[0].ErrorText, "invalid tool input")
	assert.Equal(t, aisdk.ToolOutputError, parts[1].ToolState())
	assert.Equal(t, "boom", parts[1].ErrorText)
}

func TestRunMaxSteps(t *testing.T) {
	model := &fakeModel{steps: [][]*aisdk.StreamChunk{
		toolCallChunks(call("", "echo", `{}`)),
	}}
	tools := &fakeToolbox{}

	res, err := New(Config{MaxSteps: 2}).Run(context.Background(), &Request{
		Message: userMessage("loop"),
		Model:   model,
		Toolbox: tools,
	}, nil)
	require.NoError(t, err)

	assert.Equal(t, 2, res.Steps)
	assert.Equal(t, FinishMaxSteps, res.FinishReason)
	assert.Len(t, model.requests, 2)
	require.Len(t, tools.calls, 2)
	assert.True(t, strings.HasPrefix(tools.calls[0], "call_"), "missing ids are generated")
	assert.NotEqual(t, tools.calls[0], tools.calls[1])
}

func TestRunAbort(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	model := &fakeModel{steps: [][]*aisdk.StreamChunk{
		toolCallChunks(
			call("call_1", "echo", `{"n":1}`),
			call("call_2", "echo", `{"n":2}`),
		),
	}}
	tools := &fakeToolbox{onCall: cancel}
	sink := &recorder{}

	res, err := New(Config{}).Run(ctx, &Request{
		Message: userMessage("go"),
		Model:   model,
		Toolbox: tools,
	}, sink)
	require.NoError(t, err)

	assert.True(t, res.Aborted)
	assert.Equal(t, []string{"call_1"}, tools.calls)
	assert.Equal(t, aisdk.ChunkAbort, sink.chunks[len(sink.chunks)-1].Type)

	parts := res.Message.ToolParts()
	require.Len(t, parts, 2)
	assert.Equal(t, aisdk.ToolOutputAvailable, parts[0].ToolState())
	assert.Equal(t, aisdk.ToolOutputDenied, parts[1].ToolState())
	assert.Equal(t, aisdk.AbortedDenyText, parts[1].ErrorText)
	for _, p := range res.Message.Parts {
		assert.False(t, p.IsStreaming())
	}
}

func TestRunModelError(t *testing.T) {
	boom := errors.New("provider down")
	sink := &recorder{}

	res, err := New(Config{}).Run(context.Background(), &Request{
		Message: userMessage("hi"),
		Model:   &fakeModel{err: boom},
	}, sink)
	require.ErrorIs(t, err, boom)
	require.NotNil(t, res)

	last := sink.chunks[len(sink.chunks)-1]
	assert.Equal(t, aisdk.ChunkError, last.Type)
	assert.Contains(t, last.ErrorText, "provider down")
}

func TestRunValidation(t *testing.T) {
	r := New(Config{})
	_, err := r.Run(context.Background(), &Request{Message: userMessage("hi")}, nil)
	assert.ErrorIs(t, err, ErrModelClientRequired)

	_, err = r.Run(context.Background(), &Request{Message: userMessage(""), Model: &fakeModel{}}, nil)
	assert.ErrorIs(t, err, ErrEmptyMessage)
}

func TestRunSinkFailureKeepsRunning(t *testing.T) {
	model := &fakeModel{steps: [][]*aisdk.StreamChunk{textChunks("a", "b")}}
	sink := &recorder{err: errors.New("client gone")}

	res, err := New(Config{}).Run(context.Background(), &Request{
		Message: userMessage("hi"),
		Model:   model,
	}, sink)
	require.NoError(t, err)
	assert.Len(t, sink.chunks, 1, "nothing is sent after the sink fails")
	assert.Equal(t, "ab", res.Message.Text())
}

type testEnv struct {
	db      *storage.DB
	user    *storage.User
	project *storage.Project
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	ctx := context.Background()
	db, err := storage.Open(filepath.Join(t.TempDir(), "naochat.db"))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	user := &storage.User{Name: "Ada", Email: "ada@example.com", PasswordHash: "x"}
	require.NoError(t, storage.CreateUser(ctx, db.DB(), user))
	project := &storage.Project{Name: "shop"}
	require.NoError(t, storage.CreateProject(ctx, db.DB(), project))
	return &testEnv{db: db, user: user, project: project}
}

func TestRunPersists(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)
	chat := &storage.Chat{ProjectID: env.project.ID, UserID: env.user.ID, Title: "t"}
	require.NoError(t, storage.CreateChat(ctx, env.db.DB(), chat))

	model := &fakeModel{steps: [][]*aisdk.StreamChunk{textChunks("hello")}}
	res, err := New(Config{DB: env.db.DB()}).Run(ctx, &Request{
		ChatID:  chat.ID,
		Message: userMessage("hi"),
		Model:   model,
	}, nil)
	require.NoError(t, err)

	rows, err := storage.GetChatMessages(ctx, env.db.DB(), chat.ID)
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, "user", rows[0].Role)
	assert.Equal(t, "hi", rows[0].UIMessage().Text())
	assert.Equal(t, res.Message.ID, rows[1].ID)
	assert.Equal(t, "hello", rows[1].UIMessage().Text())
}

func TestTitleFromMessage(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"What was revenue last month?", "What was revenue last month?"},
		{"  first line\nsecond line", "first line"},
		{"", "New chat"},
		{
			"Show me the weekly revenue trend for every product category over the last two years",
			"Show me the weekly revenue trend for every product category…",
		},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, TitleFromMessage(tt.in))
	}
}

func TestServiceSend(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)

	configs := projectconfig.New(env.db.DB(), projectconfig.WithLookupEnv(func(key string) (string, bool) {
		if key == projectconfig.EnvAnthropicAPIKey {
			return "sk-ant-env", true
		}
		return "", false
	}))

	model := &fakeModel{steps: [][]*aisdk.StreamChunk{textChunks("answer")}}
	var gotCreds *projectconfig.Credentials
	agentCfg := config.DefaultConfig().Agent
	svc := NewService(ServiceConfig{
		Database: env.db.DB(),
		Configs:  configs,
		Agent:    agentCfg,
		Models: func(ctx context.Context, creds *projectconfig.Credentials) (aisdk.ModelClient, error) {
			gotCreds = creds
			return model, nil
		},
	})

	chat, err := svc.OpenChat(ctx, env.project.ID, env.user.ID, "", "Revenue by month")
	require.NoError(t, err)
	assert.Equal(t, "Revenue by month", chat.Title)

	res, err := svc.Send(ctx, chat, userMessage("Revenue by month"), nil)
	require.NoError(t, err)
	assert.Equal(t, "answer", res.Message.Text())

	require.NotNil(t, gotCreds)
	assert.Equal(t, storage.ProviderAnthropic, gotCreds.Provider)
	require.Len(t, model.requests, 1)
	assert.Contains(t, model.requests[0].Messages[0].Content, "execute_sql")
	assert.Len(t, model.requests[0].Tools, 6)

	history, err := svc.History(ctx, chat.ID)
	require.NoError(t, err)
	assert.Len(t, history, 2)

	_, err = svc.OpenChat(ctx, env.project.ID, "someone-else", chat.ID, "")
	assert.ErrorIs(t, err, ErrChatNotFound)
	_, err = svc.OpenChat(ctx, env.project.ID, env.user.ID, "missing", "")
	assert.ErrorIs(t, err, ErrChatNotFound)
}

func TestServiceSendWithoutProvider(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)
	configs := projectconfig.New(env.db.DB(), projectconfig.WithLookupEnv(func(string) (string, bool) { return "", false }))
	svc := NewService(ServiceConfig{Database: env.db.DB(), Configs: configs, Agent: config.DefaultConfig().Agent})

	chat, err := svc.OpenChat(ctx, env.project.ID, env.user.ID, "", "hi")
	require.NoError(t, err)
	_, err = svc.Send(ctx, chat, userMessage("hi"), nil)
	assert.ErrorIs(t, err, projectconfig.ErrNoProvider)
}
