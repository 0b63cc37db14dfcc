package agent

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/elee1766/naochat/src/aisdk"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type echoInput struct {
	Message string `json:"message" required:"true" description:"Text to echo"`
	Repeat  int    `json:"repeat,omitempty"`
}

type echoOutput struct {
	Echo string `json:"echo"`
}

func echoTool(t *testing.T) *GenericTool[echoInput, echoOutput] {
	t.Helper()
	tool, err := NewGenericTool("echo", "Echo a message", func(ctx context.Context, in echoInput) (echoOutput, error) {
		if in.Message == "fail" {
			return echoOutput{}, errors.New("asked to fail")
		}
		return echoOutput{Echo: in.Message}, nil
	})
	require.NoError(t, err)
	return tool
}

func call(name, args string) *aisdk.ToolCall {
	return &aisdk.ToolCall{ID: "call_1", Type: "function", Function: aisdk.FunctionCall{Name: name, Arguments: []byte(args)}}
}

func TestGenericToolSchema(t *testing.T) {
	tool := echoTool(t)
	assert.Equal(t, "function", tool.GetType())
	require.NotNil(t, tool.GetParameters())
	assert.Equal(t, []string{"message"}, tool.GetParameters().Required)
	assert.Contains(t, tool.GetParameters().Properties, "repeat")
}

func TestGenericToolExecute(t *testing.T) {
	tool := echoTool(t)
	ctx := context.Background()

	tests := []struct {
		name    string
		args    string
		isError bool
		content string
	}{
		{name: "ok", args: `{"message":"hi"}`, content: `{"echo":"hi"}`},
		{name: "missing required", args: `{}`, isError: true, content: "validation failed: required field 'message' is missing"},
		{name: "empty arguments", args: ``, isError: true, content: "validation failed: required field 'message' is missing"},
		{name: "malformed", args: `{"message":`, isError: true},
		{name: "handler error", args: `{"message":"fail"}`, isError: true, content: "asked to fail"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp, err := tool.Execute(ctx, call("echo", tt.args))
			require.NoError(t, err)
			assert.Equal(t, tt.isError, resp.IsError)
			if tt.content != "" {
				if tt.isError {
					assert.Equal(t, tt.content, string(resp.Content))
				} else {
					assert.JSONEq(t, tt.content, string(resp.Content))
				}
			}
		})
	}
}

func TestNewGenericToolRejectsNonStruct(t *testing.T) {
	_, err := NewGenericTool("bad", "", func(ctx context.Context, in string) (echoOutput, error) {
		return echoOutput{}, nil
	})
	assert.Error(t, err)
}

func TestToolbox(t *testing.T) {
	tb := NewToolbox[Tool]()
	require.NoError(t, tb.RegisterTool(echoTool(t)))
	assert.Error(t, tb.RegisterTool(echoTool(t)), "duplicate names are rejected")

	other, err := NewGenericTool("alpha", "first by name", func(ctx context.Context, in struct{}) (echoOutput, error) {
		return echoOutput{Echo: "a"}, nil
	})
	require.NoError(t, err)
	require.NoError(t, tb.RegisterTool(other))

	tools := tb.ChatTools()
	require.Len(t, tools, 2)
	assert.Equal(t, "alpha", tools[0].Function.Name)
	assert.Equal(t, "echo", tools[1].Function.Name)
	assert.True(t, tb.HasTool("echo"))

	resp, err := tb.ExecuteTool(context.Background(), call("missing", `{}`))
	require.NoError(t, err)
	assert.True(t, resp.IsError)
	assert.Equal(t, "tool missing not found", string(resp.Content))
}

func TestToolboxMiddlewareOrder(t *testing.T) {
	tb := NewToolbox[Tool]()
	require.NoError(t, tb.RegisterTool(echoTool(t)))

	var order []string
	trace := func(name string) ToolMiddleware {
		return func(next ToolExecutor) ToolExecutor {
			return func(ctx context.Context, c *aisdk.ToolCall) (*aisdk.ToolResponse, error) {
				order = append(order, name)
				return next(ctx, c)
			}
		}
	}
	tb.RegisterMiddleware(trace("outer"))
	tb.RegisterMiddleware(trace("inner"))
	tb.RegisterMiddleware(LoggingMiddleware(slog.New(slog.NewTextHandler(io.Discard, nil))))

	resp, err := tb.ExecuteTool(context.Background(), call("echo", `{"message":"x"}`))
	require.NoError(t, err)
	assert.False(t, resp.IsError)
	assert.Equal(t, []string{"outer", "inner"}, order)
}

func TestTimeoutMiddleware(t *testing.T) {
	tb := NewToolbox[Tool]()
	slow, err := NewGenericTool("slow", "", func(ctx context.Context, in struct{}) (echoOutput, error) {
		select {
		case <-ctx.Done():
			return echoOutput{}, ctx.Err()
		case <-time.After(time.Second):
			return echoOutput{Echo: "late"}, nil
		}
	})
	require.NoError(t, err)
	require.NoError(t, tb.RegisterTool(slow))
	tb.RegisterMiddleware(TimeoutMiddleware(10 * time.Millisecond))

	resp, err := tb.ExecuteTool(context.Background(), call("slow", `{}`))
	require.NoError(t, err)
	assert.True(t, resp.IsError)
	assert.Contains(t, string(resp.Content), "deadline exceeded")
}
