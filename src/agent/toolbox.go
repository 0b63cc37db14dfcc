package agent

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"time"

	"github.com/elee1766/naochat/src/aisdk"
)

// ToolExecutor is a function type for tool execution
type ToolExecutor func(ctx context.Context, call *aisdk.ToolCall) (*aisdk.ToolResponse, error)

// DefaultToolbox holds tools of any concrete type.
type DefaultToolbox = Toolbox[Tool]

// Toolbox handles tool/function calling functionality.
type Toolbox[T Tool] struct {
	tools      map[string]T
	middleware []ToolMiddleware
}

// ToolMiddleware is a function that wraps a ToolExecutor to add functionality.
type ToolMiddleware func(next ToolExecutor) ToolExecutor

// NewToolbox creates a new tool manager.
func NewToolbox[T Tool]() *Toolbox[T] {
	return &Toolbox[T]{
		tools: make(map[string]T),
	}
}

// RegisterTool registers a tool.
func (tm *Toolbox[T]) RegisterTool(tool T) error {
	if tool.GetName() == "" {
		return fmt.Errorf("tool name cannot be empty")
	}
	if _, exists := tm.tools[tool.GetName()]; exists {
		return fmt.Errorf("tool %s is already registered", tool.GetName())
	}

	tm.tools[tool.GetName()] = tool
	return nil
}

// RegisterMiddleware registers middleware that will be applied to all tool executions.
// Middleware is applied in the order it's registered (first registered = outermost layer).
func (tm *Toolbox[T]) RegisterMiddleware(middleware ToolMiddleware) {
	tm.middleware = append(tm.middleware, middleware)
}

// Tools returns the registered tools sorted by name, so prompts and requests
// built from them are stable.
func (tm *Toolbox[T]) Tools() []T {
	names := make([]string, 0, len(tm.tools))
	for name := range tm.tools {
		names = append(names, name)
	}
	sort.Strings(names)

	out := make([]T, 0, len(names))
	for _, name := range names {
		out = append(out, tm.tools[name])
	}
	return out
}

// ChatTools returns the wire definitions of the registered tools.
func (tm *Toolbox[T]) ChatTools() []*aisdk.ChatTool {
	return ToChatTools(tm.Tools())
}

// ExecuteTool executes a tool call with middleware applied. Unknown tools are
// reported as an error response rather than a Go error, since the model can
// recover from a misspelled name.
func (tm *Toolbox[T]) ExecuteTool(ctx context.Context, call *aisdk.ToolCall) (*aisdk.ToolResponse, error) {
	tool, exists := tm.tools[call.Function.Name]
	if !exists {
		return ErrorResponse(fmt.Sprintf("tool %s not found", call.Function.Name)), nil
	}

	final := ToolExecutor(func(ctx context.Context, call *aisdk.ToolCall) (*aisdk.ToolResponse, error) {
		return tool.Execute(ctx, call)
	})
	for i := len(tm.middleware) - 1; i >= 0; i-- {
		final = tm.middleware[i](final)
	}

	return final(ctx, call)
}

// GetTool returns a specific tool by name.
func (tm *Toolbox[T]) GetTool(name string) (T, bool) {
	tool, exists := tm.tools[name]
	return tool, exists
}

// HasTool checks if a tool is available.
func (tm *Toolbox[T]) HasTool(name string) bool {
	_, exists := tm.tools[name]
	return exists
}

// LoggingMiddleware logs each call with its duration and outcome.
func LoggingMiddleware(logger *slog.Logger) ToolMiddleware {
	return func(next ToolExecutor) ToolExecutor {
		return func(ctx context.Context, call *aisdk.ToolCall) (*aisdk.ToolResponse, error) {
			start := time.Now()
			logger.Debug("executing tool", "tool", call.Function.Name, "tool_call_id", call.ID, "params", string(call.Function.Arguments))
			result, err := next(ctx, call)
			attrs := []any{"tool", call.Function.Name, "tool_call_id", call.ID, "duration", time.Since(start)}
			switch {
			case err != nil:
				logger.Error("tool execution failed", append(attrs, "error", err)...)
			case result != nil && result.IsError:
				logger.Warn("tool returned an error", append(attrs, "error", string(result.Content))...)
			default:
				logger.Info("tool execution completed", attrs...)
			}
			return result, err
		}
	}
}

// TimeoutMiddleware bounds every call to d. A zero duration disables it.
func TimeoutMiddleware(d time.Duration) ToolMiddleware {
	return func(next ToolExecutor) ToolExecutor {
		if d <= 0 {
			return next
		}
		return func(ctx context.Context, call *aisdk.ToolCall) (*aisdk.ToolResponse, error) {
			ctx, cancel := context.WithTimeout(ctx, d)
			defer cancel()
			return next(ctx, call)
		}
	}
}
