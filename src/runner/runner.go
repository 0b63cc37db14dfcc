// Package runner drives the agent loop of a chat: it streams model output as
// UI chunks, executes the tool calls the model makes, and persists the
// resulting assistant message.
package runner

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"time"

	"github.com/elee1766/naochat/src/aisdk"
	"github.com/elee1766/naochat/src/storage"
	"github.com/google/uuid"
)

// FinishMaxSteps is reported when the loop stopped because it ran out of steps
// while the model still wanted to call tools.
const FinishMaxSteps = "max-steps"

// Toolbox is what the loop needs from a tool registry.
type Toolbox interface {
	ChatTools() []*aisdk.ChatTool
	ExecuteTool(ctx context.Context, call *aisdk.ToolCall) (*aisdk.ToolResponse, error)
}

// Request is one user message to answer.
type Request struct {
	// ChatID is where messages are persisted. Empty disables persistence.
	ChatID string

	// History is the chat before Message, oldest first.
	History []aisdk.UIMessage
	Message aisdk.UIMessage

	Model   aisdk.ModelClient
	Toolbox Toolbox

	SystemPrompt string
}

// Result describes a finished run.
type Result struct {
	// Message is the assistant message as persisted.
	Message      *aisdk.UIMessage
	Steps        int
	FinishReason string
	Usage        aisdk.Usage
	// Aborted is set when the context was cancelled before the run finished.
	Aborted bool
}

// Config holds the loop settings.
type Config struct {
	// DB persists messages. Nil disables persistence.
	DB          *sql.DB
	MaxSteps    int
	MaxTokens   int
	Temperature float32
	Logger      *slog.Logger
}

// Runner executes agent runs. It holds no per-run state and is safe for
// concurrent use.
type Runner struct {
	db          *sql.DB
	maxSteps    int
	maxTokens   int
	temperature float32
	logger      *slog.Logger
}

// New creates a runner.
func New(cfg Config) *Runner {
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}
	if cfg.MaxSteps <= 0 {
		cfg.MaxSteps = 10
	}
	return &Runner{
		db:          cfg.DB,
		maxSteps:    cfg.MaxSteps,
		maxTokens:   cfg.MaxTokens,
		temperature: cfg.Temperature,
		logger:      cfg.Logger.With("component", "runner"),
	}
}

// run is the state of one Run call.
type run struct {
	req       *Request
	emitter   *emitter
	messageID string
	createdAt time.Time
	result    *Result
}

// Run answers req.Message. Chunks go to sink in the order they are applied
// to the response message. A model failure is reported as an error chunk and
// returned. Cancelling ctx ends the run with an abort chunk and no error; the
// partial response is still persisted with every unsettled part closed out.
func (r *Runner) Run(ctx context.Context, req *Request, sink Sink) (*Result, error) {
	if req.Model == nil {
		return nil, ErrModelClientRequired
	}
	if req.Message.Text() == "" {
		return nil, ErrEmptyMessage
	}
	if req.Message.ID == "" {
		req.Message.ID = uuid.NewString()
	}
	req.Message.Role = aisdk.RoleUser
	if req.Message.CreatedAt.IsZero() {
		req.Message.CreatedAt = time.Now()
	}

	if err := r.save(ctx, req.ChatID, req.Message); err != nil {
		return nil, fmt.Errorf("failed to save user message: %w", err)
	}

	acc := aisdk.NewAccumulator(req.History)
	acc.Submit(req.Message)

	rn := &run{
		req:       req,
		emitter:   &emitter{sink: sink, acc: acc, logger: r.logger},
		messageID: uuid.NewString(),
		createdAt: req.Message.CreatedAt.Add(time.Millisecond),
		result:    &Result{},
	}
	logger := r.logger.With("chat_id", req.ChatID, "message_id", rn.messageID)
	logger.Info("run started", "model", modelID(req.Model))

	rn.emitter.emit(aisdk.UIChunk{Type: aisdk.ChunkStart, MessageID: rn.messageID})

	for step := 1; ; step++ {
		if ctx.Err() != nil {
			return r.abort(ctx, rn)
		}
		rn.result.Steps = step

		out, err := r.step(ctx, rn, step)
		if err != nil {
			if ctx.Err() != nil {
				return r.abort(ctx, rn)
			}
			logger.Error("run failed", "step", step, "error", err)
			rn.emitter.emit(aisdk.UIChunk{Type: aisdk.ChunkError, ErrorText: err.Error()})
			r.persist(ctx, rn)
			return rn.result, err
		}
		r.persist(ctx, rn)

		rn.result.FinishReason = out.finishReason
		if out.usage != nil {
			rn.result.Usage.PromptTokens += out.usage.PromptTokens
			rn.result.Usage.CompletionTokens += out.usage.CompletionTokens
			rn.result.Usage.TotalTokens += out.usage.TotalTokens
		}
		if out.toolCalls == 0 {
			break
		}
		if step >= r.maxSteps {
			logger.Warn("step limit reached", "max_steps", r.maxSteps)
			rn.result.FinishReason = FinishMaxSteps
			break
		}
	}

	if rn.result.FinishReason == "" {
		rn.result.FinishReason = aisdk.FinishReasonStop
	}
	rn.emitter.emit(aisdk.UIChunk{Type: aisdk.ChunkFinish, FinishReason: rn.result.FinishReason})
	r.persist(ctx, rn)

	logger.Info("run finished",
		"steps", rn.result.Steps,
		"finish_reason", rn.result.FinishReason,
		"total_tokens", rn.result.Usage.TotalTokens)
	return rn.result, nil
}

func (r *Runner) abort(ctx context.Context, rn *run) (*Result, error) {
	r.logger.Info("run aborted", "chat_id", rn.req.ChatID, "message_id", rn.messageID, "steps", rn.result.Steps)
	rn.emitter.emit(aisdk.UIChunk{Type: aisdk.ChunkAbort})
	rn.result.Aborted = true
	r.persist(ctx, rn)
	return rn.result, nil
}

// persist saves the response as it stands. Failures are logged, the run
// goes on.
func (r *Runner) persist(ctx context.Context, rn *run) {
	msg := rn.emitter.acc.Response()
	if msg == nil {
		return
	}
	msg.CreatedAt = rn.createdAt
	rn.result.Message = msg
	if err := r.save(ctx, rn.req.ChatID, *msg); err != nil {
		r.logger.Error("failed to save assistant message", "chat_id", rn.req.ChatID, "error", err)
	}
}

func (r *Runner) save(ctx context.Context, chatID string, msg aisdk.UIMessage) error {
	if r.db == nil || chatID == "" {
		return nil
	}
	// Saving must outlive a cancelled request.
	ctx = context.WithoutCancel(ctx)
	err := storage.SaveChatMessage(ctx, r.db, &storage.ChatMessage{
		ID:        msg.ID,
		ChatID:    chatID,
		Role:      string(msg.Role),
		Parts:     storage.JSONParts(msg.Parts),
		CreatedAt: msg.CreatedAt,
	})
	if err != nil {
		return err
	}
	return storage.TouchChat(ctx, r.db, chatID)
}
