package runner

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/elee1766/naochat/src/aisdk"
	"github.com/elee1766/naochat/src/config"
	"github.com/elee1766/naochat/src/llmclient"
	"github.com/elee1766/naochat/src/naoagent"
	"github.com/elee1766/naochat/src/naoagent/toolsutil"
	"github.com/elee1766/naochat/src/projectconfig"
	"github.com/elee1766/naochat/src/storage"
	"github.com/elee1766/naochat/src/warehouse"
	"github.com/spf13/afero"
)

// ModelFactory returns the model client to use with the given credentials.
type ModelFactory func(ctx context.Context, creds *projectconfig.Credentials) (aisdk.ModelClient, error)

// LLMModels builds model clients through llmclient, picking the model and
// endpoint configured for the credential's provider.
func LLMModels(agentCfg config.AgentConfig, providers config.ProvidersConfig, logger *slog.Logger) ModelFactory {
	return func(ctx context.Context, creds *projectconfig.Credentials) (aisdk.ModelClient, error) {
		provider := string(creds.Provider)
		client, err := llmclient.NewClient(llmclient.Config{
			Provider:   provider,
			APIKey:     creds.APIKey,
			BaseURL:    providers.BaseURLFor(provider),
			Timeout:    providers.Timeout,
			RetryCount: agentCfg.MaxRetries,
			RetryDelay: time.Duration(agentCfg.RetryDelay) * time.Second,
			Logger:     logger,
		})
		if err != nil {
			return nil, err
		}
		return client.Model(ctx, agentCfg.ModelFor(provider))
	}
}

// ServiceConfig holds configuration for creating a new Service
type ServiceConfig struct {
	Database   *sql.DB
	Configs    *projectconfig.Service
	Agent      config.AgentConfig
	Warehouses *warehouse.Set
	// ContextFs is the project context folder the file tools read.
	ContextFs afero.Fs
	// Models defaults to LLMModels with Providers.
	Models    ModelFactory
	Providers config.ProvidersConfig
	// ToolTimeout bounds every tool call. Zero disables it.
	ToolTimeout time.Duration
	Logger      *slog.Logger
}

// Service answers chat messages for a project: it owns chat creation,
// history loading, credential resolution and toolbox assembly around the
// Runner.
type Service struct {
	db          *sql.DB
	configs     *projectconfig.Service
	runner      *Runner
	agent       config.AgentConfig
	warehouses  *warehouse.Set
	contextFs   afero.Fs
	models      ModelFactory
	toolTimeout time.Duration
	logger      *slog.Logger
}

// NewService creates a chat service
func NewService(cfg ServiceConfig) *Service {
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}
	if cfg.Warehouses == nil {
		cfg.Warehouses = warehouse.NewSet()
	}
	if cfg.ContextFs == nil {
		cfg.ContextFs = afero.NewReadOnlyFs(afero.NewMemMapFs())
	}
	if cfg.Models == nil {
		cfg.Models = LLMModels(cfg.Agent, cfg.Providers, cfg.Logger)
	}
	return &Service{
		db:      cfg.Database,
		configs: cfg.Configs,
		runner: New(Config{
			DB:          cfg.Database,
			MaxSteps:    cfg.Agent.MaxSteps,
			MaxTokens:   cfg.Agent.MaxTokens,
			Temperature: cfg.Agent.Temperature,
			Logger:      cfg.Logger,
		}),
		agent:       cfg.Agent,
		warehouses:  cfg.Warehouses,
		contextFs:   cfg.ContextFs,
		models:      cfg.Models,
		toolTimeout: cfg.ToolTimeout,
		logger:      cfg.Logger.With("component", "chat"),
	}
}

// maxTitleLength bounds generated chat titles, in runes.
const maxTitleLength = 60

// TitleFromMessage derives a chat title from the first user message: the
// first line, cut at a word boundary when it is too long.
func TitleFromMessage(text string) string {
	text = strings.TrimSpace(text)
	if i := strings.IndexByte(text, '\n'); i >= 0 {
		text = strings.TrimSpace(text[:i])
	}
	if text == "" {
		return "New chat"
	}
	if utf8.RuneCountInString(text) <= maxTitleLength {
		return text
	}
	runes := []rune(text)[:maxTitleLength]
	cut := string(runes)
	if i := strings.LastIndexByte(cut, ' '); i > maxTitleLength/2 {
		cut = cut[:i]
	}
	return strings.TrimRight(cut, " .,;:") + "…"
}

// OpenChat returns the chat a message goes to. An empty chatID creates a new
// chat titled after text. A chat owned by someone else is reported as not
// found.
func (s *Service) OpenChat(ctx context.Context, projectID, userID, chatID, text string) (*storage.Chat, error) {
	if chatID != "" {
		chat, err := storage.GetChatByID(ctx, s.db, chatID)
		if err != nil {
			return nil, fmt.Errorf("failed to load chat: %w", err)
		}
		if chat == nil || chat.UserID != userID || chat.ProjectID != projectID {
			return nil, fmt.Errorf("%w: %s", ErrChatNotFound, chatID)
		}
		return chat, nil
	}

	chat := &storage.Chat{ProjectID: projectID, UserID: userID, Title: TitleFromMessage(text)}
	if err := storage.CreateChat(ctx, s.db, chat); err != nil {
		return nil, fmt.Errorf("failed to create chat: %w", err)
	}
	s.logger.Info("chat created", "chat_id", chat.ID, "user_id", userID)
	return chat, nil
}

// History loads the messages of a chat in order.
func (s *Service) History(ctx context.Context, chatID string) ([]aisdk.UIMessage, error) {
	rows, err := storage.GetChatMessages(ctx, s.db, chatID)
	if err != nil {
		return nil, fmt.Errorf("failed to load messages: %w", err)
	}
	out := make([]aisdk.UIMessage, 0, len(rows))
	for _, row := range rows {
		out = append(out, row.UIMessage())
	}
	return out, nil
}

// Send answers message in chat, streaming chunks to sink.
func (s *Service) Send(ctx context.Context, chat *storage.Chat, message aisdk.UIMessage, sink Sink) (*Result, error) {
	history, err := s.History(ctx, chat.ID)
	if err != nil {
		return nil, err
	}

	creds, err := s.configs.ResolveCredentials(ctx, chat.ProjectID)
	if err != nil {
		return nil, err
	}
	model, err := s.models(ctx, creds)
	if err != nil {
		return nil, fmt.Errorf("failed to create model client: %w", err)
	}

	toolbox, err := naoagent.NewToolbox(naoagent.ToolsConfig{
		ContextFs:    s.contextFs,
		Warehouses:   s.warehouses,
		Results:      toolsutil.NewQueryResults(history),
		MaxRows:      s.agent.MaxRows,
		QueryTimeout: s.agent.QueryTimeout,
		ToolTimeout:  s.toolTimeout,
		Logger:       s.logger,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to build toolbox: %w", err)
	}

	projectName := ""
	if project, err := storage.GetProjectByID(ctx, s.db, chat.ProjectID); err == nil && project != nil {
		projectName = project.Name
	}
	prompt := naoagent.GenerateSystemPrompt(naoagent.PromptData{
		ProjectName: projectName,
		Warehouses:  naoagent.WarehouseInfos(s.warehouses),
		ContextFs:   s.contextFs,
		Now:         time.Now(),
	}, toolbox)

	return s.runner.Run(ctx, &Request{
		ChatID:       chat.ID,
		History:      history,
		Message:      message,
		Model:        model,
		Toolbox:      toolbox,
		SystemPrompt: prompt,
	}, sink)
}
