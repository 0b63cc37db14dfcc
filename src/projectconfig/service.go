// Package projectconfig answers questions about a project's model provider
// keys and Slack credentials. Keys stored on the project take part alongside
// process-level environment fallbacks, and full secrets only leave the package
// through ResolveCredentials.
package projectconfig

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/elee1766/naochat/src/storage"
)

// Environment variables consulted as fallbacks.
const (
	EnvAnthropicAPIKey    = "ANTHROPIC_API_KEY"
	EnvOpenAIAPIKey       = "OPENAI_API_KEY"
	EnvSlackBotToken      = "SLACK_BOT_TOKEN"
	EnvSlackSigningSecret = "SLACK_SIGNING_SECRET"
	EnvRedirectURL        = "REDIRECT_URL"
)

var providerEnv = map[storage.LLMProvider]string{
	storage.ProviderAnthropic: EnvAnthropicAPIKey,
	storage.ProviderOpenAI:    EnvOpenAIAPIKey,
}

var (
	ErrInvalidProvider = errors.New("invalid provider")
	ErrEmptySecret     = errors.New("secret must not be empty")
	ErrNoProvider      = errors.New("no model provider is configured")
)

// Service is the config query layer. Every call reads the database, nothing is
// cached.
type Service struct {
	db        storage.ExecQuerier
	lookupEnv func(string) (string, bool)
	logger    *slog.Logger
}

// Option configures a Service.
type Option func(*Service)

// WithLookupEnv replaces os.LookupEnv.
func WithLookupEnv(fn func(string) (string, bool)) Option {
	return func(s *Service) { s.lookupEnv = fn }
}

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) { s.logger = logger }
}

func New(db storage.ExecQuerier, opts ...Option) *Service {
	s := &Service{
		db:        db,
		lookupEnv: os.LookupEnv,
		logger:    slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.logger = s.logger.With("component", "projectconfig")
	return s
}

func (s *Service) env(key string) string {
	v, ok := s.lookupEnv(key)
	if !ok {
		return ""
	}
	return v
}

// Preview redacts a secret to its first head and last tail characters joined
// by "...". Secrets too short to redact safely are fully masked.
func Preview(secret string, head, tail int) string {
	r := []rune(secret)
	if len(r) <= head+tail {
		return "..."
	}
	return string(r[:head]) + "..." + string(r[len(r)-tail:])
}

// LLMConfigView is a provider key as shown to clients.
type LLMConfigView struct {
	ID            string              `json:"id"`
	Provider      storage.LLMProvider `json:"provider"`
	APIKeyPreview string              `json:"apiKeyPreview"`
	CreatedAt     time.Time           `json:"createdAt"`
	UpdatedAt     time.Time           `json:"updatedAt"`
}

func newLLMConfigView(c storage.LLMConfig) LLMConfigView {
	return LLMConfigView{
		ID:            c.ID,
		Provider:      c.Provider,
		APIKeyPreview: Preview(c.APIKey, 8, 4),
		CreatedAt:     c.CreatedAt,
		UpdatedAt:     c.UpdatedAt,
	}
}

// LLMConfigs is the provider key listing of a project.
type LLMConfigs struct {
	ProjectConfigs []LLMConfigView       `json:"projectConfigs"`
	EnvProviders   []storage.LLMProvider `json:"envProviders"`
}

// Get returns the project's stored keys, redacted, along with the providers
// that have environment fallbacks.
func (s *Service) Get(ctx context.Context, projectID string) (*LLMConfigs, error) {
	configs, err := storage.GetLLMConfigs(ctx, s.db, projectID)
	if err != nil {
		return nil, fmt.Errorf("failed to load llm configs: %w", err)
	}
	out := &LLMConfigs{
		ProjectConfigs: make([]LLMConfigView, 0, len(configs)),
		EnvProviders:   s.EnvProviders(),
	}
	for _, c := range configs {
		out.ProjectConfigs = append(out.ProjectConfigs, newLLMConfigView(c))
	}
	return out, nil
}

// GetByProvider returns the redacted key of one provider, or nil when the
// project has none.
func (s *Service) GetByProvider(ctx context.Context, projectID string, provider storage.LLMProvider) (*LLMConfigView, error) {
	if !provider.Valid() {
		return nil, fmt.Errorf("%w: %q", ErrInvalidProvider, provider)
	}
	c, err := storage.GetLLMConfigByProvider(ctx, s.db, projectID, provider)
	if err != nil || c == nil {
		return nil, err
	}
	v := newLLMConfigView(*c)
	return &v, nil
}

// Upsert stores a provider key for the project.
func (s *Service) Upsert(ctx context.Context, projectID string, provider storage.LLMProvider, apiKey string) (*LLMConfigView, error) {
	if !provider.Valid() {
		return nil, fmt.Errorf("%w: %q", ErrInvalidProvider, provider)
	}
	if apiKey == "" {
		return nil, ErrEmptySecret
	}
	c, err := storage.UpsertLLMConfig(ctx, s.db, &storage.LLMConfig{ProjectID: projectID, Provider: provider, APIKey: apiKey})
	if err != nil {
		return nil, fmt.Errorf("failed to save llm config: %w", err)
	}
	s.logger.Info("llm config saved", "project_id", projectID, "provider", provider)
	v := newLLMConfigView(*c)
	return &v, nil
}

// Delete removes a provider key. Removing a key that does not exist succeeds.
func (s *Service) Delete(ctx context.Context, projectID string, provider storage.LLMProvider) error {
	if !provider.Valid() {
		return fmt.Errorf("%w: %q", ErrInvalidProvider, provider)
	}
	if err := storage.DeleteLLMConfig(ctx, s.db, projectID, provider); err != nil {
		return fmt.Errorf("failed to delete llm config: %w", err)
	}
	s.logger.Info("llm config deleted", "project_id", projectID, "provider", provider)
	return nil
}

// EnvProviders lists the providers with an environment key, anthropic first.
func (s *Service) EnvProviders() []storage.LLMProvider {
	out := []storage.LLMProvider{}
	for _, p := range storage.Providers {
		if s.env(providerEnv[p]) != "" {
			out = append(out, p)
		}
	}
	return out
}

// ResolveActiveProvider picks the provider chats should use. A provider is
// available when the project stores a key for it or its environment key is
// set. Anthropic is preferred over OpenAI. It returns "" when neither is
// available.
func (s *Service) ResolveActiveProvider(ctx context.Context, projectID string) (storage.LLMProvider, error) {
	configs, err := storage.GetLLMConfigs(ctx, s.db, projectID)
	if err != nil {
		return "", fmt.Errorf("failed to load llm configs: %w", err)
	}
	stored := make(map[storage.LLMProvider]bool, len(configs))
	for _, c := range configs {
		stored[c.Provider] = true
	}
	for _, p := range storage.Providers {
		if stored[p] || s.env(providerEnv[p]) != "" {
			return p, nil
		}
	}
	return "", nil
}

// Credentials is what the chat runner needs to reach a provider.
type Credentials struct {
	Provider storage.LLMProvider
	APIKey   string
	// FromEnv is set when the key came from the environment fallback.
	FromEnv bool
}

// ResolveCredentials returns the active provider and its full key. A key
// stored on the project wins over the environment.
func (s *Service) ResolveCredentials(ctx context.Context, projectID string) (*Credentials, error) {
	provider, err := s.ResolveActiveProvider(ctx, projectID)
	if err != nil {
		return nil, err
	}
	if provider == "" {
		return nil, ErrNoProvider
	}
	c, err := storage.GetLLMConfigByProvider(ctx, s.db, projectID, provider)
	if err != nil {
		return nil, fmt.Errorf("failed to load llm config: %w", err)
	}
	if c != nil {
		return &Credentials{Provider: provider, APIKey: c.APIKey}, nil
	}
	return &Credentials{Provider: provider, APIKey: s.env(providerEnv[provider]), FromEnv: true}, nil
}
