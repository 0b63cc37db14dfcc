package config

import (
	"time"
)

// DefaultConfig returns a default configuration with sensible defaults
func DefaultConfig() *Config {
	paths := GetDefaultStoragePaths()

	return &Config{
		Version: "1.0",
		Server: ServerConfig{
			Addr:               ":5005",
			RateLimitPerMinute: 120,
			ShutdownTimeout:    10 * time.Second,
		},
		Database: DatabaseConfig{
			Path: paths.DatabasePath,
		},
		Auth: AuthConfig{
			TokenTTL: 7 * 24 * time.Hour,
		},
		Agent: AgentConfig{
			Models: map[string]string{
				"anthropic": "claude-sonnet-4-5",
				"openai":    "gpt-4.1",
			},
			MaxTokens:    4096,
			MaxSteps:     20,
			MaxRows:      500,
			QueryTimeout: 30 * time.Second,
			MaxRetries:   3,
			RetryDelay:   1000,
		},
		Providers: ProvidersConfig{
			AnthropicBaseURL: "https://api.anthropic.com/v1",
			OpenAIBaseURL:    "https://api.openai.com/v1",
			Timeout:          120 * time.Second,
		},
		Project: ProjectConfig{
			Name:       "default",
			ContextDir: paths.ContextPath,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "text",
		},
	}
}

// ModelFor returns the model configured for provider.
func (c *AgentConfig) ModelFor(provider string) string {
	if m, ok := c.Models[provider]; ok && m != "" {
		return m
	}
	return DefaultConfig().Agent.Models[provider]
}

// BaseURLFor returns the endpoint configured for provider.
func (c *ProvidersConfig) BaseURLFor(provider string) string {
	switch provider {
	case "anthropic":
		return c.AnthropicBaseURL
	case "openai":
		return c.OpenAIBaseURL
	}
	return ""
}
