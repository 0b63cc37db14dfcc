package llmclient

import (
	"log/slog"
	"net/http"
	"time"
)

// Providers with an OpenAI-compatible chat completions endpoint.
const (
	ProviderAnthropic = "anthropic"
	ProviderOpenAI    = "openai"
)

var defaultBaseURLs = map[string]string{
	ProviderAnthropic: "https://api.anthropic.com/v1",
	ProviderOpenAI:    "https://api.openai.com/v1",
}

// DefaultBaseURL returns the public endpoint of provider, or "" if unknown.
func DefaultBaseURL(provider string) string {
	return defaultBaseURLs[provider]
}

// Config holds configuration for the client
type Config struct {
	Provider   string        // anthropic or openai, selects the default BaseURL
	APIKey     string        // Bearer token sent with every request
	BaseURL    string        // Overrides the provider endpoint
	Logger     *slog.Logger  // Logger for debugging
	Timeout    time.Duration // Bounds non-streaming calls and the wait for response headers
	RetryCount int           // Attempts for failed requests
	RetryDelay time.Duration // Base delay between attempts, doubled each time
	HTTPClient *http.Client  // Optional, for tests
}
