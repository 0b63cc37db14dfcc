// Package llmclient talks to OpenAI-compatible chat completion endpoints. It
// serves both OpenAI and Anthropic's compatibility endpoint, streaming
// responses over server-sent events.
package llmclient

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/elee1766/naochat/src/aisdk"
	"github.com/patrickmn/go-cache"
)

const defaultTimeout = 60 * time.Second

var _ aisdk.Provider = (*Client)(nil)

// Client is an OpenAI-compatible API client.
type Client struct {
	config     Config
	httpClient *http.Client
	logger     *slog.Logger
	models     *cache.Cache
}

// NewClient creates a client for config.Provider, or for config.BaseURL when
// set.
func NewClient(config Config) (*Client, error) {
	if config.APIKey == "" {
		return nil, ErrNoAPIKey
	}
	if config.BaseURL == "" {
		config.BaseURL = DefaultBaseURL(config.Provider)
		if config.BaseURL == "" {
			return nil, fmt.Errorf("%w: %q", ErrUnknownProvider, config.Provider)
		}
	}
	config.BaseURL = strings.TrimRight(config.BaseURL, "/")
	if config.RetryCount == 0 {
		config.RetryCount = 3
	}
	if config.RetryDelay == 0 {
		config.RetryDelay = time.Second
	}
	if config.Timeout == 0 {
		config.Timeout = defaultTimeout
	}

	httpClient := config.HTTPClient
	if httpClient == nil {
		transport := http.DefaultTransport.(*http.Transport).Clone()
		transport.ResponseHeaderTimeout = config.Timeout
		httpClient = &http.Client{Transport: transport}
	}

	logger := config.Logger
	if logger == nil {
		logger = slog.Default()
	}

	return &Client{
		config:     config,
		httpClient: httpClient,
		logger:     logger.With("component", "llm_client", "provider", config.Provider),
		models:     cache.New(time.Hour, 10*time.Minute),
	}, nil
}

// createChatCompletion sends a non-streaming chat completion request.
func (c *Client) createChatCompletion(ctx context.Context, req *aisdk.ChatCompletionRequest) (*aisdk.ChatCompletionResponse, error) {
	logger := c.logger.With("method", "CreateChatCompletion", "model", req.Model)
	logger.Debug("sending chat completion request")

	ctx, cancel := context.WithTimeout(ctx, c.config.Timeout)
	defer cancel()

	body, err := c.marshalRequest(ctx, req, false)
	if err != nil {
		return nil, err
	}

	resp, err := c.doRequestWithRetry(ctx, http.MethodPost, "/chat/completions", body)
	if err != nil {
		logger.Error("request failed", "error", err)
		return nil, err
	}
	defer resp.Body.Close()

	var result aisdk.ChatCompletionResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		logger.Error("failed to decode response", "error", err)
		return nil, fmt.Errorf("failed to decode response: %w", err)
	}
	if len(result.Choices) == 0 {
		return nil, ErrEmptyResponse
	}

	logger.Info("chat completion successful", "usage_total", result.Usage.TotalTokens)
	return &result, nil
}

// createChatCompletionStream opens a streaming chat completion. Retries only
// cover the request itself; once events flow, errors surface from Read.
func (c *Client) createChatCompletionStream(ctx context.Context, req *aisdk.ChatCompletionRequest) (aisdk.StreamInterface, error) {
	logger := c.logger.With("method", "CreateChatCompletionStream", "model", req.Model)
	logger.Debug("opening chat completion stream", "messages", len(req.Messages), "tools", len(req.Tools))

	body, err := c.marshalRequest(ctx, req, true)
	if err != nil {
		return nil, err
	}

	resp, err := c.doRequestWithRetry(ctx, http.MethodPost, "/chat/completions", body)
	if err != nil {
		logger.Error("stream request failed", "error", err)
		return nil, err
	}
	return newSSEStream(resp.Body), nil
}

func (c *Client) marshalRequest(ctx context.Context, req *aisdk.ChatCompletionRequest, stream bool) ([]byte, error) {
	formatted := formatRequest(req, stream)

	if c.logger.Enabled(ctx, slog.LevelDebug) {
		if debugBody, err := json.MarshalIndent(formatted, "", "  "); err == nil {
			c.logger.Debug("formatted request", "body", string(debugBody))
		}
	}

	body, err := json.Marshal(formatted)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}
	return body, nil
}

// newRequest creates a new HTTP request with the appropriate headers.
func (c *Client) newRequest(ctx context.Context, method, path string, body []byte) (*http.Request, error) {
	var reader io.Reader
	if body != nil {
		reader = bytes.NewReader(body)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.config.BaseURL+path, reader)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("Authorization", "Bearer "+c.config.APIKey)
	req.Header.Set("Content-Type", "application/json")
	if c.config.Provider == ProviderAnthropic {
		req.Header.Set("x-api-key", c.config.APIKey)
		req.Header.Set("anthropic-version", "2023-06-01")
	}
	return req, nil
}

// doRequestWithRetry performs an HTTP request with retry logic. Non-2xx
// responses come back as *APIError; retryable ones are retried first.
func (c *Client) doRequestWithRetry(ctx context.Context, method, path string, body []byte) (*http.Response, error) {
	logger := c.logger.With("method", "doRequestWithRetry", "path", path)

	var lastErr error
	for attempt := 1; attempt <= c.config.RetryCount; attempt++ {
		req, err := c.newRequest(ctx, method, path, body)
		if err != nil {
			return nil, err
		}

		resp, err := c.httpClient.Do(req)
		switch {
		case err != nil:
			if ctx.Err() != nil {
				return nil, ctx.Err()
			}
			lastErr = err
			logger.Debug("request attempt failed", "attempt", attempt, "error", err)
		case resp.StatusCode < 300:
			return resp, nil
		default:
			apiErr := c.handleError(resp)
			resp.Body.Close()
			if !IsRetryable(apiErr) {
				return nil, apiErr
			}
			lastErr = apiErr
			logger.Debug("retryable error", "attempt", attempt, "status_code", resp.StatusCode)
		}

		if attempt == c.config.RetryCount {
			break
		}
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(retryDelay(c.config.RetryDelay, lastErr, attempt)):
		}
	}

	logger.Error("request failed after all retries", "retry_count", c.config.RetryCount, "error", lastErr)
	return nil, fmt.Errorf("request failed after %d attempts: %w", c.config.RetryCount, lastErr)
}

// handleError turns an error response into an *APIError.
func (c *Client) handleError(resp *http.Response) error {
	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return fmt.Errorf("failed to read error response: %w", err)
	}

	apiErr := &APIError{StatusCode: resp.StatusCode, Message: strings.TrimSpace(string(body))}
	var errResp ErrorResponse
	if json.Unmarshal(body, &errResp) == nil && errResp.Error.Message != "" {
		apiErr = errResp.apiError(resp.StatusCode)
	}
	apiErr.RequestID = firstHeader(resp.Header, "X-Request-ID", "Request-Id")

	if secs, ok := parseRetryAfter(resp.Header.Get("Retry-After")); ok {
		if apiErr.Details == nil {
			apiErr.Details = make(map[string]interface{})
		}
		apiErr.Details["retry_after"] = secs
	}

	return apiErr
}

func firstHeader(h http.Header, keys ...string) string {
	for _, k := range keys {
		if v := h.Get(k); v != "" {
			return v
		}
	}
	return ""
}

type wireMessage struct {
	Role       string           `json:"role"`
	Content    string           `json:"content"`
	Name       string           `json:"name,omitempty"`
	ToolCallID string           `json:"tool_call_id,omitempty"`
	ToolCalls  []aisdk.ToolCall `json:"tool_calls,omitempty"`
}

type wireRequest struct {
	Model         string               `json:"model"`
	Messages      []wireMessage        `json:"messages"`
	Temperature   *float64             `json:"temperature,omitempty"`
	MaxTokens     *int                 `json:"max_tokens,omitempty"`
	TopP          *float64             `json:"top_p,omitempty"`
	Stream        bool                 `json:"stream,omitempty"`
	StreamOptions *aisdk.StreamOptions `json:"stream_options,omitempty"`
	Stop          []string             `json:"stop,omitempty"`
	Tools         []*aisdk.ChatTool    `json:"tools,omitempty"`
	ToolChoice    string               `json:"tool_choice,omitempty"`
	User          string               `json:"user,omitempty"`
}

// formatRequest drops fields the endpoints reject and fills in the ones they
// require on tool calls.
func formatRequest(req *aisdk.ChatCompletionRequest, stream bool) wireRequest {
	messages := make([]wireMessage, 0, len(req.Messages))
	for _, msg := range req.Messages {
		if msg == nil {
			continue
		}
		wm := wireMessage{
			Role:       msg.Role,
			Content:    msg.Content,
			Name:       msg.Name,
			ToolCallID: msg.ToolCallID,
		}
		for _, tc := range msg.ToolCalls {
			tc.Index = nil
			if tc.Type == "" {
				tc.Type = "function"
			}
			if len(tc.Function.Arguments) == 0 {
				tc.Function.Arguments = json.RawMessage("{}")
			}
			wm.ToolCalls = append(wm.ToolCalls, tc)
		}
		messages = append(messages, wm)
	}

	out := wireRequest{
		Model:       req.Model,
		Messages:    messages,
		Temperature: req.Temperature,
		MaxTokens:   req.MaxTokens,
		TopP:        req.TopP,
		Stream:      stream,
		Stop:        req.Stop,
		Tools:       req.Tools,
		ToolChoice:  req.ToolChoice,
		User:        req.User,
	}
	if stream {
		out.StreamOptions = &aisdk.StreamOptions{IncludeUsage: true}
	}
	return out
}
