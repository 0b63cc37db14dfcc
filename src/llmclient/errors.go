package llmclient

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"
)

var (
	// ErrNoAPIKey indicates the API key is missing
	ErrNoAPIKey = errors.New("API key is required")

	// ErrUnknownProvider indicates no endpoint is known for the provider
	ErrUnknownProvider = errors.New("unknown provider")

	// ErrEmptyResponse indicates the API returned no choices
	ErrEmptyResponse = errors.New("empty response from API")

	// ErrStreamClosed indicates a read on a closed stream
	ErrStreamClosed = errors.New("stream closed")

	// ErrTimeout indicates a timeout occurred
	ErrTimeout = errors.New("operation timed out")

	// ErrRateLimited indicates rate limiting
	ErrRateLimited = errors.New("rate limited")
)

// ErrorResponse is the error body of OpenAI-compatible endpoints:
// {"error":{"message":"...","type":"...","code":"..."}}
type ErrorResponse struct {
	Error struct {
		Message string                 `json:"message"`
		Type    string                 `json:"type"`
		Code    any                    `json:"code,omitempty"`
		Param   string                 `json:"param,omitempty"`
		Details map[string]interface{} `json:"details,omitempty"`
	} `json:"error"`
}

// apiError converts the body into an *APIError with the given status.
func (r ErrorResponse) apiError(status int) *APIError {
	e := &APIError{
		StatusCode: status,
		Type:       r.Error.Type,
		Message:    r.Error.Message,
		Param:      r.Error.Param,
		Details:    r.Error.Details,
	}
	if r.Error.Code != nil {
		e.Code = fmt.Sprint(r.Error.Code)
	}
	return e
}

// APIError represents an error response from a provider.
type APIError struct {
	StatusCode int
	Type       string
	Message    string
	Code       string
	Param      string
	Details    map[string]interface{}
	RequestID  string
}

// Error implements the error interface.
func (e *APIError) Error() string {
	if e.Code != "" {
		return fmt.Sprintf("API error %d (%s): %s", e.StatusCode, e.Code, e.Message)
	}
	return fmt.Sprintf("API error %d: %s", e.StatusCode, e.Message)
}

// IsRetryable returns true if the error is retryable.
func (e *APIError) IsRetryable() bool {
	if e.StatusCode >= 500 && e.StatusCode < 600 {
		return true
	}
	if e.IsRateLimit() {
		return true
	}
	// Anthropic reports overload as its own error type
	switch e.Code {
	case "timeout", "connection_error", "server_error":
		return true
	}
	return e.Type == "overloaded_error"
}

// IsRateLimit returns true if this is a rate limit error.
func (e *APIError) IsRateLimit() bool {
	return e.StatusCode == http.StatusTooManyRequests || e.Code == "rate_limit_exceeded" || e.Type == "rate_limit_error"
}

// IsAuthError returns true if this is an authentication error.
func (e *APIError) IsAuthError() bool {
	return e.StatusCode == http.StatusUnauthorized || e.Code == "invalid_api_key" || e.Type == "authentication_error"
}

// RetryableError wraps an error with retry information.
type RetryableError struct {
	Err         error
	RetryAfter  time.Duration
	AttemptNum  int
	MaxAttempts int
}

// Error implements the error interface.
func (e *RetryableError) Error() string {
	return fmt.Sprintf("attempt %d/%d failed: %v (retry after %v)",
		e.AttemptNum, e.MaxAttempts, e.Err, e.RetryAfter)
}

// Unwrap returns the underlying error.
func (e *RetryableError) Unwrap() error {
	return e.Err
}

// ShouldRetry returns true if the operation should be retried.
func (e *RetryableError) ShouldRetry() bool {
	return e.AttemptNum < e.MaxAttempts
}

// IsRetryable checks if an error is retryable.
func IsRetryable(err error) bool {
	if err == nil {
		return false
	}

	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.IsRetryable()
	}

	var retryErr *RetryableError
	if errors.As(err, &retryErr) {
		return retryErr.ShouldRetry()
	}

	return errors.Is(err, ErrTimeout) || errors.Is(err, ErrRateLimited)
}

// GetRetryDelay returns the delay before the given attempt with a one
// second base.
func GetRetryDelay(err error, attempt int) time.Duration {
	return retryDelay(time.Second, err, attempt)
}

// retryDelay honors a Retry-After on rate limits and otherwise doubles base
// per attempt, capped at a minute.
func retryDelay(base time.Duration, err error, attempt int) time.Duration {
	var apiErr *APIError
	if errors.As(err, &apiErr) && apiErr.IsRateLimit() {
		if retryAfter, ok := apiErr.Details["retry_after"].(float64); ok {
			return time.Duration(retryAfter * float64(time.Second))
		}
	}

	if attempt < 1 {
		attempt = 1
	}
	delay := base * time.Duration(1<<uint(min(attempt-1, 16)))
	maxDelay := time.Minute
	if delay > maxDelay {
		delay = maxDelay
	}
	return delay
}

// parseRetryAfter reads a Retry-After header given in seconds.
func parseRetryAfter(v string) (float64, bool) {
	if v == "" {
		return 0, false
	}
	secs, err := strconv.ParseFloat(v, 64)
	if err != nil || secs < 0 {
		return 0, false
	}
	return secs, true
}
