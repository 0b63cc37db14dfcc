package llmclient

import (
	"errors"
	"fmt"
	"net/http"
	"testing"
	"time"
)

func TestAPIError(t *testing.T) {
	tests := []struct {
		name        string
		err         *APIError
		expectedMsg string
		isRetryable bool
		isRateLimit bool
		isAuthError bool
	}{
		{
			name:        "basic error",
			err:         &APIError{StatusCode: 400, Message: "Bad request"},
			expectedMsg: "API error 400: Bad request",
		},
		{
			name:        "error with code",
			err:         &APIError{StatusCode: 403, Message: "Forbidden", Code: "insufficient_permissions"},
			expectedMsg: "API error 403 (insufficient_permissions): Forbidden",
		},
		{
			name:        "server error",
			err:         &APIError{StatusCode: 500, Message: "Internal server error"},
			expectedMsg: "API error 500: Internal server error",
			isRetryable: true,
		},
		{
			name:        "rate limit error",
			err:         &APIError{StatusCode: 429, Message: "Too many requests", Code: "rate_limit_exceeded"},
			expectedMsg: "API error 429 (rate_limit_exceeded): Too many requests",
			isRetryable: true,
			isRateLimit: true,
		},
		{
			name:        "anthropic overloaded",
			err:         &APIError{StatusCode: 529, Type: "overloaded_error", Message: "Overloaded"},
			expectedMsg: "API error 529: Overloaded",
			isRetryable: true,
		},
		{
			name:        "auth error",
			err:         &APIError{StatusCode: 401, Message: "Invalid API key", Code: "invalid_api_key"},
			expectedMsg: "API error 401 (invalid_api_key): Invalid API key",
			isAuthError: true,
		},
		{
			name:        "anthropic auth error type",
			err:         &APIError{StatusCode: 403, Type: "authentication_error", Message: "invalid x-api-key"},
			expectedMsg: "API error 403: invalid x-api-key",
			isAuthError: true,
		},
		{
			name:        "timeout error",
			err:         &APIError{StatusCode: 504, Message: "Gateway timeout", Code: "timeout"},
			expectedMsg: "API error 504 (timeout): Gateway timeout",
			isRetryable: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.err.Error() != tt.expectedMsg {
				t.Errorf("Error() = %v, want %v", tt.err.Error(), tt.expectedMsg)
			}
			if tt.err.IsRetryable() != tt.isRetryable {
				t.Errorf("IsRetryable() = %v, want %v", tt.err.IsRetryable(), tt.isRetryable)
			}
			if tt.err.IsRateLimit() != tt.isRateLimit {
				t.Errorf("IsRateLimit() = %v, want %v", tt.err.IsRateLimit(), tt.isRateLimit)
			}
			if tt.err.IsAuthError() != tt.isAuthError {
				t.Errorf("IsAuthError() = %v, want %v", tt.err.IsAuthError(), tt.isAuthError)
			}
		})
	}
}

func TestRetryableError(t *testing.T) {
	base := errors.New("connection refused")
	err := &RetryableError{Err: base, RetryAfter: 2 * time.Second, AttemptNum: 1, MaxAttempts: 3}

	want := "attempt 1/3 failed: connection refused (retry after 2s)"
	if err.Error() != want {
		t.Errorf("Error() = %v, want %v", err.Error(), want)
	}
	if !errors.Is(err, base) {
		t.Error("errors.Is should find the wrapped error")
	}
	if !err.ShouldRetry() {
		t.Error("ShouldRetry() = false, want true")
	}
	err.AttemptNum = 3
	if err.ShouldRetry() {
		t.Error("ShouldRetry() = true on the last attempt")
	}
}

func TestIsRetryable(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{"nil error", nil, false},
		{"retryable API error", &APIError{StatusCode: 500}, true},
		{"non-retryable API error", &APIError{StatusCode: 400}, false},
		{"wrapped API error", fmt.Errorf("request failed: %w", &APIError{StatusCode: 502}), true},
		{"retryable error", &RetryableError{Err: errors.New("test"), AttemptNum: 1, MaxAttempts: 3}, true},
		{"timeout error", ErrTimeout, true},
		{"rate limited error", ErrRateLimited, true},
		{"wrapped timeout error", fmt.Errorf("operation failed: %w", ErrTimeout), true},
		{"regular error", errors.New("some error"), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := IsRetryable(tt.err); got != tt.want {
				t.Errorf("IsRetryable() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestGetRetryDelay(t *testing.T) {
	tests := []struct {
		name    string
		err     error
		attempt int
		want    time.Duration
	}{
		{"first attempt", errors.New("error"), 1, 1 * time.Second},
		{"second attempt", errors.New("error"), 2, 2 * time.Second},
		{"third attempt", errors.New("error"), 3, 4 * time.Second},
		{
			name: "rate limit with retry-after",
			err: &APIError{
				StatusCode: http.StatusTooManyRequests,
				Details:    map[string]interface{}{"retry_after": float64(5)},
			},
			attempt: 1,
			want:    5 * time.Second,
		},
		{"very high attempt", errors.New("error"), 10, time.Minute},
		{"zero attempt", errors.New("error"), 0, time.Second},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if delay := GetRetryDelay(tt.err, tt.attempt); delay != tt.want {
				t.Errorf("GetRetryDelay() = %v, want %v", delay, tt.want)
			}
		})
	}
}

func TestParseRetryAfter(t *testing.T) {
	if v, ok := parseRetryAfter("1.5"); !ok || v != 1.5 {
		t.Errorf("parseRetryAfter(1.5) = %v, %v", v, ok)
	}
	for _, in := range []string{"", "-1", "Wed, 21 Oct 2015 07:28:00 GMT"} {
		if _, ok := parseRetryAfter(in); ok {
			t.Errorf("parseRetryAfter(%q) should fail", in)
		}
	}
}
