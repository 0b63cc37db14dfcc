package runner

import "errors"

var (
	// Request validation errors
	ErrModelClientRequired = errors.New("model client is required")
	ErrEmptyMessage        = errors.New("message has no text")

	// Chat errors
	ErrChatNotFound = errors.New("chat not found")
)
