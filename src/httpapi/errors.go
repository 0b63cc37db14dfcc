package httpapi

import (
	"errors"
	"net/http"

	"github.com/elee1766/naochat/src/auth"
	"github.com/elee1766/naochat/src/projectconfig"
	"github.com/elee1766/naochat/src/runner"
	"github.com/gin-gonic/gin"
)

// ErrorResponse is the body of every failed request.
type ErrorResponse struct {
	Error  string `json:"error"`
	Detail string `json:"detail,omitempty"`
}

func abortError(c *gin.Context, status int, msg string, err error) {
	body := ErrorResponse{Error: msg}
	// Internal failures are logged, not echoed.
	if err != nil && status < http.StatusInternalServerError {
		body.Detail = err.Error()
	}
	if err != nil {
		_ = c.Error(err)
	}
	c.AbortWithStatusJSON(status, body)
}

// fail maps a domain error to a response.
func fail(c *gin.Context, msg string, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, runner.ErrChatNotFound):
		status = http.StatusNotFound
	case errors.Is(err, runner.ErrEmptyMessage),
		errors.Is(err, projectconfig.ErrInvalidProvider),
		errors.Is(err, projectconfig.ErrEmptySecret),
		errors.Is(err, projectconfig.ErrNoProvider),
		errors.Is(err, auth.ErrInvalidInput):
		status = http.StatusBadRequest
	case errors.Is(err, auth.ErrEmailTaken):
		status = http.StatusConflict
	case errors.Is(err, auth.ErrInvalidCredentials), errors.Is(err, auth.ErrInvalidToken):
		status = http.StatusUnauthorized
	}
	abortError(c, status, msg, err)
}

func badRequest(c *gin.Context, err error) {
	abortError(c, http.StatusBadRequest, "invalid request", err)
}
