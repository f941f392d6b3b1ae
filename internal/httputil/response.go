// Package httputil holds the gin helpers shared by every HTTP handler.
package httputil

import (
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	apperrors "github.com/allisson/studygroups/internal/errors"
)

// ErrorResponse is the JSON body of every non-2xx API response.
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
	Code    string `json:"code,omitempty"`
}

type errorMapping struct {
	sentinel error
	status   int
	code     string
	// exposeMessage copies err.Error() into the body. Only client errors carry domain text.
	exposeMessage bool
	fallback      string
}

var errorMappings = []errorMapping{
	{sentinel: apperrors.ErrNotFound, status: http.StatusNotFound, code: "not_found", exposeMessage: true},
	{sentinel: apperrors.ErrConflict, status: http.StatusConflict, code: "conflict", exposeMessage: true},
	{
		sentinel:      apperrors.ErrInvalidInput,
		status:        http.StatusUnprocessableEntity,
		code:          "invalid_input",
		exposeMessage: true,
	},
	{
		sentinel: apperrors.ErrUnavailable,
		status:   http.StatusServiceUnavailable,
		code:     "unavailable",
		fallback: "a dependency is temporarily unavailable, try again later",
	},
}

// HandleErrorGin writes the status and body matching the first domain sentinel err wraps.
// Anything else is a 500 whose details stay in the log.
func HandleErrorGin(c *gin.Context, err error, logger *slog.Logger) {
	if err == nil {
		return
	}

	status := http.StatusInternalServerError
	body := ErrorResponse{Error: "internal_error", Message: "an internal error occurred"}

	for _, m := range errorMappings {
		if !apperrors.Is(err, m.sentinel) {
			continue
		}
		status = m.status
		body = ErrorResponse{Error: m.code, Message: m.fallback}
		if m.exposeMessage {
			body.Message = err.Error()
		}
		break
	}

	if logger != nil {
		level := slog.LevelWarn
		if status >= http.StatusInternalServerError {
			level = slog.LevelError
		}
		logger.Log(c.Request.Context(), level, "request failed",
			slog.Int("status_code", status),
			slog.String("error_code", body.Error),
			slog.Any("error", err),
		)
	}

	c.JSON(status, body)
}

// HandleBadRequestGin answers 400 for bodies or parameters that could not be decoded.
func HandleBadRequestGin(c *gin.Context, err error, logger *slog.Logger) {
	if logger != nil {
		logger.Warn("bad request", slog.Any("error", err))
	}
	c.JSON(http.StatusBadRequest, ErrorResponse{Error: "bad_request", Message: err.Error()})
}

// HandleValidationErrorGin answers 422 for decoded requests that fail validation.
func HandleValidationErrorGin(c *gin.Context, err error, logger *slog.Logger) {
	if logger != nil {
		logger.Warn("validation failed", slog.Any("error", err))
	}
	c.JSON(http.StatusUnprocessableEntity, ErrorResponse{Error: "validation_error", Message: err.Error()})
}
