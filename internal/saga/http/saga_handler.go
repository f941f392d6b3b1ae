// Package http provides read-only HTTP handlers over the saga execution log.
package http

import (
	"fmt"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/allisson/studygroups/internal/httputil"
	"github.com/allisson/studygroups/internal/saga/domain"
	"github.com/allisson/studygroups/internal/saga/http/dto"
	"github.com/allisson/studygroups/internal/saga/usecase"
)

// SagaHandler serves saga executions to operators
type SagaHandler struct {
	executionUseCase usecase.ExecutionUseCase
	logger           *slog.Logger
}

// NewSagaHandler creates a new SagaHandler
func NewSagaHandler(executionUseCase usecase.ExecutionUseCase, logger *slog.Logger) *SagaHandler {
	return &SagaHandler{
		executionUseCase: executionUseCase,
		logger:           logger,
	}
}

// GetHandler retrieves a saga execution by ID.
// GET /v1/sagas/:id - Returns 200 OK or 404 Not Found.
func (h *SagaHandler) GetHandler(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		httputil.HandleBadRequestGin(c, fmt.Errorf("invalid saga id: %w", err), h.logger)
		return
	}

	exec, err := h.executionUseCase.GetExecution(c.Request.Context(), id)
	if err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}

	c.JSON(http.StatusOK, dto.ToExecutionResponse(exec))
}

// ListHandler lists saga executions, newest first.
// GET /v1/sagas?status=COMPENSATION_FAILED&offset=0&limit=50 - Returns 200 OK.
func (h *SagaHandler) ListHandler(c *gin.Context) {
	offset, limit, err := httputil.ParsePagination(c)
	if err != nil {
		httputil.HandleBadRequestGin(c, err, h.logger)
		return
	}

	executions, err := h.executionUseCase.ListExecutions(
		c.Request.Context(),
		domain.Status(c.Query("status")),
		offset,
		limit,
	)
	if err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}

	c.JSON(http.StatusOK, dto.ToListExecutionsResponse(executions))
}
