// Package http provides HTTP handlers for study groups.
package http

import (
	"fmt"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/allisson/studygroups/internal/group/http/dto"
	"github.com/allisson/studygroups/internal/group/usecase"
	"github.com/allisson/studygroups/internal/httputil"
	sagaDomain "github.com/allisson/studygroups/internal/saga/domain"
	sagaUsecase "github.com/allisson/studygroups/internal/saga/usecase"
)

// GroupHandler handles study group HTTP requests
type GroupHandler struct {
	groupUseCase       usecase.UseCase
	createGroupUseCase sagaUsecase.CreateGroupUseCase
	logger             *slog.Logger
}

// NewGroupHandler creates a new GroupHandler
func NewGroupHandler(
	groupUseCase usecase.UseCase,
	createGroupUseCase sagaUsecase.CreateGroupUseCase,
	logger *slog.Logger,
) *GroupHandler {
	return &GroupHandler{
		groupUseCase:       groupUseCase,
		createGroupUseCase: createGroupUseCase,
		logger:             logger,
	}
}

// CreateHandler runs the create group saga.
// POST /v1/groups - Returns 201 Created on completion. Failed sagas return the saga
// result with 404, 409, 422 or 500 depending on the error code.
func (h *GroupHandler) CreateHandler(c *gin.Context) {
	var req dto.CreateGroupRequest

	if err := c.ShouldBindJSON(&req); err != nil {
		httputil.HandleBadRequestGin(c, err, h.logger)
		return
	}

	result, err := h.createGroupUseCase.Start(c.Request.Context(), dto.ToCreateGroupRequest(req))
	if result == nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}
	if err != nil {
		h.logger.Error("create group saga failed",
			slog.String("saga_id", result.SagaID.String()),
			slog.String("status", string(result.Status)),
			slog.Any("error", err),
		)
	}

	c.JSON(resultStatusCode(result), dto.ToCreateGroupResponse(result))
}

func resultStatusCode(result *sagaDomain.Result) int {
	if result.Succeeded() {
		return http.StatusCreated
	}
	switch result.ErrorCode {
	case sagaDomain.ErrorCodeUserNotFound:
		return http.StatusNotFound
	case sagaDomain.ErrorCodeDuplicateGroupName:
		return http.StatusConflict
	case sagaDomain.ErrorCodeInvalidRequest:
		return http.StatusUnprocessableEntity
	default:
		return http.StatusInternalServerError
	}
}

// GetHandler retrieves an active group by ID.
// GET /v1/groups/:id - Returns 200 OK or 404 Not Found.
func (h *GroupHandler) GetHandler(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		httputil.HandleBadRequestGin(c, fmt.Errorf("invalid group id: %w", err), h.logger)
		return
	}

	group, err := h.groupUseCase.GetByID(c.Request.Context(), id)
	if err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}

	c.JSON(http.StatusOK, dto.ToGroupResponse(group))
}

// ListMembersHandler lists the memberships of an active group.
// GET /v1/groups/:id/members?offset=0&limit=50 - Returns 200 OK or 404 Not Found.
func (h *GroupHandler) ListMembersHandler(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		httputil.HandleBadRequestGin(c, fmt.Errorf("invalid group id: %w", err), h.logger)
		return
	}

	offset, limit, err := httputil.ParsePagination(c)
	if err != nil {
		httputil.HandleBadRequestGin(c, err, h.logger)
		return
	}

	members, err := h.groupUseCase.ListMembers(c.Request.Context(), id, offset, limit)
	if err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}

	c.JSON(http.StatusOK, dto.ToListMembersResponse(members))
}
