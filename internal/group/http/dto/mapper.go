package dto

import (
	"github.com/allisson/studygroups/internal/group/domain"
	sagaDomain "github.com/allisson/studygroups/internal/saga/domain"
	sagaUsecase "github.com/allisson/studygroups/internal/saga/usecase"
)

// ToCreateGroupRequest converts the API request to the saga input
func ToCreateGroupRequest(req CreateGroupRequest) sagaUsecase.CreateGroupRequest {
	return sagaUsecase.CreateGroupRequest{
		OwnerID:     req.OwnerID,
		Name:        req.Name,
		Description: req.Description,
	}
}

// ToGroupResponse converts a domain Group to a GroupResponse DTO
func ToGroupResponse(group *domain.Group) GroupResponse {
	return GroupResponse{
		ID:          group.ID,
		OwnerID:     group.OwnerID,
		Name:        group.Name,
		Description: group.Description,
		MemberCount: group.MemberCount,
		CreatedAt:   group.CreatedAt,
		UpdatedAt:   group.UpdatedAt,
	}
}

// ToListMembersResponse converts memberships to a ListMembersResponse DTO
func ToListMembersResponse(members []*domain.Member) ListMembersResponse {
	data := make([]MemberResponse, 0, len(members))
	for _, m := range members {
		data = append(data, MemberResponse{
			UserID:    m.UserID,
			Role:      string(m.Role),
			CreatedAt: m.CreatedAt,
		})
	}
	return ListMembersResponse{Data: data}
}

// ToCreateGroupResponse converts a saga result to a CreateGroupResponse DTO
func ToCreateGroupResponse(result *sagaDomain.Result) CreateGroupResponse {
	steps := result.CompletedSteps
	if steps == nil {
		steps = []string{}
	}
	return CreateGroupResponse{
		SagaID:         result.SagaID,
		Status:         string(result.Status),
		GroupID:        result.GroupID,
		ErrorCode:      string(result.ErrorCode),
		ErrorMessage:   result.ErrorMessage,
		CompletedSteps: steps,
	}
}
