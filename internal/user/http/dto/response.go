package dto

import (
	"time"

	"github.com/google/uuid"
)

// UserResponse represents the API response for a user
type UserResponse struct {
	ID          uuid.UUID `json:"id"`
	Name        string    `json:"name"`
	Email       string    `json:"email"`
	JudgeHandle string    `json:"judge_handle"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}
