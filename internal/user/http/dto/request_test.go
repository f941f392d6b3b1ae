package dto

import (
	"testing"

	"github.com/stretchr/testify/assert"

	apperrors "github.com/allisson/studygroups/internal/errors"
)

func TestRegisterUserRequest_Validate(t *testing.T) {
	tests := []struct {
		name    string
		req     RegisterUserRequest
		wantErr bool
	}{
		{
			name:    "valid",
			req:     RegisterUserRequest{Name: "Ada", Email: "ada@example.com", JudgeHandle: "ada_l"},
			wantErr: false,
		},
		{
			name:    "missing email",
			req:     RegisterUserRequest{Name: "Ada", JudgeHandle: "ada_l"},
			wantErr: true,
		},
		{
			name:    "handle too short",
			req:     RegisterUserRequest{Name: "Ada", Email: "ada@example.com", JudgeHandle: "ad"},
			wantErr: true,
		},
		{
			name:    "blank name",
			req:     RegisterUserRequest{Name: "  ", Email: "ada@example.com", JudgeHandle: "ada_l"},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.req.Validate()
			if tt.wantErr {
				assert.ErrorIs(t, err, apperrors.ErrInvalidInput)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}
