package validation

import (
	"testing"

	"github.com/google/uuid"
	validation "github.com/jellydator/validation"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "github.com/allisson/studygroups/internal/errors"
)

func TestJudgeHandle(t *testing.T) {
	tests := []struct {
		name      string
		input     string
		shouldErr bool
	}{
		{name: "simple handle", input: "tourist", shouldErr: false},
		{name: "with digits and separators", input: "jiangly_1.x-y", shouldErr: false},
		{name: "minimum length", input: "abc", shouldErr: false},
		{name: "maximum length", input: "abcdefghijklmnopqrstuvwx", shouldErr: false},
		{name: "empty is left to Required", input: "", shouldErr: false},
		{name: "too short", input: "ab", shouldErr: true},
		{name: "too long", input: "abcdefghijklmnopqrstuvwxy", shouldErr: true},
		{name: "contains space", input: "bad handle", shouldErr: true},
		{name: "contains at sign", input: "user@cf", shouldErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := JudgeHandle.Validate(tt.input)
			if tt.shouldErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestNotNilUUID(t *testing.T) {
	t.Run("valid uuid", func(t *testing.T) {
		err := validation.Validate(uuid.Must(uuid.NewV7()), NotNilUUID)
		assert.NoError(t, err)
	})

	t.Run("nil uuid", func(t *testing.T) {
		err := validation.Validate(uuid.Nil, NotNilUUID)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "must be a valid UUID")
	})

	t.Run("wrong type", func(t *testing.T) {
		err := validation.Validate("not-a-uuid-value", NotNilUUID)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "must be a UUID")
	})
}

func TestUUIDString(t *testing.T) {
	tests := []struct {
		name      string
		input     string
		shouldErr bool
	}{
		{name: "canonical form", input: "0194f3a6-6c1e-7d2a-9b7c-3f5e2a1d4c8b", shouldErr: false},
		{name: "empty is left to Required", input: "", shouldErr: false},
		{name: "garbage", input: "owner-42", shouldErr: true},
		{name: "truncated", input: "0194f3a6-6c1e-7d2a-9b7c", shouldErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := UUIDString.Validate(tt.input)
			if tt.shouldErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestEmailValidation(t *testing.T) {
	tests := []struct {
		name      string
		email     string
		shouldErr bool
	}{
		{
			name:      "valid email",
			email:     "user@example.com",
			shouldErr: false,
		},
		{
			name:      "valid email with subdomain",
			email:     "user@mail.example.com",
			shouldErr: false,
		},
		{
			name:      "valid email with plus",
			email:     "user+tag@example.com",
			shouldErr: false,
		},
		{
			name:      "valid email with dots",
			email:     "first.last@example.com",
			shouldErr: false,
		},
		{
			name:      "invalid - no @",
			email:     "userexample.com",
			shouldErr: true,
		},
		{
			name:      "invalid - no domain",
			email:     "user@",
			shouldErr: true,
		},
		{
			name:      "invalid - no local part",
			email:     "@example.com",
			shouldErr: true,
		},
		{
			name:      "invalid - no TLD",
			email:     "user@example",
			shouldErr: true,
		},
		{
			name:      "invalid - spaces",
			email:     "user @example.com",
			shouldErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := Email.Validate(tt.email)
			if tt.shouldErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestNotBlank(t *testing.T) {
	tests := []struct {
		name      string
		input     string
		shouldErr bool
	}{
		{
			name:      "valid string",
			input:     "validstring",
			shouldErr: false,
		},
		{
			name:      "only spaces",
			input:     "   ",
			shouldErr: true,
		},
		{
			name:      "only tabs",
			input:     "\t\t",
			shouldErr: true,
		},
		{
			name:      "only newlines",
			input:     "\n\n",
			shouldErr: true,
		},
		{
			name:      "mixed whitespace",
			input:     " \t\n ",
			shouldErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := NotBlank.Validate(tt.input)
			if tt.shouldErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestWrapValidationError(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		expected bool
	}{
		{
			name:     "nil error returns nil",
			err:      nil,
			expected: false,
		},
		{
			name:     "wraps validation error",
			err:      assert.AnError,
			expected: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := WrapValidationError(tt.err)
			if tt.expected {
				assert.Error(t, result)
				assert.Contains(t, result.Error(), "invalid input")
			} else {
				assert.NoError(t, result)
			}
		})
	}
}

func TestWrapValidationError_IsInvalidInput(t *testing.T) {
	err := WrapValidationError(validation.Validate("", validation.Required))
	assert.ErrorIs(t, err, apperrors.ErrInvalidInput)
}
