// Package validation provides custom validation rules for the application.
package validation

import (
	"regexp"
	"strings"

	"github.com/google/uuid"
	validation "github.com/jellydator/validation"

	apperrors "github.com/allisson/studygroups/internal/errors"
)

var (
	// emailRegex is a basic email validation pattern
	emailRegex = regexp.MustCompile(`^[a-zA-Z0-9._%+\-]+@[a-zA-Z0-9.\-]+\.[a-zA-Z]{2,}$`)

	// judgeHandleRegex matches handles accepted by the common online judges
	judgeHandleRegex = regexp.MustCompile(`^[a-zA-Z0-9_.\-]{3,24}$`)
)

// WrapValidationError wraps validation errors as domain ErrInvalidInput
func WrapValidationError(err error) error {
	if err == nil {
		return nil
	}
	return apperrors.Wrap(apperrors.ErrInvalidInput, err.Error())
}

// Email validates email format using regex
var Email = validation.NewStringRuleWithError(
	func(s string) bool {
		return emailRegex.MatchString(s)
	},
	validation.NewError("validation_email_format", "must be a valid email address"),
)

// JudgeHandle validates an online judge handle: 3 to 24 letters, digits, '_', '.' or '-'.
var JudgeHandle = validation.NewStringRuleWithError(
	func(s string) bool {
		return judgeHandleRegex.MatchString(s)
	},
	validation.NewError("validation_judge_handle", "must be 3-24 letters, digits, '_', '.' or '-'"),
)

// NotBlank validates that a string is not empty after trimming whitespace
var NotBlank = validation.NewStringRuleWithError(
	func(s string) bool {
		return strings.TrimSpace(s) != ""
	},
	validation.NewError("validation_not_blank", "must not be blank"),
)

// NotNilUUID rejects the zero UUID. Use it on uuid.UUID fields, where Required cannot tell
// an unset value from a valid one.
var NotNilUUID = validation.By(func(value interface{}) error {
	id, ok := value.(uuid.UUID)
	if !ok {
		return validation.NewError("validation_uuid_type", "must be a UUID")
	}
	if id == uuid.Nil {
		return validation.NewError("validation_uuid_nil", "must be a valid UUID")
	}
	return nil
})

// UUIDString validates that a string parses as a UUID. Empty strings are left to Required.
var UUIDString = validation.NewStringRuleWithError(
	func(s string) bool {
		_, err := uuid.Parse(s)
		return err == nil
	},
	validation.NewError("validation_uuid_format", "must be a valid UUID"),
)
