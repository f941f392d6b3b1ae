// Package domain defines saga executions, their state machine and the results returned
// to callers.
package domain

// Status is the lifecycle state of a saga execution.
type Status string

const (
	StatusStarted            Status = "STARTED"
	StatusCompleted          Status = "COMPLETED"
	StatusFailed             Status = "FAILED"
	StatusCompensating       Status = "COMPENSATING"
	StatusCompensated        Status = "COMPENSATED"
	StatusCompensationFailed Status = "COMPENSATION_FAILED"
)

var transitions = map[Status][]Status{
	StatusStarted:      {StatusCompleted, StatusFailed, StatusCompensating},
	StatusCompensating: {StatusCompensated, StatusCompensationFailed},
}

// CanTransitionTo reports whether the state machine allows moving from s to next.
func (s Status) CanTransitionTo(next Status) bool {
	for _, allowed := range transitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

// IsTerminal reports whether s has no outgoing transitions.
func (s Status) IsTerminal() bool {
	return len(transitions[s]) == 0
}

// IsValid reports whether s is a known status.
func (s Status) IsValid() bool {
	switch s {
	case StatusStarted, StatusCompleted, StatusFailed, StatusCompensating,
		StatusCompensated, StatusCompensationFailed:
		return true
	}
	return false
}

// ErrorCode classifies why a saga did not complete.
type ErrorCode string

const (
	ErrorCodeNone               ErrorCode = ""
	ErrorCodeInvalidRequest     ErrorCode = "INVALID_REQUEST"
	ErrorCodeUserNotFound       ErrorCode = "USER_NOT_FOUND"
	ErrorCodeDuplicateGroupName ErrorCode = "DUPLICATE_GROUP_NAME"
	ErrorCodeInternal           ErrorCode = "INTERNAL_ERROR"
	ErrorCodeCompensationFailed ErrorCode = "COMPENSATION_FAILED"
)
