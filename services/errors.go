package services

import (
	"errors"
	"strings"
)

var (
	ErrDuplicateUser      = errors.New("an account with this email already exists")
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrUserNotFound       = errors.New("user not found")
	ErrCheckinNotFound    = errors.New("check-in not found")
	ErrDuplicateCheckin   = errors.New("a check-in already exists for this date")
	ErrUnauthorized       = errors.New("unauthorized")
)

// ValidationError collects every rule a request violated.
type ValidationError struct {
	Messages []string
}

func (e *ValidationError) Error() string {
	return "validation failed: " + strings.Join(e.Messages, "; ")
}

func (e *ValidationError) add(msg string) {
	e.Messages = append(e.Messages, msg)
}

// errOrNil returns e only when it holds at least one message.
func (e *ValidationError) errOrNil() error {
	if len(e.Messages) == 0 {
		return nil
	}
	return e
}

func newValidationError(msgs ...string) *ValidationError {
	return &ValidationError{Messages: msgs}
}
