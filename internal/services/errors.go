package services

import (
	"errors"
	"fmt"
	"strings"
)

// Sentinel errors shared across services. Handlers map these to HTTP status
// codes; everything else surfaces as a 500.
var (
	ErrValidationFailed = errors.New("validation failed")
	ErrUnauthorized     = errors.New("unauthorized")
	ErrForbidden        = errors.New("forbidden")
	ErrNotFound         = errors.New("not found")

	ErrAccountNotFound     = fmt.Errorf("account %w", ErrNotFound)
	ErrStudentNotFound     = fmt.Errorf("student %w", ErrNotFound)
	ErrGuardianNotFound    = fmt.Errorf("guardian %w", ErrNotFound)
	ErrTeacherNotFound     = fmt.Errorf("teacher %w", ErrNotFound)
	ErrRoomNotFound        = fmt.Errorf("room %w", ErrNotFound)
	ErrReservationNotFound = fmt.Errorf("reservation %w", ErrNotFound)

	// ErrInvalidCredentials covers both unknown usernames and bad passwords
	// so login responses never reveal which one failed.
	ErrInvalidCredentials = fmt.Errorf("invalid credentials: %w", ErrUnauthorized)

	// ErrInvalidResetToken covers tokens that do not exist, including ones
	// already consumed or swept after expiring.
	ErrInvalidResetToken = fmt.Errorf("invalid token: %w", ErrValidationFailed)

	// ErrExpiredResetToken surfaces the expiry case distinctly; the token is
	// deleted on sight, so a retry with it fails as invalid.
	ErrExpiredResetToken = fmt.Errorf("reset token expired: %w", ErrValidationFailed)
)

// ValidationError describes a single rejected field.
type ValidationError struct {
	Field   string      `json:"field"`
	Message string      `json:"message"`
	Value   interface{} `json:"value,omitempty"`
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

func (e *ValidationError) Unwrap() error {
	return ErrValidationFailed
}

func NewValidationError(field, message string, value interface{}) *ValidationError {
	return &ValidationError{Field: field, Message: message, Value: value}
}

// ValidationErrors aggregates several field failures into one error.
type ValidationErrors []ValidationError

func (ve ValidationErrors) Error() string {
	msgs := make([]string, len(ve))
	for i, e := range ve {
		msgs[i] = e.Error()
	}
	return strings.Join(msgs, "; ")
}

func (ve ValidationErrors) Unwrap() error {
	return ErrValidationFailed
}

// PermissionError carries who tried what on which resource. The message is
// safe to return to the caller.
type PermissionError struct {
	AccountID uint   `json:"account_id"`
	Resource  string `json:"resource"`
	Action    string `json:"action"`
	Reason    string `json:"reason"`
}

func (e *PermissionError) Error() string {
	return fmt.Sprintf("permission denied: %s %s: %s", e.Action, e.Resource, e.Reason)
}

func (e *PermissionError) Unwrap() error {
	return ErrForbidden
}

func NewPermissionError(accountID uint, resource, action, reason string) *PermissionError {
	return &PermissionError{
		AccountID: accountID,
		Resource:  resource,
		Action:    action,
		Reason:    reason,
	}
}
