package domain

import (
	"errors"
	"fmt"
)

// ErrorCode represents a semantic classification shared across transport layers.
type ErrorCode string

const (
	ErrCodeNotFound        ErrorCode = "NOT_FOUND"
	ErrCodeInvalid         ErrorCode = "INVALID"
	ErrCodeConflict        ErrorCode = "CONFLICT"
	ErrCodeForbidden       ErrorCode = "FORBIDDEN"
	ErrCodeUnauthorized    ErrorCode = "UNAUTHORIZED"
	ErrCodeTooManyRequests ErrorCode = "TOO_MANY_REQUESTS"
	ErrCodeCorrupted       ErrorCode = "CORRUPTED"
	ErrCodeInternal        ErrorCode = "INTERNAL"
)

// Error represents a domain-level error.
//
// Key identifies the user-facing message in the translation bundle; when it
// is empty transports fall back to Message.
type Error struct {
	Code    ErrorCode
	Key     string
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e == nil {
		return ""
	}
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *Error) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

// Is matches sentinel errors by code and key so wrapped copies still compare equal.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok || e == nil || t == nil {
		return false
	}
	return e.Code == t.Code && e.Key != "" && e.Key == t.Key
}

// NewError builds a domain error.
func NewError(code ErrorCode, message string) *Error {
	return &Error{Code: code, Message: message}
}

// NewKeyedError builds a domain error carrying a translation key.
func NewKeyedError(code ErrorCode, key, message string) *Error {
	return &Error{Code: code, Key: key, Message: message}
}

// WrapError wraps an existing error with a domain classification.
func WrapError(code ErrorCode, message string, err error) *Error {
	return &Error{
		Code:    code,
		Message: message,
		Err:     err,
	}
}

// Invalidf builds a validation error with a formatted message.
func Invalidf(format string, args ...interface{}) *Error {
	return &Error{Code: ErrCodeInvalid, Message: fmt.Sprintf(format, args...)}
}

// Common domain errors.
var (
	ErrUserNotFound       = NewKeyedError(ErrCodeNotFound, "userNotFound", "user not found")
	ErrTaskNotFound       = NewKeyedError(ErrCodeNotFound, "taskNotFound", "task not found")
	ErrTeamNotFound       = NewKeyedError(ErrCodeNotFound, "teamNotFound", "team not found")
	ErrCommentNotFound    = NewKeyedError(ErrCodeNotFound, "commentNotFound", "comment not found")
	ErrSessionNotFound    = NewKeyedError(ErrCodeNotFound, "sessionNotFound", "session not found")
	ErrUnauthorized       = NewKeyedError(ErrCodeUnauthorized, "unauthorized", "unauthorized")
	ErrForbidden          = NewKeyedError(ErrCodeForbidden, "forbidden", "forbidden")
	ErrInvalidPayload     = NewKeyedError(ErrCodeInvalid, "invalidPayload", "invalid payload")
	ErrInvalidCredentials = NewKeyedError(ErrCodeUnauthorized, "invalidCredentials", "invalid username, email or password")
	ErrTooManyAttempts    = NewKeyedError(ErrCodeTooManyRequests, "tooManyAttempts", "too many failed login attempts")
	ErrDuplicateTeamName  = NewKeyedError(ErrCodeConflict, "duplicateTeamName", "a team with this name already exists")
	ErrDuplicateUsername  = NewKeyedError(ErrCodeConflict, "duplicateUsername", "username is already taken")
	ErrDuplicateEmail     = NewKeyedError(ErrCodeConflict, "duplicateEmail", "email is already registered")
	ErrCorruptedData      = NewKeyedError(ErrCodeCorrupted, "corruptedData", "stored data is corrupted")
)

// Corrupted reports unreadable persisted data for the named collection.
func Corrupted(collection string, err error) *Error {
	return &Error{
		Code:    ErrCodeCorrupted,
		Key:     ErrCorruptedData.Key,
		Message: fmt.Sprintf("collection %q is corrupted", collection),
		Err:     err,
	}
}

// IsDomainError helps checking error codes.
func IsDomainError(err error, code ErrorCode) bool {
	var dErr *Error
	if errors.As(err, &dErr) {
		return dErr.Code == code
	}
	return false
}
