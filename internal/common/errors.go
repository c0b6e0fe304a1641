package common

import (
	"errors"
	"fmt"
	"net/http"
)

var (
	// Repository-level errors.
	ErrorNotFound = errors.New("not found")

	// Service-level errors.
	ErrorInternal = errors.New("internal error")
	ErrValidation = errors.New("validation error")

	// Identity errors.
	ErrDuplicateUser      = errors.New("user already exists")
	ErrInvalidCredentials = errors.New("invalid credentials")

	// Token errors. ErrTokenExpired is only reported for tokens whose
	// signature checked out.
	ErrTokenInvalid = errors.New("invalid token")
	ErrTokenExpired = errors.New("token expired")
)

// Messages sent back to callers.
const (
	MsgDuplicateUser      = "User already exists"
	MsgInvalidCredentials = "User/Password not valid"
	MsgTokenInvalid       = "Token not valid"
)

// StatusError is the structured failure returned over the wire:
// an HTTP-style status plus a human readable message.
type StatusError struct {
	Status  int    `json:"status"`
	Message string `json:"message"`
	Err     error  `json:"-"`
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("%d: %s", e.Status, e.Message)
}

func (e *StatusError) Unwrap() error { return e.Err }

// NewValidationError reports a malformed request.
func NewValidationError(msg string) *StatusError {
	return &StatusError{Status: http.StatusBadRequest, Message: msg, Err: ErrValidation}
}

// NewInternalFailure wraps an unexpected error. The underlying message is
// exposed verbatim to the caller.
func NewInternalFailure(err error) *StatusError {
	return &StatusError{
		Status:  http.StatusBadRequest,
		Message: err.Error(),
		Err:     fmt.Errorf("%w: %w", ErrorInternal, err),
	}
}

// ToStatusError maps any error to its wire representation.
// Expired and invalid tokens share one message on purpose.
func ToStatusError(err error) *StatusError {
	var se *StatusError
	if errors.As(err, &se) {
		return se
	}

	switch {
	case errors.Is(err, ErrDuplicateUser):
		return &StatusError{Status: http.StatusBadRequest, Message: MsgDuplicateUser, Err: err}
	case errors.Is(err, ErrInvalidCredentials):
		return &StatusError{Status: http.StatusUnauthorized, Message: MsgInvalidCredentials, Err: err}
	case errors.Is(err, ErrTokenInvalid), errors.Is(err, ErrTokenExpired):
		return &StatusError{Status: http.StatusUnauthorized, Message: MsgTokenInvalid, Err: err}
	}

	return NewInternalFailure(err)
}
