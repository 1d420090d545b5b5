// internal/errors/errors.go
package appErrors

import (
	"errors"
	"fmt"
)

// NotFoundError is returned by repositories when a row does not exist.
type NotFoundError struct {
	Entity string
	ID     string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s with ID %s not found", e.Entity, e.ID)
}

// Helper constructor
func NewNotFound(entity string, id fmt.Stringer) error {
	return &NotFoundError{Entity: entity, ID: id.String()}
}

// IsNotFound reports whether err wraps a NotFoundError.
func IsNotFound(err error) bool {
	var nf *NotFoundError
	return errors.As(err, &nf)
}

var (
	ErrBadRequest        = errors.New("bad request")
	ErrUnauthorized      = errors.New("unauthorized")
	ErrForbidden         = errors.New("forbidden")
	ErrInvalidTransition = errors.New("invalid status transition")
	ErrSessionBusy       = errors.New("negotiation session is busy")
	ErrInvalidSignature  = errors.New("invalid signature")
	ErrConflict          = errors.New("conflict")
	ErrUpstream          = errors.New("upstream service failed")
)

// BadRequest wraps a validation message so it maps to HTTP 400.
func BadRequest(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrBadRequest, fmt.Sprintf(format, args...))
}

// Upstream wraps a third-party failure so it maps to HTTP 502.
func Upstream(service string, err error) error {
	return fmt.Errorf("%w: %s: %v", ErrUpstream, service, err)
}
