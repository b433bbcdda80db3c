package domain

import "errors"

// Error taxonomy shared by services and handlers. Services return (or wrap)
// these sentinels; the handler layer maps them to HTTP statuses.
var (
	ErrValidation      = errors.New("invalid input")
	ErrUnauthenticated = errors.New("authentication required")
	ErrForbidden       = errors.New("insufficient permissions")
	ErrNotFound        = errors.New("not found")
	ErrConflict        = errors.New("conflict")
)
