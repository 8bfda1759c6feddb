// Package apperrors holds the error taxonomy shared by services and handlers.
// Callers wrap these with fmt.Errorf("...: %w", ...) and match with errors.Is.
package apperrors

import "errors"

var (
	ErrUnauthenticated = errors.New("could not validate credentials")
	ErrForbidden       = errors.New("not authorized to perform requested action")
	ErrNotFound        = errors.New("not found")
	ErrConflict        = errors.New("conflict")
	ErrInvalidArgument = errors.New("invalid argument")
)
