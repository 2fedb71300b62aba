// Package apperr holds the sentinel errors shared by the store, service and transports.
package apperr

import "errors"

var (
	ErrNotFound            = errors.New("not found")
	ErrConflict            = errors.New("conflict")
	ErrInvalid             = errors.New("invalid input")
	ErrWriteFailure        = errors.New("write failure")
	ErrConstraintViolation = errors.New("constraint violation")
)
