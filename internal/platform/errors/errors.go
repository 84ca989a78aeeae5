package apperrors

import "errors"

var (
	ErrInvalidInput        = errors.New("invalid input")
	ErrNotFound            = errors.New("not found")
	ErrConflict            = errors.New("conflict")
	ErrNoActiveAttempt     = errors.New("no active attempt")
	ErrActiveAttemptExists = errors.New("an attempt is already running")
)
