package domain

import (
	"fmt"

	apperrors "fitlab/internal/platform/errors"
)

var (
	ErrInvalidTransition  = fmt.Errorf("%w: invalid attempt transition", apperrors.ErrConflict)
	ErrAlreadyRunning     = fmt.Errorf("%w: attempt is already running", ErrInvalidTransition)
	ErrNotRunning         = fmt.Errorf("%w: attempt is not running", ErrInvalidTransition)
	ErrNotRepetitionBased = fmt.Errorf("%w: category does not count repetitions", ErrInvalidTransition)
)
