package out

import (
	"context"

	"fitlab/internal/modules/capture/domain"
)

// AttemptStore checkpoints the single current attempt. LoadActive
// returns apperrors.ErrNoActiveAttempt when there is none.
type AttemptStore interface {
	SaveActive(ctx context.Context, attempt domain.Attempt) error
	LoadActive(ctx context.Context) (domain.Attempt, error)
	ClearActive(ctx context.Context) error
}

// ResultJournal writes a human-readable note per result and returns its path.
type ResultJournal interface {
	Write(ctx context.Context, result domain.Result) (string, error)
}

type PercentileSource interface {
	Percentile(ctx context.Context, query domain.PercentileQuery) (int, error)
}
