package out

import (
	"context"

	"fitlab/internal/modules/results/domain"
)

// ResultRepository is the durable store behind the recent-results cache.
type ResultRepository interface {
	// ObserveAll emits newest-first snapshots of every stored result,
	// once immediately and again after each change, until ctx ends.
	ObserveAll(ctx context.Context) (<-chan []domain.TestResult, error)
	Save(ctx context.Context, result domain.TestResult) error
}

type ResultQueries interface {
	FindByID(ctx context.Context, id string) (domain.TestResult, error)
	Find(ctx context.Context, filter domain.Filter) ([]domain.TestResult, error)
	Delete(ctx context.Context, id string) error
}

// Backend is what each storage adapter provides.
type Backend interface {
	ResultRepository
	ResultQueries
	Close() error
}
