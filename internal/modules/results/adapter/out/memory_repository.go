package out

import (
	"context"
	"fmt"
	"sync"

	"fitlab/internal/modules/results/domain"
	apperrors "fitlab/internal/platform/errors"
)

// MemoryRepository keeps results for the life of the process. Saving an
// existing id replaces it and moves it to the front.
type MemoryRepository struct {
	mu      sync.RWMutex
	results []domain.TestResult
	feed    *feed
}

func NewMemoryRepository(seed ...domain.TestResult) *MemoryRepository {
	results := make([]domain.TestResult, len(seed))
	copy(results, seed)
	return &MemoryRepository{results: results, feed: newFeed()}
}

func (r *MemoryRepository) ObserveAll(ctx context.Context) (<-chan []domain.TestResult, error) {
	return r.feed.observe(ctx, func(context.Context) ([]domain.TestResult, error) {
		return r.snapshot(), nil
	})
}

func (r *MemoryRepository) Save(ctx context.Context, result domain.TestResult) error {
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("save result: %w", err)
	}
	r.mu.Lock()
	next := make([]domain.TestResult, 0, len(r.results)+1)
	next = append(next, result)
	for _, item := range r.results {
		if item.ID != result.ID {
			next = append(next, item)
		}
	}
	r.results = next
	r.mu.Unlock()
	r.feed.notify()
	return nil
}

func (r *MemoryRepository) FindByID(_ context.Context, id string) (domain.TestResult, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, item := range r.results {
		if item.ID == id {
			return item, nil
		}
	}
	return domain.TestResult{}, fmt.Errorf("result %s: %w", id, apperrors.ErrNotFound)
}

func (r *MemoryRepository) Find(_ context.Context, filter domain.Filter) ([]domain.TestResult, error) {
	return applyFilter(r.snapshot(), filter), nil
}

func (r *MemoryRepository) Delete(_ context.Context, id string) error {
	r.mu.Lock()
	found := false
	kept := make([]domain.TestResult, 0, len(r.results))
	for _, item := range r.results {
		if item.ID == id {
			found = true
			continue
		}
		kept = append(kept, item)
	}
	r.results = kept
	r.mu.Unlock()
	if !found {
		return fmt.Errorf("result %s: %w", id, apperrors.ErrNotFound)
	}
	r.feed.notify()
	return nil
}

func (r *MemoryRepository) Close() error {
	r.feed.close()
	return nil
}

func (r *MemoryRepository) snapshot() []domain.TestResult {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]domain.TestResult, len(r.results))
	copy(out, r.results)
	return out
}
