package usecase

import (
	"context"
	"fmt"
	"io"

	"fitlab/internal/modules/results/domain"
	"fitlab/internal/modules/results/dto"
	resultsin "fitlab/internal/modules/results/port/in"
	"fitlab/internal/modules/results/service"
	"fitlab/internal/platform/category"
	apperrors "fitlab/internal/platform/errors"
)

type Interactor struct {
	store   *service.RecentResults
	queries *service.QueryService
	backend io.Closer
}

// NewInteractor wires the cache and the query side. backend may be nil;
// when set it is closed after the cache on Close.
func NewInteractor(store *service.RecentResults, queries *service.QueryService, backend io.Closer) resultsin.Usecase {
	return &Interactor{store: store, queries: queries, backend: backend}
}

func (i *Interactor) Load(ctx context.Context) (dto.LoadOutput, error) {
	report := i.store.Load(ctx)
	if !report.Applied && i.store.Closed() {
		return dto.LoadOutput{}, domain.ErrStoreClosed
	}
	return dto.LoadOutput{Count: report.Count, Fallback: report.Fallback, Applied: report.Applied}, nil
}

func (i *Interactor) Submit(ctx context.Context, result dto.TestResult) error {
	return i.store.Submit(ctx, fromDTO(result))
}

func (i *Interactor) ListRecent(_ context.Context, input dto.ListRecentInput) ([]dto.TestResult, error) {
	if input.Limit < 0 {
		return nil, fmt.Errorf("%w: limit must not be negative", apperrors.ErrInvalidInput)
	}
	return toDTOs(i.store.ListRecent(input.Limit)), nil
}

func (i *Interactor) PersonalBests(ctx context.Context, input dto.PersonalBestsInput) ([]dto.TestResult, error) {
	items, err := i.queries.PersonalBests(ctx, input.AthleteID)
	if err != nil {
		return nil, err
	}
	return toDTOs(items), nil
}

func (i *Interactor) PersonalBest(ctx context.Context, input dto.PersonalBestInput) (dto.PersonalBestOutput, error) {
	best, found, err := i.queries.PersonalBest(ctx, input.AthleteID, input.TestName)
	if err != nil {
		return dto.PersonalBestOutput{}, err
	}
	if !found {
		return dto.PersonalBestOutput{}, nil
	}
	return dto.PersonalBestOutput{Result: toDTO(best), Found: true}, nil
}

func (i *Interactor) ByCategory(ctx context.Context, input dto.ByCategoryInput) ([]dto.TestResult, error) {
	items, err := i.queries.ByCategory(ctx, input.Category, input.Limit)
	if err != nil {
		return nil, err
	}
	return toDTOs(items), nil
}

func (i *Interactor) Top(ctx context.Context, input dto.TopInput) ([]dto.TestResult, error) {
	items, err := i.queries.Top(ctx, input.TestName, input.Limit)
	if err != nil {
		return nil, err
	}
	return toDTOs(items), nil
}

func (i *Interactor) Delete(ctx context.Context, id string) error {
	if err := i.queries.Delete(ctx, id); err != nil {
		return err
	}
	i.store.Forget(id)
	return nil
}

func (i *Interactor) Close() error {
	i.store.Close()
	if i.backend == nil {
		return nil
	}
	if err := i.backend.Close(); err != nil {
		return fmt.Errorf("close results backend: %w", err)
	}
	return nil
}

func fromDTO(in dto.TestResult) domain.TestResult {
	return domain.TestResult{
		ID:           in.ID,
		TestName:     in.TestName,
		Category:     category.Parse(in.Category),
		Score:        in.Score,
		Unit:         in.Unit,
		Date:         in.Date,
		Percentile:   in.Percentile,
		AthleteID:    in.AthleteID,
		Notes:        in.Notes,
		PersonalBest: in.PersonalBest,
		VideoURL:     in.VideoURL,
	}
}

func toDTO(r domain.TestResult) dto.TestResult {
	return dto.TestResult{
		ID:           r.ID,
		TestName:     r.TestName,
		Category:     r.Category.String(),
		Score:        r.Score,
		Unit:         r.Unit,
		Date:         r.Date,
		Percentile:   r.Percentile,
		AthleteID:    r.AthleteID,
		Notes:        r.Notes,
		PersonalBest: r.PersonalBest,
		VideoURL:     r.VideoURL,
	}
}

func toDTOs(items []domain.TestResult) []dto.TestResult {
	out := make([]dto.TestResult, 0, len(items))
	for _, item := range items {
		out = append(out, toDTO(item))
	}
	return out
}
