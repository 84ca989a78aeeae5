package usecase_test

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	resultsadapter "fitlab/internal/modules/results/adapter/out"
	"fitlab/internal/modules/results/domain"
	"fitlab/internal/modules/results/dto"
	resultsin "fitlab/internal/modules/results/port/in"
	"fitlab/internal/modules/results/service"
	"fitlab/internal/modules/results/usecase"
	"fitlab/internal/platform/category"
	apperrors "fitlab/internal/platform/errors"
)

type fakeBackend struct {
	results    []domain.TestResult
	observeErr error
	closed     bool
	lastFilter domain.Filter
}

func (f *fakeBackend) ObserveAll(context.Context) (<-chan []domain.TestResult, error) {
	if f.observeErr != nil {
		return nil, f.observeErr
	}
	out := make(chan []domain.TestResult, 1)
	out <- f.results
	return out, nil
}

func (f *fakeBackend) Save(_ context.Context, r domain.TestResult) error {
	f.results = append([]domain.TestResult{r}, f.results...)
	return nil
}

func (f *fakeBackend) FindByID(_ context.Context, id string) (domain.TestResult, error) {
	for _, r := range f.results {
		if r.ID == id {
			return r, nil
		}
	}
	return domain.TestResult{}, apperrors.ErrNotFound
}

func (f *fakeBackend) Find(_ context.Context, filter domain.Filter) ([]domain.TestResult, error) {
	f.lastFilter = filter
	out := []domain.TestResult{}
	for _, r := range f.results {
		if filter.TestName != "" && r.TestName != filter.TestName {
			continue
		}
		if filter.Category != "" && r.Category != filter.Category {
			continue
		}
		if filter.AthleteID != "" && r.AthleteID != filter.AthleteID {
			continue
		}
		out = append(out, r)
	}
	return out, nil
}

func (f *fakeBackend) Delete(_ context.Context, id string) error {
	for i, r := range f.results {
		if r.ID == id {
			f.results = append(f.results[:i], f.results[i+1:]...)
			return nil
		}
	}
	return fmt.Errorf("result %s: %w", id, apperrors.ErrNotFound)
}

func (f *fakeBackend) Close() error {
	f.closed = true
	return nil
}

func newUsecase(backend *fakeBackend) resultsin.Usecase {
	return usecase.NewInteractor(service.NewRecentResults(backend), service.NewQueryService(backend), backend)
}

func TestSubmitThenListRecentMapsFields(t *testing.T) {
	t.Parallel()
	backend := &fakeBackend{}
	uc := usecase.NewInteractor(service.NewRecentResults(backend), service.NewQueryService(backend), backend)
	defer uc.Close()

	err := uc.Submit(context.Background(), dto.TestResult{
		ID: "r1", TestName: "Plank Hold", Category: "core", Score: 62, Unit: "seconds", Date: "2024-03-01", Percentile: 77, AthleteID: "a1",
	})
	require.NoError(t, err)
	recent, err := uc.ListRecent(context.Background(), dto.ListRecentInput{})
	require.NoError(t, err)
	require.Len(t, recent, 1)
	assert.Equal(t, "Core", recent[0].Category)
	assert.Equal(t, 62.0, recent[0].Score)
	assert.Equal(t, "a1", recent[0].AthleteID)

	_, err = uc.ListRecent(context.Background(), dto.ListRecentInput{Limit: -1})
	assert.ErrorIs(t, err, apperrors.ErrInvalidInput)
}

func TestLoadReportsFallback(t *testing.T) {
	t.Parallel()
	uc := newUsecase(&fakeBackend{observeErr: errors.New("offline")})
	defer uc.Close()

	out, err := uc.Load(context.Background())
	require.NoError(t, err)
	assert.True(t, out.Fallback)
	assert.Equal(t, 3, out.Count)
}

func TestLoadAfterCloseFails(t *testing.T) {
	t.Parallel()
	backend := &fakeBackend{}
	uc := newUsecase(backend)
	require.NoError(t, uc.Close())
	assert.True(t, backend.closed)

	_, err := uc.Load(context.Background())
	assert.ErrorIs(t, err, domain.ErrStoreClosed)
}

func TestPersonalBestRespectsSpeedDirection(t *testing.T) {
	t.Parallel()
	backend := &fakeBackend{results: []domain.TestResult{
		{ID: "s2", TestName: "40 Yard Dash", Category: category.Speed, Score: 5.1, Unit: "seconds", AthleteID: "a1"},
		{ID: "s1", TestName: "40 Yard Dash", Category: category.Speed, Score: 4.8, Unit: "seconds", AthleteID: "a1"},
		{ID: "p1", TestName: "Push-ups", Category: category.Strength, Score: 40, Unit: "reps", AthleteID: "a1"},
		{ID: "p2", TestName: "Push-ups", Category: category.Strength, Score: 52, Unit: "reps", AthleteID: "a1"},
	}}
	uc := usecase.NewInteractor(service.NewRecentResults(backend), service.NewQueryService(backend), nil)
	defer uc.Close()

	best, err := uc.PersonalBest(context.Background(), dto.PersonalBestInput{AthleteID: "a1", TestName: "40 Yard Dash"})
	require.NoError(t, err)
	require.True(t, best.Found)
	assert.Equal(t, "s1", best.Result.ID)

	bests, err := uc.PersonalBests(context.Background(), dto.PersonalBestsInput{AthleteID: "a1"})
	require.NoError(t, err)
	require.Len(t, bests, 2)
	assert.Equal(t, "s1", bests[0].ID)
	assert.Equal(t, "p2", bests[1].ID)

	none, err := uc.PersonalBest(context.Background(), dto.PersonalBestInput{AthleteID: "a1", TestName: "Plank Hold"})
	require.NoError(t, err)
	assert.False(t, none.Found)
}

func TestTopRanksSprintsFastestFirst(t *testing.T) {
	t.Parallel()
	repo := resultsadapter.NewMemoryRepository(
		domain.TestResult{ID: "slow", TestName: "40 Yard Dash", Category: category.Speed, Score: 5.9, Unit: domain.UnitSeconds, Date: "2024-01-15", Percentile: 70},
		domain.TestResult{ID: "fast", TestName: "40 Yard Dash", Category: category.Speed, Score: 4.4, Unit: domain.UnitSeconds, Date: "2024-01-14", Percentile: 90},
	)
	uc := usecase.NewInteractor(service.NewRecentResults(repo), service.NewQueryService(repo), repo)
	defer uc.Close()

	top, err := uc.Top(context.Background(), dto.TopInput{TestName: "40 Yard Dash", Limit: 2})
	require.NoError(t, err)
	require.Len(t, top, 2)
	assert.Equal(t, "fast", top[0].ID)
	assert.Equal(t, "slow", top[1].ID)
}

func TestTopAndByCategoryBuildFilters(t *testing.T) {
	t.Parallel()
	backend := &fakeBackend{}
	uc := usecase.NewInteractor(service.NewRecentResults(backend), service.NewQueryService(backend), nil)
	defer uc.Close()

	_, err := uc.Top(context.Background(), dto.TopInput{TestName: "Push-ups"})
	require.NoError(t, err)
	assert.Equal(t, domain.OrderBest, backend.lastFilter.Order)
	assert.Equal(t, domain.MaxRecent, backend.lastFilter.Limit)

	_, err = uc.ByCategory(context.Background(), dto.ByCategoryInput{Category: "speed", Limit: 3})
	require.NoError(t, err)
	assert.Equal(t, category.Speed, backend.lastFilter.Category)

	_, err = uc.ByCategory(context.Background(), dto.ByCategoryInput{})
	assert.ErrorIs(t, err, apperrors.ErrInvalidInput)
}

func TestDeleteDropsFromRepositoryAndCache(t *testing.T) {
	t.Parallel()
	backend := &fakeBackend{}
	uc := usecase.NewInteractor(service.NewRecentResults(backend), service.NewQueryService(backend), nil)
	defer uc.Close()
	require.NoError(t, uc.Submit(context.Background(), dto.TestResult{ID: "r1", TestName: "Push-ups", Category: "Strength", Unit: "reps", Percentile: 70}))

	require.NoError(t, uc.Delete(context.Background(), "r1"))
	recent, err := uc.ListRecent(context.Background(), dto.ListRecentInput{})
	require.NoError(t, err)
	assert.Empty(t, recent)
	assert.ErrorIs(t, uc.Delete(context.Background(), "r1"), apperrors.ErrNotFound)
}
