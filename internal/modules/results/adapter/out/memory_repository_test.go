package out_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	resultsout "fitlab/internal/modules/results/adapter/out"
	"fitlab/internal/modules/results/domain"
	"fitlab/internal/platform/category"
	apperrors "fitlab/internal/platform/errors"
)

func TestMemoryRepositoryReplacesByID(t *testing.T) {
	t.Parallel()
	repo := resultsout.NewMemoryRepository(sample("r1", "Push-ups", category.Strength, 40, "2024-01-13"))
	ctx := context.Background()
	require.NoError(t, repo.Save(ctx, sample("r2", "Plank Hold", category.Core, 60, "2024-01-14")))
	require.NoError(t, repo.Save(ctx, sample("r1", "Push-ups", category.Strength, 48, "2024-01-15")))

	all, err := repo.Find(ctx, domain.Filter{})
	require.NoError(t, err)
	require.Len(t, all, 2)
	assert.Equal(t, "r1", all[0].ID)
	assert.Equal(t, 48.0, all[0].Score)
}

func TestMemoryRepositoryFindScoreOrderAndLimit(t *testing.T) {
	t.Parallel()
	repo := resultsout.NewMemoryRepository(
		sample("r3", "Push-ups", category.Strength, 30, "2024-01-15"),
		sample("r2", "Push-ups", category.Strength, 60, "2024-01-14"),
		sample("r1", "Push-ups", category.Strength, 45, "2024-01-13"),
	)
	top, err := repo.Find(context.Background(), domain.Filter{TestName: "Push-ups", Order: domain.OrderBest, Limit: 2})
	require.NoError(t, err)
	require.Len(t, top, 2)
	assert.Equal(t, "r2", top[0].ID)
	assert.Equal(t, "r1", top[1].ID)
}

func TestMemoryRepositoryRanksFastestSprintFirst(t *testing.T) {
	t.Parallel()
	repo := resultsout.NewMemoryRepository(
		sample("slow", "40 Yard Dash", category.Speed, 5.9, "2024-01-15"),
		sample("fast", "40 Yard Dash", category.Speed, 4.4, "2024-01-14"),
	)
	top, err := repo.Find(context.Background(), domain.Filter{TestName: "40 Yard Dash", Order: domain.OrderBest, Limit: 1})
	require.NoError(t, err)
	require.Len(t, top, 1)
	assert.Equal(t, "fast", top[0].ID)
}

func TestMemoryRepositoryDeleteMissing(t *testing.T) {
	t.Parallel()
	repo := resultsout.NewMemoryRepository()
	err := repo.Delete(context.Background(), "nope")
	assert.True(t, errors.Is(err, apperrors.ErrNotFound))
}

func TestMemoryRepositoryObserveStopsOnClose(t *testing.T) {
	t.Parallel()
	repo := resultsout.NewMemoryRepository()
	stream, err := repo.ObserveAll(context.Background())
	require.NoError(t, err)
	<-stream
	require.NoError(t, repo.Close())

	select {
	case _, open := <-stream:
		assert.False(t, open)
	case <-time.After(2 * time.Second):
		t.Fatal("expected stream to close")
	}
	_, err = repo.ObserveAll(context.Background())
	assert.True(t, errors.Is(err, domain.ErrStoreClosed))
}
