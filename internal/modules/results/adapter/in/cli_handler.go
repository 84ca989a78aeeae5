package in

import (
	"context"

	"fitlab/internal/modules/results/dto"
	resultsin "fitlab/internal/modules/results/port/in"
)

type CLIHandler struct {
	usecase resultsin.Usecase
}

func NewCLIHandler(usecase resultsin.Usecase) CLIHandler {
	return CLIHandler{usecase: usecase}
}

// Recent loads the store before listing, since each CLI run starts cold.
func (h CLIHandler) Recent(ctx context.Context, limit int) ([]dto.TestResult, dto.LoadOutput, error) {
	loaded, err := h.usecase.Load(ctx)
	if err != nil {
		return nil, dto.LoadOutput{}, err
	}
	items, err := h.usecase.ListRecent(ctx, dto.ListRecentInput{Limit: limit})
	return items, loaded, err
}

// Cached lists the in-memory cache without touching the repository.
func (h CLIHandler) Cached(ctx context.Context, limit int) ([]dto.TestResult, error) {
	return h.usecase.ListRecent(ctx, dto.ListRecentInput{Limit: limit})
}

func (h CLIHandler) Bests(ctx context.Context, athleteID string) ([]dto.TestResult, error) {
	return h.usecase.PersonalBests(ctx, dto.PersonalBestsInput{AthleteID: athleteID})
}

func (h CLIHandler) ByCategory(ctx context.Context, category string, limit int) ([]dto.TestResult, error) {
	return h.usecase.ByCategory(ctx, dto.ByCategoryInput{Category: category, Limit: limit})
}

func (h CLIHandler) Top(ctx context.Context, testName string, limit int) ([]dto.TestResult, error) {
	return h.usecase.Top(ctx, dto.TopInput{TestName: testName, Limit: limit})
}

func (h CLIHandler) Delete(ctx context.Context, id string) error {
	return h.usecase.Delete(ctx, id)
}
