package in

import (
	"context"

	"fitlab/internal/modules/results/dto"
)

type Usecase interface {
	Load(ctx context.Context) (dto.LoadOutput, error)
	Submit(ctx context.Context, result dto.TestResult) error
	ListRecent(ctx context.Context, input dto.ListRecentInput) ([]dto.TestResult, error)
	PersonalBests(ctx context.Context, input dto.PersonalBestsInput) ([]dto.TestResult, error)
	PersonalBest(ctx context.Context, input dto.PersonalBestInput) (dto.PersonalBestOutput, error)
	ByCategory(ctx context.Context, input dto.ByCategoryInput) ([]dto.TestResult, error)
	Top(ctx context.Context, input dto.TopInput) ([]dto.TestResult, error)
	Delete(ctx context.Context, id string) error
	Close() error
}
