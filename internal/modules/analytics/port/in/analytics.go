package in

import (
	"context"

	"fitlab/internal/modules/analytics/dto"
)

type Usecase interface {
	List(ctx context.Context) ([]dto.PluginInfo, error)
	Doctor(ctx context.Context) ([]dto.DoctorResult, error)
	ListCommands(ctx context.Context, plugin string) ([]dto.CommandInfo, error)
	Execute(ctx context.Context, input dto.RunInput) (dto.RunOutput, error)
	Analyze(ctx context.Context, input dto.RunInput) (dto.RunOutput, error)
	Percentile(ctx context.Context, input dto.PercentileInput) (dto.PercentileOutput, error)
}
