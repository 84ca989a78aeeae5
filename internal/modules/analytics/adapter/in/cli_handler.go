package in

import (
	"context"

	"fitlab/internal/modules/analytics/dto"
	analyticsin "fitlab/internal/modules/analytics/port/in"
)

type CLIHandler struct {
	usecase analyticsin.Usecase
}

func NewCLIHandler(usecase analyticsin.Usecase) CLIHandler {
	return CLIHandler{usecase: usecase}
}

func (h CLIHandler) List(ctx context.Context) ([]dto.PluginInfo, error) {
	return h.usecase.List(ctx)
}

func (h CLIHandler) Doctor(ctx context.Context) ([]dto.DoctorResult, error) {
	return h.usecase.Doctor(ctx)
}

func (h CLIHandler) ListCommands(ctx context.Context, plugin string) ([]dto.CommandInfo, error) {
	return h.usecase.ListCommands(ctx, plugin)
}

func (h CLIHandler) Execute(ctx context.Context, input dto.RunInput) (dto.RunOutput, error) {
	return h.usecase.Execute(ctx, input)
}

func (h CLIHandler) Analyze(ctx context.Context, input dto.RunInput) (dto.RunOutput, error) {
	return h.usecase.Analyze(ctx, input)
}

func (h CLIHandler) Percentile(ctx context.Context, input dto.PercentileInput) (dto.PercentileOutput, error) {
	return h.usecase.Percentile(ctx, input)
}
