package usecase

import (
	"context"
	"fmt"
	"strings"

	"fitlab/internal/modules/analytics/dto"
	analyticsin "fitlab/internal/modules/analytics/port/in"
	"fitlab/internal/modules/analytics/service"
	apperrors "fitlab/internal/platform/errors"
)

type Interactor struct {
	svc *service.AnalyticsService
}

func NewInteractor(svc *service.AnalyticsService) analyticsin.Usecase {
	return &Interactor{svc: svc}
}

func (i *Interactor) List(ctx context.Context) ([]dto.PluginInfo, error) {
	return i.svc.List(ctx)
}

func (i *Interactor) Doctor(ctx context.Context) ([]dto.DoctorResult, error) {
	return i.svc.Doctor(ctx)
}

func (i *Interactor) ListCommands(ctx context.Context, plugin string) ([]dto.CommandInfo, error) {
	if err := requirePlugin(plugin); err != nil {
		return nil, err
	}
	return i.svc.ListCommands(ctx, plugin)
}

func (i *Interactor) Execute(ctx context.Context, input dto.RunInput) (dto.RunOutput, error) {
	if err := requirePlugin(input.Plugin); err != nil {
		return dto.RunOutput{}, err
	}
	return i.svc.Execute(ctx, input)
}

func (i *Interactor) Analyze(ctx context.Context, input dto.RunInput) (dto.RunOutput, error) {
	if err := requirePlugin(input.Plugin); err != nil {
		return dto.RunOutput{}, err
	}
	return i.svc.Analyze(ctx, input)
}

func (i *Interactor) Percentile(ctx context.Context, input dto.PercentileInput) (dto.PercentileOutput, error) {
	if err := requirePlugin(input.Plugin); err != nil {
		return dto.PercentileOutput{}, err
	}
	if strings.TrimSpace(input.Category) == "" {
		return dto.PercentileOutput{}, fmt.Errorf("%w: category is required", apperrors.ErrInvalidInput)
	}
	return i.svc.Percentile(ctx, input)
}

func requirePlugin(name string) error {
	if strings.TrimSpace(name) == "" {
		return fmt.Errorf("%w: plugin name is required", apperrors.ErrInvalidInput)
	}
	return nil
}
