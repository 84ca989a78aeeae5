package in

import (
	"context"

	"fitlab/internal/modules/capture/dto"
)

type Usecase interface {
	Open(ctx context.Context, input dto.OpenInput) (dto.AttemptOutput, error)
	Start(ctx context.Context) (dto.AttemptOutput, error)
	AddRepetition(ctx context.Context, input dto.RepetitionInput) (dto.AttemptOutput, error)
	Stop(ctx context.Context, input dto.StopInput) (dto.StopOutput, error)
	Reset(ctx context.Context) (dto.AttemptOutput, error)
	Status(ctx context.Context) (dto.AttemptOutput, error)
}
