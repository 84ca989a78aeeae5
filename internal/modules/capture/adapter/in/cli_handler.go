package in

import (
	"context"

	"fitlab/internal/modules/capture/dto"
	capturein "fitlab/internal/modules/capture/port/in"
)

type CLIHandler struct {
	usecase capturein.Usecase
}

func NewCLIHandler(usecase capturein.Usecase) CLIHandler {
	return CLIHandler{usecase: usecase}
}

func (h CLIHandler) Open(ctx context.Context, testID string) (dto.AttemptOutput, error) {
	return h.usecase.Open(ctx, dto.OpenInput{TestID: testID})
}

func (h CLIHandler) Start(ctx context.Context) (dto.AttemptOutput, error) {
	return h.usecase.Start(ctx)
}

func (h CLIHandler) Rep(ctx context.Context, count int) (dto.AttemptOutput, error) {
	return h.usecase.AddRepetition(ctx, dto.RepetitionInput{Count: count})
}

func (h CLIHandler) Stop(ctx context.Context, athleteID, notes string) (dto.StopOutput, error) {
	return h.usecase.Stop(ctx, dto.StopInput{AthleteID: athleteID, Notes: notes})
}

func (h CLIHandler) Reset(ctx context.Context) (dto.AttemptOutput, error) {
	return h.usecase.Reset(ctx)
}

func (h CLIHandler) Status(ctx context.Context) (dto.AttemptOutput, error) {
	return h.usecase.Status(ctx)
}
