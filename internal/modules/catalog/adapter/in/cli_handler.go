package in

import (
	"context"

	"fitlab/internal/modules/catalog/dto"
	catalogin "fitlab/internal/modules/catalog/port/in"
)

type CLIHandler struct {
	usecase catalogin.Usecase
}

func NewCLIHandler(usecase catalogin.Usecase) CLIHandler {
	return CLIHandler{usecase: usecase}
}

func (h CLIHandler) ListTests(ctx context.Context, category string) ([]dto.TestOutput, error) {
	return h.usecase.ListTests(ctx, dto.ListTestsInput{Category: category})
}

func (h CLIHandler) GetTest(ctx context.Context, id string) (dto.TestDetailOutput, error) {
	return h.usecase.GetTest(ctx, id)
}

func (h CLIHandler) Init(ctx context.Context, force bool) (dto.InitCatalogOutput, error) {
	return h.usecase.InitCatalog(ctx, dto.InitCatalogInput{Force: force})
}
