package in

import (
	"context"

	"fitlab/internal/modules/catalog/dto"
)

type Usecase interface {
	ListTests(ctx context.Context, input dto.ListTestsInput) ([]dto.TestOutput, error)
	GetTest(ctx context.Context, id string) (dto.TestDetailOutput, error)
	InitCatalog(ctx context.Context, input dto.InitCatalogInput) (dto.InitCatalogOutput, error)
}
