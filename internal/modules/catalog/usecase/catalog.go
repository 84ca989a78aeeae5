package usecase

import (
	"context"

	"fitlab/internal/modules/catalog/domain"
	"fitlab/internal/modules/catalog/dto"
	catalogin "fitlab/internal/modules/catalog/port/in"
	"fitlab/internal/modules/catalog/service"
)

type Interactor struct {
	svc *service.CatalogService
}

func NewInteractor(svc *service.CatalogService) catalogin.Usecase {
	return &Interactor{svc: svc}
}

func (i *Interactor) ListTests(ctx context.Context, input dto.ListTestsInput) ([]dto.TestOutput, error) {
	defs, err := i.svc.List(ctx, input.Category)
	if err != nil {
		return nil, err
	}
	out := make([]dto.TestOutput, 0, len(defs))
	for _, def := range defs {
		out = append(out, dto.TestOutput{
			ID:         def.ID,
			Name:       def.Name,
			Category:   string(def.Category),
			Difficulty: string(def.Difficulty),
			Duration:   def.Duration,
		})
	}
	return out, nil
}

func (i *Interactor) GetTest(ctx context.Context, id string) (dto.TestDetailOutput, error) {
	def, err := i.svc.Get(ctx, id)
	if err != nil {
		return dto.TestDetailOutput{}, err
	}
	return toDetail(def), nil
}

func (i *Interactor) InitCatalog(ctx context.Context, input dto.InitCatalogInput) (dto.InitCatalogOutput, error) {
	path, count, err := i.svc.Init(ctx, input.Force)
	if err != nil {
		return dto.InitCatalogOutput{}, err
	}
	return dto.InitCatalogOutput{Path: path, Count: count}, nil
}

func toDetail(def domain.TestDefinition) dto.TestDetailOutput {
	instructions := make([]string, len(def.Instructions))
	copy(instructions, def.Instructions)
	return dto.TestDetailOutput{
		ID:           def.ID,
		Name:         def.Name,
		Description:  def.Description,
		Category:     string(def.Category),
		Instructions: instructions,
		Duration:     def.Duration,
		Difficulty:   string(def.Difficulty),
	}
}
