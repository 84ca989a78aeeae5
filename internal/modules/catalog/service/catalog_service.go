package service

import (
	"context"
	"fmt"

	"fitlab/internal/modules/catalog/domain"
	catalogout "fitlab/internal/modules/catalog/port/out"
	"fitlab/internal/platform/category"
	apperrors "fitlab/internal/platform/errors"
)

type CatalogService struct {
	store catalogout.DefinitionStore
}

func NewCatalogService(store catalogout.DefinitionStore) *CatalogService {
	return &CatalogService{store: store}
}

func (s *CatalogService) List(ctx context.Context, filter string) ([]domain.TestDefinition, error) {
	defs, err := s.loadValidated(ctx)
	if err != nil {
		return nil, err
	}
	if filter == "" {
		return defs, nil
	}
	want := category.Parse(filter)
	out := make([]domain.TestDefinition, 0, len(defs))
	for _, def := range defs {
		if def.Category == want {
			out = append(out, def)
		}
	}
	return out, nil
}

func (s *CatalogService) Get(ctx context.Context, id string) (domain.TestDefinition, error) {
	defs, err := s.loadValidated(ctx)
	if err != nil {
		return domain.TestDefinition{}, err
	}
	for _, def := range defs {
		if def.ID == id {
			return def, nil
		}
	}
	return domain.TestDefinition{}, fmt.Errorf("test %q: %w", id, apperrors.ErrNotFound)
}

func (s *CatalogService) Init(ctx context.Context, force bool) (string, int, error) {
	defs := domain.DefaultDefinitions()
	path, err := s.store.SaveAll(ctx, defs, force)
	if err != nil {
		return "", 0, err
	}
	return path, len(defs), nil
}

func (s *CatalogService) loadValidated(ctx context.Context) ([]domain.TestDefinition, error) {
	defs, err := s.store.List(ctx)
	if err != nil {
		return nil, err
	}
	seen := map[string]struct{}{}
	for _, def := range defs {
		if err := def.Validate(); err != nil {
			return nil, err
		}
		if _, ok := seen[def.ID]; ok {
			return nil, fmt.Errorf("duplicate test id: %s", def.ID)
		}
		seen[def.ID] = struct{}{}
	}
	return defs, nil
}
