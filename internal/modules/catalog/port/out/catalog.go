package out

import (
	"context"

	"fitlab/internal/modules/catalog/domain"
)

type DefinitionStore interface {
	List(ctx context.Context) ([]domain.TestDefinition, error)
	// SaveAll writes the whole catalog and returns where it went.
	// Without overwrite it fails if a catalog already exists.
	SaveAll(ctx context.Context, defs []domain.TestDefinition, overwrite bool) (string, error)
}
