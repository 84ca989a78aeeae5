package usecase_test

import (
	"context"
	"errors"
	"testing"

	"fitlab/internal/modules/catalog/domain"
	"fitlab/internal/modules/catalog/dto"
	"fitlab/internal/modules/catalog/service"
	"fitlab/internal/modules/catalog/usecase"
	apperrors "fitlab/internal/platform/errors"
)

type fakeStore struct {
	defs  []domain.TestDefinition
	saved []domain.TestDefinition
	err   error
}

func (f *fakeStore) List(context.Context) ([]domain.TestDefinition, error) {
	return f.defs, f.err
}

func (f *fakeStore) SaveAll(_ context.Context, defs []domain.TestDefinition, _ bool) (string, error) {
	f.saved = defs
	return "/ws/tests.yaml", nil
}

func TestListFiltersByCategoryKeepingOrder(t *testing.T) {
	t.Parallel()
	uc := usecase.NewInteractor(service.NewCatalogService(&fakeStore{defs: domain.DefaultDefinitions()}))

	all, err := uc.ListTests(context.Background(), dto.ListTestsInput{})
	if err != nil {
		t.Fatalf("list all: %v", err)
	}
	if len(all) != 6 {
		t.Fatalf("expected six tests, got %d", len(all))
	}
	strength, err := uc.ListTests(context.Background(), dto.ListTestsInput{Category: "strength"})
	if err != nil {
		t.Fatalf("list strength: %v", err)
	}
	if len(strength) != 2 || strength[0].Name != "Push-ups" || strength[1].Name != "Squat Test" {
		t.Fatalf("unexpected strength tests: %+v", strength)
	}
}

func TestGetReturnsDetailOrNotFound(t *testing.T) {
	t.Parallel()
	uc := usecase.NewInteractor(service.NewCatalogService(&fakeStore{defs: domain.DefaultDefinitions()}))
	detail, err := uc.GetTest(context.Background(), "4")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if detail.Name != "Plank Hold" || detail.Category != "Core" || len(detail.Instructions) != 3 {
		t.Fatalf("unexpected detail: %+v", detail)
	}
	if _, err := uc.GetTest(context.Background(), "99"); !errors.Is(err, apperrors.ErrNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
}

func TestListRejectsDuplicateIDsAndInvalidDefinitions(t *testing.T) {
	t.Parallel()
	dup := domain.DefaultDefinitions()
	dup[1].ID = dup[0].ID
	uc := usecase.NewInteractor(service.NewCatalogService(&fakeStore{defs: dup}))
	if _, err := uc.ListTests(context.Background(), dto.ListTestsInput{}); err == nil {
		t.Fatalf("expected duplicate id error")
	}

	broken := domain.DefaultDefinitions()
	broken[2].Difficulty = "impossible"
	uc = usecase.NewInteractor(service.NewCatalogService(&fakeStore{defs: broken}))
	if _, err := uc.GetTest(context.Background(), "1"); err == nil {
		t.Fatalf("expected validation error")
	}
}

func TestInitWritesBuiltIns(t *testing.T) {
	t.Parallel()
	store := &fakeStore{}
	uc := usecase.NewInteractor(service.NewCatalogService(store))
	out, err := uc.InitCatalog(context.Background(), dto.InitCatalogInput{})
	if err != nil {
		t.Fatalf("init: %v", err)
	}
	if out.Count != 6 || len(store.saved) != 6 || out.Path == "" {
		t.Fatalf("unexpected init output: %+v", out)
	}
}
