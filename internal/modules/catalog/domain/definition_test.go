package domain_test

import (
	"testing"
	"time"

	"fitlab/internal/modules/catalog/domain"
	"fitlab/internal/platform/category"
)

func TestDefaultDefinitionsAreValidAndUnique(t *testing.T) {
	t.Parallel()
	defs := domain.DefaultDefinitions()
	if len(defs) != 6 {
		t.Fatalf("expected six built-in tests, got %d", len(defs))
	}
	seen := map[string]struct{}{}
	for _, def := range defs {
		if err := def.Validate(); err != nil {
			t.Fatalf("built-in test %s invalid: %v", def.ID, err)
		}
		if _, ok := seen[def.ID]; ok {
			t.Fatalf("duplicate id %s", def.ID)
		}
		seen[def.ID] = struct{}{}
	}
	if defs[5].Category != category.Agility || defs[0].Category != category.Speed {
		t.Fatalf("unexpected categories: %s %s", defs[0].Category, defs[5].Category)
	}
}

func TestValidateRejectsBrokenDefinitions(t *testing.T) {
	t.Parallel()
	base := domain.TestDefinition{ID: "x", Name: "X", Duration: time.Minute, Difficulty: domain.DifficultyExpert}
	if err := base.Validate(); err != nil {
		t.Fatalf("base must be valid: %v", err)
	}
	cases := []func(*domain.TestDefinition){
		func(d *domain.TestDefinition) { d.ID = " " },
		func(d *domain.TestDefinition) { d.Name = "" },
		func(d *domain.TestDefinition) { d.Duration = -time.Second },
		func(d *domain.TestDefinition) { d.Difficulty = "heroic" },
	}
	for i, mutate := range cases {
		def := base
		mutate(&def)
		if err := def.Validate(); err == nil {
			t.Fatalf("case %d: expected validation error", i)
		}
	}
}
