package category_test

import (
	"testing"

	"fitlab/internal/platform/category"
)

func TestParseNormalizesKnownAndCustomNames(t *testing.T) {
	t.Parallel()
	cases := map[string]category.Category{
		"speed":          category.Speed,
		"  POWER ":       category.Power,
		"strength":       category.Strength,
		"Core":           category.Core,
		"agility":        category.Agility,
		"":               category.General,
		"   ":            category.General,
		"balance  drill": category.Category("Balance Drill"),
	}
	for raw, want := range cases {
		if got := category.Parse(raw); got != want {
			t.Fatalf("parse %q: expected %q, got %q", raw, want, got)
		}
	}
}

func TestKnownReturnsCopy(t *testing.T) {
	t.Parallel()
	first := category.Known()
	first[0] = "mutated"
	if category.Known()[0] != category.Speed {
		t.Fatalf("known categories must not be shared")
	}
	if !category.Agility.IsKnown() || category.Category("Balance").IsKnown() {
		t.Fatalf("unexpected IsKnown result")
	}
}
