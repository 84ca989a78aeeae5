package domain

import (
	"fmt"

	"fitlab/internal/platform/category"
)

// WritePolicy decides what submit does when persistence fails.
type WritePolicy string

const (
	// WriteOptimistic updates the cache even if the save failed.
	WriteOptimistic WritePolicy = "optimistic"
	// WriteStrict surfaces the save error and leaves the cache alone.
	WriteStrict WritePolicy = "strict"
)

func ParseWritePolicy(raw string) (WritePolicy, error) {
	switch WritePolicy(raw) {
	case "", WriteOptimistic:
		return WriteOptimistic, nil
	case WriteStrict:
		return WriteStrict, nil
	default:
		return "", fmt.Errorf("unsupported write policy %q", raw)
	}
}

type Order string

const (
	OrderNewest Order = "newest"
	// OrderBest ranks by RankKey, best first.
	OrderBest   Order = "best"
)

// Filter narrows repository queries. Zero values match everything.
type Filter struct {
	AthleteID string
	TestName  string
	Category  category.Category
	Limit     int
	Order     Order
}
