package domain

import (
	"math/rand/v2"
	"sync"
)

const (
	MinPercentile = 70
	MaxPercentile = 95
)

// PercentileFunc stands in for a real norms lookup.
type PercentileFunc func() int

// SyntheticPercentile draws uniformly from [MinPercentile, MaxPercentile].
// The same seed yields the same sequence.
func SyntheticPercentile(seed uint64) PercentileFunc {
	var mu sync.Mutex
	rng := rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))
	return func() int {
		mu.Lock()
		defer mu.Unlock()
		return MinPercentile + rng.IntN(MaxPercentile-MinPercentile+1)
	}
}

func ClampPercentile(p int) int {
	if p < MinPercentile {
		return MinPercentile
	}
	if p > MaxPercentile {
		return MaxPercentile
	}
	return p
}

type PercentileQuery struct {
	TestName string
	Category string
	Score    float64
	Unit     string
}
