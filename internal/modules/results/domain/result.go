package domain

import (
	"errors"
	"fmt"
	"strings"

	"fitlab/internal/platform/category"
)

const (
	SchemaVersion = 1
	// MaxRecent bounds the recent-results cache.
	MaxRecent = 10

	UnitSeconds = "seconds"
	UnitReps    = "reps"
	UnitScore   = "score"
)

var ErrStoreClosed = errors.New("results store is closed")

// TestResult is the immutable outcome of one completed attempt.
type TestResult struct {
	ID           string            `json:"id"`
	TestName     string            `json:"test_name"`
	Category     category.Category `json:"category"`
	Score        float64           `json:"score"`
	Unit         string            `json:"unit"`
	Date         string            `json:"date"`
	Percentile   int               `json:"percentile"`
	AthleteID    string            `json:"athlete_id,omitempty"`
	Notes        string            `json:"notes,omitempty"`
	PersonalBest bool              `json:"personal_best"`
	VideoURL     string            `json:"video_url,omitempty"`
}

func (r TestResult) Validate() error {
	if strings.TrimSpace(r.ID) == "" {
		return fmt.Errorf("result id is required")
	}
	if strings.TrimSpace(r.TestName) == "" {
		return fmt.Errorf("result %s: test name is required", r.ID)
	}
	if strings.TrimSpace(r.Unit) == "" {
		return fmt.Errorf("result %s: unit is required", r.ID)
	}
	if r.Percentile < 0 || r.Percentile > 100 {
		return fmt.Errorf("result %s: percentile %d out of range", r.ID, r.Percentile)
	}
	return nil
}

// Better reports whether candidate beats incumbent. Speed is timed,
// so lower wins; every other category rewards a higher score.
func Better(candidate, incumbent TestResult) bool {
	if candidate.Category == category.Speed {
		return candidate.Score < incumbent.Score
	}
	return candidate.Score > incumbent.Score
}

// RankKey orders results so a larger key is better. Speed times are
// negated, which keeps Better and leaderboard order in agreement.
func RankKey(r TestResult) float64 {
	if r.Category == category.Speed {
		return -r.Score
	}
	return r.Score
}

// PrependBounded returns (r :: cache) truncated to max entries.
// The input slice is never modified.
func PrependBounded(cache []TestResult, r TestResult, max int) []TestResult {
	size := len(cache) + 1
	if size > max {
		size = max
	}
	if size <= 0 {
		return []TestResult{}
	}
	out := make([]TestResult, 0, size)
	out = append(out, r)
	for _, item := range cache {
		if len(out) == size {
			break
		}
		out = append(out, item)
	}
	return out
}

// Take copies at most n entries; n <= 0 copies everything.
func Take(results []TestResult, n int) []TestResult {
	if n <= 0 || n > len(results) {
		n = len(results)
	}
	out := make([]TestResult, n)
	copy(out, results[:n])
	return out
}

func ContainsID(results []TestResult, id string) bool {
	for _, r := range results {
		if r.ID == id {
			return true
		}
	}
	return false
}

// PersonalBests keeps the best result per test name, in first-seen order.
func PersonalBests(results []TestResult) []TestResult {
	index := map[string]int{}
	out := make([]TestResult, 0, len(results))
	for _, r := range results {
		i, ok := index[r.TestName]
		if !ok {
			index[r.TestName] = len(out)
			out = append(out, r)
			continue
		}
		if Better(r, out[i]) {
			out[i] = r
		}
	}
	return out
}

// FallbackSample is served when the repository cannot be read.
func FallbackSample() []TestResult {
	return []TestResult{
		{ID: "1", TestName: "40 Yard Dash", Score: 4.8, Unit: UnitSeconds, Date: "2024-01-15", Percentile: 85, Category: category.Speed, PersonalBest: true},
		{ID: "2", TestName: "Vertical Jump", Score: 28.5, Unit: "inches", Date: "2024-01-14", Percentile: 72, Category: category.Power},
		{ID: "3", TestName: "Push-ups", Score: 45.0, Unit: UnitReps, Date: "2024-01-13", Percentile: 68, Category: category.Strength},
	}
}
