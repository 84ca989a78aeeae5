package domain

import (
	"maps"
	"time"

	"fitlab/internal/platform/category"
)

const (
	UnitSeconds = "seconds"
	UnitReps    = "reps"
	UnitScore   = "score"
)

// Measurement is what an attempt captured between start and stop.
type Measurement struct {
	Elapsed time.Duration
	Reps    int
}

type ScoringRule struct {
	Unit string
	// RepetitionBased rules accept AddRepetition while running.
	RepetitionBased bool
	// LowerIsBetter flips personal-best comparison for timed sprints.
	LowerIsBetter bool
	Score         func(Measurement) float64
}

func timed(m Measurement) float64 { return m.Elapsed.Seconds() }

func repsTimes(weight float64) func(Measurement) float64 {
	return func(m Measurement) float64 { return float64(m.Reps) * weight }
}

// ScoringTable maps categories to rules. Categories without an entry use
// the fallback rule.
type ScoringTable struct {
	rules    map[category.Category]ScoringRule
	fallback ScoringRule
}

func DefaultScoringTable() ScoringTable {
	return ScoringTable{
		rules: map[category.Category]ScoringRule{
			category.Speed:    {Unit: UnitSeconds, LowerIsBetter: true, Score: timed},
			category.Power:    {Unit: UnitReps, RepetitionBased: true, Score: repsTimes(2.5)},
			category.Strength: {Unit: UnitReps, RepetitionBased: true, Score: repsTimes(1.0)},
			category.Core:     {Unit: UnitSeconds, Score: timed},
		},
		// Only Power and Strength count reps, so the fallback scores 0
		// unless a category is registered with its own rule.
		fallback: ScoringRule{Unit: UnitScore, Score: repsTimes(1.0)},
	}
}

// With returns a copy of the table with rule registered for c.
func (t ScoringTable) With(c category.Category, rule ScoringRule) ScoringTable {
	rules := make(map[category.Category]ScoringRule, len(t.rules)+1)
	maps.Copy(rules, t.rules)
	rules[c] = rule
	return ScoringTable{rules: rules, fallback: t.fallback}
}

func (t ScoringTable) Rule(c category.Category) ScoringRule {
	if rule, ok := t.rules[c]; ok {
		return rule
	}
	return t.fallback
}

func (t ScoringTable) Score(c category.Category, m Measurement) (float64, string) {
	rule := t.Rule(c)
	return rule.Score(m), rule.Unit
}

// Beats reports whether candidate is a new personal best over incumbent.
func (t ScoringTable) Beats(c category.Category, candidate, incumbent float64) bool {
	if t.Rule(c).LowerIsBetter {
		return candidate < incumbent
	}
	return candidate > incumbent
}
