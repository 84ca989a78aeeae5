package domain

import (
	"time"

	"fitlab/internal/platform/category"
)

const SchemaVersion = 1

type Phase string

const (
	PhaseReady     Phase = "ready"
	PhaseRunning   Phase = "running"
	PhaseCompleted Phase = "completed"
)

// Attempt is one try at a catalog test. Only the Result it produces
// outlives it; the JSON form exists so separate CLI runs can share one
// attempt.
type Attempt struct {
	ID        string            `json:"id"`
	TestID    string            `json:"test_id"`
	TestName  string            `json:"test_name"`
	Category  category.Category `json:"category"`
	Phase     Phase             `json:"phase"`
	StartedAt time.Time         `json:"started_at,omitzero"`
	StoppedAt time.Time         `json:"stopped_at,omitzero"`
	Reps      int               `json:"reps"`
	// Watermark is the largest elapsed value reported while running.
	Watermark    time.Duration `json:"elapsed_watermark"`
	LastResultID string        `json:"last_result_id,omitempty"`
}

func NewAttempt(id, testID, testName string, cat category.Category) Attempt {
	return Attempt{ID: id, TestID: testID, TestName: testName, Category: cat, Phase: PhaseReady}
}

// Start is allowed from Ready and Completed. A second start while
// running is rejected so the first start timestamp is never lost.
func (a *Attempt) Start(now time.Time) error {
	if a.Phase == PhaseRunning {
		return ErrAlreadyRunning
	}
	a.Phase = PhaseRunning
	a.StartedAt = now
	a.StoppedAt = time.Time{}
	a.Reps = 0
	a.Watermark = 0
	return nil
}

func (a *Attempt) AddRepetition(rule ScoringRule) error {
	if a.Phase != PhaseRunning {
		return ErrNotRunning
	}
	if !rule.RepetitionBased {
		return ErrNotRepetitionBased
	}
	a.Reps++
	return nil
}

// Stop freezes the attempt and returns what the scoring rule needs.
func (a *Attempt) Stop(now time.Time) (Measurement, error) {
	if a.Phase != PhaseRunning {
		return Measurement{}, ErrNotRunning
	}
	elapsed := a.Elapsed(now)
	a.Phase = PhaseCompleted
	a.StoppedAt = a.StartedAt.Add(elapsed)
	return Measurement{Elapsed: elapsed, Reps: a.Reps}, nil
}

// Reset returns to Ready from any phase. The last result id survives so
// callers can still point at what was just recorded.
func (a *Attempt) Reset() {
	a.Phase = PhaseReady
	a.StartedAt = time.Time{}
	a.StoppedAt = time.Time{}
	a.Reps = 0
	a.Watermark = 0
}

// Elapsed never goes backwards while running, even if the clock does.
func (a *Attempt) Elapsed(now time.Time) time.Duration {
	switch a.Phase {
	case PhaseRunning:
		d := now.Sub(a.StartedAt)
		if d < a.Watermark {
			d = a.Watermark
		}
		a.Watermark = d
		return d
	case PhaseCompleted:
		return a.StoppedAt.Sub(a.StartedAt)
	default:
		return 0
	}
}

// Result is the scored outcome of a stopped attempt.
type Result struct {
	ID           string
	AttemptID    string
	TestID       string
	TestName     string
	Category     category.Category
	Score        float64
	Unit         string
	Date         string
	Percentile   int
	Elapsed      time.Duration
	Reps         int
	StartedAt    time.Time
	CompletedAt  time.Time
	AthleteID    string
	Notes        string
	PersonalBest bool
}
