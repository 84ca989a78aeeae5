package domain_test

import (
	"errors"
	"testing"
	"time"

	"fitlab/internal/modules/capture/domain"
	"fitlab/internal/platform/category"
	apperrors "fitlab/internal/platform/errors"
)

var t0 = time.Date(2024, 3, 1, 9, 30, 0, 0, time.UTC)

func run(t *testing.T, cat category.Category, reps int, elapsed time.Duration) (float64, string) {
	t.Helper()
	table := domain.DefaultScoringTable()
	a := domain.NewAttempt("a1", "t1", "Test", cat)
	if err := a.Start(t0); err != nil {
		t.Fatalf("start: %v", err)
	}
	for i := 0; i < reps; i++ {
		if err := a.AddRepetition(table.Rule(cat)); err != nil {
			t.Fatalf("add rep %d: %v", i, err)
		}
	}
	m, err := a.Stop(t0.Add(elapsed))
	if err != nil {
		t.Fatalf("stop: %v", err)
	}
	return table.Score(cat, m)
}

func TestScoringScenarios(t *testing.T) {
	t.Parallel()
	cases := []struct {
		name    string
		cat     category.Category
		reps    int
		elapsed time.Duration
		score   float64
		unit    string
	}{
		{"speed sprint", category.Speed, 0, 4800 * time.Millisecond, 4.8, "seconds"},
		{"power jumps", category.Power, 3, 10 * time.Second, 7.5, "reps"},
		{"strength push-ups", category.Strength, 5, 30 * time.Second, 5.0, "reps"},
		{"core plank", category.Core, 0, 62 * time.Second, 62, "seconds"},
		{"agility falls back", category.Agility, 0, 15 * time.Second, 0, "score"},
		{"custom category", category.Parse("balance"), 0, time.Second, 0, "score"},
	}
	for _, tc := range cases {
		score, unit := run(t, tc.cat, tc.reps, tc.elapsed)
		if score != tc.score || unit != tc.unit {
			t.Fatalf("%s: expected %.2f %s, got %.2f %s", tc.name, tc.score, tc.unit, score, unit)
		}
	}
}

func TestRepetitionsOnlyCountWhileRunning(t *testing.T) {
	t.Parallel()
	rule := domain.DefaultScoringTable().Rule(category.Strength)
	a := domain.NewAttempt("a1", "t1", "Push-ups", category.Strength)

	if err := a.AddRepetition(rule); !errors.Is(err, domain.ErrNotRunning) {
		t.Fatalf("expected not running in ready, got %v", err)
	}
	_ = a.Start(t0)
	for i := 0; i < 7; i++ {
		_ = a.AddRepetition(rule)
	}
	if _, err := a.Stop(t0.Add(time.Minute)); err != nil {
		t.Fatalf("stop: %v", err)
	}
	if err := a.AddRepetition(rule); !errors.Is(err, domain.ErrInvalidTransition) {
		t.Fatalf("expected invalid transition after stop, got %v", err)
	}
	if a.Reps != 7 {
		t.Fatalf("expected 7 reps, got %d", a.Reps)
	}
}

func TestTimedCategoryRejectsRepetitions(t *testing.T) {
	t.Parallel()
	rule := domain.DefaultScoringTable().Rule(category.Speed)
	a := domain.NewAttempt("a1", "t1", "40 Yard Dash", category.Speed)
	_ = a.Start(t0)
	if err := a.AddRepetition(rule); !errors.Is(err, domain.ErrNotRepetitionBased) {
		t.Fatalf("expected not repetition based, got %v", err)
	}
	if a.Reps != 0 || a.Phase != domain.PhaseRunning {
		t.Fatalf("rejected rep must not change state: %+v", a)
	}
}

func TestFallbackCategoriesRejectRepetitions(t *testing.T) {
	t.Parallel()
	table := domain.DefaultScoringTable()
	for _, cat := range []category.Category{category.Agility, category.General, category.Parse("balance")} {
		a := domain.NewAttempt("a1", "t1", "Drill", cat)
		_ = a.Start(t0)
		if err := a.AddRepetition(table.Rule(cat)); !errors.Is(err, domain.ErrNotRepetitionBased) {
			t.Fatalf("%s: expected not repetition based, got %v", cat, err)
		}
		if a.Reps != 0 || a.Phase != domain.PhaseRunning {
			t.Fatalf("%s: rejected rep must not change state: %+v", cat, a)
		}
	}
}

func TestStartWhileRunningIsRejected(t *testing.T) {
	t.Parallel()
	a := domain.NewAttempt("a1", "t1", "Push-ups", category.Strength)
	_ = a.Start(t0)
	_ = a.AddRepetition(domain.DefaultScoringTable().Rule(category.Strength))

	err := a.Start(t0.Add(time.Second))
	if !errors.Is(err, domain.ErrAlreadyRunning) || !errors.Is(err, apperrors.ErrConflict) {
		t.Fatalf("expected already running conflict, got %v", err)
	}
	if !a.StartedAt.Equal(t0) || a.Reps != 1 {
		t.Fatalf("rejected start must not touch state: %+v", a)
	}
}

func TestRestartFromCompletedClearsCounters(t *testing.T) {
	t.Parallel()
	rule := domain.DefaultScoringTable().Rule(category.Power)
	a := domain.NewAttempt("a1", "t1", "Vertical Jump", category.Power)
	_ = a.Start(t0)
	_ = a.AddRepetition(rule)
	_, _ = a.Stop(t0.Add(time.Second))

	later := t0.Add(time.Hour)
	if err := a.Start(later); err != nil {
		t.Fatalf("restart: %v", err)
	}
	if a.Reps != 0 || !a.StartedAt.Equal(later) || !a.StoppedAt.IsZero() {
		t.Fatalf("expected fresh running attempt, got %+v", a)
	}
}

func TestStopOutsideRunningFails(t *testing.T) {
	t.Parallel()
	a := domain.NewAttempt("a1", "t1", "Plank Hold", category.Core)
	if _, err := a.Stop(t0); !errors.Is(err, domain.ErrNotRunning) {
		t.Fatalf("expected not running, got %v", err)
	}
	if a.Phase != domain.PhaseReady {
		t.Fatalf("expected ready, got %s", a.Phase)
	}
}

func TestResetFromEveryPhase(t *testing.T) {
	t.Parallel()
	rule := domain.DefaultScoringTable().Rule(category.Strength)
	for _, phase := range []domain.Phase{domain.PhaseReady, domain.PhaseRunning, domain.PhaseCompleted} {
		a := domain.NewAttempt("a1", "t1", "Squat Test", category.Strength)
		if phase != domain.PhaseReady {
			_ = a.Start(t0)
			_ = a.AddRepetition(rule)
		}
		if phase == domain.PhaseCompleted {
			_, _ = a.Stop(t0.Add(time.Second))
		}
		a.Reset()
		if a.Phase != domain.PhaseReady || a.Reps != 0 || !a.StartedAt.IsZero() || !a.StoppedAt.IsZero() {
			t.Fatalf("reset from %s left state behind: %+v", phase, a)
		}
	}
}

func TestElapsedNeverDecreasesAndFreezesAfterStop(t *testing.T) {
	t.Parallel()
	a := domain.NewAttempt("a1", "t1", "Plank Hold", category.Core)
	_ = a.Start(t0)
	if got := a.Elapsed(t0.Add(3 * time.Second)); got != 3*time.Second {
		t.Fatalf("expected 3s, got %s", got)
	}
	if got := a.Elapsed(t0.Add(time.Second)); got != 3*time.Second {
		t.Fatalf("expected clamp at 3s after clock skew, got %s", got)
	}
	m, _ := a.Stop(t0.Add(2 * time.Second))
	if m.Elapsed != 3*time.Second {
		t.Fatalf("expected stop to keep 3s, got %s", m.Elapsed)
	}
	if got := a.Elapsed(t0.Add(time.Hour)); got != 3*time.Second {
		t.Fatalf("expected frozen elapsed, got %s", got)
	}
}

func TestScoringTableWithIsAdditive(t *testing.T) {
	t.Parallel()
	base := domain.DefaultScoringTable()
	extended := base.With(category.Agility, domain.ScoringRule{
		Unit:          domain.UnitSeconds,
		LowerIsBetter: true,
		Score:         func(m domain.Measurement) float64 { return m.Elapsed.Seconds() },
	})
	if unit := base.Rule(category.Agility).Unit; unit != domain.UnitScore {
		t.Fatalf("base table must be unchanged, got %s", unit)
	}
	score, unit := extended.Score(category.Agility, domain.Measurement{Elapsed: 9500 * time.Millisecond})
	if score != 9.5 || unit != domain.UnitSeconds {
		t.Fatalf("expected 9.5 seconds, got %.2f %s", score, unit)
	}
	if !extended.Beats(category.Agility, 9.1, 9.5) || extended.Beats(category.Strength, 9, 10) {
		t.Fatalf("unexpected personal-best direction")
	}
}

func TestSyntheticPercentileRangeAndDeterminism(t *testing.T) {
	t.Parallel()
	a := domain.SyntheticPercentile(42)
	b := domain.SyntheticPercentile(42)
	for i := 0; i < 500; i++ {
		x, y := a(), b()
		if x != y {
			t.Fatalf("same seed diverged at draw %d: %d vs %d", i, x, y)
		}
		if x < domain.MinPercentile || x > domain.MaxPercentile {
			t.Fatalf("percentile %d out of range", x)
		}
	}
	if domain.ClampPercentile(12) != 70 || domain.ClampPercentile(99) != 95 || domain.ClampPercentile(80) != 80 {
		t.Fatalf("unexpected clamp")
	}
}
