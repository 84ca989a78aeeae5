package out_test

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/spf13/afero"

	captureout "fitlab/internal/modules/capture/adapter/out"
	"fitlab/internal/modules/capture/domain"
	"fitlab/internal/platform/category"
	apperrors "fitlab/internal/platform/errors"
	"fitlab/internal/platform/markdown"
)

func TestFileAttemptStoreRoundTrip(t *testing.T) {
	t.Parallel()
	fsys := afero.NewMemMapFs()
	store := captureout.NewFileAttemptStore(fsys, "/ws")
	ctx := context.Background()

	if _, err := store.LoadActive(ctx); !errors.Is(err, apperrors.ErrNoActiveAttempt) {
		t.Fatalf("expected no active attempt, got %v", err)
	}
	attempt := domain.NewAttempt("a1", "3", "Push-ups", category.Strength)
	started := time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC)
	_ = attempt.Start(started)
	attempt.Reps = 4
	if err := store.SaveActive(ctx, attempt); err != nil {
		t.Fatalf("save: %v", err)
	}
	loaded, err := store.LoadActive(ctx)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if loaded.Phase != domain.PhaseRunning || loaded.Reps != 4 || !loaded.StartedAt.Equal(started) || loaded.Category != category.Strength {
		t.Fatalf("unexpected attempt: %+v", loaded)
	}
	if ok, _ := afero.Exists(fsys, "/ws/.fitlab/active-attempt.json"); !ok {
		t.Fatalf("expected checkpoint file")
	}
	if err := store.ClearActive(ctx); err != nil {
		t.Fatalf("clear: %v", err)
	}
	if err := store.ClearActive(ctx); err != nil {
		t.Fatalf("second clear: %v", err)
	}
	if _, err := store.LoadActive(ctx); !errors.Is(err, apperrors.ErrNoActiveAttempt) {
		t.Fatalf("expected cleared attempt, got %v", err)
	}
}

func TestMarkdownJournalWritesDatedNote(t *testing.T) {
	t.Parallel()
	fsys := afero.NewMemMapFs()
	journal := captureout.NewMarkdownResultJournal(fsys, "/ws")
	done := time.Date(2024, 3, 1, 9, 0, 5, 0, time.UTC)

	path, err := journal.Write(context.Background(), domain.Result{
		ID: "01HQ", TestName: "Vertical Jump", Category: category.Power, Score: 7.5, Unit: "reps",
		Date: "2024-03-01", Percentile: 88, Reps: 3, Elapsed: 5 * time.Second,
		StartedAt: done.Add(-5 * time.Second), CompletedAt: done, PersonalBest: true, Notes: "felt strong",
	})
	if err != nil {
		t.Fatalf("write: %v", err)
	}
	if path != "/ws/results/2024/03/01/090005-vertical-jump.md" {
		t.Fatalf("unexpected path %s", path)
	}
	raw, err := afero.ReadFile(fsys, path)
	if err != nil {
		t.Fatalf("read note: %v", err)
	}
	meta, body, err := markdown.SplitFrontmatter(string(raw))
	if err != nil {
		t.Fatalf("split: %v", err)
	}
	if meta["id"] != "01HQ" || meta["percentile"] != 88 || meta["personal_best"] != true {
		t.Fatalf("unexpected frontmatter: %#v", meta)
	}
	if !strings.Contains(body, "- Score: 7.5 reps") || !strings.Contains(body, "felt strong") {
		t.Fatalf("unexpected body: %s", body)
	}
}

func TestSyntheticPercentileSourceStaysInRange(t *testing.T) {
	t.Parallel()
	source := captureout.NewSyntheticPercentileSource(domain.SyntheticPercentile(7))
	for i := 0; i < 100; i++ {
		p, err := source.Percentile(context.Background(), domain.PercentileQuery{})
		if err != nil || p < 70 || p > 95 {
			t.Fatalf("unexpected percentile %d (%v)", p, err)
		}
	}
}
