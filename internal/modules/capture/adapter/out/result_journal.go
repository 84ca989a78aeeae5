package out

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/afero"

	"fitlab/internal/modules/capture/domain"
	captureout "fitlab/internal/modules/capture/port/out"
	"fitlab/internal/platform/markdown"
	"fitlab/internal/platform/slug"
)

// MarkdownResultJournal writes one note per result under
// <workspace>/results/YYYY/MM/DD.
type MarkdownResultJournal struct {
	fs            afero.Fs
	workspacePath string
}

func NewMarkdownResultJournal(fsys afero.Fs, workspacePath string) captureout.ResultJournal {
	return &MarkdownResultJournal{fs: fsys, workspacePath: workspacePath}
}

func (j *MarkdownResultJournal) Write(_ context.Context, result domain.Result) (string, error) {
	at := result.CompletedAt
	dir := filepath.Join(j.workspacePath, "results", at.Format("2006"), at.Format("01"), at.Format("02"))
	if err := j.fs.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("create result dir: %w", err)
	}
	path := filepath.Join(dir, fmt.Sprintf("%s-%s.md", at.Format("150405"), slug.Make(result.TestName)))

	fields := []markdown.Field{
		{Key: "schema_version", Value: domain.SchemaVersion},
		{Key: "id", Value: result.ID},
		{Key: "attempt_id", Value: result.AttemptID},
		{Key: "test_id", Value: result.TestID},
		{Key: "test_name", Value: result.TestName},
		{Key: "category", Value: result.Category.String()},
		{Key: "score", Value: result.Score},
		{Key: "unit", Value: result.Unit},
		{Key: "date", Value: result.Date},
		{Key: "percentile", Value: result.Percentile},
		{Key: "personal_best", Value: result.PersonalBest},
		{Key: "started_at", Value: result.StartedAt.Format(time.RFC3339)},
		{Key: "completed_at", Value: result.CompletedAt.Format(time.RFC3339)},
	}
	if result.AthleteID != "" {
		fields = append(fields, markdown.Field{Key: "athlete_id", Value: result.AthleteID})
	}

	var body strings.Builder
	fmt.Fprintf(&body, "# %s\n\n", result.TestName)
	fmt.Fprintf(&body, "- Score: %s %s\n", formatScore(result.Score), result.Unit)
	fmt.Fprintf(&body, "- Percentile: %d\n", result.Percentile)
	fmt.Fprintf(&body, "- Elapsed: %s\n", result.Elapsed.Round(10*time.Millisecond))
	if result.Reps > 0 {
		fmt.Fprintf(&body, "- Repetitions: %d\n", result.Reps)
	}
	if result.PersonalBest {
		body.WriteString("- Personal best\n")
	}
	if strings.TrimSpace(result.Notes) != "" {
		fmt.Fprintf(&body, "\n## Notes\n\n%s\n", strings.TrimSpace(result.Notes))
	}

	rendered, err := markdown.RenderFrontmatter(fields, body.String())
	if err != nil {
		return "", err
	}
	if err := afero.WriteFile(j.fs, path, []byte(rendered), 0o644); err != nil {
		return "", fmt.Errorf("write result note: %w", err)
	}
	return path, nil
}

func formatScore(score float64) string {
	return strings.TrimSuffix(strings.TrimRight(fmt.Sprintf("%.2f", score), "0"), ".")
}
