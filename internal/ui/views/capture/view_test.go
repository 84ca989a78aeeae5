package capture

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	capturedto "fitlab/internal/modules/capture/dto"
)

type stubPort struct{}

func (stubPort) Open(context.Context, string) (capturedto.AttemptOutput, error) {
	return capturedto.AttemptOutput{}, nil
}
func (stubPort) Start(context.Context) (capturedto.AttemptOutput, error) {
	return capturedto.AttemptOutput{}, nil
}
func (stubPort) Rep(context.Context, int) (capturedto.AttemptOutput, error) {
	return capturedto.AttemptOutput{}, nil
}
func (stubPort) Stop(context.Context, string, string) (capturedto.StopOutput, error) {
	return capturedto.StopOutput{}, nil
}
func (stubPort) Reset(context.Context) (capturedto.AttemptOutput, error) {
	return capturedto.AttemptOutput{}, nil
}
func (stubPort) Status(context.Context) (capturedto.AttemptOutput, error) {
	return capturedto.AttemptOutput{}, nil
}

func TestFormatElapsed(t *testing.T) {
	t.Parallel()
	cases := map[time.Duration]string{
		0:                                     "00:00.0",
		-time.Second:                          "00:00.0",
		4*time.Second + 870*time.Millisecond:  "00:04.8",
		61*time.Second + 500*time.Millisecond: "01:01.5",
	}
	for in, want := range cases {
		if got := formatElapsed(in); got != want {
			t.Fatalf("formatElapsed(%s): expected %q, got %q", in, want, got)
		}
	}
}

func TestFormatScore(t *testing.T) {
	t.Parallel()
	if got := formatScore(42); got != "42" {
		t.Fatalf("expected 42, got %q", got)
	}
	if got := formatScore(4.876); got != "4.88" {
		t.Fatalf("expected 4.88, got %q", got)
	}
}

func TestRunningAttemptStartsTickerOnce(t *testing.T) {
	t.Parallel()
	m := New(stubPort{})
	started := time.Now()
	running := capturedto.AttemptOutput{TestID: "sprint", TestName: "40-Yard Dash", Phase: "running", StartedAt: started}

	m, cmd := m.Update(AttemptMsg{Action: "start", Attempt: running})
	if cmd == nil {
		t.Fatalf("expected tick command after start")
	}
	gen := m.tickGen

	m, cmd = m.Update(AttemptMsg{Action: "rep", Attempt: running})
	if cmd != nil || m.tickGen != gen {
		t.Fatalf("expected no second ticker while running, gen %d -> %d", gen, m.tickGen)
	}

	m, cmd = m.Update(TickMsg{gen: gen, at: started.Add(1500 * time.Millisecond)})
	if cmd == nil {
		t.Fatalf("expected ticker to continue")
	}
	if m.elapsed != 1500*time.Millisecond {
		t.Fatalf("expected elapsed 1.5s, got %s", m.elapsed)
	}

	if _, cmd = m.Update(TickMsg{gen: gen - 1, at: started}); cmd != nil {
		t.Fatalf("expected stale tick to be dropped")
	}
}

func TestStoppedWithSaveErrorKeepsResult(t *testing.T) {
	t.Parallel()
	m := New(stubPort{})
	out := capturedto.StopOutput{
		Attempt: capturedto.AttemptOutput{TestID: "sprint", TestName: "40-Yard Dash", Phase: "completed", LastResultID: "r1"},
		Result:  capturedto.ResultOutput{ID: "r1", TestName: "40-Yard Dash", Score: 4.8, Unit: "seconds", Percentile: 85},
	}
	m, _ = m.Update(StoppedMsg{Out: out, Err: errors.New("disk full")})
	if m.last == nil || m.last.ID != "r1" {
		t.Fatalf("expected scored result to be kept")
	}
	view := m.renderAttempt()
	if !strings.Contains(view, "4.80") || !strings.Contains(view, "disk full") {
		t.Fatalf("expected score and save error in view, got %q", view)
	}
}

func TestStoppedWithoutResultShowsError(t *testing.T) {
	t.Parallel()
	m := New(stubPort{})
	m, _ = m.Update(StoppedMsg{Err: errors.New("no active attempt")})
	if m.last != nil {
		t.Fatalf("expected no result")
	}
	if !strings.Contains(m.note, "no active attempt") {
		t.Fatalf("expected error note, got %q", m.note)
	}
}
