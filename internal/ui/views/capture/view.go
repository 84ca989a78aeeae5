package capture

import (
	"context"
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	capturedto "fitlab/internal/modules/capture/dto"
	resultsdto "fitlab/internal/modules/results/dto"
	"fitlab/internal/ui/theme"
)

const (
	tickInterval = 100 * time.Millisecond
	recentShown  = 5
)

type Port interface {
	Open(ctx context.Context, testID string) (capturedto.AttemptOutput, error)
	Start(ctx context.Context) (capturedto.AttemptOutput, error)
	Rep(ctx context.Context, count int) (capturedto.AttemptOutput, error)
	Stop(ctx context.Context, athleteID, notes string) (capturedto.StopOutput, error)
	Reset(ctx context.Context) (capturedto.AttemptOutput, error)
	Status(ctx context.Context) (capturedto.AttemptOutput, error)
}

// AttemptMsg carries the attempt after any transition other than stop.
type AttemptMsg struct {
	Action  string
	Attempt capturedto.AttemptOutput
	Err     error
}

// StoppedMsg is emitted once an attempt is scored. A non-nil Err with a
// populated Out means the result was scored but not persisted.
type StoppedMsg struct {
	Out capturedto.StopOutput
	Err error
}

// TickMsg advances the on-screen timer of a running attempt.
type TickMsg struct {
	gen int
	at  time.Time
}

type Model struct {
	port    Port
	attempt capturedto.AttemptOutput
	last    *capturedto.ResultOutput
	recent  []resultsdto.TestResult
	elapsed time.Duration
	tickGen int
	note    string
	width   int
	height  int
}

func New(port Port) Model {
	return Model{port: port, attempt: capturedto.AttemptOutput{Phase: "ready"}}
}

func (m Model) Init() tea.Cmd {
	return m.run("status", func(ctx context.Context) (capturedto.AttemptOutput, error) {
		return m.port.Status(ctx)
	})
}

func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height

	case AttemptMsg:
		if msg.Err != nil {
			m.note = theme.Bad.Render(msg.Action + ": " + msg.Err.Error())
			return m, nil
		}
		m.note = ""
		return m.apply(msg.Attempt)

	case StoppedMsg:
		if msg.Out.Result.ID == "" {
			if msg.Err != nil {
				m.note = theme.Bad.Render("stop: " + msg.Err.Error())
			}
			return m, nil
		}
		result := msg.Out.Result
		m.last = &result
		m.note = ""
		if msg.Err != nil {
			m.note = theme.Bad.Render("not saved: " + msg.Err.Error())
		}
		return m.apply(msg.Out.Attempt)

	case TickMsg:
		if msg.gen != m.tickGen || m.attempt.Phase != "running" {
			return m, nil
		}
		m.elapsed = msg.at.Sub(m.attempt.StartedAt)
		return m, m.tick()

	case tea.KeyMsg:
		switch msg.String() {
		case "s":
			return m, m.Start()
		case " ", "space":
			return m, m.Rep(1)
		case "x":
			return m, m.Stop("", "")
		case "r":
			return m, m.Reset()
		}
	}
	return m, nil
}

func (m Model) apply(attempt capturedto.AttemptOutput) (Model, tea.Cmd) {
	wasRunning := m.attempt.Phase == "running"
	m.attempt = attempt
	m.elapsed = attempt.Elapsed
	if attempt.Phase == "running" && !wasRunning {
		m.tickGen++
		return m, m.tick()
	}
	return m, nil
}

func (m Model) tick() tea.Cmd {
	gen := m.tickGen
	return tea.Tick(tickInterval, func(t time.Time) tea.Msg {
		return TickMsg{gen: gen, at: t}
	})
}

// SetRecent replaces the results shown under the attempt panel.
func (m *Model) SetRecent(results []resultsdto.TestResult) {
	m.recent = results
}

func (m Model) Phase() string {
	return m.attempt.Phase
}

func (m Model) Open(testID string) tea.Cmd {
	return m.run("open", func(ctx context.Context) (capturedto.AttemptOutput, error) {
		return m.port.Open(ctx, testID)
	})
}

func (m Model) Start() tea.Cmd {
	return m.run("start", m.port.Start)
}

func (m Model) Rep(count int) tea.Cmd {
	return m.run("rep", func(ctx context.Context) (capturedto.AttemptOutput, error) {
		return m.port.Rep(ctx, count)
	})
}

func (m Model) Reset() tea.Cmd {
	return m.run("reset", m.port.Reset)
}

func (m Model) Stop(athleteID, notes string) tea.Cmd {
	port := m.port
	return func() tea.Msg {
		out, err := port.Stop(context.Background(), athleteID, notes)
		return StoppedMsg{Out: out, Err: err}
	}
}

func (m Model) run(action string, call func(context.Context) (capturedto.AttemptOutput, error)) tea.Cmd {
	return func() tea.Msg {
		attempt, err := call(context.Background())
		return AttemptMsg{Action: action, Attempt: attempt, Err: err}
	}
}

func (m Model) View() string {
	w := max(m.width/2, 40)
	panel := theme.Pane.Width(w).Render(m.renderAttempt())
	side := theme.Pane.Width(max(m.width-w-6, 30)).Render(m.renderRecent())
	return lipgloss.JoinHorizontal(lipgloss.Top, panel, side)
}

func (m Model) renderAttempt() string {
	var sb strings.Builder
	a := m.attempt
	if a.TestID == "" {
		sb.WriteString(theme.Title.Render("No test selected") + "\n\n")
		sb.WriteString(theme.Muted.Render("Pick a test on the Tests tab and press enter."))
		return sb.String()
	}
	sb.WriteString(theme.Title.Render(a.TestName) + "  " + theme.Muted.Render(a.Category) + "\n")
	sb.WriteString(theme.Phase(a.Phase) + "\n\n")
	sb.WriteString(theme.Clock.Render(formatElapsed(m.elapsed)) + "\n")
	if a.RepetitionBased {
		sb.WriteString(fmt.Sprintf("%s %d\n", theme.Muted.Render("reps:"), a.Reps))
	}
	if m.last != nil && m.last.ID == a.LastResultID {
		r := m.last
		sb.WriteString("\n" + theme.Title.Render("Result") + "\n")
		sb.WriteString(fmt.Sprintf("%s %s %s\n", theme.Muted.Render("score:"), formatScore(r.Score), r.Unit))
		sb.WriteString(fmt.Sprintf("%s %d\n", theme.Muted.Render("percentile:"), r.Percentile))
		if r.PersonalBest {
			sb.WriteString(theme.Good.Render("★ personal best") + "\n")
		}
	}
	if m.note != "" {
		sb.WriteString("\n" + m.note + "\n")
	}
	sb.WriteString("\n" + theme.Muted.Render(keyHints(a)))
	return sb.String()
}

func keyHints(a capturedto.AttemptOutput) string {
	switch a.Phase {
	case "running":
		if a.RepetitionBased {
			return "space: rep  x: stop  r: reset"
		}
		return "x: stop  r: reset"
	case "completed":
		return "s: go again  r: reset"
	default:
		return "s: start"
	}
}

func (m Model) renderRecent() string {
	var sb strings.Builder
	sb.WriteString(theme.Title.Render("Recent") + "\n\n")
	if len(m.recent) == 0 {
		sb.WriteString(theme.Muted.Render("No results yet"))
		return sb.String()
	}
	for i, r := range m.recent {
		if i == recentShown {
			break
		}
		line := fmt.Sprintf("%-16s %8s %-7s p%d", r.TestName, formatScore(r.Score), r.Unit, r.Percentile)
		if r.PersonalBest {
			line += " " + theme.Good.Render("PB")
		}
		sb.WriteString(line + "\n")
	}
	return sb.String()
}

func formatElapsed(d time.Duration) string {
	if d < 0 {
		d = 0
	}
	d = d.Truncate(100 * time.Millisecond)
	return fmt.Sprintf("%02d:%04.1f", int(d.Minutes()), (d % time.Minute).Seconds())
}

func formatScore(score float64) string {
	if score == float64(int64(score)) {
		return fmt.Sprintf("%d", int64(score))
	}
	return fmt.Sprintf("%.2f", score)
}
