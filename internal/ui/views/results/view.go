package results

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/list"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	resultsdto "fitlab/internal/modules/results/dto"
	"fitlab/internal/ui/theme"
)

// Limit is the most results the tab consumes from the store.
const Limit = 10

type Port interface {
	Recent(ctx context.Context, limit int) ([]resultsdto.TestResult, resultsdto.LoadOutput, error)
	Cached(ctx context.Context, limit int) ([]resultsdto.TestResult, error)
	Delete(ctx context.Context, id string) error
}

type LoadedMsg struct {
	Results []resultsdto.TestResult
	Load    resultsdto.LoadOutput
	Err     error
}

type DeletedMsg struct {
	ID  string
	Err error
}

type resultItem struct {
	result resultsdto.TestResult
}

func (i resultItem) Title() string {
	title := i.result.TestName
	if i.result.PersonalBest {
		title += " ★"
	}
	return title
}

func (i resultItem) Description() string {
	r := i.result
	return fmt.Sprintf("%s  %g %s  p%d  %s", r.Date, r.Score, r.Unit, r.Percentile, r.Category)
}

func (i resultItem) FilterValue() string { return i.result.TestName + " " + i.result.Category }

type Model struct {
	port     Port
	list     list.Model
	preview  viewport.Model
	spinner  spinner.Model
	results  []resultsdto.TestResult
	fallback bool
	loading  bool
	err      error
	width    int
	height   int
}

func New(port Port) Model {
	delegate := list.NewDefaultDelegate()
	delegate.Styles.SelectedTitle = delegate.Styles.SelectedTitle.Foreground(theme.Lavender).BorderForeground(theme.Lavender)
	delegate.Styles.SelectedDesc = delegate.Styles.SelectedDesc.Foreground(theme.Sapphire).BorderForeground(theme.Lavender)

	l := list.New(nil, delegate, 0, 0)
	l.Title = "Recent results"
	l.Styles.Title = theme.Title
	l.SetShowStatusBar(false)
	l.SetFilteringEnabled(true)
	l.SetShowHelp(false)

	vp := viewport.New(0, 0)
	vp.Style = lipgloss.NewStyle().
		Background(theme.Mantle).
		Foreground(theme.Text).
		Padding(1)

	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = lipgloss.NewStyle().Foreground(theme.Lavender)

	return Model{port: port, list: l, preview: vp, spinner: sp, loading: true}
}

func (m Model) Init() tea.Cmd {
	return tea.Batch(m.Reload(), m.spinner.Tick)
}

// Reload re-reads the store in the background.
func (m Model) Reload() tea.Cmd {
	port := m.port
	return func() tea.Msg {
		results, load, err := port.Recent(context.Background(), Limit)
		return LoadedMsg{Results: results, Load: load, Err: err}
	}
}

// Refresh re-reads the store's cache without reloading the repository,
// so unsaved optimistic results stay visible.
func (m Model) Refresh() tea.Cmd {
	port := m.port
	fallback := m.fallback
	return func() tea.Msg {
		results, err := port.Cached(context.Background(), Limit)
		return LoadedMsg{Results: results, Load: resultsdto.LoadOutput{Count: len(results), Fallback: fallback, Applied: true}, Err: err}
	}
}

func (m Model) Delete(id string) tea.Cmd {
	port := m.port
	return func() tea.Msg {
		return DeletedMsg{ID: id, Err: port.Delete(context.Background(), id)}
	}
}

func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	var cmds []tea.Cmd

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.resize()

	case LoadedMsg:
		m.loading = false
		m.err = msg.Err
		if msg.Err != nil {
			return m, nil
		}
		m.results = msg.Results
		m.fallback = msg.Load.Fallback
		items := make([]list.Item, len(msg.Results))
		for i, r := range msg.Results {
			items[i] = resultItem{result: r}
		}
		cmds = append(cmds, m.list.SetItems(items))
		m.preview.SetContent(m.renderDetail())

	case spinner.TickMsg:
		if !m.loading {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		cmds = append(cmds, cmd)

	case tea.KeyMsg:
		if msg.String() == "d" && !m.Filtering() {
			if id, ok := m.SelectedResultID(); ok {
				return m, m.Delete(id)
			}
		}
	}

	if !m.loading {
		var lCmd tea.Cmd
		prevIdx := m.list.Index()
		m.list, lCmd = m.list.Update(msg)
		cmds = append(cmds, lCmd)
		if m.list.Index() != prevIdx {
			m.preview.SetContent(m.renderDetail())
		}
	}
	return m, tea.Batch(cmds...)
}

func (m Model) View() string {
	if m.loading {
		return lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Center,
			m.spinner.View()+" Loading results…")
	}
	if m.err != nil {
		return lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Center,
			theme.Bad.Render("results: "+m.err.Error()))
	}
	listW := m.width / 2
	listPane := lipgloss.NewStyle().Width(listW).Height(m.height).Render(m.list.View())
	detailPane := theme.Pane.
		Padding(0).
		Width(m.width - listW - 2).
		Height(m.height - 2).
		Render(m.preview.View())
	return lipgloss.JoinHorizontal(lipgloss.Top, listPane, detailPane)
}

func (m Model) Results() []resultsdto.TestResult {
	return m.results
}

func (m Model) SelectedResultID() (string, bool) {
	if item, ok := m.list.SelectedItem().(resultItem); ok {
		return item.result.ID, true
	}
	return "", false
}

func (m Model) Filtering() bool {
	return m.list.FilterState() == list.Filtering
}

func (m *Model) resize() {
	listW := m.width / 2
	m.list.SetSize(listW, m.height)
	m.preview.Width = m.width - listW - 4
	m.preview.Height = m.height - 4
}

func (m Model) renderDetail() string {
	var sb strings.Builder
	if m.fallback {
		sb.WriteString(theme.Hot.Render("Sample data: results could not be loaded") + "\n\n")
	}
	item, ok := m.list.SelectedItem().(resultItem)
	if !ok {
		sb.WriteString(theme.Muted.Render("No results yet"))
		return sb.String()
	}
	r := item.result
	sb.WriteString(theme.Title.Render(r.TestName) + "\n\n")
	sb.WriteString(theme.Muted.Render("id:         ") + r.ID + "\n")
	sb.WriteString(theme.Muted.Render("date:       ") + r.Date + "\n")
	sb.WriteString(theme.Muted.Render("category:   ") + r.Category + "\n")
	sb.WriteString(fmt.Sprintf("%s%g %s\n", theme.Muted.Render("score:      "), r.Score, r.Unit))
	sb.WriteString(fmt.Sprintf("%s%d\n", theme.Muted.Render("percentile: "), r.Percentile))
	if r.AthleteID != "" {
		sb.WriteString(theme.Muted.Render("athlete:    ") + r.AthleteID + "\n")
	}
	if r.PersonalBest {
		sb.WriteString(theme.Good.Render("personal best") + "\n")
	}
	if r.Notes != "" {
		sb.WriteString("\n" + r.Notes + "\n")
	}
	sb.WriteString("\n" + theme.Muted.Render("d: delete"))
	return sb.String()
}
