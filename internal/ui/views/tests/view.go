package tests

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/list"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	catalogdto "fitlab/internal/modules/catalog/dto"
	"fitlab/internal/ui/theme"
)

type Port interface {
	ListTests(ctx context.Context, category string) ([]catalogdto.TestOutput, error)
	GetTest(ctx context.Context, id string) (catalogdto.TestDetailOutput, error)
}

type TestsLoadedMsg struct {
	Tests []catalogdto.TestOutput
	Err   error
}

type DetailLoadedMsg struct {
	Detail catalogdto.TestDetailOutput
	Err    error
}

type testItem struct {
	test catalogdto.TestOutput
}

func (i testItem) Title() string { return i.test.Name }
func (i testItem) Description() string {
	return fmt.Sprintf("%s  %s  %s", i.test.Category, i.test.Difficulty, i.test.Duration)
}
func (i testItem) FilterValue() string { return i.test.Name + " " + i.test.Category }

// Model lists the catalog on the left and the selected test's
// instructions on the right.
type Model struct {
	port    Port
	list    list.Model
	detail  catalogdto.TestDetailOutput
	preview viewport.Model
	spinner spinner.Model
	loading bool
	err     error
	width   int
	height  int
}

func New(port Port) Model {
	delegate := list.NewDefaultDelegate()
	delegate.Styles.SelectedTitle = delegate.Styles.SelectedTitle.Foreground(theme.Lavender).BorderForeground(theme.Lavender)
	delegate.Styles.SelectedDesc = delegate.Styles.SelectedDesc.Foreground(theme.Sapphire).BorderForeground(theme.Lavender)

	l := list.New(nil, delegate, 0, 0)
	l.Title = "Tests"
	l.Styles.Title = theme.Title
	l.SetShowStatusBar(true)
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

	return Model{
		port:    port,
		list:    l,
		preview: vp,
		spinner: sp,
		loading: true,
	}
}

func (m Model) Init() tea.Cmd {
	return tea.Batch(m.loadTestsCmd(), m.spinner.Tick)
}

func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	var cmds []tea.Cmd

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.resize()

	case TestsLoadedMsg:
		m.loading = false
		m.err = msg.Err
		if msg.Err != nil {
			return m, nil
		}
		items := make([]list.Item, len(msg.Tests))
		for i, t := range msg.Tests {
			items[i] = testItem{test: t}
		}
		cmds = append(cmds, m.list.SetItems(items))
		if len(msg.Tests) > 0 {
			cmds = append(cmds, m.loadDetailCmd(msg.Tests[0].ID))
		}

	case DetailLoadedMsg:
		if msg.Err == nil {
			m.detail = msg.Detail
			m.preview.SetContent(m.renderDetail())
		}

	case spinner.TickMsg:
		if !m.loading {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		cmds = append(cmds, cmd)
	}

	if !m.loading {
		var lCmd tea.Cmd
		prevIdx := m.list.Index()
		m.list, lCmd = m.list.Update(msg)
		cmds = append(cmds, lCmd)
		if m.list.Index() != prevIdx {
			if item, ok := m.list.SelectedItem().(testItem); ok {
				cmds = append(cmds, m.loadDetailCmd(item.test.ID))
			}
		}

		var vCmd tea.Cmd
		m.preview, vCmd = m.preview.Update(msg)
		cmds = append(cmds, vCmd)
	}

	return m, tea.Batch(cmds...)
}

func (m Model) View() string {
	if m.loading {
		return lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Center,
			m.spinner.View()+" Loading tests…")
	}
	if m.err != nil {
		return lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Center,
			theme.Bad.Render("catalog: "+m.err.Error()))
	}

	listW := m.width * 4 / 10
	detailW := m.width - listW

	listPane := lipgloss.NewStyle().
		Width(listW).
		Height(m.height).
		Render(m.list.View())

	detailPane := theme.Pane.
		Padding(0).
		Width(detailW - 2).
		Height(m.height - 2).
		Render(m.preview.View())

	return lipgloss.JoinHorizontal(lipgloss.Top, listPane, detailPane)
}

// SelectedTestID returns the highlighted test, if any.
func (m Model) SelectedTestID() (string, bool) {
	if item, ok := m.list.SelectedItem().(testItem); ok {
		return item.test.ID, true
	}
	return "", false
}

func (m Model) Filtering() bool {
	return m.list.FilterState() == list.Filtering
}

func (m *Model) resize() {
	listW := m.width * 4 / 10
	detailW := m.width - listW
	m.list.SetSize(listW, m.height)
	m.preview.Width = detailW - 4
	m.preview.Height = m.height - 4
}

func (m Model) renderDetail() string {
	d := m.detail
	if d.ID == "" {
		return theme.Muted.Render("Select a test to see instructions")
	}
	var sb strings.Builder
	sb.WriteString(theme.Title.Render(d.Name) + "\n\n")
	sb.WriteString(theme.Muted.Render("id:         ") + d.ID + "\n")
	sb.WriteString(theme.Muted.Render("category:   ") + d.Category + "\n")
	sb.WriteString(theme.Muted.Render("difficulty: ") + d.Difficulty + "\n")
	sb.WriteString(theme.Muted.Render("duration:   ") + d.Duration.String() + "\n")
	if d.Description != "" {
		sb.WriteString("\n" + d.Description + "\n")
	}
	if len(d.Instructions) > 0 {
		sb.WriteString("\n" + theme.Title.Render("Instructions") + "\n")
		for i, step := range d.Instructions {
			sb.WriteString(fmt.Sprintf("%d. %s\n", i+1, step))
		}
	}
	sb.WriteString("\n" + theme.Muted.Render("enter: open in Capture"))
	return sb.String()
}

func (m Model) loadTestsCmd() tea.Cmd {
	return func() tea.Msg {
		tests, err := m.port.ListTests(context.Background(), "")
		return TestsLoadedMsg{Tests: tests, Err: err}
	}
}

func (m Model) loadDetailCmd(id string) tea.Cmd {
	return func() tea.Msg {
		detail, err := m.port.GetTest(context.Background(), id)
		return DetailLoadedMsg{Detail: detail, Err: err}
	}
}
