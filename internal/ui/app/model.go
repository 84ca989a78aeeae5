package app

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"fitlab/internal/ui/components"
	"fitlab/internal/ui/theme"
	captureview "fitlab/internal/ui/views/capture"
	resultsview "fitlab/internal/ui/views/results"
	testsview "fitlab/internal/ui/views/tests"
)

type tabID int

const (
	tabTests tabID = iota
	tabCapture
	tabResults
	tabCount
)

var tabLabels = [tabCount]string{"Tests", "Capture", "Results"}

type keyMap struct {
	Tab     key.Binding
	Help    key.Binding
	Palette key.Binding
	Quit    key.Binding
	Open    key.Binding
	Start   key.Binding
	Rep     key.Binding
	Stop    key.Binding
	Reset   key.Binding
	Delete  key.Binding
}

func defaultKeys() keyMap {
	return keyMap{
		Tab:     key.NewBinding(key.WithKeys("tab"), key.WithHelp("tab", "next tab")),
		Help:    key.NewBinding(key.WithKeys("?"), key.WithHelp("?", "help")),
		Palette: key.NewBinding(key.WithKeys(":"), key.WithHelp(":", "palette")),
		Quit:    key.NewBinding(key.WithKeys("ctrl+c", "q"), key.WithHelp("q", "quit")),
		Open:    key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "open test")),
		Start:   key.NewBinding(key.WithKeys("s"), key.WithHelp("s", "start")),
		Rep:     key.NewBinding(key.WithKeys(" "), key.WithHelp("space", "add rep")),
		Stop:    key.NewBinding(key.WithKeys("x"), key.WithHelp("x", "stop")),
		Reset:   key.NewBinding(key.WithKeys("r"), key.WithHelp("r", "reset")),
		Delete:  key.NewBinding(key.WithKeys("d"), key.WithHelp("d", "delete result")),
	}
}

func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Tab, k.Help, k.Palette, k.Quit}
}

func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Tab, k.Open, k.Delete},
		{k.Start, k.Rep, k.Stop, k.Reset},
		{k.Help, k.Palette, k.Quit},
	}
}

// Model is the root Bubble Tea model. It routes keys to the active tab,
// forwards capture and results messages to their views whichever tab is
// showing, and runs the command palette.
type Model struct {
	testsView   testsview.Model
	captureView captureview.Model
	resultsView resultsview.Model

	activeTab tabID
	keys      keyMap
	help      help.Model
	showHelp  bool
	palette   components.Palette
	status    string
	width     int
	height    int
}

func NewModel(catalog testsview.Port, capture captureview.Port, results resultsview.Port) Model {
	return Model{
		testsView:   testsview.New(catalog),
		captureView: captureview.New(capture),
		resultsView: resultsview.New(results),
		activeTab:   tabTests,
		keys:        defaultKeys(),
		help:        help.New(),
		palette:     components.NewPalette(),
		status:      "ready",
	}
}

func (m Model) Init() tea.Cmd {
	return tea.Batch(
		m.testsView.Init(),
		m.captureView.Init(),
		m.resultsView.Init(),
	)
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	if m.palette.Visible() {
		var cmd tea.Cmd
		m.palette, cmd = m.palette.Update(msg)
		return m, cmd
	}

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.palette.SetWidth(min(m.width-4, 80))
		m.help.Width = m.width
		m.propagateSize()
		return m, nil

	case captureview.AttemptMsg:
		if msg.Err == nil && msg.Action == "open" {
			m.status = "opened " + msg.Attempt.TestName
		}
		return m.updateCapture(msg)

	case captureview.TickMsg:
		return m.updateCapture(msg)

	case testsview.TestsLoadedMsg, testsview.DetailLoadedMsg:
		var cmd tea.Cmd
		m.testsView, cmd = m.testsView.Update(msg)
		return m, cmd

	case captureview.StoppedMsg:
		if msg.Out.Result.ID != "" {
			m.status = fmt.Sprintf("scored %s: %g %s", msg.Out.Result.TestName, msg.Out.Result.Score, msg.Out.Result.Unit)
		}
		next, cmd := m.updateCapture(msg)
		return next, tea.Batch(cmd, m.resultsView.Refresh())

	case resultsview.LoadedMsg:
		if msg.Err != nil {
			m.status = "results: " + msg.Err.Error()
		} else if msg.Load.Fallback {
			m.status = "results unavailable, showing sample data"
		}
		var cmd tea.Cmd
		m.resultsView, cmd = m.resultsView.Update(msg)
		m.captureView.SetRecent(m.resultsView.Results())
		return m, cmd

	case resultsview.DeletedMsg:
		if msg.Err != nil {
			m.status = "delete: " + msg.Err.Error()
			return m, nil
		}
		m.status = "deleted " + msg.ID
		return m, m.resultsView.Refresh()

	case components.PaletteSubmitMsg:
		return m.executePalette(msg.Input)

	case components.PaletteCancelMsg:
		m.status = "ready"
		return m, nil

	case tea.KeyMsg:
		if m.showHelp {
			if msg.String() == "?" || msg.String() == "esc" {
				m.showHelp = false
			}
			return m, nil
		}
		if m.subViewFiltering() {
			break
		}
		switch msg.String() {
		case "ctrl+c", "q":
			return m, tea.Quit
		case "tab":
			m.activeTab = (m.activeTab + 1) % tabCount
			return m, nil
		case "shift+tab":
			m.activeTab = (m.activeTab + tabCount - 1) % tabCount
			return m, nil
		case "?":
			m.showHelp = true
			return m, nil
		case ":":
			return m, m.palette.Open()
		case "enter":
			if m.activeTab == tabTests {
				if id, ok := m.testsView.SelectedTestID(); ok {
					m.activeTab = tabCapture
					return m, m.captureView.Open(id)
				}
			}
		}
	}

	var cmd tea.Cmd
	switch m.activeTab {
	case tabTests:
		m.testsView, cmd = m.testsView.Update(msg)
	case tabCapture:
		m.captureView, cmd = m.captureView.Update(msg)
	case tabResults:
		m.resultsView, cmd = m.resultsView.Update(msg)
	}
	return m, cmd
}

func (m Model) updateCapture(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd
	m.captureView, cmd = m.captureView.Update(msg)
	return m, cmd
}

func (m Model) View() string {
	tabBar := m.renderTabBar()
	statusBar := m.renderStatusBar()
	contentH := max(m.height-lipgloss.Height(tabBar)-lipgloss.Height(statusBar), 1)

	var content string
	switch {
	case m.showHelp:
		content = lipgloss.NewStyle().Width(m.width).Height(contentH).Render(m.help.View(m.keys))
	case m.palette.Visible():
		content = lipgloss.Place(m.width, contentH, lipgloss.Center, lipgloss.Center, m.palette.View())
	default:
		switch m.activeTab {
		case tabTests:
			content = m.testsView.View()
		case tabCapture:
			content = m.captureView.View()
		case tabResults:
			content = m.resultsView.View()
		}
	}
	return lipgloss.JoinVertical(lipgloss.Left, tabBar, content, statusBar)
}

func (m Model) renderTabBar() string {
	parts := make([]string, tabCount)
	for i := tabID(0); i < tabCount; i++ {
		if i == m.activeTab {
			parts[i] = theme.Hot.Render(" " + tabLabels[i] + " ")
		} else {
			parts[i] = theme.Muted.Render(" " + tabLabels[i] + " ")
		}
	}
	bar := "fitlab  " + strings.Join(parts, theme.Muted.Render(" │ "))
	return lipgloss.NewStyle().Background(theme.Mantle).Width(m.width).Render(bar) + "\n"
}

func (m Model) renderStatusBar() string {
	left := m.status
	if phase := m.captureView.Phase(); phase == "running" {
		left = theme.Phase(phase) + "  " + left
	}
	right := theme.Muted.Render("?:help  tab:switch  :::palette  q:quit")
	gap := max(m.width-lipgloss.Width(left)-lipgloss.Width(right), 1)
	bar := left + strings.Repeat(" ", gap) + right
	return "\n" + lipgloss.NewStyle().Background(theme.Mantle).Width(m.width).Render(bar)
}

func (m Model) executePalette(input string) (tea.Model, tea.Cmd) {
	parts := strings.Fields(input)
	if len(parts) == 0 {
		return m, nil
	}

	switch parts[0] {
	case "test:open":
		id := ""
		if len(parts) >= 2 {
			id = parts[1]
		} else if selected, ok := m.testsView.SelectedTestID(); ok {
			id = selected
		}
		if id == "" {
			m.status = "usage: test:open <id>"
			return m, nil
		}
		m.activeTab = tabCapture
		return m, m.captureView.Open(id)

	case "session:start":
		m.activeTab = tabCapture
		return m, m.captureView.Start()

	case "session:rep":
		count := 1
		if len(parts) >= 2 {
			n, err := strconv.Atoi(parts[1])
			if err != nil || n < 1 {
				m.status = "rep count must be a positive number"
				return m, nil
			}
			count = n
		}
		return m, m.captureView.Rep(count)

	case "session:stop":
		athlete, notes := "", ""
		if len(parts) >= 2 {
			athlete = parts[1]
		}
		if len(parts) >= 3 {
			notes = strings.Join(parts[2:], " ")
		}
		return m, m.captureView.Stop(athlete, notes)

	case "session:reset":
		return m, m.captureView.Reset()

	case "results:reload":
		m.activeTab = tabResults
		return m, m.resultsView.Reload()

	case "results:delete":
		if len(parts) < 2 {
			m.status = "usage: results:delete <id>"
			return m, nil
		}
		return m, m.resultsView.Delete(parts[1])

	default:
		m.status = "unknown command: " + parts[0]
	}
	return m, nil
}

// subViewFiltering reports whether the active tab's list filter is open,
// in which case global key bindings must yield to allow free typing.
func (m Model) subViewFiltering() bool {
	switch m.activeTab {
	case tabTests:
		return m.testsView.Filtering()
	case tabResults:
		return m.resultsView.Filtering()
	}
	return false
}

func (m *Model) propagateSize() {
	sz := tea.WindowSizeMsg{Width: m.width, Height: m.height - 3}
	m.testsView, _ = m.testsView.Update(sz)
	m.captureView, _ = m.captureView.Update(sz)
	m.resultsView, _ = m.resultsView.Update(sz)
}
