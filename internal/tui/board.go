// Package tui renders a live task board: the persisted table reloaded
// on a timer, with the next-task directive pinned to the footer.
package tui

import (
	"fmt"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/table"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/felixgeelhaar/taskflow/internal/report"
	"github.com/felixgeelhaar/taskflow/internal/store"
	"github.com/felixgeelhaar/taskflow/internal/task"
)

const reloadInterval = time.Second

// Styles contains lipgloss styles for the board
type Styles struct {
	Title     lipgloss.Style
	Border    lipgloss.Style
	Directive lipgloss.Style
	Error     lipgloss.Style
	Muted     lipgloss.Style
	Help      lipgloss.Style
}

// DefaultStyles returns the default lipgloss styles
func DefaultStyles() Styles {
	return Styles{
		Title: lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("63")).
			MarginBottom(1),
		Border: lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("63")),
		Directive: lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("86")),
		Error: lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("196")),
		Muted: lipgloss.NewStyle().
			Foreground(lipgloss.Color("241")),
		Help: lipgloss.NewStyle().
			Foreground(lipgloss.Color("241")).
			MarginTop(1),
	}
}

type tickMsg time.Time

type reloadMsg struct {
	tasks []task.Task
	err   error
}

// Model is the board's bubbletea model.
type Model struct {
	tablePath string
	command   string

	tasks     []task.Task
	directive string
	lastError string
	updatedAt time.Time

	table   table.Model
	spinner spinner.Model
	styles  Styles

	width    int
	height   int
	quitting bool
}

// NewModel creates a board over the table at tablePath. command is the
// invocation name shown in the directive footer.
func NewModel(tablePath, command string) Model {
	sp := spinner.New()
	sp.Spinner = spinner.Dot

	columns := []table.Column{
		{Title: "#", Width: 6},
		{Title: "Title", Width: 36},
		{Title: "Status", Width: 12},
		{Title: "Phase", Width: 24},
		{Title: "Notes", Width: 32},
	}
	tbl := table.New(
		table.WithColumns(columns),
		table.WithFocused(true),
		table.WithHeight(12),
	)

	return Model{
		tablePath: tablePath,
		command:   command,
		table:     tbl,
		spinner:   sp,
		styles:    DefaultStyles(),
	}
}

// Init implements tea.Model
func (m Model) Init() tea.Cmd {
	return tea.Batch(m.spinner.Tick, m.reload, tick())
}

// Update implements tea.Model
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "esc", "ctrl+c":
			m.quitting = true
			return m, tea.Quit
		}

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.table.SetHeight(max(4, msg.Height-8))

	case tickMsg:
		return m, tea.Batch(m.reload, tick())

	case reloadMsg:
		if msg.err != nil {
			m.lastError = msg.err.Error()
		} else {
			m.lastError = ""
			m.tasks = msg.tasks
			m.directive = report.NextDirective(msg.tasks, m.command)
			m.table.SetRows(rows(msg.tasks))
		}
		m.updatedAt = time.Now()

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	}

	var cmd tea.Cmd
	m.table, cmd = m.table.Update(msg)
	return m, cmd
}

// View implements tea.Model
func (m Model) View() string {
	if m.quitting {
		return ""
	}

	var out string
	out += m.styles.Title.Render("Task board") + "\n"

	if m.lastError != "" {
		out += m.styles.Error.Render("cannot load "+m.tablePath) + "\n"
		out += m.styles.Muted.Render(m.lastError) + "\n"
	} else {
		out += m.styles.Border.Render(m.table.View()) + "\n"
		out += m.styles.Directive.Render(m.directive) + "\n"
	}

	refreshed := "waiting for first load"
	if !m.updatedAt.IsZero() {
		refreshed = fmt.Sprintf("refreshed %s", m.updatedAt.Format("15:04:05"))
	}
	out += m.styles.Help.Render(fmt.Sprintf("%s %s  •  q to quit", m.spinner.View(), refreshed))
	return out
}

// reload reads the table from disk. Errors are shown in the view, not
// fatal: the file may be mid-rewrite by a concurrent session.
func (m Model) reload() tea.Msg {
	st, err := store.Open(m.tablePath)
	if err != nil {
		return reloadMsg{err: err}
	}
	return reloadMsg{tasks: st.Tasks()}
}

func tick() tea.Cmd {
	return tea.Tick(reloadInterval, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

func rows(tasks []task.Task) []table.Row {
	ordered := make([]task.Task, len(tasks))
	copy(ordered, tasks)
	for i := 1; i < len(ordered); i++ {
		for j := i; j > 0 && ordered[j].Number.Less(ordered[j-1].Number); j-- {
			ordered[j], ordered[j-1] = ordered[j-1], ordered[j]
		}
	}

	out := make([]table.Row, 0, len(ordered))
	for _, t := range ordered {
		out = append(out, table.Row{
			t.Number.String(),
			t.Title,
			string(t.Status()),
			t.Phase.String(),
			t.Notes,
		})
	}
	return out
}

// Run starts the board and blocks until the user quits.
func Run(tablePath, command string) error {
	p := tea.NewProgram(NewModel(tablePath, command), tea.WithAltScreen())
	_, err := p.Run()
	return err
}
