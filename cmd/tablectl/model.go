package main

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/table"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"tablecore/pkg/lockmgr"
	"tablecore/pkg/monitor"
)

const refreshInterval = 500 * time.Millisecond

// model is the tablectl operator TUI: a refreshing table of every
// registered table's lock state, plus a detail panel for the most recently
// detected deadlock across the fleet.
type model struct {
	registry      *monitor.Registry
	rows          table.Model
	width         int
	height        int
	lastErr       error
	lastDeadlocks []string
}

func newModel(reg *monitor.Registry) model {
	columns := []table.Column{
		{Title: "Table", Width: 20},
		{Title: "Lock State", Width: 14},
		{Title: "Waiters", Width: 9},
		{Title: "Rows (approx)", Width: 14},
	}
	t := table.New(
		table.WithColumns(columns),
		table.WithRows(nil),
		table.WithFocused(true),
		table.WithHeight(12),
	)

	styles := table.DefaultStyles()
	styles.Header = styles.Header.
		BorderStyle(lipgloss.NormalBorder()).
		BorderForeground(primaryColor).
		BorderBottom(true).
		Bold(true).
		Foreground(primaryColor)
	styles.Selected = styles.Selected.
		Foreground(bgDark).
		Background(accentColor).
		Bold(false)
	t.SetStyles(styles)

	return model{registry: reg, rows: t}
}

type tickMsg time.Time

func tick() tea.Cmd {
	return tea.Tick(refreshInterval, func(t time.Time) tea.Msg { return tickMsg(t) })
}

func (m model) Init() tea.Cmd {
	return tick()
}

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height

	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c", "q":
			return m, tea.Quit
		}

	case tickMsg:
		m.refresh()
		return m, tick()
	}

	var cmd tea.Cmd
	m.rows, cmd = m.rows.Update(msg)
	return m, cmd
}

func (m *model) refresh() {
	snapshots := m.registry.Snapshot()
	rows := make([]table.Row, 0, len(snapshots))
	for _, snap := range snapshots {
		rows = append(rows, table.Row{
			snap.Name,
			renderState(snap.State),
			fmt.Sprintf("%d", snap.WaiterCount),
			fmt.Sprintf("%d", snap.RowCount),
		})
	}
	m.rows.SetRows(rows)
	m.lastDeadlocks = collectDeadlocks(snapshots)
}

func renderState(s lockmgr.State) string {
	switch s {
	case lockmgr.Free:
		return stateFreeStyle.Render(s.String())
	case lockmgr.SharedHeld:
		return stateSharedStyle.Render(s.String())
	case lockmgr.ExclusiveHeld:
		return stateExclusiveStyle.Render(s.String())
	default:
		return s.String()
	}
}

func collectDeadlocks(snapshots []monitor.TableSnapshot) []string {
	var out []string
	for _, snap := range snapshots {
		if snap.HasDeadlock {
			out = append(out, fmt.Sprintf("%s: %s", snap.Name, snap.LastDeadlock))
		}
	}
	return out
}

func (m model) View() string {
	var b strings.Builder
	b.WriteString(titleStyle.Render("tablectl — lock manager monitor"))
	b.WriteString("\n")
	b.WriteString(m.rows.View())

	if len(m.lastDeadlocks) > 0 {
		b.WriteString("\n")
		b.WriteString(deadlockStyle.Render("Last detected deadlocks:\n" + strings.Join(m.lastDeadlocks, "\n")))
	}

	b.WriteString("\n")
	b.WriteString(statusBarStyle.Render("q to quit · refreshing every " + refreshInterval.String()))

	return appStyle.Render(b.String())
}
