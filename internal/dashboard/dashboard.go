// Package dashboard implements a small BubbleTea live view of the most
// recent plan/analysis pass, for taskgraphctl watch. Grounded on the
// teacher's internal/tui package's Model/Update/View shape (tui.go,
// styles.go) but scaled down to this CLI's single-screen needs: there
// is no tab/overlay/detail-panel stack here, just a status line and a
// wave list that redraws on every refresh.
package dashboard

import (
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/nexus-automations/taskgraph/internal/analyzer"
	"github.com/nexus-automations/taskgraph/internal/planner"
)

var (
	colorCyan   = lipgloss.Color("#00BFFF")
	colorGreen  = lipgloss.Color("#00FF87")
	colorRed    = lipgloss.Color("#FF5F5F")
	colorDim    = lipgloss.Color("#666666")
	colorWhite  = lipgloss.Color("#FFFFFF")

	styleHeader = lipgloss.NewStyle().Foreground(colorCyan).Bold(true)
	styleOK     = lipgloss.NewStyle().Foreground(colorGreen)
	styleErr    = lipgloss.NewStyle().Foreground(colorRed)
	styleDim    = lipgloss.NewStyle().Foreground(colorDim)
	styleWave   = lipgloss.NewStyle().Foreground(colorWhite)
)

// Refresh is one analyze+plan pass's result, pushed into the running
// program as a tea.Msg whenever the watched file changes.
type Refresh struct {
	Source    string
	At        time.Time
	Analysis  *analyzer.DependencyAnalysis
	Plan      *planner.Plan
	Err       error
}

// Model is the BubbleTea model backing the watch dashboard.
type Model struct {
	source string
	last   *Refresh
	width  int
}

// New creates a Model watching source.
func New(source string) Model {
	return Model{source: source}
}

func (m Model) Init() tea.Cmd { return nil }

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c", "esc":
			return m, tea.Quit
		}
	case tea.WindowSizeMsg:
		m.width = msg.Width
	case Refresh:
		m.last = &msg
	}
	return m, nil
}

func (m Model) View() string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s  %s\n", styleHeader.Render("taskgraphctl watch"), styleDim.Render(m.source))
	fmt.Fprintln(&b, styleDim.Render("press q to quit"))
	fmt.Fprintln(&b)

	if m.last == nil {
		fmt.Fprintln(&b, styleDim.Render("waiting for first analysis..."))
		return b.String()
	}

	fmt.Fprintf(&b, "last refresh: %s\n", m.last.At.Format(time.Kitchen))
	if m.last.Err != nil {
		fmt.Fprintln(&b, styleErr.Render("error: "+m.last.Err.Error()))
		return b.String()
	}

	if m.last.Analysis != nil {
		if len(m.last.Analysis.CircularChains) > 0 {
			fmt.Fprintln(&b, styleErr.Render(fmt.Sprintf("%d circular dependency chain(s)", len(m.last.Analysis.CircularChains))))
		} else {
			fmt.Fprintln(&b, styleOK.Render("no circular dependencies"))
		}
	}

	if m.last.Plan != nil {
		fmt.Fprintf(&b, "strategy: %s  max concurrency: %d\n", m.last.Plan.Strategy, m.last.Plan.MaxConcurrency)
		for i, grp := range m.last.Plan.Groups {
			fmt.Fprintln(&b, styleWave.Render(fmt.Sprintf("wave %d: %v", i+1, grp.TaskIDs)))
		}
	}
	return b.String()
}
