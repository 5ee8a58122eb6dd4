package planviewer

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/log"

	"github.com/lox/idleplanner/internal/diagnosticsserver"
)

// SnapshotMsg carries one decoded diagnostics snapshot into the
// Bubble Tea event loop. The websocket reader goroutine delivers it
// via (*tea.Program).Send, the thread-safe way to push external
// events into a running program.
type SnapshotMsg diagnosticsserver.SnapshotData

// ConnErrMsg reports the reader goroutine's connection failing.
type ConnErrMsg struct{ Err error }

// ConnClosedMsg reports the stream ending normally (server shutdown).
type ConnClosedMsg struct{}

// Model is the Bubble Tea model for cmd/plan-viewer: a scrolling log
// of every snapshot received plus a sidebar showing the latest one,
// the same two-pane viewport+sidebar layout internal/tui/tui.go uses
// for the poker client, trimmed to a read-only one-way stream with no
// input pane.
type Model struct {
	addr   string
	logger *log.Logger

	logViewport viewport.Model
	history     []string
	latest      diagnosticsserver.SnapshotData
	haveLatest  bool
	snapshotN   int

	err      error
	quitting bool

	width  int
	height int
}

// NewModel returns a Model ready to run, addr being the diagnostics
// server's host:port (the same value cmd/planner replan --diagnostics-addr
// was started with).
func NewModel(addr string, logger *log.Logger) *Model {
	vp := viewport.New(10, 5)
	return &Model{addr: addr, logger: logger.WithPrefix("plan-viewer"), logViewport: vp}
}

func (m *Model) Init() tea.Cmd {
	return nil
}

func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height

	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c", "q", "esc":
			m.quitting = true
			return m, tea.Quit
		case "up", "k":
			m.logViewport.ScrollUp(1)
		case "down", "j":
			m.logViewport.ScrollDown(1)
		case "pgup", "b":
			m.logViewport.HalfPageUp()
		case "pgdown", "f":
			m.logViewport.HalfPageDown()
		case "home", "g":
			m.logViewport.GotoTop()
		case "end", "G":
			m.logViewport.GotoBottom()
		}

	case SnapshotMsg:
		m.latest = diagnosticsserver.SnapshotData(msg)
		m.haveLatest = true
		m.snapshotN++
		m.history = append(m.history, formatSnapshotLine(m.snapshotN, m.latest))
		m.logViewport.SetContent(strings.Join(m.history, "\n"))
		m.logViewport.GotoBottom()

	case ConnErrMsg:
		m.err = msg.Err
		m.quitting = true
		return m, tea.Quit

	case ConnClosedMsg:
		m.quitting = true
		return m, tea.Quit
	}

	var cmd tea.Cmd
	m.logViewport, cmd = m.logViewport.Update(msg)
	return m, cmd
}

func (m *Model) View() string {
	if m.quitting {
		if m.err != nil {
			return ErrorStyle.Render(fmt.Sprintf("connection lost: %v\n", m.err))
		}
		return ""
	}
	if m.width == 0 || m.height == 0 {
		return "connecting to " + m.addr + "...\n"
	}

	sidebar := m.renderSidebar()
	sidebarWidth := lipgloss.Width(sidebar) + 2
	logWidth := m.width - sidebarWidth - 2
	logHeight := m.height - 4

	m.logViewport.Width = logWidth
	m.logViewport.Height = logHeight

	logStyle := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(lipgloss.Color("#626262")).
		Width(logWidth).
		Height(logHeight)

	sidebarStyle := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(lipgloss.Color("#626262")).
		Width(sidebarWidth).
		Height(logHeight)

	header := HeaderStyle.Render(fmt.Sprintf(" idle planner diagnostics — %s ", m.addr))
	body := lipgloss.JoinHorizontal(lipgloss.Top, logStyle.Render(m.logViewport.View()), sidebarStyle.Render(sidebar))

	return lipgloss.JoinVertical(lipgloss.Top, header, body)
}

func (m *Model) renderSidebar() string {
	if !m.haveLatest {
		return InfoStyle.Render("waiting for first snapshot...")
	}

	s := m.latest
	var b strings.Builder
	writeStat(&b, "expanded", s.ExpandedNodes)
	writeStat(&b, "enqueued", s.EnqueuedNodes)
	writeStat(&b, "best credits", s.BestCredits)
	writeStat(&b, "frontier +", s.FrontierInserted)
	writeStat(&b, "frontier -", s.FrontierRemoved)
	b.WriteString(LabelStyle.Render("bucket uniqueness: "))
	b.WriteString(ValueStyle.Render(fmt.Sprintf("%.4f", s.BucketUniqueness)))
	b.WriteString("\n")
	if s.Replans > 0 {
		b.WriteString(WarningStyle.Render(fmt.Sprintf("replans: %d", s.Replans)))
		b.WriteString("\n")
		for category, count := range s.ReplanCategories {
			b.WriteString(LabelStyle.Render(fmt.Sprintf("  %s: %d\n", category, count)))
		}
	}
	b.WriteString(LabelStyle.Render(fmt.Sprintf("wall time: %dms", s.WallTimeMS)))

	return b.String()
}

func writeStat(b *strings.Builder, label string, value int) {
	b.WriteString(LabelStyle.Render(label + ": "))
	b.WriteString(ValueStyle.Render(fmt.Sprintf("%d", value)))
	b.WriteString("\n")
}

func formatSnapshotLine(n int, s diagnosticsserver.SnapshotData) string {
	return fmt.Sprintf("#%-4d expanded=%-6d enqueued=%-6d best=%-6d frontier(+%d/-%d)",
		n, s.ExpandedNodes, s.EnqueuedNodes, s.BestCredits, s.FrontierInserted, s.FrontierRemoved)
}
