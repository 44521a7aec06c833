package ui

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/five82/onair/internal/logtail"
)

// logState holds all log-related state.
type logState struct {
	lines       []string
	follow      bool
	lastRefresh time.Time
	lastErr     error

	// dirty marks the viewport content for a re-render.
	dirty bool
}

// logLinesMsg carries lines read from the log file.
type logLinesMsg struct {
	lines []string
	err   error
}

// refreshLogs returns a command reading the log file, or nil when the last
// read is recent enough and force is false.
func (m *Model) refreshLogs(force bool) tea.Cmd {
	if m.logPath == "" {
		return nil
	}
	now := m.now()
	if !force && now.Sub(m.logState.lastRefresh) < LogRefreshInterval {
		return nil
	}
	m.logState.lastRefresh = now
	path := m.logPath
	return func() tea.Msg {
		lines, err := logtail.Read(path, LogBufferLimit)
		return logLinesMsg{lines: lines, err: err}
	}
}

// handleLogLines stores freshly read lines.
func (m *Model) handleLogLines(msg logLinesMsg) {
	m.logState.lastErr = msg.err
	if msg.err != nil {
		return
	}
	if equalLines(m.logState.lines, msg.lines) {
		return
	}
	m.logState.lines = msg.lines
	m.logState.dirty = true
	m.updateLogViewport()
}

// updateLogViewport sizes the viewport and re-renders its content if needed.
func (m *Model) updateLogViewport() {
	width := max(m.width-4, 0)
	height := max(m.height-5, 0)
	if m.logViewport.Width == 0 && m.logViewport.Height == 0 {
		m.logViewport = viewport.New(width, height)
		m.logState.dirty = true
	}
	m.logViewport.Width = width
	m.logViewport.Height = height
	m.logViewport.Style = lipgloss.NewStyle().Background(lipgloss.Color(m.theme.FocusBg))

	if m.logState.dirty {
		m.logViewport.SetContent(m.renderLogContent(width))
		m.logState.dirty = false
	}
	if m.logState.follow {
		m.logViewport.GotoBottom()
	}
}

// renderLogContent colours each line by level.
func (m Model) renderLogContent(width int) string {
	if len(m.logState.lines) == 0 {
		return m.theme.Styles().FaintText.Render("No log output yet.")
	}
	out := make([]string, 0, len(m.logState.lines))
	for _, line := range m.logState.lines {
		out = append(out, m.colorizeLogLine(logtail.Parse(line), width))
	}
	return strings.Join(out, "\n")
}

// colorizeLogLine renders one parsed entry.
func (m Model) colorizeLogLine(e logtail.Entry, width int) string {
	styles := m.theme.Styles().WithBackground(m.theme.FocusBg)
	if e.Level == "" {
		return styles.Text.Render(truncateWidth(e.Raw, width))
	}

	var parts []string
	if e.Time != "" {
		parts = append(parts, styles.FaintText.Render(shortLogTime(e.Time)))
	}
	parts = append(parts, levelStyle(styles, e.Level).Render(padLevel(e.Level)))
	if e.Caller != "" {
		parts = append(parts, styles.MutedText.Render(e.Caller))
	}
	parts = append(parts, styles.Text.Render(e.Message))
	if e.Fields != "" {
		parts = append(parts, styles.FaintText.Render(e.Fields))
	}
	return strings.Join(parts, styles.Text.Render(" "))
}

func levelStyle(styles Styles, level string) lipgloss.Style {
	switch level {
	case "DEBUG":
		return styles.FaintText
	case "INFO":
		return styles.InfoText
	case "WARN":
		return styles.WarningText
	default:
		return styles.DangerText
	}
}

func padLevel(level string) string {
	if len(level) >= 5 {
		return level
	}
	return level + strings.Repeat(" ", 5-len(level))
}

// shortLogTime drops the date and zone from an ISO8601 timestamp.
func shortLogTime(ts string) string {
	for _, layout := range []string{"2006-01-02T15:04:05.000Z0700", time.RFC3339Nano} {
		if t, err := time.Parse(layout, ts); err == nil {
			return t.Format("15:04:05")
		}
	}
	return ts
}

func equalLines(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

// renderLogs renders the log view.
func (m Model) renderLogs() string {
	styles := m.theme.Styles().WithBackground(m.theme.Surface)
	bg := NewBgStyle(m.theme.Surface)

	box := m.renderBox("Log "+truncateMiddle(m.logPath, 50), m.logViewport.View(), m.width, m.height-3)

	follow := bg.Render("FOLLOW", styles.SuccessText)
	if !m.logState.follow {
		follow = bg.Render("PAUSED", styles.WarningText)
	}
	parts := []string{
		follow,
		bg.Render(lineCount(len(m.logState.lines)), styles.MutedText),
	}
	if m.logState.lastErr != nil {
		parts = append(parts, bg.Render(truncate(m.logState.lastErr.Error(), 60), styles.DangerText))
	}
	status := lipgloss.NewStyle().
		Background(lipgloss.Color(m.theme.Surface)).
		Width(m.width).
		Render(bg.Join(parts, "  "))
	return box + "\n" + status
}

func lineCount(n int) string {
	if n == 1 {
		return "1 line"
	}
	return fmt.Sprintf("%d lines", n)
}

// handleLogsKey processes keyboard input for the log view.
func (m Model) handleLogsKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.ToggleFollow):
		m.logState.follow = !m.logState.follow
		if m.logState.follow {
			m.logViewport.GotoBottom()
			return m, m.refreshLogs(true)
		}
	case key.Matches(msg, m.keys.Up):
		m.logState.follow = false
		m.logViewport.ScrollUp(1)
	case key.Matches(msg, m.keys.Down):
		m.logViewport.ScrollDown(1)
	case key.Matches(msg, m.keys.HalfPageUp):
		m.logState.follow = false
		m.logViewport.HalfPageUp()
	case key.Matches(msg, m.keys.HalfPageDown):
		m.logViewport.HalfPageDown()
	case key.Matches(msg, m.keys.Top):
		m.logState.follow = false
		m.logViewport.GotoTop()
	case key.Matches(msg, m.keys.Bottom):
		m.logViewport.GotoBottom()
	}
	return m, nil
}
