package ui

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"

	"github.com/five82/onair/internal/httpbridge"
	"github.com/five82/onair/internal/nhk"
)

const logoText = "NHK now"

// renderHeader renders the top bar: logo, service tabs and request status.
func (m Model) renderHeader() string {
	styles := m.theme.Styles().WithBackground(m.theme.Surface)
	bg := NewBgStyle(m.theme.Surface)
	compact := m.width < LayoutCompactWidth

	parts := []string{bg.Render(logoText, styles.Logo)}
	parts = append(parts, m.renderServiceTabs(styles, bg, compact))

	if m.source != nil {
		parts = append(parts, bg.Render("Area:", styles.MutedText)+bg.Space()+
			bg.Render(m.source.Area(), styles.Text))
		if !m.source.HasKey() {
			parts = append(parts, bg.Render("NO API KEY", styles.DangerText))
		}
		parts = append(parts, m.renderSlotStatus(styles, bg))
	}

	if m.lastErr != nil {
		maxErr := 60
		if compact {
			maxErr = 30
		}
		parts = append(parts,
			bg.Render("!", styles.WarningText.Bold(true))+bg.Space()+
				bg.Render(truncate(m.lastErr.Error(), maxErr), styles.WarningText))
	}

	return lipgloss.NewStyle().
		Background(lipgloss.Color(m.theme.Surface)).
		Foreground(lipgloss.Color(m.theme.Text)).
		Width(m.width).
		Render(bg.Join(parts, "  "))
}

// renderServiceTabs renders one tab per service with the active one selected.
// Services whose last refresh failed are marked with "!".
func (m Model) renderServiceTabs(styles Styles, bg BgStyle, compact bool) string {
	failing := make(map[nhk.Service]bool)
	if m.source != nil {
		for _, svc := range m.source.Failing() {
			failing[svc] = true
		}
	}

	tabs := make([]string, 0, len(nhk.Services))
	for i, svc := range nhk.Services {
		label := fmt.Sprintf("%d %s", i+1, svc.Name())
		if compact {
			label = fmt.Sprintf("%d %s", i+1, strings.ToUpper(svc.ID()))
		}
		if failing[svc] {
			label += "!"
		}
		switch {
		case svc == m.service:
			tabs = append(tabs, styles.Selected.Render(" "+label+" "))
		case failing[svc]:
			tabs = append(tabs, bg.Render(" "+label+" ", styles.DangerText))
		default:
			tabs = append(tabs, bg.Render(" "+label+" ", styles.MutedText))
		}
	}
	return strings.Join(tabs, "")
}

// renderSlotStatus shows where the active service's request is and when the
// guide last refreshed.
func (m Model) renderSlotStatus(styles Styles, bg BgStyle) string {
	slot := m.source.Slot(m.service)
	guide := m.source.Guide(m.service)

	var b strings.Builder
	switch slot {
	case httpbridge.SlotRequested, httpbridge.SlotInflight:
		b.WriteString(bg.Render(m.spinner.View(), styles.AccentText))
		b.WriteString(bg.Space())
	}
	b.WriteString(styles.SlotStyle(slot).Render(strings.ToUpper(slot.String())))

	switch {
	case guide.IsOffline():
		b.WriteString(bg.Space())
		b.WriteString(bg.Render(classifyConnectionError(guide.LastError), styles.DangerText))
	case guide.LastError != nil:
		b.WriteString(bg.Space())
		b.WriteString(bg.Render("Retrying...", styles.WarningText))
	}

	if ts := formatTimestamp(guide.LastUpdated, m.now()); ts != "" {
		b.WriteString(bg.Space())
		b.WriteString(bg.Render(ts, styles.MutedText))
	}
	return b.String()
}

// formatTimestamp formats the last update time with a relative indicator.
func formatTimestamp(at, now time.Time) string {
	if at.IsZero() {
		return ""
	}
	since := now.Sub(at)
	timeStr := at.Format("15:04:05")
	switch {
	case since < time.Minute:
		timeStr += " (now)"
	case since < time.Hour:
		timeStr += fmt.Sprintf(" (%dm ago)", int(since.Minutes()))
	case since < 24*time.Hour:
		timeStr += fmt.Sprintf(" (%dh ago)", int(since.Hours()))
	}
	return timeStr
}

// classifyConnectionError returns a short description of a failed refresh.
func classifyConnectionError(err error) string {
	if err == nil {
		return ""
	}
	msg := err.Error()
	switch {
	case strings.Contains(msg, "connection refused"):
		return "OFFLINE"
	case strings.Contains(msg, "no such host"):
		return "HOST NOT FOUND"
	case strings.Contains(msg, "timeout"), strings.Contains(msg, "deadline exceeded"):
		return "TIMEOUT"
	case strings.Contains(msg, "status 401"), strings.Contains(msg, "status 403"):
		return "BAD API KEY"
	case strings.Contains(msg, "status 429"):
		return "RATE LIMITED"
	default:
		return "ERROR"
	}
}

// renderCommandBar renders the key hints for the current view.
func (m Model) renderCommandBar() string {
	styles := m.theme.Styles().WithBackground(m.theme.Surface)
	bg := NewBgStyle(m.theme.Surface)

	type cmd struct{ key, desc string }
	var commands []cmd

	switch m.currentView {
	case ViewLogs:
		followLabel := "Pause"
		if !m.logState.follow {
			followLabel = "Follow"
		}
		commands = []cmd{
			{"Space", followLabel},
			{"j/k", "Scroll"},
			{"g/G", "Top/Bottom"},
			{"L", "Guide"},
			{"?", "More"},
		}
	default:
		commands = []cmd{
			{"1-5", "Service"},
			{"Tab", "Next"},
			{"r", "Reload"},
			{"L", "Logs"},
			{"?", "More"},
		}
	}

	colon := bg.Render(":", styles.FaintText)
	segments := make([]string, 0, len(commands)+1)
	for _, c := range commands {
		segments = append(segments,
			bg.Render(c.key, styles.AccentText)+colon+bg.Render(c.desc, styles.MutedText))
	}
	segments = append(segments,
		bg.Render("T", styles.AccentText)+colon+bg.Render(m.theme.Name, styles.FaintText))

	return styles.Header.Width(m.width).Render(bg.Join(segments, "  "))
}

// truncate shortens s to max runes with an ellipsis.
func truncate(s string, max int) string {
	if max <= 0 {
		return ""
	}
	r := []rune(s)
	if len(r) <= max {
		return s
	}
	if max <= 3 {
		return string(r[:max])
	}
	return string(r[:max-3]) + "..."
}

// truncateMiddle shortens s in the middle, keeping more of the end.
func truncateMiddle(s string, max int) string {
	if max <= 0 {
		return ""
	}
	r := []rune(s)
	if len(r) <= max {
		return s
	}
	if max <= 5 {
		return string(r[:max])
	}
	endLen := (max - 3) * 2 / 3
	startLen := max - 3 - endLen
	return string(r[:startLen]) + "..." + string(r[len(r)-endLen:])
}
