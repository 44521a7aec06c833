package ui

import (
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"

	"github.com/five82/onair/internal/nhk"
	"github.com/five82/onair/internal/state"
)

const (
	timelineLabelWidth = 8
	timeRangeWidth     = 13
	progressBarWidth   = 30
)

// renderGuide renders the now-on-air panel for the active service.
func (m Model) renderGuide() string {
	height := m.height - 2
	title := fmt.Sprintf("%s (%s)", m.service.Name(), m.service.ID())

	var guide state.Guide
	if m.source != nil {
		guide = m.source.Guide(m.service)
	}
	content := m.renderGuideContent(guide, m.width-4)
	return m.renderBox(title, content, m.width, height)
}

// renderGuideContent renders the timeline rows and the present program detail.
func (m Model) renderGuideContent(guide state.Guide, width int) string {
	styles := m.theme.Styles().WithBackground(m.theme.FocusBg)
	bg := NewBgStyle(m.theme.FocusBg)

	if !guide.HasChannel {
		if guide.LastError != nil {
			return bg.Render(classifyConnectionError(guide.LastError), styles.DangerText) + bg.Space() +
				bg.Render(truncate(guide.LastError.Error(), max(width-20, 10)), styles.MutedText)
		}
		return bg.Render("Waiting for the guide...", styles.WarningText)
	}

	var b strings.Builder
	for _, tl := range nhk.Timelines {
		b.WriteString(m.renderTimelineRow(guide.Channel.Program(tl), tl, styles, bg, width))
		b.WriteString("\n")
	}

	if present := guide.Channel.Present; present != nil {
		b.WriteString("\n")
		b.WriteString(m.renderPresentDetail(*present, styles, bg, width))
	}
	return strings.TrimRight(b.String(), "\n")
}

// renderTimelineRow renders one of previous, present or following.
func (m Model) renderTimelineRow(p *nhk.Program, tl nhk.Timeline, styles Styles, bg BgStyle, width int) string {
	labelStyle := styles.MutedText
	titleStyle := styles.Text
	if tl == nhk.Present {
		labelStyle = styles.AccentText.Bold(true)
		titleStyle = styles.Text.Bold(true)
	}

	label := lipgloss.NewStyle().Width(timelineLabelWidth).Render(tl.Label())
	row := bg.Render(label, labelStyle)
	if p == nil {
		return row + bg.Render("-", styles.FaintText)
	}

	timeRange := lipgloss.NewStyle().Width(timeRangeWidth).Render(p.TimeRange())
	row += bg.Render(timeRange, styles.InfoText)

	room := width - timelineLabelWidth - timeRangeWidth
	text := p.Title
	if p.Subtitle != "" {
		text += "  " + p.Subtitle
	}
	text = truncateWidth(text, room)
	rest, ok := strings.CutPrefix(text, p.Title)
	if !ok || rest == "" {
		return row + bg.Render(text, titleStyle)
	}
	return row + bg.Render(p.Title, titleStyle) + bg.Render(rest, styles.MutedText)
}

// renderPresentDetail renders progress, description, cast and genres for the
// program on air now.
func (m Model) renderPresentDetail(p nhk.Program, styles Styles, bg BgStyle, width int) string {
	var b strings.Builder

	if pct, ok := p.Progress(m.now()); ok {
		b.WriteString(m.drawProgressBar(pct, progressBarWidth, m.theme.Accent))
		b.WriteString(bg.Space())
		b.WriteString(bg.Render(fmt.Sprintf("%3.0f%%", pct*100), styles.MutedText))
		if end := p.ParsedEnd(); !end.IsZero() {
			if left := end.Sub(m.now()).Round(time.Minute); left > 0 {
				b.WriteString(bg.Spaces(2))
				b.WriteString(bg.Render(fmt.Sprintf("%d min left", int(left.Minutes())), styles.FaintText))
			}
		}
		b.WriteString("\n")
	}

	textStyle := lipgloss.NewStyle().
		Width(max(width, 10)).
		Foreground(lipgloss.Color(m.theme.Text)).
		Background(lipgloss.Color(m.theme.FocusBg))
	if content := strings.TrimSpace(p.Content); content != "" {
		b.WriteString("\n")
		b.WriteString(textStyle.Render(content))
		b.WriteString("\n")
	}
	if act := strings.TrimSpace(p.Act); act != "" {
		b.WriteString("\n")
		b.WriteString(bg.Render("出演", styles.MutedText))
		b.WriteString(bg.Spaces(2))
		b.WriteString(bg.Render(truncateWidth(act, width-6), styles.Text))
		b.WriteString("\n")
	}
	if len(p.Genres) > 0 {
		b.WriteString(bg.Render("ジャンル", styles.MutedText))
		b.WriteString(bg.Spaces(2))
		b.WriteString(bg.Render(strings.Join(p.Genres, ", "), styles.FaintText))
		b.WriteString("\n")
	}
	return strings.TrimRight(b.String(), "\n")
}

// drawProgressBar draws a bar with fraction (0-1) of width cells filled.
func (m Model) drawProgressBar(fraction float64, width int, color string) string {
	fraction = math.Max(0, math.Min(1, fraction))
	full := int(math.Round(fraction * float64(width)))
	empty := width - full
	bg := lipgloss.Color(m.theme.FocusBg)
	filled := lipgloss.NewStyle().Foreground(lipgloss.Color(color)).Background(bg)
	rest := lipgloss.NewStyle().Foreground(lipgloss.Color(m.theme.Border)).Background(bg)
	return filled.Render(strings.Repeat("━", full)) + rest.Render(strings.Repeat("━", empty))
}

// renderBox draws a rounded panel of the given outer size with title set into
// the top border.
func (m Model) renderBox(title, content string, width, height int) string {
	if width < 4 || height < 3 {
		return content
	}
	border := lipgloss.RoundedBorder()
	borderStyle := lipgloss.NewStyle().
		Foreground(lipgloss.Color(m.theme.BorderFocus)).
		Background(lipgloss.Color(m.theme.FocusBg))
	titleStyle := lipgloss.NewStyle().
		Foreground(lipgloss.Color(m.theme.Accent)).
		Background(lipgloss.Color(m.theme.FocusBg)).
		Bold(true)

	title = truncateWidth(title, width-6)
	fill := width - 2 - lipgloss.Width(title) - 3
	top := borderStyle.Render(border.TopLeft+border.Top+" ") +
		titleStyle.Render(title) +
		borderStyle.Render(" "+strings.Repeat(border.Top, max(fill, 0))+border.TopRight)

	body := lipgloss.NewStyle().
		Border(border, false, true, true, true).
		BorderForeground(lipgloss.Color(m.theme.BorderFocus)).
		BorderBackground(lipgloss.Color(m.theme.FocusBg)).
		Background(lipgloss.Color(m.theme.FocusBg)).
		Foreground(lipgloss.Color(m.theme.Text)).
		Padding(0, 1).
		Width(width - 2).
		Height(height - 2).
		MaxHeight(height - 1).
		Render(content)

	return top + "\n" + body
}

// truncateWidth shortens s to at most width terminal cells.
func truncateWidth(s string, width int) string {
	if width <= 0 {
		return ""
	}
	if lipgloss.Width(s) <= width {
		return s
	}
	r := []rune(s)
	for len(r) > 0 && lipgloss.Width(string(r))+3 > width {
		r = r[:len(r)-1]
	}
	return string(r) + "..."
}
