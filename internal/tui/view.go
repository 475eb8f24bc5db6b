package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/verte-zerg/lyrictype/internal/session"
)

var (
	correctStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("#F0F0F0"))
	incorrectStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#FF4D4F"))
	pendingStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("#8C8C8C"))
	currentWordStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#C89A3A"))
	cursorStyle      = pendingStyle.Underline(true)
	footerStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("#6E6E6E"))
	titleStyle       = lipgloss.NewStyle().Foreground(lipgloss.Color("#C89A3A")).Bold(true)
	selectedStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("#F0F0F0")).Bold(true)
	errorStyle       = lipgloss.NewStyle().Foreground(lipgloss.Color("#FF4D4F"))
)

func (m *Model) viewSearch() string {
	lines := []string{titleStyle.Render("lyrictype"), "", m.input.View(), ""}

	choices := m.choices()
	if strings.TrimSpace(m.input.Value()) == "" {
		if len(choices) > 0 {
			lines = append(lines, footerStyle.Render("Recent artists"))
		}
	} else if len(choices) == 0 && m.searchErr == "" {
		lines = append(lines, footerStyle.Render("No artists yet"))
	}
	for i, a := range choices {
		label := artistLabel(a)
		if i == m.selected {
			lines = append(lines, selectedStyle.Render("> "+label))
			continue
		}
		lines = append(lines, pendingStyle.Render("  "+label))
	}

	lines = append(lines, "")
	switch {
	case m.searchErr != "":
		lines = append(lines, errorStyle.Render(m.searchErr))
	case m.errMsg != "":
		lines = append(lines, errorStyle.Render(m.errMsg))
	case m.status != "":
		lines = append(lines, footerStyle.Render(m.status))
	}
	lines = append(lines, m.help.ShortHelpView(m.keys.searchHelp()))
	content := strings.Join(lines, "\n")
	if m.width == 0 || m.height == 0 {
		return content
	}
	return lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Center, content)
}

func (m *Model) viewTyping() string {
	if m.session == nil {
		return ""
	}
	cursorIndex := -1
	if m.session.State() != session.Completed {
		cursorIndex = len([]rune(m.session.Input()))
	}
	styledRunes := buildStyledRunes(m.session.Tokens(), cursorIndex)
	header := m.renderHeader()
	footer := m.renderFooter()
	extra := m.renderStatus()
	helpLine := m.help.ShortHelpView(m.keys.typingHelp())

	if m.width == 0 || m.height == 0 {
		return strings.Join([]string{header, wrapStyledRunes(styledRunes, 0), footer, extra, helpLine}, "\n")
	}
	contentWidth := int(float64(m.width) * 0.70)
	if contentWidth < 1 {
		contentWidth = 1
	}
	wrapped := wrapStyledRunes(styledRunes, contentWidth)
	content := lipgloss.NewStyle().Width(contentWidth).Render(wrapped)
	if m.height < 6 {
		return lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Center, content)
	}
	bodyHeight := m.height - 4
	line := func(s string) string {
		return lipgloss.Place(m.width, 1, lipgloss.Center, lipgloss.Center, s)
	}
	body := lipgloss.Place(m.width, bodyHeight, lipgloss.Center, lipgloss.Center, content)
	return strings.Join([]string{line(header), body, line(footer), line(extra), line(helpLine)}, "\n")
}

func (m *Model) renderHeader() string {
	artist := m.song.Artist
	if artist == "" {
		artist = m.song.PrimaryArtist
	}
	header := titleStyle.Render(m.song.Title)
	if artist != "" {
		header += footerStyle.Render(" · " + artist)
	}
	if m.manager != nil {
		st := m.manager.Status()
		if st.TotalSongs > 0 {
			header += footerStyle.Render(fmt.Sprintf("  [%d/%d]", st.CurrentIndex+1, st.TotalSongs))
		}
	}
	return header
}

func (m *Model) renderFooter() string {
	if m.session == nil {
		return ""
	}
	progress := int(m.session.Progress() * 100)
	segments := []string{
		fmt.Sprintf("Progress %d%%", progress),
		fmt.Sprintf("WPM %.1f", m.session.LiveWPM()),
	}
	if m.hasLast {
		segments = append(segments, fmt.Sprintf("Last %.1f WPM · %.1f%%", m.lastWPM, m.lastAcc))
	}
	segments = append(segments, fmt.Sprintf("All-time %.1f WPM · %.1f%%", m.allWPM, m.allAcc))
	segments = append(segments, "Caps "+onOff(m.opts.Capitalization), "Punct "+onOff(m.opts.Punctuation))
	return footerStyle.Render(strings.Join(segments, "  "))
}

// renderStatus shows the result of a finished test, an error, a transient
// status, or the upcoming songs, in that order of preference.
func (m *Model) renderStatus() string {
	if res, ok := m.session.Result(); ok && res.CharactersTyped > 0 {
		return selectedStyle.Render(fmt.Sprintf("Done: %.1f WPM · %.1f%% accuracy · enter for next song", res.WPM, res.Accuracy))
	}
	if m.errMsg != "" {
		return errorStyle.Render(m.errMsg)
	}
	if m.status != "" {
		return footerStyle.Render(m.status)
	}
	if m.manager == nil {
		return ""
	}
	upcoming := m.manager.Upcoming(upcomingShown)
	if len(upcoming) == 0 {
		return ""
	}
	titles := make([]string, len(upcoming))
	for i, s := range upcoming {
		titles[i] = s.Title
	}
	return footerStyle.Render("Up next: " + strings.Join(titles, ", "))
}

func onOff(v bool) string {
	if v {
		return "on"
	}
	return "off"
}
