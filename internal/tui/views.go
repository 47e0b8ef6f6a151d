package tui

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// View renders the TUI.
func (m *Model) View() string {
	if m.quitting {
		return ""
	}
	if !m.ready {
		return m.spinner.View() + m.config.Theme.Subtitle.Render(" Loading pending entries...")
	}
	if m.showHelp {
		return m.renderHelp()
	}

	body := m.list.View()
	if m.width >= 100 {
		body = lipgloss.JoinHorizontal(lipgloss.Top, m.list.View(), m.detail.View())
	}

	return lipgloss.JoinVertical(lipgloss.Left, body, m.renderStatusBar())
}

// renderStatusBar shows the latest error or status message plus short help.
func (m *Model) renderStatusBar() string {
	theme := m.config.Theme

	var left string
	switch {
	case m.lastError != nil:
		left = theme.StatusError.Render("error: " + m.lastError.Error())
	case m.statusMsg != "":
		left = theme.StatusInfo.Render(m.statusMsg)
	}

	var help []string
	for _, b := range m.keymap.ShortHelp() {
		h := b.Help()
		help = append(help, theme.Placeholder.Render(h.Key+" "+h.Desc))
	}
	right := strings.Join(help, "  ")

	gap := m.width - lipgloss.Width(left) - lipgloss.Width(right)
	if gap < 1 {
		gap = 1
	}
	return left + strings.Repeat(" ", gap) + right
}

// renderHelp renders the full help overlay.
func (m *Model) renderHelp() string {
	theme := m.config.Theme

	var b strings.Builder
	b.WriteString(theme.Title.Render("Keyboard shortcuts"))
	b.WriteString("\n\n")

	for _, group := range m.keymap.FullHelp() {
		for _, binding := range group {
			h := binding.Help()
			b.WriteString("  ")
			b.WriteString(theme.Bold.Render(padRight(h.Key, 12)))
			b.WriteString(theme.Normal.Render(h.Desc))
			b.WriteString("\n")
		}
		b.WriteString("\n")
	}

	b.WriteString(theme.Placeholder.Render("press any key to close"))
	return theme.BorderedBox.Render(b.String())
}

func padRight(s string, width int) string {
	if len(s) >= width {
		return s
	}
	return s + strings.Repeat(" ", width-len(s))
}
