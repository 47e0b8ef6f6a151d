package components

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/grzywek/beancount-import/internal/model"
	"github.com/grzywek/beancount-import/internal/tui/themes"
)

// EntryDetailModel renders the full record of the selected entry.
type EntryDetailModel struct {
	theme  themes.Theme
	entry  *model.PendingEntry
	width  int
	height int
}

// NewEntryDetail creates the detail panel.
func NewEntryDetail(theme themes.Theme) EntryDetailModel {
	return EntryDetailModel{
		theme:  theme,
		width:  40,
		height: 12,
	}
}

// Resize updates the panel size.
func (m *EntryDetailModel) Resize(width, height int) {
	m.width = width
	m.height = height
}

// SetEntry sets the entry to display; nil clears the panel.
func (m *EntryDetailModel) SetEntry(entry *model.PendingEntry) {
	m.entry = entry
}

// View renders the detail panel.
func (m EntryDetailModel) View() string {
	box := m.theme.BorderedBox.Width(m.width - 2)

	if m.entry == nil {
		return box.Render(m.theme.Placeholder.Render("no entry selected"))
	}

	entry := m.entry

	amountStyle := m.theme.Amount
	if entry.Amount < 0 {
		amountStyle = m.theme.AmountNeg
	}

	rows := []string{
		m.theme.Title.Render(fallbackText(entry.Payee, "(no payee)")),
		m.theme.Subtitle.Render(entry.Date.Format("Monday, 2 Jan 2006")),
		"",
		m.renderField("Narration", fallbackText(entry.Narration, "—")),
		m.renderField("Account", entry.Account),
		m.renderField("Amount", amountStyle.Render(fmt.Sprintf("%.2f %s", entry.Amount, entry.Currency))),
	}

	if entry.SourceDesc != "" {
		rows = append(rows, m.renderField("Source", truncate(entry.SourceDesc, m.width-14)))
	}
	rows = append(rows, "", m.theme.Subtitle.Render(fmt.Sprintf("#%d · generation %d", entry.Index, entry.Generation)))

	return box.Render(lipgloss.JoinVertical(lipgloss.Left, rows...))
}

func (m EntryDetailModel) renderField(label, value string) string {
	return fmt.Sprintf("%s %s",
		m.theme.Subtitle.Render(fmt.Sprintf("%-10s", label+":")),
		value)
}

func fallbackText(s, fallback string) string {
	if strings.TrimSpace(s) == "" {
		return fallback
	}
	return s
}
