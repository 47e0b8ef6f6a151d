// Package components contains the bubbletea component models composing the
// review TUI.
package components

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/grzywek/beancount-import/internal/filter"
	"github.com/grzywek/beancount-import/internal/model"
	"github.com/grzywek/beancount-import/internal/tui/themes"
)

// EntryReader is the read-only cache access the unfiltered view needs to
// materialize its visible window. *pending.Store satisfies it.
type EntryReader interface {
	Get(generation int64, index int) (model.PendingEntry, bool)
}

// NoIndex marks the absence of a highlight or selection.
const NoIndex = -1

// EntryListModel renders the pending list in one of two modes. With no
// filter active it shows a window over the full (generation, index) space,
// materializing only visible rows from the cache. With a filter active it
// renders the filtered set directly, unwindowed; filtered sets are expected
// to be small. Switching modes keeps highlight and selection.
type EntryListModel struct {
	reader      EntryReader
	theme       themes.Theme
	filterInput textinput.Model
	result      filter.Result
	generation  int64
	total       int
	top         int
	highlight   int
	selected    int
	width       int
	height      int
}

// NewEntryList creates the list component.
func NewEntryList(reader EntryReader, theme themes.Theme) EntryListModel {
	input := textinput.New()
	input.Placeholder = "filter payee or narration..."
	input.CharLimit = 80
	input.Prompt = "/ "

	return EntryListModel{
		reader:      reader,
		theme:       theme,
		filterInput: input,
		highlight:   NoIndex,
		selected:    NoIndex,
		width:       80,
		height:      24,
	}
}

// Resize updates the component size.
func (m *EntryListModel) Resize(width, height int) {
	m.width = width
	m.height = height
	m.clampScroll()
}

// SetMetadata adopts new list metadata and resets the scroll window when
// the generation changed.
func (m *EntryListModel) SetMetadata(generation int64, total int) {
	if generation != m.generation {
		m.generation = generation
	}
	m.total = total
	m.clampScroll()
}

// SetResult installs a rebuilt filtered set.
func (m *EntryListModel) SetResult(result filter.Result) {
	m.result = result
	m.clampScroll()
}

// Result returns the last installed filtered set.
func (m EntryListModel) Result() filter.Result {
	return m.result
}

// SetHighlight moves the transient keyboard/hover focus.
func (m *EntryListModel) SetHighlight(index int) {
	m.highlight = index
}

// SetSelection shows the externally owned selection.
func (m *EntryListModel) SetSelection(index int) {
	m.selected = index
}

// Filtering reports whether the current filter text activates filtered mode.
func (m EntryListModel) Filtering() bool {
	return filter.IsFiltering(m.filterInput.Value())
}

// FilterText returns the raw filter text.
func (m EntryListModel) FilterText() string {
	return m.filterInput.Value()
}

// FilterFocused reports whether the filter input owns the keyboard.
func (m EntryListModel) FilterFocused() bool {
	return m.filterInput.Focused()
}

// FocusFilter gives the filter input keyboard focus.
func (m *EntryListModel) FocusFilter() tea.Cmd {
	m.filterInput.Focus()
	return textinput.Blink
}

// BlurFilter returns keyboard focus to the list.
func (m *EntryListModel) BlurFilter() {
	m.filterInput.Blur()
}

// ClearFilter empties the filter text and blurs the input.
func (m *EntryListModel) ClearFilter() {
	m.filterInput.SetValue("")
	m.filterInput.Blur()
	m.clampScroll()
}

// UpdateFilter forwards a message to the filter input and reports whether
// the text changed.
func (m *EntryListModel) UpdateFilter(msg tea.Msg) (tea.Cmd, bool) {
	before := m.filterInput.Value()
	var cmd tea.Cmd
	m.filterInput, cmd = m.filterInput.Update(msg)
	return cmd, m.filterInput.Value() != before
}

// rowCount returns how many rows the current mode exposes.
func (m EntryListModel) rowCount() int {
	if m.Filtering() {
		return len(m.result.Entries)
	}
	return m.total
}

// listHeight returns how many entry rows fit on screen. Two lines of chrome:
// the filter line above and the count line below.
const listChrome = 2

func (m EntryListModel) listHeight() int {
	return max(1, m.height-listChrome)
}

// VisibleRange returns the window of absolute indices the unfiltered view
// currently needs, for cache pre-fetching. In filtered mode it is empty;
// filtered mode pre-warms the full range instead.
func (m EntryListModel) VisibleRange() (start, end int) {
	if m.Filtering() {
		return 0, 0
	}
	start = m.top
	end = min(m.top+m.listHeight(), m.total)
	return start, end
}

// rowIndex maps a visible row position to its absolute entry index.
func (m EntryListModel) rowIndex(row int) int {
	if m.Filtering() {
		return m.result.Entries[row].Index
	}
	return row
}

// highlightRow returns the row position of the highlighted index, or -1.
func (m EntryListModel) highlightRow() int {
	if m.highlight == NoIndex {
		return -1
	}
	if !m.Filtering() {
		if m.highlight < m.total {
			return m.highlight
		}
		return -1
	}
	for row, entry := range m.result.Entries {
		if entry.Index == m.highlight {
			return row
		}
	}
	return -1
}

// MoveHighlight proposes a new highlight index the given number of rows
// away, staying inside the current mode's row space. It does not assign the
// highlight; the caller owns that decision.
func (m EntryListModel) MoveHighlight(delta int) int {
	rows := m.rowCount()
	if rows == 0 {
		return NoIndex
	}

	row := m.highlightRow()
	if row < 0 {
		// No current highlight: enter the list at its edge.
		if delta >= 0 {
			return m.rowIndex(0)
		}
		return m.rowIndex(rows - 1)
	}

	row = max(0, min(rows-1, row+delta))
	return m.rowIndex(row)
}

// FirstIndex returns the first row's entry index, or NoIndex.
func (m EntryListModel) FirstIndex() int {
	if m.rowCount() == 0 {
		return NoIndex
	}
	return m.rowIndex(0)
}

// LastIndex returns the last row's entry index, or NoIndex.
func (m EntryListModel) LastIndex() int {
	rows := m.rowCount()
	if rows == 0 {
		return NoIndex
	}
	return m.rowIndex(rows - 1)
}

// PageSize returns the row delta for page movements.
func (m EntryListModel) PageSize() int {
	return m.listHeight()
}

// EnsureVisible scrolls so the given absolute index is on screen.
func (m *EntryListModel) EnsureVisible(index int) {
	row := -1
	if m.Filtering() {
		for r, entry := range m.result.Entries {
			if entry.Index == index {
				row = r
				break
			}
		}
	} else if index >= 0 && index < m.total {
		row = index
	}
	if row < 0 {
		return
	}

	if row < m.top {
		m.top = row
	} else if row >= m.top+m.listHeight() {
		m.top = row - m.listHeight() + 1
	}
	m.clampScroll()
}

func (m *EntryListModel) clampScroll() {
	maxTop := max(0, m.rowCount()-m.listHeight())
	m.top = max(0, min(m.top, maxTop))
}

// View renders the filter line, the entry rows, and the count line.
func (m EntryListModel) View() string {
	var b strings.Builder

	b.WriteString(m.renderFilterLine())
	b.WriteString("\n")

	rows := m.rowCount()
	height := m.listHeight()
	for line := 0; line < height; line++ {
		row := m.top + line
		if row >= rows {
			b.WriteString("\n")
			continue
		}
		b.WriteString(m.renderRow(row))
		b.WriteString("\n")
	}

	b.WriteString(m.renderCountLine())
	return b.String()
}

func (m EntryListModel) renderFilterLine() string {
	if m.filterInput.Focused() || m.Filtering() {
		return m.filterInput.View()
	}
	return m.theme.Placeholder.Render("press / to filter")
}

// renderCountLine shows "k / N" while filtering, or the pending total.
func (m EntryListModel) renderCountLine() string {
	if m.Filtering() {
		line := fmt.Sprintf("%d / %d", m.result.MatchCount, m.result.Total)
		if m.result.Fallback {
			// The shown set is the anti-flicker fallback; fresh data is
			// still streaming in.
			line += " …"
		}
		return m.theme.Subtitle.Render(line)
	}
	return m.theme.Subtitle.Render(fmt.Sprintf("%d pending", m.total))
}

func (m EntryListModel) renderRow(row int) string {
	index := m.rowIndex(row)

	var entry model.PendingEntry
	var ok bool
	if m.Filtering() {
		entry, ok = m.result.Entries[row].Record, true
	} else {
		entry, ok = m.reader.Get(m.generation, index)
	}

	if !ok {
		return m.theme.Placeholder.Render(fmt.Sprintf("%4d  …", index))
	}

	line := m.formatEntry(index, entry)

	switch index {
	case m.selected:
		return m.theme.Selected.Render(line)
	case m.highlight:
		return m.theme.Highlighted.Render(line)
	default:
		return line
	}
}

func (m EntryListModel) formatEntry(index int, entry model.PendingEntry) string {
	date := entry.Date.Format("2006-01-02")

	amountText := fmt.Sprintf("%10.2f %s", entry.Amount, entry.Currency)
	amountStyle := m.theme.Amount
	if entry.Amount < 0 {
		amountStyle = m.theme.AmountNeg
	}

	desc := entry.Payee
	if entry.Narration != "" {
		if desc != "" {
			desc += " | "
		}
		desc += entry.Narration
	}

	descWidth := max(10, m.width-len(date)-len(amountText)-12)
	desc = truncate(desc, descWidth)

	return fmt.Sprintf("%4d  %s  %-*s  %s",
		index, date, descWidth, desc, amountStyle.Render(amountText))
}

// truncate shortens s to at most maxLen characters.
func truncate(s string, maxLen int) string {
	if lipgloss.Width(s) <= maxLen {
		return s
	}
	runes := []rune(s)
	if maxLen <= 3 {
		return string(runes[:maxLen])
	}
	return string(runes[:maxLen-3]) + "..."
}
