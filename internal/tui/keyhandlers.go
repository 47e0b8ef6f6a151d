package tui

import (
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/grzywek/beancount-import/internal/keydispatch"
	"github.com/grzywek/beancount-import/internal/model"
	"github.com/grzywek/beancount-import/internal/source"
	"github.com/grzywek/beancount-import/internal/tui/components"
)

// registerKeyHandlers wires the model's key handling into the dispatch
// registry. Handlers run highest tier first, so the help overlay eats
// everything while open, the filter input eats printable keys while focused,
// and the bracket keys reach the filter handler before list navigation can
// see them.
func (m *Model) registerKeyHandlers() {
	m.registry.Register(keydispatch.TierOverlay, "help-overlay", m.handleHelpOverlay)
	m.registry.Register(keydispatch.TierFilter, "filter-input", m.handleFilterInput)
	m.registry.Register(keydispatch.TierFilter, "filter-keys", m.handleFilterKeys)
	m.registry.Register(keydispatch.TierNavigation, "list-nav", m.handleNavigation)
	m.registry.Register(keydispatch.TierNavigation, "global", m.handleGlobal)
}

// handleHelpOverlay closes the help overlay on any key while it is open.
func (m *Model) handleHelpOverlay(msg tea.KeyMsg) (bool, tea.Cmd) {
	if !m.showHelp {
		return false, nil
	}
	if key.Matches(msg, m.keymap.ForceQuit) {
		m.quitting = true
		return true, tea.Quit
	}
	m.showHelp = false
	return true, nil
}

// handleFilterInput feeds keys to the filter text input while it is focused.
func (m *Model) handleFilterInput(msg tea.KeyMsg) (bool, tea.Cmd) {
	if !m.list.FilterFocused() {
		return false, nil
	}

	switch {
	case key.Matches(msg, m.keymap.ForceQuit):
		// Let the global handler quit even mid-typing.
		return false, nil

	case key.Matches(msg, m.keymap.ClearFilter):
		m.clearFilter()
		return true, nil

	case key.Matches(msg, m.keymap.Select):
		// Keep the filter text, return focus to the list.
		m.list.BlurFilter()
		return true, nil
	}

	cmd, changed := m.list.UpdateFilter(msg)
	if changed {
		m.onFilterTextChanged()
	}
	return true, cmd
}

// handleFilterKeys handles the filter keys outside the focused input: "/"
// opens the filter, esc clears it, and the bracket keys jump between
// matches. Brackets are claimed here, above navigation, so an active filter
// always wins them.
func (m *Model) handleFilterKeys(msg tea.KeyMsg) (bool, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keymap.Filter):
		return true, m.list.FocusFilter()

	case key.Matches(msg, m.keymap.ClearFilter):
		if !m.list.Filtering() {
			return false, nil
		}
		m.clearFilter()
		return true, nil

	case key.Matches(msg, m.keymap.SkipNext):
		if !m.list.Filtering() {
			return false, nil
		}
		return true, m.skipMatch(source.Next)

	case key.Matches(msg, m.keymap.SkipPrev):
		if !m.list.Filtering() {
			return false, nil
		}
		return true, m.skipMatch(source.Prev)
	}

	return false, nil
}

// handleNavigation moves the highlight and drives accept/ignore/select.
func (m *Model) handleNavigation(msg tea.KeyMsg) (bool, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keymap.Up):
		m.moveHighlight(-1)
	case key.Matches(msg, m.keymap.Down):
		m.moveHighlight(1)
	case key.Matches(msg, m.keymap.PageUp):
		m.moveHighlight(-m.list.PageSize())
	case key.Matches(msg, m.keymap.PageDown):
		m.moveHighlight(m.list.PageSize())
	case key.Matches(msg, m.keymap.Home):
		m.setHighlight(m.list.FirstIndex())
	case key.Matches(msg, m.keymap.End):
		m.setHighlight(m.list.LastIndex())

	case key.Matches(msg, m.keymap.Select):
		if target := m.actionTarget(); target != components.NoIndex {
			m.applySelection(target)
		}

	case key.Matches(msg, m.keymap.Accept):
		return true, m.changeStatus(model.StatusAccepted)
	case key.Matches(msg, m.keymap.Ignore):
		return true, m.changeStatus(model.StatusIgnored)

	default:
		return false, nil
	}
	return true, nil
}

// handleGlobal handles quit and the help toggle.
func (m *Model) handleGlobal(msg tea.KeyMsg) (bool, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keymap.Quit), key.Matches(msg, m.keymap.ForceQuit):
		m.quitting = true
		return true, tea.Quit
	case key.Matches(msg, m.keymap.Help):
		m.showHelp = !m.showHelp
		return true, nil
	}
	return false, nil
}

// onFilterTextChanged reacts to a keystroke in the filter input.
func (m *Model) onFilterTextChanged() {
	text := m.list.FilterText()
	if m.list.Filtering() {
		// The predicate has to see every record, so fill the cache rather
		// than just the visible window.
		m.prewarm()
		m.queueCmd(m.pushFilterText(text))
	} else {
		// Back to empty: drop any anti-flicker fallback and show the full
		// list again.
		m.builder.Reset()
		m.counts.ok = false
		m.queueCmd(m.pushFilterText(text))
	}
	m.rebuild()
	m.requestVisible()
}

// clearFilter empties the filter and returns to the unfiltered window.
func (m *Model) clearFilter() {
	m.list.ClearFilter()
	m.builder.Reset()
	m.counts.ok = false
	m.queueCmd(m.pushFilterText(""))
	m.rebuild()
	m.requestVisible()
}

// skipMatch jumps to the nearest match beyond the current position. Under
// the local strategy the filtered set already knows the answer; the
// delegated strategy asks the server.
func (m *Model) skipMatch(dir source.Direction) tea.Cmd {
	if m.config.Strategy == StrategyDelegated && m.config.FilterServer != nil {
		return m.skipToMatch(m.actionTarget(), dir)
	}

	index, ok := m.localSkip(dir)
	if !ok {
		m.statusMsg = "no further match"
		return nil
	}
	m.applySelection(index)
	return nil
}

// changeStatus accepts or ignores the entry under the cursor.
func (m *Model) changeStatus(status model.Status) tea.Cmd {
	target := m.actionTarget()
	if target == components.NoIndex {
		return nil
	}
	return m.setStatus(m.cache.Generation(), target, status)
}
