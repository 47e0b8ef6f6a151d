package tui

import (
	"errors"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/grzywek/beancount-import/internal/common"
	"github.com/grzywek/beancount-import/internal/filter"
	"github.com/grzywek/beancount-import/internal/keydispatch"
	"github.com/grzywek/beancount-import/internal/model"
	"github.com/grzywek/beancount-import/internal/pending"
	"github.com/grzywek/beancount-import/internal/selection"
	"github.com/grzywek/beancount-import/internal/source"
	"github.com/grzywek/beancount-import/internal/tui/components"
)

// Model holds the review TUI state. It is the selection owner: the
// coordinator and skip handlers only request selection changes, and this
// model applies them.
type Model struct {
	config      Config
	keymap      KeyMap
	registry    *keydispatch.Registry
	cache       *pending.Store
	queue       *fetchQueue
	builder     filter.SetBuilder
	coordinator *selection.Coordinator
	selectReq   *selectRequest
	counts      *countsState
	list        components.EntryListModel
	detail      components.EntryDetailModel
	spinner     spinner.Model
	pendingCmds []tea.Cmd
	lastError   error
	statusMsg   string
	selected    int
	width       int
	height      int
	ready       bool
	quitting    bool
	showHelp    bool
}

// fetchQueue collects the spans the cache decided to fetch during an update
// pass, so the effectful transport calls happen as bubbletea commands rather
// than inside the pure derivation.
type fetchQueue struct {
	spans []fetchSpan
}

type fetchSpan struct {
	generation int64
	start, end int
}

func (q *fetchQueue) RequestRange(generation int64, _, start, end int) {
	q.spans = append(q.spans, fetchSpan{generation: generation, start: start, end: end})
}

func (q *fetchQueue) drain() []fetchSpan {
	spans := q.spans
	q.spans = nil
	return spans
}

// selectRequest receives the coordinator's selection-change requests.
type selectRequest struct {
	index int
	has   bool
}

func (r *selectRequest) RequestSelect(index int) {
	r.index = index
	r.has = true
}

// countsState caches the latest server-confirmed filter counts for the
// delegated builder.
type countsState struct {
	matched    int
	generation int64
	ok         bool
}

func (c *countsState) FilteredCounts(generation int64) (int, bool) {
	if !c.ok || generation != c.generation {
		return 0, false
	}
	return c.matched, true
}

// newModel creates a model with the given configuration.
func newModel(cfg Config) *Model {
	queue := &fetchQueue{}
	cache := pending.NewStore(queue)
	counts := &countsState{}
	selectReq := &selectRequest{}

	var builder filter.SetBuilder
	if cfg.Strategy == StrategyDelegated && cfg.FilterServer != nil {
		builder = filter.NewDelegatedBuilder(counts)
	} else {
		builder = filter.NewLocalBuilder()
	}

	spin := spinner.New()
	spin.Spinner = spinner.Dot
	spin.Style = cfg.Theme.StatusInfo

	m := &Model{
		config:      cfg,
		keymap:      DefaultKeyMap(),
		registry:    keydispatch.NewRegistry(),
		cache:       cache,
		queue:       queue,
		builder:     builder,
		coordinator: selection.NewCoordinator(selectReq),
		selectReq:   selectReq,
		counts:      counts,
		list:        components.NewEntryList(cache, cfg.Theme),
		detail:      components.NewEntryDetail(cfg.Theme),
		spinner:     spin,
		selected:    selection.None,
		width:       cfg.Width,
		height:      cfg.Height,
	}

	m.coordinator.Track(cache.Subscribe(m.onStoreEvent))
	m.registerKeyHandlers()

	return m
}

// Init initializes the model.
func (m *Model) Init() tea.Cmd {
	return tea.Batch(
		tea.EnterAltScreen,
		m.spinner.Tick,
		m.loadMetadata(),
		m.pollMetadata(),
	)
}

// Update handles messages and updates the model.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		if handled, cmd := m.registry.Dispatch(msg); handled {
			m.queueCmd(cmd)
		}

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.handleResize()
		m.requestVisible()

	case metadataMsg:
		if msg.err != nil {
			m.lastError = msg.err
			break
		}
		m.ready = true
		m.lastError = nil
		// Advance fires store events; the subscription handles the rebuild.
		m.cache.Advance(msg.meta)
		m.requestVisible()

	case entriesMsg:
		if msg.err != nil {
			m.lastError = msg.err
			// Unmark the span so the next render or poll pass retries it;
			// otherwise one transport error starves these rows for the rest
			// of the generation.
			m.cache.ReleaseRange(msg.generation, msg.start, msg.end)
			break
		}
		if len(msg.entries) > 0 {
			m.cache.Deliver(msg.generation, msg.entries)
		}

	case filteredCountsMsg:
		if msg.err != nil {
			m.lastError = msg.err
			break
		}
		m.counts.matched = msg.matched
		m.counts.generation = msg.generation
		m.counts.ok = true
		m.rebuild()

	case skipResultMsg:
		if msg.err != nil {
			if errors.Is(msg.err, common.ErrNotFound) {
				m.statusMsg = "no further match"
			} else {
				m.lastError = msg.err
			}
			break
		}
		m.applySelection(msg.index)

	case statusChangedMsg:
		if msg.err != nil {
			m.lastError = msg.err
			break
		}
		if msg.status == model.StatusAccepted {
			m.statusMsg = "entry accepted"
		} else {
			m.statusMsg = "entry ignored"
		}
		// The mutation bumped the generation; resynchronize now rather than
		// waiting for the next poll.
		m.queueCmd(m.loadMetadata())

	case spinner.TickMsg:
		// Only animate while the first metadata load is outstanding.
		if !m.ready {
			var cmd tea.Cmd
			m.spinner, cmd = m.spinner.Update(msg)
			m.queueCmd(cmd)
		}

	case pollTickMsg:
		m.queueCmd(m.loadMetadata())
		m.queueCmd(m.pollMetadata())

	case errorMsg:
		m.lastError = msg.err
	}

	m.queueFetches()
	cmds := m.pendingCmds
	m.pendingCmds = nil
	return m, tea.Batch(cmds...)
}

// onStoreEvent reacts to cache changes. It runs synchronously inside the
// update pass that mutated the store.
func (m *Model) onStoreEvent(event pending.Event) {
	switch event.Kind {
	case pending.EventMetadataChanged:
		m.list.SetMetadata(event.Generation, event.Total)
		m.counts.ok = m.counts.ok && m.counts.generation == event.Generation
		m.rebuild()
		if m.list.Filtering() {
			// Fresh generation under an active filter: the predicate needs
			// the whole range to evaluate against.
			m.prewarm()
			m.queueCmd(m.pushFilterText(m.list.FilterText()))
		}
	case pending.EventDataReceived:
		m.rebuild()
	}
}

// rebuild recomputes the filtered set from current cache contents and
// repairs the selection against it.
func (m *Model) rebuild() {
	result := m.builder.Build(m.cache, m.list.FilterText())
	m.list.SetResult(result)

	if m.list.Filtering() {
		m.coordinator.Repair(m.selected, result.Entries)
		if m.selectReq.has {
			m.selectReq.has = false
			m.applySelection(m.selectReq.index)
		}
	}

	m.syncDetail()
}

// applySelection is the single writer of the selection.
func (m *Model) applySelection(index int) {
	m.selected = index
	m.list.SetSelection(index)
	m.list.EnsureVisible(index)
	m.syncDetail()
	m.requestVisible()
}

// syncDetail points the detail panel at the selected entry, falling back to
// the highlighted one.
func (m *Model) syncDetail() {
	index := m.selected
	if h := m.coordinator.Highlight(); h != selection.None {
		index = h
	}
	if index == selection.None {
		m.detail.SetEntry(nil)
		return
	}

	if entry, ok := m.cache.Get(m.cache.Generation(), index); ok {
		m.detail.SetEntry(&entry)
		return
	}

	// In filtered mode the entry may only exist in the (possibly fallback)
	// result set.
	for _, e := range m.list.Result().Entries {
		if e.Index == index {
			entry := e.Record
			m.detail.SetEntry(&entry)
			return
		}
	}
	m.detail.SetEntry(nil)
}

// requestVisible asks the cache for whatever the current mode needs:
// the visible window when unfiltered, the full range when filtering.
func (m *Model) requestVisible() {
	if !m.ready {
		return
	}
	if m.list.Filtering() {
		m.prewarm()
		return
	}
	start, end := m.list.VisibleRange()
	if end > start {
		m.cache.RequestRange(m.cache.Generation(), m.cache.Total(), start, end)
	}
}

func (m *Model) prewarm() {
	total := m.cache.Total()
	if total > 0 {
		m.cache.RequestRange(m.cache.Generation(), total, 0, total)
	}
}

// queueFetches turns spans the cache asked for into transport commands.
func (m *Model) queueFetches() {
	for _, span := range m.queue.drain() {
		m.queueCmd(m.fetchRange(span.generation, span.start, span.end))
	}
}

func (m *Model) queueCmd(cmd tea.Cmd) {
	if cmd != nil {
		m.pendingCmds = append(m.pendingCmds, cmd)
	}
}

// handleResize adjusts component sizes when the terminal resizes.
func (m *Model) handleResize() {
	detailWidth := 0
	if m.width >= 100 {
		detailWidth = m.width / 3
	}
	listWidth := m.width - detailWidth

	m.list.Resize(listWidth, m.height-2)
	m.detail.Resize(detailWidth, m.height-2)
}

// moveHighlight moves the keyboard focus by delta rows.
func (m *Model) moveHighlight(delta int) {
	index := m.list.MoveHighlight(delta)
	m.setHighlight(index)
}

func (m *Model) setHighlight(index int) {
	if index == components.NoIndex {
		m.coordinator.ClearHighlight()
		m.list.SetHighlight(selection.None)
	} else {
		m.coordinator.SetHighlight(index)
		m.list.SetHighlight(index)
		m.list.EnsureVisible(index)
	}
	m.syncDetail()
	m.requestVisible()
}

// actionTarget returns the index accept/ignore should act on: the
// highlighted entry when there is one, the selection otherwise.
func (m *Model) actionTarget() int {
	if h := m.coordinator.Highlight(); h != selection.None {
		return h
	}
	return m.selected
}

// localSkip finds the nearest filtered match beyond the action target in
// the given direction using the local filtered set.
func (m *Model) localSkip(dir source.Direction) (int, bool) {
	entries := m.list.Result().Entries
	from := m.actionTarget()

	if dir == source.Next {
		for _, e := range entries {
			if e.Index > from {
				return e.Index, true
			}
		}
		return 0, false
	}

	for i := len(entries) - 1; i >= 0; i-- {
		if entries[i].Index < from {
			return entries[i].Index, true
		}
	}
	return 0, false
}

// Close releases the model's subscriptions.
func (m *Model) Close() {
	m.coordinator.Close()
}
