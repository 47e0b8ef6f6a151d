package tui

import (
	"context"
	"fmt"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/grzywek/beancount-import/internal/common"
	"github.com/grzywek/beancount-import/internal/filter"
	"github.com/grzywek/beancount-import/internal/model"
	"github.com/grzywek/beancount-import/internal/selection"
	"github.com/grzywek/beancount-import/internal/source"
)

// fakeServer serves a fixed slice of entries. available caps how many
// leading entries FetchRange will return, to simulate slow deliveries;
// -1 means everything.
type fakeServer struct {
	entries    []model.PendingEntry
	generation int64
	available  int
	fetchCalls int
}

func newFakeServer(payees ...string) *fakeServer {
	f := &fakeServer{generation: 1, available: -1}
	for i, payee := range payees {
		f.entries = append(f.entries, model.PendingEntry{
			Date:      time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC).AddDate(0, 0, i),
			Payee:     payee,
			Narration: "card purchase",
			Account:   "Assets:Checking",
			Currency:  "USD",
			Amount:    -float64(10 * (i + 1)),
			Hash:      fmt.Sprintf("hash-%d", i),
		})
	}
	return f
}

func (f *fakeServer) Metadata(context.Context) (model.Metadata, error) {
	return model.Metadata{Generation: f.generation, Total: len(f.entries)}, nil
}

func (f *fakeServer) FetchRange(_ context.Context, generation int64, start, end int) ([]model.PendingEntry, error) {
	f.fetchCalls++
	if generation != f.generation {
		return nil, common.ErrStaleGeneration
	}
	if start < 0 {
		start = 0
	}
	if end > len(f.entries) {
		end = len(f.entries)
	}

	var out []model.PendingEntry
	for i := start; i < end; i++ {
		if f.available >= 0 && i >= f.available {
			break
		}
		entry := f.entries[i]
		entry.Index = i
		entry.Generation = f.generation
		out = append(out, entry)
	}
	return out, nil
}

func (f *fakeServer) Accept(_ context.Context, generation int64, index int) error {
	return f.remove(generation, index)
}

func (f *fakeServer) Ignore(_ context.Context, generation int64, index int) error {
	return f.remove(generation, index)
}

func (f *fakeServer) remove(generation int64, index int) error {
	if generation != f.generation {
		return common.ErrStaleGeneration
	}
	if index < 0 || index >= len(f.entries) {
		return common.ErrIndexOutOfRange
	}
	f.entries = append(f.entries[:index], f.entries[index+1:]...)
	f.generation++
	return nil
}

// stamped returns the entries in [start, end) stamped with the current
// generation, for hand-fed deliveries.
func (f *fakeServer) stamped(start, end int) []model.PendingEntry {
	var out []model.PendingEntry
	for i := start; i < end && i < len(f.entries); i++ {
		entry := f.entries[i]
		entry.Index = i
		entry.Generation = f.generation
		out = append(out, entry)
	}
	return out
}

// runCmd executes a command tree synchronously, feeding resulting messages
// back into the model. Poll ticks and quits terminate the loop.
func runCmd(m *Model, cmd tea.Cmd) {
	if cmd == nil {
		return
	}
	msg := cmd()
	if msg == nil {
		return
	}
	switch msg := msg.(type) {
	case tea.BatchMsg:
		for _, c := range msg {
			runCmd(m, c)
		}
	case tea.QuitMsg, pollTickMsg:
	default:
		_, next := m.Update(msg)
		runCmd(m, next)
	}
}

func feed(m *Model, msg tea.Msg) {
	_, cmd := m.Update(msg)
	runCmd(m, cmd)
}

func press(m *Model, keyType tea.KeyType) {
	feed(m, tea.KeyMsg{Type: keyType})
}

func typeText(m *Model, text string) {
	for _, r := range text {
		feed(m, tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{r}})
	}
}

func newTestModel(t *testing.T, server source.Server, opts ...Option) *Model {
	t.Helper()
	cfg := defaultConfig()
	WithServer(server)(&cfg)
	for _, opt := range opts {
		opt(&cfg)
	}
	m := newModel(cfg)
	t.Cleanup(m.Close)
	return m
}

// sync loads metadata from the server and runs the resulting fetches.
func sync(m *Model) {
	runCmd(m, m.loadMetadata())
}

func TestModelAdoptsMetadataAndFetchesWindow(t *testing.T) {
	server := newFakeServer("Globex", "Initech", "Hooli")
	m := newTestModel(t, server)

	sync(m)

	assert.True(t, m.ready)
	assert.Equal(t, int64(1), m.cache.Generation())
	assert.Equal(t, 3, m.cache.Total())
	assert.Equal(t, 3, m.cache.ResidentCount())
	assert.Equal(t, 1, server.fetchCalls)

	view := m.View()
	assert.Contains(t, view, "Globex")
	assert.Contains(t, view, "3 pending")
}

// outageServer fails the first few fetches, then serves normally.
type outageServer struct {
	*fakeServer
	failures int
}

func (o *outageServer) FetchRange(ctx context.Context, generation int64, start, end int) ([]model.PendingEntry, error) {
	if o.failures > 0 {
		o.failures--
		return nil, fmt.Errorf("transport unavailable")
	}
	return o.fakeServer.FetchRange(ctx, generation, start, end)
}

func TestModelRetriesRangeAfterFetchError(t *testing.T) {
	server := &outageServer{
		fakeServer: newFakeServer("Globex", "Acme", "Initech"),
		failures:   1,
	}
	m := newTestModel(t, server)

	sync(m)
	require.Error(t, m.lastError)
	require.Zero(t, m.cache.ResidentCount())

	// The transport recovered; the next metadata pass under the same
	// generation must retry the span rather than leave it starved.
	sync(m)

	assert.NoError(t, m.lastError)
	assert.Equal(t, 3, m.cache.ResidentCount())
	assert.Equal(t, int64(1), m.cache.Generation())
	assert.Contains(t, m.View(), "Globex")
}

func TestModelFilterStreamingScenario(t *testing.T) {
	payees := make([]string, 10)
	for i := range payees {
		payees[i] = "Globex"
	}
	payees[3] = "Acme Hardware"
	payees[7] = "ACME Supplies"
	server := newFakeServer(payees...)
	server.available = 6

	m := newTestModel(t, server)
	sync(m)
	require.Equal(t, 6, m.cache.ResidentCount())

	typeText(m, "/")
	require.True(t, m.list.FilterFocused())
	typeText(m, "acme")

	assert.Equal(t, "acme", m.list.FilterText())
	// The whole range was already requested for the window; typing the
	// filter must not re-request it.
	assert.Equal(t, 1, server.fetchCalls)

	// Only the first six entries are resident, so one of the two matches
	// is visible and the rebuild is incomplete.
	result := m.list.Result()
	assert.Equal(t, 1, result.MatchCount)
	assert.False(t, result.Complete)
	assert.Contains(t, m.View(), "1 / 10")

	// The rest of the range arrives.
	server.available = -1
	feed(m, entriesMsg{generation: 1, entries: server.stamped(6, 10)})

	result = m.list.Result()
	assert.Equal(t, 2, result.MatchCount)
	assert.True(t, result.Complete)
	assert.Contains(t, m.View(), "2 / 10")
	assert.Equal(t, []int{3, 7}, resultIndices(result.Entries))
}

func TestModelFallbackAcrossGenerationBump(t *testing.T) {
	payees := []string{"Globex", "Acme Hardware", "Globex", "ACME Supplies"}
	server := newFakeServer(payees...)
	m := newTestModel(t, server)
	sync(m)

	typeText(m, "/acme")
	require.Contains(t, m.View(), "2 / 4")

	// A new generation arrives before any of its entries do. The last
	// non-empty set keeps showing, marked as stale.
	m.Update(metadataMsg{meta: model.Metadata{Generation: 2, Total: 3}})

	result := m.list.Result()
	assert.True(t, result.Fallback)
	assert.Equal(t, int64(2), result.Generation)
	assert.Contains(t, m.View(), "…")
	assert.Contains(t, m.View(), "Acme Hardware")

	// The full new generation arrives with no matches at all. Confirmed
	// empty replaces the fallback.
	fresh := []model.PendingEntry{
		{Payee: "Globex", Index: 0, Generation: 2, Currency: "USD"},
		{Payee: "Initech", Index: 1, Generation: 2, Currency: "USD"},
		{Payee: "Hooli", Index: 2, Generation: 2, Currency: "USD"},
	}
	m.Update(entriesMsg{generation: 2, entries: fresh})

	result = m.list.Result()
	assert.False(t, result.Fallback)
	assert.Empty(t, result.Entries)
	assert.Contains(t, m.View(), "0 / 3")
}

func TestModelSelectionRepairAfterMutation(t *testing.T) {
	payees := []string{"Globex", "Acme A", "Globex", "Acme B", "Globex", "Acme C"}
	server := newFakeServer(payees...)
	m := newTestModel(t, server)
	sync(m)

	typeText(m, "/acme")
	press(m, tea.KeyEnter) // blur the filter input
	require.Equal(t, []int{1, 3, 5}, resultIndices(m.list.Result().Entries))

	// Highlight and select the middle match.
	typeText(m, "jj")
	press(m, tea.KeyEnter)
	require.Equal(t, 3, m.selected)

	// An external mutation removes the entry before the selection: every
	// match shifts down by one, and the selection repairs to the nearest
	// surviving index at or after the old one.
	require.NoError(t, server.remove(1, 0))
	sync(m)

	assert.Equal(t, []int{0, 2, 4}, resultIndices(m.list.Result().Entries))
	assert.Equal(t, 4, m.selected)
}

func TestModelBracketSkipsBetweenMatches(t *testing.T) {
	payees := []string{"Acme A", "Globex", "Acme B", "Globex", "Acme C"}
	server := newFakeServer(payees...)
	m := newTestModel(t, server)
	sync(m)

	typeText(m, "/acme")
	press(m, tea.KeyEnter)

	typeText(m, "]")
	assert.Equal(t, 0, m.selected)
	typeText(m, "]")
	assert.Equal(t, 2, m.selected)
	typeText(m, "]")
	assert.Equal(t, 4, m.selected)

	// Past the last match: the selection stays put.
	typeText(m, "]")
	assert.Equal(t, 4, m.selected)
	assert.Equal(t, "no further match", m.statusMsg)

	typeText(m, "[")
	assert.Equal(t, 2, m.selected)
}

func TestModelFilterInputCapturesKeysFirst(t *testing.T) {
	server := newFakeServer("Globex", "Acme")
	m := newTestModel(t, server)
	sync(m)

	typeText(m, "/")
	require.True(t, m.list.FilterFocused())

	// While the input is focused, these are text, not commands.
	typeText(m, "q/j")

	assert.False(t, m.quitting)
	assert.Equal(t, "q/j", m.list.FilterText())
	assert.Equal(t, selection.None, m.coordinator.Highlight())
}

func TestModelEscapeClearsFilter(t *testing.T) {
	server := newFakeServer("Globex", "Acme", "Initech")
	m := newTestModel(t, server)
	sync(m)

	typeText(m, "/acme")
	require.True(t, m.list.Filtering())

	press(m, tea.KeyEsc)

	assert.False(t, m.list.Filtering())
	assert.Empty(t, m.list.FilterText())
	assert.Contains(t, m.View(), "3 pending")
}

func TestModelAcceptReloadsMetadata(t *testing.T) {
	server := newFakeServer("Globex", "Acme", "Initech")
	m := newTestModel(t, server)
	sync(m)

	typeText(m, "j") // highlight index 0
	typeText(m, "a")

	assert.Equal(t, int64(2), m.cache.Generation())
	assert.Equal(t, 2, m.cache.Total())
	assert.Equal(t, "entry accepted", m.statusMsg)
}

func TestModelHelpOverlayEatsKeys(t *testing.T) {
	server := newFakeServer("Globex")
	m := newTestModel(t, server)
	sync(m)

	typeText(m, "?")
	require.True(t, m.showHelp)
	assert.Contains(t, m.View(), "Keyboard shortcuts")

	// Keys close the overlay instead of acting on the list.
	typeText(m, "j")
	assert.False(t, m.showHelp)
	assert.Equal(t, selection.None, m.coordinator.Highlight())
}

func TestModelQuit(t *testing.T) {
	server := newFakeServer("Globex")
	m := newTestModel(t, server)
	sync(m)

	typeText(m, "q")
	assert.True(t, m.quitting)
	assert.Empty(t, m.View())
}

func resultIndices(entries []filter.Entry) []int {
	indices := make([]int, 0, len(entries))
	for _, e := range entries {
		indices = append(indices, e.Index)
	}
	return indices
}
