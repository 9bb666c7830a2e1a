package views

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"pixery/internal/browse"
	"pixery/internal/domain"
)

// stubGallery is an in-memory ports.Gallery for view tests.
type stubGallery struct {
	mu      sync.Mutex
	records []*domain.Record
	trashed []int64
}

func (g *stubGallery) List(_ context.Context, f domain.Filter) ([]*domain.Record, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	var active []*domain.Record
	for _, r := range g.records {
		if r.Trashed() == f.Trashed {
			active = append(active, r)
		}
	}
	start := min(int(f.Offset), len(active))
	end := min(start+int(f.Limit), len(active))
	return append([]*domain.Record(nil), active[start:end]...), nil
}

func (g *stubGallery) Search(_ context.Context, query string, limit int64) ([]*domain.Record, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	var out []*domain.Record
	for _, r := range g.records {
		if r.Prompt == query {
			out = append(out, r)
		}
	}
	return out, nil
}

func (g *stubGallery) Get(_ context.Context, id int64) (*domain.Record, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	for _, r := range g.records {
		if r.ID == id {
			return r, nil
		}
	}
	return nil, nil
}

func (g *stubGallery) Insert(context.Context, *domain.Record) (int64, error) { return 0, nil }

func (g *stubGallery) ToggleStar(_ context.Context, id int64) (bool, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	for _, r := range g.records {
		if r.ID == id {
			r.Starred = !r.Starred
			return r.Starred, nil
		}
	}
	return false, fmt.Errorf("no record %d", id)
}

func (g *stubGallery) SetTitle(context.Context, int64, string) error  { return nil }
func (g *stubGallery) SetPrompt(context.Context, int64, string) error { return nil }
func (g *stubGallery) AddTags(context.Context, int64, []string) error { return nil }
func (g *stubGallery) RemoveTag(context.Context, int64, string) error { return nil }

func (g *stubGallery) Trash(_ context.Context, id int64) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.trashed = append(g.trashed, id)
	for _, r := range g.records {
		if r.ID == id {
			r.TrashedAt = "2026-08-28T12:00:00"
		}
	}
	return nil
}

func (g *stubGallery) TrashMany(ctx context.Context, ids []int64) (int, error) {
	for _, id := range ids {
		g.Trash(ctx, id)
	}
	return len(ids), nil
}

func (g *stubGallery) Restore(context.Context, int64) error            { return nil }
func (g *stubGallery) Delete(context.Context, int64) (string, error)   { return "", nil }
func (g *stubGallery) AddToCollection(context.Context, int64, string) error      { return nil }
func (g *stubGallery) RemoveFromCollection(context.Context, int64, string) error { return nil }
func (g *stubGallery) ListCollections(context.Context) ([]domain.Collection, error) {
	return nil, nil
}
func (g *stubGallery) ListTags(context.Context) ([]domain.TagCount, error) { return nil, nil }
func (g *stubGallery) CostSummary(context.Context, string) (domain.CostSummary, error) {
	return domain.CostSummary{}, nil
}

type noopJobs struct{}

func (noopJobs) CreateJob(context.Context, string, string, []string, domain.JobSource, int) (int64, error) {
	return 0, nil
}
func (noopJobs) MarkStarted(context.Context, int64) error            { return nil }
func (noopJobs) MarkCompleted(context.Context, int64, int64) error   { return nil }
func (noopJobs) MarkFailed(context.Context, int64, string) error     { return nil }
func (noopJobs) ListActive(context.Context) ([]domain.Job, error)    { return nil, nil }
func (noopJobs) ListFailed(context.Context, int64) ([]domain.Job, error) {
	return nil, nil
}
func (noopJobs) CleanupStalled(context.Context) (int, error) { return 0, nil }
func (noopJobs) CleanupOld(context.Context, int) (int, error) {
	return 0, nil
}

func testRecords(n int) []*domain.Record {
	records := make([]*domain.Record, 0, n)
	for i := 1; i <= n; i++ {
		records = append(records, &domain.Record{
			ID:        int64(i),
			Prompt:    fmt.Sprintf("prompt %d", i),
			Model:     "dall-e-3",
			Date:      "2026-08-28",
			ImagePath: fmt.Sprintf("2026-08-28/prompt-%d.png", i),
		})
	}
	return records
}

func keyPress(s string) tea.KeyMsg {
	switch s {
	case "enter":
		return tea.KeyMsg{Type: tea.KeyEnter}
	case "esc":
		return tea.KeyMsg{Type: tea.KeyEsc}
	case "space":
		return tea.KeyMsg{Type: tea.KeySpace, Runes: []rune{' '}}
	}
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

// newTestModel builds a gallery model over stub data with the first page
// already loaded and synced.
func newTestModel(t *testing.T, pageSize int64, records ...*domain.Record) (*GalleryModel, *stubGallery, chan struct{}) {
	t.Helper()
	gallery := &stubGallery{records: records}
	cache := browse.NewCache(gallery, pageSize)
	sel := browse.NewSelection(cache, gallery)
	tracker := browse.NewJobTracker(noopJobs{}, browse.TrackerConfig{})

	ch := make(chan struct{}, 16)
	cache.Subscribe(func() { ch <- struct{}{} })

	m := NewGalleryModel(gallery, cache, sel, tracker, 200)
	runCmd(t, m, m.Init(), ch)
	return m, gallery, ch
}

// runCmd executes a command, waits for the cache fetch it started, and
// feeds the resulting state change back into the model.
func runCmd(t *testing.T, m *GalleryModel, cmd tea.Cmd, ch chan struct{}) {
	t.Helper()
	if cmd == nil {
		return
	}
	if msg := cmd(); msg != nil {
		if _, ok := msg.(StateChangedMsg); ok {
			select {
			case <-ch:
			case <-time.After(2 * time.Second):
				t.Fatal("timed out waiting for the cache")
			}
		}
		m.Update(msg)
	}
}

func press(m *GalleryModel, keys ...string) tea.Cmd {
	var cmd tea.Cmd
	for _, k := range keys {
		_, cmd = m.Update(keyPress(k))
	}
	return cmd
}

func TestNavigationMovesFocus(t *testing.T) {
	m, _, _ := newTestModel(t, 10, testRecords(5)...)

	press(m, "j", "j")
	if m.cursor.Pos() != 2 {
		t.Fatalf("cursor = %d, want 2", m.cursor.Pos())
	}
	if got := m.sel.Selected(); got != 3 {
		t.Errorf("focused id = %d, want 3", got)
	}

	press(m, "k")
	if got := m.sel.Selected(); got != 2 {
		t.Errorf("focused id after up = %d, want 2", got)
	}
}

func TestMarkAndRangeKeys(t *testing.T) {
	m, _, _ := newTestModel(t, 10, testRecords(6)...)

	press(m, "space") // mark #1, sets the anchor
	press(m, "j", "j", "j")
	press(m, "v") // range to #4

	if got := m.sel.MarkedCount(); got != 4 {
		t.Fatalf("marked = %d, want 4", got)
	}
	for id := int64(1); id <= 4; id++ {
		if !m.sel.IsMarked(id) {
			t.Errorf("id %d should be marked", id)
		}
	}
}

func TestEnterOpensDetailForFocusedRecord(t *testing.T) {
	m, _, _ := newTestModel(t, 10, testRecords(3)...)

	press(m, "j")
	cmd := press(m, "enter")
	if cmd == nil {
		t.Fatal("enter should produce a command")
	}
	msg, ok := cmd().(SwitchToDetailMsg)
	if !ok {
		t.Fatalf("got %T, want SwitchToDetailMsg", cmd())
	}
	if msg.ID != 2 {
		t.Errorf("detail id = %d, want 2", msg.ID)
	}
}

func TestCompareRequiresExactlyTwoMarks(t *testing.T) {
	m, _, _ := newTestModel(t, 10, testRecords(4)...)

	press(m, "space")
	if cmd := press(m, "x"); cmd != nil {
		t.Fatal("compare with one mark should not switch views")
	}
	if m.Message == "" {
		t.Error("expected an explanatory message")
	}

	press(m, "j", "space")
	cmd := press(m, "x")
	if cmd == nil {
		t.Fatal("compare with two marks should switch views")
	}
	if _, ok := cmd().(SwitchToCompareMsg); !ok {
		t.Fatalf("got %T, want SwitchToCompareMsg", cmd())
	}
}

func TestTrashAsksForConfirmation(t *testing.T) {
	m, gallery, ch := newTestModel(t, 10, testRecords(3)...)

	press(m, "d")
	if !m.confirmTrash {
		t.Fatal("trash should ask for confirmation first")
	}

	// Cancelling leaves everything in place.
	press(m, "n")
	if m.confirmTrash {
		t.Fatal("n should cancel the confirmation")
	}
	if len(gallery.trashed) != 0 {
		t.Fatalf("nothing should be trashed yet, got %v", gallery.trashed)
	}

	press(m, "d")
	cmd := press(m, "y")
	runCmd(t, m, cmd, ch)

	if len(gallery.trashed) != 1 || gallery.trashed[0] != 1 {
		t.Fatalf("trashed = %v, want [1]", gallery.trashed)
	}
}

func TestTrashMarkedTrashesTheWholeSet(t *testing.T) {
	m, gallery, ch := newTestModel(t, 10, testRecords(4)...)

	press(m, "space", "j", "space") // mark #1 and #2
	press(m, "d")
	if m.trashCount != 2 {
		t.Fatalf("confirmation count = %d, want 2", m.trashCount)
	}
	cmd := press(m, "y")
	if cmd == nil {
		t.Fatal("confirm should produce a command")
	}
	cmd() // TrashMarked refreshes the cache itself
	select {
	case <-ch:
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for the refresh")
	}

	if len(gallery.trashed) != 2 {
		t.Fatalf("trashed = %v, want two ids", gallery.trashed)
	}
}

func TestUseAsReferencesCarriesMarkedPaths(t *testing.T) {
	m, _, _ := newTestModel(t, 10, testRecords(4)...)

	// Without marks the key only explains itself.
	if cmd := press(m, "e"); cmd != nil {
		t.Fatal("e without marks should not switch views")
	}
	if m.Message == "" {
		t.Error("expected an explanatory message")
	}

	press(m, "space", "j", "space") // mark #1 and #2
	cmd := press(m, "e")
	if cmd == nil {
		t.Fatal("e with marks should produce a command")
	}
	msg, ok := cmd().(SwitchToGenerateMsg)
	if !ok {
		t.Fatalf("got %T, want SwitchToGenerateMsg", cmd())
	}
	want := []string{"2026-08-28/prompt-1.png", "2026-08-28/prompt-2.png"}
	if len(msg.ReferencePaths) != len(want) ||
		msg.ReferencePaths[0] != want[0] || msg.ReferencePaths[1] != want[1] {
		t.Errorf("reference paths = %v, want %v", msg.ReferencePaths, want)
	}
}

func TestRegenerateConfirmsThenSignalsBatch(t *testing.T) {
	m, _, _ := newTestModel(t, 10, testRecords(3)...)

	if cmd := press(m, "R"); cmd != nil || m.confirmRegen {
		t.Fatal("regenerate without marks should not ask for confirmation")
	}

	press(m, "space", "j", "space") // mark #1 and #2
	press(m, "R")
	if !m.confirmRegen || m.regenCount != 2 {
		t.Fatalf("confirmRegen = %v count = %d, want true/2", m.confirmRegen, m.regenCount)
	}

	// Cancelling backs out without a batch.
	press(m, "n")
	if m.confirmRegen {
		t.Fatal("n should cancel the confirmation")
	}

	press(m, "R")
	cmd := press(m, "y")
	if cmd == nil {
		t.Fatal("confirm should produce a command")
	}
	if _, ok := cmd().(RegenerateMarkedMsg); !ok {
		t.Fatalf("got %T, want RegenerateMarkedMsg", cmd())
	}
}

func TestCursorNearEndTriggersLoadMore(t *testing.T) {
	m, _, ch := newTestModel(t, 3, testRecords(6)...)

	if got := len(m.cache.Records()); got != 3 {
		t.Fatalf("first page = %d records, want 3", got)
	}

	// Walk to the bottom of the loaded window.
	cmd := press(m, "j", "j")
	runCmd(t, m, cmd, ch)

	if got := len(m.cache.Records()); got != 6 {
		t.Fatalf("window = %d records after load-more, want 6", got)
	}
}

func TestSearchInputRunsSearch(t *testing.T) {
	m, _, ch := newTestModel(t, 10, testRecords(5)...)

	press(m, "/")
	if m.inputFor != inputSearch {
		t.Fatal("slash should open the search input")
	}
	m.input.SetValue("prompt 4")
	cmd := press(m, "enter")
	runCmd(t, m, cmd, ch)

	records := m.cache.Records()
	if len(records) != 1 || records[0].ID != 4 {
		t.Fatalf("search window = %v, want just #4", records)
	}
}
