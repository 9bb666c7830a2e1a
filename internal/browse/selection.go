package browse

import (
	"context"
	"fmt"
	"sync"

	"pixery/internal/domain"
	"pixery/internal/ports"
)

// ClickMods are the modifier flags of a pointer interaction.
type ClickMods struct {
	Toggle bool // ctrl/cmd: flip membership in the marked set
	Range  bool // shift: mark the span from the anchor
}

// Selection models single focus plus a multi-mark set over the window
// exposed by a Cache. The marked set feeds batch operations; the anchor is
// the fixed endpoint of range marking.
//
// Focus, anchor, and marks only ever hold ids that were present in a
// window at some point. When the window changes, ids that disappeared are
// pruned silently.
type Selection struct {
	cache   *Cache
	gallery ports.Gallery

	mu       sync.Mutex
	selected int64 // 0 = none
	anchor   int64 // 0 = none
	marked   map[int64]struct{}

	changed signal
}

// NewSelection creates a selection bound to the cache's window ordering.
// It subscribes to the cache to prune ids that leave the window.
func NewSelection(cache *Cache, gallery ports.Gallery) *Selection {
	s := &Selection{
		cache:   cache,
		gallery: gallery,
		marked:  make(map[int64]struct{}),
	}
	cache.Subscribe(s.prune)
	return s
}

// Subscribe registers fn to run after every selection change.
func (s *Selection) Subscribe(fn func()) (cancel func()) {
	return s.changed.subscribe(fn)
}

// Click applies one pointer interaction on the record id. The returned
// openDetail is true only for a plain click, which is the gesture that
// opens the detail view.
func (s *Selection) Click(id int64, mods ClickMods) (openDetail bool) {
	switch {
	case mods.Range:
		s.rangeTo(id)
		return false
	case mods.Toggle:
		s.toggle(id)
		return false
	default:
		s.mu.Lock()
		s.marked = make(map[int64]struct{})
		s.selected = id
		s.anchor = id
		s.mu.Unlock()
		s.changed.emit()
		return true
	}
}

// ToggleFocused is the keyboard equivalent of a toggle click on the
// currently focused id. No-op without focus.
func (s *Selection) ToggleFocused() {
	s.mu.Lock()
	id := s.selected
	s.mu.Unlock()
	if id == 0 {
		return
	}
	s.toggle(id)
}

func (s *Selection) toggle(id int64) {
	s.mu.Lock()
	if _, ok := s.marked[id]; ok {
		delete(s.marked, id)
	} else {
		s.marked[id] = struct{}{}
	}
	s.selected = id
	s.anchor = id
	s.mu.Unlock()
	s.changed.emit()
}

// rangeTo marks every id between the anchor and id in the window's current
// order, inclusive, leaving the anchor where it is. A stale anchor (no
// longer in the window) degrades to a no-op, never an error.
func (s *Selection) rangeTo(id int64) {
	window := s.cache.Records()

	s.mu.Lock()
	anchorIdx, idIdx := -1, -1
	for i, r := range window {
		if r.ID == s.anchor {
			anchorIdx = i
		}
		if r.ID == id {
			idIdx = i
		}
	}
	if s.anchor == 0 || anchorIdx < 0 || idIdx < 0 {
		s.mu.Unlock()
		return
	}
	lo, hi := anchorIdx, idIdx
	if lo > hi {
		lo, hi = hi, lo
	}
	for _, r := range window[lo : hi+1] {
		s.marked[r.ID] = struct{}{}
	}
	s.selected = id
	s.mu.Unlock()
	s.changed.emit()
}

// Clear empties the marked set. Focus and anchor are kept.
func (s *Selection) Clear() {
	s.mu.Lock()
	s.marked = make(map[int64]struct{})
	s.mu.Unlock()
	s.changed.emit()
}

// Selected returns the focused id, 0 if none.
func (s *Selection) Selected() int64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.selected
}

// SetFocus moves focus without touching marks or anchor. Used for cursor
// movement that should not count as a click.
func (s *Selection) SetFocus(id int64) {
	s.mu.Lock()
	s.selected = id
	s.mu.Unlock()
	s.changed.emit()
}

// IsMarked reports membership of id in the marked set.
func (s *Selection) IsMarked(id int64) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.marked[id]
	return ok
}

// MarkedCount returns the size of the marked set.
func (s *Selection) MarkedCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.marked)
}

// MarkedIDs returns the marked ids in the window's current order. Marked
// ids that are momentarily absent from the window are appended at the end
// so a batch operation never silently skips them.
func (s *Selection) MarkedIDs() []int64 {
	window := s.cache.Records()
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]int64, 0, len(s.marked))
	seen := make(map[int64]struct{}, len(s.marked))
	for _, r := range window {
		if _, ok := s.marked[r.ID]; ok {
			out = append(out, r.ID)
			seen[r.ID] = struct{}{}
		}
	}
	for id := range s.marked {
		if _, ok := seen[id]; !ok {
			out = append(out, id)
		}
	}
	return out
}

// CompareIDs returns the two marked ids for a two-up comparison. ok is
// false unless exactly two records are marked.
func (s *Selection) CompareIDs() (a, b int64, ok bool) {
	ids := s.MarkedIDs()
	if len(ids) != 2 {
		return 0, 0, false
	}
	return ids[0], ids[1], true
}

// TagMarked adds tags to every marked record, one mutation per record in
// window order, then refreshes the cache. Mutations are sequential to
// bound store load; the first failure stops the sequence but the refresh
// still runs so the window reflects whatever succeeded.
func (s *Selection) TagMarked(ctx context.Context, tags []string) error {
	return s.applyMarked(ctx, func(id int64) error {
		return s.gallery.AddTags(ctx, id, tags)
	})
}

// TrashMarked moves every marked record to the trash, then refreshes.
func (s *Selection) TrashMarked(ctx context.Context) error {
	return s.applyMarked(ctx, func(id int64) error {
		return s.gallery.Trash(ctx, id)
	})
}

// CollectMarked adds every marked record to the named collection, then
// refreshes.
func (s *Selection) CollectMarked(ctx context.Context, collection string) error {
	return s.applyMarked(ctx, func(id int64) error {
		return s.gallery.AddToCollection(ctx, id, collection)
	})
}

// ReferenceMarked resolves the marked records' archived image paths in
// window order, for feeding into a new generation as reference images.
// Pure read, no mutation and no refresh.
func (s *Selection) ReferenceMarked(ctx context.Context) ([]string, error) {
	ids := s.MarkedIDs()
	paths := make([]string, 0, len(ids))
	for _, id := range ids {
		rec, err := s.gallery.Get(ctx, id)
		if err != nil {
			return nil, fmt.Errorf("record %d: %w", id, err)
		}
		if rec == nil || rec.ImagePath == "" {
			continue
		}
		paths = append(paths, rec.ImagePath)
	}
	return paths, nil
}

// RegenerateMarked re-submits one generation per marked record through
// submit, sequentially in window order, then refreshes the cache so the
// window picks up the spawned jobs' results as they land. The submit
// callback owns provider dispatch; this layer only resolves records and
// applies the usual batch semantics.
func (s *Selection) RegenerateMarked(ctx context.Context, submit func(ctx context.Context, rec *domain.Record) error) error {
	return s.applyMarked(ctx, func(id int64) error {
		rec, err := s.gallery.Get(ctx, id)
		if err != nil {
			return err
		}
		if rec == nil {
			return fmt.Errorf("record no longer exists")
		}
		return submit(ctx, rec)
	})
}

func (s *Selection) applyMarked(ctx context.Context, op func(id int64) error) error {
	ids := s.MarkedIDs()
	var failed error
	for _, id := range ids {
		if err := op(id); err != nil {
			failed = fmt.Errorf("record %d: %w", id, err)
			break
		}
	}
	// The window never mutates optimistically; re-pull regardless of the
	// outcome so it shows authoritative state.
	s.cache.Refresh(ctx)
	return failed
}

// prune drops focus, anchor, and marks whose ids left the window.
func (s *Selection) prune() {
	window := s.cache.Records()
	present := make(map[int64]struct{}, len(window))
	for _, r := range window {
		present[r.ID] = struct{}{}
	}

	s.mu.Lock()
	dirty := false
	if s.selected != 0 {
		if _, ok := present[s.selected]; !ok {
			s.selected = 0
			dirty = true
		}
	}
	if s.anchor != 0 {
		if _, ok := present[s.anchor]; !ok {
			s.anchor = 0
			dirty = true
		}
	}
	for id := range s.marked {
		if _, ok := present[id]; !ok {
			delete(s.marked, id)
			dirty = true
		}
	}
	s.mu.Unlock()
	if dirty {
		s.changed.emit()
	}
}
