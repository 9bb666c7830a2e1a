// Package browse is the client-side state layer of the gallery: it keeps a
// paginated window of records in sync with the store, tracks background
// generation jobs, and models multi-record selection.
//
// Every store in this package is observable: Subscribe registers a callback
// that fires after each state change. State mutation happens under each
// store's lock; fetches run asynchronously and their results are applied
// only while still current, so a stale response can never clobber newer
// state.
package browse

import (
	"context"
	"sync"

	"pixery/internal/domain"
	"pixery/internal/ports"
)

// DefaultPageSize is the page size used when none is configured.
const DefaultPageSize = 50

// Cache owns the window of records materialized for the active filter.
//
// The window mirrors exactly what the current filter and page range return
// from the store; it is never locally re-sorted. Records unchanged between
// fetches keep their pointer identity so downstream consumers can skip
// recomputation for them.
type Cache struct {
	gallery  ports.Gallery
	pageSize int64

	mu         sync.Mutex
	filter     domain.Filter
	sig        string
	window     []*domain.Record
	offset     int64
	hasMore    bool
	loading    bool
	searchMode bool
	fetchSeq   uint64
	errText    string

	changed signal
}

// NewCache creates a cache over the given store. pageSize <= 0 selects
// DefaultPageSize.
func NewCache(gallery ports.Gallery, pageSize int64) *Cache {
	if pageSize <= 0 {
		pageSize = DefaultPageSize
	}
	return &Cache{gallery: gallery, pageSize: pageSize}
}

// Subscribe registers fn to run after every window change.
func (c *Cache) Subscribe(fn func()) (cancel func()) {
	return c.changed.subscribe(fn)
}

// Records returns the current window. Callers must treat the records as
// read-only; the slice itself is a copy.
func (c *Cache) Records() []*domain.Record {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]*domain.Record, len(c.window))
	copy(out, c.window)
	return out
}

// Filter returns the currently active filter.
func (c *Cache) Filter() domain.Filter {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.filter
}

// HasMore reports whether another page may exist for the active filter.
func (c *Cache) HasMore() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.hasMore
}

// Loading reports whether a fetch is in flight.
func (c *Cache) Loading() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.loading
}

// Err returns the last fetch error text, empty when the last fetch
// succeeded. A failed fetch never clears the window.
func (c *Cache) Err() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.errText
}

// Reset makes filter the active query and fetches its first page. Any
// in-flight fetch for a different signature is orphaned: its result will be
// discarded on arrival.
func (c *Cache) Reset(ctx context.Context, filter domain.Filter) {
	c.mu.Lock()
	c.filter = filter
	c.sig = filter.Signature()
	c.searchMode = false
	c.offset = 0
	c.errText = ""
	sig := c.sig
	seq := c.beginFetch()
	page := filter.WithPage(c.pageSize, 0)
	c.mu.Unlock()

	go func() {
		recs, err := c.gallery.List(ctx, page)
		c.applyReplace(sig, seq, recs, err, true)
	}()
}

// Refresh re-pulls authoritative state for the current view: the active
// filter's first page, or the active search query when in search mode.
// Used after mutations, which never update the window optimistically.
func (c *Cache) Refresh(ctx context.Context) {
	c.mu.Lock()
	if c.searchMode {
		query, limit := c.filter.Search, c.filter.Limit
		c.mu.Unlock()
		c.Search(ctx, query, limit)
		return
	}
	filter := c.filter
	c.mu.Unlock()
	c.Reset(ctx, filter)
}

// LoadMore fetches the next page and appends it. No-op while a fetch is in
// flight, when the store has no further pages, or in search mode. Appended
// pages are disjoint from the window by construction, so no merge is done.
// A pending LoadMore survives offset changes; only a filter-signature
// change orphans it.
func (c *Cache) LoadMore(ctx context.Context) {
	c.mu.Lock()
	if c.loading || !c.hasMore || c.searchMode {
		c.mu.Unlock()
		return
	}
	sig := c.sig
	seq := c.beginFetch()
	page := c.filter.WithPage(c.pageSize, c.offset)
	c.mu.Unlock()

	go func() {
		recs, err := c.gallery.List(ctx, page)
		c.applyAppend(sig, seq, recs, err)
	}()
}

// Search switches the cache into full-text mode: up to limit matches,
// newest first, replacing the window wholesale. Pagination is disabled
// until the next Reset.
func (c *Cache) Search(ctx context.Context, query string, limit int64) {
	if limit <= 0 {
		limit = 4 * c.pageSize
	}
	c.mu.Lock()
	c.searchMode = true
	c.sig = "search:" + query
	c.filter.Search = query
	c.filter.Limit = limit
	c.hasMore = false
	c.errText = ""
	sig := c.sig
	seq := c.beginFetch()
	c.mu.Unlock()

	go func() {
		recs, err := c.gallery.Search(ctx, query, limit)
		c.applyReplace(sig, seq, recs, err, false)
	}()
}

// beginFetch marks a fetch as in flight and returns its sequence number.
// Callers must hold c.mu.
func (c *Cache) beginFetch() uint64 {
	c.fetchSeq++
	c.loading = true
	return c.fetchSeq
}

// endFetch clears the loading flag if seq is still the newest fetch.
// Callers must hold c.mu.
func (c *Cache) endFetch(seq uint64) {
	if seq == c.fetchSeq {
		c.loading = false
	}
}

func (c *Cache) applyReplace(sig string, seq uint64, recs []*domain.Record, err error, merge bool) {
	c.mu.Lock()
	if sig != c.sig || seq != c.fetchSeq {
		// A newer fetch superseded this one while it was in flight.
		c.mu.Unlock()
		return
	}
	c.endFetch(seq)
	if err != nil {
		c.errText = err.Error()
		c.mu.Unlock()
		c.changed.emit()
		return
	}
	if merge {
		c.window = mergeWindow(c.window, recs)
		c.offset = int64(len(recs))
		c.hasMore = int64(len(recs)) == c.pageSize
	} else {
		c.window = recs
	}
	c.errText = ""
	c.mu.Unlock()
	c.changed.emit()
}

func (c *Cache) applyAppend(sig string, seq uint64, recs []*domain.Record, err error) {
	c.mu.Lock()
	if sig != c.sig {
		c.mu.Unlock()
		return
	}
	c.endFetch(seq)
	if err != nil {
		c.errText = err.Error()
		c.mu.Unlock()
		c.changed.emit()
		return
	}
	c.window = append(c.window, recs...)
	c.offset += int64(len(recs))
	c.hasMore = int64(len(recs)) == c.pageSize
	c.errText = ""
	c.mu.Unlock()
	c.changed.emit()
}

// mergeWindow builds the new window from a fresh page. A fresh record whose
// mutable projection matches the old window's record with the same id
// reuses the old pointer; otherwise the fresh record wins. Ids absent from
// the fresh page are dropped. This bounds downstream recomputation to
// records that actually changed.
func mergeWindow(old, fresh []*domain.Record) []*domain.Record {
	if len(old) == 0 {
		return fresh
	}
	prev := make(map[int64]*domain.Record, len(old))
	for _, r := range old {
		prev[r.ID] = r
	}
	out := make([]*domain.Record, len(fresh))
	for i, r := range fresh {
		if p, ok := prev[r.ID]; ok && p.ProjectionEquals(r) {
			out[i] = p
		} else {
			out[i] = r
		}
	}
	return out
}
