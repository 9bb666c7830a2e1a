// Package watcher notifies subscribers when generation images land in the
// archive from outside the running process, e.g. a CLI generation while the
// TUI is open.
package watcher

import (
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"pixery/internal/ports"
)

// debounce coalesces the burst of events one generation produces (image
// write, thumbnail write, metadata touches) into a single notification.
const debounce = 500 * time.Millisecond

// Watcher implements ports.Notifier over fsnotify events on the
// generations directory.
type Watcher struct {
	fs  *fsnotify.Watcher
	dir string
	log *slog.Logger

	mu      sync.Mutex
	next    int
	subs    map[int]func()
	pending *time.Timer

	done chan struct{}
}

var _ ports.Notifier = (*Watcher)(nil)

// New starts watching dir and its date subdirectories. Close releases the
// watch.
func New(dir string, log *slog.Logger) (*Watcher, error) {
	fs, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	w := &Watcher{
		fs:   fs,
		dir:  dir,
		log:  log,
		subs: make(map[int]func()),
		done: make(chan struct{}),
	}

	// fsnotify has no recursive mode: watch the root plus every existing
	// date directory, and pick up new ones as they appear.
	if err := fs.Add(dir); err != nil {
		fs.Close()
		return nil, err
	}
	entries, err := os.ReadDir(dir)
	if err == nil {
		for _, e := range entries {
			if e.IsDir() {
				if err := fs.Add(filepath.Join(dir, e.Name())); err != nil {
					log.Warn("failed to watch date directory", "dir", e.Name(), "err", err)
				}
			}
		}
	}

	go w.run()
	return w, nil
}

// Subscribe registers fn to run on every coalesced notification.
func (w *Watcher) Subscribe(fn func()) (cancel func()) {
	w.mu.Lock()
	defer w.mu.Unlock()
	id := w.next
	w.next++
	w.subs[id] = fn
	return func() {
		w.mu.Lock()
		defer w.mu.Unlock()
		delete(w.subs, id)
	}
}

// Close stops the watcher. Pending debounced notifications are dropped.
func (w *Watcher) Close() error {
	close(w.done)
	w.mu.Lock()
	if w.pending != nil {
		w.pending.Stop()
		w.pending = nil
	}
	w.mu.Unlock()
	return w.fs.Close()
}

func (w *Watcher) run() {
	for {
		select {
		case <-w.done:
			return
		case event, ok := <-w.fs.Events:
			if !ok {
				return
			}
			w.handle(event)
		case err, ok := <-w.fs.Errors:
			if !ok {
				return
			}
			w.log.Warn("watch error", "err", err)
		}
	}
}

func (w *Watcher) handle(event fsnotify.Event) {
	if event.Op.Has(fsnotify.Create) {
		if info, err := os.Stat(event.Name); err == nil && info.IsDir() {
			if err := w.fs.Add(event.Name); err != nil {
				w.log.Warn("failed to watch new date directory", "dir", event.Name, "err", err)
			}
			return
		}
	}
	if !event.Op.Has(fsnotify.Create) && !event.Op.Has(fsnotify.Write) {
		return
	}
	if !isGenerationImage(event.Name) {
		return
	}
	w.schedule()
}

// schedule arms (or re-arms) the debounce timer.
func (w *Watcher) schedule() {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.pending != nil {
		w.pending.Reset(debounce)
		return
	}
	w.pending = time.AfterFunc(debounce, w.fire)
}

func (w *Watcher) fire() {
	w.mu.Lock()
	w.pending = nil
	fns := make([]func(), 0, len(w.subs))
	for _, fn := range w.subs {
		fns = append(fns, fn)
	}
	w.mu.Unlock()

	select {
	case <-w.done:
		return
	default:
	}
	for _, fn := range fns {
		fn()
	}
}

// isGenerationImage reports whether path looks like a full generation
// image. Thumbnails never count.
func isGenerationImage(path string) bool {
	name := filepath.Base(path)
	if strings.Contains(name, ".thumb.") {
		return false
	}
	switch strings.ToLower(filepath.Ext(name)) {
	case ".png", ".jpg", ".jpeg", ".webp":
		return true
	}
	return false
}
