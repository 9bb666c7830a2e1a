package browse

import "sync"

// signal is a minimal subscribe/notify list. Emit calls every subscriber;
// subscribers must not block. Safe for concurrent use.
type signal struct {
	mu   sync.Mutex
	next int
	subs map[int]func()
}

func (s *signal) subscribe(fn func()) (cancel func()) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.subs == nil {
		s.subs = make(map[int]func())
	}
	id := s.next
	s.next++
	s.subs[id] = fn
	return func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		delete(s.subs, id)
	}
}

// emit invokes subscribers outside the signal lock so they may re-subscribe
// or read the emitting store.
func (s *signal) emit() {
	s.mu.Lock()
	fns := make([]func(), 0, len(s.subs))
	for _, fn := range s.subs {
		fns = append(fns, fn)
	}
	s.mu.Unlock()
	for _, fn := range fns {
		fn()
	}
}
