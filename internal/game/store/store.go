package store

import (
	"sync"

	"GGPoker/internal/game/table"
)

const DefaultLogSize = 200

// Store holds the current table snapshot and a bounded log of raw inbound
// messages. The realtime channel is its only writer.
type Store struct {
	mu      sync.RWMutex
	current *table.Snapshot
	log     *ring
	closed  bool
}

func New(logSize int) *Store {
	if logSize <= 0 {
		logSize = DefaultLogSize
	}
	return &Store{log: newRing(logSize)}
}

// Current returns the latest snapshot, if one has arrived.
func (s *Store) Current() (table.Snapshot, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.current == nil {
		return table.Snapshot{}, false
	}
	return *s.current, true
}

// Replace swaps in snap as the current snapshot. Nothing of the previous
// snapshot survives.
func (s *Store) Replace(snap table.Snapshot) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}
	s.current = &snap
}

func (s *Store) Append(raw string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}
	s.log.push(raw)
}

// Messages returns the retained log, oldest first.
func (s *Store) Messages() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.log.items()
}

// Close makes every later write a no-op. Reads keep working.
func (s *Store) Close() {
	s.mu.Lock()
	s.closed = true
	s.mu.Unlock()
}

type ring struct {
	buf   []string
	start int
	n     int
}

func newRing(size int) *ring {
	return &ring{buf: make([]string, size)}
}

func (r *ring) push(v string) {
	if r.n < len(r.buf) {
		r.buf[(r.start+r.n)%len(r.buf)] = v
		r.n++
		return
	}
	r.buf[r.start] = v
	r.start = (r.start + 1) % len(r.buf)
}

func (r *ring) items() []string {
	out := make([]string, 0, r.n)
	for i := 0; i < r.n; i++ {
		out = append(out, r.buf[(r.start+i)%len(r.buf)])
	}
	return out
}
