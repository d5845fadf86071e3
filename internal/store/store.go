// Package store holds the canonical in-memory collection of diagrams
// visible to the current user. It is a pure state container: it never talks
// to the network and only changes through the transitions defined here.
// The coordinator is the single writer; UI-layer readers never mutate.
package store

import (
	"sort"
	"sync"

	"github.com/lgmendez/diasync/internal/diagram"
)

// Store is the authoritative diagram collection plus the loading/error/
// selection flags the UI renders from. All transitions are atomic.
type Store struct {
	mu       sync.RWMutex
	items    map[string]diagram.Diagram
	loading  bool
	errMsg   string
	selected string

	subMu   sync.Mutex
	subs    map[int]func()
	nextSub int
}

// New returns an empty store.
func New() *Store {
	return &Store{
		items: make(map[string]diagram.Diagram),
		subs:  make(map[int]func()),
	}
}

// SetAll replaces the collection wholesale. Used after a full refresh.
// A stale selection (id no longer present) is cleared.
func (s *Store) SetAll(diagrams []diagram.Diagram) {
	s.mu.Lock()
	s.items = make(map[string]diagram.Diagram, len(diagrams))
	for _, d := range diagrams {
		s.items[d.ID] = d
	}
	if s.selected != "" {
		if _, ok := s.items[s.selected]; !ok {
			s.selected = ""
		}
	}
	s.mu.Unlock()
	s.notify()
}

// Upsert inserts the diagram if absent, or replaces the stored copy if the
// incoming UpdatedAt is not older than the stored one. Out-of-order push
// delivery therefore degrades to a no-op instead of rolling state back.
// It reports whether the store changed.
func (s *Store) Upsert(d diagram.Diagram) bool {
	s.mu.Lock()
	if cur, ok := s.items[d.ID]; ok && d.UpdatedAt.Before(cur.UpdatedAt) {
		s.mu.Unlock()
		return false
	}
	s.items[d.ID] = d
	s.mu.Unlock()
	s.notify()
	return true
}

// Remove deletes the diagram with the given id. If it was selected the
// selection is cleared. Removing an absent id is a no-op.
func (s *Store) Remove(id string) {
	s.mu.Lock()
	if _, ok := s.items[id]; !ok {
		s.mu.Unlock()
		return
	}
	delete(s.items, id)
	if s.selected == id {
		s.selected = ""
	}
	s.mu.Unlock()
	s.notify()
}

// SetLoading sets the in-flight flag for the current logical operation.
func (s *Store) SetLoading(v bool) {
	s.mu.Lock()
	s.loading = v
	s.mu.Unlock()
	s.notify()
}

// SetError records a human-readable error message; empty clears it.
func (s *Store) SetError(msg string) {
	s.mu.Lock()
	s.errMsg = msg
	s.mu.Unlock()
	s.notify()
}

// SetSelected marks the diagram with the given id as selected. It reports
// false and leaves the selection unchanged when the id is not present.
// An empty id clears the selection.
func (s *Store) SetSelected(id string) bool {
	s.mu.Lock()
	if id != "" {
		if _, ok := s.items[id]; !ok {
			s.mu.Unlock()
			return false
		}
	}
	s.selected = id
	s.mu.Unlock()
	s.notify()
	return true
}

// Get returns the diagram with the given id.
func (s *Store) Get(id string) (diagram.Diagram, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	d, ok := s.items[id]
	return d, ok
}

// List returns a copy of the collection ordered by name, then id for
// stability. Callers may hold the slice across further mutations.
func (s *Store) List() []diagram.Diagram {
	s.mu.RLock()
	out := make([]diagram.Diagram, 0, len(s.items))
	for _, d := range s.items {
		out = append(out, d)
	}
	s.mu.RUnlock()

	sort.Slice(out, func(i, j int) bool {
		if out[i].Name != out[j].Name {
			return out[i].Name < out[j].Name
		}
		return out[i].ID < out[j].ID
	})
	return out
}

// Len returns the number of diagrams held.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.items)
}

// Loading reports whether a logical operation is in flight.
func (s *Store) Loading() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.loading
}

// Err returns the current error message; empty means none.
func (s *Store) Err() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.errMsg
}

// Selected returns the currently selected diagram, if any.
func (s *Store) Selected() (diagram.Diagram, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.selected == "" {
		return diagram.Diagram{}, false
	}
	d, ok := s.items[s.selected]
	return d, ok
}

// Subscribe registers fn to run after every completed transition and
// returns a function that unregisters it. Callbacks run outside the store
// lock, so they may read back freely; they must not block for long.
func (s *Store) Subscribe(fn func()) (unsubscribe func()) {
	s.subMu.Lock()
	id := s.nextSub
	s.nextSub++
	s.subs[id] = fn
	s.subMu.Unlock()

	return func() {
		s.subMu.Lock()
		delete(s.subs, id)
		s.subMu.Unlock()
	}
}

func (s *Store) notify() {
	s.subMu.Lock()
	fns := make([]func(), 0, len(s.subs))
	for _, fn := range s.subs {
		fns = append(fns, fn)
	}
	s.subMu.Unlock()

	for _, fn := range fns {
		fn()
	}
}
