/*
Package logstore provides the append-only store of captured console entries
and the synchronous notification bus that republishes every mutation to
registered listeners.

One Store exists per execution context. The composition root constructs it and
hands it to the console interceptor; nothing in this package is global.
*/
package logstore

import (
	"slices"
	"sync"
	"time"

	"github.com/agbruneau/hookorder/internal/format"
	"github.com/agbruneau/hookorder/pkg/models"
)

// DefaultCapacity is the initial capacity reserved for the entry slice.
const DefaultCapacity = 256

// Store owns an ordered sequence of entries, the id counter, the pause flag and
// the listener registry. All methods are safe for concurrent use; listeners are
// always invoked after the internal lock has been released.
type Store struct {
	mu       sync.RWMutex
	entries  []models.LogEntry
	snapshot []models.LogEntry // cached read view, nil when stale
	nextID   int64
	version  uint64
	paused   bool
	now      func() time.Time
	bus      *bus
}

// Option configures a Store at construction time.
type Option func(*Store)

// WithClock replaces time.Now as the timestamp source.
func WithClock(now func() time.Time) Option {
	return func(s *Store) {
		if now != nil {
			s.now = now
		}
	}
}

// WithCapacity reserves room for n entries up front.
func WithCapacity(n int) Option {
	return func(s *Store) {
		if n > 0 {
			s.entries = make([]models.LogEntry, 0, n)
		}
	}
}

// WithPaused sets the initial pause flag.
func WithPaused(paused bool) Option {
	return func(s *Store) {
		s.paused = paused
	}
}

// New creates an empty store whose first entry will receive id 0.
func New(opts ...Option) *Store {
	s := &Store{
		entries: make([]models.LogEntry, 0, DefaultCapacity),
		now:     time.Now,
		bus:     newBus(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Append records one logging call. It copies args, renders and classifies them,
// assigns the next id and notifies listeners. While the store is paused the call
// is a no-op: nothing is recorded, the counter does not move and the second
// return value is false.
func (s *Store) Append(level models.Level, source models.Source, args []any) (models.LogEntry, bool) {
	s.mu.Lock()
	if s.paused {
		s.mu.Unlock()
		return models.LogEntry{}, false
	}
	entry := s.build(level, source, args)
	entry.ID = s.nextID
	s.nextID++
	s.push(entry)
	s.mu.Unlock()

	s.bus.publish(Change{Op: OpAppend, Entries: []models.LogEntry{entry}})
	return entry, true
}

// build is called with s.mu held; formatting never panics (see format.Arg).
func (s *Store) build(level models.Level, source models.Source, args []any) models.LogEntry {
	formatted := format.Args(args...)
	return models.LogEntry{
		Timestamp: s.now().UnixMilli(),
		Level:     level,
		Args:      slices.Clone(args),
		Formatted: formatted,
		Source:    source,
		HookType:  format.DetectHookType(formatted),
	}
}

func (s *Store) push(entries ...models.LogEntry) {
	s.entries = append(s.entries, entries...)
	s.snapshot = nil
	s.version++
}

// Merge appends entries captured in another context. Each entry receives a fresh
// id from this store's counter, relative order is preserved and listeners are
// notified once. Merge ignores the pause flag. The stored copies are returned.
func (s *Store) Merge(entries []models.LogEntry) []models.LogEntry {
	if len(entries) == 0 {
		return nil
	}
	merged := make([]models.LogEntry, len(entries))
	s.mu.Lock()
	for i, e := range entries {
		e.ID = s.nextID
		s.nextID++
		merged[i] = e
	}
	s.push(merged...)
	s.mu.Unlock()

	s.bus.publish(Change{Op: OpMerge, Entries: slices.Clone(merged)})
	return merged
}

// Snapshot returns the current entries as a read-only slice. Callers must not
// modify it. Until the next mutation every call returns the same backing
// array, so consumers can detect changes by identity.
func (s *Store) Snapshot() []models.LogEntry {
	s.mu.RLock()
	if snap := s.snapshot; snap != nil {
		s.mu.RUnlock()
		return snap
	}
	s.mu.RUnlock()

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.snapshot == nil {
		s.snapshot = make([]models.LogEntry, len(s.entries))
		copy(s.snapshot, s.entries)
	}
	return s.snapshot
}

// Logs returns a fresh copy of the current entries.
func (s *Store) Logs() []models.LogEntry {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]models.LogEntry, len(s.entries))
	copy(out, s.entries)
	return out
}

// Len returns the number of stored entries.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.entries)
}

// Version increases by one on every mutation (append, merge, clear).
func (s *Store) Version() uint64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.version
}

// Clear empties the store, resets the id counter to zero and notifies listeners.
func (s *Store) Clear() {
	s.mu.Lock()
	s.entries = s.entries[:0:0]
	s.nextID = 0
	s.snapshot = nil
	s.version++
	s.mu.Unlock()

	s.bus.publish(Change{Op: OpClear})
}

// SetPaused toggles capture. The pass-through to the original console is not
// affected; see console.Interceptor.
func (s *Store) SetPaused(paused bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.paused = paused
}

// Paused reports whether capture is paused.
func (s *Store) Paused() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.paused
}

// Subscribe registers l and returns a function that removes exactly that
// registration. Calling the returned function more than once is a no-op.
func (s *Store) Subscribe(l Listener) (unsubscribe func()) {
	return s.bus.subscribe(l)
}

// Listeners returns the number of registered listeners.
func (s *Store) Listeners() int {
	return s.bus.len()
}
