package logstore

import (
	"sync"

	"github.com/agbruneau/hookorder/pkg/models"
)

// Op names the kind of mutation a Change describes.
type Op int

const (
	OpAppend Op = iota // one entry captured
	OpClear            // store emptied
	OpMerge            // entries from another context merged
)

// String makes Op satisfy fmt.Stringer.
func (o Op) String() string {
	switch o {
	case OpAppend:
		return "append"
	case OpClear:
		return "clear"
	case OpMerge:
		return "merge"
	default:
		return "unknown"
	}
}

// Change is delivered to listeners after each mutation. Entries holds the
// appended or merged entries and is empty for OpClear.
type Change struct {
	Op      Op
	Entries []models.LogEntry
}

// Listener is notified synchronously, in no particular order relative to other
// listeners. A listener must not mutate the store it listens to without a bound
// on the recursion.
type Listener func(Change)

// bus is the listener registry. Functions are not comparable in Go, so each
// registration is keyed by a sequence number.
type bus struct {
	mu        sync.RWMutex
	seq       uint64
	listeners map[uint64]Listener
}

func newBus() *bus {
	return &bus{listeners: make(map[uint64]Listener)}
}

func (b *bus) subscribe(l Listener) func() {
	if l == nil {
		return func() {}
	}
	b.mu.Lock()
	id := b.seq
	b.seq++
	b.listeners[id] = l
	b.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			b.mu.Lock()
			delete(b.listeners, id)
			b.mu.Unlock()
		})
	}
}

// publish calls every listener registered at the time of the call.
func (b *bus) publish(c Change) {
	b.mu.RLock()
	targets := make([]Listener, 0, len(b.listeners))
	for _, l := range b.listeners {
		targets = append(targets, l)
	}
	b.mu.RUnlock()

	for _, l := range targets {
		l(c)
	}
}

func (b *bus) len() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.listeners)
}
