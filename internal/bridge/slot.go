package bridge

import "sync"

// Slot holds the single embedded payload of a page. The payload is consumed
// exactly once: after Take succeeds the slot is empty.
type Slot struct {
	mu      sync.Mutex
	data    []byte
	present bool
}

// Fill replaces the slot content.
func (s *Slot) Fill(data []byte) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.data = data
	s.present = true
}

// Take returns the payload and empties the slot.
func (s *Slot) Take() ([]byte, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.present {
		return nil, false
	}
	data := s.data
	s.data, s.present = nil, false
	return data, true
}

// Present reports whether a payload is waiting.
func (s *Slot) Present() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.present
}
