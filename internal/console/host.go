package console

import (
	"reflect"
	"sync"

	"github.com/agbruneau/hookorder/pkg/models"
)

// Host owns the current Console of one execution context. Host itself
// implements Console by delegating to whatever is installed, so application
// code can hold the Host and never observe a re-installation.
type Host struct {
	mu       sync.RWMutex
	original Console
	current  *Interceptor
	opts     []Option
}

// NewHost remembers original as the pass-through. Options are passed to every
// interceptor the host installs.
func NewHost(original Console, opts ...Option) *Host {
	original = unwrap(original)
	if original == nil {
		original = Discard
	}
	return &Host{original: original, opts: opts}
}

// Install activates interception into rec. Installing again with the same
// recorder and source returns the interceptor already in place. Recorders
// whose dynamic type is not comparable are never considered the same. Installing with
// a different recorder or source replaces it; the new interceptor always wraps
// the original, never the previous interceptor.
func (h *Host) Install(rec Recorder, source models.Source) *Interceptor {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.current != nil && sameRecorder(h.current.rec, rec) && h.current.source == source {
		return h.current
	}
	h.current = NewInterceptor(h.original, rec, source, h.opts...)
	return h.current
}

func sameRecorder(a, b Recorder) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	ta, tb := reflect.TypeOf(a), reflect.TypeOf(b)
	if ta != tb || !ta.Comparable() {
		return false
	}
	return a == b
}

// Uninstall restores the original console.
func (h *Host) Uninstall() {
	h.mu.Lock()
	h.current = nil
	h.mu.Unlock()
}

// Installed reports whether an interceptor is active.
func (h *Host) Installed() bool {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.current != nil
}

// Console returns the active interceptor, or the original when none is installed.
func (h *Host) Console() Console {
	h.mu.RLock()
	defer h.mu.RUnlock()
	if h.current != nil {
		return h.current
	}
	return h.original
}

// Original returns the pass-through console.
func (h *Host) Original() Console {
	return h.original
}

func (h *Host) Log(args ...any)   { h.Console().Log(args...) }
func (h *Host) Warn(args ...any)  { h.Console().Warn(args...) }
func (h *Host) Error(args ...any) { h.Console().Error(args...) }
func (h *Host) Info(args ...any)  { h.Console().Info(args...) }
func (h *Host) Debug(args ...any) { h.Console().Debug(args...) }
