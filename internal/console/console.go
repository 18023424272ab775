/*
Package console is the logging facade application code writes to.

A Console has the five standard severities. Pass-through implementations write
to the real destination (a terminal, a file, slog). An Interceptor decorates a
pass-through: every call is forwarded unchanged and then recorded into a store.
A Host owns the current Console of one execution context and makes installing
the interceptor idempotent.
*/
package console

import (
	"io"
	"os"

	"github.com/agbruneau/hookorder/pkg/models"
)

// Console is the set of logging operations application code may call.
type Console interface {
	Log(args ...any)
	Warn(args ...any)
	Error(args ...any)
	Info(args ...any)
	Debug(args ...any)
}

// Emit calls the method of c that matches level. Unknown levels go to Log.
func Emit(c Console, level models.Level, args ...any) {
	switch level {
	case models.LevelWarn:
		c.Warn(args...)
	case models.LevelError:
		c.Error(args...)
	case models.LevelInfo:
		c.Info(args...)
	case models.LevelDebug:
		c.Debug(args...)
	default:
		c.Log(args...)
	}
}

// Discard is a Console that drops everything.
var Discard Console = discard{}

type discard struct{}

func (discard) Log(...any)   {}
func (discard) Warn(...any)  {}
func (discard) Error(...any) {}
func (discard) Info(...any)  {}
func (discard) Debug(...any) {}

type options struct {
	fallback io.Writer
}

// Option tunes a WriterConsole, an Interceptor or a Host.
type Option func(*options)

// WithFallback sets where internal failures are reported. Default is os.Stderr.
func WithFallback(w io.Writer) Option {
	return func(o *options) {
		if w != nil {
			o.fallback = w
		}
	}
}

func buildOptions(opts []Option) options {
	o := options{fallback: os.Stderr}
	for _, opt := range opts {
		opt(&o)
	}
	return o
}
