package console

import (
	"fmt"
	"io"

	"github.com/agbruneau/hookorder/pkg/models"
)

// Recorder receives every intercepted call. *logstore.Store satisfies it.
type Recorder interface {
	Append(level models.Level, source models.Source, args []any) (models.LogEntry, bool)
}

// Interceptor decorates an original Console. Each call is first forwarded to
// the original with the same arguments, then handed to the recorder. A panic in
// the recorder is reported to the fallback writer and never reaches the caller.
type Interceptor struct {
	original Console
	rec      Recorder
	source   models.Source
	fallback io.Writer
}

// NewInterceptor wraps original. If original is itself an Interceptor, its
// original is wrapped instead so that calls are never forwarded twice.
func NewInterceptor(original Console, rec Recorder, source models.Source, opts ...Option) *Interceptor {
	o := buildOptions(opts)
	original = unwrap(original)
	if original == nil {
		original = Discard
	}
	return &Interceptor{original: original, rec: rec, source: source, fallback: o.fallback}
}

func (i *Interceptor) Log(args ...any)   { i.intercept(models.LevelLog, args) }
func (i *Interceptor) Warn(args ...any)  { i.intercept(models.LevelWarn, args) }
func (i *Interceptor) Error(args ...any) { i.intercept(models.LevelError, args) }
func (i *Interceptor) Info(args ...any)  { i.intercept(models.LevelInfo, args) }
func (i *Interceptor) Debug(args ...any) { i.intercept(models.LevelDebug, args) }

// Unwrap returns the original console.
func (i *Interceptor) Unwrap() Console { return i.original }

// Recorder returns the recorder captured calls are appended to.
func (i *Interceptor) Recorder() Recorder { return i.rec }

// Source returns the origin tag stamped on every captured entry.
func (i *Interceptor) Source() models.Source { return i.source }

func (i *Interceptor) intercept(level models.Level, args []any) {
	Emit(i.original, level, args...)
	i.record(level, args)
}

func (i *Interceptor) record(level models.Level, args []any) {
	if i.rec == nil {
		return
	}
	defer func() {
		if r := recover(); r != nil {
			fmt.Fprintf(i.fallback, "console capture failed: %v\n", r)
		}
	}()
	i.rec.Append(level, i.source, args)
}

func unwrap(c Console) Console {
	for {
		ic, ok := c.(*Interceptor)
		if !ok || ic == nil {
			return c
		}
		c = ic.original
	}
}
