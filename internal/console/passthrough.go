package console

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"sync"

	"github.com/agbruneau/hookorder/internal/format"
)

// WriterConsole writes each call as one line. log, info and debug go to out;
// warn and error go to errOut. Safe for concurrent use.
type WriterConsole struct {
	mu       sync.Mutex
	out      io.Writer
	errOut   io.Writer
	fallback io.Writer
}

// NewWriterConsole returns a pass-through console. A nil errOut means out.
func NewWriterConsole(out, errOut io.Writer, opts ...Option) *WriterConsole {
	o := buildOptions(opts)
	if out == nil {
		out = io.Discard
	}
	if errOut == nil {
		errOut = out
	}
	return &WriterConsole{out: out, errOut: errOut, fallback: o.fallback}
}

func (c *WriterConsole) Log(args ...any)   { c.write(c.out, args) }
func (c *WriterConsole) Info(args ...any)  { c.write(c.out, args) }
func (c *WriterConsole) Debug(args ...any) { c.write(c.out, args) }
func (c *WriterConsole) Warn(args ...any)  { c.write(c.errOut, args) }
func (c *WriterConsole) Error(args ...any) { c.write(c.errOut, args) }

func (c *WriterConsole) write(w io.Writer, args []any) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if _, err := io.WriteString(w, fmt.Sprintln(args...)); err != nil {
		fmt.Fprintf(c.fallback, "console write error: %v\n", err)
	}
}

// SlogConsole forwards to a structured logger. log and info map to Info.
type SlogConsole struct {
	logger *slog.Logger
}

// NewSlogConsole wraps logger; a nil logger means slog.Default().
func NewSlogConsole(logger *slog.Logger) *SlogConsole {
	if logger == nil {
		logger = slog.Default()
	}
	return &SlogConsole{logger: logger}
}

func (c *SlogConsole) Log(args ...any)   { c.emit(slog.LevelInfo, args) }
func (c *SlogConsole) Info(args ...any)  { c.emit(slog.LevelInfo, args) }
func (c *SlogConsole) Debug(args ...any) { c.emit(slog.LevelDebug, args) }
func (c *SlogConsole) Warn(args ...any)  { c.emit(slog.LevelWarn, args) }
func (c *SlogConsole) Error(args ...any) { c.emit(slog.LevelError, args) }

func (c *SlogConsole) emit(level slog.Level, args []any) {
	ctx := context.Background()
	if !c.logger.Enabled(ctx, level) {
		return
	}
	c.logger.Log(ctx, level, format.Args(args...))
}

// Open builds the pass-through console named by target: "stdout", "stderr",
// "discard", "slog" (writes to logger) or otherwise a file path opened for
// appending. The returned close function releases the file, if any.
func Open(target string, logger *slog.Logger, opts ...Option) (Console, func() error, error) {
	noop := func() error { return nil }
	switch target {
	case "", "discard":
		return Discard, noop, nil
	case "stdout":
		return NewWriterConsole(os.Stdout, os.Stdout, opts...), noop, nil
	case "stderr":
		return NewWriterConsole(os.Stderr, os.Stderr, opts...), noop, nil
	case "slog":
		return NewSlogConsole(logger), noop, nil
	}
	f, err := os.OpenFile(target, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, nil, fmt.Errorf("open console output: %w", err)
	}
	return NewWriterConsole(f, f, opts...), f.Close, nil
}
