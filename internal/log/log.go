// Package log provides component-tagged structured logging over a line
// sink such as hal.Logger.
package log

import (
	"bytes"
	"io"
	"log/slog"
	"sync"
)

// Sink receives complete log lines without the trailing newline.
type Sink interface {
	WriteLineBytes(b []byte)
}

// Component identifies a subsystem for log filtering.
type Component string

const (
	ComponentKernel   Component = "kernel"
	ComponentButtons  Component = "buttons"
	ComponentHID      Component = "hid"
	ComponentTerm     Component = "term"
	ComponentDispatch Component = "dispatch"
	ComponentApp      Component = "app"
	ComponentHAL      Component = "hal"
)

var level = new(slog.LevelVar)

func init() {
	level.Set(slog.LevelInfo)
}

// SetLevel sets the minimum level for every logger created by this package.
func SetLevel(l slog.Level) { level.Set(l) }

// Level returns the current minimum level.
func Level() slog.Level { return level.Level() }

// New returns a text logger writing complete lines to sink.
func New(sink Sink) *slog.Logger {
	if sink == nil {
		return Discard()
	}
	return slog.New(slog.NewTextHandler(&lineWriter{sink: sink}, &slog.HandlerOptions{Level: level}))
}

// Discard returns a logger that drops everything.
func Discard() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, &slog.HandlerOptions{Level: slog.LevelError + 1}))
}

// For returns l tagged with a component attribute.
func For(l *slog.Logger, c Component) *slog.Logger {
	if l == nil {
		l = Discard()
	}
	return l.With("component", string(c))
}

// lineWriter adapts a Sink to io.Writer. slog handlers emit one record
// per Write; partial lines are held until the newline arrives.
type lineWriter struct {
	mu   sync.Mutex
	sink Sink
	buf  []byte
}

func (w *lineWriter) Write(p []byte) (int, error) {
	w.mu.Lock()
	defer w.mu.Unlock()

	w.buf = append(w.buf, p...)
	for {
		i := bytes.IndexByte(w.buf, '\n')
		if i < 0 {
			break
		}
		w.sink.WriteLineBytes(w.buf[:i])
		w.buf = w.buf[i+1:]
	}
	if len(w.buf) == 0 {
		w.buf = w.buf[:0:0]
	}
	return len(p), nil
}
