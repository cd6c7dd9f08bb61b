// Package testutil provides shared test helpers: slog loggers bound to
// testing.T and a fake knowledge-graph backend.
package testutil

import (
	"context"
	"log/slog"
	"sync"
	"testing"
)

// NewTestLogger returns a debug-level logger whose records go to t.Log, so
// they only show for failing tests or with -v.
func NewTestLogger(t testing.TB) *slog.Logger {
	t.Helper()
	return slog.New(slog.NewTextHandler(tlogWriter{t}, &slog.HandlerOptions{Level: slog.LevelDebug}))
}

type tlogWriter struct {
	t testing.TB
}

func (w tlogWriter) Write(p []byte) (int, error) {
	w.t.Helper()
	w.t.Log(string(p))
	return len(p), nil
}

// Recorder is a slog handler that keeps the message of every warning and
// error it receives. It also forwards records to t.Log.
type Recorder struct {
	slog.Handler

	mu       *sync.Mutex
	messages *[]string
}

// NewRecorder returns a logger writing through a Recorder.
func NewRecorder(t testing.TB) (*slog.Logger, *Recorder) {
	t.Helper()
	rec := &Recorder{
		Handler:  NewTestLogger(t).Handler(),
		mu:       &sync.Mutex{},
		messages: &[]string{},
	}
	return slog.New(rec), rec
}

// Handle implements slog.Handler.
func (r *Recorder) Handle(ctx context.Context, record slog.Record) error {
	if record.Level >= slog.LevelWarn {
		r.mu.Lock()
		*r.messages = append(*r.messages, record.Message)
		r.mu.Unlock()
	}
	return r.Handler.Handle(ctx, record)
}

// WithAttrs implements slog.Handler.
func (r *Recorder) WithAttrs(attrs []slog.Attr) slog.Handler {
	return &Recorder{Handler: r.Handler.WithAttrs(attrs), mu: r.mu, messages: r.messages}
}

// WithGroup implements slog.Handler.
func (r *Recorder) WithGroup(name string) slog.Handler {
	return &Recorder{Handler: r.Handler.WithGroup(name), mu: r.mu, messages: r.messages}
}

// Warnings returns the recorded warning and error messages in order.
func (r *Recorder) Warnings() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), *r.messages...)
}
