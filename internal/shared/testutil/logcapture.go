// Package testutil holds helpers shared by tests across packages.
package testutil

import (
	"context"
	"log/slog"
	"slices"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
)

// CapturedRecord is a log record flattened for assertions.
type CapturedRecord struct {
	Level   slog.Level
	Message string
	Attrs   map[string]any
}

// LogCapture is a slog.Handler that keeps every record in memory.
type LogCapture struct {
	mu      *sync.Mutex
	records *[]CapturedRecord
	attrs   []slog.Attr
	group   string
}

func newLogCapture() *LogCapture {
	return &LogCapture{mu: &sync.Mutex{}, records: &[]CapturedRecord{}}
}

// NewTestLogger returns a debug-level logger and the handler capturing its output.
func NewTestLogger(t *testing.T) (*slog.Logger, *LogCapture) {
	t.Helper()
	h := newLogCapture()
	return slog.New(h), h
}

func (h *LogCapture) Enabled(context.Context, slog.Level) bool { return true }

func (h *LogCapture) Handle(_ context.Context, r slog.Record) error {
	rec := CapturedRecord{Level: r.Level, Message: r.Message, Attrs: make(map[string]any)}
	for _, a := range h.attrs {
		rec.Attrs[h.key(a.Key)] = a.Value.Any()
	}
	r.Attrs(func(a slog.Attr) bool {
		rec.Attrs[h.key(a.Key)] = a.Value.Any()
		return true
	})

	h.mu.Lock()
	defer h.mu.Unlock()
	*h.records = append(*h.records, rec)
	return nil
}

func (h *LogCapture) WithAttrs(attrs []slog.Attr) slog.Handler {
	return &LogCapture{mu: h.mu, records: h.records, attrs: append(slices.Clone(h.attrs), attrs...), group: h.group}
}

func (h *LogCapture) WithGroup(name string) slog.Handler {
	return &LogCapture{mu: h.mu, records: h.records, attrs: h.attrs, group: h.key(name)}
}

func (h *LogCapture) key(k string) string {
	if h.group == "" {
		return k
	}
	return h.group + "." + k
}

// Records returns a copy of everything logged so far.
func (h *LogCapture) Records() []CapturedRecord {
	h.mu.Lock()
	defer h.mu.Unlock()
	return slices.Clone(*h.records)
}

// ByLevel returns the records logged at level.
func (h *LogCapture) ByLevel(level slog.Level) []CapturedRecord {
	var out []CapturedRecord
	for _, r := range h.Records() {
		if r.Level == level {
			out = append(out, r)
		}
	}
	return out
}

// Find returns the first record with the given message.
func (h *LogCapture) Find(message string) (CapturedRecord, bool) {
	for _, r := range h.Records() {
		if r.Message == message {
			return r, true
		}
	}
	return CapturedRecord{}, false
}

// AssertLogged fails the test unless a record with message was logged at level.
func AssertLogged(t *testing.T, h *LogCapture, level slog.Level, message string) {
	t.Helper()
	for _, r := range h.ByLevel(level) {
		if r.Message == message {
			return
		}
	}
	assert.Failf(t, "log record not found", "expected %s record %q", level, message)
}

// AssertNotLogged fails the test if any record with message was logged.
func AssertNotLogged(t *testing.T, h *LogCapture, message string) {
	t.Helper()
	_, found := h.Find(message)
	assert.False(t, found, "unexpected log record %q", message)
}
