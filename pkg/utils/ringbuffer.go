package utils

import (
	"sync"
	"time"

	"go.uber.org/zap/zapcore"
)

// LogEntry is one captured log record, kept for the admin log view.
type LogEntry struct {
	Time    time.Time              `json:"time"`
	Level   string                 `json:"level"`
	Message string                 `json:"message"`
	Fields  map[string]interface{} `json:"fields,omitempty"`
}

// ringBuffer is the storage shared between a Ring and its With clones.
type ringBuffer struct {
	mu      sync.Mutex
	entries []LogEntry
	next    int
	full    bool
}

// Ring is a bounded buffer of recent log entries implementing zapcore.Core.
// It must be constructed explicitly with NewRing and teed into the logger;
// there is no package-level instance. Once full, new entries overwrite the
// oldest.
type Ring struct {
	level  zapcore.LevelEnabler
	fields []zapcore.Field
	buf    *ringBuffer
}

// NewRing creates a ring that captures entries at or above level.
// Capacity defaults to 1000 when non-positive.
func NewRing(capacity int, level zapcore.LevelEnabler) *Ring {
	if capacity <= 0 {
		capacity = 1000
	}
	return &Ring{
		level: level,
		buf: &ringBuffer{
			entries: make([]LogEntry, capacity),
		},
	}
}

// Enabled implements zapcore.Core
func (r *Ring) Enabled(level zapcore.Level) bool {
	return r.level.Enabled(level)
}

// With implements zapcore.Core; clones share the parent's buffer
func (r *Ring) With(fields []zapcore.Field) zapcore.Core {
	return &Ring{
		level:  r.level,
		fields: append(append([]zapcore.Field{}, r.fields...), fields...),
		buf:    r.buf,
	}
}

// Check implements zapcore.Core
func (r *Ring) Check(entry zapcore.Entry, ce *zapcore.CheckedEntry) *zapcore.CheckedEntry {
	if r.Enabled(entry.Level) {
		return ce.AddCore(entry, r)
	}
	return ce
}

// Write implements zapcore.Core
func (r *Ring) Write(entry zapcore.Entry, fields []zapcore.Field) error {
	enc := zapcore.NewMapObjectEncoder()
	for _, f := range r.fields {
		f.AddTo(enc)
	}
	for _, f := range fields {
		f.AddTo(enc)
	}

	record := LogEntry{
		Time:    entry.Time,
		Level:   entry.Level.String(),
		Message: entry.Message,
	}
	if len(enc.Fields) > 0 {
		record.Fields = enc.Fields
	}

	r.buf.mu.Lock()
	r.buf.entries[r.buf.next] = record
	r.buf.next = (r.buf.next + 1) % len(r.buf.entries)
	if r.buf.next == 0 {
		r.buf.full = true
	}
	r.buf.mu.Unlock()
	return nil
}

// Sync implements zapcore.Core
func (r *Ring) Sync() error {
	return nil
}

// Recent returns up to n captured entries, newest first.
func (r *Ring) Recent(n int) []LogEntry {
	r.buf.mu.Lock()
	defer r.buf.mu.Unlock()

	size := r.buf.next
	if r.buf.full {
		size = len(r.buf.entries)
	}
	if n <= 0 || n > size {
		n = size
	}

	out := make([]LogEntry, 0, n)
	for i := 0; i < n; i++ {
		idx := (r.buf.next - 1 - i + len(r.buf.entries)) % len(r.buf.entries)
		out = append(out, r.buf.entries[idx])
	}
	return out
}

var _ zapcore.Core = (*Ring)(nil)
