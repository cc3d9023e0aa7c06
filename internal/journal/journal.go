// Package journal collects the migration audit trail. Every component
// appends level-tagged entries to a single Journal; the full ordered list
// is flushed verbatim into the final report. Entries are never mutated
// or removed once recorded.
package journal

import (
	"fmt"
	"sync"
	"time"
)

// Level classifies a journal entry.
type Level int

const (
	LevelInfo Level = iota
	LevelSuccess
	LevelWarning
	LevelError
)

// String returns the lowercase name of the level.
func (l Level) String() string {
	switch l {
	case LevelInfo:
		return "info"
	case LevelSuccess:
		return "success"
	case LevelWarning:
		return "warning"
	case LevelError:
		return "error"
	default:
		return "unknown"
	}
}

// Entry is a single record in the migration audit trail.
type Entry struct {
	Timestamp time.Time `json:"ts"`
	Level     Level     `json:"level"`
	Message   string    `json:"message"`
}

// EchoFunc receives each entry as it is recorded, for console output.
type EchoFunc func(Entry)

// Journal is an append-only, ordered collection of entries. It is safe
// for concurrent use. A fresh Journal is created per run so tests can
// inject their own collector.
type Journal struct {
	mu      sync.Mutex
	entries []Entry
	echo    EchoFunc
	sink    *Sink
	now     func() time.Time
}

// New creates a Journal. echo may be nil to disable console output.
func New(echo EchoFunc) *Journal {
	return &Journal{echo: echo, now: time.Now}
}

// AttachSink mirrors every subsequent entry to a JSONL sink. Entries
// recorded before attachment are replayed into the sink so the on-disk
// stream matches the in-memory trail.
func (j *Journal) AttachSink(s *Sink) {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.sink = s
	for _, e := range j.entries {
		_ = s.Write(e)
	}
}

// Info records an informational entry.
func (j *Journal) Info(format string, args ...any) {
	j.record(LevelInfo, format, args...)
}

// Success records a success entry.
func (j *Journal) Success(format string, args ...any) {
	j.record(LevelSuccess, format, args...)
}

// Warn records a warning entry.
func (j *Journal) Warn(format string, args ...any) {
	j.record(LevelWarning, format, args...)
}

// Error records an error entry.
func (j *Journal) Error(format string, args ...any) {
	j.record(LevelError, format, args...)
}

func (j *Journal) record(level Level, format string, args ...any) {
	e := Entry{
		Timestamp: j.now(),
		Level:     level,
		Message:   fmt.Sprintf(format, args...),
	}

	j.mu.Lock()
	j.entries = append(j.entries, e)
	sink := j.sink
	j.mu.Unlock()

	if j.echo != nil {
		j.echo(e)
	}
	_ = sink.Write(e)
}

// Entries returns a copy of the recorded entries in append order.
func (j *Journal) Entries() []Entry {
	j.mu.Lock()
	defer j.mu.Unlock()
	out := make([]Entry, len(j.entries))
	copy(out, j.entries)
	return out
}
