package journal

import (
	"encoding/json"
	"fmt"
	"os"
	"sync"
)

// Sink writes journal entries to a JSONL file alongside the backup, so a
// run remains auditable even if the process dies before the report is
// written. It is safe for concurrent use. A nil *Sink is a valid no-op.
type Sink struct {
	file *os.File
	enc  *json.Encoder
	mu   sync.Mutex
}

// NewSink creates a Sink appending JSONL entries to the file at path.
func NewSink(path string) (*Sink, error) {
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, fmt.Errorf("journal: open %s: %w", path, err)
	}
	return &Sink{file: f, enc: json.NewEncoder(f)}, nil
}

// Write appends a single entry. Calling Write on a nil Sink is a no-op.
func (s *Sink) Write(e Entry) error {
	if s == nil {
		return nil
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.enc.Encode(sinkRecord{
		Timestamp: e.Timestamp.Format("2006-01-02T15:04:05.000Z07:00"),
		Level:     e.Level.String(),
		Message:   e.Message,
	}); err != nil {
		return fmt.Errorf("journal: encode entry: %w", err)
	}
	return nil
}

// Close flushes and closes the underlying file. Calling Close on a nil
// Sink is a no-op.
func (s *Sink) Close() error {
	if s == nil {
		return nil
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.file.Close()
}

type sinkRecord struct {
	Timestamp string `json:"ts"`
	Level     string `json:"level"`
	Message   string `json:"message"`
}
