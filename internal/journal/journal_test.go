package journal

import (
	"bufio"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestJournal_AppendOrderAndLevels(t *testing.T) {
	j := New(nil)
	j.Info("starting")
	j.Success("backed up")
	j.Warn("optional service missing")
	j.Error("required service missing")

	entries := j.Entries()
	if len(entries) != 4 {
		t.Fatalf("expected 4 entries, got %d", len(entries))
	}

	wantLevels := []Level{LevelInfo, LevelSuccess, LevelWarning, LevelError}
	wantMsgs := []string{"starting", "backed up", "optional service missing", "required service missing"}
	for i, e := range entries {
		if e.Level != wantLevels[i] {
			t.Errorf("entry %d level = %v, want %v", i, e.Level, wantLevels[i])
		}
		if e.Message != wantMsgs[i] {
			t.Errorf("entry %d message = %q, want %q", i, e.Message, wantMsgs[i])
		}
		if e.Timestamp.IsZero() {
			t.Errorf("entry %d has zero timestamp", i)
		}
	}
}

func TestJournal_Formatting(t *testing.T) {
	j := New(nil)
	j.Info("updated %d file(s) in %s", 3, "rules")

	entries := j.Entries()
	if entries[0].Message != "updated 3 file(s) in rules" {
		t.Errorf("unexpected message: %q", entries[0].Message)
	}
}

func TestJournal_Echo(t *testing.T) {
	var got []Entry
	j := New(func(e Entry) { got = append(got, e) })
	j.Warn("careful")

	if len(got) != 1 || got[0].Message != "careful" || got[0].Level != LevelWarning {
		t.Fatalf("echo did not receive the entry: %+v", got)
	}
}

func TestJournal_EntriesIsACopy(t *testing.T) {
	j := New(nil)
	j.Info("one")

	entries := j.Entries()
	entries[0].Message = "mutated"

	if j.Entries()[0].Message != "one" {
		t.Fatal("Entries() must return a copy")
	}
}

func TestSink_WritesJSONL(t *testing.T) {
	path := filepath.Join(t.TempDir(), "events.jsonl")
	s, err := NewSink(path)
	if err != nil {
		t.Fatalf("NewSink: %v", err)
	}

	j := New(nil)
	j.Info("before attach")
	j.AttachSink(s)
	j.Success("after attach")
	if err := s.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}

	f, err := os.Open(path)
	if err != nil {
		t.Fatalf("open sink file: %v", err)
	}
	defer f.Close()

	var lines []sinkRecord
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		var rec sinkRecord
		if err := json.Unmarshal(scanner.Bytes(), &rec); err != nil {
			t.Fatalf("invalid JSONL line %q: %v", scanner.Text(), err)
		}
		lines = append(lines, rec)
	}

	// Pre-attachment entries are replayed so the stream is complete.
	if len(lines) != 2 {
		t.Fatalf("expected 2 JSONL lines, got %d", len(lines))
	}
	if lines[0].Message != "before attach" || lines[0].Level != "info" {
		t.Errorf("unexpected first line: %+v", lines[0])
	}
	if lines[1].Message != "after attach" || lines[1].Level != "success" {
		t.Errorf("unexpected second line: %+v", lines[1])
	}
}

func TestLevel_String(t *testing.T) {
	tests := []struct {
		level Level
		want  string
	}{
		{LevelInfo, "info"},
		{LevelSuccess, "success"},
		{LevelWarning, "warning"},
		{LevelError, "error"},
		{Level(42), "unknown"},
	}
	for _, tt := range tests {
		if got := tt.level.String(); got != tt.want {
			t.Errorf("%d.String() = %q, want %q", tt.level, got, tt.want)
		}
	}
}

func TestNilSink_NoOp(t *testing.T) {
	var s *Sink
	if err := s.Write(Entry{Timestamp: time.Now()}); err != nil {
		t.Errorf("nil sink Write: %v", err)
	}
	if err := s.Close(); err != nil {
		t.Errorf("nil sink Close: %v", err)
	}
}
