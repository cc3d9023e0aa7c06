package verify

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
)

func writeScript(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "integration.sh")
	if err := os.WriteFile(path, []byte(content), 0o755); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestRun_Passing(t *testing.T) {
	entry := writeScript(t, "#!/bin/sh\necho all checks passed\nexit 0\n")
	r := &Runner{Command: "sh", EntryPath: entry}

	out, err := r.Run(context.Background())
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if out == nil {
		t.Fatal("expected an outcome, got nil")
	}
	if !out.Passed || out.ExitCode != 0 {
		t.Errorf("expected pass, got exit=%d passed=%v", out.ExitCode, out.Passed)
	}
	if !strings.Contains(out.Stdout, "all checks passed") {
		t.Errorf("stdout not captured: %q", out.Stdout)
	}
}

func TestRun_Failing(t *testing.T) {
	entry := writeScript(t, "#!/bin/sh\necho broken config >&2\nexit 3\n")
	r := &Runner{Command: "sh", EntryPath: entry}

	out, err := r.Run(context.Background())
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if out.Passed {
		t.Error("expected failure")
	}
	if out.ExitCode != 3 {
		t.Errorf("exit code = %d, want 3", out.ExitCode)
	}
	if !strings.Contains(out.Stderr, "broken config") {
		t.Errorf("stderr not captured: %q", out.Stderr)
	}
}

func TestRun_MissingEntryIsSkipped(t *testing.T) {
	r := &Runner{Command: "sh", EntryPath: filepath.Join(t.TempDir(), "nope.sh")}

	out, err := r.Run(context.Background())
	if err != nil {
		t.Fatalf("missing entry must not be an error: %v", err)
	}
	if out != nil {
		t.Fatalf("expected nil outcome for missing entry, got %+v", out)
	}
}

func TestRun_StreamsLines(t *testing.T) {
	entry := writeScript(t, "#!/bin/sh\necho one\necho two >&2\necho three\n")

	var mu sync.Mutex
	var lines []string
	r := &Runner{
		Command:   "sh",
		EntryPath: entry,
		OnLine: func(stream, line string) {
			mu.Lock()
			lines = append(lines, stream+":"+line)
			mu.Unlock()
		},
	}

	out, err := r.Run(context.Background())
	if err != nil {
		t.Fatalf("Run: %v", err)
	}

	mu.Lock()
	defer mu.Unlock()
	if len(lines) != 3 {
		t.Fatalf("expected 3 streamed lines, got %v", lines)
	}
	joined := strings.Join(lines, "\n")
	for _, want := range []string{"stdout:one", "stderr:two", "stdout:three"} {
		if !strings.Contains(joined, want) {
			t.Errorf("missing streamed line %q in %v", want, lines)
		}
	}
	if out.Stdout != "one\nthree\n" {
		t.Errorf("stdout buffer = %q", out.Stdout)
	}
}

func TestRun_LargeOutputNoDeadlock(t *testing.T) {
	// A child that floods both pipes before exiting must not deadlock
	// the runner.
	entry := writeScript(t, `#!/bin/sh
i=0
while [ $i -lt 2000 ]; do
  echo "stdout line $i padding padding padding padding padding padding"
  echo "stderr line $i padding padding padding padding padding padding" >&2
  i=$((i+1))
done
`)
	r := &Runner{Command: "sh", EntryPath: entry}

	out, err := r.Run(context.Background())
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if !out.Passed {
		t.Errorf("expected pass, exit=%d", out.ExitCode)
	}
	if c := strings.Count(out.Stdout, "\n"); c != 2000 {
		t.Errorf("stdout lines = %d, want 2000", c)
	}
	if c := strings.Count(out.Stderr, "\n"); c != 2000 {
		t.Errorf("stderr lines = %d, want 2000", c)
	}
}

func TestValidate(t *testing.T) {
	r := &Runner{Command: "sh"}
	if err := r.Validate(); err != nil {
		t.Errorf("sh should be available: %v", err)
	}

	r = &Runner{Command: "definitely-not-a-real-runtime-xyz"}
	if err := r.Validate(); err == nil {
		t.Error("expected error for missing runtime")
	}
}
