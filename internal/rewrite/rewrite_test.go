package rewrite

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/papapumpkin/modeshift/internal/journal"
	"github.com/papapumpkin/modeshift/internal/plan"
)

var testMappings = []plan.Mapping{
	{Old: "code", New: "mcp-intelligent-coder"},
	{Old: "orchestrator", New: "mcp-orchestrator"},
}

func TestApply_Contexts(t *testing.T) {
	sets := compile(testMappings)

	tests := []struct {
		name  string
		in    string
		want  string
		count int
	}{
		{
			name:  "keyword colon",
			in:    "new_task: code",
			want:  "new_task: mcp-intelligent-coder",
			count: 1,
		},
		{
			name:  "quoted key quoted value",
			in:    `"mode": "orchestrator"`,
			want:  `"mode": "mcp-orchestrator"`,
			count: 1,
		},
		{
			name:  "single quotes",
			in:    `'mode': 'code'`,
			want:  `'mode': 'mcp-intelligent-coder'`,
			count: 1,
		},
		{
			name:  "equals assignment",
			in:    "default_mode=code",
			want:  "default_mode=mcp-intelligent-coder",
			count: 1,
		},
		{
			name:  "bare key quoted value",
			in:    `mode: "code"`,
			want:  `mode: "mcp-intelligent-coder"`,
			count: 1,
		},
		{
			name:  "surrounding syntax preserved",
			in:    "  switch_mode:   code\n",
			want:  "  switch_mode:   mcp-intelligent-coder\n",
			count: 1,
		},
		{
			name:  "multiple occurrences",
			in:    "a: code\nb: code\nc: orchestrator\n",
			want:  "a: mcp-intelligent-coder\nb: mcp-intelligent-coder\nc: mcp-orchestrator\n",
			count: 3,
		},
		{
			name:  "substring of longer identifier untouched",
			in:    "mode: codebase\nother: code-review\n",
			want:  "mode: codebase\nother: code-review\n",
			count: 0,
		},
		{
			name:  "prose untouched",
			in:    "Use the code mode for implementation work.",
			want:  "Use the code mode for implementation work.",
			count: 0,
		},
		{
			name:  "identifier as key untouched",
			in:    "code: something",
			want:  "code: something",
			count: 0,
		},
		{
			name:  "quoted substring untouched",
			in:    `"mode": "orchestrator-v2"`,
			want:  `"mode": "orchestrator-v2"`,
			count: 0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, n := apply(tt.in, sets)
			if got != tt.want {
				t.Errorf("apply() = %q, want %q", got, tt.want)
			}
			if n != tt.count {
				t.Errorf("replacements = %d, want %d", n, tt.count)
			}
		})
	}
}

func TestApply_Idempotent(t *testing.T) {
	sets := compile(testMappings)
	in := "new_task: code\n\"mode\": \"orchestrator\"\nmode = code\n"

	once, n1 := apply(in, sets)
	if n1 == 0 {
		t.Fatal("first pass replaced nothing")
	}
	twice, n2 := apply(once, sets)
	if n2 != 0 {
		t.Errorf("second pass must replace nothing, replaced %d", n2)
	}
	if twice != once {
		t.Errorf("second pass changed content:\nfirst  %q\nsecond %q", once, twice)
	}
}

func writeTree(t *testing.T, root string, files map[string]string) {
	t.Helper()
	for rel, content := range files {
		path := filepath.Join(root, rel)
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			t.Fatal(err)
		}
		if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
			t.Fatal(err)
		}
	}
}

func TestRun_RewritesTreeInPlace(t *testing.T) {
	dir := t.TempDir()
	// notes.txt and binary.png fall outside the extension allow-list;
	// clean.yaml is scanned but matches nothing.
	writeTree(t, dir, map[string]string{
		"modes.yaml":     "default: code\n",
		"sub/deep.md":    "switch_mode: orchestrator\n",
		"notes.txt":      "mode: code\n",
		"sub/binary.png": "mode: code\n",
		"clean.yaml":     "unrelated: untouched\n",
	})

	j := journal.New(nil)
	r := &Rewriter{Journal: j}
	outcomes, updated := r.Run(testMappings, []plan.Root{
		{Dir: dir, Extensions: []string{".yaml", "md"}},
	})

	if updated != 2 {
		t.Fatalf("updated = %d, want 2 (outcomes: %+v)", updated, outcomes)
	}

	got, _ := os.ReadFile(filepath.Join(dir, "modes.yaml"))
	if string(got) != "default: mcp-intelligent-coder\n" {
		t.Errorf("modes.yaml = %q", got)
	}
	got, _ = os.ReadFile(filepath.Join(dir, "sub", "deep.md"))
	if string(got) != "switch_mode: mcp-orchestrator\n" {
		t.Errorf("deep.md = %q", got)
	}
	got, _ = os.ReadFile(filepath.Join(dir, "notes.txt"))
	if string(got) != "mode: code\n" {
		t.Errorf("filtered file was touched: %q", got)
	}

	// Per-file success entries for the two updated files.
	successes := 0
	for _, e := range j.Entries() {
		if e.Level == journal.LevelSuccess {
			successes++
		}
	}
	if successes != 2 {
		t.Errorf("expected 2 success entries, got %d", successes)
	}
}

func TestRun_SecondPassIsNoOp(t *testing.T) {
	dir := t.TempDir()
	writeTree(t, dir, map[string]string{
		"modes.yaml": "default: code\nfallback: orchestrator\n",
	})

	r := &Rewriter{Journal: journal.New(nil)}
	roots := []plan.Root{{Dir: dir, Extensions: []string{".yaml"}}}

	_, first := r.Run(testMappings, roots)
	if first != 1 {
		t.Fatalf("first run updated %d files, want 1", first)
	}
	_, second := r.Run(testMappings, roots)
	if second != 0 {
		t.Errorf("second run updated %d files, want 0", second)
	}
}

func TestRun_MaxDepth(t *testing.T) {
	dir := t.TempDir()
	writeTree(t, dir, map[string]string{
		"top.yaml":        "mode: code\n",
		"l1/mid.yaml":     "mode: code\n",
		"l1/l2/deep.yaml": "mode: code\n",
	})

	r := &Rewriter{Journal: journal.New(nil)}
	_, updated := r.Run(testMappings, []plan.Root{
		{Dir: dir, Extensions: []string{".yaml"}, MaxDepth: 1},
	})

	if updated != 2 {
		t.Fatalf("updated = %d, want 2 (depth limit should exclude l1/l2)", updated)
	}
	got, _ := os.ReadFile(filepath.Join(dir, "l1", "l2", "deep.yaml"))
	if string(got) != "mode: code\n" {
		t.Errorf("file beyond max depth was touched: %q", got)
	}
}

func TestRun_NoExtensionFilterScansEverything(t *testing.T) {
	dir := t.TempDir()
	writeTree(t, dir, map[string]string{
		"anything.xyz": "mode: code\n",
	})

	r := &Rewriter{Journal: journal.New(nil)}
	_, updated := r.Run(testMappings, []plan.Root{{Dir: dir}})
	if updated != 1 {
		t.Fatalf("updated = %d, want 1", updated)
	}
}

func TestRun_MissingRootIsSoft(t *testing.T) {
	j := journal.New(nil)
	r := &Rewriter{Journal: j}
	_, updated := r.Run(testMappings, []plan.Root{
		{Dir: filepath.Join(t.TempDir(), "does-not-exist")},
	})
	if updated != 0 {
		t.Fatalf("updated = %d, want 0", updated)
	}
	if len(j.Entries()) == 0 {
		t.Error("expected a journal entry for the unreadable root")
	}
}
