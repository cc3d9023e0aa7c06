// Package rewrite walks the configured scan roots and rewrites old mode
// identifiers to their new names in place. Matching is raw-text pattern
// based and intentionally best-effort: references are recognized by a
// fixed set of syntactic contexts, not by parsing each file format.
package rewrite

import (
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/papapumpkin/modeshift/internal/journal"
	"github.com/papapumpkin/modeshift/internal/plan"
)

// Outcome records the rewrite result for one scanned file.
type Outcome struct {
	Path                string
	Matched             bool
	OccurrencesReplaced int
}

// Rewriter applies a mode mapping across the scan roots.
type Rewriter struct {
	Journal *journal.Journal
}

// Run scans every root and rewrites matching files in place. Unreadable
// directories and unwritable files are skipped, not fatal: once a
// backup exists the migration makes a best effort and reports exactly
// what happened. The second return value is the count of files updated.
func (r *Rewriter) Run(mappings []plan.Mapping, roots []plan.Root) ([]Outcome, int) {
	sets := compile(mappings)

	var outcomes []Outcome
	updated := 0
	for _, root := range roots {
		for _, path := range r.enumerate(root) {
			out := r.rewriteFile(path, sets)
			outcomes = append(outcomes, out)
			if out.Matched {
				updated++
			}
		}
	}
	return outcomes, updated
}

// enumerate lists candidate files under root, honoring the extension
// allow-list and depth limit.
func (r *Rewriter) enumerate(root plan.Root) []string {
	exts := normalizeExts(root.Extensions)

	var files []string
	_ = filepath.WalkDir(root.Dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			r.Journal.Info("scan: skipping %s: %v", path, err)
			if d != nil && d.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}
		if d.IsDir() {
			if path == root.Dir {
				return nil
			}
			if root.MaxDepth > 0 && depthOf(root.Dir, path) > root.MaxDepth {
				return filepath.SkipDir
			}
			return nil
		}
		if len(exts) > 0 && !exts[strings.ToLower(filepath.Ext(path))] {
			return nil
		}
		files = append(files, path)
		return nil
	})
	return files
}

// rewriteFile loads path once, applies every rule set, and writes the
// result back atomically if anything matched.
func (r *Rewriter) rewriteFile(path string, sets []ruleSet) Outcome {
	out := Outcome{Path: path}

	data, err := os.ReadFile(path)
	if err != nil {
		r.Journal.Warn("rewrite: cannot read %s: %v", path, err)
		return out
	}

	content, n := apply(string(data), sets)
	if n == 0 {
		return out
	}

	info, err := os.Stat(path)
	mode := fs.FileMode(0o644)
	if err == nil {
		mode = info.Mode()
	}
	if err := writeFileAtomic(path, []byte(content), mode); err != nil {
		// The original file is untouched; rename is all-or-nothing.
		r.Journal.Warn("rewrite: cannot write %s: %v", path, err)
		return out
	}

	out.Matched = true
	out.OccurrencesReplaced = n
	r.Journal.Success("updated %s (%d replacement(s))", path, n)
	return out
}

// depthOf counts how many directory levels path sits below root.
func depthOf(root, path string) int {
	rel, err := filepath.Rel(root, path)
	if err != nil {
		return 0
	}
	return strings.Count(rel, string(os.PathSeparator)) + 1
}

func normalizeExts(exts []string) map[string]bool {
	m := make(map[string]bool, len(exts))
	for _, e := range exts {
		e = strings.ToLower(strings.TrimSpace(e))
		if e == "" {
			continue
		}
		if !strings.HasPrefix(e, ".") {
			e = "." + e
		}
		m[e] = true
	}
	return m
}

// writeFileAtomic writes data to a temp file in the same directory and
// renames it over path, so a failed write never leaves path half
// written.
func writeFileAtomic(path string, data []byte, mode fs.FileMode) error {
	tmp, err := os.CreateTemp(filepath.Dir(path), ".modeshift-*")
	if err != nil {
		return err
	}
	tmpName := tmp.Name()
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return err
	}
	if err := tmp.Chmod(mode.Perm()); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return err
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return err
	}
	if err := os.Rename(tmpName, path); err != nil {
		os.Remove(tmpName)
		return err
	}
	return nil
}
