// Package backup snapshots mutable migration inputs into a timestamped
// directory before any write happens. Nothing in the project tree is
// mutated until a backup exists; rollback replays the backup manifest
// backward.
package backup

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/papapumpkin/modeshift/internal/journal"
)

// ManifestName is the backup record file written inside the backup root.
const ManifestName = "manifest.json"

// SourceFile records one copied file.
type SourceFile struct {
	OriginalPath string `json:"originalPath"`
	BackupPath   string `json:"backupPath"`
}

// Record describes a completed backup. It is written as manifest.json
// inside the backup directory and retained indefinitely for manual
// rollback.
type Record struct {
	Path        string       `json:"path"`
	CreatedAt   time.Time    `json:"createdAt"`
	SourceFiles []SourceFile `json:"sourceFiles"`
}

// Manager creates backup snapshots under Root.
type Manager struct {
	Root    string
	Journal *journal.Journal

	// Now is the clock used to stamp backup directories. Nil means
	// time.Now. Overridable in tests.
	Now func() time.Time
}

// Create snapshots each source path (file or directory) into a freshly
// created, timestamp-named directory under m.Root. Sources that do not
// exist are skipped and noted at info level. Sources sharing a basename
// are kept apart with a numeric suffix. Any other failure is returned
// as an error: without a complete backup no later stage may mutate the
// tree.
func (m *Manager) Create(sources []string) (*Record, error) {
	now := time.Now
	if m.Now != nil {
		now = m.Now
	}
	createdAt := now()

	dir := filepath.Join(m.Root, "migration-"+createdAt.Format("20060102-150405"))
	if _, err := os.Stat(dir); err == nil {
		// A leftover directory for the same second means the timestamp
		// precondition is violated. Never reuse it.
		return nil, fmt.Errorf("backup directory %s already exists", dir)
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("creating backup directory %s: %w", dir, err)
	}

	rec := &Record{Path: dir, CreatedAt: createdAt}

	// Destination names inside the backup directory must stay unique
	// even when distinct sources share a basename. The manifest slot is
	// reserved up front.
	used := map[string]bool{ManifestName: true}

	for _, src := range sources {
		info, err := os.Stat(src)
		if os.IsNotExist(err) {
			m.Journal.Info("backup: %s does not exist, skipping", src)
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("stat %s: %w", src, err)
		}

		name := filepath.Base(src)
		for n := 2; used[name]; n++ {
			name = fmt.Sprintf("%s.%d", filepath.Base(src), n)
		}
		used[name] = true

		dst := filepath.Join(dir, name)
		if _, err := os.Stat(dst); err == nil {
			return nil, fmt.Errorf("backup destination %s already exists", dst)
		}
		if info.IsDir() {
			copied, err := copyTree(src, dst)
			if err != nil {
				return nil, fmt.Errorf("backing up %s: %w", src, err)
			}
			rec.SourceFiles = append(rec.SourceFiles, copied...)
		} else {
			if err := copyFile(src, dst, info.Mode()); err != nil {
				return nil, fmt.Errorf("backing up %s: %w", src, err)
			}
			rec.SourceFiles = append(rec.SourceFiles, SourceFile{OriginalPath: src, BackupPath: dst})
		}
		m.Journal.Success("backed up %s", src)
	}

	if err := writeManifest(rec); err != nil {
		return nil, err
	}
	return rec, nil
}

// copyTree recursively copies the tree rooted at src into dst,
// preserving the relative layout.
func copyTree(src, dst string) ([]SourceFile, error) {
	var copied []SourceFile
	err := filepath.WalkDir(src, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return err
		}
		rel, err := filepath.Rel(src, path)
		if err != nil {
			return err
		}
		target := filepath.Join(dst, rel)
		if d.IsDir() {
			return os.MkdirAll(target, 0o755)
		}
		info, err := d.Info()
		if err != nil {
			return err
		}
		if err := copyFile(path, target, info.Mode()); err != nil {
			return err
		}
		copied = append(copied, SourceFile{OriginalPath: path, BackupPath: target})
		return nil
	})
	return copied, err
}

// copyFile copies src to dst byte-for-byte, creating parent directories
// as needed.
func copyFile(src, dst string, mode os.FileMode) error {
	if err := os.MkdirAll(filepath.Dir(dst), 0o755); err != nil {
		return err
	}
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	out, err := os.OpenFile(dst, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, mode.Perm())
	if err != nil {
		return err
	}
	if _, err := io.Copy(out, in); err != nil {
		out.Close()
		return err
	}
	return out.Close()
}
