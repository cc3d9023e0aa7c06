package backup

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
)

// manifestVersion guards against restoring from an incompatible layout.
const manifestVersion = 1

type manifest struct {
	Version     int          `json:"version"`
	CreatedAt   string       `json:"createdAt"`
	SourceFiles []SourceFile `json:"sourceFiles"`
}

func writeManifest(rec *Record) error {
	m := manifest{
		Version:     manifestVersion,
		CreatedAt:   rec.CreatedAt.Format("2006-01-02T15:04:05Z07:00"),
		SourceFiles: rec.SourceFiles,
	}
	data, err := json.MarshalIndent(m, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding backup manifest: %w", err)
	}
	path := filepath.Join(rec.Path, ManifestName)
	if err := os.WriteFile(path, append(data, '\n'), 0o644); err != nil {
		return fmt.Errorf("writing backup manifest: %w", err)
	}
	return nil
}

// LoadRecord reads the manifest from a backup directory.
func LoadRecord(dir string) (*Record, error) {
	data, err := os.ReadFile(filepath.Join(dir, ManifestName))
	if err != nil {
		return nil, fmt.Errorf("reading backup manifest: %w", err)
	}
	var m manifest
	if err := json.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("parsing backup manifest: %w", err)
	}
	if m.Version != manifestVersion {
		return nil, fmt.Errorf("unsupported backup manifest version %d", m.Version)
	}
	return &Record{Path: dir, SourceFiles: m.SourceFiles}, nil
}

// Restore copies every file in the record back to its original path,
// reproducing the pre-migration tree byte-for-byte.
func Restore(rec *Record) error {
	for _, sf := range rec.SourceFiles {
		info, err := os.Stat(sf.BackupPath)
		if err != nil {
			return fmt.Errorf("restore: %w", err)
		}
		if err := copyFile(sf.BackupPath, sf.OriginalPath, info.Mode()); err != nil {
			return fmt.Errorf("restore %s: %w", sf.OriginalPath, err)
		}
	}
	return nil
}
