// Package watch re-validates the service registry against the
// compatibility contract whenever the registry or plan document changes
// on disk. It backs the `modeshift watch` command, for iterating on a
// registry by hand with live feedback.
package watch

import (
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
)

// Change reports that a watched document was modified.
type Change struct {
	File string // Absolute or as-configured path
}

// Watcher monitors a set of files for changes using fsnotify. Events
// are debounced so editors that write in multiple steps produce a
// single change.
type Watcher struct {
	Changes <-chan Change // Read-only external channel

	files   map[string]bool
	changes chan Change
	done    chan struct{}
	watcher *fsnotify.Watcher
}

// New creates a watcher for the given files. The parent directory of
// each file is watched, since many editors replace files by rename.
func New(files []string) (*Watcher, error) {
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}

	ch := make(chan Change, 16)
	w := &Watcher{
		Changes: ch,
		files:   make(map[string]bool, len(files)),
		changes: ch,
		done:    make(chan struct{}),
		watcher: fw,
	}
	for _, f := range files {
		w.files[filepath.Clean(f)] = true
	}
	return w, nil
}

// Start begins watching.
func (w *Watcher) Start() error {
	dirs := make(map[string]bool)
	for f := range w.files {
		dirs[filepath.Dir(f)] = true
	}
	for d := range dirs {
		if err := w.watcher.Add(d); err != nil {
			return err
		}
	}

	go w.loop()
	return nil
}

// Stop closes the watcher and channels.
func (w *Watcher) Stop() {
	w.watcher.Close()
	<-w.done // Wait for loop to exit
	close(w.changes)
}

func (w *Watcher) loop() {
	defer close(w.done)

	// Debounce: track last event time per file.
	const debounce = 100 * time.Millisecond
	pending := make(map[string]time.Time)
	ticker := time.NewTicker(debounce)
	defer ticker.Stop()

	for {
		select {
		case ev, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			path := filepath.Clean(ev.Name)
			if !w.files[path] {
				continue
			}
			if ev.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) == 0 {
				continue
			}
			pending[path] = time.Now()

		case <-ticker.C:
			now := time.Now()
			for path, t := range pending {
				if now.Sub(t) < debounce {
					continue
				}
				delete(pending, path)
				select {
				case w.changes <- Change{File: path}:
				default:
					// Consumer is behind; drop rather than block.
				}
			}

		case _, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
		}
	}
}
