// Package watcher reports project files that appear or change under a
// directory tree.
package watcher

import (
	"context"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/ritzau/slnkit/pkg/finder"
	"github.com/ritzau/slnkit/pkg/logging"
	"github.com/ritzau/slnkit/pkg/projtype"
)

// ChangeType represents the type of file change detected
type ChangeType int

const (
	ChangeTypeProjectAdded ChangeType = iota
	ChangeTypeProjectModified
)

func (t ChangeType) String() string {
	if t == ChangeTypeProjectAdded {
		return "added"
	}
	return "modified"
}

// ChangeEvent represents a batch of file system changes
type ChangeEvent struct {
	Type      ChangeType
	Paths     []string
	Timestamp time.Time
}

const batchWindow = 100 * time.Millisecond

// FileWatcher watches a directory tree for project file changes
type FileWatcher struct {
	watcher *fsnotify.Watcher
	root    string
	events  chan ChangeEvent
	once    sync.Once
}

// NewFileWatcher creates a new file system watcher rooted at root
func NewFileWatcher(root string) (*FileWatcher, error) {
	abs, err := filepath.Abs(root)
	if err != nil {
		return nil, err
	}
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create fsnotify watcher: %w", err)
	}

	return &FileWatcher{
		watcher: watcher,
		root:    abs,
		events:  make(chan ChangeEvent, 100),
	}, nil
}

// Start watches every directory under the root and processes events until
// ctx is cancelled.
func (fw *FileWatcher) Start(ctx context.Context) error {
	count, err := fw.watchTree(fw.root, nil)
	if err != nil {
		return err
	}
	logging.Info("started watching directory", "path", fw.root, "directories", count)

	go fw.processEvents(ctx)
	return nil
}

// watchTree adds dir and its subdirectories to the watcher. Project files
// already present are passed to found.
func (fw *FileWatcher) watchTree(dir string, found func(path string)) (int, error) {
	count := 0
	err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return nil // Skip entries we can't access
		}
		if !d.IsDir() {
			if found != nil && projtype.IsProjectFile(path) {
				found(path)
			}
			return nil
		}
		if path != dir && finder.SkipDir(d.Name()) {
			return filepath.SkipDir
		}
		if err := fw.watcher.Add(path); err != nil {
			logging.Warn("failed to watch directory", "path", path, "error", err)
			return nil
		}
		count++
		return nil
	})
	if err != nil {
		return count, fmt.Errorf("failed to walk %s: %w", dir, err)
	}
	return count, nil
}

// processEvents filters file system events and batches them by type
func (fw *FileWatcher) processEvents(ctx context.Context) {
	var added, modified []string

	flushTimer := time.NewTimer(batchWindow)
	flushTimer.Stop()

	flush := func() {
		if len(added) > 0 {
			fw.events <- ChangeEvent{Type: ChangeTypeProjectAdded, Paths: added, Timestamp: time.Now()}
			added = nil
		}
		if len(modified) > 0 {
			fw.events <- ChangeEvent{Type: ChangeTypeProjectModified, Paths: modified, Timestamp: time.Now()}
			modified = nil
		}
	}

	defer fw.close()

	for {
		select {
		case <-ctx.Done():
			return

		case event, ok := <-fw.watcher.Events:
			if !ok {
				return
			}

			switch {
			case event.Has(fsnotify.Create) && isDir(event.Name):
				if finder.SkipDir(filepath.Base(event.Name)) {
					continue
				}
				// A new directory may arrive with project files already inside
				if _, err := fw.watchTree(event.Name, func(p string) { added = append(added, p) }); err != nil {
					logging.Warn("failed to watch new directory", "path", event.Name, "error", err)
				}
			case !projtype.IsProjectFile(event.Name):
				continue
			case event.Has(fsnotify.Create):
				added = append(added, event.Name)
			case event.Has(fsnotify.Write):
				modified = append(modified, event.Name)
			default:
				continue
			}
			flushTimer.Reset(batchWindow)

		case <-flushTimer.C:
			flush()

		case err, ok := <-fw.watcher.Errors:
			if !ok {
				return
			}
			logging.Error("watcher error", "error", err)
		}
	}
}

func isDir(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.IsDir()
}

func (fw *FileWatcher) close() {
	fw.once.Do(func() {
		fw.watcher.Close()
		close(fw.events)
	})
}

// Events returns the channel of change events. It is closed when the
// watcher stops.
func (fw *FileWatcher) Events() <-chan ChangeEvent {
	return fw.events
}
