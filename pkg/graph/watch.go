package graph

import (
	"context"
	"fmt"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
)

// Watcher reloads a MemoryStore from model files whenever one of them
// changes on disk.
type Watcher struct {
	store    *MemoryStore
	files    []string
	debounce time.Duration

	// OnReload is called after every reload attempt with the number of
	// triples loaded, or the error that kept the previous contents in place.
	OnReload func(triples int, err error)
}

// NewWatcher creates a watcher for the given model files.
func NewWatcher(store *MemoryStore, files []string) *Watcher {
	return &Watcher{
		store:    store,
		files:    files,
		debounce: 200 * time.Millisecond,
	}
}

// LoadModelFiles reads and concatenates every model file in order.
func LoadModelFiles(files []string) ([]Triple, error) {
	var all []Triple
	for _, f := range files {
		triples, err := LoadModelFile(f)
		if err != nil {
			return nil, err
		}
		all = append(all, triples...)
	}
	return all, nil
}

// Reload replaces the store contents with the current model files. On error
// the store is left untouched.
func (w *Watcher) Reload() error {
	triples, err := LoadModelFiles(w.files)
	if err == nil {
		w.store.Replace(triples)
	}
	if w.OnReload != nil {
		w.OnReload(len(triples), err)
	}
	return err
}

// Run watches the directories of the model files until ctx is done.
// Editors often replace files instead of writing them, so directories are
// watched and events are filtered by file name.
func (w *Watcher) Run(ctx context.Context) error {
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create file watcher: %w", err)
	}
	defer fw.Close()

	watched := make(map[string]bool)
	dirs := make(map[string]bool)
	for _, f := range w.files {
		abs, err := filepath.Abs(f)
		if err != nil {
			return fmt.Errorf("failed to resolve %s: %w", f, err)
		}
		watched[abs] = true
		dir := filepath.Dir(abs)
		if dirs[dir] {
			continue
		}
		if err := fw.Add(dir); err != nil {
			return fmt.Errorf("failed to watch %s: %w", dir, err)
		}
		dirs[dir] = true
	}

	var (
		timer   *time.Timer
		pending <-chan time.Time
	)
	for {
		select {
		case <-ctx.Done():
			if timer != nil {
				timer.Stop()
			}
			return nil

		case ev, ok := <-fw.Events:
			if !ok {
				return nil
			}
			abs, err := filepath.Abs(ev.Name)
			if err != nil || !watched[abs] {
				continue
			}
			if !ev.Has(fsnotify.Write) && !ev.Has(fsnotify.Create) && !ev.Has(fsnotify.Rename) {
				continue
			}
			if timer == nil {
				timer = time.NewTimer(w.debounce)
			} else {
				timer.Reset(w.debounce)
			}
			pending = timer.C

		case <-pending:
			pending = nil
			_ = w.Reload()

		case err, ok := <-fw.Errors:
			if !ok {
				return nil
			}
			if w.OnReload != nil {
				w.OnReload(0, fmt.Errorf("file watcher: %w", err))
			}
		}
	}
}
