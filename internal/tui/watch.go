package tui

import (
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/adamavenir/agentjob/internal/store"
)

const watchDebounce = 500 * time.Millisecond

// watcher wakes the dashboard when a status record changes on disk.
// Events are debounced into the C channel; a full refresh is cheap, so
// there is no per-job bookkeeping.
type watcher struct {
	fs   *fsnotify.Watcher
	C    chan struct{}
	done chan struct{}

	mu       sync.Mutex
	debounce *time.Timer
}

func newWatcher(root string) (*watcher, error) {
	fs, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}

	w := &watcher{
		fs:   fs,
		C:    make(chan struct{}, 1),
		done: make(chan struct{}),
	}
	if err := w.addPaths(root); err != nil {
		_ = fs.Close()
		return nil, err
	}

	go w.loop()
	return w, nil
}

// addPaths watches the jobs root plus every existing job directory.
// New job directories are picked up from create events.
func (w *watcher) addPaths(root string) error {
	if err := os.MkdirAll(root, 0o755); err != nil {
		return err
	}
	if err := w.fs.Add(root); err != nil {
		return err
	}

	entries, err := os.ReadDir(root)
	if err != nil {
		return err
	}
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}
		_ = w.fs.Add(filepath.Join(root, entry.Name()))
	}
	return nil
}

func (w *watcher) loop() {
	for {
		select {
		case <-w.done:
			return
		case event, ok := <-w.fs.Events:
			if !ok {
				return
			}
			w.handleEvent(event)
		case _, ok := <-w.fs.Errors:
			if !ok {
				return
			}
		}
	}
}

func (w *watcher) handleEvent(event fsnotify.Event) {
	if event.Has(fsnotify.Create) {
		if info, err := os.Stat(event.Name); err == nil && info.IsDir() {
			_ = w.fs.Add(event.Name)
			w.schedule()
			return
		}
	}

	// The store lands updates by renaming a temp file over status.json,
	// which surfaces as a create in the job directory.
	if event.Has(fsnotify.Write) || event.Has(fsnotify.Create) || event.Has(fsnotify.Rename) {
		if filepath.Base(event.Name) == store.StatusFile {
			w.schedule()
		}
	}
}

func (w *watcher) schedule() {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.debounce != nil {
		w.debounce.Stop()
	}
	w.debounce = time.AfterFunc(watchDebounce, func() {
		select {
		case <-w.done:
			return
		default:
		}
		select {
		case w.C <- struct{}{}:
		default:
		}
	})
}

func (w *watcher) Close() {
	close(w.done)

	w.mu.Lock()
	if w.debounce != nil {
		w.debounce.Stop()
	}
	w.mu.Unlock()

	_ = w.fs.Close()
}
