package tui

import (
	"testing"
	"time"

	"github.com/adamavenir/agentjob/internal/store"
	"github.com/adamavenir/agentjob/internal/types"
)

func TestWatcherSignalsOnStatusWrite(t *testing.T) {
	root := t.TempDir()
	w, err := newWatcher(root)
	if err != nil {
		t.Skipf("filesystem watcher unavailable: %v", err)
	}
	defer w.Close()

	s := store.New(root)
	rec := types.NewJobStatus("job-1", types.HarnessCodex, 1, s.LogPath("job-1"))
	if err := s.Write(rec); err != nil {
		t.Fatalf("write status: %v", err)
	}

	select {
	case <-w.C:
	case <-time.After(5 * time.Second):
		t.Fatal("expected a watch signal after a status write")
	}
}

func TestWatcherDebouncesBursts(t *testing.T) {
	root := t.TempDir()
	w, err := newWatcher(root)
	if err != nil {
		t.Skipf("filesystem watcher unavailable: %v", err)
	}
	defer w.Close()

	s := store.New(root)
	rec := types.NewJobStatus("job-1", types.HarnessCodex, 1, s.LogPath("job-1"))
	for i := 0; i < 5; i++ {
		rec.Operations++
		if err := s.Write(rec); err != nil {
			t.Fatalf("write status: %v", err)
		}
	}

	select {
	case <-w.C:
	case <-time.After(5 * time.Second):
		t.Fatal("expected a watch signal after burst")
	}

	// The burst collapses into at most one pending signal.
	select {
	case <-w.C:
		t.Fatal("expected burst to be debounced to a single signal")
	case <-time.After(watchDebounce * 3):
	}
}
