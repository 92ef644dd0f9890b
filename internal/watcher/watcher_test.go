package watcher

import (
	"context"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"
)

func startWatcher(t *testing.T, dir string, opts ...WatcherOption) (*Watcher, *atomic.Int32) {
	t.Helper()
	var changes atomic.Int32
	opts = append([]WatcherOption{WithDebounce(100 * time.Millisecond)}, opts...)
	w := NewWatcher(dir, "*.txt", func() { changes.Add(1) }, opts...)
	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)
	if err := w.Start(ctx); err != nil {
		t.Fatal(err)
	}
	t.Cleanup(w.Stop)
	return w, &changes
}

func waitFor(t *testing.T, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(3 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(20 * time.Millisecond)
	}
	t.Fatal("condition not met before deadline")
}

func TestWatcher_DebouncesBurst(t *testing.T) {
	dir := t.TempDir()
	_, changes := startWatcher(t, dir)

	for _, name := range []string{"a.txt", "b.txt", "c.txt"} {
		if err := os.WriteFile(filepath.Join(dir, name), []byte("x"), 0644); err != nil {
			t.Fatal(err)
		}
	}
	waitFor(t, func() bool { return changes.Load() >= 1 })
	time.Sleep(400 * time.Millisecond)
	if got := changes.Load(); got != 1 {
		t.Errorf("changes = %d, want 1 for a single burst", got)
	}

	if err := os.Remove(filepath.Join(dir, "a.txt")); err != nil {
		t.Fatal(err)
	}
	waitFor(t, func() bool { return changes.Load() == 2 })
}

func TestWatcher_IgnoresOtherFiles(t *testing.T) {
	dir := t.TempDir()
	store := filepath.Join(dir, "emnet")
	if err := os.Mkdir(store, 0755); err != nil {
		t.Fatal(err)
	}
	sub := filepath.Join(dir, "sub")
	if err := os.Mkdir(sub, 0755); err != nil {
		t.Fatal(err)
	}
	_, changes := startWatcher(t, dir, WithIgnore("emnet"))

	_ = os.WriteFile(filepath.Join(dir, "notes.md"), []byte("x"), 0644)
	_ = os.WriteFile(filepath.Join(store, "vectors.bin"), []byte("x"), 0644)
	_ = os.WriteFile(filepath.Join(sub, "deep.txt"), []byte("x"), 0644)
	time.Sleep(400 * time.Millisecond)
	if got := changes.Load(); got != 0 {
		t.Errorf("changes = %d, want 0", got)
	}
}

func TestWatcher_Relevant(t *testing.T) {
	w := NewWatcher("/corpus", "*.txt", nil, WithIgnore("emnet"))
	tests := []struct {
		path string
		want bool
	}{
		{"/corpus/a.txt", true},
		{"/corpus/a.md", false},
		{"/corpus/sub/a.txt", false},
		{"/corpus/emnet", false},
		{"/other/a.txt", false},
	}
	for _, tt := range tests {
		if got := w.relevant(tt.path); got != tt.want {
			t.Errorf("relevant(%q) = %v, want %v", tt.path, got, tt.want)
		}
	}
}

func TestWatcher_StopIsIdempotent(t *testing.T) {
	w, _ := startWatcher(t, t.TempDir())
	w.Stop()
	w.Stop()
}

func TestWatcher_StartMissingDir(t *testing.T) {
	w := NewWatcher(filepath.Join(t.TempDir(), "missing"), "*.txt", nil)
	if err := w.Start(context.Background()); err == nil {
		w.Stop()
		t.Error("expected error for missing directory")
	}
}
