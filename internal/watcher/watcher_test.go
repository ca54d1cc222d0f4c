package watcher

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"
)

// eventually polls fn every tick until it returns true or timeout elapses.
func eventually(t *testing.T, timeout, tick time.Duration, fn func() bool, msg string) {
	t.Helper()
	deadline := time.Now().Add(timeout)
	for time.Now().Before(deadline) {
		if fn() {
			return
		}
		time.Sleep(tick)
	}
	t.Error(msg)
}

func startWatch(t *testing.T, dir string, recursive bool) *atomic.Int32 {
	t.Helper()
	logger := slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError}))

	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)

	var calls atomic.Int32
	go Watch(ctx, Options{
		Root:       dir,
		Recursive:  recursive,
		Extensions: []string{".md", ".org"},
		Debounce:   50 * time.Millisecond,
		Logger:     logger,
	}, func(context.Context) {
		calls.Add(1)
	})

	// Give the watcher time to register.
	time.Sleep(100 * time.Millisecond)
	return &calls
}

func TestWatch_NoteChangeTriggersCallback(t *testing.T) {
	dir := t.TempDir()
	calls := startWatch(t, dir, false)

	_ = os.WriteFile(filepath.Join(dir, "a.org"), []byte(":PROPERTIES:\n:ID: a\n:END:\n"), 0o644)

	eventually(t, 3*time.Second, 50*time.Millisecond, func() bool {
		return calls.Load() >= 1
	}, "expected a change callback after writing a note")
}

func TestWatch_BurstIsDebounced(t *testing.T) {
	dir := t.TempDir()
	calls := startWatch(t, dir, false)

	for i := 0; i < 5; i++ {
		_ = os.WriteFile(filepath.Join(dir, "burst.md"), []byte("x"), 0o644)
	}

	eventually(t, 3*time.Second, 50*time.Millisecond, func() bool {
		return calls.Load() >= 1
	}, "expected a change callback")
	time.Sleep(200 * time.Millisecond)
	if n := calls.Load(); n > 2 {
		t.Errorf("calls = %d, want the burst coalesced", n)
	}
}

func TestWatch_IgnoresOtherFiles(t *testing.T) {
	dir := t.TempDir()
	calls := startWatch(t, dir, false)

	_ = os.WriteFile(filepath.Join(dir, "image.png"), []byte("x"), 0o644)
	time.Sleep(300 * time.Millisecond)
	if n := calls.Load(); n != 0 {
		t.Errorf("calls = %d, want 0 for non-note files", n)
	}
}

func TestWatch_NewSubdirectoryRecursive(t *testing.T) {
	dir := t.TempDir()
	calls := startWatch(t, dir, true)

	sub := filepath.Join(dir, "sub")
	_ = os.MkdirAll(sub, 0o755)
	eventually(t, 3*time.Second, 50*time.Millisecond, func() bool {
		return calls.Load() >= 1
	}, "expected a change callback for the new directory")

	before := calls.Load()
	time.Sleep(100 * time.Millisecond)
	_ = os.WriteFile(filepath.Join(sub, "deep.md"), []byte("x"), 0o644)
	eventually(t, 3*time.Second, 50*time.Millisecond, func() bool {
		return calls.Load() > before
	}, "expected a change callback for a note in the new directory")
}
