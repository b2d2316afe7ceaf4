package watch

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/starford/basetag/internal/testutil"
)

type recorder struct {
	mu     sync.Mutex
	events []string
}

func (r *recorder) handle(kind Kind, path string) {
	r.mu.Lock()
	r.events = append(r.events, string(kind)+":"+path)
	r.mu.Unlock()
}

func (r *recorder) has(want string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, e := range r.events {
		if e == want {
			return true
		}
	}
	return false
}

func (r *recorder) count(want string) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	n := 0
	for _, e := range r.events {
		if e == want {
			n++
		}
	}
	return n
}

func start(t *testing.T, vaultDir string, rec *recorder) {
	t.Helper()
	_, store := testutil.OpenVault(t, vaultDir)
	logger := slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError}))

	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)
	go func() { _ = New(store, vaultDir, logger, rec.handle).Run(ctx) }()
	time.Sleep(100 * time.Millisecond)
}

func TestWatcher_NewFileReported(t *testing.T) {
	vaultDir := t.TempDir()
	rec := &recorder{}
	start(t, vaultDir, rec)

	_ = os.WriteFile(filepath.Join(vaultDir, "new.md"), []byte("# New #tag"), 0o644)
	_ = os.WriteFile(filepath.Join(vaultDir, "skip.txt"), []byte("x"), 0o644)

	testutil.Eventually(t, 5*time.Second, 50*time.Millisecond, func() bool {
		return rec.has("created:new.md")
	}, "expected created:new.md")
	if rec.has("created:skip.txt") {
		t.Error("non-markdown file reported")
	}
}

func TestWatcher_UnchangedContentDropped(t *testing.T) {
	vaultDir, store := testutil.TestVault(t)
	path := filepath.Join(vaultDir, "a.md")
	_ = os.WriteFile(path, []byte("same"), 0o644)

	rec := &recorder{}
	w := New(store, vaultDir, slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError})), rec.handle)
	w.seed()

	w.refresh("a.md")
	if len(rec.events) != 0 {
		t.Fatalf("unchanged note reported: %v", rec.events)
	}
	_ = os.WriteFile(path, []byte("changed"), 0o644)
	w.refresh("a.md")
	w.refresh("a.md")
	if rec.count("updated:a.md") != 1 {
		t.Errorf("events = %v", rec.events)
	}

	_ = os.Remove(path)
	w.reconcile()
	if !rec.has("deleted:a.md") {
		t.Errorf("events = %v", rec.events)
	}
}

func TestWatcher_NewDirWatched(t *testing.T) {
	vaultDir := t.TempDir()
	rec := &recorder{}
	start(t, vaultDir, rec)

	subDir := filepath.Join(vaultDir, "subdir")
	_ = os.MkdirAll(subDir, 0o755)
	time.Sleep(200 * time.Millisecond)
	_ = os.WriteFile(filepath.Join(subDir, "deep.md"), []byte("# Deep"), 0o644)

	testutil.Eventually(t, 5*time.Second, 50*time.Millisecond, func() bool {
		return rec.has("created:subdir/deep.md")
	}, "file in new subdir not reported")
}

func TestWatcher_DeleteReported(t *testing.T) {
	vaultDir := t.TempDir()
	_ = os.WriteFile(filepath.Join(vaultDir, "del.md"), []byte("# Delete Me"), 0o644)
	rec := &recorder{}
	start(t, vaultDir, rec)

	_ = os.Remove(filepath.Join(vaultDir, "del.md"))

	testutil.Eventually(t, 5*time.Second, 50*time.Millisecond, func() bool {
		return rec.has("deleted:del.md")
	}, "expected deleted:del.md")
}

func TestWatcher_RenameReconciles(t *testing.T) {
	vaultDir := t.TempDir()
	_ = os.WriteFile(filepath.Join(vaultDir, "old.md"), []byte("# Rename"), 0o644)
	rec := &recorder{}
	start(t, vaultDir, rec)

	_ = os.Rename(filepath.Join(vaultDir, "old.md"), filepath.Join(vaultDir, "renamed.md"))

	testutil.Eventually(t, 5*time.Second, 50*time.Millisecond, func() bool {
		return rec.has("deleted:old.md") && rec.has("created:renamed.md")
	}, "rename reconciliation failed")
}
