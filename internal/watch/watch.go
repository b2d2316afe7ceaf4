// Package watch reports Markdown changes in a vault directory tree.
package watch

import (
	"context"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/starford/basetag/internal/checksum"
	"github.com/starford/basetag/internal/storage"
)

// Kind classifies a change.
type Kind string

const (
	Created Kind = "created"
	Updated Kind = "updated"
	Deleted Kind = "deleted"
)

// Handler is called for every note whose content changed. path is
// slash-separated and relative to the vault root.
type Handler func(kind Kind, path string)

// reconcileDelay debounces the pass that follows a rename.
const reconcileDelay = 200 * time.Millisecond

// Watcher follows a vault with fsnotify. It remembers the checksum of every
// note it has reported, so writes that leave a file unchanged are dropped.
type Watcher struct {
	store   storage.Provider
	root    string
	log     *slog.Logger
	handler Handler
	known   map[string]string
}

// New creates a watcher for the vault at root.
func New(store storage.Provider, root string, logger *slog.Logger, h Handler) *Watcher {
	if h == nil {
		h = func(Kind, string) {}
	}
	return &Watcher{store: store, root: root, log: logger, handler: h, known: make(map[string]string)}
}

// Run processes change events until ctx is cancelled. New directories
// created at runtime are added to the watch list; renames trigger a
// reconciliation against the files on disk.
func (w *Watcher) Run(ctx context.Context) error {
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer fw.Close()

	if err := addDirsRecursive(fw, w.root); err != nil {
		return err
	}
	w.seed()

	w.log.Info("watcher: started", slog.String("root", w.root))

	var reconcileTimer *time.Timer
	var reconcileCh <-chan time.Time
	scheduleReconcile := func() {
		if reconcileTimer == nil {
			reconcileTimer = time.NewTimer(reconcileDelay)
			reconcileCh = reconcileTimer.C
		} else {
			reconcileTimer.Reset(reconcileDelay)
		}
	}

	for {
		select {
		case <-ctx.Done():
			if reconcileTimer != nil {
				reconcileTimer.Stop()
			}
			w.log.Info("watcher: stopped")
			return nil

		case <-reconcileCh:
			w.reconcile()

		case ev, ok := <-fw.Events:
			if !ok {
				return nil
			}
			w.handle(fw, ev, scheduleReconcile)

		case watchErr, ok := <-fw.Errors:
			if !ok {
				return nil
			}
			w.log.Error("watcher: error", slog.String("error", watchErr.Error()))
		}
	}
}

func (w *Watcher) handle(fw *fsnotify.Watcher, ev fsnotify.Event, scheduleReconcile func()) {
	abs := ev.Name

	if ev.Op&fsnotify.Create != 0 {
		if info, err := os.Stat(abs); err == nil && info.IsDir() {
			if hidden(info.Name()) {
				return
			}
			if err := addDirsRecursive(fw, abs); err != nil {
				w.log.Warn("watcher: add new dir failed",
					slog.String("path", abs),
					slog.String("error", err.Error()))
			} else {
				w.log.Debug("watcher: watching new dir", slog.String("path", abs))
			}
			w.scanDir(abs)
			return
		}
	}

	if !storage.IsMarkdown(abs) {
		return
	}
	rel, err := filepath.Rel(w.root, abs)
	if err != nil {
		return
	}
	rel = filepath.ToSlash(rel)

	switch {
	case ev.Op&(fsnotify.Create|fsnotify.Write) != 0:
		w.refresh(rel)
	case ev.Op&fsnotify.Remove != 0:
		w.forget(rel)
	case ev.Op&fsnotify.Rename != 0:
		// The new name arrives as a separate Create when it stays inside a
		// watched directory.
		w.forget(rel)
		scheduleReconcile()
	}
}

// refresh reads rel and reports it when its content changed.
func (w *Watcher) refresh(rel string) {
	data, err := w.store.Read(rel)
	if err != nil {
		w.log.Warn("watcher: read failed", slog.String("path", rel), slog.String("error", err.Error()))
		return
	}
	sum := checksum.Sum(data)
	prev, seen := w.known[rel]
	if seen && prev == sum {
		return
	}
	w.known[rel] = sum

	kind := Updated
	if !seen {
		kind = Created
	}
	w.log.Debug("watcher: changed", slog.String("path", rel), slog.String("op", string(kind)))
	w.handler(kind, rel)
}

func (w *Watcher) forget(rel string) {
	if _, ok := w.known[rel]; !ok {
		return
	}
	delete(w.known, rel)
	w.log.Debug("watcher: deleted", slog.String("path", rel))
	w.handler(Deleted, rel)
}

func (w *Watcher) seed() {
	metas, err := w.store.List("")
	if err != nil {
		w.log.Warn("watcher: initial list failed", slog.String("error", err.Error()))
		return
	}
	for _, m := range metas {
		w.known[m.Path] = m.Checksum
	}
}

// reconcile drops notes that no longer exist on disk and reports notes that
// are new or changed.
func (w *Watcher) reconcile() {
	metas, err := w.store.List("")
	if err != nil {
		w.log.Warn("reconcile: list failed", slog.String("error", err.Error()))
		return
	}
	disk := make(map[string]string, len(metas))
	for _, m := range metas {
		disk[m.Path] = m.Checksum
	}
	for p := range w.known {
		if _, ok := disk[p]; !ok {
			w.forget(p)
		}
	}
	for p, sum := range disk {
		if prev, ok := w.known[p]; !ok || prev != sum {
			w.refresh(p)
		}
	}
}

// scanDir reports the notes already present in a new directory.
func (w *Watcher) scanDir(dir string) {
	_ = filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil || d.IsDir() || !storage.IsMarkdown(path) {
			return nil
		}
		rel, relErr := filepath.Rel(w.root, path)
		if relErr != nil {
			return nil
		}
		w.refresh(filepath.ToSlash(rel))
		return nil
	})
}

// addDirsRecursive adds root and all its non-hidden subdirectories.
func addDirsRecursive(fw *fsnotify.Watcher, root string) error {
	return filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() {
			return nil
		}
		if path != root && hidden(d.Name()) {
			return filepath.SkipDir
		}
		return fw.Add(path)
	})
}

func hidden(name string) bool { return strings.HasPrefix(name, ".") }
