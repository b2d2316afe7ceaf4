package internal

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/starford/basetag/internal/noteservice"
	"github.com/starford/basetag/internal/storage"
	"github.com/starford/basetag/internal/watch"
)

// Export renders the reading view of every note into the configured output
// directory, one <note>.html per note. With WithWatch it keeps running until
// ctx is done, re-rendering changed notes and removing deleted ones.
func Export(ctx context.Context, opts ...Option) error {
	app := &application{}
	if err := app.init(opts); err != nil {
		return err
	}
	cfg, logger := app.config, app.logger

	core, err := Open(cfg, logger)
	if err != nil {
		return err
	}
	defer core.Close()

	ex := &exporter{svc: core.Service, out: cfg.Render.OutDir, log: logger}
	metas, err := core.Store.List("")
	if err != nil {
		return fmt.Errorf("list notes: %w", err)
	}
	for _, m := range metas {
		if err := ex.render(ctx, m.Path); err != nil {
			return err
		}
	}
	logger.Info("export: rendered",
		slog.Int("notes", len(metas)),
		slog.String("out_dir", cfg.Render.OutDir))

	if !app.watch {
		return nil
	}
	return watch.New(core.Store, cfg.Vault.Path, logger, ex.handle).Run(ctx)
}

type exporter struct {
	svc *noteservice.Service
	out string
	log *slog.Logger
}

// target maps a note path to its page under the output directory.
func (e *exporter) target(notePath string) string {
	page := strings.TrimSuffix(notePath, path.Ext(notePath)) + ".html"
	return filepath.Join(e.out, filepath.FromSlash(page))
}

func (e *exporter) render(ctx context.Context, notePath string) error {
	page, err := e.svc.RenderNote(ctx, notePath)
	if err != nil {
		return fmt.Errorf("render %s: %w", notePath, err)
	}
	if err := storage.WriteFileAtomic(e.target(notePath), []byte(page.HTML)); err != nil {
		return fmt.Errorf("write %s: %w", notePath, err)
	}
	return nil
}

func (e *exporter) handle(kind watch.Kind, notePath string) {
	switch kind {
	case watch.Deleted:
		if err := os.Remove(e.target(notePath)); err != nil && !errors.Is(err, fs.ErrNotExist) {
			e.log.Warn("export: remove failed", slog.String("path", notePath), slog.String("error", err.Error()))
			return
		}
		e.log.Info("export: removed", slog.String("path", notePath))
	default:
		if err := e.render(context.Background(), notePath); err != nil {
			e.log.Warn("export: render failed", slog.String("path", notePath), slog.String("error", err.Error()))
			return
		}
		e.log.Info("export: rendered", slog.String("path", notePath))
	}
}
