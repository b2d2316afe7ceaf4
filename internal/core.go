package internal

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/starford/basetag/internal/noteservice"
	"github.com/starford/basetag/internal/plugin"
	"github.com/starford/basetag/internal/settings"
	"github.com/starford/basetag/internal/storage"
)

// Core is the wired plugin shared by every command: vault storage, the
// persisted settings, the controller, and the note service over them.
type Core struct {
	Store    *storage.FS
	Settings *settings.Store
	Plugin   *plugin.Plugin
	Service  *noteservice.Service
}

// Close releases the controller's observers.
func (c *Core) Close() {
	c.Plugin.Unload()
}

// Open wires a Core for cfg. The vault directory is created if missing.
func Open(cfg *Config, logger *slog.Logger, opts ...noteservice.Option) (*Core, error) {
	if err := os.MkdirAll(cfg.Vault.Path, 0o755); err != nil {
		return nil, fmt.Errorf("create vault dir: %w", err)
	}
	store, err := storage.NewFS(cfg.Vault.Path)
	if err != nil {
		return nil, fmt.Errorf("init storage: %w", err)
	}
	st, err := settings.Open(cfg.Settings.Path)
	if err != nil {
		return nil, fmt.Errorf("init settings: %w", err)
	}
	p := plugin.New(st, logger)
	return &Core{
		Store:    store,
		Settings: st,
		Plugin:   p,
		Service:  noteservice.NewService(store, p, opts...),
	}, nil
}

// NewLogger returns the structured JSON logger configured by cfg, writing to
// stdout.
func NewLogger(cfg *Config) *slog.Logger {
	return slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: cfg.App.LogLevel,
	}))
}

func (a *application) init(opts []Option) error {
	for _, opt := range opts {
		opt(a)
	}
	if a.config == nil {
		return fmt.Errorf("config is required")
	}
	if a.logger == nil {
		a.logger = NewLogger(a.config)
	}
	slog.SetDefault(a.logger)
	return nil
}
