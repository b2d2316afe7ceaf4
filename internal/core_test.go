package internal

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/starford/basetag/internal/settings"
)

func TestOpen_CreatesVaultAndLoadsSettings(t *testing.T) {
	cfg := testConfig(t)
	if err := os.WriteFile(cfg.Settings.Path, []byte("customTagSelectors: [.x]\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	core, err := Open(cfg, quietLogger())
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer core.Close()

	if fi, err := os.Stat(cfg.Vault.Path); err != nil || !fi.IsDir() {
		t.Fatalf("vault not created: %v", err)
	}
	got := core.Settings.Get()
	if len(got.CustomTagSelectors) != 1 || got.CustomTagSelectors[0] != ".x" {
		t.Errorf("settings = %+v", got)
	}
	if core.Settings.Path() != cfg.Settings.Path {
		t.Errorf("settings path = %q", core.Settings.Path())
	}
}

func TestOpen_BadSettings(t *testing.T) {
	cfg := testConfig(t)
	if err := os.WriteFile(cfg.Settings.Path, []byte("customTagSelectors: {"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := Open(cfg, quietLogger()); err == nil {
		t.Fatal("expected parse error")
	}
}

func TestOpen_SettingsPersist(t *testing.T) {
	cfg := testConfig(t)
	cfg.Settings.Path = filepath.Join(t.TempDir(), "nested", "s.yaml")
	core, err := Open(cfg, quietLogger())
	if err != nil {
		t.Fatal(err)
	}
	if _, err := core.Settings.Update(func(s *settings.Settings) {
		s.CustomTagContainerSelectors = []string{".side"}
	}); err != nil {
		t.Fatal(err)
	}
	reopened, err := settings.Open(cfg.Settings.Path)
	if err != nil {
		t.Fatal(err)
	}
	if got := reopened.Get().CustomTagContainerSelectors; len(got) != 1 || got[0] != ".side" {
		t.Errorf("persisted = %q", got)
	}
}
