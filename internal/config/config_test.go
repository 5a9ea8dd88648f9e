package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/cytoscnpy/cytoscnpy/internal/diagnostics"
)

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("WriteFile(%s) error: %v", path, err)
	}
}

func TestLoadDefaultsWithNoConfigFiles(t *testing.T) {
	dir := t.TempDir()
	cfg, err := Load(dir, "", diagnostics.NewSink(), Overrides{})
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	if cfg.ConfidenceThreshold != 60 {
		t.Errorf("ConfidenceThreshold = %d, want default 60", cfg.ConfidenceThreshold)
	}
	if !cfg.EnableSecrets || !cfg.EnableDanger || !cfg.EnableQuality || !cfg.EnableTaint {
		t.Error("all rule categories should default to enabled")
	}
}

func TestProjectFileOverridesDefaults(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, ".cytoscnpy.toml"), `
confidence_threshold = 80
secrets = false
exclude_folders = ["vendor", "migrations"]
`)

	cfg, err := Load(dir, "", diagnostics.NewSink(), Overrides{})
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	if cfg.ConfidenceThreshold != 80 {
		t.Errorf("ConfidenceThreshold = %d, want 80", cfg.ConfidenceThreshold)
	}
	if cfg.EnableSecrets {
		t.Error("secrets should be disabled by the project file")
	}
	if len(cfg.ExcludeFolders) != 2 {
		t.Errorf("ExcludeFolders = %v, want 2 entries", cfg.ExcludeFolders)
	}
}

func TestPyprojectToolTableApplies(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "pyproject.toml"), `
[project]
name = "demo"

[tool.black]
line-length = 100

[tool.cytoscnpy]
confidence_threshold = 75
taint = false
`)

	cfg, err := Load(dir, "", diagnostics.NewSink(), Overrides{})
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	if cfg.ConfidenceThreshold != 75 {
		t.Errorf("ConfidenceThreshold = %d, want 75 from [tool.cytoscnpy]", cfg.ConfidenceThreshold)
	}
	if cfg.EnableTaint {
		t.Error("taint should be disabled by [tool.cytoscnpy]")
	}
}

func TestUnrelatedToolTablesDoNotWarn(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "pyproject.toml"), `
[tool.black]
line-length = 100

[tool.mypy]
strict = true
`)
	diag := diagnostics.NewSink()
	if _, err := Load(dir, "", diag, Overrides{}); err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	if diag.Len() != 0 {
		t.Errorf("Warnings() = %v, want none: unrelated [tool.*] sections must not trigger an unknown-key warning", diag.Warnings())
	}
}

func TestUnknownKeyWarnsButDoesNotFail(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, ".cytoscnpy.toml"), `
confidence_threshold = 80
nonexistent_option = true
`)
	diag := diagnostics.NewSink()
	cfg, err := Load(dir, "", diag, Overrides{})
	if err != nil {
		t.Fatalf("Load() error: %v, want nil (unknown keys warn, not fail)", err)
	}
	if cfg.ConfidenceThreshold != 80 {
		t.Errorf("ConfidenceThreshold = %d, want 80 despite the unknown key", cfg.ConfidenceThreshold)
	}
	if diag.Len() == 0 {
		t.Error("expected a warning about the unknown config key")
	}
}

func TestExplicitConfigPathMissingIsAnError(t *testing.T) {
	dir := t.TempDir()
	_, err := Load(dir, filepath.Join(dir, "does-not-exist.toml"), diagnostics.NewSink(), Overrides{})
	if err == nil {
		t.Error("expected an error for an explicit --config path that doesn't exist")
	}
}

func TestCLIOverrideBeatsProjectFile(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, ".cytoscnpy.toml"), `confidence_threshold = 80`)

	threshold := 90
	cfg, err := Load(dir, "", diagnostics.NewSink(), Overrides{ConfidenceThreshold: &threshold})
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	if cfg.ConfidenceThreshold != 90 {
		t.Errorf("ConfidenceThreshold = %d, want CLI override of 90", cfg.ConfidenceThreshold)
	}
}

func TestProjectFileBeatsPyproject(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "pyproject.toml"), `
[tool.cytoscnpy]
confidence_threshold = 75
`)
	writeFile(t, filepath.Join(dir, ".cytoscnpy.toml"), `confidence_threshold = 65`)

	cfg, err := Load(dir, "", diagnostics.NewSink(), Overrides{})
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	if cfg.ConfidenceThreshold != 65 {
		t.Errorf("ConfidenceThreshold = %d, want .cytoscnpy.toml's 65 to beat pyproject.toml's 75", cfg.ConfidenceThreshold)
	}
}
