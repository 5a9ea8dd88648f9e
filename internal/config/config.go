// Package config resolves cytoscnpy's merged configuration from
// defaults, pyproject.toml's [tool.cytoscnpy] table, a project-level
// .cytoscnpy.toml, and CLI flags, in that increasing order of
// precedence (spec §6, §7.4).
package config

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"

	"github.com/pelletier/go-toml/v2"

	"github.com/cytoscnpy/cytoscnpy/internal/diagnostics"
	"github.com/cytoscnpy/cytoscnpy/pkg/types"
)

// fileConfig mirrors the on-disk shape of both .cytoscnpy.toml and
// pyproject.toml's [tool.cytoscnpy] table. Pointer fields distinguish
// "absent from this file" from "explicitly set to the zero value", so a
// lower-precedence layer never clobbers a higher one with a false/0.
type fileConfig struct {
	IncludeFolders      []string `toml:"include_folders"`
	ExcludeFolders      []string `toml:"exclude_folders"`
	IncludeTests        *bool    `toml:"include_tests"`
	IncludeNotebooks    *bool    `toml:"include_notebooks"`
	Secrets             *bool    `toml:"secrets"`
	Danger              *bool    `toml:"danger"`
	Quality             *bool    `toml:"quality"`
	Taint               *bool    `toml:"taint"`
	ConfidenceThreshold *int     `toml:"confidence_threshold"`
	FailThreshold       *int     `toml:"fail_threshold"`
	MaxComplexity       *int     `toml:"max_complexity"`
	MinMI               *float64 `toml:"min_mi"`
	MaxNesting          *int     `toml:"max_nesting"`
	MaxArgs             *int     `toml:"max_args"`
	MaxLines            *int     `toml:"max_lines"`
}

// Overrides carries CLI flag values. A nil pointer or nil slice means
// "the flag wasn't passed", so CLI layering only touches fields the
// user actually set.
type Overrides struct {
	IncludeFolders      []string
	ExcludeFolders      []string
	IncludeTests        *bool
	IncludeNotebooks    *bool
	Secrets             *bool
	Danger              *bool
	Quality             *bool
	Taint               *bool
	ConfidenceThreshold *int
	FailThreshold       *int
}

// Load resolves dir's merged Config. explicitPath, if non-empty, is a
// --config flag value naming an exact .cytoscnpy.toml-shaped file; it is
// an error if that file doesn't exist. diag receives a warning (never an
// error) for any unrecognized key in a config file, per spec §7.4 —
// configuration mistakes should not abort a scan the way a missing
// source file does.
func Load(dir, explicitPath string, diag *diagnostics.Sink, cli Overrides) (*types.Config, error) {
	cfg := types.DefaultConfig()
	cfg.RootPath = dir

	if pp := filepath.Join(dir, "pyproject.toml"); fileExists(pp) {
		fc, err := readPyprojectTable(pp, diag)
		if err != nil {
			return nil, err
		}
		applyFileConfig(cfg, fc)
	}

	projectPath := explicitPath
	if projectPath == "" {
		projectPath = filepath.Join(dir, ".cytoscnpy.toml")
	}
	switch {
	case fileExists(projectPath):
		fc, err := readProjectFile(projectPath, diag)
		if err != nil {
			return nil, err
		}
		applyFileConfig(cfg, fc)
	case explicitPath != "":
		return nil, fmt.Errorf("config file not found: %s", explicitPath)
	}

	applyOverrides(cfg, cli)
	return cfg, nil
}

func fileExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}

// readProjectFile decodes a standalone .cytoscnpy.toml file.
func readProjectFile(path string, diag *diagnostics.Sink) (fileConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return fileConfig{}, fmt.Errorf("read config %s: %w", path, err)
	}
	warnUnknownKeys(path, data, &fileConfig{}, diag)

	var fc fileConfig
	if err := toml.Unmarshal(data, &fc); err != nil {
		return fileConfig{}, fmt.Errorf("parse config %s: %w", path, err)
	}
	return fc, nil
}

// readPyprojectTable decodes only the [tool.cytoscnpy] table of a
// pyproject.toml, ignoring every other tool's section. Unknown-key
// checking is scoped to just that table (re-marshaled in isolation)
// rather than the whole file, since a real pyproject.toml routinely
// carries [tool.black], [tool.mypy], and similar sections that would
// otherwise all show up as spurious "unknown field" warnings.
func readPyprojectTable(path string, diag *diagnostics.Sink) (fileConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return fileConfig{}, fmt.Errorf("read %s: %w", path, err)
	}

	var raw map[string]any
	if err := toml.Unmarshal(data, &raw); err != nil {
		return fileConfig{}, fmt.Errorf("parse %s: %w", path, err)
	}
	tool, _ := raw["tool"].(map[string]any)
	section, ok := tool["cytoscnpy"]
	if !ok {
		return fileConfig{}, nil
	}

	sectionBytes, err := toml.Marshal(section)
	if err != nil {
		return fileConfig{}, fmt.Errorf("re-marshal [tool.cytoscnpy] in %s: %w", path, err)
	}
	warnUnknownKeys(path, sectionBytes, &fileConfig{}, diag)

	var fc fileConfig
	if err := toml.Unmarshal(sectionBytes, &fc); err != nil {
		return fileConfig{}, fmt.Errorf("parse [tool.cytoscnpy] in %s: %w", path, err)
	}
	return fc, nil
}

// warnUnknownKeys re-decodes data in strict mode purely to surface an
// unrecognized-field diagnostic; the result is discarded, since the
// caller's own lenient Unmarshal is what actually produces the config
// this key set feeds into.
func warnUnknownKeys(path string, data []byte, into any, diag *diagnostics.Sink) {
	if diag == nil {
		return
	}
	dec := toml.NewDecoder(bytes.NewReader(data))
	dec.DisallowUnknownFields()
	if err := dec.Decode(into); err != nil {
		diag.Warnf("%s: %v", path, err)
	}
}

func applyFileConfig(cfg *types.Config, fc fileConfig) {
	if len(fc.IncludeFolders) > 0 {
		cfg.IncludeFolders = fc.IncludeFolders
	}
	if len(fc.ExcludeFolders) > 0 {
		cfg.ExcludeFolders = fc.ExcludeFolders
	}
	if fc.IncludeTests != nil {
		cfg.IncludeTests = *fc.IncludeTests
	}
	if fc.IncludeNotebooks != nil {
		cfg.IncludeNotebooks = *fc.IncludeNotebooks
	}
	if fc.Secrets != nil {
		cfg.EnableSecrets = *fc.Secrets
	}
	if fc.Danger != nil {
		cfg.EnableDanger = *fc.Danger
	}
	if fc.Quality != nil {
		cfg.EnableQuality = *fc.Quality
	}
	if fc.Taint != nil {
		cfg.EnableTaint = *fc.Taint
	}
	if fc.ConfidenceThreshold != nil {
		cfg.ConfidenceThreshold = *fc.ConfidenceThreshold
	}
	if fc.FailThreshold != nil {
		cfg.FailThreshold = *fc.FailThreshold
	}
	if fc.MaxComplexity != nil {
		cfg.MaxComplexity = *fc.MaxComplexity
	}
	if fc.MinMI != nil {
		cfg.MinMI = *fc.MinMI
	}
	if fc.MaxNesting != nil {
		cfg.MaxNesting = *fc.MaxNesting
	}
	if fc.MaxArgs != nil {
		cfg.MaxArgs = *fc.MaxArgs
	}
	if fc.MaxLines != nil {
		cfg.MaxLines = *fc.MaxLines
	}
}

func applyOverrides(cfg *types.Config, o Overrides) {
	if len(o.IncludeFolders) > 0 {
		cfg.IncludeFolders = o.IncludeFolders
	}
	if len(o.ExcludeFolders) > 0 {
		cfg.ExcludeFolders = o.ExcludeFolders
	}
	if o.IncludeTests != nil {
		cfg.IncludeTests = *o.IncludeTests
	}
	if o.IncludeNotebooks != nil {
		cfg.IncludeNotebooks = *o.IncludeNotebooks
	}
	if o.Secrets != nil {
		cfg.EnableSecrets = *o.Secrets
	}
	if o.Danger != nil {
		cfg.EnableDanger = *o.Danger
	}
	if o.Quality != nil {
		cfg.EnableQuality = *o.Quality
	}
	if o.Taint != nil {
		cfg.EnableTaint = *o.Taint
	}
	if o.ConfidenceThreshold != nil {
		cfg.ConfidenceThreshold = *o.ConfidenceThreshold
	}
	if o.FailThreshold != nil {
		cfg.FailThreshold = *o.FailThreshold
	}
}
