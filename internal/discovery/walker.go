// Package discovery walks a project root and classifies Python source
// files for the analysis pipeline (spec §4.1).
package discovery

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	ignore "github.com/sabhiram/go-gitignore"

	"github.com/cytoscnpy/cytoscnpy/pkg/types"
)

// defaultSkipDirs lists directory names skipped during walking unless the
// user explicitly included them via --include.
var defaultSkipDirs = map[string]bool{
	".git":                true,
	".hg":                 true,
	".svn":                true,
	"__pycache__":         true,
	".mypy_cache":         true,
	".pytest_cache":       true,
	".ruff_cache":         true,
	".tox":                true,
	".venv":               true,
	"venv":                true,
	"env":                 true,
	".env":                true,
	"node_modules":        true,
	"dist":                true,
	"build":               true,
	"site-packages":       true,
	".ipynb_checkpoints":  true,
}

// Walker discovers and classifies Python source files in a directory tree.
type Walker struct {
	IncludeFolders   []string
	ExcludeFolders   []string
	IncludeTests     bool
	IncludeNotebooks bool
}

// NewWalker creates a Walker with the given filter configuration.
func NewWalker(includeFolders, excludeFolders []string, includeTests, includeNotebooks bool) *Walker {
	return &Walker{
		IncludeFolders:   includeFolders,
		ExcludeFolders:   excludeFolders,
		IncludeTests:     includeTests,
		IncludeNotebooks: includeNotebooks,
	}
}

// Discover walks rootDir recursively and returns a ScanResult describing
// every .py (and, when enabled, .ipynb) file found, classified and
// filtered per spec §4.1.
func (w *Walker) Discover(rootDir string) (*types.ScanResult, error) {
	rootDir, err := filepath.Abs(rootDir)
	if err != nil {
		return nil, fmt.Errorf("resolve root directory: %w", err)
	}

	info, err := os.Stat(rootDir)
	if err != nil {
		return nil, fmt.Errorf("cannot access root directory: %w", err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("%s is not a directory", rootDir)
	}

	var gitIgnore *ignore.GitIgnore
	gitignorePath := filepath.Join(rootDir, ".gitignore")
	if _, err := os.Stat(gitignorePath); err == nil {
		gitIgnore, err = ignore.CompileIgnoreFile(gitignorePath)
		if err != nil {
			return nil, fmt.Errorf("failed to parse .gitignore: %w", err)
		}
	}

	result := &types.ScanResult{RootDir: rootDir}
	excludeSet := toSet(w.ExcludeFolders)
	includeSet := toSet(w.IncludeFolders)

	err = filepath.WalkDir(rootDir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			fmt.Fprintf(os.Stderr, "warning: skipping %s: %v\n", path, err)
			result.SkippedCount++
			if d != nil && d.IsDir() {
				return fs.SkipDir
			}
			return nil
		}

		if d.Type()&fs.ModeSymlink != 0 {
			fmt.Fprintf(os.Stderr, "warning: skipping symlink %s\n", path)
			result.SymlinkCount++
			return nil
		}

		name := d.Name()
		relPath, relErr := filepath.Rel(rootDir, path)
		if relErr != nil {
			relPath = path
		}

		if d.IsDir() {
			if path == rootDir {
				return nil
			}
			if includeSet[name] {
				return nil
			}
			if strings.HasPrefix(name, ".") {
				return fs.SkipDir
			}
			if defaultSkipDirs[name] || excludeSet[name] {
				return fs.SkipDir
			}
			if !w.IncludeTests && isTestDir(name) {
				return fs.SkipDir
			}
			return nil
		}

		ext := strings.ToLower(filepath.Ext(name))
		isNotebook := ext == ".ipynb"
		if ext != ".py" && !(isNotebook && w.IncludeNotebooks) {
			return nil
		}

		file := types.DiscoveredFile{
			Path:       path,
			RelPath:    filepath.ToSlash(relPath),
			IsNotebook: isNotebook,
		}

		if gitIgnore != nil && gitIgnore.MatchesPath(relPath) {
			file.Class = types.ClassExcluded
			file.ExcludeReason = "gitignore"
			result.Files = append(result.Files, file)
			result.GitignoreCount++
			result.ExcludedCount++
			result.TotalFiles++
			return nil
		}

		isTest := classifyPythonFile(name) == types.ClassTest || isUnderTestsDir(relPath)
		switch {
		case isTest && !w.IncludeTests:
			file.Class = types.ClassExcluded
			file.ExcludeReason = "test"
			result.ExcludedCount++
		case isTest:
			file.Class = types.ClassTest
			result.TestCount++
		case strings.HasPrefix(name, "_") || strings.HasPrefix(name, "."):
			file.Class = types.ClassExcluded
			file.ExcludeReason = "private"
			result.ExcludedCount++
		default:
			file.Class = types.ClassSource
			result.SourceCount++
		}

		if isNotebook {
			result.NotebookCount++
		}

		result.Files = append(result.Files, file)
		result.TotalFiles++
		return nil
	})

	if err != nil {
		return nil, fmt.Errorf("walk error: %w", err)
	}

	return result, nil
}

// classifyPythonFile classifies a Python file by its filename (spec §4.1:
// starts with test_, ends with _test.py).
func classifyPythonFile(name string) types.FileClass {
	base := strings.TrimSuffix(name, ".py")
	if strings.HasPrefix(base, "test_") || strings.HasSuffix(base, "_test") {
		return types.ClassTest
	}
	return types.ClassSource
}

// isTestDir reports whether a directory name is the conventional "tests"
// directory excluded by default (spec §4.1).
func isTestDir(name string) bool {
	return name == "tests" || name == "test"
}

// isUnderTestsDir reports whether relPath lies under a tests/ or test/
// directory anywhere in its path.
func isUnderTestsDir(relPath string) bool {
	parts := strings.Split(filepath.ToSlash(relPath), "/")
	for _, p := range parts[:max(0, len(parts)-1)] {
		if p == "tests" || p == "test" {
			return true
		}
	}
	return false
}

func toSet(items []string) map[string]bool {
	set := make(map[string]bool, len(items))
	for _, item := range items {
		set[item] = true
	}
	return set
}
