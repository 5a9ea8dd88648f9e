package discovery

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/cytoscnpy/cytoscnpy/pkg/types"
)

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
}

func buildProject(t *testing.T) string {
	t.Helper()
	root := t.TempDir()

	writeFile(t, filepath.Join(root, "app.py"), "def main():\n    pass\n")
	writeFile(t, filepath.Join(root, "test_app.py"), "def test_main():\n    pass\n")
	writeFile(t, filepath.Join(root, "tests", "test_util.py"), "def test_util():\n    pass\n")
	writeFile(t, filepath.Join(root, "_private.py"), "x = 1\n")
	writeFile(t, filepath.Join(root, ".venv", "lib", "site.py"), "x = 1\n")
	writeFile(t, filepath.Join(root, "__pycache__", "app.cpython-311.pyc"), "binary")
	writeFile(t, filepath.Join(root, "ignored.py"), "x = 1\n")
	writeFile(t, filepath.Join(root, ".gitignore"), "ignored.py\n")
	writeFile(t, filepath.Join(root, "notebook.ipynb"), `{"cells":[{"cell_type":"code","source":["x = 1\n"]}]}`)

	return root
}

func fileByRelPath(result *types.ScanResult, relPath string) (types.DiscoveredFile, bool) {
	for _, f := range result.Files {
		if f.RelPath == relPath {
			return f, true
		}
	}
	return types.DiscoveredFile{}, false
}

func TestDiscoverDefaultExcludesTestsAndVenv(t *testing.T) {
	root := buildProject(t)

	w := NewWalker(nil, nil, false, false)
	result, err := w.Discover(root)
	if err != nil {
		t.Fatalf("Discover() error: %v", err)
	}

	if f, ok := fileByRelPath(result, "app.py"); !ok || f.Class != types.ClassSource {
		t.Errorf("app.py: got %+v, ok=%v, want ClassSource", f, ok)
	}

	if f, ok := fileByRelPath(result, "test_app.py"); !ok || f.Class != types.ClassExcluded {
		t.Errorf("test_app.py: got %+v, ok=%v, want ClassExcluded (include_tests is off)", f, ok)
	}

	for _, f := range result.Files {
		if f.RelPath == "tests/test_util.py" {
			t.Errorf("tests/ directory should be pruned by default, found %+v", f)
		}
		if filepath.Base(filepath.Dir(f.RelPath)) == ".venv" {
			t.Errorf(".venv contents should never be discovered, found %+v", f)
		}
	}

	if f, ok := fileByRelPath(result, "_private.py"); !ok || f.Class != types.ClassExcluded {
		t.Errorf("_private.py: got %+v, ok=%v, want ClassExcluded", f, ok)
	}

	if f, ok := fileByRelPath(result, "ignored.py"); !ok || f.Class != types.ClassExcluded || f.ExcludeReason != "gitignore" {
		t.Errorf("ignored.py: got %+v, ok=%v, want ClassExcluded/gitignore", f, ok)
	}

	if _, ok := fileByRelPath(result, "notebook.ipynb"); ok {
		t.Errorf("notebook.ipynb should not appear when include_notebooks is off")
	}
}

func TestDiscoverIncludeTestsAndNotebooks(t *testing.T) {
	root := buildProject(t)

	w := NewWalker(nil, nil, true, true)
	result, err := w.Discover(root)
	if err != nil {
		t.Fatalf("Discover() error: %v", err)
	}

	if f, ok := fileByRelPath(result, "test_app.py"); !ok || f.Class != types.ClassTest {
		t.Errorf("test_app.py: got %+v, ok=%v, want ClassTest", f, ok)
	}
	if f, ok := fileByRelPath(result, "tests/test_util.py"); !ok || f.Class != types.ClassTest {
		t.Errorf("tests/test_util.py: got %+v, ok=%v, want ClassTest", f, ok)
	}
	if f, ok := fileByRelPath(result, "notebook.ipynb"); !ok || !f.IsNotebook {
		t.Errorf("notebook.ipynb: got %+v, ok=%v, want IsNotebook", f, ok)
	}
}

func TestDiscoverMissingRoot(t *testing.T) {
	w := NewWalker(nil, nil, false, false)
	if _, err := w.Discover(filepath.Join(t.TempDir(), "does-not-exist")); err == nil {
		t.Error("expected error for missing root directory")
	}
}

func TestDiscoverRootIsFile(t *testing.T) {
	root := t.TempDir()
	filePath := filepath.Join(root, "file.txt")
	writeFile(t, filePath, "x")

	w := NewWalker(nil, nil, false, false)
	if _, err := w.Discover(filePath); err == nil {
		t.Error("expected error when root is a regular file")
	}
}
