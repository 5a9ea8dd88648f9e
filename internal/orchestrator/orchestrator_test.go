package orchestrator

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/cytoscnpy/cytoscnpy/internal/diagnostics"
	"github.com/cytoscnpy/cytoscnpy/pkg/types"
)

func writeFile(t *testing.T, dir, rel, content string) {
	t.Helper()
	path := filepath.Join(dir, rel)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("MkdirAll() error: %v", err)
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("WriteFile() error: %v", err)
	}
}

func run(t *testing.T, dir string, cfg *types.Config) *types.Result {
	t.Helper()
	if cfg == nil {
		cfg = types.DefaultConfig()
	}
	cfg.RootPath = dir

	o, err := New(cfg)
	if err != nil {
		t.Fatalf("New() error: %v", err)
	}
	defer o.Close()

	result, err := o.Run(context.Background(), cfg, diagnostics.NewSink(), nil)
	if err != nil {
		t.Fatalf("Run() error: %v", err)
	}
	return result
}

func TestRunFlagsUnreferencedFunction(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "app.py", "def orphan():\n    return 1\n\n\ndef main():\n    pass\n")

	result := run(t, dir, nil)

	found := false
	for _, u := range result.UnusedFunctions {
		if u.SimpleName == "orphan" {
			found = true
		}
	}
	if !found {
		t.Errorf("expected orphan() to be flagged unused, got %+v", result.UnusedFunctions)
	}
	for _, u := range result.UnusedFunctions {
		if u.SimpleName == "main" {
			t.Error("main() should not be flagged, it is called from the entry point")
		}
	}
}

func TestRunCallerKeepsCalleeUsed(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "app.py", "def helper():\n    return 1\n\n\ndef main():\n    return helper()\n\n\nif __name__ == \"__main__\":\n    main()\n")

	result := run(t, dir, nil)

	for _, u := range result.UnusedFunctions {
		if u.SimpleName == "helper" || u.SimpleName == "main" {
			t.Errorf("did not expect %s to be flagged unused", u.SimpleName)
		}
	}
}

func TestRunDetectsDangerousEval(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "app.py", "def run(cmd):\n    return eval(cmd)\n")

	result := run(t, dir, nil)

	if len(result.Danger) == 0 {
		t.Fatal("expected at least one danger finding for eval()")
	}
}

func TestRunRecordsParseErrorWithoutAbortingOtherFiles(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "broken.py", "def f(:\n    pass\n")
	writeFile(t, dir, "ok.py", "def used():\n    return 1\n\n\nif __name__ == \"__main__\":\n    used()\n")

	result := run(t, dir, nil)

	if len(result.ParseErrors) != 1 {
		t.Fatalf("ParseErrors = %v, want exactly one entry for broken.py", result.ParseErrors)
	}
	if result.ParseErrors[0].File != "broken.py" {
		t.Errorf("ParseErrors[0].File = %q, want broken.py", result.ParseErrors[0].File)
	}
	for _, u := range result.UnusedFunctions {
		if u.SimpleName == "used" {
			t.Error("used() is called from the entry point and should not be flagged")
		}
	}
}

func TestRunIsDeterministicAcrossRepeatedRuns(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "a.py", "def a_orphan():\n    pass\n")
	writeFile(t, dir, "b.py", "def b_orphan():\n    pass\n")

	first := run(t, dir, nil)
	second := run(t, dir, nil)

	if len(first.UnusedFunctions) != len(second.UnusedFunctions) {
		t.Fatalf("unused function count differs across runs: %d vs %d", len(first.UnusedFunctions), len(second.UnusedFunctions))
	}
	for i := range first.UnusedFunctions {
		if first.UnusedFunctions[i].Name != second.UnusedFunctions[i].Name {
			t.Errorf("result order differs at index %d: %q vs %q", i, first.UnusedFunctions[i].Name, second.UnusedFunctions[i].Name)
		}
	}
}

func TestRunRespectsExcludeFolders(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "vendor/third_party.py", "def whatever():\n    eval('1')\n")
	writeFile(t, dir, "app.py", "def main():\n    pass\n\n\nif __name__ == \"__main__\":\n    main()\n")

	cfg := types.DefaultConfig()
	cfg.ExcludeFolders = []string{"vendor"}
	result := run(t, dir, cfg)

	for _, f := range result.Danger {
		if f.File == "vendor/third_party.py" {
			t.Error("vendor/ was excluded and should not have been analyzed")
		}
	}
}
