package cmd

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func writeCheckProject(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "app.py"), []byte("def orphan():\n    pass\n\n\ndef main():\n    pass\n\n\nif __name__ == \"__main__\":\n    main()\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	return dir
}

func TestCheckCmdMetadata(t *testing.T) {
	if checkCmd.Use != "check <directory>" {
		t.Errorf("expected Use='check <directory>', got %q", checkCmd.Use)
	}
	if checkCmd.Short == "" {
		t.Error("check command should have a short description")
	}
	if !checkCmd.SilenceUsage {
		t.Error("check command should have SilenceUsage=true")
	}
}

func TestCheckCmdRequiresExactlyOneArg(t *testing.T) {
	if err := checkCmd.Args(checkCmd, []string{}); err == nil {
		t.Error("check should require exactly 1 argument, got no error for 0 args")
	}
	if err := checkCmd.Args(checkCmd, []string{"a", "b"}); err == nil {
		t.Error("check should require exactly 1 argument, got no error for 2 args")
	}
	if err := checkCmd.Args(checkCmd, []string{"a"}); err != nil {
		t.Errorf("check should accept exactly 1 argument, got error: %v", err)
	}
}

func TestCheckCmdFlagsRegistered(t *testing.T) {
	for _, name := range []string{
		"config", "json", "no-color", "include-tests", "include-notebooks",
		"secrets", "danger", "quality", "taint",
		"confidence-threshold", "fail-threshold", "include", "exclude", "self",
	} {
		if checkCmd.Flags().Lookup(name) == nil {
			t.Errorf("flag %q not registered on check command", name)
		}
	}
}

func TestCheckRunE_NonExistentDir(t *testing.T) {
	resetCheckFlagsSimple()
	var buf bytes.Buffer
	rootCmd.SetOut(&buf)
	rootCmd.SetErr(&buf)
	rootCmd.SetArgs([]string{"check", "/nonexistent/path/xyz"})
	err := rootCmd.Execute()
	if err == nil {
		t.Fatal("expected error for non-existent directory")
	}
}

func TestCheckRunE_TerminalOutput(t *testing.T) {
	resetCheckFlagsSimple()
	dir := writeCheckProject(t)

	var buf bytes.Buffer
	rootCmd.SetOut(&buf)
	rootCmd.SetErr(&buf)
	rootCmd.SetArgs([]string{"check", "--no-color", dir})
	if err := rootCmd.Execute(); err != nil {
		t.Fatalf("check should succeed, got: %v", err)
	}
	out := buf.String()
	if !strings.Contains(out, "orphan") {
		t.Errorf("expected orphan() to be reported, got:\n%s", out)
	}
}

func TestCheckRunE_JSONOutput(t *testing.T) {
	resetCheckFlagsSimple()
	dir := writeCheckProject(t)

	var buf bytes.Buffer
	rootCmd.SetOut(&buf)
	rootCmd.SetErr(&buf)
	rootCmd.SetArgs([]string{"check", "--json", dir})
	if err := rootCmd.Execute(); err != nil {
		t.Fatalf("check --json should succeed, got: %v", err)
	}
	if !strings.Contains(buf.String(), "\"unused_functions\"") {
		t.Errorf("expected JSON output with unused_functions key, got:\n%s", buf.String())
	}
}

func TestCheckRunE_FailThresholdTripsExitError(t *testing.T) {
	resetCheckFlagsSimple()
	dir := writeCheckProject(t)

	var buf bytes.Buffer
	rootCmd.SetOut(&buf)
	rootCmd.SetErr(&buf)
	rootCmd.SetArgs([]string{"check", "--fail-threshold", "0", dir})
	err := rootCmd.Execute()
	if err == nil {
		t.Fatal("expected a fail-threshold error since orphan() is unused")
	}
}

// resetCheckFlagsSimple resets the flags this test file actually drives;
// it avoids depending on pflag internals the way resetCheckFlags's
// (unused) Visit callback would.
func resetCheckFlagsSimple() {
	configPath = ""
	jsonOutput = false
	noColor = false
	includeTests = false
	includeNotebooks = false
	enableSecrets = true
	enableDanger = true
	enableQuality = true
	enableTaint = true
	confidenceThreshold = 0
	failThreshold = -1
	includeFolders = nil
	excludeFolders = nil
	selfLint = false
	verbose = false
}

func TestCheckRunE_SelfLint(t *testing.T) {
	resetCheckFlagsSimple()
	dir := t.TempDir()
	complex := "package sample\n\nfunc Classify(n int) string {\n" +
		strings.Repeat("\tif n > 0 {\n\t\tn--\n\t}\n", 25) +
		"\treturn \"done\"\n}\n"
	if err := os.WriteFile(filepath.Join(dir, "sample.go"), []byte(complex), 0o644); err != nil {
		t.Fatal(err)
	}

	var buf bytes.Buffer
	rootCmd.SetOut(&buf)
	rootCmd.SetErr(&buf)
	rootCmd.SetArgs([]string{"check", "--self", "--no-color", dir})
	err := rootCmd.Execute()
	if err == nil {
		t.Fatal("expected a self-lint finding for the deliberately complex function")
	}
	if !strings.Contains(buf.String(), "selflint-go-complexity") {
		t.Errorf("expected selflint-go-complexity finding, got:\n%s", buf.String())
	}
}
