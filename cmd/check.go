package cmd

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/cytoscnpy/cytoscnpy/internal/config"
	"github.com/cytoscnpy/cytoscnpy/internal/diagnostics"
	"github.com/cytoscnpy/cytoscnpy/internal/orchestrator"
	"github.com/cytoscnpy/cytoscnpy/internal/output"
	"github.com/cytoscnpy/cytoscnpy/internal/progress"
	"github.com/cytoscnpy/cytoscnpy/internal/rules"
	"github.com/cytoscnpy/cytoscnpy/pkg/types"
)

var (
	configPath          string
	jsonOutput          bool
	noColor             bool
	includeTests        bool
	includeNotebooks    bool
	enableSecrets       bool
	enableDanger        bool
	enableQuality       bool
	enableTaint         bool
	confidenceThreshold int
	failThreshold       int
	includeFolders      []string
	excludeFolders      []string
	selfLint            bool
)

var checkCmd = &cobra.Command{
	Use:          "check <directory>",
	Short:        "Analyze a Python project for unused code and security issues",
	Long:         "Check walks a Python project, builds a project-wide symbol table from its\nTree-sitter syntax trees, and reports unused functions, methods, classes,\nimports, variables, and parameters, alongside dangerous calls, hardcoded\nsecrets, code-quality issues, and tainted data flow.",
	Args:         cobra.ExactArgs(1),
	SilenceUsage: true,
	RunE:         runCheck,
}

func init() {
	checkCmd.Flags().StringVar(&configPath, "config", "", "path to a .cytoscnpy.toml config file")
	checkCmd.Flags().BoolVar(&jsonOutput, "json", false, "output results as JSON")
	checkCmd.Flags().BoolVar(&noColor, "no-color", false, "disable colored terminal output")
	checkCmd.Flags().BoolVar(&includeTests, "include-tests", false, "analyze test files (test_*.py, *_test.py, tests/)")
	checkCmd.Flags().BoolVar(&includeNotebooks, "include-notebooks", false, "analyze Jupyter notebooks (.ipynb)")
	checkCmd.Flags().BoolVar(&enableSecrets, "secrets", true, "enable hardcoded-secret detection")
	checkCmd.Flags().BoolVar(&enableDanger, "danger", true, "enable dangerous-call detection")
	checkCmd.Flags().BoolVar(&enableQuality, "quality", true, "enable code-quality checks")
	checkCmd.Flags().BoolVar(&enableTaint, "taint", true, "enable tainted-data-flow checks")
	checkCmd.Flags().IntVar(&confidenceThreshold, "confidence-threshold", 0, "minimum confidence (0-100) to report a definition unused (0 = use config default)")
	checkCmd.Flags().IntVar(&failThreshold, "fail-threshold", -1, "exit nonzero if the total finding count exceeds this (-1 = use config default)")
	checkCmd.Flags().StringSliceVar(&includeFolders, "include", nil, "folder names to force-include even if normally skipped")
	checkCmd.Flags().StringSliceVar(&excludeFolders, "exclude", nil, "additional folder names to skip")
	checkCmd.Flags().BoolVar(&selfLint, "self", false, "run cytoscnpy's own Go self-lint (cyclomatic complexity) over <directory> instead of analyzing it as Python")
	rootCmd.AddCommand(checkCmd)
}

func runCheck(cmd *cobra.Command, args []string) error {
	dir, err := filepath.Abs(args[0])
	if err != nil {
		return &types.ExitError{Code: 2, Message: fmt.Sprintf("cannot resolve path: %s", err)}
	}
	if info, err := os.Stat(dir); err != nil || !info.IsDir() {
		return &types.ExitError{Code: 2, Message: fmt.Sprintf("not a directory: %s", dir)}
	}

	if selfLint {
		return runSelfLint(cmd, dir)
	}

	diag := diagnostics.NewSink()
	overrides := buildOverrides(cmd.Flags())
	cfg, err := config.Load(dir, configPath, diag, overrides)
	if err != nil {
		return &types.ExitError{Code: 2, Message: err.Error()}
	}

	orch, err := orchestrator.New(cfg)
	if err != nil {
		return &types.ExitError{Code: 2, Message: fmt.Sprintf("initialize analyzer: %s", err)}
	}
	defer orch.Close()

	spinner := progress.New(os.Stderr)
	spinner.Start("Scanning...")
	result, err := orch.Run(cmd.Context(), cfg, diag, spinner.OnStage)
	if err != nil {
		spinner.Stop("")
		return &types.ExitError{Code: 2, Message: err.Error()}
	}
	spinner.Stop("Done.")

	if noColor {
		output.DisableColor()
	}

	if jsonOutput {
		if err := output.RenderJSON(cmd.OutOrStdout(), result, diag.Warnings()); err != nil {
			return &types.ExitError{Code: 2, Message: fmt.Sprintf("render JSON: %s", err)}
		}
	} else {
		output.RenderTerminal(cmd.OutOrStdout(), result, dir, diag.Warnings(), verbose)
	}

	if cfg.FailThreshold > 0 && totalFindings(result) > cfg.FailThreshold {
		return &types.ExitError{
			Code:    1,
			Message: fmt.Sprintf("finding count %d exceeds fail-threshold %d", totalFindings(result), cfg.FailThreshold),
		}
	}
	return nil
}

// runSelfLint runs cytoscnpy's own Go complexity meta-rule over dir
// instead of the Python analysis pipeline, for holding this tool's own
// source to the same complexity bar --quality enforces on scanned
// Python.
func runSelfLint(cmd *cobra.Command, dir string) error {
	cfg := types.DefaultConfig()
	findings, err := rules.CheckGoComplexity(dir, cfg.MaxComplexity)
	if err != nil {
		return &types.ExitError{Code: 2, Message: fmt.Sprintf("self-lint: %s", err)}
	}

	result := &types.Result{Quality: findings}
	if noColor {
		output.DisableColor()
	}
	if jsonOutput {
		if err := output.RenderJSON(cmd.OutOrStdout(), result, nil); err != nil {
			return &types.ExitError{Code: 2, Message: fmt.Sprintf("render JSON: %s", err)}
		}
	} else {
		output.RenderTerminal(cmd.OutOrStdout(), result, dir, nil, verbose)
	}

	if len(findings) > 0 {
		return &types.ExitError{Code: 1, Message: fmt.Sprintf("%d self-lint finding(s)", len(findings))}
	}
	return nil
}

func totalFindings(r *types.Result) int {
	return len(r.UnusedFunctions) + len(r.UnusedMethods) + len(r.UnusedClasses) +
		len(r.UnusedImports) + len(r.UnusedVariables) + len(r.UnusedParameters) +
		len(r.Danger) + len(r.Secrets) + len(r.Quality) + len(r.TaintFindings)
}

// buildOverrides reads only the flags the user actually passed (via
// Changed) into a config.Overrides, so an unset flag never clobbers a
// value already set by .cytoscnpy.toml or pyproject.toml.
func buildOverrides(flags *pflag.FlagSet) config.Overrides {
	var o config.Overrides
	if flags.Changed("include") {
		o.IncludeFolders = includeFolders
	}
	if flags.Changed("exclude") {
		o.ExcludeFolders = excludeFolders
	}
	if flags.Changed("include-tests") {
		o.IncludeTests = &includeTests
	}
	if flags.Changed("include-notebooks") {
		o.IncludeNotebooks = &includeNotebooks
	}
	if flags.Changed("secrets") {
		o.Secrets = &enableSecrets
	}
	if flags.Changed("danger") {
		o.Danger = &enableDanger
	}
	if flags.Changed("quality") {
		o.Quality = &enableQuality
	}
	if flags.Changed("taint") {
		o.Taint = &enableTaint
	}
	if flags.Changed("confidence-threshold") {
		o.ConfidenceThreshold = &confidenceThreshold
	}
	if flags.Changed("fail-threshold") {
		o.FailThreshold = &failThreshold
	}
	return o
}
