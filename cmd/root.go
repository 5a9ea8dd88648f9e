package cmd

import (
	"errors"
	"os"

	"github.com/spf13/cobra"

	"github.com/cytoscnpy/cytoscnpy/pkg/types"
	"github.com/cytoscnpy/cytoscnpy/pkg/version"
)

var verbose bool

var rootCmd = &cobra.Command{
	Use:     "cytoscnpy",
	Short:   "Static unused-code and security analyzer for Python projects",
	Long:    "cytoscnpy scans a Python project and reports unused functions, methods,\nclasses, imports, variables, and parameters, plus dangerous calls, hardcoded\nsecrets, code-quality issues, and tainted data flow. It builds a project-wide\nsymbol table from Tree-sitter syntax trees rather than relying on per-file\nheuristics, so cross-module re-exports and framework-wired handlers are\ntaken into account before anything is flagged unused.",
	Version: version.Version,
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable verbose output")
	rootCmd.SilenceErrors = true
}

// Execute runs the root command and exits with code 1 on error.
// ExitError is handled specially: its Code is used as the exit code.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		var exitErr *types.ExitError
		if errors.As(err, &exitErr) {
			os.Exit(exitErr.Code)
		}
		os.Exit(1)
	}
}
