// Package output renders a scan's types.Result to a terminal (bold
// headers, severity-colored findings) or to JSON for machine
// consumption (spec §6). Terminal color is supplied by fatih/color,
// which auto-disables itself off a TTY and honors NO_COLOR; DisableColor
// lets --no-color force it off regardless.
package output

import (
	"fmt"
	"io"

	"github.com/fatih/color"

	"github.com/cytoscnpy/cytoscnpy/pkg/types"
)

// DisableColor forces every subsequent RenderTerminal call to emit plain
// text, for --no-color or non-interactive callers that still want
// RenderTerminal's layout without fatih/color's own TTY auto-detection.
func DisableColor() {
	color.NoColor = true
}

var severityColor = map[types.Severity]*color.Color{
	types.SeverityCritical: color.New(color.FgRed, color.Bold),
	types.SeverityHigh:     color.New(color.FgRed),
	types.SeverityMedium:   color.New(color.FgYellow),
	types.SeverityLow:      color.New(color.FgCyan),
	types.SeverityInfo:     color.New(color.FgWhite),
}

// RenderTerminal prints result's findings and unused-definition groups
// to w, each group under a bold header and, for rule findings, a
// severity-colored line. verbose additionally prints low-confidence
// near-misses is left for a future pass; for now verbose only affects
// whether parse errors and warnings are shown in full.
func RenderTerminal(w io.Writer, result *types.Result, rootDir string, warnings []string, verbose bool) {
	bold := color.New(color.Bold)

	bold.Fprintf(w, "cytoscnpy: %s\n", rootDir)
	fmt.Fprintln(w, "────────────────────────────────────────")

	renderUnusedGroup(w, bold, "Unused functions", result.UnusedFunctions)
	renderUnusedGroup(w, bold, "Unused methods", result.UnusedMethods)
	renderUnusedGroup(w, bold, "Unused classes", result.UnusedClasses)
	renderUnusedGroup(w, bold, "Unused imports", result.UnusedImports)
	renderUnusedGroup(w, bold, "Unused variables", result.UnusedVariables)
	renderUnusedGroup(w, bold, "Unused parameters", result.UnusedParameters)

	renderFindingGroup(w, bold, "Dangerous calls", result.Danger)
	renderFindingGroup(w, bold, "Hardcoded secrets", result.Secrets)
	renderFindingGroup(w, bold, "Quality issues", result.Quality)
	renderFindingGroup(w, bold, "Tainted data flow", result.TaintFindings)

	if len(result.ParseErrors) > 0 {
		bold.Fprintf(w, "\nParse errors (%d)\n", len(result.ParseErrors))
		for _, pe := range result.ParseErrors {
			fmt.Fprintf(w, "  %s:%d: %s\n", pe.File, pe.Line, pe.Message)
		}
	}

	if len(result.DynamicModules) > 0 && verbose {
		bold.Fprintf(w, "\nDynamic modules (%d) — unused detection skipped\n", len(result.DynamicModules))
		for _, m := range result.DynamicModules {
			fmt.Fprintf(w, "  %s\n", m)
		}
	}

	if len(warnings) > 0 {
		bold.Fprintf(w, "\nWarnings (%d)\n", len(warnings))
		for _, msg := range warnings {
			fmt.Fprintf(w, "  %s\n", msg)
		}
	}

	total := len(result.UnusedFunctions) + len(result.UnusedMethods) + len(result.UnusedClasses) +
		len(result.UnusedImports) + len(result.UnusedVariables) + len(result.UnusedParameters) +
		len(result.Danger) + len(result.Secrets) + len(result.Quality) + len(result.TaintFindings)
	fmt.Fprintf(w, "\n%d findings total\n", total)
}

func renderUnusedGroup(w io.Writer, bold *color.Color, label string, items []types.UnusedFinding) {
	if len(items) == 0 {
		return
	}
	bold.Fprintf(w, "\n%s (%d)\n", label, len(items))
	for _, u := range items {
		fmt.Fprintf(w, "  %s:%d:%d  %s  (confidence %d)\n", u.File, u.Line, u.Col, u.Name, u.Confidence)
	}
}

func renderFindingGroup(w io.Writer, bold *color.Color, label string, items []types.Finding) {
	if len(items) == 0 {
		return
	}
	bold.Fprintf(w, "\n%s (%d)\n", label, len(items))
	for _, f := range items {
		sev := severityColor[f.Severity]
		sev.Fprintf(w, "  %s:%d:%d  [%s] %s  (%s)\n", f.File, f.Line, f.Column, f.Severity, f.Message, f.RuleID)
	}
}
