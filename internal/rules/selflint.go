package rules

import (
	"fmt"
	"go/parser"
	"go/token"
	"os"
	"path/filepath"
	"strings"

	"github.com/fzipp/gocyclo"

	"github.com/cytoscnpy/cytoscnpy/pkg/types"
)

// CheckGoComplexity runs gocyclo over every .go file (excluding _test.go
// and vendored/example trees) under root and returns a quality Finding
// for each function whose cyclomatic complexity exceeds maxComplexity.
//
// This is cytoscnpy's own self-lint meta-rule: gocyclo cannot analyze
// Python, so it is not part of the per-target Registry above; it
// exists to hold cytoscnpy's own Go source to the same complexity bar
// the quality rule enforces on scanned Python, grounded on the
// teacher's own use of gocyclo.AnalyzeASTFile over its Go packages.
func CheckGoComplexity(root string, maxComplexity int) ([]types.Finding, error) {
	fset := token.NewFileSet()
	var stats gocyclo.Stats

	err := filepath.Walk(root, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if info.IsDir() {
			if info.Name() == "_examples" || info.Name() == "testdata" || info.Name() == "vendor" {
				return filepath.SkipDir
			}
			return nil
		}
		if !strings.HasSuffix(path, ".go") || strings.HasSuffix(path, "_test.go") {
			return nil
		}
		f, err := parser.ParseFile(fset, path, nil, parser.ParseComments)
		if err != nil {
			return fmt.Errorf("parsing %s: %w", path, err)
		}
		stats = gocyclo.AnalyzeASTFile(f, fset, stats)
		return nil
	})
	if err != nil {
		return nil, err
	}

	var findings []types.Finding
	for _, s := range stats {
		if s.Complexity <= maxComplexity {
			continue
		}
		findings = append(findings, types.Finding{
			RuleID:   "selflint-go-complexity",
			Severity: types.SeverityMedium,
			File:     s.Pos.Filename,
			Line:     s.Pos.Line,
			Column:   s.Pos.Column,
			Message:  fmt.Sprintf("%s has cyclomatic complexity %d, exceeding the self-lint limit of %d", s.FuncName, s.Complexity, maxComplexity),
		})
	}
	return findings, nil
}
