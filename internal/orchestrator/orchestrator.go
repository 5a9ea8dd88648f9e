// Package orchestrator runs the full analysis pipeline over one
// project directory: discover files, parse and visit them in parallel,
// merge the per-file artifacts into a project-wide store, resolve
// references, apply the confidence heuristics, and assemble the final
// deterministic types.Result (spec §4.7, §5).
package orchestrator

import (
	"context"
	"path/filepath"
	"runtime"
	"sort"
	"strings"

	"golang.org/x/sync/errgroup"

	"github.com/cytoscnpy/cytoscnpy/internal/diagnostics"
	"github.com/cytoscnpy/cytoscnpy/internal/discovery"
	"github.com/cytoscnpy/cytoscnpy/internal/heuristics"
	"github.com/cytoscnpy/cytoscnpy/internal/merge"
	"github.com/cytoscnpy/cytoscnpy/internal/model"
	"github.com/cytoscnpy/cytoscnpy/internal/parser"
	"github.com/cytoscnpy/cytoscnpy/internal/resolver"
	"github.com/cytoscnpy/cytoscnpy/internal/rules"
	"github.com/cytoscnpy/cytoscnpy/internal/visitor"
	"github.com/cytoscnpy/cytoscnpy/pkg/types"
)

// StageFunc receives a (stage, detail) pair as the pipeline advances.
// A nil StageFunc is treated as a no-op.
type StageFunc func(stage, detail string)

// Orchestrator holds the long-lived, reusable pieces of the pipeline: a
// pooled Tree-sitter parser (thread-safe, serializes internally) and
// the rule registry built from the run's configuration.
type Orchestrator struct {
	parser   *parser.TreeSitterParser
	registry *rules.Registry
}

// New builds an Orchestrator configured per cfg's enabled rule
// categories and quality thresholds.
func New(cfg *types.Config) (*Orchestrator, error) {
	p, err := parser.NewTreeSitterParser()
	if err != nil {
		return nil, err
	}
	qcfg := rules.QualityConfig{
		MaxComplexity: cfg.MaxComplexity,
		MaxNesting:    cfg.MaxNesting,
		MaxArgs:       cfg.MaxArgs,
		MaxLines:      cfg.MaxLines,
	}
	registry := rules.Default(cfg.EnableDanger, cfg.EnableSecrets, cfg.EnableQuality, cfg.EnableTaint, qcfg)
	return &Orchestrator{parser: p, registry: registry}, nil
}

// Close releases the pooled parser.
func (o *Orchestrator) Close() {
	o.parser.Close()
}

// workerLimit bounds the parse+visit worker pool to the host's
// available parallelism, the same sizing the teacher leaves implicit
// by spawning one goroutine per analyzer (there, a small fixed set;
// here, a potentially large and unbounded file count, so the pool must
// be capped rather than left to one goroutine per file).
func workerLimit() int {
	n := runtime.GOMAXPROCS(0)
	if n < 1 {
		return 1
	}
	return n
}

// fileOutcome is one worker's result for a single discovered file: a
// ParseError or an artifact plus whatever rule findings its tree
// yielded, never both.
type fileOutcome struct {
	parseErr *types.ParseError
	artifact *visitor.FileArtifact
	findings []types.Finding
}

// Run executes the full pipeline against cfg.RootPath and returns the
// assembled Result. Any per-file I/O or parse problem is recorded as a
// ParseError or a diagnostics warning rather than aborting the run —
// only a failure to walk the root directory itself is fatal.
func (o *Orchestrator) Run(ctx context.Context, cfg *types.Config, diag *diagnostics.Sink, onStage StageFunc) (*types.Result, error) {
	if onStage == nil {
		onStage = func(string, string) {}
	}

	onStage("discover", "scanning project files")
	walker := discovery.NewWalker(cfg.IncludeFolders, cfg.ExcludeFolders, cfg.IncludeTests, cfg.IncludeNotebooks)
	scan, err := walker.Discover(cfg.RootPath)
	if err != nil {
		return nil, err
	}

	var targets []types.DiscoveredFile
	for _, f := range scan.Files {
		if f.Class == types.ClassExcluded {
			continue
		}
		targets = append(targets, f)
	}

	onStage("analyze", "parsing and analyzing source files")
	outcomes, err := o.analyzeAll(ctx, targets, diag)
	if err != nil {
		return nil, err
	}

	onStage("merge", "merging per-file results")
	store := model.NewProjectStore()
	var artifacts []*visitor.FileArtifact
	var findings []types.Finding
	var parseErrors []types.ParseError
	for _, oc := range outcomes {
		switch {
		case oc.parseErr != nil:
			parseErrors = append(parseErrors, *oc.parseErr)
		default:
			artifacts = append(artifacts, oc.artifact)
			findings = append(findings, oc.findings...)
		}
	}
	mergeResult := merge.Merge(store, artifacts)

	onStage("resolve", "resolving references")
	res := resolver.New(store)
	res.Build()
	res.ResolveAll(mergeResult.References)

	onStage("score", "applying confidence heuristics")
	heuristics.Apply(store, mergeResult.MainBlockRefs, cfg.ConfidenceThreshold)

	onStage("render", "assembling result")
	return buildResult(store, cfg.ConfidenceThreshold, findings, parseErrors), nil
}

// analyzeAll runs parse+visit+rules for every target file on a bounded
// worker pool (errgroup.SetLimit), preserving each file's position so
// the result order stays deterministic regardless of goroutine
// scheduling — the merge stage re-sorts by module anyway, but findings
// collected here are sorted explicitly in buildResult.
func (o *Orchestrator) analyzeAll(ctx context.Context, targets []types.DiscoveredFile, diag *diagnostics.Sink) ([]*fileOutcome, error) {
	outcomes := make([]*fileOutcome, len(targets))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(workerLimit())

	for i, f := range targets {
		i, f := i, f
		g.Go(func() error {
			outcomes[i] = o.analyzeOne(gctx, f, diag)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return outcomes, nil
}

func (o *Orchestrator) analyzeOne(ctx context.Context, f types.DiscoveredFile, diag *diagnostics.Sink) *fileOutcome {
	content, _, err := discovery.ReadSource(f.Path, f.IsNotebook)
	if err != nil {
		diag.Warnf("reading %s: %v", f.RelPath, err)
		return &fileOutcome{parseErr: &types.ParseError{File: f.RelPath, Line: 1, Message: err.Error()}}
	}

	pf, parseErr := o.parser.Parse(ctx, f.Path, f.RelPath, content)
	if parseErr != nil {
		return &fileOutcome{parseErr: parseErr}
	}
	defer pf.Close()

	module := modulePath(f.RelPath)
	artifact := visitor.Visit(pf.Tree.RootNode(), content, f.RelPath, module)

	var findings []types.Finding
	if o.registry != nil {
		ruleCtx := &rules.Context{File: f.RelPath, Content: content, IsTestFile: f.Class == types.ClassTest}
		findings = o.registry.Run(pf.Tree.RootNode(), content, ruleCtx)
	}

	return &fileOutcome{artifact: artifact, findings: findings}
}

// modulePath derives a dotted Python module path from a file's
// project-relative path: directory separators become dots, the
// extension is dropped, and a trailing "__init__" component (the
// package itself, not a submodule) is dropped too.
func modulePath(relPath string) string {
	trimmed := strings.TrimSuffix(relPath, filepath.Ext(relPath))
	parts := strings.Split(filepath.ToSlash(trimmed), "/")
	if len(parts) > 0 && parts[len(parts)-1] == "__init__" {
		parts = parts[:len(parts)-1]
	}
	if len(parts) == 0 {
		return "__main__"
	}
	return strings.Join(parts, ".")
}

// buildResult buckets every surviving definition into the six unused-
// kind groups spec §6 names, buckets rule findings by their RuleID
// prefix, and sorts every slice deterministically (by file, line,
// column, then name) so two runs over the same tree always print in
// the same order regardless of worker scheduling.
func buildResult(store *model.ProjectStore, threshold int, findings []types.Finding, parseErrors []types.ParseError) *types.Result {
	result := &types.Result{
		ParseErrors:    parseErrors,
		DynamicModules: store.DynamicModules(),
		ShadowedFQNs:   store.ShadowedFQNs(),
	}

	for _, def := range store.AllDefinitions() {
		if def.Confidence == 0 && !store.IsForcedUnused(def.FQN) {
			continue
		}
		if !heuristics.IsUnused(store, def, threshold) {
			continue
		}
		uf := types.UnusedFinding{
			File:       def.File,
			Line:       def.StartLine,
			Col:        1,
			Name:       def.FQN,
			SimpleName: def.SimpleName,
			Confidence: def.Confidence,
			RuleID:     "unused-" + def.Kind.String(),
		}
		switch def.Kind {
		case types.KindFunction:
			result.UnusedFunctions = append(result.UnusedFunctions, uf)
		case types.KindMethod:
			result.UnusedMethods = append(result.UnusedMethods, uf)
		case types.KindClass:
			result.UnusedClasses = append(result.UnusedClasses, uf)
		case types.KindImport, types.KindImportAlias:
			result.UnusedImports = append(result.UnusedImports, uf)
		case types.KindParameter:
			result.UnusedParameters = append(result.UnusedParameters, uf)
		default: // module/local variables and class attributes
			result.UnusedVariables = append(result.UnusedVariables, uf)
		}
	}

	for _, f := range findings {
		switch {
		case strings.HasPrefix(f.RuleID, "danger-"):
			result.Danger = append(result.Danger, f)
		case strings.HasPrefix(f.RuleID, "secrets-"):
			result.Secrets = append(result.Secrets, f)
		case strings.HasPrefix(f.RuleID, "taint-"):
			result.TaintFindings = append(result.TaintFindings, f)
		default: // quality-* and rule-internal-error diagnostics
			result.Quality = append(result.Quality, f)
		}
	}

	sortUnused := func(items []types.UnusedFinding) {
		sort.Slice(items, func(i, j int) bool {
			a, b := items[i], items[j]
			if a.File != b.File {
				return a.File < b.File
			}
			if a.Line != b.Line {
				return a.Line < b.Line
			}
			return a.Name < b.Name
		})
	}
	sortUnused(result.UnusedFunctions)
	sortUnused(result.UnusedMethods)
	sortUnused(result.UnusedClasses)
	sortUnused(result.UnusedImports)
	sortUnused(result.UnusedVariables)
	sortUnused(result.UnusedParameters)

	sortFindings(result.Danger)
	sortFindings(result.Secrets)
	sortFindings(result.Quality)
	sortFindings(result.TaintFindings)

	sort.Slice(result.ParseErrors, func(i, j int) bool {
		if result.ParseErrors[i].File != result.ParseErrors[j].File {
			return result.ParseErrors[i].File < result.ParseErrors[j].File
		}
		return result.ParseErrors[i].Line < result.ParseErrors[j].Line
	})

	return result
}

func sortFindings(findings []types.Finding) {
	sort.Slice(findings, func(i, j int) bool {
		a, b := findings[i], findings[j]
		if a.File != b.File {
			return a.File < b.File
		}
		if a.Line != b.Line {
			return a.Line < b.Line
		}
		if a.Column != b.Column {
			return a.Column < b.Column
		}
		if a.RuleID != b.RuleID {
			return a.RuleID < b.RuleID
		}
		return a.Message < b.Message
	})
}
