package rules

import (
	"fmt"

	tree_sitter "github.com/tree-sitter/go-tree-sitter"

	"github.com/cytoscnpy/cytoscnpy/pkg/types"
)

// QualityConfig carries the quality-gate thresholds spec §6 exposes as
// configuration (max_complexity/min_mi/max_nesting/max_args/max_lines).
// min_mi (maintainability index) is intentionally not reimplemented
// here: it is a whole-file aggregate metric over Halstead volume and
// comment ratio the teacher never computes either; see DESIGN.md.
type QualityConfig struct {
	MaxComplexity int
	MaxNesting    int
	MaxArgs       int
	MaxLines      int
}

// DefaultQualityConfig mirrors common Python lint defaults (radon/flake8
// style thresholds), since spec §6 names the knobs but not their
// defaults.
func DefaultQualityConfig() QualityConfig {
	return QualityConfig{MaxComplexity: 10, MaxNesting: 4, MaxArgs: 6, MaxLines: 80}
}

// QualityRule flags Python function/method definitions that exceed the
// configured complexity, nesting depth, parameter count, or line count
// gates. Complexity is computed with the exact McCabe branch-counting
// walk the teacher uses for its own Python code-health metric.
type QualityRule struct {
	BaseRule
	cfg QualityConfig
}

func NewQualityRule(cfg QualityConfig) *QualityRule {
	return &QualityRule{cfg: cfg}
}

func (r *QualityRule) Name() string { return "quality" }

func (r *QualityRule) EnterStmt(n *tree_sitter.Node, ctx *Context) *types.Finding {
	if n.Kind() != "function_definition" {
		return nil
	}
	name := functionName(n, ctx.Content)

	if complexity := computeComplexity(n); complexity > r.cfg.MaxComplexity {
		return &types.Finding{
			RuleID:   "quality-complexity",
			Severity: types.SeverityMedium,
			File:     ctx.File,
			Line:     line(n),
			Column:   column(n),
			Message:  fmt.Sprintf("%s has cyclomatic complexity %d, exceeding the configured limit of %d", name, complexity, r.cfg.MaxComplexity),
		}
	}
	if nesting := computeMaxNesting(n); nesting > r.cfg.MaxNesting {
		return &types.Finding{
			RuleID:   "quality-nesting",
			Severity: types.SeverityLow,
			File:     ctx.File,
			Line:     line(n),
			Column:   column(n),
			Message:  fmt.Sprintf("%s nests %d levels deep, exceeding the configured limit of %d", name, nesting, r.cfg.MaxNesting),
		}
	}
	if argCount := countParameters(n); argCount > r.cfg.MaxArgs {
		return &types.Finding{
			RuleID:   "quality-too-many-args",
			Severity: types.SeverityLow,
			File:     ctx.File,
			Line:     line(n),
			Column:   column(n),
			Message:  fmt.Sprintf("%s takes %d parameters, exceeding the configured limit of %d", name, argCount, r.cfg.MaxArgs),
		}
	}
	lineCount := int(n.EndPosition().Row-n.StartPosition().Row) + 1
	if lineCount > r.cfg.MaxLines {
		return &types.Finding{
			RuleID:   "quality-too-long",
			Severity: types.SeverityLow,
			File:     ctx.File,
			Line:     line(n),
			Column:   column(n),
			Message:  fmt.Sprintf("%s spans %d lines, exceeding the configured limit of %d", name, lineCount, r.cfg.MaxLines),
		}
	}
	return nil
}

func functionName(n *tree_sitter.Node, content []byte) string {
	if nameNode := n.ChildByFieldName("name"); nameNode != nil {
		return text(nameNode, content)
	}
	return "<anonymous>"
}

// computeComplexity is the McCabe cyclomatic complexity walk: base 1,
// +1 per branching construct, +1 per short-circuit boolean operator,
// stopping at a nested function/class definition so its own complexity
// is counted separately.
func computeComplexity(funcNode *tree_sitter.Node) int {
	complexity := 1
	body := funcNode.ChildByFieldName("body")
	if body == nil {
		return complexity
	}

	var walk func(n *tree_sitter.Node)
	walk = func(n *tree_sitter.Node) {
		if n == nil {
			return
		}
		kind := n.Kind()
		if kind == "function_definition" || kind == "class_definition" {
			return
		}
		switch kind {
		case "if_statement", "elif_clause",
			"for_statement", "while_statement",
			"except_clause", "case_clause",
			"conditional_expression":
			complexity++
		case "boolean_operator":
			complexity++
		}
		count := n.ChildCount()
		for i := uint(0); i < count; i++ {
			walk(n.Child(i))
		}
	}
	walk(body)
	return complexity
}

// computeMaxNesting returns the deepest nesting depth of
// if/for/while/with/try blocks inside funcNode's body.
func computeMaxNesting(funcNode *tree_sitter.Node) int {
	body := funcNode.ChildByFieldName("body")
	if body == nil {
		return 0
	}
	max := 0
	var walk func(n *tree_sitter.Node, depth int)
	walk = func(n *tree_sitter.Node, depth int) {
		if n == nil {
			return
		}
		kind := n.Kind()
		if kind == "function_definition" || kind == "class_definition" {
			return
		}
		nextDepth := depth
		switch kind {
		case "if_statement", "for_statement", "while_statement", "with_statement", "try_statement":
			nextDepth = depth + 1
			if nextDepth > max {
				max = nextDepth
			}
		}
		count := n.ChildCount()
		for i := uint(0); i < count; i++ {
			walk(n.Child(i), nextDepth)
		}
	}
	walk(body, 0)
	return max
}

func countParameters(funcNode *tree_sitter.Node) int {
	params := funcNode.ChildByFieldName("parameters")
	if params == nil {
		return 0
	}
	count := 0
	childCount := params.ChildCount()
	for i := uint(0); i < childCount; i++ {
		child := params.Child(i)
		if child == nil {
			continue
		}
		switch child.Kind() {
		case "(", ")", ",":
			continue
		default:
			count++
		}
	}
	return count
}
