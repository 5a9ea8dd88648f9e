package rules

import (
	"fmt"

	tree_sitter "github.com/tree-sitter/go-tree-sitter"

	"github.com/cytoscnpy/cytoscnpy/pkg/types"
)

// Registry holds the immutable set of rules run over every file (spec
// §4.6, §5 "the rule registry is immutable after startup").
type Registry struct {
	rules []Rule
}

// NewRegistry builds a registry from the given rules. Use Default for
// the built-in danger+secrets+quality set.
func NewRegistry(rules ...Rule) *Registry {
	return &Registry{rules: rules}
}

// Default returns the built-in rule set, gated by which categories the
// caller enabled — each maps directly to a CLI flag (spec §6).
func Default(danger, secrets, quality, taint bool, cfg QualityConfig) *Registry {
	var rs []Rule
	if danger {
		rs = append(rs, dangerRules()...)
	}
	if secrets {
		rs = append(rs, NewSecretsRule())
	}
	if quality {
		rs = append(rs, NewQualityRule(cfg))
	}
	if taint {
		rs = append(rs, NewTaintRule())
	}
	return NewRegistry(rs...)
}

// Run walks root and every descendant node, invoking each rule's hooks
// and collecting non-nil Findings. A rule whose hook panics is isolated
// — the panic is recovered, turned into an Info-severity diagnostic
// finding naming the misbehaving rule, and every other rule keeps
// running (spec §7.5).
func (r *Registry) Run(root *tree_sitter.Node, content []byte, ctx *Context) []types.Finding {
	var findings []types.Finding
	r.walk(root, content, ctx, &findings)
	return findings
}

func (r *Registry) walk(n *tree_sitter.Node, content []byte, ctx *Context, out *[]types.Finding) {
	if n == nil {
		return
	}
	isStmt := isStatementNode(n)

	if isStmt {
		for _, rule := range r.rules {
			if f := r.safeEnterStmt(rule, n, ctx); f != nil {
				*out = append(*out, *f)
			}
		}
	}
	for _, rule := range r.rules {
		if f := r.safeVisitExpr(rule, n, ctx); f != nil {
			*out = append(*out, *f)
		}
	}

	count := n.ChildCount()
	for i := uint(0); i < count; i++ {
		r.walk(n.Child(i), content, ctx, out)
	}

	if isStmt {
		for _, rule := range r.rules {
			if f := r.safeLeaveStmt(rule, n, ctx); f != nil {
				*out = append(*out, *f)
			}
		}
	}
}

func isStatementNode(n *tree_sitter.Node) bool {
	switch n.Kind() {
	case "expression_statement", "assignment", "if_statement", "for_statement",
		"while_statement", "with_statement", "try_statement", "function_definition",
		"class_definition", "import_statement", "import_from_statement",
		"return_statement", "raise_statement":
		return true
	default:
		return false
	}
}

func (r *Registry) safeEnterStmt(rule Rule, n *tree_sitter.Node, ctx *Context) (f *types.Finding) {
	defer r.recoverInto(&f, rule)
	return rule.EnterStmt(n, ctx)
}

func (r *Registry) safeLeaveStmt(rule Rule, n *tree_sitter.Node, ctx *Context) (f *types.Finding) {
	defer r.recoverInto(&f, rule)
	return rule.LeaveStmt(n, ctx)
}

func (r *Registry) safeVisitExpr(rule Rule, n *tree_sitter.Node, ctx *Context) (f *types.Finding) {
	defer r.recoverInto(&f, rule)
	return rule.VisitExpr(n, ctx)
}

func (r *Registry) recoverInto(f **types.Finding, rule Rule) {
	if rec := recover(); rec != nil {
		*f = &types.Finding{
			RuleID:   "rule-internal-error",
			Severity: types.SeverityInfo,
			Message:  fmt.Sprintf("rule %q panicked: %v", rule.Name(), rec),
		}
	}
}
