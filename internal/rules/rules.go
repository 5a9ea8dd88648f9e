// Package rules implements the danger/secrets/quality/taint plug-in
// rules of spec §4.6: a pure-value interface invoked at statement and
// expression nodes during the visitor pass, plus the built-in rule set.
package rules

import (
	tree_sitter "github.com/tree-sitter/go-tree-sitter"

	"github.com/cytoscnpy/cytoscnpy/pkg/types"
)

// Context carries the per-file state a rule needs to turn an AST node
// into a Finding: the raw source (for text extraction and regex/entropy
// scanning), the file's relative path, and whether it looks like a test
// file (secrets scoring applies a penalty there).
type Context struct {
	File       string
	Content    []byte
	IsTestFile bool
}

// Rule is a pure value implementing the three hooks spec §4.6 names.
// Each hook returns nil when the node doesn't match, or one Finding
// when it does. A rule never mutates its receiver across calls, so the
// registry can run every rule against every node without synchronization.
type Rule interface {
	Name() string
	EnterStmt(stmt *tree_sitter.Node, ctx *Context) *types.Finding
	LeaveStmt(stmt *tree_sitter.Node, ctx *Context) *types.Finding
	VisitExpr(expr *tree_sitter.Node, ctx *Context) *types.Finding
}

// BaseRule gives a Rule implementation no-op defaults for the hooks it
// doesn't care about, the way the teacher's analyzer types embed shared
// no-op behavior rather than making every concrete rule restate it.
type BaseRule struct{}

func (BaseRule) EnterStmt(*tree_sitter.Node, *Context) *types.Finding { return nil }
func (BaseRule) LeaveStmt(*tree_sitter.Node, *Context) *types.Finding { return nil }
func (BaseRule) VisitExpr(*tree_sitter.Node, *Context) *types.Finding { return nil }

func text(n *tree_sitter.Node, content []byte) string {
	if n == nil {
		return ""
	}
	start, end := n.StartByte(), n.EndByte()
	if int(end) > len(content) {
		end = uint(len(content))
	}
	if start >= end {
		return ""
	}
	return string(content[start:end])
}

func line(n *tree_sitter.Node) int {
	return int(n.StartPosition().Row) + 1
}

func column(n *tree_sitter.Node) int {
	return int(n.StartPosition().Column) + 1
}
