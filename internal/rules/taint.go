package rules

import (
	"fmt"

	tree_sitter "github.com/tree-sitter/go-tree-sitter"

	"github.com/cytoscnpy/cytoscnpy/pkg/types"
)

// taintSources are call/attribute expressions whose result cytoscnpy
// treats as attacker-controlled input entering a function.
var taintSources = []string{
	"request.args", "request.form", "request.json", "request.GET", "request.POST",
	"request.data", "request.values", "request.cookies", "request.headers",
	"input", "sys.argv", "os.environ.get",
}

// taintSinks are call expressions where attacker-controlled data
// reaching an argument is dangerous.
var taintSinks = []string{"eval", "exec", "os.system", "os.popen", "subprocess.call", "subprocess.run", "cursor.execute"}

// TaintRule is a shallow, single-function, flow-insensitive taint
// tracker (spec §4.6): it walks one function's body, marks variables
// assigned directly from a known source (or from another tainted
// variable) as tainted, and flags a sink call that receives a tainted
// variable or an inlined source expression. No interprocedural
// analysis: taint never crosses a function_definition boundary.
type TaintRule struct {
	BaseRule
}

func NewTaintRule() *TaintRule { return &TaintRule{} }

func (r *TaintRule) Name() string { return "taint" }

func (r *TaintRule) EnterStmt(n *tree_sitter.Node, ctx *Context) *types.Finding {
	if n.Kind() != "function_definition" {
		return nil
	}
	body := n.ChildByFieldName("body")
	if body == nil {
		return nil
	}
	tainted := make(map[string]bool)
	return walkTaint(body, ctx, tainted)
}

func walkTaint(n *tree_sitter.Node, ctx *Context, tainted map[string]bool) *types.Finding {
	if n == nil {
		return nil
	}
	if n.Kind() == "function_definition" {
		return nil // a nested function gets its own independent EnterStmt call
	}

	if n.Kind() == "assignment" {
		left := n.ChildByFieldName("left")
		right := n.ChildByFieldName("right")
		if left != nil && left.Kind() == "identifier" && right != nil {
			if isTaintSource(right, ctx.Content) || isTaintedExpr(right, ctx.Content, tainted) {
				tainted[text(left, ctx.Content)] = true
			}
		}
	}

	if n.Kind() == "call" {
		if f := checkSinkCall(n, ctx, tainted); f != nil {
			return f
		}
	}

	count := n.ChildCount()
	for i := uint(0); i < count; i++ {
		if f := walkTaint(n.Child(i), ctx, tainted); f != nil {
			return f
		}
	}
	return nil
}

func isTaintSource(n *tree_sitter.Node, content []byte) bool {
	switch n.Kind() {
	case "call":
		fn := n.ChildByFieldName("function")
		return fn != nil && containsString(taintSources, text(fn, content))
	case "attribute", "identifier":
		return containsString(taintSources, text(n, content))
	case "subscript":
		value := n.ChildByFieldName("value")
		return value != nil && containsString(taintSources, text(value, content))
	}
	return false
}

func isTaintedExpr(n *tree_sitter.Node, content []byte, tainted map[string]bool) bool {
	if n.Kind() == "identifier" {
		return tainted[text(n, content)]
	}
	return false
}

func checkSinkCall(n *tree_sitter.Node, ctx *Context, tainted map[string]bool) *types.Finding {
	fn := n.ChildByFieldName("function")
	if fn == nil || !containsString(taintSinks, text(fn, ctx.Content)) {
		return nil
	}
	args := n.ChildByFieldName("arguments")
	if args == nil {
		return nil
	}
	count := args.ChildCount()
	for i := uint(0); i < count; i++ {
		arg := args.Child(i)
		if arg == nil {
			continue
		}
		if isTaintedExpr(arg, ctx.Content, tainted) || isTaintSource(arg, ctx.Content) {
			return &types.Finding{
				RuleID:   "taint-unsanitized-flow",
				Severity: types.SeverityHigh,
				File:     ctx.File,
				Line:     line(n),
				Column:   column(n),
				Message:  fmt.Sprintf("tainted value reaches %s without sanitization", text(fn, ctx.Content)),
			}
		}
	}
	return nil
}
