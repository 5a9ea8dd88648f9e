package visitor

import (
	"strings"

	tree_sitter "github.com/tree-sitter/go-tree-sitter"
)

var dynamicCallNames = map[string]bool{
	"eval": true, "exec": true,
}

// visitCall recognizes the call shapes spec §4.3 singles out: eval/exec
// (mark module dynamic), globals()/locals() subscript or mutation
// (mark module dynamic), hasattr/getattr with a literal name (emit a
// reference to that literal name), and super().method() (handled by
// the normal attribute path plus base-class chasing left to the
// resolver).
func (v *fileVisitor) visitCall(n *tree_sitter.Node) {
	fn := n.ChildByFieldName("function")
	args := n.ChildByFieldName("arguments")

	if fn != nil && fn.Kind() == "identifier" {
		name := v.text(fn)
		if dynamicCallNames[name] {
			v.artifact.Dynamic = true
		}
		if name == "globals" || name == "locals" {
			v.artifact.Dynamic = true
		}
		if (name == "hasattr" || name == "getattr") && args != nil {
			v.visitAttrNameCall(fn, args)
			return
		}
	}

	if fn != nil {
		v.visitExpr(fn)
	}
	if args != nil {
		v.visitExpr(args)
	}
}

// visitAttrNameCall handles hasattr(obj, "name") / getattr(obj, "name",
// default): it visits the object and default normally but turns a
// literal-string second argument into a direct reference to that name
// instead of treating the string as inert text.
func (v *fileVisitor) visitAttrNameCall(fn, args *tree_sitter.Node) {
	var positional []*tree_sitter.Node
	count := args.ChildCount()
	for i := uint(0); i < count; i++ {
		child := args.Child(i)
		if child == nil {
			continue
		}
		switch child.Kind() {
		case "(", ")", ",":
			continue
		default:
			positional = append(positional, child)
		}
	}

	for i, arg := range positional {
		if i == 1 && arg.Kind() == "string" {
			if lit, ok := stringLiteralValue(v.text(arg)); ok {
				v.addReference(lit, arg, false)
			}
			continue
		}
		v.visitExpr(arg)
	}
}

// checkDunderAll recognizes a module-level `__all__ = [...]` or
// `__all__ = (...)` assignment. A literal list/tuple of string
// constants marks each name exported; anything else marks the module's
// __all__ as dynamically built (resolved Open Question: only literal
// collections of string constants are honored).
func (v *fileVisitor) checkDunderAll(left, right *tree_sitter.Node) {
	if left == nil || left.Kind() != "identifier" || v.text(left) != "__all__" {
		return
	}
	if right == nil {
		return
	}
	names, ok := literalStringList(right, v)
	if !ok {
		v.artifact.DynamicAll = true
		return
	}
	v.artifact.LiteralExports = append(v.artifact.LiteralExports, names...)
	for _, name := range names {
		v.addReference(name, right, false)
	}
}

func literalStringList(n *tree_sitter.Node, v *fileVisitor) ([]string, bool) {
	if n.Kind() != "list" && n.Kind() != "tuple" {
		return nil, false
	}
	var out []string
	count := n.ChildCount()
	for i := uint(0); i < count; i++ {
		child := n.Child(i)
		if child == nil {
			continue
		}
		switch child.Kind() {
		case "[", "]", "(", ")", ",":
			continue
		case "string":
			lit, ok := stringLiteralValue(v.text(child))
			if !ok {
				return nil, false
			}
			out = append(out, lit)
		default:
			return nil, false
		}
	}
	return out, true
}

// stringLiteralValue strips Python string-literal quoting and prefix
// characters from raw source text, rejecting anything with
// interpolation (f-strings) since those are not static constants.
func stringLiteralValue(raw string) (string, bool) {
	s := raw
	for len(s) > 0 && (s[0] == 'r' || s[0] == 'R' || s[0] == 'b' || s[0] == 'B' || s[0] == 'u' || s[0] == 'U') {
		s = s[1:]
	}
	if strings.HasPrefix(raw, "f") || strings.HasPrefix(raw, "F") {
		return "", false
	}
	for _, q := range []string{`"""`, `'''`, `"`, `'`} {
		if strings.HasPrefix(s, q) && strings.HasSuffix(s, q) && len(s) >= 2*len(q) {
			return s[len(q) : len(s)-len(q)], true
		}
	}
	return "", false
}
