package visitor

import (
	"unicode"

	tree_sitter "github.com/tree-sitter/go-tree-sitter"
)

// visitAnnotation visits a type annotation expression. A plain
// identifier/attribute/subscript annotation is visited like any other
// expression; a string-quoted forward reference (`x: "SomeClass"`) is
// scanned heuristically for identifiers, each becoming a reference
// (spec §4.3's "Dynamic-annotation handling" — the resolved Open
// Question treats every such identifier as a live reference).
func (v *fileVisitor) visitAnnotation(n *tree_sitter.Node) {
	if n == nil {
		return
	}
	if n.Kind() == "string" {
		if lit, ok := stringLiteralValue(v.text(n)); ok {
			for _, name := range scanIdentifiers(lit) {
				v.addReference(name, n, true)
			}
		}
		return
	}
	v.visitAnnotationExpr(n)
}

// visitAnnotationExpr recurses through an annotation expression,
// tagging every reference it emits as an annotation reference and
// still honoring nested string forward references (e.g.
// Optional["Foo"]).
func (v *fileVisitor) visitAnnotationExpr(n *tree_sitter.Node) {
	switch n.Kind() {
	case "identifier":
		v.addReference(v.text(n), n, true)
	case "attribute":
		attr := n.ChildByFieldName("attribute")
		obj := n.ChildByFieldName("object")
		if obj != nil {
			v.visitAnnotationExpr(obj)
		}
		if attr != nil {
			v.addReference(v.text(attr), attr, true)
		}
	case "string":
		v.visitAnnotation(n)
	default:
		count := n.ChildCount()
		for i := uint(0); i < count; i++ {
			child := n.Child(i)
			if child != nil {
				v.visitAnnotationExpr(child)
			}
		}
	}
}

// scanIdentifiers extracts Python-identifier-shaped substrings from a
// forward-reference string annotation ("Optional[MyClass]" -> ["Optional",
// "MyClass"]), skipping Python keywords that can appear in annotation
// expressions.
func scanIdentifiers(s string) []string {
	var out []string
	var cur []rune
	flush := func() {
		if len(cur) == 0 {
			return
		}
		name := string(cur)
		cur = cur[:0]
		if !annotationKeywords[name] {
			out = append(out, name)
		}
	}
	for _, r := range s {
		if unicode.IsLetter(r) || r == '_' || (len(cur) > 0 && unicode.IsDigit(r)) {
			cur = append(cur, r)
		} else {
			flush()
		}
	}
	flush()
	return out
}

var annotationKeywords = map[string]bool{
	"None": true, "True": true, "False": true,
}
