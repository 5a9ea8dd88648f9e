package visitor

import (
	tree_sitter "github.com/tree-sitter/go-tree-sitter"

	"github.com/cytoscnpy/cytoscnpy/pkg/types"
)

// currentContext snapshots the visitor's scope state into a
// ResolutionContext the resolver can apply the §4.4 algorithm against,
// independent of how the file was walked.
func (v *fileVisitor) currentContext() types.ResolutionContext {
	locals := make(map[string]string, len(v.scopes.current().localVars))
	for i := range v.scopes.scopes {
		for k, val := range v.scopes.scopes[i].localVars {
			locals[k] = val
		}
	}
	aliases := make(map[string]string, len(v.scopes.aliases))
	for k, val := range v.scopes.aliases {
		aliases[k] = val
	}
	return types.ResolutionContext{
		Module:    v.scopes.module,
		ClassStack: v.scopes.classStackCopy(),
		FuncStack:  v.scopes.funcStackCopy(),
		LocalVars:  locals,
		Aliases:    aliases,
	}
}

func (v *fileVisitor) addReference(name string, n *tree_sitter.Node, isAnnotation bool) {
	if name == "" {
		return
	}
	ref := types.Reference{
		Name:         name,
		Context:      v.currentContext(),
		File:         v.file,
		Line:         v.line(n),
		Column:       int(n.StartPosition().Column) + 1,
		IsAnnotation: isAnnotation,
	}
	v.artifact.References = append(v.artifact.References, ref)
	if v.inMainBlock {
		v.artifact.MainBlockRefs = append(v.artifact.MainBlockRefs, name)
	}
}

// visitAssignment handles module-scope and function-scope assignment
// targets (spec §4.3): `NAME = ...` at module scope emits
// ModuleVariable; inside a function it emits LocalVariable.
func (v *fileVisitor) visitAssignment(n *tree_sitter.Node) {
	left := n.ChildByFieldName("left")
	right := n.ChildByFieldName("right")
	typeNode := n.ChildByFieldName("type")

	v.bindAssignmentTargets(left)
	if typeNode != nil {
		v.visitAnnotation(typeNode)
	}
	if right != nil {
		v.visitExpr(right)
	}
	if left != nil && v.scopes.module != "" {
		v.checkDunderAll(left, right)
	}
}

// bindAssignmentTargets walks an assignment's left-hand side, which may
// be a bare identifier, a tuple/list of identifiers (`a, b = ...`), or
// an attribute/subscript target (which is a reference, not a binding).
func (v *fileVisitor) bindAssignmentTargets(n *tree_sitter.Node) {
	if n == nil {
		return
	}
	switch n.Kind() {
	case "identifier":
		name := v.text(n)
		v.bindOneAssignmentTarget(name, n)
	case "pattern_list", "tuple_pattern", "list_pattern":
		count := n.ChildCount()
		for i := uint(0); i < count; i++ {
			child := n.Child(i)
			if child != nil {
				v.bindAssignmentTargets(child)
			}
		}
	case "attribute", "subscript":
		v.visitExpr(n)
	default:
		v.visitExpr(n)
	}
}

func (v *fileVisitor) bindOneAssignmentTarget(name string, n *tree_sitter.Node) {
	fqn := v.scopes.currentFQN() + "." + name
	kind := types.KindModuleVariable
	if v.scopes.inFunction() {
		kind = types.KindLocalVariable
	}
	v.emitDefinition(definitionSpec{kind: kind, simpleName: name, fqn: fqn, node: n})
	v.scopes.bindLocal(name, fqn)
}

// visitExpr dispatches on an expression node, recursing into children
// and emitting references for identifier loads and attribute/call
// patterns the spec calls out explicitly (spec §4.3).
func (v *fileVisitor) visitExpr(n *tree_sitter.Node) {
	if n == nil {
		return
	}
	switch n.Kind() {
	case "identifier":
		v.addReference(v.text(n), n, false)
	case "attribute":
		v.visitAttribute(n)
	case "call":
		v.visitCall(n)
	case "string":
		// bare string literals are not references by themselves; only
		// specific contexts (annotations, __all__) treat their content
		// as identifiers, handled by those callers.
	case "lambda":
		v.visitLambda(n)
	case "list_comprehension", "set_comprehension", "dictionary_comprehension", "generator_expression":
		v.visitComprehension(n)
	default:
		count := n.ChildCount()
		for i := uint(0); i < count; i++ {
			child := n.Child(i)
			if child != nil {
				v.visitExpr(child)
			}
		}
	}
}

// visitAttribute handles `obj.attr`: it always emits a reference to
// attr, and when obj is self/cls it also emits a class-qualified
// reference for every class on the stack (spec §4.3).
func (v *fileVisitor) visitAttribute(n *tree_sitter.Node) {
	obj := n.ChildByFieldName("object")
	attr := n.ChildByFieldName("attribute")
	if obj != nil {
		v.visitExpr(obj)
	}
	if attr == nil {
		return
	}
	attrName := v.text(attr)
	v.addReference(attrName, attr, false)

	if obj != nil && obj.Kind() == "identifier" {
		objName := v.text(obj)
		if objName == "self" || objName == "cls" {
			for _, cls := range v.scopes.classStackCopy() {
				v.addReference(cls+"."+attrName, attr, false)
			}
		}
	}

	// super().m() — also reference every direct base class's m, since
	// the resolver cannot itself walk an MRO (spec §4.3).
	if obj != nil && obj.Kind() == "call" {
		if fn := obj.ChildByFieldName("function"); fn != nil && fn.Kind() == "identifier" && v.text(fn) == "super" {
			if len(v.classBases) > 0 {
				for _, base := range v.classBases[len(v.classBases)-1] {
					v.addReference(base+"."+attrName, attr, false)
				}
			}
		}
	}
}

func (v *fileVisitor) visitLambda(n *tree_sitter.Node) {
	v.scopes.pushFunction("<lambda>")
	params := n.ChildByFieldName("parameters")
	if params != nil {
		count := params.ChildCount()
		for i := uint(0); i < count; i++ {
			child := params.Child(i)
			if child != nil {
				v.bindOneParameter(child)
			}
		}
	}
	if body := n.ChildByFieldName("body"); body != nil {
		v.visitExpr(body)
	}
	v.scopes.pop()
}

// visitComprehension introduces a comprehension scope and binds its
// induction variables locally (spec §4.3) before visiting the result
// expression and clauses.
func (v *fileVisitor) visitComprehension(n *tree_sitter.Node) {
	v.scopes.pushComprehension()
	count := n.ChildCount()
	for i := uint(0); i < count; i++ {
		child := n.Child(i)
		if child == nil {
			continue
		}
		if child.Kind() == "for_in_clause" {
			left := child.ChildByFieldName("left")
			right := child.ChildByFieldName("right")
			v.bindComprehensionTarget(left)
			if right != nil {
				v.visitExpr(right)
			}
		}
	}
	for i := uint(0); i < count; i++ {
		child := n.Child(i)
		if child == nil || child.Kind() == "for_in_clause" {
			continue
		}
		v.visitExpr(child)
	}
	v.scopes.pop()
}

func (v *fileVisitor) bindComprehensionTarget(n *tree_sitter.Node) {
	if n == nil {
		return
	}
	switch n.Kind() {
	case "identifier":
		name := v.text(n)
		fqn := v.scopes.currentFQN() + "." + name
		v.scopes.bindLocal(name, fqn)
	case "tuple_pattern", "pattern_list", "list_pattern":
		count := n.ChildCount()
		for i := uint(0); i < count; i++ {
			child := n.Child(i)
			if child != nil {
				v.bindComprehensionTarget(child)
			}
		}
	}
}
