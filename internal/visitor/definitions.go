package visitor

import (
	"strings"

	tree_sitter "github.com/tree-sitter/go-tree-sitter"

	"github.com/cytoscnpy/cytoscnpy/pkg/types"
)

// definitionSpec is the argument bundle for emitDefinition; it exists
// so individual call sites only set the fields that matter for their
// kind of definition.
type definitionSpec struct {
	kind       types.DefinitionKind
	simpleName string
	fqn        string
	node       *tree_sitter.Node
	endNode    *tree_sitter.Node
	decorators []string
}

func (v *fileVisitor) emitDefinition(spec definitionSpec) *types.Definition {
	end := spec.node
	if spec.endNode != nil {
		end = spec.endNode
	}
	def := &types.Definition{
		Kind:         spec.kind,
		FQN:          spec.fqn,
		SimpleName:   spec.simpleName,
		Module:       v.scopes.module,
		File:         v.file,
		StartLine:    v.line(spec.node),
		EndLine:      int(end.EndPosition().Row) + 1,
		StartByte:    spec.node.StartByte(),
		EndByte:      end.EndByte(),
		Decorators:   spec.decorators,
		IsDunder:     isDunderName(spec.simpleName),
		Confidence:   spec.kind.InitialConfidence(),
	}
	if v.artifact.PragmaLines[def.StartLine] {
		def.IsPragmaSuppressed = true
	}
	if v.inTypeChecking {
		def.IsTypeCheckingOnly = true
	}
	def.IsVisitorMethod = isVisitorConventionName(spec.simpleName)
	v.artifact.Definitions = append(v.artifact.Definitions, def)
	return def
}

func isDunderName(name string) bool {
	return strings.HasPrefix(name, "__") && strings.HasSuffix(name, "__") && len(name) > 4
}

func isVisitorConventionName(name string) bool {
	prefixes := []string{"visit_", "leave_", "transform_"}
	for _, p := range prefixes {
		if strings.HasPrefix(name, p) {
			return true
		}
	}
	return false
}

// visitDecoratedDefinition handles `@decorator\ndef/class ...`,
// recording decorator names on the wrapped definition (spec §4.3).
func (v *fileVisitor) visitDecoratedDefinition(n *tree_sitter.Node) {
	var decorators []string
	var inner *tree_sitter.Node

	count := n.ChildCount()
	for i := uint(0); i < count; i++ {
		child := n.Child(i)
		if child == nil {
			continue
		}
		switch child.Kind() {
		case "decorator":
			expr := child.Child(1) // skip the '@' token
			if expr != nil {
				decorators = append(decorators, decoratorName(v.text(expr)))
				v.visitExpr(expr)
			}
		case "function_definition":
			inner = child
		case "class_definition":
			inner = child
		}
	}

	if inner == nil {
		return
	}
	switch inner.Kind() {
	case "function_definition":
		v.visitFunctionDefinition(inner, decorators)
	case "class_definition":
		v.visitClassDefinition(inner, decorators)
	}
}

func decoratorName(expr string) string {
	expr = strings.TrimSpace(expr)
	if idx := strings.IndexAny(expr, "(. "); idx >= 0 {
		return expr[:idx]
	}
	return expr
}

func hasDecorator(decorators []string, name string) bool {
	for _, d := range decorators {
		if d == name {
			return true
		}
	}
	return false
}

// visitFunctionDefinition handles both plain and async function
// definitions; tree-sitter-python uses the same "function_definition"
// node for both, with an "async" keyword as a preceding sibling handled
// by the caller already having descended into this node.
func (v *fileVisitor) visitFunctionDefinition(n *tree_sitter.Node, decorators []string) {
	nameNode := n.ChildByFieldName("name")
	if nameNode == nil {
		return
	}
	simpleName := v.text(nameNode)

	kind := types.KindFunction
	if len(v.scopes.classStack) > 0 {
		kind = types.KindMethod
	}

	fqn := v.scopes.currentFQN() + "." + simpleName
	body := n.ChildByFieldName("body")
	def := v.emitDefinition(definitionSpec{
		kind: kind, simpleName: simpleName, fqn: fqn,
		node: n, endNode: bodyEndOrNode(n, body), decorators: decorators,
	})
	// The function's own name becomes resolvable from the enclosing
	// scope before descending, so recursive calls and sibling
	// references can already see it.
	v.scopes.bindLocal(simpleName, fqn)

	v.scopes.pushFunction(simpleName)
	v.bindParameters(n)
	if retType := n.ChildByFieldName("return_type"); retType != nil {
		v.visitAnnotation(retType)
	}
	if body != nil {
		v.walkStmt(body)
	}
	v.scopes.pop()
}

func bodyEndOrNode(n, body *tree_sitter.Node) *tree_sitter.Node {
	if body != nil {
		return body
	}
	return n
}

// bindParameters emits Parameter definitions for a function's
// parameter list, excluding self/cls (spec §4.3).
func (v *fileVisitor) bindParameters(fn *tree_sitter.Node) {
	params := fn.ChildByFieldName("parameters")
	if params == nil {
		return
	}
	count := params.ChildCount()
	for i := uint(0); i < count; i++ {
		child := params.Child(i)
		if child == nil {
			continue
		}
		v.bindOneParameter(child)
	}
}

func (v *fileVisitor) bindOneParameter(n *tree_sitter.Node) {
	var nameNode, annotation, defaultVal *tree_sitter.Node

	switch n.Kind() {
	case "identifier":
		nameNode = n
	case "typed_parameter", "typed_default_parameter", "default_parameter":
		nameNode = n.ChildByFieldName("name")
		if nameNode == nil {
			nameNode = n.Child(0)
		}
		annotation = n.ChildByFieldName("type")
		defaultVal = n.ChildByFieldName("value")
	case "list_splat_pattern", "dictionary_splat_pattern":
		if n.ChildCount() > 0 {
			nameNode = n.Child(1)
		}
	default:
		return
	}
	if nameNode == nil {
		return
	}
	name := v.text(nameNode)
	if name == "self" || name == "cls" || name == "" {
		return
	}

	fqn := v.scopes.currentFQN() + "." + name
	v.emitDefinition(definitionSpec{kind: types.KindParameter, simpleName: name, fqn: fqn, node: nameNode})
	v.scopes.bindLocal(name, fqn)

	if annotation != nil {
		v.visitAnnotation(annotation)
	}
	if defaultVal != nil {
		v.visitExpr(defaultVal)
	}
}

// visitClassDefinition handles `class Name(Base1, Base2): ...`.
func (v *fileVisitor) visitClassDefinition(n *tree_sitter.Node, decorators []string) {
	nameNode := n.ChildByFieldName("name")
	if nameNode == nil {
		return
	}
	simpleName := v.text(nameNode)
	fqn := v.scopes.currentFQN() + "." + simpleName
	body := n.ChildByFieldName("body")

	def := v.emitDefinition(definitionSpec{
		kind: types.KindClass, simpleName: simpleName, fqn: fqn,
		node: n, endNode: bodyEndOrNode(n, body), decorators: decorators,
	})
	def.IsDataclassField = hasDecorator(decorators, "dataclass")

	v.scopes.bindLocal(simpleName, fqn)

	if superclasses := n.ChildByFieldName("superclasses"); superclasses != nil {
		def.BaseClasses = v.collectBaseClassNames(superclasses)
		v.visitExpr(superclasses)
	}

	isSettingsLike := strings.HasSuffix(simpleName, "Settings") || strings.HasSuffix(simpleName, "Config")
	isDataclass := def.IsDataclassField

	v.classBases = append(v.classBases, def.BaseClasses)
	v.scopes.pushClass(simpleName)
	if body != nil {
		v.walkClassBody(body, isSettingsLike, isDataclass)
	}
	v.scopes.pop()
	v.classBases = v.classBases[:len(v.classBases)-1]
}

// collectBaseClassNames extracts the simple trailing identifier of
// each base-class expression in a class's argument_list (`class Foo(a.Bar,
// Baz):` -> ["Bar", "Baz"]), skipping keyword arguments like metaclass=.
func (v *fileVisitor) collectBaseClassNames(argList *tree_sitter.Node) []string {
	var bases []string
	count := argList.ChildCount()
	for i := uint(0); i < count; i++ {
		child := argList.Child(i)
		if child == nil {
			continue
		}
		switch child.Kind() {
		case "identifier":
			bases = append(bases, v.text(child))
		case "attribute":
			if attr := child.ChildByFieldName("attribute"); attr != nil {
				bases = append(bases, v.text(attr))
			}
		}
	}
	return bases
}

// walkClassBody walks a class body, emitting ClassAttribute definitions
// for simple and annotated assignments at the class's top level (spec
// §4.3), while still descending into nested methods normally.
func (v *fileVisitor) walkClassBody(body *tree_sitter.Node, isSettingsLike, isDataclass bool) {
	count := body.ChildCount()
	for i := uint(0); i < count; i++ {
		child := body.Child(i)
		if child == nil {
			continue
		}
		switch child.Kind() {
		case "expression_statement":
			v.visitClassBodyAssignment(child, isSettingsLike, isDataclass)
		default:
			v.walkStmt(child)
		}
	}
}

func (v *fileVisitor) visitClassBodyAssignment(exprStmt *tree_sitter.Node, isSettingsLike, isDataclass bool) {
	if exprStmt.ChildCount() == 0 {
		return
	}
	expr := exprStmt.Child(0)
	if expr == nil || (expr.Kind() != "assignment" && expr.Kind() != "augmented_assignment") {
		v.walkExprStatement(exprStmt)
		return
	}

	left := expr.ChildByFieldName("left")
	right := expr.ChildByFieldName("right")
	typeNode := expr.ChildByFieldName("type")

	if left == nil || left.Kind() != "identifier" {
		v.visitExpr(expr)
		return
	}

	name := v.text(left)
	fqn := v.scopes.currentFQN() + "." + name
	def := v.emitDefinition(definitionSpec{kind: types.KindClassAttribute, simpleName: name, fqn: fqn, node: left})
	isUpper := name == strings.ToUpper(name)
	def.IsSettingsConst = isSettingsLike && isUpper
	def.IsDataclassField = isDataclass
	v.scopes.bindLocal(name, fqn)

	if typeNode != nil {
		v.visitAnnotation(typeNode)
	}
	if right != nil {
		v.visitExpr(right)
	}
}
