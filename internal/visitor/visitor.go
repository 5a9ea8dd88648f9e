package visitor

import (
	"strings"

	tree_sitter "github.com/tree-sitter/go-tree-sitter"

	"github.com/cytoscnpy/cytoscnpy/pkg/types"
)

// fileVisitor carries the state of one file's single-pass traversal.
type fileVisitor struct {
	content  []byte
	file     string
	scopes   *scopeStack
	artifact *FileArtifact

	inMainBlock    bool
	inTypeChecking bool
	decorators     []string   // pending decorator names for the next def/class
	classBases     [][]string // base-class names of each class on the stack, innermost last
}

// Visit walks root (the parsed file's root node) and produces its
// FileArtifact (spec §4.3).
func Visit(root *tree_sitter.Node, content []byte, file, module string) *FileArtifact {
	v := &fileVisitor{
		content: content,
		file:    file,
		scopes:  newScopeStack(module),
		artifact: &FileArtifact{
			File:        file,
			Module:      module,
			PragmaLines: make(map[int]bool),
		},
	}
	v.collectPragmas()
	v.walkBlock(root)
	return v.artifact
}

func (v *fileVisitor) text(n *tree_sitter.Node) string {
	if n == nil {
		return ""
	}
	start, end := n.StartByte(), n.EndByte()
	if int(end) > len(v.content) {
		end = uint(len(v.content))
	}
	if start >= end {
		return ""
	}
	return string(v.content[start:end])
}

func (v *fileVisitor) line(n *tree_sitter.Node) int {
	return int(n.StartPosition().Row) + 1
}

// collectPragmas scans raw source lines for an inline suppression
// comment so emitDefinition can mark matching lines without an extra
// tree walk.
func (v *fileVisitor) collectPragmas() {
	const marker = "pragma: no cytoscnpy"
	lines := strings.Split(string(v.content), "\n")
	for i, line := range lines {
		if strings.Contains(line, marker) {
			v.artifact.PragmaLines[i+1] = true
		}
	}
}

// walkBlock visits every statement child of a block-like node (module,
// block, class body) in document order.
func (v *fileVisitor) walkBlock(n *tree_sitter.Node) {
	count := n.ChildCount()
	for i := uint(0); i < count; i++ {
		child := n.Child(i)
		if child != nil {
			v.walkStmt(child)
		}
	}
}

func (v *fileVisitor) walkStmt(n *tree_sitter.Node) {
	switch n.Kind() {
	case "decorated_definition":
		v.visitDecoratedDefinition(n)
	case "function_definition":
		v.visitFunctionDefinition(n, nil)
	case "class_definition":
		v.visitClassDefinition(n, nil)
	case "import_statement":
		v.visitImportStatement(n)
	case "import_from_statement":
		v.visitImportFromStatement(n)
	case "expression_statement":
		v.walkExprStatement(n)
	case "assignment":
		v.visitAssignment(n)
	case "augmented_assignment":
		v.visitExpr(n)
	case "if_statement":
		v.visitIfStatement(n)
	case "match_statement":
		v.visitMatchStatement(n)
	case "block":
		v.walkBlock(n)
	case "for_statement":
		v.visitForStatement(n)
	case "with_statement", "while_statement", "try_statement":
		v.walkGenericCompound(n)
	case "return_statement", "yield", "delete_statement", "assert_statement", "raise_statement":
		v.walkChildExprs(n)
	default:
		v.walkChildExprs(n)
	}
}

// walkExprStatement handles a bare expression statement, which is how
// call expressions (eval(...), obj.method(...)) appear as statements.
func (v *fileVisitor) walkExprStatement(n *tree_sitter.Node) {
	count := n.ChildCount()
	for i := uint(0); i < count; i++ {
		child := n.Child(i)
		if child != nil {
			v.visitExpr(child)
		}
	}
}

// walkGenericCompound visits every child of compound statements whose
// internal shape the visitor does not need to special-case beyond
// recursing (for/while/with/try).
func (v *fileVisitor) walkGenericCompound(n *tree_sitter.Node) {
	count := n.ChildCount()
	for i := uint(0); i < count; i++ {
		child := n.Child(i)
		if child == nil {
			continue
		}
		switch child.Kind() {
		case "block":
			v.walkBlock(child)
		default:
			v.visitExpr(child)
		}
	}
}

// walkChildExprs recurses into every child as an expression; used for
// statement kinds whose only interesting content is nested expressions.
func (v *fileVisitor) walkChildExprs(n *tree_sitter.Node) {
	count := n.ChildCount()
	for i := uint(0); i < count; i++ {
		child := n.Child(i)
		if child != nil {
			v.visitExpr(child)
		}
	}
}

// visitForStatement binds a for-loop's target(s) as local (or module,
// outside a function) variables before visiting the iterable and body.
func (v *fileVisitor) visitForStatement(n *tree_sitter.Node) {
	left := n.ChildByFieldName("left")
	right := n.ChildByFieldName("right")
	if right != nil {
		v.visitExpr(right)
	}
	v.bindAssignmentTargets(left)

	body := n.ChildByFieldName("body")
	if body != nil {
		v.walkStmt(body)
	}
	if alt := n.ChildByFieldName("alternative"); alt != nil {
		v.walkStmt(alt)
	}
}

// visitIfStatement special-cases `if __name__ == "__main__":` so
// references inside it can be recorded as entry-point usages (spec
// §4.5), and `if TYPE_CHECKING:` so its body's imports/defs are still
// emitted but annotated.
func (v *fileVisitor) visitIfStatement(n *tree_sitter.Node) {
	cond := n.ChildByFieldName("condition")
	isMain := cond != nil && isMainGuard(v.text(cond))
	isTypeChecking := cond != nil && strings.Contains(v.text(cond), "TYPE_CHECKING")

	prevMain := v.inMainBlock
	if isMain {
		v.inMainBlock = true
	}
	if cond != nil {
		v.visitExpr(cond)
	}

	consequence := n.ChildByFieldName("consequence")
	if consequence != nil {
		if isTypeChecking {
			v.walkBlockAnnotated(consequence)
		} else {
			v.walkStmt(consequence)
		}
	}
	v.inMainBlock = prevMain

	count := n.ChildCount()
	for i := uint(0); i < count; i++ {
		child := n.Child(i)
		if child == nil || child == cond || child == consequence {
			continue
		}
		switch child.Kind() {
		case "elif_clause", "else_clause":
			v.walkStmt(child)
		}
	}
}

// walkBlockAnnotated walks a TYPE_CHECKING-guarded block; definitions
// inside it are still emitted normally (spec §4.3 explicitly keeps
// them) but flagged IsTypeCheckingOnly so heuristics can recognize a
// forward-reference-only import that is never referenced except from
// string annotations elsewhere in the file.
func (v *fileVisitor) walkBlockAnnotated(n *tree_sitter.Node) {
	prev := v.inTypeChecking
	v.inTypeChecking = true
	v.walkStmt(n)
	v.inTypeChecking = prev
}

func isMainGuard(cond string) bool {
	cond = strings.ReplaceAll(cond, " ", "")
	return strings.Contains(cond, "__name__==\"__main__\"") || strings.Contains(cond, "__name__=='__main__'")
}

// visitMatchStatement handles `match subject: case Pattern(x, y): ...`,
// binding pattern captures as local definitions in the case body's
// scope (spec §4.3).
func (v *fileVisitor) visitMatchStatement(n *tree_sitter.Node) {
	subject := n.ChildByFieldName("subject")
	if subject != nil {
		v.visitExpr(subject)
	}
	body := n.ChildByFieldName("body")
	if body == nil {
		return
	}
	count := body.ChildCount()
	for i := uint(0); i < count; i++ {
		child := body.Child(i)
		if child == nil || child.Kind() != "case_clause" {
			continue
		}
		v.visitCaseClause(child)
	}
}

func (v *fileVisitor) visitCaseClause(n *tree_sitter.Node) {
	pattern := n.ChildByFieldName("pattern")
	if pattern != nil {
		v.bindPatternCaptures(pattern)
	}
	consequence := n.ChildByFieldName("consequence")
	if consequence != nil {
		v.walkStmt(consequence)
	}
}

// bindPatternCaptures walks a match-case pattern and binds every bare
// identifier capture as a local variable.
func (v *fileVisitor) bindPatternCaptures(n *tree_sitter.Node) {
	switch n.Kind() {
	case "identifier":
		name := v.text(n)
		if name != "_" {
			fqn := v.scopes.currentFQN() + "." + name
			v.scopes.bindLocal(name, fqn)
			v.emitDefinition(definitionSpec{kind: types.KindLocalVariable, simpleName: name, fqn: fqn, node: n})
		}
	default:
		count := n.ChildCount()
		for i := uint(0); i < count; i++ {
			child := n.Child(i)
			if child != nil {
				v.bindPatternCaptures(child)
			}
		}
	}
}
