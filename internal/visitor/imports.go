package visitor

import (
	tree_sitter "github.com/tree-sitter/go-tree-sitter"

	"github.com/cytoscnpy/cytoscnpy/pkg/types"
)

// visitImportStatement handles `import A`, `import A.B`, `import A as X`
// (spec §4.3: "Import statements emit one Import per dotted target").
func (v *fileVisitor) visitImportStatement(n *tree_sitter.Node) {
	count := n.ChildCount()
	for i := uint(0); i < count; i++ {
		child := n.Child(i)
		if child == nil {
			continue
		}
		switch child.Kind() {
		case "dotted_name":
			dotted := v.text(child)
			v.emitImportDefinition(dotted, dotted, child)
		case "aliased_import":
			target := child.ChildByFieldName("name")
			alias := child.ChildByFieldName("alias")
			if target == nil || alias == nil {
				continue
			}
			targetName := v.text(target)
			aliasName := v.text(alias)
			v.scopes.bindAlias(aliasName, targetName)
			v.emitImportAliasDefinition(aliasName, targetName, alias)
		}
	}
}

// visitImportFromStatement handles `from P import N`, `from P import N as
// X`, and `from P import *` (spec §4.3).
func (v *fileVisitor) visitImportFromStatement(n *tree_sitter.Node) {
	modNode := n.ChildByFieldName("module_name")
	modulePath := ""
	if modNode != nil {
		modulePath = v.resolveRelativeModule(v.text(modNode))
	}

	count := n.ChildCount()
	for i := uint(0); i < count; i++ {
		child := n.Child(i)
		if child == nil {
			continue
		}
		switch child.Kind() {
		case "wildcard_import":
			// `from P import *` defeats static reference tracking for
			// names from P; mark this module dynamic rather than guess.
			v.artifact.Dynamic = true
		case "aliased_import":
			nameNode := child.ChildByFieldName("name")
			aliasNode := child.ChildByFieldName("alias")
			if nameNode == nil || aliasNode == nil {
				continue
			}
			simple := v.text(nameNode)
			alias := v.text(aliasNode)
			target := joinModule(modulePath, simple)
			v.scopes.bindAlias(alias, target)
			v.emitImportAliasDefinition(alias, target, aliasNode)
			v.addReference(target, aliasNode, false)
		case "dotted_name":
			if child == modNode {
				continue
			}
			simple := v.text(child)
			target := joinModule(modulePath, simple)
			v.emitImportDefinition(simple, target, child)
			v.addReference(target, child, false)
		}
	}
}

func (v *fileVisitor) emitImportDefinition(simpleName, target string, n *tree_sitter.Node) {
	fqn := v.scopes.module + "." + simpleName
	v.emitDefinition(definitionSpec{
		kind:       types.KindImport,
		simpleName: simpleName,
		fqn:        fqn,
		node:       n,
	})
}

func (v *fileVisitor) emitImportAliasDefinition(aliasName, target string, n *tree_sitter.Node) {
	fqn := v.scopes.module + "." + aliasName
	v.emitDefinition(definitionSpec{
		kind:       types.KindImportAlias,
		simpleName: aliasName,
		fqn:        fqn,
		node:       n,
	})
}

// resolveRelativeModule resolves a leading-dot relative module path
// (`.sibling`, `..pkg.mod`) against the current module's own path.
func (v *fileVisitor) resolveRelativeModule(raw string) string {
	dots := 0
	for dots < len(raw) && raw[dots] == '.' {
		dots++
	}
	if dots == 0 {
		return raw
	}
	rest := raw[dots:]
	parts := splitModule(v.scopes.module)
	up := dots - 1
	if up > len(parts) {
		up = len(parts)
	}
	base := parts[:len(parts)-up]
	baseStr := joinParts(base)
	return joinModule(baseStr, rest)
}

func joinModule(base, name string) string {
	if base == "" {
		return name
	}
	if name == "" {
		return base
	}
	return base + "." + name
}

func splitModule(module string) []string {
	if module == "" {
		return nil
	}
	var parts []string
	start := 0
	for i := 0; i < len(module); i++ {
		if module[i] == '.' {
			parts = append(parts, module[start:i])
			start = i + 1
		}
	}
	parts = append(parts, module[start:])
	return parts
}

func joinParts(parts []string) string {
	out := ""
	for i, p := range parts {
		if i > 0 {
			out += "."
		}
		out += p
	}
	return out
}
