// Package resolver applies the name-resolution algorithm of spec §4.4
// to every reference collected by the visitor, against the merged
// project store, and records a resolved reference count on each
// definition it successfully ties a name to.
package resolver

import (
	"strings"

	"github.com/cytoscnpy/cytoscnpy/internal/model"
	"github.com/cytoscnpy/cytoscnpy/pkg/types"
)

// Resolver binds references to definitions using the project-wide
// symbol table. It keeps a suffix index on top of the store so that
// dotted cross-module lookups (step 5) and class-qualified
// self/cls references don't require a linear scan per reference.
type Resolver struct {
	store       *model.ProjectStore
	bySuffix    map[string][]string // trailing ".simpleName" -> candidate fqns
	builtSuffix bool
}

// New creates a Resolver over store. Build must be called once the
// store's definitions are final (after merge, before resolving).
func New(store *model.ProjectStore) *Resolver {
	return &Resolver{store: store, bySuffix: make(map[string][]string)}
}

// Build indexes every surviving definition by its dotted suffixes so
// Resolve can satisfy step 5's cross-module dotted-path lookups without
// re-scanning the whole definition table per reference.
func (r *Resolver) Build() {
	for _, def := range r.store.AllDefinitions() {
		parts := strings.Split(def.FQN, ".")
		for i := 1; i < len(parts); i++ {
			suffix := strings.Join(parts[i:], ".")
			r.bySuffix[suffix] = append(r.bySuffix[suffix], def.FQN)
		}
	}
	r.builtSuffix = true
}

// ResolveAll resolves every reference in refs, recording a hit against
// the store for each one it successfully binds. It returns the count
// of references that resolved.
func (r *Resolver) ResolveAll(refs []types.Reference) int {
	if !r.builtSuffix {
		r.Build()
	}
	resolved := 0
	for _, ref := range refs {
		if fqn, ok := r.Resolve(ref); ok {
			r.store.RecordReference(fqn)
			resolved++
		}
	}
	return resolved
}

// Resolve applies the §4.4 algorithm to a single reference and returns
// the FQN it bound to, if any.
func (r *Resolver) Resolve(ref types.Reference) (string, bool) {
	name := ref.Name
	ctx := ref.Context

	// Step 1: alias substitution, then continue resolution with the
	// substituted name.
	if target, ok := ctx.Aliases[name]; ok {
		name = target
	}

	// Step 2: local variable map.
	if fqn, ok := ctx.LocalVars[name]; ok {
		return fqn, true
	}

	// Step 3: class stack, innermost first.
	for i := len(ctx.ClassStack); i > 0; i-- {
		candidate := ctx.Module + "." + strings.Join(ctx.ClassStack[:i], ".") + "." + name
		if _, ok := r.store.Definition(candidate); ok {
			return candidate, true
		}
	}

	// Step 4: module global.
	moduleCandidate := ctx.Module + "." + name
	if _, ok := r.store.Definition(moduleCandidate); ok {
		return moduleCandidate, true
	}

	// Step 5: name itself as a dotted path against the definition
	// table (cross-module), exact match first, then by matching
	// dotted suffix (covers the visitor's class-qualified
	// self/cls.attr references and simple cross-module attribute
	// access where the declaring module isn't known locally).
	if _, ok := r.store.Definition(name); ok {
		return name, true
	}
	if candidates, ok := r.bySuffix[name]; ok && len(candidates) > 0 {
		return candidates[0], true
	}

	// Step 6: unresolved.
	return "", false
}
