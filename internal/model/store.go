// Package model holds the cross-file project index that the visitor
// stage populates, the resolver stage queries and annotates, and the
// heuristics stage reads to compute confidence (spec §3, §4.4, §4.5).
package model

import (
	"sort"
	"sync"

	"github.com/cytoscnpy/cytoscnpy/pkg/types"
)

// ProjectStore is the single cross-file symbol table for a scan. It is
// safe for concurrent use: the orchestrator merges per-file artifacts
// from parallel workers through it during a serial merge phase, but the
// locking lets later stages (resolver, heuristics) read concurrently
// too without a second synchronization mechanism.
type ProjectStore struct {
	mu sync.Mutex

	definitions map[string]*types.Definition // fqn -> definition
	byModule    map[string][]string          // module -> fqns declared in it
	references  map[string]int               // fqn -> resolved reference count

	exports        map[string]map[string]bool // module -> exported simple names (__all__)
	hasDynamicAll  map[string]bool            // module -> __all__ built dynamically (non-literal)
	dynamicModules map[string]bool            // module -> uses eval/exec/getattr-style dynamic access
	pragmaIgnored  map[string]bool            // fqn -> suppressed via inline pragma
	forcedUnused   map[string]bool            // fqn -> flagged via class-method linking

	shadowed []string // fqns that were redefined and shadowed an earlier definition
}

// NewProjectStore creates an empty store.
func NewProjectStore() *ProjectStore {
	return &ProjectStore{
		definitions:    make(map[string]*types.Definition),
		byModule:       make(map[string][]string),
		references:     make(map[string]int),
		exports:        make(map[string]map[string]bool),
		hasDynamicAll:  make(map[string]bool),
		dynamicModules: make(map[string]bool),
		pragmaIgnored:  make(map[string]bool),
		forcedUnused:   make(map[string]bool),
	}
}

// AddDefinition inserts def, keyed by its FQN. If a definition already
// exists at that FQN (e.g. a function redefined later in the same
// module, or a conditional class/def), the earlier one is marked
// Shadowed and recorded so it is never flagged as unused on its own —
// only the final, surviving definition participates in resolution.
func (s *ProjectStore) AddDefinition(def *types.Definition) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if existing, ok := s.definitions[def.FQN]; ok {
		existing.Shadowed = true
		s.shadowed = append(s.shadowed, def.FQN)
	} else {
		s.byModule[def.Module] = append(s.byModule[def.Module], def.FQN)
	}
	s.definitions[def.FQN] = def
}

// Definition looks up a definition by its fully-qualified name.
func (s *ProjectStore) Definition(fqn string) (*types.Definition, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	def, ok := s.definitions[fqn]
	return def, ok
}

// DefinitionsInModule returns the FQNs declared directly in module, in
// insertion order.
func (s *ProjectStore) DefinitionsInModule(module string) []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]string, len(s.byModule[module]))
	copy(out, s.byModule[module])
	return out
}

// RecordReference increments the resolved reference count for fqn. It is
// called once per reference the resolver successfully binds, including
// self-references and references from the same file.
func (s *ProjectStore) RecordReference(fqn string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.references[fqn]++
}

// AddReferences bumps fqn's reference count by n in one call, used by the
// heuristics engine to record synthetic references (e.g. an `__all__`
// export, a visitor-convention method name) without making the caller
// loop over RecordReference itself.
func (s *ProjectStore) AddReferences(fqn string, n int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.references[fqn] += n
}

// ReferenceCount returns how many times fqn was referenced.
func (s *ProjectStore) ReferenceCount(fqn string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.references[fqn]
}

// MarkExported records that module's __all__ literal names name as
// exported. A name listed in __all__ counts as referenced by every
// other module, since cytoscnpy cannot see external importers (spec
// §4.5).
func (s *ProjectStore) MarkExported(module string, names []string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	set, ok := s.exports[module]
	if !ok {
		set = make(map[string]bool, len(names))
		s.exports[module] = set
	}
	for _, n := range names {
		set[n] = true
	}
}

// MarkDynamicAll records that module's __all__ is built from something
// other than a literal list/tuple of string constants (e.g. a
// comprehension or a call to sorted(...)). Per the resolved Open
// Question, only literal __all__ assignments are honored for exports;
// a dynamic __all__ instead marks every top-level definition in the
// module as referenced, since cytoscnpy cannot evaluate it.
func (s *ProjectStore) MarkDynamicAll(module string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.hasDynamicAll[module] = true
}

// HasDynamicAll reports whether module's __all__ could not be
// statically evaluated.
func (s *ProjectStore) HasDynamicAll(module string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.hasDynamicAll[module]
}

// IsExported reports whether simpleName is listed in module's literal
// __all__.
func (s *ProjectStore) IsExported(module, simpleName string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.exports[module][simpleName]
}

// MarkDynamicModule records that module contains a dynamic-access
// pattern (eval, exec, getattr with a non-literal name, importlib,
// globals()/locals() mutation) that defeats static reference counting.
// Every definition in a dynamic module is treated as potentially
// referenced and excluded from unused reporting (spec §4.5).
func (s *ProjectStore) MarkDynamicModule(module string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.dynamicModules[module] = true
}

// IsDynamicModule reports whether module was marked dynamic.
func (s *ProjectStore) IsDynamicModule(module string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.dynamicModules[module]
}

// DynamicModules returns the sorted list of modules marked dynamic.
func (s *ProjectStore) DynamicModules() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]string, 0, len(s.dynamicModules))
	for m := range s.dynamicModules {
		out = append(out, m)
	}
	sort.Strings(out)
	return out
}

// MarkPragmaSuppressed records that fqn carries an inline suppression
// comment (e.g. "# pragma: no cytoscnpy") and must never be reported
// unused regardless of its computed confidence.
func (s *ProjectStore) MarkPragmaSuppressed(fqn string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.pragmaIgnored[fqn] = true
}

// IsPragmaSuppressed reports whether fqn was pragma-suppressed.
func (s *ProjectStore) IsPragmaSuppressed(fqn string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.pragmaIgnored[fqn]
}

// MarkForcedUnused records that fqn must be reported unused regardless
// of its own confidence or reference count, because class-method linking
// (spec §4.5) flagged its owning class as unused.
func (s *ProjectStore) MarkForcedUnused(fqn string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.forcedUnused[fqn] = true
}

// IsForcedUnused reports whether fqn was flagged via class-method linking.
func (s *ProjectStore) IsForcedUnused(fqn string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.forcedUnused[fqn]
}

// ShadowedFQNs returns the FQNs that were redefined and shadowed during
// merge, in the order they were shadowed.
func (s *ProjectStore) ShadowedFQNs() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]string, len(s.shadowed))
	copy(out, s.shadowed)
	return out
}

// AllDefinitions returns every surviving (non-shadowed) definition,
// sorted by file then start line then FQN for deterministic output.
func (s *ProjectStore) AllDefinitions() []*types.Definition {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]*types.Definition, 0, len(s.definitions))
	for _, def := range s.definitions {
		out = append(out, def)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].File != out[j].File {
			return out[i].File < out[j].File
		}
		if out[i].StartLine != out[j].StartLine {
			return out[i].StartLine < out[j].StartLine
		}
		return out[i].FQN < out[j].FQN
	})
	return out
}
