// Package heuristics applies the project-merge confidence/reference
// penalty table of spec §4.5 to every surviving definition in a
// model.ProjectStore, then selects the final set of unused findings.
//
// The table mixes two different kinds of signal: some rows adjust a
// definition's confidence (a probability that flagging it would be a
// correct finding), others assert that the definition is, in effect,
// referenced (an `__all__` export, a visitor-convention method name, a
// framework-wired handler). This package keeps those as two channels:
// confidence deltas are summed and clamped to [0,100] exactly once,
// after every row has run, per the resolved compounding-arithmetic
// question; "add a (synthetic) reference" rows call
// model.ProjectStore.AddReferences directly, which is the same counter
// real resolved references land in, so a definition judged unused must
// have zero references of either kind.
package heuristics

import (
	"strings"

	"github.com/cytoscnpy/cytoscnpy/internal/model"
	"github.com/cytoscnpy/cytoscnpy/pkg/types"
)

// DefaultThreshold is the confidence an unused finding must meet or
// exceed when the configuration does not override it (spec §4.5).
const DefaultThreshold = 60

var frameworkDecoratorSignals = []string{
	".route", ".get", ".post", ".put", ".delete", ".patch", // Flask/FastAPI route decorators
	"app.route", "router.get", "router.post",
	"receiver", // django signal receiver decorator
}

// frameworkBaseClassSignals names base classes whose subclasses are
// instantiated by a framework rather than by application code, so an
// apparently-unreferenced subclass is still in use.
var frameworkBaseClassSignals = map[string]bool{
	"BaseModel": true, // pydantic
	"Model":     true, // django.db.models.Model
}

// Apply walks every surviving definition in store and applies the
// §4.5 penalty table in order, then performs class-method linking using
// threshold as the unused-classification cutoff. mainBlockRefs is the
// per-module list of names referenced from an
// `if __name__ == "__main__":` block, as collected by internal/merge.
func Apply(store *model.ProjectStore, mainBlockRefs map[string][]string, threshold int) {
	recordEntryPointReferences(store, mainBlockRefs)

	for _, def := range store.AllDefinitions() {
		applyRow(store, def)
	}

	linkUnusedClassMethods(store, threshold)
}

// recordEntryPointReferences resolves each name referenced from a
// module's `if __name__ == "__main__":` block against that module's
// own definitions and records a real reference for it. Names referenced
// from the entry-point block are almost always the public surface the
// script actually runs, and static resolution inside the block already
// produces ordinary references for anything the resolver can bind; this
// pass guarantees the module-level candidate is credited even when the
// call site names it indirectly (e.g. a decorator-registered CLI
// command looked up by string elsewhere in the block).
func recordEntryPointReferences(store *model.ProjectStore, mainBlockRefs map[string][]string) {
	for module, names := range mainBlockRefs {
		for _, name := range names {
			if def, ok := store.Definition(module + "." + name); ok {
				store.AddReferences(def.FQN, 1)
			}
		}
	}
}

func applyRow(store *model.ProjectStore, def *types.Definition) {
	delta := 0

	// Pragma-ignored line: set to 0.
	if def.IsPragmaSuppressed || store.IsPragmaSuppressed(def.FQN) {
		def.Confidence = 0
		return
	}

	// self/cls parameter: set to 0.
	if def.Kind == types.KindParameter && (def.SimpleName == "self" || def.SimpleName == "cls") {
		def.Confidence = 0
		return
	}

	// Declaring module is dynamic (eval/exec/globals seen) and kind is
	// one the table names: set to 0.
	if store.IsDynamicModule(def.Module) && dynamicModuleEligible(def.Kind) {
		def.Confidence = 0
		return
	}

	// Class name ends in Settings/Config and attribute is an uppercase
	// constant: set to 0.
	if def.IsSettingsConst {
		def.Confidence = 0
		return
	}

	// TYPE_CHECKING-only block, referenced only in annotations elsewhere:
	// never flag. Static annotation references already land in the same
	// reference counter, so this reinforces that outcome explicitly.
	if def.IsTypeCheckingOnly && store.ReferenceCount(def.FQN) > 0 {
		store.AddReferences(def.FQN, 20)
	}

	// Dunder method.
	if def.IsDunder {
		delta -= 40
	}

	// Method name matches a visitor convention: never flag.
	if def.IsVisitorMethod {
		store.AddReferences(def.FQN, 1)
	}

	// Dataclass field: +1 reference.
	if def.Kind == types.KindClassAttribute && def.IsDataclassField {
		store.AddReferences(def.FQN, 1)
	}

	// Listed in its module's __all__: add a synthetic reference.
	if store.IsExported(def.Module, def.SimpleName) {
		def.IsExportedViaAll = true
		store.AddReferences(def.FQN, 1)
	}

	// Framework signals: add a synthetic reference per matched pattern.
	if matches := frameworkSignalCount(def); matches > 0 {
		def.IsFrameworkSignaled = true
		store.AddReferences(def.FQN, matches)
	}

	def.Confidence = clamp(def.Confidence+delta, 0, 100)
}

func dynamicModuleEligible(kind types.DefinitionKind) bool {
	switch kind {
	case types.KindFunction, types.KindMethod, types.KindClass, types.KindClassAttribute:
		return true
	default:
		return false
	}
}

// frameworkSignalCount returns how many framework-usage patterns def
// matches: a route/signal decorator on a function or method, or a base
// class a web/ORM framework instantiates outside application code.
func frameworkSignalCount(def *types.Definition) int {
	count := 0
	if def.Kind == types.KindFunction || def.Kind == types.KindMethod {
		for _, dec := range def.Decorators {
			if hasFrameworkDecoratorSignal(dec) {
				count++
			}
		}
	}
	if def.Kind == types.KindClass {
		for _, base := range def.BaseClasses {
			if frameworkBaseClassSignals[base] {
				count++
			}
		}
	}
	return count
}

func hasFrameworkDecoratorSignal(decorator string) bool {
	for _, sig := range frameworkDecoratorSignals {
		if strings.Contains(decorator, sig) {
			return true
		}
	}
	return false
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// linkUnusedClassMethods implements the class-method-linking rule: if a
// Class definition ends up judged unused, every method defined directly
// in that class is judged unused too, regardless of its own confidence
// or reference count, since an instance of a never-constructed class
// can never dispatch to any of its methods.
func linkUnusedClassMethods(store *model.ProjectStore, threshold int) {
	defs := store.AllDefinitions()
	for _, def := range defs {
		if def.Kind != types.KindClass || !IsUnused(store, def, threshold) {
			continue
		}
		prefix := def.FQN + "."
		for _, member := range defs {
			if member.Kind != types.KindMethod {
				continue
			}
			if !strings.HasPrefix(member.FQN, prefix) {
				continue
			}
			if strings.Contains(strings.TrimPrefix(member.FQN, prefix), ".") {
				continue // not a direct member, e.g. a nested class's method
			}
			store.MarkForcedUnused(member.FQN)
		}
	}
}

// IsUnused reports whether def should be reported as an unused finding:
// it has zero effective references, meets the confidence threshold, and
// was not pragma-suppressed or shadowed by a later redefinition.
func IsUnused(store *model.ProjectStore, def *types.Definition, threshold int) bool {
	if def.Shadowed {
		return false
	}
	if store.IsPragmaSuppressed(def.FQN) {
		return false
	}
	if store.IsForcedUnused(def.FQN) {
		return true
	}
	return store.ReferenceCount(def.FQN) == 0 && def.Confidence >= threshold
}
