package resolver

import (
	"testing"

	"github.com/cytoscnpy/cytoscnpy/internal/model"
	"github.com/cytoscnpy/cytoscnpy/pkg/types"
)

func addDef(store *model.ProjectStore, fqn, module string) {
	store.AddDefinition(&types.Definition{
		Kind:   types.KindFunction,
		FQN:    fqn,
		Module: module,
	})
}

func TestResolveLocalVariable(t *testing.T) {
	store := model.NewProjectStore()
	r := New(store)

	ref := types.Reference{
		Name: "x",
		Context: types.ResolutionContext{
			Module:    "app",
			LocalVars: map[string]string{"x": "app.f.x"},
		},
	}
	fqn, ok := r.Resolve(ref)
	if !ok || fqn != "app.f.x" {
		t.Errorf("Resolve() = (%q, %v), want (app.f.x, true)", fqn, ok)
	}
}

func TestResolveClassStackInnermostWins(t *testing.T) {
	store := model.NewProjectStore()
	addDef(store, "app.Outer.Inner.m", "app")
	addDef(store, "app.Outer.m", "app")
	r := New(store)
	r.Build()

	ref := types.Reference{
		Name: "m",
		Context: types.ResolutionContext{
			Module:     "app",
			ClassStack: []string{"Outer", "Inner"},
		},
	}
	fqn, ok := r.Resolve(ref)
	if !ok || fqn != "app.Outer.Inner.m" {
		t.Errorf("Resolve() = (%q, %v), want (app.Outer.Inner.m, true)", fqn, ok)
	}
}

func TestResolveModuleGlobal(t *testing.T) {
	store := model.NewProjectStore()
	addDef(store, "app.helper", "app")
	r := New(store)
	r.Build()

	ref := types.Reference{Name: "helper", Context: types.ResolutionContext{Module: "app"}}
	fqn, ok := r.Resolve(ref)
	if !ok || fqn != "app.helper" {
		t.Errorf("Resolve() = (%q, %v), want (app.helper, true)", fqn, ok)
	}
}

func TestResolveAliasSubstitution(t *testing.T) {
	store := model.NewProjectStore()
	addDef(store, "pkg.util.helper", "pkg.util")
	r := New(store)
	r.Build()

	ref := types.Reference{
		Name: "h",
		Context: types.ResolutionContext{
			Module:  "app",
			Aliases: map[string]string{"h": "pkg.util.helper"},
		},
	}
	fqn, ok := r.Resolve(ref)
	if !ok || fqn != "pkg.util.helper" {
		t.Errorf("Resolve() = (%q, %v), want (pkg.util.helper, true)", fqn, ok)
	}
}

func TestResolveCrossModuleSuffixForClassQualifiedSelfRef(t *testing.T) {
	store := model.NewProjectStore()
	addDef(store, "app.Greeter.name", "app")
	r := New(store)
	r.Build()

	ref := types.Reference{Name: "Greeter.name", Context: types.ResolutionContext{Module: "other"}}
	fqn, ok := r.Resolve(ref)
	if !ok || fqn != "app.Greeter.name" {
		t.Errorf("Resolve() = (%q, %v), want (app.Greeter.name, true)", fqn, ok)
	}
}

func TestResolveUnresolvedReturnsFalse(t *testing.T) {
	store := model.NewProjectStore()
	r := New(store)
	r.Build()

	ref := types.Reference{Name: "missing", Context: types.ResolutionContext{Module: "app"}}
	if _, ok := r.Resolve(ref); ok {
		t.Error("expected unresolved reference to return false")
	}
}

func TestResolveAllRecordsReferenceCounts(t *testing.T) {
	store := model.NewProjectStore()
	addDef(store, "app.helper", "app")
	r := New(store)

	refs := []types.Reference{
		{Name: "helper", Context: types.ResolutionContext{Module: "app"}},
		{Name: "helper", Context: types.ResolutionContext{Module: "app"}},
		{Name: "missing", Context: types.ResolutionContext{Module: "app"}},
	}
	resolved := r.ResolveAll(refs)
	if resolved != 2 {
		t.Errorf("ResolveAll() = %d, want 2", resolved)
	}
	if got := store.ReferenceCount("app.helper"); got != 2 {
		t.Errorf("ReferenceCount(app.helper) = %d, want 2", got)
	}
}
