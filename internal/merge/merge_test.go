package merge

import (
	"testing"

	"github.com/cytoscnpy/cytoscnpy/internal/model"
	"github.com/cytoscnpy/cytoscnpy/internal/visitor"
	"github.com/cytoscnpy/cytoscnpy/pkg/types"
)

func TestMergeAppliesDeterministicOrderAndShadowing(t *testing.T) {
	store := model.NewProjectStore()

	artB := &visitor.FileArtifact{
		Module: "pkg.b",
		File:   "pkg/b.py",
		Definitions: []*types.Definition{
			{Kind: types.KindFunction, FQN: "pkg.b.foo", Module: "pkg.b", File: "pkg/b.py"},
		},
	}
	artA := &visitor.FileArtifact{
		Module: "pkg.a",
		File:   "pkg/a.py",
		Definitions: []*types.Definition{
			{Kind: types.KindFunction, FQN: "pkg.a.foo", Module: "pkg.a", File: "pkg/a.py", StartLine: 1},
			{Kind: types.KindFunction, FQN: "pkg.a.foo", Module: "pkg.a", File: "pkg/a.py", StartLine: 10},
		},
	}

	result := Merge(store, []*visitor.FileArtifact{artB, artA})

	if _, ok := store.Definition("pkg.a.foo"); !ok {
		t.Error("expected pkg.a.foo to be present after merge")
	}
	if _, ok := store.Definition("pkg.b.foo"); !ok {
		t.Error("expected pkg.b.foo to be present after merge")
	}
	if shadowed := store.ShadowedFQNs(); len(shadowed) != 1 || shadowed[0] != "pkg.a.foo" {
		t.Errorf("ShadowedFQNs() = %v, want [pkg.a.foo] from the redefinition within pkg.a", shadowed)
	}
	if result.References != nil {
		t.Errorf("References = %v, want nil for artifacts with no references", result.References)
	}
}

func TestMergePropagatesExportsDynamicAndPragma(t *testing.T) {
	store := model.NewProjectStore()

	art := &visitor.FileArtifact{
		Module:         "pkg.mod",
		File:           "pkg/mod.py",
		LiteralExports: []string{"Foo"},
		Dynamic:        true,
		Definitions: []*types.Definition{
			{Kind: types.KindFunction, FQN: "pkg.mod.Foo", Module: "pkg.mod", IsPragmaSuppressed: true},
		},
		References:    []types.Reference{{Name: "Foo", Context: types.ResolutionContext{Module: "pkg.mod"}}},
		MainBlockRefs: []string{"Foo"},
	}

	result := Merge(store, []*visitor.FileArtifact{art})

	if !store.IsExported("pkg.mod", "Foo") {
		t.Error("expected Foo to be exported")
	}
	if !store.IsDynamicModule("pkg.mod") {
		t.Error("expected pkg.mod to be marked dynamic")
	}
	if !store.IsPragmaSuppressed("pkg.mod.Foo") {
		t.Error("expected pkg.mod.Foo to be pragma-suppressed at the store level")
	}
	if len(result.References) != 1 {
		t.Errorf("References = %v, want 1 entry", result.References)
	}
	if got := result.MainBlockRefs["pkg.mod"]; len(got) != 1 || got[0] != "Foo" {
		t.Errorf("MainBlockRefs[pkg.mod] = %v, want [Foo]", got)
	}
}
