package model

import (
	"testing"

	"github.com/cytoscnpy/cytoscnpy/pkg/types"
)

func def(fqn, module string, line int) *types.Definition {
	return &types.Definition{
		Kind:       types.KindFunction,
		FQN:        fqn,
		SimpleName: fqn,
		Module:     module,
		StartLine:  line,
	}
}

func TestAddDefinitionNoShadow(t *testing.T) {
	s := NewProjectStore()
	s.AddDefinition(def("pkg.mod.foo", "pkg.mod", 1))

	got, ok := s.Definition("pkg.mod.foo")
	if !ok {
		t.Fatal("expected definition to be found")
	}
	if got.Shadowed {
		t.Error("first definition should not be shadowed")
	}
	if len(s.ShadowedFQNs()) != 0 {
		t.Errorf("ShadowedFQNs() = %v, want empty", s.ShadowedFQNs())
	}
}

func TestAddDefinitionShadowsEarlier(t *testing.T) {
	s := NewProjectStore()
	first := def("pkg.mod.foo", "pkg.mod", 1)
	second := def("pkg.mod.foo", "pkg.mod", 10)

	s.AddDefinition(first)
	s.AddDefinition(second)

	if !first.Shadowed {
		t.Error("earlier definition should be marked Shadowed")
	}
	got, ok := s.Definition("pkg.mod.foo")
	if !ok || got.StartLine != 10 {
		t.Errorf("Definition() = %+v, ok=%v, want the second definition to survive", got, ok)
	}
	if shadowed := s.ShadowedFQNs(); len(shadowed) != 1 || shadowed[0] != "pkg.mod.foo" {
		t.Errorf("ShadowedFQNs() = %v, want [pkg.mod.foo]", shadowed)
	}
}

func TestDefinitionsInModulePreservesOrder(t *testing.T) {
	s := NewProjectStore()
	s.AddDefinition(def("pkg.mod.b", "pkg.mod", 5))
	s.AddDefinition(def("pkg.mod.a", "pkg.mod", 1))

	got := s.DefinitionsInModule("pkg.mod")
	want := []string{"pkg.mod.b", "pkg.mod.a"}
	if len(got) != len(want) || got[0] != want[0] || got[1] != want[1] {
		t.Errorf("DefinitionsInModule() = %v, want %v", got, want)
	}
}

func TestRecordReferenceAndCount(t *testing.T) {
	s := NewProjectStore()
	s.RecordReference("pkg.mod.foo")
	s.RecordReference("pkg.mod.foo")
	s.RecordReference("pkg.mod.bar")

	if got := s.ReferenceCount("pkg.mod.foo"); got != 2 {
		t.Errorf("ReferenceCount(foo) = %d, want 2", got)
	}
	if got := s.ReferenceCount("pkg.mod.bar"); got != 1 {
		t.Errorf("ReferenceCount(bar) = %d, want 1", got)
	}
	if got := s.ReferenceCount("pkg.mod.baz"); got != 0 {
		t.Errorf("ReferenceCount(baz) = %d, want 0", got)
	}
}

func TestMarkExportedAndIsExported(t *testing.T) {
	s := NewProjectStore()
	s.MarkExported("pkg.mod", []string{"Foo", "bar"})

	if !s.IsExported("pkg.mod", "Foo") {
		t.Error("Foo should be exported")
	}
	if s.IsExported("pkg.mod", "Baz") {
		t.Error("Baz should not be exported")
	}
	if s.IsExported("other.mod", "Foo") {
		t.Error("Foo should only be exported from its own module")
	}
}

func TestMarkDynamicAll(t *testing.T) {
	s := NewProjectStore()
	if s.HasDynamicAll("pkg.mod") {
		t.Error("HasDynamicAll should default to false")
	}
	s.MarkDynamicAll("pkg.mod")
	if !s.HasDynamicAll("pkg.mod") {
		t.Error("HasDynamicAll should be true after MarkDynamicAll")
	}
}

func TestMarkDynamicModule(t *testing.T) {
	s := NewProjectStore()
	s.MarkDynamicModule("pkg.dyn")

	if !s.IsDynamicModule("pkg.dyn") {
		t.Error("IsDynamicModule should be true after MarkDynamicModule")
	}
	if s.IsDynamicModule("pkg.static") {
		t.Error("unrelated module should not be dynamic")
	}
	if got := s.DynamicModules(); len(got) != 1 || got[0] != "pkg.dyn" {
		t.Errorf("DynamicModules() = %v, want [pkg.dyn]", got)
	}
}

func TestPragmaSuppression(t *testing.T) {
	s := NewProjectStore()
	if s.IsPragmaSuppressed("pkg.mod.foo") {
		t.Error("should default to not suppressed")
	}
	s.MarkPragmaSuppressed("pkg.mod.foo")
	if !s.IsPragmaSuppressed("pkg.mod.foo") {
		t.Error("should be suppressed after MarkPragmaSuppressed")
	}
}

func TestAllDefinitionsSortedDeterministically(t *testing.T) {
	s := NewProjectStore()
	a := def("pkg.b.foo", "pkg.b", 3)
	a.File = "pkg/b.py"
	b := def("pkg.a.foo", "pkg.a", 1)
	b.File = "pkg/a.py"
	c := def("pkg.a.bar", "pkg.a", 5)
	c.File = "pkg/a.py"

	s.AddDefinition(a)
	s.AddDefinition(b)
	s.AddDefinition(c)

	got := s.AllDefinitions()
	if len(got) != 3 {
		t.Fatalf("got %d definitions, want 3", len(got))
	}
	if got[0].FQN != "pkg.a.foo" || got[1].FQN != "pkg.a.bar" || got[2].FQN != "pkg.b.foo" {
		t.Errorf("AllDefinitions() order = %v, want a.py before b.py, sorted by line within a file", []string{got[0].FQN, got[1].FQN, got[2].FQN})
	}
}
