// Package merge folds the per-file artifacts the visitor produces into
// a single project-wide model.ProjectStore, in the deterministic order
// spec §4.5 requires (by module path) so that which definition survives
// a redefinition never depends on worker-goroutine scheduling.
package merge

import (
	"sort"

	"github.com/cytoscnpy/cytoscnpy/internal/model"
	"github.com/cytoscnpy/cytoscnpy/internal/visitor"
	"github.com/cytoscnpy/cytoscnpy/pkg/types"
)

// Result is what survives a Merge call besides the store mutations
// themselves: the flattened reference list for the resolver, and the
// per-module names referenced from an `if __name__ == "__main__":`
// block, which heuristics treats as guaranteed entry-point usages
// regardless of whether the resolver could bind them (spec §4.5).
type Result struct {
	References    []types.Reference
	MainBlockRefs map[string][]string
}

// Merge applies artifacts to store in module-path order and returns the
// concatenated reference list for the resolver to run over afterward.
func Merge(store *model.ProjectStore, artifacts []*visitor.FileArtifact) Result {
	sorted := make([]*visitor.FileArtifact, len(artifacts))
	copy(sorted, artifacts)
	sort.Slice(sorted, func(i, j int) bool {
		if sorted[i].Module != sorted[j].Module {
			return sorted[i].Module < sorted[j].Module
		}
		return sorted[i].File < sorted[j].File
	})

	result := Result{MainBlockRefs: make(map[string][]string)}
	for _, art := range sorted {
		mergeOne(store, art)
		result.References = append(result.References, art.References...)
		if len(art.MainBlockRefs) > 0 {
			result.MainBlockRefs[art.Module] = append(result.MainBlockRefs[art.Module], art.MainBlockRefs...)
		}
	}
	return result
}

func mergeOne(store *model.ProjectStore, art *visitor.FileArtifact) {
	for _, def := range art.Definitions {
		store.AddDefinition(def)
		if def.IsPragmaSuppressed {
			store.MarkPragmaSuppressed(def.FQN)
		}
	}

	if len(art.LiteralExports) > 0 {
		store.MarkExported(art.Module, art.LiteralExports)
	}
	if art.DynamicAll {
		store.MarkDynamicAll(art.Module)
	}
	if art.Dynamic {
		store.MarkDynamicModule(art.Module)
	}
}
