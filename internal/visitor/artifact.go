// Package visitor walks a parsed Python file's Tree-sitter syntax tree
// once and emits the per-file artifact the resolver and merge stages
// consume: definitions, references, exports, and dynamic-module and
// pragma-suppression markers (spec §4.3).
package visitor

import "github.com/cytoscnpy/cytoscnpy/pkg/types"

// FileArtifact is everything one file's traversal produces. It is
// self-contained and shared-nothing: the orchestrator builds one per
// file on a worker goroutine, and only the serial merge stage (internal
// /merge) touches the shared project store.
type FileArtifact struct {
	File   string
	Module string

	Definitions []*types.Definition
	References  []types.Reference

	// LiteralExports are the string-constant entries of a literal
	// __all__ = [...] / (...) assignment. DynamicAll is set instead
	// when __all__ is assigned from anything else.
	LiteralExports []string
	DynamicAll     bool

	// Dynamic is set when the file uses eval/exec/globals()-mutation
	// style dynamic access anywhere, per spec §4.3.
	Dynamic bool

	// PragmaLines holds 1-based source lines carrying an inline
	// suppression comment.
	PragmaLines map[int]bool

	// MainBlockRefs holds the simple/dotted names referenced from an
	// `if __name__ == "__main__":` block, which the heuristics engine
	// treats as entry-point usages (spec §4.5).
	MainBlockRefs []string

	ParseError *types.ParseError
}
