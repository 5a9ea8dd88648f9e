// Package parser wraps the pooled Tree-sitter Python parser used to build a
// syntax tree for each discovered source file (spec §4.2).
package parser

import (
	"context"
	"fmt"
	"sync"

	tree_sitter "github.com/tree-sitter/go-tree-sitter"
	tree_sitter_python "github.com/tree-sitter/tree-sitter-python/bindings/go"

	"github.com/cytoscnpy/cytoscnpy/pkg/types"
)

// ParsedFile holds a parsed Tree-sitter syntax tree together with the
// source bytes it was built from. Tree must be closed when no longer
// needed; Close or CloseAll do this for a single file or a batch.
type ParsedFile struct {
	Path    string
	RelPath string
	Tree    *tree_sitter.Tree
	Content []byte
}

// Close releases the underlying Tree-sitter tree.
func (pf *ParsedFile) Close() {
	if pf != nil && pf.Tree != nil {
		pf.Tree.Close()
	}
}

// CloseAll closes every tree in files. Safe to call with nil or an empty
// slice, and with files that are already partially closed.
func CloseAll(files []*ParsedFile) {
	for _, f := range files {
		f.Close()
	}
}

// TreeSitterParser holds a pooled Tree-sitter Python parser. Tree-sitter
// parsers are not thread-safe, so every parse is serialized through mu;
// the resulting Tree is safe to read concurrently once parsing returns.
type TreeSitterParser struct {
	mu     sync.Mutex
	parser *tree_sitter.Parser
}

// NewTreeSitterParser creates a pooled Python parser.
func NewTreeSitterParser() (*TreeSitterParser, error) {
	p := tree_sitter.NewParser()
	lang := tree_sitter.NewLanguage(tree_sitter_python.Language())
	if err := p.SetLanguage(lang); err != nil {
		p.Close()
		return nil, fmt.Errorf("set python language: %w", err)
	}
	return &TreeSitterParser{parser: p}, nil
}

// Close releases the pooled parser. Must be called when the parser is no
// longer needed.
func (p *TreeSitterParser) Close() {
	if p.parser != nil {
		p.parser.Close()
	}
}

// ParseFile parses content and returns the resulting tree. It is
// thread-safe; parsing is serialized internally.
func (p *TreeSitterParser) ParseFile(content []byte) (*tree_sitter.Tree, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	tree := p.parser.Parse(content, nil)
	if tree == nil {
		return nil, fmt.Errorf("tree-sitter parse returned nil")
	}
	return tree, nil
}

// ParseFileWithTimeout parses content, aborting with ctx.Err() if ctx is
// cancelled before parsing completes. Tree-sitter's Parse call has no
// built-in cancellation, so the parse runs in a goroutine and the result
// is raced against ctx.Done(); spec §5 leaves the per-file timeout
// implementation-defined.
func (p *TreeSitterParser) ParseFileWithTimeout(ctx context.Context, content []byte) (*tree_sitter.Tree, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	type result struct {
		tree *tree_sitter.Tree
		err  error
	}
	done := make(chan result, 1)

	go func() {
		tree, err := p.ParseFile(content)
		done <- result{tree, err}
	}()

	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case r := <-done:
		return r.tree, r.err
	}
}

// Parse reads path's already-loaded content and parses it into a
// ParsedFile, recording a ParseError (spec §4.2) if the resulting tree
// contains an ERROR or MISSING node.
func (p *TreeSitterParser) Parse(ctx context.Context, path, relPath string, content []byte) (*ParsedFile, *types.ParseError) {
	tree, err := p.ParseFileWithTimeout(ctx, content)
	if err != nil {
		return nil, &types.ParseError{
			File:    relPath,
			Line:    1,
			Message: err.Error(),
		}
	}

	pf := &ParsedFile{Path: path, RelPath: relPath, Tree: tree, Content: content}

	if node := FirstErrorNode(tree); node != nil {
		line := int(node.StartPosition().Row) + 1
		col := int(node.StartPosition().Column) + 1
		pf.Close()
		return nil, &types.ParseError{
			File:    relPath,
			Line:    line,
			Column:  col,
			Message: fmt.Sprintf("syntax error near %q", nodeSnippet(node, content)),
		}
	}

	return pf, nil
}

// FirstErrorNode returns the first ERROR or MISSING node found in tree's
// root, depth-first, or nil if the tree is clean. A Tree-sitter parse
// never itself "fails" the way a recursive-descent parser would — a
// malformed file still yields a tree, just one sprinkled with ERROR
// nodes, so this is how cytoscnpy detects unparsable source.
func FirstErrorNode(tree *tree_sitter.Tree) *tree_sitter.Node {
	return firstErrorNodeRec(tree.RootNode())
}

func firstErrorNodeRec(n *tree_sitter.Node) *tree_sitter.Node {
	kind := n.Kind()
	if kind == "ERROR" || kind == "MISSING" {
		return n
	}
	count := n.ChildCount()
	for i := uint(0); i < count; i++ {
		child := n.Child(i)
		if child == nil {
			continue
		}
		if found := firstErrorNodeRec(child); found != nil {
			return found
		}
	}
	return nil
}

func nodeSnippet(n *tree_sitter.Node, content []byte) string {
	start, end := n.StartByte(), n.EndByte()
	if int(end) > len(content) {
		end = uint(len(content))
	}
	if start >= end {
		return ""
	}
	snippet := string(content[start:end])
	if len(snippet) > 40 {
		snippet = snippet[:40] + "..."
	}
	return snippet
}
