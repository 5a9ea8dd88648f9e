package discovery

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"
)

// CellMapping records which notebook cell (and line within that cell) a
// line of flattened source came from, so findings can be reported against
// the original notebook structure.
type CellMapping struct {
	FlattenedLine int
	CellIndex     int
	CellLine      int
}

type notebookCell struct {
	CellType string          `json:"cell_type"`
	Source   json.RawMessage `json:"source"`
}

type notebookDocument struct {
	Cells []notebookCell `json:"cells"`
}

// ReadSource reads a file's content for parsing. Plain .py files are
// returned verbatim. .ipynb files have their "code" cells concatenated in
// order (spec §4.1), separated by a blank line so line numbers stay
// monotonic across cell boundaries; the returned CellMapping lets callers
// translate a flattened line number back to (cell index, line in cell).
func ReadSource(path string, isNotebook bool) ([]byte, []CellMapping, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, nil, err
	}
	if !isNotebook {
		return raw, nil, nil
	}
	return flattenNotebook(raw)
}

func flattenNotebook(raw []byte) ([]byte, []CellMapping, error) {
	var doc notebookDocument
	if err := json.Unmarshal(raw, &doc); err != nil {
		return nil, nil, fmt.Errorf("parse notebook: %w", err)
	}

	var b strings.Builder
	var mapping []CellMapping
	flattenedLine := 1

	for cellIdx, cell := range doc.Cells {
		if cell.CellType != "code" {
			continue
		}
		lines, err := cellSourceLines(cell.Source)
		if err != nil {
			return nil, nil, fmt.Errorf("cell %d: %w", cellIdx, err)
		}
		for cellLine, line := range lines {
			b.WriteString(line)
			b.WriteByte('\n')
			mapping = append(mapping, CellMapping{
				FlattenedLine: flattenedLine,
				CellIndex:     cellIdx,
				CellLine:      cellLine + 1,
			})
			flattenedLine++
		}
		b.WriteByte('\n')
		flattenedLine++
	}

	return []byte(b.String()), mapping, nil
}

// cellSourceLines normalizes a notebook cell's "source" field, which the
// .ipynb format allows to be either a single string or a list of strings
// (one per line, each typically already newline-terminated).
func cellSourceLines(raw json.RawMessage) ([]string, error) {
	var asString string
	if err := json.Unmarshal(raw, &asString); err == nil {
		return strings.Split(strings.TrimRight(asString, "\n"), "\n"), nil
	}

	var asList []string
	if err := json.Unmarshal(raw, &asList); err == nil {
		joined := strings.Join(asList, "")
		return strings.Split(strings.TrimRight(joined, "\n"), "\n"), nil
	}

	return nil, fmt.Errorf("unsupported cell source encoding")
}
