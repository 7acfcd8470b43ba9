package symbolmap

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/amunlang/amun/pkg/source"
)

// artifact is a standard Source Map v3 document (version/file/sources/
// names/mappings). Each recorded symbol gets its own generated line,
// holding one segment at generated column 0; Names[i] is the mangled
// name for generated line i, making the document parseable by any V3
// consumer (github.com/go-sourcemap/sourcemap included) while still
// supporting exact name -> span lookups.
type artifact struct {
	Version  int      `json:"version"`
	File     string   `json:"file"`
	Sources  []string `json:"sources"`
	Names    []string `json:"names"`
	Mappings string   `json:"mappings"`
}

// Generate serializes m into the JSON debug artifact, resolving each
// entry's FileID to a path through sources.
func Generate(m *SymbolMap, outputFile string, sources *source.Manager) ([]byte, error) {
	a := artifact{Version: 3, File: outputFile}

	sourceIndex := make(map[string]int)
	var lines []string
	prevSource, prevLine, prevCol, prevName := 0, 0, 0, 0

	for i, e := range m.Entries() {
		path, _ := sources.ResolveSourcePath(e.Span.FileID)
		idx, ok := sourceIndex[path]
		if !ok {
			idx = len(a.Sources)
			sourceIndex[path] = idx
			a.Sources = append(a.Sources, path)
		}
		a.Names = append(a.Names, e.Mangled)

		srcLine := e.Span.Line - 1
		srcCol := e.Span.ColStart - 1
		segment := encodeVLQSegment([]int{
			0, // generated column, always 0: one segment per line
			idx - prevSource,
			srcLine - prevLine,
			srcCol - prevCol,
			i - prevName,
		})
		prevSource, prevLine, prevCol, prevName = idx, srcLine, srcCol, i

		lines = append(lines, segment)
	}
	a.Mappings = strings.Join(lines, ";")

	data, err := json.MarshalIndent(a, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshaling symbol map: %w", err)
	}
	return data, nil
}
