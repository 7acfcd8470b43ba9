package symbolmap

import (
	"encoding/json"
	"fmt"

	"github.com/go-sourcemap/sourcemap"
)

// Position is a resolved source location, analogous to go/token's
// Position but independent of go/token since Amun sources aren't Go
// files.
type Position struct {
	File   string
	Line   int
	Column int
}

// Consumer reads back a standard Source Map v3 document — the kind a
// real backend would emit linking generated object/IR positions to
// Amun source — and resolves either a generated position or a mangled
// symbol name to its origin. Built on github.com/go-sourcemap/sourcemap
// for mapping decode; name lookups are resolved once at parse time
// since that library has no reverse-by-name API of its own.
type Consumer struct {
	sm     *sourcemap.Consumer
	byName map[string]Position
}

// namesOnly mirrors just the "names" field of the artifact so Consumer
// can walk generated lines by index without depending on the consuming
// library exposing the names table itself.
type namesOnly struct {
	Names []string `json:"names"`
}

// NewConsumer parses a standard Source Map v3 document produced by
// Generate.
func NewConsumer(data []byte) (*Consumer, error) {
	sm, err := sourcemap.Parse("", data)
	if err != nil {
		return nil, fmt.Errorf("parsing source map: %w", err)
	}

	var n namesOnly
	if err := json.Unmarshal(data, &n); err != nil {
		return nil, fmt.Errorf("reading symbol map names: %w", err)
	}

	c := &Consumer{sm: sm, byName: make(map[string]Position, len(n.Names))}
	for i, name := range n.Names {
		file, _, line, col, ok := sm.Source(i, 0)
		if !ok {
			continue
		}
		c.byName[name] = Position{File: file, Line: line + 1, Column: col + 1}
	}
	return c, nil
}

// Resolve looks up the original position for a 1-indexed generated
// line/column, the same 1-based convention token.Span uses.
func (c *Consumer) Resolve(line, column int) (Position, error) {
	file, _, srcLine, srcCol, ok := c.sm.Source(line-1, column-1)
	if !ok {
		return Position{}, fmt.Errorf("no mapping found for generated position %d:%d", line, column)
	}
	return Position{File: file, Line: srcLine + 1, Column: srcCol + 1}, nil
}

// ResolveName looks up the source span a mangled symbol name was
// generated from, the operation `amun resolve` exposes on the CLI.
func (c *Consumer) ResolveName(mangled string) (Position, error) {
	pos, ok := c.byName[mangled]
	if !ok {
		return Position{}, fmt.Errorf("no symbol named %q in symbol map", mangled)
	}
	return pos, nil
}
