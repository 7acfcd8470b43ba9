package lsp

import (
	"fmt"
	"os"
	"sync"

	"go.lsp.dev/protocol"
)

// documentStore tracks the in-memory text of every open document,
// keyed by its LSP URI. pkg/parser reads sources from disk, so there is
// no overlay filesystem to hand edits to directly; writeThrough flushes
// a document's current text to its backing path before a check runs.
type documentStore struct {
	mu   sync.Mutex
	text map[protocol.DocumentURI]string
}

func newDocumentStore() *documentStore {
	return &documentStore{text: make(map[protocol.DocumentURI]string)}
}

func (d *documentStore) open(uri protocol.DocumentURI, text string) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.text[uri] = text
}

func (d *documentStore) close(uri protocol.DocumentURI) {
	d.mu.Lock()
	defer d.mu.Unlock()
	delete(d.text, uri)
}

// writeThrough writes the document's current in-memory text to its
// backing file path and returns that path.
func (d *documentStore) writeThrough(uri protocol.DocumentURI) (string, error) {
	d.mu.Lock()
	text, ok := d.text[uri]
	d.mu.Unlock()
	if !ok {
		return "", fmt.Errorf("no open document for %s", uri)
	}

	path := uri.Filename()
	if err := os.WriteFile(path, []byte(text), 0o644); err != nil {
		return "", fmt.Errorf("writing %s: %w", path, err)
	}
	return path, nil
}
