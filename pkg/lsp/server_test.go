package lsp

import (
	"os"
	"path/filepath"
	"testing"

	"go.lsp.dev/protocol"
	"go.lsp.dev/uri"

	"github.com/amunlang/amun/pkg/diag"
	"github.com/amunlang/amun/pkg/source"
	"github.com/amunlang/amun/pkg/token"
)

func spanAt(fileID, line, colStart, colEnd int) token.Span {
	return token.Span{FileID: fileID, Line: line, ColStart: colStart, ColEnd: colEnd}
}

func TestNewServerRequiresLogger(t *testing.T) {
	if _, err := NewServer(ServerConfig{}); err == nil {
		t.Fatalf("expected an error when no Logger is configured")
	}
}

func TestDocumentStoreWriteThroughRoundTrips(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "main.amun")
	if err := os.WriteFile(path, []byte("fun main() -> i32 = 0;\n"), 0o644); err != nil {
		t.Fatalf("seeding fixture: %v", err)
	}
	docURI := uri.File(path)

	store := newDocumentStore()
	store.open(protocol.DocumentURI(docURI), "fun main() -> i32 = 1;\n")

	resolved, err := store.writeThrough(protocol.DocumentURI(docURI))
	if err != nil {
		t.Fatalf("writeThrough: %v", err)
	}
	data, err := os.ReadFile(resolved)
	if err != nil {
		t.Fatalf("reading back %s: %v", resolved, err)
	}
	if string(data) != "fun main() -> i32 = 1;\n" {
		t.Fatalf("expected the in-memory edit to be written through, got %q", data)
	}

	store.close(protocol.DocumentURI(docURI))
	if _, err := store.writeThrough(protocol.DocumentURI(docURI)); err == nil {
		t.Fatalf("expected writeThrough to fail for a closed document")
	}
}

func TestTranslateDiagnosticsFiltersByPathAndConvertsSeverity(t *testing.T) {
	sources := source.New()
	diags := diag.New(sources)
	diags.Color = false

	mainID := sources.RegisterSourcePath("/tmp/main.amun")
	otherID := sources.RegisterSourcePath("/tmp/other.amun")

	diags.Errorf(spanAt(mainID, 3, 5, 8), "undefined symbol 'x'")
	diags.Warnf(spanAt(mainID, 7, 1, 2), "unused variable 'y'")
	diags.Warnf(spanAt(otherID, 1, 1, 2), "unused variable 'z'")

	got := translateDiagnostics(diags, "/tmp/main.amun")
	if len(got) != 2 {
		t.Fatalf("expected 2 diagnostics scoped to main.amun, got %d", len(got))
	}

	var sawError, sawWarning bool
	for _, d := range got {
		switch d.Severity {
		case protocol.DiagnosticSeverityError:
			sawError = true
			if d.Range.Start.Line != 2 || d.Range.Start.Character != 4 {
				t.Fatalf("expected a 0-indexed range, got %+v", d.Range)
			}
		case protocol.DiagnosticSeverityWarning:
			sawWarning = true
		}
		if d.Source != "amun" {
			t.Fatalf("expected diagnostic source %q, got %q", "amun", d.Source)
		}
	}
	if !sawError || !sawWarning {
		t.Fatalf("expected both an error and a warning diagnostic, got %+v", got)
	}
}

func TestTranslateDiagnosticsPromotesWarningsAsErrorsBeforeTranslation(t *testing.T) {
	sources := source.New()
	diags := diag.New(sources)
	diags.Color = false
	diags.WarningsAsErrors = true

	id := sources.RegisterSourcePath("/tmp/main.amun")
	diags.Warnf(spanAt(id, 1, 1, 2), "unused variable 'y'")

	got := translateDiagnostics(diags, "/tmp/main.amun")
	if len(got) != 1 {
		t.Fatalf("expected 1 diagnostic, got %d", len(got))
	}
	if got[0].Severity != protocol.DiagnosticSeverityError {
		t.Fatalf("expected the promoted warning to publish as an error, got %v", got[0].Severity)
	}
}
