package diag

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/amunlang/amun/pkg/source"
	"github.com/amunlang/amun/pkg/token"
)

func newTestEngine(t *testing.T, content string) (*Engine, token.Span) {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, "a.amun")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write fixture: %v", err)
	}

	sm := source.New()
	id := sm.RegisterSourcePath(path)
	engine := New(sm)
	engine.Color = false
	return engine, token.Span{FileID: id, Line: 1, ColStart: 1, ColEnd: 2}
}

func TestReportAndCount(t *testing.T) {
	e, span := newTestEngine(t, "var x int32;\n")
	e.Report(Error, span, "boom")
	if e.LevelCount(Error) != 1 {
		t.Fatalf("expected 1 error, got %d", e.LevelCount(Error))
	}
	if e.LevelCount(Warning) != 0 {
		t.Fatalf("expected 0 warnings")
	}
}

func TestSuppressWarnings(t *testing.T) {
	e, span := newTestEngine(t, "var x int32;\n")
	e.SuppressWarnings = true
	e.Report(Warning, span, "unused")
	if e.LevelCount(Warning) != 0 {
		t.Fatalf("expected suppressed warning to not be recorded")
	}
}

func TestWarningsAsErrors(t *testing.T) {
	e, span := newTestEngine(t, "var x int32;\n")
	e.WarningsAsErrors = true
	e.Report(Warning, span, "unused")
	if e.LevelCount(Warning) != 0 || e.LevelCount(Error) != 1 {
		t.Fatalf("expected warning promoted to error, got warnings=%d errors=%d", e.LevelCount(Warning), e.LevelCount(Error))
	}
}

func TestFormatIncludesCaret(t *testing.T) {
	e, span := newTestEngine(t, "var x int32;\n")
	e.Report(Error, span, "bad token")
	out := e.format(e.All()[0])
	if !containsAll(out, "Error in", "bad token", "^") {
		t.Fatalf("expected rendered diagnostic to contain header, message and caret, got:\n%s", out)
	}
}

func containsAll(s string, subs ...string) bool {
	for _, sub := range subs {
		if !contains(s, sub) {
			return false
		}
	}
	return true
}

func contains(s, sub string) bool {
	return len(sub) == 0 || (len(s) >= len(sub) && indexOf(s, sub) >= 0)
}

func indexOf(s, sub string) int {
	for i := 0; i+len(sub) <= len(s); i++ {
		if s[i:i+len(sub)] == sub {
			return i
		}
	}
	return -1
}
