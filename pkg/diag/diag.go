// Package diag implements the DiagnosticEngine (§4.6): per-level ordered
// diagnostic buffers, rendered rustc/amun-style with a source snippet and
// caret underline, colorized with lipgloss the same way pkg/ui styles
// build output.
package diag

import (
	"bufio"
	"fmt"
	"os"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/amunlang/amun/pkg/source"
	"github.com/amunlang/amun/pkg/token"
)

// Level is a diagnostic severity.
type Level int

const (
	Warning Level = iota
	Error
)

func (l Level) String() string {
	if l == Error {
		return "Error"
	}
	return "Warning"
}

// Diagnostic is a single reported message with its source span.
type Diagnostic struct {
	Level   Level
	Span    token.Span
	Message string
}

var (
	errorStyle   = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("9"))
	warningStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("11"))
	caretStyle   = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("9"))
	lineNoStyle  = lipgloss.NewStyle().Faint(true)
)

// Engine collects diagnostics per level and renders them against source
// text resolved through a SourceManager.
type Engine struct {
	sources *source.Manager
	byLevel map[Level][]Diagnostic

	// SuppressWarnings, when true, drops Report(Warning, ...) calls
	// entirely (CLI default: warnings suppressed unless -w is passed).
	SuppressWarnings bool
	// WarningsAsErrors promotes every reported warning to an error
	// (implies emitting warnings; -werr).
	WarningsAsErrors bool
	// Color controls whether Render emits ANSI styling; disabled
	// automatically for non-TTY output by callers.
	Color bool
}

// New returns an Engine that resolves spans via sources.
func New(sources *source.Manager) *Engine {
	return &Engine{
		sources: sources,
		byLevel: make(map[Level][]Diagnostic),
		Color:   true,
	}
}

// Report records a diagnostic. Warnings are dropped if SuppressWarnings
// is set; otherwise WarningsAsErrors promotes them to Error.
func (e *Engine) Report(level Level, span token.Span, message string) {
	if level == Warning {
		if e.SuppressWarnings {
			return
		}
		if e.WarningsAsErrors {
			level = Error
		}
	}
	e.byLevel[level] = append(e.byLevel[level], Diagnostic{Level: level, Span: span, Message: message})
}

// Errorf is a convenience wrapper around Report(Error, ...).
func (e *Engine) Errorf(span token.Span, format string, args ...any) {
	e.Report(Error, span, fmt.Sprintf(format, args...))
}

// Warnf is a convenience wrapper around Report(Warning, ...).
func (e *Engine) Warnf(span token.Span, format string, args ...any) {
	e.Report(Warning, span, fmt.Sprintf(format, args...))
}

// LevelCount reports the number of diagnostics currently buffered at
// level.
func (e *Engine) LevelCount(level Level) int {
	return len(e.byLevel[level])
}

// Diagnostics returns every diagnostic reported at level, in report
// order.
func (e *Engine) Diagnostics(level Level) []Diagnostic {
	return e.byLevel[level]
}

// All returns every diagnostic, warnings first, in report order.
func (e *Engine) All() []Diagnostic {
	all := make([]Diagnostic, 0, len(e.byLevel[Warning])+len(e.byLevel[Error]))
	all = append(all, e.byLevel[Warning]...)
	all = append(all, e.byLevel[Error]...)
	return all
}

// ResolvePath returns the source path a diagnostic's Span.FileID was
// registered under, for callers (the LSP server) that need to route a
// diagnostic to the document it belongs to without re-implementing
// Render's formatting.
func (e *Engine) ResolvePath(fileID int) (string, bool) {
	return e.sources.ResolveSourcePath(fileID)
}

// Render writes every buffered diagnostic to w in "LEVEL in file:line:col"
// + source-line + caret-underline form (§4.6, §7).
func (e *Engine) Render(w *os.File) {
	for _, d := range e.All() {
		fmt.Fprint(w, e.format(d))
	}
}

func (e *Engine) format(d Diagnostic) string {
	path, _ := e.sources.ResolveSourcePath(d.Span.FileID)

	levelLabel := d.Level.String()
	if e.Color {
		if d.Level == Error {
			levelLabel = errorStyle.Render(levelLabel)
		} else {
			levelLabel = warningStyle.Render(levelLabel)
		}
	}

	var b strings.Builder
	fmt.Fprintf(&b, "%s in %s:%d:%d: %s\n", levelLabel, path, d.Span.Line, d.Span.ColStart, d.Message)

	line, err := readLine(path, d.Span.Line)
	if err == nil {
		lineNo := fmt.Sprintf("%4d | ", d.Span.Line)
		if e.Color {
			lineNo = lineNoStyle.Render(lineNo)
		}
		fmt.Fprintf(&b, "%s%s\n", lineNo, line)

		indent := strings.Repeat(" ", max(0, d.Span.ColStart-1))
		width := d.Span.ColEnd - d.Span.ColStart
		if width < 1 {
			width = 1
		}
		caret := strings.Repeat("^", width)
		if e.Color {
			caret = caretStyle.Render(caret)
		}
		fmt.Fprintf(&b, "       %s%s\n", indent, caret)
	}

	return b.String()
}

// readLine re-reads a single 1-indexed line from disk, per the spec's
// diagnostic rendering contract (source lines are not retained past
// tokenizing, so the renderer reads them back from disk).
func readLine(path string, line int) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", err
	}
	defer f.Close()

	scanner := bufio.NewScanner(f)
	n := 0
	for scanner.Scan() {
		n++
		if n == line {
			return scanner.Text(), nil
		}
	}
	return "", fmt.Errorf("line %d not found in %s", line, path)
}

func max(a, b int) int {
	if a > b {
		return a
	}
	return b
}
