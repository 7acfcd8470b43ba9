package lsp

import (
	"go.lsp.dev/protocol"

	"github.com/amunlang/amun/pkg/diag"
)

// translateDiagnostics converts every diagnostic in diags whose span
// resolves to path into a protocol.Diagnostic. Amun diagnostics are
// already expressed in Amun source coordinates, so there is nothing to
// translate — only convert and filter to the document being published
// for.
func translateDiagnostics(diags *diag.Engine, path string) []protocol.Diagnostic {
	all := diags.All()
	out := make([]protocol.Diagnostic, 0, len(all))
	for _, d := range all {
		resolved, ok := diags.ResolvePath(d.Span.FileID)
		if !ok || resolved != path {
			continue
		}
		out = append(out, protocol.Diagnostic{
			Range:    rangeFromSpan(d),
			Severity: severityFromLevel(d.Level),
			Source:   "amun",
			Message:  d.Message,
		})
	}
	return out
}

// rangeFromSpan converts a 1-indexed line/column diagnostic span into a
// 0-indexed LSP protocol.Range.
func rangeFromSpan(d diag.Diagnostic) protocol.Range {
	line := uint32(0)
	if d.Span.Line > 0 {
		line = uint32(d.Span.Line - 1)
	}
	start := uint32(0)
	if d.Span.ColStart > 0 {
		start = uint32(d.Span.ColStart - 1)
	}
	end := start
	if d.Span.ColEnd > d.Span.ColStart {
		end = uint32(d.Span.ColEnd - 1)
	} else {
		end = start + 1
	}
	return protocol.Range{
		Start: protocol.Position{Line: line, Character: start},
		End:   protocol.Position{Line: line, Character: end},
	}
}

func severityFromLevel(level diag.Level) protocol.DiagnosticSeverity {
	if level == diag.Error {
		return protocol.DiagnosticSeverityError
	}
	return protocol.DiagnosticSeverityWarning
}
