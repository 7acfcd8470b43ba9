// Package compiler wires the phases — SourceManager, Parser, Checker,
// Backend — into the three driver entry points §4.7 names:
// compile_source_code, check_source_code, and
// emit_llvm_ir_from_source_code. Structured logging lives here and
// nowhere else in the pipeline: the one place that narrates build
// progress, while the parsing and checking phases themselves stay
// silent.
package compiler

import (
	"fmt"
	"os"

	"go.uber.org/zap"

	"github.com/amunlang/amun/pkg/ast"
	"github.com/amunlang/amun/pkg/backend"
	"github.com/amunlang/amun/pkg/check"
	"github.com/amunlang/amun/pkg/config"
	"github.com/amunlang/amun/pkg/diag"
	"github.com/amunlang/amun/pkg/parser"
	"github.com/amunlang/amun/pkg/source"
	"github.com/amunlang/amun/pkg/symbolmap"
)

// Options configures a single driver invocation, layered by the caller
// from config.Config plus CLI overrides (SPEC_FULL §6, §C).
type Options struct {
	// OutputName is the linked executable's base name (`-o`).
	OutputName string
	// EmitWarnings mirrors `-w`: warnings are reported instead of
	// suppressed.
	EmitWarnings bool
	// WarningsAsErrors mirrors `-werr`; implies EmitWarnings.
	WarningsAsErrors bool
	// LinkerFlags are forwarded verbatim to the external linker (`-l`),
	// a backend/linker concern the driver only threads through.
	LinkerFlags []string
	// LibsPrefix is the directory `import "x"` resolves against.
	LibsPrefix string
	// Backend receives the checked AST once compilation succeeds. If
	// nil, CompileSourceCode uses backend.NewNoOp().
	Backend backend.Backend
	// Logger receives structured progress events. If nil, a no-op
	// logger is used.
	Logger *zap.Logger
}

// FromConfig builds Options from a loaded project configuration,
// exactly the precedence chain §6 describes: config.Load has already
// folded CLI flags in as the highest-priority layer, so Options here
// is a straight field-for-field projection of the resulting Build
// table.
func FromConfig(cfg *config.Config) Options {
	return Options{
		OutputName:       cfg.Build.OutputName,
		EmitWarnings:     cfg.Build.Warnings != config.WarningsSuppress,
		WarningsAsErrors: cfg.Build.Warnings == config.WarningsAsErrors,
		LinkerFlags:      cfg.Build.LinkerFlags,
		LibsPrefix:       cfg.Build.LibsPrefix,
	}
}

func (o Options) logger() *zap.Logger {
	if o.Logger != nil {
		return o.Logger
	}
	return zap.NewNop()
}

// pipelineResult is the shared state every driver entry point produces
// through step 4 of §4.7 before branching on what to do next.
type pipelineResult struct {
	sources *source.Manager
	diags   *diag.Engine
	cu      *ast.CompilationUnit
	checker *check.Checker
}

// runPipeline executes §4.7 steps 2-4: parse, type-check, and the
// warnings-as-errors/error-count gate. It never touches a Backend —
// that's steps 5 (CompileSourceCode) or the checked-AST handoff
// (EmitLLVMIRFromSourceCode).
func runPipeline(path string, opts Options) (*pipelineResult, error) {
	log := opts.logger()
	log.Debug("compiling", zap.String("path", path))

	sources := source.New()
	diags := diag.New(sources)
	diags.SuppressWarnings = !opts.EmitWarnings
	diags.WarningsAsErrors = opts.WarningsAsErrors

	libsPrefix := opts.LibsPrefix
	if libsPrefix == "" {
		libsPrefix = "libs"
	}

	p := parser.New(sources, diags, libsPrefix)
	cu, err := p.ParseCompilationUnit(path)
	if err != nil {
		log.Error("parse failed", zap.String("path", path), zap.Error(err))
		return nil, fmt.Errorf("parsing %s: %w", path, err)
	}
	log.Debug("parsed", zap.Int("statements", len(cu.Statements)))

	if diags.LevelCount(diag.Error) > 0 {
		return &pipelineResult{sources: sources, diags: diags, cu: cu}, errorCountError(diags)
	}

	checker := check.New(sources, diags, p.Aliases, p.Functions, p.Structures, p.Enumerations)
	if err := checker.Check(cu); err != nil {
		log.Error("type check failed", zap.Error(err))
		return &pipelineResult{sources: sources, diags: diags, cu: cu, checker: checker}, fmt.Errorf("type-checking %s: %w", path, err)
	}
	log.Debug("type-checked", zap.Int("errors", diags.LevelCount(diag.Error)), zap.Int("warnings", diags.LevelCount(diag.Warning)))

	if diags.LevelCount(diag.Error) > 0 {
		return &pipelineResult{sources: sources, diags: diags, cu: cu, checker: checker}, errorCountError(diags)
	}

	return &pipelineResult{sources: sources, diags: diags, cu: cu, checker: checker}, nil
}

func errorCountError(diags *diag.Engine) error {
	return fmt.Errorf("%d error(s) reported", diags.LevelCount(diag.Error))
}

// CheckSourceCode is the `check_source_code` driver variant (§4.7): it
// runs steps 2-4 only and returns the DiagnosticEngine for the caller
// (CLI or LSP) to render or translate, never invoking a backend.
func CheckSourceCode(path string, opts Options) (*diag.Engine, error) {
	result, err := runPipeline(path, opts)
	if result == nil {
		return diag.New(source.New()), err
	}
	return result.diags, err
}

// EmitLLVMIRFromSourceCode is the `emit_llvm_ir_from_source_code`
// driver variant (§4.7): it stops after step 4 like CheckSourceCode,
// but its "different output" is the checked CompilationUnit itself —
// the contract a real LLVM backend would consume — since LLVM emission
// is explicitly out of core scope (§1).
func EmitLLVMIRFromSourceCode(path string, opts Options) (*ast.CompilationUnit, *diag.Engine, error) {
	result, err := runPipeline(path, opts)
	if result == nil {
		return nil, diag.New(source.New()), err
	}
	return result.cu, result.diags, err
}

// CompileSourceCode is the full `compile_source_code` driver (§4.7):
// steps 2-4 plus step 5, invoking opts.Backend (or a NoOpBackend) over
// the checked AST.
func CompileSourceCode(path string, opts Options) (*diag.Engine, error) {
	result, err := runPipeline(path, opts)
	if result == nil {
		return diag.New(source.New()), err
	}
	if err != nil {
		return result.diags, err
	}

	b := opts.Backend
	if b == nil {
		b = backend.NewNoOp()
	}

	log := opts.logger()
	log.Debug("invoking backend", zap.String("backend", b.Name()))
	if err := backend.Walk(result.cu, b); err != nil {
		log.Error("backend failed", zap.String("backend", b.Name()), zap.Error(err))
		return result.diags, fmt.Errorf("backend %s: %w", b.Name(), err)
	}

	if err := writeSymbolMap(opts, result); err != nil {
		log.Error("writing symbol map failed", zap.Error(err))
		return result.diags, err
	}
	return result.diags, nil
}

// writeSymbolMap builds and persists the debug artifact linking every
// mangled symbol name the backend saw back to its originating span,
// alongside the linked output, for `amun resolve` to read later. A
// blank OutputName means the caller never asked for a linked artifact
// (CompileSourceCode called directly with a bare Backend, as the test
// suite does), so there is nothing to name the debug artifact after.
func writeSymbolMap(opts Options, result *pipelineResult) error {
	if opts.OutputName == "" {
		return nil
	}

	sm := symbolmap.Build(result.cu, result.checker)
	data, err := symbolmap.Generate(sm, opts.OutputName, result.sources)
	if err != nil {
		return fmt.Errorf("generating symbol map: %w", err)
	}

	mapPath := opts.OutputName + ".symbolmap.json"
	if err := os.WriteFile(mapPath, data, 0o644); err != nil {
		return fmt.Errorf("writing symbol map to %s: %w", mapPath, err)
	}
	return nil
}
