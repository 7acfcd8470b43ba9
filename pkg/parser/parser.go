// Package parser implements the Amun recursive-descent Parser (§4.4): one
// token of look-ahead plus the previously consumed token for error
// reporting, imports/loads resolved through a SourceManager, operator
// precedence climbing, and Amun's type syntax.
package parser

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/amunlang/amun/pkg/ast"
	"github.com/amunlang/amun/pkg/diag"
	"github.com/amunlang/amun/pkg/lexer"
	"github.com/amunlang/amun/pkg/source"
	"github.com/amunlang/amun/pkg/token"
	"github.com/amunlang/amun/pkg/types"
)

// Parser holds everything shared across every file pulled into one
// compilation unit: the source manager (for import/load dedup), the
// diagnostic engine, and the alias table fields are parser-writable per
// §5 ("alias_table, functions, structures, enumerations, constants_table
// are parser-writable").
type Parser struct {
	Sources *source.Manager
	Diags   *diag.Engine
	Aliases *types.AliasTable

	// LibsPrefix is the directory `import "x"` resolves relative to.
	LibsPrefix string

	Functions    map[string]*ast.Prototype
	Structures   map[string]*ast.StructDeclaration
	Enumerations map[string]*ast.EnumDeclaration

	// per-file state, reset by pushFile/popFile
	fileID    int
	filePath  string
	lx        *lexer.Lexer
	prev, cur, next token.Token

	loopDepth int
}

// New returns a Parser ready to parse the entry file and every file it
// transitively imports/loads.
func New(sources *source.Manager, diags *diag.Engine, libsPrefix string) *Parser {
	return &Parser{
		Sources:      sources,
		Diags:        diags,
		Aliases:      types.NewAliasTable(),
		LibsPrefix:   libsPrefix,
		Functions:    make(map[string]*ast.Prototype),
		Structures:   make(map[string]*ast.StructDeclaration),
		Enumerations: make(map[string]*ast.EnumDeclaration),
	}
}

// ParseCompilationUnit parses entryPath and every file it transitively
// imports/loads, producing one merged CompilationUnit (GLOSSARY).
func (p *Parser) ParseCompilationUnit(entryPath string) (*ast.CompilationUnit, error) {
	abs, err := filepath.Abs(entryPath)
	if err != nil {
		return nil, fmt.Errorf("resolving entry path: %w", err)
	}

	stmts, err := p.parseSourceFile(abs)
	if err != nil {
		return nil, err
	}
	return &ast.CompilationUnit{Statements: stmts}, nil
}

// parseSourceFile registers path (deduping already-seen files per
// import/load semantics, §6), reads and tokenizes it, and parses every
// top-level construct. Encountered import/load directives recursively
// inline the referenced file's statements (textual inclusion, §1).
func (p *Parser) parseSourceFile(path string) ([]ast.Statement, error) {
	if p.Sources.IsPathRegistered(path) {
		return nil, nil
	}
	fileID := p.Sources.RegisterSourcePath(path)

	src, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}

	// Save/restore per-file parsing state so recursive parseSourceFile
	// calls (triggered by import/load while parsing the outer file)
	// don't corrupt the outer file's token window.
	savedFileID, savedPath, savedLx := p.fileID, p.filePath, p.lx
	savedPrev, savedCur, savedNext := p.prev, p.cur, p.next

	p.fileID = fileID
	p.filePath = path
	p.lx = lexer.New(fileID, src)
	p.prev = token.Token{}
	p.cur = p.lx.Next()
	p.next = p.lx.Next()

	var stmts []ast.Statement
	for !p.check(token.EndOfFile) {
		p.skipLineDirectives()
		if p.check(token.EndOfFile) {
			break
		}
		included, decl, err := p.parseTopLevel()
		if err != nil {
			p.synchronize()
			continue
		}
		if included != nil {
			stmts = append(stmts, included...)
		}
		if decl != nil {
			stmts = append(stmts, decl)
		}
	}

	p.fileID, p.filePath, p.lx = savedFileID, savedPath, savedLx
	p.prev, p.cur, p.next = savedPrev, savedCur, savedNext

	return stmts, nil
}

// --- token window helpers -------------------------------------------------

func (p *Parser) advance() token.Token {
	p.prev = p.cur
	p.cur = p.next
	p.next = p.lx.Next()
	return p.prev
}

func (p *Parser) check(k token.Kind) bool { return p.cur.Kind == k }
func (p *Parser) checkNext(k token.Kind) bool { return p.next.Kind == k }

// parserState snapshots the full token window plus the underlying
// lexer position, so a speculative parse (generic call-argument
// disambiguation, §4.4) can be rolled back without reparsing the file.
type parserState struct {
	lx               lexer.State
	prev, cur, next token.Token
}

func (p *Parser) mark() parserState {
	return parserState{lx: p.lx.Mark(), prev: p.prev, cur: p.cur, next: p.next}
}

func (p *Parser) reset(s parserState) {
	p.lx.Reset(s.lx)
	p.prev, p.cur, p.next = s.prev, s.cur, s.next
}

func (p *Parser) match(k token.Kind) bool {
	if p.check(k) {
		p.advance()
		return true
	}
	return false
}

func (p *Parser) expect(k token.Kind, context string) (token.Token, error) {
	if p.check(k) {
		return p.advance(), nil
	}
	return token.Token{}, p.errorf(p.cur.Span, "expected %s %s but found %s", k, context, p.cur.Kind)
}

func (p *Parser) errorf(span token.Span, format string, args ...any) error {
	msg := fmt.Sprintf(format, args...)
	p.Diags.Report(diag.Error, span, msg)
	return fmt.Errorf("%s", msg)
}

func (p *Parser) warnf(span token.Span, format string, args ...any) {
	p.Diags.Report(diag.Warning, span, fmt.Sprintf(format, args...))
}

// synchronize discards tokens until a likely top-level/statement
// boundary, so one parse error doesn't cascade into the rest of the
// file.
func (p *Parser) synchronize() {
	for !p.check(token.EndOfFile) {
		if p.prev.Kind == token.Semicolon || p.prev.Kind == token.RightBrace {
			return
		}
		switch p.cur.Kind {
		case token.KeywordFun, token.KeywordVar, token.KeywordConst, token.KeywordStruct,
			token.KeywordEnum, token.KeywordImport, token.KeywordLoad, token.KeywordType,
			token.KeywordExtern, token.KeywordIntrinsic, token.KeywordOperator:
			return
		}
		p.advance()
	}
}

// --- import/load -----------------------------------------------------------

// parseTopLevel parses one top-level construct. import/load produce
// `included` (the referenced file's inlined statements, possibly nil if
// already registered); every other construct produces `decl`.
func (p *Parser) parseTopLevel() (included []ast.Statement, decl ast.Statement, err error) {
	switch {
	case p.check(token.KeywordImport):
		included, err = p.parseImport()
		return included, nil, err
	case p.check(token.KeywordLoad):
		included, err = p.parseLoad()
		return included, nil, err
	case p.check(token.KeywordType):
		decl, err = p.parseTypeAlias()
	case p.check(token.KeywordConst), p.check(token.KeywordVar):
		decl, err = p.parseFieldDeclaration(true)
	case p.check(token.KeywordStruct):
		decl, err = p.parseStructDeclaration()
	case p.check(token.KeywordEnum):
		decl, err = p.parseEnumDeclaration()
	case p.check(token.KeywordOperator):
		decl, err = p.parseOperatorFunctionDeclaration()
	case p.check(token.KeywordExtern), p.check(token.KeywordIntrinsic), p.check(token.KeywordFun):
		decl, err = p.parseFunctionLike()
	default:
		err = p.errorf(p.cur.Span, "invalid top-level construct starting with %s", p.cur.Kind)
	}
	return nil, decl, err
}

func (p *Parser) parseImport() ([]ast.Statement, error) {
	start := p.cur.Span
	p.advance() // 'import'

	var names []string
	if p.match(token.LeftBrace) {
		for !p.check(token.RightBrace) && !p.check(token.EndOfFile) {
			tok, err := p.expect(token.String, "import name")
			if err != nil {
				return nil, err
			}
			names = append(names, tok.Literal)
		}
		if _, err := p.expect(token.RightBrace, "to close import list"); err != nil {
			return nil, err
		}
	} else {
		tok, err := p.expect(token.String, "import name")
		if err != nil {
			return nil, err
		}
		names = append(names, tok.Literal)
	}
	p.match(token.Semicolon)

	var all []ast.Statement
	for _, name := range names {
		resolved := filepath.Join(p.LibsPrefix, name+".amun")
		if _, statErr := os.Stat(resolved); statErr != nil {
			return nil, p.errorf(start, "cannot find imported module %q at %s", name, resolved)
		}
		included, err := p.parseSourceFile(resolved)
		if err != nil {
			return nil, err
		}
		all = append(all, included...)
	}
	return all, nil
}

func (p *Parser) parseLoad() ([]ast.Statement, error) {
	start := p.cur.Span
	p.advance() // 'load'
	tok, err := p.expect(token.String, "load path")
	if err != nil {
		return nil, err
	}
	p.match(token.Semicolon)

	resolved := filepath.Join(filepath.Dir(p.filePath), tok.Literal+".amun")
	if _, statErr := os.Stat(resolved); statErr != nil {
		return nil, p.errorf(start, "cannot find loaded file %q at %s", tok.Literal, resolved)
	}
	return p.parseSourceFile(resolved)
}

func (p *Parser) parseTypeAlias() (ast.Statement, error) {
	start := p.cur.Span
	p.advance() // 'type'
	nameTok, err := p.expect(token.Identifier, "alias name")
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(token.Equal, "after alias name"); err != nil {
		return nil, err
	}
	typ, err := p.parseType()
	if err != nil {
		return nil, err
	}
	p.match(token.Semicolon)

	if !p.Aliases.Define(nameTok.Literal, typ) {
		return nil, p.errorf(nameTok.Span, "type name %q already defined", nameTok.Literal)
	}

	return &ast.TypeAliasDeclaration{
		StmtBase: ast.StmtBase{Sp: start},
		Name:     nameTok.Literal,
		Aliased:  typ,
	}, nil
}
