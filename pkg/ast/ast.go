// Package ast defines the Amun AST: two closed tagged sums, Statement
// and Expression, following the REDESIGN FLAGS guidance (§9) to replace
// the original's double-dispatch any-returning visitors with plain Go
// interfaces a single type switch can consume per phase.
package ast

import (
	"github.com/amunlang/amun/pkg/token"
	"github.com/amunlang/amun/pkg/types"
)

// Statement is implemented by every statement AST node.
type Statement interface {
	Span() token.Span
	stmtNode()
}

// Expression is implemented by every expression AST node. Type/SetType
// expose the mutable type slot the checker fills in; IsConstant is the
// pure, shape-only predicate from §3/§8/SPEC_FULL §D.3.
type Expression interface {
	Span() token.Span
	Type() types.Type
	SetType(types.Type)
	IsConstant() bool
	exprNode()
}

// CompilationUnit is the tree of statements produced by parsing one
// top-level source together with every file transitively pulled in via
// import/load, de-duplicated by path (GLOSSARY).
type CompilationUnit struct {
	Statements []Statement
}

// --- shared embeddable bases -------------------------------------------------

// StmtBase carries the span every statement needs.
type StmtBase struct {
	Sp token.Span
}

func (b StmtBase) Span() token.Span { return b.Sp }
func (StmtBase) stmtNode()          {}

// ExprBase carries the span and mutable type slot every expression needs.
type ExprBase struct {
	Sp  token.Span
	Typ types.Type
}

func (b ExprBase) Span() token.Span    { return b.Sp }
func (b *ExprBase) Type() types.Type   { return b.Typ }
func (b *ExprBase) SetType(t types.Type) { b.Typ = t }
func (ExprBase) exprNode()             {}

// --- statements ---------------------------------------------------------

type ImportStatement struct {
	StmtBase
	Name     string
	Resolved string // resolved absolute path
}

type LoadStatement struct {
	StmtBase
	Name     string
	Resolved string
}

type TypeAliasDeclaration struct {
	StmtBase
	Name    string
	Aliased types.Type
}

type BlockStatement struct {
	StmtBase
	Statements []Statement
}

// FieldDeclaration is `var`/`const` name [: T] [= value].
type FieldDeclaration struct {
	StmtBase
	Name         string
	DeclaredType types.Type // nil if inferred from Value
	Value        Expression // nil if only a type is given
	IsConst      bool
	IsGlobal     bool
}

// Param is a function/lambda parameter.
type Param struct {
	Name string
	Type types.Type
}

// Prototype is a function signature: `extern`/`intrinsic`/ordinary, with
// optional generics.
type Prototype struct {
	StmtBase
	Name          string
	Params        []Param
	Return        types.Type
	HasVarargs    bool
	VarargsType   types.Type
	IsExternal    bool
	IsIntrinsic   bool
	GenericNames  []string // non-empty iff this prototype is generic
}

func (p *Prototype) IsGeneric() bool { return len(p.GenericNames) > 0 }

// FunctionDeclaration is a full function definition: either a `{ ... }`
// block body or a `=` expression body.
type FunctionDeclaration struct {
	StmtBase
	Proto    *Prototype
	Body     Statement  // *BlockStatement, nil if ExprBody is set
	ExprBody Expression // nil if Body is set
}

// Fixity mirrors mangle.Fixity for operator-overload declarations
// without importing the mangle package from ast (kept dependency-free).
type Fixity int

const (
	Infix Fixity = iota
	Prefix
	Postfix
)

type OperatorFunctionDeclaration struct {
	StmtBase
	Operator string
	Fixity   Fixity
	Proto    *Prototype
	Body     Statement
	ExprBody Expression
}

type StructField struct {
	Name string
	Type types.Type
}

type StructDeclaration struct {
	StmtBase
	Name              string
	Fields            []StructField
	GenericParamNames []string
	IsPacked          bool
	IsExtern          bool
}

func (s *StructDeclaration) IsGeneric() bool { return len(s.GenericParamNames) > 0 }

type EnumMember struct {
	Name  string
	Value int64
}

type EnumDeclaration struct {
	StmtBase
	Name        string
	Members     []EnumMember
	ElementType types.NumberKind
}

type IfBranch struct {
	Condition Expression
	Body      Statement
}

type IfStatement struct {
	StmtBase
	Branches []IfBranch
	Else     Statement // nil if no else
}

type SwitchCase struct {
	Values []Expression
	Body   Statement
}

type SwitchStatement struct {
	StmtBase
	Argument Expression
	Cases    []SwitchCase
	Else     Statement // nil if no else
	Complete bool       // @complete directive present
}

type ForRangeStatement struct {
	StmtBase
	Name  string // "_" suppresses binding
	Start Expression
	End   Expression
	Step  Expression // nil => default step 1
	Body  Statement
}

type ForEachStatement struct {
	StmtBase
	ElementName string // "_" suppresses binding
	IndexName   string // "_" suppresses binding
	Collection  Expression
	Body        Statement
}

type ForEverStatement struct {
	StmtBase
	Body Statement
}

type WhileStatement struct {
	StmtBase
	Condition Expression
	Body      Statement
}

type ReturnStatement struct {
	StmtBase
	Value Expression // nil for void returns
}

// DeferStatement registers Call on the enclosing scope's defer list
// (SPEC_FULL §D.1); Call must be a CallExpression, enforced by the
// checker.
type DeferStatement struct {
	StmtBase
	Call Expression
}

type BreakStatement struct {
	StmtBase
	N int // loop-depth to break, >= 1
}

type ContinueStatement struct {
	StmtBase
	N int
}

type ExpressionStatement struct {
	StmtBase
	Expr Expression
}

// --- expressions ---------------------------------------------------------

type GroupExpression struct {
	ExprBase
	Inner Expression
}

func (e *GroupExpression) IsConstant() bool { return e.Inner.IsConstant() }

type TupleExpression struct {
	ExprBase
	Elements []Expression
}

func (e *TupleExpression) IsConstant() bool { return allConstant(e.Elements) }

type AssignExpression struct {
	ExprBase
	Target Expression
	Op     token.Kind // Equal, PlusEqual, MinusEqual, ...
	Value  Expression
}

func (e *AssignExpression) IsConstant() bool { return false }

type BinaryExpression struct {
	ExprBase
	Left  Expression
	Op    token.Kind
	Right Expression
}

func (e *BinaryExpression) IsConstant() bool { return e.Left.IsConstant() && e.Right.IsConstant() }

type ShiftExpression struct {
	ExprBase
	Left  Expression
	Op    token.Kind
	Right Expression
}

func (e *ShiftExpression) IsConstant() bool { return e.Left.IsConstant() && e.Right.IsConstant() }

type ComparisonExpression struct {
	ExprBase
	Left  Expression
	Op    token.Kind
	Right Expression
}

func (e *ComparisonExpression) IsConstant() bool { return e.Left.IsConstant() && e.Right.IsConstant() }

type LogicalExpression struct {
	ExprBase
	Left  Expression
	Op    token.Kind // AmpAmp, PipePipe
	Right Expression
}

func (e *LogicalExpression) IsConstant() bool { return e.Left.IsConstant() && e.Right.IsConstant() }

type PrefixUnaryExpression struct {
	ExprBase
	Op      token.Kind
	Operand Expression
}

func (e *PrefixUnaryExpression) IsConstant() bool { return e.Operand.IsConstant() }

type PostfixUnaryExpression struct {
	ExprBase
	Operand Expression
	Op      token.Kind
}

func (e *PostfixUnaryExpression) IsConstant() bool { return false } // ++/-- always mutate

type CallExpression struct {
	ExprBase
	Callee      Expression
	Args        []Expression
	GenericArgs []types.Type // explicit <T,U,...> arguments, may be empty
}

func (e *CallExpression) IsConstant() bool { return false }

type InitField struct {
	Name  string
	Value Expression
}

// InitExpression is a struct initializer: Name { .field = value, ... }.
type InitExpression struct {
	ExprBase
	StructName string
	Fields     []InitField
}

func (e *InitExpression) IsConstant() bool { return false }

type LambdaExpression struct {
	ExprBase
	Params         []Param
	ImplicitParams []Param // filled by the checker during capture synthesis
	Body           Statement
	ExprBody       Expression
}

func (e *LambdaExpression) IsConstant() bool { return true }

type DotExpression struct {
	ExprBase
	Receiver Expression
	Field    string
}

func (e *DotExpression) IsConstant() bool { return false }

type CastExpression struct {
	ExprBase
	Operand Expression
	Target  types.Type
}

func (e *CastExpression) IsConstant() bool { return e.Operand.IsConstant() }

type TypeSizeExpression struct {
	ExprBase
	Target types.Type
}

func (e *TypeSizeExpression) IsConstant() bool { return true }

type ValueSizeExpression struct {
	ExprBase
	Operand Expression
}

func (e *ValueSizeExpression) IsConstant() bool { return true }

type IndexExpression struct {
	ExprBase
	Receiver Expression
	Index    Expression
}

func (e *IndexExpression) IsConstant() bool { return false }

type EnumElementExpression struct {
	ExprBase
	EnumName    string
	ElementName string
}

func (e *EnumElementExpression) IsConstant() bool { return true }

type ArrayExpression struct {
	ExprBase
	Elements []Expression
	VecWidth int64 // declared @vec(width), 0 if absent
	HasVec   bool
}

func (e *ArrayExpression) IsConstant() bool { return allConstant(e.Elements) }

type StringExpression struct {
	ExprBase
	Value string
}

func (e *StringExpression) IsConstant() bool { return true }

// LiteralExpression is an identifier reference (a variable/function
// name), never constant regardless of what it resolves to (SPEC_FULL
// §D.3, §E): is_constant() is a pure shape predicate, not an
// environment-dependent one.
type LiteralExpression struct {
	ExprBase
	Name string
}

func (e *LiteralExpression) IsConstant() bool { return false }

type NumberExpression struct {
	ExprBase
	Raw        string // digits only, separators stripped
	Kind       types.NumberKind
	HasExplicitSuffix bool
}

func (e *NumberExpression) IsConstant() bool { return true }

type CharacterExpression struct {
	ExprBase
	Value byte
}

func (e *CharacterExpression) IsConstant() bool { return true }

type BoolExpression struct {
	ExprBase
	Value bool
}

func (e *BoolExpression) IsConstant() bool { return true }

// NullExpression owns its own NullType instance (never shared) so the
// checker can rewrite NullBaseType per node without affecting other
// nulls in the same compilation unit (§3).
type NullExpression struct {
	ExprBase
	NullBaseType types.Type // nil until assigned a target pointer type
}

func (e *NullExpression) IsConstant() bool { return true }

type IfExprBranch struct {
	Condition Expression
	Value     Expression
}

// IfExpression is the expression form of if (SPEC_FULL §D.3), distinct
// from IfStatement.
type IfExpression struct {
	ExprBase
	Branches []IfExprBranch
	Else     Expression
}

func (e *IfExpression) IsConstant() bool {
	if e.Else == nil || !e.Else.IsConstant() {
		return false
	}
	for _, b := range e.Branches {
		if !b.Condition.IsConstant() || !b.Value.IsConstant() {
			return false
		}
	}
	return true
}

type SwitchExprCase struct {
	Values []Expression
	Value  Expression
}

// SwitchExpression is the expression form of switch (SPEC_FULL §D.3).
type SwitchExpression struct {
	ExprBase
	Argument Expression
	Cases    []SwitchExprCase
	Else     Expression
}

func (e *SwitchExpression) IsConstant() bool {
	if !e.Argument.IsConstant() {
		return false
	}
	if e.Else == nil || !e.Else.IsConstant() {
		return false
	}
	for _, c := range e.Cases {
		if !c.Value.IsConstant() {
			return false
		}
		for _, v := range c.Values {
			if !v.IsConstant() {
				return false
			}
		}
	}
	return true
}

func allConstant(exprs []Expression) bool {
	for _, e := range exprs {
		if !e.IsConstant() {
			return false
		}
	}
	return true
}
