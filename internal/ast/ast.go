// Package ast defines the abstract syntax tree for quill.
package ast

import (
	"quill-lang/internal/span"
	"quill-lang/internal/token"
)

// ============================================================
// Node interfaces
// ============================================================

// Node is the interface implemented by all AST nodes.
type Node interface {
	nodeNode()
	GetSpan() span.Span
}

// Expr is the interface for expression nodes.
type Expr interface {
	Node
	exprNode()
}

// Stmt is the interface for statement nodes.
type Stmt interface {
	Node
	stmtNode()
}

// ============================================================
// Base types (embedded to provide common fields)
// ============================================================

// NodeBase provides the common Span field for all AST nodes.
type NodeBase struct {
	Span span.Span
}

func (n NodeBase) nodeNode()          {}
func (n NodeBase) GetSpan() span.Span { return n.Span }

// ExprBase is embedded by all expression nodes.
type ExprBase struct{ NodeBase }

func (ExprBase) exprNode() {}

// StmtBase is embedded by all statement nodes.
type StmtBase struct{ NodeBase }

func (StmtBase) stmtNode() {}

// ============================================================
// Program (top-level AST root)
// ============================================================

// Program represents an entire source file: a sequence of declarations.
type Program struct {
	NodeBase
	Stmts []Stmt
}

// ============================================================
// Expressions
// ============================================================

// NumberLiteral represents a number literal. All quill numbers are 64-bit
// floats.
type NumberLiteral struct {
	ExprBase
	Value float64
}

// StringLiteral represents a string literal.
type StringLiteral struct {
	ExprBase
	Value string
}

// BoolLiteral represents true or false.
type BoolLiteral struct {
	ExprBase
	Value bool
}

// NilLiteral represents nil.
type NilLiteral struct {
	ExprBase
}

// VariableExpr represents a name reference.
type VariableExpr struct {
	ExprBase
	Name string
}

// GroupingExpr represents a parenthesized expression: (expr).
type GroupingExpr struct {
	ExprBase
	Inner Expr
}

// UnaryExpr represents a unary operation: !x, -x.
type UnaryExpr struct {
	ExprBase
	Op      token.Kind
	Operand Expr
}

// BinaryExpr represents an eager binary operation: a + b, x == y.
type BinaryExpr struct {
	ExprBase
	Op    token.Kind
	Left  Expr
	Right Expr
}

// LogicalExpr represents a short-circuiting binary operation: a and b,
// a or b. Kept distinct from BinaryExpr because the right operand must not
// be evaluated eagerly.
type LogicalExpr struct {
	ExprBase
	Op    token.Kind // KW_AND or KW_OR
	Left  Expr
	Right Expr
}

// AssignExpr represents an assignment expression: name = value. The name
// must already be bound somewhere in the scope chain at evaluation time.
type AssignExpr struct {
	ExprBase
	Name  string
	Value Expr
}

// ============================================================
// Statements
// ============================================================

// ExprStmt wraps an expression evaluated for its side effect; the result
// is discarded.
type ExprStmt struct {
	StmtBase
	Expr Expr
}

// PrintStmt represents: print expr ;
type PrintStmt struct {
	StmtBase
	Expr Expr
}

// VarDeclStmt represents a variable declaration: var name [= init] ;
type VarDeclStmt struct {
	StmtBase
	Name string
	Init Expr // may be nil; the binding defaults to nil
}

// BlockStmt represents a block of statements: { ... }. Introduces a new
// nested scope.
type BlockStmt struct {
	StmtBase
	Stmts []Stmt
}

// IfStmt represents: if (cond) then [else els].
type IfStmt struct {
	StmtBase
	Condition Expr
	Then      Stmt
	Else      Stmt // may be nil
}

// WhileStmt represents: while (cond) body.
type WhileStmt struct {
	StmtBase
	Condition Expr
	Body      Stmt
}
