package runtime

import (
	"fmt"
	"io"

	"quill-lang/internal/ast"
	"quill-lang/internal/span"
	"quill-lang/internal/token"
)

// ============================================================
// Runtime errors
// ============================================================

// ErrorKind classifies a runtime error.
type ErrorKind int

const (
	// ErrNumberOperand: a non-number operand to an arithmetic or comparison
	// operator, or to unary negation.
	ErrNumberOperand ErrorKind = iota
	// ErrIncompatibleTypes: '+' applied to anything other than two numbers
	// or two strings.
	ErrIncompatibleTypes
	// ErrUndefinedVariable: a read of, or assignment to, an unbound name.
	ErrUndefinedVariable
	// ErrInternal: an interpreter invariant was violated. Unreachable in a
	// correct build.
	ErrInternal
)

func (k ErrorKind) String() string {
	switch k {
	case ErrNumberOperand:
		return "NumberOperand"
	case ErrIncompatibleTypes:
		return "IncompatibleTypes"
	case ErrUndefinedVariable:
		return "UndefinedVariable"
	case ErrInternal:
		return "Internal"
	default:
		return "Unknown"
	}
}

// RuntimeError represents an error during interpretation. Runtime errors
// are fatal to the run: they propagate uncaught to the Run caller and abort
// the remaining statements.
type RuntimeError struct {
	Kind    ErrorKind
	Message string
	Span    span.Span
}

func (e *RuntimeError) Error() string {
	return fmt.Sprintf("runtime error at %d:%d: %s", e.Span.Start.Line, e.Span.Start.Column, e.Message)
}

func runtimeErr(kind ErrorKind, s span.Span, format string, args ...interface{}) *RuntimeError {
	return &RuntimeError{Kind: kind, Message: fmt.Sprintf(format, args...), Span: s}
}

// ============================================================
// Interpreter
// ============================================================

// Interpreter walks the statement AST and executes it against a chain of
// lexical scopes. One interpreter owns one environment chain; it is not
// safe for concurrent use, and a run is single-threaded throughout.
type Interpreter struct {
	global *Environment
	env    *Environment
	output io.Writer
}

// NewInterpreter creates a new interpreter whose print statements write to
// output. The global environment lives as long as the interpreter, which
// lets a REPL keep bindings across inputs.
func NewInterpreter(output io.Writer) *Interpreter {
	global := NewEnvironment(nil)
	return &Interpreter{
		global: global,
		env:    global,
		output: output,
	}
}

// Run executes the program's statements strictly in sequence. The first
// runtime error aborts the remaining statements; there is no recovery at
// this layer.
func (i *Interpreter) Run(prog *ast.Program) error {
	for _, stmt := range prog.Stmts {
		if err := i.execStmt(stmt); err != nil {
			return err
		}
	}
	return nil
}

// Env returns the current environment (useful for REPL inspection).
func (i *Interpreter) Env() *Environment {
	return i.env
}

// ============================================================
// Statement execution
// ============================================================

func (i *Interpreter) execStmt(stmt ast.Stmt) error {
	switch s := stmt.(type) {
	case *ast.ExprStmt:
		_, err := i.evalExpr(s.Expr)
		return err

	case *ast.PrintStmt:
		val, err := i.evalExpr(s.Expr)
		if err != nil {
			return err
		}
		fmt.Fprintln(i.output, val.String())
		return nil

	case *ast.VarDeclStmt:
		var val Value = NilVal{}
		if s.Init != nil {
			v, err := i.evalExpr(s.Init)
			if err != nil {
				return err
			}
			val = v
		}
		i.env.Define(s.Name, val)
		return nil

	case *ast.BlockStmt:
		return i.execBlock(s)

	case *ast.IfStmt:
		cond, err := i.evalExpr(s.Condition)
		if err != nil {
			return err
		}
		if IsTruthy(cond) {
			return i.execStmt(s.Then)
		}
		if s.Else != nil {
			return i.execStmt(s.Else)
		}
		return nil

	case *ast.WhileStmt:
		for {
			cond, err := i.evalExpr(s.Condition)
			if err != nil {
				return err
			}
			if !IsTruthy(cond) {
				return nil
			}
			if err := i.execStmt(s.Body); err != nil {
				return err
			}
		}

	default:
		return runtimeErr(ErrInternal, stmt.GetSpan(), "unhandled statement type: %T", stmt)
	}
}

// execBlock runs the block's statements against a fresh scope enclosed by
// the current one. The previous scope is restored on every exit path,
// including when a nested statement fails, before the failure propagates.
func (i *Interpreter) execBlock(block *ast.BlockStmt) error {
	prevEnv := i.env
	i.env = NewEnvironment(prevEnv)
	defer func() { i.env = prevEnv }()

	for _, stmt := range block.Stmts {
		if err := i.execStmt(stmt); err != nil {
			return err
		}
	}
	return nil
}

// ============================================================
// Expression evaluation
// ============================================================

func (i *Interpreter) evalExpr(expr ast.Expr) (Value, error) {
	switch e := expr.(type) {
	case *ast.NumberLiteral:
		return NumberVal(e.Value), nil
	case *ast.StringLiteral:
		return StringVal(e.Value), nil
	case *ast.BoolLiteral:
		return BoolVal(e.Value), nil
	case *ast.NilLiteral:
		return NilVal{}, nil
	case *ast.GroupingExpr:
		return i.evalExpr(e.Inner)
	case *ast.VariableExpr:
		val, ok := i.env.Get(e.Name)
		if !ok {
			return nil, runtimeErr(ErrUndefinedVariable, e.GetSpan(), "undefined variable '%s'", e.Name)
		}
		return val, nil
	case *ast.AssignExpr:
		return i.evalAssign(e)
	case *ast.UnaryExpr:
		return i.evalUnary(e)
	case *ast.LogicalExpr:
		return i.evalLogical(e)
	case *ast.BinaryExpr:
		return i.evalBinary(e)
	default:
		return nil, runtimeErr(ErrInternal, expr.GetSpan(), "unhandled expression type: %T", expr)
	}
}

// evalAssign writes into the nearest enclosing scope that already binds the
// name; assignment never implicitly declares. The assigned value is also
// the expression's result, so assignments chain.
func (i *Interpreter) evalAssign(e *ast.AssignExpr) (Value, error) {
	val, err := i.evalExpr(e.Value)
	if err != nil {
		return nil, err
	}
	if !i.env.Assign(e.Name, val) {
		return nil, runtimeErr(ErrUndefinedVariable, e.GetSpan(), "undefined variable '%s'", e.Name)
	}
	return val, nil
}

func (i *Interpreter) evalUnary(e *ast.UnaryExpr) (Value, error) {
	operand, err := i.evalExpr(e.Operand)
	if err != nil {
		return nil, err
	}

	switch e.Op {
	case token.BANG:
		return BoolVal(!IsTruthy(operand)), nil
	case token.MINUS:
		num, err := numberOperand(operand, e.GetSpan())
		if err != nil {
			return nil, err
		}
		return NumberVal(-num), nil
	default:
		return nil, runtimeErr(ErrInternal, e.GetSpan(), "unknown unary operator: %s", e.Op)
	}
}

// evalLogical short-circuits: the deciding operand is returned as-is, and
// the right side is never evaluated when the left side decides.
func (i *Interpreter) evalLogical(e *ast.LogicalExpr) (Value, error) {
	left, err := i.evalExpr(e.Left)
	if err != nil {
		return nil, err
	}

	if e.Op == token.KW_OR {
		if IsTruthy(left) {
			return left, nil
		}
	} else {
		if !IsTruthy(left) {
			return left, nil
		}
	}

	return i.evalExpr(e.Right)
}

func (i *Interpreter) evalBinary(e *ast.BinaryExpr) (Value, error) {
	left, err := i.evalExpr(e.Left)
	if err != nil {
		return nil, err
	}
	right, err := i.evalExpr(e.Right)
	if err != nil {
		return nil, err
	}

	switch e.Op {
	case token.MINUS:
		l, r, err := numberOperands(left, right, e.GetSpan())
		if err != nil {
			return nil, err
		}
		return NumberVal(l - r), nil
	case token.SLASH:
		// IEEE-754 division: dividing by zero yields inf/NaN, not an error.
		l, r, err := numberOperands(left, right, e.GetSpan())
		if err != nil {
			return nil, err
		}
		return NumberVal(l / r), nil
	case token.STAR:
		l, r, err := numberOperands(left, right, e.GetSpan())
		if err != nil {
			return nil, err
		}
		return NumberVal(l * r), nil

	case token.PLUS:
		if ln, ok := left.(NumberVal); ok {
			if rn, ok := right.(NumberVal); ok {
				return NumberVal(ln + rn), nil
			}
		}
		if ls, ok := left.(StringVal); ok {
			if rs, ok := right.(StringVal); ok {
				return StringVal(ls + rs), nil
			}
		}
		return nil, runtimeErr(ErrIncompatibleTypes, e.GetSpan(),
			"'+' needs two numbers or two strings, got '%s' and '%s'", left.TypeName(), right.TypeName())

	case token.GT:
		l, r, err := numberOperands(left, right, e.GetSpan())
		if err != nil {
			return nil, err
		}
		return BoolVal(l > r), nil
	case token.GTE:
		l, r, err := numberOperands(left, right, e.GetSpan())
		if err != nil {
			return nil, err
		}
		return BoolVal(l >= r), nil
	case token.LT:
		l, r, err := numberOperands(left, right, e.GetSpan())
		if err != nil {
			return nil, err
		}
		return BoolVal(l < r), nil
	case token.LTE:
		l, r, err := numberOperands(left, right, e.GetSpan())
		if err != nil {
			return nil, err
		}
		return BoolVal(l <= r), nil

	case token.EQ:
		return BoolVal(ValuesEqual(left, right)), nil
	case token.NEQ:
		return BoolVal(!ValuesEqual(left, right)), nil

	default:
		return nil, runtimeErr(ErrInternal, e.GetSpan(), "unknown binary operator: %s", e.Op)
	}
}

// ---- operand checks ----

func numberOperand(v Value, s span.Span) (float64, error) {
	num, ok := v.(NumberVal)
	if !ok {
		return 0, runtimeErr(ErrNumberOperand, s, "operand must be a number, got '%s'", v.TypeName())
	}
	return float64(num), nil
}

func numberOperands(left, right Value, s span.Span) (float64, float64, error) {
	l, err := numberOperand(left, s)
	if err != nil {
		return 0, 0, err
	}
	r, err := numberOperand(right, s)
	if err != nil {
		return 0, 0, err
	}
	return l, r, nil
}
