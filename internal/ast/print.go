package ast

import (
	"fmt"
	"strconv"
	"strings"
)

// FormatExpr renders an expression back into quill source form. Parsing the
// result yields an expression that evaluates to the same value as the
// original.
func FormatExpr(expr Expr) string {
	switch e := expr.(type) {
	case *NumberLiteral:
		// 'f' keeps exponent notation out of the output; 1e6 would not lex
		// back as a single number token.
		return strconv.FormatFloat(e.Value, 'f', -1, 64)
	case *StringLiteral:
		return strconv.Quote(e.Value)
	case *BoolLiteral:
		if e.Value {
			return "true"
		}
		return "false"
	case *NilLiteral:
		return "nil"
	case *VariableExpr:
		return e.Name
	case *GroupingExpr:
		return "(" + FormatExpr(e.Inner) + ")"
	case *UnaryExpr:
		return e.Op.String() + FormatExpr(e.Operand)
	case *BinaryExpr:
		return fmt.Sprintf("%s %s %s", FormatExpr(e.Left), e.Op, FormatExpr(e.Right))
	case *LogicalExpr:
		return fmt.Sprintf("%s %s %s", FormatExpr(e.Left), e.Op, FormatExpr(e.Right))
	case *AssignExpr:
		return fmt.Sprintf("%s = %s", e.Name, FormatExpr(e.Value))
	default:
		return fmt.Sprintf("<%T>", expr)
	}
}

// FormatStmt renders a statement back into quill source form with the given
// indentation depth.
func FormatStmt(stmt Stmt, depth int) string {
	indent := strings.Repeat("  ", depth)

	switch s := stmt.(type) {
	case *ExprStmt:
		return indent + FormatExpr(s.Expr) + ";"
	case *PrintStmt:
		return indent + "print " + FormatExpr(s.Expr) + ";"
	case *VarDeclStmt:
		if s.Init == nil {
			return indent + "var " + s.Name + ";"
		}
		return indent + "var " + s.Name + " = " + FormatExpr(s.Init) + ";"
	case *BlockStmt:
		var b strings.Builder
		b.WriteString(indent + "{\n")
		for _, inner := range s.Stmts {
			b.WriteString(FormatStmt(inner, depth+1))
			b.WriteString("\n")
		}
		b.WriteString(indent + "}")
		return b.String()
	case *IfStmt:
		out := indent + "if (" + FormatExpr(s.Condition) + ")\n" + FormatStmt(s.Then, depth+1)
		if s.Else != nil {
			out += "\n" + indent + "else\n" + FormatStmt(s.Else, depth+1)
		}
		return out
	case *WhileStmt:
		return indent + "while (" + FormatExpr(s.Condition) + ")\n" + FormatStmt(s.Body, depth+1)
	default:
		return indent + fmt.Sprintf("<%T>", stmt)
	}
}

// FormatProgram renders a full program, one statement per line.
func FormatProgram(prog *Program) string {
	var b strings.Builder
	for _, s := range prog.Stmts {
		b.WriteString(FormatStmt(s, 0))
		b.WriteString("\n")
	}
	return b.String()
}
