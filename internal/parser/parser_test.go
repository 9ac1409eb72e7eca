package parser

import (
	"encoding/json"
	"math"
	"strings"
	"testing"

	"quill-lang/internal/ast"
	"quill-lang/internal/lexer"
	"quill-lang/internal/token"
)

// helper: parse source and return AST + check for no errors
func parseOK(t *testing.T, source string) *ast.Program {
	t.Helper()
	l := lexer.New(source, "test.ql")
	tokens, lexDiags := l.Tokenize()
	if len(lexDiags) > 0 {
		t.Fatalf("lex errors: %v", lexDiags)
	}
	p := New(tokens)
	prog, parseDiags := p.ParseProgram()
	if len(parseDiags) > 0 {
		t.Fatalf("parse errors: %v", parseDiags)
	}
	return prog
}

// helper: parse a single expression statement and return its expression
func parseExpr(t *testing.T, source string) ast.Expr {
	t.Helper()
	prog := parseOK(t, source+";")
	if len(prog.Stmts) != 1 {
		t.Fatalf("expected 1 statement, got %d", len(prog.Stmts))
	}
	stmt, ok := prog.Stmts[0].(*ast.ExprStmt)
	if !ok {
		t.Fatalf("expected ExprStmt, got %T", prog.Stmts[0])
	}
	return stmt.Expr
}

func TestParseVarDecl(t *testing.T) {
	prog := parseOK(t, `var x = 42;`)
	if len(prog.Stmts) != 1 {
		t.Fatalf("expected 1 statement, got %d", len(prog.Stmts))
	}
	decl, ok := prog.Stmts[0].(*ast.VarDeclStmt)
	if !ok {
		t.Fatalf("expected VarDeclStmt, got %T", prog.Stmts[0])
	}
	if decl.Name != "x" {
		t.Errorf("expected name 'x', got %q", decl.Name)
	}
	if decl.Init == nil {
		t.Error("initializer is nil")
	}
}

func TestParseVarDeclNoInit(t *testing.T) {
	prog := parseOK(t, `var x;`)
	decl := prog.Stmts[0].(*ast.VarDeclStmt)
	if decl.Init != nil {
		t.Errorf("expected nil initializer, got %T", decl.Init)
	}
}

func TestParsePrecedence(t *testing.T) {
	// 1 + 2 * 3 parses as 1 + (2 * 3)
	expr := parseExpr(t, `1 + 2 * 3`)
	bin, ok := expr.(*ast.BinaryExpr)
	if !ok {
		t.Fatalf("expected BinaryExpr, got %T", expr)
	}
	if bin.Op != token.PLUS {
		t.Errorf("expected '+' at root, got %s", bin.Op)
	}
	right, ok := bin.Right.(*ast.BinaryExpr)
	if !ok {
		t.Fatalf("expected right BinaryExpr, got %T", bin.Right)
	}
	if right.Op != token.STAR {
		t.Errorf("expected '*' on the right, got %s", right.Op)
	}
}

func TestParseLeftAssociative(t *testing.T) {
	// a - b - c parses as (a - b) - c
	expr := parseExpr(t, `a - b - c`)
	outer, ok := expr.(*ast.BinaryExpr)
	if !ok {
		t.Fatalf("expected BinaryExpr, got %T", expr)
	}
	inner, ok := outer.Left.(*ast.BinaryExpr)
	if !ok {
		t.Fatalf("expected left BinaryExpr, got %T", outer.Left)
	}
	if v, ok := inner.Left.(*ast.VariableExpr); !ok || v.Name != "a" {
		t.Errorf("expected innermost left 'a', got %#v", inner.Left)
	}
	if v, ok := outer.Right.(*ast.VariableExpr); !ok || v.Name != "c" {
		t.Errorf("expected outermost right 'c', got %#v", outer.Right)
	}
}

func TestParseGrouping(t *testing.T) {
	// (1 + 2) * 3 keeps the grouping node on the left
	expr := parseExpr(t, `(1 + 2) * 3`)
	bin := expr.(*ast.BinaryExpr)
	if bin.Op != token.STAR {
		t.Errorf("expected '*' at root, got %s", bin.Op)
	}
	if _, ok := bin.Left.(*ast.GroupingExpr); !ok {
		t.Fatalf("expected GroupingExpr on the left, got %T", bin.Left)
	}
}

func TestParseUnaryBindsTightest(t *testing.T) {
	// -a * b parses as (-a) * b
	expr := parseExpr(t, `-a * b`)
	bin, ok := expr.(*ast.BinaryExpr)
	if !ok {
		t.Fatalf("expected BinaryExpr at root, got %T", expr)
	}
	if _, ok := bin.Left.(*ast.UnaryExpr); !ok {
		t.Errorf("expected UnaryExpr on the left, got %T", bin.Left)
	}
}

func TestParseUnaryNesting(t *testing.T) {
	expr := parseExpr(t, `!!ok`)
	outer, ok := expr.(*ast.UnaryExpr)
	if !ok {
		t.Fatalf("expected UnaryExpr, got %T", expr)
	}
	if _, ok := outer.Operand.(*ast.UnaryExpr); !ok {
		t.Errorf("expected nested UnaryExpr, got %T", outer.Operand)
	}
}

func TestParseOverflowingNumberLiteral(t *testing.T) {
	// A literal beyond float64 range saturates to +Inf rather than failing.
	lit := "1" + strings.Repeat("0", 400)
	expr := parseExpr(t, lit)
	n, ok := expr.(*ast.NumberLiteral)
	if !ok {
		t.Fatalf("expected NumberLiteral, got %T", expr)
	}
	if !math.IsInf(n.Value, 1) {
		t.Errorf("expected +Inf, got %v", n.Value)
	}
}

func TestParseAssignmentRightAssociative(t *testing.T) {
	// a = b = c parses as a = (b = c)
	expr := parseExpr(t, `a = b = c`)
	outer, ok := expr.(*ast.AssignExpr)
	if !ok {
		t.Fatalf("expected AssignExpr, got %T", expr)
	}
	if outer.Name != "a" {
		t.Errorf("expected target 'a', got %q", outer.Name)
	}
	inner, ok := outer.Value.(*ast.AssignExpr)
	if !ok {
		t.Fatalf("expected nested AssignExpr, got %T", outer.Value)
	}
	if inner.Name != "b" {
		t.Errorf("expected nested target 'b', got %q", inner.Name)
	}
}

func TestParseLogicalPrecedence(t *testing.T) {
	// a == b and c or d parses as ((a == b) and c) or d
	expr := parseExpr(t, `a == b and c or d`)
	or, ok := expr.(*ast.LogicalExpr)
	if !ok || or.Op != token.KW_OR {
		t.Fatalf("expected 'or' at root, got %T", expr)
	}
	and, ok := or.Left.(*ast.LogicalExpr)
	if !ok || and.Op != token.KW_AND {
		t.Fatalf("expected 'and' below 'or', got %T", or.Left)
	}
	if _, ok := and.Left.(*ast.BinaryExpr); !ok {
		t.Errorf("expected '==' below 'and', got %T", and.Left)
	}
}

func TestParseAssignmentLowerThanOr(t *testing.T) {
	// x = a or b parses as x = (a or b)
	expr := parseExpr(t, `x = a or b`)
	assign, ok := expr.(*ast.AssignExpr)
	if !ok {
		t.Fatalf("expected AssignExpr at root, got %T", expr)
	}
	if _, ok := assign.Value.(*ast.LogicalExpr); !ok {
		t.Errorf("expected LogicalExpr value, got %T", assign.Value)
	}
}

func TestParseInvalidAssignmentTarget(t *testing.T) {
	l := lexer.New(`a + b = c;`, "test.ql")
	tokens, _ := l.Tokenize()
	p := New(tokens)
	_, diags := p.ParseProgram()

	if len(diags) == 0 {
		t.Fatal("expected parse errors")
	}
	found := false
	for _, d := range diags {
		if d.Code == "E2003" {
			found = true
		}
	}
	if !found {
		t.Errorf("expected an E2003 invalid-assignment-target diagnostic, got %v", diags)
	}
}

func TestParseIfStmt(t *testing.T) {
	prog := parseOK(t, `if (x > 0) print x; else print 0;`)
	ifStmt, ok := prog.Stmts[0].(*ast.IfStmt)
	if !ok {
		t.Fatalf("expected IfStmt, got %T", prog.Stmts[0])
	}
	if ifStmt.Condition == nil || ifStmt.Then == nil || ifStmt.Else == nil {
		t.Fatal("if statement is missing parts")
	}
}

func TestParseDanglingElse(t *testing.T) {
	// else binds to the nearest if
	prog := parseOK(t, `if (a) if (b) print 1; else print 2;`)
	outer, ok := prog.Stmts[0].(*ast.IfStmt)
	if !ok {
		t.Fatalf("expected IfStmt, got %T", prog.Stmts[0])
	}
	if outer.Else != nil {
		t.Error("else bound to the outer if")
	}
	inner, ok := outer.Then.(*ast.IfStmt)
	if !ok {
		t.Fatalf("expected nested IfStmt, got %T", outer.Then)
	}
	if inner.Else == nil {
		t.Error("else missing on the inner if")
	}
}

func TestParseWhileStmt(t *testing.T) {
	prog := parseOK(t, `while (i < 10) i = i + 1;`)
	whileStmt, ok := prog.Stmts[0].(*ast.WhileStmt)
	if !ok {
		t.Fatalf("expected WhileStmt, got %T", prog.Stmts[0])
	}
	if whileStmt.Condition == nil || whileStmt.Body == nil {
		t.Fatal("while statement is missing parts")
	}
}

func TestParseBlock(t *testing.T) {
	prog := parseOK(t, `{ var x = 1; print x; }`)
	block, ok := prog.Stmts[0].(*ast.BlockStmt)
	if !ok {
		t.Fatalf("expected BlockStmt, got %T", prog.Stmts[0])
	}
	if len(block.Stmts) != 2 {
		t.Errorf("expected 2 inner statements, got %d", len(block.Stmts))
	}
}

func TestParseUnterminatedBlock(t *testing.T) {
	l := lexer.New(`{ var x = 1;`, "test.ql")
	tokens, _ := l.Tokenize()
	p := New(tokens)
	_, diags := p.ParseProgram()

	if len(diags) == 0 {
		t.Error("expected a diagnostic for the unterminated block")
	}
}

func TestParseForDesugaring(t *testing.T) {
	// for (var i = 0; i < 3; i = i + 1) print i;
	// desugars to { var i = 0; while (i < 3) { print i; i = i + 1; } }
	prog := parseOK(t, `for (var i = 0; i < 3; i = i + 1) print i;`)
	outer, ok := prog.Stmts[0].(*ast.BlockStmt)
	if !ok {
		t.Fatalf("expected BlockStmt, got %T", prog.Stmts[0])
	}
	if len(outer.Stmts) != 2 {
		t.Fatalf("expected init + loop, got %d statements", len(outer.Stmts))
	}
	if _, ok := outer.Stmts[0].(*ast.VarDeclStmt); !ok {
		t.Errorf("expected VarDeclStmt init, got %T", outer.Stmts[0])
	}
	loop, ok := outer.Stmts[1].(*ast.WhileStmt)
	if !ok {
		t.Fatalf("expected WhileStmt, got %T", outer.Stmts[1])
	}
	body, ok := loop.Body.(*ast.BlockStmt)
	if !ok {
		t.Fatalf("expected BlockStmt body, got %T", loop.Body)
	}
	if len(body.Stmts) != 2 {
		t.Fatalf("expected body + increment, got %d statements", len(body.Stmts))
	}
	if _, ok := body.Stmts[1].(*ast.ExprStmt); !ok {
		t.Errorf("expected ExprStmt increment, got %T", body.Stmts[1])
	}
}

func TestParseForMissingCondition(t *testing.T) {
	// A missing condition desugars to the literal true.
	prog := parseOK(t, `for (;;) print 1;`)
	loop, ok := prog.Stmts[0].(*ast.WhileStmt)
	if !ok {
		t.Fatalf("expected WhileStmt, got %T", prog.Stmts[0])
	}
	lit, ok := loop.Condition.(*ast.BoolLiteral)
	if !ok || !lit.Value {
		t.Errorf("expected literal true condition, got %#v", loop.Condition)
	}
}

func TestParseErrorRecovery(t *testing.T) {
	// Two independent malformed statements produce two diagnostics; the
	// well-formed statement between them is still recovered.
	source := `var = 1; print 2; var + 3;`
	l := lexer.New(source, "test.ql")
	tokens, _ := l.Tokenize()
	p := New(tokens)
	prog, diags := p.ParseProgram()

	if len(diags) != 2 {
		t.Fatalf("expected 2 diagnostics, got %d: %v", len(diags), diags)
	}
	if len(prog.Stmts) != 1 {
		t.Fatalf("expected 1 recovered statement, got %d", len(prog.Stmts))
	}
	if _, ok := prog.Stmts[0].(*ast.PrintStmt); !ok {
		t.Errorf("expected recovered PrintStmt, got %T", prog.Stmts[0])
	}
}

func TestParseRecoveryInsideBlock(t *testing.T) {
	source := `{ var = 1; print 2; }`
	l := lexer.New(source, "test.ql")
	tokens, _ := l.Tokenize()
	p := New(tokens)
	prog, diags := p.ParseProgram()

	if len(diags) != 1 {
		t.Fatalf("expected 1 diagnostic, got %d: %v", len(diags), diags)
	}
	block, ok := prog.Stmts[0].(*ast.BlockStmt)
	if !ok {
		t.Fatalf("expected BlockStmt, got %T", prog.Stmts[0])
	}
	if len(block.Stmts) != 1 {
		t.Errorf("expected 1 recovered inner statement, got %d", len(block.Stmts))
	}
}

func TestParseJSONOutput(t *testing.T) {
	prog := parseOK(t, `var x = 1;`)
	data, err := json.Marshal(ast.NodeToMap(prog))
	if err != nil {
		t.Fatalf("json error: %v", err)
	}
	var m map[string]interface{}
	if err := json.Unmarshal(data, &m); err != nil {
		t.Fatalf("invalid JSON: %v", err)
	}
	if m["kind"] != "Program" {
		t.Errorf("expected kind 'Program', got %v", m["kind"])
	}
}
