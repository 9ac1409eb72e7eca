// Package parser implements the syntax analysis for quill.
// Statements are parsed by recursive descent; expressions use precedence
// climbing over explicit binding-power levels.
package parser

import (
	"fmt"
	"strconv"

	"quill-lang/internal/ast"
	"quill-lang/internal/diag"
	"quill-lang/internal/span"
	"quill-lang/internal/token"
)

// ============================================================
// Binding power (precedence) levels
// ============================================================

const (
	bpNone       = 0
	bpOr         = 10 // or
	bpAnd        = 20 // and
	bpEquality   = 30 // == !=
	bpComparison = 40 // < <= > >=
	bpTerm       = 50 // + -
	bpFactor     = 60 // * /
	bpUnary      = 70 // ! -
)

// infixBP returns the left binding power for an infix operator. Assignment
// is not listed here; it is handled above the climbing loop because its
// left side must be re-interpreted as an assignment target.
func infixBP(kind token.Kind) int {
	switch kind {
	case token.KW_OR:
		return bpOr
	case token.KW_AND:
		return bpAnd
	case token.EQ, token.NEQ:
		return bpEquality
	case token.LT, token.LTE, token.GT, token.GTE:
		return bpComparison
	case token.PLUS, token.MINUS:
		return bpTerm
	case token.STAR, token.SLASH:
		return bpFactor
	default:
		return bpNone
	}
}

// ============================================================
// Parser
// ============================================================

// Parser performs syntax analysis on a stream of tokens. It does not stop
// at the first syntax error: failed declarations are discarded, the token
// stream is synchronized to the next statement boundary, and parsing
// resumes, collecting every diagnostic along the way.
type Parser struct {
	tokens []token.Token
	pos    int
	diags  []diag.Diagnostic
}

// New creates a new parser from a token slice. The slice is expected to end
// with an EOF token.
func New(tokens []token.Token) *Parser {
	return &Parser{tokens: tokens, pos: 0}
}

// ParseProgram parses the entire token stream and returns the program AST
// and all collected diagnostics. A non-empty diagnostic slice means the
// parse failed as a whole, even though recovered statements are present.
func (p *Parser) ParseProgram() (*ast.Program, []diag.Diagnostic) {
	prog := &ast.Program{}
	startPos := p.peek().Span.Start

	for !p.isAtEnd() {
		if stmt := p.parseDecl(); stmt != nil {
			prog.Stmts = append(prog.Stmts, stmt)
		}
	}

	prog.Span = span.Span{Start: startPos, End: p.peek().Span.End}
	return prog, p.diags
}

// ---- navigation helpers ----

// peek clamps to EOF so that token access can never run off the end of the
// slice; an overrun would be a parser defect, not a user-facing error.
func (p *Parser) peek() token.Token {
	if p.pos >= len(p.tokens) {
		return token.Token{Kind: token.EOF}
	}
	return p.tokens[p.pos]
}

func (p *Parser) peekKind() token.Kind {
	return p.peek().Kind
}

func (p *Parser) prev() token.Token {
	if p.pos == 0 || p.pos-1 >= len(p.tokens) {
		return token.Token{Kind: token.EOF}
	}
	return p.tokens[p.pos-1]
}

func (p *Parser) advance() token.Token {
	tok := p.peek()
	if p.pos < len(p.tokens) {
		p.pos++
	}
	return tok
}

func (p *Parser) check(kind token.Kind) bool {
	return p.peekKind() == kind
}

func (p *Parser) expect(kind token.Kind) (token.Token, bool) {
	if p.check(kind) {
		return p.advance(), true
	}
	tok := p.peek()
	p.error("E2001", tok.Span, fmt.Sprintf("expected '%s', got '%s'", kind, tok.Kind))
	return tok, false
}

func (p *Parser) isAtEnd() bool {
	return p.peekKind() == token.EOF
}

func (p *Parser) error(code string, s span.Span, msg string) {
	p.diags = append(p.diags, diag.Errorf(code, s, "%s", msg))
}

// ============================================================
// Error recovery
// ============================================================

// synchronize advances past the offending token, then discards tokens until
// a statement boundary: a just-consumed semicolon, a keyword that begins a
// new statement or declaration, or end of input. Changing this boundary set
// changes recovery granularity.
func (p *Parser) synchronize() {
	p.advance()
	for !p.isAtEnd() {
		if p.prev().Kind == token.SEMICOLON {
			return
		}
		switch p.peekKind() {
		case token.KW_CLASS, token.KW_FOR, token.KW_FUN, token.KW_IF,
			token.KW_PRINT, token.KW_RETURN, token.KW_VAR, token.KW_WHILE:
			return
		}
		p.advance()
	}
}

// ============================================================
// Declaration and statement parsing
// ============================================================

// parseDecl parses a single declaration and recovers on failure. Statement
// parse functions return nil when they fail (the diagnostic has already
// been recorded); parseDecl then synchronizes and reports the statement as
// discarded by returning nil itself.
func (p *Parser) parseDecl() ast.Stmt {
	var stmt ast.Stmt
	if p.check(token.KW_VAR) {
		stmt = p.parseVarDecl()
	} else {
		stmt = p.parseStmt()
	}
	if stmt == nil {
		p.synchronize()
	}
	return stmt
}

func (p *Parser) parseStmt() ast.Stmt {
	switch p.peekKind() {
	case token.KW_PRINT:
		return p.parsePrintStmt()
	case token.LBRACE:
		return p.parseBlock()
	case token.KW_IF:
		return p.parseIfStmt()
	case token.KW_WHILE:
		return p.parseWhileStmt()
	case token.KW_FOR:
		return p.parseForStmt()
	default:
		return p.parseExprStmt()
	}
}

// parseVarDecl parses: var IDENT [ = expr ] ;
func (p *Parser) parseVarDecl() ast.Stmt {
	start := p.advance() // consume 'var'

	nameTok, ok := p.expect(token.IDENT)
	if !ok {
		return nil
	}

	var init ast.Expr
	if p.check(token.ASSIGN) {
		p.advance()
		init = p.parseExpression()
		if init == nil {
			return nil
		}
	}

	if _, ok := p.expect(token.SEMICOLON); !ok {
		return nil
	}

	return &ast.VarDeclStmt{
		StmtBase: makeStmtBase(start.Span.Start, p.prevEnd()),
		Name:     nameTok.Lexeme,
		Init:     init,
	}
}

// parsePrintStmt parses: print expr ;
func (p *Parser) parsePrintStmt() ast.Stmt {
	start := p.advance() // consume 'print'

	expr := p.parseExpression()
	if expr == nil {
		return nil
	}
	if _, ok := p.expect(token.SEMICOLON); !ok {
		return nil
	}

	return &ast.PrintStmt{
		StmtBase: makeStmtBase(start.Span.Start, p.prevEnd()),
		Expr:     expr,
	}
}

// parseExprStmt parses: expr ;
func (p *Parser) parseExprStmt() ast.Stmt {
	expr := p.parseExpression()
	if expr == nil {
		return nil
	}
	if _, ok := p.expect(token.SEMICOLON); !ok {
		return nil
	}

	return &ast.ExprStmt{
		StmtBase: makeStmtBase(expr.GetSpan().Start, p.prevEnd()),
		Expr:     expr,
	}
}

// parseBlock parses: { declaration* }. Failed inner declarations are
// recovered locally so the rest of the block still parses; an unterminated
// block is itself an error.
func (p *Parser) parseBlock() ast.Stmt {
	start := p.advance() // consume '{'
	block := &ast.BlockStmt{}

	for !p.check(token.RBRACE) && !p.isAtEnd() {
		if stmt := p.parseDecl(); stmt != nil {
			block.Stmts = append(block.Stmts, stmt)
		}
	}

	if _, ok := p.expect(token.RBRACE); !ok {
		return nil
	}

	block.StmtBase = makeStmtBase(start.Span.Start, p.prevEnd())
	return block
}

// parseIfStmt parses: if ( expr ) stmt [ else stmt ]. A dangling else
// binds to the nearest unmatched if, which the greedy else check below
// yields naturally.
func (p *Parser) parseIfStmt() ast.Stmt {
	start := p.advance() // consume 'if'

	if _, ok := p.expect(token.LPAREN); !ok {
		return nil
	}
	cond := p.parseExpression()
	if cond == nil {
		return nil
	}
	if _, ok := p.expect(token.RPAREN); !ok {
		return nil
	}

	then := p.parseStmt()
	if then == nil {
		return nil
	}

	var els ast.Stmt
	if p.check(token.KW_ELSE) {
		p.advance()
		els = p.parseStmt()
		if els == nil {
			return nil
		}
	}

	return &ast.IfStmt{
		StmtBase:  makeStmtBase(start.Span.Start, p.prevEnd()),
		Condition: cond,
		Then:      then,
		Else:      els,
	}
}

// parseWhileStmt parses: while ( expr ) stmt
func (p *Parser) parseWhileStmt() ast.Stmt {
	start := p.advance() // consume 'while'

	if _, ok := p.expect(token.LPAREN); !ok {
		return nil
	}
	cond := p.parseExpression()
	if cond == nil {
		return nil
	}
	if _, ok := p.expect(token.RPAREN); !ok {
		return nil
	}

	body := p.parseStmt()
	if body == nil {
		return nil
	}

	return &ast.WhileStmt{
		StmtBase:  makeStmtBase(start.Span.Start, p.prevEnd()),
		Condition: cond,
		Body:      body,
	}
}

// parseForStmt parses: for ( [init] ; [cond] ; [incr] ) stmt and desugars
// it into a while loop at parse time:
//
//	{ init; while (cond) { body; incr; } }
//
// A missing condition desugars to the literal true.
func (p *Parser) parseForStmt() ast.Stmt {
	start := p.advance() // consume 'for'

	if _, ok := p.expect(token.LPAREN); !ok {
		return nil
	}

	var init ast.Stmt
	switch {
	case p.check(token.SEMICOLON):
		p.advance()
	case p.check(token.KW_VAR):
		init = p.parseVarDecl()
		if init == nil {
			return nil
		}
	default:
		init = p.parseExprStmt()
		if init == nil {
			return nil
		}
	}

	var cond ast.Expr
	if !p.check(token.SEMICOLON) {
		cond = p.parseExpression()
		if cond == nil {
			return nil
		}
	}
	if _, ok := p.expect(token.SEMICOLON); !ok {
		return nil
	}

	var incr ast.Expr
	if !p.check(token.RPAREN) {
		incr = p.parseExpression()
		if incr == nil {
			return nil
		}
	}
	if _, ok := p.expect(token.RPAREN); !ok {
		return nil
	}

	body := p.parseStmt()
	if body == nil {
		return nil
	}

	full := makeStmtBase(start.Span.Start, p.prevEnd())

	if incr != nil {
		body = &ast.BlockStmt{
			StmtBase: full,
			Stmts: []ast.Stmt{
				body,
				&ast.ExprStmt{
					StmtBase: ast.StmtBase{NodeBase: ast.NodeBase{Span: incr.GetSpan()}},
					Expr:     incr,
				},
			},
		}
	}
	if cond == nil {
		cond = &ast.BoolLiteral{
			ExprBase: makeExprBase(start.Span.Start, start.Span.End),
			Value:    true,
		}
	}

	loop := &ast.WhileStmt{
		StmtBase:  full,
		Condition: cond,
		Body:      body,
	}
	if init == nil {
		return loop
	}
	return &ast.BlockStmt{
		StmtBase: full,
		Stmts:    []ast.Stmt{init, loop},
	}
}

// ============================================================
// Expression parsing
// ============================================================

// parseExpression parses a full expression, assignment included. Returns
// nil after recording a diagnostic if no expression could be parsed.
func (p *Parser) parseExpression() ast.Expr {
	return p.parseAssignment()
}

// parseAssignment parses the lowest-precedence level. It first parses an
// or-level expression; if an '=' follows, the left side must have been a
// plain variable reference and the right side is parsed by recursion,
// making assignment right-associative: a = b = c is a = (b = c).
func (p *Parser) parseAssignment() ast.Expr {
	expr := p.climb(bpNone)
	if expr == nil {
		return nil
	}

	if p.check(token.ASSIGN) {
		eqTok := p.advance()
		value := p.parseAssignment()
		if value == nil {
			return nil
		}
		target, ok := expr.(*ast.VariableExpr)
		if !ok {
			p.error("E2003", eqTok.Span, "invalid assignment target")
			return nil
		}
		return &ast.AssignExpr{
			ExprBase: makeExprBase(expr.GetSpan().Start, value.GetSpan().End),
			Name:     target.Name,
			Value:    value,
		}
	}

	return expr
}

// climb parses an expression whose operators all bind tighter than minBP,
// looping left-associatively at each level.
func (p *Parser) climb(minBP int) ast.Expr {
	left := p.nud()
	if left == nil {
		return nil
	}

	for {
		kind := p.peekKind()
		bp := infixBP(kind)
		if bp <= minBP {
			break
		}
		left = p.led(left)
		if left == nil {
			return nil
		}
	}

	return left
}

// nud handles prefix (null denotation) parsing.
func (p *Parser) nud() ast.Expr {
	tok := p.peek()

	switch tok.Kind {
	case token.NUMBER:
		p.advance()
		// The lexer guarantees the lexeme is digits[.digits], so ParseFloat
		// can only fail with ErrRange, saturating to +Inf. That is an
		// acceptable IEEE value, not a syntax error.
		val, _ := strconv.ParseFloat(tok.Lexeme, 64)
		return &ast.NumberLiteral{
			ExprBase: makeExprBase(tok.Span.Start, tok.Span.End),
			Value:    val,
		}

	case token.STRING:
		p.advance()
		return &ast.StringLiteral{
			ExprBase: makeExprBase(tok.Span.Start, tok.Span.End),
			Value:    tok.Lexeme,
		}

	case token.KW_TRUE:
		p.advance()
		return &ast.BoolLiteral{
			ExprBase: makeExprBase(tok.Span.Start, tok.Span.End),
			Value:    true,
		}

	case token.KW_FALSE:
		p.advance()
		return &ast.BoolLiteral{
			ExprBase: makeExprBase(tok.Span.Start, tok.Span.End),
			Value:    false,
		}

	case token.KW_NIL:
		p.advance()
		return &ast.NilLiteral{
			ExprBase: makeExprBase(tok.Span.Start, tok.Span.End),
		}

	case token.IDENT:
		p.advance()
		return &ast.VariableExpr{
			ExprBase: makeExprBase(tok.Span.Start, tok.Span.End),
			Name:     tok.Lexeme,
		}

	case token.LPAREN:
		p.advance() // consume '('
		inner := p.parseExpression()
		if inner == nil {
			return nil
		}
		if _, ok := p.expect(token.RPAREN); !ok {
			return nil
		}
		return &ast.GroupingExpr{
			ExprBase: makeExprBase(tok.Span.Start, p.prevEnd()),
			Inner:    inner,
		}

	case token.BANG, token.MINUS:
		// Unary operators are right-associative: the operand is parsed at
		// the unary level itself, so -!x and --x nest by direct recursion.
		p.advance()
		operand := p.climb(bpUnary)
		if operand == nil {
			return nil
		}
		return &ast.UnaryExpr{
			ExprBase: makeExprBase(tok.Span.Start, operand.GetSpan().End),
			Op:       tok.Kind,
			Operand:  operand,
		}

	default:
		p.error("E2002", tok.Span, fmt.Sprintf("expected expression, got '%s'", tok.Kind))
		return nil
	}
}

// led handles infix (left denotation) parsing. The and/or operators build
// LogicalExpr nodes so evaluation can short-circuit; everything else is an
// eager BinaryExpr.
func (p *Parser) led(left ast.Expr) ast.Expr {
	opTok := p.advance()
	right := p.climb(infixBP(opTok.Kind))
	if right == nil {
		return nil
	}

	base := makeExprBase(left.GetSpan().Start, right.GetSpan().End)
	if opTok.Kind == token.KW_AND || opTok.Kind == token.KW_OR {
		return &ast.LogicalExpr{ExprBase: base, Op: opTok.Kind, Left: left, Right: right}
	}
	return &ast.BinaryExpr{ExprBase: base, Op: opTok.Kind, Left: left, Right: right}
}

// ============================================================
// Span helpers
// ============================================================

func (p *Parser) prevEnd() span.Position {
	if p.pos > 0 && p.pos-1 < len(p.tokens) {
		return p.tokens[p.pos-1].Span.End
	}
	return p.peek().Span.Start
}

func makeExprBase(start, end span.Position) ast.ExprBase {
	return ast.ExprBase{NodeBase: ast.NodeBase{Span: span.Span{Start: start, End: end}}}
}

func makeStmtBase(start, end span.Position) ast.StmtBase {
	return ast.StmtBase{NodeBase: ast.NodeBase{Span: span.Span{Start: start, End: end}}}
}
