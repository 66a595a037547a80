// Package parser implements the mini language parser.
package parser

import (
	"fmt"

	"github.com/thomasrohde/mini/pkg/ast"
	"github.com/thomasrohde/mini/pkg/diagnostics"
	"github.com/thomasrohde/mini/pkg/lexer"
)

// ParseError wraps a diagnostic for parse errors.
type ParseError struct {
	Diag diagnostics.Diagnostic
}

func (e *ParseError) Error() string {
	return e.Diag.Message
}

// Diagnostic returns the wrapped diagnostic.
func (e *ParseError) Diagnostic() diagnostics.Diagnostic {
	return e.Diag
}

// Line returns the line of the offending token.
func (e *ParseError) Line() int {
	if e.Diag.Span == nil {
		return 0
	}
	return e.Diag.Span.StartLine
}

type parser struct {
	tokens []lexer.Token
	pos    int
	err    *ParseError
}

// Parse tokenizes source and parses it into a Block.
func Parse(source, filename string) (*ast.Block, error) {
	tokens, err := lexer.Tokenize(source, filename)
	if err != nil {
		return nil, err
	}
	return ParseTokens(tokens)
}

// ParseTokens parses a token sequence into a Block holding every top-level
// statement. Parsing stops at the first malformed construct and no partial
// tree is returned.
func ParseTokens(tokens []lexer.Token) (*ast.Block, error) {
	if len(tokens) == 0 || tokens[len(tokens)-1].Type != lexer.TokEOF {
		eof := lexer.Token{Type: lexer.TokEOF, Span: ast.Span{StartLine: 1, StartCol: 1, EndLine: 1, EndCol: 1}}
		if len(tokens) > 0 {
			eof.Span = tokens[len(tokens)-1].Span
		}
		tokens = append(tokens[:len(tokens):len(tokens)], eof)
	}

	p := &parser{tokens: tokens}
	block := p.parseProgram()
	if p.err != nil {
		return nil, p.err
	}
	return block, nil
}

func (p *parser) current() lexer.Token {
	if p.pos >= len(p.tokens) {
		return p.tokens[len(p.tokens)-1] // EOF
	}
	return p.tokens[p.pos]
}

func (p *parser) peek() lexer.TokenType {
	return p.current().Type
}

func (p *parser) peekAt(offset int) lexer.TokenType {
	idx := p.pos + offset
	if idx >= len(p.tokens) {
		return lexer.TokEOF
	}
	return p.tokens[idx].Type
}

func (p *parser) advance() lexer.Token {
	tok := p.current()
	if p.pos < len(p.tokens)-1 {
		p.pos++
	}
	return tok
}

func (p *parser) expect(typ lexer.TokenType) (lexer.Token, bool) {
	tok := p.current()
	if tok.Type != typ {
		p.fail(fmt.Sprintf("expected %s, got %s at line %d", typ, describe(tok), tok.Line()), tok.Span)
		return tok, false
	}
	return p.advance(), true
}

func (p *parser) unexpected(tok lexer.Token) {
	p.fail(fmt.Sprintf("unexpected token %s at line %d", describe(tok), tok.Line()), tok.Span)
}

// fail records the first error only.
func (p *parser) fail(msg string, span ast.Span) {
	if p.err != nil {
		return
	}
	p.err = &ParseError{Diag: diagnostics.MakeDiag(diagnostics.EParse, msg, &span, "")}
}

// describe renders a token as its kind plus lexeme, e.g. ASSIGN ('=').
func describe(tok lexer.Token) string {
	if tok.Type == lexer.TokEOF {
		return "EOF"
	}
	return fmt.Sprintf("%s ('%s')", tok.Type, tok.Value)
}

func (p *parser) spanFromTo(start, end ast.Span) ast.Span {
	return ast.Span{
		File:      start.File,
		StartLine: start.StartLine,
		StartCol:  start.StartCol,
		EndLine:   end.EndLine,
		EndCol:    end.EndCol,
	}
}

// previousSpan is the span of the last consumed token.
func (p *parser) previousSpan() ast.Span {
	if p.pos == 0 {
		return p.current().Span
	}
	return p.tokens[p.pos-1].Span
}

// --- Program ---

func (p *parser) parseProgram() *ast.Block {
	startSpan := p.current().Span

	var stmts []ast.Node
	for p.peek() != lexer.TokEOF {
		stmt := p.parseStatement()
		if stmt == nil {
			return nil
		}
		stmts = append(stmts, stmt)
	}

	return &ast.Block{
		Span:       p.spanFromTo(startSpan, p.current().Span),
		Statements: stmts,
	}
}

// --- Statements ---

func (p *parser) parseStatement() ast.Node {
	var stmt ast.Node
	switch p.peek() {
	case lexer.TokPrint:
		stmt = p.parsePrint()
	case lexer.TokIf:
		stmt = p.parseIf()
	case lexer.TokWhile:
		stmt = p.parseWhile()
	case lexer.TokIdent:
		if p.peekAt(1) == lexer.TokAssign {
			stmt = p.parseAssign()
		} else {
			stmt = p.parseExpr()
		}
	default:
		stmt = p.parseExpr()
	}
	if stmt == nil {
		return nil
	}

	if p.peek() == lexer.TokSemicol {
		p.advance()
	}
	return stmt
}

func (p *parser) parsePrint() ast.Node {
	start := p.advance() // consume 'print'
	expr := p.parseParenCondition()
	if expr == nil {
		return nil
	}
	return &ast.Print{
		Span: p.spanFromTo(start.Span, p.previousSpan()),
		Expr: expr,
	}
}

func (p *parser) parseAssign() ast.Node {
	nameTok := p.advance()
	p.advance() // consume '='
	val := p.parseExpr()
	if val == nil {
		return nil
	}
	return &ast.Assign{
		Span:  p.spanFromTo(nameTok.Span, val.NodeSpan()),
		Name:  nameTok.Value,
		Value: val,
	}
}

func (p *parser) parseIf() ast.Node {
	start := p.advance() // consume 'if'
	cond := p.parseParenCondition()
	if cond == nil {
		return nil
	}
	then, ok := p.parseBlock()
	if !ok {
		return nil
	}

	var elseBody []ast.Node
	if p.peek() == lexer.TokElse {
		p.advance()
		elseBody, ok = p.parseBlock()
		if !ok {
			return nil
		}
		if elseBody == nil {
			elseBody = []ast.Node{}
		}
	}

	return &ast.If{
		Span: p.spanFromTo(start.Span, p.previousSpan()),
		Cond: cond,
		Then: then,
		Else: elseBody,
	}
}

func (p *parser) parseWhile() ast.Node {
	start := p.advance() // consume 'while'
	cond := p.parseParenCondition()
	if cond == nil {
		return nil
	}
	body, ok := p.parseBlock()
	if !ok {
		return nil
	}
	return &ast.While{
		Span: p.spanFromTo(start.Span, p.previousSpan()),
		Cond: cond,
		Body: body,
	}
}

// parseParenCondition parses `( expression )`.
func (p *parser) parseParenCondition() ast.Node {
	if _, ok := p.expect(lexer.TokLParen); !ok {
		return nil
	}
	expr := p.parseExpr()
	if expr == nil {
		return nil
	}
	if _, ok := p.expect(lexer.TokRParen); !ok {
		return nil
	}
	return expr
}

// --- Block ---

func (p *parser) parseBlock() ([]ast.Node, bool) {
	if _, ok := p.expect(lexer.TokLBrace); !ok {
		return nil, false
	}
	var stmts []ast.Node
	for p.peek() != lexer.TokRBrace && p.peek() != lexer.TokEOF {
		stmt := p.parseStatement()
		if stmt == nil {
			return nil, false
		}
		stmts = append(stmts, stmt)
	}
	if _, ok := p.expect(lexer.TokRBrace); !ok {
		return nil, false
	}
	return stmts, true
}

// --- Expressions ---

func (p *parser) parseExpr() ast.Node {
	return p.parseComparison()
}

var comparisonOps = map[lexer.TokenType]ast.BinaryOp{
	lexer.TokEq:  ast.OpEqEq,
	lexer.TokNeq: ast.OpNeq,
	lexer.TokLt:  ast.OpLt,
	lexer.TokGt:  ast.OpGt,
	lexer.TokLte: ast.OpLtEq,
	lexer.TokGte: ast.OpGtEq,
}

var additiveOps = map[lexer.TokenType]ast.BinaryOp{
	lexer.TokPlus:  ast.OpAdd,
	lexer.TokMinus: ast.OpSub,
}

var multiplicativeOps = map[lexer.TokenType]ast.BinaryOp{
	lexer.TokMul: ast.OpMul,
	lexer.TokDiv: ast.OpDiv,
	lexer.TokMod: ast.OpMod,
}

// parseLeftAssoc folds `next (op next)*` to the left.
func (p *parser) parseLeftAssoc(ops map[lexer.TokenType]ast.BinaryOp, next func() ast.Node) ast.Node {
	left := next()
	if left == nil {
		return nil
	}

	for {
		op, ok := ops[p.peek()]
		if !ok {
			return left
		}
		p.advance()
		right := next()
		if right == nil {
			return nil
		}
		left = &ast.BinOp{
			Span:  p.spanFromTo(left.NodeSpan(), right.NodeSpan()),
			Left:  left,
			Op:    op,
			Right: right,
		}
	}
}

func (p *parser) parseComparison() ast.Node {
	return p.parseLeftAssoc(comparisonOps, p.parseAdditive)
}

func (p *parser) parseAdditive() ast.Node {
	return p.parseLeftAssoc(additiveOps, p.parseMultiplicative)
}

func (p *parser) parseMultiplicative() ast.Node {
	return p.parseLeftAssoc(multiplicativeOps, p.parsePower)
}

// parsePower is right-associative: 2 ** 3 ** 2 is 2 ** (3 ** 2).
func (p *parser) parsePower() ast.Node {
	left := p.parseUnary()
	if left == nil {
		return nil
	}
	if p.peek() != lexer.TokPow {
		return left
	}
	p.advance()
	right := p.parsePower()
	if right == nil {
		return nil
	}
	return &ast.BinOp{
		Span:  p.spanFromTo(left.NodeSpan(), right.NodeSpan()),
		Left:  left,
		Op:    ast.OpPow,
		Right: right,
	}
}

// parseUnary takes a primary as its operand, so -2 ** 2 is (-2) ** 2 and
// --x does not parse.
func (p *parser) parseUnary() ast.Node {
	if p.peek() == lexer.TokMinus {
		start := p.advance()
		operand := p.parsePrimary()
		if operand == nil {
			return nil
		}
		return &ast.Unary{
			Span:    p.spanFromTo(start.Span, operand.NodeSpan()),
			Op:      ast.OpNeg,
			Operand: operand,
		}
	}
	return p.parsePrimary()
}

func (p *parser) parsePrimary() ast.Node {
	tok := p.current()

	switch tok.Type {
	case lexer.TokNumber:
		p.advance()
		return &ast.Number{Span: tok.Span, Value: tok.Num}

	case lexer.TokIdent:
		p.advance()
		return &ast.Var{Span: tok.Span, Name: tok.Value}

	case lexer.TokLParen:
		p.advance()
		expr := p.parseExpr()
		if expr == nil {
			return nil
		}
		if _, ok := p.expect(lexer.TokRParen); !ok {
			return nil
		}
		return expr

	default:
		p.unexpected(tok)
		return nil
	}
}
