// Package lexer implements the mini language tokenizer.
package lexer

import (
	"fmt"
	"unicode"
	"unicode/utf8"

	"github.com/thomasrohde/mini/pkg/ast"
	"github.com/thomasrohde/mini/pkg/diagnostics"
	"github.com/thomasrohde/mini/pkg/value"
)

// TokenType identifies the type of a lexer token.
type TokenType int

const (
	// Literals
	TokNumber TokenType = iota
	TokIdent

	// Arithmetic operators
	TokPlus  // +
	TokMinus // -
	TokMul   // *
	TokDiv   // /
	TokMod   // %
	TokPow   // **

	// Assignment and comparison
	TokAssign // =
	TokEq     // ==
	TokNeq    // !=
	TokLt     // <
	TokGt     // >
	TokLte    // <=
	TokGte    // >=

	// Punctuation
	TokLParen  // (
	TokRParen  // )
	TokLBrace  // {
	TokRBrace  // }
	TokSemicol // ;

	// Keywords
	TokPrint
	TokIf
	TokElse
	TokWhile

	// Special
	TokEOF
)

var tokenNames = [...]string{
	TokNumber:  "NUMBER",
	TokIdent:   "IDENT",
	TokPlus:    "PLUS",
	TokMinus:   "MINUS",
	TokMul:     "MUL",
	TokDiv:     "DIV",
	TokMod:     "MOD",
	TokPow:     "POW",
	TokAssign:  "ASSIGN",
	TokEq:      "EQ",
	TokNeq:     "NEQ",
	TokLt:      "LT",
	TokGt:      "GT",
	TokLte:     "LTE",
	TokGte:     "GTE",
	TokLParen:  "LPAREN",
	TokRParen:  "RPAREN",
	TokLBrace:  "LBRACE",
	TokRBrace:  "RBRACE",
	TokSemicol: "SEMICOL",
	TokPrint:   "PRINT",
	TokIf:      "IF",
	TokElse:    "ELSE",
	TokWhile:   "WHILE",
	TokEOF:     "EOF",
}

func (t TokenType) String() string {
	if t >= 0 && int(t) < len(tokenNames) {
		return tokenNames[t]
	}
	return fmt.Sprintf("token(%d)", int(t))
}

// Token represents a single lexer token. Num is set only for TokNumber.
type Token struct {
	Type  TokenType
	Value string
	Num   value.Number
	Span  ast.Span
}

// Line returns the 1-based line the token starts on.
func (t Token) Line() int {
	return t.Span.StartLine
}

var keywords = map[string]TokenType{
	"print": TokPrint,
	"if":    TokIf,
	"else":  TokElse,
	"while": TokWhile,
}

type scanner struct {
	source   string
	filename string
	pos      int
	line     int
	col      int
}

func newScanner(source, filename string) *scanner {
	return &scanner{
		source:   source,
		filename: filename,
		pos:      0,
		line:     1,
		col:      1,
	}
}

func (s *scanner) atEnd() bool {
	return s.pos >= len(s.source)
}

func (s *scanner) peek() byte {
	if s.atEnd() {
		return 0
	}
	return s.source[s.pos]
}

func (s *scanner) peekAt(offset int) byte {
	p := s.pos + offset
	if p >= len(s.source) {
		return 0
	}
	return s.source[p]
}

func (s *scanner) peekRune() (rune, int) {
	return utf8.DecodeRuneInString(s.source[s.pos:])
}

// advance consumes one rune.
func (s *scanner) advance() {
	r, size := s.peekRune()
	s.pos += size
	if r == '\n' {
		s.line++
		s.col = 1
	} else {
		s.col++
	}
}

func (s *scanner) span(startLine, startCol int) ast.Span {
	return ast.Span{
		File:      s.filename,
		StartLine: startLine,
		StartCol:  startCol,
		EndLine:   s.line,
		EndCol:    s.col,
	}
}

func (s *scanner) skipWhitespaceAndComments() {
	for !s.atEnd() {
		r, _ := s.peekRune()
		if unicode.IsSpace(r) {
			s.advance()
		} else if r == '/' && s.peekAt(1) == '/' {
			// Skip comment to end of line
			for !s.atEnd() && s.peek() != '\n' {
				s.advance()
			}
		} else {
			break
		}
	}
}

func isAlpha(ch byte) bool {
	return (ch >= 'a' && ch <= 'z') || (ch >= 'A' && ch <= 'Z') || ch == '_'
}

func isDigit(ch byte) bool {
	return ch >= '0' && ch <= '9'
}

func isAlphaNumeric(ch byte) bool {
	return isAlpha(ch) || isDigit(ch)
}

func (s *scanner) scanNumber() (Token, error) {
	startLine, startCol := s.line, s.col
	startPos := s.pos

	for !s.atEnd() && isDigit(s.peek()) {
		s.advance()
	}

	// A fraction needs at least one digit after the dot; "1." leaves the dot
	// for the next token.
	if s.peek() == '.' && isDigit(s.peekAt(1)) {
		s.advance() // consume '.'
		for !s.atEnd() && isDigit(s.peek()) {
			s.advance()
		}
	}

	text := s.source[startPos:s.pos]
	num, err := value.Parse(text)
	if err != nil {
		return Token{}, s.lexError(startLine, startCol, fmt.Sprintf("invalid number literal '%s' at line %d", text, startLine))
	}

	return Token{
		Type:  TokNumber,
		Value: text,
		Num:   num,
		Span:  s.span(startLine, startCol),
	}, nil
}

func (s *scanner) scanIdentOrKeyword() Token {
	startLine, startCol := s.line, s.col
	startPos := s.pos

	for !s.atEnd() && isAlphaNumeric(s.peek()) {
		s.advance()
	}

	text := s.source[startPos:s.pos]

	if tokType, ok := keywords[text]; ok {
		return Token{
			Type:  tokType,
			Value: text,
			Span:  s.span(startLine, startCol),
		}
	}

	return Token{
		Type:  TokIdent,
		Value: text,
		Span:  s.span(startLine, startCol),
	}
}

func (s *scanner) lexError(line, col int, msg string) error {
	diag := diagnostics.MakeDiag(
		diagnostics.ELex,
		msg,
		&ast.Span{File: s.filename, StartLine: line, StartCol: col, EndLine: line, EndCol: col + 1},
		"",
	)
	return &LexError{Diag: diag}
}

// LexError wraps a diagnostic for lex errors.
type LexError struct {
	Diag diagnostics.Diagnostic
}

func (e *LexError) Error() string {
	return e.Diag.Message
}

// Diagnostic returns the wrapped diagnostic.
func (e *LexError) Diagnostic() diagnostics.Diagnostic {
	return e.Diag
}

// Line returns the line the offending character is on.
func (e *LexError) Line() int {
	if e.Diag.Span == nil {
		return 0
	}
	return e.Diag.Span.StartLine
}

// twoChar maps a first character to the token formed when it is followed
// by '='. These are tried before their one-character prefixes.
var twoChar = map[byte]TokenType{
	'=': TokEq,
	'!': TokNeq,
	'<': TokLte,
	'>': TokGte,
}

var oneChar = map[byte]TokenType{
	'=': TokAssign,
	'<': TokLt,
	'>': TokGt,
	'+': TokPlus,
	'-': TokMinus,
	'*': TokMul,
	'/': TokDiv,
	'%': TokMod,
	'(': TokLParen,
	')': TokRParen,
	'{': TokLBrace,
	'}': TokRBrace,
	';': TokSemicol,
}

func (s *scanner) nextToken() (Token, error) {
	s.skipWhitespaceAndComments()

	if s.atEnd() {
		return Token{
			Type:  TokEOF,
			Value: "",
			Span:  s.span(s.line, s.col),
		}, nil
	}

	ch := s.peek()
	startLine, startCol := s.line, s.col

	// Numbers come before identifiers.
	if isDigit(ch) {
		return s.scanNumber()
	}

	if isAlpha(ch) {
		return s.scanIdentOrKeyword(), nil
	}

	if typ, ok := twoChar[ch]; ok && s.peekAt(1) == '=' {
		s.advance()
		s.advance()
		return Token{Type: typ, Value: s.source[s.pos-2 : s.pos], Span: s.span(startLine, startCol)}, nil
	}

	if ch == '*' && s.peekAt(1) == '*' {
		s.advance()
		s.advance()
		return Token{Type: TokPow, Value: "**", Span: s.span(startLine, startCol)}, nil
	}

	if typ, ok := oneChar[ch]; ok {
		s.advance()
		return Token{Type: typ, Value: string(ch), Span: s.span(startLine, startCol)}, nil
	}

	r, _ := s.peekRune()
	return Token{}, s.lexError(startLine, startCol, fmt.Sprintf("unknown character '%c' at line %d", r, startLine))
}

// Tokenize breaks source code into a slice of tokens ending with exactly one
// TokEOF. The first unrecognized character aborts tokenization.
func Tokenize(source, filename string) ([]Token, error) {
	s := newScanner(source, filename)
	var tokens []Token

	for {
		tok, err := s.nextToken()
		if err != nil {
			return nil, err
		}
		tokens = append(tokens, tok)
		if tok.Type == TokEOF {
			break
		}
	}

	return tokens, nil
}
