package lexer

import (
	"errors"
	"strings"
	"testing"
)

// helper to tokenize and fail on error
func mustTokenize(t *testing.T, source string) []Token {
	t.Helper()
	tokens, err := Tokenize(source, "test.mini")
	if err != nil {
		t.Fatalf("unexpected lex error: %v", err)
	}
	return tokens
}

// helper that strips the trailing EOF for easier assertions
func mustTokenizeNoEOF(t *testing.T, source string) []Token {
	t.Helper()
	tokens := mustTokenize(t, source)
	if len(tokens) == 0 {
		t.Fatal("expected at least one token (EOF)")
	}
	if tokens[len(tokens)-1].Type != TokEOF {
		t.Fatal("last token is not EOF")
	}
	return tokens[:len(tokens)-1]
}

func types(tokens []Token) []TokenType {
	out := make([]TokenType, len(tokens))
	for i, tok := range tokens {
		out[i] = tok.Type
	}
	return out
}

func expectTypes(t *testing.T, got []Token, want ...TokenType) {
	t.Helper()
	gotTypes := types(got)
	if len(gotTypes) != len(want) {
		t.Fatalf("got %d tokens %v, want %d %v", len(gotTypes), gotTypes, len(want), want)
	}
	for i := range want {
		if gotTypes[i] != want[i] {
			t.Errorf("token %d: got %s, want %s", i, gotTypes[i], want[i])
		}
	}
}

// ---------------------------------------------------------------------------
// Test: empty input produces only EOF
// ---------------------------------------------------------------------------
func TestEmptyInput(t *testing.T) {
	tokens := mustTokenize(t, "")
	if len(tokens) != 1 {
		t.Fatalf("expected 1 token (EOF), got %d", len(tokens))
	}
	if tokens[0].Type != TokEOF {
		t.Errorf("expected EOF, got %v", tokens[0].Type)
	}
	if tokens[0].Line() != 1 {
		t.Errorf("expected EOF on line 1, got %d", tokens[0].Line())
	}
}

// ---------------------------------------------------------------------------
// Test: keywords and keyword/identifier disambiguation
// ---------------------------------------------------------------------------
func TestKeywordVsIdentifier(t *testing.T) {
	tests := []struct {
		input    string
		expected TokenType
	}{
		{"print", TokPrint},
		{"printer", TokIdent},
		{"if", TokIf},
		{"iffy", TokIdent},
		{"else", TokElse},
		{"elsewhere", TokIdent},
		{"while", TokWhile},
		{"while_", TokIdent},
		{"Print", TokIdent},
		{"_x1", TokIdent},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			tokens := mustTokenizeNoEOF(t, tt.input)
			if len(tokens) != 1 {
				t.Fatalf("expected 1 token, got %d", len(tokens))
			}
			if tokens[0].Type != tt.expected {
				t.Errorf("expected %s, got %s", tt.expected, tokens[0].Type)
			}
			if tokens[0].Value != tt.input {
				t.Errorf("expected value %q, got %q", tt.input, tokens[0].Value)
			}
		})
	}
}

// ---------------------------------------------------------------------------
// Test: numbers
// ---------------------------------------------------------------------------
func TestNumbers(t *testing.T) {
	tests := []struct {
		input   string
		text    string
		isFloat bool
	}{
		{"0", "0", false},
		{"42", "42", false},
		{"3.14", "3.14", true},
		{"10.0", "10.0", true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			tokens := mustTokenizeNoEOF(t, tt.input)
			if len(tokens) != 1 || tokens[0].Type != TokNumber {
				t.Fatalf("expected single NUMBER token, got %v", types(tokens))
			}
			if tokens[0].Num.IsFloat() != tt.isFloat {
				t.Errorf("IsFloat() = %v, want %v", tokens[0].Num.IsFloat(), tt.isFloat)
			}
			if tokens[0].Num.String() != tt.text {
				t.Errorf("Num = %s, want %s", tokens[0].Num, tt.text)
			}
		})
	}
}

func TestNumberBeforeIdentifier(t *testing.T) {
	tokens := mustTokenizeNoEOF(t, "2x")
	expectTypes(t, tokens, TokNumber, TokIdent)
}

func TestTrailingDotIsNotPartOfNumber(t *testing.T) {
	_, err := Tokenize("1.", "test.mini")
	if err == nil {
		t.Fatal("expected lex error for stray '.'")
	}
	if !strings.Contains(err.Error(), "'.'") {
		t.Errorf("error should name '.', got: %v", err)
	}
}

// ---------------------------------------------------------------------------
// Test: operators, including two-character disambiguation
// ---------------------------------------------------------------------------
func TestOperators(t *testing.T) {
	tokens := mustTokenizeNoEOF(t, "+ - * / % ** = == != < > <= >= ( ) { } ;")
	expectTypes(t, tokens,
		TokPlus, TokMinus, TokMul, TokDiv, TokMod, TokPow,
		TokAssign, TokEq, TokNeq, TokLt, TokGt, TokLte, TokGte,
		TokLParen, TokRParen, TokLBrace, TokRBrace, TokSemicol,
	)
}

func TestEqualityIsNotTwoAssigns(t *testing.T) {
	tokens := mustTokenize(t, "a==b")
	expectTypes(t, tokens, TokIdent, TokEq, TokIdent, TokEOF)
	if tokens[0].Value != "a" || tokens[2].Value != "b" {
		t.Errorf("unexpected identifier values: %q, %q", tokens[0].Value, tokens[2].Value)
	}
}

func TestPowIsNotTwoMuls(t *testing.T) {
	expectTypes(t, mustTokenizeNoEOF(t, "2**3"), TokNumber, TokPow, TokNumber)
	expectTypes(t, mustTokenizeNoEOF(t, "2***3"), TokNumber, TokPow, TokMul, TokNumber)
}

func TestAdjacentComparisons(t *testing.T) {
	expectTypes(t, mustTokenizeNoEOF(t, "a<=b>=c<d>e"),
		TokIdent, TokLte, TokIdent, TokGte, TokIdent, TokLt, TokIdent, TokGt, TokIdent)
	expectTypes(t, mustTokenizeNoEOF(t, "x = = y"), TokIdent, TokAssign, TokAssign, TokIdent)
}

// ---------------------------------------------------------------------------
// Test: comments and whitespace
// ---------------------------------------------------------------------------
func TestComments(t *testing.T) {
	tokens := mustTokenize(t, "// leading comment\nx = 1 // trailing\n// last")
	expectTypes(t, tokens, TokIdent, TokAssign, TokNumber, TokEOF)
	if tokens[0].Line() != 2 {
		t.Errorf("expected x on line 2, got %d", tokens[0].Line())
	}
	if tokens[3].Line() != 3 {
		t.Errorf("expected EOF on line 3, got %d", tokens[3].Line())
	}
}

func TestDivisionIsNotComment(t *testing.T) {
	expectTypes(t, mustTokenizeNoEOF(t, "6 / 3"), TokNumber, TokDiv, TokNumber)
}

func TestLineNumbers(t *testing.T) {
	tokens := mustTokenize(t, "a\n\nb\r\n  c\n")
	wantLines := []int{1, 3, 4, 5}
	for i, want := range wantLines {
		if tokens[i].Line() != want {
			t.Errorf("token %d (%s): line %d, want %d", i, tokens[i].Type, tokens[i].Line(), want)
		}
	}
	prev := 0
	for _, tok := range tokens {
		if tok.Line() < prev {
			t.Fatalf("line numbers decrease: %d after %d", tok.Line(), prev)
		}
		prev = tok.Line()
	}
}

func TestColumns(t *testing.T) {
	tokens := mustTokenizeNoEOF(t, "x = 10")
	wantCols := []int{1, 3, 5}
	for i, want := range wantCols {
		if tokens[i].Span.StartCol != want {
			t.Errorf("token %d: col %d, want %d", i, tokens[i].Span.StartCol, want)
		}
	}
}

// ---------------------------------------------------------------------------
// Test: errors
// ---------------------------------------------------------------------------
func TestUnknownCharacter(t *testing.T) {
	tests := []struct {
		input string
		char  string
		line  int
	}{
		{"x = 1 @ 2", "@", 1},
		{"x = 1\ny = !2", "!", 2},
		{"a\nb\n#", "#", 3},
		{"π = 3", "π", 1},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			tokens, err := Tokenize(tt.input, "test.mini")
			if err == nil {
				t.Fatal("expected lex error")
			}
			if tokens != nil {
				t.Errorf("expected no tokens on error, got %d", len(tokens))
			}
			var lexErr *LexError
			if !errors.As(err, &lexErr) {
				t.Fatalf("expected *LexError, got %T", err)
			}
			if !strings.Contains(lexErr.Error(), "'"+tt.char+"'") {
				t.Errorf("message should name %q: %s", tt.char, lexErr.Error())
			}
			if lexErr.Line() != tt.line {
				t.Errorf("line = %d, want %d", lexErr.Line(), tt.line)
			}
			if lexErr.Diagnostic().Code != "E_LEX" {
				t.Errorf("code = %s, want E_LEX", lexErr.Diagnostic().Code)
			}
		})
	}
}

func TestTokenTypeString(t *testing.T) {
	if TokEq.String() != "EQ" || TokSemicol.String() != "SEMICOL" || TokEOF.String() != "EOF" {
		t.Errorf("unexpected names: %s %s %s", TokEq, TokSemicol, TokEOF)
	}
	if got := TokenType(99).String(); got != "token(99)" {
		t.Errorf("unknown type name = %q", got)
	}
}
