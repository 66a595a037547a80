// Package diagnostics defines mini diagnostic types for lex/parse/check/runtime errors.
package diagnostics

import (
	sterrors "errors"
	"fmt"
	"strings"

	"github.com/oarkflow/json"

	"github.com/thomasrohde/mini/pkg/ast"
)

// Diagnostic code constants.
const (
	ELex         = "E_LEX"
	EParse       = "E_PARSE"
	EUnbound     = "E_UNBOUND"
	EUndefined   = "E_UNDEFINED"
	EDivZero     = "E_DIV_ZERO"
	EDomain      = "E_DOMAIN"
	ELoopLimit   = "E_LOOP_LIMIT"
	EInterrupted = "E_INTERRUPTED"
	EType        = "E_TYPE"
	EConfig      = "E_CONFIG"
	EIO          = "E_IO"
)

// Diagnostic represents a lex, parse, check, or runtime diagnostic.
type Diagnostic struct {
	Code    string    `json:"code"`
	Message string    `json:"message"`
	Span    *ast.Span `json:"span,omitempty"`
	Hint    string    `json:"hint,omitempty"`
}

// Diagnoser is implemented by errors that carry a Diagnostic.
type Diagnoser interface {
	error
	Diagnostic() Diagnostic
}

// MakeDiag creates a new Diagnostic.
func MakeDiag(code, message string, span *ast.Span, hint string) Diagnostic {
	return Diagnostic{
		Code:    code,
		Message: message,
		Span:    span,
		Hint:    hint,
	}
}

// FromError extracts the Diagnostic from err, falling back to a diagnostic
// with the given code and the error text.
func FromError(err error, fallbackCode string) Diagnostic {
	var d Diagnoser
	if sterrors.As(err, &d) {
		return d.Diagnostic()
	}
	return MakeDiag(fallbackCode, err.Error(), nil, "")
}

// FormatDiagnostic formats a single diagnostic for display.
func FormatDiagnostic(d Diagnostic, pretty bool) string {
	if !pretty {
		b, _ := json.Marshal(d)
		return string(b)
	}
	loc := "<unknown>"
	if d.Span != nil {
		file := d.Span.File
		if file == "" {
			file = "<input>"
		}
		loc = fmt.Sprintf("%s:%d:%d", file, d.Span.StartLine, d.Span.StartCol)
	}
	out := fmt.Sprintf("error[%s]: %s\n  --> %s", d.Code, d.Message, loc)
	if d.Hint != "" {
		out += fmt.Sprintf("\n  hint: %s", d.Hint)
	}
	return out
}

// FormatDiagnostics formats a slice of diagnostics for display.
func FormatDiagnostics(diags []Diagnostic, pretty bool) string {
	if !pretty {
		b, _ := json.Marshal(diags)
		return string(b)
	}
	parts := make([]string, len(diags))
	for i, d := range diags {
		parts[i] = FormatDiagnostic(d, true)
	}
	return strings.Join(parts, "\n\n")
}
