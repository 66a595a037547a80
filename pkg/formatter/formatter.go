// Package formatter renders mini programs as canonical source, as indented
// tree dumps, and as token listings.
package formatter

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/thomasrohde/mini/pkg/ast"
	"github.com/thomasrohde/mini/pkg/lexer"
	"github.com/thomasrohde/mini/pkg/value"
)

const indent = "  "

// Precedence table for binary operators (higher = tighter binding)
var precedence = map[ast.BinaryOp]int{
	ast.OpEqEq: 1, ast.OpNeq: 1, ast.OpLt: 1, ast.OpGt: 1, ast.OpLtEq: 1, ast.OpGtEq: 1,
	ast.OpAdd: 2, ast.OpSub: 2,
	ast.OpMul: 3, ast.OpDiv: 3, ast.OpMod: 3,
	ast.OpPow: 4,
}

func needsParens(child ast.Node, parentOp ast.BinaryOp, isRight bool) bool {
	bin, ok := child.(*ast.BinOp)
	if !ok {
		return false
	}
	childPrec := precedence[bin.Op]
	parentPrec := precedence[parentOp]
	if childPrec < parentPrec {
		return true
	}
	if childPrec == parentPrec {
		// ** groups to the right, everything else to the left.
		if parentOp == ast.OpPow {
			return !isRight
		}
		return isRight
	}
	return false
}

// Format pretty-prints a program back to source code. Parsing the output
// yields an equivalent tree.
func Format(block *ast.Block) string {
	if len(block.Statements) == 0 {
		return ""
	}
	return strings.Join(formatStatements(block.Statements, 0), "\n") + "\n"
}

// formatStatements formats stmts one per line. A statement that starts
// with '-' would otherwise continue the previous expression, so the line
// before it gets a ';'.
func formatStatements(stmts []ast.Node, depth int) []string {
	lines := make([]string, len(stmts))
	for i, s := range stmts {
		lines[i] = formatStmt(s, depth)
		if i > 0 && strings.HasPrefix(strings.TrimLeft(lines[i], " "), "-") {
			lines[i-1] += ";"
		}
	}
	return lines
}

func formatStmt(s ast.Node, depth int) string {
	pad := strings.Repeat(indent, depth)
	switch stmt := s.(type) {
	case *ast.Assign:
		return pad + stmt.Name + " = " + formatExpr(stmt.Value)
	case *ast.Print:
		return pad + "print(" + formatExpr(stmt.Expr) + ")"
	case *ast.If:
		out := pad + "if (" + formatExpr(stmt.Cond) + ") " + formatBlock(stmt.Then, depth)
		if stmt.Else != nil {
			out += " else " + formatBlock(stmt.Else, depth)
		}
		return out
	case *ast.While:
		return pad + "while (" + formatExpr(stmt.Cond) + ") " + formatBlock(stmt.Body, depth)
	case *ast.Block:
		return strings.Join(formatStatements(stmt.Statements, depth), "\n")
	default:
		return pad + formatExpr(s)
	}
}

func formatBlock(stmts []ast.Node, depth int) string {
	if len(stmts) == 0 {
		return "{}"
	}
	lines := []string{"{"}
	lines = append(lines, formatStatements(stmts, depth+1)...)
	lines = append(lines, strings.Repeat(indent, depth)+"}")
	return strings.Join(lines, "\n")
}

func formatExpr(e ast.Node) string {
	switch expr := e.(type) {
	case *ast.Number:
		return formatLiteral(expr.Value)
	case *ast.Var:
		return expr.Name
	case *ast.Unary:
		// The operand of unary minus is a primary, so anything else needs
		// parentheses: -(1 + 2), -(-x).
		switch expr.Operand.(type) {
		case *ast.Number, *ast.Var:
			return string(expr.Op) + formatExpr(expr.Operand)
		}
		return string(expr.Op) + "(" + formatExpr(expr.Operand) + ")"
	case *ast.BinOp:
		left := formatExpr(expr.Left)
		right := formatExpr(expr.Right)
		if needsParens(expr.Left, expr.Op, false) {
			left = "(" + left + ")"
		}
		if needsParens(expr.Right, expr.Op, true) {
			right = "(" + right + ")"
		}
		return left + " " + string(expr.Op) + " " + right
	default:
		return fmt.Sprintf("<%s>", e.Kind())
	}
}

// formatLiteral writes a number in a form the lexer reads back as the same
// value. Negative literals only arise in built trees and are parenthesized.
func formatLiteral(n value.Number) string {
	if i, ok := n.Int64(); ok {
		if i < 0 {
			return "(" + strconv.FormatInt(i, 10) + ")"
		}
		return strconv.FormatInt(i, 10)
	}
	f := n.Float64()
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return "(" + n.String() + ")"
	}
	text := strconv.FormatFloat(math.Abs(f), 'f', -1, 64)
	if !strings.Contains(text, ".") {
		text += ".0"
	}
	if f < 0 || (f == 0 && math.Signbit(f)) {
		return "(-" + text + ")"
	}
	return text
}

// DumpTree renders node as an indented tree, one node per line.
func DumpTree(node ast.Node) string {
	var b strings.Builder
	dumpNode(&b, node, 0)
	return b.String()
}

func dumpNode(b *strings.Builder, node ast.Node, depth int) {
	pad := strings.Repeat(indent, depth)
	switch n := node.(type) {
	case *ast.Block:
		fmt.Fprintf(b, "%sBlock\n", pad)
		for _, s := range n.Statements {
			dumpNode(b, s, depth+1)
		}
	case *ast.Number:
		fmt.Fprintf(b, "%sNumber %s\n", pad, n.Value)
	case *ast.Var:
		fmt.Fprintf(b, "%sVar %s\n", pad, n.Name)
	case *ast.BinOp:
		fmt.Fprintf(b, "%sBinOp %s\n", pad, n.Op)
		dumpNode(b, n.Left, depth+1)
		dumpNode(b, n.Right, depth+1)
	case *ast.Unary:
		fmt.Fprintf(b, "%sUnary %s\n", pad, n.Op)
		dumpNode(b, n.Operand, depth+1)
	case *ast.Assign:
		fmt.Fprintf(b, "%sAssign %s\n", pad, n.Name)
		dumpNode(b, n.Value, depth+1)
	case *ast.Print:
		fmt.Fprintf(b, "%sPrint\n", pad)
		dumpNode(b, n.Expr, depth+1)
	case *ast.If:
		fmt.Fprintf(b, "%sIf\n", pad)
		dumpNode(b, n.Cond, depth+1)
		dumpSection(b, "then", n.Then, depth+1)
		if n.Else != nil {
			dumpSection(b, "else", n.Else, depth+1)
		}
	case *ast.While:
		fmt.Fprintf(b, "%sWhile\n", pad)
		dumpNode(b, n.Cond, depth+1)
		dumpSection(b, "body", n.Body, depth+1)
	}
}

func dumpSection(b *strings.Builder, label string, stmts []ast.Node, depth int) {
	fmt.Fprintf(b, "%s%s:\n", strings.Repeat(indent, depth), label)
	for _, s := range stmts {
		dumpNode(b, s, depth+1)
	}
}

// DumpTokens lists tokens one per line as kind and quoted lexeme. The
// trailing EOF is omitted.
func DumpTokens(tokens []lexer.Token) string {
	var b strings.Builder
	for _, t := range tokens {
		if t.Type == lexer.TokEOF {
			continue
		}
		fmt.Fprintf(&b, "%-8s | %q\n", t.Type, t.Value)
	}
	return b.String()
}
