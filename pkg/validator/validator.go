// Package validator implements static checks of mini programs.
package validator

import (
	"fmt"

	"github.com/thomasrohde/mini/pkg/ast"
	"github.com/thomasrohde/mini/pkg/diagnostics"
)

// assigned is the set of names some execution path may have bound.
type assigned map[string]bool

func (a assigned) clone() assigned {
	out := make(assigned, len(a))
	for k := range a {
		out[k] = true
	}
	return out
}

func (a assigned) merge(b assigned) {
	for k := range b {
		a[k] = true
	}
}

type validator struct {
	diags []diagnostics.Diagnostic
}

// Validate checks a program without running it and returns diagnostics in
// source order. Names in known count as assigned before the first statement.
//
// Reported: E_UNBOUND for a read of a variable that no earlier statement may
// have assigned, and E_DIV_ZERO for a division or remainder by a literal
// zero.
func Validate(block *ast.Block, known ...string) []diagnostics.Diagnostic {
	v := &validator{}
	set := make(assigned, len(known))
	for _, name := range known {
		set[name] = true
	}
	v.validateStatements(block.Statements, set)
	return v.diags
}

func (v *validator) addDiag(code, msg string, span ast.Span, hint string) {
	v.diags = append(v.diags, diagnostics.MakeDiag(code, msg, &span, hint))
}

func (v *validator) validateStatements(stmts []ast.Node, set assigned) {
	for _, stmt := range stmts {
		v.validateStmt(stmt, set)
	}
}

func (v *validator) validateStmt(stmt ast.Node, set assigned) {
	switch s := stmt.(type) {
	case *ast.Assign:
		v.validateExpr(s.Value, set)
		set[s.Name] = true

	case *ast.Print:
		v.validateExpr(s.Expr, set)

	case *ast.If:
		v.validateExpr(s.Cond, set)
		thenSet := set.clone()
		v.validateStatements(s.Then, thenSet)
		elseSet := set.clone()
		v.validateStatements(s.Else, elseSet)
		set.merge(thenSet)
		set.merge(elseSet)

	case *ast.While:
		// The first condition check sees only what was bound before the
		// loop; the body may also see its own assignments from earlier
		// passes.
		v.validateExpr(s.Cond, set)
		bodySet := set.clone()
		collectAssigned(s.Body, bodySet)
		v.validateStatements(s.Body, bodySet)
		set.merge(bodySet)

	case *ast.Block:
		v.validateStatements(s.Statements, set)

	default:
		v.validateExpr(stmt, set)
	}
}

func (v *validator) validateExpr(expr ast.Node, set assigned) {
	switch e := expr.(type) {
	case *ast.Number:
	case *ast.Var:
		if !set[e.Name] {
			v.addDiag(diagnostics.EUnbound,
				fmt.Sprintf("variable '%s' is read before any assignment", e.Name),
				e.Span,
				fmt.Sprintf("assign %s before this statement", e.Name))
		}
	case *ast.Unary:
		v.validateExpr(e.Operand, set)
	case *ast.BinOp:
		v.validateExpr(e.Left, set)
		v.validateExpr(e.Right, set)
		if (e.Op == ast.OpDiv || e.Op == ast.OpMod) && isLiteralZero(e.Right) {
			v.addDiag(diagnostics.EDivZero,
				fmt.Sprintf("'%s' by literal zero always fails", e.Op),
				e.Span, "")
		}
	}
}

func isLiteralZero(n ast.Node) bool {
	switch n := n.(type) {
	case *ast.Number:
		return !n.Value.Truthy()
	case *ast.Unary:
		return isLiteralZero(n.Operand)
	}
	return false
}

// collectAssigned adds every name assigned anywhere in stmts.
func collectAssigned(stmts []ast.Node, set assigned) {
	for _, stmt := range stmts {
		switch s := stmt.(type) {
		case *ast.Assign:
			set[s.Name] = true
		case *ast.If:
			collectAssigned(s.Then, set)
			collectAssigned(s.Else, set)
		case *ast.While:
			collectAssigned(s.Body, set)
		case *ast.Block:
			collectAssigned(s.Statements, set)
		}
	}
}
