// Package ast defines the mini language AST node types.
package ast

import "github.com/thomasrohde/mini/pkg/value"

// Span represents a source location range.
type Span struct {
	File      string `json:"file"`
	StartLine int    `json:"startLine"`
	StartCol  int    `json:"startCol"`
	EndLine   int    `json:"endLine"`
	EndCol    int    `json:"endCol"`
}

// Node is the interface implemented by all AST nodes.
// The set of implementations is closed: only this package can add one.
type Node interface {
	Kind() string
	NodeSpan() Span
	node() // sealed marker
}

// BinaryOp represents a binary operator.
type BinaryOp string

const (
	OpAdd  BinaryOp = "+"
	OpSub  BinaryOp = "-"
	OpMul  BinaryOp = "*"
	OpDiv  BinaryOp = "/"
	OpMod  BinaryOp = "%"
	OpPow  BinaryOp = "**"
	OpEqEq BinaryOp = "=="
	OpNeq  BinaryOp = "!="
	OpLt   BinaryOp = "<"
	OpGt   BinaryOp = ">"
	OpLtEq BinaryOp = "<="
	OpGtEq BinaryOp = ">="
)

// IsComparison reports whether op yields 1/0 rather than an arithmetic result.
func (op BinaryOp) IsComparison() bool {
	switch op {
	case OpEqEq, OpNeq, OpLt, OpGt, OpLtEq, OpGtEq:
		return true
	}
	return false
}

// UnaryOp represents a unary operator.
type UnaryOp string

const (
	OpNeg UnaryOp = "-"
)

// --- Expressions ---

type Number struct {
	Span  Span
	Value value.Number
}

func (n *Number) Kind() string   { return "Number" }
func (n *Number) NodeSpan() Span { return n.Span }
func (n *Number) node()          {}

type Var struct {
	Span Span
	Name string
}

func (n *Var) Kind() string   { return "Var" }
func (n *Var) NodeSpan() Span { return n.Span }
func (n *Var) node()          {}

type BinOp struct {
	Span  Span
	Left  Node
	Op    BinaryOp
	Right Node
}

func (n *BinOp) Kind() string   { return "BinOp" }
func (n *BinOp) NodeSpan() Span { return n.Span }
func (n *BinOp) node()          {}

type Unary struct {
	Span    Span
	Op      UnaryOp
	Operand Node
}

func (n *Unary) Kind() string   { return "Unary" }
func (n *Unary) NodeSpan() Span { return n.Span }
func (n *Unary) node()          {}

// --- Statements ---

type Assign struct {
	Span  Span
	Name  string
	Value Node
}

func (n *Assign) Kind() string   { return "Assign" }
func (n *Assign) NodeSpan() Span { return n.Span }
func (n *Assign) node()          {}

type Print struct {
	Span Span
	Expr Node
}

func (n *Print) Kind() string   { return "Print" }
func (n *Print) NodeSpan() Span { return n.Span }
func (n *Print) node()          {}

// If holds an optional else branch: Else is nil when no else clause was
// written, and an empty non-nil slice for `else { }`.
type If struct {
	Span Span
	Cond Node
	Then []Node
	Else []Node
}

func (n *If) Kind() string   { return "If" }
func (n *If) NodeSpan() Span { return n.Span }
func (n *If) node()          {}

type While struct {
	Span Span
	Cond Node
	Body []Node
}

func (n *While) Kind() string   { return "While" }
func (n *While) NodeSpan() Span { return n.Span }
func (n *While) node()          {}

// --- Program ---

// Block is an ordered statement list. The parser always returns a Block as
// the program root.
type Block struct {
	Span       Span
	Statements []Node
}

func (n *Block) Kind() string   { return "Block" }
func (n *Block) NodeSpan() Span { return n.Span }
func (n *Block) node()          {}
