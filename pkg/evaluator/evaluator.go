// Package evaluator implements the mini tree-walking evaluator.
package evaluator

import (
	"context"
	sterrors "errors"
	"fmt"
	"io"
	"strconv"
	"time"

	"github.com/thomasrohde/mini/pkg/ast"
	"github.com/thomasrohde/mini/pkg/diagnostics"
	"github.com/thomasrohde/mini/pkg/value"
)

// TraceEventType identifies the type of a trace event.
type TraceEventType string

const (
	TraceRunStart  TraceEventType = "run_start"
	TraceRunEnd    TraceEventType = "run_end"
	TraceStmtStart TraceEventType = "stmt_start"
	TraceStmtEnd   TraceEventType = "stmt_end"
	TracePrint     TraceEventType = "print"
	TraceLoopStart TraceEventType = "loop_start"
	TraceLoopEnd   TraceEventType = "loop_end"
	TraceLoopLimit TraceEventType = "loop_limit"
)

// TraceEvent represents a single trace event emitted during evaluation.
type TraceEvent struct {
	Timestamp string            `json:"ts"`
	RunID     string            `json:"runId,omitempty"`
	Event     TraceEventType    `json:"event"`
	Span      *ast.Span         `json:"span,omitempty"`
	Data      map[string]string `json:"data,omitempty"`
}

// Options configures evaluation.
type Options struct {
	// MaxIterations bounds each while loop; zero means DefaultMaxIterations.
	MaxIterations int64
	// Stdout receives one line per print; nil discards.
	Stdout io.Writer
	Trace  func(event TraceEvent)
	RunID  string
}

// Result holds the outcome of an evaluation. On failure it still carries
// the output printed before the error.
type Result struct {
	Value    value.Number
	HasValue bool
	Output   []value.Number
	Stats    BudgetTracker
}

// RuntimeError represents an evaluation-time failure.
type RuntimeError struct {
	Code    string
	Message string
	Span    *ast.Span
	// Name is the variable involved, for E_UNDEFINED.
	Name string
	Err  error
}

func (e *RuntimeError) Error() string {
	return e.Message
}

func (e *RuntimeError) Unwrap() error {
	return e.Err
}

// Diagnostic converts the error for reporting.
func (e *RuntimeError) Diagnostic() diagnostics.Diagnostic {
	return diagnostics.MakeDiag(e.Code, e.Message, e.Span, "")
}

type evaluator struct {
	ctx     context.Context
	opts    Options
	env     *Env
	budget  Budget
	tracker BudgetTracker
	output  []value.Number
}

func (ev *evaluator) emit(event TraceEventType, span ast.Span, data map[string]string) {
	if ev.opts.Trace == nil {
		return
	}
	ev.opts.Trace(TraceEvent{
		Timestamp: time.Now().UTC().Format(time.RFC3339Nano),
		RunID:     ev.opts.RunID,
		Event:     event,
		Span:      &span,
		Data:      data,
	})
}

func (ev *evaluator) checkInterrupted(span ast.Span) error {
	if err := ev.ctx.Err(); err != nil {
		return &RuntimeError{
			Code:    diagnostics.EInterrupted,
			Message: "evaluation interrupted",
			Span:    &span,
			Err:     err,
		}
	}
	return nil
}

// Evaluate runs node against env. Statements mutate env in place and a
// failure leaves earlier assignments and prints in effect.
func Evaluate(ctx context.Context, node ast.Node, env *Env, opts Options) (*Result, error) {
	if ctx == nil {
		ctx = context.Background()
	}
	if env == nil {
		env = NewEnv()
	}
	ev := &evaluator{
		ctx:    ctx,
		opts:   opts,
		env:    env,
		budget: budgetFrom(opts),
	}

	span := node.NodeSpan()
	ev.emit(TraceRunStart, span, nil)
	val, ok, err := ev.eval(node)
	ev.emit(TraceRunEnd, span, map[string]string{
		"statements": strconv.FormatInt(ev.tracker.Statements, 10),
		"prints":     strconv.FormatInt(ev.tracker.Prints, 10),
	})

	res := &Result{Output: ev.output, Stats: ev.tracker}
	if err != nil {
		return res, err
	}
	res.Value = val
	res.HasValue = ok
	return res, nil
}

func (ev *evaluator) eval(node ast.Node) (value.Number, bool, error) {
	switch n := node.(type) {
	case *ast.Block:
		return ev.evalStatements(n.Statements)
	case *ast.Number:
		return n.Value, true, nil
	case *ast.Var:
		val, ok := ev.env.Get(n.Name)
		if !ok {
			span := n.Span
			return value.Number{}, false, &RuntimeError{
				Code:    diagnostics.EUndefined,
				Message: fmt.Sprintf("undefined variable '%s'", n.Name),
				Span:    &span,
				Name:    n.Name,
			}
		}
		return val, true, nil
	case *ast.BinOp:
		val, err := ev.evalBinOp(n)
		return val, err == nil, err
	case *ast.Unary:
		val, err := ev.evalUnary(n)
		return val, err == nil, err
	case *ast.Assign:
		val, _, err := ev.eval(n.Value)
		if err != nil {
			return value.Number{}, false, err
		}
		ev.env.Set(n.Name, val)
		return val, true, nil
	case *ast.Print:
		val, err := ev.evalPrint(n)
		return val, err == nil, err
	case *ast.If:
		return value.Number{}, false, ev.evalIf(n)
	case *ast.While:
		return value.Number{}, false, ev.evalWhile(n)
	default:
		span := node.NodeSpan()
		return value.Number{}, false, &RuntimeError{
			Code:    diagnostics.EType,
			Message: fmt.Sprintf("unknown node kind %s", node.Kind()),
			Span:    &span,
		}
	}
}

// evalStatements runs stmts in order; the result is that of the last one.
func (ev *evaluator) evalStatements(stmts []ast.Node) (value.Number, bool, error) {
	var last value.Number
	var hasLast bool
	for _, stmt := range stmts {
		span := stmt.NodeSpan()
		if err := ev.checkInterrupted(span); err != nil {
			return value.Number{}, false, err
		}
		ev.tracker.Statements++
		ev.emit(TraceStmtStart, span, map[string]string{"kind": stmt.Kind()})
		val, ok, err := ev.eval(stmt)
		if err != nil {
			return value.Number{}, false, err
		}
		ev.emit(TraceStmtEnd, span, nil)
		last, hasLast = val, ok
	}
	return last, hasLast, nil
}

func (ev *evaluator) evalBinOp(e *ast.BinOp) (value.Number, error) {
	left, _, err := ev.eval(e.Left)
	if err != nil {
		return value.Number{}, err
	}
	right, _, err := ev.eval(e.Right)
	if err != nil {
		return value.Number{}, err
	}

	var result value.Number
	switch e.Op {
	case ast.OpAdd:
		return value.Add(left, right), nil
	case ast.OpSub:
		return value.Sub(left, right), nil
	case ast.OpMul:
		return value.Mul(left, right), nil
	case ast.OpDiv:
		result, err = value.Div(left, right)
	case ast.OpMod:
		result, err = value.Mod(left, right)
	case ast.OpPow:
		result, err = value.Pow(left, right)
	case ast.OpEqEq:
		return value.Bool(value.Equal(left, right)), nil
	case ast.OpNeq:
		return value.Bool(!value.Equal(left, right)), nil
	case ast.OpLt:
		return value.Bool(value.Less(left, right)), nil
	case ast.OpGt:
		return value.Bool(value.Less(right, left)), nil
	case ast.OpLtEq:
		return value.Bool(value.LessEqual(left, right)), nil
	case ast.OpGtEq:
		return value.Bool(value.LessEqual(right, left)), nil
	default:
		span := e.Span
		return value.Number{}, &RuntimeError{
			Code:    diagnostics.EType,
			Message: fmt.Sprintf("unknown operator '%s'", e.Op),
			Span:    &span,
		}
	}
	if err != nil {
		return value.Number{}, arithmeticError(err, e.Span)
	}
	return result, nil
}

func arithmeticError(err error, span ast.Span) error {
	code := diagnostics.EType
	switch {
	case sterrors.Is(err, value.ErrDivisionByZero):
		code = diagnostics.EDivZero
	case sterrors.Is(err, value.ErrDomain):
		code = diagnostics.EDomain
	}
	return &RuntimeError{Code: code, Message: err.Error(), Span: &span, Err: err}
}

func (ev *evaluator) evalUnary(e *ast.Unary) (value.Number, error) {
	operand, _, err := ev.eval(e.Operand)
	if err != nil {
		return value.Number{}, err
	}
	if e.Op == ast.OpNeg {
		return value.Neg(operand), nil
	}
	return operand, nil
}

func (ev *evaluator) evalPrint(e *ast.Print) (value.Number, error) {
	val, _, err := ev.eval(e.Expr)
	if err != nil {
		return value.Number{}, err
	}
	shown := val.Display()
	ev.output = append(ev.output, shown)
	ev.tracker.Prints++
	if ev.opts.Stdout != nil {
		fmt.Fprintln(ev.opts.Stdout, shown.Text())
	}
	ev.emit(TracePrint, e.Span, map[string]string{"value": shown.Text()})
	return shown, nil
}

func (ev *evaluator) evalIf(e *ast.If) error {
	cond, _, err := ev.eval(e.Cond)
	if err != nil {
		return err
	}
	if cond.Truthy() {
		_, _, err = ev.evalStatements(e.Then)
		return err
	}
	if e.Else != nil {
		_, _, err = ev.evalStatements(e.Else)
	}
	return err
}

// evalWhile keeps its own pass counter; the limit trips on the first truthy
// condition past MaxIterations, before the body runs again.
func (ev *evaluator) evalWhile(e *ast.While) error {
	ev.emit(TraceLoopStart, e.Span, nil)
	var count int64
	for {
		if err := ev.checkInterrupted(e.Span); err != nil {
			return err
		}
		cond, _, err := ev.eval(e.Cond)
		if err != nil {
			return err
		}
		if !cond.Truthy() {
			break
		}
		count++
		if count > ev.budget.MaxIterations {
			ev.emit(TraceLoopLimit, e.Span, map[string]string{
				"max": strconv.FormatInt(ev.budget.MaxIterations, 10),
			})
			span := e.Span
			return &RuntimeError{
				Code:    diagnostics.ELoopLimit,
				Message: fmt.Sprintf("possible infinite loop (more than %d iterations)", ev.budget.MaxIterations),
				Span:    &span,
			}
		}
		ev.tracker.Iterations++
		if _, _, err := ev.evalStatements(e.Body); err != nil {
			return err
		}
	}
	ev.emit(TraceLoopEnd, e.Span, map[string]string{"iterations": strconv.FormatInt(count, 10)})
	return nil
}
