// Package runtime provides the top-level mini runtime orchestrator.
package runtime

import (
	"context"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/oarkflow/log"
	"github.com/oarkflow/xid"

	"github.com/thomasrohde/mini/pkg/ast"
	"github.com/thomasrohde/mini/pkg/diagnostics"
	"github.com/thomasrohde/mini/pkg/evaluator"
	"github.com/thomasrohde/mini/pkg/formatter"
	"github.com/thomasrohde/mini/pkg/lexer"
	"github.com/thomasrohde/mini/pkg/parser"
	"github.com/thomasrohde/mini/pkg/validator"
	"github.com/thomasrohde/mini/pkg/value"
)

// Run tokenizes, parses and evaluates source against env with default
// options. A nil env gets a fresh one. The first lex, parse or runtime error
// is returned.
func Run(ctx context.Context, source string, env *evaluator.Env) (*evaluator.Result, error) {
	block, err := parser.Parse(source, "")
	if err != nil {
		return nil, err
	}
	if env == nil {
		env = evaluator.NewEnv()
	}
	return evaluator.Evaluate(ctx, block, env, evaluator.Options{})
}

// Session is a long-lived interpreter session: one Environment and one
// output log shared by every Run until Reset. A session survives errors.
// It is not safe for concurrent use.
type Session struct {
	id            string
	filename      string
	env           *evaluator.Env
	output        []value.Number
	logger        *log.Logger
	cache         *ProgramCache
	stdout        io.Writer
	trace         func(event evaluator.TraceEvent)
	maxIterations int64
	timeout       time.Duration
}

// Option is a functional option for configuring a Session.
type Option func(*Session)

// WithLogger sets the structured logger. Without one the session is silent.
func WithLogger(l *log.Logger) Option {
	return func(s *Session) {
		s.logger = l
	}
}

// WithCache shares a parsed-program cache with the session.
func WithCache(c *ProgramCache) Option {
	return func(s *Session) {
		s.cache = c
	}
}

// WithStdout sets where print writes its lines.
func WithStdout(w io.Writer) Option {
	return func(s *Session) {
		s.stdout = w
	}
}

// WithMaxIterations sets the per-loop iteration bound.
func WithMaxIterations(n int64) Option {
	return func(s *Session) {
		s.maxIterations = n
	}
}

// WithTimeout bounds each Run; zero means no bound.
func WithTimeout(d time.Duration) Option {
	return func(s *Session) {
		s.timeout = d
	}
}

// WithFilename sets the name used in diagnostic locations.
func WithFilename(name string) Option {
	return func(s *Session) {
		s.filename = name
	}
}

// WithTrace sets the trace callback.
func WithTrace(fn func(event evaluator.TraceEvent)) Option {
	return func(s *Session) {
		s.trace = fn
	}
}

// NewSession creates a session with an empty Environment.
func NewSession(opts ...Option) *Session {
	s := &Session{
		id:            xid.New().String(),
		env:           evaluator.NewEnv(),
		maxIterations: evaluator.DefaultMaxIterations,
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.logger != nil {
		s.logger.Info().Str("session", s.id).Int("max_iterations", int(s.maxIterations)).Msg("session started")
	}
	return s
}

// ID returns the session identifier.
func (s *Session) ID() string {
	return s.id
}

// Env returns the session's Environment.
func (s *Session) Env() *evaluator.Env {
	return s.env
}

// Vars returns a copy of the current bindings.
func (s *Session) Vars() map[string]value.Number {
	return s.env.Snapshot()
}

// Output returns every value printed since the session started or was reset.
func (s *Session) Output() []value.Number {
	return append([]value.Number(nil), s.output...)
}

// Reset clears the Environment and the output log.
func (s *Session) Reset() {
	s.env.Clear()
	s.output = nil
	if s.logger != nil {
		s.logger.Info().Str("session", s.id).Msg("session reset")
	}
}

// Tokens tokenizes source without evaluating it.
func (s *Session) Tokens(source string) ([]lexer.Token, error) {
	return lexer.Tokenize(source, s.filename)
}

// AST parses source without evaluating it.
func (s *Session) AST(source string) (*ast.Block, error) {
	return s.parse(source)
}

func (s *Session) parse(source string) (*ast.Block, error) {
	if block, ok := s.cache.Get(s.filename, source); ok {
		return block, nil
	}
	block, err := parser.Parse(source, s.filename)
	if err != nil {
		return nil, err
	}
	s.cache.Put(s.filename, source, block)
	return block, nil
}

// Run evaluates source in the session. Assignments and prints made before a
// failure are kept.
func (s *Session) Run(ctx context.Context, source string) (*evaluator.Result, error) {
	start := time.Now()
	block, err := s.parse(source)
	if err != nil {
		s.logFailure(err, time.Since(start))
		return nil, err
	}
	return s.runBlock(ctx, block, start)
}

// RunBlock evaluates an already parsed program in the session, for callers
// that inspect the tree before running it.
func (s *Session) RunBlock(ctx context.Context, block *ast.Block) (*evaluator.Result, error) {
	return s.runBlock(ctx, block, time.Now())
}

func (s *Session) runBlock(ctx context.Context, block *ast.Block, start time.Time) (*evaluator.Result, error) {
	if ctx == nil {
		ctx = context.Background()
	}
	if s.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.timeout)
		defer cancel()
	}

	result, err := evaluator.Evaluate(ctx, block, s.env, evaluator.Options{
		MaxIterations: s.maxIterations,
		Stdout:        s.stdout,
		Trace:         s.traceHook(),
		RunID:         s.id,
	})
	s.output = append(s.output, result.Output...)
	duration := time.Since(start)
	if err != nil {
		s.logFailure(err, duration)
		return result, err
	}
	if s.logger != nil {
		s.logger.Info().
			Str("session", s.id).
			Int("statements", int(result.Stats.Statements)).
			Int("iterations", int(result.Stats.Iterations)).
			Int("output", len(result.Output)).
			Dur("duration", duration).
			Msg("run completed")
	}
	return result, nil
}

func (s *Session) logFailure(err error, duration time.Duration) {
	if s.logger == nil {
		return
	}
	d := diagnostics.FromError(err, diagnostics.EIO)
	s.logger.Error().Err(err).Str("session", s.id).Str("code", d.Code).Dur("duration", duration).Msg("run failed")
}

// traceHook forwards trace events to the user callback and, at debug level,
// to the logger.
func (s *Session) traceHook() func(evaluator.TraceEvent) {
	if s.trace == nil && s.logger == nil {
		return nil
	}
	return func(ev evaluator.TraceEvent) {
		if s.trace != nil {
			s.trace(ev)
		}
		if s.logger != nil {
			entry := s.logger.Debug().Str("session", s.id).Str("event", string(ev.Event))
			if ev.Span != nil {
				entry = entry.Int("line", ev.Span.StartLine)
			}
			for k, v := range ev.Data {
				entry = entry.Str(k, v)
			}
			entry.Msg("trace")
		}
	}
}

// Check parses source and runs static checks without evaluating it. Names
// already bound in the session count as assigned.
func (s *Session) Check(source string) []diagnostics.Diagnostic {
	block, err := parser.Parse(source, s.filename)
	if err != nil {
		return []diagnostics.Diagnostic{diagnostics.FromError(err, diagnostics.EParse)}
	}
	return validator.Validate(block, s.env.Names()...)
}

// Format parses source and renders it in canonical form.
func (s *Session) Format(source string) (string, error) {
	block, err := parser.Parse(source, s.filename)
	if err != nil {
		return "", err
	}
	return formatter.Format(block), nil
}

// DiagnosticError wraps diagnostics as an error.
type DiagnosticError struct {
	Diagnostics []diagnostics.Diagnostic
}

func (e *DiagnosticError) Error() string {
	msgs := make([]string, len(e.Diagnostics))
	for i, d := range e.Diagnostics {
		msgs[i] = fmt.Sprintf("%s: %s", d.Code, d.Message)
	}
	return strings.Join(msgs, "; ")
}

// Diagnostic returns the first wrapped diagnostic.
func (e *DiagnosticError) Diagnostic() diagnostics.Diagnostic {
	if len(e.Diagnostics) == 0 {
		return diagnostics.MakeDiag(diagnostics.EIO, "no diagnostics", nil, "")
	}
	return e.Diagnostics[0]
}
