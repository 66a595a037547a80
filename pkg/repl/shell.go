// Package repl implements the interactive mini shell and the menu launcher.
package repl

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"sync"

	"github.com/fatih/color"
	"github.com/tevino/abool/v2"

	"github.com/thomasrohde/mini/pkg/ast"
	"github.com/thomasrohde/mini/pkg/diagnostics"
	"github.com/thomasrohde/mini/pkg/evaluator"
	"github.com/thomasrohde/mini/pkg/formatter"
	"github.com/thomasrohde/mini/pkg/help"
	"github.com/thomasrohde/mini/pkg/runtime"
)

const continuationPrompt = ".. "

// Shell reads statements line by line and evaluates them in one session.
type Shell struct {
	session *runtime.Session
	in      *bufio.Scanner
	out     io.Writer
	prompt  string
	history *History
	palette palette

	running *abool.AtomicBool
	mu      sync.Mutex
	cancel  context.CancelFunc
}

// ShellOption is a functional option for configuring a Shell.
type ShellOption func(*Shell)

// WithPrompt sets the primary prompt.
func WithPrompt(p string) ShellOption {
	return func(s *Shell) {
		s.prompt = p
	}
}

// WithColor enables or disables colored output.
func WithColor(enabled bool) ShellOption {
	return func(s *Shell) {
		s.palette = newPalette(enabled)
	}
}

// WithHistory sets the input history.
func WithHistory(h *History) ShellOption {
	return func(s *Shell) {
		s.history = h
	}
}

// NewShell creates a shell reading from in and writing to out. The session
// should print to the same writer.
func NewShell(session *runtime.Session, in io.Reader, out io.Writer, opts ...ShellOption) *Shell {
	return newShell(session, bufio.NewScanner(in), out, opts...)
}

func newShell(session *runtime.Session, in *bufio.Scanner, out io.Writer, opts ...ShellOption) *Shell {
	s := &Shell{
		session: session,
		in:      in,
		out:     out,
		prompt:  ">> ",
		palette: newPalette(false),
		running: abool.NewBool(false),
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.history == nil {
		s.history = NewHistory(DefaultHistorySize, "")
	}
	return s
}

// Session returns the shell's session.
func (s *Shell) Session() *runtime.Session {
	return s.session
}

// History returns the shell's input history.
func (s *Shell) History() *History {
	return s.history
}

// Run reads and executes inputs until exit or end of input.
func (s *Shell) Run(ctx context.Context) error {
	fmt.Fprintln(s.out, s.palette.title.Sprintf("mini %s REPL", help.Version)+" (type 'exit' to quit, 'help' for commands)")
	for {
		if ctx.Err() != nil {
			return nil
		}
		input, ok := s.readInput()
		if !ok {
			fmt.Fprintln(s.out)
			return s.in.Err()
		}
		if quit := s.Execute(ctx, input); quit {
			return nil
		}
	}
}

// readInput reads one complete input: a line, plus continuation lines while
// braces are unbalanced.
func (s *Shell) readInput() (string, bool) {
	fmt.Fprint(s.out, s.palette.prompt.Sprint(s.prompt))
	if !s.in.Scan() {
		return "", false
	}
	input := s.in.Text()
	depth := countBraces(input)
	for depth > 0 {
		fmt.Fprint(s.out, s.palette.prompt.Sprint(continuationPrompt))
		if !s.in.Scan() {
			break
		}
		next := s.in.Text()
		input += "\n" + next
		depth += countBraces(next)
	}
	return input, true
}

func countBraces(line string) int {
	count := 0
	for _, ch := range line {
		switch ch {
		case '{':
			count++
		case '}':
			count--
		}
	}
	return count
}

// Execute handles one complete input, either a shell command or program
// text. It reports whether the shell should exit.
func (s *Shell) Execute(ctx context.Context, input string) bool {
	line := strings.TrimSpace(input)
	if line == "" {
		return false
	}
	cmd, arg, _ := strings.Cut(line, " ")
	arg = strings.TrimSpace(arg)

	switch cmd {
	case "exit":
		if arg == "" {
			return true
		}
	case "reset":
		if arg == "" {
			s.session.Reset()
			fmt.Fprintln(s.out, "Variables cleared.")
			return false
		}
	case "vars":
		if arg == "" || arg == "--json" {
			s.printVars(arg == "--json")
			return false
		}
	case "history":
		if arg == "" {
			for i, e := range s.history.Entries() {
				fmt.Fprintf(s.out, "%4d  %s\n", i+1, strings.ReplaceAll(e, "\n", "\n      "))
			}
			return false
		}
	case "help":
		s.printHelp(arg)
		return false
	case "tokens":
		if arg != "" {
			s.history.Add(input)
			tokens, err := s.session.Tokens(arg)
			if err != nil {
				s.printError(err)
				return false
			}
			fmt.Fprint(s.out, formatter.DumpTokens(tokens))
			return false
		}
	case "ast":
		if arg != "" {
			s.history.Add(input)
			block, err := s.session.AST(arg)
			if err != nil {
				s.printError(err)
				return false
			}
			fmt.Fprint(s.out, formatter.DumpTree(block))
			return false
		}
	}

	s.history.Add(input)
	s.runSource(ctx, input)
	return false
}

// runSource evaluates program text. A bare trailing expression has its
// value echoed.
func (s *Shell) runSource(ctx context.Context, source string) {
	block, err := s.session.AST(source)
	if err != nil {
		s.printError(err)
		return
	}

	runCtx, cancel := context.WithCancel(ctx)
	s.mu.Lock()
	s.cancel = cancel
	s.mu.Unlock()
	s.running.Set()
	defer func() {
		s.running.UnSet()
		s.mu.Lock()
		s.cancel = nil
		s.mu.Unlock()
		cancel()
	}()

	result, err := s.session.RunBlock(runCtx, block)
	if err != nil {
		s.printError(err)
		return
	}
	if result.HasValue && endsWithExpression(block) {
		fmt.Fprintln(s.out, s.palette.value.Sprint(result.Value.Text()))
	}
}

func endsWithExpression(block *ast.Block) bool {
	if len(block.Statements) == 0 {
		return false
	}
	switch block.Statements[len(block.Statements)-1].(type) {
	case *ast.Number, *ast.Var, *ast.BinOp, *ast.Unary:
		return true
	}
	return false
}

// Interrupt cancels the running evaluation. It reports false when nothing
// was running.
func (s *Shell) Interrupt() bool {
	if !s.running.IsSet() {
		return false
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.cancel == nil {
		return false
	}
	s.cancel()
	return true
}

// WatchSignals routes SIGINT to Interrupt; when nothing is running onIdle is
// called instead. The returned function stops watching.
func (s *Shell) WatchSignals(onIdle func()) func() {
	ch := make(chan os.Signal, 1)
	signal.Notify(ch, os.Interrupt)
	done := make(chan struct{})
	go func() {
		for {
			select {
			case <-ch:
				if !s.Interrupt() {
					onIdle()
				}
			case <-done:
				return
			}
		}
	}()
	return func() {
		signal.Stop(ch)
		close(done)
	}
}

func (s *Shell) printVars(asJSON bool) {
	env := s.session.Env()
	if asJSON {
		b, err := evaluator.VarsToJSON(env)
		if err != nil {
			s.printError(err)
			return
		}
		fmt.Fprintln(s.out, string(b))
		return
	}
	names := env.Names()
	if len(names) == 0 {
		fmt.Fprintln(s.out, "(no variables)")
		return
	}
	for _, name := range names {
		v, _ := env.Get(name)
		fmt.Fprintf(s.out, "%s = %s\n", name, v)
	}
}

func (s *Shell) printHelp(topic string) {
	if topic == "" {
		fmt.Fprint(s.out, help.Topics["repl"])
		return
	}
	_, content, err := help.MatchTopic(topic)
	if err != nil {
		fmt.Fprintln(s.out, s.palette.err.Sprint(err.Error()))
		return
	}
	fmt.Fprint(s.out, content)
}

func (s *Shell) printError(err error) {
	d := diagnostics.FromError(err, diagnostics.EIO)
	fmt.Fprintln(s.out, s.palette.err.Sprint(diagnostics.FormatDiagnostic(d, true)))
}

// palette holds the shell's colorizers.
type palette struct {
	title  *color.Color
	prompt *color.Color
	value  *color.Color
	err    *color.Color
}

func newPalette(enabled bool) palette {
	p := palette{
		title:  color.New(color.FgCyan, color.Bold),
		prompt: color.New(color.FgBlue),
		value:  color.New(color.FgGreen),
		err:    color.New(color.FgRed),
	}
	for _, c := range []*color.Color{p.title, p.prompt, p.value, p.err} {
		if enabled {
			c.EnableColor()
		} else {
			c.DisableColor()
		}
	}
	return p
}
