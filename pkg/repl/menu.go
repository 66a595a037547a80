package repl

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/thomasrohde/mini/pkg/formatter"
	"github.com/thomasrohde/mini/pkg/help"
	"github.com/thomasrohde/mini/pkg/runtime"
)

// SessionFactory creates a session printing to w.
type SessionFactory func(w io.Writer) *runtime.Session

// Menu is the numbered launcher: REPL, samples, token and tree views.
// The REPL session lives as long as the menu; samples run in a fresh one.
type Menu struct {
	in         *bufio.Scanner
	out        io.Writer
	newSession SessionFactory
	session    *runtime.Session
	shellOpts  []ShellOption
}

// NewMenu creates a menu reading choices from in.
func NewMenu(in io.Reader, out io.Writer, newSession SessionFactory, opts ...ShellOption) *Menu {
	return &Menu{
		in:         bufio.NewScanner(in),
		out:        out,
		newSession: newSession,
		shellOpts:  opts,
	}
}

// Run shows the menu until the user picks exit or input ends.
func (m *Menu) Run(ctx context.Context) error {
	rule := strings.Repeat("=", 55)
	fmt.Fprintln(m.out, rule)
	fmt.Fprintf(m.out, "  mini %s interpreter\n", help.Version)
	fmt.Fprintln(m.out, rule)

	for ctx.Err() == nil {
		fmt.Fprint(m.out, "\n  1. REPL (interactive mode)\n  2. Run sample program\n  3. Show tokens (lexer output)\n  4. Show AST (parser output)\n  5. Exit\n\n  Choice: ")
		choice, ok := m.readLine()
		if !ok {
			fmt.Fprintln(m.out)
			return m.in.Err()
		}
		switch choice {
		case "1":
			if err := m.repl(ctx); err != nil {
				return err
			}
		case "2":
			m.sample(ctx)
		case "3":
			m.inspect(func(s *runtime.Session, src string) (string, error) {
				tokens, err := s.Tokens(src)
				if err != nil {
					return "", err
				}
				return formatter.DumpTokens(tokens), nil
			})
		case "4":
			m.inspect(func(s *runtime.Session, src string) (string, error) {
				block, err := s.AST(src)
				if err != nil {
					return "", err
				}
				return formatter.DumpTree(block), nil
			})
		case "5":
			fmt.Fprintln(m.out, "  Goodbye!")
			return nil
		default:
			if choice != "" {
				fmt.Fprintf(m.out, "  Unknown choice %q.\n", choice)
			}
		}
	}
	return nil
}

func (m *Menu) readLine() (string, bool) {
	if !m.in.Scan() {
		return "", false
	}
	return strings.TrimSpace(m.in.Text()), true
}

func (m *Menu) repl(ctx context.Context) error {
	if m.session == nil {
		m.session = m.newSession(m.out)
	}
	fmt.Fprintln(m.out)
	sh := newShell(m.session, m.in, m.out, m.shellOpts...)
	return sh.Run(ctx)
}

func (m *Menu) sample(ctx context.Context) {
	samples := help.Samples()
	fmt.Fprintln(m.out, "\n  Sample Programs:")
	for _, s := range samples {
		fmt.Fprintf(m.out, "    %s. %s\n", s.Key, s.Name)
	}
	fmt.Fprint(m.out, "  Choose: ")
	sel, ok := m.readLine()
	if !ok {
		return
	}
	s, found := help.FindSample(sel)
	if !found {
		fmt.Fprintf(m.out, "  No sample %q.\n", sel)
		return
	}
	fmt.Fprintf(m.out, "\n  Running: %s\n  %s\n  Code:\n%s\n  Output:\n", s.Name, strings.Repeat("-", 40), s.Source)

	session := m.newSession(m.out)
	if _, err := session.Run(ctx, s.Source); err != nil {
		fmt.Fprintf(m.out, "  %s\n", err)
	}
}

func (m *Menu) inspect(view func(*runtime.Session, string) (string, error)) {
	fmt.Fprint(m.out, "  Enter expression: ")
	src, ok := m.readLine()
	if !ok {
		return
	}
	out, err := view(m.newSession(io.Discard), src)
	if err != nil {
		fmt.Fprintf(m.out, "  %s\n", err)
		return
	}
	fmt.Fprint(m.out, out)
}
