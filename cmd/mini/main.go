// Command mini is the mini language CLI: run, check and format programs,
// inspect tokens and trees, or work interactively.
package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"time"

	"git.sr.ht/~sircmpwn/getopt"
	"github.com/fatih/color"
	"github.com/oarkflow/json"
	"github.com/oarkflow/log"

	"github.com/thomasrohde/mini/pkg/config"
	"github.com/thomasrohde/mini/pkg/diagnostics"
	"github.com/thomasrohde/mini/pkg/evaluator"
	"github.com/thomasrohde/mini/pkg/formatter"
	"github.com/thomasrohde/mini/pkg/help"
	"github.com/thomasrohde/mini/pkg/lexer"
	"github.com/thomasrohde/mini/pkg/repl"
	"github.com/thomasrohde/mini/pkg/runtime"
)

const usage = `usage: mini <command> [options] [file]
commands: run, check, fmt, tokens, ast, repl, menu, samples, help, version

options:
  -m N      max iterations per while loop
  -t DUR    timeout per run (e.g. 2s)
  -j        JSON diagnostics and output
  -n        no color
  -v        verbose logging on stderr
  -w        (fmt) write the result back to the file
`

// Exit codes.
const (
	exitOK      = 0
	exitUsage   = 1
	exitStatic  = 2
	exitRuntime = 4
)

func main() {
	if len(os.Args) < 2 {
		fmt.Fprint(os.Stderr, usage)
		os.Exit(exitUsage)
	}
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	code := run(ctx, os.Args[1:], os.Stdin, os.Stdout, os.Stderr)
	stop()
	os.Exit(code)
}

// cli carries the resolved settings of one invocation.
type cli struct {
	cfg    *config.Config
	json   bool
	write  bool
	args   []string
	stdin  io.Reader
	stdout io.Writer
	stderr io.Writer
	errc   *color.Color
	logger *log.Logger
	cache  *runtime.ProgramCache
}

// run executes one command and returns the process exit code. args[0] is the
// command name.
func run(ctx context.Context, args []string, stdin io.Reader, stdout, stderr io.Writer) int {
	if len(args) == 0 {
		fmt.Fprint(stderr, usage)
		return exitUsage
	}
	cmd := args[0]
	switch cmd {
	case "help", "--help", "-h":
		return cmdHelp(args[1:], stdout, stderr)
	case "version", "--version":
		fmt.Fprintf(stdout, "mini %s\n", help.Version)
		return exitOK
	}

	c, code := setup(args, stdin, stdout, stderr)
	if c == nil {
		return code
	}
	defer c.cache.Close()

	switch cmd {
	case "run":
		return c.run(ctx)
	case "check":
		return c.check()
	case "fmt":
		return c.format()
	case "tokens":
		return c.tokens()
	case "ast":
		return c.tree()
	case "repl":
		return c.shell(ctx)
	case "menu":
		return c.menu(ctx)
	case "samples":
		return c.samples(ctx)
	default:
		fmt.Fprintf(stderr, "unknown command: %s\n%s", cmd, usage)
		return exitUsage
	}
}

// setup parses options and loads configuration. Flags override the file.
func setup(args []string, stdin io.Reader, stdout, stderr io.Writer) (*cli, int) {
	cwd, _ := os.Getwd()
	cfg, _, err := config.Load(cwd)
	if err != nil {
		fmt.Fprintln(stderr, diagnostics.FormatDiagnostic(diagnostics.FromError(err, diagnostics.EConfig), true))
		return nil, exitUsage
	}

	c := &cli{cfg: cfg, stdin: stdin, stdout: stdout, stderr: stderr}
	opts, optind, err := getopt.Getopts(args, "m:t:jnvw")
	if err != nil {
		fmt.Fprintf(stderr, "%s: %v\n%s", args[0], err, usage)
		return nil, exitUsage
	}
	for _, opt := range opts {
		switch opt.Option {
		case 'm':
			n, err := strconv.ParseInt(opt.Value, 10, 64)
			if err != nil || n <= 0 {
				fmt.Fprintf(stderr, "invalid -m value %q\n", opt.Value)
				return nil, exitUsage
			}
			cfg.MaxIterations = n
		case 't':
			d, err := time.ParseDuration(opt.Value)
			if err != nil || d < 0 {
				fmt.Fprintf(stderr, "invalid -t value %q\n", opt.Value)
				return nil, exitUsage
			}
			cfg.Timeout = d
		case 'j':
			c.json = true
		case 'n':
			cfg.Color = false
		case 'v':
			cfg.Verbose = true
		case 'w':
			c.write = true
		}
	}
	c.args = args[optind:]

	c.errc = color.New(color.FgRed)
	if !cfg.Color {
		c.errc.DisableColor()
	}
	if cfg.Verbose {
		l := log.DefaultLogger
		l.Writer = &log.IOWriter{Writer: stderr}
		c.logger = &l
	}
	c.cache, err = runtime.NewProgramCache(cfg.CacheSize)
	if err != nil {
		fmt.Fprintf(stderr, "cache: %v\n", err)
		return nil, exitUsage
	}
	return c, exitOK
}

func (c *cli) newSession(w io.Writer, filename string) *runtime.Session {
	return runtime.NewSession(
		runtime.WithStdout(w),
		runtime.WithFilename(filename),
		runtime.WithMaxIterations(c.cfg.MaxIterations),
		runtime.WithTimeout(c.cfg.Timeout),
		runtime.WithLogger(c.logger),
		runtime.WithCache(c.cache),
	)
}

func (c *cli) report(diags ...diagnostics.Diagnostic) {
	if c.json {
		fmt.Fprintln(c.stderr, diagnostics.FormatDiagnostics(diags, false))
		return
	}
	fmt.Fprintln(c.stderr, c.errc.Sprint(diagnostics.FormatDiagnostics(diags, true)))
}

// fail reports err and maps it to an exit code.
func (c *cli) fail(err error) int {
	if de, ok := err.(*runtime.DiagnosticError); ok {
		c.report(de.Diagnostics...)
		return exitStatic
	}
	d := diagnostics.FromError(err, diagnostics.EIO)
	c.report(d)
	return exitCodeFor(d.Code)
}

func exitCodeFor(code string) int {
	switch code {
	case diagnostics.ELex, diagnostics.EParse, diagnostics.EUnbound:
		return exitStatic
	case diagnostics.EIO, diagnostics.EConfig:
		return exitUsage
	default:
		return exitRuntime
	}
}

// source reads the single file argument; "-" reads stdin.
func (c *cli) source(cmd string) (string, string, int) {
	if len(c.args) != 1 {
		fmt.Fprintf(c.stderr, "usage: mini %s [options] <file>\n", cmd)
		return "", "", exitUsage
	}
	file := c.args[0]
	var (
		data []byte
		err  error
	)
	if file == "-" {
		data, err = io.ReadAll(c.stdin)
		file = "<stdin>"
	} else {
		data, err = os.ReadFile(file)
	}
	if err != nil {
		c.report(diagnostics.MakeDiag(diagnostics.EIO, fmt.Sprintf("cannot read file: %s", file), nil, ""))
		return "", "", exitUsage
	}
	return string(data), file, exitOK
}

func (c *cli) run(ctx context.Context) int {
	src, file, code := c.source("run")
	if code != exitOK {
		return code
	}
	session := c.newSession(c.stdout, file)
	if _, err := session.Run(ctx, src); err != nil {
		return c.fail(err)
	}
	if c.json {
		b, err := evaluator.VarsToJSON(session.Env())
		if err != nil {
			return c.fail(err)
		}
		fmt.Fprintln(c.stdout, string(b))
	}
	return exitOK
}

func (c *cli) check() int {
	src, file, code := c.source("check")
	if code != exitOK {
		return code
	}
	diags := c.newSession(io.Discard, file).Check(src)
	if len(diags) > 0 {
		return c.fail(&runtime.DiagnosticError{Diagnostics: diags})
	}
	if c.json {
		fmt.Fprintln(c.stdout, "[]")
	} else {
		fmt.Fprintln(c.stdout, "No errors found.")
	}
	return exitOK
}

func (c *cli) format() int {
	src, file, code := c.source("fmt")
	if code != exitOK {
		return code
	}
	out, err := c.newSession(io.Discard, file).Format(src)
	if err != nil {
		return c.fail(err)
	}
	if strings.Contains(src, "//") {
		fmt.Fprintln(c.stderr, "warning: comments are not preserved by the formatter")
	}
	if c.write && file != "<stdin>" {
		if err := os.WriteFile(file, []byte(out), 0o644); err != nil {
			fmt.Fprintf(c.stderr, "error writing file: %s\n", err)
			return exitUsage
		}
		return exitOK
	}
	fmt.Fprint(c.stdout, out)
	return exitOK
}

type tokenJSON struct {
	Type  string `json:"type"`
	Value string `json:"value"`
	Line  int    `json:"line"`
	Col   int    `json:"col"`
}

func (c *cli) tokens() int {
	src, file, code := c.source("tokens")
	if code != exitOK {
		return code
	}
	tokens, err := lexer.Tokenize(src, file)
	if err != nil {
		return c.fail(err)
	}
	if !c.json {
		fmt.Fprint(c.stdout, formatter.DumpTokens(tokens))
		return exitOK
	}
	out := make([]tokenJSON, 0, len(tokens))
	for _, t := range tokens {
		out = append(out, tokenJSON{Type: t.Type.String(), Value: t.Value, Line: t.Span.StartLine, Col: t.Span.StartCol})
	}
	b, err := json.Marshal(out)
	if err != nil {
		return c.fail(err)
	}
	fmt.Fprintln(c.stdout, string(b))
	return exitOK
}

func (c *cli) tree() int {
	src, file, code := c.source("ast")
	if code != exitOK {
		return code
	}
	block, err := c.newSession(io.Discard, file).AST(src)
	if err != nil {
		return c.fail(err)
	}
	fmt.Fprint(c.stdout, formatter.DumpTree(block))
	return exitOK
}

func (c *cli) shellOptions(history *repl.History) []repl.ShellOption {
	return []repl.ShellOption{
		repl.WithPrompt(c.cfg.Prompt),
		repl.WithColor(c.cfg.Color),
		repl.WithHistory(history),
	}
}

func (c *cli) shell(ctx context.Context) int {
	history := repl.NewHistory(c.cfg.HistorySize, c.cfg.HistoryPath())
	if err := history.Load(); err != nil && c.logger != nil {
		c.logger.Error().Err(err).Msg("history not loaded")
	}
	sh := repl.NewShell(c.newSession(c.stdout, "<repl>"), c.stdin, c.stdout, c.shellOptions(history)...)

	// SIGINT is handled by the shell, not the process interrupt context.
	shellCtx, cancel := context.WithCancel(context.WithoutCancel(ctx))
	defer cancel()
	stop := sh.WatchSignals(func() {
		fmt.Fprintln(c.stdout)
		_ = history.Save()
		os.Exit(exitOK)
	})
	defer stop()

	err := sh.Run(shellCtx)
	if serr := history.Save(); serr != nil && c.logger != nil {
		c.logger.Error().Err(serr).Msg("history not saved")
	}
	if err != nil {
		fmt.Fprintln(c.stderr, err)
		return exitUsage
	}
	return exitOK
}

func (c *cli) menu(ctx context.Context) int {
	factory := func(w io.Writer) *runtime.Session {
		return c.newSession(w, "<menu>")
	}
	m := repl.NewMenu(c.stdin, c.stdout, factory, c.shellOptions(repl.NewHistory(c.cfg.HistorySize, ""))...)
	if err := m.Run(ctx); err != nil {
		fmt.Fprintln(c.stderr, err)
		return exitUsage
	}
	return exitOK
}

func (c *cli) samples(ctx context.Context) int {
	if len(c.args) == 0 {
		for _, s := range help.Samples() {
			fmt.Fprintf(c.stdout, "%s. %s\n", s.Key, s.Name)
		}
		return exitOK
	}
	s, ok := help.FindSample(strings.Join(c.args, " "))
	if !ok {
		fmt.Fprintf(c.stderr, "no sample %q\n", strings.Join(c.args, " "))
		return exitUsage
	}
	if _, err := c.newSession(c.stdout, s.Name).Run(ctx, s.Source); err != nil {
		return c.fail(err)
	}
	return exitOK
}

func cmdHelp(args []string, stdout, stderr io.Writer) int {
	if len(args) == 0 {
		fmt.Fprint(stdout, help.QUICKREF)
		return exitOK
	}
	_, content, err := help.MatchTopic(strings.Join(args, " "))
	if err != nil {
		fmt.Fprintln(stderr, err)
		return exitUsage
	}
	fmt.Fprint(stdout, content)
	return exitOK
}
