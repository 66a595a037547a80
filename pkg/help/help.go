// Package help holds the mini quick reference, help topics and the bundled
// sample programs.
package help

import (
	"embed"
	"fmt"
	"path"
	"sort"
	"strings"
)

// Version is the language and tool version reported by the CLI.
const Version = "v0.1"

// QUICKREF is the one-screen language summary.
const QUICKREF = `mini ` + Version + ` quick reference

Statements (a trailing ';' is always optional):
  x = expr                  assign (creates or overwrites)
  print(expr)               print a value
  if (expr) { ... } [else { ... }]
  while (expr) { ... }      at most 10000 passes per loop
  expr                      expression statement

Expressions, loosest to tightest:
  == != < > <= >=           comparisons yield 1 or 0
  + -
  * / %                     / is real division, % takes the divisor's sign
  **                        right-associative
  -x                        unary minus
  42  3.14  name  ( expr )

Comments run from // to end of line.

Topics: syntax, operators, flow, errors, repl, config, samples
  mini help <topic>
`

// TopicList is the ordered list of help topics.
var TopicList = []string{"syntax", "operators", "flow", "errors", "repl", "config", "samples"}

// Topics maps topic names to their text.
var Topics = map[string]string{
	"syntax": `Syntax

Tokens: numbers (123, 4.5), identifiers ([A-Za-z_][A-Za-z0-9_]*), the
keywords print if else while, operators + - * / % ** = == != < > <= >=,
and the punctuation ( ) { } ;. Whitespace and // comments are skipped.
A number with a '.' needs digits on both sides: "1." is an error.

A program is a sequence of statements. A statement starting with an
identifier followed by '=' is an assignment; anything else that is not
print, if or while is an expression statement. "a = b = 1" is an error.
`,
	"operators": `Operators

Integers and floats share one numeric domain. Mixing them gives a float;
integer results that overflow become floats. Past 2**63 integers lose
precision: print(3 ** 50) shows a float approximation, not the exact value.

  a / b    always a float; b == 0 fails with E_DIV_ZERO
  a % b    floored, result has the sign of b; b == 0 fails
  a ** b   integer when both are integers and b >= 0
           0 ** negative fails with E_DIV_ZERO
           negative ** fraction fails with E_DOMAIN
  -a ** b  is (-a) ** b; "--a" does not parse

Comparisons return 1 or 0. Any non-zero number is true.
print shows floats with no fractional part as integers: print(6 / 3) is 2.
`,
	"flow": `Control flow

  if (cond) { then } else { otherwise }
  while (cond) { body }

Bodies do not open a new scope: every assignment is global to the session.
Each while loop may pass through its body at most 10000 times; the next
true condition fails with E_LOOP_LIMIT ("possible infinite loop").
The limit is configurable with max_iterations or -m.
`,
	"errors": `Diagnostics

  E_LEX          unknown character
  E_PARSE        unexpected or missing token
  E_UNBOUND      (check) variable read before any assignment
  E_UNDEFINED    variable read at run time before assignment
  E_DIV_ZERO     division or remainder by zero
  E_DOMAIN       negative base with a fractional exponent
  E_LOOP_LIMIT   while loop exceeded its iteration bound
  E_INTERRUPTED  run cancelled (Ctrl-C or timeout)
  E_CONFIG       unusable config file
  E_IO           file could not be read

Errors stop the current run; earlier prints and assignments stay.
Exit codes: 0 ok, 1 usage or I/O, 2 lex/parse/check, 4 runtime.
`,
	"repl": `REPL

Type statements at the prompt. A line with unbalanced '{' continues on
the next line until the braces close.

Commands:
  exit            leave the REPL
  reset           clear all variables and the output log
  vars            list variables
  tokens <src>    show the tokens of src
  ast <src>       show the tree of src
  history         show previous inputs
  help [topic]    show help

Ctrl-C cancels a running program; at the prompt it exits.
`,
	"config": `Configuration

Settings are read from .mini.yaml in the current directory, otherwise
from ~/.mini/config.yaml, otherwise the defaults below apply.

  max_iterations: 10000
  timeout: 0s               per run, 0 for none
  prompt: ">> "
  color: true
  verbose: false            structured logs on stderr
  history_file: ~/.mini_history
  history_size: 500
  cache_size: 256           parsed programs kept in memory

Command-line flags override the file.
`,
	"samples": `Sample programs

  mini samples            list samples
  mini samples <name>     run one (by number or name prefix)
`,
}

// MatchTopic resolves query to a topic by exact name or unique prefix.
func MatchTopic(query string) (string, string, error) {
	q := strings.ToLower(strings.TrimSpace(query))
	if content, ok := Topics[q]; ok {
		return q, content, nil
	}
	var matches []string
	if q != "" {
		for _, name := range TopicList {
			if strings.HasPrefix(name, q) {
				matches = append(matches, name)
			}
		}
	}
	switch len(matches) {
	case 1:
		return matches[0], Topics[matches[0]], nil
	case 0:
		return "", "", fmt.Errorf("unknown help topic %q (topics: %s)", query, strings.Join(TopicList, ", "))
	default:
		return "", "", fmt.Errorf("ambiguous help topic %q: %s", query, strings.Join(matches, ", "))
	}
}

//go:embed samples/*.mini
var sampleFS embed.FS

// Sample is a bundled example program.
type Sample struct {
	Key    string
	Name   string
	Source string
}

// Samples returns the bundled programs in menu order.
func Samples() []Sample {
	entries, err := sampleFS.ReadDir("samples")
	if err != nil {
		return nil
	}
	names := make([]string, 0, len(entries))
	for _, e := range entries {
		names = append(names, e.Name())
	}
	sort.Strings(names)

	out := make([]Sample, 0, len(names))
	for _, file := range names {
		data, err := sampleFS.ReadFile(path.Join("samples", file))
		if err != nil {
			continue
		}
		// files are named <key>_<name>.mini
		base := strings.TrimSuffix(file, ".mini")
		key, name, _ := strings.Cut(base, "_")
		out = append(out, Sample{
			Key:    key,
			Name:   strings.ToUpper(name[:1]) + name[1:],
			Source: string(data),
		})
	}
	return out
}

// FindSample looks a sample up by key or case-insensitive name prefix.
func FindSample(query string) (Sample, bool) {
	q := strings.ToLower(strings.TrimSpace(query))
	if q == "" {
		return Sample{}, false
	}
	for _, s := range Samples() {
		if s.Key == q || strings.HasPrefix(strings.ToLower(s.Name), q) {
			return s, true
		}
	}
	return Sample{}, false
}
