package repl

import (
	"bytes"
	"context"
	"io"
	"strings"
	"testing"

	"github.com/thomasrohde/mini/pkg/runtime"
)

func runMenu(t *testing.T, input string) string {
	t.Helper()
	var out bytes.Buffer
	factory := func(w io.Writer) *runtime.Session {
		return runtime.NewSession(runtime.WithStdout(w))
	}
	m := NewMenu(strings.NewReader(input), &out, factory, WithColor(false))
	if err := m.Run(context.Background()); err != nil {
		t.Fatalf("Run: %v", err)
	}
	return out.String()
}

func TestMenuExit(t *testing.T) {
	out := runMenu(t, "5\n")
	if !strings.Contains(out, "Goodbye!") {
		t.Errorf("output:\n%s", out)
	}
}

func TestMenuSamples(t *testing.T) {
	tests := []struct {
		choice string
		name   string
		output string
	}{
		{"1", "Fibonacci", "0\n1\n1\n2\n3\n5\n8\n13\n21\n34\n"},
		{"2", "Factorial", "720\n"},
		{"3", "Fizzbuzz", "13\n14\n15\n"},
		{"4", "Expressions", "1024\n271\n5\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out := runMenu(t, "2\n"+tt.choice+"\n5\n")
			if !strings.Contains(out, "Running: "+tt.name) {
				t.Errorf("missing header:\n%s", out)
			}
			_, after, ok := strings.Cut(out, "Output:\n")
			if !ok || !strings.Contains(after, tt.output) {
				t.Errorf("want output %q in:\n%s", tt.output, out)
			}
		})
	}
}

func TestMenuUnknownSample(t *testing.T) {
	out := runMenu(t, "2\n9\n5\n")
	if !strings.Contains(out, `No sample "9"`) {
		t.Errorf("output:\n%s", out)
	}
}

func TestMenuTokensAndAST(t *testing.T) {
	out := runMenu(t, "3\nx = 1\n4\nprint(2)\n3\n@\n5\n")
	for _, want := range []string{"IDENT    | \"x\"", "Block\n  Print\n    Number 2\n", "unknown character"} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}
}

func TestMenuREPLKeepsSession(t *testing.T) {
	out := runMenu(t, "1\nx = 41\nexit\n1\nprint(x + 1)\nexit\n5\n")
	if !strings.Contains(out, "42\n") {
		t.Errorf("REPL session was not kept between visits:\n%s", out)
	}
}

func TestMenuEndOfInput(t *testing.T) {
	out := runMenu(t, "7\n")
	if !strings.Contains(out, `Unknown choice "7"`) {
		t.Errorf("output:\n%s", out)
	}
}
