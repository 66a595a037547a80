package evaluator

import (
	"sort"

	"github.com/thomasrohde/mini/pkg/value"
)

// Env is the single flat variable scope of a session. Assignments anywhere,
// including inside if and while bodies, are visible everywhere afterwards.
// An Env is not safe for concurrent use.
type Env struct {
	bindings map[string]value.Number
}

// NewEnv creates an empty environment.
func NewEnv() *Env {
	return &Env{bindings: make(map[string]value.Number)}
}

// Get looks up a variable by name.
func (e *Env) Get(name string) (value.Number, bool) {
	val, ok := e.bindings[name]
	return val, ok
}

// Set creates or overwrites a binding.
func (e *Env) Set(name string, val value.Number) {
	e.bindings[name] = val
}

// Has checks whether a variable is defined.
func (e *Env) Has(name string) bool {
	_, ok := e.bindings[name]
	return ok
}

// Len returns the number of bindings.
func (e *Env) Len() int {
	return len(e.bindings)
}

// Names returns the bound names in sorted order.
func (e *Env) Names() []string {
	names := make([]string, 0, len(e.bindings))
	for name := range e.bindings {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Snapshot returns a copy of the bindings.
func (e *Env) Snapshot() map[string]value.Number {
	out := make(map[string]value.Number, len(e.bindings))
	for k, v := range e.bindings {
		out[k] = v
	}
	return out
}

// Clear removes every binding.
func (e *Env) Clear() {
	clear(e.bindings)
}
