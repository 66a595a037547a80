// Package testutil provides shared test helpers for mini Go tests.
package testutil

import (
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/oarkflow/json"
)

// ScenariosDir is the scenario root relative to cmd/mini.
const ScenariosDir = "testdata/scenarios"

// Scenario is one CLI invocation and its expected outcome, loaded from a
// scenario.json file.
type Scenario struct {
	Cmd    []string       `json:"cmd"`
	Stdin  string         `json:"stdin,omitempty"`
	Expect ExpectedResult `json:"expect"`
}

// ExpectedResult describes the expected outcome of running a scenario.
// Empty text fields are not checked; StdoutText is checked when
// StdoutExact is set so an empty stdout can be required.
type ExpectedResult struct {
	ExitCode       int    `json:"exitCode"`
	StdoutText     string `json:"stdoutText,omitempty"`
	StdoutExact    bool   `json:"stdoutExact,omitempty"`
	StdoutContains string `json:"stdoutContains,omitempty"`
	StderrContains string `json:"stderrContains,omitempty"`
	StderrCode     string `json:"stderrCode,omitempty"`
}

// LoadScenario loads a scenario from a directory containing scenario.json.
func LoadScenario(dir string) (*Scenario, error) {
	data, err := os.ReadFile(filepath.Join(dir, "scenario.json"))
	if err != nil {
		return nil, err
	}
	var s Scenario
	if err := json.Unmarshal(data, &s); err != nil {
		return nil, err
	}
	return &s, nil
}

// ListScenarios returns all scenario directories under root, sorted.
func ListScenarios(root string) ([]string, error) {
	entries, err := os.ReadDir(root)
	if err != nil {
		return nil, err
	}
	var dirs []string
	for _, e := range entries {
		if !e.IsDir() {
			continue
		}
		if _, err := os.Stat(filepath.Join(root, e.Name(), "scenario.json")); err == nil {
			dirs = append(dirs, filepath.Join(root, e.Name()))
		}
	}
	sort.Strings(dirs)
	return dirs, nil
}

// ResolveArgs returns the scenario command with program file arguments
// rewritten relative to the scenario directory.
func ResolveArgs(scenarioDir string, cmd []string) []string {
	args := make([]string, len(cmd))
	for i, a := range cmd {
		if strings.HasSuffix(a, ".mini") {
			a = filepath.Join(scenarioDir, a)
		}
		args[i] = a
	}
	return args
}
