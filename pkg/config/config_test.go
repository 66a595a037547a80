package config_test

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/thomasrohde/mini/pkg/config"
	"github.com/thomasrohde/mini/pkg/diagnostics"
)

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
}

// isolate points HOME at an empty directory so the user file is controlled.
func isolate(t *testing.T) (project, home string) {
	t.Helper()
	home = t.TempDir()
	t.Setenv("HOME", home)
	return t.TempDir(), home
}

func TestLoadDefaults(t *testing.T) {
	project, _ := isolate(t)
	cfg, path, err := config.Load(project)
	if err != nil {
		t.Fatal(err)
	}
	if path != "" {
		t.Errorf("path = %q, want empty", path)
	}
	if cfg.MaxIterations != 10000 || cfg.Prompt != ">> " || !cfg.Color || cfg.HistorySize != 500 || cfg.CacheSize != 256 {
		t.Errorf("unexpected defaults: %+v", cfg)
	}
}

func TestProjectOverridesUser(t *testing.T) {
	project, home := isolate(t)
	writeFile(t, filepath.Join(home, ".mini", "config.yaml"), "prompt: 'user> '\n")
	writeFile(t, filepath.Join(project, config.ProjectFile), "max_iterations: 50\ntimeout: 2s\n")

	cfg, path, err := config.Load(project)
	if err != nil {
		t.Fatal(err)
	}
	if path != filepath.Join(project, config.ProjectFile) {
		t.Errorf("path = %q", path)
	}
	if cfg.MaxIterations != 50 {
		t.Errorf("max_iterations = %d, want 50", cfg.MaxIterations)
	}
	if cfg.Timeout != 2*time.Second {
		t.Errorf("timeout = %v, want 2s", cfg.Timeout)
	}
	// The first file found wins outright; the user prompt is not merged in.
	if cfg.Prompt != ">> " {
		t.Errorf("prompt = %q, want default", cfg.Prompt)
	}
}

func TestUserFile(t *testing.T) {
	project, home := isolate(t)
	writeFile(t, filepath.Join(home, ".mini", "config.yaml"), "color: false\nverbose: true\n")
	cfg, _, err := config.Load(project)
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Color || !cfg.Verbose {
		t.Errorf("unexpected config: %+v", cfg)
	}
}

func TestEmptyFileKeepsDefaults(t *testing.T) {
	project, _ := isolate(t)
	writeFile(t, filepath.Join(project, config.ProjectFile), "")
	cfg, _, err := config.Load(project)
	if err != nil {
		t.Fatal(err)
	}
	if cfg.MaxIterations != 10000 {
		t.Errorf("max_iterations = %d", cfg.MaxIterations)
	}
}

func TestInvalidFiles(t *testing.T) {
	tests := []struct {
		name    string
		content string
		target  error
	}{
		{"zero iterations", "max_iterations: 0\n", config.ErrMaxIterations},
		{"negative timeout", "timeout: -1s\n", config.ErrTimeout},
		{"negative history", "history_size: -3\n", config.ErrHistorySize},
		{"negative cache", "cache_size: -1\n", config.ErrCacheSize},
		{"unknown field", "colour: true\n", nil},
		{"bad yaml", "max_iterations: [\n", nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			project, _ := isolate(t)
			writeFile(t, filepath.Join(project, config.ProjectFile), tt.content)
			_, _, err := config.Load(project)
			if err == nil {
				t.Fatal("expected an error")
			}
			var cerr *config.Error
			if !errors.As(err, &cerr) {
				t.Fatalf("expected *config.Error, got %T", err)
			}
			if tt.target != nil && !errors.Is(err, tt.target) {
				t.Errorf("expected %v, got %v", tt.target, err)
			}
			if d := diagnostics.FromError(err, diagnostics.EIO); d.Code != diagnostics.EConfig {
				t.Errorf("code = %s, want %s", d.Code, diagnostics.EConfig)
			}
		})
	}
}

func TestHistoryPath(t *testing.T) {
	_, home := isolate(t)
	cfg := config.Default()
	if got := cfg.HistoryPath(); got != filepath.Join(home, ".mini_history") {
		t.Errorf("HistoryPath = %q", got)
	}
	cfg.HistoryFile = "/tmp/h"
	if got := cfg.HistoryPath(); got != "/tmp/h" {
		t.Errorf("HistoryPath = %q", got)
	}
	cfg.HistoryFile = ""
	if got := cfg.HistoryPath(); got != "" {
		t.Errorf("HistoryPath = %q, want empty", got)
	}
}
