// Package config implements mini configuration loading.
package config

import (
	sterrors "errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/oarkflow/errors"
	"gopkg.in/yaml.v3"

	"github.com/thomasrohde/mini/pkg/diagnostics"
)

// ProjectFile is the per-project config file name.
const ProjectFile = ".mini.yaml"

// Validation errors.
var (
	ErrMaxIterations = errors.New("max_iterations must be positive")
	ErrTimeout       = errors.New("timeout must not be negative")
	ErrHistorySize   = errors.New("history_size must not be negative")
	ErrCacheSize     = errors.New("cache_size must not be negative")
)

// Config holds interpreter and shell settings.
type Config struct {
	MaxIterations int64         `yaml:"max_iterations"`
	Timeout       time.Duration `yaml:"timeout"`
	Prompt        string        `yaml:"prompt"`
	Color         bool          `yaml:"color"`
	Verbose       bool          `yaml:"verbose"`
	HistoryFile   string        `yaml:"history_file"`
	HistorySize   int           `yaml:"history_size"`
	CacheSize     int64         `yaml:"cache_size"`
}

// Default returns the built-in settings.
func Default() *Config {
	return &Config{
		MaxIterations: 10000,
		Prompt:        ">> ",
		Color:         true,
		HistoryFile:   "~/.mini_history",
		HistorySize:   500,
		CacheSize:     256,
	}
}

// Error reports a config file that exists but cannot be used.
type Error struct {
	Path string
	Err  error
}

func (e *Error) Error() string {
	return fmt.Sprintf("config %s: %v", e.Path, e.Err)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Diagnostic converts the error for reporting.
func (e *Error) Diagnostic() diagnostics.Diagnostic {
	return diagnostics.MakeDiag(diagnostics.EConfig, e.Error(), nil, "fix or remove the file")
}

// Load resolves settings for projectDir.
// Precedence: project (.mini.yaml) → user (~/.mini/config.yaml) → defaults.
// The first file found wins; fields it leaves out keep their defaults. The
// returned path is empty when no file was found.
func Load(projectDir string) (*Config, string, error) {
	candidates := []string{filepath.Join(projectDir, ProjectFile)}
	if home, err := os.UserHomeDir(); err == nil {
		candidates = append(candidates, filepath.Join(home, ".mini", "config.yaml"))
	}

	for _, path := range candidates {
		cfg, err := LoadFile(path)
		if sterrors.Is(err, fs.ErrNotExist) {
			continue
		}
		if err != nil {
			return nil, path, err
		}
		return cfg, path, nil
	}
	return Default(), "", nil
}

// LoadFile reads one config file over the defaults and validates it.
func LoadFile(path string) (*Config, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	cfg := Default()
	dec := yaml.NewDecoder(f)
	dec.KnownFields(true)
	if err := dec.Decode(cfg); err != nil && !sterrors.Is(err, io.EOF) {
		return nil, &Error{Path: path, Err: err}
	}
	if err := cfg.Validate(); err != nil {
		return nil, &Error{Path: path, Err: err}
	}
	return cfg, nil
}

// Validate rejects settings the interpreter cannot honor.
func (c *Config) Validate() error {
	switch {
	case c.MaxIterations <= 0:
		return ErrMaxIterations
	case c.Timeout < 0:
		return ErrTimeout
	case c.HistorySize < 0:
		return ErrHistorySize
	case c.CacheSize < 0:
		return ErrCacheSize
	}
	return nil
}

// HistoryPath returns HistoryFile with a leading ~ expanded. An empty
// result disables persisted history.
func (c *Config) HistoryPath() string {
	path := c.HistoryFile
	if path == "~" || strings.HasPrefix(path, "~/") {
		home, err := os.UserHomeDir()
		if err != nil {
			return ""
		}
		path = filepath.Join(home, strings.TrimPrefix(path, "~"))
	}
	return path
}
