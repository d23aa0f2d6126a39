package lisp

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	lisptype "tlisp/lisp_type"
)

// Scoping selects how a call scope finds free variables.
type Scoping string

const (
	// DynamicScoping chains a call scope to the caller's frame.
	DynamicScoping Scoping = "dynamic"
	// LexicalScoping chains it to the frame the lambda was created in.
	LexicalScoping Scoping = "lexical"
)

// Config holds interpreter settings, normally read from a YAML file.
type Config struct {
	Heap struct {
		MinObjects int `yaml:"min_objects"`
		MaxObjects int `yaml:"max_objects"`
	} `yaml:"heap"`
	GC struct {
		Threshold int `yaml:"threshold"`
	} `yaml:"gc"`
	Scoping    Scoping `yaml:"scoping"`
	PrintLimit int     `yaml:"print_limit"`
	LogLevel   string  `yaml:"log_level"`
}

// DefaultConfig returns the settings used when no file is given.
func DefaultConfig() Config {
	var cfg Config
	cfg.Heap.MinObjects = lisptype.DefaultMinObjects
	cfg.GC.Threshold = lisptype.DefaultMinObjects
	cfg.Scoping = DynamicScoping
	cfg.PrintLimit = 1024
	cfg.LogLevel = "warn"
	return cfg
}

// ConfigError aggregates validation failures.
type ConfigError struct {
	Issues []string
}

func (e *ConfigError) Error() string {
	if len(e.Issues) == 0 {
		return "config: invalid configuration"
	}
	return "config validation failed: " + strings.Join(e.Issues, "; ")
}

// LoadConfig reads path over the defaults. Unknown keys are rejected.
func LoadConfig(path string) (Config, error) {
	cfg := DefaultConfig()
	file, err := os.Open(path)
	if err != nil {
		return cfg, fmt.Errorf("config: open %s: %w", path, err)
	}
	defer file.Close()
	return decodeConfig(file, path)
}

func decodeConfig(r io.Reader, name string) (Config, error) {
	cfg := DefaultConfig()
	decoder := yaml.NewDecoder(r)
	decoder.KnownFields(true)
	if err := decoder.Decode(&cfg); err != nil && !errors.Is(err, io.EOF) {
		return cfg, fmt.Errorf("config: parse %s: %w", name, err)
	}
	if err := cfg.validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

func (c *Config) validate() error {
	var issues []string
	if c.Heap.MinObjects < 16 {
		issues = append(issues, fmt.Sprintf("heap.min_objects must be at least 16, got %d", c.Heap.MinObjects))
	}
	if c.Heap.MaxObjects != 0 && c.Heap.MaxObjects < c.Heap.MinObjects {
		issues = append(issues, "heap.max_objects must be 0 or at least heap.min_objects")
	}
	if c.GC.Threshold < 0 {
		issues = append(issues, "gc.threshold must not be negative")
	}
	switch c.Scoping {
	case DynamicScoping, LexicalScoping:
	default:
		issues = append(issues, fmt.Sprintf("scoping must be %q or %q, got %q", DynamicScoping, LexicalScoping, c.Scoping))
	}
	if c.PrintLimit < 8 {
		issues = append(issues, "print_limit must be at least 8")
	}
	if _, err := c.Level(); err != nil {
		issues = append(issues, err.Error())
	}
	if len(issues) > 0 {
		return &ConfigError{Issues: issues}
	}
	return nil
}

// Level maps log_level onto a slog level.
func (c *Config) Level() (slog.Level, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(c.LogLevel)); err != nil {
		return slog.LevelWarn, fmt.Errorf("log_level: unknown level %q", c.LogLevel)
	}
	return level, nil
}
