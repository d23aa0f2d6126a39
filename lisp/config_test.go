package lisp

import (
	"errors"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestDecodeConfig(t *testing.T) {
	text := `
heap:
  min_objects: 4096
  max_objects: 65536
gc:
  threshold: 2048
scoping: lexical
print_limit: 256
log_level: debug
`
	cfg, err := decodeConfig(strings.NewReader(text), "test.yaml")
	if err != nil {
		t.Fatalf("decodeConfig: %v", err)
	}
	if cfg.Heap.MinObjects != 4096 || cfg.Heap.MaxObjects != 65536 {
		t.Errorf("heap = %+v", cfg.Heap)
	}
	if cfg.GC.Threshold != 2048 || cfg.Scoping != LexicalScoping || cfg.PrintLimit != 256 {
		t.Errorf("cfg = %+v", cfg)
	}
	if level, err := cfg.Level(); err != nil || level != slog.LevelDebug {
		t.Errorf("Level() = %v, %v", level, err)
	}
}

func TestDecodeConfigKeepsDefaults(t *testing.T) {
	for _, text := range []string{"", "scoping: dynamic\n"} {
		cfg, err := decodeConfig(strings.NewReader(text), "test.yaml")
		if err != nil {
			t.Fatalf("decodeConfig(%q): %v", text, err)
		}
		if cfg != DefaultConfig() {
			t.Errorf("decodeConfig(%q) = %+v, want the defaults", text, cfg)
		}
	}
}

func TestDecodeConfigRejectsUnknownKeys(t *testing.T) {
	_, err := decodeConfig(strings.NewReader("heap:\n  size: 10\n"), "test.yaml")
	if err == nil || !strings.Contains(err.Error(), "test.yaml") {
		t.Fatalf("err = %v, want a parse error naming the file", err)
	}
}

func TestDecodeConfigValidation(t *testing.T) {
	text := `
heap:
  min_objects: 8
gc:
  threshold: -1
scoping: sideways
print_limit: 2
log_level: loud
`
	_, err := decodeConfig(strings.NewReader(text), "test.yaml")
	var ce *ConfigError
	if !errors.As(err, &ce) {
		t.Fatalf("err = %v, want a *ConfigError", err)
	}
	if len(ce.Issues) != 5 {
		t.Errorf("%d issues, want 5: %v", len(ce.Issues), ce.Issues)
	}
	if !strings.HasPrefix(err.Error(), "config validation failed: ") {
		t.Errorf("message = %q", err.Error())
	}

	_, err = decodeConfig(strings.NewReader("heap:\n  min_objects: 64\n  max_objects: 32\n"), "test.yaml")
	if !errors.As(err, &ce) || len(ce.Issues) != 1 {
		t.Errorf("max below min: err = %v", err)
	}
}

func TestLoadConfig(t *testing.T) {
	path := filepath.Join(t.TempDir(), "tlisp.yaml")
	if err := os.WriteFile(path, []byte("gc:\n  threshold: 0\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}
	if cfg.GC.Threshold != 0 || cfg.Heap.MinObjects != DefaultConfig().Heap.MinObjects {
		t.Errorf("cfg = %+v", cfg)
	}

	if _, err := LoadConfig(filepath.Join(t.TempDir(), "missing.yaml")); !errors.Is(err, os.ErrNotExist) {
		t.Errorf("missing file: err = %v", err)
	}
}
