package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
)

// Config holds the full TOML-driven migration configuration.
type Config struct {
	Input  InputConfig  `toml:"input"`
	Output OutputConfig `toml:"output"`

	OnUnmappedTable string `toml:"on_unmapped_table"` // drop|warn|fail
	OnRowMismatch   string `toml:"on_row_mismatch"`   // error|truncate

	// Tables overrides or extends the built-in schema mapping.
	Tables map[string]TableMapping `toml:"tables"`

	// configDir is the directory containing the TOML file, used to
	// resolve relative input/output paths.
	configDir string
}

// InputConfig identifies the legacy dump to extract from. The dump
// may be compressed (.gz, .bz2, .xz, .zst).
type InputConfig struct {
	Dump string `toml:"dump"`
}

// OutputConfig controls where fixture files and repair artifacts go.
type OutputConfig struct {
	Dir          string `toml:"dir"`
	SQLite       string `toml:"sqlite"`        // optional inspection database
	BackupSuffix string `toml:"backup_suffix"` // appended to a file's path before in-place repair
}

const (
	unmappedDrop = "drop"
	unmappedWarn = "warn"
	unmappedFail = "fail"

	rowMismatchError    = "error"
	rowMismatchTruncate = "truncate"
)

// loadConfig reads a TOML config file and returns a Config with
// defaults applied.
func loadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}

	cfg := Config{
		OnUnmappedTable: unmappedDrop,
		OnRowMismatch:   rowMismatchError,
	}
	md, err := toml.Decode(string(data), &cfg)
	if err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	if unknown := md.Undecoded(); len(unknown) > 0 {
		keys := make([]string, len(unknown))
		for i, k := range unknown {
			keys[i] = k.String()
		}
		return nil, fmt.Errorf("unknown config keys: %s", strings.Join(keys, ", "))
	}

	absPath, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("resolve config path: %w", err)
	}
	cfg.configDir = filepath.Dir(absPath)

	switch cfg.OnUnmappedTable {
	case unmappedDrop, unmappedWarn, unmappedFail:
	default:
		return nil, fmt.Errorf("on_unmapped_table must be one of: drop, warn, fail")
	}
	switch cfg.OnRowMismatch {
	case rowMismatchError, rowMismatchTruncate:
	default:
		return nil, fmt.Errorf("on_row_mismatch must be one of: error, truncate")
	}

	if cfg.Output.Dir == "" {
		cfg.Output.Dir = "fixtures"
	}
	if cfg.Output.BackupSuffix == "" {
		cfg.Output.BackupSuffix = ".bak"
	}
	if !strings.HasPrefix(cfg.Output.BackupSuffix, ".") {
		return nil, fmt.Errorf("output.backup_suffix must start with '.'")
	}

	for name, tm := range cfg.Tables {
		if tm.Entity == "" {
			return nil, fmt.Errorf("tables.%s: entity is required", name)
		}
		if len(tm.Columns) == 0 {
			return nil, fmt.Errorf("tables.%s: columns is required", name)
		}
	}

	return &cfg, nil
}

// resolvePath resolves a path relative to the config file directory.
func (c *Config) resolvePath(p string) string {
	if p == "" || filepath.IsAbs(p) {
		return p
	}
	return filepath.Join(c.configDir, p)
}

// schemaMapping builds the immutable mapping for this run: the
// built-in legacy table set, with [tables.*] entries overriding or
// extending it.
func (c *Config) schemaMapping() SchemaMapping {
	m := defaultSchemaMapping()
	for name, tm := range c.Tables {
		m[name] = tm
	}
	return m
}
