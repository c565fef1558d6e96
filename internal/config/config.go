package config

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// FileName is the config file name at the root of a ledger directory.
const FileName = "pocketledger.yaml"

// Ledger backends.
const (
	BackendCSV    = "csv"
	BackendSQLite = "sqlite"
)

// Config represents the top-level pocketledger.yaml configuration.
type Config struct {
	HomeCurrency string       `yaml:"home_currency"`
	Ledger       LedgerConfig `yaml:"ledger"`
	Import       ImportConfig `yaml:"import"`
	Log          LogConfig    `yaml:"log"`
	Git          GitConfig    `yaml:"git"`
}

// LedgerConfig selects where accounts and transactions are stored.
type LedgerConfig struct {
	Backend string `yaml:"backend"` // "csv" or "sqlite"
	Path    string `yaml:"path"`    // relative to the ledger root
}

// ImportConfig controls statement imports.
type ImportConfig struct {
	DefaultAccount string `yaml:"default_account,omitempty"`
	MoveProcessed  bool   `yaml:"move_processed"`
}

// LogConfig controls diagnostic output.
type LogConfig struct {
	Level string `yaml:"level"`
}

// GitConfig controls git integration.
type GitConfig struct {
	AutoCommit  bool   `yaml:"auto_commit"`
	AuthorName  string `yaml:"author_name"`
	AuthorEmail string `yaml:"author_email"`
}

// Load reads a pocketledger.yaml file from disk.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config: %w", err)
	}
	cfg := Default("")
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Save writes a Config to a YAML file.
func Save(path string, cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("marshaling config: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("writing config: %w", err)
	}
	return nil
}

// Default returns a Config with sensible defaults for a new ledger.
// An empty homeCurrency means USD.
func Default(homeCurrency string) *Config {
	if homeCurrency == "" {
		homeCurrency = "USD"
	}
	return &Config{
		HomeCurrency: homeCurrency,
		Ledger: LedgerConfig{
			Backend: BackendCSV,
			Path:    "ledger",
		},
		Import: ImportConfig{
			MoveProcessed: true,
		},
		Log: LogConfig{
			Level: "info",
		},
		Git: GitConfig{
			AutoCommit:  false,
			AuthorName:  "pocketledger",
			AuthorEmail: "pocketledger@localhost",
		},
	}
}

// Validate checks fields that have a closed set of values.
func (c *Config) Validate() error {
	switch c.Ledger.Backend {
	case BackendCSV, BackendSQLite:
	default:
		return fmt.Errorf("invalid ledger backend %q (want %q or %q)", c.Ledger.Backend, BackendCSV, BackendSQLite)
	}
	if c.Ledger.Path == "" {
		return fmt.Errorf("ledger path must not be empty")
	}
	return nil
}

// LedgerPath resolves the ledger location against the ledger root.
func (c *Config) LedgerPath(root string) string {
	if filepath.IsAbs(c.Ledger.Path) {
		return c.Ledger.Path
	}
	return filepath.Join(root, c.Ledger.Path)
}

// DefaultLedgerPath returns the conventional ledger location for backend:
// a directory for CSV, a database file for SQLite.
func DefaultLedgerPath(backend string) string {
	if backend == BackendSQLite {
		return "ledger.db"
	}
	return "ledger"
}
