// Package config loads the top-level ledgertools.yaml configuration.
package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"github.com/ledgertools-dev/ledgertools/internal/accounts"
)

// Error reports a missing or invalid top-level configuration value.
type Error struct {
	Key string
	Msg string
}

func (e *Error) Error() string {
	return fmt.Sprintf("config %q: %s", e.Key, e.Msg)
}

// Config represents the top-level ledgertools.yaml configuration.
type Config struct {
	Currency   string             `yaml:"currency"`
	Rules      string             `yaml:"rules"`       // rules file or directory
	AssertFile string             `yaml:"assert_file"` // balance assertion destination
	LedgerFile string             `yaml:"ledger_file"` // optional consolidated ledger
	StopWords  []string           `yaml:"payee_stop_words,omitempty"`
	Journal    JournalConfig      `yaml:"journal"`
	Git        GitConfig          `yaml:"git"`
	Accounts   []accounts.Account `yaml:"accounts"`
}

// JournalConfig controls rendered journal layout.
type JournalConfig struct {
	Width  int `yaml:"width"`
	Indent int `yaml:"indent"`
}

// GitConfig controls git integration for the ledger directory.
type GitConfig struct {
	AutoCommit  bool   `yaml:"auto_commit"`
	AuthorName  string `yaml:"author_name"`
	AuthorEmail string `yaml:"author_email"`
}

// Load reads a ledgertools.yaml file from disk. A .env file next to the
// config is loaded first so account options can use env: indirection for
// credentials.
func Load(path string) (*Config, error) {
	// Missing .env is fine; explicit values stay untouched.
	_ = godotenv.Load(filepath.Join(filepath.Dir(path), ".env"))

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}

	cfg.applyDefaults()
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
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

// Default returns a Config with sensible defaults for a new project.
func Default() *Config {
	cfg := &Config{
		Currency:   "$",
		Rules:      "rules",
		AssertFile: filepath.Join("dat", "balance.ledger"),
		Git: GitConfig{
			AutoCommit:  true,
			AuthorName:  "Ledgertools",
			AuthorEmail: "import@ledgertools.dev",
		},
	}
	cfg.applyDefaults()
	return cfg
}

func (c *Config) applyDefaults() {
	if c.Currency == "" {
		c.Currency = "$"
	}
	if c.Journal.Width == 0 {
		c.Journal.Width = 80
	}
	if c.Journal.Indent == 0 {
		c.Journal.Indent = 4
	}
}

func (c *Config) validate() error {
	seen := make(map[string]bool, len(c.Accounts))
	for _, a := range c.Accounts {
		if a.Name == "" {
			return &Error{Key: "accounts.name", Msg: "every account needs a name"}
		}
		if seen[a.Name] {
			return &Error{Key: "accounts.name", Msg: "duplicate account " + a.Name}
		}
		seen[a.Name] = true

		if a.From == "" {
			return &Error{Key: "accounts." + a.Name + ".from", Msg: "missing required config key"}
		}
		if a.Parser == "" {
			return &Error{Key: "accounts." + a.Name + ".parser", Msg: "missing required config key"}
		}
		if a.LedgerFile == "" {
			return &Error{Key: "accounts." + a.Name + ".ledger_file", Msg: "missing required config key"}
		}
	}
	return nil
}
