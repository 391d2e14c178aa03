package config

import (
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"time"

	"gopkg.in/yaml.v3"
)

// Lint rules.
const (
	RuleContinuation = "continuation"
	RuleOverIndent   = "over-indent"
)

var knownRules = []string{RuleContinuation, RuleOverIndent}

var knownLevels = []string{"debug", "info", "warn", "error"}

// Config holds all configuration for pyindent.
type Config struct {
	Indent  IndentConfig  `yaml:"indent"`
	Lint    LintConfig    `yaml:"lint"`
	Server  ServerConfig  `yaml:"server"`
	Logging LoggingConfig `yaml:"logging"`
}

// IndentConfig holds the editor-facing indentation settings.
type IndentConfig struct {
	TabSize                  int  `yaml:"tab_size"`
	TrimWhitespaceOnlyLines  bool `yaml:"trim_whitespace_only_lines"`
	UseTabOnHangingIndent    bool `yaml:"use_tab_on_hanging_indent"`
	KeepHangingBracketOnLine bool `yaml:"keep_hanging_bracket_on_line"`
}

// LintConfig holds indentation check configuration.
type LintConfig struct {
	Includes []string `yaml:"includes"`
	Excludes []string `yaml:"excludes"`
	Rules    []string `yaml:"rules"`
	Workers  int      `yaml:"workers"`
	Cache    bool     `yaml:"cache"`
}

// ServerConfig holds HTTP API configuration.
type ServerConfig struct {
	Addr      string        `yaml:"addr"`
	CacheSize int           `yaml:"cache_size"`
	CacheTTL  time.Duration `yaml:"cache_ttl"`
}

// LoggingConfig holds logging configuration.
type LoggingConfig struct {
	Level string `yaml:"level"`
}

// DefaultConfig returns the default configuration.
func DefaultConfig() *Config {
	return &Config{
		Indent: IndentConfig{
			TabSize: 4,
		},
		Lint: LintConfig{
			Includes: []string{"**/*.py", "**/*.pyi"},
			Excludes: []string{"**/.git/**", "**/.venv/**", "**/venv/**", "**/__pycache__/**", "**/node_modules/**", "**/build/**", "**/dist/**"},
			Rules:    []string{RuleContinuation, RuleOverIndent},
			Workers:  4,
			Cache:    true,
		},
		Server: ServerConfig{
			Addr:      "127.0.0.1:7878",
			CacheSize: 256,
			CacheTTL:  5 * time.Minute,
		},
		Logging: LoggingConfig{
			Level: "info",
		},
	}
}

// Validate checks values that would otherwise fail deep inside a command.
func (c *Config) Validate() error {
	if c.Indent.TabSize <= 0 {
		return fmt.Errorf("indent.tab_size must be positive, got %d", c.Indent.TabSize)
	}
	for _, rule := range c.Lint.Rules {
		if !slices.Contains(knownRules, rule) {
			return fmt.Errorf("lint.rules: unknown rule %q", rule)
		}
	}
	if c.Lint.Workers < 0 {
		return fmt.Errorf("lint.workers must not be negative, got %d", c.Lint.Workers)
	}
	if !slices.Contains(knownLevels, c.Logging.Level) {
		return fmt.Errorf("logging.level: unknown level %q", c.Logging.Level)
	}
	return nil
}

// RuleEnabled reports whether a lint rule is switched on.
func (c *Config) RuleEnabled(rule string) bool {
	return slices.Contains(c.Lint.Rules, rule)
}

// Load loads configuration from a YAML file.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil // Return defaults if no config file
		}
		return nil, err
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config %s: %w", path, err)
	}
	return cfg, nil
}

// LoadFromDir loads configuration from a directory (looks for pyindent.yaml).
func LoadFromDir(dir string) (*Config, error) {
	path := filepath.Join(dir, "pyindent.yaml")
	if _, err := os.Stat(path); err == nil {
		return Load(path)
	}

	path = filepath.Join(dir, ".pyindent", "config.yaml")
	if _, err := os.Stat(path); err == nil {
		return Load(path)
	}

	return DefaultConfig(), nil
}

// Save saves configuration to a YAML file.
func (c *Config) Save(path string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

// CacheDBPath returns the path to the lint cache database.
func CacheDBPath(dir string) string {
	return filepath.Join(dir, ".pyindent", "cache.db")
}

// EnsureStateDir ensures the .pyindent directory exists.
func EnsureStateDir(dir string) error {
	return os.MkdirAll(filepath.Join(dir, ".pyindent"), 0755)
}
