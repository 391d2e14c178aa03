package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	if cfg.Indent.TabSize != 4 {
		t.Errorf("expected TabSize=4, got %d", cfg.Indent.TabSize)
	}
	if cfg.Lint.Workers != 4 {
		t.Errorf("expected Workers=4, got %d", cfg.Lint.Workers)
	}
	if !cfg.Lint.Cache {
		t.Error("expected lint cache enabled by default")
	}
	if cfg.Server.CacheTTL != 5*time.Minute {
		t.Errorf("expected CacheTTL=5m, got %s", cfg.Server.CacheTTL)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("expected default config to validate, got %v", err)
	}
}

func TestLoad_NonExistent(t *testing.T) {
	cfg, err := Load("/nonexistent/path/config.yaml")
	if err != nil {
		t.Errorf("expected no error for non-existent file, got %v", err)
	}
	if cfg == nil {
		t.Error("expected default config, got nil")
	}
}

func TestLoad_ValidYAML(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "pyindent.yaml")

	content := `
indent:
  tab_size: 2
  keep_hanging_bracket_on_line: true
lint:
  rules: [continuation]
server:
  cache_ttl: 30s
`
	if err := os.WriteFile(configPath, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(configPath)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if cfg.Indent.TabSize != 2 {
		t.Errorf("expected TabSize=2, got %d", cfg.Indent.TabSize)
	}
	if !cfg.Indent.KeepHangingBracketOnLine {
		t.Error("expected KeepHangingBracketOnLine=true")
	}
	if cfg.RuleEnabled(RuleOverIndent) {
		t.Error("expected over-indent rule disabled")
	}
	if !cfg.RuleEnabled(RuleContinuation) {
		t.Error("expected continuation rule enabled")
	}
	if cfg.Server.CacheTTL != 30*time.Second {
		t.Errorf("expected CacheTTL=30s, got %s", cfg.Server.CacheTTL)
	}
	// Untouched sections keep their defaults.
	if cfg.Logging.Level != "info" {
		t.Errorf("expected Level=info, got %s", cfg.Logging.Level)
	}
}

func TestLoad_Invalid(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{"zero tab size", "indent:\n  tab_size: 0\n"},
		{"unknown rule", "lint:\n  rules: [tabs]\n"},
		{"unknown level", "logging:\n  level: loud\n"},
		{"bad yaml", "indent: [\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "pyindent.yaml")
			if err := os.WriteFile(path, []byte(tt.content), 0644); err != nil {
				t.Fatal(err)
			}
			if _, err := Load(path); err == nil {
				t.Error("expected an error")
			}
		})
	}
}

func TestLoadFromDir(t *testing.T) {
	tmpDir := t.TempDir()
	if err := EnsureStateDir(tmpDir); err != nil {
		t.Fatal(err)
	}
	configPath := filepath.Join(tmpDir, ".pyindent", "config.yaml")

	content := `
lint:
  workers: 8
`
	if err := os.WriteFile(configPath, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}

	cfg, err := LoadFromDir(tmpDir)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if cfg.Lint.Workers != 8 {
		t.Errorf("expected Workers=8, got %d", cfg.Lint.Workers)
	}
}

func TestSaveRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "pyindent.yaml")
	cfg := DefaultConfig()
	cfg.Indent.TabSize = 8

	if err := cfg.Save(path); err != nil {
		t.Fatal(err)
	}
	loaded, err := Load(path)
	if err != nil {
		t.Fatal(err)
	}
	if loaded.Indent.TabSize != 8 {
		t.Errorf("expected TabSize=8, got %d", loaded.Indent.TabSize)
	}
}

func TestCacheDBPath(t *testing.T) {
	path := CacheDBPath("/home/user/project")
	expected := filepath.Join("/home/user/project", ".pyindent", "cache.db")
	if path != expected {
		t.Errorf("expected %s, got %s", expected, path)
	}
}
