package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadDefaults(t *testing.T) {
	cfg := Load()

	if cfg.Database.Path != "company_tracker.db" {
		t.Fatalf("unexpected database path: %q", cfg.Database.Path)
	}
	if cfg.Pipeline.LookbackDays != 7 || cfg.Pipeline.ArticleLimit != 10 {
		t.Fatalf("unexpected pipeline defaults: %+v", cfg.Pipeline)
	}
	if cfg.OpenAI.Model != "gpt-4o-mini" || cfg.OpenAI.MaxContentChars != 3000 {
		t.Fatalf("unexpected openai defaults: %+v", cfg.OpenAI)
	}
	if cfg.Logging.Level != "info" {
		t.Fatalf("unexpected log level: %q", cfg.Logging.Level)
	}
}

func TestLoadFileMergesOverDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	body := `
database:
  path: /tmp/custom.db
pipeline:
  lookbackDays: 30
feeds:
  - name: Wire
    url: https://example.org/rss
`
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	cfg := LoadFile(path)

	if cfg.Database.Path != "/tmp/custom.db" {
		t.Fatalf("file value must win: %q", cfg.Database.Path)
	}
	if cfg.Pipeline.LookbackDays != 30 {
		t.Fatalf("file value must win: %d", cfg.Pipeline.LookbackDays)
	}
	if cfg.Pipeline.ArticleLimit != 10 {
		t.Fatalf("unset fields must keep defaults: %d", cfg.Pipeline.ArticleLimit)
	}
	if len(cfg.Feeds) != 1 || cfg.Feeds[0].Name != "Wire" {
		t.Fatalf("feeds not loaded: %+v", cfg.Feeds)
	}
}

func TestLoadFileMissingFallsBackToDefaults(t *testing.T) {
	cfg := LoadFile(filepath.Join(t.TempDir(), "does-not-exist.yaml"))

	if cfg.Database.Path != "company_tracker.db" {
		t.Fatalf("expected defaults, got %q", cfg.Database.Path)
	}
}

func TestEnvOverridesWinOverFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	body := `
database:
  path: /tmp/from-file.db
newsapi:
  apiKey: file-key
`
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	t.Setenv("DATABASE_PATH", "/tmp/from-env.db")
	t.Setenv("NEWSAPI_KEY", "env-key")
	t.Setenv("OPENAI_API_KEY", "env-openai")

	cfg := LoadFile(path)

	if cfg.Database.Path != "/tmp/from-env.db" {
		t.Fatalf("env must win over file: %q", cfg.Database.Path)
	}
	if cfg.NewsAPI.APIKey != "env-key" {
		t.Fatalf("env must win over file: %q", cfg.NewsAPI.APIKey)
	}
	if cfg.OpenAI.APIKey != "env-openai" {
		t.Fatalf("env override missing: %q", cfg.OpenAI.APIKey)
	}
}
