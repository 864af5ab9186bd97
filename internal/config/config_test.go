package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestDefaultConfigIsValid(t *testing.T) {
	if err := Validate(DefaultConfig()); err != nil {
		t.Fatalf("Validate(DefaultConfig()) = %v, want nil", err)
	}
}

// Turning on enhancement without any other AI settings must leave a usable
// configuration.
func TestDefaultAIConfigIsUsableWhenEnabled(t *testing.T) {
	cfg := DefaultConfig()
	cfg.AI.Enabled = true
	if err := Validate(cfg); err != nil {
		t.Fatalf("Validate() with AI enabled = %v, want nil", err)
	}
	if cfg.AI.Provider != "ollama" {
		t.Errorf("default provider = %q, want ollama", cfg.AI.Provider)
	}
	if cfg.AI.Endpoint == "" || cfg.AI.Model == "" {
		t.Error("default AI endpoint and model must be set")
	}
}

func TestValidateRejections(t *testing.T) {
	cases := []struct {
		name    string
		mutate  func(c *Config)
		wantSub string
	}{
		{"bad fetcher type", func(c *Config) { c.Fetcher.Type = "carrier-pigeon" }, "fetcher.type"},
		{"zero page timeout", func(c *Config) { c.Fetcher.PageTimeout = 0 }, "page_timeout"},
		{"zero api timeout", func(c *Config) { c.Fetcher.APITimeout = 0 }, "api_timeout"},
		{"bad trending url", func(c *Config) { c.Sources.TrendingBaseURL = "ftp://example.com" }, "trending_base_url"},
		{"hostless render endpoint", func(c *Config) { c.Sources.RenderAPIEndpoint = "https://" }, "render_api_endpoint"},
		{"zero per-page cap", func(c *Config) { c.Extract.MaxPerPage = 0 }, "max_per_page"},
		{"zero batch size", func(c *Config) { c.Enrich.BatchSize = 0 }, "batch_size"},
		{"bad storage type", func(c *Config) { c.Storage.Type = "parquet" }, "storage.type"},
		{"mongodb without uri", func(c *Config) { c.Storage.Type = "mongodb"; c.Storage.MongoURI = "" }, "mongo_uri"},
		{"port out of range", func(c *Config) { c.Server.Port = 70000 }, "server.port"},
		{"bad log level", func(c *Config) { c.Logging.Level = "loud" }, "logging.level"},
		{"bad log format", func(c *Config) { c.Logging.Format = "xml" }, "logging.format"},
		{"ai enabled with bad provider", func(c *Config) { c.AI.Enabled = true; c.AI.Provider = "bard" }, "ai.provider"},
		{"ai enabled without model", func(c *Config) { c.AI.Enabled = true; c.AI.Model = "" }, "ai.model"},
		{"openai without key", func(c *Config) { c.AI.Enabled = true; c.AI.Provider = "openai" }, "ai.api_key"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tc.mutate(cfg)
			err := Validate(cfg)
			if err == nil {
				t.Fatal("Validate() = nil, want error")
			}
			if !strings.Contains(err.Error(), tc.wantSub) {
				t.Errorf("error %q does not mention %q", err, tc.wantSub)
			}
		})
	}
}

func TestLoadWithoutFileUsesDefaults(t *testing.T) {
	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load(\"\") error = %v", err)
	}
	if cfg.Sources.TrendingBaseURL != DefaultConfig().Sources.TrendingBaseURL {
		t.Errorf("TrendingBaseURL = %q, want default", cfg.Sources.TrendingBaseURL)
	}
	if cfg.Enrich.BatchSize != 5 {
		t.Errorf("Enrich.BatchSize = %d, want 5", cfg.Enrich.BatchSize)
	}
}

func TestLoadFromFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "trendscout.yaml")
	yaml := `
fetcher:
  type: browser
  page_timeout: 30s
storage:
  type: jsonl
server:
  port: 9090
`
	if err := os.WriteFile(path, []byte(yaml), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.Fetcher.Type != "browser" {
		t.Errorf("Fetcher.Type = %q, want browser", cfg.Fetcher.Type)
	}
	if cfg.Fetcher.PageTimeout != 30*time.Second {
		t.Errorf("PageTimeout = %v, want 30s", cfg.Fetcher.PageTimeout)
	}
	if cfg.Storage.Type != "jsonl" {
		t.Errorf("Storage.Type = %q, want jsonl", cfg.Storage.Type)
	}
	if cfg.Server.Port != 9090 {
		t.Errorf("Server.Port = %d, want 9090", cfg.Server.Port)
	}
	// Untouched sections keep their defaults.
	if cfg.Extract.MaxPerPage != 25 {
		t.Errorf("Extract.MaxPerPage = %d, want 25", cfg.Extract.MaxPerPage)
	}
}

func TestLoadMissingExplicitFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "nope.yaml")); err == nil {
		t.Fatal("Load() with missing explicit file = nil, want error")
	}
}
