package config

import (
	"fmt"
	"net/url"
)

// Validate checks the configuration for invalid values.
func Validate(cfg *Config) error {
	if cfg.Fetcher.Type != "http" && cfg.Fetcher.Type != "browser" {
		return fmt.Errorf("fetcher.type must be 'http' or 'browser', got %q", cfg.Fetcher.Type)
	}
	if cfg.Fetcher.PageTimeout <= 0 {
		return fmt.Errorf("fetcher.page_timeout must be > 0")
	}
	if cfg.Fetcher.APITimeout <= 0 {
		return fmt.Errorf("fetcher.api_timeout must be > 0")
	}
	if cfg.Fetcher.MaxBodySize <= 0 {
		return fmt.Errorf("fetcher.max_body_size must be > 0")
	}
	if cfg.Fetcher.MaxRedirects < 0 {
		return fmt.Errorf("fetcher.max_redirects must be >= 0")
	}

	for name, raw := range map[string]string{
		"sources.trending_base_url":   cfg.Sources.TrendingBaseURL,
		"sources.repo_api_base_url":   cfg.Sources.RepoAPIBaseURL,
		"sources.launch_base_url":     cfg.Sources.LaunchBaseURL,
		"sources.render_api_endpoint": cfg.Sources.RenderAPIEndpoint,
	} {
		if err := ValidateURL(raw); err != nil {
			return fmt.Errorf("%s: %w", name, err)
		}
	}

	if cfg.Extract.MaxPerPage < 1 {
		return fmt.Errorf("extract.max_per_page must be >= 1, got %d", cfg.Extract.MaxPerPage)
	}

	if cfg.Enrich.BatchSize < 1 {
		return fmt.Errorf("enrich.batch_size must be >= 1, got %d", cfg.Enrich.BatchSize)
	}
	if cfg.Enrich.BatchDelay < 0 {
		return fmt.Errorf("enrich.batch_delay must be >= 0")
	}

	validStorageTypes := map[string]bool{
		"json": true, "jsonl": true, "csv": true, "mongodb": true,
	}
	if !validStorageTypes[cfg.Storage.Type] {
		return fmt.Errorf("storage.type %q is not supported (valid: json, jsonl, csv, mongodb)", cfg.Storage.Type)
	}
	if cfg.Storage.Type == "mongodb" && cfg.Storage.MongoURI == "" {
		return fmt.Errorf("storage.mongo_uri is required when storage.type is mongodb")
	}

	if cfg.AI.Enabled {
		if cfg.AI.Provider != "ollama" && cfg.AI.Provider != "openai" {
			return fmt.Errorf("ai.provider must be 'ollama' or 'openai', got %q", cfg.AI.Provider)
		}
		if cfg.AI.Model == "" {
			return fmt.Errorf("ai.model is required when ai.enabled is true")
		}
		if cfg.AI.Provider == "openai" && cfg.AI.APIKey == "" {
			return fmt.Errorf("ai.api_key is required when ai.provider is openai")
		}
	}

	if cfg.Server.Port < 1 || cfg.Server.Port > 65535 {
		return fmt.Errorf("server.port must be 1-65535, got %d", cfg.Server.Port)
	}

	validLogLevels := map[string]bool{
		"debug": true, "info": true, "warn": true, "error": true,
	}
	if !validLogLevels[cfg.Logging.Level] {
		return fmt.Errorf("logging.level must be debug/info/warn/error, got %q", cfg.Logging.Level)
	}
	if cfg.Logging.Format != "text" && cfg.Logging.Format != "json" {
		return fmt.Errorf("logging.format must be 'text' or 'json', got %q", cfg.Logging.Format)
	}

	return nil
}

// ValidateURL checks if a URL string is usable as a fetch target.
func ValidateURL(rawURL string) error {
	u, err := url.Parse(rawURL)
	if err != nil {
		return fmt.Errorf("invalid URL: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("URL scheme must be http or https, got %q", u.Scheme)
	}
	if u.Host == "" {
		return fmt.Errorf("URL must have a host")
	}
	return nil
}
