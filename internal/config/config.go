package config

import (
	"time"
)

// Version is set at build time via ldflags.
var Version = "dev"

// Config is the root configuration for trendscout.
type Config struct {
	Fetcher Fetcher `mapstructure:"fetcher" yaml:"fetcher"`
	Sources Sources `mapstructure:"sources" yaml:"sources"`
	Extract Extract `mapstructure:"extract" yaml:"extract"`
	Enrich  Enrich  `mapstructure:"enrich"  yaml:"enrich"`
	Storage Storage `mapstructure:"storage" yaml:"storage"`
	Server  Server  `mapstructure:"server"  yaml:"server"`
	AI      AI      `mapstructure:"ai"      yaml:"ai"`
	Logging Logging `mapstructure:"logging" yaml:"logging"`
}

// Fetcher controls the HTTP/browser fetch adapter.
type Fetcher struct {
	Type            string        `mapstructure:"type"              yaml:"type"` // http or browser
	PageTimeout     time.Duration `mapstructure:"page_timeout"      yaml:"page_timeout"`
	APITimeout      time.Duration `mapstructure:"api_timeout"       yaml:"api_timeout"`
	FollowRedirects bool          `mapstructure:"follow_redirects"  yaml:"follow_redirects"`
	MaxRedirects    int           `mapstructure:"max_redirects"     yaml:"max_redirects"`
	MaxBodySize     int64         `mapstructure:"max_body_size"     yaml:"max_body_size"`
	TLSInsecure     bool          `mapstructure:"tls_insecure"      yaml:"tls_insecure"`
	IdleConnTimeout time.Duration `mapstructure:"idle_conn_timeout" yaml:"idle_conn_timeout"`
	MaxIdleConns    int           `mapstructure:"max_idle_conns"    yaml:"max_idle_conns"`
	UserAgents      []string      `mapstructure:"user_agents"       yaml:"user_agents"`
	Stealth         bool          `mapstructure:"stealth"           yaml:"stealth"`
}

// Sources holds the base URLs of the scraped sites and their secondary APIs.
// Overridable so tests can point every adapter at a local fixture server.
type Sources struct {
	TrendingBaseURL   string `mapstructure:"trending_base_url"   yaml:"trending_base_url"`
	RepoAPIBaseURL    string `mapstructure:"repo_api_base_url"   yaml:"repo_api_base_url"`
	LaunchBaseURL     string `mapstructure:"launch_base_url"     yaml:"launch_base_url"`
	RenderAPIEndpoint string `mapstructure:"render_api_endpoint" yaml:"render_api_endpoint"`
}

// Extract controls the HTML extraction engine.
type Extract struct {
	MaxPerPage int `mapstructure:"max_per_page" yaml:"max_per_page"`
}

// Enrich controls the secondary-API enrichment stage. Batch size and delay
// are explicit here, not ambient constants, so tests can shrink them.
type Enrich struct {
	Enabled    bool          `mapstructure:"enabled"     yaml:"enabled"`
	BatchSize  int           `mapstructure:"batch_size"  yaml:"batch_size"`
	BatchDelay time.Duration `mapstructure:"batch_delay" yaml:"batch_delay"`
	Token      string        `mapstructure:"token"       yaml:"token"`
}

// Storage controls result persistence.
type Storage struct {
	Type       string `mapstructure:"type"        yaml:"type"` // json, jsonl, csv, mongodb
	OutputPath string `mapstructure:"output_path" yaml:"output_path"`
	MongoURI   string `mapstructure:"mongo_uri"   yaml:"mongo_uri"`
	Database   string `mapstructure:"database"    yaml:"database"`
	Collection string `mapstructure:"collection"  yaml:"collection"`
}

// Server controls the REST API surface.
type Server struct {
	Port int `mapstructure:"port" yaml:"port"`
}

// AI controls the optional text-enhancement collaborator.
type AI struct {
	Enabled  bool   `mapstructure:"enabled"  yaml:"enabled"`
	Provider string `mapstructure:"provider" yaml:"provider"`
	Model    string `mapstructure:"model"    yaml:"model"`
	Endpoint string `mapstructure:"endpoint" yaml:"endpoint"`
	APIKey   string `mapstructure:"api_key"  yaml:"api_key"`
}

// Logging controls logging behavior.
type Logging struct {
	Level  string `mapstructure:"level"  yaml:"level"`
	Format string `mapstructure:"format" yaml:"format"`
	Output string `mapstructure:"output" yaml:"output"`
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() *Config {
	return &Config{
		Fetcher: Fetcher{
			Type:            "http",
			PageTimeout:     15 * time.Second,
			APITimeout:      8 * time.Second,
			FollowRedirects: true,
			MaxRedirects:    10,
			MaxBodySize:     10 * 1024 * 1024, // 10MB
			IdleConnTimeout: 90 * time.Second,
			MaxIdleConns:    100,
			UserAgents: []string{
				"Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36",
				"Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36",
			},
		},
		Sources: Sources{
			TrendingBaseURL:   "https://github.com/trending",
			RepoAPIBaseURL:    "https://api.github.com",
			LaunchBaseURL:     "https://www.producthunt.com",
			RenderAPIEndpoint: "https://api.firecrawl.dev/v1/scrape",
		},
		Extract: Extract{
			MaxPerPage: 25,
		},
		Enrich: Enrich{
			Enabled:    true,
			BatchSize:  5,
			BatchDelay: 200 * time.Millisecond,
		},
		Storage: Storage{
			Type:       "json",
			OutputPath: "./output",
			Database:   "trendscout",
			Collection: "listings",
		},
		Server: Server{
			Port: 8080,
		},
		AI: AI{
			Provider: "ollama",
			Model:    "llama3.2",
			Endpoint: "http://localhost:11434",
		},
		Logging: Logging{
			Level:  "info",
			Format: "text",
			Output: "stderr",
		},
	}
}
