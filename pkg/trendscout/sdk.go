// Package trendscout provides a public SDK for embedding the scraper as a
// library.
//
// Example usage:
//
//	client, err := trendscout.NewClient(
//	    trendscout.WithGitHubToken(os.Getenv("GITHUB_TOKEN")),
//	)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer client.Close()
//
//	result := client.TrendingRepos(ctx, trendscout.Weekly,
//	    trendscout.Tech("go", "rust"))
//	for _, p := range result.Products {
//	    fmt.Println(p.Name, p.Metrics.PeriodDelta)
//	}
package trendscout

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/trendscout/trendscout/internal/config"
	"github.com/trendscout/trendscout/internal/enrich"
	"github.com/trendscout/trendscout/internal/extract"
	"github.com/trendscout/trendscout/internal/fetch"
	"github.com/trendscout/trendscout/internal/scraper"
	"github.com/trendscout/trendscout/internal/sources/github"
	"github.com/trendscout/trendscout/internal/sources/producthunt"
	"github.com/trendscout/trendscout/internal/types"
)

// Re-exported types so callers never import internal packages.
type (
	// Listing is one scraped product.
	Listing = types.Listing

	// Result is the envelope every scrape returns.
	Result = types.ScrapeResult

	// Period is a trending time window.
	Period = types.TimePeriod

	// Filters narrows and shapes a scrape.
	Filters = types.Filters
)

// Trending time windows.
const (
	Daily   = types.PeriodDaily
	Weekly  = types.PeriodWeekly
	Monthly = types.PeriodMonthly
)

// Option configures a Client.
type Option func(*config.Config)

// WithGitHubToken authenticates enrichment API calls.
func WithGitHubToken(token string) Option {
	return func(c *config.Config) { c.Enrich.Token = token }
}

// WithoutEnrichment disables repository metadata enrichment.
func WithoutEnrichment() Option {
	return func(c *config.Config) { c.Enrich.Enabled = false }
}

// WithBrowser fetches pages through a headless browser instead of plain
// HTTP.
func WithBrowser() Option {
	return func(c *config.Config) { c.Fetcher.Type = "browser" }
}

// WithPageTimeout overrides the per-page fetch timeout.
func WithPageTimeout(d time.Duration) Option {
	return func(c *config.Config) { c.Fetcher.PageTimeout = d }
}

// WithVerbose enables debug-level logging.
func WithVerbose() Option {
	return func(c *config.Config) { c.Logging.Level = "debug" }
}

// Client is the high-level API for using the scraper as a library.
type Client struct {
	cfg     *config.Config
	core    *scraper.Scraper
	fetcher fetch.Fetcher
	logger  *slog.Logger
}

// NewClient creates a ready-to-use client.
func NewClient(opts ...Option) (*Client, error) {
	cfg := config.DefaultConfig()
	for _, opt := range opts {
		opt(cfg)
	}

	level := slog.LevelInfo
	if cfg.Logging.Level == "debug" {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))

	var (
		pageFetcher fetch.Fetcher
		err         error
	)
	if cfg.Fetcher.Type == "browser" {
		pageFetcher, err = fetch.NewBrowserFetcher(cfg, logger)
	} else {
		pageFetcher, err = fetch.NewHTTPFetcher(cfg, logger)
	}
	if err != nil {
		return nil, fmt.Errorf("create fetcher: %w", err)
	}

	engine := extract.NewEngine(cfg.Extract.MaxPerPage, logger)

	var enricher scraper.Enricher
	if cfg.Enrich.Enabled {
		enricher = enrich.New(cfg, logger)
	}

	core := scraper.New(cfg, enricher, logger)
	core.Register(github.New(cfg, pageFetcher, engine, logger))
	core.Register(producthunt.New(cfg, fetch.NewRenderClient(cfg, logger), engine, logger))

	return &Client{
		cfg:     cfg,
		core:    core,
		fetcher: pageFetcher,
		logger:  logger,
	}, nil
}

// Close releases the underlying fetcher.
func (c *Client) Close() error {
	return c.fetcher.Close()
}

// RequestOption tweaks one scrape request.
type RequestOption func(*types.Filters)

// Tech filters trending repos by technology.
func Tech(stack ...string) RequestOption {
	return func(f *types.Filters) { f.TechStack = stack }
}

// Query filters by free-text substring match.
func Query(q string) RequestOption {
	return func(f *types.Filters) { f.Query = q }
}

// Domains filters by classified domain labels.
func Domains(domains ...string) RequestOption {
	return func(f *types.Filters) { f.Domains = domains }
}

// Limit caps trending repo results.
func Limit(n int) RequestOption {
	return func(f *types.Filters) { f.MaxLimit = n }
}

// RenderKey sets the render API key required by launch-listing scrapes.
func RenderKey(key string) RequestOption {
	return func(f *types.Filters) { f.SecondaryAPIKey = key }
}

// Topics switches a launch-listing scrape into by-topic mode.
func Topics(topics ...string) RequestOption {
	return func(f *types.Filters) {
		f.Mode = types.ModeByTopic
		f.Topics = topics
	}
}

// FeaturedOnly restricts the leaderboard to featured products.
func FeaturedOnly() RequestOption {
	return func(f *types.Filters) { f.FeaturedOnly = true }
}

// TrendingRepos scrapes trending repositories for the given period.
func (c *Client) TrendingRepos(ctx context.Context, period Period, opts ...RequestOption) *Result {
	f := types.Filters{TimePeriod: period}
	for _, opt := range opts {
		opt(&f)
	}
	return c.core.Scrape(ctx, &types.ScrapeRequest{
		Source:  types.SourceRepositoryTrend,
		Filters: f,
	})
}

// Leaderboard scrapes a launch leaderboard for the given date. Month, day,
// and week apply per the period: daily needs month and day, weekly needs
// week, monthly needs month.
func (c *Client) Leaderboard(ctx context.Context, period Period, year, month, day, week int, opts ...RequestOption) *Result {
	f := types.Filters{
		TimePeriod: period,
		Year:       year,
		Month:      month,
		Day:        day,
		Week:       week,
	}
	for _, opt := range opts {
		opt(&f)
	}
	return c.core.Scrape(ctx, &types.ScrapeRequest{
		Source:  types.SourceLaunchListing,
		Filters: f,
	})
}

// Scrape runs a fully custom request.
func (c *Client) Scrape(ctx context.Context, source types.SourceKind, f Filters) *Result {
	return c.core.Scrape(ctx, &types.ScrapeRequest{Source: source, Filters: f})
}

// Stats returns scrape statistics.
func (c *Client) Stats() map[string]any {
	return c.core.Stats().Snapshot()
}
