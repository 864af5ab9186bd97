// Package scraper orchestrates a scrape end to end: request validation,
// source adapter execution, dedup and merge, enrichment, classification,
// and the filter/sort/limit pipeline.
package scraper

import (
	"context"
	"fmt"
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/trendscout/trendscout/internal/classify"
	"github.com/trendscout/trendscout/internal/config"
	"github.com/trendscout/trendscout/internal/observability"
	"github.com/trendscout/trendscout/internal/pipeline"
	"github.com/trendscout/trendscout/internal/sources"
	"github.com/trendscout/trendscout/internal/types"
)

// Stats tracks scrape statistics across requests.
type Stats struct {
	ScrapesStarted   atomic.Int64
	ScrapesCompleted atomic.Int64
	ScrapesRejected  atomic.Int64
	PagesFetched     atomic.Int64
	PagesFailed      atomic.Int64
	ListingsReturned atomic.Int64
	StartTime        time.Time
}

// Snapshot returns a copy of stats safe for reading.
func (s *Stats) Snapshot() map[string]any {
	return map[string]any{
		"scrapes_started":   s.ScrapesStarted.Load(),
		"scrapes_completed": s.ScrapesCompleted.Load(),
		"scrapes_rejected":  s.ScrapesRejected.Load(),
		"pages_fetched":     s.PagesFetched.Load(),
		"pages_failed":      s.PagesFailed.Load(),
		"listings_returned": s.ListingsReturned.Load(),
		"uptime":            time.Since(s.StartTime).String(),
	}
}

// Enricher augments listings with repository metadata. Per-item failures
// keep the original listing.
type Enricher interface {
	EnrichAll(ctx context.Context, listings []*types.Listing) []*types.Listing
}

// Scraper is the core orchestrator.
type Scraper struct {
	cfg      *config.Config
	logger   *slog.Logger
	adapters map[types.SourceKind]sources.Adapter
	enricher Enricher
	stats    *Stats
	metrics  *observability.Metrics
}

// New creates a Scraper with no registered sources.
func New(cfg *config.Config, enricher Enricher, logger *slog.Logger) *Scraper {
	return &Scraper{
		cfg:      cfg,
		logger:   logger.With("component", "scraper"),
		adapters: make(map[types.SourceKind]sources.Adapter),
		enricher: enricher,
		stats:    &Stats{StartTime: time.Now()},
	}
}

// Register adds a source adapter. Registering the same kind twice replaces
// the earlier adapter.
func (s *Scraper) Register(a sources.Adapter) {
	s.adapters[a.Kind()] = a
}

// Stats returns the live counters.
func (s *Scraper) Stats() *Stats {
	return s.stats
}

// SetMetrics attaches an optional operational metrics sink. Page counters
// are recorded there alongside Stats; an enricher that accepts a sink gets
// the same one.
func (s *Scraper) SetMetrics(m *observability.Metrics) {
	s.metrics = m
	if sink, ok := s.enricher.(interface{ SetMetrics(*observability.Metrics) }); ok {
		sink.SetMetrics(m)
	}
}

// Scrape runs one request through the full pipeline and always returns a
// structured result. Validation failures produce Success=false; a scrape
// where every page failed produces Success=true with an empty product list
// and an explanatory message.
func (s *Scraper) Scrape(ctx context.Context, req *types.ScrapeRequest) *types.ScrapeResult {
	s.stats.ScrapesStarted.Add(1)
	start := time.Now()

	applied := normalizeFilters(req.Source, req.Filters)
	req = &types.ScrapeRequest{Source: req.Source, Filters: applied}

	adapter, ok := s.adapters[req.Source]
	if !ok {
		s.stats.ScrapesRejected.Add(1)
		return failure(applied, fmt.Sprintf("%v: %q", types.ErrUnknownSource, req.Source))
	}

	if err := adapter.Validate(req); err != nil {
		s.stats.ScrapesRejected.Add(1)
		s.logger.Warn("request rejected", "source", req.Source, "error", err)
		return failure(applied, err.Error())
	}

	result, err := adapter.Scrape(ctx, req)
	if err != nil {
		s.stats.ScrapesRejected.Add(1)
		s.logger.Error("scrape aborted", "source", req.Source, "error", err)
		return failure(applied, err.Error())
	}

	s.stats.PagesFetched.Add(int64(result.PagesFetched))
	s.stats.PagesFailed.Add(int64(result.PagesFailed))
	if s.metrics != nil {
		s.metrics.PagesFetched.Add(int64(result.PagesFetched))
		s.metrics.PagesFailed.Add(int64(result.PagesFailed))
	}

	if result.TotalFailure() {
		s.stats.ScrapesCompleted.Add(1)
		s.logger.Warn("all pages failed", "source", req.Source, "pages", result.PagesFailed)
		return &types.ScrapeResult{
			Success:   true,
			Products:  []*types.Listing{},
			Timestamp: time.Now().UTC(),
			Message:   "no products found: every target page failed",
			Applied:   applied,
		}
	}

	listings := pipeline.Merge(result.Listings)
	// TotalFound reports the post-merge count, before filters and the limit
	// narrow the returned set.
	totalFound := len(listings)
	listings = s.enrich(ctx, req, listings)
	listings = s.process(req, listings)

	s.stats.ScrapesCompleted.Add(1)
	s.stats.ListingsReturned.Add(int64(len(listings)))
	s.logger.Info("scrape completed",
		"source", req.Source,
		"products", len(listings),
		"pages_fetched", result.PagesFetched,
		"pages_failed", result.PagesFailed,
		"duration", time.Since(start))

	return &types.ScrapeResult{
		Success:    true,
		Products:   listings,
		TotalFound: totalFound,
		Timestamp:  time.Now().UTC(),
		Message:    fmt.Sprintf("found %d products", len(listings)),
		Applied:    applied,
	}
}

// enrich augments repository listings with API metadata. Candidates are cut
// to the requested limit first so a broad scrape does not fan out into an
// unbounded number of API calls.
func (s *Scraper) enrich(ctx context.Context, req *types.ScrapeRequest, listings []*types.Listing) []*types.Listing {
	if s.enricher == nil || !s.cfg.Enrich.Enabled || req.Source != types.SourceRepositoryTrend {
		return listings
	}

	sorted := pipeline.SortStage{}.Apply(listings)
	bound := len(sorted)
	if limit := req.Filters.MaxLimit; limit > 0 && limit < bound {
		bound = limit
	}

	enriched := s.enricher.EnrichAll(ctx, sorted[:bound])
	return append(enriched, sorted[bound:]...)
}

// process classifies every listing and runs the filter, sort, and limit
// stages. The tech filter and the limit apply to the repository source only;
// launch listings are returned in full.
func (s *Scraper) process(req *types.ScrapeRequest, listings []*types.Listing) []*types.Listing {
	for i, l := range listings {
		clone := l.Clone()
		clone.Domains = classify.Classify(clone)
		listings[i] = clone
	}

	p := pipeline.New(s.logger)
	p.Use(&pipeline.DomainFilter{Domains: req.Filters.Domains})
	p.Use(&pipeline.CategoryFilter{Categories: req.Filters.Categories})
	p.Use(&pipeline.QueryFilter{Query: req.Filters.Query})
	if req.Source == types.SourceRepositoryTrend {
		p.Use(&pipeline.TechFilter{Stack: req.Filters.TechStack})
	}
	p.Use(pipeline.SortStage{})
	if req.Source == types.SourceRepositoryTrend {
		p.Use(&pipeline.LimitStage{Max: req.Filters.MaxLimit})
	}
	return p.Run(listings)
}

// normalizeFilters applies per-source defaults so the echoed filters show
// what actually ran.
func normalizeFilters(source types.SourceKind, f types.Filters) types.Filters {
	if f.TimePeriod == "" {
		f.TimePeriod = types.PeriodDaily
	}
	if source == types.SourceRepositoryTrend && f.MaxLimit == 0 {
		f.MaxLimit = types.DefaultMaxLimit
	}
	if source == types.SourceLaunchListing {
		if f.Mode == "" {
			f.Mode = types.ModeLeaderboard
		}
		if f.Mode == types.ModeByTopic && f.PageCount == 0 {
			f.PageCount = 1
		}
	}
	return f
}

func failure(applied types.Filters, msg string) *types.ScrapeResult {
	return &types.ScrapeResult{
		Success:   false,
		Products:  []*types.Listing{},
		Timestamp: time.Now().UTC(),
		Error:     msg,
		Applied:   applied,
	}
}
