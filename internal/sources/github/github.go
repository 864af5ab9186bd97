// Package github is the repository-trend source adapter: it scrapes the
// code host's trending pages, one general page or one per requested
// technology.
package github

import (
	"context"
	"fmt"
	"log/slog"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/trendscout/trendscout/internal/config"
	"github.com/trendscout/trendscout/internal/extract"
	"github.com/trendscout/trendscout/internal/fetch"
	"github.com/trendscout/trendscout/internal/pipeline"
	"github.com/trendscout/trendscout/internal/sources"
	"github.com/trendscout/trendscout/internal/types"
)

// Adapter scrapes trending repository pages.
type Adapter struct {
	baseURL     string
	hostURL     string
	pageTimeout time.Duration
	fetcher     fetch.Fetcher
	engine      *extract.Engine
	schema      *extract.Schema
	logger      *slog.Logger
}

// New creates the repository-trend adapter.
func New(cfg *config.Config, fetcher fetch.Fetcher, engine *extract.Engine, logger *slog.Logger) *Adapter {
	return &Adapter{
		baseURL:     strings.TrimRight(cfg.Sources.TrendingBaseURL, "/"),
		hostURL:     hostOf(cfg.Sources.TrendingBaseURL),
		pageTimeout: cfg.Fetcher.PageTimeout,
		fetcher:     fetcher,
		engine:      engine,
		schema:      newSchema(),
		logger:      logger.With("component", "github_adapter"),
	}
}

// Kind implements sources.Adapter.
func (a *Adapter) Kind() types.SourceKind { return types.SourceRepositoryTrend }

// Validate implements sources.Adapter.
func (a *Adapter) Validate(req *types.ScrapeRequest) error {
	if !req.Filters.TimePeriod.Valid() {
		return types.NewValidationError("timePeriod", "must be daily, weekly, or monthly")
	}
	if req.Filters.MaxLimit < 0 {
		return types.NewValidationError("maxLimit", "must be >= 0")
	}
	return nil
}

// Scrape implements sources.Adapter. Every target URL is fetched and
// extracted in parallel; a failed URL is logged and contributes zero
// listings (settle-all, never fail-fast).
func (a *Adapter) Scrape(ctx context.Context, req *types.ScrapeRequest) (*sources.Result, error) {
	urls := a.buildURLs(req.Filters)

	var (
		mu     sync.Mutex
		wg     sync.WaitGroup
		result sources.Result
	)

	ordered := make([][]*types.Listing, len(urls))
	for i, target := range urls {
		wg.Add(1)
		go func(i int, target string) {
			defer wg.Done()

			fetchCtx, cancel := context.WithTimeout(ctx, a.pageTimeout)
			defer cancel()

			listings, err := a.scrapePage(fetchCtx, target, req.Filters.TimePeriod)

			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				result.PagesFailed++
				a.logger.Warn("trending page failed", "url", target, "error", err)
				return
			}
			result.PagesFetched++
			ordered[i] = listings
		}(i, target)
	}
	wg.Wait()

	for _, listings := range ordered {
		result.Listings = append(result.Listings, listings...)
	}

	return &result, nil
}

// buildURLs returns either one general trending URL or one per requested
// technology, never both. Each URL embeds the time-period parameter.
func (a *Adapter) buildURLs(f types.Filters) []string {
	since := periodParam(f.TimePeriod)

	if len(f.TechStack) == 0 {
		return []string{fmt.Sprintf("%s?since=%s", a.baseURL, since)}
	}

	urls := make([]string, 0, len(f.TechStack))
	for _, tech := range f.TechStack {
		lang := pipeline.NormalizeTech(tech)
		if lang == "" {
			continue
		}
		urls = append(urls, fmt.Sprintf("%s/%s?since=%s", a.baseURL, url.PathEscape(lang), since))
	}
	return urls
}

// scrapePage fetches one trending page and maps its records into listings.
func (a *Adapter) scrapePage(ctx context.Context, target string, period types.TimePeriod) ([]*types.Listing, error) {
	resp, err := a.fetcher.Fetch(ctx, target)
	if err != nil {
		return nil, err
	}

	records, err := a.engine.Extract(target, resp.Body, a.schema)
	if err != nil {
		return nil, err
	}

	listings := make([]*types.Listing, 0, len(records))
	for _, rec := range records {
		if l := a.mapRecord(rec, target, period); l != nil {
			listings = append(listings, l)
		}
	}
	return listings, nil
}

// mapRecord turns one raw extraction record into a canonical listing.
func (a *Adapter) mapRecord(rec *types.Record, sourcePage string, period types.TimePeriod) *types.Listing {
	fullName := normalizeRepoPath(rec.GetString("name"))
	if fullName == "" {
		return nil
	}

	l := types.NewListing(types.SourceRepositoryTrend, period, fullName, fullName)

	l.Description = rec.GetString("description")
	if l.Description == "" {
		l.Description = fmt.Sprintf("%s - Product from GitHub", fullName)
	}

	l.Language = rec.GetString("language")
	l.Metrics.Total = rec.GetInt("stars")
	l.Metrics.PeriodDelta = rec.GetInt("stars_period")
	if l.Metrics.PeriodDelta > l.Metrics.Total {
		// Sources occasionally report this; keep the values as scraped.
		a.logger.Debug("period delta exceeds total", "name", fullName,
			"delta", l.Metrics.PeriodDelta, "total", l.Metrics.Total)
	}

	l.Links.Repository = a.hostURL + "/" + fullName
	l.Links.SourcePage = sourcePage

	return l
}

// normalizeRepoPath collapses "owner / name" display text into the natural
// "owner/name" key.
func normalizeRepoPath(raw string) string {
	cleaned := strings.Join(strings.Fields(raw), "")
	cleaned = strings.Trim(cleaned, "/")
	if !strings.Contains(cleaned, "/") {
		return ""
	}
	return cleaned
}

// periodParam maps a time period to the trending page query value.
func periodParam(p types.TimePeriod) string {
	switch p {
	case types.PeriodWeekly:
		return "weekly"
	case types.PeriodMonthly:
		return "monthly"
	default:
		return "daily"
	}
}

// hostOf strips the path from a base URL, leaving scheme://host.
func hostOf(base string) string {
	u, err := url.Parse(base)
	if err != nil || u.Host == "" {
		return "https://github.com"
	}
	return u.Scheme + "://" + u.Host
}
