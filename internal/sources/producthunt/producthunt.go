// Package producthunt is the launch-listing source adapter. It scrapes a
// product-launch leaderboard site whose pages render client-side, so HTML
// arrives through a render API keyed by the request's secondary API key.
package producthunt

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
	"github.com/trendscout/trendscout/internal/sources"
	"github.com/trendscout/trendscout/internal/types"
)

// earliestYear is the first year the leaderboard has data for.
const earliestYear = 2013

// renderFetcher fetches rendered HTML through the render API.
type renderFetcher interface {
	FetchRendered(ctx context.Context, apiKey, targetURL string) (*fetch.Response, error)
}

// Adapter scrapes leaderboard and topic pages.
type Adapter struct {
	baseURL     string
	pageTimeout time.Duration
	renderer    renderFetcher
	engine      *extract.Engine
	schema      *extract.Schema
	logger      *slog.Logger
}

// New creates the launch-listing adapter.
func New(cfg *config.Config, renderer renderFetcher, engine *extract.Engine, logger *slog.Logger) *Adapter {
	return &Adapter{
		baseURL:     strings.TrimRight(cfg.Sources.LaunchBaseURL, "/"),
		pageTimeout: cfg.Fetcher.PageTimeout,
		renderer:    renderer,
		engine:      engine,
		schema:      newSchema(),
		logger:      logger.With("component", "producthunt_adapter"),
	}
}

// Kind implements sources.Adapter.
func (a *Adapter) Kind() types.SourceKind { return types.SourceLaunchListing }

// Validate implements sources.Adapter. Period-specific date fields are
// request-validation failures, surfaced before any network activity.
func (a *Adapter) Validate(req *types.ScrapeRequest) error {
	f := req.Filters

	if !f.TimePeriod.Valid() {
		return types.NewValidationError("timePeriod", "must be daily, weekly, or monthly")
	}

	if f.SecondaryAPIKey == "" {
		return types.NewValidationError("secondaryApiKey", "required for the launch-listing source")
	}
	if !strings.HasPrefix(f.SecondaryAPIKey, "fc-") {
		return types.NewValidationError("secondaryApiKey", "must start with 'fc-'")
	}

	switch mode(f) {
	case types.ModeLeaderboard:
		return validateLeaderboard(f)
	case types.ModeByTopic:
		if f.PageCount < 0 {
			return types.NewValidationError("pageCount", "must be >= 0")
		}
		return nil
	default:
		return types.NewValidationError("mode", "must be 'leaderboard' or 'by-topic'")
	}
}

func validateLeaderboard(f types.Filters) error {
	if f.Year == 0 {
		return types.NewValidationError("year", "required for the leaderboard mode")
	}
	if f.Year < earliestYear || f.Year > time.Now().Year() {
		return types.NewValidationError("year",
			fmt.Sprintf("must be between %d and the current year", earliestYear))
	}

	switch f.TimePeriod {
	case types.PeriodDaily:
		if f.Month == 0 || f.Day == 0 {
			return types.NewValidationError("month/day", "required for the daily leaderboard")
		}
		if f.Month < 1 || f.Month > 12 {
			return types.NewValidationError("month", "must be 1-12")
		}
		if f.Day < 1 || f.Day > 31 {
			return types.NewValidationError("day", "must be 1-31")
		}
	case types.PeriodWeekly:
		if f.Week == 0 {
			return types.NewValidationError("week", "required for the weekly leaderboard")
		}
		if f.Week < 1 || f.Week > 53 {
			return types.NewValidationError("week", "must be 1-53")
		}
	case types.PeriodMonthly:
		if f.Month == 0 {
			return types.NewValidationError("month", "required for the monthly leaderboard")
		}
		if f.Month < 1 || f.Month > 12 {
			return types.NewValidationError("month", "must be 1-12")
		}
	}
	return nil
}

// Scrape implements sources.Adapter. All target pages are fetched through
// the render API in parallel with settle-all collection.
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

			listings, err := a.scrapePage(fetchCtx, req.Filters, target)

			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				result.PagesFailed++
				a.logger.Warn("listing page failed", "url", target, "error", err)
				return
			}
			result.PagesFetched++
			ordered[i] = listings
		}(i, target)
	}
	wg.Wait()

	// Concatenate in URL order; central dedup handles cross-page repeats.
	for _, listings := range ordered {
		result.Listings = append(result.Listings, listings...)
	}

	return &result, nil
}

// buildURLs returns the target pages for the request: exactly one for
// leaderboard mode, one per (topic, page) combination for by-topic mode.
func (a *Adapter) buildURLs(f types.Filters) []string {
	if mode(f) == types.ModeLeaderboard {
		return []string{a.leaderboardURL(f)}
	}
	return a.topicURLs(f)
}

// leaderboardURL builds the period-scoped leaderboard path. The "/all"
// suffix requests the unfiltered board; it is omitted when the caller asks
// for featured products only.
func (a *Adapter) leaderboardURL(f types.Filters) string {
	var path string
	switch f.TimePeriod {
	case types.PeriodDaily:
		path = fmt.Sprintf("daily/%d/%d/%d", f.Year, f.Month, f.Day)
	case types.PeriodWeekly:
		path = fmt.Sprintf("weekly/%d/%d", f.Year, f.Week)
	case types.PeriodMonthly:
		path = fmt.Sprintf("monthly/%d/%d", f.Year, f.Month)
	}

	suffix := "/all"
	if f.FeaturedOnly {
		suffix = ""
	}
	return fmt.Sprintf("%s/leaderboard/%s%s", a.baseURL, path, suffix)
}

// topicURLs builds one URL per (topic, page). Without topics a single
// best-rated sort is paged instead.
func (a *Adapter) topicURLs(f types.Filters) []string {
	pages := f.PageCount
	if pages < 1 {
		pages = 1
	}

	if len(f.Topics) == 0 {
		urls := make([]string, 0, pages)
		for page := 1; page <= pages; page++ {
			urls = append(urls, fmt.Sprintf("%s/products?order=best-rated&page=%d", a.baseURL, page))
		}
		return urls
	}

	urls := make([]string, 0, len(f.Topics)*pages)
	for _, topic := range f.Topics {
		slug := types.Slugify(topic)
		if slug == "" {
			continue
		}
		for page := 1; page <= pages; page++ {
			urls = append(urls, fmt.Sprintf("%s/topics/%s?order=most-upvoted&page=%d",
				a.baseURL, url.PathEscape(slug), page))
		}
	}
	return urls
}

// scrapePage fetches one rendered page and maps its records into listings.
func (a *Adapter) scrapePage(ctx context.Context, f types.Filters, target string) ([]*types.Listing, error) {
	resp, err := a.renderer.FetchRendered(ctx, f.SecondaryAPIKey, target)
	if err != nil {
		return nil, err
	}

	records, err := a.engine.Extract(target, resp.Body, a.schema)
	if err != nil {
		return nil, err
	}

	leaderboard := mode(f) == types.ModeLeaderboard

	listings := make([]*types.Listing, 0, len(records))
	for _, rec := range records {
		if l := a.mapRecord(rec, f.TimePeriod, leaderboard); l != nil {
			listings = append(listings, l)
		}
	}
	return listings, nil
}

// mapRecord turns one raw extraction record into a canonical listing.
// Leaderboard vote counts are period-scoped, so they populate the period
// delta as well as the total; topic pages show lifetime counts only.
func (a *Adapter) mapRecord(rec *types.Record, period types.TimePeriod, leaderboard bool) *types.Listing {
	name := stripRank(rec.GetString("name"))
	if name == "" {
		return nil
	}

	l := types.NewListing(types.SourceLaunchListing, period, name, name)

	l.Description = rec.GetString("description")
	if l.Description == "" {
		l.Description = fmt.Sprintf("%s - Product from ProductHunt", name)
	}

	l.Tags = rec.GetStrings("tags")

	votes := rec.GetInt("votes")
	l.Metrics.Total = votes
	if leaderboard {
		l.Metrics.PeriodDelta = votes
	}

	l.Links.SourcePage = a.absoluteURL(rec.GetString("link"))
	if l.Links.SourcePage == "" {
		l.Links.SourcePage = fmt.Sprintf("%s/posts/%s", a.baseURL, types.Slugify(name))
	}

	return l
}

// stripRank removes the "1. " rank prefix leaderboard titles carry, keeping
// the listing identity stable across pages and days.
func stripRank(name string) string {
	rest := name
	i := 0
	for i < len(rest) && rest[i] >= '0' && rest[i] <= '9' {
		i++
	}
	if i > 0 && i < len(rest) && rest[i] == '.' {
		return strings.TrimSpace(rest[i+1:])
	}
	return name
}

// absoluteURL resolves a scraped href against the site base.
func (a *Adapter) absoluteURL(href string) string {
	if href == "" {
		return ""
	}
	if strings.HasPrefix(href, "http://") || strings.HasPrefix(href, "https://") {
		return href
	}
	if strings.HasPrefix(href, "/") {
		return a.baseURL + href
	}
	return a.baseURL + "/" + href
}

// mode returns the effective listing mode; leaderboard is the default.
func mode(f types.Filters) types.ListingMode {
	if f.Mode == "" {
		return types.ModeLeaderboard
	}
	return f.Mode
}
