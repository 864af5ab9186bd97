package scraper

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"testing"

	"github.com/trendscout/trendscout/internal/config"
	"github.com/trendscout/trendscout/internal/observability"
	"github.com/trendscout/trendscout/internal/sources"
	"github.com/trendscout/trendscout/internal/types"
)

var testLogger = slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError}))

// fakeAdapter returns canned listings for the registered source kind.
type fakeAdapter struct {
	kind        types.SourceKind
	validateErr error
	scrapeErr   error
	result      *sources.Result
}

func (f *fakeAdapter) Kind() types.SourceKind { return f.kind }

func (f *fakeAdapter) Validate(req *types.ScrapeRequest) error { return f.validateErr }

func (f *fakeAdapter) Scrape(ctx context.Context, req *types.ScrapeRequest) (*sources.Result, error) {
	if f.scrapeErr != nil {
		return nil, f.scrapeErr
	}
	return f.result, nil
}

func repoListing(key string, total, delta int) *types.Listing {
	l := types.NewListing(types.SourceRepositoryTrend, types.PeriodDaily, key, key)
	l.Description = "a library"
	l.Metrics = types.Metrics{Total: total, PeriodDelta: delta}
	return l
}

func newTestScraper(adapters ...sources.Adapter) *Scraper {
	cfg := config.DefaultConfig()
	cfg.Enrich.Enabled = false
	s := New(cfg, nil, testLogger)
	for _, a := range adapters {
		s.Register(a)
	}
	return s
}

func TestScrapeSortsAndLimits(t *testing.T) {
	listings := []*types.Listing{
		repoListing("a/one", 100, 5),
		repoListing("b/two", 50, 20),
		repoListing("c/three", 200, 1),
		repoListing("d/four", 10, 0),
		repoListing("e/five", 75, 8),
	}
	s := newTestScraper(&fakeAdapter{
		kind:   types.SourceRepositoryTrend,
		result: &sources.Result{Listings: listings, PagesFetched: 1},
	})

	result := s.Scrape(context.Background(), &types.ScrapeRequest{
		Source:  types.SourceRepositoryTrend,
		Filters: types.Filters{TimePeriod: types.PeriodDaily, MaxLimit: 3},
	})

	if !result.Success {
		t.Fatalf("scrape failed: %s", result.Error)
	}
	if len(result.Products) != 3 {
		t.Fatalf("got %d products, want 3", len(result.Products))
	}

	wantOrder := []string{"b/two", "e/five", "a/one"}
	for i, want := range wantOrder {
		if result.Products[i].Name != want {
			t.Errorf("position %d = %s, want %s", i, result.Products[i].Name, want)
		}
	}
	// TotalFound counts the merged set before the limit narrowed it.
	if result.TotalFound != 5 {
		t.Errorf("TotalFound = %d, want 5", result.TotalFound)
	}
}

func TestScrapeDefaultLimit(t *testing.T) {
	listings := make([]*types.Listing, 0, 30)
	for i := 0; i < 30; i++ {
		listings = append(listings, repoListing(fmt.Sprintf("org/repo-%02d", i), i*10, i))
	}
	s := newTestScraper(&fakeAdapter{
		kind:   types.SourceRepositoryTrend,
		result: &sources.Result{Listings: listings, PagesFetched: 1},
	})

	result := s.Scrape(context.Background(), &types.ScrapeRequest{
		Source:  types.SourceRepositoryTrend,
		Filters: types.Filters{TimePeriod: types.PeriodDaily},
	})

	if len(result.Products) != types.DefaultMaxLimit {
		t.Errorf("got %d products, want default limit %d", len(result.Products), types.DefaultMaxLimit)
	}
	if result.TotalFound != 30 {
		t.Errorf("TotalFound = %d, want pre-limit 30", result.TotalFound)
	}
	if result.Applied.MaxLimit != types.DefaultMaxLimit {
		t.Errorf("applied limit = %d, want echoed default", result.Applied.MaxLimit)
	}
}

// Launch listings are never truncated; the page count bounds volume.
func TestScrapeLaunchListingUnlimited(t *testing.T) {
	listings := make([]*types.Listing, 0, 30)
	for i := 0; i < 30; i++ {
		l := types.NewListing(types.SourceLaunchListing, types.PeriodDaily,
			fmt.Sprintf("product-%02d", i), "Product")
		l.Metrics.Total = i
		listings = append(listings, l)
	}
	s := newTestScraper(&fakeAdapter{
		kind:   types.SourceLaunchListing,
		result: &sources.Result{Listings: listings, PagesFetched: 1},
	})

	result := s.Scrape(context.Background(), &types.ScrapeRequest{
		Source:  types.SourceLaunchListing,
		Filters: types.Filters{TimePeriod: types.PeriodDaily},
	})

	if len(result.Products) != 30 {
		t.Errorf("got %d products, want all 30", len(result.Products))
	}
}

func TestScrapeMergesDuplicates(t *testing.T) {
	s := newTestScraper(&fakeAdapter{
		kind: types.SourceRepositoryTrend,
		result: &sources.Result{
			Listings: []*types.Listing{
				repoListing("a/one", 100, 5),
				repoListing("a/one", 120, 4),
			},
			PagesFetched: 2,
		},
	})

	result := s.Scrape(context.Background(), &types.ScrapeRequest{
		Source:  types.SourceRepositoryTrend,
		Filters: types.Filters{TimePeriod: types.PeriodDaily},
	})

	if len(result.Products) != 1 {
		t.Fatalf("got %d products, want 1 after merge", len(result.Products))
	}
	if result.Products[0].Metrics.Total != 120 || result.Products[0].Metrics.PeriodDelta != 5 {
		t.Errorf("merged metrics = %+v", result.Products[0].Metrics)
	}
	// Merged duplicates count once.
	if result.TotalFound != 1 {
		t.Errorf("TotalFound = %d, want 1", result.TotalFound)
	}
}

func TestScrapeClassifies(t *testing.T) {
	l := repoListing("org/agentkit", 100, 5)
	l.Description = "Build LLM agents"
	s := newTestScraper(&fakeAdapter{
		kind:   types.SourceRepositoryTrend,
		result: &sources.Result{Listings: []*types.Listing{l}, PagesFetched: 1},
	})

	result := s.Scrape(context.Background(), &types.ScrapeRequest{
		Source:  types.SourceRepositoryTrend,
		Filters: types.Filters{TimePeriod: types.PeriodDaily},
	})

	if len(result.Products) != 1 {
		t.Fatal("no products")
	}
	if len(result.Products[0].Domains) == 0 {
		t.Error("product not classified")
	}
	// Classification works on a copy.
	if len(l.Domains) != 0 {
		t.Error("input listing mutated by classification")
	}
}

func TestScrapeUnknownSource(t *testing.T) {
	s := newTestScraper()

	result := s.Scrape(context.Background(), &types.ScrapeRequest{
		Source:  "rss-feed",
		Filters: types.Filters{TimePeriod: types.PeriodDaily},
	})

	if result.Success {
		t.Error("unknown source must not succeed")
	}
	if result.Error == "" {
		t.Error("missing error message")
	}
	if result.Products == nil {
		t.Error("products must be an empty slice, not nil")
	}
}

func TestScrapeValidationFailure(t *testing.T) {
	s := newTestScraper(&fakeAdapter{
		kind:        types.SourceRepositoryTrend,
		validateErr: types.NewValidationError("timePeriod", "bad"),
	})

	result := s.Scrape(context.Background(), &types.ScrapeRequest{
		Source:  types.SourceRepositoryTrend,
		Filters: types.Filters{TimePeriod: "hourly"},
	})

	if result.Success {
		t.Error("validation failure must not succeed")
	}
	if result.Error == "" {
		t.Error("missing error message")
	}
}

// Every page failing is still a successful, empty result with a message;
// only malformed requests produce Success=false.
func TestScrapeTotalFailure(t *testing.T) {
	s := newTestScraper(&fakeAdapter{
		kind:   types.SourceRepositoryTrend,
		result: &sources.Result{PagesFailed: 3},
	})

	result := s.Scrape(context.Background(), &types.ScrapeRequest{
		Source:  types.SourceRepositoryTrend,
		Filters: types.Filters{TimePeriod: types.PeriodDaily},
	})

	if !result.Success {
		t.Error("total failure should still be a successful envelope")
	}
	if len(result.Products) != 0 {
		t.Errorf("got %d products, want 0", len(result.Products))
	}
	if result.Message == "" {
		t.Error("missing explanatory message")
	}
}

func TestScrapeAdapterError(t *testing.T) {
	s := newTestScraper(&fakeAdapter{
		kind:      types.SourceRepositoryTrend,
		scrapeErr: errors.New("target system unreachable"),
	})

	result := s.Scrape(context.Background(), &types.ScrapeRequest{
		Source:  types.SourceRepositoryTrend,
		Filters: types.Filters{TimePeriod: types.PeriodDaily},
	})
	if result.Success {
		t.Error("adapter error must not succeed")
	}
}

func TestMetricsSinkCountsPages(t *testing.T) {
	s := newTestScraper(&fakeAdapter{
		kind: types.SourceRepositoryTrend,
		result: &sources.Result{
			Listings:     []*types.Listing{repoListing("a/one", 1, 1)},
			PagesFetched: 2,
			PagesFailed:  1,
		},
	})
	metrics := observability.NewMetrics()
	s.SetMetrics(metrics)

	s.Scrape(context.Background(), &types.ScrapeRequest{
		Source:  types.SourceRepositoryTrend,
		Filters: types.Filters{TimePeriod: types.PeriodDaily},
	})

	if got := metrics.PagesFetched.Load(); got != 2 {
		t.Errorf("PagesFetched = %d, want 2", got)
	}
	if got := metrics.PagesFailed.Load(); got != 1 {
		t.Errorf("PagesFailed = %d, want 1", got)
	}
}

func TestStatsCounting(t *testing.T) {
	s := newTestScraper(&fakeAdapter{
		kind:   types.SourceRepositoryTrend,
		result: &sources.Result{Listings: []*types.Listing{repoListing("a/one", 1, 1)}, PagesFetched: 1},
	})

	s.Scrape(context.Background(), &types.ScrapeRequest{
		Source:  types.SourceRepositoryTrend,
		Filters: types.Filters{TimePeriod: types.PeriodDaily},
	})
	s.Scrape(context.Background(), &types.ScrapeRequest{
		Source:  "rss-feed",
		Filters: types.Filters{TimePeriod: types.PeriodDaily},
	})

	snap := s.Stats().Snapshot()
	if snap["scrapes_started"] != int64(2) {
		t.Errorf("scrapes_started = %v", snap["scrapes_started"])
	}
	if snap["scrapes_completed"] != int64(1) {
		t.Errorf("scrapes_completed = %v", snap["scrapes_completed"])
	}
	if snap["scrapes_rejected"] != int64(1) {
		t.Errorf("scrapes_rejected = %v", snap["scrapes_rejected"])
	}
}
