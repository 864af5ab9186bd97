package enrich

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/trendscout/trendscout/internal/config"
	"github.com/trendscout/trendscout/internal/observability"
	"github.com/trendscout/trendscout/internal/types"
)

var testLogger = slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError}))

func testEnricher(apiURL string) *Enricher {
	cfg := config.DefaultConfig()
	cfg.Sources.RepoAPIBaseURL = apiURL
	cfg.Enrich.BatchSize = 2
	cfg.Enrich.BatchDelay = time.Millisecond
	return New(cfg, testLogger)
}

func repoListing(key string) *types.Listing {
	l := types.NewListing(types.SourceRepositoryTrend, types.PeriodDaily, key, key)
	l.Description = "scraped description"
	l.Metrics = types.Metrics{Total: 100, PeriodDelta: 10}
	return l
}

func TestEnrichAllUpgradesFields(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/repos/golang/go" {
			t.Errorf("unexpected path %q", r.URL.Path)
		}
		if got := r.Header.Get("Accept"); got != "application/vnd.github+json" {
			t.Errorf("Accept = %q", got)
		}
		fmt.Fprint(w, `{
			"description": "The Go programming language",
			"stargazers_count": 128500,
			"language": "Go",
			"topics": ["language", "compiler"],
			"homepage": "https://go.dev"
		}`)
	}))
	defer srv.Close()

	e := testEnricher(srv.URL)
	in := []*types.Listing{repoListing("golang/go")}

	out := e.EnrichAll(context.Background(), in)

	got := out[0]
	if got.Description != "The Go programming language" {
		t.Errorf("description = %q", got.Description)
	}
	if got.Metrics.Total != 128500 {
		t.Errorf("total = %d, want API value", got.Metrics.Total)
	}
	if got.Metrics.PeriodDelta != 10 {
		t.Errorf("delta = %d, enrichment must not touch the period delta", got.Metrics.PeriodDelta)
	}
	if got.Links.Website != "https://go.dev" {
		t.Errorf("website = %q", got.Links.Website)
	}
	if len(got.Tags) != 2 {
		t.Errorf("tags = %v", got.Tags)
	}

	// Input untouched.
	if in[0].Description != "scraped description" {
		t.Error("enrichment mutated its input")
	}
}

func TestEnrichAllKeepsOriginalOnFailure(t *testing.T) {
	var calls atomic.Int64
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		if r.URL.Path == "/repos/broken/repo" {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		fmt.Fprint(w, `{"description": "fresh", "stargazers_count": 7}`)
	}))
	defer srv.Close()

	e := testEnricher(srv.URL)
	in := []*types.Listing{
		repoListing("broken/repo"),
		repoListing("fine/repo"),
	}

	out := e.EnrichAll(context.Background(), in)

	if out[0].Description != "scraped description" {
		t.Errorf("failed item changed: %q", out[0].Description)
	}
	if out[1].Description != "fresh" {
		t.Errorf("healthy item not enriched: %q", out[1].Description)
	}
	if calls.Load() != 2 {
		t.Errorf("made %d calls, want 2", calls.Load())
	}
}

func TestEnrichAllBatching(t *testing.T) {
	var (
		mu      sync.Mutex
		active  int
		maxSeen int
	)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		mu.Lock()
		active++
		if active > maxSeen {
			maxSeen = active
		}
		mu.Unlock()

		time.Sleep(10 * time.Millisecond)

		mu.Lock()
		active--
		mu.Unlock()

		fmt.Fprint(w, `{"description": "x"}`)
	}))
	defer srv.Close()

	e := testEnricher(srv.URL)
	in := []*types.Listing{
		repoListing("a/one"), repoListing("a/two"), repoListing("a/three"),
		repoListing("a/four"), repoListing("a/five"),
	}

	out := e.EnrichAll(context.Background(), in)
	if len(out) != 5 {
		t.Fatalf("got %d listings", len(out))
	}

	mu.Lock()
	defer mu.Unlock()
	if maxSeen > 2 {
		t.Errorf("saw %d concurrent calls, batch size is 2", maxSeen)
	}
}

func TestEnrichAllPreservesOrder(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprintf(w, `{"description": %q}`, "desc for "+r.URL.Path)
	}))
	defer srv.Close()

	e := testEnricher(srv.URL)
	in := []*types.Listing{
		repoListing("a/one"), repoListing("b/two"), repoListing("c/three"),
	}

	out := e.EnrichAll(context.Background(), in)
	for i := range in {
		if out[i].ID != in[i].ID {
			t.Errorf("position %d: ID %q, want %q", i, out[i].ID, in[i].ID)
		}
	}
}

func TestEnrichCancelledContext(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"description": "x"}`)
	}))
	defer srv.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	e := testEnricher(srv.URL)
	in := []*types.Listing{repoListing("a/one"), repoListing("b/two")}

	// Cancelled context: every item keeps its scraped values, nothing hangs.
	out := e.EnrichAll(ctx, in)
	if len(out) != 2 {
		t.Fatalf("got %d listings", len(out))
	}
	for i, l := range out {
		if l.Description != "scraped description" {
			t.Errorf("item %d enriched despite cancelled context", i)
		}
	}
}

func TestEnrichMetricsCounting(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/repos/broken/repo" {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		fmt.Fprint(w, `{"description": "x"}`)
	}))
	defer srv.Close()

	e := testEnricher(srv.URL)
	metrics := observability.NewMetrics()
	e.SetMetrics(metrics)

	e.EnrichAll(context.Background(), []*types.Listing{
		repoListing("broken/repo"),
		repoListing("fine/repo"),
		repoListing("also/fine"),
	})

	if got := metrics.EnrichCalls.Load(); got != 3 {
		t.Errorf("EnrichCalls = %d, want 3", got)
	}
	if got := metrics.EnrichFailed.Load(); got != 1 {
		t.Errorf("EnrichFailed = %d, want 1", got)
	}
}

func TestPathEscapeFullName(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"golang/go", "golang/go"},
		{"owner/na me", "owner/na%20me"},
		{"plain", "plain"},
	}
	for _, tc := range cases {
		if got := pathEscapeFullName(tc.in); got != tc.want {
			t.Errorf("pathEscapeFullName(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}
