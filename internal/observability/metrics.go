// Package observability exposes operational counters in Prometheus text
// format.
package observability

import (
	"fmt"
	"net/http"
	"sync/atomic"
)

// Metrics tracks operational metrics for the scraper.
type Metrics struct {
	ScrapesTotal    atomic.Int64
	ScrapesRejected atomic.Int64
	PagesFetched    atomic.Int64
	PagesFailed     atomic.Int64
	ListingsServed  atomic.Int64
	EnrichCalls     atomic.Int64
	EnrichFailed    atomic.Int64
}

// NewMetrics creates a new Metrics instance.
func NewMetrics() *Metrics {
	return &Metrics{}
}

// ServeHTTP serves metrics in Prometheus text exposition format.
func (m *Metrics) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain; version=0.0.4; charset=utf-8")

	metrics := []struct {
		name  string
		help  string
		value int64
	}{
		{"trendscout_scrapes_total", "Total scrape requests handled", m.ScrapesTotal.Load()},
		{"trendscout_scrapes_rejected_total", "Total scrape requests rejected by validation", m.ScrapesRejected.Load()},
		{"trendscout_pages_fetched_total", "Total target pages fetched", m.PagesFetched.Load()},
		{"trendscout_pages_failed_total", "Total target pages that failed", m.PagesFailed.Load()},
		{"trendscout_listings_served_total", "Total listings returned to callers", m.ListingsServed.Load()},
		{"trendscout_enrich_calls_total", "Total enrichment API calls", m.EnrichCalls.Load()},
		{"trendscout_enrich_failed_total", "Total failed enrichment API calls", m.EnrichFailed.Load()},
	}

	for _, metric := range metrics {
		fmt.Fprintf(w, "# HELP %s %s\n", metric.name, metric.help)
		fmt.Fprintf(w, "# TYPE %s counter\n", metric.name)
		fmt.Fprintf(w, "%s %d\n", metric.name, metric.value)
	}
}

// Snapshot returns all metrics as a map.
func (m *Metrics) Snapshot() map[string]int64 {
	return map[string]int64{
		"scrapes_total":    m.ScrapesTotal.Load(),
		"scrapes_rejected": m.ScrapesRejected.Load(),
		"pages_fetched":    m.PagesFetched.Load(),
		"pages_failed":     m.PagesFailed.Load(),
		"listings_served":  m.ListingsServed.Load(),
		"enrich_calls":     m.EnrichCalls.Load(),
		"enrich_failed":    m.EnrichFailed.Load(),
	}
}
