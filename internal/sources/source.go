// Package sources holds the per-site adapters that turn a scrape request
// into target URLs, run pages through the extraction engine, and map raw
// records into canonical listings.
package sources

import (
	"context"

	"github.com/trendscout/trendscout/internal/types"
)

// Result is what one adapter produced for one scrape request. Page
// failures are isolated: a failed URL contributes zero listings and bumps
// PagesFailed, it never aborts the batch.
type Result struct {
	Listings     []*types.Listing
	PagesFetched int
	PagesFailed  int
}

// TotalFailure reports whether every target URL failed. The caller turns
// this into a successful-but-empty result with an explanatory message,
// distinguishing "nothing found" from "request malformed".
func (r *Result) TotalFailure() bool {
	return r.PagesFetched == 0 && r.PagesFailed > 0
}

// Adapter is a scraping source.
type Adapter interface {
	// Kind returns which source this adapter serves.
	Kind() types.SourceKind

	// Validate checks request fields before any network activity. A
	// non-nil return is always a *types.ValidationError.
	Validate(req *types.ScrapeRequest) error

	// Scrape fetches and extracts all target URLs for the request. The
	// request must already be validated.
	Scrape(ctx context.Context, req *types.ScrapeRequest) (*Result, error)
}
