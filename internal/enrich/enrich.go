// Package enrich upgrades repository listings with data from the
// repository host's REST API: better descriptions, lifetime star counts,
// topics, and homepage links that the trending page does not carry.
package enrich

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/tidwall/gjson"

	"github.com/trendscout/trendscout/internal/config"
	"github.com/trendscout/trendscout/internal/observability"
	"github.com/trendscout/trendscout/internal/types"
)

// Enricher issues one secondary-API call per listing, batched and paced to
// respect the API's rate limits. A per-item failure leaves the original
// listing untouched; enrichment only ever upgrades fields.
type Enricher struct {
	cfg     config.Enrich
	baseURL string
	client  *http.Client
	logger  *slog.Logger
	metrics *observability.Metrics
}

// New creates an Enricher. Batch size and inter-batch delay come from
// configuration, not ambient constants, so tests can shrink them.
func New(cfg *config.Config, logger *slog.Logger) *Enricher {
	return &Enricher{
		cfg:     cfg.Enrich,
		baseURL: cfg.Sources.RepoAPIBaseURL,
		client:  &http.Client{Timeout: cfg.Fetcher.APITimeout},
		logger:  logger.With("component", "enricher"),
	}
}

// SetMetrics attaches an optional operational metrics sink for API call
// counters.
func (e *Enricher) SetMetrics(m *observability.Metrics) {
	e.metrics = m
}

// EnrichAll enriches every listing, preserving order. Listings are
// processed in fixed-size concurrent batches with a fixed delay between
// batches; this is the only deliberate back-pressure in the pipeline.
func (e *Enricher) EnrichAll(ctx context.Context, listings []*types.Listing) []*types.Listing {
	out := make([]*types.Listing, len(listings))
	copy(out, listings)

	batchSize := e.cfg.BatchSize
	if batchSize < 1 {
		batchSize = 1
	}

	for start := 0; start < len(listings); start += batchSize {
		end := start + batchSize
		if end > len(listings) {
			end = len(listings)
		}

		var wg sync.WaitGroup
		for i := start; i < end; i++ {
			wg.Add(1)
			go func(i int) {
				defer wg.Done()
				if e.metrics != nil {
					e.metrics.EnrichCalls.Add(1)
				}
				enriched, err := e.enrichOne(ctx, listings[i])
				if err != nil {
					if e.metrics != nil {
						e.metrics.EnrichFailed.Add(1)
					}
					e.logger.Warn("enrichment failed, keeping scraped values",
						"name", listings[i].Name,
						"error", err,
					)
					return
				}
				out[i] = enriched
			}(i)
		}
		wg.Wait()

		if end < len(listings) && e.cfg.BatchDelay > 0 {
			select {
			case <-ctx.Done():
				return out
			case <-time.After(e.cfg.BatchDelay):
			}
		}
	}

	return out
}

// enrichOne fetches the repository record keyed by the listing's full name
// and returns a new listing with upgraded fields.
func (e *Enricher) enrichOne(ctx context.Context, l *types.Listing) (*types.Listing, error) {
	endpoint := fmt.Sprintf("%s/repos/%s", e.baseURL, pathEscapeFullName(l.Name))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, &types.EnrichError{Name: l.Name, Err: err}
	}
	req.Header.Set("Accept", "application/vnd.github+json")
	if e.cfg.Token != "" {
		req.Header.Set("Authorization", "Bearer "+e.cfg.Token)
	}

	resp, err := e.client.Do(req)
	if err != nil {
		return nil, &types.EnrichError{Name: l.Name, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, &types.EnrichError{
			Name: l.Name,
			Err:  fmt.Errorf("repo API HTTP %d", resp.StatusCode),
		}
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, 1024*1024))
	if err != nil {
		return nil, &types.EnrichError{Name: l.Name, Err: err}
	}

	return applyEnrichment(l, body), nil
}

// applyEnrichment builds a new listing where API-provided values take
// precedence over scraped ones for description, total stars, language,
// topics, and homepage.
func applyEnrichment(l *types.Listing, body []byte) *types.Listing {
	enriched := l.Clone()

	if v := gjson.GetBytes(body, "description"); v.Type == gjson.String && v.Str != "" {
		enriched.Description = v.Str
	}
	if v := gjson.GetBytes(body, "stargazers_count"); v.Exists() {
		if n := int(v.Int()); n >= 0 {
			enriched.Metrics.Total = n
		}
	}
	if v := gjson.GetBytes(body, "language"); v.Type == gjson.String && v.Str != "" {
		enriched.Language = v.Str
	}
	if v := gjson.GetBytes(body, "topics"); v.IsArray() {
		var topics []string
		for _, t := range v.Array() {
			if t.Str != "" {
				topics = append(topics, t.Str)
			}
		}
		if len(topics) > 0 {
			enriched.Tags = topics
		}
	}
	if v := gjson.GetBytes(body, "homepage"); v.Type == gjson.String && v.Str != "" {
		enriched.Links.Website = v.Str
	}

	return enriched
}

// pathEscapeFullName escapes each segment of an owner/name pair without
// escaping the separating slash.
func pathEscapeFullName(fullName string) string {
	owner, name, ok := strings.Cut(fullName, "/")
	if !ok {
		return url.PathEscape(fullName)
	}
	return url.PathEscape(owner) + "/" + url.PathEscape(name)
}
