package fetch

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/tidwall/gjson"

	"github.com/trendscout/trendscout/internal/config"
	"github.com/trendscout/trendscout/internal/types"
)

// RenderClient fetches JavaScript-rendered pages through a render API
// (Firecrawl-compatible). The launch-listing site serves its leaderboard
// client-side, so a plain GET returns an empty shell.
type RenderClient struct {
	endpoint string
	client   *http.Client
	logger   *slog.Logger
}

// NewRenderClient creates a render API client. The API key is passed per
// call because it arrives with each scrape request.
func NewRenderClient(cfg *config.Config, logger *slog.Logger) *RenderClient {
	return &RenderClient{
		endpoint: cfg.Sources.RenderAPIEndpoint,
		client:   &http.Client{Timeout: cfg.Fetcher.PageTimeout},
		logger:   logger.With("component", "render_client"),
	}
}

// FetchRendered asks the render API for the fully rendered HTML of targetURL.
func (c *RenderClient) FetchRendered(ctx context.Context, apiKey, targetURL string) (*Response, error) {
	payload, err := json.Marshal(map[string]any{
		"url":     targetURL,
		"formats": []string{"html"},
	})
	if err != nil {
		return nil, &types.FetchError{URL: targetURL, Err: err}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(payload))
	if err != nil {
		return nil, &types.FetchError{URL: targetURL, Err: err}
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+apiKey)

	start := time.Now()
	resp, err := c.client.Do(req)
	if err != nil {
		return nil, &types.FetchError{URL: targetURL, Err: err}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 20*1024*1024))
	if err != nil {
		return nil, &types.FetchError{URL: targetURL, Err: err}
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, &types.FetchError{
			URL:        targetURL,
			StatusCode: resp.StatusCode,
			Err:        fmt.Errorf("render API HTTP %d: %s", resp.StatusCode, truncate(body, 256)),
		}
	}

	html := normalizeEnvelope(body)
	if html == "" {
		return nil, &types.FetchError{URL: targetURL, Err: types.ErrInvalidEnvelope}
	}

	duration := time.Since(start)
	c.logger.Debug("rendered fetch complete", "url", targetURL, "size", len(html), "duration", duration)

	return &Response{
		StatusCode: resp.StatusCode,
		Body:       []byte(html),
		FinalURL:   targetURL,
		Duration:   duration,
		FetchedAt:  time.Now(),
	}, nil
}

// normalizeEnvelope extracts the HTML payload from the render API response.
// The envelope shape has drifted across API versions (html nested under
// data, top-level html, or a generic content field), so all known shapes
// are normalized here, once, at the boundary.
func normalizeEnvelope(body []byte) string {
	for _, path := range []string{"data.html", "html", "content", "data.content"} {
		if v := gjson.GetBytes(body, path); v.Type == gjson.String && v.Str != "" {
			return v.Str
		}
	}
	return ""
}

func truncate(b []byte, n int) string {
	if len(b) <= n {
		return string(b)
	}
	return string(b[:n]) + "..."
}
