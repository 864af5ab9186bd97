package fetch

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/launcher"
	"github.com/go-rod/rod/lib/proto"
	"github.com/go-rod/stealth"

	"github.com/trendscout/trendscout/internal/config"
	"github.com/trendscout/trendscout/internal/types"
)

// BrowserFetcher implements Fetcher using a headless browser via Rod.
// Selected with fetcher.type "browser" for trending pages that block or
// degrade plain HTTP clients.
type BrowserFetcher struct {
	browser *rod.Browser
	cfg     *config.Fetcher
	logger  *slog.Logger
	mu      sync.Mutex
}

// NewBrowserFetcher launches a headless Chromium and connects to it.
func NewBrowserFetcher(cfg *config.Config, logger *slog.Logger) (*BrowserFetcher, error) {
	l := launcher.New().
		Headless(true).
		Set("disable-gpu").
		Set("disable-dev-shm-usage").
		Set("no-sandbox").
		Set("disable-blink-features", "AutomationControlled")

	launchURL, err := l.Launch()
	if err != nil {
		return nil, fmt.Errorf("launch browser: %w", err)
	}

	browser := rod.New().ControlURL(launchURL)
	if err := browser.Connect(); err != nil {
		return nil, fmt.Errorf("connect browser: %w", err)
	}

	bf := &BrowserFetcher{
		browser: browser,
		cfg:     &cfg.Fetcher,
		logger:  logger.With("component", "browser_fetcher"),
	}

	bf.logger.Info("browser fetcher ready", "stealth", cfg.Fetcher.Stealth)
	return bf, nil
}

// Fetch navigates to a URL and returns the rendered page HTML.
func (bf *BrowserFetcher) Fetch(ctx context.Context, rawURL string) (*Response, error) {
	bf.mu.Lock()
	defer bf.mu.Unlock()

	start := time.Now()

	var page *rod.Page
	var err error
	if bf.cfg.Stealth {
		page, err = stealth.Page(bf.browser)
	} else {
		page, err = bf.browser.Page(proto.TargetCreateTarget{})
	}
	if err != nil {
		return nil, &types.FetchError{URL: rawURL, Err: fmt.Errorf("create page: %w", err)}
	}
	defer page.Close()

	page = page.Context(ctx)

	if err := page.Navigate(rawURL); err != nil {
		return nil, &types.FetchError{URL: rawURL, Err: fmt.Errorf("navigate: %w", err)}
	}
	if err := page.WaitLoad(); err != nil {
		return nil, &types.FetchError{URL: rawURL, Err: fmt.Errorf("wait load: %w", err)}
	}

	html, err := page.HTML()
	if err != nil {
		return nil, &types.FetchError{URL: rawURL, Err: fmt.Errorf("read html: %w", err)}
	}
	if html == "" {
		return nil, &types.FetchError{URL: rawURL, Err: types.ErrEmptyResponse}
	}

	info, _ := page.Info()
	finalURL := rawURL
	if info != nil && info.URL != "" {
		finalURL = info.URL
	}

	duration := time.Since(start)
	bf.logger.Debug("browser fetch complete", "url", rawURL, "size", len(html), "duration", duration)

	return &Response{
		StatusCode: 200, // rendered pages do not expose a status; navigation errors surface above
		Body:       []byte(html),
		FinalURL:   finalURL,
		Duration:   duration,
		FetchedAt:  time.Now(),
	}, nil
}

// Close shuts the browser down.
func (bf *BrowserFetcher) Close() error {
	return bf.browser.Close()
}

// Type returns the fetcher type identifier.
func (bf *BrowserFetcher) Type() string {
	return "browser"
}
