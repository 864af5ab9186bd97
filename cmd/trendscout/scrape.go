package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/trendscout/trendscout/internal/ai"
	"github.com/trendscout/trendscout/internal/config"
	"github.com/trendscout/trendscout/internal/enrich"
	"github.com/trendscout/trendscout/internal/extract"
	"github.com/trendscout/trendscout/internal/fetch"
	"github.com/trendscout/trendscout/internal/scraper"
	"github.com/trendscout/trendscout/internal/sources/github"
	"github.com/trendscout/trendscout/internal/sources/producthunt"
	"github.com/trendscout/trendscout/internal/storage"
	"github.com/trendscout/trendscout/internal/types"
)

var (
	scrapeSource string
	scrapePeriod string
	scrapeLimit  int
	scrapeQuery  string
	scrapeTech   []string
	scrapeDomain []string
	scrapeCats   []string

	scrapeYear     int
	scrapeMonth    int
	scrapeDay      int
	scrapeWeek     int
	scrapeMode     string
	scrapeTopics   []string
	scrapePages    int
	scrapeFeatured bool
	scrapeKey      string

	outputPath string
	outputType string
	mongoURI   string
	noEnrich   bool
	enhance    bool
)

// scrapeCmd creates the "scrape" subcommand.
func scrapeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "scrape",
		Short: "Run one scrape and write the results",
		Long:  "Scrape a source once, run the full pipeline, and write the listings to storage.",
		RunE:  runScrape,
	}

	cmd.Flags().StringVarP(&scrapeSource, "source", "s", "github", "source: github or producthunt")
	cmd.Flags().StringVarP(&scrapePeriod, "period", "p", "daily", "time period: daily, weekly, monthly")
	cmd.Flags().IntVarP(&scrapeLimit, "limit", "l", 0, "maximum results for the github source (0 = default)")
	cmd.Flags().StringVarP(&scrapeQuery, "query", "q", "", "free-text filter over name, description, tags")
	cmd.Flags().StringSliceVar(&scrapeTech, "tech", nil, "technology filter, github source only (e.g. go,rust)")
	cmd.Flags().StringSliceVar(&scrapeDomain, "domain", nil, "domain filter (e.g. ai,devtools)")
	cmd.Flags().StringSliceVar(&scrapeCats, "category", nil, "category filter over tags")

	cmd.Flags().IntVar(&scrapeYear, "year", 0, "leaderboard year (producthunt)")
	cmd.Flags().IntVar(&scrapeMonth, "month", 0, "leaderboard month (producthunt)")
	cmd.Flags().IntVar(&scrapeDay, "day", 0, "leaderboard day (producthunt, daily)")
	cmd.Flags().IntVar(&scrapeWeek, "week", 0, "leaderboard ISO week (producthunt, weekly)")
	cmd.Flags().StringVar(&scrapeMode, "mode", "", "producthunt mode: leaderboard or by-topic")
	cmd.Flags().StringSliceVar(&scrapeTopics, "topic", nil, "topic slugs for by-topic mode")
	cmd.Flags().IntVar(&scrapePages, "pages", 0, "pages per topic for by-topic mode")
	cmd.Flags().BoolVar(&scrapeFeatured, "featured", false, "featured leaderboard products only")
	cmd.Flags().StringVar(&scrapeKey, "render-key", "", "render API key for the producthunt source")

	cmd.Flags().StringVarP(&outputPath, "output", "o", "", "output directory")
	cmd.Flags().StringVarP(&outputType, "format", "f", "", "output format: json, jsonl, csv, mongodb")
	cmd.Flags().StringVar(&mongoURI, "mongo-uri", "", "MongoDB connection URI (implies --format mongodb)")
	cmd.Flags().BoolVar(&noEnrich, "no-enrich", false, "skip repository metadata enrichment")
	cmd.Flags().BoolVar(&enhance, "enhance", false, "rewrite descriptions and tags through the configured LLM")

	return cmd
}

// runScrape executes the scrape command.
func runScrape(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(cfgFile)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	applyScrapeOverrides(cfg)

	if err := config.Validate(cfg); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}

	logger := setupLogger(cfg)

	core, cleanup, err := buildScraper(cfg, logger)
	if err != nil {
		return err
	}
	defer cleanup()

	req, err := buildRequest()
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	start := time.Now()
	result := core.Scrape(ctx, req)
	if !result.Success {
		return fmt.Errorf("scrape rejected: %s", result.Error)
	}

	if cfg.AI.Enabled && len(result.Products) > 0 {
		llm := ai.NewLLMClient(cfg.AI, logger)
		result.Products = llm.EnhanceAll(ctx, result.Products)
	}

	store, err := storage.New(cfg, logger)
	if err != nil {
		return fmt.Errorf("create storage: %w", err)
	}
	if err := store.Store(result.Products); err != nil {
		store.Close()
		return fmt.Errorf("store listings: %w", err)
	}
	if err := store.Close(); err != nil {
		return fmt.Errorf("close storage: %w", err)
	}

	elapsed := time.Since(start)
	fmt.Printf("\n✅ Scrape complete in %s\n", elapsed.Round(time.Millisecond))
	fmt.Printf("   Source:    %s (%s)\n", req.Source, result.Applied.TimePeriod)
	fmt.Printf("   Products:  %d\n", len(result.Products))
	if result.Message != "" {
		fmt.Printf("   Note:      %s\n", result.Message)
	}
	fmt.Printf("   Output:    %s (%s)\n", cfg.Storage.OutputPath, store.Name())

	return nil
}

// buildScraper wires fetchers, the extraction engine, adapters, and the
// enricher into a ready orchestrator.
func buildScraper(cfg *config.Config, logger *slog.Logger) (*scraper.Scraper, func(), error) {
	var (
		pageFetcher fetch.Fetcher
		err         error
	)
	switch cfg.Fetcher.Type {
	case "browser":
		pageFetcher, err = fetch.NewBrowserFetcher(cfg, logger)
	default:
		pageFetcher, err = fetch.NewHTTPFetcher(cfg, logger)
	}
	if err != nil {
		return nil, nil, fmt.Errorf("create fetcher: %w", err)
	}

	engine := extract.NewEngine(cfg.Extract.MaxPerPage, logger)

	var enricher scraper.Enricher
	if cfg.Enrich.Enabled {
		enricher = enrich.New(cfg, logger)
	}

	core := scraper.New(cfg, enricher, logger)
	core.Register(github.New(cfg, pageFetcher, engine, logger))
	core.Register(producthunt.New(cfg, fetch.NewRenderClient(cfg, logger), engine, logger))

	cleanup := func() {
		if err := pageFetcher.Close(); err != nil {
			logger.Warn("fetcher close failed", "error", err)
		}
	}
	return core, cleanup, nil
}

// buildRequest translates CLI flags into a scrape request.
func buildRequest() (*types.ScrapeRequest, error) {
	var kind types.SourceKind
	switch strings.ToLower(scrapeSource) {
	case "github", string(types.SourceRepositoryTrend):
		kind = types.SourceRepositoryTrend
	case "producthunt", string(types.SourceLaunchListing):
		kind = types.SourceLaunchListing
	default:
		return nil, fmt.Errorf("unknown source %q (use github or producthunt)", scrapeSource)
	}

	key := scrapeKey
	if key == "" {
		key = os.Getenv("TRENDSCOUT_RENDER_API_KEY")
	}

	return &types.ScrapeRequest{
		Source: kind,
		Filters: types.Filters{
			TimePeriod:      types.TimePeriod(strings.ToLower(scrapePeriod)),
			Domains:         scrapeDomain,
			Categories:      scrapeCats,
			TechStack:       scrapeTech,
			Query:           scrapeQuery,
			MaxLimit:        scrapeLimit,
			Year:            scrapeYear,
			Month:           scrapeMonth,
			Day:             scrapeDay,
			Week:            scrapeWeek,
			FeaturedOnly:    scrapeFeatured,
			Mode:            types.ListingMode(scrapeMode),
			Topics:          scrapeTopics,
			PageCount:       scrapePages,
			SecondaryAPIKey: key,
		},
	}, nil
}

// applyScrapeOverrides applies command-line flag values to the config.
func applyScrapeOverrides(cfg *config.Config) {
	if outputPath != "" {
		cfg.Storage.OutputPath = outputPath
	}
	if outputType != "" {
		cfg.Storage.Type = strings.ToLower(outputType)
	}
	if mongoURI != "" {
		cfg.Storage.Type = "mongodb"
		cfg.Storage.MongoURI = mongoURI
	}
	if noEnrich {
		cfg.Enrich.Enabled = false
	}
	if enhance {
		cfg.AI.Enabled = true
	}
}
