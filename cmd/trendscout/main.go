package main

import (
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/trendscout/trendscout/internal/config"
)

var (
	cfgFile string
	verbose bool
)

func main() {
	// Local .env values feed the TRENDSCOUT_* environment overrides.
	_ = godotenv.Load()

	rootCmd := &cobra.Command{
		Use:   "trendscout",
		Short: "TrendScout - trending product scraper",
		Long: `TrendScout scrapes trending products from developer and launch
platforms into one canonical feed.

Sources:
  • github       — trending repositories (daily, weekly, monthly)
  • producthunt  — launch leaderboards and topic pages

Features:
  • Ordered fallback extraction that survives markup drift
  • Repository metadata enrichment via API
  • Keyword-based domain classification
  • Filter, sort, and limit pipeline
  • JSON, JSONL, CSV, and MongoDB output
  • REST API with Prometheus metrics`,
	}

	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", "", "config file path")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")

	rootCmd.AddCommand(scrapeCmd())
	rootCmd.AddCommand(serveCmd())
	rootCmd.AddCommand(versionCmd())
	rootCmd.AddCommand(configCmd())

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// versionCmd creates the "version" subcommand.
func versionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Printf("TrendScout %s\n", config.Version)
		},
	}
}

// configCmd creates the "config" subcommand for inspecting configuration.
func configCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "config",
		Short: "Show current configuration",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(cfgFile)
			if err != nil {
				return err
			}
			fmt.Printf("Fetcher:\n")
			fmt.Printf("  Type:              %s\n", cfg.Fetcher.Type)
			fmt.Printf("  Page Timeout:      %s\n", cfg.Fetcher.PageTimeout)
			fmt.Printf("  API Timeout:       %s\n", cfg.Fetcher.APITimeout)
			fmt.Printf("  User Agents:       %d configured\n", len(cfg.Fetcher.UserAgents))
			fmt.Printf("\nSources:\n")
			fmt.Printf("  Trending Base:     %s\n", cfg.Sources.TrendingBaseURL)
			fmt.Printf("  Repo API Base:     %s\n", cfg.Sources.RepoAPIBaseURL)
			fmt.Printf("  Launch Base:       %s\n", cfg.Sources.LaunchBaseURL)
			fmt.Printf("  Render Endpoint:   %s\n", cfg.Sources.RenderAPIEndpoint)
			fmt.Printf("\nExtract:\n")
			fmt.Printf("  Max Per Page:      %d\n", cfg.Extract.MaxPerPage)
			fmt.Printf("\nEnrich:\n")
			fmt.Printf("  Enabled:           %v\n", cfg.Enrich.Enabled)
			fmt.Printf("  Batch Size:        %d\n", cfg.Enrich.BatchSize)
			fmt.Printf("  Batch Delay:       %s\n", cfg.Enrich.BatchDelay)
			fmt.Printf("\nStorage:\n")
			fmt.Printf("  Type:              %s\n", cfg.Storage.Type)
			fmt.Printf("  Output Path:       %s\n", cfg.Storage.OutputPath)
			fmt.Printf("\nServer:\n")
			fmt.Printf("  Port:              %d\n", cfg.Server.Port)
			return nil
		},
	}
}

// setupLogger creates a structured logger.
func setupLogger(cfg *config.Config) *slog.Logger {
	level := slog.LevelInfo
	if verbose {
		level = slog.LevelDebug
	} else if strings.EqualFold(cfg.Logging.Level, "debug") {
		level = slog.LevelDebug
	}

	opts := &slog.HandlerOptions{Level: level}

	var handler slog.Handler
	if strings.EqualFold(cfg.Logging.Format, "json") {
		handler = slog.NewJSONHandler(os.Stderr, opts)
	} else {
		handler = slog.NewTextHandler(os.Stderr, opts)
	}
	return slog.New(handler)
}
