package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/IshaanNene/LeadGoat/internal/browser"
	"github.com/IshaanNene/LeadGoat/internal/collector"
	"github.com/IshaanNene/LeadGoat/internal/config"
	"github.com/IshaanNene/LeadGoat/internal/enrich"
	"github.com/IshaanNene/LeadGoat/internal/extract"
	"github.com/IshaanNene/LeadGoat/internal/leads"
	"github.com/IshaanNene/LeadGoat/internal/observability"
	"github.com/IshaanNene/LeadGoat/internal/pipeline"
	"github.com/IshaanNene/LeadGoat/internal/storage"
)

var (
	cfgFile     string
	verbose     bool
	headless    bool
	storageType string
	storagePath string
	outputPath  string
	outputType  string
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "leadgoat",
		Short: "LeadGoat — Map-Listing Lead Collection Pipeline",
		Long: `LeadGoat collects business listings from a map-search interface,
deduplicates them, persists them with idempotent upsert semantics, and
scores leads likely to need outreach.

Features:
  • Browser-driven incremental scroll collection with stability-based stopping
  • Multi-strategy record extraction across historical markup variants
  • Idempotent phone-keyed lead persistence (SQLite or MongoDB)
  • Opportunity scoring with best-effort website detection
  • JSON, JSONL, CSV export
  • Prometheus metrics endpoint`,
	}

	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", "", "config file path")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")

	rootCmd.AddCommand(scrapeCmd())
	rootCmd.AddCommand(enrichCmd())
	rootCmd.AddCommand(exportCmd())
	rootCmd.AddCommand(versionCmd())
	rootCmd.AddCommand(configCmd())

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// scrapeCmd creates the "scrape" subcommand.
func scrapeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "scrape [query]",
		Short: "Collect, persist and score leads for a search query",
		Long:  "Run one collection job: scroll the live result list for the query, extract and deduplicate records, upsert them, and score leads lacking a website.",
		Args:  cobra.MaximumNArgs(1),
		RunE:  runScrape,
	}

	cmd.Flags().BoolVar(&headless, "headless", true, "run the browser headless")
	cmd.Flags().StringVar(&storageType, "storage", "", "storage backend: sqlite, mongo")
	cmd.Flags().StringVar(&storagePath, "db", "", "sqlite database path")

	return cmd
}

// runScrape executes the scrape command.
func runScrape(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(cfgFile)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	applyCLIOverrides(cmd, cfg)
	logger := setupLogger(cfg)

	if err := config.Validate(cfg); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}

	query := cfg.Scrape.DefaultQuery
	if len(args) > 0 {
		query = args[0]
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	metrics := observability.NewMetrics(logger)
	if cfg.Metrics.Enabled {
		if err := metrics.StartServer(cfg.Metrics.Port, cfg.Metrics.Path); err != nil {
			logger.Warn("failed to start metrics server", "error", err)
		}
	}

	store, err := storage.Open(ctx, &cfg.Storage, logger)
	if err != nil {
		return fmt.Errorf("open storage: %w", err)
	}
	defer store.Close(context.Background())

	logger.Info("starting scrape",
		"query", query,
		"storage", store.Name(),
		"headless", cfg.Browser.Headless,
	)

	factory := browser.Factory(func(ctx context.Context) (browser.Session, error) {
		return browser.NewRodSession(ctx, &cfg.Browser, logger)
	})

	upserter := leads.NewUpserter(store, logger)
	enricher := enrich.New(upserter, enrich.NewLookupClient(cfg, metrics, logger), metrics, logger)
	col := collector.New(cfg, factory, extract.New(logger), metrics, logger)

	pipe := pipeline.New(cfg, col, upserter, enricher, metrics, logger)

	report, err := pipe.Run(ctx, query)
	if err != nil {
		return fmt.Errorf("run pipeline: %w", err)
	}

	fmt.Printf("\n✅ Scrape complete in %s\n", report.Duration().Round(time.Millisecond))
	fmt.Printf("   Query:     %q\n", report.Query)
	fmt.Printf("   Scraped:   %d candidates\n", report.Scraped)
	fmt.Printf("   Saved:     %d leads\n", report.Saved)
	fmt.Printf("   Enriched:  %d leads\n", report.Enriched)
	fmt.Printf("   Errors:    %d\n", report.Errored)
	fmt.Printf("   Started:   %s\n", report.StartedAt.Format(time.RFC3339))
	fmt.Printf("   Finished:  %s\n", report.FinishedAt.Format(time.RFC3339))

	if report.Scraped == 0 {
		fmt.Println("\n💡 No results appeared for this query. The source UI may withhold results;")
		fmt.Println("   try a broader query or rerun with -v to see the scroll loop's progress.")
	}

	return nil
}

// enrichCmd creates the "enrich" subcommand for bulk re-enrichment.
func enrichCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "enrich",
		Short: "Re-run opportunity scoring over every stored lead",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(cfgFile)
			if err != nil {
				return fmt.Errorf("load config: %w", err)
			}
			if err := config.Validate(cfg); err != nil {
				return fmt.Errorf("invalid config: %w", err)
			}
			logger := setupLogger(cfg)

			ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			metrics := observability.NewMetrics(logger)
			store, err := storage.Open(ctx, &cfg.Storage, logger)
			if err != nil {
				return fmt.Errorf("open storage: %w", err)
			}
			defer store.Close(context.Background())

			upserter := leads.NewUpserter(store, logger)
			enricher := enrich.New(upserter, enrich.NewLookupClient(cfg, metrics, logger), metrics, logger)

			count, err := enricher.EnrichAll(ctx)
			if err != nil {
				return fmt.Errorf("bulk enrichment: %w", err)
			}

			fmt.Printf("✅ Enriched %d leads\n", count)
			return nil
		},
	}
}

// exportCmd creates the "export" subcommand.
func exportCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Export stored leads to a file",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(cfgFile)
			if err != nil {
				return fmt.Errorf("load config: %w", err)
			}
			if err := config.Validate(cfg); err != nil {
				return fmt.Errorf("invalid config: %w", err)
			}
			logger := setupLogger(cfg)

			ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			store, err := storage.Open(ctx, &cfg.Storage, logger)
			if err != nil {
				return fmt.Errorf("open storage: %w", err)
			}
			defer store.Close(context.Background())

			all, err := store.List(ctx)
			if err != nil {
				return fmt.Errorf("list leads: %w", err)
			}

			if err := storage.Export(all, outputType, outputPath, logger); err != nil {
				return fmt.Errorf("export: %w", err)
			}

			fmt.Printf("✅ Exported %d leads to %s\n", len(all), outputPath)
			return nil
		},
	}

	cmd.Flags().StringVarP(&outputPath, "output", "o", "./leads.json", "output file path")
	cmd.Flags().StringVarP(&outputType, "format", "f", "json", "output format: json, jsonl, csv")

	return cmd
}

// versionCmd creates the "version" subcommand.
func versionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Printf("LeadGoat %s\n", config.Version)
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
			fmt.Printf("Scrape:\n")
			fmt.Printf("  Default Query:     %q\n", cfg.Scrape.DefaultQuery)
			fmt.Printf("  Default Score:     %d\n", cfg.Scrape.DefaultScore)
			fmt.Printf("\nBrowser:\n")
			fmt.Printf("  Headless:          %v\n", cfg.Browser.Headless)
			fmt.Printf("  Stealth:           %v\n", cfg.Browser.Stealth)
			fmt.Printf("  Nav Timeout:       %s\n", cfg.Browser.NavigationTimeout)
			fmt.Printf("  Results Timeout:   %s\n", cfg.Browser.ResultsTimeout)
			fmt.Printf("\nCollector:\n")
			fmt.Printf("  Max Attempts:      %d\n", cfg.Collector.MaxScrollAttempts)
			fmt.Printf("  Stable Attempts:   %d\n", cfg.Collector.StableAttempts)
			fmt.Printf("  Card Ceiling:      %d\n", cfg.Collector.CardCeiling)
			fmt.Printf("  Scroll Delta:      %d px\n", cfg.Collector.ScrollDelta)
			fmt.Printf("\nEnrich:\n")
			fmt.Printf("  Lookup Timeout:    %s\n", cfg.Enrich.LookupTimeout)
			fmt.Printf("  Lookup Interval:   %s\n", cfg.Enrich.LookupInterval)
			fmt.Printf("\nStorage:\n")
			fmt.Printf("  Type:              %s\n", cfg.Storage.Type)
			fmt.Printf("  Path:              %s\n", cfg.Storage.Path)
			fmt.Printf("\nMetrics:\n")
			fmt.Printf("  Enabled:           %v\n", cfg.Metrics.Enabled)
			fmt.Printf("  Port:              %d\n", cfg.Metrics.Port)
			return nil
		},
	}
}

// setupLogger creates a structured logger from the logging config.
// The -v flag forces debug level regardless of configuration.
func setupLogger(cfg *config.Config) *slog.Logger {
	var level slog.Level
	switch cfg.Logging.Level {
	case "debug":
		level = slog.LevelDebug
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		level = slog.LevelInfo
	}
	if verbose {
		level = slog.LevelDebug
	}

	opts := &slog.HandlerOptions{
		Level: level,
	}

	var handler slog.Handler
	if cfg.Logging.Format == "json" {
		handler = slog.NewJSONHandler(os.Stderr, opts)
	} else {
		handler = slog.NewTextHandler(os.Stderr, opts)
	}
	return slog.New(handler)
}

// applyCLIOverrides applies command-line flag values to the config.
func applyCLIOverrides(cmd *cobra.Command, cfg *config.Config) {
	if cmd.Flags().Changed("headless") {
		cfg.Browser.Headless = headless
	}
	if storageType != "" {
		cfg.Storage.Type = storageType
	}
	if storagePath != "" {
		cfg.Storage.Path = storagePath
	}
}
