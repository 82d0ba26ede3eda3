package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/devboards/newswire/internal/article"
	"github.com/devboards/newswire/internal/config"
	"github.com/devboards/newswire/internal/enrich"
	"github.com/devboards/newswire/internal/event"
	"github.com/devboards/newswire/internal/feed"
	"github.com/devboards/newswire/internal/pipeline"
	"github.com/devboards/newswire/internal/scrape"
	"github.com/devboards/newswire/internal/store"
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

var version = "dev"

var (
	verbose    bool
	configPath string
	cfg        *config.Config
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:     "newswire",
	Short:   "Multilingual tech news ingestion",
	Long:    "Newswire pulls tech news feeds, recovers full article text, enriches and translates each article with an LLM, and stores the results in MongoDB.",
	Version: version,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if verbose {
			log.SetFlags(log.LstdFlags | log.Lshortfile)
		} else {
			log.SetFlags(log.LstdFlags)
		}

		// Local overrides live in .env when present.
		_ = godotenv.Load()

		// Skip config loading for init and version
		if cmd.Name() == "init" || cmd.Name() == "version" {
			return nil
		}

		path, err := config.ResolveConfigPath(configPath)
		if err != nil {
			return err
		}
		cfg, err = config.Load(path)
		if err != nil {
			return fmt.Errorf("loading config: %w", err)
		}
		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable verbose output")
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "Path to config file")

	rootCmd.AddCommand(initCmd)
	rootCmd.AddCommand(versionCmd)
	rootCmd.AddCommand(runCmd)
	rootCmd.AddCommand(verifyCmd)
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Println("newswire", version)
	},
}

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Initialize configuration in ~/.config/newswire/",
	RunE: func(cmd *cobra.Command, args []string) error {
		target := filepath.Join(config.ConfigDir(), "config.yaml")
		if _, err := os.Stat(target); err == nil {
			fmt.Printf("Config already exists: %s\n", target)
			return nil
		}

		if err := os.MkdirAll(config.ConfigDir(), 0o755); err != nil {
			return fmt.Errorf("creating config directory: %w", err)
		}

		if err := os.WriteFile(target, config.DefaultConfigYAML, 0o644); err != nil {
			return fmt.Errorf("writing config: %w", err)
		}

		fmt.Printf("Created config: %s\n", target)
		fmt.Println("Edit it to configure feeds, MongoDB, and the OpenAI API key env var.")
		return nil
	},
}

// --- run command ---

var (
	dryRun     bool
	limit      int
	target     int
	todayOnly  bool
	sourceFlag string
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run one ingestion pass: fetch -> recover -> enrich -> store",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		sources := cfg.FeedURLs()
		if sourceFlag != "" {
			sources = []string{sourceFlag}
		}

		client, err := store.Connect(ctx, cfg.Mongo.URI)
		if err != nil {
			return fmt.Errorf("connecting to MongoDB: %w", err)
		}
		defer func() { _ = client.Disconnect(context.Background()) }()

		gateway, err := store.NewGateway(client.Database(cfg.Mongo.Database))
		if err != nil {
			return fmt.Errorf("preparing news collection: %w", err)
		}

		enricher := enrich.NewClient(cfg.OpenAI.BaseURL, cfg.OpenAI.Model, os.Getenv(cfg.OpenAI.APIKeyEnv))

		// Event publishing is best effort; a missing broker never blocks a run.
		var publisher pipeline.Publisher
		if cfg.Rabbit.URI != "" {
			pub, err := event.NewPublisher(cfg.Rabbit.URI, cfg.Rabbit.Exchange, cfg.Rabbit.RoutingKey)
			if err != nil {
				log.Printf("Event publisher unavailable, continuing without it: %v", err)
			} else {
				defer pub.Close()
				publisher = pub
			}
		}

		pipe := pipeline.New(feed.NewNormalizer(), scrape.NewRecoverer(nil), enricher, gateway, publisher)

		stats, err := pipe.Run(ctx, pipeline.Options{
			Sources:   sources,
			Limit:     limit,
			Target:    target,
			TodayOnly: todayOnly,
			DryRun:    dryRun,
		})
		if err != nil {
			return err
		}

		fmt.Println("\nRun complete:")
		fmt.Printf("  Inspected: %d\n", stats.Inspected)
		fmt.Printf("  Added: %d\n", stats.TotalAdded)
		fmt.Printf("  Duplicates: %d\n", stats.Duplicates)
		fmt.Printf("  Rejected: %d\n", stats.Rejected)
		fmt.Printf("  Outside date window: %d\n", stats.Skipped)
		if dryRun {
			fmt.Println("\nDry run: no articles were saved.")
		}
		return nil
	},
}

func init() {
	runCmd.Flags().BoolVar(&dryRun, "dry-run", false, "Make all decisions but skip the final write")
	runCmd.Flags().IntVar(&limit, "limit", 10, "Max items inspected per feed (0 = unlimited)")
	runCmd.Flags().IntVar(&target, "target", 5, "Stop after this many new articles (0 = no quota)")
	runCmd.Flags().BoolVar(&todayOnly, "today-only", true, "Only process articles published today")
	runCmd.Flags().StringVar(&sourceFlag, "source", "", "Process a single feed URL instead of the configured list")
}

// --- verify command ---

var verifyLatest int64

var verifyCmd = &cobra.Command{
	Use:   "verify",
	Short: "Check stored articles for translation completeness",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		client, err := store.Connect(ctx, cfg.Mongo.URI)
		if err != nil {
			return fmt.Errorf("connecting to MongoDB: %w", err)
		}
		defer func() { _ = client.Disconnect(context.Background()) }()

		gateway, err := store.NewGateway(client.Database(cfg.Mongo.Database))
		if err != nil {
			return fmt.Errorf("preparing news collection: %w", err)
		}

		total, err := gateway.Count(ctx)
		if err != nil {
			return err
		}
		now := time.Now()
		todayStart := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.Local)
		today, err := gateway.CountFetchedSince(ctx, todayStart)
		if err != nil {
			return err
		}

		fmt.Printf("Total articles: %d\n", total)
		fmt.Printf("Fetched today: %d\n\n", today)

		latest, err := gateway.Latest(ctx, verifyLatest)
		if err != nil {
			return err
		}

		incomplete := 0
		for _, a := range latest {
			missing := article.MissingLanguages(a.Translations)
			if len(missing) == 0 {
				fmt.Printf("  OK      %s\n", a.Title)
				continue
			}
			incomplete++
			fmt.Printf("  MISSING %v  %s\n", missing, a.Title)
		}

		if incomplete > 0 {
			fmt.Printf("\nFAILED: %d of %d latest articles lack required translations\n", incomplete, len(latest))
			return fmt.Errorf("%d articles with incomplete translations", incomplete)
		}
		fmt.Println("\nPASSED: all checked articles carry the full translation set")
		return nil
	},
}

func init() {
	verifyCmd.Flags().Int64Var(&verifyLatest, "latest", 5, "How many recent articles to inspect")
}
