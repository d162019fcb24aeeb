// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/pdiddy/paper-harvest/internal/crawl"
	"github.com/pdiddy/paper-harvest/internal/dispatch"
	"github.com/pdiddy/paper-harvest/internal/export"
	"github.com/pdiddy/paper-harvest/internal/httputil"
	"github.com/pdiddy/paper-harvest/internal/store"
	"github.com/pdiddy/paper-harvest/pkg/types"
)

const (
	defaultDBPath      = "articles.sqlite"
	defaultConcurrency = 3
	defaultRate        = 1.5
)

var crawlCmd = &cobra.Command{
	Use:   "crawl",
	Short: "Crawl listing pages and persist article metadata",
	Long: `Crawl walks a paginated listing of article search results, extracts
bibliographic metadata and the English abstract from every linked article
page, and persists the records to a SQLite database. Interrupted runs
resume: articles whose abstract is already stored are skipped unless
--no-resume is given.

With --seeds, several listings are crawled in one invocation; per-seed
max_pages and limit_articles override the command-level values.`,
	RunE: runCrawl,
}

func init() {
	crawlCmd.Flags().String("search-url", "", "listing page URL to start from")
	crawlCmd.Flags().String("seeds", "", "YAML file with multiple listings to crawl")
	crawlCmd.Flags().String("db", defaultDBPath, "SQLite database file")
	crawlCmd.Flags().Int("max-pages", 0, "maximum listing pages to visit (0 = unlimited)")
	crawlCmd.Flags().Int("limit-articles", 0, "maximum articles to persist (0 = unlimited)")
	crawlCmd.Flags().Int("concurrency", defaultConcurrency, "maximum in-flight article fetches")
	crawlCmd.Flags().Float64("rate", defaultRate, "request pacing in requests per second (0 = unlimited)")
	crawlCmd.Flags().Bool("no-resume", false, "refetch articles whose abstract is already stored")
	crawlCmd.Flags().String("export-format", "", "write an export after the crawl: csv, jsonl, or txt")
	crawlCmd.Flags().String("export-path", "", "export file path (default export.<format>)")
	crawlCmd.Flags().Duration("timeout", httputil.DefaultTimeout, "HTTP request timeout")
	crawlCmd.Flags().String("user-agent", "", "User-Agent header (default: desktop browser profile)")

	rootCmd.AddCommand(crawlCmd)
}

func runCrawl(cmd *cobra.Command, args []string) error {
	if err := bindFlags(cmd); err != nil {
		return err
	}

	searchURL := viper.GetString("search-url")
	seedsPath := viper.GetString("seeds")
	if (searchURL == "") == (seedsPath == "") {
		return fmt.Errorf("provide exactly one of --search-url or --seeds")
	}

	var exportFormat export.Format
	if raw := viper.GetString("export-format"); raw != "" {
		f, err := export.ParseFormat(raw)
		if err != nil {
			return err
		}
		exportFormat = f
	}

	cfg := types.CrawlConfig{
		HTTPConfig: types.HTTPConfig{
			Timeout:   viper.GetDuration("timeout"),
			UserAgent: viper.GetString("user-agent"),
		},
		SearchURL:     searchURL,
		DBPath:        viper.GetString("db"),
		MaxPages:      viper.GetInt("max-pages"),
		LimitArticles: viper.GetInt("limit-articles"),
		Concurrency:   viper.GetInt("concurrency"),
		Rate:          viper.GetFloat64("rate"),
		Resume:        !viper.GetBool("no-resume"),
	}

	log := newRunLogger("crawl")

	s, err := store.NewStore(cfg.DBPath)
	if err != nil {
		return err
	}
	defer s.Close()

	client := httputil.NewClient(cfg.HTTPConfig)
	pacer := dispatch.NewPacer(cfg.Rate)
	ctx := context.Background()

	// With --seeds the export covers every seed's rows, so the scope
	// filter stays empty.
	scope := cfg.SearchURL
	var (
		summary crawl.Summary
		runErr  error
	)
	if seedsPath != "" {
		seeds, err := crawl.LoadSeeds(seedsPath)
		if err != nil {
			return err
		}
		scope = ""
		summary, runErr = crawl.RunSeeds(ctx, s, client, pacer, cfg, seeds, log, os.Stdout)
	} else {
		summary, runErr = crawl.New(s, client, pacer, cfg, log).Run(ctx, os.Stdout)
	}

	printCrawlSummary(os.Stdout, summary)
	if runErr != nil {
		return runErr
	}

	if exportFormat != "" {
		outPath := viper.GetString("export-path")
		if outPath == "" {
			outPath = export.DefaultPath(exportFormat)
		}
		rows, err := s.ArticlesForExport(ctx, scope)
		if err != nil {
			return err
		}
		if err := export.WriteFile(outPath, exportFormat, rows); err != nil {
			return err
		}
		fmt.Fprintf(os.Stdout, "exported %d articles to %s\n", len(rows), outPath)
	}

	if summary.HasFailures() {
		return fmt.Errorf("%d article(s) failed", summary.Failed)
	}
	return nil
}

func printCrawlSummary(w io.Writer, sum crawl.Summary) {
	fmt.Fprintf(w, "\npages: %d, discovered: %d, persisted: %d, skipped: %d, failed: %d\n",
		sum.Pages, sum.Discovered, sum.Persisted, sum.Skipped, sum.Failed)
}
