package main

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"catalog-reconciler/config"
	"catalog-reconciler/ingest"
	"catalog-reconciler/models"
	"catalog-reconciler/scraper/shopify"
	"catalog-reconciler/services"
	"catalog-reconciler/storage"
	"catalog-reconciler/utils"
)

var rootCmd = &cobra.Command{
	Use:   "catalog-reconciler",
	Short: "Reconcile scattered apparel product scrapes into one canonical catalog",
	Long: "catalog-reconciler ingests raw product batches from browser exports, " +
		"site crawlers and storefront feeds, deduplicates and classifies them, " +
		"and syncs the canonical record set to PostgreSQL.",
}

var (
	flagData     string
	flagStrategy string
	flagBrand    string
)

func main() {
	reconcileCmd := &cobra.Command{
		Use:   "reconcile",
		Short: "Merge raw batch files into a canonical catalog and write it for audit",
		RunE:  runReconcile,
	}
	reconcileCmd.Flags().StringVar(&flagData, "data", "", "glob of raw batch files (default from DATA_GLOB)")
	reconcileCmd.Flags().StringVar(&flagStrategy, "strategy", "", "canonical key strategy: url or image")

	uploadCmd := &cobra.Command{
		Use:   "upload [canonical.json]",
		Short: "Sync a canonical record set to the store (reconciles first when no file is given)",
		Args:  cobra.MaximumNArgs(1),
		RunE:  runUpload,
	}
	uploadCmd.Flags().StringVar(&flagData, "data", "", "glob of raw batch files (default from DATA_GLOB)")
	uploadCmd.Flags().StringVar(&flagStrategy, "strategy", "", "canonical key strategy: url or image")

	scrapeCmd := &cobra.Command{
		Use:   "scrape",
		Short: "Collect raw batches from storefront feeds and collection pages",
		RunE:  runScrape,
	}

	statsCmd := &cobra.Command{
		Use:   "stats",
		Short: "Print catalog distribution and price statistics from the store",
		RunE:  runStats,
	}

	clearCmd := &cobra.Command{
		Use:   "clear",
		Short: "Delete stored products, optionally scoped to one brand",
		RunE:  runClear,
	}
	clearCmd.Flags().StringVar(&flagBrand, "brand", "", "only delete this brand (empty deletes everything)")

	rootCmd.AddCommand(reconcileCmd, uploadCmd, scrapeCmd, statsCmd, clearCmd)

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func setup() (*config.Config, *utils.Logger) {
	logger := utils.NewLogger()
	cfg := config.Load()
	if cfg.Debug {
		logger.EnableDebug()
	}
	return cfg, logger
}

// reconcile loads raw batches and runs the full reconciliation pipeline.
func reconcile(cfg *config.Config, logger *utils.Logger) (*services.RunResult, error) {
	glob := cfg.DataGlob
	if flagData != "" {
		glob = flagData
	}
	strategyName := cfg.KeyStrategy
	if flagStrategy != "" {
		strategyName = flagStrategy
	}
	strategy, err := services.ParseKeyStrategy(strategyName)
	if err != nil {
		return nil, err
	}

	batches, err := ingest.NewLoader(logger).LoadGlob(glob)
	if err != nil {
		return nil, err
	}

	normalizer := services.NewNormalizer(services.Defaults{
		Currency: cfg.DefaultCurrency,
		Brand:    cfg.Brand,
	})
	assembler := services.NewAssembler(normalizer, services.NewResolver(strategy), logger)

	result, err := assembler.Assemble(batches)
	if err != nil {
		return nil, err
	}

	logger.Info("Reconciled %d batches into %d canonical records (run %s)",
		len(result.Batches), len(result.Records), result.RunID)
	return result, nil
}

func runReconcile(cmd *cobra.Command, args []string) error {
	cfg, logger := setup()

	result, err := reconcile(cfg, logger)
	if err != nil {
		return err
	}

	jsonPath := filepath.Join(cfg.AuditDir,
		fmt.Sprintf("catalog_%s_%s.json", time.Now().Format("20060102_150405"), shortID(result.RunID)))
	jsonWriter, err := storage.NewJSONWriter(jsonPath)
	if err != nil {
		return err
	}
	if err := jsonWriter.WriteRecords(result.Records); err != nil {
		return err
	}
	logger.Info("Canonical catalog written to %s", jsonPath)

	csvPath := strings.TrimSuffix(jsonPath, ".json") + ".csv"
	csvWriter, err := storage.NewCSVWriter(csvPath)
	if err != nil {
		return err
	}
	defer csvWriter.Close()
	if err := csvWriter.WriteRecords(result.Records); err != nil {
		return err
	}
	logger.Info("CSV export written to %s", csvPath)

	svc := services.NewInsightService(logger)
	svc.Print(svc.Generate(result.Records))
	return nil
}

func runUpload(cmd *cobra.Command, args []string) error {
	cfg, logger := setup()

	var records []models.Record
	if len(args) == 1 {
		var err error
		if records, err = storage.ReadRecords(args[0]); err != nil {
			return err
		}
		logger.Info("Loaded %d canonical records from %s", len(records), args[0])
	} else {
		result, err := reconcile(cfg, logger)
		if err != nil {
			return err
		}
		records = result.Records
	}

	store, err := storage.NewPostgresStore(cfg.DSN())
	if err != nil {
		return fmt.Errorf("connect to store: %w", err)
	}
	defer store.Close()

	report := services.NewUploader(store, cfg.UploadBatchSize, logger).Upload(records)
	logger.Info("Upload done — accepted=%d duplicates=%d invalid=%d failed=%d",
		report.Accepted, report.SkippedDuplicate, report.SkippedInvalid, report.Failed)

	// Verify what actually landed.
	stored, err := store.Count()
	if err != nil {
		logger.Warn("Could not verify upload: %v", err)
		return nil
	}
	logger.Info("Store now holds %d products (local canonical set: %d)", stored, len(records))
	return nil
}

func runScrape(cmd *cobra.Command, args []string) error {
	cfg, logger := setup()

	if len(cfg.ShopifyStores) == 0 && len(cfg.CollectionURLs) == 0 {
		return fmt.Errorf("nothing to scrape: set SHOPIFY_STORES and/or COLLECTION_URLS")
	}

	feed := shopify.NewFeedClient(cfg, logger)
	for _, store := range cfg.ShopifyStores {
		records, err := feed.FetchStore(store, cfg.MaxProducts)
		if err != nil {
			logger.Error("Feed scrape of %s failed: %v", store, err)
		}
		if len(records) == 0 {
			continue
		}
		if err := writeRawBatch(cfg, sanitize(store), records); err != nil {
			return err
		}
	}

	if len(cfg.CollectionURLs) > 0 {
		browser := shopify.NewBrowserScraper(cfg, logger)
		records, err := browser.ScrapeCollections(cfg.CollectionURLs)
		if err != nil {
			logger.Error("Browser scrape failed: %v", err)
		}
		if len(records) > 0 {
			if err := writeRawBatch(cfg, "collections", records); err != nil {
				return err
			}
		}
	}

	logger.Info("Scrape complete — raw batches are ready for `reconcile`")
	return nil
}

func runStats(cmd *cobra.Command, args []string) error {
	cfg, logger := setup()

	store, err := storage.NewPostgresStore(cfg.DSN())
	if err != nil {
		return fmt.Errorf("connect to store: %w", err)
	}
	defer store.Close()

	records, err := store.FetchAll()
	if err != nil {
		return err
	}

	svc := services.NewInsightService(logger)
	svc.Print(svc.Generate(records))
	return nil
}

func runClear(cmd *cobra.Command, args []string) error {
	cfg, logger := setup()

	store, err := storage.NewPostgresStore(cfg.DSN())
	if err != nil {
		return fmt.Errorf("connect to store: %w", err)
	}
	defer store.Close()

	n, err := store.DeleteByBrand(flagBrand)
	if err != nil {
		return err
	}
	if flagBrand == "" {
		logger.Info("Deleted all %d stored products", n)
	} else {
		logger.Info("Deleted %d stored products for brand %q", n, flagBrand)
	}
	return nil
}

// writeRawBatch saves scraped records as a raw batch file in the data
// directory so the reconciler picks them up on the next run.
func writeRawBatch(cfg *config.Config, source string, records []models.Record) error {
	dir := filepath.Dir(cfg.DataGlob)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("create data dir: %w", err)
	}

	path := filepath.Join(dir, fmt.Sprintf("%s_%s.json", source, time.Now().Format("20060102_150405")))
	data, err := json.MarshalIndent(records, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal raw batch: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("write raw batch: %w", err)
	}
	return nil
}

func sanitize(s string) string {
	return strings.Map(func(r rune) rune {
		if r >= 'a' && r <= 'z' || r >= 'A' && r <= 'Z' || r >= '0' && r <= '9' {
			return r
		}
		return '_'
	}, s)
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}
