package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"listing-optimizer/cache"
	"listing-optimizer/config"
	"listing-optimizer/pipeline"
	"listing-optimizer/scraper"
	"listing-optimizer/services"
	"listing-optimizer/storage"
	"listing-optimizer/utils"
)

func main() {
	logger := utils.NewLogger()
	cfg := config.Load()
	logger.SetLevel(utils.ParseLevel(cfg.LogLevel))

	if err := cfg.Validate(); err != nil {
		logger.Error("Invalid configuration: %v", err)
		os.Exit(1)
	}

	urls := cfg.ListingURLs
	if len(os.Args) > 1 {
		urls = os.Args[1:]
	}
	if len(urls) == 0 {
		logger.Error("No listing URLs given. Usage: listing-optimizer <url> [url...] (or set LISTING_URLS)")
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	logger.Info("=== Listing Optimizer starting ===")
	logger.Info("Config: listings: %d | fetch: %s | rate: %dms | retries: %d | concurrency: %d/%d",
		len(urls), cfg.FetchMode, cfg.RateLimitMs, cfg.MaxRetries, cfg.PipelineConcurrency, cfg.MaxConcurrency)

	templates, err := config.LoadTemplates(cfg.TemplatesFile)
	if err != nil {
		logger.Error("Failed to load templates: %v", err)
		os.Exit(1)
	}

	clock := utils.RealClock()
	var c cache.Cache = cache.NewMemoryCache(clock)
	if cfg.RedisAddr != "" {
		rc, err := cache.NewRedisCache(ctx, cache.RedisOptions{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
		})
		if err != nil {
			logger.Warn("Redis unavailable, using in-memory cache: %v", err)
		} else {
			defer rc.Close()
			c = rc
			logger.Info("Using Redis cache at %s", cfg.RedisAddr)
		}
	}

	var transport scraper.Transport
	if cfg.FetchMode == "browser" {
		bt := scraper.NewBrowserTransport(cfg.ChromeBin, cfg.RequestTimeout)
		defer bt.Close()
		transport = bt
	} else {
		transport = scraper.NewHTTPTransport(scraper.HTTPOptions{
			Timeout:          cfg.RequestTimeout,
			CloudflareBypass: cfg.CloudflareBypass,
		})
	}

	deps := pipeline.Deps{
		Cache:   c,
		Limiter: utils.NewRateLimiter(1, time.Duration(cfg.RateLimitMs)*time.Millisecond),
		Clock:   clock,
		Logger:  logger,
	}
	p := pipeline.Build(deps, transport, pipeline.Options{
		TemplateID: cfg.TemplateID,
		Templates:  templates,
		Fetch: scraper.Options{
			Retry: utils.RetryPolicy{
				MaxAttempts: cfg.MaxRetries,
				BaseDelay:   time.Duration(cfg.RetryBaseMs) * time.Millisecond,
				MaxDelay:    time.Duration(cfg.RetryMaxMs) * time.Millisecond,
			},
			CacheTTL:   cfg.FetchCacheTTL,
			UserAgents: cfg.UserAgents,
		},
		Research: services.ResearchOptions{
			TargetCount: cfg.ComparableTarget,
			CacheTTL:    cfg.ResearchCacheTTL,
		},
		Optimizer:    services.DefaultOptimizerConfig(),
		ResearchGate: utils.NewGate(cfg.MaxConcurrency),
	})

	writers := openWriters(cfg, logger)
	defer func() {
		for _, w := range writers {
			_ = w.Close()
		}
	}()

	outcomes := p.RunAll(ctx, urls, cfg.PipelineConcurrency)
	results, failures := pipeline.Split(outcomes)

	for _, r := range results {
		services.PrintResult(os.Stdout, r)
	}

	if len(results) > 0 {
		for _, w := range writers {
			if err := w.Write(results); err != nil {
				logger.Error("[storage] Write failed: %v", err)
			}
		}
		logger.Info("[storage] %d results saved to %s", len(results), cfg.CSVOutputPath)
	}

	insightSvc := services.NewInsightService(logger)
	insightSvc.Print(os.Stdout, insightSvc.Generate(results, failures))

	fmt.Printf("  Done. %d optimized, %d failed | CSV → %s\n\n", len(results), len(failures), cfg.CSVOutputPath)
	if len(results) == 0 {
		os.Exit(1)
	}
}

// openWriters opens every configured storage backend. A backend that cannot be
// opened is logged and skipped.
func openWriters(cfg *config.Config, logger *utils.Logger) []storage.ResultWriter {
	var writers []storage.ResultWriter

	csvWriter, err := storage.NewCSVWriter(cfg.CSVOutputPath)
	if err != nil {
		logger.Error("Failed to create CSV writer: %v", err)
	} else {
		writers = append(writers, csvWriter)
	}

	if cfg.PostgresEnabled {
		pgWriter, err := storage.NewPostgresWriter(cfg.DSN())
		if err != nil {
			logger.Error("Failed to connect to PostgreSQL: %v", err)
			logger.Error("Check the POSTGRES_* settings or set POSTGRES_ENABLED=false")
		} else {
			writers = append(writers, pgWriter)
			logger.Info("Results will be stored in PostgreSQL (table: optimized_listings)")
		}
	}

	if cfg.SQLitePath != "" {
		sqliteWriter, err := storage.NewSQLiteWriter(cfg.SQLitePath)
		if err != nil {
			logger.Error("Failed to open SQLite database: %v", err)
		} else {
			writers = append(writers, sqliteWriter)
			logger.Info("Results will be stored in SQLite at %s", cfg.SQLitePath)
		}
	}
	return writers
}
