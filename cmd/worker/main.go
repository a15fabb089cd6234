package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/robfig/cron/v3"

	"tagus-watch/analyzer"
	"tagus-watch/config"
	"tagus-watch/db"
	"tagus-watch/fetcher"
	"tagus-watch/pipeline"
	"tagus-watch/prefilter"
	"tagus-watch/ratelimit"
	"tagus-watch/repositories"
	"tagus-watch/retry"
	"tagus-watch/scraper"
)

func main() {
	config.InitApp()
	cfg := config.GetConfig()
	config.InitLogger(cfg.Logging)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := db.Init(ctx); err != nil {
		config.Logger.Errorf("mongo init failed: %v", err)
		os.Exit(1)
	}
	defer db.Client().Disconnect(context.Background())

	apiKey := os.Getenv("GEMINI_API_KEY")
	if apiKey == "" {
		config.Logger.Error("GEMINI_API_KEY must be set")
		os.Exit(1)
	}
	ai, err := analyzer.NewGeminiClient(ctx, apiKey, cfg.AI.Model)
	if err != nil {
		config.Logger.Errorf("gemini client init failed: %v", err)
		os.Exit(1)
	}

	limiter := ratelimit.FromConfig(cfg.RateLimit)
	policy := retry.FromConfig(cfg.Retry)

	source, err := fetcher.New(limiter, policy, cfg.Facebook)
	if err != nil {
		config.Logger.Errorf("fetcher init failed: %v", err)
		os.Exit(1)
	}

	database := db.Database()
	pipe := pipeline.New(
		analyzer.NewClassifier(ai, limiter),
		analyzer.NewEnricher(ai, limiter),
		scraper.NewPermalinkScraper(),
		repositories.NewComplaintRepository(database),
		repositories.NewAILogRepository(database),
		prefilter.FromName(cfg.PreFilter.Profile),
		pipeline.Options{
			Model:           cfg.AI.Model,
			StrictSanitizer: cfg.PreFilter.StrictSanitizer,
		},
	)
	batch := pipeline.NewBatchProcessor(source, pipe,
		time.Duration(cfg.Batch.CacheValidityMinutes)*time.Minute)

	var runs, failures int
	runBatch := func() {
		runs++
		err := policy.Do(ctx, func(ctx context.Context) error {
			_, err := batch.Run(ctx)
			return err
		})
		if err != nil {
			failures++
			config.ErrorWithFields("batch run failed", config.Fields{
				"run":   runs,
				"error": err.Error(),
			})
		}
		if runs%5 == 0 {
			config.InfoWithFields("worker health", config.Fields{
				"runs":     runs,
				"failures": failures,
			})
		}
	}

	config.InfoWithFields("worker starting", config.Fields{
		"interval_seconds": cfg.Scheduler.IntervalSeconds,
		"model":            cfg.AI.Model,
	})

	// One immediate run, then on the fixed interval.
	runBatch()

	c := cron.New()
	schedule := "@every " + (time.Duration(cfg.Scheduler.IntervalSeconds) * time.Second).String()
	if _, err := c.AddFunc(schedule, runBatch); err != nil {
		config.Logger.Errorf("scheduler init failed: %v", err)
		os.Exit(1)
	}
	c.Start()

	<-ctx.Done()
	config.Logger.Info("shutting down worker")
	<-c.Stop().Done()
}
