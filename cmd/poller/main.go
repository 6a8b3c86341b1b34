// Package main is the entry point for the dawn patrol poller.
//
// The poller runs the ingest/evaluate/publish cycle for every configured
// site on a fixed interval: fetch station history, store new samples,
// evaluate the five-factor model, and publish GO/SKIP decisions to SQS.
//
// Flags:
//
//	-once      run a single poll cycle and exit (cron-friendly)
//	-archive   archive yesterday's samples to cold storage and exit
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	awsv2 "github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/cloudwatch"
	"github.com/aws/aws-sdk-go-v2/service/sqs"
	"golang.org/x/sync/errgroup"

	"dawnpatrol/internal/archive"
	"dawnpatrol/internal/config"
	"dawnpatrol/internal/db"
	"dawnpatrol/internal/engine"
	"dawnpatrol/internal/metrics"
	"dawnpatrol/internal/queue"
	"dawnpatrol/internal/service"
	"dawnpatrol/internal/upstream"
)

// maxConcurrentSites bounds how many sites are polled in parallel in one
// cycle, keeping upstream load and pool pressure predictable.
const maxConcurrentSites = 4

func main() {
	once := flag.Bool("once", false, "run a single poll cycle and exit")
	archiveMode := flag.Bool("archive", false, "archive yesterday's samples and exit")
	flag.Parse()

	if err := run(*once, *archiveMode); err != nil {
		fmt.Fprintf(os.Stderr, "fatal: %v\n", err)
		os.Exit(1)
	}
}

func run(once, archiveMode bool) error {
	cfg, err := config.LoadConfig()
	if err != nil {
		return fmt.Errorf("loading configuration: %w", err)
	}

	logger := newLogger(cfg.LogLevel)
	logger.Info("dawn patrol poller starting",
		"environment", cfg.Environment,
		"version", cfg.Build.Version,
		"interval", cfg.Engine.PollInterval.String(),
		"once", once,
		"archive", archiveMode,
	)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	pool, err := db.NewPool(ctx, cfg.Database)
	if err != nil {
		return fmt.Errorf("connecting database: %w", err)
	}
	defer pool.Close()

	sites := db.NewSiteRepository(pool)
	samples := db.NewSampleRepository(pool)

	if archiveMode {
		return runArchiver(ctx, cfg, sites, samples, logger)
	}

	evaluator, telemetry, err := buildEvaluator(ctx, cfg, sites, samples, logger)
	if err != nil {
		return err
	}

	if once {
		return pollAllSites(ctx, cfg, evaluator, telemetry, logger)
	}

	ticker := time.NewTicker(cfg.Engine.PollInterval)
	defer ticker.Stop()

	for {
		if err := pollAllSites(ctx, cfg, evaluator, telemetry, logger); err != nil {
			logger.Error("poll cycle failed", "error", err)
		}

		select {
		case <-ctx.Done():
			logger.Info("poller stopping")
			return nil
		case <-ticker.C:
		}
	}
}

// buildEvaluator wires the evaluator with upstream clients and, when
// enabled, the SQS decision publisher and CloudWatch metric sinks.
func buildEvaluator(ctx context.Context, cfg *config.Config, sites *db.SiteRepository, samples *db.SampleRepository, logger *slog.Logger) (*service.Evaluator, *metrics.Publisher, error) {
	httpClient := &http.Client{Timeout: cfg.Upstream.Timeout}
	retry := upstream.DefaultRetryPolicy()
	retry.MaxRetries = cfg.Upstream.MaxRetries
	stationBase := upstream.NewBaseClient(httpClient, "station", retry, cfg.Upstream.UserAgent)
	forecastBase := upstream.NewBaseClient(httpClient, "forecast", retry, cfg.Upstream.UserAgent)

	evaluator := &service.Evaluator{
		Sites:     sites,
		Samples:   samples,
		Telemetry: upstream.NewStationClient(stationBase, cfg.Upstream.StationBaseURL),
		Forecasts: upstream.NewForecastClient(forecastBase, cfg.Upstream.ForecastBaseURL),
		Policy: engine.DecisionPolicy{
			GoProbability:   cfg.Engine.GoProbability,
			GoConfidence:    cfg.Engine.GoConfidence,
			SkipProbability: cfg.Engine.SkipProbability,
		},
		Log: logger,
	}

	needsAWS := (cfg.Feature.EnablePublish && cfg.AWS.DecisionQueueURL != "") || cfg.Feature.EnableMetrics
	if !needsAWS {
		return evaluator, nil, nil
	}

	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, awsconfig.WithRegion(cfg.AWS.Region))
	if err != nil {
		return nil, nil, fmt.Errorf("loading AWS configuration: %w", err)
	}

	var metricPub *metrics.Publisher
	if cfg.Feature.EnableMetrics {
		cwClient := cloudwatch.NewFromConfig(awsCfg, func(o *cloudwatch.Options) {
			if cfg.AWS.EndpointURL != "" {
				o.BaseEndpoint = awsv2.String(cfg.AWS.EndpointURL)
			}
		})
		metricPub = metrics.NewPublisher(cwClient, cfg.AWS.MetricNamespace, logger)
		evaluator.Metrics = metricPub
	}

	if cfg.Feature.EnablePublish && cfg.AWS.DecisionQueueURL != "" {
		sqsClient := sqs.NewFromConfig(awsCfg, func(o *sqs.Options) {
			if cfg.AWS.EndpointURL != "" {
				o.BaseEndpoint = awsv2.String(cfg.AWS.EndpointURL)
			}
		})
		evaluator.Decisions = queue.NewDecisionPublisher(sqsClient, cfg.AWS.DecisionQueueURL, logger)
	}

	return evaluator, metricPub, nil
}

// pollAllSites runs one cycle across every site with bounded concurrency.
// Per-site failures are logged and do not abort the cycle.
func pollAllSites(ctx context.Context, cfg *config.Config, evaluator *service.Evaluator, metricPub *metrics.Publisher, logger *slog.Logger) error {
	start := time.Now()

	all, err := evaluator.Sites.List(ctx)
	if err != nil {
		return fmt.Errorf("listing sites: %w", err)
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(maxConcurrentSites)

	for _, site := range all {
		g.Go(func() error {
			report, err := evaluator.Poll(gctx, site.ID)
			if err != nil {
				logger.Error("site poll failed", "site_id", site.ID, "error", err)
				return nil
			}
			logger.Info("site evaluated",
				"site_id", site.ID,
				"recommendation", string(report.Decision.Recommendation),
				"probability", report.Decision.Probability,
				"confidence", report.Decision.Confidence,
				"stale", report.Conditions.Stale,
			)
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return err
	}

	if metricPub != nil {
		metricPub.RecordPollLatency(ctx, time.Since(start))
	}
	logger.Info("poll cycle complete", "sites", len(all), "duration", time.Since(start))
	return nil
}

// runArchiver snapshots yesterday's samples for every site into the cold
// storage directory and exits.
func runArchiver(ctx context.Context, cfg *config.Config, sites *db.SiteRepository, samples *db.SampleRepository, logger *slog.Logger) error {
	writer := archive.NewWriter(cfg.Engine.ArchiveDir, logger)

	all, err := sites.List(ctx)
	if err != nil {
		return fmt.Errorf("listing sites: %w", err)
	}

	for _, site := range all {
		loc, err := time.LoadLocation(site.Timezone)
		if err != nil {
			logger.Error("skipping site with invalid timezone",
				"site_id", site.ID, "timezone", site.Timezone, "error", err)
			continue
		}

		now := time.Now().In(loc)
		dayStart := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, loc).AddDate(0, 0, -1)
		dayEnd := dayStart.AddDate(0, 0, 1)

		series, err := samples.ListRange(ctx, site.ID, dayStart, dayEnd)
		if err != nil {
			return fmt.Errorf("loading samples for site %s: %w", site.ID, err)
		}

		if _, err := writer.WriteDay(site.ID, dayStart, series); err != nil {
			return fmt.Errorf("archiving site %s: %w", site.ID, err)
		}
	}

	logger.Info("archive run complete", "sites", len(all))
	return nil
}

// newLogger creates a structured slog.Logger for the given log level.
func newLogger(level string) *slog.Logger {
	var lvl slog.Level
	switch level {
	case "debug":
		lvl = slog.LevelDebug
	case "warn":
		lvl = slog.LevelWarn
	case "error":
		lvl = slog.LevelError
	default:
		lvl = slog.LevelInfo
	}

	return slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: lvl}))
}
