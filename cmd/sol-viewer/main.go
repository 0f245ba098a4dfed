package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/soltools/sol-viewer/internal/async"
	"github.com/soltools/sol-viewer/internal/common"
	"github.com/soltools/sol-viewer/internal/discovery"
	"github.com/soltools/sol-viewer/internal/extract"
	"github.com/soltools/sol-viewer/internal/pipeline"
	"github.com/soltools/sol-viewer/internal/pipeline/fields"
	"github.com/soltools/sol-viewer/internal/pipeline/tokenize"
	repo "github.com/soltools/sol-viewer/internal/repository"
)

func main() {
	// Structured logger that outputs messages with variables but no time/level
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
		ReplaceAttr: func(groups []string, a slog.Attr) slog.Attr {
			if a.Key == slog.TimeKey || a.Key == slog.LevelKey {
				return slog.Attr{}
			}
			return a
		},
	}))
	slog.SetDefault(logger)

	cfg := common.LoadConfig()
	if err := cfg.Validate(); err != nil {
		logger.Error("invalid configuration", "error", err)
		os.Exit(2)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	drv, pool, err := repo.Open(ctx, repo.Config{
		DSN:              cfg.Database.DSN,
		MaxConns:         cfg.Database.MaxConns,
		MinConns:         cfg.Database.MinConns,
		MaxConnLifetime:  cfg.Database.MaxConnLifetime,
		MaxConnIdleTime:  cfg.Database.MaxConnIdleTime,
		DialTimeout:      cfg.Database.DialTimeout,
		StatementTimeout: cfg.Database.StatementTimeout,
	}, logger)
	if err != nil {
		logger.Error("failed to open database", "error", err, "db_url", cfg.Database.DSN)
		os.Exit(1)
	}
	defer repo.Close(drv, pool, logger)

	if err := repo.Migrate(ctx, drv); err != nil {
		logger.Error("failed to migrate database", "error", err)
		os.Exit(1)
	}
	if err := repo.HealthCheck(ctx, drv, 5*time.Second, logger); err != nil {
		logger.Error("failed to ping database", "error", err)
		os.Exit(1)
	}

	filesRepo := repo.NewVaultFileRepository(drv, logger)
	jobsRepo := repo.NewParseJobRepository(drv, logger)

	rules, err := extract.LoadRules(cfg.Parser.RulesPath)
	if err != nil {
		logger.Error("failed to load extraction rules", "path", cfg.Parser.RulesPath, "error", err)
		os.Exit(2)
	}
	extractor := extract.NewExtractor(rules, logger)

	tokPipe := tokenize.NewPipeline(filesRepo, jobsRepo, tokenize.Config{
		MaxBytes: cfg.Parser.MaxBytes,
		Timeout:  cfg.Parser.Timeout,
	}, logger)
	fldPipe := fields.NewPipeline(logger, jobsRepo, extractor)
	processor := pipeline.NewProcessor(logger, tokPipe, fldPipe)

	queue := async.NewProcessorQueue(processor, logger,
		async.WithWorkers(cfg.Workers.Workers),
		async.WithQueueSize(cfg.Workers.QueueSize),
		async.WithProcessTimeout(cfg.Workers.ProcessTimeout),
	)

	roots := cfg.Discovery.Roots
	if len(roots) == 0 {
		roots = discovery.VaultRoots()
	}

	candidates, err := discovery.FindVaultFiles(roots, cfg.Discovery.NameFilter)
	if err != nil {
		logger.Error("vault scan failed", "error", err)
		os.Exit(1)
	}
	// a bare file named "sol" dropped in the working directory also counts
	if cwd, err := os.Getwd(); err == nil {
		if c, ok := discovery.ExplicitVault(cwd); ok {
			candidates = append(candidates, c)
		}
	}
	logger.Info("vault scan complete", "roots", len(roots), "candidates", len(candidates))

	ingestor := discovery.NewIngestor(filesRepo, logger)
	rows, stats := ingestor.IngestCandidates(ctx, candidates)
	logger.Info("ingest complete",
		"scanned", stats.Scanned,
		"succeeded", stats.Succeeded,
		"failed", stats.Failed,
		"deduplicated", stats.Deduplicated,
	)

	for _, row := range rows {
		_ = queue.Enqueue(ctx, async.Job{FileID: row.ID, SubmittedAt: time.Now()})
	}

	if os.Getenv("WATCH") == "1" {
		runWatch(ctx, queue, ingestor, roots, cfg, logger)
	}

	queue.Shutdown(context.Background())
	report(ctx, jobsRepo, logger)
}

// runWatch keeps enqueueing vault files as they appear until the
// context is cancelled.
func runWatch(ctx context.Context, queue async.Queue, ingestor *discovery.Ingestor, roots []string, cfg *common.Config, logger *slog.Logger) {
	evCh, errCh, err := discovery.StartWatcher(ctx, discovery.WatchConfig{
		Roots:      roots,
		NameFilter: cfg.Discovery.NameFilter,
		Debounce:   cfg.Discovery.Debounce,
	}, logger)
	if err != nil {
		logger.Error("watcher start failed", "error", err)
		return
	}
	logger.Info("watching for vault files", "roots", len(roots))

	for {
		select {
		case <-ctx.Done():
			return
		case path, ok := <-evCh:
			if !ok {
				return
			}
			row, dedup, err := ingestor.IngestPath(ctx, path)
			if err != nil {
				logger.Error("ingest failed", "path", path, "error", err)
				continue
			}
			_ = queue.Enqueue(ctx, async.Job{FileID: row.ID, Force: dedup, SubmittedAt: time.Now()})
		case werr, ok := <-errCh:
			if ok && werr != nil {
				logger.Error("watcher error", "error", werr)
			}
		}
	}
}

func report(ctx context.Context, jobsRepo repo.ParseJobRepository, logger *slog.Logger) {
	reports, err := jobsRepo.ListReports(ctx)
	if err != nil {
		logger.Error("report query failed", "error", err)
		return
	}
	for _, rep := range reports {
		logger.Info("vault",
			"path", rep.SourcePath,
			"status", rep.Job.Status,
			"email", deref(rep.Job.Email),
			"password", deref(rep.Job.Password),
			"tokens", rep.Job.TokenCount,
		)
	}
	logger.Info("done", "vaults", len(reports))
}

func deref(v *string) string {
	if v == nil {
		return ""
	}
	return *v
}
