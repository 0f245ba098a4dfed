package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"time"

	"github.com/soltools/sol-viewer/internal/common"
	"github.com/soltools/sol-viewer/internal/export"
	repo "github.com/soltools/sol-viewer/internal/repository"
)

// solexport writes every stored parse job to an XLSX workbook.
func main() {
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))
	slog.SetDefault(logger)

	outPath := "sol-viewer-export.xlsx"
	if len(os.Args) > 1 {
		outPath = os.Args[1]
	}

	cfg := common.LoadConfig()
	if err := cfg.Validate(); err != nil {
		logger.Error("invalid configuration", "error", err)
		os.Exit(2)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	drv, pool, err := repo.Open(ctx, repo.Config{
		DSN:             cfg.Database.DSN,
		MaxConns:        cfg.Database.MaxConns,
		MinConns:        cfg.Database.MinConns,
		MaxConnLifetime: cfg.Database.MaxConnLifetime,
		MaxConnIdleTime: cfg.Database.MaxConnIdleTime,
		DialTimeout:     cfg.Database.DialTimeout,
	}, logger)
	if err != nil {
		logger.Error("failed to open database", "error", err)
		os.Exit(1)
	}
	defer repo.Close(drv, pool, logger)

	if err := repo.Migrate(ctx, drv); err != nil {
		logger.Error("failed to migrate database", "error", err)
		os.Exit(1)
	}

	jobsRepo := repo.NewParseJobRepository(drv, logger)
	svc := export.NewService(jobsRepo, logger)

	start := time.Now()
	b, err := svc.ExportJobsXLSX(ctx)
	if err != nil {
		logger.Error("export failed", "error", err)
		os.Exit(1)
	}
	if err := os.WriteFile(outPath, b, 0o644); err != nil {
		logger.Error("write workbook", "path", outPath, "error", err)
		os.Exit(1)
	}
	logger.Info("export written",
		"path", outPath,
		"bytes", len(b),
		"elapsed_ms", time.Since(start).Milliseconds(),
	)
}
