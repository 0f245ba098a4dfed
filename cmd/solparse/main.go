package main

import (
	"encoding/json"
	"log/slog"
	"os"
	"time"

	"github.com/soltools/sol-viewer/internal/common"
	"github.com/soltools/sol-viewer/internal/extract"
	"github.com/soltools/sol-viewer/internal/parser"
)

// solparse tokenizes a single vault file and prints what it recovered,
// without touching the database. Handy for poking at one file.
func main() {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))
	slog.SetDefault(logger)

	if len(os.Args) != 2 {
		logger.Error("usage", "cmd", "solparse <path-to-sol-file>")
		os.Exit(2)
	}
	path := os.Args[1]

	cfg := common.LoadConfig()

	start := time.Now()
	outcome := parser.ParseFileWithTimeout(path, parser.Options{
		MaxBytes: cfg.Parser.MaxBytes,
		Timeout:  cfg.Parser.Timeout,
		Logger:   logger,
	})
	dur := time.Since(start)

	if !outcome.Complete() {
		logger.Warn("tokenize did not complete",
			"path", path,
			"flag", outcome.Flag,
			"status", outcome.Status,
			"tokens", len(outcome.Tokens),
			"duration_ms", dur.Milliseconds(),
		)
	}
	if outcome.Flag == parser.FlagErrored || outcome.Flag == parser.FlagTimedOut {
		os.Exit(1)
	}

	rules, err := extract.LoadRules(cfg.Parser.RulesPath)
	if err != nil {
		logger.Error("load extraction rules", "path", cfg.Parser.RulesPath, "error", err)
		os.Exit(2)
	}
	creds := extract.NewExtractor(rules, logger).Extract(outcome.Tokens).Credentials()

	out, _ := json.MarshalIndent(struct {
		Path       string `json:"path"`
		Flag       string `json:"flag"`
		TokenCount int    `json:"token_count"`
		Email      string `json:"email"`
		Password   string `json:"password"`
		DurationMS int64  `json:"duration_ms"`
	}{
		Path:       path,
		Flag:       string(outcome.Flag),
		TokenCount: len(outcome.Tokens),
		Email:      creds.Email,
		Password:   creds.Password,
		DurationMS: dur.Milliseconds(),
	}, "", "  ")
	os.Stdout.Write(append(out, '\n'))
}
