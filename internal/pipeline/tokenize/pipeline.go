package tokenize

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/soltools/sol-viewer/internal/parser"
	"github.com/soltools/sol-viewer/internal/repository"
)

// Config bounds each tokenizer invocation.
type Config struct {
	MaxBytes int
	Timeout  time.Duration
}

type Pipeline struct {
	FilesRepo repository.VaultFileRepository
	JobsRepo  repository.ParseJobRepository
	Cfg       Config
	Log       *slog.Logger
}

func NewPipeline(files repository.VaultFileRepository, jobs repository.ParseJobRepository, cfg Config, log *slog.Logger) *Pipeline {
	if log == nil {
		log = slog.Default()
	}
	return &Pipeline{FilesRepo: files, JobsRepo: jobs, Cfg: cfg, Log: log}
}

// Run starts a parse_job for fileID, tokenizes the file under the
// configured byte cap and timeout, and persists the outcome. Field
// extraction is NOT called here.
func (p *Pipeline) Run(ctx context.Context, fileID uuid.UUID) (uuid.UUID, parser.Outcome, error) {
	row, err := p.FilesRepo.GetByID(ctx, fileID)
	if err != nil {
		return uuid.Nil, parser.Outcome{}, fmt.Errorf("get file: %w", err)
	}

	job, err := p.JobsRepo.Start(ctx, row.ID)
	if err != nil {
		return uuid.Nil, parser.Outcome{}, err
	}

	out := parser.ParseFileWithTimeout(row.SourcePath, parser.Options{
		MaxBytes: p.Cfg.MaxBytes,
		Timeout:  p.Cfg.Timeout,
		Logger:   p.Log,
	})

	// timed-out and errored outcomes are terminal: there is no token
	// stream worth extracting from
	if out.Flag == parser.FlagTimedOut || out.Flag == parser.FlagErrored {
		msg := failureMessage(out)
		_ = p.JobsRepo.FinishFailure(ctx, job.ID, msg)
		return job.ID, out, fmt.Errorf("tokenize: %s", msg)
	}

	if err := p.JobsRepo.FinishTokenize(ctx, job.ID, out); err != nil {
		return job.ID, out, err
	}
	return job.ID, out, nil
}

func failureMessage(out parser.Outcome) string {
	if out.Flag == parser.FlagErrored && len(out.Tokens) == 1 && out.Tokens[0].Kind == parser.KindError {
		return out.Tokens[0].Value
	}
	return out.Status
}
