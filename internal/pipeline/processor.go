package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/soltools/sol-viewer/internal/common"
	"github.com/soltools/sol-viewer/internal/extract"
	"github.com/soltools/sol-viewer/internal/parser"
	"github.com/soltools/sol-viewer/internal/pipeline/fields"
	"github.com/soltools/sol-viewer/internal/pipeline/tokenize"
)

// Processor runs the two persisted stages back to back: tokenize the
// vault file, then extract credential fields from the token stream.
type Processor struct {
	Logger   *slog.Logger
	Tokenize *tokenize.Pipeline
	Fields   *fields.Pipeline
}

func NewProcessor(logger *slog.Logger, tok *tokenize.Pipeline, fld *fields.Pipeline) *Processor {
	if logger == nil {
		logger = slog.Default()
	}
	return &Processor{Logger: logger, Tokenize: tok, Fields: fld}
}

// Result is what one full pass over a vault file produced.
type Result struct {
	JobID       uuid.UUID
	Outcome     parser.Outcome
	Credentials extract.Credentials
}

// ProcessFile tokenizes the file row identified by fileID and, when a
// token stream survives, runs field extraction on it. A timed-out or
// errored tokenize stage leaves the job FAILED and returns an error.
func (p *Processor) ProcessFile(ctx context.Context, fileID uuid.UUID) (*Result, error) {
	start := time.Now()

	jobID, outcome, err := p.Tokenize.Run(ctx, fileID)
	if err != nil {
		p.Logger.Error("processor.tokenize.failed", "file_id", fileID, "error", err)
		return &Result{JobID: jobID, Outcome: outcome}, fmt.Errorf("tokenize stage: %w", err)
	}
	p.Logger.Info("processor.tokenize.ok",
		"file_id", fileID,
		"job_id", jobID,
		"flag", outcome.Flag,
		"tokens", len(outcome.Tokens),
	)

	creds, err := p.Fields.Run(ctx, jobID)
	if err != nil {
		p.Logger.Error("processor.fields.failed", "job_id", jobID, "error", err)
		return &Result{JobID: jobID, Outcome: outcome}, fmt.Errorf("fields stage: %w", err)
	}

	p.Logger.Info("processor.ok",
		"file_id", fileID,
		"job_id", jobID,
		"request_id", common.RequestIDFromContext(ctx),
		"duration_ms", time.Since(start).Milliseconds(),
	)
	return &Result{JobID: jobID, Outcome: outcome, Credentials: creds}, nil
}
