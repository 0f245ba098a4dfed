package fields

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/soltools/sol-viewer/constants"
	"github.com/soltools/sol-viewer/internal/extract"
	"github.com/soltools/sol-viewer/internal/parser"
	"github.com/soltools/sol-viewer/internal/repository"
)

type Pipeline struct {
	Logger    *slog.Logger
	JobsRepo  repository.ParseJobRepository
	Extractor extract.FieldExtractor
}

func NewPipeline(logger *slog.Logger, jobs repository.ParseJobRepository, fe extract.FieldExtractor) *Pipeline {
	if logger == nil {
		logger = slog.Default()
	}
	if fe == nil {
		fe = extract.NewExtractor(extract.DefaultRules(), logger)
	}
	return &Pipeline{Logger: logger, JobsRepo: jobs, Extractor: fe}
}

// Run executes the field-extraction stage for an existing tokenized
// job. Preconditions: job is TOKENIZED with a persisted token stream.
// Effects: writes email/password (or sentinels) and marks the job
// PARSED.
func (p *Pipeline) Run(ctx context.Context, jobID uuid.UUID) (extract.Credentials, error) {
	job, err := p.JobsRepo.GetByID(ctx, jobID)
	if err != nil {
		return extract.Credentials{}, fmt.Errorf("load job: %w", err)
	}
	if job.Status != string(constants.JobStatusTokenized) || len(job.TokensJSON) == 0 {
		return extract.Credentials{}, fmt.Errorf("job not ready for extraction: status=%s tokens_empty=%t",
			job.Status, len(job.TokensJSON) == 0)
	}

	var tokens []parser.Token
	if err := json.Unmarshal(job.TokensJSON, &tokens); err != nil {
		_ = p.JobsRepo.FinishFailure(ctx, job.ID, fmt.Sprintf("decode token stream: %v", err))
		return extract.Credentials{}, fmt.Errorf("decode token stream: %w", err)
	}

	creds := p.Extractor.Extract(tokens).Credentials()

	if err := p.JobsRepo.FinishFields(ctx, job.ID, creds.Email, creds.Password, time.Since(job.StartedAt)); err != nil {
		return creds, err
	}

	// values never hit the log, only whether they were recovered
	p.Logger.Info("fields.ok",
		"job_id", job.ID,
		"tokens", len(tokens),
		"email_found", extract.Found(creds.Email),
		"password_found", extract.Found(creds.Password),
	)
	return creds, nil
}
