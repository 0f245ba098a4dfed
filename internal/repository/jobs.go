package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"log/slog"
	"time"

	entsql "entgo.io/ent/dialect/sql"
	"github.com/google/uuid"

	"github.com/soltools/sol-viewer/constants"
	"github.com/soltools/sol-viewer/internal/common"
	"github.com/soltools/sol-viewer/internal/entity"
	"github.com/soltools/sol-viewer/internal/parser"
)

var parseJobColumns = []string{
	"id", "file_id", "status", "outcome", "status_message", "token_count",
	"tokens_json", "email", "password", "error_message", "started_at",
	"finished_at", "duration_ms",
}

// JobReport is a parse job joined with its file's location, for
// reporting and export.
type JobReport struct {
	Job        entity.ParseJob
	SourcePath string
}

type ParseJobRepository interface {
	Start(ctx context.Context, fileID uuid.UUID) (*entity.ParseJob, error)
	// FinishTokenize persists the stage-1 outcome (whatever flag it
	// carries) and marks the job TOKENIZED.
	FinishTokenize(ctx context.Context, jobID uuid.UUID, outcome parser.Outcome) error
	// FinishFields records the recovered credentials and marks the job
	// PARSED.
	FinishFields(ctx context.Context, jobID uuid.UUID, email, password string, duration time.Duration) error
	FinishFailure(ctx context.Context, jobID uuid.UUID, message string) error
	GetByID(ctx context.Context, jobID uuid.UUID) (*entity.ParseJob, error)
	// ListReports returns parsed jobs joined with their file paths,
	// newest first.
	ListReports(ctx context.Context) ([]*JobReport, error)
}

type parseJobRepo struct {
	drv *entsql.Driver
	log *slog.Logger
}

func NewParseJobRepository(drv *entsql.Driver, log *slog.Logger) ParseJobRepository {
	if log == nil {
		log = slog.Default()
	}
	return &parseJobRepo{drv: drv, log: log}
}

func (r *parseJobRepo) builder() *entsql.DialectBuilder {
	return entsql.Dialect(r.drv.Dialect())
}

func (r *parseJobRepo) Start(ctx context.Context, fileID uuid.UUID) (*entity.ParseJob, error) {
	job := &entity.ParseJob{
		ID:        uuid.New(),
		FileID:    fileID,
		Status:    string(constants.JobStatusRunning),
		StartedAt: time.Now().UTC(),
	}
	query, args := r.builder().
		Insert("parse_jobs").
		Columns("id", "file_id", "status", "started_at").
		Values(job.ID.String(), job.FileID.String(), job.Status, job.StartedAt).
		Query()
	var res sql.Result
	if err := r.drv.Exec(ctx, query, args, &res); err != nil {
		r.log.Error("parse_job start failed", "file_id", fileID, "err", err)
		return nil, err
	}
	r.log.Info("parse_job started", "job_id", job.ID, "file_id", fileID)
	return job, nil
}

func (r *parseJobRepo) FinishTokenize(ctx context.Context, jobID uuid.UUID, outcome parser.Outcome) error {
	tokens, err := json.Marshal(outcome.Tokens)
	if err != nil {
		return common.WrapError(err, "marshal tokens")
	}
	query, args := r.builder().
		Update("parse_jobs").
		Set("outcome", string(outcome.Flag)).
		Set("status_message", outcome.Status).
		Set("token_count", len(outcome.Tokens)).
		Set("tokens_json", string(tokens)).
		Set("status", string(constants.JobStatusTokenized)).
		Where(entsql.EQ("id", jobID.String())).
		Query()
	var res sql.Result
	if err := r.drv.Exec(ctx, query, args, &res); err != nil {
		r.log.Error("parse_job finish(TOKENIZED) failed", "job_id", jobID, "err", err)
		return err
	}
	r.log.Info("parse_job finished (TOKENIZED)", "job_id", jobID, "flag", outcome.Flag, "tokens", len(outcome.Tokens))
	return nil
}

func (r *parseJobRepo) FinishFields(ctx context.Context, jobID uuid.UUID, email, password string, duration time.Duration) error {
	query, args := r.builder().
		Update("parse_jobs").
		Set("email", email).
		Set("password", password).
		Set("finished_at", time.Now().UTC()).
		Set("duration_ms", duration.Milliseconds()).
		Set("status", string(constants.JobStatusParsed)).
		Where(entsql.EQ("id", jobID.String())).
		Query()
	var res sql.Result
	if err := r.drv.Exec(ctx, query, args, &res); err != nil {
		r.log.Error("parse_job finish(PARSED) failed", "job_id", jobID, "err", err)
		return err
	}
	r.log.Info("parse_job finished (PARSED)", "job_id", jobID)
	return nil
}

func (r *parseJobRepo) FinishFailure(ctx context.Context, jobID uuid.UUID, message string) error {
	query, args := r.builder().
		Update("parse_jobs").
		Set("finished_at", time.Now().UTC()).
		Set("status", string(constants.JobStatusFailed)).
		Set("error_message", message).
		Where(entsql.EQ("id", jobID.String())).
		Query()
	var res sql.Result
	if err := r.drv.Exec(ctx, query, args, &res); err != nil {
		r.log.Error("parse_job finish(FAILED) failed", "job_id", jobID, "err", err)
		return err
	}
	r.log.Warn("parse_job finished (FAILED)", "job_id", jobID, "error", message)
	return nil
}

func (r *parseJobRepo) GetByID(ctx context.Context, jobID uuid.UUID) (*entity.ParseJob, error) {
	query, args := r.builder().
		Select(parseJobColumns...).
		From(entsql.Table("parse_jobs")).
		Where(entsql.EQ("id", jobID.String())).
		Query()

	rows := &entsql.Rows{}
	if err := r.drv.Query(ctx, query, args, rows); err != nil {
		return nil, common.WrapError(err, "query parse_jobs")
	}
	defer rows.Close()

	if !rows.Next() {
		if err := rows.Err(); err != nil {
			return nil, err
		}
		return nil, common.ErrNotFound
	}
	return scanParseJob(rows)
}

func (r *parseJobRepo) ListReports(ctx context.Context) ([]*JobReport, error) {
	jobs := entsql.Table("parse_jobs")
	files := entsql.Table("vault_files").As("vault_files")

	cols := make([]string, 0, len(parseJobColumns)+1)
	for _, c := range parseJobColumns {
		cols = append(cols, jobs.C(c))
	}
	cols = append(cols, files.C("source_path"))

	query, args := r.builder().
		Select(cols...).
		From(jobs).
		Join(files).
		On(jobs.C("file_id"), files.C("id")).
		OrderBy(entsql.Desc(jobs.C("started_at"))).
		Query()

	rows := &entsql.Rows{}
	if err := r.drv.Query(ctx, query, args, rows); err != nil {
		return nil, common.WrapError(err, "query parse_jobs")
	}
	defer rows.Close()

	var out []*JobReport
	for rows.Next() {
		rep, err := scanJobReport(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, rep)
	}
	return out, rows.Err()
}

func scanParseJob(rows *entsql.Rows) (*entity.ParseJob, error) {
	job, _, err := scanJob(rows, false)
	return job, err
}

func scanJobReport(rows *entsql.Rows) (*JobReport, error) {
	job, path, err := scanJob(rows, true)
	if err != nil {
		return nil, err
	}
	return &JobReport{Job: *job, SourcePath: path}, nil
}

func scanJob(rows *entsql.Rows, withPath bool) (*entity.ParseJob, string, error) {
	var (
		id, fileID    string
		outcome       sql.NullString
		statusMessage sql.NullString
		tokensJSON    sql.NullString
		email         sql.NullString
		password      sql.NullString
		errorMessage  sql.NullString
		finishedAt    sql.NullTime
		sourcePath    string
		job           entity.ParseJob
	)

	dest := []any{
		&id, &fileID, &job.Status, &outcome, &statusMessage, &job.TokenCount,
		&tokensJSON, &email, &password, &errorMessage, &job.StartedAt,
		&finishedAt, &job.DurationMS,
	}
	if withPath {
		dest = append(dest, &sourcePath)
	}
	if err := rows.Scan(dest...); err != nil {
		return nil, "", err
	}

	parsedID, err := uuid.Parse(id)
	if err != nil {
		return nil, "", err
	}
	parsedFileID, err := uuid.Parse(fileID)
	if err != nil {
		return nil, "", err
	}
	job.ID = parsedID
	job.FileID = parsedFileID
	job.Outcome = nullStr(outcome)
	job.StatusMessage = nullStr(statusMessage)
	job.Email = nullStr(email)
	job.Password = nullStr(password)
	job.ErrorMessage = nullStr(errorMessage)
	if tokensJSON.Valid {
		job.TokensJSON = json.RawMessage(tokensJSON.String)
	}
	if finishedAt.Valid {
		t := finishedAt.Time
		job.FinishedAt = &t
	}
	return &job, sourcePath, nil
}

func nullStr(v sql.NullString) *string {
	if !v.Valid {
		return nil
	}
	s := v.String
	return &s
}
