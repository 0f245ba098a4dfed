package pipeline

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/soltools/sol-viewer/constants"
	"github.com/soltools/sol-viewer/internal/extract"
	"github.com/soltools/sol-viewer/internal/parser"
	"github.com/soltools/sol-viewer/internal/pipeline/fields"
	"github.com/soltools/sol-viewer/internal/pipeline/tokenize"
	"github.com/soltools/sol-viewer/internal/repository"
)

type testStore struct {
	files repository.VaultFileRepository
	jobs  repository.ParseJobRepository
}

func openTestStore(t *testing.T) *testStore {
	t.Helper()
	ctx := context.Background()

	drv, pool, err := repository.Open(ctx, repository.Config{
		DSN: filepath.Join(t.TempDir(), "pipeline-test.db"),
	}, nil)
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() { repository.Close(drv, pool, nil) })

	if err := repository.Migrate(ctx, drv); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return &testStore{
		files: repository.NewVaultFileRepository(drv, nil),
		jobs:  repository.NewParseJobRepository(drv, nil),
	}
}

func newTestProcessor(store *testStore) *Processor {
	tok := tokenize.NewPipeline(store.files, store.jobs, tokenize.Config{
		MaxBytes: parser.DefaultMaxBytes,
		Timeout:  5 * time.Second,
	}, nil)
	fld := fields.NewPipeline(nil, store.jobs, nil)
	return NewProcessor(nil, tok, fld)
}

func TestProcessFileRecoversCredentials(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	store := openTestStore(t)

	path := filepath.Join(t.TempDir(), "ptd.sol")
	body := []byte("Email\x06user@site.com\x00junk\xfe\xffPassword\x06hunter2\x00")
	if err := os.WriteFile(path, body, 0o600); err != nil {
		t.Fatal(err)
	}
	row, _, err := store.files.UpsertByHash(ctx, path, "ptd.sol", "sol", len(body), "hash-cred", time.Now().UTC())
	if err != nil {
		t.Fatal(err)
	}

	res, err := newTestProcessor(store).ProcessFile(ctx, row.ID)
	if err != nil {
		t.Fatalf("ProcessFile: %v", err)
	}
	if res.Outcome.Flag != parser.FlagComplete {
		t.Fatalf("outcome flag = %s, want complete", res.Outcome.Flag)
	}
	if res.Credentials.Email != "user@site.com" || res.Credentials.Password != "hunter2" {
		t.Fatalf("unexpected credentials: %+v", res.Credentials)
	}

	job, err := store.jobs.GetByID(ctx, res.JobID)
	if err != nil {
		t.Fatal(err)
	}
	if job.Status != string(constants.JobStatusParsed) {
		t.Fatalf("job status = %s, want PARSED", job.Status)
	}
	if job.Email == nil || *job.Email != "user@site.com" {
		t.Fatalf("stored email = %v", job.Email)
	}
	if job.Password == nil || *job.Password != "hunter2" {
		t.Fatalf("stored password = %v", job.Password)
	}
	if job.FinishedAt == nil {
		t.Fatal("finished_at not set")
	}
}

func TestProcessFileStoresSentinelsWhenNothingMatches(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	store := openTestStore(t)

	path := filepath.Join(t.TempDir(), "ptd.sol")
	body := []byte("just some text with no labelled values")
	if err := os.WriteFile(path, body, 0o600); err != nil {
		t.Fatal(err)
	}
	row, _, err := store.files.UpsertByHash(ctx, path, "ptd.sol", "sol", len(body), "hash-plain", time.Now().UTC())
	if err != nil {
		t.Fatal(err)
	}

	res, err := newTestProcessor(store).ProcessFile(ctx, row.ID)
	if err != nil {
		t.Fatalf("ProcessFile: %v", err)
	}
	if res.Credentials.Email != extract.NotFound || res.Credentials.Password != extract.NotFound {
		t.Fatalf("unexpected credentials: %+v", res.Credentials)
	}
}

func TestProcessFileMissingVaultFailsJob(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	store := openTestStore(t)

	gone := filepath.Join(t.TempDir(), "gone.sol")
	row, _, err := store.files.UpsertByHash(ctx, gone, "gone.sol", "sol", 0, "hash-gone", time.Now().UTC())
	if err != nil {
		t.Fatal(err)
	}

	res, err := newTestProcessor(store).ProcessFile(ctx, row.ID)
	if err == nil {
		t.Fatal("expected error for missing vault file")
	}
	if !strings.Contains(err.Error(), "Error parsing") {
		t.Fatalf("error %q does not carry the parse failure", err)
	}

	job, jerr := store.jobs.GetByID(ctx, res.JobID)
	if jerr != nil {
		t.Fatal(jerr)
	}
	if job.Status != string(constants.JobStatusFailed) {
		t.Fatalf("job status = %s, want FAILED", job.Status)
	}
	if job.ErrorMessage == nil || !strings.Contains(*job.ErrorMessage, "Error parsing") {
		t.Fatalf("stored error = %v", job.ErrorMessage)
	}
}

func TestFieldsStageRejectsUnfinishedJob(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	store := openTestStore(t)

	row, _, err := store.files.UpsertByHash(ctx, "/tmp/nowhere.sol", "nowhere.sol", "sol", 0, "hash-raw", time.Now().UTC())
	if err != nil {
		t.Fatal(err)
	}
	job, err := store.jobs.Start(ctx, row.ID)
	if err != nil {
		t.Fatal(err)
	}

	fld := fields.NewPipeline(nil, store.jobs, nil)
	if _, err := fld.Run(ctx, job.ID); err == nil {
		t.Fatal("expected error for a job that was never tokenized")
	}
}
