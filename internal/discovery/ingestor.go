package discovery

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/soltools/sol-viewer/constants"
	"github.com/soltools/sol-viewer/internal/entity"
	"github.com/soltools/sol-viewer/internal/repository"
)

// Stats aggregates one ingestion sweep.
type Stats struct {
	Scanned      int
	Succeeded    int
	Failed       int
	Deduplicated int
}

// Ingestor hashes discovered vault files and registers them so parse
// jobs can reference them by ID.
type Ingestor struct {
	Files repository.VaultFileRepository
	Log   *slog.Logger
}

func NewIngestor(files repository.VaultFileRepository, log *slog.Logger) *Ingestor {
	if log == nil {
		log = slog.Default()
	}
	return &Ingestor{Files: files, Log: log}
}

// IngestPath registers a single vault file, deduplicating on content.
func (i *Ingestor) IngestPath(ctx context.Context, path string) (*entity.VaultFile, bool, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, false, err
	}

	f, err := os.Open(abs)
	if err != nil {
		i.Log.Error("ingest.open.failed", "path", abs, "error", err)
		return nil, false, err
	}
	defer f.Close()

	h := sha256.New()
	size, err := io.Copy(h, f)
	if err != nil {
		i.Log.Error("ingest.hash.failed", "path", abs, "error", err)
		return nil, false, err
	}

	row, dedup, err := i.Files.UpsertByHash(
		ctx,
		abs,
		filepath.Base(abs),
		constants.NormalizeExt(filepath.Ext(abs)),
		int(size),
		hex.EncodeToString(h.Sum(nil)),
		time.Now().UTC(),
	)
	if err != nil {
		return nil, false, err
	}
	return row, dedup, nil
}

// IngestCandidates registers a discovery sweep's worth of files;
// individual failures are counted, not fatal.
func (i *Ingestor) IngestCandidates(ctx context.Context, cands []Candidate) ([]*entity.VaultFile, Stats) {
	var (
		rows  []*entity.VaultFile
		stats Stats
	)
	for _, c := range cands {
		stats.Scanned++
		row, dedup, err := i.IngestPath(ctx, c.Path)
		if err != nil {
			stats.Failed++
			continue
		}
		stats.Succeeded++
		if dedup {
			stats.Deduplicated++
		}
		rows = append(rows, row)
	}
	return rows, stats
}
