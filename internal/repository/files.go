package repository

import (
	"context"
	"database/sql"
	"errors"
	"log/slog"
	"time"

	entsql "entgo.io/ent/dialect/sql"
	"github.com/google/uuid"

	"github.com/soltools/sol-viewer/internal/common"
	"github.com/soltools/sol-viewer/internal/entity"
)

var vaultFileColumns = []string{
	"id", "source_path", "filename", "file_ext", "file_size", "content_hash", "discovered_at",
}

type VaultFileRepository interface {
	// UpsertByHash registers a discovered file, deduplicating on its
	// content hash. The bool reports whether the row already existed.
	UpsertByHash(ctx context.Context, path, filename, ext string, size int, hashHex string, now time.Time) (*entity.VaultFile, bool, error)
	GetByID(ctx context.Context, id uuid.UUID) (*entity.VaultFile, error)
	List(ctx context.Context) ([]*entity.VaultFile, error)
}

type vaultFileRepo struct {
	drv *entsql.Driver
	log *slog.Logger
}

func NewVaultFileRepository(drv *entsql.Driver, log *slog.Logger) VaultFileRepository {
	if log == nil {
		log = slog.Default()
	}
	return &vaultFileRepo{drv: drv, log: log}
}

func (r *vaultFileRepo) builder() *entsql.DialectBuilder {
	return entsql.Dialect(r.drv.Dialect())
}

func (r *vaultFileRepo) UpsertByHash(ctx context.Context, path, filename, ext string, size int, hashHex string, now time.Time) (*entity.VaultFile, bool, error) {
	existing, err := r.getBy(ctx, entsql.EQ("content_hash", hashHex))
	if err != nil && !errors.Is(err, common.ErrNotFound) {
		return nil, false, err
	}

	if existing != nil {
		// same content seen again, possibly moved: refresh the location
		query, args := r.builder().
			Update("vault_files").
			Set("source_path", path).
			Set("filename", filename).
			Set("file_size", size).
			Set("discovered_at", now).
			Where(entsql.EQ("id", existing.ID.String())).
			Query()
		var res sql.Result
		if err := r.drv.Exec(ctx, query, args, &res); err != nil {
			r.log.Error("vault_file upsert failed", "path", path, "error", err)
			return nil, false, err
		}
		existing.SourcePath = path
		existing.Filename = filename
		existing.FileSize = size
		existing.DiscoveredAt = now
		return existing, true, nil
	}

	row := &entity.VaultFile{
		ID:           uuid.New(),
		SourcePath:   path,
		Filename:     filename,
		FileExt:      ext,
		FileSize:     size,
		ContentHash:  hashHex,
		DiscoveredAt: now,
	}
	query, args := r.builder().
		Insert("vault_files").
		Columns(vaultFileColumns...).
		Values(row.ID.String(), row.SourcePath, row.Filename, row.FileExt, row.FileSize, row.ContentHash, row.DiscoveredAt).
		Query()
	var res sql.Result
	if err := r.drv.Exec(ctx, query, args, &res); err != nil {
		r.log.Error("vault_file insert failed", "path", path, "error", err)
		return nil, false, err
	}
	r.log.Info("vault_file registered", "file_id", row.ID, "path", path)
	return row, false, nil
}

func (r *vaultFileRepo) GetByID(ctx context.Context, id uuid.UUID) (*entity.VaultFile, error) {
	return r.getBy(ctx, entsql.EQ("id", id.String()))
}

func (r *vaultFileRepo) getBy(ctx context.Context, pred *entsql.Predicate) (*entity.VaultFile, error) {
	query, args := r.builder().
		Select(vaultFileColumns...).
		From(entsql.Table("vault_files")).
		Where(pred).
		Query()

	rows := &entsql.Rows{}
	if err := r.drv.Query(ctx, query, args, rows); err != nil {
		return nil, common.WrapError(err, "query vault_files")
	}
	defer rows.Close()

	if !rows.Next() {
		if err := rows.Err(); err != nil {
			return nil, err
		}
		return nil, common.ErrNotFound
	}
	return scanVaultFile(rows)
}

func (r *vaultFileRepo) List(ctx context.Context) ([]*entity.VaultFile, error) {
	query, args := r.builder().
		Select(vaultFileColumns...).
		From(entsql.Table("vault_files")).
		OrderBy("source_path").
		Query()

	rows := &entsql.Rows{}
	if err := r.drv.Query(ctx, query, args, rows); err != nil {
		return nil, common.WrapError(err, "query vault_files")
	}
	defer rows.Close()

	var out []*entity.VaultFile
	for rows.Next() {
		f, err := scanVaultFile(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, f)
	}
	return out, rows.Err()
}

func scanVaultFile(rows *entsql.Rows) (*entity.VaultFile, error) {
	var (
		id string
		f  entity.VaultFile
	)
	if err := rows.Scan(&id, &f.SourcePath, &f.Filename, &f.FileExt, &f.FileSize, &f.ContentHash, &f.DiscoveredAt); err != nil {
		return nil, err
	}
	parsed, err := uuid.Parse(id)
	if err != nil {
		return nil, err
	}
	f.ID = parsed
	return &f, nil
}
