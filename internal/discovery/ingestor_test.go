package discovery

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/soltools/sol-viewer/internal/common"
	"github.com/soltools/sol-viewer/internal/entity"
)

// fakeFileRepo keys rows by content hash, like the real repository.
type fakeFileRepo struct {
	byHash map[string]*entity.VaultFile
}

func newFakeFileRepo() *fakeFileRepo {
	return &fakeFileRepo{byHash: map[string]*entity.VaultFile{}}
}

func (f *fakeFileRepo) UpsertByHash(_ context.Context, path, filename, ext string, size int, hashHex string, now time.Time) (*entity.VaultFile, bool, error) {
	if row, ok := f.byHash[hashHex]; ok {
		row.SourcePath = path
		return row, true, nil
	}
	row := &entity.VaultFile{
		ID: uuid.New(), SourcePath: path, Filename: filename,
		FileExt: ext, FileSize: size, ContentHash: hashHex, DiscoveredAt: now,
	}
	f.byHash[hashHex] = row
	return row, false, nil
}

func (f *fakeFileRepo) GetByID(context.Context, uuid.UUID) (*entity.VaultFile, error) {
	return nil, common.ErrNotFound
}

func (f *fakeFileRepo) List(context.Context) ([]*entity.VaultFile, error) { return nil, nil }

func TestIngestPath(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	path := filepath.Join(dir, "ptd.sol")
	if err := os.WriteFile(path, []byte("vault bytes"), 0o600); err != nil {
		t.Fatal(err)
	}

	ing := NewIngestor(newFakeFileRepo(), nil)
	row, dedup, err := ing.IngestPath(context.Background(), path)
	if err != nil {
		t.Fatal(err)
	}
	if dedup {
		t.Fatal("fresh file reported as dedup")
	}
	if row.FileExt != "sol" || row.FileSize != len("vault bytes") {
		t.Fatalf("unexpected row: %+v", row)
	}
	if len(row.ContentHash) != 64 {
		t.Fatalf("content hash %q is not sha-256 hex", row.ContentHash)
	}
}

func TestIngestCandidatesCountsFailures(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	good := filepath.Join(dir, "a.sol")
	if err := os.WriteFile(good, []byte("same"), 0o600); err != nil {
		t.Fatal(err)
	}
	dup := filepath.Join(dir, "b.sol")
	if err := os.WriteFile(dup, []byte("same"), 0o600); err != nil {
		t.Fatal(err)
	}

	ing := NewIngestor(newFakeFileRepo(), nil)
	rows, stats := ing.IngestCandidates(context.Background(), []Candidate{
		{Path: good},
		{Path: dup},
		{Path: filepath.Join(dir, "missing.sol")},
	})

	if stats.Scanned != 3 || stats.Succeeded != 2 || stats.Failed != 1 || stats.Deduplicated != 1 {
		t.Fatalf("unexpected stats: %+v", stats)
	}
	if len(rows) != 2 {
		t.Fatalf("got %d rows, want 2", len(rows))
	}
}

func TestStartWatcherEmitsNewVaults(t *testing.T) {
	t.Parallel()

	root := t.TempDir()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	evCh, _, err := StartWatcher(ctx, WatchConfig{Roots: []string{root}, NameFilter: "ptd"}, nil)
	if err != nil {
		t.Fatal(err)
	}

	path := filepath.Join(root, "ptd_new.sol")
	if err := os.WriteFile(path, []byte("x"), 0o600); err != nil {
		t.Fatal(err)
	}

	select {
	case got := <-evCh:
		if got != path {
			t.Fatalf("event path = %q, want %q", got, path)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("no event within 2s")
	}
}
