package badger

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/poiesic/hnjobs/core"
	"github.com/poiesic/hnjobs/storage"
)

func newTestRepo(t *testing.T) (storage.PostingRepository, *Backend) {
	t.Helper()
	repo, _, backend, err := NewMemoryRepositories()
	if err != nil {
		t.Fatalf("Failed to create repositories: %v", err)
	}
	t.Cleanup(func() {
		repo.Close()
		backend.Close()
	})
	return repo, backend
}

func TestPostingInsertAndGet(t *testing.T) {
	repo, _ := newTestRepo(t)
	ctx := context.Background()

	posting := &core.Posting{
		ExternalId: 41001,
		Author:     "hiring_mgr",
		Text:       "Acme Corp | Backend Engineer | Remote",
		Vector:     []float32{0.1, 0.2, 0.3},
	}

	err := repo.ApplyBatch(ctx, nil, []*core.Posting{posting})
	if err != nil {
		t.Fatalf("Failed to insert posting: %v", err)
	}

	if posting.Id == 0 {
		t.Fatal("Expected non-zero ID after insert")
	}
	if posting.InsertedAt.IsZero() {
		t.Fatal("Expected InsertedAt to be set on insert")
	}

	retrieved, err := repo.GetPosting(ctx, posting.Id)
	if err != nil {
		t.Fatalf("Failed to get posting: %v", err)
	}
	if retrieved.Text != posting.Text {
		t.Fatalf("Expected text '%s', got '%s'", posting.Text, retrieved.Text)
	}
	if retrieved.ExternalId != 41001 {
		t.Fatalf("Expected external id 41001, got %d", retrieved.ExternalId)
	}

	byExt, err := repo.GetPostingByExternalId(ctx, 41001)
	if err != nil {
		t.Fatalf("Failed to get posting by external id: %v", err)
	}
	if byExt.Id != posting.Id {
		t.Fatalf("Expected id %d via external id lookup, got %d", posting.Id, byExt.Id)
	}
}

func TestPostingGetMissing(t *testing.T) {
	repo, _ := newTestRepo(t)
	ctx := context.Background()

	_, err := repo.GetPosting(ctx, 9999)
	if !errors.Is(err, storage.ErrNotFound) {
		t.Fatalf("Expected ErrNotFound, got %v", err)
	}

	_, err = repo.GetPostingByExternalId(ctx, 9999)
	if !errors.Is(err, storage.ErrNotFound) {
		t.Fatalf("Expected ErrNotFound for external id, got %v", err)
	}
}

func TestPostingDuplicateExternalId(t *testing.T) {
	repo, _ := newTestRepo(t)
	ctx := context.Background()

	first := &core.Posting{ExternalId: 500, Author: "a", Text: "first"}
	if err := repo.ApplyBatch(ctx, nil, []*core.Posting{first}); err != nil {
		t.Fatalf("Failed to insert first posting: %v", err)
	}

	dup := &core.Posting{ExternalId: 500, Author: "b", Text: "second"}
	err := repo.ApplyBatch(ctx, nil, []*core.Posting{dup})
	if !errors.Is(err, storage.ErrDuplicateKey) {
		t.Fatalf("Expected ErrDuplicateKey, got %v", err)
	}
}

func TestPostingUpdatePreservesMetadata(t *testing.T) {
	repo, _ := newTestRepo(t)
	ctx := context.Background()

	posting := &core.Posting{ExternalId: 600, Author: "poster", Text: "original text"}
	if err := repo.ApplyBatch(ctx, nil, []*core.Posting{posting}); err != nil {
		t.Fatalf("Failed to insert posting: %v", err)
	}

	appliedAt := time.Now().UTC().Add(-24 * time.Hour).Truncate(time.Microsecond)
	if err := repo.SetApplication(ctx, posting.Id, "applied", appliedAt); err != nil {
		t.Fatalf("Failed to set application: %v", err)
	}

	update := &core.Posting{
		ExternalId: 600,
		Text:       "revised text",
		Vector:     []float32{1, 2},
	}
	if err := repo.ApplyBatch(ctx, []*core.Posting{update}, nil); err != nil {
		t.Fatalf("Failed to update posting: %v", err)
	}

	stored, err := repo.GetPostingByExternalId(ctx, 600)
	if err != nil {
		t.Fatalf("Failed to reload posting: %v", err)
	}

	if stored.Text != "revised text" {
		t.Fatalf("Expected updated text, got '%s'", stored.Text)
	}
	if stored.Author != "poster" {
		t.Fatalf("Expected author preserved, got '%s'", stored.Author)
	}
	if stored.Status != "applied" {
		t.Fatalf("Expected status preserved, got '%s'", stored.Status)
	}
	if !stored.AppliedAt.Equal(appliedAt) {
		t.Fatalf("Expected applied_at preserved, got %v", stored.AppliedAt)
	}
	if !stored.InsertedAt.Equal(posting.InsertedAt.Truncate(time.Microsecond)) {
		t.Fatalf("Expected inserted_at preserved, got %v", stored.InsertedAt)
	}
	if !stored.UpdatedAt.After(stored.InsertedAt) && !stored.UpdatedAt.Equal(stored.InsertedAt) {
		t.Fatal("Expected updated_at to advance on content update")
	}
}

func TestPostingUpdateMissingRollsBack(t *testing.T) {
	repo, _ := newTestRepo(t)
	ctx := context.Background()

	existing := &core.Posting{ExternalId: 700, Author: "x", Text: "kept"}
	if err := repo.ApplyBatch(ctx, nil, []*core.Posting{existing}); err != nil {
		t.Fatalf("Failed to insert posting: %v", err)
	}

	// A batch mixing a valid insert with an update for an unknown
	// external id must leave the store unchanged.
	badUpdate := &core.Posting{ExternalId: 999, Text: "nope"}
	newInsert := &core.Posting{ExternalId: 701, Author: "y", Text: "should not land"}
	err := repo.ApplyBatch(ctx, []*core.Posting{badUpdate}, []*core.Posting{newInsert})
	if !errors.Is(err, storage.ErrNotFound) {
		t.Fatalf("Expected ErrNotFound, got %v", err)
	}

	all, err := repo.AllPostings(ctx)
	if err != nil {
		t.Fatalf("Failed to list postings: %v", err)
	}
	if len(all) != 1 {
		t.Fatalf("Expected 1 posting after rollback, got %d", len(all))
	}
	if all[0].ExternalId != 700 {
		t.Fatalf("Expected surviving posting 700, got %d", all[0].ExternalId)
	}
}

func TestEmbeddedPostingsFilter(t *testing.T) {
	repo, _ := newTestRepo(t)
	ctx := context.Background()

	inserts := []*core.Posting{
		{ExternalId: 1, Author: "a", Text: "embedded", Vector: []float32{0.5}},
		{ExternalId: 2, Author: "b", Text: "bare"},
		{ExternalId: 3, Author: "c", Text: "also embedded", Vector: []float32{0.7}},
	}
	if err := repo.ApplyBatch(ctx, nil, inserts); err != nil {
		t.Fatalf("Failed to insert postings: %v", err)
	}

	embedded, err := repo.EmbeddedPostings(ctx)
	if err != nil {
		t.Fatalf("Failed to list embedded postings: %v", err)
	}
	if len(embedded) != 2 {
		t.Fatalf("Expected 2 embedded postings, got %d", len(embedded))
	}
	for _, p := range embedded {
		if !p.Embedded() {
			t.Fatalf("Posting %d has no vector", p.ExternalId)
		}
	}

	all, err := repo.AllPostings(ctx)
	if err != nil {
		t.Fatalf("Failed to list all postings: %v", err)
	}
	if len(all) != 3 {
		t.Fatalf("Expected 3 postings, got %d", len(all))
	}
}

func TestSetApplicationDoesNotTouchUpdatedAt(t *testing.T) {
	repo, _ := newTestRepo(t)
	ctx := context.Background()

	posting := &core.Posting{ExternalId: 800, Author: "z", Text: "text"}
	if err := repo.ApplyBatch(ctx, nil, []*core.Posting{posting}); err != nil {
		t.Fatalf("Failed to insert posting: %v", err)
	}

	before, err := repo.GetPosting(ctx, posting.Id)
	if err != nil {
		t.Fatalf("Failed to reload posting: %v", err)
	}

	if err := repo.SetApplication(ctx, posting.Id, "applied", time.Now().UTC()); err != nil {
		t.Fatalf("Failed to set application: %v", err)
	}

	after, err := repo.GetPosting(ctx, posting.Id)
	if err != nil {
		t.Fatalf("Failed to reload posting: %v", err)
	}
	if !after.UpdatedAt.Equal(before.UpdatedAt) {
		t.Fatal("Expected updated_at unchanged by status change")
	}
	if after.Status != "applied" {
		t.Fatalf("Expected status 'applied', got '%s'", after.Status)
	}
}

func TestBackupWritesSnapshot(t *testing.T) {
	repo, _ := newTestRepo(t)
	ctx := context.Background()

	posting := &core.Posting{ExternalId: 900, Author: "w", Text: "snapshot me"}
	if err := repo.ApplyBatch(ctx, nil, []*core.Posting{posting}); err != nil {
		t.Fatalf("Failed to insert posting: %v", err)
	}

	dir := t.TempDir()
	path, err := repo.Backup(dir)
	if err != nil {
		t.Fatalf("Failed to back up: %v", err)
	}

	if filepath.Dir(path) != dir {
		t.Fatalf("Expected backup in %s, got %s", dir, path)
	}
	if !strings.HasPrefix(filepath.Base(path), "jobs_") || !strings.HasSuffix(path, ".bak") {
		t.Fatalf("Unexpected backup file name: %s", path)
	}

	info, err := os.Stat(path)
	if err != nil {
		t.Fatalf("Backup file missing: %v", err)
	}
	if info.Size() == 0 {
		t.Fatal("Expected non-empty backup file")
	}
}
