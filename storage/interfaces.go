package storage

import (
	"context"
	"time"

	"github.com/poiesic/hnjobs/core"
)

// PostingRepository provides persisted storage for postings.
// Implementations must be thread-safe and give readers a consistent snapshot:
// a query running concurrently with an ingestion batch never observes a
// partially applied batch.
type PostingRepository interface {
	// GetPosting retrieves a single posting by its surrogate key.
	// Returns ErrNotFound if the posting doesn't exist.
	GetPosting(ctx context.Context, id core.ID) (*core.Posting, error)

	// GetPostingByExternalId retrieves the posting carrying the given
	// source identifier. Returns ErrNotFound if no posting carries it.
	GetPostingByExternalId(ctx context.Context, externalId int64) (*core.Posting, error)

	// AllPostings retrieves every posting in store iteration order.
	AllPostings(ctx context.Context) ([]*core.Posting, error)

	// EmbeddedPostings retrieves every posting that carries an embedding
	// vector, in store iteration order.
	EmbeddedPostings(ctx context.Context) ([]*core.Posting, error)

	// ApplyBatch applies staged updates and inserts in a single transaction;
	// either the whole batch commits or the store is left unchanged.
	//
	// Updates are keyed by ExternalId and mutate Text, Vector, and UpdatedAt
	// only; InsertedAt, Status, and AppliedAt of the stored row are preserved.
	// Inserts are assigned a fresh Id and InsertedAt.
	// Returns ErrNotFound if an update's ExternalId is unknown, and
	// ErrDuplicateKey if an insert's ExternalId is already present.
	ApplyBatch(ctx context.Context, updates, inserts []*core.Posting) error

	// SetApplication records application tracking state on a posting.
	// This is the only path that mutates Status and AppliedAt; ingestion
	// never touches them. Returns ErrNotFound if the posting doesn't exist.
	SetApplication(ctx context.Context, id core.ID, status string, appliedAt time.Time) error

	// Backup streams a snapshot of the store into dir as a timestamped file
	// and returns the file path. The snapshot is an out-of-band recovery
	// mechanism, not transactional with subsequent writes.
	Backup(dir string) (string, error)

	// Close releases the repository's resources.
	Close() error
}

// CheckpointRepository persists batch processing progress.
type CheckpointRepository interface {
	// SaveCheckpoint persists a checkpoint under its name.
	SaveCheckpoint(ctx context.Context, checkpoint *core.Checkpoint) error

	// LoadCheckpoint retrieves the checkpoint with the given name.
	// Returns nil, nil if no checkpoint exists.
	LoadCheckpoint(ctx context.Context, name string) (*core.Checkpoint, error)
}
