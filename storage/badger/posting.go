package badger

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/poiesic/hnjobs/core"
	"github.com/poiesic/hnjobs/storage"
)

// PostingRepository implements storage.PostingRepository for BadgerDB.
type PostingRepository struct {
	backend *Backend
	idSeq   *badger.Sequence
}

var _ storage.PostingRepository = (*PostingRepository)(nil)

// NewPostingRepository creates a new PostingRepository.
func NewPostingRepository(backend *Backend) (*PostingRepository, error) {
	idSeq, err := backend.GetSequence(postingIDSeq)
	if err != nil {
		return nil, err
	}

	return &PostingRepository{
		backend: backend,
		idSeq:   idSeq,
	}, nil
}

// Close releases the ID sequence.
func (r *PostingRepository) Close() error {
	return r.idSeq.Release()
}

// GetPosting retrieves a single posting by ID.
func (r *PostingRepository) GetPosting(ctx context.Context, id core.ID) (*core.Posting, error) {
	var result *core.Posting
	err := r.backend.WithTx(func(tx *badger.Txn) error {
		var err error
		result, err = readPosting(tx, makePostingKey(id))
		if err != nil {
			return err
		}
		if result == nil {
			return storage.ErrNotFound
		}
		return nil
	}, false)
	return result, err
}

// GetPostingByExternalId retrieves the posting carrying the given source id.
func (r *PostingRepository) GetPostingByExternalId(ctx context.Context, externalId int64) (*core.Posting, error) {
	var result *core.Posting
	err := r.backend.WithTx(func(tx *badger.Txn) error {
		id, err := readExternalIdIndex(tx, externalId)
		if err != nil {
			return err
		}
		if id == 0 {
			return storage.ErrNotFound
		}
		result, err = readPosting(tx, makePostingKey(id))
		if err != nil {
			return err
		}
		if result == nil {
			return storage.ErrNotFound
		}
		return nil
	}, false)
	return result, err
}

// AllPostings retrieves every posting in store iteration order.
func (r *PostingRepository) AllPostings(ctx context.Context) ([]*core.Posting, error) {
	return r.scan(func(p *core.Posting) bool { return true })
}

// EmbeddedPostings retrieves every posting carrying an embedding vector.
func (r *PostingRepository) EmbeddedPostings(ctx context.Context) ([]*core.Posting, error) {
	return r.scan(func(p *core.Posting) bool { return p.Embedded() })
}

func (r *PostingRepository) scan(keep func(*core.Posting) bool) ([]*core.Posting, error) {
	var results []*core.Posting
	err := r.backend.WithTx(func(tx *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = []byte(postingPrefix)
		iter := tx.NewIterator(opts)
		defer iter.Close()

		for iter.Rewind(); iter.Valid(); iter.Next() {
			var posting *core.Posting
			err := iter.Item().Value(func(val []byte) error {
				var err error
				posting, err = storage.UnmarshalPosting(val)
				return err
			})
			if err != nil {
				return err
			}
			if posting != nil && keep(posting) {
				results = append(results, posting)
			}
		}
		return nil
	}, false)

	return results, err
}

// ApplyBatch applies staged updates and inserts in a single transaction.
//
// Updates mutate Text, Vector, and UpdatedAt of the stored row only; the
// stored InsertedAt, Status, and AppliedAt survive re-ingestion. Inserts are
// assigned a fresh sequence ID and InsertedAt. A failure on any row discards
// the whole transaction.
func (r *PostingRepository) ApplyBatch(ctx context.Context, updates, inserts []*core.Posting) error {
	return r.backend.WithTx(func(tx *badger.Txn) error {
		now := time.Now().UTC()

		for _, staged := range updates {
			if err := core.ValidatePosting(staged); err != nil {
				return err
			}
			id, err := readExternalIdIndex(tx, staged.ExternalId)
			if err != nil {
				return err
			}
			if id == 0 {
				return fmt.Errorf("%w: external id %d", storage.ErrNotFound, staged.ExternalId)
			}
			stored, err := readPosting(tx, makePostingKey(id))
			if err != nil {
				return err
			}
			if stored == nil {
				return fmt.Errorf("%w: external id %d", storage.ErrNotFound, staged.ExternalId)
			}

			stored.Text = staged.Text
			stored.Vector = staged.Vector
			stored.UpdatedAt = now

			if err := tx.Set(makePostingKey(stored.Id), storage.MarshalPosting(stored)); err != nil {
				return err
			}
		}

		for _, staged := range inserts {
			if err := core.ValidatePosting(staged); err != nil {
				return err
			}
			existing, err := readExternalIdIndex(tx, staged.ExternalId)
			if err != nil {
				return err
			}
			if existing != 0 {
				return fmt.Errorf("%w: external id %d", storage.ErrDuplicateKey, staged.ExternalId)
			}

			id, err := r.nextId()
			if err != nil {
				return err
			}
			staged.Id = id
			staged.InsertedAt = now

			if err := tx.Set(makePostingKey(staged.Id), storage.MarshalPosting(staged)); err != nil {
				return err
			}
			if err := tx.Set(makeExternalIdKey(staged.ExternalId), storage.MarshalID(staged.Id)); err != nil {
				return err
			}
		}

		return tx.Commit()
	}, true)
}

// SetApplication records application tracking state on a posting.
// UpdatedAt is left alone: status changes are not content mutations.
func (r *PostingRepository) SetApplication(ctx context.Context, id core.ID, status string, appliedAt time.Time) error {
	return r.backend.WithTx(func(tx *badger.Txn) error {
		stored, err := readPosting(tx, makePostingKey(id))
		if err != nil {
			return err
		}
		if stored == nil {
			return storage.ErrNotFound
		}

		stored.Status = status
		stored.AppliedAt = appliedAt

		if err := tx.Set(makePostingKey(id), storage.MarshalPosting(stored)); err != nil {
			return err
		}
		return tx.Commit()
	}, true)
}

// Backup streams a snapshot of the store into dir as a timestamped file.
func (r *PostingRepository) Backup(dir string) (string, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", err
	}

	name := fmt.Sprintf("jobs_%s.bak", time.Now().Format("20060102_150405"))
	path := filepath.Join(dir, name)

	f, err := os.Create(path)
	if err != nil {
		return "", err
	}
	defer f.Close()

	if _, err := r.backend.db.Backup(f, 0); err != nil {
		os.Remove(path)
		return "", err
	}

	return path, nil
}

// Helper methods

// nextId returns the next posting ID from the sequence, skipping the 0 that
// BadgerDB sequences can return on first call.
func (r *PostingRepository) nextId() (core.ID, error) {
	next, err := r.idSeq.Next()
	if err != nil {
		return 0, err
	}
	if next == 0 {
		next, err = r.idSeq.Next()
		if err != nil {
			return 0, err
		}
	}
	return core.ID(next), nil
}

// readPosting reads a posting from the transaction.
// Returns nil, nil when the key does not exist.
func readPosting(tx *badger.Txn, key []byte) (*core.Posting, error) {
	item, err := tx.Get(key)
	if err != nil {
		if err == badger.ErrKeyNotFound {
			return nil, nil
		}
		return nil, err
	}

	var posting *core.Posting
	err = item.Value(func(val []byte) error {
		var unmarshalErr error
		posting, unmarshalErr = storage.UnmarshalPosting(val)
		return unmarshalErr
	})
	return posting, err
}

// readExternalIdIndex resolves an external id to the internal ID.
// Returns 0 when the external id is unknown.
func readExternalIdIndex(tx *badger.Txn, externalId int64) (core.ID, error) {
	item, err := tx.Get(makeExternalIdKey(externalId))
	if err != nil {
		if err == badger.ErrKeyNotFound {
			return 0, nil
		}
		return 0, err
	}

	var id core.ID
	err = item.Value(func(val []byte) error {
		var unmarshalErr error
		id, unmarshalErr = storage.UnmarshalID(val)
		return unmarshalErr
	})
	return id, err
}
