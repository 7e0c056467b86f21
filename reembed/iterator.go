// Copyright 2025 Poiesic Systems
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.


package reembed

import (
	"context"
	"sort"

	"github.com/poiesic/hnjobs/core"
	"github.com/poiesic/hnjobs/storage"
)

const (
	// DefaultBatchSize is the default number of postings to process in each batch
	DefaultBatchSize = 100
)

// PostingIterator iterates over stored postings in ID order, in batches.
// Iteration can start after a given ID so checkpointed runs resume mid-store.
type PostingIterator struct {
	repo      storage.PostingRepository
	batchSize int
	afterId   core.ID
}

// NewPostingIterator creates a new posting iterator.
// batchSize: number of postings per batch (must be > 0)
// afterId: skip postings with IDs at or below this value (0 starts at the beginning)
func NewPostingIterator(repo storage.PostingRepository, batchSize int, afterId core.ID) *PostingIterator {
	if batchSize <= 0 {
		batchSize = DefaultBatchSize
	}

	return &PostingIterator{
		repo:      repo,
		batchSize: batchSize,
		afterId:   afterId,
	}
}

// Remaining returns the number of postings the iterator will visit.
func (it *PostingIterator) Remaining(ctx context.Context) (int, error) {
	postings, err := it.load(ctx)
	if err != nil {
		return 0, err
	}
	return len(postings), nil
}

// ForEach iterates over the remaining postings, calling fn for each batch.
// Iteration stops on first error from fn or when all postings are processed.
// Context cancellation is checked between batches.
func (it *PostingIterator) ForEach(ctx context.Context, fn func([]*core.Posting) error) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	default:
	}

	postings, err := it.load(ctx)
	if err != nil {
		return err
	}

	for i := 0; i < len(postings); i += it.batchSize {
		end := i + it.batchSize
		if end > len(postings) {
			end = len(postings)
		}

		if err := fn(postings[i:end]); err != nil {
			return err
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}
	}

	return nil
}

// load fetches the postings past the resume point, sorted by ID.
func (it *PostingIterator) load(ctx context.Context) ([]*core.Posting, error) {
	all, err := it.repo.AllPostings(ctx)
	if err != nil {
		return nil, err
	}

	postings := make([]*core.Posting, 0, len(all))
	for _, p := range all {
		if p.Id > it.afterId {
			postings = append(postings, p)
		}
	}

	sort.Slice(postings, func(i, j int) bool {
		return postings[i].Id < postings[j].Id
	})

	return postings, nil
}
