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


package search

import (
	"context"
	"log/slog"

	"github.com/poiesic/hnjobs/ai"
	"github.com/poiesic/hnjobs/cache"
	"github.com/poiesic/hnjobs/core"
	"github.com/poiesic/hnjobs/storage"
)

// DefaultTopK is the number of results returned for a ranked search.
const DefaultTopK = 20

// Searcher provides semantic search over stored job postings.
type Searcher struct {
	postingRepository storage.PostingRepository
	embedder          ai.Embedder
	queryCache        *cache.EmbeddingCache
	topK              int
	logger            *slog.Logger
}

// Option configures a Searcher.
type Option func(*Searcher) error

// WithLogger sets a custom logger.
// Default is slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(s *Searcher) error {
		if logger == nil {
			logger = slog.Default()
		}
		s.logger = logger
		return nil
	}
}

// WithTopK sets the number of results a ranked search returns.
// Values of 0 or less fall back to DefaultTopK.
func WithTopK(k int) Option {
	return func(s *Searcher) error {
		if k <= 0 {
			k = DefaultTopK
		}
		s.topK = k
		return nil
	}
}

// WithEmbeddingCache memoizes query embeddings in the given cache.
// Default is no memoization.
func WithEmbeddingCache(c *cache.EmbeddingCache) Option {
	return func(s *Searcher) error {
		s.queryCache = c
		return nil
	}
}

// NewSearcher creates a new searcher.
func NewSearcher(
	postingRepository storage.PostingRepository,
	embedder ai.Embedder,
	opts ...Option,
) (*Searcher, error) {
	if postingRepository == nil {
		return nil, ErrPostingRepositoryRequired
	}
	if embedder == nil {
		return nil, ErrEmbedderRequired
	}

	s := &Searcher{
		postingRepository: postingRepository,
		embedder:          embedder,
		topK:              DefaultTopK,
		logger:            slog.Default(),
	}

	// Apply options
	for _, opt := range opts {
		if err := opt(s); err != nil {
			return nil, err
		}
	}

	return s, nil
}

// Search ranks stored postings against the query, closest first.
// An empty query returns every posting in store order, unranked.
func (s *Searcher) Search(ctx context.Context, query string) ([]*core.Posting, error) {
	if query == "" {
		return s.postingRepository.AllPostings(ctx)
	}

	queryVector, err := s.embedQuery(ctx, query)
	if err != nil {
		s.logger.Error("error generating embedding for query", "query", query, "err", err)
		return nil, err
	}

	postings, err := s.postingRepository.EmbeddedPostings(ctx)
	if err != nil {
		s.logger.Error("error loading embedded postings", "err", err)
		return nil, err
	}

	candidates := make([]rankedPosting, 0, len(postings))
	for _, posting := range postings {
		distance, err := L2Distance(queryVector, posting.Vector)
		if err != nil {
			// Stale vector from an older embedding model. Skip it
			// rather than fail the whole search.
			s.logger.Warn("skipping posting with mismatched vector",
				"id", posting.Id, "dimension", len(posting.Vector))
			continue
		}
		candidates = append(candidates, rankedPosting{posting: posting, distance: distance})
	}

	ranked := topK(candidates, s.topK)

	results := make([]*core.Posting, len(ranked))
	for i, r := range ranked {
		results[i] = r.posting
	}
	return results, nil
}

// embedQuery returns the query embedding, consulting the cache when one is
// configured.
func (s *Searcher) embedQuery(ctx context.Context, query string) ([]float32, error) {
	if s.queryCache != nil {
		if vector, ok := s.queryCache.Get(query); ok {
			return vector, nil
		}
	}

	vector, err := s.embedder.EmbedText(ctx, query)
	if err != nil {
		return nil, err
	}

	if s.queryCache != nil {
		s.queryCache.Put(query, vector)
	}
	return vector, nil
}
