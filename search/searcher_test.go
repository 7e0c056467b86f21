package search

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/poiesic/hnjobs/ai/mock"
	"github.com/poiesic/hnjobs/cache"
	"github.com/poiesic/hnjobs/core"
	"github.com/poiesic/hnjobs/storage"
	"github.com/poiesic/hnjobs/storage/badger"
)

func newTestStore(t *testing.T) storage.PostingRepository {
	t.Helper()
	repo, _, backend, err := badger.NewMemoryRepositories()
	require.NoError(t, err)
	t.Cleanup(func() {
		repo.Close()
		backend.Close()
	})
	return repo
}

func fixedQueryEmbedder(vector []float32) *mock.MockEmbedder {
	m := mock.NewMockEmbedder()
	m.EmbedTextFunc = func(ctx context.Context, text string) ([]float32, error) {
		return vector, nil
	}
	return m
}

func seedPostings(t *testing.T, repo storage.PostingRepository, postings ...*core.Posting) {
	t.Helper()
	require.NoError(t, repo.ApplyBatch(context.Background(), nil, postings))
}

func TestSearchRanksByDistance(t *testing.T) {
	repo := newTestStore(t)
	seedPostings(t, repo,
		&core.Posting{ExternalId: 1, Author: "a", Text: "far", Vector: []float32{10, 0}},
		&core.Posting{ExternalId: 2, Author: "b", Text: "near", Vector: []float32{1, 0}},
		&core.Posting{ExternalId: 3, Author: "c", Text: "middle", Vector: []float32{5, 0}},
	)

	s, err := NewSearcher(repo, fixedQueryEmbedder([]float32{0, 0}))
	require.NoError(t, err)

	results, err := s.Search(context.Background(), "golang")
	require.NoError(t, err)
	require.Len(t, results, 3)

	assert.Equal(t, "near", results[0].Text)
	assert.Equal(t, "middle", results[1].Text)
	assert.Equal(t, "far", results[2].Text)
}

func TestSearchTopKTruncates(t *testing.T) {
	repo := newTestStore(t)
	var postings []*core.Posting
	for i := 1; i <= 10; i++ {
		postings = append(postings, &core.Posting{
			ExternalId: int64(i),
			Author:     "a",
			Text:       "posting",
			Vector:     []float32{float32(i)},
		})
	}
	seedPostings(t, repo, postings...)

	s, err := NewSearcher(repo, fixedQueryEmbedder([]float32{0}), WithTopK(4))
	require.NoError(t, err)

	results, err := s.Search(context.Background(), "anything")
	require.NoError(t, err)
	require.Len(t, results, 4)

	// Closest four are external ids 1 through 4.
	for i, r := range results {
		assert.Equal(t, int64(i+1), r.ExternalId)
	}
}

func TestSearchTieBreaksOnId(t *testing.T) {
	repo := newTestStore(t)
	seedPostings(t, repo,
		&core.Posting{ExternalId: 1, Author: "a", Text: "first", Vector: []float32{3, 4}},
		&core.Posting{ExternalId: 2, Author: "b", Text: "second", Vector: []float32{4, 3}},
	)

	s, err := NewSearcher(repo, fixedQueryEmbedder([]float32{0, 0}))
	require.NoError(t, err)

	results, err := s.Search(context.Background(), "tied")
	require.NoError(t, err)
	require.Len(t, results, 2)

	// Equal distance, lower internal id wins.
	assert.True(t, results[0].Id < results[1].Id)
}

func TestSearchEmptyQueryReturnsAll(t *testing.T) {
	repo := newTestStore(t)
	seedPostings(t, repo,
		&core.Posting{ExternalId: 1, Author: "a", Text: "embedded", Vector: []float32{1}},
		&core.Posting{ExternalId: 2, Author: "b", Text: "unembedded"},
	)

	embedder := mock.NewMockEmbedder()
	s, err := NewSearcher(repo, embedder)
	require.NoError(t, err)

	results, err := s.Search(context.Background(), "")
	require.NoError(t, err)
	assert.Len(t, results, 2)
	assert.Equal(t, 0, embedder.CallCount(), "empty query should not embed")
}

func TestSearchEmptyStore(t *testing.T) {
	repo := newTestStore(t)

	s, err := NewSearcher(repo, fixedQueryEmbedder([]float32{1, 2}))
	require.NoError(t, err)

	results, err := s.Search(context.Background(), "anything")
	require.NoError(t, err)
	assert.Empty(t, results)
}

func TestSearchSkipsMismatchedVectors(t *testing.T) {
	repo := newTestStore(t)
	seedPostings(t, repo,
		&core.Posting{ExternalId: 1, Author: "a", Text: "good", Vector: []float32{1, 1}},
		&core.Posting{ExternalId: 2, Author: "b", Text: "stale", Vector: []float32{1, 1, 1}},
	)

	s, err := NewSearcher(repo, fixedQueryEmbedder([]float32{0, 0}))
	require.NoError(t, err)

	results, err := s.Search(context.Background(), "query")
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, "good", results[0].Text)
}

func TestSearchEmbedderFailure(t *testing.T) {
	repo := newTestStore(t)
	seedPostings(t, repo,
		&core.Posting{ExternalId: 1, Author: "a", Text: "x", Vector: []float32{1}},
	)

	embedder := mock.NewMockEmbedder()
	embedder.EmbedTextFunc = func(ctx context.Context, text string) ([]float32, error) {
		return nil, errors.New("embedding service down")
	}

	s, err := NewSearcher(repo, embedder)
	require.NoError(t, err)

	_, err = s.Search(context.Background(), "query")
	assert.Error(t, err)
}

func TestSearchUsesEmbeddingCache(t *testing.T) {
	repo := newTestStore(t)
	seedPostings(t, repo,
		&core.Posting{ExternalId: 1, Author: "a", Text: "x", Vector: []float32{1}},
	)

	c, err := cache.NewEmbeddingCache(8)
	require.NoError(t, err)

	embedder := fixedQueryEmbedder([]float32{0})
	s, err := NewSearcher(repo, embedder, WithEmbeddingCache(c))
	require.NoError(t, err)

	ctx := context.Background()
	_, err = s.Search(ctx, "repeat me")
	require.NoError(t, err)
	_, err = s.Search(ctx, "repeat me")
	require.NoError(t, err)

	assert.Equal(t, 1, embedder.CallCount(), "second search should hit the cache")
}

func TestNewSearcherValidation(t *testing.T) {
	repo := newTestStore(t)

	_, err := NewSearcher(nil, mock.NewMockEmbedder())
	assert.ErrorIs(t, err, ErrPostingRepositoryRequired)

	_, err = NewSearcher(repo, nil)
	assert.ErrorIs(t, err, ErrEmbedderRequired)
}

func TestTopKSelection(t *testing.T) {
	candidates := []rankedPosting{
		{posting: &core.Posting{Id: 1}, distance: 9},
		{posting: &core.Posting{Id: 2}, distance: 3},
		{posting: &core.Posting{Id: 3}, distance: 7},
		{posting: &core.Posting{Id: 4}, distance: 1},
		{posting: &core.Posting{Id: 5}, distance: 5},
	}

	top := topK(candidates, 3)
	require.Len(t, top, 3)
	assert.Equal(t, core.ID(4), top[0].posting.Id)
	assert.Equal(t, core.ID(2), top[1].posting.Id)
	assert.Equal(t, core.ID(5), top[2].posting.Id)
}

func TestL2Distance(t *testing.T) {
	d, err := L2Distance([]float32{0, 0}, []float32{3, 4})
	require.NoError(t, err)
	assert.InDelta(t, 5.0, d, 1e-9)

	_, err = L2Distance([]float32{1}, []float32{1, 2})
	assert.ErrorIs(t, err, ErrDimensionMismatch)
}
