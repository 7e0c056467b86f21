package reembed

import (
	"context"
	"fmt"
	"html"
	"time"

	"github.com/poiesic/hnjobs/ai"
	"github.com/poiesic/hnjobs/core"
	"github.com/poiesic/hnjobs/storage"
)

// BatchProcessor handles embedding generation for batches of postings.
type BatchProcessor struct {
	repo           storage.PostingRepository
	embedder       ai.Embedder
	maxRetries     int
	retryBaseDelay time.Duration
}

// NewBatchProcessor creates a new batch processor.
// maxRetries: maximum number of retry attempts for embedding API calls
// retryBaseDelay: base delay for exponential backoff
func NewBatchProcessor(repo storage.PostingRepository, embedder ai.Embedder, maxRetries int, retryBaseDelay time.Duration) *BatchProcessor {
	return &BatchProcessor{
		repo:           repo,
		embedder:       embedder,
		maxRetries:     maxRetries,
		retryBaseDelay: retryBaseDelay,
	}
}

// Process regenerates embeddings for a batch of postings and stores them.
// The embedding input is the entity-decoded posting text, matching what
// ingestion feeds the model. Stored markup and tracking fields are untouched.
func (bp *BatchProcessor) Process(ctx context.Context, postings []*core.Posting) error {
	if len(postings) == 0 {
		return nil
	}

	texts := make([]string, len(postings))
	for i, posting := range postings {
		texts[i] = html.UnescapeString(posting.Text)
	}

	var embeddings [][]float32
	err := RetryWithBackoff(ctx, func() error {
		var err error
		embeddings, err = bp.embedder.EmbedTexts(ctx, texts)
		return err
	}, bp.maxRetries, bp.retryBaseDelay)

	if err != nil {
		return fmt.Errorf("failed to generate embeddings after %d attempts: %w", bp.maxRetries, err)
	}

	if len(embeddings) != len(postings) {
		return fmt.Errorf("embedding count mismatch: expected %d, got %d", len(postings), len(embeddings))
	}

	updates := make([]*core.Posting, len(postings))
	for i, posting := range postings {
		updates[i] = &core.Posting{
			ExternalId: posting.ExternalId,
			Text:       posting.Text,
			Vector:     embeddings[i],
		}
	}

	if err := bp.repo.ApplyBatch(ctx, updates, nil); err != nil {
		return fmt.Errorf("failed to update postings: %w", err)
	}

	return nil
}
