package ai

import "context"

// Embedder generates vector embeddings from text for semantic similarity search.
// Implementations must be thread-safe for concurrent use. The vector dimension
// is fixed by the configured model; mixing models invalidates stored distances,
// so a single Embedder instance is constructed at startup and shared by the
// ingestor, the searcher, and the reembedder.
type Embedder interface {
	// EmbedText generates a vector embedding for a single text string.
	// The caller is responsible for decoding HTML entities beforehand.
	// Returns an error if the embedding generation fails.
	EmbedText(ctx context.Context, text string) ([]float32, error)

	// EmbedTexts generates vector embeddings for multiple text strings in a batch.
	// Batch processing is more efficient than calling EmbedText multiple times.
	// The returned slice contains embeddings in the same order as the input texts.
	// Returns an error if any embedding generation fails.
	EmbedTexts(ctx context.Context, texts []string) ([][]float32, error)
}
