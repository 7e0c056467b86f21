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
	"fmt"
	"io"
	"time"

	"github.com/poiesic/hnjobs/ai"
	"github.com/poiesic/hnjobs/core"
	"github.com/poiesic/hnjobs/storage"
)

// CheckpointName is the checkpoint under which reembedding progress is saved.
const CheckpointName = "reembed"

// Config holds configuration for the reembedding operation.
type Config struct {
	// BatchSize is the number of postings to process in each batch
	BatchSize int

	// ReportInterval is how often to report progress (number of postings)
	ReportInterval int

	// MaxRetries is the maximum number of retry attempts for failed operations
	MaxRetries int

	// RetryDelay is the base delay for exponential backoff
	RetryDelay time.Duration

	// Resume continues from the last saved checkpoint instead of starting over
	Resume bool
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() *Config {
	return &Config{
		BatchSize:      100,
		ReportInterval: 100,
		MaxRetries:     3,
		RetryDelay:     1 * time.Second,
	}
}

// Reembedder orchestrates reembedding of every stored posting.
type Reembedder struct {
	repo        storage.PostingRepository
	checkpoints storage.CheckpointRepository
	embedder    ai.Embedder
	config      *Config
	progress    io.Writer
	processor   *BatchProcessor
}

// NewReembedder creates a new reembedder.
// progress: where to write progress output (typically os.Stderr)
func NewReembedder(
	repo storage.PostingRepository,
	checkpoints storage.CheckpointRepository,
	embedder ai.Embedder,
	config *Config,
	progress io.Writer,
) *Reembedder {
	if config == nil {
		config = DefaultConfig()
	}

	return &Reembedder{
		repo:        repo,
		checkpoints: checkpoints,
		embedder:    embedder,
		config:      config,
		progress:    progress,
		processor:   NewBatchProcessor(repo, embedder, config.MaxRetries, config.RetryDelay),
	}
}

// Run executes the reembedding operation.
// Every stored posting is reembedded with the configured embedder, in ID
// order. A checkpoint is saved after each batch so an interrupted run can
// resume with Config.Resume.
func (r *Reembedder) Run(ctx context.Context) error {
	var afterId core.ID
	if r.config.Resume {
		checkpoint, err := r.checkpoints.LoadCheckpoint(ctx, CheckpointName)
		if err != nil {
			return fmt.Errorf("failed to load checkpoint: %w", err)
		}
		if checkpoint != nil {
			afterId = checkpoint.LastId
			fmt.Fprintf(r.progress, "Resuming after posting %d\n", afterId)
		}
	}

	iterator := NewPostingIterator(r.repo, r.config.BatchSize, afterId)

	total, err := iterator.Remaining(ctx)
	if err != nil {
		return fmt.Errorf("failed to query postings: %w", err)
	}
	if total == 0 {
		fmt.Fprintf(r.progress, "No postings to reembed (0 remaining)\n")
		return nil
	}

	fmt.Fprintf(r.progress, "Starting reembedding of %d postings (batch size: %d)\n",
		total, r.config.BatchSize)

	tracker := NewProgressTracker(r.progress, total, r.config.ReportInterval)
	tracker.Start()

	err = iterator.ForEach(ctx, func(postings []*core.Posting) error {
		if err := r.processor.Process(ctx, postings); err != nil {
			return fmt.Errorf("failed to process batch: %w", err)
		}

		lastId := postings[len(postings)-1].Id
		checkpoint := &core.Checkpoint{Name: CheckpointName, LastId: lastId}
		if err := r.checkpoints.SaveCheckpoint(ctx, checkpoint); err != nil {
			return fmt.Errorf("failed to save checkpoint: %w", err)
		}

		tracker.Increment(len(postings))
		return nil
	})

	if err != nil {
		return err
	}

	tracker.Finish()

	elapsed := tracker.Elapsed()
	fmt.Fprintf(r.progress, "Reembedding complete. Processed %d postings in %v (%.1f postings/sec)\n",
		total, elapsed.Round(time.Second), float64(total)/elapsed.Seconds())

	return nil
}
