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


package ingest

import (
	"context"
	"errors"
	"html"
	"log/slog"
	"runtime"
	"sync"

	"github.com/panjf2000/ants/v2"

	"github.com/poiesic/hnjobs/ai"
	"github.com/poiesic/hnjobs/core"
	"github.com/poiesic/hnjobs/hn"
	"github.com/poiesic/hnjobs/storage"
)

// DefaultBackupDir is where pre-ingestion snapshots land unless overridden.
const DefaultBackupDir = "backups"

// Ingestor orchestrates scraping a hiring thread into the posting store.
type Ingestor struct {
	postingRepository storage.PostingRepository
	embedder          ai.Embedder
	client            *hn.Client
	pool              *ants.Pool
	backupDir         string
	logger            *slog.Logger
}

// Option configures an Ingestor.
type Option func(*Ingestor) error

// WithPoolSize sets the worker pool size for concurrent embedding.
// Default is runtime.NumCPU() / 2, with a minimum of 1.
func WithPoolSize(size int) Option {
	return func(ing *Ingestor) error {
		if size < 1 {
			size = 1
		}

		if ing.pool != nil {
			ing.pool.Release()
		}

		pool, err := ants.NewPool(size)
		if err != nil {
			return err
		}
		ing.pool = pool
		return nil
	}
}

// WithLogger sets a custom logger.
// Default is slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(ing *Ingestor) error {
		if logger == nil {
			logger = slog.Default()
		}
		ing.logger = logger
		return nil
	}
}

// WithBackupDir sets the directory for pre-ingestion snapshots.
// An empty string disables the snapshot step.
func WithBackupDir(dir string) Option {
	return func(ing *Ingestor) error {
		ing.backupDir = dir
		return nil
	}
}

// NewIngestor creates a new ingestor.
func NewIngestor(
	postingRepository storage.PostingRepository,
	embedder ai.Embedder,
	client *hn.Client,
	opts ...Option,
) (*Ingestor, error) {
	if postingRepository == nil {
		return nil, ErrPostingRepositoryRequired
	}
	if embedder == nil {
		return nil, ErrEmbedderRequired
	}
	if client == nil {
		return nil, ErrClientRequired
	}

	poolSize := runtime.NumCPU() / 2
	if poolSize < 1 {
		poolSize = 1
	}

	pool, err := ants.NewPool(poolSize)
	if err != nil {
		return nil, err
	}

	ing := &Ingestor{
		postingRepository: postingRepository,
		embedder:          embedder,
		client:            client,
		pool:              pool,
		backupDir:         DefaultBackupDir,
		logger:            slog.Default(),
	}

	// Apply options
	for _, opt := range opts {
		if err := opt(ing); err != nil {
			ing.Release()
			return nil, err
		}
	}

	return ing, nil
}

// Release frees the worker pool.
// The ingestor should not be used after calling Release.
func (ing *Ingestor) Release() {
	if ing.pool != nil {
		ing.pool.Release()
	}
}

// Ingest scrapes the hiring thread at url and upserts its postings.
//
// Returns the number of postings already present (refreshed in place) and the
// number newly inserted. The method never returns an error: a failure at any
// stage is logged, the store is left untouched, and the counts come back as
// (0, 0). Application tracking fields on existing postings survive refresh.
func (ing *Ingestor) Ingest(ctx context.Context, url string) (existing int, added int) {
	if err := hn.ValidateThreadURL(url); err != nil {
		ing.logger.Error("invalid thread url", "url", url, "err", err)
		return 0, 0
	}

	if ing.backupDir != "" {
		path, err := ing.postingRepository.Backup(ing.backupDir)
		if err != nil {
			ing.logger.Error("error backing up store before ingestion", "err", err)
			return 0, 0
		}
		ing.logger.Info("store backed up", "path", path)
	}

	page, err := ing.client.FetchPage(ctx, url)
	if err != nil {
		ing.logger.Error("error fetching thread page", "url", url, "err", err)
		return 0, 0
	}

	doc, err := hn.ParsePage(page)
	if err != nil {
		ing.logger.Error("error parsing thread page", "url", url, "err", err)
		return 0, 0
	}

	raws := make([]*core.RawPosting, 0)
	for _, raw := range hn.ExtractPostings(doc) {
		r := raw
		if !core.PersistableRaw(&r) {
			ing.logger.Debug("skipping unpersistable entry",
				"externalId", r.ExternalId, "author", r.Author)
			continue
		}
		raws = append(raws, &r)
	}

	vectors, err := ing.embedAll(ctx, raws)
	if err != nil {
		ing.logger.Error("error embedding postings", "err", err)
		return 0, 0
	}

	var updates, inserts []*core.Posting
	for i, raw := range raws {
		_, err := ing.postingRepository.GetPostingByExternalId(ctx, raw.ExternalId)
		switch {
		case err == nil:
			existing++
			updates = append(updates, &core.Posting{
				ExternalId: raw.ExternalId,
				Text:       raw.Text,
				Vector:     vectors[i],
			})
		case errors.Is(err, storage.ErrNotFound):
			added++
			inserts = append(inserts, &core.Posting{
				ExternalId: raw.ExternalId,
				Author:     raw.Author,
				Text:       raw.Text,
				Vector:     vectors[i],
			})
		default:
			ing.logger.Error("error checking for existing posting",
				"externalId", raw.ExternalId, "err", err)
			return 0, 0
		}
	}

	if err := ing.postingRepository.ApplyBatch(ctx, updates, inserts); err != nil {
		ing.logger.Error("error applying ingestion batch", "err", err)
		return 0, 0
	}

	ing.logger.Info("ingestion complete", "existing", existing, "new", added)
	return existing, added
}

// embedAll embeds every posting's text concurrently, preserving input order.
// Embedding runs over the entity-decoded text; the stored markup is untouched.
func (ing *Ingestor) embedAll(ctx context.Context, raws []*core.RawPosting) ([][]float32, error) {
	vectors := make([][]float32, len(raws))
	errs := make([]error, len(raws))

	var wg sync.WaitGroup
	for i, raw := range raws {
		wg.Add(1)
		submitErr := ing.pool.Submit(func() {
			defer wg.Done()
			vectors[i], errs[i] = ing.embedder.EmbedText(ctx, html.UnescapeString(raw.Text))
		})
		if submitErr != nil {
			wg.Done()
			errs[i] = submitErr
		}
	}
	wg.Wait()

	for _, err := range errs {
		if err != nil {
			return nil, err
		}
	}
	return vectors, nil
}
