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


package hnjobs

import (
	"context"
	"io"
	"log/slog"
	"time"

	"github.com/poiesic/hnjobs/ai"
	"github.com/poiesic/hnjobs/ai/openai"
	"github.com/poiesic/hnjobs/cache"
	"github.com/poiesic/hnjobs/core"
	"github.com/poiesic/hnjobs/hn"
	"github.com/poiesic/hnjobs/ingest"
	"github.com/poiesic/hnjobs/reembed"
	"github.com/poiesic/hnjobs/render"
	"github.com/poiesic/hnjobs/search"
	"github.com/poiesic/hnjobs/storage"
	"github.com/poiesic/hnjobs/storage/badger"
)

// Database is the top-level handle over the posting store, the embedding
// service, and the operations built on them.
type Database struct {
	backend        *badger.Backend
	postingRepo    storage.PostingRepository
	checkpointRepo storage.CheckpointRepository
	embedder       ai.Embedder
	client         *hn.Client
	searcher       *search.Searcher
	backupDir      string
	logger         *slog.Logger
}

// DatabaseOption configures a Database.
type DatabaseOption func(*databaseOptions)

type databaseOptions struct {
	aiConfig  *ai.Config
	embedder  ai.Embedder
	client    *hn.Client
	inMemory  bool
	topK      int
	cacheSize int
	backupDir string
}

// WithAIConfig sets the embedding service configuration.
// Default is ai.DefaultConfig().
func WithAIConfig(config *ai.Config) DatabaseOption {
	return func(o *databaseOptions) {
		o.aiConfig = config
	}
}

// WithEmbedder injects an embedder directly, bypassing the embedding
// service client. Intended for tests.
func WithEmbedder(embedder ai.Embedder) DatabaseOption {
	return func(o *databaseOptions) {
		o.embedder = embedder
	}
}

// WithThreadClient replaces the client used to fetch thread pages.
// Default is hn.NewClient().
func WithThreadClient(client *hn.Client) DatabaseOption {
	return func(o *databaseOptions) {
		o.client = client
	}
}

// WithInMemory keeps the store in memory instead of on disk.
func WithInMemory() DatabaseOption {
	return func(o *databaseOptions) {
		o.inMemory = true
	}
}

// WithTopK sets how many results a ranked search returns.
// Default is search.DefaultTopK.
func WithTopK(k int) DatabaseOption {
	return func(o *databaseOptions) {
		o.topK = k
	}
}

// WithBackupDir sets where pre-ingestion snapshots are written.
// Default is ingest.DefaultBackupDir.
func WithBackupDir(dir string) DatabaseOption {
	return func(o *databaseOptions) {
		o.backupDir = dir
	}
}

// NewDatabase opens the posting store at filePath and wires up the
// embedding service and searcher.
func NewDatabase(filePath string, opts ...DatabaseOption) (*Database, error) {
	// Apply options
	options := &databaseOptions{
		aiConfig:  ai.DefaultConfig(),
		topK:      search.DefaultTopK,
		cacheSize: cache.DefaultCapacity,
		backupDir: ingest.DefaultBackupDir,
	}
	for _, opt := range opts {
		opt(options)
	}

	// Open backend
	backend, err := badger.OpenBackend(filePath, options.inMemory)
	if err != nil {
		return nil, err
	}

	// Create posting repository
	postingRepo, err := badger.NewPostingRepository(backend)
	if err != nil {
		backend.Close()
		return nil, err
	}

	// Create checkpoint repository
	checkpointRepo := badger.NewCheckpointRepository(backend)

	// Create embedder unless one was injected
	embedder := options.embedder
	if embedder == nil {
		embedder, err = openai.NewEmbedder(options.aiConfig)
		if err != nil {
			postingRepo.Close()
			backend.Close()
			return nil, err
		}
	}

	queryCache, err := cache.NewEmbeddingCache(options.cacheSize)
	if err != nil {
		postingRepo.Close()
		backend.Close()
		return nil, err
	}

	searcher, err := search.NewSearcher(postingRepo, embedder,
		search.WithTopK(options.topK),
		search.WithEmbeddingCache(queryCache))
	if err != nil {
		postingRepo.Close()
		backend.Close()
		return nil, err
	}

	client := options.client
	if client == nil {
		client = hn.NewClient()
	}

	return &Database{
		backend:        backend,
		postingRepo:    postingRepo,
		checkpointRepo: checkpointRepo,
		embedder:       embedder,
		client:         client,
		searcher:       searcher,
		backupDir:      options.backupDir,
		logger:         slog.Default(),
	}, nil
}

func (db *Database) Close() error {
	if err := db.postingRepo.Close(); err != nil {
		db.logger.Error("error closing posting repository", "err", err)
		return err
	}
	if err := db.backend.Close(); err != nil {
		db.logger.Error("error closing backend storage", "err", err)
		return err
	}
	return nil
}

func (db *Database) PostingRepository() storage.PostingRepository {
	return db.postingRepo
}

func (db *Database) CheckpointRepository() storage.CheckpointRepository {
	return db.checkpointRepo
}

// NewIngestor creates an ingestor bound to this database's store and
// embedder. Callers own the returned ingestor and must Release it.
func (db *Database) NewIngestor(opts ...ingest.Option) (*ingest.Ingestor, error) {
	merged := append([]ingest.Option{ingest.WithBackupDir(db.backupDir)}, opts...)
	return ingest.NewIngestor(db.postingRepo, db.embedder, db.client, merged...)
}

// NewReembedder creates a reembedder bound to this database's store and
// embedder, writing progress to the given writer.
func (db *Database) NewReembedder(config *reembed.Config, progress io.Writer) *reembed.Reembedder {
	return reembed.NewReembedder(db.postingRepo, db.checkpointRepo, db.embedder, config, progress)
}

// Ingest scrapes the hiring thread at url and upserts its postings.
// Returns (existing, new) counts; failures are logged and come back as (0, 0).
func (db *Database) Ingest(ctx context.Context, url string) (int, int) {
	ingestor, err := db.NewIngestor()
	if err != nil {
		db.logger.Error("error creating ingestor", "err", err)
		return 0, 0
	}
	defer ingestor.Release()

	return ingestor.Ingest(ctx, url)
}

// Search ranks stored postings against the query and returns display-ready
// copies: posting text is converted to Markdown with obfuscated emails
// resolved. Failures are logged and return an empty list.
func (db *Database) Search(ctx context.Context, query string) []*core.Posting {
	postings, err := db.searcher.Search(ctx, query)
	if err != nil {
		db.logger.Error("search failed", "query", query, "err", err)
		return []*core.Posting{}
	}

	results := make([]*core.Posting, len(postings))
	for i, posting := range postings {
		display := *posting
		display.Text = render.Display(posting.Text)
		results[i] = &display
	}
	return results
}

// Posting retrieves a single posting by ID with its stored markup intact.
func (db *Database) Posting(ctx context.Context, id core.ID) (*core.Posting, error) {
	return db.postingRepo.GetPosting(ctx, id)
}

// SetApplication records application tracking state on a posting.
// An empty status clears the applied timestamp.
func (db *Database) SetApplication(ctx context.Context, id core.ID, status string) error {
	var appliedAt time.Time
	if status != "" {
		appliedAt = time.Now().UTC()
	}
	return db.postingRepo.SetApplication(ctx, id, status, appliedAt)
}
