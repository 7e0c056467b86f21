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


package main

import (
	"context"
	"fmt"
	"log"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/urfave/cli/v2"

	"github.com/poiesic/hnjobs"
	"github.com/poiesic/hnjobs/ai"
	"github.com/poiesic/hnjobs/ingest"
	"github.com/poiesic/hnjobs/reembed"
	"github.com/poiesic/hnjobs/render"
	"github.com/poiesic/hnjobs/web"
)

func main() {
	app := &cli.App{
		Name:   "hnjobs",
		Usage:  "Scrape, search, and track Hacker News job postings",
		Before: setup,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "log-level",
				Aliases: []string{"l"},
				Usage:   "Set logging level (debug, info, warn, error)",
				Value:   "info",
			},
		},
		Commands: []*cli.Command{
			{
				Name:   "serve",
				Usage:  "Serve the job listing web UI",
				Action: serveCommand,
				Flags: append(databaseFlags(),
					&cli.StringFlag{
						Name:    "addr",
						Aliases: []string{"a"},
						Usage:   "Listen address",
						Value:   ":8000",
					},
					&cli.StringFlag{
						Name:  "thread-url",
						Usage: "Hiring thread scraped by the UI trigger",
						Value: web.DefaultThreadURL,
					},
					&cli.IntFlag{
						Name:  "top-k",
						Usage: "Number of results per ranked search",
						Value: 20,
					},
				),
			},
			{
				Name:   "ingest",
				Usage:  "Scrape a hiring thread into the database",
				Action: ingestCommand,
				Flags: append(databaseFlags(),
					&cli.StringFlag{
						Name:     "url",
						Aliases:  []string{"u"},
						Usage:    "Hiring thread URL",
						Required: true,
					},
					&cli.IntFlag{
						Name:  "pool-size",
						Usage: "Worker pool size for concurrent embedding",
					},
				),
			},
			{
				Name:      "search",
				Usage:     "Rank stored postings against a query",
				Action:    searchCommand,
				ArgsUsage: "QUERY",
				Flags: append(databaseFlags(),
					&cli.IntFlag{
						Name:  "top-k",
						Usage: "Number of results per ranked search",
						Value: 20,
					},
				),
			},
			{
				Name:   "reembed",
				Usage:  "Reembed all postings with new embeddings",
				Action: reembedCommand,
				Flags: append(databaseFlags(),
					&cli.IntFlag{
						Name:  "batch-size",
						Usage: "Number of postings to process in each batch",
						Value: 100,
					},
					&cli.IntFlag{
						Name:  "report-interval",
						Usage: "Report progress every N postings",
						Value: 100,
					},
					&cli.IntFlag{
						Name:  "max-retries",
						Usage: "Maximum retry attempts for failed operations",
						Value: 3,
					},
					&cli.DurationFlag{
						Name:  "retry-delay",
						Usage: "Base delay for exponential backoff",
						Value: 1 * time.Second,
					},
					&cli.BoolFlag{
						Name:  "resume",
						Usage: "Continue from the last saved checkpoint",
					},
				),
			},
		},
	}

	if err := app.Run(os.Args); err != nil {
		log.Fatal(err)
	}
}

// databaseFlags are the flags every command that opens the store shares.
func databaseFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:    "db",
			Aliases: []string{"d"},
			Usage:   "Path to BadgerDB database directory",
			Value:   "hnjobs.db",
			EnvVars: []string{"HNJOBS_DB"},
		},
		&cli.StringFlag{
			Name:    "embedding-host",
			Usage:   "Embedding service host URL",
			Value:   "http://localhost:11434/v1",
			EnvVars: []string{"HNJOBS_EMBEDDING_HOST"},
		},
		&cli.StringFlag{
			Name:    "embedding-model",
			Usage:   "Embedding model name",
			Value:   "embeddinggemma",
			EnvVars: []string{"HNJOBS_EMBEDDING_MODEL"},
		},
		&cli.StringFlag{
			Name:    "backup-dir",
			Usage:   "Directory for pre-ingestion snapshots",
			Value:   "backups",
			EnvVars: []string{"HNJOBS_BACKUP_DIR"},
		},
	}
}

func openDatabase(c *cli.Context, extra ...hnjobs.DatabaseOption) (*hnjobs.Database, error) {
	aiConfig := ai.NewConfig(
		ai.WithEmbeddingHost(c.String("embedding-host")),
		ai.WithEmbeddingModel(c.String("embedding-model")),
	)
	if err := aiConfig.Validate(); err != nil {
		return nil, fmt.Errorf("invalid AI configuration: %w", err)
	}

	opts := append([]hnjobs.DatabaseOption{
		hnjobs.WithAIConfig(aiConfig),
		hnjobs.WithBackupDir(c.String("backup-dir")),
	}, extra...)

	db, err := hnjobs.NewDatabase(c.String("db"), opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	return db, nil
}

func serveCommand(c *cli.Context) error {
	db, err := openDatabase(c, hnjobs.WithTopK(c.Int("top-k")))
	if err != nil {
		return err
	}
	defer db.Close()

	server := web.NewServer(db, web.WithThreadURL(c.String("thread-url")))
	return server.Run(c.String("addr"))
}

func ingestCommand(c *cli.Context) error {
	db, err := openDatabase(c)
	if err != nil {
		return err
	}
	defer db.Close()

	var opts []ingest.Option
	if size := c.Int("pool-size"); size > 0 {
		opts = append(opts, ingest.WithPoolSize(size))
	}

	ingestor, err := db.NewIngestor(opts...)
	if err != nil {
		return fmt.Errorf("failed to create ingestor: %w", err)
	}
	defer ingestor.Release()

	existing, added := ingestor.Ingest(context.Background(), c.String("url"))
	fmt.Printf("Existing jobs: %d, New jobs added: %d\n", existing, added)
	return nil
}

func searchCommand(c *cli.Context) error {
	query := strings.Join(c.Args().Slice(), " ")

	db, err := openDatabase(c, hnjobs.WithTopK(c.Int("top-k")))
	if err != nil {
		return err
	}
	defer db.Close()

	results := db.Search(context.Background(), query)
	if len(results) == 0 {
		fmt.Println("No postings found.")
		return nil
	}

	for i, posting := range results {
		fmt.Printf("--- %d. [%d] %s", i+1, posting.Id, posting.Author)
		if posting.HasExternalId() {
			fmt.Printf("  %s", render.ItemURL(posting.ExternalId))
		}
		fmt.Printf("\n%s\n\n", posting.Text)
	}
	return nil
}

func reembedCommand(c *cli.Context) error {
	config := &reembed.Config{
		BatchSize:      c.Int("batch-size"),
		ReportInterval: c.Int("report-interval"),
		MaxRetries:     c.Int("max-retries"),
		RetryDelay:     c.Duration("retry-delay"),
		Resume:         c.Bool("resume"),
	}

	if config.BatchSize <= 0 {
		return fmt.Errorf("batch-size must be greater than 0")
	}
	if config.ReportInterval <= 0 {
		return fmt.Errorf("report-interval must be greater than 0")
	}
	if config.MaxRetries <= 0 {
		return fmt.Errorf("max-retries must be greater than 0")
	}

	db, err := openDatabase(c)
	if err != nil {
		return err
	}
	defer db.Close()

	fmt.Fprintf(os.Stderr, "Database: %s\n", c.String("db"))
	fmt.Fprintf(os.Stderr, "Embedding host: %s\n", c.String("embedding-host"))
	fmt.Fprintf(os.Stderr, "Embedding model: %s\n", c.String("embedding-model"))
	fmt.Fprintln(os.Stderr)

	reembedder := db.NewReembedder(config, os.Stderr)
	if err := reembedder.Run(context.Background()); err != nil {
		return fmt.Errorf("reembedding failed: %w", err)
	}
	return nil
}

func setup(c *cli.Context) error {
	// Optional .env for local development; absence is fine.
	_ = godotenv.Load()

	levelStr := strings.ToLower(c.String("log-level"))

	var level slog.Level
	switch levelStr {
	case "debug":
		level = slog.LevelDebug
	case "info":
		level = slog.LevelInfo
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		return fmt.Errorf("invalid log level %q: must be one of debug, info, warn, error", levelStr)
	}

	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: level,
	}))
	slog.SetDefault(logger)

	return nil
}
