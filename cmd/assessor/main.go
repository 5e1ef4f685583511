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
	"os/signal"
	"strings"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/urfave/cli/v2"

	"github.com/poiesic/assessor/ai"
	"github.com/poiesic/assessor/chunking"
	"github.com/poiesic/assessor/ingestion"
	"github.com/poiesic/assessor/reembed"
	"github.com/poiesic/assessor/search"
)

const (
	defaultCollection = "Bill"
	defaultDB         = "./data"
)

func main() {
	// A missing .env file is fine; the environment may already be set.
	_ = godotenv.Load()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := newApp().RunContext(ctx, os.Args); err != nil {
		log.Fatal(err)
	}
}

func newApp() *cli.App {
	return &cli.App{
		Name:  "assessor",
		Usage: "Collect legislative proposals and load them into a searchable chunk store",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "log-level",
				Aliases: []string{"l"},
				Usage:   "Set logging level (debug, info, warn, error)",
				Value:   "info",
				EnvVars: []string{"ASSESSOR_LOG_LEVEL"},
			},
		},
		Before: setupLogger,
		Commands: []*cli.Command{
			{
				Name:   "houses",
				Usage:  "List the legislative houses that can be collected",
				Action: housesCommand,
			},
			{
				Name:   "collect",
				Usage:  "Collect proposals from one or more houses into JSON files",
				Action: collectCommand,
				Flags: []cli.Flag{
					&cli.StringSliceFlag{
						Name:     "house",
						Aliases:  []string{"H"},
						Usage:    "House slug to collect (repeatable, see the houses command)",
						Required: true,
					},
					&cli.StringFlag{
						Name:    "datasets",
						Usage:   "Directory holding the per-house dataset files",
						EnvVars: []string{"ASSESSOR_DATASETS"},
					},
					&cli.StringFlag{
						Name:    "output",
						Aliases: []string{"o"},
						Usage:   "Output directory",
						Value:   "output",
					},
					&cli.BoolFlag{
						Name:  "each",
						Usage: "Also write one file per proposal",
					},
					&cli.IntFlag{
						Name:  "limit",
						Usage: "Maximum number of items per house (0 for no limit)",
					},
					&cli.IntFlag{
						Name:  "workers",
						Usage: "Documents downloaded concurrently per house (0 for one per CPU)",
					},
				},
			},
			{
				Name:   "import",
				Usage:  "Chunk proposals from JSON files and load them into the store",
				Action: importCommand,
				Flags: append(storeFlags(),
					&cli.StringSliceFlag{
						Name:     "input",
						Aliases:  []string{"i"},
						Usage:    "JSON file of proposals (repeatable)",
						Required: true,
					},
					&cli.BoolFlag{
						Name:  "reset",
						Usage: "Drop and recreate the collection before importing",
					},
					&cli.BoolFlag{
						Name:  "dry-run",
						Usage: "Chunk and report without writing to the store",
					},
					&cli.IntFlag{
						Name:  "batch-size",
						Usage: "Number of chunks written per batch",
						Value: ingestion.DefaultBatchSize,
					},
					&cli.IntFlag{
						Name:  "failure-threshold",
						Usage: "Abort once more than this many chunks have failed",
						Value: ingestion.DefaultFailureThreshold,
					},
					&cli.IntFlag{
						Name:  "window",
						Usage: "Maximum tokens per chunk",
						Value: chunking.DefaultWindow,
					},
					&cli.IntFlag{
						Name:  "overlap",
						Usage: "Tokens shared between neighbouring chunks",
						Value: chunking.DefaultOverlap,
					},
					&cli.IntFlag{
						Name:  "workers",
						Usage: "Proposals chunked concurrently (0 for half the CPUs)",
					},
					&cli.BoolFlag{
						Name:  "no-vectorizer",
						Usage: "Store chunks without embedding them",
					},
					&cli.BoolFlag{
						Name:    "quiet",
						Aliases: []string{"q"},
						Usage:   "Do not print progress",
					},
				),
			},
			{
				Name:      "search",
				Usage:     "Search the collection",
				ArgsUsage: "<query>",
				Action:    searchCommand,
				Flags: append(storeFlags(),
					&cli.IntFlag{
						Name:    "limit",
						Aliases: []string{"n"},
						Usage:   "Maximum number of results",
						Value:   5,
					},
					&cli.Float64Flag{
						Name:  "min-similarity",
						Usage: "Lowest similarity a chunk needs to be returned",
						Value: float64(search.DefaultMinSimilarity),
					},
				),
			},
			{
				Name:   "reembed",
				Usage:  "Recompute the vectors of every chunk in the collection",
				Action: reembedCommand,
				Flags: append(storeFlags(),
					&cli.IntFlag{
						Name:  "batch-size",
						Usage: "Number of chunks embedded per call",
						Value: reembed.DefaultBatchSize,
					},
					&cli.IntFlag{
						Name:  "max-retries",
						Usage: "Attempts per embedding call",
						Value: ai.DefaultBackoff().Attempts,
					},
					&cli.DurationFlag{
						Name:  "retry-delay",
						Usage: "Base delay between attempts",
						Value: ai.DefaultBackoff().BaseDelay,
					},
					&cli.BoolFlag{
						Name:    "quiet",
						Aliases: []string{"q"},
						Usage:   "Do not print progress",
					},
				),
			},
			{
				Name:  "collection",
				Usage: "Manage the chunk collection",
				Subcommands: []*cli.Command{
					{
						Name:   "info",
						Usage:  "Show whether the collection exists and how many chunks it holds",
						Action: collectionInfoCommand,
						Flags:  storeFlags(),
					},
					{
						Name:   "reset",
						Usage:  "Drop and recreate the collection",
						Action: collectionResetCommand,
						Flags:  storeFlags(),
					},
				},
			},
		},
	}
}

// storeFlags are shared by every command that opens the store.
func storeFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:    "db",
			Aliases: []string{"d"},
			Usage:   "Path to BadgerDB database directory",
			Value:   defaultDB,
			EnvVars: []string{"ASSESSOR_DB"},
		},
		&cli.StringFlag{
			Name:    "collection",
			Aliases: []string{"c"},
			Usage:   "Collection name",
			Value:   defaultCollection,
			EnvVars: []string{"ASSESSOR_COLLECTION"},
		},
		&cli.StringFlag{
			Name:    "embedding-host",
			Usage:   "Embedding service host URL",
			Value:   ai.DefaultEmbeddingHost,
			EnvVars: []string{"ASSESSOR_EMBEDDING_HOST"},
		},
		&cli.StringFlag{
			Name:    "embedding-model",
			Usage:   "Embedding model name (empty stores chunks without vectors)",
			Value:   ai.DefaultEmbeddingModel,
			EnvVars: []string{"ASSESSOR_EMBEDDING_MODEL"},
		},
		&cli.StringFlag{
			Name:    "api-key",
			Usage:   "Embedding service API key",
			EnvVars: []string{"OPENAI_API_KEY"},
		},
	}
}

func aiConfigFromFlags(c *cli.Context) *ai.Config {
	return ai.NewConfig(
		ai.WithEmbeddingHost(c.String("embedding-host")),
		ai.WithEmbeddingModel(c.String("embedding-model")),
		ai.WithAPIToken(c.String("api-key")),
	)
}

func setupLogger(c *cli.Context) error {
	// Get log level from flag and normalize to lowercase
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
