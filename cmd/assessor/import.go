package main

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/urfave/cli/v2"

	"github.com/poiesic/assessor"
	"github.com/poiesic/assessor/chunking"
	"github.com/poiesic/assessor/core"
	"github.com/poiesic/assessor/ingestion"
	"github.com/poiesic/assessor/source"
)

var errThresholdExceeded = errors.New("import aborted: failure threshold exceeded")

func importCommand(c *cli.Context) error {
	ctx := c.Context
	collection := c.String("collection")
	dryRun := c.Bool("dry-run")

	var proposals []*core.Proposal
	for _, path := range c.StringSlice("input") {
		loaded, err := source.LoadJSON(path)
		if err != nil {
			return err
		}
		slog.Info("loaded proposals", "path", path, "count", len(loaded))
		proposals = append(proposals, loaded...)
	}

	dbOpts := []assessor.DatabaseOption{assessor.WithAIConfig(aiConfigFromFlags(c))}
	if dryRun || c.Bool("no-vectorizer") || c.String("embedding-model") == "" {
		dbOpts = append(dbOpts, assessor.WithoutVectorizer())
	}
	db, err := assessor.NewDatabase(c.String("db"), dbOpts...)
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer db.Close()

	// Every configuration error must surface before the collection is touched.
	if err := chunking.ValidateWindow(c.Int("window"), c.Int("overlap")); err != nil {
		return err
	}
	var progress io.Writer = os.Stderr
	if c.Bool("quiet") {
		progress = nil
	}
	ingestor, err := db.NewIngestor(collection,
		ingestion.WithBatchSize(c.Int("batch-size")),
		ingestion.WithFailureThreshold(c.Int("failure-threshold")),
		ingestion.WithDryRun(dryRun),
		ingestion.WithProgress(progress, 0),
	)
	if err != nil {
		return err
	}
	chunker, err := db.NewChunker(c.Int("window"), c.Int("overlap"))
	if err != nil {
		return err
	}
	expander, err := db.NewExpander(chunker, c.Int("workers"))
	if err != nil {
		return err
	}
	defer expander.Release()

	if !dryRun {
		if err := db.EnsureCollection(ctx, collection, c.Bool("reset")); err != nil {
			return err
		}
	}

	report, err := ingestor.Ingest(ctx, expander.Records(proposals))
	if err != nil {
		return err
	}

	stats := expander.Stats()
	fmt.Fprintf(os.Stderr, "Proposals: %d (%d dropped)\n", stats.Proposals, stats.Dropped)
	fmt.Fprintf(os.Stderr, "Chunks: %d attempted, %d stored, %d failed in %d batches\n",
		report.Attempted, report.Succeeded(), report.Failed, report.Batches)
	for _, f := range report.Failures {
		fmt.Fprintf(os.Stderr, "  failed: %s\n", f)
	}
	if report.Stopped {
		return errThresholdExceeded
	}
	return nil
}
