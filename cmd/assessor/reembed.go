package main

import (
	"fmt"
	"io"
	"os"
	"time"

	"github.com/urfave/cli/v2"

	"github.com/poiesic/assessor"
	"github.com/poiesic/assessor/reembed"
)

func reembedCommand(c *cli.Context) error {
	db, err := assessor.NewDatabase(c.String("db"), assessor.WithAIConfig(aiConfigFromFlags(c)))
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer db.Close()

	config := reembed.DefaultConfig()
	config.BatchSize = c.Int("batch-size")
	config.Backoff.Attempts = c.Int("max-retries")
	config.Backoff.BaseDelay = c.Duration("retry-delay")

	var progress io.Writer = os.Stderr
	if c.Bool("quiet") {
		progress = nil
	}

	reembedder, err := db.NewReembedder(c.String("collection"), config, progress)
	if err != nil {
		return err
	}
	stats, err := reembedder.Run(c.Context)
	if err != nil {
		return err
	}

	fmt.Fprintf(os.Stdout, "Reembedded %d of %d chunks in %v\n", stats.Updated, stats.Total, stats.Elapsed.Round(time.Second))
	for _, f := range stats.Failures {
		fmt.Fprintf(os.Stdout, "  failed: %s\n", f)
	}
	return nil
}
