package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/urfave/cli/v2"

	"github.com/poiesic/assessor"
	"github.com/poiesic/assessor/search"
)

const snippetLength = 200

func searchCommand(c *cli.Context) error {
	query := strings.Join(c.Args().Slice(), " ")
	if strings.TrimSpace(query) == "" {
		return fmt.Errorf("a query is required")
	}

	db, err := assessor.NewDatabase(c.String("db"), assessor.WithAIConfig(aiConfigFromFlags(c)))
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer db.Close()

	searcher, err := db.NewSearcher(search.WithMinSimilarity(float32(c.Float64("min-similarity"))))
	if err != nil {
		return err
	}
	results, err := searcher.Search(c.Context, c.String("collection"), query, c.Int("limit"))
	if err != nil {
		return err
	}

	if len(results) == 0 {
		fmt.Fprintln(os.Stdout, "No results.")
		return nil
	}
	for i, r := range results {
		p := r.Record.Proposal
		fmt.Fprintf(os.Stdout, "%d. [%.3f] %s (%s) chunk %d\n", i+1, r.Score, p.Title, p.House, r.Record.ChunkNumber)
		fmt.Fprintf(os.Stdout, "   %s\n", p.URL)
		fmt.Fprintf(os.Stdout, "   %s\n\n", snippet(r.Record.ChunkText, snippetLength))
	}
	return nil
}

func snippet(text string, max int) string {
	runes := []rune(text)
	if len(runes) <= max {
		return text
	}
	return string(runes[:max]) + "..."
}
