package main

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"text/tabwriter"

	"github.com/urfave/cli/v2"
	"golang.org/x/sync/errgroup"

	"github.com/poiesic/assessor/source"
)

func housesCommand(c *cli.Context) error {
	return writeHouses(os.Stdout)
}

func writeHouses(out io.Writer) error {
	w := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "SLUG\tUF\tKIND\tNAME")
	for _, h := range source.Houses() {
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\n", h.Slug, strings.ToUpper(h.UF), h.Kind, h.Name)
	}
	return w.Flush()
}

func collectCommand(c *cli.Context) error {
	ctx := c.Context

	var houses []*source.House
	for _, slug := range c.StringSlice("house") {
		h, err := source.LookupHouse(slug)
		if err != nil {
			return err
		}
		houses = append(houses, h)
	}

	opts := []source.Option{
		source.WithDatasetsDir(c.String("datasets")),
		source.WithLimit(c.Int("limit")),
		source.WithWorkers(c.Int("workers")),
	}
	output := c.String("output")

	g, ctx := errgroup.WithContext(ctx)
	for _, h := range houses {
		g.Go(func() error {
			logger := slog.Default().With("house", h.Slug)

			src, err := source.New(h, opts...)
			if err != nil {
				return fmt.Errorf("%s: %w", h.Slug, err)
			}
			proposals, err := src.Collect(ctx)
			if err != nil {
				if proposals == nil {
					return fmt.Errorf("%s: %w", h.Slug, err)
				}
				logger.Warn("some documents could not be read", "err", err)
			}

			path, err := source.WriteJSON(output, h, proposals)
			if err != nil {
				return err
			}
			if c.Bool("each") {
				if err := source.WriteEach(output, h, proposals); err != nil {
					return err
				}
			}
			logger.Info("proposals written", "count", len(proposals), "path", path)
			return nil
		})
	}
	return g.Wait()
}
