package main

import (
	"fmt"
	"os"

	"github.com/urfave/cli/v2"

	"github.com/poiesic/assessor"
)

func openForAdmin(c *cli.Context) (*assessor.Database, error) {
	db, err := assessor.NewDatabase(c.String("db"), assessor.WithoutVectorizer())
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	return db, nil
}

func collectionInfoCommand(c *cli.Context) error {
	db, err := openForAdmin(c)
	if err != nil {
		return err
	}
	defer db.Close()

	name := c.String("collection")
	exists, err := db.Store().CollectionExists(c.Context, name)
	if err != nil {
		return err
	}
	if !exists {
		fmt.Fprintf(os.Stdout, "Collection %q does not exist\n", name)
		return nil
	}
	count, err := db.Store().CountChunks(c.Context, name)
	if err != nil {
		return err
	}
	fmt.Fprintf(os.Stdout, "Collection %q: %d chunks\n", name, count)
	return nil
}

func collectionResetCommand(c *cli.Context) error {
	db, err := openForAdmin(c)
	if err != nil {
		return err
	}
	defer db.Close()

	name := c.String("collection")
	if err := db.EnsureCollection(c.Context, name, true); err != nil {
		return err
	}
	fmt.Fprintf(os.Stdout, "Collection %q reset\n", name)
	return nil
}
