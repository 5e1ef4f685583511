package storage

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
)

// ValidateCollectionName rejects empty names and names containing the key
// separator.
func ValidateCollectionName(name string) error {
	if strings.TrimSpace(name) == "" {
		return fmt.Errorf("%w: empty name", ErrInvalidCollectionName)
	}
	if strings.ContainsAny(name, ":/\n") {
		return fmt.Errorf("%w: %q", ErrInvalidCollectionName, name)
	}
	return nil
}

// EnsureCollection makes sure the named collection exists. With reset set,
// an existing collection is deleted first and recreated empty.
func EnsureCollection(ctx context.Context, store CollectionManager, name string, reset bool, logger *slog.Logger) error {
	if logger == nil {
		logger = slog.Default()
	}

	exists, err := store.CollectionExists(ctx, name)
	if err != nil {
		return err
	}

	if exists && reset {
		if err := store.DeleteCollection(ctx, name); err != nil {
			return fmt.Errorf("failed to reset collection %s: %w", name, err)
		}
		logger.Info("collection reset", "collection", name)
		exists = false
	}

	if exists {
		logger.Info("collection already exists, skipping creation", "collection", name)
		return nil
	}

	if err := store.CreateCollection(ctx, name); err != nil {
		return err
	}
	logger.Info("collection created", "collection", name)
	return nil
}
