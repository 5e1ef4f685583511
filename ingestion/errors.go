package ingestion

import "errors"

var (
	// ErrStoreRequired is returned when a chunk store is not provided.
	ErrStoreRequired = errors.New("chunk store required")

	// ErrCollectionRequired is returned when no collection name is given.
	ErrCollectionRequired = errors.New("collection name required")

	// ErrChunkerRequired is returned when an expander has no chunker.
	ErrChunkerRequired = errors.New("chunker required")

	// ErrInvalidBatchSize is returned when the batch size is not positive.
	ErrInvalidBatchSize = errors.New("batch size must be greater than 0")

	// ErrInvalidThreshold is returned when the failure threshold is negative.
	ErrInvalidThreshold = errors.New("failure threshold cannot be negative")
)
