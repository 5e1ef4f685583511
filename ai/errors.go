package ai

import "errors"

var (
	// ErrInvalidMaxAttempts is returned when a retry policy allows no attempts.
	ErrInvalidMaxAttempts = errors.New("maxAttempts must be greater than 0")

	// ErrEmptyEmbedding is returned when the service answers without a vector.
	ErrEmptyEmbedding = errors.New("embedding service returned no vector")

	// ErrEmbeddingCount is returned when a batch call returns a different
	// number of vectors than texts sent.
	ErrEmbeddingCount = errors.New("embedding count does not match input")
)
