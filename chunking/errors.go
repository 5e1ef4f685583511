package chunking

import "errors"

var (
	// ErrInvalidWindow is returned when the window is not positive or the
	// overlap is negative or not smaller than the window.
	ErrInvalidWindow = errors.New("invalid chunk window")

	// ErrTokenizerRequired is returned when no tokenizer is provided.
	ErrTokenizerRequired = errors.New("tokenizer required")
)
