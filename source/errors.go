package source

import "errors"

var (
	// ErrUnknownHouse is returned when a house slug is not registered.
	ErrUnknownHouse = errors.New("unknown house")

	// ErrWrongKind is returned when a source is built for a house of another kind.
	ErrWrongKind = errors.New("house is not served by this source")

	// ErrDatasetsDirRequired is returned when a file based source has no datasets directory.
	ErrDatasetsDirRequired = errors.New("datasets directory is required")

	// ErrMalformedJSON is returned when an input file cannot be decoded.
	ErrMalformedJSON = errors.New("malformed JSON input")

	// ErrEmptyPDF is returned when a PDF yields no extractable text.
	ErrEmptyPDF = errors.New("PDF has no extractable text")

	// ErrFetchFailed is returned when a remote document cannot be retrieved.
	ErrFetchFailed = errors.New("fetch failed")

	// ErrDocumentTooLarge is returned when a response body exceeds the download limit.
	ErrDocumentTooLarge = errors.New("document too large")
)
