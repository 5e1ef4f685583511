// Package storage defines the contract between the ingestion pipeline and
// the store chunk records are loaded into.
//
// # Collections
//
// Records live in named collections. Collection lifecycle (existence,
// creation, reset) is handled before ingestion starts, see EnsureCollection;
// the ingestor treats the collection as a precondition.
//
// # Identity
//
// Records are keyed by core.ChunkID, which is derived from the chunk text
// alone. Writing the same chunk twice overwrites the first copy, so re-running
// an import never duplicates records.
//
// # Implementations
//
// The badger subpackage provides an embedded implementation:
//
//	store, err := badger.NewStore("/path/to/db")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer store.Close()
//
// For tests:
//
//	store, err := badger.NewMemoryStore()
package storage
