// Package reembed recomputes the vectors of chunks already stored in a
// collection, typically after the embedding model changes.
//
// Records are read back in batches, their vector text is embedded again with
// retry and exponential backoff, the vectors are normalized for cosine
// similarity and the records are written back in place. IDs and insertion
// times are preserved.
package reembed
