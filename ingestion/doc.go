// Package ingestion loads proposals into a chunk store.
//
// An Expander validates proposals and splits their text into chunk records,
// dropping proposals that lack a required field. An Ingestor submits those
// records to a storage.ChunkStore in fixed-size batches, one batch at a time:
//
//	expander, err := ingestion.NewExpander(chunker, 4, logger)
//	if err != nil {
//	    return err
//	}
//	defer expander.Release()
//
//	ingestor, err := ingestion.NewIngestor(store, "Bill", ingestion.WithBatchSize(10))
//	if err != nil {
//	    return err
//	}
//	report, err := ingestor.Ingest(ctx, expander.Records(proposals))
//
// Records are keyed by their content ID, so ingesting the same input twice
// leaves the store unchanged. Per-record failures reported by the store are
// counted across the run; once the count exceeds the failure threshold no
// further batches are submitted. Nothing already written is rolled back, and
// failed records are never retried by the ingestor. Running again is safe.
//
// Ingest reports outcomes in a Report instead of failing; it only returns an
// error when its context is canceled.
package ingestion
