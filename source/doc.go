// Package source collects legislative proposals from the houses that publish
// them and hands them over as core.Proposal values.
//
// Each house is described by a capability record in a registry keyed by its
// slug. The record carries the public URL builder, the extra metadata join
// keys and any extra noise patterns. Three kinds of collectors serve the
// registry:
//
//   - legislapi: state assembly exports with a metadata file and a full text
//     file, joined by title through a MetadataTable.
//   - camara: the federal chamber export, one file with everything.
//   - cidsp: the São Paulo city council listing, one PDF per proposal,
//     downloaded and normalized on a worker pool.
//
// Basic usage:
//
//	house, err := source.LookupHouse("sp")
//	if err != nil {
//		return err
//	}
//	src, err := source.New(house, source.WithDatasetsDir("/data/legisla"))
//	if err != nil {
//		return err
//	}
//	proposals, err := src.Collect(ctx)
//	if err != nil {
//		return err
//	}
//	path, err := source.WriteJSON("output", house, proposals)
package source
