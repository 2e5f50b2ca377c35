// Package services implements the application core: the ingestion
// pipeline, the collection registry, the retrieval aggregator and the
// answer synthesizer. Services depend only on domain types and ports.
package services
