// Package services implements the driving port interfaces.
// Services contain the core business logic and orchestrate
// calls to driven ports (adapters).
//
// The answer pipeline runs expansion, multi-index retrieval, cross-linking,
// reranking, context assembly and synthesis in order. Every stage has a
// fallback, so a question always produces an answer string. Ingestion runs
// normalisation, chunking, embedding and upsert with retries.
package services
