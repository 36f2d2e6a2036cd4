// Package vector holds helpers shared by the vector store backends:
// cosine similarity, top-k selection and metadata copying.
//
// Backends live in subpackages:
//
//   - sqlite: exact cosine scan over a local SQLite file
//   - qdrant: Qdrant server over gRPC
//   - memory: in-process store for tests
package vector
