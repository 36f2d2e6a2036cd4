package domain

import "errors"

// Domain errors represent business logic failures.
// These are distinct from infrastructure errors.
var (
	// ErrNotFound indicates a requested entity does not exist.
	ErrNotFound = errors.New("not found")

	// ErrInvalidInput indicates malformed or invalid input.
	ErrInvalidInput = errors.New("invalid input")

	// ErrUnsupportedType indicates an unknown provider, backend or processor.
	ErrUnsupportedType = errors.New("unsupported type")

	// ErrInvalidDocument indicates a legal document that does not match the
	// structural schema. Fatal to that file only.
	ErrInvalidDocument = errors.New("invalid legal document")

	// ErrLLMUnavailable indicates the chat-completion service is not configured.
	ErrLLMUnavailable = errors.New("LLM service unavailable")

	// ErrEmbeddingUnavailable indicates the embedding service is not configured.
	ErrEmbeddingUnavailable = errors.New("embedding service unavailable")

	// ErrVectorStoreUnavailable indicates the vector store is not configured.
	ErrVectorStoreUnavailable = errors.New("vector store unavailable")

	// Ingestion Errors.

	// ErrIndexNotReady indicates an index did not become ready within the
	// readiness timeout. Aborts ingestion into that index.
	ErrIndexNotReady = errors.New("index not ready")

	// ErrDimensionMismatch indicates an embedding whose length differs from
	// the dimension of the index it targets.
	ErrDimensionMismatch = errors.New("embedding dimension mismatch")

	// ErrRetriesExhausted indicates a retried operation failed on every attempt.
	ErrRetriesExhausted = errors.New("retries exhausted")
)
