// Package driven defines the interfaces that core calls OUT to infrastructure.
//
// These are the "driven" or "secondary" ports in hexagonal architecture.
// Core services depend on these interfaces, and infrastructure adapters
// implement them.
//
// # Query-time Interfaces
//
//   - EmbeddingService: Turns text into vectors (query and document mode)
//   - VectorStore / VectorIndex: Named nearest-neighbour indexes
//   - LLMService: Chat completion for expansion, reranking and answers
//   - SessionStore: Persists conversation transcripts
//   - PromptStore: User-editable prompt templates
//
// # Ingestion Interfaces
//
//   - Normaliser: Turns a legal document into provisions
//   - PostProcessor / PostProcessorPipeline: Chunking and enrichment
//
// # Configuration
//
//   - ConfigStore: Application configuration
//   - AIConfigValidator: Connectivity checks for provider settings
//
// # Import Rules
//
//   - Can Import: domain package only
//   - Cannot Import: Any adapter, normaliser or postprocessor package
package driven
