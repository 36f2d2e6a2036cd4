// Package domain defines the core business entities for vidhi.
//
// This package is part of the hexagonal architecture's innermost layer.
// It has NO external dependencies and defines the fundamental types:
//
//   - Act: A structured legal document as read from disk
//   - Provision: One normalised legal unit (section, clause, ...)
//   - Chunk: An embedded, metadata-rich window of a provision
//   - Match: A chunk returned by a vector index query
//   - Session: The transcript of one conversation
//
// # Architectural Position
//
// Domain is at the centre of the hexagon. It may only import
// the Go standard library. All other packages depend on domain,
// never the reverse.
//
// # Import Rules
//
//   - Can Import: Standard library only
//   - Cannot Import: Any internal/ package, any external dependency
package domain
