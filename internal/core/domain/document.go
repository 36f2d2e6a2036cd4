package domain

import (
	"crypto/md5" //nolint:gosec // content fingerprint, not a security boundary
	"encoding/hex"
	"fmt"
	"path/filepath"
	"strings"
)

// Metadata keys attached to provisions and chunks.
const (
	MetaText       = "text"
	MetaSource     = "source"
	MetaType       = "type"
	MetaDocType    = "doc_type"
	MetaKeywords   = "keywords"
	MetaIndexName  = "index_source"
	MetaChunkIndex = "chunk_index"
	MetaChunkTotal = "total_chunks"
	MetaIsChunked  = "is_chunked"

	MetaActTitle          = "act_title"
	MetaActNumber         = "act_number"
	MetaCommencement      = "date_of_commencement"
	MetaChapterNumber     = "chapter_number"
	MetaChapterTitle      = "chapter_title"
	MetaSectionNumber     = "section_number"
	MetaSectionTitle      = "section_title"
	MetaSubSectionNumber  = "sub_section_number"
	MetaClauseLabel       = "clause_label"
	MetaExplanationNumber = "explanation_number"
)

// DocType is the structural level a provision was produced from.
type DocType string

// Structural levels emitted by the legal normaliser.
const (
	DocTypePreamble    DocType = "preamble"
	DocTypeSection     DocType = "section"
	DocTypeSubSection  DocType = "subsection"
	DocTypeClause      DocType = "clause"
	DocTypeExplanation DocType = "explanation"
)

// SourceType classifies a source file by its name.
type SourceType string

// Source file classifications.
const (
	SourceTypeAmendment SourceType = "amendment"
	SourceTypeSchedule  SourceType = "schedule"
	SourceTypeFootnote  SourceType = "footnote"
	SourceTypeMain      SourceType = "main"
	SourceTypeMisc      SourceType = "misc"
)

// DetectSourceType classifies a source file from its lower-cased name.
// The first matching keyword wins.
func DetectSourceType(filename string) SourceType {
	name := strings.ToLower(filepath.Base(filename))
	switch {
	case strings.Contains(name, "amendment"):
		return SourceTypeAmendment
	case strings.Contains(name, "schedule"):
		return SourceTypeSchedule
	case strings.Contains(name, "footnote"):
		return SourceTypeFootnote
	case strings.Contains(name, "main"), strings.Contains(name, "clean"):
		return SourceTypeMain
	default:
		return SourceTypeMisc
	}
}

// Provision is one normalised unit of a legal document. Its Text is the
// human-readable rendering of the unit and Metadata carries its locators.
type Provision struct {
	// Text is the rendered provision, e.g. "Section 21 — Protection of life: ...".
	Text string

	// Metadata contains locators and descriptive fields.
	Metadata map[string]any
}

// Chunk is the unit of retrieval: a window of a provision's text together
// with its embedding and flattened metadata.
type Chunk struct {
	// ID is deterministic: see ChunkID.
	ID string

	// Text is the chunk body.
	Text string

	// Embedding is the vector representation. Empty until embedded.
	Embedding []float32

	// Metadata contains only scalars and string lists once sanitised.
	Metadata map[string]any
}

// ChunkID returns "<source filename>___<position>___<first 8 hex of md5(text)>".
// Re-ingesting the same file therefore overwrites rather than duplicates.
func ChunkID(source string, position int, text string) string {
	sum := md5.Sum([]byte(text)) //nolint:gosec // see import
	return fmt.Sprintf("%s___%d___%s", filepath.Base(source), position, hex.EncodeToString(sum[:])[:8])
}
