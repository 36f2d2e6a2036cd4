package domain

import "strings"

// Match is a chunk returned by a vector index query, tagged with the
// logical index it came from.
type Match struct {
	// ID is the chunk ID.
	ID string

	// Score is the similarity score reported by the index. Higher is closer.
	Score float64

	// IndexSource is the logical index name, e.g. "constitution".
	IndexSource string

	// Metadata is the chunk metadata stored alongside the vector.
	Metadata map[string]any
}

// Text returns the chunk body stored under the "text" metadata key.
func (m Match) Text() string {
	return MetaString(m.Metadata, MetaText)
}

// Source returns the index tag, or "unknown" when the match is untagged.
func (m Match) Source() string {
	if m.IndexSource == "" {
		return "unknown"
	}
	return m.IndexSource
}

// AnswerStatus describes how a question was resolved.
type AnswerStatus string

// Answer outcomes.
const (
	AnswerOK        AnswerStatus = "ok"
	AnswerEmpty     AnswerStatus = "empty_question"
	AnswerNoResults AnswerStatus = "no_results"
	AnswerNoContext AnswerStatus = "no_context"
	AnswerError     AnswerStatus = "error"
)

// Fixed messages returned to the caller when the pipeline stops early.
const (
	MsgEmptyQuestion = "Please provide a valid question."
	MsgNoResults     = "I couldn't find relevant information."
	MsgNoContext     = "I found data but couldn't extract meaningful content."
	MsgErrorPrefix   = "Error while answering: "
)

// Answer is the result of running a question through the pipeline.
// Text is always set, even when Status is not AnswerOK.
type Answer struct {
	// Question is the trimmed question text.
	Question string

	// Text is the answer or the fixed status message.
	Text string

	// Status is the outcome.
	Status AnswerStatus

	// Sources are the reranked matches the context was built from.
	Sources []Match

	// Context is the assembled context passed to the model.
	Context string

	// SessionID identifies the transcript the exchange was recorded in.
	SessionID string
}

// IsBlank reports whether s contains only whitespace.
func IsBlank(s string) bool {
	return strings.TrimSpace(s) == ""
}
