package domain

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
)

// Act is a structured legal document as stored on disk, one JSON file per act.
type Act struct {
	ActTitle           Text      `json:"act_title"`
	ActNumber          Text      `json:"act_number"`
	DateOfCommencement Text      `json:"date_of_commencement"`
	Preamble           *Text     `json:"preamble"`
	Chapters           []Chapter `json:"chapters"`
}

// Chapter groups sections.
type Chapter struct {
	ChapterNumber Text      `json:"chapter_number"`
	ChapterTitle  Text      `json:"chapter_title"`
	Sections      []Section `json:"sections"`
}

// Section is a numbered provision with optional sub-units.
type Section struct {
	SectionNumber Text          `json:"section_number"`
	SectionTitle  Text          `json:"section_title"`
	Text          Text          `json:"text"`
	SubSections   []SubSection  `json:"sub_sections"`
	Clauses       []Clause      `json:"clauses"`
	Explanations  []Explanation `json:"explanations"`
}

// SubSection carries either free text or a term and its definition.
type SubSection struct {
	SubSectionNumber Text `json:"sub_section_number"`
	Text             Text `json:"text"`
	Term             Text `json:"term"`
	Definition       Text `json:"definition"`
}

// Clause is a lettered clause of a section.
type Clause struct {
	ClauseLabel Text `json:"clause_label"`
	Text        Text `json:"text"`
}

// Explanation carries either content or a list of typed definitions.
type Explanation struct {
	ExplanationNumber Text              `json:"explanation_number"`
	Content           Text              `json:"content"`
	Types             []ExplanationType `json:"types"`
}

// ExplanationType is one typed definition within an explanation.
type ExplanationType struct {
	Type       Text `json:"type"`
	Definition Text `json:"definition"`
}

// Text is a JSON scalar read as a string. Source documents are inconsistent
// about numbering ("21" vs 21), so numbers and booleans are accepted and
// null decodes to "".
type Text string

// UnmarshalJSON implements json.Unmarshaler.
func (t *Text) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		*t = ""
		return nil
	}
	switch data[0] {
	case '"':
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*t = Text(s)
	case 't', 'f':
		var b bool
		if err := json.Unmarshal(data, &b); err != nil {
			return err
		}
		*t = Text(strconv.FormatBool(b))
	default:
		var n json.Number
		if err := json.Unmarshal(data, &n); err != nil {
			return fmt.Errorf("expected string or number, got %s: %w", data, ErrInvalidDocument)
		}
		*t = Text(n.String())
	}
	return nil
}

// String returns the text.
func (t Text) String() string {
	return string(t)
}

// HasPreamble reports whether the document carried a preamble key.
func (a *Act) HasPreamble() bool {
	return a.Preamble != nil
}

// ParseAct decodes and validates an act document. A document must carry
// at least one of "chapters" or "preamble".
func ParseAct(data []byte) (*Act, error) {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidDocument, err)
	}
	_, hasChapters := raw["chapters"]
	_, hasPreamble := raw["preamble"]
	if !hasChapters && !hasPreamble {
		return nil, fmt.Errorf("%w: must contain 'chapters' or 'preamble'", ErrInvalidDocument)
	}

	var act Act
	if err := json.Unmarshal(data, &act); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidDocument, err)
	}
	if hasPreamble && act.Preamble == nil {
		empty := Text("")
		act.Preamble = &empty
	}
	return &act, nil
}
