package legal

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/vidhi/internal/core/domain"
)

const penalCode = `{
  "act_title": "The Indian Penal Code",
  "act_number": 45,
  "date_of_commencement": "1860-10-06",
  "preamble": "Whereas it is expedient to provide a general Penal Code for India.",
  "chapters": [
    {
      "chapter_number": "XVI",
      "chapter_title": "Of Offences Affecting the Human Body",
      "sections": [
        {
          "section_number": 299,
          "section_title": "Culpable homicide",
          "text": "Whoever causes death by doing an act with the intention of causing death commits culpable homicide.",
          "sub_sections": [
            {"sub_section_number": "(1)", "text": "First sub-section."},
            {"sub_section_number": "(2)", "term": "Death", "definition": "Death of a human being."},
            {"sub_section_number": "(3)", "text": "   "}
          ],
          "clauses": [
            {"clause_label": "(a)", "text": "with the intention of causing death"},
            {"clause_label": "(b)", "text": ""}
          ],
          "explanations": [
            {"explanation_number": 1, "content": "A person who causes bodily injury is deemed to have caused death."},
            {"explanation_number": 2, "types": [
              {"type": "Direct", "definition": "caused by the act itself"},
              {"type": "", "definition": ""}
            ]}
          ]
        },
        {
          "section_number": "300",
          "section_title": "Murder",
          "text": ""
        }
      ]
    }
  ]
}`

func TestNew(t *testing.T) {
	n := New()
	require.NotNil(t, n)
	assert.Equal(t, "legal", n.Name())
}

func TestNormalise_Act(t *testing.T) {
	provisions, err := New().Normalise(context.Background(), "data/ipc_main.json", []byte(penalCode))
	require.NoError(t, err)

	texts := make([]string, len(provisions))
	for i, p := range provisions {
		texts[i] = p.Text
	}
	assert.Equal(t, []string{
		"Preamble: Whereas it is expedient to provide a general Penal Code for India.",
		"Section 299 — Culpable homicide: Whoever causes death by doing an act with the intention of causing death commits culpable homicide.",
		"Section 299(1): First sub-section.",
		"Section 299(2): Death: Death of a human being.",
		"Section 299(a): with the intention of causing death",
		"Explanation 1: A person who causes bodily injury is deemed to have caused death.",
		"Explanation 2: Direct — caused by the act itself",
	}, texts)
}

func TestNormalise_Metadata(t *testing.T) {
	provisions, err := New().Normalise(context.Background(), "ipc.json", []byte(penalCode))
	require.NoError(t, err)
	require.Len(t, provisions, 7)

	assert.Equal(t, map[string]any{
		domain.MetaActTitle:     "The Indian Penal Code",
		domain.MetaActNumber:    "45",
		domain.MetaCommencement: "1860-10-06",
		domain.MetaDocType:      "preamble",
	}, provisions[0].Metadata)

	assert.Equal(t, map[string]any{
		domain.MetaActTitle:      "The Indian Penal Code",
		domain.MetaActNumber:     "45",
		domain.MetaChapterNumber: "XVI",
		domain.MetaChapterTitle:  "Of Offences Affecting the Human Body",
		domain.MetaSectionNumber: "299",
		domain.MetaSectionTitle:  "Culpable homicide",
		domain.MetaDocType:       "section",
	}, provisions[1].Metadata)

	assert.Equal(t, "(2)", provisions[3].Metadata[domain.MetaSubSectionNumber])
	assert.Equal(t, "subsection", provisions[3].Metadata[domain.MetaDocType])
	assert.NotContains(t, provisions[3].Metadata, domain.MetaActNumber)

	assert.Equal(t, "(a)", provisions[4].Metadata[domain.MetaClauseLabel])
	assert.Equal(t, "clause", provisions[4].Metadata[domain.MetaDocType])

	assert.Equal(t, "2", provisions[6].Metadata[domain.MetaExplanationNumber])
	assert.Equal(t, "explanation", provisions[6].Metadata[domain.MetaDocType])
}

func TestNormalise_PreambleOnly(t *testing.T) {
	provisions, err := New().Normalise(context.Background(), "coi.json",
		[]byte(`{"act_title": "Constitution of India", "preamble": "WE, THE PEOPLE OF INDIA"}`))

	require.NoError(t, err)
	require.Len(t, provisions, 1)
	assert.Equal(t, "Preamble: WE, THE PEOPLE OF INDIA", provisions[0].Text)
	assert.NotContains(t, provisions[0].Metadata, domain.MetaActNumber)
}

func TestNormalise_EmptyDocuments(t *testing.T) {
	tests := []struct {
		name string
		data string
	}{
		{"blank preamble", `{"preamble": "  "}`},
		{"null preamble", `{"preamble": null}`},
		{"empty chapters", `{"chapters": []}`},
		{"section without text", `{"chapters": [{"sections": [{"section_number": 1}]}]}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			provisions, err := New().Normalise(context.Background(), "x.json", []byte(tt.data))

			require.NoError(t, err)
			assert.Empty(t, provisions)
		})
	}
}

func TestNormalise_Invalid(t *testing.T) {
	tests := []struct {
		name string
		data string
	}{
		{"not json", `{chapters`},
		{"array", `[1, 2]`},
		{"missing structure", `{"act_title": "Orphan"}`},
		{"object as text", `{"chapters": [{"sections": [{"text": {"a": 1}}]}]}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := New().Normalise(context.Background(), "bad.json", []byte(tt.data))

			require.Error(t, err)
			assert.True(t, errors.Is(err, domain.ErrInvalidDocument))
			assert.Contains(t, err.Error(), "bad.json")
		})
	}
}

func TestNormalise_Cancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := New().Normalise(ctx, "ipc.json", []byte(penalCode))

	assert.True(t, errors.Is(err, context.Canceled))
}
