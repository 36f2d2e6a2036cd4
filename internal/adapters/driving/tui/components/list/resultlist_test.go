package list

import (
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/vidhi/internal/core/domain"
)

func testMatches() []domain.Match {
	return []domain.Match{
		{
			ID: "c-21", Score: 0.91, IndexSource: "constitution",
			Metadata: map[string]any{
				domain.MetaText:          "No person shall be deprived of his life or personal liberty",
				domain.MetaSectionNumber: "21",
				domain.MetaSectionTitle:  "Protection of life and personal liberty",
			},
		},
		{
			ID: "b-302", Score: 0.72, IndexSource: "criminal",
			Metadata: map[string]any{domain.MetaText: "Punishment for murder"},
		},
	}
}

func TestNewSourceList(t *testing.T) {
	l := NewSourceList(nil)

	require.NotNil(t, l)
	assert.True(t, l.IsEmpty())
	assert.Nil(t, l.SelectedSource())
	assert.Contains(t, l.View(), "No sources")
}

func TestSourceList_View(t *testing.T) {
	l := NewSourceList(nil)
	l.SetDimensions(120, 20)
	l.SetSources(testMatches())

	view := l.View()

	assert.Contains(t, view, "Sources (2)")
	assert.Contains(t, view, "21. Protection of life and personal liberty")
	assert.Contains(t, view, "[constitution]")
	assert.Contains(t, view, "[criminal]")
	assert.Contains(t, view, "b-302")
	assert.Contains(t, view, "0.91")
}

func TestSourceList_Navigation(t *testing.T) {
	l := NewSourceList(nil)
	l.SetSources(testMatches())

	l.Update(tea.KeyMsg{Type: tea.KeyDown})
	assert.Equal(t, 1, l.Selected())
	l.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'j'}})
	assert.Equal(t, 1, l.Selected())
	l.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'k'}})
	assert.Equal(t, 0, l.Selected())
	l.MoveUp()
	assert.Equal(t, 0, l.Selected())

	assert.Equal(t, "c-21", l.SelectedSource().ID)
}

func TestSourceList_SetSourcesResetsSelection(t *testing.T) {
	l := NewSourceList(nil)
	l.SetSources(testMatches())
	l.MoveDown()

	l.SetSources(testMatches()[:1])

	assert.Equal(t, 0, l.Selected())
	assert.Equal(t, 1, l.Count())
}

func TestSourceList_ScrollsToSelection(t *testing.T) {
	matches := make([]domain.Match, 10)
	for i := range matches {
		matches[i] = domain.Match{ID: "chunk-" + string(rune('a'+i))}
	}
	l := NewSourceList(nil)
	l.SetDimensions(80, 6)
	l.SetSources(matches)
	for i := 0; i < 9; i++ {
		l.MoveDown()
	}

	view := l.View()

	assert.Contains(t, view, "chunk-j")
	assert.NotContains(t, view, "chunk-a")
}

func TestHeading(t *testing.T) {
	tests := []struct {
		name string
		meta map[string]any
		want string
	}{
		{"number and title", map[string]any{domain.MetaSectionNumber: "302", domain.MetaSectionTitle: "Murder"}, "302. Murder"},
		{"title only", map[string]any{domain.MetaSectionTitle: "Preamble"}, "Preamble"},
		{"number only", map[string]any{domain.MetaSectionNumber: "14"}, "14"},
		{"neither", nil, "id-1"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Heading(&domain.Match{ID: "id-1", Metadata: tt.meta}))
		})
	}
}

func TestTruncate(t *testing.T) {
	assert.Equal(t, "short", truncate("short", 10))
	assert.Equal(t, "abcdefg...", truncate(strings.Repeat("abcdefghij", 3), 10))
	assert.Equal(t, "धारा...", truncate("धाराधाराधारा", 7))
}
