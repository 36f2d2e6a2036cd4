package vector

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/custodia-labs/vidhi/internal/core/ports/driven"
)

func TestCosine(t *testing.T) {
	assert.InDelta(t, 1.0, Cosine([]float32{1, 0}, []float32{2, 0}), 1e-9)
	assert.InDelta(t, 0.0, Cosine([]float32{1, 0}, []float32{0, 1}), 1e-9)
	assert.InDelta(t, -1.0, Cosine([]float32{1, 1}, []float32{-1, -1}), 1e-9)
	assert.Zero(t, Cosine([]float32{1}, []float32{1, 2}))
	assert.Zero(t, Cosine([]float32{0, 0}, []float32{1, 2}))
	assert.Zero(t, Cosine(nil, nil))
}

func TestTopK(t *testing.T) {
	matches := []driven.VectorMatch{
		{ID: "c", Score: 0.5},
		{ID: "a", Score: 0.9},
		{ID: "b", Score: 0.5},
		{ID: "d", Score: 0.1},
	}

	top := TopK(matches, 3)

	assert.Equal(t, []string{"a", "b", "c"}, ids(top))
	assert.Len(t, TopK([]driven.VectorMatch{{ID: "x"}}, 5), 1)
}

func TestCopyMetadata(t *testing.T) {
	orig := map[string]any{"text": "x"}
	cp := CopyMetadata(orig)
	cp["text"] = "y"

	assert.Equal(t, "x", orig["text"])
	assert.Nil(t, CopyMetadata(nil))
}

func ids(matches []driven.VectorMatch) []string {
	out := make([]string, len(matches))
	for i, m := range matches {
		out[i] = m.ID
	}
	return out
}
