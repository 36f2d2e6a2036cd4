package memory

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/vidhi/internal/core/domain"
	"github.com/custodia-labs/vidhi/internal/core/ports/driven"
)

func TestStore_CreateAndDescribe(t *testing.T) {
	ctx := context.Background()
	s := NewStore()

	_, err := s.DescribeIndex(ctx, "indialaw")
	assert.True(t, errors.Is(err, domain.ErrNotFound))

	require.NoError(t, s.CreateIndex(ctx, domain.IndexSpec{Name: "indialaw", Dimension: 3}))
	desc, err := s.DescribeIndex(ctx, "indialaw")

	require.NoError(t, err)
	assert.Equal(t, 3, desc.Dimension)
	assert.Equal(t, domain.MetricCosine, desc.Metric)
	assert.True(t, desc.Ready)

	err = s.CreateIndex(ctx, domain.IndexSpec{Name: "indialaw", Dimension: 3})
	assert.Error(t, err)

	names, _ := s.ListIndexes(ctx)
	assert.Equal(t, []string{"indialaw"}, names)
}

func TestStore_ReadyAfter(t *testing.T) {
	ctx := context.Background()
	s := NewStore()
	s.SetReadyAfter(2)
	require.NoError(t, s.CreateIndex(ctx, domain.IndexSpec{Name: "x", Dimension: 2}))

	var ready []bool
	for i := 0; i < 3; i++ {
		d, err := s.DescribeIndex(ctx, "x")
		require.NoError(t, err)
		ready = append(ready, d.Ready)
	}

	assert.Equal(t, []bool{false, false, true}, ready)
}

func TestStore_UpsertQuery(t *testing.T) {
	ctx := context.Background()
	s := NewStore()
	require.NoError(t, s.CreateIndex(ctx, domain.IndexSpec{Name: "x", Dimension: 2}))
	idx := s.Index("x")

	require.NoError(t, idx.Upsert(ctx, []driven.VectorRecord{
		{ID: "near", Values: []float32{1, 0}, Metadata: map[string]any{"text": "a"}},
		{ID: "far", Values: []float32{0, 1}},
	}))
	require.NoError(t, idx.Upsert(ctx, []driven.VectorRecord{
		{ID: "near", Values: []float32{1, 0.1}, Metadata: map[string]any{"text": "b"}},
	}))

	hits, err := idx.Query(ctx, []float32{1, 0}, 5)

	require.NoError(t, err)
	require.Len(t, hits, 2)
	assert.Equal(t, "near", hits[0].ID)
	assert.Equal(t, "b", hits[0].Metadata["text"])
	assert.Greater(t, hits[0].Score, hits[1].Score)
	assert.Len(t, s.Records("x"), 2)
}

func TestStore_Errors(t *testing.T) {
	ctx := context.Background()
	s := NewStore()

	_, err := s.Index("missing").Query(ctx, []float32{1}, 1)
	assert.True(t, errors.Is(err, domain.ErrNotFound))

	require.NoError(t, s.CreateIndex(ctx, domain.IndexSpec{Name: "x", Dimension: 2}))
	err = s.Index("x").Upsert(ctx, []driven.VectorRecord{{ID: "a", Values: []float32{1, 2, 3}}})
	assert.True(t, errors.Is(err, domain.ErrDimensionMismatch))

	_, err = s.Index("x").Query(ctx, []float32{1}, 1)
	assert.True(t, errors.Is(err, domain.ErrDimensionMismatch))

	assert.Error(t, s.CreateIndex(ctx, domain.IndexSpec{Name: "", Dimension: 2}))
}
