package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestChunkID_Deterministic(t *testing.T) {
	a := ChunkID("constitution_main.json", 7, "Article 21 protects life.")
	b := ChunkID("constitution_main.json", 7, "Article 21 protects life.")

	assert.Equal(t, a, b)
	assert.Regexp(t, `^constitution_main\.json___7___[0-9a-f]{8}$`, a)
}

func TestChunkID_ChangesWithInputs(t *testing.T) {
	base := ChunkID("a.json", 0, "text")

	assert.NotEqual(t, base, ChunkID("b.json", 0, "text"))
	assert.NotEqual(t, base, ChunkID("a.json", 1, "text"))
	assert.NotEqual(t, base, ChunkID("a.json", 0, "other text"))
}

func TestChunkID_UsesBaseName(t *testing.T) {
	assert.Equal(t,
		ChunkID("acts/ipc.json", 3, "x"),
		ChunkID("/data/other/ipc.json", 3, "x"))
}

func TestChunkID_KnownHash(t *testing.T) {
	// md5("hello") = 5d41402abc4b2a76b9719d911017c592
	assert.Equal(t, "f.json___0___5d41402a", ChunkID("f.json", 0, "hello"))
}

func TestDetectSourceType(t *testing.T) {
	tests := []struct {
		filename string
		want     SourceType
	}{
		{"Constitution_Amendment_44.json", SourceTypeAmendment},
		{"seventh_SCHEDULE.json", SourceTypeSchedule},
		{"footnotes.json", SourceTypeFootnote},
		{"constitution_main.json", SourceTypeMain},
		{"bns_clean.json", SourceTypeMain},
		{"dir/random.json", SourceTypeMisc},
		{"amendment_schedule.json", SourceTypeAmendment},
	}

	for _, tt := range tests {
		t.Run(tt.filename, func(t *testing.T) {
			assert.Equal(t, tt.want, DetectSourceType(tt.filename))
		})
	}
}
