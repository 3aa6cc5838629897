package engine

import (
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func words(n int) string {
	out := make([]string, n)
	for i := range out {
		out[i] = fmt.Sprintf("w%d", i)
	}
	return strings.Join(out, " ")
}

func TestChunkShortTextIsSingleUnit(t *testing.T) {
	text := "  short policy paragraph about vacation days  "
	units, err := Chunk(text, "policy.pdf", 500, 50)
	require.NoError(t, err)
	require.Len(t, units, 1)
	assert.Equal(t, strings.TrimSpace(text), units[0].Text)
	assert.Equal(t, "policy.pdf", units[0].SourceID)
	assert.Equal(t, 0, units[0].Position)
	assert.Equal(t, UnitID("policy.pdf", 0), units[0].ID)
}

func TestChunkEmptyText(t *testing.T) {
	units, err := Chunk("   \n\t  ", "doc", 500, 50)
	require.NoError(t, err)
	assert.Empty(t, units)
}

func TestChunkInvalidParams(t *testing.T) {
	cases := []struct {
		name       string
		targetSize int
		overlap    int
	}{
		{"zero size", 0, 0},
		{"negative size", -5, 0},
		{"negative overlap", 10, -1},
		{"overlap equals size", 10, 10},
		{"overlap exceeds size", 10, 20},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := Chunk("some text", "doc", tc.targetSize, tc.overlap)
			assert.ErrorIs(t, err, ErrInvalidConfig)
		})
	}
}

func TestChunkWindowsAndOverlap(t *testing.T) {
	units, err := Chunk(words(501), "doc", 500, 50)
	require.NoError(t, err)
	require.Len(t, units, 2)

	first := strings.Fields(units[0].Text)
	second := strings.Fields(units[1].Text)
	assert.Len(t, first, 500)
	assert.Equal(t, "w0", first[0])
	// second window starts at word 450 and runs to the end
	assert.Equal(t, "w450", second[0])
	assert.Equal(t, "w500", second[len(second)-1])
	// the last 50 words of the first window open the second
	assert.Equal(t, first[450:], second[:50])

	assert.Equal(t, 0, units[0].Position)
	assert.Equal(t, 1, units[1].Position)
}

func TestChunkCoversEveryWord(t *testing.T) {
	units, err := Chunk(words(37), "doc", 10, 3)
	require.NoError(t, err)

	seen := make(map[string]bool)
	for _, u := range units {
		for _, w := range strings.Fields(u.Text) {
			seen[w] = true
		}
	}
	for i := 0; i < 37; i++ {
		assert.True(t, seen[fmt.Sprintf("w%d", i)], "word w%d missing from all units", i)
	}
}

func TestChunkDeterministic(t *testing.T) {
	text := words(123)
	a, err := Chunk(text, "doc", 10, 3)
	require.NoError(t, err)
	b, err := Chunk(text, "doc", 10, 3)
	require.NoError(t, err)
	assert.Equal(t, a, b)
}

func TestUnitIDStableAcrossCalls(t *testing.T) {
	assert.Equal(t, UnitID("handbook.pdf", 3), UnitID("handbook.pdf", 3))
	assert.NotEqual(t, UnitID("handbook.pdf", 3), UnitID("handbook.pdf", 4))
	assert.NotEqual(t, UnitID("handbook.pdf", 3), UnitID("other.pdf", 3))
}
