package chunker

import (
	"fmt"
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func wordText(n int) string {
	words := make([]string, n)
	for i := range words {
		words[i] = fmt.Sprintf("w%04d", i)
	}
	return strings.Join(words, " ")
}

func TestNew(t *testing.T) {
	tests := []struct {
		name        string
		opts        []Option
		wantSize    int
		wantOverlap int
	}{
		{name: "defaults", wantSize: 500, wantOverlap: 100},
		{name: "custom", opts: []Option{WithChunkSize(200), WithOverlap(20)}, wantSize: 200, wantOverlap: 20},
		{name: "overlap clamped", opts: []Option{WithChunkSize(100), WithOverlap(150)}, wantSize: 100, wantOverlap: 25},
		{name: "invalid ignored", opts: []Option{WithChunkSize(0), WithOverlap(-1)}, wantSize: 500, wantOverlap: 100},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := New(tt.opts...)
			assert.Equal(t, tt.wantSize, s.ChunkSize())
			assert.Equal(t, tt.wantOverlap, s.Overlap())
		})
	}
}

func TestSplit_EmptyText(t *testing.T) {
	for _, text := range []string{"", "   ", "\n\n\t"} {
		_, err := New().Split(text)
		assert.ErrorIs(t, err, ErrEmptyText)
	}
}

func TestSplit_ShortTextIsSingleChunk(t *testing.T) {
	text := "Alice is a software engineer with 5 years experience."

	chunks, err := New().Split("  " + text + "\n")

	require.NoError(t, err)
	assert.Equal(t, []string{text}, chunks)
}

func TestSplit_Deterministic(t *testing.T) {
	text := wordText(400)
	s := New()

	first, err := s.Split(text)
	require.NoError(t, err)
	second, err := s.Split(text)
	require.NoError(t, err)

	assert.Equal(t, first, second)
}

func TestSplit_ChunksRespectSizeAndOverlap(t *testing.T) {
	chunks, err := New().Split(wordText(400))
	require.NoError(t, err)
	require.Greater(t, len(chunks), 1)

	for i, c := range chunks {
		assert.LessOrEqual(t, utf8.RuneCountInString(c), 500, "chunk %d too long", i)
	}

	for i := 1; i < len(chunks); i++ {
		shared := sharedPrefixSuffix(chunks[i-1], chunks[i])
		assert.Greater(t, shared, 0, "chunk %d carries no overlap", i)
		assert.LessOrEqual(t, shared, 100, "chunk %d overlap too large", i)
	}
}

func TestSplit_PrefersParagraphBoundary(t *testing.T) {
	p1 := strings.Repeat("a", 300)
	p2 := strings.Repeat("b", 300)

	chunks, err := New().Split(p1 + "\n\n" + p2)

	require.NoError(t, err)
	assert.Equal(t, []string{p1, p2}, chunks)
}

func TestSplit_FallsBackToCharacters(t *testing.T) {
	var sb strings.Builder
	for i := 0; i < 1200; i++ {
		sb.WriteByte(byte('a' + i%26))
	}
	text := sb.String()

	chunks, err := New().Split(text)

	require.NoError(t, err)
	require.Len(t, chunks, 3)
	assert.Equal(t, text[:500], chunks[0])
	assert.Equal(t, text[400:900], chunks[1])
	assert.Equal(t, text[800:], chunks[2])
}

func TestSplit_CountsRunesNotBytes(t *testing.T) {
	text := strings.Repeat("é", 600)

	chunks, err := New().Split(text)

	require.NoError(t, err)
	require.Len(t, chunks, 2)
	assert.Equal(t, 500, utf8.RuneCountInString(chunks[0]))
}

func TestSplitKeepingSeparator(t *testing.T) {
	tests := []struct {
		name string
		text string
		sep  string
		want []string
	}{
		{name: "words", text: "a b c", sep: " ", want: []string{"a", " b", " c"}},
		{name: "leading separator", text: "\n\nx\n\ny", sep: "\n\n", want: []string{"\n\nx", "\n\ny"}},
		{name: "characters", text: "hé", sep: "", want: []string{"h", "é"}},
		{name: "absent", text: "abc", sep: ". ", want: []string{"abc"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, splitKeepingSeparator(tt.text, tt.sep))
		})
	}
}

// sharedPrefixSuffix returns the rune length of the longest prefix of next
// that is also a suffix of prev.
func sharedPrefixSuffix(prev, next string) int {
	nr := []rune(next)
	for k := len(nr); k > 0; k-- {
		if strings.HasSuffix(prev, string(nr[:k])) {
			return k
		}
	}
	return 0
}
