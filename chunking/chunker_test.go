package chunking

import (
	"fmt"
	"math"
	"strings"
	"testing"
	"unicode"

	"github.com/poiesic/assessor/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// byteTokenizer maps every byte to one token. Decode inverts Encode exactly,
// which makes token offsets equal to byte offsets in the tests below.
type byteTokenizer struct{}

func (byteTokenizer) Encode(text string) []int {
	tokens := make([]int, len(text))
	for i := 0; i < len(text); i++ {
		tokens[i] = int(text[i])
	}
	return tokens
}

func (byteTokenizer) Decode(tokens []int) string {
	b := make([]byte, len(tokens))
	for i, t := range tokens {
		b[i] = byte(t)
	}
	return string(b)
}

// wordTokenizer glues a single leading space to the word that follows it, the
// way BPE encodings such as cl100k_base do. A space with no word after it is a
// token of its own, so encoding "alpha " yields a token the stream
// "alpha beta" never contains.
type wordTokenizer struct {
	ids   map[string]int
	words []string
}

func newWordTokenizer() *wordTokenizer {
	return &wordTokenizer{ids: make(map[string]int)}
}

func (w *wordTokenizer) Encode(text string) []int {
	var tokens []int
	for i := 0; i < len(text); {
		j := i
		if text[j] == ' ' {
			j++
		}
		for j < len(text) && text[j] != ' ' {
			j++
		}
		tokens = append(tokens, w.id(text[i:j]))
		i = j
	}
	return tokens
}

func (w *wordTokenizer) Decode(tokens []int) string {
	var sb strings.Builder
	for _, t := range tokens {
		sb.WriteString(w.words[t])
	}
	return sb.String()
}

func (w *wordTokenizer) id(piece string) int {
	if id, ok := w.ids[piece]; ok {
		return id
	}
	w.ids[piece] = len(w.words)
	w.words = append(w.words, piece)
	return w.ids[piece]
}

func texts(chunks []core.Chunk) []string {
	out := make([]string, len(chunks))
	for i, c := range chunks {
		out[i] = c.Text
	}
	return out
}

func numberedWords(n int) string {
	words := make([]string, n)
	for i := range words {
		words[i] = fmt.Sprintf("w%04d", i)
	}
	return strings.Join(words, " ")
}

func TestNew_RejectsDegenerateWindows(t *testing.T) {
	tests := []struct {
		name    string
		window  int
		overlap int
	}{
		{name: "overlap equals window", window: 10, overlap: 10},
		{name: "overlap exceeds window", window: 10, overlap: 11},
		{name: "negative overlap", window: 10, overlap: -1},
		{name: "zero window", window: 0, overlap: 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, err := New(byteTokenizer{}, tt.window, tt.overlap)
			assert.ErrorIs(t, err, ErrInvalidWindow)
			assert.Nil(t, c)
		})
	}

	_, err := New(nil, 10, 2)
	assert.ErrorIs(t, err, ErrTokenizerRequired)

	_, err = Chunk("text", 5, 5, byteTokenizer{})
	assert.ErrorIs(t, err, ErrInvalidWindow)
}

func TestChunk_Examples(t *testing.T) {
	tests := []struct {
		name    string
		text    string
		window  int
		overlap int
		want    []string
	}{
		{
			name:   "empty text",
			text:   "",
			window: 8,
			want:   nil,
		},
		{
			name:    "shorter than window",
			text:    "aaa bbb",
			window:  8,
			overlap: 2,
			want:    []string{"aaa bbb"},
		},
		{
			name:    "overlap aligned on a word",
			text:    "aaa bbb ccc ddd",
			window:  8,
			overlap: 4,
			want:    []string{"aaa bbb ", "bbb ccc ", "ccc ddd"},
		},
		{
			name:    "overlap snapped past a partial word",
			text:    "aaa bbb ccc ddd",
			window:  8,
			overlap: 3,
			want:    []string{"aaa bbb ", "ccc ddd"},
		},
		{
			name:    "no overlap",
			text:    "aaa bbb ccc ddd",
			window:  8,
			overlap: 0,
			want:    []string{"aaa bbb ", "ccc ddd"},
		},
		{
			name:    "window cut back to last space",
			text:    "aa bbbbbb cc",
			window:  8,
			overlap: 0,
			want:    []string{"aa ", "bbbbbb ", "cc"},
		},
		{
			name:    "no whitespace to snap to",
			text:    "abcdefghij klm",
			window:  8,
			overlap: 2,
			want:    []string{"abcdefgh", "ghij klm"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			chunks, err := Chunk(tt.text, tt.window, tt.overlap, byteTokenizer{})
			require.NoError(t, err)
			if tt.want == nil {
				assert.Empty(t, chunks)
				return
			}
			assert.Equal(t, tt.want, texts(chunks))
		})
	}
}

func TestChunk_Deterministic(t *testing.T) {
	c, err := New(byteTokenizer{}, 64, 16)
	require.NoError(t, err)

	text := numberedWords(200)
	assert.Equal(t, c.Chunk(text), c.Chunk(text))
}

func TestChunk_IndicesAreContiguous(t *testing.T) {
	c, err := New(byteTokenizer{}, 50, 10)
	require.NoError(t, err)

	chunks := c.Chunk(numberedWords(300))
	require.NotEmpty(t, chunks)
	for i, chunk := range chunks {
		assert.Equal(t, i, chunk.Index)
	}
	assert.True(t, strings.HasPrefix(numberedWords(300), chunks[0].Text), "first chunk starts at offset 0")
}

func TestChunk_NeverEndsMidWord(t *testing.T) {
	text := numberedWords(300)
	c, err := New(byteTokenizer{}, 47, 11)
	require.NoError(t, err)

	chunks := c.Chunk(text)
	require.Greater(t, len(chunks), 1)
	for _, chunk := range chunks[:len(chunks)-1] {
		last := rune(chunk.Text[len(chunk.Text)-1])
		assert.True(t, unicode.IsSpace(last), "chunk %d ends mid-word: %q", chunk.Index, chunk.Text)
	}
	for _, chunk := range chunks {
		assert.LessOrEqual(t, len(chunk.Text), 47)
	}
}

func TestChunk_ReconstructsText(t *testing.T) {
	text := numberedWords(250)
	overlap := 13
	c, err := New(byteTokenizer{}, 60, overlap)
	require.NoError(t, err)

	chunks := c.Chunk(text)
	rebuilt := chunks[0].Text
	for _, chunk := range chunks[1:] {
		k := 0
		for n := min(overlap, len(chunk.Text)); n > 0; n-- {
			if strings.HasSuffix(rebuilt, chunk.Text[:n]) {
				k = n
				break
			}
		}
		rebuilt += chunk.Text[k:]
	}
	assert.Equal(t, text, rebuilt)
}

func TestChunk_TerminationBound(t *testing.T) {
	tests := []struct {
		total, window, overlap int
	}{
		{total: 100, window: 10, overlap: 3},
		{total: 1000, window: 10, overlap: 9},
		{total: 7, window: 10, overlap: 3},
		{total: 10, window: 10, overlap: 0},
	}

	for _, tt := range tests {
		t.Run(fmt.Sprintf("%d/%d/%d", tt.total, tt.window, tt.overlap), func(t *testing.T) {
			chunks, err := Chunk(strings.Repeat("x", tt.total), tt.window, tt.overlap, byteTokenizer{})
			require.NoError(t, err)
			bound := int(math.Ceil(float64(tt.total) / float64(tt.window-tt.overlap)))
			assert.LessOrEqual(t, len(chunks), bound)
		})
	}
}

func TestChunk_ShortTrimmedChunkStillProgresses(t *testing.T) {
	// The first window trims back to "a ", which is shorter than the overlap.
	chunks, err := Chunk("a bcdefghijklmnop", 8, 6, byteTokenizer{})
	require.NoError(t, err)
	require.NotEmpty(t, chunks)
	assert.Equal(t, "a ", chunks[0].Text)
	assert.Less(t, len(chunks), 20)
	assert.True(t, strings.HasSuffix("a bcdefghijklmnop", chunks[len(chunks)-1].Text))
}

func TestChunker_Accessors(t *testing.T) {
	c, err := New(byteTokenizer{}, DefaultWindow, DefaultOverlap)
	require.NoError(t, err)
	assert.Equal(t, DefaultWindow, c.Window())
	assert.Equal(t, DefaultOverlap, c.Overlap())
}

func TestChunk_LeadingSpaceTokens(t *testing.T) {
	const text = "alpha beta gamma delta epsilon"

	tests := []struct {
		name    string
		window  int
		overlap int
		want    []string
	}{
		{
			name:   "no overlap keeps every word",
			window: 2, overlap: 0,
			want: []string{"alpha", " beta", " gamma", " delta", " epsilon"},
		},
		{
			name:   "one token of overlap",
			window: 3, overlap: 1,
			want: []string{"alpha beta", " beta gamma", " gamma delta epsilon"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			chunks, err := Chunk(text, tt.window, tt.overlap, newWordTokenizer())
			require.NoError(t, err)
			assert.Equal(t, tt.want, texts(chunks))
		})
	}
}

func TestChunk_LeadingSpaceTokensConcatenate(t *testing.T) {
	text := numberedWords(200)
	tok := newWordTokenizer()
	c, err := New(tok, 7, 0)
	require.NoError(t, err)

	chunks := c.Chunk(text)
	require.Greater(t, len(chunks), 1)
	assert.Equal(t, text, strings.Join(texts(chunks), ""))
	for _, chunk := range chunks {
		assert.LessOrEqual(t, len(tok.Encode(chunk.Text)), 7)
	}
	for _, chunk := range chunks[:len(chunks)-1] {
		assert.False(t, strings.HasSuffix(chunk.Text, " "), "chunk %d: %q", chunk.Index, chunk.Text)
	}
}
