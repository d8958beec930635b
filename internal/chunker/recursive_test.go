package chunker

import (
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"careerag/internal/domain"
)

func doc(content string) *domain.Document {
	return &domain.Document{
		ID:      "resume_abc123def456",
		Name:    "resume.txt",
		Type:    domain.DocTypeResume,
		Content: content,
	}
}

func TestChunk_ShortDocumentSingleChunk(t *testing.T) {
	c := NewRecursive(512, 50)
	content := "Senior Go developer with ten years of backend experience."

	chunks, err := c.Chunk(doc(content))
	require.NoError(t, err)
	require.Len(t, chunks, 1)
	assert.Equal(t, content, chunks[0].Content)
	assert.Equal(t, 0, chunks[0].Meta.Index)
	assert.Equal(t, 1, chunks[0].Meta.Total)
	assert.Equal(t, 9, chunks[0].Meta.WordCount)
}

func TestChunk_EmptyDocument(t *testing.T) {
	c := NewRecursive(512, 50)

	_, err := c.Chunk(doc("   \n\n  "))
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	_, err = c.Chunk(nil)
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestChunk_SizeBound(t *testing.T) {
	c := NewRecursive(100, 20)
	content := strings.Repeat("The quick brown fox jumps over the lazy dog. ", 40)

	chunks, err := c.Chunk(doc(content))
	require.NoError(t, err)
	require.Greater(t, len(chunks), 1)
	for _, ch := range chunks {
		assert.LessOrEqual(t, len(ch.Content), 100+20, "chunk %d exceeds bound", ch.Meta.Index)
	}
}

func TestChunk_MetadataAnnotated(t *testing.T) {
	c := NewRecursive(100, 20)
	content := strings.Repeat("Built and operated distributed systems at scale. ", 20)

	chunks, err := c.Chunk(doc(content))
	require.NoError(t, err)

	ids := make(map[string]struct{})
	for i, ch := range chunks {
		assert.Equal(t, i, ch.Meta.Index)
		assert.Equal(t, len(chunks), ch.Meta.Total)
		assert.Equal(t, domain.DocTypeResume, ch.Meta.Type)
		assert.Equal(t, "resume.txt", ch.Meta.Document)
		assert.Equal(t, len(strings.Fields(ch.Content)), ch.Meta.WordCount)
		assert.NotEmpty(t, ch.ID)
		ids[ch.ID] = struct{}{}
	}
	assert.Len(t, ids, len(chunks), "chunk IDs must be unique")
}

func TestChunk_ParagraphBoundaryPreferred(t *testing.T) {
	c := NewRecursive(100, 20)
	para1 := strings.Repeat("Led a team of eight engineers. ", 3)
	para2 := strings.Repeat("Shipped a payments platform. ", 3)
	content := strings.TrimSpace(para1) + "\n\n" + strings.TrimSpace(para2)

	chunks, err := c.Chunk(doc(content))
	require.NoError(t, err)
	require.Len(t, chunks, 2)
	assert.True(t, strings.HasSuffix(chunks[0].Content, "\n\n"),
		"first chunk should end at the paragraph break")
	assert.Contains(t, chunks[1].Content, "Shipped a payments platform.")
}

func TestChunk_ConsecutiveChunksOverlap(t *testing.T) {
	c := NewRecursive(100, 20)
	content := strings.Repeat("Designed resilient APIs for mobile clients. ", 10)

	chunks, err := c.Chunk(doc(content))
	require.NoError(t, err)
	require.Greater(t, len(chunks), 1)

	first := chunks[0].Content
	seed := first[len(first)-20:]
	assert.True(t, strings.HasPrefix(chunks[1].Content, seed),
		"second chunk should start with the tail of the first")
}

func TestChunk_NoSeparatorsHardSplit(t *testing.T) {
	c := NewRecursive(50, 10)
	content := strings.Repeat("x", 200)

	chunks, err := c.Chunk(doc(content))
	require.NoError(t, err)
	require.Greater(t, len(chunks), 1)

	var joined strings.Builder
	joined.WriteString(chunks[0].Content)
	for i := 1; i < len(chunks); i++ {
		assert.LessOrEqual(t, len(chunks[i].Content), 50+10)
		joined.WriteString(chunks[i].Content[10:])
	}
	assert.Equal(t, content, joined.String())
}

func TestChunk_MultibyteTextStaysValid(t *testing.T) {
	c := NewRecursive(100, 20)
	content := strings.Repeat("Développé des systèmes répartis à très grande échelle. ", 10)

	chunks, err := c.Chunk(doc(content))
	require.NoError(t, err)
	require.Greater(t, len(chunks), 1)
	for _, ch := range chunks {
		assert.True(t, utf8.ValidString(ch.Content),
			"chunk %d contains invalid UTF-8: %q", ch.Meta.Index, ch.Content)
	}
}

func TestChunk_MultibyteHardSplitStaysValid(t *testing.T) {
	c := NewRecursive(50, 10)
	content := strings.Repeat("é", 120)

	chunks, err := c.Chunk(doc(content))
	require.NoError(t, err)
	require.Greater(t, len(chunks), 1)
	for _, ch := range chunks {
		assert.True(t, utf8.ValidString(ch.Content),
			"chunk %d contains invalid UTF-8: %q", ch.Meta.Index, ch.Content)
		assert.LessOrEqual(t, len(ch.Content), 50+10)
	}
}

func TestNewRecursive_Defaults(t *testing.T) {
	c := NewRecursive(0, -1)
	assert.Equal(t, DefaultChunkSize, c.chunkSize)
	assert.Equal(t, DefaultChunkOverlap, c.overlap)

	c = NewRecursive(40, 80)
	assert.Equal(t, 10, c.overlap, "overlap must stay below the chunk size")
}
