package sqlite

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"careerag/internal/domain"
	"careerag/internal/vectorstore"
)

func newStore(t *testing.T) (*Storage, string) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "test.db")
	s, err := NewStorage(path, "career_documents")
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	return s, path
}

func chunk(id string, docType domain.DocType, document string, v []float32) domain.Chunk {
	return domain.Chunk{
		ID:        id,
		Content:   "content of " + id,
		Embedding: v,
		Meta:      domain.ChunkMetadata{Type: docType, Document: document, Index: 0, Total: 1, WordCount: 3},
	}
}

func TestNewStorage_EmptyCollection(t *testing.T) {
	_, err := NewStorage(filepath.Join(t.TempDir(), "x.db"), "")
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestInsertAndAll_RoundTrip(t *testing.T) {
	s, _ := newStore(t)
	ctx := context.Background()

	in := chunk("r1", domain.DocTypeResume, "resume.txt", []float32{0.25, -1, 3.5})
	require.NoError(t, s.Insert(ctx, []domain.Chunk{in}))

	all, err := s.All(ctx)
	require.NoError(t, err)
	require.Len(t, all, 1)
	assert.Equal(t, in.ID, all[0].ID)
	assert.Equal(t, in.Content, all[0].Content)
	assert.Equal(t, in.Meta, all[0].Meta)
	assert.Equal(t, in.Embedding, all[0].Embedding)
}

func TestInsert_PersistsAcrossReopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "test.db")
	ctx := context.Background()

	s, err := NewStorage(path, "career_documents")
	require.NoError(t, err)
	require.NoError(t, s.Insert(ctx, []domain.Chunk{
		chunk("r1", domain.DocTypeResume, "resume.txt", []float32{1, 0}),
	}))
	require.NoError(t, s.Close())

	s, err = NewStorage(path, "career_documents")
	require.NoError(t, err)
	defer s.Close()

	all, err := s.All(ctx)
	require.NoError(t, err)
	require.Len(t, all, 1)
	assert.Equal(t, "r1", all[0].ID)
}

func TestInsert_DuplicateRollsBack(t *testing.T) {
	s, _ := newStore(t)
	ctx := context.Background()

	require.NoError(t, s.Insert(ctx, []domain.Chunk{
		chunk("r1", domain.DocTypeResume, "resume.txt", []float32{1, 0}),
	}))

	err := s.Insert(ctx, []domain.Chunk{
		chunk("j1", domain.DocTypeJobPosting, "acme.txt", []float32{1, 0}),
		chunk("r1", domain.DocTypeJobPosting, "acme.txt", []float32{0, 1}),
	})
	assert.ErrorIs(t, err, domain.ErrDuplicateChunk)

	all, err := s.All(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 1, "the whole batch must roll back")
}

func TestDelete_IdempotentCounts(t *testing.T) {
	s, _ := newStore(t)
	ctx := context.Background()

	require.NoError(t, s.Insert(ctx, []domain.Chunk{
		chunk("r1", domain.DocTypeResume, "resume.txt", []float32{1, 0}),
		chunk("r2", domain.DocTypeResume, "resume.txt", []float32{0, 1}),
		chunk("j1", domain.DocTypeJobPosting, "acme.txt", []float32{1, 1}),
	}))

	n, err := s.DeleteByType(ctx, domain.DocTypeResume)
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	n, err = s.DeleteByType(ctx, domain.DocTypeResume)
	require.NoError(t, err)
	assert.Equal(t, 0, n)

	n, err = s.DeleteByDocument(ctx, domain.DocTypeJobPosting, "acme.txt")
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	n, err = s.DeleteByDocument(ctx, domain.DocTypeJobPosting, "missing.txt")
	require.NoError(t, err)
	assert.Equal(t, 0, n)
}

func TestSearch_FilterAndRanking(t *testing.T) {
	s, _ := newStore(t)
	ctx := context.Background()

	require.NoError(t, s.Insert(ctx, []domain.Chunk{
		chunk("r1", domain.DocTypeResume, "resume.txt", []float32{1, 0}),
		chunk("j-near", domain.DocTypeJobPosting, "acme.txt", []float32{1, 0.1}),
		chunk("j-far", domain.DocTypeJobPosting, "globex.txt", []float32{0, 1}),
	}))

	results, err := s.Search(ctx, []float32{1, 0}, 1, &vectorstore.Filter{Type: domain.DocTypeJobPosting})
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, "j-near", results[0].Chunk.ID)

	results, err = s.Search(ctx, []float32{1, 0}, 10, nil)
	require.NoError(t, err)
	assert.Len(t, results, 3)
}

func TestStats(t *testing.T) {
	s, _ := newStore(t)
	ctx := context.Background()

	require.NoError(t, s.Insert(ctx, []domain.Chunk{
		chunk("r1", domain.DocTypeResume, "resume.txt", []float32{1, 0}),
		chunk("j1", domain.DocTypeJobPosting, "acme.txt", []float32{1, 1}),
		chunk("j2", domain.DocTypeJobPosting, "acme.txt", []float32{0, 1}),
		chunk("j3", domain.DocTypeJobPosting, "globex.txt", []float32{1, 0}),
	}))

	stats, err := s.Stats(ctx)
	require.NoError(t, err)
	assert.Equal(t, 4, stats.TotalChunks)
	assert.Equal(t, 1, stats.ResumeChunks)
	assert.Equal(t, 3, stats.JobPostingChunks)
	assert.Equal(t, "resume.txt", stats.ResumeName)
	assert.Equal(t, []string{"acme.txt", "globex.txt"}, stats.JobPostings)
}

func TestEmbeddingEncoding(t *testing.T) {
	vec := []float32{0, 1, -1, 0.5, 3.25}
	assert.Equal(t, vec, decodeEmbedding(encodeEmbedding(vec)))
	assert.Empty(t, decodeEmbedding(nil))
}
