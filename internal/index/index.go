// Package index implements the vector index over a storage backend and an
// embedding provider: insertion with embedding, metadata-filtered deletion,
// similarity retrieval and exhaustive retrieval.
package index

import (
	"context"
	"fmt"
	"sync"

	"go.uber.org/zap"

	"careerag/internal/domain"
	"careerag/internal/embedding"
	"careerag/internal/logger"
	"careerag/internal/vectorstore"
)

// fingerprintLen is the content prefix used to deduplicate chunks in
// RetrieveAll. Identical fragments share the same first characters.
const fingerprintLen = 100

// Index owns all reads and writes against the chunk store. Mutations are
// serialised so a resume replacement (delete then insert) is never observed
// half-done by a concurrent exhaustive read.
type Index struct {
	mu       sync.Mutex
	storage  vectorstore.Storage
	embedder embedding.Embedder
	log      *zap.Logger
}

// New creates an index over the given storage and embedder. The logger may
// be nil.
func New(storage vectorstore.Storage, embedder embedding.Embedder, log *zap.Logger) *Index {
	return &Index{storage: storage, embedder: embedder, log: logger.OrNop(log)}
}

// Insert embeds and stores the chunks of one document. When the chunks
// belong to a resume, any previously indexed resume is deleted first: at
// most one resume is active at a time. The storage write is all-or-nothing.
func (ix *Index) Insert(ctx context.Context, chunks []domain.Chunk) (int, error) {
	if len(chunks) == 0 {
		return 0, fmt.Errorf("%w: no chunks to index", domain.ErrInvalidInput)
	}
	docType := chunks[0].Meta.Type
	document := chunks[0].Meta.Document

	texts := make([]string, len(chunks))
	for i, c := range chunks {
		texts[i] = c.Content
	}
	vectors, err := ix.embedder.EmbedBatch(ctx, texts)
	if err != nil {
		ix.log.Error("embedding document failed",
			zap.String("document", document), zap.Error(err))
		return 0, fmt.Errorf("embedding %s: %w", document, err)
	}
	// attach vectors to a copy; the caller's chunks stay untouched
	embedded := make([]domain.Chunk, len(chunks))
	for i, c := range chunks {
		c.Embedding = vectors[i]
		embedded[i] = c
	}
	chunks = embedded

	ix.mu.Lock()
	defer ix.mu.Unlock()

	if docType == domain.DocTypeResume {
		removed, err := ix.storage.DeleteByType(ctx, domain.DocTypeResume)
		if err != nil {
			return 0, fmt.Errorf("retiring previous resume: %w", err)
		}
		if removed > 0 {
			ix.log.Info("retired previous resume", zap.Int("chunks", removed))
		}
	}

	if err := ix.storage.Insert(ctx, chunks); err != nil {
		return 0, err
	}
	ix.log.Info("indexed document",
		zap.String("document", document),
		zap.String("doc_type", string(docType)),
		zap.Int("chunks", len(chunks)))
	return len(chunks), nil
}

// DeleteByType removes every chunk of the category. Zero removals are not
// an error.
func (ix *Index) DeleteByType(ctx context.Context, docType domain.DocType) (int, error) {
	ix.mu.Lock()
	defer ix.mu.Unlock()
	return ix.storage.DeleteByType(ctx, docType)
}

// DeleteJobPosting removes one job posting by document name, leaving other
// postings and the resume untouched.
func (ix *Index) DeleteJobPosting(ctx context.Context, name string) (int, error) {
	ix.mu.Lock()
	defer ix.mu.Unlock()
	return ix.storage.DeleteByDocument(ctx, domain.DocTypeJobPosting, name)
}

// Clear removes everything from the collection and returns the number of
// chunks removed.
func (ix *Index) Clear(ctx context.Context) (int, error) {
	ix.mu.Lock()
	defer ix.mu.Unlock()
	resume, err := ix.storage.DeleteByType(ctx, domain.DocTypeResume)
	if err != nil {
		return 0, err
	}
	jobs, err := ix.storage.DeleteByType(ctx, domain.DocTypeJobPosting)
	if err != nil {
		return resume, err
	}
	return resume + jobs, nil
}

// Retrieve embeds the query and returns the top k chunks after
// diversity-aware re-ranking, optionally restricted to one category.
func (ix *Index) Retrieve(ctx context.Context, query string, k int, filter *vectorstore.Filter) ([]domain.SearchResult, error) {
	vector, err := ix.embedder.Embed(ctx, query)
	if err != nil {
		ix.log.Error("embedding query failed", zap.String("query", query), zap.Error(err))
		return nil, fmt.Errorf("embedding query: %w", err)
	}
	return ix.storage.Search(ctx, vector, k, filter)
}

// RetrieveAll returns every indexed chunk, deduplicated by a content-prefix
// fingerprint. Used only for exhaustive comparison queries.
func (ix *Index) RetrieveAll(ctx context.Context) ([]domain.Chunk, error) {
	chunks, err := ix.storage.All(ctx)
	if err != nil {
		return nil, err
	}
	seen := make(map[string]struct{}, len(chunks))
	unique := chunks[:0]
	for _, c := range chunks {
		fp := c.Content
		if len(fp) > fingerprintLen {
			fp = fp[:fingerprintLen]
		}
		if _, ok := seen[fp]; ok {
			continue
		}
		seen[fp] = struct{}{}
		unique = append(unique, c)
	}
	return unique, nil
}

// Stats reports aggregate counts over the indexed chunks.
func (ix *Index) Stats(ctx context.Context) (*domain.Stats, error) {
	return ix.storage.Stats(ctx)
}
