// Package vectorstore defines the storage contract for indexed chunks and
// the similarity ranking shared by its implementations.
package vectorstore

import (
	"context"

	"careerag/internal/domain"
)

// Filter restricts the candidate pool to a single document category before
// ranking. A nil filter means no restriction.
type Filter struct {
	Type domain.DocType
}

// Storage persists chunks with their embeddings and supports
// metadata-filtered lookup. Implementations own the underlying store
// exclusively; all mutation goes through Insert and the delete operations.
type Storage interface {
	// Insert stores the chunks atomically; either every chunk is written or
	// none are. A chunk ID already present fails the whole call with
	// domain.ErrDuplicateChunk.
	Insert(ctx context.Context, chunks []domain.Chunk) error

	// DeleteByType removes every chunk of the given category and returns
	// the number removed. Deleting an absent category is not an error.
	DeleteByType(ctx context.Context, docType domain.DocType) (int, error)

	// DeleteByDocument removes chunks matching both category and document
	// name. Idempotent like DeleteByType.
	DeleteByDocument(ctx context.Context, docType domain.DocType, name string) (int, error)

	// Search ranks stored chunks against the query vector and returns the
	// top k after diversity-aware re-ranking.
	Search(ctx context.Context, vector []float32, k int, filter *Filter) ([]domain.SearchResult, error)

	// All returns every stored chunk in first-inserted order.
	All(ctx context.Context) ([]domain.Chunk, error)

	// Stats aggregates counts and document names in one pass over metadata.
	Stats(ctx context.Context) (*domain.Stats, error)

	// Close releases resources.
	Close() error
}
