package domain

import "errors"

// Domain errors represent business logic failures, distinct from
// infrastructure errors raised by external providers.
var (
	// ErrInvalidInput indicates malformed or empty input to chunking or
	// insertion. Nothing is written when it is returned.
	ErrInvalidInput = errors.New("invalid input")

	// ErrNotFound indicates a requested entity does not exist. Deletions of
	// absent categories or documents do NOT return this; they report a zero
	// count instead.
	ErrNotFound = errors.New("not found")

	// ErrDuplicateChunk indicates an insert carried a chunk ID that is
	// already indexed. Identifiers are globally unique; a collision is a
	// caller error, never a silent overwrite.
	ErrDuplicateChunk = errors.New("duplicate chunk id")

	// ErrUnsupportedType indicates a file extension the extractor cannot
	// handle.
	ErrUnsupportedType = errors.New("unsupported file type")

	// ErrEmbeddingUnavailable indicates the embedding provider failed or is
	// unreachable. The wrapped cause carries the provider detail.
	ErrEmbeddingUnavailable = errors.New("embedding unavailable")
)
