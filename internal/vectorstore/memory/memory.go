// Package memory provides an in-memory vector store, used in tests and as a
// non-persistent fallback.
package memory

import (
	"context"
	"fmt"
	"sync"

	"careerag/internal/domain"
	"careerag/internal/vectorstore"
)

// Storage is an in-memory Storage implementation using brute-force cosine
// ranking. Single-writer/multi-reader via RWMutex.
type Storage struct {
	mu     sync.RWMutex
	chunks []domain.Chunk
	ids    map[string]struct{}
}

var _ vectorstore.Storage = (*Storage)(nil)

// NewStorage creates an empty in-memory store.
func NewStorage() *Storage {
	return &Storage{ids: make(map[string]struct{})}
}

func (s *Storage) Insert(_ context.Context, chunks []domain.Chunk) error {
	if len(chunks) == 0 {
		return fmt.Errorf("%w: no chunks to insert", domain.ErrInvalidInput)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	// Validate the whole batch before touching state so a failure leaves
	// nothing behind.
	for _, c := range chunks {
		if c.ID == "" || c.Content == "" {
			return fmt.Errorf("%w: chunk missing id or content", domain.ErrInvalidInput)
		}
		if _, ok := s.ids[c.ID]; ok {
			return fmt.Errorf("%w: %s", domain.ErrDuplicateChunk, c.ID)
		}
	}
	for _, c := range chunks {
		s.ids[c.ID] = struct{}{}
		s.chunks = append(s.chunks, c)
	}
	return nil
}

func (s *Storage) DeleteByType(_ context.Context, docType domain.DocType) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.deleteWhere(func(c domain.Chunk) bool {
		return c.Meta.Type == docType
	}), nil
}

func (s *Storage) DeleteByDocument(_ context.Context, docType domain.DocType, name string) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.deleteWhere(func(c domain.Chunk) bool {
		return c.Meta.Type == docType && c.Meta.Document == name
	}), nil
}

func (s *Storage) Search(_ context.Context, vector []float32, k int, filter *vectorstore.Filter) ([]domain.SearchResult, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var candidates []domain.Chunk
	for _, c := range s.chunks {
		if filter != nil && c.Meta.Type != filter.Type {
			continue
		}
		candidates = append(candidates, c)
	}
	return vectorstore.RankMMR(vector, candidates, k), nil
}

func (s *Storage) All(_ context.Context) ([]domain.Chunk, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]domain.Chunk, len(s.chunks))
	copy(out, s.chunks)
	return out, nil
}

func (s *Storage) Stats(_ context.Context) (*domain.Stats, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	stats := &domain.Stats{TotalChunks: len(s.chunks)}
	seen := make(map[string]struct{})
	for _, c := range s.chunks {
		switch c.Meta.Type {
		case domain.DocTypeResume:
			stats.ResumeChunks++
			stats.ResumeName = c.Meta.Document
		case domain.DocTypeJobPosting:
			stats.JobPostingChunks++
			if _, ok := seen[c.Meta.Document]; !ok {
				seen[c.Meta.Document] = struct{}{}
				stats.JobPostings = append(stats.JobPostings, c.Meta.Document)
			}
		}
	}
	return stats, nil
}

func (s *Storage) Close() error { return nil }

// deleteWhere removes matching chunks preserving order. Caller holds the
// write lock.
func (s *Storage) deleteWhere(match func(domain.Chunk) bool) int {
	kept := s.chunks[:0]
	removed := 0
	for _, c := range s.chunks {
		if match(c) {
			delete(s.ids, c.ID)
			removed++
			continue
		}
		kept = append(kept, c)
	}
	s.chunks = kept
	return removed
}
