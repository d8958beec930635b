// Package sqlite provides a durable vector store backed by SQLite. Chunks
// survive process restarts, keyed by a configured collection name.
package sqlite

import (
	"context"
	"database/sql"
	"encoding/binary"
	"fmt"
	"math"
	"os"
	"path/filepath"

	_ "modernc.org/sqlite" // SQLite driver

	"careerag/internal/domain"
	"careerag/internal/vectorstore"
)

const schema = `
CREATE TABLE IF NOT EXISTS chunks (
	id         TEXT PRIMARY KEY,
	collection TEXT NOT NULL,
	doc_type   TEXT NOT NULL,
	document   TEXT NOT NULL,
	position   INTEGER NOT NULL,
	total      INTEGER NOT NULL,
	word_count INTEGER NOT NULL,
	content    TEXT NOT NULL,
	embedding  BLOB NOT NULL,
	created_at DATETIME DEFAULT CURRENT_TIMESTAMP
);
CREATE INDEX IF NOT EXISTS idx_chunks_meta ON chunks(collection, doc_type, document);
`

// Storage is a SQLite-backed Storage implementation.
type Storage struct {
	db         *sql.DB
	collection string
}

var _ vectorstore.Storage = (*Storage)(nil)

// NewStorage opens (creating if needed) the database at path and ensures the
// schema exists. WAL mode keeps concurrent readers unblocked by writes.
func NewStorage(path, collection string) (*Storage, error) {
	if collection == "" {
		return nil, fmt.Errorf("%w: empty collection name", domain.ErrInvalidInput)
	}
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("creating data directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite", path+"?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("ensuring schema: %w", err)
	}
	return &Storage{db: db, collection: collection}, nil
}

func (s *Storage) Close() error { return s.db.Close() }

func (s *Storage) Insert(ctx context.Context, chunks []domain.Chunk) error {
	if len(chunks) == 0 {
		return fmt.Errorf("%w: no chunks to insert", domain.ErrInvalidInput)
	}
	for _, c := range chunks {
		if c.ID == "" || c.Content == "" {
			return fmt.Errorf("%w: chunk missing id or content", domain.ErrInvalidInput)
		}
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO chunks(id, collection, doc_type, document, position, total, word_count, content, embedding)
		VALUES(?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return err
	}
	defer stmt.Close()

	for _, c := range chunks {
		var exists bool
		if err := tx.QueryRowContext(ctx,
			`SELECT EXISTS(SELECT 1 FROM chunks WHERE id = ?)`, c.ID).Scan(&exists); err != nil {
			return err
		}
		if exists {
			return fmt.Errorf("%w: %s", domain.ErrDuplicateChunk, c.ID)
		}
		_, err := stmt.ExecContext(ctx,
			c.ID, s.collection, string(c.Meta.Type), c.Meta.Document,
			c.Meta.Index, c.Meta.Total, c.Meta.WordCount,
			c.Content, encodeEmbedding(c.Embedding))
		if err != nil {
			return fmt.Errorf("inserting chunk %s: %w", c.ID, err)
		}
	}
	return tx.Commit()
}

func (s *Storage) DeleteByType(ctx context.Context, docType domain.DocType) (int, error) {
	res, err := s.db.ExecContext(ctx,
		`DELETE FROM chunks WHERE collection = ? AND doc_type = ?`,
		s.collection, string(docType))
	if err != nil {
		return 0, err
	}
	n, err := res.RowsAffected()
	return int(n), err
}

func (s *Storage) DeleteByDocument(ctx context.Context, docType domain.DocType, name string) (int, error) {
	res, err := s.db.ExecContext(ctx,
		`DELETE FROM chunks WHERE collection = ? AND doc_type = ? AND document = ?`,
		s.collection, string(docType), name)
	if err != nil {
		return 0, err
	}
	n, err := res.RowsAffected()
	return int(n), err
}

func (s *Storage) Search(ctx context.Context, vector []float32, k int, filter *vectorstore.Filter) ([]domain.SearchResult, error) {
	query := `SELECT id, doc_type, document, position, total, word_count, content, embedding
		FROM chunks WHERE collection = ?`
	args := []any{s.collection}
	if filter != nil {
		query += ` AND doc_type = ?`
		args = append(args, string(filter.Type))
	}
	query += ` ORDER BY rowid`

	candidates, err := s.queryChunks(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	return vectorstore.RankMMR(vector, candidates, k), nil
}

func (s *Storage) All(ctx context.Context) ([]domain.Chunk, error) {
	return s.queryChunks(ctx, `SELECT id, doc_type, document, position, total, word_count, content, embedding
		FROM chunks WHERE collection = ? ORDER BY rowid`, s.collection)
}

func (s *Storage) Stats(ctx context.Context) (*domain.Stats, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT doc_type, document FROM chunks WHERE collection = ? ORDER BY rowid`, s.collection)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	stats := &domain.Stats{}
	seen := make(map[string]struct{})
	for rows.Next() {
		var docType, document string
		if err := rows.Scan(&docType, &document); err != nil {
			return nil, err
		}
		stats.TotalChunks++
		switch domain.DocType(docType) {
		case domain.DocTypeResume:
			stats.ResumeChunks++
			stats.ResumeName = document
		case domain.DocTypeJobPosting:
			stats.JobPostingChunks++
			if _, ok := seen[document]; !ok {
				seen[document] = struct{}{}
				stats.JobPostings = append(stats.JobPostings, document)
			}
		}
	}
	return stats, rows.Err()
}

func (s *Storage) queryChunks(ctx context.Context, query string, args ...any) ([]domain.Chunk, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []domain.Chunk
	for rows.Next() {
		var c domain.Chunk
		var docType string
		var blob []byte
		if err := rows.Scan(&c.ID, &docType, &c.Meta.Document, &c.Meta.Index,
			&c.Meta.Total, &c.Meta.WordCount, &c.Content, &blob); err != nil {
			return nil, err
		}
		c.Meta.Type = domain.DocType(docType)
		c.Embedding = decodeEmbedding(blob)
		out = append(out, c)
	}
	return out, rows.Err()
}

// encodeEmbedding packs the vector as little-endian float32 bytes.
func encodeEmbedding(vec []float32) []byte {
	buf := make([]byte, len(vec)*4)
	for i, f := range vec {
		binary.LittleEndian.PutUint32(buf[i*4:], math.Float32bits(f))
	}
	return buf
}

func decodeEmbedding(data []byte) []float32 {
	vec := make([]float32, len(data)/4)
	for i := range vec {
		vec[i] = math.Float32frombits(binary.LittleEndian.Uint32(data[i*4:]))
	}
	return vec
}
