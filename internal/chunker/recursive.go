// Package chunker splits cleaned document text into overlapping fragments
// with positional metadata attached.
package chunker

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/google/uuid"

	"careerag/internal/domain"
)

// DefaultChunkSize is the default maximum chunk length in characters.
const DefaultChunkSize = 512

// DefaultChunkOverlap is the default number of overlapping characters
// carried from one chunk into the next.
const DefaultChunkOverlap = 50

// separators is the boundary ladder, coarsest first. The empty separator is
// the character-level last resort that guarantees a hard size bound.
var separators = []string{"\n\n", "\n", ". ", ", ", " ", ""}

// Recursive splits text on the coarsest boundary that still produces
// fragments at or under the configured maximum length. Splitting is a pure
// function of the input text and configuration.
type Recursive struct {
	chunkSize int
	overlap   int
}

// NewRecursive creates a chunker with the given size and overlap in
// characters. Non-positive values fall back to defaults; overlap is capped
// below the chunk size.
func NewRecursive(chunkSize, overlap int) *Recursive {
	if chunkSize <= 0 {
		chunkSize = DefaultChunkSize
	}
	if overlap < 0 {
		overlap = DefaultChunkOverlap
	}
	if overlap >= chunkSize {
		overlap = chunkSize / 4
	}
	return &Recursive{chunkSize: chunkSize, overlap: overlap}
}

// Chunk splits a document into ordered chunks. Index and sibling totals are
// annotated in a second pass once splitting is complete. A document shorter
// than the chunk size yields exactly one chunk equal to the whole content.
func (c *Recursive) Chunk(doc *domain.Document) ([]domain.Chunk, error) {
	if doc == nil || strings.TrimSpace(doc.Content) == "" {
		return nil, fmt.Errorf("%w: empty document", domain.ErrInvalidInput)
	}

	texts := c.splitText(doc.Content, separators)

	chunks := make([]domain.Chunk, len(texts))
	for i, text := range texts {
		chunks[i] = domain.Chunk{
			ID:      uuid.New().String(),
			Content: text,
			Meta: domain.ChunkMetadata{
				Type:      doc.Type,
				Document:  doc.Name,
				Index:     i,
				Total:     len(texts),
				WordCount: len(strings.Fields(text)),
			},
		}
	}
	return chunks, nil
}

// splitText recursively splits on the first separator present in the text,
// descending the ladder for any piece still over the limit, then merges
// adjacent pieces back into chunks with trailing overlap. Separators stay
// attached to the preceding piece so that concatenating chunk boundaries
// reconstructs the input.
func (c *Recursive) splitText(text string, seps []string) []string {
	sep := ""
	var next []string
	for i, s := range seps {
		if s == "" || strings.Contains(text, s) {
			sep = s
			next = seps[i+1:]
			break
		}
	}

	var parts []string
	if sep == "" {
		// Character-level fallback. Pieces leave room for the overlap seed
		// so merged chunks stay within the size limit.
		parts = splitEvery(text, c.chunkSize-c.overlap)
	} else {
		parts = strings.SplitAfter(text, sep)
	}

	var out []string
	var pending []string
	for _, p := range parts {
		if p == "" {
			continue
		}
		if len(p) <= c.chunkSize {
			pending = append(pending, p)
			continue
		}
		// Piece is over the limit; flush what we have and descend.
		out = append(out, c.merge(pending)...)
		pending = nil
		out = append(out, c.splitText(p, next)...)
	}
	return append(out, c.merge(pending)...)
}

// merge greedily joins under-limit pieces into chunks of at most chunkSize
// characters, seeding each new chunk with the tail of the previous one so
// that consecutive chunks overlap. A chunk may exceed the limit by at most
// the overlap length when a large piece follows a seed.
func (c *Recursive) merge(parts []string) []string {
	if len(parts) == 0 {
		return nil
	}
	var chunks []string
	current := ""
	hasNew := false
	for _, p := range parts {
		if hasNew && len(current)+len(p) > c.chunkSize {
			chunks = append(chunks, current)
			current = tail(current, c.overlap)
			hasNew = false
		}
		current += p
		hasNew = true
	}
	if hasNew {
		chunks = append(chunks, current)
	}
	return chunks
}

// splitEvery cuts the text into pieces of at most size bytes, never in the
// middle of a rune.
func splitEvery(text string, size int) []string {
	if size <= 0 {
		size = 1
	}
	var parts []string
	for len(text) > size {
		cut := size
		for cut > 0 && !utf8.RuneStart(text[cut]) {
			cut--
		}
		if cut == 0 {
			// a single rune wider than the size; take it whole
			_, cut = utf8.DecodeRuneInString(text)
		}
		parts = append(parts, text[:cut])
		text = text[cut:]
	}
	if text != "" {
		parts = append(parts, text)
	}
	return parts
}

// tail returns the trailing n bytes of s, advanced to the next rune boundary
// so the seed never starts mid-rune.
func tail(s string, n int) string {
	if n <= 0 {
		return ""
	}
	if len(s) <= n {
		return s
	}
	cut := len(s) - n
	for cut < len(s) && !utf8.RuneStart(s[cut]) {
		cut++
	}
	return s[cut:]
}
