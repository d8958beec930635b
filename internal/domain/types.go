package domain

import "unicode/utf8"

// DocType categorises a document as either the candidate's resume or one of
// the job postings it is being matched against.
type DocType string

const (
	DocTypeResume     DocType = "resume"
	DocTypeJobPosting DocType = "job_posting"
)

// Valid reports whether the document type is one of the known categories.
func (t DocType) Valid() bool {
	return t == DocTypeResume || t == DocTypeJobPosting
}

// Document is a named unit of cleaned source text ready for chunking.
type Document struct {
	ID        string
	Name      string
	Type      DocType
	Content   string
	PageCount int
	WordCount int
}

// ChunkMetadata carries the positional and ownership information attached to
// every chunk. All fields are required; retrieval filters and source
// attribution depend on them.
type ChunkMetadata struct {
	Type      DocType
	Document  string
	Index     int
	Total     int
	WordCount int
}

// Chunk is the atomic retrievable fragment of a document. Chunks are written
// once to the vector index and never mutated.
type Chunk struct {
	ID        string
	Content   string
	Meta      ChunkMetadata
	Embedding []float32
}

// SearchResult is a retrieved chunk with its query similarity score.
type SearchResult struct {
	Chunk Chunk
	Score float64
}

// Turn is one question/answer exchange within a conversation session.
type Turn struct {
	Question string
	Answer   string
}

// Stats summarises the current contents of the vector index.
type Stats struct {
	TotalChunks      int
	ResumeChunks     int
	JobPostingChunks int
	ResumeName       string
	JobPostings      []string
}

// sourcePreviewLimit bounds the content preview on a source attribution.
const sourcePreviewLimit = 200

// Source is a read-only attribution view over a retrieved chunk. It is
// recomputed from the chunk at response time, never stored.
type Source struct {
	Preview  string
	Type     DocType
	Document string
}

// NewSource derives a source attribution from a chunk, truncating the
// content preview to 200 characters.
func NewSource(c Chunk) Source {
	preview := c.Content
	if len(preview) > sourcePreviewLimit {
		preview = preview[:runeCut(preview, sourcePreviewLimit)] + "..."
	}
	return Source{
		Preview:  preview,
		Type:     c.Meta.Type,
		Document: c.Meta.Document,
	}
}

// runeCut backs the byte offset n up to a rune boundary so truncation never
// splits a multibyte character.
func runeCut(s string, n int) int {
	for n > 0 && !utf8.RuneStart(s[n]) {
		n--
	}
	return n
}
