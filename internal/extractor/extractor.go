// Package extractor converts raw document bytes into cleaned plain text.
// PDF and DOCX parsing live behind the same contract in external tooling;
// this package handles plain text files and pasted content.
package extractor

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"unicode/utf8"

	"careerag/internal/domain"
)

// charsPerPage is the estimate used for input without page boundaries.
const charsPerPage = 3000

var (
	spaceRuns   = regexp.MustCompile(`[ \t]+`)
	newlineRuns = regexp.MustCompile(`\n{3,}`)
)

// Extractor produces domain documents from files or pasted text.
type Extractor struct{}

// New creates an extractor.
func New() *Extractor { return &Extractor{} }

// ProcessFile reads a plain text file and returns the cleaned document.
func (e *Extractor) ProcessFile(path string, docType domain.DocType) (*domain.Document, error) {
	if ext := strings.ToLower(filepath.Ext(path)); ext != ".txt" {
		return nil, fmt.Errorf("%w: %s", domain.ErrUnsupportedType, ext)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	return e.Process(data, filepath.Base(path), docType)
}

// Process decodes raw bytes and returns the cleaned document. UTF-8 is
// assumed; invalid input falls back to a Latin-1 interpretation.
func (e *Extractor) Process(data []byte, name string, docType domain.DocType) (*domain.Document, error) {
	text := string(data)
	if !utf8.ValidString(text) {
		text = decodeLatin1(data)
	}
	return e.ProcessText(text, name, docType)
}

// ProcessText cleans pasted text and wraps it as a document. It is used for
// job postings pasted directly rather than uploaded as files.
func (e *Extractor) ProcessText(text, name string, docType domain.DocType) (*domain.Document, error) {
	if !docType.Valid() {
		return nil, fmt.Errorf("%w: doc type %q", domain.ErrInvalidInput, docType)
	}
	content := CleanText(text)
	if content == "" {
		return nil, fmt.Errorf("%w: %s is empty", domain.ErrInvalidInput, name)
	}
	pages := len(content)/charsPerPage + 1
	return &domain.Document{
		ID:        documentID(content, docType),
		Name:      name,
		Type:      docType,
		Content:   content,
		PageCount: pages,
		WordCount: len(strings.Fields(content)),
	}, nil
}

// CleanText normalises whitespace: runs of spaces and tabs collapse to one
// space, three or more newlines collapse to a paragraph break, and leading
// and trailing whitespace is removed.
func CleanText(text string) string {
	text = spaceRuns.ReplaceAllString(text, " ")
	text = newlineRuns.ReplaceAllString(text, "\n\n")
	return strings.TrimSpace(text)
}

// documentID derives a stable identifier from the content hash, so the same
// document uploaded twice maps to the same ID.
func documentID(content string, docType domain.DocType) string {
	sum := sha256.Sum256([]byte(content))
	return string(docType) + "_" + hex.EncodeToString(sum[:])[:12]
}

func decodeLatin1(data []byte) string {
	runes := make([]rune, len(data))
	for i, b := range data {
		runes[i] = rune(b)
	}
	return string(runes)
}
