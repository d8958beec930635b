// Package assembler renders retrieved chunks and conversation history into
// prompt-ready text with source attribution.
package assembler

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"careerag/internal/domain"
)

// chunkSeparator visibly divides chunks so the generator can attribute
// claims to a specific document.
const chunkSeparator = "\n\n---\n\n"

// maxAnswerChars truncates long recorded answers when rendering history, to
// bound prompt size.
const maxAnswerChars = 500

// emptyHistoryMarker is emitted instead of an empty string so the generator
// is never asked to infer context from silence.
const emptyHistoryMarker = "No previous conversation."

// Assembler formats context for the generator.
type Assembler struct {
	maxTurns int
}

// New creates an assembler that renders at most maxTurns recent turns of
// history.
func New(maxTurns int) *Assembler {
	if maxTurns <= 0 {
		maxTurns = 5
	}
	return &Assembler{maxTurns: maxTurns}
}

// FormatChunks renders each chunk under a header naming its category and
// source document, joined by a visible separator.
func (a *Assembler) FormatChunks(chunks []domain.Chunk) string {
	parts := make([]string, 0, len(chunks))
	for _, c := range chunks {
		header := fmt.Sprintf("[%s: %s]", strings.ToUpper(string(c.Meta.Type)), c.Meta.Document)
		parts = append(parts, header+"\n"+c.Content)
	}
	return strings.Join(parts, chunkSeparator)
}

// FormatHistory renders the most recent turns, both sides of each, with long
// answers truncated. An empty history yields an explicit marker.
func (a *Assembler) FormatHistory(turns []domain.Turn) string {
	if len(turns) == 0 {
		return emptyHistoryMarker
	}
	if len(turns) > a.maxTurns {
		turns = turns[len(turns)-a.maxTurns:]
	}
	var b strings.Builder
	for i, t := range turns {
		if i > 0 {
			b.WriteString("\n")
		}
		b.WriteString("User: " + t.Question + "\n")
		answer := t.Answer
		if len(answer) > maxAnswerChars {
			// back up to a rune boundary so truncation never splits a
			// multibyte character
			cut := maxAnswerChars
			for cut > 0 && !utf8.RuneStart(answer[cut]) {
				cut--
			}
			answer = answer[:cut] + "..."
		}
		b.WriteString("Assistant: " + answer)
	}
	return b.String()
}
