// Package session holds the bounded conversational memory for one chat
// session. Memory does not outlive the process.
package session

import (
	"sync"

	"careerag/internal/domain"
)

// DefaultMaxTurns bounds the session when no limit is configured.
const DefaultMaxTurns = 5

// Session is an ordered log of question/answer turns. Once the bound is
// exceeded the oldest turns are evicted first.
type Session struct {
	mu       sync.RWMutex
	maxTurns int
	turns    []domain.Turn
}

// New creates an empty session holding at most maxTurns turns.
func New(maxTurns int) *Session {
	if maxTurns <= 0 {
		maxTurns = DefaultMaxTurns
	}
	return &Session{maxTurns: maxTurns}
}

// Append records a completed turn and trims the oldest entries beyond the
// bound.
func (s *Session) Append(question, answer string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.turns = append(s.turns, domain.Turn{Question: question, Answer: answer})
	if len(s.turns) > s.maxTurns {
		s.turns = s.turns[len(s.turns)-s.maxTurns:]
	}
}

// History returns the turns oldest first. The slice is a copy.
func (s *Session) History() []domain.Turn {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]domain.Turn, len(s.turns))
	copy(out, s.turns)
	return out
}

// Len reports the number of recorded turns.
func (s *Session) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.turns)
}

// Clear resets the session to an empty sequence. The session stays usable.
func (s *Session) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.turns = nil
}
