// Package generator abstracts the external language model used to produce
// answers.
package generator

import "context"

// Sink receives incremental answer fragments during streaming generation.
// Returning an error aborts the stream.
type Sink func(delta string) error

// Generator produces answer text from a system instruction and a prompt.
// Failures propagate to the caller; nothing is retried here.
type Generator interface {
	Name() string

	// Generate returns the complete answer text.
	Generate(ctx context.Context, system, prompt string) (string, error)

	// GenerateStream forwards each fragment to the sink as it arrives while
	// accumulating the full text, which is returned once the stream ends.
	GenerateStream(ctx context.Context, system, prompt string, sink Sink) (string, error)
}
