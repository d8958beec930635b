package embedding

import "context"

// Embedder converts free text into a fixed-length numeric vector usable for
// similarity comparison. Vectors are L2-normalised.
type Embedder interface {
	Name() string
	Dimension() int
	Embed(ctx context.Context, text string) ([]float32, error)
	EmbedBatch(ctx context.Context, texts []string) ([][]float32, error)
}
