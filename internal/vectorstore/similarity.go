package vectorstore

import (
	"math"
	"sort"

	"careerag/internal/domain"
)

// mmrLambda balances query relevance against redundancy among selected
// results. 0.5 weighs both equally.
const mmrLambda = 0.5

// Cosine computes the cosine similarity between two vectors. Mismatched or
// zero vectors score 0.
func Cosine(a, b []float32) float64 {
	if len(a) != len(b) || len(a) == 0 {
		return 0
	}
	var dot, normA, normB float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
		normA += float64(a[i]) * float64(a[i])
		normB += float64(b[i]) * float64(b[i])
	}
	if normA == 0 || normB == 0 {
		return 0
	}
	return dot / (math.Sqrt(normA) * math.Sqrt(normB))
}

// RankMMR selects up to k chunks by maximal marginal relevance: each pick
// maximises query similarity minus its worst redundancy against chunks
// already selected. Near-duplicate fragments from the same document section
// therefore do not crowd out topical coverage.
func RankMMR(query []float32, candidates []domain.Chunk, k int) []domain.SearchResult {
	if k <= 0 || len(candidates) == 0 {
		return nil
	}

	scores := make([]float64, len(candidates))
	for i := range candidates {
		scores[i] = Cosine(query, candidates[i].Embedding)
	}

	// Rank the candidate order by raw similarity first so ties in marginal
	// relevance resolve toward the most relevant chunk.
	order := make([]int, len(candidates))
	for i := range order {
		order[i] = i
	}
	sort.SliceStable(order, func(a, b int) bool { return scores[order[a]] > scores[order[b]] })

	if k > len(candidates) {
		k = len(candidates)
	}

	selected := make([]int, 0, k)
	remaining := order
	for len(selected) < k && len(remaining) > 0 {
		bestPos := 0
		bestScore := math.Inf(-1)
		for pos, idx := range remaining {
			redundancy := 0.0
			for _, s := range selected {
				if sim := Cosine(candidates[idx].Embedding, candidates[s].Embedding); sim > redundancy {
					redundancy = sim
				}
			}
			marginal := mmrLambda*scores[idx] - (1-mmrLambda)*redundancy
			if marginal > bestScore {
				bestScore = marginal
				bestPos = pos
			}
		}
		selected = append(selected, remaining[bestPos])
		remaining = append(remaining[:bestPos], remaining[bestPos+1:]...)
	}

	results := make([]domain.SearchResult, 0, len(selected))
	for _, idx := range selected {
		results = append(results, domain.SearchResult{Chunk: candidates[idx], Score: scores[idx]})
	}
	return results
}
