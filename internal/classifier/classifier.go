// Package classifier detects whether a question asks for a cross-document
// comparison rather than a specific fact.
package classifier

import "strings"

// Intent tags the retrieval strategy a question requires.
type Intent int

const (
	// IntentSpecific questions are served by top-k similarity retrieval.
	IntentSpecific Intent = iota
	// IntentComparison questions require every indexed job posting, since
	// similarity retrieval can under-represent a posting that is a poor
	// textual match to the question yet the substantively best fit.
	IntentComparison
)

// defaultPhrases is the built-in comparison-intent vocabulary. A single
// case-insensitive substring match is sufficient. False negatives degrade
// to ordinary retrieval; false positives only cost context size.
var defaultPhrases = []string{
	"which job", "best job", "best fit", "best match", "compare", "comparison",
	"all jobs", "all job", "all three", "all 3", "every job", "each job",
	"best suited", "most suitable", "recommend", "should i apply",
	"which role", "which position", "rank", "ranking",
}

// Classifier matches questions against a fixed phrase list. It is pure and
// deterministic.
type Classifier struct {
	phrases []string
}

// New creates a classifier using the built-in vocabulary plus any extra
// phrases from configuration.
func New(extra ...string) *Classifier {
	phrases := make([]string, 0, len(defaultPhrases)+len(extra))
	phrases = append(phrases, defaultPhrases...)
	for _, p := range extra {
		if p = strings.ToLower(strings.TrimSpace(p)); p != "" {
			phrases = append(phrases, p)
		}
	}
	return &Classifier{phrases: phrases}
}

// Classify returns the intent of the question.
func (c *Classifier) Classify(question string) Intent {
	if c.IsComparison(question) {
		return IntentComparison
	}
	return IntentSpecific
}

// IsComparison reports whether the question carries comparison intent.
func (c *Classifier) IsComparison(question string) bool {
	q := strings.ToLower(question)
	for _, phrase := range c.phrases {
		if strings.Contains(q, phrase) {
			return true
		}
	}
	return false
}
