package selector

import (
	"regexp"
	"strings"

	"github.com/Pavelevich/llm-checker/internal/models"
)

var embeddingNameRe = regexp.MustCompile(`(?i)embed|bge-|nomic-embed|all-minilm`)

// Categories is the fixed set recommendPerCategory iterates.
var Categories = []string{"coding", "reasoning", "multimodal", "creative", "talking", "reading", "general"}

// SelectableCategories is the wider set selectModels accepts directly:
// the fixed recommendation set plus the categories only reachable by an
// explicit query.
var SelectableCategories = append(append([]string{}, Categories...), "summarization", "embeddings")

// IsSelectableCategory reports whether category is accepted by
// selectModels.
func IsSelectableCategory(category string) bool {
	for _, c := range SelectableCategories {
		if c == category {
			return true
		}
	}
	return false
}

// CategoryMatches reports whether a variant belongs in a category's
// candidate pool. Coding wants code- or instruct-tuned models,
// multimodal wants vision, embeddings wants embedding models by tag or
// naming convention, reasoning wants instruct-tuned or at least 7B;
// every other category accepts the whole pool.
func CategoryMatches(v *models.ModelVariant, category string) bool {
	switch category {
	case "coding":
		return v.HasTag("coder") || v.HasTag("code") || v.HasTag("instruct") || v.NameContains("code")
	case "multimodal":
		return v.HasModality("vision") || v.HasTag("vision")
	case "embeddings":
		return v.HasTag("embedding") || embeddingNameRe.MatchString(v.Name)
	case "reasoning":
		return v.HasTag("instruct") || v.ParamsB >= 7
	default: // general, reading, summarization, talking, creative
		return true
	}
}

// IsCoderCandidate mirrors the coding-alignment check scoring uses,
// exported so rationale generation stays consistent with the category
// filter's own notion of "coder-tuned".
func IsCoderCandidate(v *models.ModelVariant) bool {
	return v.HasTag("coder") || strings.Contains(strings.ToLower(v.Name), "code")
}
