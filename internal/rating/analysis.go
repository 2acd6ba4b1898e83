package rating

import (
	"fmt"
	"strings"

	"github.com/raine/chadorchud-bot/internal/catalog"
)

// Verdict is the binary aesthetic classification.
type Verdict string

const (
	VerdictChad    Verdict = "CHAD"
	VerdictChud    Verdict = "CHUD"
	VerdictUnknown Verdict = "UNKNOWN"
)

// ParseVerdict maps a reply value to a Verdict. Anything outside the two
// known values is VerdictUnknown.
func ParseVerdict(s string) Verdict {
	switch Verdict(strings.ToUpper(strings.TrimSpace(s))) {
	case VerdictChad:
		return VerdictChad
	case VerdictChud:
		return VerdictChud
	default:
		return VerdictUnknown
	}
}

// RecommendationCount is the exact number of improvements in a reply.
const RecommendationCount = 3

// Improvement is one product recommendation.
type Improvement struct {
	Category   catalog.Category
	Suggestion string
	Product    string // exact catalog product name
}

// Analysis is the structured result of rating one image.
type Analysis struct {
	Verdict      Verdict
	Score        int
	Title        string
	Explanation  []string
	KeyFeatures  []string
	Improvements []Improvement
}

// Validate checks the structural contract of a reply: known verdict, score
// in [0,100], non-empty explanation and key features, and exactly three
// improvements from the fixed categories with exactly one Enhancement.
func (a *Analysis) Validate() error {
	if a.Verdict != VerdictChad && a.Verdict != VerdictChud {
		return fmt.Errorf("invalid verdict %q", a.Verdict)
	}
	if a.Score < 0 || a.Score > 100 {
		return fmt.Errorf("score %d out of range", a.Score)
	}
	if strings.TrimSpace(a.Title) == "" {
		return fmt.Errorf("missing title")
	}
	if !hasText(a.Explanation) {
		return fmt.Errorf("missing explanation")
	}
	if !hasText(a.KeyFeatures) {
		return fmt.Errorf("missing key features")
	}
	if len(a.Improvements) != RecommendationCount {
		return fmt.Errorf("expected %d improvements, got %d", RecommendationCount, len(a.Improvements))
	}

	enhancements := 0
	for i, imp := range a.Improvements {
		if !imp.Category.IsValid() {
			return fmt.Errorf("improvement %d has unknown category %q", i, imp.Category)
		}
		if strings.TrimSpace(imp.Product) == "" {
			return fmt.Errorf("improvement %d has no product", i)
		}
		if imp.Category == catalog.CategoryEnhancement {
			enhancements++
		}
	}
	if enhancements != 1 {
		return fmt.Errorf("expected exactly one %s improvement, got %d", catalog.CategoryEnhancement, enhancements)
	}

	return nil
}

func hasText(lines []string) bool {
	if len(lines) == 0 {
		return false
	}
	for _, l := range lines {
		if strings.TrimSpace(l) == "" {
			return false
		}
	}
	return true
}
