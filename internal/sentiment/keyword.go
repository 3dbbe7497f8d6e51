package sentiment

import (
	"context"
	"strings"
)

var positiveWords = []string{
	"good", "great", "excellent", "positive", "profit", "profits", "growth",
	"increase", "up", "higher", "best", "success", "successful", "gain",
	"improve", "improved", "improving", "innovation", "innovative", "exceed",
	"exceeded", "beating", "record", "strong", "strength", "robust", "progress",
}

var negativeWords = []string{
	"bad", "poor", "negative", "loss", "losses", "decline", "decrease", "down",
	"lower", "worst", "fail", "failed", "failure", "drop", "dropped", "weak",
	"weakness", "concern", "concerned", "worry", "risk", "risky", "problem",
	"issue", "trouble", "difficult", "challenging", "disappointing", "disappointed",
	"miss", "missed", "below", "recall", "lawsuit", "investigation", "crash",
}

// KeywordAnalyzer is the deterministic fallback classifier used when the
// remote backend cannot be initialized. It requires no network access.
type KeywordAnalyzer struct{}

// NewKeywordAnalyzer builds the word-list based analyzer.
func NewKeywordAnalyzer() *KeywordAnalyzer {
	return &KeywordAnalyzer{}
}

// Analyze scores text by counting positive and negative word hits:
// score = (pos - neg) / (pos + neg), label thresholds at ±0.2.
func (a *KeywordAnalyzer) Analyze(_ context.Context, text string) Result {
	if isBlank(text) {
		return Neutral()
	}

	lowered := strings.ToLower(text)

	var positive, negative int
	for _, word := range positiveWords {
		if strings.Contains(lowered, word) {
			positive++
		}
	}
	for _, word := range negativeWords {
		if strings.Contains(lowered, word) {
			negative++
		}
	}

	total := positive + negative
	if total == 0 {
		return Neutral()
	}

	score := float64(positive-negative) / float64(total)

	label := LabelNeutral
	switch {
	case score > 0.2:
		label = LabelPositive
	case score < -0.2:
		label = LabelNegative
	}

	return Result{Label: label, Score: score}
}
