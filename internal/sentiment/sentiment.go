// Package sentiment defines the classifier result shape shared by all
// backends and the deterministic keyword fallback analyzer.
package sentiment

import "strings"

// Labels every classifier backend is allowed to return.
const (
	LabelPositive = "POSITIVE"
	LabelNegative = "NEGATIVE"
	LabelNeutral  = "NEUTRAL"
)

// Result is the tagged classification outcome regardless of backend.
type Result struct {
	Label string  `json:"label"`
	Score float64 `json:"score"`
}

// Neutral is the degraded-path result used whenever a backend cannot
// produce a classification.
func Neutral() Result {
	return Result{Label: LabelNeutral, Score: 0.0}
}

// NormalizeLabel coerces anything outside the three known labels to
// NEUTRAL.
func NormalizeLabel(label string) string {
	switch label {
	case LabelPositive, LabelNegative, LabelNeutral:
		return label
	default:
		return LabelNeutral
	}
}

// ClampScore keeps a score inside [-1.0, 1.0].
func ClampScore(score float64) float64 {
	if score > 1.0 {
		return 1.0
	}
	if score < -1.0 {
		return -1.0
	}
	return score
}

// Normalize applies label coercion and score clamping in one step.
func Normalize(r Result) Result {
	return Result{Label: NormalizeLabel(r.Label), Score: ClampScore(r.Score)}
}

func isBlank(text string) bool {
	return strings.TrimSpace(text) == ""
}
