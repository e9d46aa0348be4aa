// Package scorer computes lead quality scores from firmographic and
// contactability signals.
package scorer

import (
	"math"

	"github.com/sells-group/leadgen-cli/internal/model"
)

// Lead maps a canonical lead to a 0-100 quality score using a fixed
// weighted feature set. Deterministic and pure; a missing field simply
// contributes nothing.
//
// Weights: rating up to 40 (linear in rating/5), review volume up to 25
// (log10 scale), website +15, phone +10, street address +5, and a +5 bonus
// at 100+ reviews. The sum is clamped to 100.
func Lead(l *model.Lead) int {
	score := 0

	if l.Rating != nil {
		normalized := math.Max(0, math.Min(5, *l.Rating))
		score += int(normalized / 5.0 * 40)
	}

	if l.ReviewCount > 0 {
		score += min(25, int(math.Log10(float64(l.ReviewCount)+1)*12))
	}

	if l.CompanyWebsite != "" {
		score += 15
	}

	if l.CompanyPhone != "" {
		score += 10
	}

	if l.Street != "" {
		score += 5
	}

	if l.ReviewCount >= 100 {
		score += 5
	}

	return min(100, score)
}

// Features extracts the normalized numeric features behind Lead, kept for
// parity checks and future model training.
func Features(l *model.Lead) map[string]float64 {
	rating := 0.0
	if l.Rating != nil {
		rating = math.Max(0, math.Min(5, *l.Rating))
	}
	reviewLog := 0.0
	if l.ReviewCount > 0 {
		reviewLog = math.Log10(float64(l.ReviewCount) + 1)
	}
	return map[string]float64{
		"rating_norm":       rating / 5.0,
		"review_log":        reviewLog,
		"has_website":       boolFeature(l.CompanyWebsite != ""),
		"has_phone":         boolFeature(l.CompanyPhone != ""),
		"has_address":       boolFeature(l.Street != ""),
		"high_review_count": boolFeature(l.ReviewCount >= 100),
	}
}

func boolFeature(b bool) float64 {
	if b {
		return 1.0
	}
	return 0.0
}
