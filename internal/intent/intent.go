// Package intent estimates buying intent for a lead, optionally boosted by
// externally observed intent signals.
package intent

import (
	"math"

	"github.com/sells-group/leadgen-cli/internal/model"
)

// Signal is one externally observed intent event for a company, carrying a
// 0-1 confidence score. Types seen in practice: job_posting, funding,
// tech_change, website_visit.
type Signal struct {
	Type   string  `json:"type" yaml:"type"`
	Source string  `json:"source,omitempty" yaml:"source,omitempty"`
	Score  float64 `json:"score" yaml:"score"`
}

// Detect maps a lead and optional signals to a 0-100 intent score.
//
// The heuristic base adds 20 for 50+ reviews, 20 for a 4.2+ rating, 15 for
// a website, and 15 for a known email. Signals can only raise the result:
// the boosted signal score is averaged, scaled by signal count, and the
// maximum of base and boost is returned, clamped to 100.
func Detect(l *model.Lead, signals []Signal) int {
	score := 0
	if l.ReviewCount > 50 {
		score += 20
	}
	if l.Rating != nil && *l.Rating >= 4.2 {
		score += 20
	}
	if l.CompanyWebsite != "" {
		score += 15
	}
	if l.EmailFound || l.Email() != "" {
		score += 15
	}

	if boosted := boost(signals); boosted > score {
		score = boosted
	}
	return min(100, score)
}

// boost aggregates signals into a 0-100 score. More signals mean higher
// confidence: each signal past the first adds 10%, capped at +50%.
func boost(signals []Signal) int {
	if len(signals) == 0 {
		return 0
	}
	total := 0.0
	for _, s := range signals {
		total += s.Score
	}
	avg := total / float64(len(signals))
	multiplier := 1 + math.Min(float64(len(signals)-1), 5)*0.1
	return min(100, int(math.Round(avg*100*multiplier)))
}
