package classifier

import (
	"math"

	"github.com/agrovision/shade-analyzer/pkg/features"
)

// HeuristicPolicy scores each region out of 100 from four independent
// criteria and labels it Light when the score reaches 50. It needs no
// training data and folds in more signal than raw brightness alone: washed
// out shadow under mesh tends to be dim, color-imbalanced and flat, while
// sunlit soil is bright, balanced and textured.
type HeuristicPolicy struct{}

// NewHeuristicPolicy creates a heuristic scoring policy.
func NewHeuristicPolicy() *HeuristicPolicy {
	return &HeuristicPolicy{}
}

// Name returns the policy identifier.
func (p *HeuristicPolicy) Name() string { return PolicyHeuristic }

// Taxonomy returns TwoClass.
func (p *HeuristicPolicy) Taxonomy() Taxonomy { return TwoClass }

// ClassifyRegion labels a region from its 6-element feature vector. A score
// of exactly 50 resolves to Light.
func (p *HeuristicPolicy) ClassifyRegion(v features.Vector) Label {
	if p.Score(v) >= 50 {
		return Light
	}
	return Shadow
}

// Score accumulates the region's score out of 100.
//
// Brightness (0-255 scale): >180 is 40, >120 is 20, >80 is 10.
// Color balance min/max:    >0.8 is 30, >0.6 is 15.
// Contrast (normalized):    >0.3 is 20, >0.15 is 10.
// Max channel intensity:    >200 is 10, >150 is 5.
func (p *HeuristicPolicy) Score(v features.Vector) int {
	score := 0

	brightness := v[features.IdxBrightness]
	switch {
	case brightness > 180:
		score += 40
	case brightness > 120:
		score += 20
	case brightness > 80:
		score += 10
	}

	maxCh := math.Max(v[features.IdxAvgR], math.Max(v[features.IdxAvgG], v[features.IdxAvgB]))
	minCh := math.Min(v[features.IdxAvgR], math.Min(v[features.IdxAvgG], v[features.IdxAvgB]))
	if maxCh > 0 {
		balance := minCh / maxCh
		switch {
		case balance > 0.8:
			score += 30
		case balance > 0.6:
			score += 15
		}
	}

	contrast := v[features.IdxContrast]
	switch {
	case contrast > 0.3:
		score += 20
	case contrast > 0.15:
		score += 10
	}

	switch {
	case maxCh > 200:
		score += 10
	case maxCh > 150:
		score += 5
	}

	return score
}
