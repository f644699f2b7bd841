package classifier

import (
	"fmt"

	"github.com/agrovision/shade-analyzer/pkg/features"
)

// Policy is a decision rule mapping pixels or feature vectors to labels.
// Policies are read-only after construction, so one policy value may serve
// concurrent classification calls without locking.
//
// A policy implements either PixelPolicy or RegionPolicy (or both). Pixel
// policies bypass region tiling and label every pixel directly; region
// policies consume the 6-element feature vector of a tile and have their
// label broadcast to every pixel in it.
type Policy interface {
	Name() string
	Taxonomy() Taxonomy
}

// PixelPolicy labels individual pixels from their raw RGB components.
type PixelPolicy interface {
	Policy
	ClassifyPixel(r, g, b uint8) Label
}

// RegionPolicy labels whole regions from their feature vectors.
type RegionPolicy interface {
	Policy
	ClassifyRegion(v features.Vector) Label
}

// Policy names accepted by NewPolicy and the configuration layer.
const (
	PolicyThreshold = "threshold"
	PolicyHeuristic = "heuristic"
	PolicyRuleBased = "rule-based-4class"
	PolicyTrained   = "trained"
)

// NewPolicy constructs a decision policy by name. The threshold parameter
// applies only to the "threshold" policy; pass 0 for the default.
func NewPolicy(name string, threshold float64) (Policy, error) {
	switch name {
	case PolicyThreshold, "":
		if threshold <= 0 {
			threshold = DefaultBrightnessThreshold
		}
		return NewThresholdPolicy(threshold), nil
	case PolicyHeuristic:
		return NewHeuristicPolicy(), nil
	case PolicyRuleBased:
		return NewRulePolicy(), nil
	case PolicyTrained:
		return NewTrainedPolicy(), nil
	default:
		return nil, fmt.Errorf("unknown policy %q", name)
	}
}
