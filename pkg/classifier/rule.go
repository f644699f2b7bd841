package classifier

// Thresholds for the rule-based four-class policy, ported from an offline
// model's decision boundary.
const (
	intensityThreshold = 120.0
	greenThreshold     = 0.52
)

// RulePolicy labels each pixel with the four-class soil/mesh x light/shadow
// taxonomy using two thresholded features: pixel intensity and a green
// ratio. The four branches are exhaustive and mutually exclusive by
// construction, so no pixel is ever left unlabeled.
type RulePolicy struct{}

// NewRulePolicy creates a rule-based four-class policy.
func NewRulePolicy() *RulePolicy {
	return &RulePolicy{}
}

// Name returns the policy identifier.
func (p *RulePolicy) Name() string { return PolicyRuleBased }

// Taxonomy returns FourClass.
func (p *RulePolicy) Taxonomy() Taxonomy { return FourClass }

// ClassifyPixel labels a pixel from its intensity (R+G+B)/3 and green ratio
// G/(R+B+1). The +1 in the denominator guards against division by zero when
// R=B=0.
func (p *RulePolicy) ClassifyPixel(r, g, b uint8) Label {
	intensity := (float64(r) + float64(g) + float64(b)) / 3
	greenRatio := float64(g) / (float64(r) + float64(b) + 1)

	if greenRatio <= greenThreshold {
		if intensity < intensityThreshold {
			return SoilShadow
		}
		return SoilLight
	}
	if intensity < intensityThreshold {
		return MeshShadow
	}
	return MeshLight
}
