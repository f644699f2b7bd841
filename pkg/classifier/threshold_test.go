package classifier

import "testing"

func TestThresholdPolicyDefaults(t *testing.T) {
	p := NewThresholdPolicy(DefaultBrightnessThreshold)

	if p.Name() != PolicyThreshold {
		t.Errorf("Expected name %q, got %q", PolicyThreshold, p.Name())
	}
	if p.Taxonomy() != TwoClass {
		t.Errorf("Expected two-class taxonomy")
	}
	if p.Threshold() != 130 {
		t.Errorf("Expected default threshold 130, got %f", p.Threshold())
	}
}

func TestThresholdPolicyBoundary(t *testing.T) {
	p := NewThresholdPolicy(130)

	tests := []struct {
		name     string
		value    uint8
		expected Label
	}{
		{"just above", 131, Light},
		{"exactly on threshold", 130, Shadow}, // not strictly greater
		{"just below", 129, Shadow},
		{"black", 0, Shadow},
		{"white", 255, Light},
	}

	for _, tt := range tests {
		got := p.ClassifyPixel(tt.value, tt.value, tt.value)
		if got != tt.expected {
			t.Errorf("%s: brightness %d classified %s, expected %s", tt.name, tt.value, got, tt.expected)
		}
	}
}

func TestThresholdPolicyMixedChannels(t *testing.T) {
	p := NewThresholdPolicy(130)

	// (200+100+100)/3 = 133.33 > 130
	if got := p.ClassifyPixel(200, 100, 100); got != Light {
		t.Errorf("Expected Light for brightness 133.33, got %s", got)
	}
	// (150+130+110)/3 = 130, not strictly greater
	if got := p.ClassifyPixel(150, 130, 110); got != Shadow {
		t.Errorf("Expected Shadow for brightness exactly 130, got %s", got)
	}
}
