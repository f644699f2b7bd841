package features

import (
	"math"
	"testing"

	"github.com/agrovision/shade-analyzer/pkg/imgio"
)

// createUniformBuffer creates a buffer filled with one color
func createUniformBuffer(width, height int, r, g, b uint8) *imgio.Buffer {
	buf := imgio.NewBuffer(width, height)
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			buf.Set(x, y, r, g, b, 255)
		}
	}
	return buf
}

func almostEqual(a, b, tol float64) bool {
	return math.Abs(a-b) <= tol
}

func TestRegionArea(t *testing.T) {
	region := Region{X: 2, Y: 3, Width: 10, Height: 20}
	if region.Area() != 200 {
		t.Errorf("Expected area 200, got %d", region.Area())
	}
}

func TestRegionClip(t *testing.T) {
	region := Region{X: 35, Y: 15, Width: 10, Height: 20}
	clipped := region.Clip(40, 20)

	if clipped.Width != 5 {
		t.Errorf("Expected clipped width 5, got %d", clipped.Width)
	}
	if clipped.Height != 5 {
		t.Errorf("Expected clipped height 5, got %d", clipped.Height)
	}

	// Fully out-of-bounds regions collapse to zero area
	gone := Region{X: 50, Y: 50, Width: 10, Height: 10}.Clip(40, 40)
	if gone.Area() != 0 {
		t.Errorf("Expected zero area for out-of-bounds region, got %d", gone.Area())
	}
}

func TestPixelFeatures(t *testing.T) {
	e := NewExtractor()
	v := e.PixelFeatures(10, 20, 30)

	if len(v) != PixelVectorLen {
		t.Fatalf("Expected %d features, got %d", PixelVectorLen, len(v))
	}
	if v[0] != 10 || v[1] != 20 || v[2] != 30 {
		t.Errorf("Expected [10 20 30], got %v", v)
	}
}

func TestRegionFeaturesUniform(t *testing.T) {
	e := NewExtractor()
	buf := createUniformBuffer(4, 4, 100, 150, 200)

	v := e.RegionFeatures(buf, Region{X: 0, Y: 0, Width: 4, Height: 4})
	if len(v) != RegionVectorLen {
		t.Fatalf("Expected %d features, got %d", RegionVectorLen, len(v))
	}

	if v[IdxAvgR] != 100 || v[IdxAvgG] != 150 || v[IdxAvgB] != 200 {
		t.Errorf("Expected channel averages [100 150 200], got %v", v[:3])
	}
	if !almostEqual(v[IdxBrightness], 150, 1e-9) {
		t.Errorf("Expected brightness 150, got %f", v[IdxBrightness])
	}
	// A uniform region has no contrast and no edges
	if v[IdxContrast] != 0 {
		t.Errorf("Expected zero contrast, got %f", v[IdxContrast])
	}
	if v[IdxEdge] != 0 {
		t.Errorf("Expected zero edge strength, got %f", v[IdxEdge])
	}
}

func TestRegionFeaturesContrastAndEdge(t *testing.T) {
	e := NewExtractor()
	buf := imgio.NewBuffer(2, 1)
	buf.Set(0, 0, 211, 161, 211, 255) // brightness 194.33
	buf.Set(1, 0, 109, 59, 109, 255)  // brightness 92.33

	v := e.RegionFeatures(buf, Region{X: 0, Y: 0, Width: 2, Height: 1})

	if !almostEqual(v[IdxAvgR], 160, 1e-9) || !almostEqual(v[IdxAvgG], 110, 1e-9) || !almostEqual(v[IdxAvgB], 160, 1e-9) {
		t.Errorf("Expected channel averages [160 110 160], got %v", v[:3])
	}

	// Population stddev of two brightness values is half their difference:
	// (194.33 - 92.33) / 2 = 51, normalized 51/255 = 0.2
	if !almostEqual(v[IdxContrast], 0.2, 1e-9) {
		t.Errorf("Expected contrast 0.2, got %f", v[IdxContrast])
	}

	// Single horizontal difference of 102, normalized 102/255 = 0.4
	if !almostEqual(v[IdxEdge], 0.4, 1e-9) {
		t.Errorf("Expected edge strength 0.4, got %f", v[IdxEdge])
	}
}

func TestRegionFeaturesDegenerate(t *testing.T) {
	e := NewExtractor()
	buf := createUniformBuffer(4, 4, 100, 100, 100)

	v := e.RegionFeatures(buf, Region{X: 10, Y: 10, Width: 4, Height: 4})
	for i, f := range v {
		if f != 0 {
			t.Errorf("Expected zero vector for degenerate region, index %d = %f", i, f)
		}
	}
}

func TestExtendedFeaturesGray(t *testing.T) {
	e := NewExtractor()
	buf := createUniformBuffer(4, 4, 100, 100, 100)

	v := e.ExtendedFeatures(buf, Region{X: 0, Y: 0, Width: 4, Height: 4})
	if len(v) != ExtendedVectorLen {
		t.Fatalf("Expected %d features, got %d", ExtendedVectorLen, len(v))
	}

	if v[ExtIdxSaturation] != 0 {
		t.Errorf("Gray has no saturation, got %f", v[ExtIdxSaturation])
	}
	if !almostEqual(v[ExtIdxValue], 100.0/255, 1e-9) {
		t.Errorf("Expected value %f, got %f", 100.0/255, v[ExtIdxValue])
	}
	if !almostEqual(v[ExtIdxLuminance], 100, 1e-6) {
		t.Errorf("Expected luminance 100, got %f", v[ExtIdxLuminance])
	}
	// Gray: G == R, so the vegetation index is ~0
	if !almostEqual(v[ExtIdxNDVI], 0, 1e-6) {
		t.Errorf("Expected NDVI ~0 for gray, got %f", v[ExtIdxNDVI])
	}
	if v[ExtIdxTexture] != 0 {
		t.Errorf("Expected zero texture for gray, got %f", v[ExtIdxTexture])
	}
}

func TestExtendedFeaturesGreen(t *testing.T) {
	e := NewExtractor()
	buf := createUniformBuffer(4, 4, 50, 200, 50)

	v := e.ExtendedFeatures(buf, Region{X: 0, Y: 0, Width: 4, Height: 4})

	// (G-R)/(G+R) = 150/250 = 0.6
	if !almostEqual(v[ExtIdxNDVI], 0.6, 1e-6) {
		t.Errorf("Expected NDVI 0.6, got %f", v[ExtIdxNDVI])
	}
	// Pure green hue sits at 1/3 of the hue circle
	if !almostEqual(v[ExtIdxHue], 1.0/3, 1e-6) {
		t.Errorf("Expected hue 1/3, got %f", v[ExtIdxHue])
	}
	if v[ExtIdxTexture] <= 0 {
		t.Errorf("Expected positive texture for a strongly colored region, got %f", v[ExtIdxTexture])
	}
}

func TestExtendedFeaturesNDVIGuard(t *testing.T) {
	e := NewExtractor()
	buf := createUniformBuffer(2, 2, 0, 0, 0)

	// All-black must not divide by zero
	v := e.ExtendedFeatures(buf, Region{X: 0, Y: 0, Width: 2, Height: 2})
	if math.IsNaN(v[ExtIdxNDVI]) || math.IsInf(v[ExtIdxNDVI], 0) {
		t.Errorf("NDVI must be finite for all-black input, got %f", v[ExtIdxNDVI])
	}
}

func TestRGBToHSV(t *testing.T) {
	tests := []struct {
		name    string
		r, g, b float64
		h, s, v float64
	}{
		{"black", 0, 0, 0, 0, 0, 0},
		{"white", 255, 255, 255, 0, 0, 1},
		{"red", 255, 0, 0, 0, 1, 1},
		{"green", 0, 255, 0, 1.0 / 3, 1, 1},
		{"blue", 0, 0, 255, 2.0 / 3, 1, 1},
	}

	for _, tt := range tests {
		h, s, v := rgbToHSV(tt.r, tt.g, tt.b)
		if !almostEqual(h, tt.h, 1e-6) || !almostEqual(s, tt.s, 1e-6) || !almostEqual(v, tt.v, 1e-6) {
			t.Errorf("%s: expected (%f, %f, %f), got (%f, %f, %f)", tt.name, tt.h, tt.s, tt.v, h, s, v)
		}
	}
}

func BenchmarkRegionFeatures(b *testing.B) {
	e := NewExtractor()
	buf := createUniformBuffer(200, 200, 120, 140, 100)
	region := Region{X: 0, Y: 0, Width: 10, Height: 20}

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		e.RegionFeatures(buf, region)
	}
}

func BenchmarkExtendedFeatures(b *testing.B) {
	e := NewExtractor()
	buf := createUniformBuffer(200, 200, 120, 140, 100)
	region := Region{X: 0, Y: 0, Width: 10, Height: 20}

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		e.ExtendedFeatures(buf, region)
	}
}
