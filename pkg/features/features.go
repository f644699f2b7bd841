// Package features converts raw pixel regions into fixed-length numeric
// feature vectors for the classification policies. Extraction is pure and
// stateless: the same bytes always produce the same vector.
package features

import (
	"math"

	"gonum.org/v1/gonum/stat"

	"github.com/agrovision/shade-analyzer/pkg/imgio"
)

// epsilon guards the NDVI-like ratio against division by zero on pure-black
// or red-only pixels.
const epsilon = 1e-8

// Region represents a rectangular tile of pixels classified as one unit.
// Averaging features over a tile trades spatial precision for throughput;
// shadow and light patches in plot photographs are coherent at the scale of
// tens of pixels, so the tradeoff is visually acceptable.
type Region struct {
	X      int
	Y      int
	Width  int
	Height int
}

// Area returns the number of pixels in the region.
func (r Region) Area() int {
	return r.Width * r.Height
}

// Clip constrains the region to an image of the given dimensions. Remainder
// tiles at the right and bottom edges shrink rather than disappear, so every
// pixel stays inside exactly one region.
func (r Region) Clip(width, height int) Region {
	if r.X+r.Width > width {
		r.Width = width - r.X
	}
	if r.Y+r.Height > height {
		r.Height = height - r.Y
	}
	if r.Width < 0 {
		r.Width = 0
	}
	if r.Height < 0 {
		r.Height = 0
	}
	return r
}

// Vector is an ordered feature vector. Order is significant: every policy
// consuming a vector assumes the layout produced by the extractor that built
// it.
type Vector []float64

// Indices into the 6-element region vector.
const (
	IdxAvgR = iota
	IdxAvgG
	IdxAvgB
	IdxBrightness
	IdxContrast
	IdxEdge
	RegionVectorLen
)

// Indices into the 10-element extended vector.
const (
	ExtIdxAvgR = iota
	ExtIdxAvgG
	ExtIdxAvgB
	ExtIdxHue
	ExtIdxSaturation
	ExtIdxValue
	ExtIdxLuminance
	ExtIdxNDVI
	ExtIdxTexture
	ExtIdxContrast
	ExtendedVectorLen
)

// PixelVectorLen is the length of the degenerate single-pixel vector.
const PixelVectorLen = 3

// Extractor computes feature vectors from pixel buffers.
type Extractor struct{}

// NewExtractor creates a new feature extractor.
func NewExtractor() *Extractor {
	return &Extractor{}
}

// PixelFeatures returns the 3-element vector [r, g, b] for a single pixel,
// on the 0-255 scale.
func (e *Extractor) PixelFeatures(r, g, b uint8) Vector {
	return Vector{float64(r), float64(g), float64(b)}
}

// RegionFeatures computes the 6-element vector
// [avgR, avgG, avgB, brightness, contrast, edge] for a region of the buffer.
// Channel averages and brightness stay on the 0-255 scale; contrast and edge
// strength are normalized by 255. A degenerate (empty) region yields the zero
// vector.
func (e *Extractor) RegionFeatures(buf *imgio.Buffer, region Region) Vector {
	v := make(Vector, RegionVectorLen)
	region = region.Clip(buf.Width, buf.Height)
	n := region.Area()
	if n == 0 {
		return v
	}

	brightness := make([]float64, 0, n)
	var sumR, sumG, sumB float64

	for y := region.Y; y < region.Y+region.Height; y++ {
		for x := region.X; x < region.X+region.Width; x++ {
			r, g, b, _ := buf.At(x, y)
			fr, fg, fb := float64(r), float64(g), float64(b)
			sumR += fr
			sumG += fg
			sumB += fb
			brightness = append(brightness, (fr+fg+fb)/3)
		}
	}

	fn := float64(n)
	v[IdxAvgR] = sumR / fn
	v[IdxAvgG] = sumG / fn
	v[IdxAvgB] = sumB / fn
	v[IdxBrightness] = (v[IdxAvgR] + v[IdxAvgG] + v[IdxAvgB]) / 3
	v[IdxContrast] = stat.PopStdDev(brightness, nil) / 255
	v[IdxEdge] = edgeStrength(brightness, region.Width, region.Height) / 255
	return v
}

// ExtendedFeatures computes the 10-element vector
// [avgR, avgG, avgB, hue, sat, val, luminance, ndvi, texture, contrast].
// HSV components are in [0,1]; the NDVI-like index is (G-R)/(G+R+eps);
// texture is the mean squared per-channel deviation from pixel intensity,
// normalized.
func (e *Extractor) ExtendedFeatures(buf *imgio.Buffer, region Region) Vector {
	base := e.RegionFeatures(buf, region)
	v := make(Vector, ExtendedVectorLen)
	region = region.Clip(buf.Width, buf.Height)
	n := region.Area()
	if n == 0 {
		return v
	}

	avgR, avgG, avgB := base[IdxAvgR], base[IdxAvgG], base[IdxAvgB]
	h, s, val := rgbToHSV(avgR, avgG, avgB)

	var texture float64
	for y := region.Y; y < region.Y+region.Height; y++ {
		for x := region.X; x < region.X+region.Width; x++ {
			r, g, b, _ := buf.At(x, y)
			fr, fg, fb := float64(r), float64(g), float64(b)
			intensity := (fr + fg + fb) / 3
			dr, dg, db := fr-intensity, fg-intensity, fb-intensity
			texture += dr*dr + dg*dg + db*db
		}
	}
	texture /= float64(n) * 255 * 255

	v[ExtIdxAvgR] = avgR
	v[ExtIdxAvgG] = avgG
	v[ExtIdxAvgB] = avgB
	v[ExtIdxHue] = h
	v[ExtIdxSaturation] = s
	v[ExtIdxValue] = val
	v[ExtIdxLuminance] = 0.299*avgR + 0.587*avgG + 0.114*avgB
	v[ExtIdxNDVI] = (avgG - avgR) / (avgG + avgR + epsilon)
	v[ExtIdxTexture] = texture
	v[ExtIdxContrast] = base[IdxContrast]
	return v
}

// edgeStrength returns the mean absolute finite-difference gradient of the
// per-pixel brightness values, on the 0-255 scale. The brightness slice is
// row-major with the given region dimensions.
func edgeStrength(brightness []float64, width, height int) float64 {
	var sum float64
	count := 0

	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			i := y*width + x
			if x+1 < width {
				sum += math.Abs(brightness[i+1] - brightness[i])
				count++
			}
			if y+1 < height {
				sum += math.Abs(brightness[i+width] - brightness[i])
				count++
			}
		}
	}

	if count == 0 {
		return 0
	}
	return sum / float64(count)
}

// rgbToHSV converts 0-255 RGB components to HSV with all components in [0,1].
func rgbToHSV(r, g, b float64) (h, s, v float64) {
	r /= 255
	g /= 255
	b /= 255

	max := math.Max(r, math.Max(g, b))
	min := math.Min(r, math.Min(g, b))
	delta := max - min

	v = max
	if max > 0 {
		s = delta / max
	}

	if delta > 0 {
		switch max {
		case r:
			h = math.Mod((g-b)/delta, 6)
		case g:
			h = (b-r)/delta + 2
		default:
			h = (r-g)/delta + 4
		}
		h /= 6
		if h < 0 {
			h++
		}
	}
	return h, s, v
}
