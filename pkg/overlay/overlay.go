// Package overlay renders a classification map as a false-color image for
// human inspection. The label-to-color palette is a configuration artifact:
// downstream UIs render a legend keyed to whichever palette was active, so
// the palette travels with the result rather than being recomputed.
package overlay

import (
	"fmt"
	"image/color"

	"github.com/agrovision/shade-analyzer/pkg/classifier"
	"github.com/agrovision/shade-analyzer/pkg/imgio"
)

// Palette maps labels to overlay colors.
type Palette map[classifier.Label]color.NRGBA

// TwoClass returns the binary palette: light green, shadow blue.
func TwoClass() Palette {
	return Palette{
		classifier.Light:  {R: 0, G: 255, B: 0, A: 255},
		classifier.Shadow: {R: 0, G: 0, B: 255, A: 255},
	}
}

// FourClass returns the soil/mesh palette: soil shadow gray, soil light
// yellow, mesh shadow dark green, mesh light light green.
func FourClass() Palette {
	return Palette{
		classifier.SoilShadow: {R: 128, G: 128, B: 128, A: 255},
		classifier.SoilLight:  {R: 255, G: 255, B: 0, A: 255},
		classifier.MeshShadow: {R: 0, G: 100, B: 0, A: 255},
		classifier.MeshLight:  {R: 144, G: 238, B: 144, A: 255},
	}
}

// ForTaxonomy returns the palette matching a policy's taxonomy.
func ForTaxonomy(t classifier.Taxonomy) Palette {
	if t == classifier.FourClass {
		return FourClass()
	}
	return TwoClass()
}

// LegendEntry pairs a label with its overlay color for UI legends.
type LegendEntry struct {
	Label classifier.Label
	Color color.NRGBA
}

// Legend returns the palette entries in the taxonomy's stable label order.
func (p Palette) Legend(t classifier.Taxonomy) []LegendEntry {
	labels := t.Labels()
	entries := make([]LegendEntry, 0, len(labels))
	for _, l := range labels {
		entries = append(entries, LegendEntry{Label: l, Color: p[l]})
	}
	return entries
}

// Sink receives rendered overlay pixels. The classification math is
// environment-agnostic; sinks absorb the difference between raster targets
// (an in-memory buffer here, a host canvas elsewhere).
type Sink interface {
	Allocate(width, height int)
	SetRGBA(x, y int, c color.NRGBA)
}

// BufferSink renders into an imgio.Buffer.
type BufferSink struct {
	buf *imgio.Buffer
}

// Allocate prepares the backing buffer.
func (s *BufferSink) Allocate(width, height int) {
	s.buf = imgio.NewBuffer(width, height)
}

// SetRGBA writes one pixel.
func (s *BufferSink) SetRGBA(x, y int, c color.NRGBA) {
	s.buf.Set(x, y, c.R, c.G, c.B, c.A)
}

// Buffer returns the rendered buffer.
func (s *BufferSink) Buffer() *imgio.Buffer { return s.buf }

// Renderer renders classification maps through a Sink.
type Renderer struct {
	palette Palette
}

// NewRenderer creates a renderer with the given palette.
func NewRenderer(palette Palette) *Renderer {
	return &Renderer{palette: palette}
}

// Palette returns the renderer's palette.
func (r *Renderer) Palette() Palette { return r.palette }

// RenderTo writes the false-color image for a label map into the sink.
// Every output pixel is exactly the palette color of its label.
func (r *Renderer) RenderTo(labelMap [][]classifier.Label, sink Sink) error {
	height := len(labelMap)
	if height == 0 {
		return fmt.Errorf("empty label map")
	}
	width := len(labelMap[0])

	sink.Allocate(width, height)
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			c, ok := r.palette[labelMap[y][x]]
			if !ok {
				return fmt.Errorf("label %s missing from palette", labelMap[y][x])
			}
			sink.SetRGBA(x, y, c)
		}
	}
	return nil
}

// Render renders a label map into a fresh in-memory buffer.
func (r *Renderer) Render(labelMap [][]classifier.Label) (*imgio.Buffer, error) {
	sink := &BufferSink{}
	if err := r.RenderTo(labelMap, sink); err != nil {
		return nil, err
	}
	return sink.Buffer(), nil
}
