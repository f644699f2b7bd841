// Package imgio handles raw pixel buffers and image file I/O for the
// classification engine. The engine itself works only on Buffer values;
// decoding source files and re-encoding overlays is caller territory and
// lives here so the CLI and library users share one codec path.
package imgio

import (
	"bytes"
	"fmt"
	"image"
	"io"
	"os"
	"strings"

	"github.com/chai2010/webp"
	"github.com/disintegration/imaging"
	_ "golang.org/x/image/webp"
)

// Buffer is a dense RGBA pixel buffer, row-major, four bytes per pixel.
// It is the engine's only image representation: the caller owns it for its
// lifetime and the engine never mutates it.
type Buffer struct {
	Width  int
	Height int
	Pix    []byte
}

// NewBuffer allocates a zeroed buffer of the given dimensions.
func NewBuffer(width, height int) *Buffer {
	return &Buffer{
		Width:  width,
		Height: height,
		Pix:    make([]byte, width*height*4),
	}
}

// InvalidInputError reports a malformed pixel buffer.
type InvalidInputError struct {
	Reason string
}

func (e *InvalidInputError) Error() string {
	return fmt.Sprintf("invalid image buffer: %s", e.Reason)
}

// Validate checks that the buffer dimensions are positive and that the pixel
// slice has exactly width*height*4 bytes. Rejecting short buffers up front is
// cheaper than out-of-bounds reads halfway through a classification pass.
func (b *Buffer) Validate() error {
	if b == nil {
		return &InvalidInputError{Reason: "nil buffer"}
	}
	if b.Width <= 0 || b.Height <= 0 {
		return &InvalidInputError{Reason: fmt.Sprintf("non-positive dimensions %dx%d", b.Width, b.Height)}
	}
	if want := b.Width * b.Height * 4; len(b.Pix) != want {
		return &InvalidInputError{Reason: fmt.Sprintf("pixel data length %d, expected %d", len(b.Pix), want)}
	}
	return nil
}

// At returns the RGBA components of the pixel at (x, y). Bounds are the
// caller's responsibility.
func (b *Buffer) At(x, y int) (r, g, bl, a uint8) {
	i := (y*b.Width + x) * 4
	return b.Pix[i], b.Pix[i+1], b.Pix[i+2], b.Pix[i+3]
}

// Set writes the RGBA components of the pixel at (x, y).
func (b *Buffer) Set(x, y int, r, g, bl, a uint8) {
	i := (y*b.Width + x) * 4
	b.Pix[i] = r
	b.Pix[i+1] = g
	b.Pix[i+2] = bl
	b.Pix[i+3] = a
}

// FromImage converts any decoded image into a Buffer.
func FromImage(img image.Image) *Buffer {
	nrgba := imaging.Clone(img)
	bounds := nrgba.Bounds()
	w, h := bounds.Dx(), bounds.Dy()

	buf := &Buffer{Width: w, Height: h, Pix: make([]byte, w*h*4)}
	if nrgba.Stride == w*4 {
		copy(buf.Pix, nrgba.Pix)
		return buf
	}
	for y := 0; y < h; y++ {
		copy(buf.Pix[y*w*4:(y+1)*w*4], nrgba.Pix[y*nrgba.Stride:y*nrgba.Stride+w*4])
	}
	return buf
}

// ToImage wraps a Buffer as an *image.NRGBA sharing the same pixel storage.
func ToImage(b *Buffer) *image.NRGBA {
	return &image.NRGBA{
		Pix:    b.Pix,
		Stride: b.Width * 4,
		Rect:   image.Rect(0, 0, b.Width, b.Height),
	}
}

// Load loads an image from a file path with WebP support.
func Load(path string) (image.Image, error) {
	// Try imaging.Open (registered decoders)
	if img, err := imaging.Open(path); err == nil {
		return img, nil
	}

	// Fallback: explicit WebP decode
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	low := strings.ToLower(path)
	if strings.HasSuffix(low, ".webp") || strings.Contains(low, ".webp") {
		if img, err := webp.Decode(f); err == nil {
			return img, nil
		}
		if _, err := f.Seek(0, 0); err == nil {
			if img, _, err := image.Decode(f); err == nil {
				return img, nil
			}
		}
	} else {
		if _, err := f.Seek(0, 0); err == nil {
			if img, _, err := image.Decode(f); err == nil {
				return img, nil
			}
		}
	}
	return nil, fmt.Errorf("image: unknown format for %s", path)
}

// LoadFromReader decodes an image from an io.Reader with WebP support.
func LoadFromReader(reader io.Reader) (image.Image, error) {
	data, err := io.ReadAll(reader)
	if err != nil {
		return nil, fmt.Errorf("failed to read image data: %w", err)
	}

	if img, _, err := image.Decode(bytes.NewReader(data)); err == nil {
		return img, nil
	}
	if img, err := webp.Decode(bytes.NewReader(data)); err == nil {
		return img, nil
	}
	return nil, fmt.Errorf("image: unknown or unsupported format")
}

// LoadBuffer loads an image file directly into a Buffer.
func LoadBuffer(path string) (*Buffer, error) {
	img, err := Load(path)
	if err != nil {
		return nil, err
	}
	return FromImage(img), nil
}

// Save saves an image to a file with the specified format and quality.
func Save(img image.Image, path, format string, quality int, lossless bool) error {
	switch strings.ToLower(format) {
	case "webp":
		f, err := os.Create(path)
		if err != nil {
			return err
		}
		defer f.Close()
		opts := &webp.Options{Lossless: lossless, Quality: float32(quality)}
		return webp.Encode(f, img, opts)
	case "png":
		return imaging.Save(img, path)
	default: // jpg/jpeg
		return imaging.Save(img, path, imaging.JPEGQuality(quality))
	}
}

// Downscale resizes an image so its long side is at most maxDim pixels,
// preserving aspect ratio. A maxDim of 0 returns the image unchanged. Plot
// photographs straight off a camera are often far larger than the region
// grid needs; shrinking first keeps classification time proportionate.
func Downscale(img image.Image, maxDim int) image.Image {
	if maxDim <= 0 {
		return img
	}
	b := img.Bounds()
	w, h := b.Dx(), b.Dy()
	if w <= maxDim && h <= maxDim {
		return img
	}
	if w >= h {
		return imaging.Resize(img, maxDim, 0, imaging.Lanczos)
	}
	return imaging.Resize(img, 0, maxDim, imaging.Lanczos)
}
