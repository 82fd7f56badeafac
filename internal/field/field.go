// Package field holds float32 working buffers for the gradient stages of the map
// pipeline: grayscale height fields, distance fields and normal vector fields.
package field

import (
	"image"
	"math"
)

// Scalar is a single-channel float32 raster stored row by row.
type Scalar struct {
	Pix []float32
	W   int
	H   int
}

// NewScalar allocates a zeroed w x h field.
func NewScalar(w, h int) *Scalar {
	return &Scalar{W: w, H: h, Pix: make([]float32, w*h)}
}

// At returns the value at (x, y).
func (s *Scalar) At(x, y int) float32 {
	return s.Pix[y*s.W+x]
}

// Set stores v at (x, y).
func (s *Scalar) Set(x, y int, v float32) {
	s.Pix[y*s.W+x] = v
}

// Bounds returns the field extent as a rectangle anchored at the origin.
func (s *Scalar) Bounds() image.Rectangle {
	return image.Rect(0, 0, s.W, s.H)
}

// Clone returns a deep copy.
func (s *Scalar) Clone() *Scalar {
	out := NewScalar(s.W, s.H)
	copy(out.Pix, s.Pix)
	return out
}

// Crop copies the r region into a new field anchored at the origin.
func (s *Scalar) Crop(r image.Rectangle) *Scalar {
	r = r.Intersect(s.Bounds())
	out := NewScalar(r.Dx(), r.Dy())
	for y := 0; y < r.Dy(); y++ {
		copy(out.Pix[y*out.W:(y+1)*out.W], s.Pix[(r.Min.Y+y)*s.W+r.Min.X:])
	}
	return out
}

// Map replaces every value v with fn(v).
func (s *Scalar) Map(fn func(float32) float32) {
	for i, v := range s.Pix {
		s.Pix[i] = fn(v)
	}
}

// FromGray scales an 8-bit gray image into [0,1].
func FromGray(g *image.Gray) *Scalar {
	b := g.Bounds()
	out := NewScalar(b.Dx(), b.Dy())
	for y := 0; y < out.H; y++ {
		row := g.Pix[g.PixOffset(b.Min.X, b.Min.Y+y):]
		for x := 0; x < out.W; x++ {
			out.Pix[y*out.W+x] = float32(row[x]) / 255
		}
	}
	return out
}

// ToGray converts a [0,1] field to 8 bits, rounding and saturating.
func (s *Scalar) ToGray() *image.Gray {
	g := image.NewGray(image.Rect(0, 0, s.W, s.H))
	for i, v := range s.Pix {
		g.Pix[i] = Saturate(float64(v) * 255)
	}
	return g
}

// Saturate rounds v and clamps it to the uint8 range.
func Saturate(v float64) uint8 {
	if math.IsNaN(v) || v <= 0 {
		return 0
	}
	if v >= 255 {
		return 255
	}
	return uint8(math.Round(v))
}
