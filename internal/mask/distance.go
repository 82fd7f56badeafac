package mask

import (
	"image"
	"math"

	"github.com/MeKo-Tech/spritemaps/internal/field"
)

// EuclideanDistanceTransform returns, for every pixel of the binary mask g, the
// Euclidean distance in pixels to the nearest zero pixel. Zero pixels map to 0.
// A mask without any zero pixel has no boundary; every pixel then receives the
// image diagonal, which saturates any later normalization.
//
// Uses the Felzenszwalb & Huttenlocher separable squared distance transform:
// one 1D lower-envelope pass per row, then one per column.
func EuclideanDistanceTransform(g *image.Gray) *field.Scalar {
	b := g.Bounds()
	width, height := b.Dx(), b.Dy()
	out := field.NewScalar(width, height)
	if width == 0 || height == 0 {
		return out
	}

	infinity := float64(width*width + height*height)
	sq := make([]float64, width*height)
	hasBoundary := false
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			if g.Pix[g.PixOffset(b.Min.X+x, b.Min.Y+y)] == 0 {
				hasBoundary = true
				continue
			}
			sq[y*width+x] = infinity
		}
	}

	if !hasBoundary {
		diag := float32(math.Sqrt(infinity))
		out.Map(func(float32) float32 { return diag })
		return out
	}

	// Rows.
	rowInput := make([]float64, width)
	rowOutput := make([]float64, width)
	for y := 0; y < height; y++ {
		copy(rowInput, sq[y*width:(y+1)*width])
		distanceTransform1D(rowInput, rowOutput)
		copy(sq[y*width:(y+1)*width], rowOutput)
	}

	// Columns.
	colInput := make([]float64, height)
	colOutput := make([]float64, height)
	for x := 0; x < width; x++ {
		for y := 0; y < height; y++ {
			colInput[y] = sq[y*width+x]
		}
		distanceTransform1D(colInput, colOutput)
		for y := 0; y < height; y++ {
			sq[y*width+x] = colOutput[y]
		}
	}

	for i, d := range sq {
		out.Pix[i] = float32(math.Sqrt(d))
	}
	return out
}

// distanceTransform1D computes the squared distance transform along one dimension
// using the parabola lower envelope method.
func distanceTransform1D(input []float64, output []float64) {
	n := len(input)

	// v[i]: positions of parabola vertices in lower envelope
	v := make([]int, n)
	// z[i]: boundary where parabola v[i] stops being minimal
	z := make([]float64, n+1)

	k := 0
	v[0] = 0
	z[0] = math.Inf(-1)
	z[1] = math.Inf(1)

	for q := 1; q < n; q++ {
		var s float64
		for k >= 0 {
			// Intersection of (s - v[k])^2 + input[v[k]] and (s - q)^2 + input[q].
			s = ((input[q] + float64(q*q)) - (input[v[k]] + float64(v[k]*v[k]))) /
				(2.0 * float64(q-v[k]))
			if s <= z[k] {
				k--
			} else {
				break
			}
		}
		k++
		v[k] = q
		z[k] = s
		z[k+1] = math.Inf(1)
	}

	k = 0
	for q := 0; q < n; q++ {
		for z[k+1] < float64(q) {
			k++
		}
		dx := float64(q - v[k])
		output[q] = dx*dx + input[v[k]]
	}
}

// Falloff shapes a normalized distance field.
type Falloff struct {
	// Distance is the pixel distance at which the field saturates at 1. With 0 the
	// whole field is set to Flat.
	Distance int
	// Flat is the value of every pixel when Distance is 0.
	Flat float32
	// Soft remaps the linear ramp onto a quarter circle for a rounded profile.
	Soft bool
}

// Apply rescales a field of distances divided by 255 in place: values are scaled
// by 255/Distance, clamped to 1, and optionally eased with sqrt(1-(d-1)^2).
func (f Falloff) Apply(s *field.Scalar) {
	if f.Distance <= 0 {
		s.Map(func(float32) float32 { return f.Flat })
		return
	}
	scale := float32(255) / float32(f.Distance)
	s.Map(func(d float32) float32 {
		d *= scale
		if d > 1 {
			d = 1
		}
		if f.Soft {
			d = float32(math.Sqrt(float64(1 - (d-1)*(d-1))))
		}
		return d
	})
}

// DistanceField builds the normalized, falloff-shaped distance field of a binary mask.
func DistanceField(g *image.Gray, falloff Falloff) *field.Scalar {
	d := EuclideanDistanceTransform(g)
	d.Map(func(v float32) float32 { return v / 255 })
	falloff.Apply(d)
	return d
}
