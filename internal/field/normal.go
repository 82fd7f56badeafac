package field

import (
	"image"
	"math"
)

// Vec3 is a three component normal vector.
type Vec3 struct {
	X, Y, Z float32
}

// Len returns the Euclidean length of v.
func (v Vec3) Len() float32 {
	return float32(math.Sqrt(float64(v.X*v.X + v.Y*v.Y + v.Z*v.Z)))
}

// Flip selects which normal axes are negated.
type Flip struct {
	X bool `mapstructure:"x" yaml:"x"`
	Y bool `mapstructure:"y" yaml:"y"`
	Z bool `mapstructure:"z" yaml:"z"`
}

func sign(neg bool) float32 {
	if neg {
		return -1
	}
	return 1
}

// Normals is a per-pixel vector field.
type Normals struct {
	Pix []Vec3
	W   int
	H   int
}

// NewNormals allocates a w x h field of zero vectors.
func NewNormals(w, h int) *Normals {
	return &Normals{W: w, H: h, Pix: make([]Vec3, w*h)}
}

// At returns the vector at (x, y).
func (n *Normals) At(x, y int) Vec3 {
	return n.Pix[y*n.W+x]
}

// Crop copies the r region into a new field anchored at the origin.
func (n *Normals) Crop(r image.Rectangle) *Normals {
	r = r.Intersect(image.Rect(0, 0, n.W, n.H))
	out := NewNormals(r.Dx(), r.Dy())
	for y := 0; y < r.Dy(); y++ {
		copy(out.Pix[y*out.W:(y+1)*out.W], n.Pix[(r.Min.Y+y)*n.W+r.Min.X:])
	}
	return out
}

// diff returns the doubled first derivative of f at i over n samples: a central
// difference inside, and a one-sided three point formula on the first and last sample.
func diff(f func(int) float32, i, n int) float32 {
	switch {
	case n < 2:
		return 0
	case n == 2:
		return 2 * (f(1) - f(0))
	case i == 0:
		return -3*f(0) + 4*f(1) - f(2)
	case i == n-1:
		return 3*f(n-1) - 4*f(n-2) + f(n-3)
	default:
		return f(i+1) - f(i-1)
	}
}

// Gradient computes unnormalized normals from height. Pixels whose alpha in opacity
// is zero face straight up. opacity must share the field's extent; nil means opaque.
func Gradient(height *Scalar, opacity *image.NRGBA, depth float64, flip Flip) *Normals {
	out := NewNormals(height.W, height.H)
	scale := float32(depth / 1000)
	sx, sy, sz := sign(flip.X), sign(flip.Y), sign(flip.Z)

	for y := 0; y < height.H; y++ {
		row := height.Pix[y*height.W : (y+1)*height.W]
		for x := 0; x < height.W; x++ {
			if opacity != nil && opacity.Pix[opacity.PixOffset(x, y)+3] == 0 {
				out.Pix[y*out.W+x] = Vec3{Z: 1}
				continue
			}
			dx := diff(func(i int) float32 { return row[i] }, x, height.W)
			dy := diff(func(i int) float32 { return height.Pix[i*height.W+x] }, y, height.H)
			out.Pix[y*out.W+x] = Vec3{
				X: -dx * scale * sx,
				Y: dy * scale * sy,
				Z: sz,
			}
		}
	}
	return out
}

// Combine sums a and b per pixel and renormalizes to unit length. A zero sum
// resolves to a normal facing the viewer.
func Combine(a, b *Normals) *Normals {
	out := NewNormals(a.W, a.H)
	for i := range out.Pix {
		v := Vec3{
			X: a.Pix[i].X + b.Pix[i].X,
			Y: a.Pix[i].Y + b.Pix[i].Y,
			Z: a.Pix[i].Z + b.Pix[i].Z,
		}
		l := v.Len()
		if l == 0 {
			out.Pix[i] = Vec3{Z: 1}
			continue
		}
		out.Pix[i] = Vec3{X: v.X / l, Y: v.Y / l, Z: v.Z / l}
	}
	return out
}

// Pack maps unit vectors into 8-bit RGB with an opaque alpha.
func (n *Normals) Pack() *image.NRGBA {
	img := image.NewNRGBA(image.Rect(0, 0, n.W, n.H))
	for i, v := range n.Pix {
		o := i * 4
		img.Pix[o] = Saturate(float64(v.X*0.5+0.5) * 255)
		img.Pix[o+1] = Saturate(float64(v.Y*0.5+0.5) * 255)
		img.Pix[o+2] = Saturate(float64(v.Z*0.5+0.5) * 255)
		img.Pix[o+3] = 255
	}
	return img
}
