// Package sample generates procedural sprites for trying out the map
// generators without external artwork.
package sample

import (
	"fmt"
	"image"
	"image/color"
	"math"

	"github.com/aquilax/go-perlin"
	"github.com/paulmach/orb"
)

const segments = 96

// Params defines a procedural sprite.
type Params struct {
	Size      int
	Seed      int64
	BaseColor color.NRGBA
	// Wobble scales the silhouette radius variation, up to +-25% at 1.
	Wobble float64
	// Hole cuts a round opening into the sprite.
	Hole bool
}

// DefaultParams returns a medium-sized sprite with a hole.
func DefaultParams() Params {
	return Params{
		Size:      128,
		Seed:      1,
		BaseColor: color.NRGBA{R: 176, G: 132, B: 88, A: 255},
		Wobble:    0.2,
		Hole:      true,
	}
}

// Sprite is a generated color sprite with a matching height image.
type Sprite struct {
	Color  *image.NRGBA
	Height *image.Gray
	Shape  orb.Polygon
}

// Generate creates a blob-shaped sprite with noisy shading and a domed relief.
func Generate(p Params) (*Sprite, error) {
	if p.Size <= 0 {
		return nil, fmt.Errorf("size must be positive")
	}
	if p.Wobble < 0 || p.Wobble > 1 {
		return nil, fmt.Errorf("wobble must be within [0,1]")
	}

	shape := Shape(p)
	coverage := image.NewAlpha(image.Rect(0, 0, p.Size, p.Size))
	fillPolygon(coverage, shape)

	shade := perlin.NewPerlin(2.0, 2.0, 3, p.Seed)
	relief := perlin.NewPerlin(1.5, 2.0, 4, p.Seed+4242)

	size := float64(p.Size)
	c := orb.Point{size / 2, size / 2}
	radius := size * 0.4

	spr := &Sprite{
		Color:  image.NewNRGBA(coverage.Bounds()),
		Height: image.NewGray(coverage.Bounds()),
		Shape:  shape,
	}

	for y := 0; y < p.Size; y++ {
		for x := 0; x < p.Size; x++ {
			a := coverage.AlphaAt(x, y).A
			if a == 0 {
				continue
			}
			u := float64(x) / size * 4
			v := float64(y) / size * 4

			// Shading stays within +-20% of the base color.
			n := clamp(shade.Noise2D(u, v), -1, 1)
			k := 1 + 0.2*n
			spr.Color.SetNRGBA(x, y, color.NRGBA{
				R: scaleChannel(p.BaseColor.R, k),
				G: scaleChannel(p.BaseColor.G, k),
				B: scaleChannel(p.BaseColor.B, k),
				A: a,
			})

			d := math.Hypot(float64(x)+0.5-c[0], float64(y)+0.5-c[1]) / radius
			dome := math.Sqrt(math.Max(0, 1-d*d))
			bump := (clamp(relief.Noise2D(u*2, v*2), -1, 1) + 1) * 0.5
			h := 0.75*dome + 0.25*bump
			spr.Height.SetGray(x, y, color.Gray{Y: uint8(math.Round(clamp(h, 0, 1) * 255))})
		}
	}

	return spr, nil
}

// Shape returns the sprite silhouette in pixel coordinates.
func Shape(p Params) orb.Polygon {
	size := float64(p.Size)
	c := orb.Point{size / 2, size / 2}
	radius := size * 0.4
	noise := perlin.NewPerlin(2.0, 2.0, 2, p.Seed)

	outer := circle(c, radius, segments, func(i int) float64 {
		theta := 2 * math.Pi * float64(i) / segments
		// Sampling on a circle keeps the outline closed without a seam.
		n := clamp(noise.Noise2D(math.Cos(theta)+1.7, math.Sin(theta)+1.7), -1, 1)
		return radius * (1 + 0.25*p.Wobble*n)
	})

	poly := orb.Polygon{outer}
	if p.Hole {
		hc := orb.Point{c[0] + size*0.12, c[1] - size*0.1}
		poly = append(poly, circle(hc, size*0.07, segments/4, nil))
	}
	return poly
}

func scaleChannel(v uint8, k float64) uint8 {
	return uint8(math.Round(clamp(float64(v)*k, 0, 255)))
}

func clamp(x, lo, hi float64) float64 {
	if x < lo {
		return lo
	}
	if x > hi {
		return hi
	}
	return x
}
