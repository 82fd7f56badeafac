package sample

import (
	"image"
	"math"

	"github.com/paulmach/orb"
	"golang.org/x/image/vector"
)

// fillPolygon rasterizes poly into dst with anti-aliased coverage. Holes are
// re-oriented against the outer ring so they cut out of the fill.
func fillPolygon(dst *image.Alpha, poly orb.Polygon) {
	if len(poly) == 0 {
		return
	}

	bounds := dst.Bounds()
	ras := vector.NewRasterizer(bounds.Dx(), bounds.Dy())
	outer := poly[0].Orientation()

	for i, ring := range poly {
		if len(ring) < 3 {
			continue
		}
		if i > 0 && ring.Orientation() == outer {
			ring = ring.Clone()
			ring.Reverse()
		}
		// MoveTo/LineTo take float32 pixel coordinates.
		for j, pt := range ring {
			if j == 0 {
				ras.MoveTo(float32(pt[0]), float32(pt[1]))
			} else {
				ras.LineTo(float32(pt[0]), float32(pt[1]))
			}
		}
		ras.ClosePath()
	}

	ras.Draw(dst, bounds, image.Opaque, image.Point{})
}

// circle approximates a closed ring around c. radius overrides r per vertex when set.
func circle(c orb.Point, r float64, segments int, radius func(i int) float64) orb.Ring {
	ring := make(orb.Ring, 0, segments+1)
	for i := 0; i < segments; i++ {
		theta := 2 * math.Pi * float64(i) / float64(segments)
		rr := r
		if radius != nil {
			rr = radius(i)
		}
		ring = append(ring, orb.Point{c[0] + rr*math.Cos(theta), c[1] + rr*math.Sin(theta)})
	}
	return append(ring, ring[0])
}
