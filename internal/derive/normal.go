package derive

import (
	"image"

	"github.com/MeKo-Tech/spritemaps/internal/field"
	"github.com/MeKo-Tech/spritemaps/internal/mask"
)

// BevelField builds the bevel distance field of h. Border pixels only count as
// edges when the view is not tiled.
func BevelField(h Height, p NormalParams) *field.Scalar {
	m := mask.OpacityMask(h.Image, h.Tiled())
	return mask.DistanceField(m, mask.Falloff{Distance: p.BevelDistance, Soft: p.BevelSoft})
}

// GradientNormal blurs height with a 2*blur+1 kernel, takes its gradient scaled by
// depth/1000, and crops the result to center.
func GradientNormal(height *field.Scalar, opacity *image.NRGBA, center image.Rectangle, depth float64, blur int, flip field.Flip) *field.Normals {
	n := field.Gradient(field.GaussianBlur(height, blur), opacity, depth, flip)
	return n.Crop(center)
}

// NormalField combines the emboss normals of the height with the bevel normals of
// the distance field into unit vectors covering the center region.
func NormalField(h Height, distance *field.Scalar, p NormalParams) *field.Normals {
	emboss := GradientNormal(h.Float, h.Image, h.Center, float64(p.Depth), p.Blur, p.Invert)
	bisel := GradientNormal(distance, h.Image, h.Center, float64(p.BevelDepth)*float64(p.BevelDistance), p.BevelBlur, p.Invert)
	return field.Combine(emboss, bisel)
}

// Normal returns the packed RGB normal map.
func Normal(h Height, distance *field.Scalar, p NormalParams) *image.NRGBA {
	return NormalField(h, distance, p).Pack()
}
