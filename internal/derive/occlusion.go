package derive

import (
	"image"

	"github.com/MeKo-Tech/spritemaps/internal/field"
	"github.com/MeKo-Tech/spritemaps/internal/mask"
)

// Occlusion computes the ambient occlusion map of h. In distance mode the height
// is thresholded and replaced by its shaped distance field before the levels stage.
func Occlusion(h Height, p OcclusionParams) *image.Gray {
	g := h.Gray
	if p.Invert {
		g = mask.Invert(g)
	}

	var s *field.Scalar
	if p.DistanceMode {
		bin := mask.Threshold(g, clampByte(p.Thresh), false)
		// Without a falloff distance the whole sprite is unoccluded.
		s = mask.DistanceField(bin, mask.Falloff{Distance: p.Distance, Soft: p.Soft, Flat: 1})
		s = field.FromGray(s.ToGray())
	} else {
		s = field.FromGray(g)
	}

	out := levels(s, p.Thresh, p.Contrast, p.Bright)
	out = mask.GaussianBlur(out, p.Blur)
	return mask.Crop(out, h.Center)
}
