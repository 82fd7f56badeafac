package derive

import (
	"image"

	"github.com/MeKo-Tech/spritemaps/internal/field"
	"github.com/MeKo-Tech/spritemaps/internal/mask"
	"github.com/MeKo-Tech/spritemaps/internal/tiling"
)

// Height is the active height source with its derived views. In tileable mode
// Image is the whole 3x3 canvas and Center the source cell inside it; otherwise
// Center covers all of Image.
type Height struct {
	Image  *image.NRGBA
	Center image.Rectangle
	Gray   *image.Gray
	Float  *field.Scalar
}

// SelectHeight picks the tiled canvas when tileable is set and the plain image
// otherwise, and derives the grayscale views from it.
func SelectHeight(canvas *tiling.Canvas, img *image.NRGBA, tileable bool) Height {
	if tileable && canvas != nil {
		return NewHeight(canvas.Image(), canvas.CenterRect())
	}
	return NewHeight(img, image.Rect(0, 0, img.Bounds().Dx(), img.Bounds().Dy()))
}

// NewHeight derives the 8-bit and float grayscale views of img.
func NewHeight(img *image.NRGBA, center image.Rectangle) Height {
	gray := mask.Luma(img)
	return Height{
		Image:  img,
		Center: center,
		Gray:   gray,
		Float:  field.FromGray(gray),
	}
}

// Tiled reports whether the view spans more than its center region.
func (h Height) Tiled() bool {
	return h.Center != h.Gray.Bounds()
}
