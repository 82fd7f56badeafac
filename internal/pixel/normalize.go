// Package pixel converts decoded raster buffers into the canonical 8-bit RGBA layout
// used by every later stage of the map pipeline.
package pixel

import (
	"encoding/binary"
	"errors"
	"fmt"
	"image"
	"math"
)

// SampleFormat describes how a single channel sample is stored in a Raw buffer.
type SampleFormat int

const (
	U8 SampleFormat = iota
	S8
	U16
	S16
	S32
	F32
	F64
	// U32 and F16 exist in decoders but have no conversion rule; they pass through.
	U32
	F16
)

var (
	// ErrShortBuffer is returned when Pix holds fewer bytes than the geometry requires.
	ErrShortBuffer = errors.New("pixel buffer too short")
	// ErrChannels is returned for channel counts outside 1..4.
	ErrChannels = errors.New("unsupported channel count")
)

func (f SampleFormat) String() string {
	switch f {
	case U8:
		return "u8"
	case S8:
		return "s8"
	case U16:
		return "u16"
	case S16:
		return "s16"
	case S32:
		return "s32"
	case F32:
		return "f32"
	case F64:
		return "f64"
	case U32:
		return "u32"
	case F16:
		return "f16"
	default:
		return fmt.Sprintf("format(%d)", int(f))
	}
}

// Size returns the number of bytes occupied by one sample.
func (f SampleFormat) Size() int {
	switch f {
	case U8, S8:
		return 1
	case U16, S16, F16:
		return 2
	case S32, U32, F32:
		return 4
	case F64:
		return 8
	default:
		return 1
	}
}

// Supported reports whether f has a conversion rule. Unsupported formats are not
// rejected: their bytes are used as 8-bit samples unchanged.
func (f SampleFormat) Supported() bool {
	return f >= U8 && f <= F64
}

// Raw is a decoded pixel buffer as handed over by an image decoder.
// Samples are interleaved per pixel; multi-byte samples use Order
// (little endian when nil).
type Raw struct {
	Pix      []byte
	Width    int
	Height   int
	Channels int
	Format   SampleFormat
	Order    binary.ByteOrder
}

// Normalize converts raw into an 8-bit RGBA image with straight alpha.
//
// One channel is replicated into RGB, two channels are read as gray+alpha, three
// channels receive an opaque alpha and four channels are kept as they are.
func Normalize(raw Raw) (*image.NRGBA, error) {
	if raw.Width <= 0 || raw.Height <= 0 {
		return image.NewNRGBA(image.Rect(0, 0, max(raw.Width, 0), max(raw.Height, 0))), nil
	}
	if raw.Channels < 1 || raw.Channels > 4 {
		return nil, fmt.Errorf("%w: %d", ErrChannels, raw.Channels)
	}

	sampleSize := raw.Format.Size()
	if !raw.Format.Supported() {
		sampleSize = 1
	}
	need := raw.Width * raw.Height * raw.Channels * sampleSize
	if len(raw.Pix) < need {
		return nil, fmt.Errorf("%w: have %d bytes, need %d", ErrShortBuffer, len(raw.Pix), need)
	}

	order := raw.Order
	if order == nil {
		order = binary.LittleEndian
	}

	dst := image.NewNRGBA(image.Rect(0, 0, raw.Width, raw.Height))
	var px [4]uint8
	for y := 0; y < raw.Height; y++ {
		for x := 0; x < raw.Width; x++ {
			base := (y*raw.Width + x) * raw.Channels
			for c := 0; c < raw.Channels; c++ {
				px[c] = sample(raw.Pix, (base+c)*sampleSize, raw.Format, order)
			}

			i := dst.PixOffset(x, y)
			switch raw.Channels {
			case 1:
				dst.Pix[i], dst.Pix[i+1], dst.Pix[i+2], dst.Pix[i+3] = px[0], px[0], px[0], 255
			case 2:
				dst.Pix[i], dst.Pix[i+1], dst.Pix[i+2], dst.Pix[i+3] = px[0], px[0], px[0], px[1]
			case 3:
				dst.Pix[i], dst.Pix[i+1], dst.Pix[i+2], dst.Pix[i+3] = px[0], px[1], px[2], 255
			case 4:
				copy(dst.Pix[i:i+4], px[:])
			}
		}
	}
	return dst, nil
}

// sample reads one sample at byte offset off and maps it to 8 bits.
func sample(pix []byte, off int, f SampleFormat, order binary.ByteOrder) uint8 {
	switch f {
	case U8:
		return pix[off]
	case S8:
		return uint8(int(int8(pix[off])) + 128)
	case U16:
		return saturate(float64(order.Uint16(pix[off:])) / 255)
	case S16:
		return saturate(float64(int16(order.Uint16(pix[off:])))/255 + 128)
	case S32:
		return saturate(float64(int32(order.Uint32(pix[off:])))/(255*255) + 128)
	case F32:
		return saturate(float64(math.Float32frombits(order.Uint32(pix[off:]))) * 255)
	case F64:
		return saturate(math.Float64frombits(order.Uint64(pix[off:])) * 255)
	default:
		return pix[off]
	}
}

// saturate rounds v to the nearest integer and clamps it to the uint8 range.
func saturate(v float64) uint8 {
	if math.IsNaN(v) || v <= 0 {
		return 0
	}
	if v >= 255 {
		return 255
	}
	return uint8(math.Round(v))
}

// FromImage builds a Raw buffer describing img, keeping 16-bit precision for the
// 16-bit standard library image types.
func FromImage(img image.Image) Raw {
	b := img.Bounds()
	w, h := b.Dx(), b.Dy()
	switch src := img.(type) {
	case *image.Gray:
		pix := make([]byte, 0, w*h)
		for y := b.Min.Y; y < b.Max.Y; y++ {
			i := src.PixOffset(b.Min.X, y)
			pix = append(pix, src.Pix[i:i+w]...)
		}
		return Raw{Pix: pix, Width: w, Height: h, Channels: 1, Format: U8}
	case *image.Gray16:
		pix := make([]byte, 0, w*h*2)
		for y := b.Min.Y; y < b.Max.Y; y++ {
			i := src.PixOffset(b.Min.X, y)
			pix = append(pix, src.Pix[i:i+w*2]...)
		}
		return Raw{Pix: pix, Width: w, Height: h, Channels: 1, Format: U16, Order: binary.BigEndian}
	case *image.NRGBA:
		pix := make([]byte, 0, w*h*4)
		for y := b.Min.Y; y < b.Max.Y; y++ {
			i := src.PixOffset(b.Min.X, y)
			pix = append(pix, src.Pix[i:i+w*4]...)
		}
		return Raw{Pix: pix, Width: w, Height: h, Channels: 4, Format: U8}
	case *image.NRGBA64:
		pix := make([]byte, 0, w*h*8)
		for y := b.Min.Y; y < b.Max.Y; y++ {
			i := src.PixOffset(b.Min.X, y)
			pix = append(pix, src.Pix[i:i+w*8]...)
		}
		return Raw{Pix: pix, Width: w, Height: h, Channels: 4, Format: U16, Order: binary.BigEndian}
	}

	pix := make([]byte, 0, w*h*4)
	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			c := colorNRGBA(img, x, y)
			pix = append(pix, c[0], c[1], c[2], c[3])
		}
	}
	return Raw{Pix: pix, Width: w, Height: h, Channels: 4, Format: U8}
}

func colorNRGBA(img image.Image, x, y int) [4]uint8 {
	r, g, b, a := img.At(x, y).RGBA()
	if a == 0 {
		return [4]uint8{}
	}
	// Un-premultiply.
	r = r * 0xffff / a
	g = g * 0xffff / a
	b = b * 0xffff / a
	return [4]uint8{uint8(r >> 8), uint8(g >> 8), uint8(b >> 8), uint8(a >> 8)}
}
