package pixel

import (
	"encoding/binary"
	"image"
	"image/color"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalizeCanonicalIsIdentity(t *testing.T) {
	pix := make([]byte, 3*2*4)
	for i := range pix {
		pix[i] = uint8(i * 7)
	}

	img, err := Normalize(Raw{Pix: pix, Width: 3, Height: 2, Channels: 4, Format: U8})
	require.NoError(t, err)
	assert.Equal(t, image.Rect(0, 0, 3, 2), img.Bounds())
	assert.Equal(t, pix, img.Pix)
}

func TestNormalizeChannelExpansion(t *testing.T) {
	tests := []struct {
		name     string
		channels int
		pix      []byte
		want     color.NRGBA
	}{
		{"gray", 1, []byte{90}, color.NRGBA{R: 90, G: 90, B: 90, A: 255}},
		{"gray alpha", 2, []byte{90, 40}, color.NRGBA{R: 90, G: 90, B: 90, A: 40}},
		{"rgb", 3, []byte{1, 2, 3}, color.NRGBA{R: 1, G: 2, B: 3, A: 255}},
		{"rgba", 4, []byte{1, 2, 3, 4}, color.NRGBA{R: 1, G: 2, B: 3, A: 4}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			img, err := Normalize(Raw{Pix: tt.pix, Width: 1, Height: 1, Channels: tt.channels, Format: U8})
			require.NoError(t, err)
			assert.Equal(t, tt.want, img.NRGBAAt(0, 0))
		})
	}
}

func TestNormalizeSampleFormats(t *testing.T) {
	le := binary.LittleEndian

	u16 := make([]byte, 2)
	le.PutUint16(u16, 255*100)

	s16 := make([]byte, 2)
	s16v := int16(-255 * 20)
	le.PutUint16(s16, uint16(s16v))

	s32 := make([]byte, 4)
	le.PutUint32(s32, uint32(int32(255*255*10)))

	f32 := make([]byte, 4)
	le.PutUint32(f32, math.Float32bits(0.5))

	f64 := make([]byte, 8)
	le.PutUint64(f64, math.Float64bits(2.0))

	tests := []struct {
		name   string
		format SampleFormat
		pix    []byte
		want   uint8
	}{
		{"u8", U8, []byte{77}, 77},
		{"s8 negative", S8, []byte{0x80}, 0},
		{"s8 zero", S8, []byte{0}, 128},
		{"u16", U16, u16, 100},
		{"s16", S16, s16, 108},
		{"s32", S32, s32, 138},
		{"f32", F32, f32, 128},
		{"f64 saturates", F64, f64, 255},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			img, err := Normalize(Raw{Pix: tt.pix, Width: 1, Height: 1, Channels: 1, Format: tt.format})
			require.NoError(t, err)
			assert.Equal(t, tt.want, img.NRGBAAt(0, 0).R)
			assert.Equal(t, uint8(255), img.NRGBAAt(0, 0).A)
		})
	}
}

func TestNormalizeUnsupportedFormatPassesThrough(t *testing.T) {
	assert.False(t, U32.Supported())
	assert.False(t, F16.Supported())

	img, err := Normalize(Raw{Pix: []byte{12, 34, 56}, Width: 1, Height: 1, Channels: 3, Format: F16})
	require.NoError(t, err)
	assert.Equal(t, color.NRGBA{R: 12, G: 34, B: 56, A: 255}, img.NRGBAAt(0, 0))
}

func TestNormalizeRejectsMalformedBuffers(t *testing.T) {
	_, err := Normalize(Raw{Pix: []byte{1, 2}, Width: 2, Height: 2, Channels: 1, Format: U8})
	require.ErrorIs(t, err, ErrShortBuffer)

	_, err = Normalize(Raw{Pix: make([]byte, 20), Width: 1, Height: 1, Channels: 5, Format: U8})
	require.ErrorIs(t, err, ErrChannels)
}

func TestFromImageRoundTrip(t *testing.T) {
	src := image.NewNRGBA(image.Rect(0, 0, 2, 2))
	src.SetNRGBA(0, 0, color.NRGBA{R: 10, G: 20, B: 30, A: 255})
	src.SetNRGBA(1, 1, color.NRGBA{R: 200, G: 100, B: 50, A: 128})

	img, err := Normalize(FromImage(src))
	require.NoError(t, err)
	assert.Equal(t, src.Pix, img.Pix)

	gray := image.NewGray(image.Rect(0, 0, 1, 1))
	gray.SetGray(0, 0, color.Gray{Y: 42})
	img, err = Normalize(FromImage(gray))
	require.NoError(t, err)
	assert.Equal(t, color.NRGBA{R: 42, G: 42, B: 42, A: 255}, img.NRGBAAt(0, 0))

	g16 := image.NewGray16(image.Rect(0, 0, 1, 1))
	g16.SetGray16(0, 0, color.Gray16{Y: 0xffff})
	img, err = Normalize(FromImage(g16))
	require.NoError(t, err)
	assert.Equal(t, uint8(255), img.NRGBAAt(0, 0).R)
}
