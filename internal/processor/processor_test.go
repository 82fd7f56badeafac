package processor

import (
	"image"
	"image/color"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MeKo-Tech/spritemaps/internal/derive"
	"github.com/MeKo-Tech/spritemaps/internal/mask"
	"github.com/MeKo-Tech/spritemaps/internal/pixel"
	"github.com/MeKo-Tech/spritemaps/internal/tiling"
)

func solidRaw(w, h int, c color.NRGBA) pixel.Raw {
	pix := make([]byte, 0, w*h*4)
	for i := 0; i < w*h; i++ {
		pix = append(pix, c.R, c.G, c.B, c.A)
	}
	return pixel.Raw{Pix: pix, Width: w, Height: h, Channels: 4, Format: pixel.U8}
}

// spriteRaw is a w x h sprite with a transparent margin and a diagonal shading.
func spriteRaw(w, h int) pixel.Raw {
	pix := make([]byte, 0, w*h*4)
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			if x == 0 || y == 0 {
				pix = append(pix, 0, 0, 0, 0)
				continue
			}
			v := uint8((x*255/w + y*255/h) / 2)
			pix = append(pix, v, v, v, 255)
		}
	}
	return pixel.Raw{Pix: pix, Width: w, Height: h, Channels: 4, Format: pixel.U8}
}

func loaded(t *testing.T, raw pixel.Raw, opts ...Option) *Processor {
	t.Helper()
	p := New(opts...)
	require.NoError(t, p.LoadImage(raw))
	return p
}

func cloneNRGBA(img *image.NRGBA) []uint8 {
	return append([]uint8(nil), img.Pix...)
}

func cloneGray(img *image.Gray) []uint8 {
	return append([]uint8(nil), img.Pix...)
}

func TestLoadImageGeneratesAllMaps(t *testing.T) {
	p := loaded(t, solidRaw(2, 2, color.NRGBA{R: 90, G: 90, B: 90, A: 255}))

	w, h := p.Size()
	assert.Equal(t, 2, w)
	assert.Equal(t, 2, h)
	require.NotNil(t, p.Normal())
	for y := 0; y < 2; y++ {
		for x := 0; x < 2; x++ {
			assert.Equal(t, color.NRGBA{R: 128, G: 128, B: 255, A: 255}, p.Normal().NRGBAAt(x, y))
		}
	}
	for _, kind := range Maps {
		out := p.Output(kind)
		require.NotNil(t, out, kind.String())
		assert.Equal(t, image.Rect(0, 0, 2, 2), out.Bounds(), kind.String())
	}
}

func TestGenerateBeforeLoad(t *testing.T) {
	p := New()
	require.ErrorIs(t, p.GenerateNormal(), ErrNoImage)
	require.ErrorIs(t, p.GenerateParallax(), ErrNoImage)
	require.ErrorIs(t, p.GenerateSpecular(), ErrNoImage)
	require.ErrorIs(t, p.GenerateOcclusion(), ErrNoImage)
	require.ErrorIs(t, p.GenerateAll(), ErrNoImage)

	// Setters only record the value until an image arrives.
	p.SetNormalDepth(300)
	assert.Equal(t, 300, p.Config().Normal.Depth)
	assert.Nil(t, p.Normal())
	assert.Nil(t, p.Output(MapOcclusion))
	assert.Nil(t, p.HeightPreview())
	assert.Nil(t, p.DistancePreview())

	_, err := p.Neighbor(1, 1)
	require.ErrorIs(t, err, ErrNoImage)
	require.ErrorIs(t, p.LoadHeightOverride(solidRaw(1, 1, color.NRGBA{A: 255})), ErrNoImage)
}

func TestLoadImageRejectsMalformedRaw(t *testing.T) {
	p := New()
	err := p.LoadImage(pixel.Raw{Pix: []byte{1}, Width: 4, Height: 4, Channels: 4, Format: pixel.U8})
	require.ErrorIs(t, err, pixel.ErrShortBuffer)
	assert.False(t, p.Loaded())
}

func TestEventsOnLoad(t *testing.T) {
	p := New()
	var events []Event
	unsubscribe := p.Subscribe(func(ev Event) { events = append(events, ev) })

	require.NoError(t, p.LoadImage(spriteRaw(6, 6)))
	assert.Equal(t, []Event{
		{Kind: EventProcessed, Map: MapNormal},
		{Kind: EventIdle, Map: MapNormal},
		{Kind: EventProcessed, Map: MapParallax},
		{Kind: EventProcessed, Map: MapSpecular},
		{Kind: EventProcessed, Map: MapOcclusion},
	}, events)

	unsubscribe()
	events = nil
	p.SetSpecularBlur(2)
	assert.Empty(t, events)
}

func TestNormalGenerationRejectsReentry(t *testing.T) {
	p := loaded(t, spriteRaw(8, 8))

	var (
		nested      error
		stateInside State
		calls       int
	)
	p.Subscribe(func(ev Event) {
		if ev.Kind != EventProcessed || ev.Map != MapNormal {
			return
		}
		calls++
		stateInside = p.State()
		nested = p.GenerateNormal()
		// A setter reached from a listener must not recurse into generation either.
		p.SetNormalBlur(1)
	})

	require.NoError(t, p.GenerateNormal())
	assert.Equal(t, 1, calls)
	assert.Equal(t, StateComputing, stateInside)
	require.ErrorIs(t, nested, ErrBusy)
	assert.Equal(t, StateIdle, p.State())
	assert.Equal(t, 1, p.Config().Normal.Blur)
}

func TestSettingCurrentValueIsIdempotent(t *testing.T) {
	p := loaded(t, spriteRaw(10, 7))

	normal := cloneNRGBA(p.Normal())
	parallax := cloneGray(p.Parallax())
	specular := cloneGray(p.Specular())
	occlusion := cloneGray(p.Occlusion())

	cfg := p.Config()
	p.SetNormalDepth(cfg.Normal.Depth)
	p.SetBevelDistance(cfg.Normal.BevelDistance)
	p.SetParallaxFocus(cfg.Parallax.Focus)
	p.SetSpecularThresh(cfg.Specular.Thresh)
	p.SetOcclusionDistance(cfg.Occlusion.Distance)
	p.SetTileable(cfg.Tileable)

	assert.Equal(t, normal, p.Normal().Pix)
	assert.Equal(t, parallax, p.Parallax().Pix)
	assert.Equal(t, specular, p.Specular().Pix)
	assert.Equal(t, occlusion, p.Occlusion().Pix)
}

func TestSettersRecomputeTheirMap(t *testing.T) {
	p := loaded(t, spriteRaw(10, 10))

	var processed []MapKind
	p.Subscribe(func(ev Event) {
		if ev.Kind == EventProcessed {
			processed = append(processed, ev.Map)
		}
	})

	before := cloneGray(p.Specular())
	p.SetSpecularInvert(true)
	assert.NotEqual(t, before, p.Specular().Pix)
	assert.Equal(t, []MapKind{MapSpecular}, processed)

	processed = nil
	before = cloneGray(p.Parallax())
	p.SetParallaxType(derive.ParallaxHeightMap)
	assert.NotEqual(t, before, p.Parallax().Pix)
	assert.Equal(t, []MapKind{MapParallax}, processed)

	processed = nil
	normal := cloneNRGBA(p.Normal())
	p.SetNormalInvert(true, false, false)
	assert.NotEqual(t, normal, p.Normal().Pix)
	assert.Equal(t, []MapKind{MapNormal}, processed)

	processed = nil
	p.SetTileable(true)
	assert.Equal(t, Maps, processed)
}

func TestTileableSwitchesHeightExtent(t *testing.T) {
	p := loaded(t, spriteRaw(5, 4))
	assert.Equal(t, image.Rect(0, 0, 5, 4), p.HeightPreview().Bounds())

	d := p.DistancePreview()
	for x := 0; x < 5; x++ {
		assert.Zero(t, d.GrayAt(x, 0).Y)
		assert.Zero(t, d.GrayAt(x, 3).Y)
	}

	p.SetTileable(true)
	assert.Equal(t, image.Rect(0, 0, 15, 12), p.HeightPreview().Bounds())
	assert.Equal(t, image.Rect(0, 0, 15, 12), p.DistancePreview().Bounds())
	assert.Equal(t, image.Rect(0, 0, 5, 4), p.Normal().Bounds())
	assert.Equal(t, image.Rect(0, 0, 5, 4), p.Parallax().Bounds())
}

func TestNeighborEditing(t *testing.T) {
	p := loaded(t, solidRaw(4, 4, color.NRGBA{R: 100, G: 100, B: 100, A: 255}))
	p.SetTileable(true)

	err := p.SetNeighbor(0, 1, image.NewNRGBA(image.Rect(0, 0, 3, 4)))
	require.ErrorIs(t, err, tiling.ErrDimensionMismatch)

	normal := cloneNRGBA(p.Normal())
	bright := image.NewNRGBA(image.Rect(0, 0, 4, 4))
	for i := range bright.Pix {
		bright.Pix[i] = 255
	}
	require.NoError(t, p.SetNeighbor(0, 1, bright))

	cell, err := p.Neighbor(0, 1)
	require.NoError(t, err)
	assert.Equal(t, bright.Pix, cell.Pix)
	assert.NotEqual(t, normal, p.Normal().Pix)

	require.NoError(t, p.ClearNeighbor(0, 1))
	cell, err = p.Neighbor(0, 1)
	require.NoError(t, err)
	assert.Equal(t, make([]uint8, len(cell.Pix)), cell.Pix)

	require.NoError(t, p.ResetNeighbors())
	require.NoError(t, p.FillNeighbors(bright))
	center, err := p.Neighbor(1, 1)
	require.NoError(t, err)
	assert.NotEqual(t, bright.Pix, center.Pix)
}

func TestHeightOverrideIsResizedAndMasked(t *testing.T) {
	p := loaded(t, spriteRaw(8, 8))
	parallax := cloneGray(p.Parallax())
	specular := cloneGray(p.Specular())

	override := solidRaw(3, 3, color.NRGBA{R: 255, G: 255, B: 255, A: 255})
	require.NoError(t, p.LoadHeightOverride(override))

	preview := p.HeightPreview()
	assert.Equal(t, image.Rect(0, 0, 8, 8), preview.Bounds())
	assert.Equal(t, uint8(255), preview.GrayAt(4, 4).Y)
	assert.NotEqual(t, parallax, p.Parallax().Pix)
	assert.Equal(t, specular, p.Specular().Pix, "specular keeps using the sprite")

	// The sprite's transparent margin carries over, so those normals face up.
	assert.Equal(t, color.NRGBA{R: 128, G: 128, B: 255, A: 255}, p.Normal().NRGBAAt(0, 3))

	require.NoError(t, p.ClearHeightOverride())
	assert.Equal(t, parallax, p.Parallax().Pix)
}

func TestSpecularOverride(t *testing.T) {
	p := loaded(t, spriteRaw(6, 6))
	p.SetOcclusionBlur(0)
	occlusion := cloneGray(p.Occlusion())

	cfg := p.Config()
	cfg.OverrideSupersample = true
	require.NoError(t, cfg.ApplyTo(p))

	require.NoError(t, p.LoadSpecularOverride(solidRaw(12, 12, color.NRGBA{R: 200, G: 200, B: 200, A: 255})))
	assert.Equal(t, uint8(200), p.Specular().GrayAt(3, 3).Y)
	assert.Equal(t, occlusion, p.Occlusion().Pix)

	require.NoError(t, p.ClearSpecularOverride())
	assert.NotEqual(t, uint8(200), p.Specular().GrayAt(3, 3).Y)
}

func TestClearSpecularOverrideRestoresSpriteSpecular(t *testing.T) {
	fresh := loaded(t, spriteRaw(8, 8))

	p := loaded(t, spriteRaw(8, 8))
	require.NoError(t, p.LoadHeightOverride(solidRaw(8, 8, color.NRGBA{R: 10, G: 10, B: 10, A: 255})))
	require.NoError(t, p.LoadSpecularOverride(solidRaw(8, 8, color.NRGBA{R: 200, G: 200, B: 200, A: 255})))
	require.NoError(t, p.ClearSpecularOverride())

	assert.Equal(t, fresh.Specular().Pix, p.Specular().Pix)
	// The height override stays active.
	assert.NotEqual(t, fresh.HeightPreview().Pix, p.HeightPreview().Pix)
	assert.NotEqual(t, fresh.Parallax().Pix, p.Parallax().Pix)
}

func TestClearSpecularOverrideTileable(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Tileable = true
	fresh := loaded(t, spriteRaw(6, 6), WithConfig(cfg))

	p := loaded(t, spriteRaw(6, 6), WithConfig(cfg))
	require.NoError(t, p.LoadHeightOverride(solidRaw(6, 6, color.NRGBA{R: 30, G: 30, B: 30, A: 255})))
	require.NoError(t, p.LoadSpecularOverride(solidRaw(6, 6, color.NRGBA{R: 90, G: 90, B: 90, A: 255})))
	require.NoError(t, p.ClearSpecularOverride())

	assert.Equal(t, fresh.Specular().Pix, p.Specular().Pix)
}

func TestClearHeightOverrideRestoresSpriteMaps(t *testing.T) {
	fresh := loaded(t, spriteRaw(8, 8))

	p := loaded(t, spriteRaw(8, 8))
	p.SetSpecularBlur(0)
	require.NoError(t, p.LoadSpecularOverride(solidRaw(8, 8, color.NRGBA{R: 200, G: 200, B: 200, A: 255})))
	require.NoError(t, p.LoadHeightOverride(solidRaw(8, 8, color.NRGBA{R: 10, G: 10, B: 10, A: 255})))
	assert.NotEqual(t, fresh.Parallax().Pix, p.Parallax().Pix)

	require.NoError(t, p.ClearHeightOverride())
	assert.Equal(t, fresh.Normal().Pix, p.Normal().Pix)
	assert.Equal(t, fresh.Parallax().Pix, p.Parallax().Pix)
	assert.Equal(t, fresh.Occlusion().Pix, p.Occlusion().Pix)
	assert.Equal(t, fresh.HeightPreview().Pix, p.HeightPreview().Pix)
	// The specular override survives.
	assert.Equal(t, uint8(200), p.Specular().GrayAt(4, 4).Y)
}

func TestHeightPreviewUsesNormalBlur(t *testing.T) {
	p := loaded(t, spriteRaw(9, 9))
	p.SetNormalBlur(2)

	want := mask.GaussianBlur(mask.Luma(p.Image()), 2)
	assert.Equal(t, want.Pix, p.HeightPreview().Pix)

	p.SetNormalBlur(0)
	assert.Equal(t, mask.Luma(p.Image()).Pix, p.HeightPreview().Pix)
}

func TestApplyConfigBeforeLoad(t *testing.T) {
	p := New()
	cfg := p.Config()
	cfg.Tileable = true
	cfg.Parallax.Max = 90

	require.NoError(t, cfg.ApplyTo(p))
	assert.True(t, p.Config().Tileable)
	assert.Equal(t, 90, p.Config().Parallax.Max)
	assert.Nil(t, p.Normal())
}

func TestConfigCopyBetweenProcessors(t *testing.T) {
	src := loaded(t, spriteRaw(6, 6))
	src.SetParallaxMax(90)
	src.SetOcclusionInvert(true)
	src.SetLights([]LightPayload{[]byte("sun"), []byte("torch")})

	dst := loaded(t, spriteRaw(6, 6))
	var processed []MapKind
	dst.Subscribe(func(ev Event) {
		if ev.Kind == EventProcessed {
			processed = append(processed, ev.Map)
		}
	})

	cfg := src.Config()
	require.NoError(t, cfg.ApplyTo(dst))
	assert.Equal(t, []MapKind{MapParallax, MapOcclusion}, processed)
	assert.Equal(t, src.Config(), dst.Config())
	assert.Equal(t, src.Parallax().Pix, dst.Parallax().Pix)
	assert.Equal(t, src.Occlusion().Pix, dst.Occlusion().Pix)

	// The light list is a deep copy.
	cfg.Lights[0][0] = 'S'
	assert.Equal(t, LightPayload("sun"), dst.Config().Lights[0])
	assert.Equal(t, LightPayload("sun"), src.Config().Lights[0])

	processed = nil
	cfg = dst.Config()
	cfg.Tileable = true
	require.NoError(t, cfg.ApplyTo(dst))
	assert.Equal(t, Maps, processed)
}

func TestWithConfigOption(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Specular.Invert = true
	p := loaded(t, solidRaw(3, 3, color.NRGBA{A: 255}), WithConfig(cfg))
	assert.Equal(t, uint8(255), p.Specular().GrayAt(1, 1).Y)
}
