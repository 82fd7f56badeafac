package processor

import "github.com/MeKo-Tech/spritemaps/internal/derive"

// SetTileable switches between wrap-around and single-image processing. The
// height views are re-derived; the loaded sources are kept.
func (p *Processor) SetTileable(v bool) {
	p.cfg.Tileable = v
	p.regenerate(Maps...)
}

func (p *Processor) setNormal(fn func(*derive.NormalParams)) {
	fn(&p.cfg.Normal)
	p.regenerate(MapNormal)
}

func (p *Processor) SetNormalDepth(v int) {
	p.setNormal(func(n *derive.NormalParams) { n.Depth = v })
}
func (p *Processor) SetNormalBlur(v int) {
	p.setNormal(func(n *derive.NormalParams) { n.Blur = v })
}
func (p *Processor) SetBevelDepth(v int) {
	p.setNormal(func(n *derive.NormalParams) { n.BevelDepth = v })
}
func (p *Processor) SetBevelBlur(v int) {
	p.setNormal(func(n *derive.NormalParams) { n.BevelBlur = v })
}

// SetBevelDistance changes the distance at which the bevel saturates. The distance
// field is rebuilt.
func (p *Processor) SetBevelDistance(v int) {
	p.setNormal(func(n *derive.NormalParams) { n.BevelDistance = v })
}

// SetBevelSoft toggles the rounded bevel profile. The distance field is rebuilt.
func (p *Processor) SetBevelSoft(v bool) {
	p.setNormal(func(n *derive.NormalParams) { n.BevelSoft = v })
}

// SetNormalInvert flips the selected normal axes.
func (p *Processor) SetNormalInvert(x, y, z bool) {
	p.setNormal(func(n *derive.NormalParams) {
		n.Invert.X, n.Invert.Y, n.Invert.Z = x, y, z
	})
}

func (p *Processor) setParallax(fn func(*derive.ParallaxParams)) {
	fn(&p.cfg.Parallax)
	p.regenerate(MapParallax)
}

func (p *Processor) SetParallaxType(v derive.ParallaxType) {
	p.setParallax(func(pp *derive.ParallaxParams) { pp.Type = v })
}
func (p *Processor) SetParallaxMin(v int) {
	p.setParallax(func(pp *derive.ParallaxParams) { pp.Min = v })
}
func (p *Processor) SetParallaxMax(v int) {
	p.setParallax(func(pp *derive.ParallaxParams) { pp.Max = v })
}
func (p *Processor) SetParallaxFocus(v int) {
	p.setParallax(func(pp *derive.ParallaxParams) { pp.Focus = v })
}
func (p *Processor) SetParallaxSoft(v int) {
	p.setParallax(func(pp *derive.ParallaxParams) { pp.Soft = v })
}

// SetParallaxErodeDilate erodes for negative and dilates for positive values.
func (p *Processor) SetParallaxErodeDilate(v int) {
	p.setParallax(func(pp *derive.ParallaxParams) { pp.ErodeDilate = v })
}
func (p *Processor) SetParallaxQuantization(v int) {
	p.setParallax(func(pp *derive.ParallaxParams) { pp.Quantization = v })
}
func (p *Processor) SetParallaxContrast(v float64) {
	p.setParallax(func(pp *derive.ParallaxParams) { pp.Contrast = v })
}
func (p *Processor) SetParallaxBrightness(v int) {
	p.setParallax(func(pp *derive.ParallaxParams) { pp.Brightness = v })
}
func (p *Processor) SetParallaxInvert(v bool) {
	p.setParallax(func(pp *derive.ParallaxParams) { pp.Invert = v })
}

func (p *Processor) setSpecular(fn func(*derive.SpecularParams)) {
	fn(&p.cfg.Specular)
	p.regenerate(MapSpecular)
}

func (p *Processor) SetSpecularBlur(v int) {
	p.setSpecular(func(s *derive.SpecularParams) { s.Blur = v })
}
func (p *Processor) SetSpecularBright(v int) {
	p.setSpecular(func(s *derive.SpecularParams) { s.Bright = v })
}
func (p *Processor) SetSpecularContrast(v float64) {
	p.setSpecular(func(s *derive.SpecularParams) { s.Contrast = v })
}
func (p *Processor) SetSpecularThresh(v int) {
	p.setSpecular(func(s *derive.SpecularParams) { s.Thresh = v })
}
func (p *Processor) SetSpecularInvert(v bool) {
	p.setSpecular(func(s *derive.SpecularParams) { s.Invert = v })
}

func (p *Processor) setOcclusion(fn func(*derive.OcclusionParams)) {
	fn(&p.cfg.Occlusion)
	p.regenerate(MapOcclusion)
}

func (p *Processor) SetOcclusionBlur(v int) {
	p.setOcclusion(func(o *derive.OcclusionParams) { o.Blur = v })
}
func (p *Processor) SetOcclusionBright(v int) {
	p.setOcclusion(func(o *derive.OcclusionParams) { o.Bright = v })
}
func (p *Processor) SetOcclusionContrast(v float64) {
	p.setOcclusion(func(o *derive.OcclusionParams) { o.Contrast = v })
}
func (p *Processor) SetOcclusionThresh(v int) {
	p.setOcclusion(func(o *derive.OcclusionParams) { o.Thresh = v })
}
func (p *Processor) SetOcclusionDistance(v int) {
	p.setOcclusion(func(o *derive.OcclusionParams) { o.Distance = v })
}
func (p *Processor) SetOcclusionDistanceMode(v bool) {
	p.setOcclusion(func(o *derive.OcclusionParams) { o.DistanceMode = v })
}
func (p *Processor) SetOcclusionSoft(v bool) {
	p.setOcclusion(func(o *derive.OcclusionParams) { o.Soft = v })
}
func (p *Processor) SetOcclusionInvert(v bool) {
	p.setOcclusion(func(o *derive.OcclusionParams) { o.Invert = v })
}

// SetLights replaces the opaque light list carried with the configuration.
func (p *Processor) SetLights(lights []LightPayload) {
	p.cfg.Lights = Config{Lights: lights}.Clone().Lights
}
