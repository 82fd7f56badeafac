package processor

import (
	"github.com/MeKo-Tech/spritemaps/internal/derive"
)

// LightPayload is an opaque light description owned by the lighting collaborator.
// The processor only stores and copies it.
type LightPayload []byte

// Config is the complete set of tunable parameters of a Processor. It is a plain
// value; copying it never aliases another processor's state once Clone is used.
type Config struct {
	Tileable            bool                   `mapstructure:"tileable" yaml:"tileable"`
	OverrideSupersample bool                   `mapstructure:"override_supersample" yaml:"override_supersample"`
	Normal              derive.NormalParams    `mapstructure:"normal" yaml:"normal"`
	Parallax            derive.ParallaxParams  `mapstructure:"parallax" yaml:"parallax"`
	Specular            derive.SpecularParams  `mapstructure:"specular" yaml:"specular"`
	Occlusion           derive.OcclusionParams `mapstructure:"occlusion" yaml:"occlusion"`
	Lights              []LightPayload         `mapstructure:"-" yaml:"lights,omitempty"`
}

// DefaultConfig returns the default parameters.
func DefaultConfig() Config {
	return Config{
		Normal:    derive.DefaultNormalParams(),
		Parallax:  derive.DefaultParallaxParams(),
		Specular:  derive.DefaultSpecularParams(),
		Occlusion: derive.DefaultOcclusionParams(),
	}
}

// Clone returns a deep copy, including the light list.
func (c Config) Clone() Config {
	out := c
	if c.Lights != nil {
		out.Lights = make([]LightPayload, len(c.Lights))
		for i, l := range c.Lights {
			out.Lights[i] = append(LightPayload(nil), l...)
		}
	}
	return out
}

// ApplyTo writes c into p and regenerates only the maps whose parameters changed.
// A tileable change regenerates everything. Before the first load it only stores c.
func (c Config) ApplyTo(p *Processor) error {
	old := p.cfg
	p.cfg = c.Clone()

	if old.Tileable != c.Tileable {
		return p.generate(Maps...)
	}

	var dirty []MapKind
	if old.Normal != c.Normal {
		dirty = append(dirty, MapNormal)
	}
	if old.Parallax != c.Parallax {
		dirty = append(dirty, MapParallax)
	}
	if old.Specular != c.Specular {
		dirty = append(dirty, MapSpecular)
	}
	if old.Occlusion != c.Occlusion {
		dirty = append(dirty, MapOcclusion)
	}
	return p.generate(dirty...)
}
