// Package derive synthesizes the auxiliary lighting maps of a sprite: normal,
// parallax, specular and ambient occlusion. Every generator is a pure function of
// the active height view and its own parameter group.
package derive

import (
	"fmt"

	"github.com/MeKo-Tech/spritemaps/internal/field"
)

// NormalParams controls the emboss and bevel normal fields.
type NormalParams struct {
	Depth         int        `mapstructure:"depth" yaml:"depth"`
	Blur          int        `mapstructure:"blur" yaml:"blur"`
	BevelDepth    int        `mapstructure:"bevel_depth" yaml:"bevel_depth"`
	BevelDistance int        `mapstructure:"bevel_distance" yaml:"bevel_distance"`
	BevelBlur     int        `mapstructure:"bevel_blur" yaml:"bevel_blur"`
	BevelSoft     bool       `mapstructure:"bevel_soft" yaml:"bevel_soft"`
	Invert        field.Flip `mapstructure:"invert" yaml:"invert"`
}

// ParallaxType selects the parallax algorithm.
type ParallaxType string

const (
	ParallaxBinary       ParallaxType = "binary"
	ParallaxHeightMap    ParallaxType = "heightmap"
	ParallaxQuantization ParallaxType = "quantization"
	// ParallaxIntervals is accepted but has no transform: the height is passed through.
	ParallaxIntervals ParallaxType = "intervals"
)

// ParseParallaxType validates a parallax type name.
func ParseParallaxType(s string) (ParallaxType, error) {
	switch t := ParallaxType(s); t {
	case ParallaxBinary, ParallaxHeightMap, ParallaxQuantization, ParallaxIntervals:
		return t, nil
	default:
		return "", fmt.Errorf("unknown parallax type %q", s)
	}
}

// Supported reports whether t has an implemented transform.
func (t ParallaxType) Supported() bool {
	return t == ParallaxBinary || t == ParallaxHeightMap || t == ParallaxQuantization
}

// ParallaxParams controls the parallax depth map.
type ParallaxParams struct {
	Type         ParallaxType `mapstructure:"type" yaml:"type"`
	Min          int          `mapstructure:"min" yaml:"min"`
	Max          int          `mapstructure:"max" yaml:"max"`
	Focus        int          `mapstructure:"focus" yaml:"focus"`
	Soft         int          `mapstructure:"soft" yaml:"soft"`
	ErodeDilate  int          `mapstructure:"erode_dilate" yaml:"erode_dilate"`
	Quantization int          `mapstructure:"quantization" yaml:"quantization"`
	Contrast     float64      `mapstructure:"contrast" yaml:"contrast"`
	Brightness   int          `mapstructure:"brightness" yaml:"brightness"`
	Invert       bool         `mapstructure:"invert" yaml:"invert"`
}

// SpecularParams controls the specular reflectance map.
type SpecularParams struct {
	Blur     int     `mapstructure:"blur" yaml:"blur"`
	Bright   int     `mapstructure:"bright" yaml:"bright"`
	Contrast float64 `mapstructure:"contrast" yaml:"contrast"`
	Thresh   int     `mapstructure:"thresh" yaml:"thresh"`
	Invert   bool    `mapstructure:"invert" yaml:"invert"`
}

// OcclusionParams controls the ambient occlusion map.
type OcclusionParams struct {
	Blur         int     `mapstructure:"blur" yaml:"blur"`
	Bright       int     `mapstructure:"bright" yaml:"bright"`
	Contrast     float64 `mapstructure:"contrast" yaml:"contrast"`
	Thresh       int     `mapstructure:"thresh" yaml:"thresh"`
	Distance     int     `mapstructure:"distance" yaml:"distance"`
	DistanceMode bool    `mapstructure:"distance_mode" yaml:"distance_mode"`
	Soft         bool    `mapstructure:"soft" yaml:"soft"`
	Invert       bool    `mapstructure:"invert" yaml:"invert"`
}

// DefaultNormalParams returns the normal map defaults.
func DefaultNormalParams() NormalParams {
	return NormalParams{
		Depth:         100,
		Blur:          5,
		BevelDepth:    1000,
		BevelDistance: 60,
		BevelBlur:     10,
		BevelSoft:     true,
	}
}

// DefaultParallaxParams returns the parallax map defaults.
func DefaultParallaxParams() ParallaxParams {
	return ParallaxParams{
		Type:         ParallaxBinary,
		Max:          140,
		Focus:        3,
		Soft:         10,
		ErodeDilate:  1,
		Quantization: 1,
		Contrast:     1,
	}
}

// DefaultSpecularParams returns the specular map defaults.
func DefaultSpecularParams() SpecularParams {
	return SpecularParams{Blur: 10, Contrast: 1, Thresh: 127}
}

// DefaultOcclusionParams returns the occlusion map defaults.
func DefaultOcclusionParams() OcclusionParams {
	return OcclusionParams{
		Blur:         10,
		Bright:       16,
		Contrast:     1,
		Thresh:       1,
		Distance:     10,
		DistanceMode: true,
		Soft:         true,
	}
}

func clampByte(v int) uint8 {
	if v < 0 {
		return 0
	}
	if v > 255 {
		return 255
	}
	return uint8(v)
}
