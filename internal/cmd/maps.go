package cmd

import (
	"fmt"
	"io"

	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"

	"github.com/MeKo-Tech/spritemaps/internal/derive"
	"github.com/MeKo-Tech/spritemaps/internal/processor"
)

// mapsFile mirrors the parts of the config file the processor reads.
type mapsFile struct {
	Maps processor.Config `mapstructure:"maps"`
}

// loadMapConfig overlays the "maps" settings of v onto the defaults.
func loadMapConfig(v *viper.Viper) (processor.Config, error) {
	mf := mapsFile{Maps: processor.DefaultConfig()}
	if err := v.Unmarshal(&mf); err != nil {
		return processor.Config{}, fmt.Errorf("failed to read maps config: %w", err)
	}

	t, err := derive.ParseParallaxType(string(mf.Maps.Parallax.Type))
	if err != nil {
		return processor.Config{}, err
	}
	mf.Maps.Parallax.Type = t
	return mf.Maps, nil
}

// writeConfigYAML writes cfg under a top-level "maps" key, ready to paste into config.yaml.
func writeConfigYAML(w io.Writer, cfg processor.Config) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(map[string]processor.Config{"maps": cfg}); err != nil {
		return fmt.Errorf("failed to encode config: %w", err)
	}
	return enc.Close()
}
