package cmd

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/MeKo-Tech/spritemaps/internal/sample"
	"github.com/MeKo-Tech/spritemaps/internal/spriteio"
)

var sampleCmd = &cobra.Command{
	Use:   "sample [name]",
	Short: "Generate a procedural sample sprite",
	Long: `Generate a blob-shaped sample sprite with noisy shading, plus a matching
height image that can be passed to "generate --height".`,
	Args: cobra.MaximumNArgs(1),
	RunE: runSample,
}

func init() {
	rootCmd.AddCommand(sampleCmd)

	defaults := sample.DefaultParams()
	sampleCmd.Flags().Int("size", defaults.Size, "Sprite size in pixels (square)")
	sampleCmd.Flags().Int64("seed", defaults.Seed, "Deterministic seed for the outline and shading")
	sampleCmd.Flags().Float64("wobble", defaults.Wobble, "Outline irregularity (0..1)")
	sampleCmd.Flags().Bool("hole", defaults.Hole, "Cut a hole into the sprite")

	bindFlags := []struct {
		key  string
		flag string
	}{
		{"sample.size", "size"},
		{"sample.seed", "seed"},
		{"sample.wobble", "wobble"},
		{"sample.hole", "hole"},
	}

	for _, bf := range bindFlags {
		if err := viper.BindPFlag(bf.key, sampleCmd.Flags().Lookup(bf.flag)); err != nil {
			panic(fmt.Sprintf("failed to bind flag %s: %v", bf.flag, err))
		}
	}
}

func runSample(cmd *cobra.Command, args []string) error {
	if logger == nil {
		initLogging()
	}

	name := "sample"
	if len(args) == 1 {
		name = strings.TrimSuffix(args[0], filepath.Ext(args[0]))
	}

	p := sample.DefaultParams()
	p.Size = viper.GetInt("sample.size")
	p.Seed = viper.GetInt64("sample.seed")
	p.Wobble = viper.GetFloat64("sample.wobble")
	p.Hole = viper.GetBool("sample.hole")

	paths, err := writeSample(viper.GetString("out-dir"), name, p)
	if err != nil {
		return err
	}

	logger.Info("Sample sprite written", "sprite", paths[0], "height", paths[1], "size", p.Size, "seed", p.Seed)
	return nil
}

// writeSample writes <name>.png and <name>_height.png into dir.
func writeSample(dir, name string, p sample.Params) ([]string, error) {
	spr, err := sample.Generate(p)
	if err != nil {
		return nil, err
	}

	spritePath := filepath.Join(dir, name+".png")
	heightPath := filepath.Join(dir, name+"_height.png")
	if err := spriteio.WritePNG(spritePath, spr.Color); err != nil {
		return nil, err
	}
	if err := spriteio.WritePNG(heightPath, spr.Height); err != nil {
		return nil, err
	}
	return []string{spritePath, heightPath}, nil
}
