package cmd

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"runtime"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/MeKo-Tech/spritemaps/internal/bundle"
	"github.com/MeKo-Tech/spritemaps/internal/pipeline"
	"github.com/MeKo-Tech/spritemaps/internal/processor"
	"github.com/MeKo-Tech/spritemaps/internal/worker"
)

var generateCmd = &cobra.Command{
	Use:   "generate <sprite>...",
	Short: "Generate lighting maps for sprites",
	Long: `Generate normal, parallax, specular and occlusion maps for one or more sprite images.

Each sprite is processed independently on a pool of workers. Outputs are written as
<name>_n.png, <name>_p.png, <name>_s.png and <name>_o.png, or stored in a bundle
database with --format=bundle.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runGenerate,
}

func init() {
	rootCmd.AddCommand(generateCmd)

	defaults := processor.DefaultConfig()

	// Inputs
	generateCmd.Flags().String("height", "", "Height override image (single sprite only)")
	generateCmd.Flags().String("specular", "", "Specular override image (single sprite only)")
	generateCmd.Flags().String("neighbors", "", "Image placed in the eight cells around the sprite in tileable mode (single sprite only)")

	// Batch flags
	generateCmd.Flags().IntP("workers", "w", 0, "Number of parallel workers (default: number of CPUs)")
	generateCmd.Flags().Bool("progress", true, "Show progress bar during batch generation")
	generateCmd.Flags().Bool("allow-failures", false, "Exit successfully even if some sprites fail")
	generateCmd.Flags().Bool("force", false, "Force regeneration even if maps exist")

	// Output format flags
	generateCmd.Flags().String("format", "folder", "Output format: folder or bundle")
	generateCmd.Flags().String("output-file", "", "Output file path for bundle format (e.g., maps.db)")
	generateCmd.Flags().Bool("sheet", false, "Also write a contact sheet of the sprite and its maps")

	// Frequently tuned map parameters; everything else comes from the config file.
	generateCmd.Flags().Bool("tileable", defaults.Tileable, "Treat sprites as seamlessly tiling")
	generateCmd.Flags().Int("normal-depth", defaults.Normal.Depth, "Emboss depth of the normal map")
	generateCmd.Flags().String("parallax-type", string(defaults.Parallax.Type), "Parallax algorithm: binary, heightmap, quantization or intervals")

	bindFlags := []struct {
		key  string
		flag string
	}{
		{"generate.height", "height"},
		{"generate.specular", "specular"},
		{"generate.neighbors", "neighbors"},
		{"generate.workers", "workers"},
		{"generate.progress", "progress"},
		{"generate.allow_failures", "allow-failures"},
		{"generate.force", "force"},
		{"generate.format", "format"},
		{"generate.output_file", "output-file"},
		{"generate.sheet", "sheet"},
		{"maps.tileable", "tileable"},
		{"maps.normal.depth", "normal-depth"},
		{"maps.parallax.type", "parallax-type"},
	}

	for _, bf := range bindFlags {
		if err := viper.BindPFlag(bf.key, generateCmd.Flags().Lookup(bf.flag)); err != nil {
			panic(fmt.Sprintf("failed to bind flag %s: %v", bf.flag, err))
		}
	}
}

type generateOptions struct {
	heightOverride   string
	specularOverride string
	neighbors        string
	workers          int
	showProgress     bool
	allowFailures    bool
	force            bool
	format           string
	outputFile       string
	outputDir        string
	sheet            bool
}

func readGenerateOptions(v *viper.Viper) generateOptions {
	return generateOptions{
		heightOverride:   v.GetString("generate.height"),
		specularOverride: v.GetString("generate.specular"),
		neighbors:        v.GetString("generate.neighbors"),
		workers:          v.GetInt("generate.workers"),
		showProgress:     v.GetBool("generate.progress"),
		allowFailures:    v.GetBool("generate.allow_failures"),
		force:            v.GetBool("generate.force"),
		format:           v.GetString("generate.format"),
		outputFile:       v.GetString("generate.output_file"),
		outputDir:        v.GetString("out-dir"),
		sheet:            v.GetBool("generate.sheet"),
	}
}

func (o generateOptions) validate(sprites int) error {
	if o.format != "folder" && o.format != "bundle" {
		return fmt.Errorf("invalid format %q: must be 'folder' or 'bundle'", o.format)
	}
	if o.format == "bundle" && o.outputFile == "" {
		return fmt.Errorf("--output-file is required when using --format=bundle")
	}
	if o.format == "folder" && o.outputDir == "" {
		return fmt.Errorf("--out-dir must not be empty")
	}
	if sprites > 1 && (o.heightOverride != "" || o.specularOverride != "" || o.neighbors != "") {
		return fmt.Errorf("--height, --specular and --neighbors can only be used with a single sprite")
	}
	return nil
}

func runGenerate(cmd *cobra.Command, args []string) error {
	if logger == nil {
		initLogging()
	}

	opts := readGenerateOptions(viper.GetViper())
	cfg, err := loadMapConfig(viper.GetViper())
	if err != nil {
		return err
	}

	ctx, cancel := context.WithCancel(cmd.Context())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(sigCh)
	go func() {
		select {
		case <-sigCh:
			logger.Info("Received interrupt signal, cancelling...")
			cancel()
		case <-ctx.Done():
		}
	}()

	return generateSprites(ctx, opts, cfg, args, cmd.ErrOrStderr())
}

func generateSprites(ctx context.Context, opts generateOptions, cfg processor.Config, sprites []string, progressOut io.Writer) error {
	if err := opts.validate(len(sprites)); err != nil {
		return err
	}

	workers := opts.workers
	if workers <= 0 {
		workers = runtime.NumCPU()
	}
	if workers > len(sprites) {
		workers = len(sprites)
	}

	logger.Info("Starting sprite map generation",
		"sprites", len(sprites),
		"workers", workers,
		"format", opts.format,
		"tileable", cfg.Tileable,
		"parallax", cfg.Parallax.Type,
	)

	var bundleWriter *bundle.Writer
	if opts.format == "bundle" {
		var dump bytes.Buffer
		if err := writeConfigYAML(&dump, cfg); err != nil {
			return err
		}

		w, err := bundle.New(opts.outputFile, bundle.Metadata{
			Name:        "SpriteMaps",
			Format:      "png",
			Description: "Sprite lighting maps",
			Version:     "1.0",
			Config:      dump.String(),
			Tileable:    cfg.Tileable,
		})
		if err != nil {
			return fmt.Errorf("failed to create bundle writer: %w", err)
		}
		bundleWriter = w
		defer bundleWriter.Close() // nolint:errcheck
	}

	genOpts := pipeline.Options{
		Config:           cfg,
		OutputDir:        opts.outputDir,
		HeightOverride:   opts.heightOverride,
		SpecularOverride: opts.specularOverride,
		Neighbors:        opts.neighbors,
		Sheet:            opts.sheet,
		Logger:           logger,
	}
	if bundleWriter != nil {
		genOpts.Bundle = bundleWriter
	}

	gen, err := pipeline.NewGenerator(genOpts)
	if err != nil {
		return fmt.Errorf("failed to init generator: %w", err)
	}

	tasks := make([]worker.Task, 0, len(sprites))
	for _, sprite := range sprites {
		tasks = append(tasks, worker.Task{Sprite: sprite, Force: opts.force})
	}

	progress := worker.NewProgress(len(tasks), opts.showProgress)
	progress.SetOutput(progressOut)

	pool := worker.New(worker.Config{
		Workers:    workers,
		Generator:  gen,
		OnProgress: progress.Callback(),
	})

	results := pool.Run(ctx, tasks)
	progress.Done()

	var failedCount int
	for _, r := range results {
		if r.Err != nil {
			failedCount++
			logger.Error("Sprite generation failed", "sprite", r.Task.Sprite, "error", r.Err)
			continue
		}
		logger.Debug("Sprite done", "sprite", r.Task.Sprite, "outputs", r.Outputs, "elapsed", r.Elapsed)
	}

	logger.Info(progress.Summary())

	if bundleWriter != nil {
		if err := bundleWriter.Flush(); err != nil {
			return fmt.Errorf("failed to flush bundle: %w", err)
		}
		logger.Info("Bundle written", "path", bundleWriter.Path())
	}

	if err := ctx.Err(); err != nil {
		return err
	}
	if failedCount > 0 {
		if opts.allowFailures {
			logger.Warn("Some sprites failed to generate, but continuing due to --allow-failures flag", "failed_count", failedCount)
			return nil
		}
		return fmt.Errorf("%d sprites failed to generate", failedCount)
	}
	return nil
}
