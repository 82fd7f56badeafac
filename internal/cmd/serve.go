package cmd

import (
	"fmt"
	"net/http"
	"runtime"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/MeKo-Tech/spritemaps/internal/server"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve sprite maps over HTTP (optionally generating missing maps on-demand)",
	Args:  cobra.NoArgs,
	RunE:  runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)

	serveCmd.Flags().String("addr", "127.0.0.1:8080", "Listen address (host:port)")
	serveCmd.Flags().String("sprites-dir", ".", "Directory containing source sprites")
	serveCmd.Flags().String("maps-dir", "", "Directory for generated maps (defaults to --out-dir)")
	serveCmd.Flags().String("bundle", "", "Also serve a bundle database under /bundle/")

	serveCmd.Flags().Bool("generate-missing", true, "Generate missing maps on-demand and cache them to disk")
	serveCmd.Flags().Bool("disable-cache", false, "Always regenerate maps (still writes to disk)")
	serveCmd.Flags().Int("max-concurrent-generations", runtime.NumCPU(), "Max concurrent sprite generations (default: number of CPUs)")
	serveCmd.Flags().Duration("generation-timeout", time.Minute, "Timeout per sprite generation")
	serveCmd.Flags().String("cache-control", "no-store", "Cache-Control header for served maps")

	mustBind := func(key string, name string) {
		if err := viper.BindPFlag(key, serveCmd.Flags().Lookup(name)); err != nil {
			panic(fmt.Sprintf("failed to bind flag: %v", err))
		}
	}

	mustBind("serve.addr", "addr")
	mustBind("serve.sprites_dir", "sprites-dir")
	mustBind("serve.maps_dir", "maps-dir")
	mustBind("serve.bundle", "bundle")
	mustBind("serve.generate_missing", "generate-missing")
	mustBind("serve.disable_cache", "disable-cache")
	mustBind("serve.max_concurrent_generations", "max-concurrent-generations")
	mustBind("serve.generation_timeout", "generation-timeout")
	mustBind("serve.cache_control", "cache-control")
}

func runServe(cmd *cobra.Command, args []string) error {
	if logger == nil {
		initLogging()
	}

	mux, closeFn, err := newServeMux(viper.GetViper())
	if err != nil {
		return err
	}
	defer closeFn()

	addr := viper.GetString("serve.addr")
	logger.Info("map server listening",
		"addr", addr,
		"sprites_dir", viper.GetString("serve.sprites_dir"),
		"generate_missing", viper.GetBool("serve.generate_missing"),
	)

	srv := &http.Server{Addr: addr, Handler: mux, ReadHeaderTimeout: 5 * time.Second}
	return srv.ListenAndServe()
}

// newServeMux builds the routes from v. The returned func releases the bundle reader.
func newServeMux(v *viper.Viper) (*http.ServeMux, func(), error) {
	cfg, err := loadMapConfig(v)
	if err != nil {
		return nil, nil, err
	}

	mapsDir := v.GetString("serve.maps_dir")
	if mapsDir == "" {
		mapsDir = v.GetString("out-dir")
	}
	cacheControl := v.GetString("serve.cache_control")

	od, err := server.NewOnDemandMaps(server.OnDemandMapsConfig{
		SpritesDir:               v.GetString("serve.sprites_dir"),
		MapsDir:                  mapsDir,
		CacheControl:             cacheControl,
		Config:                   cfg,
		MaxConcurrentGenerations: v.GetInt("serve.max_concurrent_generations"),
		GenerationTimeout:        v.GetDuration("serve.generation_timeout"),
		GenerateMissing:          v.GetBool("serve.generate_missing"),
		DisableCache:             v.GetBool("serve.disable_cache"),
	}, logger)
	if err != nil {
		return nil, nil, err
	}

	mux := http.NewServeMux()
	mux.HandleFunc("GET /healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		_, _ = w.Write([]byte("ok"))
	})
	mux.Handle("GET /status", od.StatusHandler())
	mux.Handle("/maps/", withCORS(od.Handler()))

	closeFn := func() {}
	if path := v.GetString("serve.bundle"); path != "" {
		bh, err := server.NewBundleHandler(server.BundleConfig{BundlePath: path, CacheControl: cacheControl}, logger)
		if err != nil {
			return nil, nil, err
		}
		bh.Register(mux, "/bundle/")
		closeFn = func() { _ = bh.Close() }
	}

	return mux, closeFn, nil
}

func withCORS(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, OPTIONS")

		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}

		next.ServeHTTP(w, r)
	})
}
