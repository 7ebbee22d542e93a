// Orbit Globe terminal viewer.
// Renders the Earth and the catalog's orbits with the software backend,
// two pixels per character cell.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"

	"golang.org/x/term"

	"github.com/unklstewy/orbit-globe/internal/assets"
	"github.com/unklstewy/orbit-globe/internal/observability"
	"github.com/unklstewy/orbit-globe/internal/render"
	"github.com/unklstewy/orbit-globe/pkg/config"
)

var (
	// Version information (set by build flags)
	version = "dev"
	commit  = "unknown"
)

func main() {
	configPath := flag.String("config", "configs/config.json", "Path to configuration file")
	catalogPath := flag.String("catalog", "", "Catalog file (overrides config)")
	metricsAddr := flag.String("metrics", "", "Serve Prometheus metrics on this address, e.g. :9101")
	showVersion := flag.Bool("version", false, "Show version information")
	flag.Parse()

	if *showVersion {
		fmt.Printf("orbit-viewer version %s (commit: %s)\n", version, commit)
		os.Exit(0)
	}

	if !term.IsTerminal(int(os.Stdout.Fd())) {
		log.Fatal("orbit-viewer needs an interactive terminal")
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}
	if *catalogPath != "" {
		cfg.Catalog.Path = *catalogPath
		cfg.Catalog.FromDatabase = false
	}

	// Startup messages land in the log panel.
	logs := NewLogManager(200)
	log.SetFlags(0)
	log.SetOutput(logs)

	_, cat, err := assets.LoadConfiguredCatalog(context.Background(), cfg)
	if err != nil {
		fatal("Failed to load catalog: %v", err)
	}

	texture, err := assets.LoadTexture(cfg.Render.TexturePath)
	if err != nil {
		fatal("Failed to load texture: %v", err)
	}

	backend := render.NewSoftBackend(1, 1)
	engine, err := render.NewEngine(backend, backend, render.Sources(), texture, cat, render.EngineOptions{
		TimeWarp: cfg.Render.TimeWarp,
		AutoSpin: cfg.Render.AutoSpin,
		Globe: render.GlobeOptions{
			LongitudeSegments: cfg.Render.LongitudeSegments,
			LatitudeSegments:  cfg.Render.LatitudeSegments,
		},
	})
	if err != nil {
		fatal("Failed to create engine: %v", err)
	}

	metrics, err := observability.NewRenderCollector(nil)
	if err != nil {
		fatal("Failed to register metrics: %v", err)
	}
	metrics.SetCatalog(cat)
	if *metricsAddr != "" {
		if _, err := metrics.Serve(*metricsAddr); err != nil {
			fatal("%v", err)
		}
	}

	app := NewApp(&AppConfig{
		Config:     cfg,
		ConfigPath: *configPath,
		Catalog:    cat,
		Engine:     engine,
		Backend:    backend,
		Metrics:    metrics,
		Logs:       logs,
	})

	if err := app.Run(); err != nil {
		fatal("Application error: %v", err)
	}
}

// fatal restores stderr logging before exiting so the message is visible.
func fatal(format string, args ...interface{}) {
	log.SetOutput(os.Stderr)
	log.Fatalf(format, args...)
}
