//go:build opengl

// Orbit Globe window viewer. Draws the globe and orbit rings with OpenGL in
// a GLFW window.
package main

import (
	"context"
	"flag"
	"log"
	"runtime"
	"time"

	"github.com/go-gl/glfw/v3.3/glfw"

	"github.com/unklstewy/orbit-globe/internal/assets"
	"github.com/unklstewy/orbit-globe/internal/observability"
	"github.com/unklstewy/orbit-globe/internal/render"
	"github.com/unklstewy/orbit-globe/pkg/camera"
	"github.com/unklstewy/orbit-globe/pkg/catalog"
	"github.com/unklstewy/orbit-globe/pkg/config"
	"github.com/unklstewy/orbit-globe/pkg/gfx/opengl"
	"github.com/unklstewy/orbit-globe/pkg/linalg"
)

const surface = "window"

func init() {
	// GLFW event handling and GL calls must stay on the main thread.
	runtime.LockOSThread()
}

// windowCanvas reports the framebuffer size, which differs from the window
// size on high-DPI displays.
type windowCanvas struct{ w *glfw.Window }

func (c windowCanvas) Size() (int, int) { return c.w.GetFramebufferSize() }

func main() {
	configPath := flag.String("config", "configs/config.json", "Path to configuration file")
	catalogPath := flag.String("catalog", "", "Catalog file (overrides config)")
	metricsAddr := flag.String("metrics", "", "Serve Prometheus metrics on this address, e.g. :9102")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}
	if *catalogPath != "" {
		cfg.Catalog.Path = *catalogPath
		cfg.Catalog.FromDatabase = false
	}

	_, cat, err := assets.LoadConfiguredCatalog(context.Background(), cfg)
	if err != nil {
		log.Fatalf("Failed to load catalog: %v", err)
	}
	texture, err := assets.LoadTexture(cfg.Render.TexturePath)
	if err != nil {
		log.Fatalf("Failed to load texture: %v", err)
	}

	if err := glfw.Init(); err != nil {
		log.Fatalf("Failed to initialize GLFW: %v", err)
	}
	defer glfw.Terminate()

	glfw.WindowHint(glfw.ContextVersionMajor, 2)
	glfw.WindowHint(glfw.ContextVersionMinor, 1)
	glfw.WindowHint(glfw.Samples, 4)
	window, err := glfw.CreateWindow(cfg.Viewer.WindowWidth, cfg.Viewer.WindowHeight, "Orbit Globe", nil, nil)
	if err != nil {
		log.Fatalf("Failed to create window: %v", err)
	}
	window.MakeContextCurrent()
	glfw.SwapInterval(1)

	version, err := opengl.Init()
	if err != nil {
		log.Fatalf("%v", err)
	}
	log.Printf("OpenGL %s", version)

	engine, err := render.NewEngine(opengl.New(), windowCanvas{window}, render.Sources(), texture, cat, render.EngineOptions{
		TimeWarp: cfg.Render.TimeWarp,
		AutoSpin: cfg.Render.AutoSpin,
		Globe: render.GlobeOptions{
			LongitudeSegments: cfg.Render.LongitudeSegments,
			LatitudeSegments:  cfg.Render.LatitudeSegments,
		},
	})
	if err != nil {
		log.Fatalf("Failed to create engine: %v", err)
	}

	metrics, err := observability.NewRenderCollector(nil)
	if err != nil {
		log.Fatalf("Failed to register metrics: %v", err)
	}
	metrics.SetCatalog(cat)
	if *metricsAddr != "" {
		addr, err := metrics.Serve(*metricsAddr)
		if err != nil {
			log.Fatalf("%v", err)
		}
		log.Printf("Metrics on http://%s/metrics", addr)
	}

	ctrl := camera.NewController(cfg.Camera.State(), cfg.Camera.Limits())
	filters := catalog.CatalogFilters(cat)

	viewportHeight := func() float64 {
		_, h := window.GetSize()
		return float64(h)
	}
	window.SetScrollCallback(func(_ *glfw.Window, _, yoff float64) {
		ctrl.Scroll(yoff * ScrollStep)
	})
	window.SetMouseButtonCallback(func(w *glfw.Window, button glfw.MouseButton, action glfw.Action, _ glfw.ModifierKey) {
		if button != glfw.MouseButtonLeft {
			return
		}
		switch action {
		case glfw.Press:
			x, y := w.GetCursorPos()
			ctrl.MouseDown(linalg.Vec2{x, y})
		case glfw.Release:
			ctrl.MouseUp()
		}
	})
	window.SetCursorPosCallback(func(_ *glfw.Window, x, y float64) {
		ctrl.MouseMove(linalg.Vec2{x, y}, viewportHeight())
	})
	window.SetCursorEnterCallback(func(_ *glfw.Window, entered bool) {
		if !entered {
			ctrl.MouseUp()
		}
	})
	window.SetCharCallback(func(w *glfw.Window, char rune) {
		switch HandleKey(ctrl, filters, char) {
		case ActionQuit:
			w.SetShouldClose(true)
		case ActionSave:
			cfg.Camera.SetSelection(ctrl.Snapshot().Selection)
			if err := cfg.Save(*configPath); err != nil {
				log.Printf("Failed to save selection: %v", err)
			} else {
				log.Printf("Saved selection %s %v to %s", cfg.Camera.Selection, cfg.Camera.Highlight, *configPath)
			}
		}
	})
	window.SetKeyCallback(func(w *glfw.Window, key glfw.Key, _ int, action glfw.Action, _ glfw.ModifierKey) {
		if key == glfw.KeyEscape && action == glfw.Press {
			w.SetShouldClose(true)
		}
	})

	var (
		frames    int
		lastTitle = time.Now()
	)
	for !window.ShouldClose() {
		stats := engine.Draw(ctrl.Snapshot())
		metrics.ObserveFrame(surface, stats)
		window.SwapBuffers()
		glfw.PollEvents()

		frames++
		if elapsed := time.Since(lastTitle); elapsed >= time.Second {
			window.SetTitle(Title(ctrl.Snapshot(), filters, float64(frames)/elapsed.Seconds()))
			frames = 0
			lastTitle = time.Now()
		}
	}
}
