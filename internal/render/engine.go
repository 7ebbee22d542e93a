// Package render draws the Earth and the satellite orbit rings through a
// gfx.Backend. The Engine owns one Globe and one OrbitLines and produces a
// frame per Draw call from a camera.State.
package render

import (
	"fmt"
	"image"
	"math"
	"time"

	"github.com/unklstewy/orbit-globe/pkg/camera"
	"github.com/unklstewy/orbit-globe/pkg/gfx"
	"github.com/unklstewy/orbit-globe/pkg/linalg"
	"github.com/unklstewy/orbit-globe/pkg/orbit"
)

// Engine defaults.
const (
	DefaultTimeWarp = 100.0
	DefaultAutoSpin = 1.0

	FieldOfView = 65.0
	NearPlane   = 5.0
	FarPlane    = 400000.0
)

// DefaultClearColor is the background.
var DefaultClearColor = [4]float32{0.02, 0, 0, 0}

// EngineOptions tunes the engine. Zero fields take the defaults.
type EngineOptions struct {
	// TimeWarp multiplies elapsed catalog time.
	TimeWarp float64
	// AutoSpin is the idle camera spin in degrees per wall-clock second.
	// Negative disables spinning.
	AutoSpin   float64
	ClearColor *[4]float32
	Globe      GlobeOptions
}

func (o EngineOptions) withDefaults() EngineOptions {
	if o.TimeWarp == 0 {
		o.TimeWarp = DefaultTimeWarp
	}
	if o.AutoSpin == 0 {
		o.AutoSpin = DefaultAutoSpin
	}
	if o.AutoSpin < 0 {
		o.AutoSpin = 0
	}
	if o.ClearColor == nil {
		c := DefaultClearColor
		o.ClearColor = &c
	}
	return o
}

// FrameStats describes one drawn frame.
type FrameStats struct {
	Width, Height int
	// OrbitTime is the warped catalog time in ms.
	OrbitTime float64
	Duration  time.Duration
	Skipped   bool
}

// Engine renders frames. It is not safe for concurrent use.
type Engine struct {
	be      gfx.Backend
	canvas  gfx.Canvas
	catalog *orbit.Catalog
	opts    EngineOptions

	globe  *Globe
	orbits *OrbitLines
}

// NewEngine builds both renderers and sets the fixed pipeline state.
func NewEngine(be gfx.Backend, canvas gfx.Canvas, src gfx.SourceSet, texture image.Image, c *orbit.Catalog, opts EngineOptions) (*Engine, error) {
	if c == nil {
		return nil, fmt.Errorf("engine needs a catalog")
	}
	opts = opts.withDefaults()

	globe, err := NewGlobe(be, src, texture, opts.Globe)
	if err != nil {
		return nil, fmt.Errorf("failed to create globe: %w", err)
	}
	orbits, err := NewOrbitLines(be, src, c)
	if err != nil {
		return nil, fmt.Errorf("failed to create orbit lines: %w", err)
	}

	be.Enable(gfx.Blend)
	cc := opts.ClearColor
	be.ClearColor(cc[0], cc[1], cc[2], cc[3])

	return &Engine{
		be:      be,
		canvas:  canvas,
		catalog: c,
		opts:    opts,
		globe:   globe,
		orbits:  orbits,
	}, nil
}

// OrbitTime returns the warped catalog time in ms.
func (e *Engine) OrbitTime() float64 {
	return float64(e.catalog.ElapsedTime().Milliseconds()) * e.opts.TimeWarp
}

// Spin returns the idle camera rotation in degrees.
func (e *Engine) Spin() float64 {
	secs := float64(e.catalog.Now().UnixMilli()) / 1000
	return math.Mod(secs*e.opts.AutoSpin, 360)
}

// Projection returns the perspective for a w by h canvas.
func Projection(w, h int) linalg.Mat4 {
	return linalg.Perspective(FieldOfView, float64(w)/float64(h), NearPlane, FarPlane)
}

// View returns the camera matrix for state with the given extra yaw spin.
func View(state camera.State, spin float64) linalg.Mat4 {
	return linalg.MulAll(
		linalg.Translation(linalg.Vec3{0, 0, -state.Distance}),
		linalg.Rotation(linalg.XAxis, state.Pitch),
		linalg.Rotation(linalg.YAxis, spin+state.Yaw),
	)
}

// Draw renders one frame. A zero-area canvas skips the frame.
func (e *Engine) Draw(state camera.State) FrameStats {
	start := time.Now()
	w, h := e.canvas.Size()
	stats := FrameStats{Width: w, Height: h}
	if w <= 0 || h <= 0 {
		stats.Skipped = true
		return stats
	}

	e.be.Viewport(0, 0, w, h)
	e.be.Clear(gfx.ColorBufferBit | gfx.DepthBufferBit)

	t := e.OrbitTime()
	projection := Projection(w, h)
	view := View(state, e.Spin())

	e.globe.Draw(projection, view, t)
	e.orbits.Draw(projection, view, t, state.Selection)

	stats.OrbitTime = t
	stats.Duration = time.Since(start)
	return stats
}

// Catalog returns the catalog the engine draws.
func (e *Engine) Catalog() *orbit.Catalog { return e.catalog }

// Sets returns the drawn category names in draw order.
func (e *Engine) Sets() []string { return e.orbits.Sets() }
