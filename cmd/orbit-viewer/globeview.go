package main

import (
	"github.com/gdamore/tcell/v2"
	"github.com/rivo/tview"

	"github.com/unklstewy/orbit-globe/internal/observability"
	"github.com/unklstewy/orbit-globe/internal/render"
	"github.com/unklstewy/orbit-globe/pkg/camera"
	"github.com/unklstewy/orbit-globe/pkg/gfx/soft"
	"github.com/unklstewy/orbit-globe/pkg/linalg"
)

// Input steps.
const (
	ScrollStep = 0.1  // fraction of the distance per wheel notch
	KeyTurn    = 5.0  // pixels of virtual drag per arrow key
	halfBlock  = '▀'
	surface    = "terminal"
)

// GlobeView is a tview primitive that renders the engine through the
// software backend. Each cell shows two pixels: the upper one as the
// foreground of a half block and the lower one as its background.
type GlobeView struct {
	*tview.Box

	engine     *render.Engine
	backend    *soft.Backend
	controller *camera.Controller
	metrics    *observability.RenderCollector

	last render.FrameStats
}

// NewGlobeView wraps an engine drawing into backend.
func NewGlobeView(engine *render.Engine, backend *soft.Backend, controller *camera.Controller, metrics *observability.RenderCollector) *GlobeView {
	g := &GlobeView{
		Box:        tview.NewBox(),
		engine:     engine,
		backend:    backend,
		controller: controller,
		metrics:    metrics,
	}
	g.SetBorder(true).SetTitle(" Orbits ")
	return g
}

// LastFrame returns the stats of the most recent Draw.
func (g *GlobeView) LastFrame() render.FrameStats { return g.last }

// Draw renders one frame into the inner rectangle.
func (g *GlobeView) Draw(screen tcell.Screen) {
	g.Box.DrawForSubclass(screen, g)

	x, y, width, height := g.GetInnerRect()
	if width <= 0 || height <= 0 {
		return
	}

	g.backend.Resize(width, 2*height)
	g.last = g.engine.Draw(g.controller.Snapshot())
	g.metrics.ObserveFrame(surface, g.last)
	if g.last.Skipped {
		return
	}

	for row := 0; row < height; row++ {
		for col := 0; col < width; col++ {
			top := g.backend.RGBA(col, 2*row)
			bottom := g.backend.RGBA(col, 2*row+1)
			style := tcell.StyleDefault.
				Foreground(tcell.NewRGBColor(int32(top.R), int32(top.G), int32(top.B))).
				Background(tcell.NewRGBColor(int32(bottom.R), int32(bottom.G), int32(bottom.B)))
			screen.SetContent(x+col, y+row, halfBlock, nil, style)
		}
	}
}

// pixel converts a screen position to framebuffer pixels.
func (g *GlobeView) pixel(sx, sy int) linalg.Vec2 {
	x, y, _, _ := g.GetInnerRect()
	return linalg.Vec2{float64(sx - x), float64(2 * (sy - y))}
}

func (g *GlobeView) pixelHeight() float64 {
	_, _, _, h := g.GetInnerRect()
	return float64(2 * h)
}

// MouseHandler turns drags into turntable rotation and the wheel into zoom.
// The view captures the mouse while the left button is held so a drag can
// leave the rectangle.
func (g *GlobeView) MouseHandler() func(action tview.MouseAction, event *tcell.EventMouse, setFocus func(p tview.Primitive)) (consumed bool, capture tview.Primitive) {
	return g.WrapMouseHandler(func(action tview.MouseAction, event *tcell.EventMouse, setFocus func(p tview.Primitive)) (consumed bool, capture tview.Primitive) {
		mx, my := event.Position()
		held := event.Buttons()&tcell.Button1 != 0
		if !g.InRect(mx, my) && !held && !g.controller.Dragging() {
			return false, nil
		}

		p := g.pixel(mx, my)
		switch action {
		case tview.MouseLeftDown:
			setFocus(g)
			g.controller.MouseDown(p)
			return true, g
		case tview.MouseMove:
			g.controller.MouseMove(p, g.pixelHeight())
			if held {
				return true, g
			}
			return true, nil
		case tview.MouseLeftUp:
			g.controller.MouseUp()
			return true, nil
		case tview.MouseScrollUp:
			g.controller.Scroll(ScrollStep)
			return true, nil
		case tview.MouseScrollDown:
			g.controller.Scroll(-ScrollStep)
			return true, nil
		}
		return false, nil
	})
}

// InputHandler rotates with the arrow keys while the globe has focus.
func (g *GlobeView) InputHandler() func(event *tcell.EventKey, setFocus func(p tview.Primitive)) {
	return g.WrapInputHandler(func(event *tcell.EventKey, setFocus func(p tview.Primitive)) {
		h := g.pixelHeight()
		switch event.Key() {
		case tcell.KeyLeft:
			g.controller.Turntable(linalg.Vec2{-KeyTurn, 0}, h)
		case tcell.KeyRight:
			g.controller.Turntable(linalg.Vec2{KeyTurn, 0}, h)
		case tcell.KeyUp:
			g.controller.Turntable(linalg.Vec2{0, -KeyTurn}, h)
		case tcell.KeyDown:
			g.controller.Turntable(linalg.Vec2{0, KeyTurn}, h)
		}
	})
}
