// Package camera holds the orbiting-camera state the render engine consumes
// and the controller that turns pointer and keyboard input into it.
package camera

import (
	"math"
	"sync"

	"github.com/unklstewy/orbit-globe/pkg/linalg"
)

// Defaults and limits, in km and degrees.
const (
	DefaultDistance = 15000.0
	DefaultYaw      = 0.0
	DefaultPitch    = 10.0

	MinDistance = 10000.0
	MaxDistance = 200000.0

	MaxPitch = 90.0

	// DragThreshold is how far the pointer must travel from the press point
	// before a press becomes a drag.
	DragThreshold = 3.0

	// TurntableScale is the rotation in degrees for a drag across the full
	// viewport height.
	TurntableScale = 100.0
)

// Wheel step factors for the two common scroll event flavours.
const (
	WheelDeltaScale  = 0.0001
	WheelDetailScale = -0.003
)

// State is what the render engine needs from the camera for one frame.
type State struct {
	// Distance from Earth's center in km.
	Distance float64
	// Pitch about the x axis and Yaw about the y axis, in degrees.
	Pitch float64
	Yaw   float64

	Selection Selection
}

// DefaultState returns the initial camera.
func DefaultState() State {
	return State{
		Distance:  DefaultDistance,
		Pitch:     DefaultPitch,
		Yaw:       DefaultYaw,
		Selection: All(),
	}
}

// Limits bound the camera. The zero value is replaced by the package limits.
type Limits struct {
	MinDistance float64
	MaxDistance float64
	MaxPitch    float64
}

func (l Limits) withDefaults() Limits {
	if l.MinDistance <= 0 {
		l.MinDistance = MinDistance
	}
	if l.MaxDistance <= 0 {
		l.MaxDistance = MaxDistance
	}
	if l.MaxPitch <= 0 {
		l.MaxPitch = MaxPitch
	}
	return l
}

// Clamp returns s with distance and pitch pulled inside l. Zero fields of l
// fall back to the package limits.
func (l Limits) Clamp(s State) State {
	l = l.withDefaults()
	s.Distance = clamp(s.Distance, l.MinDistance, l.MaxDistance)
	s.Pitch = clamp(s.Pitch, -l.MaxPitch, l.MaxPitch)
	return s
}

// Controller owns the camera state and applies input to it. Methods are safe
// to call from an input goroutine while another goroutine takes snapshots.
type Controller struct {
	mu     sync.Mutex
	state  State
	limits Limits

	pressed  bool
	dragging bool
	anchor   linalg.Vec2
	last     linalg.Vec2
	hasLast  bool
}

// NewController returns a controller starting at initial.
func NewController(initial State, limits Limits) *Controller {
	c := &Controller{limits: limits.withDefaults()}
	c.state = c.limits.Clamp(initial)
	return c
}

// Snapshot returns the current state.
func (c *Controller) Snapshot() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// Scroll zooms by d: positive d moves closer. Distance is clamped to the
// controller limits.
func (c *Controller) Scroll(d float64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.state.Distance = clamp(c.state.Distance*(1-d), c.limits.MinDistance, c.limits.MaxDistance)
}

// Turntable rotates by a pointer delta measured in the same units as
// viewportHeight.
func (c *Controller) Turntable(delta linalg.Vec2, viewportHeight float64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.turntable(delta, viewportHeight)
}

func (c *Controller) turntable(delta linalg.Vec2, viewportHeight float64) {
	if viewportHeight <= 0 {
		return
	}
	d := delta.Scale(TurntableScale / viewportHeight)
	c.state.Yaw += d[0]
	c.state.Pitch = clamp(c.state.Pitch+d[1], -c.limits.MaxPitch, c.limits.MaxPitch)
}

// MouseDown starts a potential drag at p.
func (c *Controller) MouseDown(p linalg.Vec2) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.pressed = true
	c.anchor = p
}

// MouseUp ends any press or drag. Leaving the viewport counts as a release.
func (c *Controller) MouseUp() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.pressed = false
	c.dragging = false
	c.hasLast = false
}

// MouseMove tracks the pointer. Once the pointer has moved more than
// DragThreshold from the press point, every move rotates the camera.
func (c *Controller) MouseMove(p linalg.Vec2, viewportHeight float64) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.dragging && c.hasLast {
		c.turntable(p.Sub(c.last), viewportHeight)
	}
	if c.pressed && !c.dragging {
		delta := p.Sub(c.anchor)
		if delta.Len() > DragThreshold {
			c.dragging = true
			c.turntable(delta, viewportHeight)
		}
	}
	c.last = p
	c.hasLast = true
}

// Dragging reports whether a drag is in progress.
func (c *Controller) Dragging() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.dragging
}

// SetSelection replaces the display-set filter.
func (c *Controller) SetSelection(sel Selection) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.state.Selection = sel
}

// Toggle flips one category in or out of the selection.
func (c *Controller) Toggle(set string) Selection {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.state.Selection = c.state.Selection.Toggle(set)
	return c.state.Selection
}

// ShowAll clears the filter.
func (c *Controller) ShowAll() { c.SetSelection(All()) }

// HideAll dims every category.
func (c *Controller) HideAll() { c.SetSelection(None()) }

// Reset restores distance and orientation, keeping the selection.
func (c *Controller) Reset() {
	c.mu.Lock()
	defer c.mu.Unlock()
	sel := c.state.Selection
	c.state = DefaultState()
	c.state.Selection = sel
}

func clamp(v, lo, hi float64) float64 {
	return math.Max(lo, math.Min(hi, v))
}
