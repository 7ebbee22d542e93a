package render

import (
	"fmt"

	"github.com/unklstewy/orbit-globe/pkg/camera"
	"github.com/unklstewy/orbit-globe/pkg/gfx"
	"github.com/unklstewy/orbit-globe/pkg/linalg"
	"github.com/unklstewy/orbit-globe/pkg/orbit"
)

// OrbitSamples is the number of segments each orbit ring is drawn with.
const OrbitSamples = 128

// orbitVertexFloats is position(3) + phase anomaly(1) + mean motion(1).
const orbitVertexFloats = 5

// LineStyle is how one category's rings are drawn.
type LineStyle struct {
	Color     linalg.Vec3
	Highlight float64
	Offset    float64
	Width     float32
}

// Styles for the three selection cases.
var (
	StyleAll        = LineStyle{Color: linalg.Vec3{0.3, 0.6, 1.0}, Highlight: 1, Offset: 0.1, Width: 2}
	StyleSelected   = LineStyle{Color: linalg.Vec3{0.4, 0.7, 1.0}, Highlight: 1, Offset: 0.2, Width: 4}
	StyleUnselected = LineStyle{Color: linalg.Vec3{0.1, 0.0, 0.03}, Highlight: 0.2, Offset: 0, Width: 1}
)

// StyleFor picks the style of a category under sel.
func StyleFor(sel camera.Selection, set string) LineStyle {
	switch sel.Mode() {
	case camera.ShowAll:
		return StyleAll
	case camera.ShowSubset:
		if sel.Contains(set) {
			return StyleSelected
		}
	}
	return StyleUnselected
}

type orbitSet struct {
	name     string
	buffer   gfx.Buffer
	vertices int
}

// OrbitLines draws one ring per satellite, one vertex buffer per category.
type OrbitLines struct {
	be     gfx.Backend
	shader *gfx.Shader
	sets   []orbitSet
}

// RingVertices samples o at OrbitSamples points and returns them as line
// segment pairs: every interior sample appears twice, the first and last
// once. The last sample closes the ring at sample 0's position.
func RingVertices(o orbit.Orbit) []float32 {
	out := make([]float32, 0, 2*OrbitSamples*orbitVertexFloats)
	for i := 0; i <= OrbitSamples; i++ {
		e := 360 * float64(i) / OrbitSamples
		p := orbit.PositionAt(o, float64(i%OrbitSamples)*360/OrbitSamples).Scale(1.0 / 1000)
		m := orbit.MeanAnomalyAt(o, e) - o.M0 + 360
		v := []float32{float32(p[0]), float32(p[1]), float32(p[2]), float32(m), float32(o.MeanMotion)}

		out = append(out, v...)
		if i > 0 && i < OrbitSamples {
			out = append(out, v...)
		}
	}
	return out
}

// NewOrbitLines builds the ring buffers for every orbit in c.
func NewOrbitLines(be gfx.Backend, src gfx.SourceSet, c *orbit.Catalog) (*OrbitLines, error) {
	shader, err := gfx.NewShader(be, src, orbitProgram)
	if err != nil {
		return nil, fmt.Errorf("failed to build orbit shader: %w", err)
	}

	l := &OrbitLines{be: be, shader: shader}
	for _, name := range c.Sets() {
		orbits := c.Orbits(name)
		data := make([]float32, 0, len(orbits)*2*OrbitSamples*orbitVertexFloats)
		for _, o := range orbits {
			data = append(data, RingVertices(o)...)
		}

		buf := be.CreateBuffer()
		be.BindBuffer(gfx.ArrayBuffer, buf)
		be.BufferFloat32(gfx.ArrayBuffer, data)
		l.sets = append(l.sets, orbitSet{name: name, buffer: buf, vertices: len(data) / orbitVertexFloats})
	}
	return l, nil
}

// Draw renders every category in name order at orbit time t (ms).
func (l *OrbitLines) Draw(projection, view linalg.Mat4, t float64, sel camera.Selection) {
	be := l.be

	l.shader.Enable()
	be.BlendFunc(gfx.SrcAlpha, gfx.One)
	be.Enable(gfx.DepthTest)
	be.DepthMask(false)
	be.Disable(gfx.CullFace)

	l.shader.SetMatrix("u_projection", projection)
	l.shader.SetMatrix("u_view", view)
	l.shader.SetFloat("u_time", t)

	for _, s := range l.sets {
		if s.vertices == 0 {
			continue
		}
		style := StyleFor(sel, s.name)
		l.shader.SetVec3("u_color", style.Color)
		l.shader.SetFloat("u_highlight", style.Highlight)
		l.shader.SetFloat("u_offset", style.Offset)
		be.LineWidth(style.Width)

		be.BindBuffer(gfx.ArrayBuffer, s.buffer)
		l.shader.ApplyVertexLayout()
		be.DrawArrays(gfx.Lines, 0, s.vertices)
	}

	l.shader.Disable()
	be.DepthMask(true)
}

// Sets returns the category names in draw order.
func (l *OrbitLines) Sets() []string {
	names := make([]string, len(l.sets))
	for i, s := range l.sets {
		names[i] = s.name
	}
	return names
}

// VertexCount returns the number of line vertices uploaded for a category.
func (l *OrbitLines) VertexCount(set string) int {
	for _, s := range l.sets {
		if s.name == set {
			return s.vertices
		}
	}
	return 0
}
