package soft

import (
	"math"

	"github.com/unklstewy/orbit-globe/pkg/gfx"
	"github.com/unklstewy/orbit-globe/pkg/linalg"
)

// clipVertex is a vertex after the vertex kernel.
type clipVertex struct {
	pos  linalg.Vec4
	vary []float64
}

// screenVertex is a vertex in window space. y grows upwards as in OpenGL.
type screenVertex struct {
	x, y, z float64
	invW    float64
	vary    []float64
}

// drawState is the per-draw-call setup shared by triangles and lines.
type drawState struct {
	b        *Backend
	fragment FragmentFunc
	varyings int
	scratch  []float64
	x0, y0   int
	x1, y1   int
}

func (b *Backend) DrawArrays(mode gfx.Primitive, first, count int) {
	if count <= 0 || first < 0 {
		return
	}
	idx := make([]int, count)
	for i := range idx {
		idx[i] = first + i
	}
	b.draw(mode, idx)
}

func (b *Backend) DrawElements(mode gfx.Primitive, count, offset int) {
	buf := b.boundBuffer(gfx.ElementArrayBuffer)
	if buf == nil || count <= 0 {
		return
	}
	start := offset / 2
	if start+count > len(buf.indices) {
		count = len(buf.indices) - start
	}
	if count <= 0 {
		return
	}
	idx := make([]int, count)
	for i := range idx {
		idx[i] = int(buf.indices[start+i])
	}
	b.draw(mode, idx)
}

func (b *Backend) draw(mode gfx.Primitive, indices []int) {
	p := b.current
	if p == nil || b.width == 0 || b.height == 0 {
		return
	}

	uniforms := programUniforms{be: b, p: p}
	vertexFn := p.vertex.Bind(uniforms)
	ds := &drawState{
		b:        b,
		fragment: p.fragment.Bind(uniforms),
		varyings: p.vertex.Varyings,
		scratch:  make([]float64, p.vertex.Varyings),
	}
	ds.x0 = max(b.viewport[0], 0)
	ds.y0 = max(b.viewport[1], 0)
	ds.x1 = min(b.viewport[0]+b.viewport[2], b.width)
	ds.y1 = min(b.viewport[1]+b.viewport[3], b.height)
	if ds.x0 >= ds.x1 || ds.y0 >= ds.y1 {
		return
	}

	cache := make(map[int]clipVertex, len(indices))
	attrs := make([][]float32, len(p.vertex.Attributes))
	shade := func(i int) (clipVertex, bool) {
		if v, ok := cache[i]; ok {
			return v, true
		}
		for loc := range attrs {
			a := b.attribs[loc]
			if !a.enabled {
				return clipVertex{}, false
			}
			buf := b.buffers[a.buffer]
			if buf == nil {
				return clipVertex{}, false
			}
			start := (a.offset + i*a.stride) / 4
			if start < 0 || start+a.size > len(buf.floats) {
				return clipVertex{}, false
			}
			attrs[loc] = buf.floats[start : start+a.size]
		}
		v := clipVertex{vary: make([]float64, ds.varyings)}
		v.pos = vertexFn(attrs, v.vary)
		cache[i] = v
		return v, true
	}

	switch mode {
	case gfx.Triangles:
		for i := 0; i+2 < len(indices); i += 3 {
			a, okA := shade(indices[i])
			c1, okB := shade(indices[i+1])
			c2, okC := shade(indices[i+2])
			if okA && okB && okC {
				ds.triangle(a, c1, c2)
			}
		}
	case gfx.Lines:
		for i := 0; i+1 < len(indices); i += 2 {
			a, okA := shade(indices[i])
			c, okB := shade(indices[i+1])
			if okA && okB {
				ds.line(a, c)
			}
		}
	}
}

// nearDistance is the signed distance to the near clip plane (z = -w).
func nearDistance(v clipVertex) float64 { return v.pos[2] + v.pos[3] }

func lerpVertex(a, c clipVertex, t float64) clipVertex {
	out := clipVertex{vary: make([]float64, len(a.vary))}
	for i := range out.pos {
		out.pos[i] = a.pos[i] + (c.pos[i]-a.pos[i])*t
	}
	for i := range out.vary {
		out.vary[i] = a.vary[i] + (c.vary[i]-a.vary[i])*t
	}
	return out
}

// clipNear clips a polygon against the near plane (Sutherland-Hodgman).
func clipNear(poly []clipVertex) []clipVertex {
	var out []clipVertex
	for i := range poly {
		cur := poly[i]
		nxt := poly[(i+1)%len(poly)]
		dc, dn := nearDistance(cur), nearDistance(nxt)
		if dc >= 0 {
			out = append(out, cur)
		}
		if (dc >= 0) != (dn >= 0) {
			out = append(out, lerpVertex(cur, nxt, dc/(dc-dn)))
		}
	}
	return out
}

func (ds *drawState) toScreen(v clipVertex) screenVertex {
	vp := ds.b.viewport
	invW := 1 / v.pos[3]
	nx, ny, nz := v.pos[0]*invW, v.pos[1]*invW, v.pos[2]*invW
	return screenVertex{
		x:    float64(vp[0]) + (nx+1)/2*float64(vp[2]),
		y:    float64(vp[1]) + (ny+1)/2*float64(vp[3]),
		z:    (nz + 1) / 2,
		invW: invW,
		vary: v.vary,
	}
}

func (ds *drawState) triangle(a, b, c clipVertex) {
	poly := []clipVertex{a, b, c}
	if nearDistance(a) < 0 || nearDistance(b) < 0 || nearDistance(c) < 0 {
		poly = clipNear(poly)
	}
	if len(poly) < 3 {
		return
	}
	screen := make([]screenVertex, len(poly))
	for i, v := range poly {
		if v.pos[3] <= 0 {
			return
		}
		screen[i] = ds.toScreen(v)
	}
	for i := 1; i+1 < len(screen); i++ {
		ds.fillTriangle(screen[0], screen[i], screen[i+1])
	}
}

func edge(a, b screenVertex, px, py float64) float64 {
	return (b.x-a.x)*(py-a.y) - (b.y-a.y)*(px-a.x)
}

func (ds *drawState) fillTriangle(v0, v1, v2 screenVertex) {
	area := edge(v0, v1, v2.x, v2.y)
	if area == 0 {
		return
	}
	// Counter-clockwise in window space is front facing.
	if ds.b.cullFace && area < 0 {
		return
	}

	minX := int(math.Floor(math.Min(v0.x, math.Min(v1.x, v2.x))))
	maxX := int(math.Ceil(math.Max(v0.x, math.Max(v1.x, v2.x))))
	minY := int(math.Floor(math.Min(v0.y, math.Min(v1.y, v2.y))))
	maxY := int(math.Ceil(math.Max(v0.y, math.Max(v1.y, v2.y))))
	minX, minY = max(minX, ds.x0), max(minY, ds.y0)
	maxX, maxY = min(maxX, ds.x1-1), min(maxY, ds.y1-1)

	for py := minY; py <= maxY; py++ {
		cy := float64(py) + 0.5
		for px := minX; px <= maxX; px++ {
			cx := float64(px) + 0.5
			w0 := edge(v1, v2, cx, cy) / area
			w1 := edge(v2, v0, cx, cy) / area
			w2 := edge(v0, v1, cx, cy) / area
			if w0 < 0 || w1 < 0 || w2 < 0 {
				continue
			}

			z := w0*v0.z + w1*v1.z + w2*v2.z
			p0, p1, p2 := w0*v0.invW, w1*v1.invW, w2*v2.invW
			norm := 1 / (p0 + p1 + p2)
			for i := range ds.scratch {
				ds.scratch[i] = (p0*v0.vary[i] + p1*v1.vary[i] + p2*v2.vary[i]) * norm
			}
			ds.fragmentAt(px, py, z)
		}
	}
}

// clipSegment clips a line against the near plane. It reports false when
// the segment is entirely behind it.
func clipSegment(a, b clipVertex) (clipVertex, clipVertex, bool) {
	da, db := nearDistance(a), nearDistance(b)
	switch {
	case da < 0 && db < 0:
		return a, b, false
	case da < 0:
		a = lerpVertex(a, b, da/(da-db))
	case db < 0:
		b = lerpVertex(b, a, db/(db-da))
	}
	return a, b, a.pos[3] > 0 && b.pos[3] > 0
}

func (ds *drawState) line(a, b clipVertex) {
	a, b, ok := clipSegment(a, b)
	if !ok {
		return
	}
	s0, s1 := ds.toScreen(a), ds.toScreen(b)

	dx, dy := s1.x-s0.x, s1.y-s0.y
	steps := int(math.Ceil(math.Max(math.Abs(dx), math.Abs(dy))))
	if steps < 1 {
		steps = 1
	}
	// Limit work for segments that project far outside the viewport.
	if limit := 4 * (ds.b.width + ds.b.height); steps > limit {
		steps = limit
	}

	xMajor := math.Abs(dx) >= math.Abs(dy)
	width := int(math.Round(ds.b.lineWidth))
	lo := -(width - 1) / 2
	hi := lo + width - 1

	for i := 0; i <= steps; i++ {
		t := float64(i) / float64(steps)
		x := s0.x + dx*t
		y := s0.y + dy*t
		z := s0.z + (s1.z-s0.z)*t

		q0, q1 := (1-t)*s0.invW, t*s1.invW
		norm := 1 / (q0 + q1)
		for k := range ds.scratch {
			ds.scratch[k] = (q0*s0.vary[k] + q1*s1.vary[k]) * norm
		}

		px, py := int(math.Floor(x)), int(math.Floor(y))
		for o := lo; o <= hi; o++ {
			if xMajor {
				ds.fragmentAt(px, py+o, z)
			} else {
				ds.fragmentAt(px+o, py, z)
			}
		}
	}
}

func (ds *drawState) fragmentAt(px, py int, z float64) {
	if px < ds.x0 || px >= ds.x1 || py < ds.y0 || py >= ds.y1 {
		return
	}
	if z < 0 || z > 1 {
		return
	}

	b := ds.b
	idx := (b.height-1-py)*b.width + px
	if b.depthTest && float32(z) >= b.depth[idx] {
		return
	}

	src, keep := ds.fragment(ds.scratch)
	if !keep {
		return
	}
	if b.blend {
		src = blend(src, b.color[idx], b.blendSrc, b.blendDst)
	}
	for i := range src {
		src[i] = clamp01(src[i])
	}
	b.color[idx] = src
	if b.depthTest && b.depthWrite {
		b.depth[idx] = float32(z)
	}
}

func factor(f gfx.BlendFactor, srcAlpha float32) float32 {
	switch f {
	case gfx.One:
		return 1
	case gfx.SrcAlpha:
		return srcAlpha
	case gfx.OneMinusSrcAlpha:
		return 1 - srcAlpha
	default:
		return 0
	}
}

func blend(src, dst Color, sf, df gfx.BlendFactor) Color {
	fs := factor(sf, src[3])
	fd := factor(df, src[3])
	var out Color
	for i := range out {
		out[i] = src[i]*fs + dst[i]*fd
	}
	return out
}

func clamp01(v float32) float32 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
