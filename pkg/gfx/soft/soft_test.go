package soft_test

import (
	"image"
	"image/color"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/unklstewy/orbit-globe/pkg/gfx"
	"github.com/unklstewy/orbit-globe/pkg/gfx/soft"
	"github.com/unklstewy/orbit-globe/pkg/linalg"
)

var testSources = gfx.MapSource{
	"flat-vs":  "#pragma kernel flat-vs\nvoid main() {}",
	"flat-fs":  "#pragma kernel flat-fs\nvoid main() {}",
	"tex-vs":   "#pragma kernel tex-vs",
	"tex-fs":   "#pragma kernel tex-fs",
	"nopr-vs":  "void main() {}",
	"nopr-fs":  "void main() {}",
	"mixed-vs": "#pragma kernel flat-vs",
	"mixed-fs": "#pragma kernel tex-fs",
}

func newTestBackend(w, h int) *soft.Backend {
	be := soft.New(w, h)
	be.RegisterVertex(soft.VertexKernel{
		Name:       "flat-vs",
		Attributes: []string{"a_position"},
		Bind: func(u soft.Uniforms) soft.VertexFunc {
			return func(attrs [][]float32, _ []float64) linalg.Vec4 {
				p := attrs[0]
				return linalg.Vec4{float64(p[0]), float64(p[1]), float64(p[2]), 1}
			}
		},
	})
	be.RegisterFragment(soft.FragmentKernel{
		Name:     "flat-fs",
		Uniforms: []string{"u_color", "u_alpha"},
		Bind: func(u soft.Uniforms) soft.FragmentFunc {
			c := u.Vec3("u_color")
			a := float32(u.Float("u_alpha"))
			return func([]float64) (soft.Color, bool) {
				return soft.Color{float32(c[0]), float32(c[1]), float32(c[2]), a}, true
			}
		},
	})
	be.RegisterVertex(soft.VertexKernel{
		Name:       "tex-vs",
		Attributes: []string{"a_position", "a_uv"},
		Varyings:   2,
		Bind: func(u soft.Uniforms) soft.VertexFunc {
			return func(attrs [][]float32, v []float64) linalg.Vec4 {
				p, uv := attrs[0], attrs[1]
				v[0], v[1] = float64(uv[0]), float64(uv[1])
				return linalg.Vec4{float64(p[0]), float64(p[1]), float64(p[2]), 1}
			}
		},
	})
	be.RegisterFragment(soft.FragmentKernel{
		Name:     "tex-fs",
		Uniforms: []string{"u_texture"},
		Varyings: 2,
		Bind: func(u soft.Uniforms) soft.FragmentFunc {
			s := u.Sampler("u_texture")
			return func(v []float64) (soft.Color, bool) {
				return s.Sample(v[0], v[1]), true
			}
		},
	})
	return be
}

var flatSpec = gfx.ProgramSpec{
	ID:         "flat",
	Attributes: []gfx.Attribute{{Name: "a_position", Size: 3}},
	Uniforms:   []string{"u_color", "u_alpha"},
}

// drawFlat uploads verts and draws them with the flat program.
func drawFlat(t *testing.T, be *soft.Backend, mode gfx.Primitive, rgb linalg.Vec3, alpha float64, verts []float32) {
	t.Helper()
	s, err := gfx.NewShader(be, testSources, flatSpec)
	require.NoError(t, err)

	buf := be.CreateBuffer()
	be.BindBuffer(gfx.ArrayBuffer, buf)
	be.BufferFloat32(gfx.ArrayBuffer, verts)

	s.Enable()
	s.ApplyVertexLayout()
	s.SetVec3("u_color", rgb)
	s.SetFloat("u_alpha", alpha)
	be.DrawArrays(mode, 0, len(verts)/3)
	s.Disable()
}

// Counter-clockwise in normalized device coordinates.
var frontTriangle = []float32{
	-0.5, -0.5, 0,
	0.5, -0.5, 0,
	0, 0.5, 0,
}

func TestClear(t *testing.T) {
	be := newTestBackend(4, 3)
	be.ClearColor(0.2, 0.4, 0.6, 1)
	be.Clear(gfx.ColorBufferBit | gfx.DepthBufferBit)

	w, h := be.Size()
	assert.Equal(t, 4, w)
	assert.Equal(t, 3, h)
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			assert.Equal(t, soft.Color{0.2, 0.4, 0.6, 1}, be.At(x, y))
			assert.Equal(t, float32(1), be.DepthAt(x, y))
		}
	}

	img := be.Image()
	assert.Equal(t, color.RGBA{R: 51, G: 102, B: 153, A: 255}, img.RGBAAt(0, 0))
}

func TestTriangleCoversCenter(t *testing.T) {
	be := newTestBackend(8, 8)
	be.Clear(gfx.ColorBufferBit)
	drawFlat(t, be, gfx.Triangles, linalg.Vec3{1, 0, 0}, 1, frontTriangle)

	assert.Equal(t, soft.Color{1, 0, 0, 1}, be.At(4, 4))
	assert.Equal(t, soft.Color{}, be.At(0, 0), "corner stays clear")
	assert.Equal(t, soft.Color{}, be.At(7, 0), "apex row corner stays clear")
}

func TestImageIsTopDown(t *testing.T) {
	be := newTestBackend(8, 8)
	// Upper half of the screen in NDC.
	drawFlat(t, be, gfx.Triangles, linalg.Vec3{0, 1, 0}, 1, []float32{
		-1, 0, 0, 1, 0, 0, 1, 1, 0,
		-1, 0, 0, 1, 1, 0, -1, 1, 0,
	})
	assert.Equal(t, soft.Color{0, 1, 0, 1}, be.At(3, 1))
	assert.Equal(t, soft.Color{}, be.At(3, 6))
}

func TestBackFaceCulling(t *testing.T) {
	back := []float32{
		-0.5, -0.5, 0,
		0, 0.5, 0,
		0.5, -0.5, 0,
	}

	be := newTestBackend(8, 8)
	be.Enable(gfx.CullFace)
	drawFlat(t, be, gfx.Triangles, linalg.Vec3{1, 1, 1}, 1, back)
	assert.Equal(t, soft.Color{}, be.At(4, 4))

	be.Disable(gfx.CullFace)
	drawFlat(t, be, gfx.Triangles, linalg.Vec3{1, 1, 1}, 1, back)
	assert.Equal(t, soft.Color{1, 1, 1, 1}, be.At(4, 4))
}

func TestDepthTest(t *testing.T) {
	near := []float32{-1, -1, -0.5, 1, -1, -0.5, 0, 1, -0.5}
	far := []float32{-1, -1, 0.5, 1, -1, 0.5, 0, 1, 0.5}

	t.Run("far after near is rejected", func(t *testing.T) {
		be := newTestBackend(8, 8)
		be.Enable(gfx.DepthTest)
		be.Clear(gfx.DepthBufferBit)
		drawFlat(t, be, gfx.Triangles, linalg.Vec3{1, 0, 0}, 1, near)
		drawFlat(t, be, gfx.Triangles, linalg.Vec3{0, 0, 1}, 1, far)
		assert.Equal(t, soft.Color{1, 0, 0, 1}, be.At(4, 4))
		assert.InDelta(t, 0.25, be.DepthAt(4, 4), 1e-6)
	})

	t.Run("depth mask off keeps depth", func(t *testing.T) {
		be := newTestBackend(8, 8)
		be.Enable(gfx.DepthTest)
		be.DepthMask(false)
		drawFlat(t, be, gfx.Triangles, linalg.Vec3{1, 0, 0}, 1, near)
		assert.Equal(t, float32(1), be.DepthAt(4, 4))
		drawFlat(t, be, gfx.Triangles, linalg.Vec3{0, 0, 1}, 1, far)
		assert.Equal(t, soft.Color{0, 0, 1, 1}, be.At(4, 4))
	})

	t.Run("outside the clip volume", func(t *testing.T) {
		be := newTestBackend(8, 8)
		drawFlat(t, be, gfx.Triangles, linalg.Vec3{1, 0, 0}, 1, []float32{-1, -1, 2, 1, -1, 2, 0, 1, 2})
		assert.Equal(t, soft.Color{}, be.At(4, 4))
	})
}

func TestBlending(t *testing.T) {
	be := newTestBackend(8, 8)
	be.ClearColor(0.2, 0.2, 0.2, 1)
	be.Clear(gfx.ColorBufferBit)
	be.Enable(gfx.Blend)

	be.BlendFunc(gfx.SrcAlpha, gfx.One)
	drawFlat(t, be, gfx.Triangles, linalg.Vec3{1, 0, 0}, 0.5, frontTriangle)
	got := be.At(4, 4)
	assert.InDelta(t, 0.7, got[0], 1e-6)
	assert.InDelta(t, 0.2, got[1], 1e-6)

	be.BlendFunc(gfx.SrcAlpha, gfx.OneMinusSrcAlpha)
	drawFlat(t, be, gfx.Triangles, linalg.Vec3{0, 0, 1}, 0.25, frontTriangle)
	got = be.At(4, 4)
	assert.InDelta(t, 0.7*0.75, got[0], 1e-6)
	assert.InDelta(t, 0.2*0.75+0.25, got[2], 1e-6)
}

func TestLines(t *testing.T) {
	be := newTestBackend(9, 9)
	drawFlat(t, be, gfx.Lines, linalg.Vec3{1, 1, 0}, 1, []float32{-1, 0, 0, 1, 0, 0})

	lit := 0
	for x := 0; x < 9; x++ {
		if be.At(x, 4) == (soft.Color{1, 1, 0, 1}) {
			lit++
		}
	}
	assert.Equal(t, 9, lit, "horizontal line spans the row")
	assert.Equal(t, soft.Color{}, be.At(4, 2))

	be = newTestBackend(9, 9)
	be.LineWidth(3)
	drawFlat(t, be, gfx.Lines, linalg.Vec3{1, 1, 0}, 1, []float32{-1, 0, 0, 1, 0, 0})
	assert.Equal(t, soft.Color{1, 1, 0, 1}, be.At(4, 3))
	assert.Equal(t, soft.Color{1, 1, 0, 1}, be.At(4, 5))
	assert.Equal(t, soft.Color{}, be.At(4, 1))
}

func TestLineClippedAtNearPlane(t *testing.T) {
	be := newTestBackend(9, 9)
	// The second endpoint lies behind the near plane (z < -w).
	drawFlat(t, be, gfx.Lines, linalg.Vec3{1, 1, 1}, 1, []float32{-1, 0, 0, 1, 0, -3})
	assert.Equal(t, soft.Color{1, 1, 1, 1}, be.At(0, 4))
	assert.Equal(t, soft.Color{}, be.At(8, 4))
}

func TestTextureSampling(t *testing.T) {
	be := newTestBackend(8, 8)
	s, err := gfx.NewShader(be, testSources, gfx.ProgramSpec{
		ID:         "tex",
		Attributes: []gfx.Attribute{{Name: "a_position", Size: 3}, {Name: "a_uv", Size: 2}},
		Uniforms:   []string{"u_texture"},
	})
	require.NoError(t, err)

	img := image.NewNRGBA(image.Rect(0, 0, 2, 1))
	img.Set(0, 0, color.NRGBA{R: 255, A: 255})
	img.Set(1, 0, color.NRGBA{B: 255, A: 255})
	tex := be.CreateTexture()
	be.BindTexture(0, tex)
	be.TexImage(img, gfx.Nearest)

	buf := be.CreateBuffer()
	be.BindBuffer(gfx.ArrayBuffer, buf)
	be.BufferFloat32(gfx.ArrayBuffer, []float32{
		-1, -1, 0, 0, 0,
		1, -1, 0, 1, 0,
		1, 1, 0, 1, 1,
		-1, 1, 0, 0, 1,
	})
	ibuf := be.CreateBuffer()
	be.BindBuffer(gfx.ElementArrayBuffer, ibuf)
	be.BufferUint16(gfx.ElementArrayBuffer, []uint16{0, 1, 2, 0, 2, 3})

	s.Enable()
	s.ApplyVertexLayout()
	s.SetInt("u_texture", 0)
	be.DrawElements(gfx.Triangles, 6, 0)
	s.Disable()

	assert.Equal(t, soft.Color{1, 0, 0, 1}, be.At(1, 4))
	assert.Equal(t, soft.Color{0, 0, 1, 1}, be.At(6, 4))
}

func TestUnboundTextureSamplesBlack(t *testing.T) {
	be := newTestBackend(4, 4)
	be.ClearColor(1, 1, 1, 1)
	be.Clear(gfx.ColorBufferBit)
	s, err := gfx.NewShader(be, testSources, gfx.ProgramSpec{
		ID:         "tex",
		Attributes: []gfx.Attribute{{Name: "a_position", Size: 3}, {Name: "a_uv", Size: 2}},
	})
	require.NoError(t, err)

	buf := be.CreateBuffer()
	be.BindBuffer(gfx.ArrayBuffer, buf)
	be.BufferFloat32(gfx.ArrayBuffer, []float32{-1, -1, 0, 0, 0, 3, -1, 0, 0, 0, -1, 3, 0, 0, 0})
	s.Enable()
	s.ApplyVertexLayout()
	be.DrawArrays(gfx.Triangles, 0, 3)
	s.Disable()

	assert.Equal(t, soft.Color{0, 0, 0, 1}, be.At(2, 2))
}

func TestCompileAndLinkErrors(t *testing.T) {
	be := newTestBackend(2, 2)

	_, err := gfx.NewShader(be, testSources, gfx.ProgramSpec{ID: "nopr"})
	var ce *gfx.CompileError
	require.ErrorAs(t, err, &ce)
	assert.Equal(t, gfx.VertexStage, ce.Stage)

	_, err = gfx.NewShader(be, testSources, gfx.ProgramSpec{ID: "mixed"})
	var le *gfx.LinkError
	require.ErrorAs(t, err, &le)
	assert.Contains(t, le.Log, "varying count mismatch")

}

func TestUnusedAttributeHasNoLocation(t *testing.T) {
	be := newTestBackend(2, 2)

	s, err := gfx.NewShader(be, testSources, gfx.ProgramSpec{
		ID:         "flat",
		Attributes: []gfx.Attribute{{Name: "a_normal", Size: 3}},
	})
	require.NoError(t, err)
	assert.Equal(t, gfx.NoLocation, s.Layout().Attribs[0].Location)
}

func TestViewportRestrictsDrawing(t *testing.T) {
	be := newTestBackend(8, 8)
	be.Viewport(0, 0, 4, 8)
	drawFlat(t, be, gfx.Triangles, linalg.Vec3{1, 0, 0}, 1, []float32{
		-1, -1, 0, 1, -1, 0, 1, 1, 0,
		-1, -1, 0, 1, 1, 0, -1, 1, 0,
	})
	assert.Equal(t, soft.Color{1, 0, 0, 1}, be.At(2, 4))
	assert.Equal(t, soft.Color{}, be.At(6, 4))
}
