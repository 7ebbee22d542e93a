package render

import (
	"math"

	"github.com/unklstewy/orbit-globe/pkg/gfx/soft"
	"github.com/unklstewy/orbit-globe/pkg/linalg"
)

// RegisterKernels installs the Go versions of the earth and orbit shaders on
// a software backend. They follow the GLSL in shaders/.
func RegisterKernels(be *soft.Backend) {
	be.RegisterVertex(earthVertex)
	be.RegisterFragment(earthFragment)
	be.RegisterVertex(orbitVertex)
	be.RegisterFragment(orbitFragment)
}

// NewSoftBackend returns a software backend with the render kernels
// registered.
func NewSoftBackend(width, height int) *soft.Backend {
	be := soft.New(width, height)
	RegisterKernels(be)
	return be
}

func viewProjection(u soft.Uniforms) linalg.Mat4 {
	return linalg.Mul(u.Mat4("u_projection"), u.Mat4("u_view"))
}

func clipPosition(mvp linalg.Mat4, p []float32) linalg.Vec4 {
	return linalg.Transform(linalg.Vec4{float64(p[0]), float64(p[1]), float64(p[2]), 1}, mvp)
}

var earthVertex = soft.VertexKernel{
	Name:       "earth-vs",
	Attributes: []string{"a_position", "a_uv"},
	Uniforms:   []string{"u_projection", "u_view"},
	Varyings:   2,
	Bind: func(u soft.Uniforms) soft.VertexFunc {
		mvp := viewProjection(u)
		return func(attrs [][]float32, v []float64) linalg.Vec4 {
			uv := attrs[1]
			v[0], v[1] = float64(uv[0]), float64(uv[1])
			return clipPosition(mvp, attrs[0])
		}
	},
}

var earthFragment = soft.FragmentKernel{
	Name:     "earth-fs",
	Uniforms: []string{"u_texture"},
	Varyings: 2,
	Bind: func(u soft.Uniforms) soft.FragmentFunc {
		tex := u.Sampler("u_texture")
		return func(v []float64) (soft.Color, bool) {
			return tex.Sample(v[0], v[1]), true
		}
	},
}

var orbitVertex = soft.VertexKernel{
	Name:       "orbit-vs",
	Attributes: []string{"a_position", "a_M", "a_mm"},
	Uniforms:   []string{"u_projection", "u_view", "u_time"},
	Varyings:   1,
	Bind: func(u soft.Uniforms) soft.VertexFunc {
		mvp := viewProjection(u)
		t := u.Float("u_time")
		return func(attrs [][]float32, v []float64) linalg.Vec4 {
			v[0] = TrailPhase(float64(attrs[1][0]), float64(attrs[2][0]), t)
			return clipPosition(mvp, attrs[0])
		}
	},
}

var orbitFragment = soft.FragmentKernel{
	Name:     "orbit-fs",
	Uniforms: []string{"u_color", "u_highlight", "u_offset"},
	Varyings: 1,
	Bind: func(u soft.Uniforms) soft.FragmentFunc {
		c := u.Vec3("u_color")
		highlight := u.Float("u_highlight")
		offset := u.Float("u_offset")
		return func(v []float64) (soft.Color, bool) {
			a := TrailAlpha(v[0], highlight, offset)
			return soft.Color{float32(c[0]), float32(c[1]), float32(c[2]), float32(a)}, true
		}
	},
}

// TrailPhase is the number of turns a ring vertex with phase anomaly m lies
// ahead of its satellite at orbit time t (ms), for mean motion mm.
func TrailPhase(m, mm, t float64) float64 {
	return (m - 360*mm*t/(1000*86400)) / 360
}

// TrailAlpha is the line opacity at the given phase. It peaks just behind the
// satellite and fades to offset over one revolution.
func TrailAlpha(phase, highlight, offset float64) float64 {
	d := phase - math.Floor(phase)
	d *= d
	d *= d
	return highlight * (offset + (1-offset)*d)
}
