package soft

import (
	"github.com/unklstewy/orbit-globe/pkg/linalg"
)

// Color is a linear RGBA color with components in [0, 1].
type Color [4]float32

// Sampler reads a bound texture at normalized coordinates.
type Sampler interface {
	Sample(u, v float64) Color
}

// Uniforms reads the current program's uniform values by name. Unknown
// names read as zero.
type Uniforms interface {
	Mat4(name string) linalg.Mat4
	Float(name string) float64
	Int(name string) int
	Vec3(name string) linalg.Vec3
	// Sampler returns the texture bound to the unit named by an integer
	// uniform.
	Sampler(name string) Sampler
}

// VertexFunc transforms one vertex. attrs holds the program's attributes in
// declaration order; varyings must be filled in. It returns the clip-space
// position.
type VertexFunc func(attrs [][]float32, varyings []float64) linalg.Vec4

// FragmentFunc shades one fragment from interpolated varyings. Returning
// false discards the fragment.
type FragmentFunc func(varyings []float64) (Color, bool)

// VertexKernel is the Go implementation of a vertex shader. A shader source
// selects it with a "#pragma kernel <Name>" line.
type VertexKernel struct {
	Name       string
	Attributes []string
	Uniforms   []string
	Varyings   int
	// Bind is called once per draw call with the program's uniforms.
	Bind func(u Uniforms) VertexFunc
}

// FragmentKernel is the Go implementation of a fragment shader.
type FragmentKernel struct {
	Name     string
	Uniforms []string
	Varyings int
	Bind     func(u Uniforms) FragmentFunc
}

type uniformValue struct {
	f [16]float32
	i int32
}

type programUniforms struct {
	be *Backend
	p  *program
}

func (u programUniforms) value(name string) *uniformValue {
	loc, ok := u.p.uniforms[name]
	if !ok {
		return &uniformValue{}
	}
	return &u.p.values[loc]
}

func (u programUniforms) Mat4(name string) linalg.Mat4 {
	v := u.value(name)
	var m linalg.Mat4
	for i := range m {
		m[i] = float64(v.f[i])
	}
	return m
}

func (u programUniforms) Float(name string) float64 { return float64(u.value(name).f[0]) }

func (u programUniforms) Int(name string) int { return int(u.value(name).i) }

func (u programUniforms) Vec3(name string) linalg.Vec3 {
	v := u.value(name)
	return linalg.Vec3{float64(v.f[0]), float64(v.f[1]), float64(v.f[2])}
}

func (u programUniforms) Sampler(name string) Sampler {
	unit := u.Int(name)
	if unit < 0 || unit >= len(u.be.units) {
		return missingTexture{}
	}
	tex, ok := u.be.textures[u.be.units[unit]]
	if !ok || tex.width == 0 {
		return missingTexture{}
	}
	return tex
}

// missingTexture samples as opaque black, like an incomplete GL texture.
type missingTexture struct{}

func (missingTexture) Sample(u, v float64) Color { return Color{0, 0, 0, 1} }
