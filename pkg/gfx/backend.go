// Package gfx defines the graphics capability set the renderers draw through
// and the shader binding layer that sits on top of it.
//
// A Backend is always passed explicitly. Two implementations ship with the
// module: a software rasterizer (package soft) and desktop OpenGL (package
// opengl, built with the opengl tag).
package gfx

import "image"

// Opaque handles issued by a Backend. Zero means "none".
type (
	ShaderObject uint32
	Program      uint32
	Buffer       uint32
	Texture      uint32
)

// NoTexture unbinds a texture unit.
const NoTexture Texture = 0

// ShaderStage is the pipeline stage a shader source belongs to.
type ShaderStage int

const (
	VertexStage ShaderStage = iota
	FragmentStage
)

func (s ShaderStage) String() string {
	if s == VertexStage {
		return "vertex"
	}
	return "fragment"
}

// BufferTarget is the binding point a buffer is attached to.
type BufferTarget int

const (
	ArrayBuffer BufferTarget = iota
	ElementArrayBuffer
)

// Capability is a toggleable pipeline feature.
type Capability int

const (
	Blend Capability = iota
	DepthTest
	CullFace
)

// BlendFactor is a blend equation coefficient.
type BlendFactor int

const (
	Zero BlendFactor = iota
	One
	SrcAlpha
	OneMinusSrcAlpha
)

// Primitive is the topology of a draw call.
type Primitive int

const (
	Triangles Primitive = iota
	Lines
)

// ClearMask selects the buffers Clear resets.
type ClearMask int

const (
	ColorBufferBit ClearMask = 1 << iota
	DepthBufferBit
)

// Filter is a texture minification/magnification filter.
type Filter int

const (
	Linear Filter = iota
	Nearest
)

// NoLocation is returned for attributes or uniforms the program does not
// use. Setting a uniform at NoLocation is a no-op, as in OpenGL.
const NoLocation = -1

// Backend is the capability set a renderer needs from a graphics API. It
// mirrors the small slice of OpenGL ES 2 the engine uses. Implementations are
// not safe for concurrent use.
type Backend interface {
	CompileShader(stage ShaderStage, source string) (ShaderObject, error)
	LinkProgram(vs, fs ShaderObject) (Program, error)
	AttribLocation(p Program, name string) int
	UniformLocation(p Program, name string) int
	UseProgram(p Program)

	CreateBuffer() Buffer
	BindBuffer(target BufferTarget, b Buffer)
	// BufferFloat32 and BufferUint16 upload to the buffer bound at target.
	BufferFloat32(target BufferTarget, data []float32)
	BufferUint16(target BufferTarget, data []uint16)

	CreateTexture() Texture
	// BindTexture attaches t to a texture unit; NoTexture unbinds.
	BindTexture(unit int, t Texture)
	// TexImage uploads img to the texture bound at unit 0.
	TexImage(img image.Image, filter Filter)

	Uniform1f(loc int, v float32)
	Uniform1i(loc int, v int32)
	Uniform3f(loc int, x, y, z float32)
	UniformMatrix4(loc int, m [16]float32)

	EnableVertexAttrib(loc int)
	DisableVertexAttrib(loc int)
	// VertexAttribPointer describes a float attribute in the bound array
	// buffer. stride and offset are in bytes.
	VertexAttribPointer(loc, size, stride, offset int)

	DrawArrays(mode Primitive, first, count int)
	// DrawElements draws count uint16 indices starting at byte offset in
	// the bound element array buffer.
	DrawElements(mode Primitive, count, offset int)

	Enable(c Capability)
	Disable(c Capability)
	BlendFunc(src, dst BlendFactor)
	DepthMask(on bool)
	LineWidth(w float32)
	Viewport(x, y, w, h int)
	ClearColor(r, g, b, a float32)
	Clear(mask ClearMask)
}

// Canvas reports the drawable size in pixels.
type Canvas interface {
	Size() (width, height int)
}
