//go:build opengl

// Package opengl implements gfx.Backend over desktop OpenGL 2.1, the closest
// desktop match to WebGL 1. A context must be current on the calling thread
// before Init and for every later call.
package opengl

import (
	"fmt"
	"image"
	"image/draw"
	"strings"

	"github.com/go-gl/gl/v2.1/gl"

	"github.com/unklstewy/orbit-globe/pkg/gfx"
)

// Init loads the GL function pointers for the current context and returns
// the driver's version string.
func Init() (string, error) {
	if err := gl.Init(); err != nil {
		return "", fmt.Errorf("failed to initialize OpenGL: %w", err)
	}
	return gl.GoStr(gl.GetString(gl.VERSION)), nil
}

// Backend issues gl calls directly. Handles map one to one onto GL names.
type Backend struct{}

// New returns a backend for the current context.
func New() *Backend { return &Backend{} }

var _ gfx.Backend = (*Backend)(nil)

func cstr(s string) *uint8 { return gl.Str(s + "\x00") }

func infoLog(length int32, read func(int32, *uint8)) string {
	log := strings.Repeat("\x00", int(length+1))
	read(length, gl.Str(log))
	return strings.TrimRight(log, "\x00")
}

func (b *Backend) CompileShader(stage gfx.ShaderStage, source string) (gfx.ShaderObject, error) {
	kind := uint32(gl.VERTEX_SHADER)
	if stage == gfx.FragmentStage {
		kind = gl.FRAGMENT_SHADER
	}
	shader := gl.CreateShader(kind)
	csrc, free := gl.Strs(source + "\x00")
	gl.ShaderSource(shader, 1, csrc, nil)
	free()
	gl.CompileShader(shader)

	var status int32
	gl.GetShaderiv(shader, gl.COMPILE_STATUS, &status)
	if status == gl.FALSE {
		var n int32
		gl.GetShaderiv(shader, gl.INFO_LOG_LENGTH, &n)
		log := infoLog(n, func(n int32, buf *uint8) { gl.GetShaderInfoLog(shader, n, nil, buf) })
		gl.DeleteShader(shader)
		return 0, fmt.Errorf("%s", log)
	}
	return gfx.ShaderObject(shader), nil
}

func (b *Backend) LinkProgram(vs, fs gfx.ShaderObject) (gfx.Program, error) {
	prog := gl.CreateProgram()
	gl.AttachShader(prog, uint32(vs))
	gl.AttachShader(prog, uint32(fs))
	gl.LinkProgram(prog)

	var status int32
	gl.GetProgramiv(prog, gl.LINK_STATUS, &status)
	if status == gl.FALSE {
		var n int32
		gl.GetProgramiv(prog, gl.INFO_LOG_LENGTH, &n)
		log := infoLog(n, func(n int32, buf *uint8) { gl.GetProgramInfoLog(prog, n, nil, buf) })
		gl.DeleteProgram(prog)
		return 0, fmt.Errorf("%s", log)
	}
	return gfx.Program(prog), nil
}

func (b *Backend) AttribLocation(p gfx.Program, name string) int {
	return int(gl.GetAttribLocation(uint32(p), cstr(name)))
}

func (b *Backend) UniformLocation(p gfx.Program, name string) int {
	return int(gl.GetUniformLocation(uint32(p), cstr(name)))
}

func (b *Backend) UseProgram(p gfx.Program) { gl.UseProgram(uint32(p)) }

func (b *Backend) CreateBuffer() gfx.Buffer {
	var buf uint32
	gl.GenBuffers(1, &buf)
	return gfx.Buffer(buf)
}

func target(t gfx.BufferTarget) uint32 {
	if t == gfx.ElementArrayBuffer {
		return gl.ELEMENT_ARRAY_BUFFER
	}
	return gl.ARRAY_BUFFER
}

func (b *Backend) BindBuffer(t gfx.BufferTarget, buf gfx.Buffer) {
	gl.BindBuffer(target(t), uint32(buf))
}

func (b *Backend) BufferFloat32(t gfx.BufferTarget, data []float32) {
	if len(data) == 0 {
		gl.BufferData(target(t), 0, nil, gl.STATIC_DRAW)
		return
	}
	gl.BufferData(target(t), len(data)*4, gl.Ptr(data), gl.STATIC_DRAW)
}

func (b *Backend) BufferUint16(t gfx.BufferTarget, data []uint16) {
	if len(data) == 0 {
		gl.BufferData(target(t), 0, nil, gl.STATIC_DRAW)
		return
	}
	gl.BufferData(target(t), len(data)*2, gl.Ptr(data), gl.STATIC_DRAW)
}

func (b *Backend) CreateTexture() gfx.Texture {
	var tex uint32
	gl.GenTextures(1, &tex)
	return gfx.Texture(tex)
}

func (b *Backend) BindTexture(unit int, t gfx.Texture) {
	gl.ActiveTexture(gl.TEXTURE0 + uint32(unit))
	gl.BindTexture(gl.TEXTURE_2D, uint32(t))
}

// TexImage uploads img as RGBA8 with repeat wrapping. v = 0 is the first
// image row, as in the software backend.
func (b *Backend) TexImage(img image.Image, filter gfx.Filter) {
	bounds := img.Bounds()
	w, h := bounds.Dx(), bounds.Dy()
	rgba := image.NewRGBA(image.Rect(0, 0, w, h))
	draw.Draw(rgba, rgba.Bounds(), img, bounds.Min, draw.Src)

	f := int32(gl.LINEAR)
	if filter == gfx.Nearest {
		f = gl.NEAREST
	}
	gl.ActiveTexture(gl.TEXTURE0)
	gl.PixelStorei(gl.UNPACK_ALIGNMENT, 1)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_MIN_FILTER, f)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_MAG_FILTER, f)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_WRAP_S, gl.REPEAT)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_WRAP_T, gl.REPEAT)
	gl.TexImage2D(gl.TEXTURE_2D, 0, gl.RGBA, int32(w), int32(h), 0, gl.RGBA, gl.UNSIGNED_BYTE, gl.Ptr(rgba.Pix))
}

func (b *Backend) Uniform1f(loc int, v float32) { gl.Uniform1f(int32(loc), v) }

func (b *Backend) Uniform1i(loc int, v int32) { gl.Uniform1i(int32(loc), v) }

func (b *Backend) Uniform3f(loc int, x, y, z float32) { gl.Uniform3f(int32(loc), x, y, z) }

// UniformMatrix4 uploads m, which is already column-major.
func (b *Backend) UniformMatrix4(loc int, m [16]float32) {
	gl.UniformMatrix4fv(int32(loc), 1, false, &m[0])
}

func (b *Backend) EnableVertexAttrib(loc int) {
	if loc >= 0 {
		gl.EnableVertexAttribArray(uint32(loc))
	}
}

func (b *Backend) DisableVertexAttrib(loc int) {
	if loc >= 0 {
		gl.DisableVertexAttribArray(uint32(loc))
	}
}

func (b *Backend) VertexAttribPointer(loc, size, stride, offset int) {
	if loc < 0 {
		return
	}
	gl.VertexAttribPointer(uint32(loc), int32(size), gl.FLOAT, false, int32(stride), gl.PtrOffset(offset))
}

func primitive(p gfx.Primitive) uint32 {
	if p == gfx.Lines {
		return gl.LINES
	}
	return gl.TRIANGLES
}

func (b *Backend) DrawArrays(mode gfx.Primitive, first, count int) {
	gl.DrawArrays(primitive(mode), int32(first), int32(count))
}

func (b *Backend) DrawElements(mode gfx.Primitive, count, offset int) {
	gl.DrawElements(primitive(mode), int32(count), gl.UNSIGNED_SHORT, gl.PtrOffset(offset))
}

func capability(c gfx.Capability) uint32 {
	switch c {
	case gfx.Blend:
		return gl.BLEND
	case gfx.DepthTest:
		return gl.DEPTH_TEST
	default:
		return gl.CULL_FACE
	}
}

func (b *Backend) Enable(c gfx.Capability)  { gl.Enable(capability(c)) }
func (b *Backend) Disable(c gfx.Capability) { gl.Disable(capability(c)) }

func factor(f gfx.BlendFactor) uint32 {
	switch f {
	case gfx.One:
		return gl.ONE
	case gfx.SrcAlpha:
		return gl.SRC_ALPHA
	case gfx.OneMinusSrcAlpha:
		return gl.ONE_MINUS_SRC_ALPHA
	default:
		return gl.ZERO
	}
}

func (b *Backend) BlendFunc(src, dst gfx.BlendFactor) { gl.BlendFunc(factor(src), factor(dst)) }

func (b *Backend) DepthMask(on bool) { gl.DepthMask(on) }

func (b *Backend) LineWidth(w float32) { gl.LineWidth(w) }

func (b *Backend) Viewport(x, y, w, h int) {
	gl.Viewport(int32(x), int32(y), int32(w), int32(h))
}

func (b *Backend) ClearColor(r, g, bl, a float32) { gl.ClearColor(r, g, bl, a) }

func (b *Backend) Clear(mask gfx.ClearMask) {
	var bits uint32
	if mask&gfx.ColorBufferBit != 0 {
		bits |= gl.COLOR_BUFFER_BIT
	}
	if mask&gfx.DepthBufferBit != 0 {
		bits |= gl.DEPTH_BUFFER_BIT
	}
	gl.Clear(bits)
}
