// Package soft is a software implementation of gfx.Backend. It rasterizes
// into an in-memory RGBA framebuffer, with Go kernels standing in for GLSL
// programs, so frames can be produced without a GPU: in a terminal, behind an
// HTTP endpoint, or in tests.
package soft

import (
	"bufio"
	"fmt"
	"image"
	"image/color"
	"strings"

	"github.com/unklstewy/orbit-globe/pkg/gfx"
)

const (
	maxAttribs      = 16
	maxTextureUnits = 8
	kernelPragma    = "#pragma kernel"
)

type shaderObject struct {
	stage    gfx.ShaderStage
	vertex   *VertexKernel
	fragment *FragmentKernel
}

type program struct {
	vertex   *VertexKernel
	fragment *FragmentKernel
	attribs  map[string]int
	uniforms map[string]int
	values   []uniformValue
}

type buffer struct {
	floats  []float32
	indices []uint16
}

type attribState struct {
	enabled bool
	buffer  gfx.Buffer
	size    int
	stride  int
	offset  int
}

// Backend is a software gfx.Backend. It is not safe for concurrent use.
type Backend struct {
	width, height int
	color         []Color
	depth         []float32

	viewport   [4]int
	clearColor Color

	blend, depthTest, cullFace bool
	depthWrite                 bool
	blendSrc, blendDst         gfx.BlendFactor
	lineWidth                  float64

	vertexKernels   map[string]*VertexKernel
	fragmentKernels map[string]*FragmentKernel

	next     uint32
	shaders  map[gfx.ShaderObject]*shaderObject
	programs map[gfx.Program]*program
	current  *program
	buffers  map[gfx.Buffer]*buffer
	bound    [2]gfx.Buffer
	attribs  [maxAttribs]attribState
	textures map[gfx.Texture]*texture
	units    [maxTextureUnits]gfx.Texture
}

// New returns a backend with a width×height framebuffer.
func New(width, height int) *Backend {
	b := &Backend{
		depthWrite:      true,
		blendSrc:        gfx.One,
		blendDst:        gfx.Zero,
		lineWidth:       1,
		vertexKernels:   make(map[string]*VertexKernel),
		fragmentKernels: make(map[string]*FragmentKernel),
		shaders:         make(map[gfx.ShaderObject]*shaderObject),
		programs:        make(map[gfx.Program]*program),
		buffers:         make(map[gfx.Buffer]*buffer),
		textures:        make(map[gfx.Texture]*texture),
	}
	b.Resize(width, height)
	b.viewport = [4]int{0, 0, b.width, b.height}
	return b
}

// RegisterVertex makes a vertex kernel available to shader sources.
func (b *Backend) RegisterVertex(k VertexKernel) {
	kk := k
	b.vertexKernels[k.Name] = &kk
}

// RegisterFragment makes a fragment kernel available to shader sources.
func (b *Backend) RegisterFragment(k FragmentKernel) {
	kk := k
	b.fragmentKernels[k.Name] = &kk
}

// Resize reallocates the framebuffer. Contents are lost when the size
// changes.
func (b *Backend) Resize(width, height int) {
	if width < 0 {
		width = 0
	}
	if height < 0 {
		height = 0
	}
	if width == b.width && height == b.height && b.color != nil {
		return
	}
	b.width, b.height = width, height
	b.color = make([]Color, width*height)
	b.depth = make([]float32, width*height)
	for i := range b.depth {
		b.depth[i] = 1
	}
}

// Size implements gfx.Canvas.
func (b *Backend) Size() (int, int) { return b.width, b.height }

// At returns the framebuffer color at column x, row y, counted from the top
// left corner.
func (b *Backend) At(x, y int) Color {
	if x < 0 || y < 0 || x >= b.width || y >= b.height {
		return Color{}
	}
	return b.color[y*b.width+x]
}

// DepthAt returns the depth buffer value at column x, row y from the top.
func (b *Backend) DepthAt(x, y int) float32 {
	if x < 0 || y < 0 || x >= b.width || y >= b.height {
		return 1
	}
	return b.depth[y*b.width+x]
}

// Image returns the framebuffer as an opaque image, composited over black.
func (b *Backend) Image() *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, b.width, b.height))
	for i, c := range b.color {
		img.Pix[i*4+0] = to8(c[0])
		img.Pix[i*4+1] = to8(c[1])
		img.Pix[i*4+2] = to8(c[2])
		img.Pix[i*4+3] = 0xff
	}
	return img
}

// RGBA returns the color at x, y (top-left origin) as 8-bit RGB.
func (b *Backend) RGBA(x, y int) color.RGBA {
	c := b.At(x, y)
	return color.RGBA{R: to8(c[0]), G: to8(c[1]), B: to8(c[2]), A: 0xff}
}

func to8(v float32) uint8 {
	if v <= 0 {
		return 0
	}
	if v >= 1 {
		return 255
	}
	return uint8(v*255 + 0.5)
}

func (b *Backend) handle() uint32 {
	b.next++
	return b.next
}

func kernelName(source string) (string, bool) {
	scanner := bufio.NewScanner(strings.NewReader(source))
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if strings.HasPrefix(line, kernelPragma) {
			name := strings.TrimSpace(strings.TrimPrefix(line, kernelPragma))
			return name, name != ""
		}
	}
	return "", false
}

// CompileShader resolves the source's kernel pragma against the registered
// kernels.
func (b *Backend) CompileShader(stage gfx.ShaderStage, source string) (gfx.ShaderObject, error) {
	name, ok := kernelName(source)
	if !ok {
		return 0, fmt.Errorf("%s source has no %q directive", stage, kernelPragma)
	}

	obj := &shaderObject{stage: stage}
	switch stage {
	case gfx.VertexStage:
		if obj.vertex = b.vertexKernels[name]; obj.vertex == nil {
			return 0, fmt.Errorf("unknown vertex kernel %q", name)
		}
	case gfx.FragmentStage:
		if obj.fragment = b.fragmentKernels[name]; obj.fragment == nil {
			return 0, fmt.Errorf("unknown fragment kernel %q", name)
		}
	default:
		return 0, fmt.Errorf("unsupported shader stage %d", stage)
	}

	h := gfx.ShaderObject(b.handle())
	b.shaders[h] = obj
	return h, nil
}

// LinkProgram pairs a vertex and a fragment kernel.
func (b *Backend) LinkProgram(vs, fs gfx.ShaderObject) (gfx.Program, error) {
	v, f := b.shaders[vs], b.shaders[fs]
	if v == nil || v.vertex == nil {
		return 0, fmt.Errorf("shader %d is not a compiled vertex shader", vs)
	}
	if f == nil || f.fragment == nil {
		return 0, fmt.Errorf("shader %d is not a compiled fragment shader", fs)
	}
	if v.vertex.Varyings != f.fragment.Varyings {
		return 0, fmt.Errorf("varying count mismatch: %s writes %d, %s reads %d",
			v.vertex.Name, v.vertex.Varyings, f.fragment.Name, f.fragment.Varyings)
	}
	if len(v.vertex.Attributes) > maxAttribs {
		return 0, fmt.Errorf("%s uses %d attributes, max %d", v.vertex.Name, len(v.vertex.Attributes), maxAttribs)
	}

	p := &program{
		vertex:   v.vertex,
		fragment: f.fragment,
		attribs:  make(map[string]int),
		uniforms: make(map[string]int),
	}
	for i, name := range v.vertex.Attributes {
		p.attribs[name] = i
	}
	for _, names := range [][]string{v.vertex.Uniforms, f.fragment.Uniforms} {
		for _, name := range names {
			if _, ok := p.uniforms[name]; !ok {
				p.uniforms[name] = len(p.uniforms)
			}
		}
	}
	p.values = make([]uniformValue, len(p.uniforms))

	h := gfx.Program(b.handle())
	b.programs[h] = p
	return h, nil
}

func (b *Backend) AttribLocation(p gfx.Program, name string) int {
	prog := b.programs[p]
	if prog == nil {
		return gfx.NoLocation
	}
	if loc, ok := prog.attribs[name]; ok {
		return loc
	}
	return gfx.NoLocation
}

func (b *Backend) UniformLocation(p gfx.Program, name string) int {
	prog := b.programs[p]
	if prog == nil {
		return gfx.NoLocation
	}
	if loc, ok := prog.uniforms[name]; ok {
		return loc
	}
	return gfx.NoLocation
}

func (b *Backend) UseProgram(p gfx.Program) { b.current = b.programs[p] }

func (b *Backend) CreateBuffer() gfx.Buffer {
	h := gfx.Buffer(b.handle())
	b.buffers[h] = &buffer{}
	return h
}

func (b *Backend) BindBuffer(target gfx.BufferTarget, buf gfx.Buffer) {
	if target == gfx.ArrayBuffer || target == gfx.ElementArrayBuffer {
		b.bound[target] = buf
	}
}

func (b *Backend) boundBuffer(target gfx.BufferTarget) *buffer {
	return b.buffers[b.bound[target]]
}

func (b *Backend) BufferFloat32(target gfx.BufferTarget, data []float32) {
	if buf := b.boundBuffer(target); buf != nil {
		buf.floats = append([]float32(nil), data...)
	}
}

func (b *Backend) BufferUint16(target gfx.BufferTarget, data []uint16) {
	if buf := b.boundBuffer(target); buf != nil {
		buf.indices = append([]uint16(nil), data...)
	}
}

func (b *Backend) CreateTexture() gfx.Texture {
	h := gfx.Texture(b.handle())
	b.textures[h] = &texture{}
	return h
}

func (b *Backend) BindTexture(unit int, t gfx.Texture) {
	if unit >= 0 && unit < len(b.units) {
		b.units[unit] = t
	}
}

func (b *Backend) TexImage(img image.Image, filter gfx.Filter) {
	if _, ok := b.textures[b.units[0]]; ok {
		b.textures[b.units[0]] = newTexture(img, filter)
	}
}

func (b *Backend) uniform(loc int) *uniformValue {
	if b.current == nil || loc < 0 || loc >= len(b.current.values) {
		return nil
	}
	return &b.current.values[loc]
}

func (b *Backend) Uniform1f(loc int, v float32) {
	if u := b.uniform(loc); u != nil {
		u.f[0] = v
	}
}

func (b *Backend) Uniform1i(loc int, v int32) {
	if u := b.uniform(loc); u != nil {
		u.i = v
		u.f[0] = float32(v)
	}
}

func (b *Backend) Uniform3f(loc int, x, y, z float32) {
	if u := b.uniform(loc); u != nil {
		u.f[0], u.f[1], u.f[2] = x, y, z
	}
}

func (b *Backend) UniformMatrix4(loc int, m [16]float32) {
	if u := b.uniform(loc); u != nil {
		u.f = m
	}
}

func (b *Backend) EnableVertexAttrib(loc int) {
	if loc >= 0 && loc < maxAttribs {
		b.attribs[loc].enabled = true
	}
}

func (b *Backend) DisableVertexAttrib(loc int) {
	if loc >= 0 && loc < maxAttribs {
		b.attribs[loc].enabled = false
	}
}

// VertexAttribPointer captures the currently bound array buffer, as OpenGL
// does.
func (b *Backend) VertexAttribPointer(loc, size, stride, offset int) {
	if loc < 0 || loc >= maxAttribs {
		return
	}
	b.attribs[loc] = attribState{
		enabled: b.attribs[loc].enabled,
		buffer:  b.bound[gfx.ArrayBuffer],
		size:    size,
		stride:  stride,
		offset:  offset,
	}
}

func (b *Backend) Enable(c gfx.Capability)  { b.setCapability(c, true) }
func (b *Backend) Disable(c gfx.Capability) { b.setCapability(c, false) }

func (b *Backend) setCapability(c gfx.Capability, on bool) {
	switch c {
	case gfx.Blend:
		b.blend = on
	case gfx.DepthTest:
		b.depthTest = on
	case gfx.CullFace:
		b.cullFace = on
	}
}

func (b *Backend) BlendFunc(src, dst gfx.BlendFactor) { b.blendSrc, b.blendDst = src, dst }

func (b *Backend) DepthMask(on bool) { b.depthWrite = on }

func (b *Backend) LineWidth(w float32) {
	if w < 1 {
		w = 1
	}
	b.lineWidth = float64(w)
}

func (b *Backend) Viewport(x, y, w, h int) { b.viewport = [4]int{x, y, w, h} }

func (b *Backend) ClearColor(r, g, bl, a float32) { b.clearColor = Color{r, g, bl, a} }

// Clear resets the whole framebuffer regardless of the viewport.
func (b *Backend) Clear(mask gfx.ClearMask) {
	if mask&gfx.ColorBufferBit != 0 {
		for i := range b.color {
			b.color[i] = b.clearColor
		}
	}
	if mask&gfx.DepthBufferBit != 0 {
		for i := range b.depth {
			b.depth[i] = 1
		}
	}
}

var (
	_ gfx.Backend = (*Backend)(nil)
	_ gfx.Canvas  = (*Backend)(nil)
)
