// Package gfxtest provides a gfx.Backend that records every call, for tests
// that check what a renderer asks of the graphics API.
package gfxtest

import (
	"errors"
	"fmt"
	"image"
	"strings"

	"github.com/unklstewy/orbit-globe/pkg/gfx"
)

// Call is one recorded backend call.
type Call struct {
	Name string
	Args []interface{}
}

func (c Call) String() string {
	parts := make([]string, len(c.Args))
	for i, a := range c.Args {
		parts[i] = fmt.Sprint(a)
	}
	return c.Name + "(" + strings.Join(parts, ", ") + ")"
}

// Recorder is a gfx.Backend that accepts any source, hands out sequential
// handles and records calls. Attribute and uniform names resolve to stable
// locations per program.
type Recorder struct {
	Calls []Call

	// FailCompile makes CompileShader fail for sources containing it.
	FailCompile string
	// FailLink makes LinkProgram fail.
	FailLink bool
	// MissingAttribs are reported as absent from every program.
	MissingAttribs map[string]bool

	// UniformLookups counts UniformLocation queries per name.
	UniformLookups map[string]int

	// Uploads keeps the data passed to BufferFloat32 per buffer.
	Uploads map[gfx.Buffer][]float32
	// Indices keeps the data passed to BufferUint16 per buffer.
	Indices map[gfx.Buffer][]uint16

	next      uint32
	locations map[string]int
	bound     map[gfx.BufferTarget]gfx.Buffer
}

// NewRecorder returns an empty Recorder.
func NewRecorder() *Recorder {
	return &Recorder{
		UniformLookups: make(map[string]int),
		Uploads:        make(map[gfx.Buffer][]float32),
		Indices:        make(map[gfx.Buffer][]uint16),
		locations:      make(map[string]int),
		bound:          make(map[gfx.BufferTarget]gfx.Buffer),
	}
}

func (r *Recorder) record(name string, args ...interface{}) {
	r.Calls = append(r.Calls, Call{Name: name, Args: args})
}

func (r *Recorder) handle() uint32 {
	r.next++
	return r.next
}

func (r *Recorder) location(p gfx.Program, name string) int {
	key := fmt.Sprintf("%d/%s", p, name)
	if loc, ok := r.locations[key]; ok {
		return loc
	}
	loc := len(r.locations)
	r.locations[key] = loc
	return loc
}

// Named returns the recorded calls with the given name.
func (r *Recorder) Named(name string) []Call {
	var out []Call
	for _, c := range r.Calls {
		if c.Name == name {
			out = append(out, c)
		}
	}
	return out
}

// Reset forgets recorded calls but keeps handles and uploads.
func (r *Recorder) Reset() { r.Calls = nil }

func (r *Recorder) CompileShader(stage gfx.ShaderStage, source string) (gfx.ShaderObject, error) {
	r.record("CompileShader", stage)
	if r.FailCompile != "" && strings.Contains(source, r.FailCompile) {
		return 0, errors.New("syntax error")
	}
	return gfx.ShaderObject(r.handle()), nil
}

func (r *Recorder) LinkProgram(vs, fs gfx.ShaderObject) (gfx.Program, error) {
	r.record("LinkProgram", vs, fs)
	if r.FailLink {
		return 0, errors.New("varying mismatch")
	}
	return gfx.Program(r.handle()), nil
}

func (r *Recorder) AttribLocation(p gfx.Program, name string) int {
	if r.MissingAttribs[name] {
		return gfx.NoLocation
	}
	return r.location(p, name)
}

func (r *Recorder) UniformLocation(p gfx.Program, name string) int {
	r.UniformLookups[name]++
	return r.location(p, name)
}

func (r *Recorder) UseProgram(p gfx.Program) { r.record("UseProgram", p) }

func (r *Recorder) CreateBuffer() gfx.Buffer {
	b := gfx.Buffer(r.handle())
	r.record("CreateBuffer", b)
	return b
}

func (r *Recorder) BindBuffer(target gfx.BufferTarget, b gfx.Buffer) {
	r.bound[target] = b
	r.record("BindBuffer", target, b)
}

func (r *Recorder) BufferFloat32(target gfx.BufferTarget, data []float32) {
	b := r.bound[target]
	r.Uploads[b] = append([]float32(nil), data...)
	r.record("BufferFloat32", target, len(data))
}

func (r *Recorder) BufferUint16(target gfx.BufferTarget, data []uint16) {
	b := r.bound[target]
	r.Indices[b] = append([]uint16(nil), data...)
	r.record("BufferUint16", target, len(data))
}

func (r *Recorder) CreateTexture() gfx.Texture {
	t := gfx.Texture(r.handle())
	r.record("CreateTexture", t)
	return t
}

func (r *Recorder) BindTexture(unit int, t gfx.Texture) { r.record("BindTexture", unit, t) }

func (r *Recorder) TexImage(img image.Image, filter gfx.Filter) {
	r.record("TexImage", img.Bounds().Dx(), img.Bounds().Dy(), filter)
}

func (r *Recorder) Uniform1f(loc int, v float32) { r.record("Uniform1f", loc, v) }
func (r *Recorder) Uniform1i(loc int, v int32) { r.record("Uniform1i", loc, v) }
func (r *Recorder) Uniform3f(loc int, x, y, z float32) { r.record("Uniform3f", loc, x, y, z) }
func (r *Recorder) UniformMatrix4(loc int, m [16]float32) { r.record("UniformMatrix4", loc, m) }

func (r *Recorder) EnableVertexAttrib(loc int) { r.record("EnableVertexAttrib", loc) }
func (r *Recorder) DisableVertexAttrib(loc int) { r.record("DisableVertexAttrib", loc) }

func (r *Recorder) VertexAttribPointer(loc, size, stride, offset int) {
	r.record("VertexAttribPointer", loc, size, stride, offset)
}

func (r *Recorder) DrawArrays(mode gfx.Primitive, first, count int) {
	r.record("DrawArrays", mode, first, count)
}

func (r *Recorder) DrawElements(mode gfx.Primitive, count, offset int) {
	r.record("DrawElements", mode, count, offset)
}

func (r *Recorder) Enable(c gfx.Capability) { r.record("Enable", c) }
func (r *Recorder) Disable(c gfx.Capability) { r.record("Disable", c) }
func (r *Recorder) BlendFunc(src, dst gfx.BlendFactor) { r.record("BlendFunc", src, dst) }
func (r *Recorder) DepthMask(on bool) { r.record("DepthMask", on) }
func (r *Recorder) LineWidth(w float32) { r.record("LineWidth", w) }
func (r *Recorder) Viewport(x, y, w, h int) { r.record("Viewport", x, y, w, h) }
func (r *Recorder) ClearColor(red, g, b, a float32) { r.record("ClearColor", red, g, b, a) }
func (r *Recorder) Clear(mask gfx.ClearMask) { r.record("Clear", mask) }

var _ gfx.Backend = (*Recorder)(nil)
