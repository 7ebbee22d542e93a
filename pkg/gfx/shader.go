package gfx

import (
	"errors"
	"fmt"

	"github.com/unklstewy/orbit-globe/pkg/linalg"
)

// FloatSize is the byte width of one vertex attribute component.
const FloatSize = 4

var (
	// ErrSourceNotFound is returned when a shader source id is missing.
	ErrSourceNotFound = errors.New("shader source not found")
)

// CompileError carries the compiler log of a failed shader stage.
type CompileError struct {
	ID    string
	Stage ShaderStage
	Log   string
}

func (e *CompileError) Error() string {
	return fmt.Sprintf("failed to compile %s shader %q: %s", e.Stage, e.ID, e.Log)
}

// LinkError carries the linker log of a failed program.
type LinkError struct {
	ID  string
	Log string
}

func (e *LinkError) Error() string {
	return fmt.Sprintf("failed to link program %q: %s", e.ID, e.Log)
}

// Attribute declares one float vertex attribute and its component count.
type Attribute struct {
	Name string
	Size int
}

// AttribBinding is an attribute resolved against a program.
type AttribBinding struct {
	Name     string
	Location int
	Size     int
	// Offset in bytes from the start of a vertex.
	Offset int
}

// Layout is the interleaved vertex format of a program.
type Layout struct {
	Stride  int
	Attribs []AttribBinding
	Floats  int
}

// ComputeLayout assigns byte offsets to attrs in declaration order. Locations
// are left at NoLocation.
func ComputeLayout(attrs []Attribute) Layout {
	l := Layout{Attribs: make([]AttribBinding, len(attrs))}
	offset := 0
	for i, a := range attrs {
		l.Attribs[i] = AttribBinding{Name: a.Name, Location: NoLocation, Size: a.Size, Offset: offset}
		offset += a.Size * FloatSize
	}
	l.Stride = offset
	l.Floats = offset / FloatSize
	return l
}

// ProgramSpec names a program's sources and declares its inputs. Sources are
// looked up as ID+"-vs" and ID+"-fs".
type ProgramSpec struct {
	ID         string
	Attributes []Attribute
	Uniforms   []string
}

// Shader is a linked program plus its vertex layout and uniform locations.
// The uniform map is private to the shader.
type Shader struct {
	id       string
	be       Backend
	program  Program
	layout   Layout
	uniforms map[string]int
}

// NewShader compiles and links spec's sources and resolves its attributes
// and declared uniforms.
func NewShader(be Backend, sources SourceSet, spec ProgramSpec) (*Shader, error) {
	vsSrc, err := lookup(sources, spec.ID+"-vs")
	if err != nil {
		return nil, err
	}
	fsSrc, err := lookup(sources, spec.ID+"-fs")
	if err != nil {
		return nil, err
	}

	vs, err := be.CompileShader(VertexStage, vsSrc)
	if err != nil {
		return nil, &CompileError{ID: spec.ID, Stage: VertexStage, Log: err.Error()}
	}
	fs, err := be.CompileShader(FragmentStage, fsSrc)
	if err != nil {
		return nil, &CompileError{ID: spec.ID, Stage: FragmentStage, Log: err.Error()}
	}
	program, err := be.LinkProgram(vs, fs)
	if err != nil {
		return nil, &LinkError{ID: spec.ID, Log: err.Error()}
	}

	s := &Shader{
		id:       spec.ID,
		be:       be,
		program:  program,
		layout:   ComputeLayout(spec.Attributes),
		uniforms: make(map[string]int, len(spec.Uniforms)),
	}
	// Attributes the linker dropped keep NoLocation and their slot in the
	// stride; they are never enabled or pointed.
	for i := range s.layout.Attribs {
		a := &s.layout.Attribs[i]
		a.Location = be.AttribLocation(program, a.Name)
	}
	for _, name := range spec.Uniforms {
		s.uniforms[name] = be.UniformLocation(program, name)
	}
	return s, nil
}

func lookup(sources SourceSet, id string) (string, error) {
	src, ok := sources.Source(id)
	if !ok {
		return "", fmt.Errorf("%w: %s", ErrSourceNotFound, id)
	}
	return src, nil
}

// ID returns the program id the shader was built from.
func (s *Shader) ID() string { return s.id }

// Program returns the backend program handle.
func (s *Shader) Program() Program { return s.program }

// Layout returns the resolved vertex layout.
func (s *Shader) Layout() Layout { return s.layout }

// Stride returns the vertex size in bytes.
func (s *Shader) Stride() int { return s.layout.Stride }

// Uniform returns the location of a uniform, querying the backend only the
// first time a name is seen.
func (s *Shader) Uniform(name string) int {
	if loc, ok := s.uniforms[name]; ok {
		return loc
	}
	loc := s.be.UniformLocation(s.program, name)
	s.uniforms[name] = loc
	return loc
}

// ApplyVertexLayout points every attribute at the currently bound array
// buffer.
func (s *Shader) ApplyVertexLayout() {
	for _, a := range s.layout.Attribs {
		if a.Location == NoLocation {
			continue
		}
		s.be.VertexAttribPointer(a.Location, a.Size, s.layout.Stride, a.Offset)
	}
}

// Enable makes the program current and enables its attribute arrays. Every
// Enable must be paired with Disable before another shader is enabled.
func (s *Shader) Enable() {
	s.be.UseProgram(s.program)
	for _, a := range s.layout.Attribs {
		if a.Location != NoLocation {
			s.be.EnableVertexAttrib(a.Location)
		}
	}
}

// Disable turns the program's attribute arrays off again.
func (s *Shader) Disable() {
	for _, a := range s.layout.Attribs {
		if a.Location != NoLocation {
			s.be.DisableVertexAttrib(a.Location)
		}
	}
}

// SetMatrix uploads a 4x4 matrix uniform.
func (s *Shader) SetMatrix(name string, m linalg.Mat4) {
	s.be.UniformMatrix4(s.Uniform(name), m.Float32())
}

// SetFloat uploads a float uniform.
func (s *Shader) SetFloat(name string, v float64) {
	s.be.Uniform1f(s.Uniform(name), float32(v))
}

// SetInt uploads an integer (or sampler) uniform.
func (s *Shader) SetInt(name string, v int) {
	s.be.Uniform1i(s.Uniform(name), int32(v))
}

// SetVec3 uploads a vec3 uniform.
func (s *Shader) SetVec3(name string, v linalg.Vec3) {
	s.be.Uniform3f(s.Uniform(name), float32(v[0]), float32(v[1]), float32(v[2]))
}
