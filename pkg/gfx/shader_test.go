package gfx_test

import (
	"errors"
	"testing"
	"testing/fstest"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/unklstewy/orbit-globe/pkg/gfx"
	"github.com/unklstewy/orbit-globe/pkg/gfx/gfxtest"
	"github.com/unklstewy/orbit-globe/pkg/linalg"
)

var sources = gfx.MapSource{
	"earth-vs": "vertex source",
	"earth-fs": "fragment source",
	"bad-vs":   "vertex source",
	"bad-fs":   "BROKEN fragment",
	"half-vs":  "vertex only",
}

var earthSpec = gfx.ProgramSpec{
	ID:         "earth",
	Attributes: []gfx.Attribute{{Name: "a_position", Size: 3}, {Name: "a_uv", Size: 2}},
	Uniforms:   []string{"u_projection", "u_view"},
}

func TestComputeLayout(t *testing.T) {
	tests := []struct {
		name    string
		attrs   []gfx.Attribute
		stride  int
		offsets []int
	}{
		{"position uv", []gfx.Attribute{{"pos", 3}, {"uv", 2}}, 20, []int{0, 12}},
		{"orbit", []gfx.Attribute{{"a_position", 3}, {"a_M", 1}, {"a_mm", 1}}, 20, []int{0, 12, 16}},
		{"single", []gfx.Attribute{{"a", 4}}, 16, []int{0}},
		{"empty", nil, 0, []int{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			l := gfx.ComputeLayout(tt.attrs)
			assert.Equal(t, tt.stride, l.Stride)
			offsets := []int{}
			for _, a := range l.Attribs {
				offsets = append(offsets, a.Offset)
			}
			assert.Equal(t, tt.offsets, offsets)
		})
	}
}

func TestNewShader(t *testing.T) {
	rec := gfxtest.NewRecorder()
	s, err := gfx.NewShader(rec, sources, earthSpec)
	require.NoError(t, err)

	assert.Equal(t, "earth", s.ID())
	assert.Equal(t, 20, s.Stride())
	assert.Len(t, rec.Named("CompileShader"), 2)
	assert.Len(t, rec.Named("LinkProgram"), 1)

	for _, a := range s.Layout().Attribs {
		assert.NotEqual(t, gfx.NoLocation, a.Location)
	}
}

func TestNewShaderErrors(t *testing.T) {
	t.Run("missing source", func(t *testing.T) {
		_, err := gfx.NewShader(gfxtest.NewRecorder(), sources, gfx.ProgramSpec{ID: "half"})
		assert.ErrorIs(t, err, gfx.ErrSourceNotFound)
	})

	t.Run("compile failure", func(t *testing.T) {
		rec := gfxtest.NewRecorder()
		rec.FailCompile = "BROKEN"
		_, err := gfx.NewShader(rec, sources, gfx.ProgramSpec{ID: "bad"})
		var ce *gfx.CompileError
		require.True(t, errors.As(err, &ce), "got %v", err)
		assert.Equal(t, gfx.FragmentStage, ce.Stage)
		assert.Contains(t, ce.Log, "syntax error")
	})

	t.Run("link failure", func(t *testing.T) {
		rec := gfxtest.NewRecorder()
		rec.FailLink = true
		_, err := gfx.NewShader(rec, sources, earthSpec)
		var le *gfx.LinkError
		assert.True(t, errors.As(err, &le), "got %v", err)
	})

}

func TestInactiveAttributeIsSkipped(t *testing.T) {
	rec := gfxtest.NewRecorder()
	rec.MissingAttribs = map[string]bool{"a_uv": true}
	s, err := gfx.NewShader(rec, sources, earthSpec)
	require.NoError(t, err)

	l := s.Layout()
	assert.Equal(t, 20, l.Stride, "dropped attributes keep their slot")
	assert.Equal(t, gfx.NoLocation, l.Attribs[1].Location)
	rec.Reset()

	s.Enable()
	s.ApplyVertexLayout()
	s.Disable()

	for _, name := range []string{"EnableVertexAttrib", "VertexAttribPointer", "DisableVertexAttrib"} {
		calls := rec.Named(name)
		require.Len(t, calls, 1, name)
		assert.Equal(t, l.Attribs[0].Location, calls[0].Args[0], name)
	}
}

func TestUniformLookupIsMemoized(t *testing.T) {
	rec := gfxtest.NewRecorder()
	s, err := gfx.NewShader(rec, sources, earthSpec)
	require.NoError(t, err)

	for i := 0; i < 5; i++ {
		s.SetMatrix("u_projection", linalg.Identity())
		s.SetFloat("u_time", float64(i))
	}
	assert.Equal(t, 1, rec.UniformLookups["u_projection"], "declared uniforms resolve at construction")
	assert.Equal(t, 1, rec.UniformLookups["u_time"], "undeclared uniforms resolve once")
	assert.Len(t, rec.Named("UniformMatrix4"), 5)
}

func TestEnableApplyDisable(t *testing.T) {
	rec := gfxtest.NewRecorder()
	s, err := gfx.NewShader(rec, sources, earthSpec)
	require.NoError(t, err)
	rec.Reset()

	s.Enable()
	s.ApplyVertexLayout()
	s.SetVec3("u_color", linalg.Vec3{0.3, 0.6, 1})
	s.SetInt("u_texture", 0)
	s.Disable()

	names := []string{}
	for _, c := range rec.Calls {
		names = append(names, c.Name)
	}
	assert.Equal(t, []string{
		"UseProgram",
		"EnableVertexAttrib", "EnableVertexAttrib",
		"VertexAttribPointer", "VertexAttribPointer",
		"Uniform3f", "Uniform1i",
		"DisableVertexAttrib", "DisableVertexAttrib",
	}, names)

	ptrs := rec.Named("VertexAttribPointer")
	assert.Equal(t, []interface{}{s.Layout().Attribs[1].Location, 2, 20, 12}, ptrs[1].Args)
}

func TestFSSource(t *testing.T) {
	fsys := fstest.MapFS{
		"shaders/earth-vs.glsl": {Data: []byte("void main() {}")},
	}
	src := gfx.FSSource{FS: fsys, Dir: "shaders", Ext: ".glsl"}

	got, ok := src.Source("earth-vs")
	assert.True(t, ok)
	assert.Equal(t, "void main() {}", got)

	_, ok = src.Source("earth-fs")
	assert.False(t, ok)
}
