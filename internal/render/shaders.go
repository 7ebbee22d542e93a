package render

import (
	"embed"

	"github.com/unklstewy/orbit-globe/pkg/gfx"
)

//go:embed shaders/*.glsl
var shaderFS embed.FS

// Sources returns the embedded GLSL sources for the earth and orbit programs.
func Sources() gfx.SourceSet {
	return gfx.FSSource{FS: shaderFS, Dir: "shaders", Ext: ".glsl"}
}

var earthProgram = gfx.ProgramSpec{
	ID: "earth",
	Attributes: []gfx.Attribute{
		{Name: "a_position", Size: 3},
		{Name: "a_uv", Size: 2},
	},
	Uniforms: []string{"u_projection", "u_view", "u_texture"},
}

var orbitProgram = gfx.ProgramSpec{
	ID: "orbit",
	Attributes: []gfx.Attribute{
		{Name: "a_position", Size: 3},
		{Name: "a_M", Size: 1},
		{Name: "a_mm", Size: 1},
	},
	Uniforms: []string{"u_projection", "u_view", "u_time", "u_color", "u_highlight", "u_offset"},
}
