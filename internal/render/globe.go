package render

import (
	"errors"
	"fmt"
	"image"
	"math"

	"github.com/unklstewy/orbit-globe/pkg/gfx"
	"github.com/unklstewy/orbit-globe/pkg/linalg"
	"github.com/unklstewy/orbit-globe/pkg/orbit"
)

// Globe tessellation defaults.
const (
	DefaultLongitudeSegments = 64
	DefaultLatitudeSegments  = 48

	// msPerSiderealTurn is the globe's rotation period in orbit time.
	msPerSiderealTurn = 1000 * 86400
)

// ErrTooManyVertices is returned when a tessellation cannot be indexed with
// 16-bit indices.
var ErrTooManyVertices = errors.New("globe tessellation exceeds 16-bit index range")

// GlobeOptions configures the sphere mesh.
type GlobeOptions struct {
	// RadiusKm defaults to orbit.EarthRadiusKm.
	RadiusKm float64
	// LongitudeSegments and LatitudeSegments default to 64 and 48.
	LongitudeSegments int
	LatitudeSegments  int
	// Filter is used for the texture; the zero value is gfx.Linear.
	Filter gfx.Filter
}

func (o GlobeOptions) withDefaults() GlobeOptions {
	if o.RadiusKm <= 0 {
		o.RadiusKm = orbit.EarthRadiusKm
	}
	if o.LongitudeSegments <= 0 {
		o.LongitudeSegments = DefaultLongitudeSegments
	}
	if o.LatitudeSegments <= 0 {
		o.LatitudeSegments = DefaultLatitudeSegments
	}
	return o
}

// Globe draws the textured Earth.
type Globe struct {
	be      gfx.Backend
	shader  *gfx.Shader
	vertex  gfx.Buffer
	index   gfx.Buffer
	texture gfx.Texture
	count   int
}

// SphereMesh builds an nx by ny latitude/longitude sphere of radius r as
// interleaved position(3)+uv(2) vertices and counter-clockwise triangle
// indices. Row y = 0 is the south pole. Column nx repeats column 0's
// position with u = 0 so the texture seam closes.
func SphereMesh(r float64, nx, ny int) ([]float32, []uint16, error) {
	if nx < 3 || ny < 2 {
		return nil, nil, fmt.Errorf("sphere needs at least 3x2 segments, got %dx%d", nx, ny)
	}
	if (nx+1)*(ny+1) > math.MaxUint16+1 {
		return nil, nil, fmt.Errorf("%w: %dx%d", ErrTooManyVertices, nx, ny)
	}

	vertices := make([]float32, 0, (nx+1)*(ny+1)*5)
	for y := 0; y <= ny; y++ {
		lat := math.Pi * (float64(y)/float64(ny) - 0.5)
		for x := 0; x <= nx; x++ {
			lon := 2 * math.Pi * float64(x%nx) / float64(nx)
			vertices = append(vertices,
				float32(r*math.Cos(lat)*math.Cos(lon)),
				float32(r*math.Sin(lat)),
				float32(r*math.Cos(lat)*math.Sin(lon)),
				float32(1-float64(x)/float64(nx)),
				float32(1-float64(y)/float64(ny)),
			)
		}
	}

	stride := nx + 1
	indices := make([]uint16, 0, nx*ny*6)
	for y := 0; y < ny; y++ {
		y1 := y + 1
		for x := 0; x < nx; x++ {
			x1 := x + 1
			indices = append(indices,
				uint16(y*stride+x), uint16(y1*stride+x), uint16(y1*stride+x1),
				uint16(y*stride+x), uint16(y1*stride+x1), uint16(y*stride+x1),
			)
		}
	}
	return vertices, indices, nil
}

// NewGlobe builds the sphere buffers and uploads the texture.
func NewGlobe(be gfx.Backend, src gfx.SourceSet, texture image.Image, opts GlobeOptions) (*Globe, error) {
	if texture == nil {
		return nil, errors.New("globe texture is nil")
	}
	opts = opts.withDefaults()

	shader, err := gfx.NewShader(be, src, earthProgram)
	if err != nil {
		return nil, fmt.Errorf("failed to build earth shader: %w", err)
	}
	vertices, indices, err := SphereMesh(opts.RadiusKm, opts.LongitudeSegments, opts.LatitudeSegments)
	if err != nil {
		return nil, err
	}

	g := &Globe{be: be, shader: shader, count: len(indices)}

	g.vertex = be.CreateBuffer()
	be.BindBuffer(gfx.ArrayBuffer, g.vertex)
	be.BufferFloat32(gfx.ArrayBuffer, vertices)

	g.index = be.CreateBuffer()
	be.BindBuffer(gfx.ElementArrayBuffer, g.index)
	be.BufferUint16(gfx.ElementArrayBuffer, indices)

	g.texture = be.CreateTexture()
	be.BindTexture(0, g.texture)
	be.TexImage(texture, opts.Filter)

	return g, nil
}

// Rotation returns the globe's spin at orbit time t (ms).
func (g *Globe) Rotation(t float64) linalg.Mat4 {
	return linalg.Rotation(linalg.YAxis, t*360/msPerSiderealTurn)
}

// Draw renders the globe with the given projection and view at orbit time t.
func (g *Globe) Draw(projection, view linalg.Mat4, t float64) {
	be := g.be

	g.shader.Enable()
	be.BindBuffer(gfx.ArrayBuffer, g.vertex)
	be.BindBuffer(gfx.ElementArrayBuffer, g.index)
	g.shader.ApplyVertexLayout()

	be.BlendFunc(gfx.SrcAlpha, gfx.OneMinusSrcAlpha)
	be.Enable(gfx.DepthTest)
	be.DepthMask(true)
	be.Enable(gfx.CullFace)

	be.BindTexture(0, g.texture)
	g.shader.SetInt("u_texture", 0)
	g.shader.SetMatrix("u_projection", projection)
	g.shader.SetMatrix("u_view", linalg.Mul(view, g.Rotation(t)))

	be.DrawElements(gfx.Triangles, g.count, 0)
	g.shader.Disable()
}

// IndexCount returns the number of indices drawn per frame.
func (g *Globe) IndexCount() int { return g.count }
