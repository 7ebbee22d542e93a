package soft

import (
	"image"
	"image/color"
	"math"

	"github.com/unklstewy/orbit-globe/pkg/gfx"
)

type texture struct {
	width, height int
	texels        []Color
	filter        gfx.Filter
}

func newTexture(img image.Image, filter gfx.Filter) *texture {
	b := img.Bounds()
	t := &texture{
		width:  b.Dx(),
		height: b.Dy(),
		texels: make([]Color, b.Dx()*b.Dy()),
		filter: filter,
	}
	for y := 0; y < t.height; y++ {
		for x := 0; x < t.width; x++ {
			c := color.NRGBAModel.Convert(img.At(b.Min.X+x, b.Min.Y+y)).(color.NRGBA)
			t.texels[y*t.width+x] = Color{
				float32(c.R) / 255,
				float32(c.G) / 255,
				float32(c.B) / 255,
				float32(c.A) / 255,
			}
		}
	}
	return t
}

func wrap(i, n int) int {
	i %= n
	if i < 0 {
		i += n
	}
	return i
}

func (t *texture) texel(x, y int) Color {
	return t.texels[wrap(y, t.height)*t.width+wrap(x, t.width)]
}

// Sample reads the texture with repeat wrapping. v = 0 is the first image
// row.
func (t *texture) Sample(u, v float64) Color {
	x := u * float64(t.width)
	y := v * float64(t.height)

	if t.filter == gfx.Nearest {
		return t.texel(int(math.Floor(x)), int(math.Floor(y)))
	}

	x -= 0.5
	y -= 0.5
	x0 := math.Floor(x)
	y0 := math.Floor(y)
	fx := float32(x - x0)
	fy := float32(y - y0)
	ix, iy := int(x0), int(y0)

	c00 := t.texel(ix, iy)
	c10 := t.texel(ix+1, iy)
	c01 := t.texel(ix, iy+1)
	c11 := t.texel(ix+1, iy+1)

	var out Color
	for i := range out {
		top := c00[i] + (c10[i]-c00[i])*fx
		bottom := c01[i] + (c11[i]-c01[i])*fx
		out[i] = top + (bottom-top)*fy
	}
	return out
}
