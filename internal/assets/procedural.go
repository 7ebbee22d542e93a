package assets

import (
	"image"
	"math"

	"github.com/lucasb-eyer/go-colorful"
)

var (
	deepOcean    = colorful.Color{R: 0.02, G: 0.08, B: 0.25}
	shallowOcean = colorful.Color{R: 0.08, G: 0.30, B: 0.55}
	lowland      = colorful.Color{R: 0.16, G: 0.42, B: 0.14}
	desert       = colorful.Color{R: 0.66, G: 0.56, B: 0.34}
	ice          = colorful.Color{R: 0.92, G: 0.95, B: 0.98}
)

// landHeight is a smooth pseudo-terrain on the sphere; positive is land.
func landHeight(lat, lon float64) float64 {
	h := math.Sin(2*lon+0.6)*math.Cos(lat) +
		0.6*math.Sin(3*lon-1.1)*math.Sin(2*lat+0.4) +
		0.35*math.Cos(5*lon+2.3)*math.Cos(3*lat-0.7) +
		0.2*math.Sin(9*lon)*math.Cos(7*lat)
	return h - 0.45
}

// ProceduralEarth renders a w by h equirectangular stand-in for an Earth
// texture. Row 0 is the north pole and column 0 is longitude -180.
func ProceduralEarth(w, h int) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		lat := math.Pi * (0.5 - (float64(y)+0.5)/float64(h))
		polar := math.Abs(lat) / (math.Pi / 2)
		for x := 0; x < w; x++ {
			lon := 2*math.Pi*(float64(x)+0.5)/float64(w) - math.Pi
			height := landHeight(lat, lon)

			var c colorful.Color
			switch {
			case polar > 0.82:
				c = ice
			case height < 0:
				c = deepOcean.BlendLab(shallowOcean, math.Max(0, 1+height*2))
			default:
				dry := math.Min(1, math.Max(0, 1-math.Abs(polar-0.3)*4)) * math.Min(1, height*3)
				c = lowland.BlendLab(desert, dry)
			}
			img.Set(x, y, c.Clamped())
		}
	}
	return img
}
