package assets

import (
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/unklstewy/orbit-globe/pkg/config"
	"github.com/unklstewy/orbit-globe/pkg/orbit"
)

func TestProceduralEarth(t *testing.T) {
	img := ProceduralEarth(64, 32)
	assert.Equal(t, image.Rect(0, 0, 64, 32), img.Bounds())

	// Polar rows are ice.
	top := img.RGBAAt(10, 0)
	assert.Greater(t, top.R, uint8(200))
	assert.Greater(t, top.B, uint8(200))

	// The equator has both land and sea.
	var land, sea int
	for x := 0; x < 64; x++ {
		c := img.RGBAAt(x, 16)
		if c.B > c.G && c.B > c.R {
			sea++
		} else {
			land++
		}
	}
	assert.Greater(t, land, 0)
	assert.Greater(t, sea, 0)
}

func TestLoadTexture(t *testing.T) {
	t.Run("empty path is procedural", func(t *testing.T) {
		img, err := LoadTexture("")
		require.NoError(t, err)
		assert.Equal(t, ProceduralWidth, img.Bounds().Dx())
		assert.Equal(t, ProceduralHeight, img.Bounds().Dy())
	})

	t.Run("png", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "earth.png")
		src := image.NewRGBA(image.Rect(0, 0, 4, 2))
		src.Set(1, 1, color.RGBA{R: 10, G: 20, B: 30, A: 255})
		fh, err := os.Create(path)
		require.NoError(t, err)
		require.NoError(t, png.Encode(fh, src))
		require.NoError(t, fh.Close())

		img, err := LoadTexture(path)
		require.NoError(t, err)
		r, g, b, _ := img.At(1, 1).RGBA()
		assert.Equal(t, []uint32{10, 20, 30}, []uint32{r >> 8, g >> 8, b >> 8})
	})

	t.Run("missing", func(t *testing.T) {
		_, err := LoadTexture(filepath.Join(t.TempDir(), "nope.jpg"))
		assert.ErrorIs(t, err, os.ErrNotExist)
	})

	t.Run("not an image", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "earth.jpg")
		require.NoError(t, os.WriteFile(path, []byte("not really"), 0644))
		_, err := LoadTexture(path)
		assert.ErrorIs(t, err, image.ErrFormat)
	})
}

const testCatalog = `var data0={"_epoch":1709294400000,
"stations":[["25544",51.64,208.9,0.0006,69.98,25.29,15.49,"ISS"]],
"debris":[["1",10,0,1.5,0,0,14,"?"],["2",98,10,0.001,0,0,14.2,"?"]]};`

func TestLoadCatalog(t *testing.T) {
	path := filepath.Join(t.TempDir(), "data0.js")
	require.NoError(t, os.WriteFile(path, []byte(testCatalog), 0644))

	t.Run("strict", func(t *testing.T) {
		_, _, err := LoadCatalog(config.CatalogConfig{Path: path})
		var elErr *orbit.ElementError
		require.ErrorAs(t, err, &elErr)
		assert.ErrorIs(t, err, orbit.ErrEccentricity)
	})

	t.Run("skip invalid", func(t *testing.T) {
		file, c, err := LoadCatalog(config.CatalogConfig{Path: path, SkipInvalid: true})
		require.NoError(t, err)
		assert.Equal(t, 3, file.Len())
		assert.Equal(t, 2, c.Len())
		assert.Equal(t, []string{"debris", "stations"}, c.Sets())
		assert.Equal(t, 1, c.Count("debris"))
	})

	t.Run("missing file", func(t *testing.T) {
		_, _, err := LoadCatalog(config.CatalogConfig{Path: filepath.Join(t.TempDir(), "none.js")})
		assert.ErrorIs(t, err, os.ErrNotExist)
	})
}
