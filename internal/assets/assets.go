// Package assets loads what the render engine needs before its first frame:
// the Earth texture and the orbit catalog.
package assets

import (
	"fmt"
	"image"
	_ "image/jpeg" // JPEG textures
	_ "image/png"  // PNG textures
	"log"
	"os"

	"github.com/unklstewy/orbit-globe/pkg/catalog"
	"github.com/unklstewy/orbit-globe/pkg/config"
	"github.com/unklstewy/orbit-globe/pkg/orbit"
)

// Size of the procedural texture used when no image is configured.
const (
	ProceduralWidth  = 1024
	ProceduralHeight = 512
)

// LoadTexture decodes an equirectangular Earth image. An empty path returns
// the procedural texture.
func LoadTexture(path string) (image.Image, error) {
	if path == "" {
		return ProceduralEarth(ProceduralWidth, ProceduralHeight), nil
	}

	fh, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open texture: %w", err)
	}
	defer fh.Close()

	img, format, err := image.Decode(fh)
	if err != nil {
		return nil, fmt.Errorf("failed to decode texture %s: %w", path, err)
	}
	b := img.Bounds()
	if b.Dx() == 0 || b.Dy() == 0 {
		return nil, fmt.Errorf("texture %s is empty", path)
	}
	log.Printf("Loaded %s texture %s (%dx%d)", format, path, b.Dx(), b.Dy())
	return img, nil
}

// LoadCatalog reads the catalog file named by cfg and builds its orbits.
// With SkipInvalid set, bad element sets are logged and dropped.
func LoadCatalog(cfg config.CatalogConfig, opts ...orbit.Option) (*catalog.File, *orbit.Catalog, error) {
	file, err := catalog.Load(cfg.Path)
	if err != nil {
		return nil, nil, err
	}
	c, err := BuildCatalog(file, cfg.SkipInvalid, opts...)
	if err != nil {
		return nil, nil, err
	}
	return file, c, nil
}

// BuildCatalog turns a decoded file into an orbit catalog.
func BuildCatalog(file *catalog.File, skipInvalid bool, opts ...orbit.Option) (*orbit.Catalog, error) {
	if skipInvalid {
		skipped := 0
		opts = append(opts, orbit.SkipInvalid(func(e *orbit.ElementError) {
			skipped++
			log.Printf("Skipping %v", e)
		}))
		defer func() {
			if skipped > 0 {
				log.Printf("Skipped %d invalid element sets", skipped)
			}
		}()
	}

	c, err := file.Catalog(opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to build catalog: %w", err)
	}
	return c, nil
}
