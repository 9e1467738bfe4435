// Core image data structure: three parallel 8-bit channel planes
package core

import (
	"fmt"
	"strings"
)

// MaxDimension bounds either side of an accepted image.
const MaxDimension = 16384

// Image holds red, green and blue planes of identical dimensions.
// Width shrinks by one per removed seam; height never changes.
type Image struct {
	R *Grid[uint8]
	G *Grid[uint8]
	B *Grid[uint8]

	metadata ImageMetadata
}

// ImageMetadata contains information about where an image came from
type ImageMetadata struct {
	Width    int
	Height   int
	Channels int
	Format   string
	Path     string
}

// NewImage allocates a black width x height image.
func NewImage(width, height int) *Image {
	return &Image{
		R: NewGrid[uint8](width, height),
		G: NewGrid[uint8](width, height),
		B: NewGrid[uint8](width, height),
		metadata: ImageMetadata{
			Width:    width,
			Height:   height,
			Channels: 3,
			Format:   "unknown",
		},
	}
}

// Width returns the current working width.
func (img *Image) Width() int {
	return img.R.Width()
}

// Height returns the image height.
func (img *Image) Height() int {
	return img.R.Height()
}

// RGB returns the pixel at column x, row y.
func (img *Image) RGB(x, y int) (r, g, b uint8) {
	return img.R.At(x, y), img.G.At(x, y), img.B.At(x, y)
}

// SetRGB stores the pixel at column x, row y.
func (img *Image) SetRGB(x, y int, r, g, b uint8) {
	img.R.Set(x, y, r)
	img.G.Set(x, y, g)
	img.B.Set(x, y, b)
}

// Planes returns the channel planes in R, G, B order.
func (img *Image) Planes() [3]*Grid[uint8] {
	return [3]*Grid[uint8]{img.R, img.G, img.B}
}

// Narrow drops the last logical column of every plane.
func (img *Image) Narrow() {
	img.R.Narrow()
	img.G.Narrow()
	img.B.Narrow()
}

// Clone returns a compact deep copy.
func (img *Image) Clone() *Image {
	return &Image{
		R:        img.R.Clone(),
		G:        img.G.Clone(),
		B:        img.B.Clone(),
		metadata: img.metadata,
	}
}

// Equal reports whether both images have the same size and pixels.
func (img *Image) Equal(other *Image) bool {
	if img.Width() != other.Width() || img.Height() != other.Height() {
		return false
	}
	for y := 0; y < img.Height(); y++ {
		for c, plane := range img.Planes() {
			if string(plane.Row(y)) != string(other.Planes()[c].Row(y)) {
				return false
			}
		}
	}
	return true
}

// Metadata returns the load-time metadata.
func (img *Image) Metadata() ImageMetadata {
	return img.metadata
}

// SetSource records the file an image was loaded from.
func (img *Image) SetSource(path string) {
	img.metadata.Path = path
	img.metadata.Format = getFormatFromPath(path)
}

// getFormatFromPath extracts image format from file path
func getFormatFromPath(path string) string {
	if path == "" {
		return "unknown"
	}
	i := strings.LastIndexAny(path, "./\\")
	if i < 0 || path[i] != '.' {
		return "unknown"
	}
	return strings.ToLower(path[i+1:])
}

// ValidateImage checks the basic requirements for carving an image.
func ValidateImage(img *Image) error {
	if img == nil || img.R == nil || img.G == nil || img.B == nil {
		return fmt.Errorf("%w: image is empty", ErrInput)
	}

	w, h := img.Width(), img.Height()
	if w <= 0 || h <= 0 {
		return fmt.Errorf("%w: invalid dimensions: %dx%d", ErrInput, w, h)
	}

	if img.G.Width() != w || img.B.Width() != w || img.G.Height() != h || img.B.Height() != h {
		return fmt.Errorf("%w: channel planes disagree on size", ErrInput)
	}

	if w > MaxDimension || h > MaxDimension {
		return fmt.Errorf("%w: image too large: %dx%d (max: %d)", ErrInput, w, h, MaxDimension)
	}

	return nil
}
