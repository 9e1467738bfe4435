// Image loading and saving functionality
package io

import (
	"fmt"
	"image"
	_ "image/gif"
	"image/jpeg"
	"image/png"
	goio "io"
	"os"
	"path/filepath"
	"strings"

	"github.com/sirupsen/logrus"
	"golang.org/x/image/bmp"
	"golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"

	"seam-carving/internal/core"
)

// JPEGQuality is used for every JPEG the loader writes.
const JPEGQuality = 95

// ImageLoader handles image file operations
type ImageLoader struct {
	logger logrus.FieldLogger
}

func NewImageLoader(logger logrus.FieldLogger) *ImageLoader {
	return &ImageLoader{
		logger: logger,
	}
}

// LoadImage reads path as the text interchange format when it ends in .txt
// and as a raster image otherwise.
func (il *ImageLoader) LoadImage(path string) (*core.Image, error) {
	il.logger.WithField("filepath", path).Debug("Loading image")

	ext := strings.ToLower(getFileExtension(path))
	if !il.isSupportedImageFormat(path) {
		return nil, fmt.Errorf("%w: unsupported image format: %s", core.ErrInput, path)
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", core.ErrInput, err)
	}
	defer f.Close()

	var img *core.Image
	if ext == ".txt" {
		img, err = ReadText(f)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", path, err)
		}
	} else {
		decoded, _, err := image.Decode(f)
		if err != nil {
			return nil, fmt.Errorf("%w: failed to decode %s: %v", core.ErrInput, path, err)
		}
		img = FromImage(decoded)
	}

	if err := core.ValidateImage(img); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	img.SetSource(path)

	il.logger.WithFields(logrus.Fields{
		"filepath": path,
		"width":    img.Width(),
		"height":   img.Height(),
		"format":   img.Metadata().Format,
	}).Info("Image loaded successfully")

	return img, nil
}

// SaveImage writes img to path in the format named by its extension. The
// file is replaced atomically.
func (il *ImageLoader) SaveImage(img *core.Image, path string) error {
	il.logger.WithField("filepath", path).Debug("Saving image")

	if img == nil || img.Width() == 0 || img.Height() == 0 {
		return fmt.Errorf("cannot save empty image")
	}

	ext := strings.ToLower(getFileExtension(path))
	if !isWritableFormat(ext) {
		return fmt.Errorf("%w: unsupported output format: %s", core.ErrConfig, path)
	}

	var encode func(goio.Writer) error
	if ext == ".txt" {
		encode = func(w goio.Writer) error { return WriteText(w, img) }
	} else {
		rgba := ToNRGBA(img)
		encode = func(w goio.Writer) error { return encodeRaster(w, ext, rgba) }
	}

	if err := writeFileAtomic(path, encode); err != nil {
		return fmt.Errorf("failed to save image %s: %w", path, err)
	}

	il.logger.WithFields(logrus.Fields{
		"filepath": path,
		"width":    img.Width(),
		"height":   img.Height(),
	}).Info("Image saved successfully")

	return nil
}

// SaveRaster writes a rendered image such as an energy map or seam overlay.
// Only raster extensions are accepted.
func (il *ImageLoader) SaveRaster(m image.Image, path string) error {
	ext := strings.ToLower(getFileExtension(path))
	if ext == ".txt" || !isWritableFormat(ext) {
		return fmt.Errorf("%w: unsupported raster format: %s", core.ErrConfig, path)
	}

	if err := writeFileAtomic(path, func(w goio.Writer) error { return encodeRaster(w, ext, m) }); err != nil {
		return fmt.Errorf("failed to save image %s: %w", path, err)
	}

	b := m.Bounds()
	il.logger.WithFields(logrus.Fields{
		"filepath": path,
		"width":    b.Dx(),
		"height":   b.Dy(),
	}).Info("Image saved successfully")
	return nil
}

func encodeRaster(w goio.Writer, ext string, m image.Image) error {
	switch ext {
	case ".png":
		return png.Encode(w, m)
	case ".jpg", ".jpeg":
		return jpeg.Encode(w, m, &jpeg.Options{Quality: JPEGQuality})
	case ".bmp":
		return bmp.Encode(w, m)
	case ".tif", ".tiff":
		return tiff.Encode(w, m, &tiff.Options{Compression: tiff.Deflate})
	}
	return fmt.Errorf("no encoder for %q", ext)
}

// writeFileAtomic encodes into a temporary file next to path and renames it
// into place.
func writeFileAtomic(path string, encode func(goio.Writer) error) error {
	tmp, err := os.CreateTemp(filepath.Dir(path), "."+filepath.Base(path)+".*")
	if err != nil {
		return err
	}
	defer os.Remove(tmp.Name())

	if err := encode(tmp); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	return os.Rename(tmp.Name(), path)
}

func (il *ImageLoader) isSupportedImageFormat(path string) bool {
	ext := strings.ToLower(getFileExtension(path))
	supportedFormats := []string{".txt", ".jpg", ".jpeg", ".png", ".gif", ".tiff", ".tif", ".bmp", ".webp"}

	for _, format := range supportedFormats {
		if ext == format {
			return true
		}
	}

	return false
}

func isWritableFormat(ext string) bool {
	switch ext {
	case ".txt", ".png", ".jpg", ".jpeg", ".bmp", ".tif", ".tiff":
		return true
	}
	return false
}

func getFileExtension(path string) string {
	for i := len(path) - 1; i >= 0; i-- {
		if path[i] == '.' {
			return path[i:]
		}
		if path[i] == '/' || path[i] == '\\' {
			break
		}
	}
	return ""
}

func (il *ImageLoader) GetSupportedFormats() []string {
	return []string{"TXT", "JPEG", "PNG", "GIF", "TIFF", "BMP", "WEBP"}
}

