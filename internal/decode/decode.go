// Package decode turns image files into pixels.
package decode

import (
	"errors"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"os"
	"path/filepath"
	"strings"

	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"

	"github.com/justyntemme/liv/internal/debug"
)

// ErrUnsupported is returned for files whose format has no decoder on this platform.
var ErrUnsupported = errors.New("decode: unsupported image format")

var extensions = map[string]bool{
	".jpg": true, ".jpeg": true, ".png": true, ".gif": true,
	".bmp": true, ".tif": true, ".tiff": true, ".webp": true,
	".heic": true, ".heif": true,
}

// IsImage reports whether name carries an extension this package knows about.
func IsImage(name string) bool {
	return extensions[strings.ToLower(filepath.Ext(name))]
}

func isHEIC(path string) bool {
	ext := strings.ToLower(filepath.Ext(path))
	return ext == ".heic" || ext == ".heif"
}

// Decoder decodes whole images or just their headers.
// It holds no state and is safe for concurrent use.
type Decoder struct{}

// New returns a Decoder.
func New() *Decoder {
	return &Decoder{}
}

// Decode reads the full image at path.
func (d *Decoder) Decode(path string) (image.Image, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	if isHEIC(path) {
		if !heicSupported() {
			return nil, ErrUnsupported
		}
		img, err := decodeHEIC(f)
		if err != nil {
			return nil, fmt.Errorf("decode %s: %w", path, err)
		}
		return img, nil
	}

	img, format, err := image.Decode(f)
	if err != nil {
		if errors.Is(err, image.ErrFormat) {
			return nil, ErrUnsupported
		}
		return nil, fmt.Errorf("decode %s: %w", path, err)
	}
	debug.Log(debug.PREVIEW, "decode: %s (%s %dx%d)", path, format, img.Bounds().Dx(), img.Bounds().Dy())
	return img, nil
}

// DecodeConfig reads only enough of the file to learn its dimensions.
func (d *Decoder) DecodeConfig(path string) (image.Config, error) {
	f, err := os.Open(path)
	if err != nil {
		return image.Config{}, err
	}
	defer f.Close()

	if isHEIC(path) {
		if !heicSupported() {
			return image.Config{}, ErrUnsupported
		}
		return decodeHEICConfig(f)
	}

	cfg, _, err := image.DecodeConfig(f)
	if errors.Is(err, image.ErrFormat) {
		return image.Config{}, ErrUnsupported
	}
	return cfg, err
}
