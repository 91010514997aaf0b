//go:build !linux

package decode

import (
	"image"
	"io"
)

func decodeHEIC(r io.Reader) (image.Image, error) {
	return nil, ErrUnsupported
}

func decodeHEICConfig(r io.Reader) (image.Config, error) {
	return image.Config{}, ErrUnsupported
}

// heicSupported returns whether HEIC decoding is available on this platform
func heicSupported() bool {
	return false
}
