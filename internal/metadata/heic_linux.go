//go:build linux

package metadata

import (
	"io"

	"github.com/jdeng/goheif"
)

func extractHEICExif(ra io.ReaderAt) ([]byte, error) {
	return goheif.ExtractExif(ra)
}
