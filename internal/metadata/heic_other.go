//go:build !linux

package metadata

import "io"

func extractHEICExif(ra io.ReaderAt) ([]byte, error) {
	return nil, ErrNoMetadata
}
