// Package metadata extracts EXIF style information from image files,
// preferring an external helper (exiv2) and falling back to an in-process
// reader when the helper is missing.
package metadata

import (
	"bufio"
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"time"

	"github.com/rwcarlsen/goexif/exif"
	"github.com/rwcarlsen/goexif/tiff"

	"github.com/justyntemme/liv/internal/debug"
)

// DefaultHelper is the helper binary looked up on PATH.
const DefaultHelper = "exiv2"

// ErrNoMetadata means the file carried nothing readable.
var ErrNoMetadata = errors.New("metadata: none found")

// exiv2 prints timestamps in EXIF's own layout.
const exifTimeLayout = "2006:01:02 15:04:05"

// Field is one key/value line of metadata, in the order the source reported it.
type Field struct {
	Key   string
	Value string
}

// Info is the result of one extraction.
type Info struct {
	Fields []Field
	Taken  time.Time // zero when unknown
	Source string    // "exiv2" or "exif"
}

// Get returns the value for key, if present.
func (i Info) Get(key string) (string, bool) {
	for _, f := range i.Fields {
		if f.Key == key {
			return f.Value, true
		}
	}
	return "", false
}

// Reader runs the helper, or reads EXIF in-process when Helper is empty or
// cannot be found.
type Reader struct {
	Helper  string
	Timeout time.Duration
}

// NewReader returns a Reader using exiv2 with a short timeout.
func NewReader() *Reader {
	return &Reader{Helper: DefaultHelper, Timeout: 5 * time.Second}
}

// Read extracts metadata for path.
func (r *Reader) Read(path string) (Info, error) {
	if r.Helper != "" {
		if bin, err := exec.LookPath(r.Helper); err == nil {
			info, err := r.runHelper(bin, path)
			if err == nil {
				return info, nil
			}
			debug.Log(debug.META, "helper %s failed for %s: %v", bin, path, err)
		}
	}
	return readInProcess(path)
}

func (r *Reader) runHelper(bin, path string) (Info, error) {
	timeout := r.Timeout
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	out, err := exec.CommandContext(ctx, bin, path).Output()
	// exiv2 exits non-zero when a file simply has no EXIF, but still prints the summary.
	if err != nil && len(out) == 0 {
		return Info{}, err
	}
	info := parseSummary(bytes.NewReader(out))
	if len(info.Fields) == 0 {
		return Info{}, ErrNoMetadata
	}
	info.Source = "exiv2"
	return info, nil
}

// parseSummary reads exiv2's "Key : Value" summary format.
func parseSummary(r io.Reader) Info {
	var info Info
	sc := bufio.NewScanner(r)
	for sc.Scan() {
		line := sc.Text()
		i := strings.Index(line, ":")
		if i <= 0 {
			continue
		}
		key := strings.TrimSpace(line[:i])
		value := strings.TrimSpace(line[i+1:])
		if key == "" || value == "" {
			continue
		}
		info.Fields = append(info.Fields, Field{Key: key, Value: value})
		if key == "Image timestamp" {
			if t, err := time.ParseInLocation(exifTimeLayout, value, time.Local); err == nil {
				info.Taken = t
			}
		}
	}
	return info
}

func readInProcess(path string) (Info, error) {
	f, err := os.Open(path)
	if err != nil {
		return Info{}, err
	}
	defer f.Close()

	var src io.Reader = f
	switch strings.ToLower(filepath.Ext(path)) {
	case ".heic", ".heif":
		raw, err := extractHEICExif(f)
		if err != nil {
			return Info{}, fmt.Errorf("metadata %s: %w", path, err)
		}
		src = bytes.NewReader(raw)
	}

	x, err := exif.Decode(src)
	if err != nil {
		return Info{}, fmt.Errorf("metadata %s: %w", path, ErrNoMetadata)
	}

	var info Info
	info.Source = "exif"
	x.Walk(walkFunc(func(name exif.FieldName, tag *tiff.Tag) error {
		info.Fields = append(info.Fields, Field{Key: string(name), Value: strings.Trim(tag.String(), `"`)})
		return nil
	}))
	if t, err := x.DateTime(); err == nil {
		info.Taken = t
	}
	return info, nil
}

type walkFunc func(exif.FieldName, *tiff.Tag) error

func (w walkFunc) Walk(name exif.FieldName, tag *tiff.Tag) error { return w(name, tag) }
