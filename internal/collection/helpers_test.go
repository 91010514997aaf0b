package collection

import (
	"context"
	"errors"
	"image"
	"path/filepath"
	"testing"

	"github.com/justyntemme/liv/internal/preview"
	"github.com/justyntemme/liv/internal/record"
)

// fakeDecoder knows image sizes by base name.
type fakeDecoder map[string]image.Point

func (d fakeDecoder) Decode(path string) (image.Image, error) {
	sz, ok := d[filepath.Base(path)]
	if !ok {
		return nil, errors.New("undecodable")
	}
	return image.NewGray(image.Rect(0, 0, sz.X, sz.Y)), nil
}

func (d fakeDecoder) DecodeConfig(path string) (image.Config, error) {
	sz, ok := d[filepath.Base(path)]
	if !ok {
		return image.Config{}, errors.New("undecodable")
	}
	return image.Config{Width: sz.X, Height: sz.Y}, nil
}

// instantPreviews completes every request at once with a fixed size.
type instantPreviews struct{ size image.Point }

func (p instantPreviews) Locate(string) (preview.Location, error) {
	return preview.Location{Memory: true}, nil
}

func (p instantPreviews) Submit(job preview.Job) error {
	job.Done(preview.Result{Source: job.Source, Size: p.size})
	return nil
}

type fakeScanner map[string][]string

func (s fakeScanner) ScanImages(_ context.Context, dir string, _ bool) ([]string, error) {
	paths, ok := s[dir]
	if !ok {
		return nil, errors.New("no such directory")
	}
	return paths, nil
}

// leaves builds a set with one leaf per name, each with a ready preview of size.
func leaves(t *testing.T, lib *record.Library, size image.Point, names ...string) *Node {
	t.Helper()
	set := NewSet(KindSet, "test")
	for _, name := range names {
		r, err := lib.Get("/pics/" + name)
		if err != nil {
			t.Fatal(err)
		}
		if size != (image.Point{}) {
			r.RequestPreview(instantPreviews{size})
		}
		if _, err := set.AddLeaf(r, -1); err != nil {
			t.Fatal(err)
		}
	}
	return set
}

func names(n *Node) []string {
	var out []string
	for _, c := range n.Children() {
		if c.Record != nil {
			out = append(out, filepath.Base(c.Record.Path()))
		} else {
			out = append(out, c.Name)
		}
	}
	return out
}
