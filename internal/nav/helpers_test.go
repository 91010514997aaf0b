package nav

import (
	"errors"
	"image"
	"path/filepath"
	"testing"
	"time"

	"github.com/justyntemme/liv/internal/collection"
	"github.com/justyntemme/liv/internal/preview"
	"github.com/justyntemme/liv/internal/record"
)

// fakeDecoder knows image sizes by base name; anything else fails.
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

type instantPreviews struct{ size image.Point }

func (p instantPreviews) Locate(string) (preview.Location, error) {
	return preview.Location{Memory: true}, nil
}

func (p instantPreviews) Submit(job preview.Job) error {
	job.Done(preview.Result{Source: job.Source, Size: p.size})
	return nil
}

type fakeHost struct {
	redraws    int
	title      string
	noMore     int
	fullscreen int
	quit       bool
	timers     int
	stopped    []int
	promptTag  string
	promptSave string
	listed     []string
}

func (h *fakeHost) Redraw() { h.redraws++ }
func (h *fakeHost) Quit() { h.quit = true }
func (h *fakeHost) ToggleFullscreen() { h.fullscreen++ }
func (h *fakeHost) SetTitle(s string) { h.title = s }
func (h *fakeHost) NoMoreContent(error) { h.noMore++ }
func (h *fakeHost) PromptSave(suggest string) { h.promptSave = suggest }
func (h *fakeHost) StopTimer(id int) { h.stopped = append(h.stopped, id) }
func (h *fakeHost) ListDirectory(dir string) { h.listed = append(h.listed, dir) }
func (h *fakeHost) PromptTag(_ *record.Record, old string) { h.promptTag = old }

func (h *fakeHost) StartTimer(time.Duration) int {
	h.timers++
	return h.timers
}

const winW, winH = 300, 200

// newController loads the named images into the collection zone of a
// 300x200 window. Names missing from dec are undecodable.
func newController(t *testing.T, dec fakeDecoder, opts Options, names ...string) (*Controller, *fakeHost) {
	t.Helper()
	lib := record.NewLibrary(dec, nil)
	zones := collection.NewZones(winW, winH)
	for _, name := range names {
		r, err := lib.Get("/pics/" + name)
		if err != nil {
			t.Fatal(err)
		}
		if _, err := zones.Collection.AddLeaf(r, -1); err != nil {
			t.Fatal(err)
		}
	}
	host := &fakeHost{}
	c := New(zones, instantPreviews{image.Pt(64, 48)}, host, opts)
	c.Start(false)
	return c, host
}

func currentName(c *Controller) string {
	r := c.CurrentRecord()
	if r == nil {
		return ""
	}
	return filepath.Base(r.Path())
}

func childNames(n *collection.Node) []string {
	var out []string
	for _, r := range n.Records() {
		out = append(out, filepath.Base(r.Path()))
	}
	return out
}

var landscape = image.Pt(600, 400)

func decodable(names ...string) fakeDecoder {
	d := fakeDecoder{}
	for _, n := range names {
		d[n] = landscape
	}
	return d
}
