package record

import (
	"errors"
	"image"
	"os"
	"path/filepath"
	"slices"
	"testing"
	"time"

	"github.com/justyntemme/liv/internal/metadata"
	"github.com/justyntemme/liv/internal/preview"
)

type fakeDecoder struct {
	sizes   map[string]image.Point
	decodes int
	configs int
}

var errNoImage = errors.New("no image")

func (d *fakeDecoder) Decode(path string) (image.Image, error) {
	d.decodes++
	sz, ok := d.sizes[filepath.Base(path)]
	if !ok {
		return nil, errNoImage
	}
	return image.NewGray(image.Rect(0, 0, sz.X, sz.Y)), nil
}

func (d *fakeDecoder) DecodeConfig(path string) (image.Config, error) {
	d.configs++
	sz, ok := d.sizes[filepath.Base(path)]
	if !ok {
		return image.Config{}, errNoImage
	}
	return image.Config{Width: sz.X, Height: sz.Y}, nil
}

type fakeMeta struct {
	calls int
	info  metadata.Info
	err   error
}

func (m *fakeMeta) Read(string) (metadata.Info, error) {
	m.calls++
	return m.info, m.err
}

type fakePreviewer struct {
	jobs []preview.Job
	err  error
}

func (p *fakePreviewer) Locate(source string) (preview.Location, error) {
	return preview.Location{Memory: true}, p.err
}

func (p *fakePreviewer) Submit(job preview.Job) error {
	p.jobs = append(p.jobs, job)
	return nil
}

func newLib(sizes map[string]image.Point) (*Library, *fakeDecoder, *fakeMeta) {
	dec := &fakeDecoder{sizes: sizes}
	meta := &fakeMeta{err: metadata.ErrNoMetadata}
	return NewLibrary(dec, meta), dec, meta
}

func TestLibraryGetIsShared(t *testing.T) {
	lib, _, _ := newLib(nil)
	a, _ := lib.Get("/pics/a.jpg")
	b, _ := lib.Get("/pics/../pics/a.jpg")
	if a != b {
		t.Error("Get returned two records for the same absolute path")
	}
	a.Retain()
	a.Retain()
	other, _ := lib.Get("/pics/b.jpg")
	if n := lib.Prune(); n != 1 {
		t.Errorf("Prune: expected 1 dropped, got %d", n)
	}
	if _, ok := lib.Lookup(other.Path()); ok {
		t.Error("unreferenced record survived Prune")
	}
	a.Release()
	lib.Prune()
	if _, ok := lib.Lookup("/pics/a.jpg"); !ok {
		t.Error("record with one reference was pruned")
	}
	a.Release()
	lib.Prune()
	if lib.Len() != 0 {
		t.Errorf("Len after final release: expected 0, got %d", lib.Len())
	}
}

func TestEnsureStat(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "x.jpg")
	os.WriteFile(path, []byte("12345"), 0o644)
	lib, _, _ := newLib(nil)

	r, _ := lib.Get(path)
	if err := r.EnsureStat(); err != nil {
		t.Fatalf("EnsureStat: %v", err)
	}
	if !r.Has(HasStat) || r.Size() != 5 {
		t.Errorf("EnsureStat: expected size 5 with HasStat, got %d (%v)", r.Size(), r.State())
	}

	missing, _ := lib.Get(filepath.Join(dir, "gone.jpg"))
	if err := missing.EnsureStat(); err == nil {
		t.Error("EnsureStat on missing file: expected error")
	}
	if missing.Has(HasStat) {
		t.Error("HasStat set after failed stat")
	}
}

func TestEnsureDecoded(t *testing.T) {
	lib, dec, _ := newLib(map[string]image.Point{"ok.png": {40, 30}})
	ok, _ := lib.Get("/p/ok.png")
	bad, _ := lib.Get("/p/bad.png")

	if err := ok.EnsureDecoded(); err != nil {
		t.Fatalf("EnsureDecoded: %v", err)
	}
	ok.EnsureDecoded()
	if dec.decodes != 1 {
		t.Errorf("decodes: expected 1, got %d", dec.decodes)
	}
	if w, h := ok.KnownDimensions(); w != 40 || h != 30 {
		t.Errorf("dimensions: expected 40x30, got %dx%d", w, h)
	}

	if err := bad.EnsureDecoded(); err == nil {
		t.Error("expected decode failure")
	}
	if bad.Has(HasImage) || bad.Image() != nil {
		t.Error("failed decode left image state behind")
	}
	if err := bad.EnsureDecoded(); err == nil || dec.decodes != 3 {
		t.Errorf("explicit retry should decode again, decodes=%d", dec.decodes)
	}
}

func TestDimensionsProbeHeader(t *testing.T) {
	lib, dec, _ := newLib(map[string]image.Point{"a.png": {8, 6}})
	r, _ := lib.Get("/p/a.png")
	if w, h := r.Dimensions(); w != 8 || h != 6 {
		t.Errorf("Dimensions: expected 8x6, got %dx%d", w, h)
	}
	if r.Has(HasImage) || dec.decodes != 0 {
		t.Error("Dimensions must not decode the full image")
	}
}

func TestEnsureMetadataOnce(t *testing.T) {
	lib, _, meta := newLib(nil)
	r, _ := lib.Get("/p/a.jpg")
	for range 3 {
		if err := r.EnsureMetadata(); !errors.Is(err, metadata.ErrNoMetadata) {
			t.Errorf("EnsureMetadata: expected ErrNoMetadata, got %v", err)
		}
	}
	if meta.calls != 1 {
		t.Errorf("metadata reads: expected 1, got %d", meta.calls)
	}

	taken := time.Date(2020, 1, 2, 3, 4, 5, 0, time.UTC)
	meta.err = nil
	meta.info = metadata.Info{Taken: taken}
	r2, _ := lib.Get("/p/b.jpg")
	if err := r2.EnsureMetadata(); err != nil || !r2.Has(HasExif) {
		t.Fatalf("EnsureMetadata: %v (%v)", err, r2.State())
	}
	if !r2.CaptureTime().Equal(taken) {
		t.Errorf("CaptureTime: expected %v, got %v", taken, r2.CaptureTime())
	}
}

func TestRequestPreviewOnce(t *testing.T) {
	lib, _, _ := newLib(nil)
	r, _ := lib.Get("/p/a.jpg")
	p := &fakePreviewer{}

	r.RequestPreview(p)
	r.RequestPreview(p)
	if len(p.jobs) != 1 {
		t.Fatalf("jobs: expected 1, got %d", len(p.jobs))
	}
	if r.PreviewState() != Pending {
		t.Errorf("state: expected pending, got %v", r.PreviewState())
	}
	if _, ok := r.Preview(); ok {
		t.Error("Preview reported ready while pending")
	}

	p.jobs[0].Done(preview.Result{Size: image.Pt(256, 100)})
	res, ok := r.Preview()
	if !ok || res.Size != image.Pt(256, 100) {
		t.Errorf("Preview after completion: expected 256x100, got %+v (%v)", res, ok)
	}
	r.RequestPreview(p)
	if len(p.jobs) != 1 {
		t.Error("ready record submitted a second job")
	}
}

func TestRequestPreviewFailure(t *testing.T) {
	lib, _, _ := newLib(nil)
	r, _ := lib.Get("/p/a.jpg")
	p := &fakePreviewer{err: preview.ErrDisabled}
	if err := r.RequestPreview(p); !errors.Is(err, preview.ErrDisabled) {
		t.Errorf("expected ErrDisabled, got %v", err)
	}
	res, ok := r.Preview()
	if !ok || res.Err == nil {
		t.Errorf("failed request should be ready with an error, got %+v", res)
	}
}

func TestTags(t *testing.T) {
	lib, _, _ := newLib(nil)
	r, _ := lib.Get("/p/a.jpg")
	r.AddTag("sea")
	r.AddTag("beach")
	if r.AddTag("sea") {
		t.Error("AddTag of existing tag reported new")
	}
	if got := r.AllTags(); !slices.Equal(got, []string{"beach", "sea"}) {
		t.Errorf("AllTags: expected [beach sea], got %v", got)
	}
	if !r.RemoveTag("sea") || r.HasTag("sea") {
		t.Error("RemoveTag did not remove")
	}
	if r.RemoveTag("sea") {
		t.Error("RemoveTag of absent tag reported removed")
	}
}

func TestToggleMarkAndReload(t *testing.T) {
	lib, _, _ := newLib(map[string]image.Point{"a.png": {2, 2}})
	r, _ := lib.Get("/p/a.png")
	if !r.ToggleMark(MarkSelected) || !r.Marked(MarkSelected) {
		t.Error("first toggle should set the mark")
	}
	if r.ToggleMark(MarkSelected) {
		t.Error("second toggle should clear the mark")
	}

	r.EnsureDecoded()
	r.AddTag("keep")
	r.Reload()
	if r.State() != 0 || r.Image() != nil {
		t.Errorf("Reload left state %v", r.State())
	}
	if !r.HasTag("keep") {
		t.Error("Reload dropped tags")
	}
}

func TestReloadKeepsPendingPreview(t *testing.T) {
	lib, _, _ := newLib(nil)
	r, _ := lib.Get("/p/a.png")
	p := &fakePreviewer{}

	r.RequestPreview(p)
	r.Reload()
	r.RequestPreview(p)
	if len(p.jobs) != 1 {
		t.Fatalf("RequestPreview after Reload while pending: expected 1 job, got %d", len(p.jobs))
	}
	if r.PreviewState() != Pending {
		t.Errorf("PreviewState: expected %v, got %v", Pending, r.PreviewState())
	}

	p.jobs[0].Done(preview.Result{Source: r.Path()})
	r.Reload()
	if r.PreviewState() != NotRequested {
		t.Errorf("Reload of a ready preview: expected %v, got %v", NotRequested, r.PreviewState())
	}
	r.RequestPreview(p)
	if len(p.jobs) != 2 {
		t.Errorf("RequestPreview after Reload of a ready preview: expected 2 jobs, got %d", len(p.jobs))
	}
}

func TestChanged(t *testing.T) {
	lib, _, _ := newLib(nil)
	path := filepath.Join(t.TempDir(), "a.png")
	if err := os.WriteFile(path, []byte("one"), 0o644); err != nil {
		t.Fatal(err)
	}
	r, _ := lib.Get(path)
	if r.Changed() {
		t.Error("Changed before any stat: expected false")
	}
	r.EnsureStat()
	if r.Changed() {
		t.Error("Changed right after stat: expected false")
	}
	if err := os.WriteFile(path, []byte("longer"), 0o644); err != nil {
		t.Fatal(err)
	}
	if !r.Changed() {
		t.Error("Changed after rewrite: expected true")
	}
	os.Remove(path)
	if !r.Changed() {
		t.Error("Changed after removal: expected true")
	}
}
