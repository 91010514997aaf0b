// Package record holds per-file image state shared between collection leaves.
//
// A Record is owned by the UI goroutine. The only field touched from other
// goroutines is the preview state, which the preview pipeline completes.
package record

import (
	"image"
	"os"
	"slices"
	"sync/atomic"
	"time"

	"gioui.org/f32"

	"github.com/justyntemme/liv/internal/attr"
	"github.com/justyntemme/liv/internal/debug"
	"github.com/justyntemme/liv/internal/metadata"
	"github.com/justyntemme/liv/internal/preview"
)

// LoadState records which lazy facts about the file are known.
type LoadState uint8

const (
	HasStat LoadState = 1 << iota
	HasImage
	HasExif
)

// PreviewState is the lifecycle of a record's preview.
type PreviewState int32

const (
	NotRequested PreviewState = iota
	Pending
	Ready
)

func (s PreviewState) String() string {
	switch s {
	case NotRequested:
		return "not-requested"
	case Pending:
		return "pending"
	case Ready:
		return "ready"
	}
	return "unknown"
}

// MarkSelected is the mark bit used for the selection zone.
const MarkSelected uint32 = 1

// Previewer locates and generates previews. *preview.Pipeline implements it.
type Previewer interface {
	Locate(source string) (preview.Location, error)
	Submit(job preview.Job) error
}

// Record is one image file.
type Record struct {
	path string
	lib  *Library
	refs int

	state   LoadState
	size    int64
	modTime time.Time

	width, height int
	img           image.Image

	info      metadata.Info
	metaTried bool
	metaErr   error

	previewState  atomic.Int32
	previewResult atomic.Pointer[preview.Result]

	tags        map[string]struct{}
	title       string
	description string
	meta        *attr.Attribute

	transform f32.Affine2D
	marks     uint32
}

// Path returns the absolute file path.
func (r *Record) Path() string { return r.path }

// State returns the load flags.
func (r *Record) State() LoadState { return r.state }

// Has reports whether all bits in s are set.
func (r *Record) Has(s LoadState) bool { return r.state&s == s }

// EnsureStat fills size and modification time. Failure leaves HasStat unset.
func (r *Record) EnsureStat() error {
	if r.Has(HasStat) {
		return nil
	}
	fi, err := os.Stat(r.path)
	if err != nil {
		debug.Log(debug.FS, "stat %s: %v", r.path, err)
		return err
	}
	r.size = fi.Size()
	r.modTime = fi.ModTime()
	r.state |= HasStat
	return nil
}

// Size returns the file size in bytes, or 0 when unknown.
func (r *Record) Size() int64 { return r.size }

// ModTime returns the modification time, or the zero time when unknown.
func (r *Record) ModTime() time.Time { return r.modTime }

// EnsureDecoded decodes the full image. Failure leaves HasImage unset and
// the dimensions untouched.
func (r *Record) EnsureDecoded() error {
	if r.Has(HasImage) {
		return nil
	}
	img, err := r.lib.dec.Decode(r.path)
	if err != nil {
		debug.Log(debug.COLLECTION, "decode %s: %v", r.path, err)
		return err
	}
	r.img = img
	b := img.Bounds()
	r.width, r.height = b.Dx(), b.Dy()
	r.state |= HasImage
	return nil
}

// Image returns the decoded image, or nil before EnsureDecoded succeeds.
func (r *Record) Image() image.Image { return r.img }

// Dimensions returns the full pixel size. When the image has not been
// decoded, the file header is probed once; HasImage stays unset.
func (r *Record) Dimensions() (int, int) {
	if r.width == 0 && r.height == 0 && !r.Has(HasImage) {
		if cfg, err := r.lib.dec.DecodeConfig(r.path); err == nil {
			r.width, r.height = cfg.Width, cfg.Height
		}
	}
	return r.width, r.height
}

// KnownDimensions returns the pixel size without touching the file.
func (r *Record) KnownDimensions() (int, int) { return r.width, r.height }

// EnsureMetadata runs the metadata reader once. Later calls return the
// first outcome.
func (r *Record) EnsureMetadata() error {
	if r.metaTried {
		return r.metaErr
	}
	r.metaTried = true
	if r.lib.meta == nil {
		r.metaErr = metadata.ErrNoMetadata
		return r.metaErr
	}
	info, err := r.lib.meta.Read(r.path)
	if err != nil {
		debug.Log(debug.META, "metadata %s: %v", r.path, err)
		r.metaErr = err
		return err
	}
	r.info = info
	r.state |= HasExif
	return nil
}

// Metadata returns what EnsureMetadata found.
func (r *Record) Metadata() metadata.Info { return r.info }

// CaptureTime is the EXIF capture time when known, otherwise the modification time.
func (r *Record) CaptureTime() time.Time {
	if !r.info.Taken.IsZero() {
		return r.info.Taken
	}
	r.EnsureStat()
	return r.modTime
}

// PreviewState returns the current preview state. Safe from any goroutine.
func (r *Record) PreviewState() PreviewState {
	return PreviewState(r.previewState.Load())
}

// Preview returns the finished preview. ok is false until the state is Ready.
func (r *Record) Preview() (res preview.Result, ok bool) {
	if r.PreviewState() != Ready {
		return preview.Result{}, false
	}
	if p := r.previewResult.Load(); p != nil {
		return *p, true
	}
	return preview.Result{}, false
}

// RequestPreview submits a preview job unless one was already requested.
// Failures end in Ready with Result.Err set so that the record is drawn as
// a placeholder instead of being retried every frame.
func (r *Record) RequestPreview(p Previewer) error {
	if !r.previewState.CompareAndSwap(int32(NotRequested), int32(Pending)) {
		return nil
	}
	loc, err := p.Locate(r.path)
	if err != nil {
		r.finishPreview(preview.Result{Source: r.path, Err: err})
		return err
	}
	err = p.Submit(preview.Job{Source: r.path, Target: loc, Done: r.finishPreview})
	if err != nil {
		r.finishPreview(preview.Result{Source: r.path, Err: err})
		return err
	}
	return nil
}

func (r *Record) finishPreview(res preview.Result) {
	r.previewResult.Store(&res)
	r.previewState.Store(int32(Ready))
}

// AddTag adds t, reporting whether it was new.
func (r *Record) AddTag(t string) bool {
	if t == "" {
		return false
	}
	if r.tags == nil {
		r.tags = make(map[string]struct{})
	}
	if _, ok := r.tags[t]; ok {
		return false
	}
	r.tags[t] = struct{}{}
	return true
}

// RemoveTag removes t, reporting whether it was present.
func (r *Record) RemoveTag(t string) bool {
	if _, ok := r.tags[t]; !ok {
		return false
	}
	delete(r.tags, t)
	return true
}

// HasTag reports whether t is set.
func (r *Record) HasTag(t string) bool {
	_, ok := r.tags[t]
	return ok
}

// AllTags returns the tags in sorted order.
func (r *Record) AllTags() []string {
	out := make([]string, 0, len(r.tags))
	for t := range r.tags {
		out = append(out, t)
	}
	slices.Sort(out)
	return out
}

func (r *Record) Title() string { return r.title }

func (r *Record) SetTitle(s string) { r.title = s }

func (r *Record) Description() string { return r.description }

func (r *Record) SetDescription(s string) { r.description = s }

// Meta returns the opaque metadata block loaded from a collection file.
func (r *Record) Meta() *attr.Attribute { return r.meta }

// SetMeta replaces the opaque metadata block.
func (r *Record) SetMeta(a *attr.Attribute) { r.meta = a }

// Transform places the image on screen in single image view.
func (r *Record) Transform() f32.Affine2D { return r.transform }

// SetTransform replaces the placement matrix.
func (r *Record) SetTransform(m f32.Affine2D) { r.transform = m }

// ToggleMark flips bit and returns its new value.
func (r *Record) ToggleMark(bit uint32) bool {
	r.marks ^= bit
	return r.marks&bit != 0
}

// Marked reports whether bit is set.
func (r *Record) Marked(bit uint32) bool { return r.marks&bit != 0 }

// Changed reports whether the file's size or modification time differ from
// the ones last read. A record that was never statted has not changed.
func (r *Record) Changed() bool {
	if !r.Has(HasStat) {
		return false
	}
	fi, err := os.Stat(r.path)
	if err != nil {
		return true
	}
	return fi.Size() != r.size || !fi.ModTime().Equal(r.modTime)
}

// Reload forgets everything read from disk so the next Ensure call goes
// back to the file. Annotations and marks are kept. A pending preview is
// left to finish; only a ready one is dropped.
func (r *Record) Reload() {
	r.state = 0
	r.size = 0
	r.modTime = time.Time{}
	r.width, r.height = 0, 0
	r.img = nil
	r.info = metadata.Info{}
	r.metaTried = false
	r.metaErr = nil
	if r.PreviewState() == Ready {
		r.previewResult.Store(nil)
		r.previewState.Store(int32(NotRequested))
	}
}
