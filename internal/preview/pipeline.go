// Package preview generates downscaled copies of images in the background.
//
// A Pipeline owns a FIFO of jobs and an ephemeral pool of workers. Workers
// are started by Submit and exit as soon as they find the queue empty.
// Decoding is serialized behind its own lock, separate from the queue lock,
// because the decoders underneath are not assumed to be reentrant.
package preview

import (
	"fmt"
	"image"
	"image/png"
	"os"
	"path/filepath"
	"sync"

	"golang.org/x/image/draw"

	"github.com/justyntemme/liv/internal/debug"
)

// DefaultBound is the largest side of a generated preview.
const DefaultBound = 256

// Decoder produces full size images.
type Decoder interface {
	Decode(path string) (image.Image, error)
}

// Job asks for a preview of Source.
type Job struct {
	Source string
	Target Location
	Done   func(Result) // called from a worker goroutine, may be nil
}

// Result describes a finished job.
type Result struct {
	Source string
	Path   string      // preview file, empty for memory previews
	Image  image.Image // scaled pixels when they were produced by this pipeline
	Size   image.Point
	Err    error
}

// Options configures a Pipeline.
type Options struct {
	Policy  Policy
	Root    string // overrides the freedesktop cache root
	Workers int    // defaults to 1
	Bound   int    // defaults to DefaultBound
	Wake    func() // called after every completed job
}

type pending struct {
	job     Job
	key     string
	waiters []func(Result)
}

// Pipeline is safe for concurrent use.
type Pipeline struct {
	locator *Locator
	dec     Decoder
	bound   int
	wake    func()

	queueMu sync.Mutex
	queue   []*pending
	byKey   map[string]*pending // queued or running, by target key

	decodeMu sync.Mutex

	workerMu sync.Mutex
	active   int
	max      int
}

// New returns an idle Pipeline.
func New(dec Decoder, opts Options) *Pipeline {
	loc := NewLocator(opts.Policy)
	if opts.Root != "" {
		loc.Root = opts.Root
	}
	if opts.Workers <= 0 {
		opts.Workers = 1
	}
	if opts.Bound <= 0 {
		opts.Bound = DefaultBound
	}
	return &Pipeline{
		locator: loc,
		dec:     dec,
		bound:   opts.Bound,
		wake:    opts.Wake,
		byKey:   make(map[string]*pending),
		max:     opts.Workers,
	}
}

// Policy returns the location policy in use.
func (p *Pipeline) Policy() Policy {
	return p.locator.Policy
}

// Locate resolves source using the pipeline's policy.
func (p *Pipeline) Locate(source string) (Location, error) {
	return p.locator.Locate(source)
}

// SetWake replaces the function called after each completed job.
func (p *Pipeline) SetWake(fn func()) {
	p.workerMu.Lock()
	p.wake = fn
	p.workerMu.Unlock()
}

// Submit queues job. A job whose target already exists completes
// immediately on the calling goroutine. Jobs for a target that is already
// queued or running are folded into the existing one.
func (p *Pipeline) Submit(job Job) error {
	if IsThumbnailPath(job.Source) {
		return ErrThumbnailSource
	}
	if !job.Target.Memory {
		if job.Target.Path == "" {
			return fmt.Errorf("preview %s: empty target", job.Source)
		}
		if isRegular(job.Target.Path) {
			res := Result{Source: job.Source, Path: job.Target.Path}
			res.Size, res.Err = pngSize(job.Target.Path)
			if job.Done != nil {
				job.Done(res)
			}
			return nil
		}
	}

	key := job.Target.Key(job.Source)
	p.queueMu.Lock()
	if e, ok := p.byKey[key]; ok {
		if job.Done != nil {
			e.waiters = append(e.waiters, job.Done)
		}
		p.queueMu.Unlock()
		debug.Log(debug.PREVIEW, "coalesced %s", job.Source)
		return nil
	}
	e := &pending{job: job, key: key}
	if job.Done != nil {
		e.waiters = append(e.waiters, job.Done)
	}
	p.queue = append(p.queue, e)
	p.byKey[key] = e
	p.queueMu.Unlock()

	p.spawn()
	return nil
}

// Decode reads path with the pipeline's decoder, serialized with the
// workers.
func (p *Pipeline) Decode(path string) (image.Image, error) {
	p.decodeMu.Lock()
	defer p.decodeMu.Unlock()
	return p.dec.Decode(path)
}

// Queued returns the number of jobs waiting or running.
func (p *Pipeline) Queued() int {
	p.queueMu.Lock()
	defer p.queueMu.Unlock()
	return len(p.byKey)
}

// Active returns the number of running workers.
func (p *Pipeline) Active() int {
	p.workerMu.Lock()
	defer p.workerMu.Unlock()
	return p.active
}

func (p *Pipeline) spawn() {
	p.workerMu.Lock()
	if p.active >= p.max {
		p.workerMu.Unlock()
		return
	}
	p.active++
	p.workerMu.Unlock()
	go p.work()
}

func (p *Pipeline) work() {
	for {
		p.queueMu.Lock()
		if len(p.queue) == 0 {
			// Decrement while still holding queueMu so a concurrent Submit
			// either sees this worker gone or has its job picked up here.
			p.workerMu.Lock()
			p.active--
			p.workerMu.Unlock()
			p.queueMu.Unlock()
			return
		}
		e := p.queue[0]
		p.queue[0] = nil
		p.queue = p.queue[1:]
		p.queueMu.Unlock()

		res := p.generate(e.job)

		p.queueMu.Lock()
		delete(p.byKey, e.key)
		waiters := e.waiters
		p.queueMu.Unlock()

		for _, done := range waiters {
			done(res)
		}

		p.workerMu.Lock()
		wake := p.wake
		p.workerMu.Unlock()
		if wake != nil {
			wake()
		}
	}
}

func (p *Pipeline) generate(job Job) Result {
	res := Result{Source: job.Source}

	p.decodeMu.Lock()
	defer p.decodeMu.Unlock()

	src, err := p.dec.Decode(job.Source)
	if err != nil {
		debug.Log(debug.PREVIEW, "decode %s failed: %v", job.Source, err)
		res.Err = err
		return res
	}
	scaled := Scale(src, p.bound)
	res.Image = scaled
	res.Size = scaled.Bounds().Size()

	if job.Target.Memory {
		return res
	}
	if err := writePNG(job.Target.Path, scaled); err != nil {
		debug.Log(debug.PREVIEW, "write %s failed: %v", job.Target.Path, err)
		res.Err = err
		return res
	}
	res.Path = job.Target.Path
	debug.Log(debug.PREVIEW, "generated %s -> %s (%dx%d)", job.Source, job.Target.Path, res.Size.X, res.Size.Y)
	return res
}

// Scale shrinks src so that neither side exceeds bound. Images already
// within bound are returned unchanged.
func Scale(src image.Image, bound int) image.Image {
	b := src.Bounds()
	w, h := b.Dx(), b.Dy()
	if w <= bound && h <= bound {
		return src
	}

	var scale float64
	if w > h {
		scale = float64(bound) / float64(w)
	} else {
		scale = float64(bound) / float64(h)
	}
	nw := max(1, int(float64(w)*scale))
	nh := max(1, int(float64(h)*scale))

	dst := image.NewRGBA(image.Rect(0, 0, nw, nh))
	draw.BiLinear.Scale(dst, dst.Bounds(), src, b, draw.Src, nil)
	return dst
}

func writePNG(path string, img image.Image) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return err
	}
	tmp, err := os.CreateTemp(dir, ".liv-*.png")
	if err != nil {
		return err
	}
	if err := png.Encode(tmp, img); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return err
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return err
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		os.Remove(tmp.Name())
		return err
	}
	return nil
}

func pngSize(path string) (image.Point, error) {
	f, err := os.Open(path)
	if err != nil {
		return image.Point{}, err
	}
	defer f.Close()
	cfg, err := png.DecodeConfig(f)
	if err != nil {
		return image.Point{}, err
	}
	return image.Pt(cfg.Width, cfg.Height), nil
}
