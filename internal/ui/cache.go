package ui

import (
	"container/list"
	"image"
	"sync"

	"gioui.org/op/paint"
	"golang.org/x/image/draw"

	"github.com/justyntemme/liv/internal/debug"
	"github.com/justyntemme/liv/internal/nav"
)

// Decoder reads preview files for the cache.
type Decoder interface {
	Decode(path string) (image.Image, error)
}

// PictureCache is an LRU of image ops keyed by nav.Picture.Key. Pictures
// that carry pixels are converted on the spot; pictures that only name a
// file are loaded in the background.
type PictureCache struct {
	mu        sync.Mutex
	cache     map[string]*pictureEntry
	lru       *list.List // front = most recent
	maxSize   int
	maxPixels int // largest side of a loaded file; 0 keeps the original size

	dec    Decoder
	loaded func() // called after a background load, may be nil

	pendingMu sync.Mutex
	pending   map[string]bool
	loadChan  chan nav.Picture
	stopChan  chan struct{}
	stopOnce  sync.Once
}

type pictureEntry struct {
	key     string
	src     image.Image // pixels the op was built from, nil for loaded files
	op      paint.ImageOp
	size    image.Point
	element *list.Element
}

// NewPictureCache starts a cache holding up to maxEntries ops.
func NewPictureCache(dec Decoder, maxEntries, maxPixels int, loaded func()) *PictureCache {
	if maxEntries <= 0 {
		maxEntries = 256
	}
	pc := &PictureCache{
		cache:     make(map[string]*pictureEntry),
		lru:       list.New(),
		maxSize:   maxEntries,
		maxPixels: maxPixels,
		dec:       dec,
		loaded:    loaded,
		pending:   make(map[string]bool),
		loadChan:  make(chan nav.Picture, 100),
		stopChan:  make(chan struct{}),
	}
	go pc.backgroundLoader()
	return pc
}

// Lookup returns the op for p. A picture with pixels replaces a cached op
// built from different pixels under the same key. A path-only picture is
// queued and reported missing until it has been loaded.
func (pc *PictureCache) Lookup(p nav.Picture) (paint.ImageOp, bool) {
	pc.mu.Lock()
	if e, ok := pc.cache[p.Key]; ok && (p.Image == nil || e.src == p.Image) {
		pc.lru.MoveToFront(e.element)
		op := e.op
		pc.mu.Unlock()
		return op, true
	}
	pc.mu.Unlock()

	if p.Image != nil {
		op := paint.NewImageOp(p.Image)
		pc.put(p.Key, p.Image, op, p.Image.Bounds().Size())
		return op, true
	}
	if p.Path != "" {
		pc.requestLoad(p)
	}
	return paint.ImageOp{}, false
}

func (pc *PictureCache) requestLoad(p nav.Picture) {
	pc.pendingMu.Lock()
	if pc.pending[p.Key] {
		pc.pendingMu.Unlock()
		return
	}
	pc.pending[p.Key] = true
	pc.pendingMu.Unlock()

	select {
	case pc.loadChan <- p:
	default:
		// Full; the next frame asks again.
		pc.pendingMu.Lock()
		delete(pc.pending, p.Key)
		pc.pendingMu.Unlock()
	}
}

// Forget drops the entry for key, if any.
func (pc *PictureCache) Forget(key string) {
	pc.mu.Lock()
	defer pc.mu.Unlock()
	if e, ok := pc.cache[key]; ok {
		pc.lru.Remove(e.element)
		delete(pc.cache, key)
	}
}

// Clear removes all entries.
func (pc *PictureCache) Clear() {
	pc.mu.Lock()
	pc.cache = make(map[string]*pictureEntry)
	pc.lru = list.New()
	pc.mu.Unlock()

	pc.pendingMu.Lock()
	pc.pending = make(map[string]bool)
	pc.pendingMu.Unlock()

	debug.Log(debug.UI, "PictureCache: cleared")
}

// Stop shuts down the background loader. It is safe to call twice.
func (pc *PictureCache) Stop() {
	pc.stopOnce.Do(func() { close(pc.stopChan) })
}

func (pc *PictureCache) backgroundLoader() {
	for {
		select {
		case <-pc.stopChan:
			return
		case p := <-pc.loadChan:
			pc.load(p)
		}
	}
}

func (pc *PictureCache) load(p nav.Picture) {
	defer func() {
		pc.pendingMu.Lock()
		delete(pc.pending, p.Key)
		pc.pendingMu.Unlock()
	}()

	img, err := pc.dec.Decode(p.Path)
	if err != nil {
		debug.Log(debug.UI, "PictureCache: failed to decode %s: %v", p.Path, err)
		return
	}
	size := img.Bounds().Size()
	scaled := pc.scale(img)
	pc.put(p.Key, nil, paint.NewImageOp(scaled), size)
	debug.Log(debug.UI, "PictureCache: cached %s (%dx%d, op %dx%d)",
		p.Key, size.X, size.Y, scaled.Bounds().Dx(), scaled.Bounds().Dy())

	if pc.loaded != nil {
		pc.loaded()
	}
}

// scale fits src within maxPixels.
func (pc *PictureCache) scale(src image.Image) image.Image {
	b := src.Bounds()
	w, h := b.Dx(), b.Dy()
	if pc.maxPixels <= 0 || (w <= pc.maxPixels && h <= pc.maxPixels) {
		return src
	}
	var s float64
	if w > h {
		s = float64(pc.maxPixels) / float64(w)
	} else {
		s = float64(pc.maxPixels) / float64(h)
	}
	dst := image.NewRGBA(image.Rect(0, 0, max(1, int(float64(w)*s)), max(1, int(float64(h)*s))))
	draw.BiLinear.Scale(dst, dst.Bounds(), src, b, draw.Over, nil)
	return dst
}

func (pc *PictureCache) put(key string, src image.Image, op paint.ImageOp, size image.Point) {
	pc.mu.Lock()
	defer pc.mu.Unlock()

	if e, ok := pc.cache[key]; ok {
		e.src, e.op, e.size = src, op, size
		pc.lru.MoveToFront(e.element)
		return
	}
	for pc.lru.Len() >= pc.maxSize {
		oldest := pc.lru.Back()
		if oldest == nil {
			break
		}
		old := oldest.Value.(*pictureEntry)
		delete(pc.cache, old.key)
		pc.lru.Remove(oldest)
		debug.Log(debug.UI, "PictureCache: evicted %s", old.key)
	}
	e := &pictureEntry{key: key, src: src, op: op, size: size}
	e.element = pc.lru.PushFront(e)
	pc.cache[key] = e
}

// Len returns the number of cached ops.
func (pc *PictureCache) Len() int {
	pc.mu.Lock()
	defer pc.mu.Unlock()
	return len(pc.cache)
}
