package record

import (
	"image"
	"path/filepath"
	"sync"

	"github.com/justyntemme/liv/internal/debug"
	"github.com/justyntemme/liv/internal/metadata"
)

// Decoder decodes full images and image headers.
type Decoder interface {
	Decode(path string) (image.Image, error)
	DecodeConfig(path string) (image.Config, error)
}

// MetadataReader extracts EXIF style fields.
type MetadataReader interface {
	Read(path string) (metadata.Info, error)
}

// Library hands out one Record per absolute path.
type Library struct {
	mu      sync.Mutex
	records map[string]*Record
	dec     Decoder
	meta    MetadataReader
}

// NewLibrary returns an empty library. meta may be nil.
func NewLibrary(dec Decoder, meta MetadataReader) *Library {
	return &Library{
		records: make(map[string]*Record),
		dec:     dec,
		meta:    meta,
	}
}

// Get returns the record for path, creating it when needed. The record
// starts unreferenced; leaves call Retain.
func (l *Library) Get(path string) (*Record, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, err
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	if r, ok := l.records[abs]; ok {
		return r, nil
	}
	r := &Record{path: abs, lib: l}
	l.records[abs] = r
	return r, nil
}

// Lookup returns the record for path without creating one.
func (l *Library) Lookup(path string) (*Record, bool) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, false
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	r, ok := l.records[abs]
	return r, ok
}

// Len returns the number of records held.
func (l *Library) Len() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.records)
}

// Prune drops records no leaf refers to and returns how many went.
func (l *Library) Prune() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	n := 0
	for p, r := range l.records {
		if r.refs <= 0 {
			delete(l.records, p)
			n++
		}
	}
	if n > 0 {
		debug.Log(debug.COLLECTION, "pruned %d records, %d left", n, len(l.records))
	}
	return n
}

// Retain adds a reference.
func (r *Record) Retain() {
	r.lib.mu.Lock()
	r.refs++
	r.lib.mu.Unlock()
}

// Release drops a reference. A record at zero references is removed by
// the next Prune.
func (r *Record) Release() {
	r.lib.mu.Lock()
	if r.refs > 0 {
		r.refs--
	}
	r.lib.mu.Unlock()
}

// Refs returns the current reference count.
func (r *Record) Refs() int {
	r.lib.mu.Lock()
	defer r.lib.mu.Unlock()
	return r.refs
}
