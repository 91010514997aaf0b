package fs

import (
	"context"
	"io/fs"
	"os"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/charlievieth/fastwalk"

	"github.com/justyntemme/liv/internal/debug"
	"github.com/justyntemme/liv/internal/decode"
)

type OpType int

const (
	// ReadDir lists subdirectories and images one level deep.
	ReadDir OpType = iota
	// ScanImages lists image files, optionally recursively.
	ScanImages
)

type Request struct {
	Op        OpType
	Path      string
	Recursive bool
	Gen       int64 // Generation counter to track stale requests
}

type Entry struct {
	Name    string
	Path    string
	IsDir   bool
	Size    int64
	ModTime time.Time
}

type Response struct {
	Op      OpType
	Path    string
	Entries []Entry
	Images  []string
	Err     error
	Gen     int64
}

// System serves directory reads off the UI goroutine.
type System struct {
	RequestChan  chan Request
	ResponseChan chan Response
}

func NewSystem() *System {
	return &System{
		RequestChan:  make(chan Request, 10),
		ResponseChan: make(chan Response, 10),
	}
}

func (s *System) Start() {
	for req := range s.RequestChan {
		debug.Log(debug.FS, "Request: op=%d path=%q recursive=%v gen=%d", req.Op, req.Path, req.Recursive, req.Gen)

		var resp Response
		switch req.Op {
		case ReadDir:
			resp = s.readDir(req.Path)
		case ScanImages:
			images, err := s.ScanImages(context.Background(), req.Path, req.Recursive)
			resp = Response{Op: ScanImages, Path: req.Path, Images: images, Err: err}
		}
		resp.Gen = req.Gen
		debug.Log(debug.FS, "Response: op=%d path=%q entries=%d images=%d err=%v",
			resp.Op, resp.Path, len(resp.Entries), len(resp.Images), resp.Err)
		s.ResponseChan <- resp
	}
}

// skipDirRoots contains top-level directories recursive scans never enter.
var skipDirRoots = map[string]bool{
	"dev":        true,
	"proc":       true,
	"sys":        true,
	"run":        true,
	"snap":       true,
	"boot":       true,
	"lost+found": true,
}

// shouldSkipPath returns true if the path should be skipped during a recursive scan.
func shouldSkipPath(path string) bool {
	if len(path) < 2 || path[0] != '/' {
		return false
	}
	rest := path[1:]
	first, _, _ := strings.Cut(rest, "/")
	return skipDirRoots[first]
}

// hidden covers dot files and the .thumbnails cache folder.
func hidden(name string) bool {
	return strings.HasPrefix(name, ".")
}

// ReadDirEntries lists subdirectories and image files directly inside path,
// directories first, each group sorted by name.
func (s *System) ReadDirEntries(path string) ([]Entry, error) {
	resp := s.readDir(path)
	return resp.Entries, resp.Err
}

func (s *System) readDir(path string) Response {
	debug.Log(debug.FS, "readDir: reading %q", path)

	var result []Entry
	var mu sync.Mutex

	conf := &fastwalk.Config{
		Follow: true, // Follow symlinks to get target info
	}

	err := fastwalk.Walk(conf, path, func(fullPath string, d fs.DirEntry, err error) error {
		if err != nil {
			debug.Log(debug.FS_ENTRY, "readDir: walk error at %q: %v", fullPath, err)
			return nil
		}
		if fullPath == path {
			return nil
		}
		if hidden(d.Name()) {
			if d.IsDir() {
				return fastwalk.SkipDir
			}
			return nil
		}

		info, err := fastwalk.StatDirEntry(fullPath, d)
		if err != nil {
			debug.Log(debug.FS_ENTRY, "readDir: skipping %q: stat error: %v", d.Name(), err)
			return nil
		}
		isDir := info.IsDir()
		if isDir || decode.IsImage(d.Name()) {
			mu.Lock()
			result = append(result, Entry{
				Name:    d.Name(),
				Path:    fullPath,
				IsDir:   isDir,
				Size:    info.Size(),
				ModTime: info.ModTime(),
			})
			mu.Unlock()
		}

		// Single level only
		if d.IsDir() {
			return fastwalk.SkipDir
		}
		return nil
	})
	if err != nil {
		debug.Log(debug.FS, "readDir: walk error: %v", err)
		return Response{Op: ReadDir, Path: path, Err: err}
	}

	slices.SortFunc(result, func(a, b Entry) int {
		if a.IsDir != b.IsDir {
			if a.IsDir {
				return -1
			}
			return 1
		}
		return strings.Compare(a.Name, b.Name)
	})
	debug.Log(debug.FS, "readDir: returning %d entries", len(result))
	return Response{Op: ReadDir, Path: path, Entries: result}
}

// ScanImages returns the image files under dir sorted by path. Hidden
// entries are skipped. Symlinks are not followed when recursing.
func (s *System) ScanImages(ctx context.Context, dir string, recursive bool) ([]string, error) {
	debug.Log(debug.FS, "scan: %q recursive=%v", dir, recursive)
	if fi, err := os.Stat(dir); err != nil {
		return nil, err
	} else if !fi.IsDir() {
		return nil, &fs.PathError{Op: "scan", Path: dir, Err: fs.ErrInvalid}
	}

	var results []string
	var mu sync.Mutex

	conf := &fastwalk.Config{
		Follow: !recursive,
	}

	err := fastwalk.Walk(conf, dir, func(fullPath string, d fs.DirEntry, err error) error {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		if err != nil {
			debug.Log(debug.FS_ENTRY, "scan: error at %q: %v", fullPath, err)
			return nil
		}
		if fullPath == dir {
			return nil
		}
		if hidden(d.Name()) || shouldSkipPath(fullPath) {
			if d.IsDir() {
				return fastwalk.SkipDir
			}
			return nil
		}
		if d.IsDir() {
			if !recursive {
				return fastwalk.SkipDir
			}
			return nil
		}
		if !decode.IsImage(d.Name()) {
			return nil
		}
		info, err := fastwalk.StatDirEntry(fullPath, d)
		if err != nil || !info.Mode().IsRegular() {
			return nil
		}
		mu.Lock()
		results = append(results, fullPath)
		mu.Unlock()
		return nil
	})
	if err != nil {
		debug.Log(debug.FS, "scan: walk error: %v", err)
		return nil, err
	}

	slices.Sort(results)
	debug.Log(debug.FS, "scan: %q found %d images", dir, len(results))
	return results, nil
}
