package preview

import (
	"crypto/md5"
	"encoding/hex"
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"
)

// Policy selects where previews live.
type Policy int

const (
	// Freedesktop uses the shared per-user thumbnail cache.
	Freedesktop Policy = iota
	// Local keeps previews in a .thumbnails folder beside each image.
	Local
	// Memory never writes previews to disk.
	Memory
	// None disables previews entirely.
	None
)

var policyNames = map[Policy]string{
	Freedesktop: "freedesktop",
	Local:       "local",
	Memory:      "memory",
	None:        "none",
}

func (p Policy) String() string {
	if s, ok := policyNames[p]; ok {
		return s
	}
	return fmt.Sprintf("Policy(%d)", int(p))
}

// ParsePolicy accepts the names printed by Policy.String.
func ParsePolicy(s string) (Policy, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	for p, name := range policyNames {
		if name == s {
			return p, nil
		}
	}
	return Freedesktop, fmt.Errorf("preview: unknown policy %q", s)
}

var (
	// ErrThumbnailSource is returned for sources that are themselves cached previews.
	ErrThumbnailSource = errors.New("preview: source is inside a thumbnail cache")
	// ErrDisabled is returned by a Locator whose policy is None.
	ErrDisabled = errors.New("preview: previews disabled")
)

// Location is where the preview for one source lives or will live.
type Location struct {
	Path   string // empty for Memory
	Exists bool   // a regular file is already there
	Memory bool
}

// Key identifies the location for deduplication.
func (l Location) Key(source string) string {
	if l.Memory {
		return "mem:" + source
	}
	return l.Path
}

// Locator maps source images to preview locations.
type Locator struct {
	Policy Policy
	Root   string // freedesktop cache root, ".../thumbnails"
}

// NewLocator returns a Locator for p rooted at the user's cache directory.
func NewLocator(p Policy) *Locator {
	return &Locator{Policy: p, Root: CacheRoot()}
}

// CacheRoot returns $XDG_CACHE_HOME/thumbnails, falling back to ~/.cache/thumbnails.
func CacheRoot() string {
	if dir := os.Getenv("XDG_CACHE_HOME"); dir != "" {
		return filepath.Join(dir, "thumbnails")
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(os.TempDir(), "thumbnails")
	}
	return filepath.Join(home, ".cache", "thumbnails")
}

// Hash returns the cache file stem for an absolute path: the MD5 of its file URI.
func Hash(abs string) string {
	u := url.URL{Scheme: "file", Path: filepath.ToSlash(abs)}
	sum := md5.Sum([]byte(u.String()))
	return hex.EncodeToString(sum[:])
}

// IsThumbnailPath reports whether path points into a thumbnail cache.
func IsThumbnailPath(path string) bool {
	p := filepath.ToSlash(path)
	for _, frag := range []string{"/.thumbnails/", "/thumbnails/normal/", "/thumbnails/large/"} {
		if strings.Contains(p, frag) {
			return true
		}
	}
	return false
}

// Locate resolves source to the place its preview should be read from or written to.
func (l *Locator) Locate(source string) (Location, error) {
	if l.Policy == None {
		return Location{}, ErrDisabled
	}
	abs, err := filepath.Abs(source)
	if err != nil {
		return Location{}, err
	}
	if IsThumbnailPath(abs) {
		return Location{}, ErrThumbnailSource
	}

	name := Hash(abs) + ".png"
	switch l.Policy {
	case Memory:
		return Location{Memory: true}, nil
	case Local:
		p := filepath.Join(filepath.Dir(abs), ".thumbnails", name)
		return Location{Path: p, Exists: isRegular(p)}, nil
	}

	large := filepath.Join(l.Root, "large", name)
	if isRegular(large) {
		return Location{Path: large, Exists: true}, nil
	}
	normal := filepath.Join(l.Root, "normal", name)
	if isRegular(normal) {
		return Location{Path: normal, Exists: true}, nil
	}
	return Location{Path: large}, nil
}

func isRegular(path string) bool {
	fi, err := os.Stat(path)
	return err == nil && fi.Mode().IsRegular()
}
