package collection

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"golang.org/x/sync/errgroup"

	"github.com/justyntemme/liv/internal/attr"
	"github.com/justyntemme/liv/internal/debug"
	"github.com/justyntemme/liv/internal/decode"
	"github.com/justyntemme/liv/internal/record"
)

// ErrMalformed wraps structural problems in a collection file.
var ErrMalformed = errors.New("collection: malformed collection file")

// Scanner lists the images of a directory.
type Scanner interface {
	ScanImages(ctx context.Context, dir string, recursive bool) ([]string, error)
}

// Loader builds collection trees from files, directories and collection documents.
type Loader struct {
	Library *record.Library
	Scanner Scanner
	// Parallel bounds concurrent directory scans during a load. Zero means 4.
	Parallel int
}

// Load reads a collection file and appends its entries to dst. On any
// error dst is left as it was.
func (l *Loader) Load(ctx context.Context, path string, dst *Node) error {
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()
	abs, err := filepath.Abs(path)
	if err != nil {
		return err
	}
	if err := l.LoadFrom(ctx, f, filepath.Dir(abs), dst); err != nil {
		return fmt.Errorf("load %s: %w", path, err)
	}
	return nil
}

// LoadFrom parses a collection document, resolving relative paths against base.
func (l *Loader) LoadFrom(ctx context.Context, r io.Reader, base string, dst *Node) error {
	if dst.IsLeaf() {
		return ErrNotSet
	}
	doc, err := attr.Parse(r)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrMalformed, err)
	}

	tmp := NewSet(KindSet, "")
	b := &builder{base: base}
	if err := l.build(doc.Children, tmp, b); err != nil {
		tmp.Release()
		return err
	}
	if err := l.scanAll(ctx, b.dirs); err != nil {
		tmp.Release()
		return err
	}
	// Records may be shared with the live tree, so their notes are only
	// written once nothing can fail.
	for _, n := range b.notes {
		applyRecordNotes(n.rec, n.atts)
	}
	for _, c := range tmp.TakeChildren() {
		dst.AddChild(c, -1)
	}
	debug.Log(debug.COLLECTION, "loaded %d entries into %q", dst.Len(), dst.Name)
	return nil
}

// builder collects what a document build defers until it succeeds.
type builder struct {
	base  string
	dirs  []*Node
	notes []recordNotes
}

type recordNotes struct {
	rec  *record.Record
	atts []*attr.Attribute
}

func (l *Loader) build(entries []*attr.Attribute, parent *Node, b *builder) error {
	for _, e := range entries {
		switch e.Name {
		case "file":
			if e.Value == "" {
				return fmt.Errorf("%w: file entry without a path", ErrMalformed)
			}
			if err := checkRecordNotes(e.Children); err != nil {
				return err
			}
			rec, err := l.Library.Get(resolve(b.base, e.Value))
			if err != nil {
				return err
			}
			if _, err := parent.AddLeaf(rec, -1); err != nil {
				return err
			}
			if len(e.Children) > 0 {
				b.notes = append(b.notes, recordNotes{rec, e.Children})
			}

		case "directory":
			if e.Value == "" {
				return fmt.Errorf("%w: directory entry without a path", ErrMalformed)
			}
			dir := NewSet(KindDirectory, resolve(b.base, e.Value))
			for _, c := range e.Children {
				if c.Name == "recursive" {
					dir.Recursive = true
				}
			}
			if err := applySetNotes(&dir.Notes, e.Children, "recursive"); err != nil {
				return err
			}
			parent.AddChild(dir, -1)
			b.dirs = append(b.dirs, dir)

		case "set":
			set := NewSet(KindSet, e.Value)
			parent.AddChild(set, -1)
			var sub []*attr.Attribute
			var notes []*attr.Attribute
			for _, c := range e.Children {
				switch c.Name {
				case "file", "directory", "set":
					sub = append(sub, c)
				default:
					notes = append(notes, c)
				}
			}
			if err := applySetNotes(&set.Notes, notes); err != nil {
				return err
			}
			if err := l.build(sub, set, b); err != nil {
				return err
			}

		default:
			return fmt.Errorf("%w: unknown entry %q", ErrMalformed, e.Name)
		}
	}
	return nil
}

func resolve(base, p string) string {
	if strings.HasPrefix(p, "~/") {
		if home, err := os.UserHomeDir(); err == nil {
			p = filepath.Join(home, p[2:])
		}
	}
	if filepath.IsAbs(p) || base == "" {
		return filepath.Clean(p)
	}
	return filepath.Join(base, p)
}

func checkRecordNotes(atts []*attr.Attribute) error {
	for _, a := range atts {
		switch a.Name {
		case "tags", "title", "description", "meta":
		default:
			return fmt.Errorf("%w: unknown file attribute %q", ErrMalformed, a.Name)
		}
	}
	return nil
}

func applyRecordNotes(rec *record.Record, atts []*attr.Attribute) {
	for _, a := range atts {
		switch a.Name {
		case "tags":
			for _, t := range strings.Fields(a.Value) {
				rec.AddTag(t)
			}
		case "title":
			rec.SetTitle(a.Value)
		case "description":
			rec.SetDescription(a.Value)
		case "meta":
			rec.SetMeta(a.Clone())
		}
	}
}

func applySetNotes(n *Notes, atts []*attr.Attribute, allowed ...string) error {
	for _, a := range atts {
		switch a.Name {
		case "tags":
			n.Tags = append(n.Tags, strings.Fields(a.Value)...)
		case "title":
			n.Title = a.Value
		case "description":
			n.Description = a.Value
		case "meta":
			n.Meta = a.Clone()
		default:
			if !slices.Contains(allowed, a.Name) {
				return fmt.Errorf("%w: unknown set attribute %q", ErrMalformed, a.Name)
			}
		}
	}
	return nil
}

// scanAll scans every directory set concurrently, then fills them in order.
func (l *Loader) scanAll(ctx context.Context, dirs []*Node) error {
	if len(dirs) == 0 {
		return nil
	}
	found := make([][]string, len(dirs))
	g, ctx := errgroup.WithContext(ctx)
	limit := l.Parallel
	if limit <= 0 {
		limit = 4
	}
	g.SetLimit(limit)
	for i, d := range dirs {
		g.Go(func() error {
			paths, err := l.Scanner.ScanImages(ctx, d.Name, d.Recursive)
			if err != nil {
				return fmt.Errorf("scan %s: %w", d.Name, err)
			}
			found[i] = paths
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}
	for i, d := range dirs {
		if err := l.Fill(d, found[i]); err != nil {
			return err
		}
	}
	return nil
}

// Fill replaces the children of a directory set with leaves for paths.
// Records shared with other leaves keep their state.
func (l *Loader) Fill(dir *Node, paths []string) error {
	fresh := NewSet(KindSet, "")
	for _, p := range paths {
		rec, err := l.Library.Get(p)
		if err != nil {
			fresh.Release()
			return err
		}
		fresh.AddLeaf(rec, -1)
	}
	dir.Clear()
	for _, c := range fresh.TakeChildren() {
		dir.AddChild(c, -1)
	}
	return nil
}

// Rescan reads a directory set's directory again.
func (l *Loader) Rescan(ctx context.Context, dir *Node) error {
	if dir.Kind != KindDirectory {
		return fmt.Errorf("rescan %q: %w", dir.Name, ErrNotSet)
	}
	paths, err := l.Scanner.ScanImages(ctx, dir.Name, dir.Recursive)
	if err != nil {
		return err
	}
	return l.Fill(dir, paths)
}

// AddPath adds one command line argument to dst: an image becomes a leaf,
// a directory becomes its images (recursive) or a directory set, and any
// other file is read as a collection document.
func (l *Loader) AddPath(ctx context.Context, dst *Node, path string, recursive bool) error {
	fi, err := os.Stat(path)
	if err != nil {
		return err
	}
	abs, err := filepath.Abs(path)
	if err != nil {
		return err
	}
	switch {
	case fi.IsDir():
		dir := NewSet(KindDirectory, abs)
		dir.Recursive = recursive
		if err := l.Rescan(ctx, dir); err != nil {
			dir.Release()
			return err
		}
		if recursive {
			// Flatten: a recursive add behaves like listing every image.
			for _, c := range dir.TakeChildren() {
				dst.AddChild(c, -1)
			}
			return nil
		}
		return dst.AddChild(dir, -1)

	case decode.IsImage(abs):
		rec, err := l.Library.Get(abs)
		if err != nil {
			return err
		}
		_, err = dst.AddLeaf(rec, -1)
		return err

	default:
		set := NewSet(KindFile, abs)
		if err := l.Load(ctx, abs, set); err != nil {
			return err
		}
		return dst.AddChild(set, -1)
	}
}

// Save writes the children of n as a collection document. Paths are
// written absolute.
func Save(w io.Writer, n *Node) error {
	return attr.Write(w, entries(n), 0)
}

// SaveFile writes n to path through a temporary file.
func SaveFile(path string, n *Node) error {
	var buf bytes.Buffer
	if err := Save(&buf, n); err != nil {
		return err
	}
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, buf.Bytes(), 0o644); err != nil {
		return err
	}
	if err := os.Rename(tmp, path); err != nil {
		os.Remove(tmp)
		return err
	}
	debug.Log(debug.COLLECTION, "saved %d entries to %s", n.Len(), path)
	return nil
}

func entries(n *Node) []*attr.Attribute {
	var out []*attr.Attribute
	for _, c := range n.children {
		switch c.Kind {
		case KindLeaf:
			if c.Record == nil {
				continue
			}
			r := c.Record
			a := attr.New("file", r.Path())
			if tags := r.AllTags(); len(tags) > 0 {
				a.Push("tags", strings.Join(tags, " "))
			}
			if r.Title() != "" {
				a.Push("title", r.Title())
			}
			if r.Description() != "" {
				a.Push("description", r.Description())
			}
			if m := r.Meta(); m != nil {
				a.Children = append(a.Children, m.Clone())
			}
			out = append(out, a)

		case KindDirectory:
			a := attr.New("directory", c.Name)
			if c.Recursive {
				a.Push("recursive", "")
			}
			pushNotes(a, c.Notes)
			out = append(out, a)

		default:
			a := attr.New("set", c.Name)
			pushNotes(a, c.Notes)
			a.Children = append(a.Children, entries(c)...)
			out = append(out, a)
		}
	}
	return out
}

func pushNotes(a *attr.Attribute, n Notes) {
	if len(n.Tags) > 0 {
		a.Push("tags", strings.Join(n.Tags, " "))
	}
	if n.Title != "" {
		a.Push("title", n.Title)
	}
	if n.Description != "" {
		a.Push("description", n.Description)
	}
	if n.Meta != nil {
		a.Children = append(a.Children, n.Meta.Clone())
	}
}
