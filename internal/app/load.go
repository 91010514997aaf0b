package app

import (
	"context"
	"fmt"
	"image/color"
	"log"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/justyntemme/liv/internal/collection"
	"github.com/justyntemme/liv/internal/config"
	"github.com/justyntemme/liv/internal/debug"
	"github.com/justyntemme/liv/internal/nav"
	"github.com/justyntemme/liv/internal/store"
)

// startLoading fills the collection from the command line, or reopens the
// most recent collection file when nothing was named.
func (o *Orchestrator) startLoading(cfg config.Config) {
	if len(o.opts.Paths) == 0 && o.opts.Collection == "" && cfg.Behavior.ReopenLast && o.storeOK {
		o.awaitRecent = true
		o.store.RequestChan <- store.Request{Op: store.FetchRecent}
		return
	}
	o.load(o.opts.Paths, o.opts.Collection)
}

// load builds the collection off the window goroutine and hands the result
// over in one piece.
func (o *Orchestrator) load(paths []string, file string) {
	recursive := o.opts.Recursive || o.cfg.Get().Behavior.Recursive
	loader := o.loader
	go func() {
		staging := collection.NewSet(collection.KindSet, "")
		errs := loadInto(context.Background(), loader, staging, paths, o.opts.Tags, file, recursive)
		o.post(func() { o.finishLoad(staging, file, errs) })
	}()
}

// loadInto adds paths, tagged with tags, and then the collection file to
// dst. The current directory is used when nothing else produced an entry.
func loadInto(ctx context.Context, l *collection.Loader, dst *collection.Node, paths, tags []string, file string, recursive bool) []error {
	var errs []error
	for _, p := range paths {
		if err := l.AddPath(ctx, dst, p, recursive); err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", p, err))
		}
	}
	applyTags(dst, tags)
	if file != "" {
		if err := l.Load(ctx, file, dst); err != nil {
			errs = append(errs, err)
		}
	}
	if dst.Len() == 0 {
		if err := l.AddPath(ctx, dst, ".", recursive); err != nil {
			errs = append(errs, err)
		}
	}
	return errs
}

func (o *Orchestrator) finishLoad(staging *collection.Node, file string, errs []error) {
	for _, err := range errs {
		log.Printf("Load: %v", err)
	}
	if len(errs) > 0 {
		o.ui.ShowError(errs[0].Error())
	}

	for _, c := range staging.TakeChildren() {
		o.zones.Collection.AddChild(c, -1)
	}
	if file != "" {
		if abs, err := filepath.Abs(file); err == nil {
			file = abs
		}
		o.nav.SetCollectionFile(file)
		o.addRecent(file)
	}
	if o.zones.Collection.Len() == 1 && !o.zones.Collection.Child(0).IsLeaf() {
		o.nav.SetActive(o.zones.Collection.Child(0))
	}
	o.loaded = true
	o.syncWatches()

	if o.opts.Sort != "" {
		k, err := collection.ParseSortKey(o.opts.Sort)
		if err != nil {
			log.Printf("Sort: %v", err)
			o.ui.ShowError(err.Error())
		} else {
			o.nav.ApplySort(k, o.opts.Reverse)
		}
	} else if o.opts.Reverse {
		o.nav.ApplySort(collection.SortNone, true)
	}
	o.restoreSettings()

	if len(o.zones.Collection.Records()) == 0 {
		fmt.Fprintln(os.Stderr, "liv: no images")
		o.Quit()
		return
	}
	debug.Log(debug.APP, "loaded %d images", len(o.zones.Collection.Records()))
	o.nav.Start(o.opts.SlideDelay > 0)
}

// applyTags adds tags to every image below n.
func applyTags(n *collection.Node, tags []string) {
	if len(tags) == 0 {
		return
	}
	for _, r := range n.Records() {
		for _, t := range tags {
			if t = strings.TrimSpace(t); t != "" {
				r.AddTag(t)
			}
		}
	}
}

var infoNames = map[string]uint{
	"filename":   nav.InfoFilename,
	"index":      nav.InfoIndex,
	"size":       nav.InfoSize,
	"dimensions": nav.InfoDims,
	"tags":       nav.InfoTags,
}

// infoBits maps the configured overlay fields to info bits.
func infoBits(names []string) uint {
	var bits uint
	for _, n := range names {
		n = strings.ToLower(strings.TrimSpace(n))
		if n == "all" {
			bits |= nav.InfoAll
			continue
		}
		b, ok := infoNames[n]
		if !ok {
			log.Printf("Config: unknown info field %q", n)
			continue
		}
		bits |= b
	}
	return bits
}

// parseBackground accepts the colour names white, black and gray, hex in
// #, x or 0x form, and "r,g,b" triples.
func parseBackground(s string) (color.NRGBA, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	switch s {
	case "", "black", "b":
		return color.NRGBA{A: 255}, nil
	case "white", "w":
		return color.NRGBA{R: 255, G: 255, B: 255, A: 255}, nil
	case "gray", "grey", "g":
		return color.NRGBA{R: 128, G: 128, B: 128, A: 255}, nil
	}
	if strings.Contains(s, ",") {
		parts := strings.Split(s, ",")
		if len(parts) != 3 {
			return color.NRGBA{}, fmt.Errorf("background %q: expected r,g,b", s)
		}
		var rgb [3]uint8
		for i, p := range parts {
			v, err := strconv.ParseUint(strings.TrimSpace(p), 10, 8)
			if err != nil {
				return color.NRGBA{}, fmt.Errorf("background %q: %w", s, err)
			}
			rgb[i] = uint8(v)
		}
		return color.NRGBA{R: rgb[0], G: rgb[1], B: rgb[2], A: 255}, nil
	}
	if rest, ok := strings.CutPrefix(s, "0x"); ok {
		s = "#" + rest
	} else if rest, ok := strings.CutPrefix(s, "x"); ok {
		s = "#" + rest
	}
	return config.ParseColor(s)
}
