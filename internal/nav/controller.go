// Package nav is the view state machine of the browser: it owns the view
// mode, the active zone and current image, turns pointer and key input into
// actions, and applies them to the collection tree.
//
// A Controller is used from the UI goroutine only.
package nav

import (
	"errors"
	"fmt"
	"path/filepath"
	"time"

	"gioui.org/f32"

	"github.com/justyntemme/liv/internal/collection"
	"github.com/justyntemme/liv/internal/debug"
	"github.com/justyntemme/liv/internal/record"
)

// ErrNoMoreContent is reported once to the host when the active zone runs
// out of images.
var ErrNoMoreContent = errors.New("nav: no more content")

// Host is the window side of the controller.
type Host interface {
	Redraw()
	Quit()
	ToggleFullscreen()
	SetTitle(title string)
	// PromptTag asks the user for a tag for r, starting from old ("" for a
	// new tag). The answer comes back through Controller.ApplyTag.
	PromptTag(r *record.Record, old string)
	// ListDirectory asks for the contents of dir, answered through
	// Controller.ShowDirectory.
	ListDirectory(dir string)
	// PromptSave asks for a file name, answered through Controller.SaveTo.
	PromptSave(suggest string)
	// NoMoreContent is called once when the last image is gone.
	NoMoreContent(err error)
	// StartTimer arms a repeating timer that calls Controller.Tick with the
	// returned id. StopTimer cancels it.
	StartTimer(d time.Duration) int
	StopTimer(id int)
}

// Info overlay bits, enabled in this order by ActToggleInfo.
const (
	InfoFilename uint = 1 << iota
	InfoIndex
	InfoSize
	InfoDims
	InfoTags
	InfoAll = InfoFilename | InfoIndex | InfoSize | InfoDims | InfoTags
)

// Options are the start up settings.
type Options struct {
	SlideDelay time.Duration // default 2s
	AutoRemove bool
	OneToOne   bool // place new images at 1:1 instead of fitting them
	Verbose    bool
	ShowMeta   bool
	Info       uint
	ThumbGap   float32 // default 5
}

// Controller is the navigation state machine.
type Controller struct {
	zones    *collection.Zones
	previews record.Previewer
	host     Host
	opts     Options

	active   *collection.Node
	current  int
	mode     ViewMode
	lastMode ViewMode

	sortKey  collection.SortKey
	reversed bool

	viewMarked     bool
	collectionFile string
	fsDir          string

	winW, winH float32
	screenRot  int
	screen     f32.Affine2D
	thumbs     f32.Affine2D
	lineH      float32
	menuW      float32

	placed       map[*record.Record]bool
	lastViewJump int
	pointer      f32.Point

	info     uint
	showMeta bool
	verbose  bool
	menuOpen bool

	timer   int
	timerOn bool

	signaled bool

	regions  []Region
	menu     []Region
	tagBoxes []Region
	selBoxes []Region
	help     []string
}

// New returns a controller browsing the collection zone in Normal mode.
func New(zones *collection.Zones, previews record.Previewer, host Host, opts Options) *Controller {
	if opts.SlideDelay <= 0 {
		opts.SlideDelay = 2 * time.Second
	}
	if opts.ThumbGap <= 0 {
		opts.ThumbGap = 5
	}
	c := &Controller{
		zones:    zones,
		previews: previews,
		host:     host,
		opts:     opts,
		active:   zones.Collection,
		current:  -1,
		mode:     Normal,
		lastMode: Normal,
		placed:   make(map[*record.Record]bool),
		info:     opts.Info,
		verbose:  opts.Verbose,
		showMeta: opts.ShowMeta,
		lineH:    16,
		menuW:    160,
	}
	c.Resize(zones.Collection.FixedWidth, zones.Collection.FixedHeight)
	return c
}

// Start selects the first image, optionally going straight into the slideshow.
func (c *Controller) Start(slideshow bool) {
	c.prepareZone(c.active)
	c.selectImage(0, 1)
	if slideshow {
		c.play()
	}
	c.host.Redraw()
}

func (c *Controller) Mode() ViewMode { return c.mode }

func (c *Controller) Active() *collection.Node { return c.active }

func (c *Controller) Current() int { return c.current }

func (c *Controller) SortKey() (collection.SortKey, bool) { return c.sortKey, c.reversed }

func (c *Controller) InfoBits() uint { return c.info }

func (c *Controller) ThumbMatrix() f32.Affine2D { return c.thumbs }

func (c *Controller) ScreenMatrix() f32.Affine2D { return c.screen }

func (c *Controller) CollectionFile() string { return c.collectionFile }

func (c *Controller) ViewingSelection() bool { return c.viewMarked }

// SetCollectionFile remembers the file the collection was loaded from.
func (c *Controller) SetCollectionFile(path string) { c.collectionFile = path }

// SetInfo replaces the info overlay bits.
func (c *Controller) SetInfo(bits uint) { c.info = bits & InfoAll }

// SetHelp replaces the lines shown in Help mode.
func (c *Controller) SetHelp(lines []string) { c.help = lines }

// SetActive browses n, which must be a zone or a set inside one.
func (c *Controller) SetActive(n *collection.Node) {
	if n == nil || n.IsLeaf() {
		return
	}
	c.active = n
	c.viewMarked = n == c.zones.Selection
	c.prepareZone(n)
	c.current = -1
	c.selectImage(0, 1)
}

// CurrentNode returns the current child of the active zone, or nil.
func (c *Controller) CurrentNode() *collection.Node {
	return c.active.Child(c.current)
}

func (c *Controller) currentRecord() *record.Record {
	if n := c.CurrentNode(); n != nil {
		return n.Record
	}
	return nil
}

// CurrentRecord returns the record of the current image, or nil.
func (c *Controller) CurrentRecord() *record.Record { return c.currentRecord() }

// Transform returns the window transform of the current image.
func (c *Controller) Transform() f32.Affine2D {
	r := c.currentRecord()
	if r == nil {
		return c.screen
	}
	return c.screen.Mul(c.transformOf(r))
}

// transformOf returns r's placement, fitting it (or setting 1:1) the first
// time it is shown.
func (c *Controller) transformOf(r *record.Record) f32.Affine2D {
	if !c.placed[r] {
		c.placed[r] = true
		if c.opts.OneToOne {
			r.SetTransform(f32.Affine2D{})
			r.SetTransform(c.centerMatrix(r))
		} else {
			r.SetTransform(c.fitMatrix(r))
		}
	}
	return r.Transform()
}

// Resize is called when the window size changes.
func (c *Controller) Resize(w, h float32) {
	if w <= 0 || h <= 0 {
		return
	}
	if w == c.winW && h == c.winH {
		return
	}
	c.winW, c.winH = w, h
	c.screen = screenMatrix(c.screenRot, w, h)
	c.zones.Resize(w, h)
	c.prepareZone(c.active)
	c.rebuildRegions()
	if r := c.currentRecord(); r != nil && c.placed[r] {
		r.SetTransform(c.fitMatrix(r))
	}
}

// prepareZone lays out n to the window width at the current thumbnail zoom.
func (c *Controller) prepareZone(n *collection.Node) {
	s := xNorm(c.thumbs)
	if s <= 0 {
		s = 1
	}
	n.Gap = c.opts.ThumbGap
	n.Width = c.winW / s
	n.Height = c.winH / s
	n.Relayout()
}

// selectImage makes child i current, wrapping at both ends. With auto
// remove on, undecodable images are dropped and the scan continues in
// direction dir.
func (c *Controller) selectImage(i, dir int) bool {
	removed := false
	for {
		n := c.active.Len()
		if n == 0 {
			c.current = -1
			if removed {
				c.prepareZone(c.active)
			}
			c.signalEmpty()
			return false
		}
		i = ((i % n) + n) % n
		child := c.active.Child(i)
		if child.IsLeaf() && child.Record != nil {
			r := child.Record
			if err := r.EnsureDecoded(); err != nil && c.opts.AutoRemove {
				debug.Log(debug.NAV, "auto remove %s: %v", r.Path(), err)
				gone, _ := c.active.RemoveChild(i)
				c.unplace(gone)
				gone.Release()
				removed = true
				if dir < 0 {
					i--
				}
				continue
			}
			r.EnsureStat()
			if c.showMeta {
				r.EnsureMetadata()
			}
			c.transformOf(r)
		}
		c.current = i
		c.signaled = false
		if removed {
			c.prepareZone(c.active)
		}
		c.updateTitle()
		return true
	}
}

func (c *Controller) unplace(n *collection.Node) {
	n.Walk(func(x *collection.Node) bool {
		if x.Record != nil {
			delete(c.placed, x.Record)
		}
		return true
	})
}

func (c *Controller) signalEmpty() {
	if c.signaled || c.active == c.zones.Filesystem {
		return
	}
	c.signaled = true
	debug.Log(debug.NAV, "no more content in %q", c.active.Name)
	c.host.NoMoreContent(ErrNoMoreContent)
}

func (c *Controller) updateTitle() {
	n := c.CurrentNode()
	if n == nil {
		c.host.SetTitle("liv")
		return
	}
	name := n.Name
	if n.Record != nil {
		name = filepath.Base(n.Record.Path())
	}
	c.host.SetTitle(fmt.Sprintf("liv: %s (%d/%d)", name, c.current+1, c.active.Len()))
}

// Tick advances the slideshow when id is its timer.
func (c *Controller) Tick(id int) {
	if !c.timerOn || id != c.timer || c.mode != Slideshow {
		return
	}
	c.selectImage(c.current+1, 1)
	c.host.Redraw()
}
