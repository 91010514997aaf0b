package nav

import (
	"path/filepath"
	"strings"

	"gioui.org/f32"

	"github.com/justyntemme/liv/internal/collection"
	"github.com/justyntemme/liv/internal/debug"
	"github.com/justyntemme/liv/internal/record"
)

// Dispatch applies a. Any action leaves Help first.
func (c *Controller) Dispatch(a Action) {
	debug.Log(debug.NAV, "dispatch %s in %s", a, c.mode)
	if c.mode == Help && a.Kind != ActQuit && a.Kind != ActToggleFullscreen {
		c.leaveHelp()
		c.host.Redraw()
		return
	}

	switch a.Kind {
	case ActNone:
		return
	case ActNext:
		c.next()
	case ActPrevious:
		c.previous()
	case ActBeginning:
		c.beginning()
	case ActEnd:
		c.end()
	case ActParent:
		c.parent()
	case ActPlay:
		c.play()
	case ActPause:
		c.pause()
	case ActOneToOne:
		c.oneToOne(c.pointOr(a.At))
	case ActFit:
		c.fit()
	case ActCenter:
		c.center()
	case ActZoomIn:
		c.zoom(c.pointOr(a.At), zoomStep)
	case ActZoomOut:
		c.zoom(c.pointOr(a.At), 1/zoomStep)
	case ActRotateImage:
		c.rotateImage(1)
	case ActRotateImageBack:
		c.rotateImage(-1)
	case ActRotateScreen:
		c.rotateScreen(1)
	case ActRotateScreenBack:
		c.rotateScreen(-1)
	case ActSelect:
		c.toggleSelect()
	case ActRemove:
		c.remove()
	case ActReplaceWithSelected:
		c.replaceWithSelected()
	case ActShowSelectedImage:
		c.showSelectedImage(a.Index)
	case ActShowAllSelected:
		c.showAllSelected()
	case ActToggleBrowse:
		c.toggleBrowse()
	case ActBrowseFilesystem:
		c.browseFilesystem()
	case ActRemapThumbs:
		c.remapThumbs()
	case ActToggleInfo:
		c.toggleInfo()
	case ActToggleMeta:
		c.toggleMeta()
	case ActToggleVerbose:
		c.verbose = !c.verbose
	case ActToggleFullscreen:
		c.host.ToggleFullscreen()
	case ActToggleMenu:
		c.toggleMenu()
	case ActNewTag:
		c.newTag()
	case ActEditTag:
		c.editTag(a.Text)
	case ActSort:
		c.sort(a.Sort)
	case ActReverse:
		c.reverse()
	case ActSave:
		c.save()
	case ActHelp:
		c.enterHelp()
	case ActQuit:
		c.host.Quit()
		return
	case ActViewAt:
		c.viewAt(a.At)
	}
	c.host.Redraw()
}

// pointOr returns p, or the window center when p is unset.
func (c *Controller) pointOr(p f32.Point) f32.Point {
	if p == (f32.Point{}) {
		return f32.Pt(c.winW/2, c.winH/2)
	}
	return p
}

func (c *Controller) next() { c.selectImage(c.current+1, 1) }

func (c *Controller) previous() { c.selectImage(c.current-1, -1) }

func (c *Controller) beginning() { c.selectImage(0, 1) }

func (c *Controller) end() { c.selectImage(c.active.Len()-1, -1) }

// parent browses the set containing the active one, selecting the set just left.
func (c *Controller) parent() {
	if c.active == c.zones.Filesystem {
		if c.fsDir != "" && filepath.Dir(c.fsDir) != c.fsDir {
			c.host.ListDirectory(filepath.Dir(c.fsDir))
		}
		return
	}
	p := c.active.Parent()
	if p == nil || p == c.zones.Root {
		return
	}
	from := c.active
	c.active = p
	c.prepareZone(p)
	c.selectImage(p.Index(from), 1)
}

func (c *Controller) play() {
	if c.mode == Slideshow {
		c.pause()
		return
	}
	c.mode = Slideshow
	c.timer = c.host.StartTimer(c.opts.SlideDelay)
	c.timerOn = true
	debug.Log(debug.NAV, "slideshow every %v", c.opts.SlideDelay)
}

func (c *Controller) pause() {
	if c.mode != Slideshow {
		return
	}
	if c.timerOn {
		c.host.StopTimer(c.timer)
		c.timerOn = false
	}
	c.mode = Normal
}

func (c *Controller) fit() {
	if r := c.currentRecord(); r != nil {
		c.transformOf(r)
		r.SetTransform(c.fitMatrix(r))
	}
}

func (c *Controller) center() {
	if r := c.currentRecord(); r != nil {
		r.SetTransform(c.centerMatrix(r))
	}
}

// toggleSelect adds the current image to the selection zone or takes it out.
func (c *Controller) toggleSelect() {
	r := c.currentRecord()
	if r == nil {
		return
	}
	sel := c.zones.Selection
	if i := sel.IndexOfRecord(r); i >= 0 {
		gone, _ := sel.RemoveChild(i)
		gone.Release()
		if r.Marked(record.MarkSelected) {
			r.ToggleMark(record.MarkSelected)
		}
		if c.active == sel {
			c.selectImage(c.current, 1)
		}
	} else {
		sel.AddLeaf(r, -1)
		if !r.Marked(record.MarkSelected) {
			r.ToggleMark(record.MarkSelected)
		}
	}
	c.prepareZone(sel)
}

// remove drops the current child from the active zone.
func (c *Controller) remove() {
	n := c.CurrentNode()
	if n == nil {
		return
	}
	gone, _ := c.active.RemoveChild(c.current)
	if c.active == c.zones.Selection && gone.Record != nil && gone.Record.Marked(record.MarkSelected) {
		gone.Record.ToggleMark(record.MarkSelected)
	}
	c.unplace(gone)
	gone.Release()
	c.prepareZone(c.active)
	c.selectImage(c.current, 1)
}

// replaceWithSelected makes the selection the working collection.
func (c *Controller) replaceWithSelected() {
	sel := c.zones.Selection
	if sel.Len() == 0 {
		return
	}
	coll := c.zones.Collection
	coll.Clear()
	for _, r := range sel.Records() {
		coll.AddLeaf(r, -1)
		if r.Marked(record.MarkSelected) {
			r.ToggleMark(record.MarkSelected)
		}
	}
	sel.Clear()
	c.active = coll
	c.viewMarked = false
	c.collectionFile = ""
	c.prepareZone(sel)
	c.prepareZone(coll)
	c.current = -1
	c.selectImage(0, 1)
}

func (c *Controller) showSelectedImage(i int) {
	sel := c.zones.Selection
	if i < 0 || i >= sel.Len() {
		return
	}
	c.active = sel
	c.viewMarked = true
	c.prepareZone(sel)
	c.selectImage(i, 1)
	c.mode = Normal
}

// showAllSelected switches between the selection and the collection.
func (c *Controller) showAllSelected() {
	r := c.currentRecord()
	if c.viewMarked {
		c.active = c.zones.Collection
		c.viewMarked = false
	} else {
		if c.zones.Selection.Len() == 0 {
			return
		}
		c.active = c.zones.Selection
		c.viewMarked = true
		c.mode = Thumbs
	}
	c.prepareZone(c.active)
	i := 0
	if r != nil {
		if j := c.active.IndexOfRecord(r); j >= 0 {
			i = j
		}
	}
	c.current = -1
	c.selectImage(i, 1)
}

func (c *Controller) toggleBrowse() {
	switch c.mode {
	case Thumbs:
		c.mode = Normal
	case Normal, Slideshow:
		c.pause()
		c.mode = Thumbs
		c.lastViewJump = 0
		c.prepareZone(c.active)
	}
	c.menuOpen = false
	c.rebuildRegions()
}

// remapThumbs packs the thumbnails to the window width at the current zoom
// and scrolls back to the top.
func (c *Controller) remapThumbs() {
	s := xNorm(c.thumbs)
	if s <= 0 {
		s = 1
	}
	c.thumbs = f32.Affine2D{}.Scale(f32.Point{}, f32.Pt(s, s))
	c.prepareZone(c.active)
}

func (c *Controller) toggleInfo() {
	c.info = c.info<<1 | 1
	if c.info > InfoAll {
		c.info = 0
	}
	if c.info&InfoSize != 0 {
		if r := c.currentRecord(); r != nil {
			r.EnsureStat()
		}
	}
}

func (c *Controller) toggleMeta() {
	c.showMeta = !c.showMeta
	if r := c.currentRecord(); c.showMeta && r != nil {
		r.EnsureMetadata()
	}
}

func (c *Controller) toggleMenu() {
	if c.mode != Thumbs {
		return
	}
	c.menuOpen = !c.menuOpen
	c.rebuildRegions()
}

func (c *Controller) newTag() {
	if r := c.currentRecord(); r != nil {
		c.host.PromptTag(r, "")
	}
}

func (c *Controller) editTag(tag string) {
	if r := c.currentRecord(); r != nil {
		c.host.PromptTag(r, tag)
	}
}

// ApplyTag is the answer to PromptTag: old is replaced by tag. An empty
// tag removes old.
func (c *Controller) ApplyTag(r *record.Record, old, tag string) {
	if old != "" {
		r.RemoveTag(old)
	}
	for _, t := range strings.Fields(tag) {
		r.AddTag(t)
	}
	c.host.Redraw()
}

func (c *Controller) sort(k collection.SortKey) {
	cur := c.CurrentNode()
	if err := c.active.Sort(k); err != nil {
		debug.Log(debug.NAV, "sort: %v", err)
		return
	}
	c.sortKey, c.reversed = k, false
	c.relocate(cur)
	c.closeMenu()
}

func (c *Controller) reverse() {
	cur := c.CurrentNode()
	c.active.Reverse()
	c.reversed = !c.reversed
	c.relocate(cur)
	c.closeMenu()
}

// relocate finds the current child again after a reorder.
func (c *Controller) relocate(cur *collection.Node) {
	if cur != nil {
		c.current = c.active.Index(cur)
	}
	c.prepareZone(c.active)
	c.updateTitle()
}

func (c *Controller) closeMenu() {
	if c.menuOpen {
		c.menuOpen = false
		c.rebuildRegions()
	}
}

// ApplySort sorts the active zone as loaded from settings or flags.
func (c *Controller) ApplySort(k collection.SortKey, reversed bool) {
	c.sort(k)
	if reversed {
		c.reverse()
	}
}

func (c *Controller) save() {
	suggest := c.collectionFile
	if suggest == "" || c.active != c.zones.Collection {
		suggest = "collection.liv"
	}
	c.host.PromptSave(suggest)
}

// SaveTo writes the active zone to path. The path is remembered as the
// collection file only when the whole collection was saved.
func (c *Controller) SaveTo(path string) error {
	if err := collection.SaveFile(path, c.active); err != nil {
		return err
	}
	if c.active == c.zones.Collection {
		c.collectionFile = path
	}
	return nil
}

func (c *Controller) enterHelp() {
	if c.mode == Help {
		c.leaveHelp()
		return
	}
	c.pause()
	c.lastMode = c.mode
	c.mode = Help
}

func (c *Controller) leaveHelp() {
	c.mode = c.lastMode
	if c.mode == Help || c.mode == Slideshow {
		c.mode = Normal
	}
}

// viewAt opens the thumbnail under a window point: images go to the single
// image view, sets are browsed.
func (c *Controller) viewAt(at f32.Point) bool {
	if c.mode != Thumbs {
		return false
	}
	p := c.thumbs.Invert().Transform(at)
	i := c.active.ChildAt(p)
	if i < 0 {
		return false
	}
	child := c.active.Child(i)
	if c.active == c.zones.Filesystem && child.Kind == collection.KindDirectory {
		c.host.ListDirectory(child.Name)
		return true
	}
	if !child.IsLeaf() {
		c.active = child
		c.prepareZone(child)
		c.current = -1
		c.selectImage(0, 1)
		return true
	}
	c.selectImage(i, 1)
	c.mode = Normal
	c.rebuildRegions()
	return true
}
