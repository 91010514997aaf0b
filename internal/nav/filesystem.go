package nav

import (
	"path/filepath"

	"gioui.org/f32"

	"github.com/justyntemme/liv/internal/collection"
	"github.com/justyntemme/liv/internal/debug"
	"github.com/justyntemme/liv/internal/record"
)

// browseFilesystem lists the directory of the current image in the
// filesystem zone, or returns to the collection when already there.
func (c *Controller) browseFilesystem() {
	if c.active == c.zones.Filesystem {
		c.active = c.zones.Collection
		c.viewMarked = false
		c.prepareZone(c.active)
		c.current = -1
		c.selectImage(0, 1)
		return
	}
	dir := c.fsDir
	if r := c.currentRecord(); r != nil {
		dir = filepath.Dir(r.Path())
	}
	if dir == "" {
		dir = "."
	}
	c.host.ListDirectory(dir)
}

// ShowDirectory fills the filesystem zone with the subdirectories and
// images of dir and browses it as thumbnails. Subdirectories stay empty
// until they are opened.
func (c *Controller) ShowDirectory(dir string, subdirs []string, images []*record.Record) {
	fsz := c.zones.Filesystem
	from := c.fsDir
	fsz.Clear()
	for _, d := range subdirs {
		fsz.AddChild(collection.NewSet(collection.KindDirectory, d), -1)
	}
	for _, r := range images {
		fsz.AddLeaf(r, -1)
	}
	c.fsDir = dir
	c.active = fsz
	c.viewMarked = false
	c.mode = Thumbs
	c.menuOpen = false
	c.thumbs = f32.Affine2D{}
	c.prepareZone(fsz)
	c.rebuildRegions()

	// Coming back up, keep the directory just left current.
	i := 0
	for j, child := range fsz.Children() {
		if child.Kind == collection.KindDirectory && child.Name == from {
			i = j
		}
	}
	c.current = -1
	c.selectImage(i, 1)
	debug.Log(debug.NAV, "filesystem %s: %d dirs, %d images", dir, len(subdirs), len(images))
	c.host.Redraw()
}

// Directory returns the directory shown in the filesystem zone.
func (c *Controller) Directory() string { return c.fsDir }

// Refresh finds r again after the active zone was rebuilt, for example by
// a rescan, and lays the zone out again.
func (c *Controller) Refresh(r *record.Record) {
	c.prepareZone(c.active)
	i := c.current
	if r != nil {
		if j := c.active.IndexOfRecord(r); j >= 0 {
			i = j
		}
	}
	if i < 0 {
		i = 0
	}
	c.selectImage(i, 1)
	c.host.Redraw()
}
