package nav

import (
	"gioui.org/f32"

	"github.com/justyntemme/liv/internal/collection"
)

// Space says how a region's corners are measured.
type Space int

const (
	// Normalized corners are fractions of the (unrotated) view.
	Normalized Space = iota
	// Screen corners are window pixels.
	Screen
	// Centered regions have a normalized center in Min and a pixel size in Max.
	Centered
)

// Region maps an area of the window to an action.
type Region struct {
	Label    string
	Action   Action
	Space    Space
	Min, Max f32.Point
	Mode     ViewMode // AnyMode matches every mode
}

// rect returns the region in window pixels. Normalized regions are given
// in view space, which the screen rotation maps onto the window, so their
// corners are returned in view pixels and must be tested against a point
// already taken through the inverse screen matrix.
func (r Region) rect(w, h float32) (f32.Point, f32.Point) {
	switch r.Space {
	case Normalized:
		return f32.Pt(r.Min.X*w, r.Min.Y*h), f32.Pt(r.Max.X*w, r.Max.Y*h)
	case Centered:
		c := f32.Pt(r.Min.X*w, r.Min.Y*h)
		half := r.Max.Mul(0.5)
		return c.Sub(half), c.Add(half)
	}
	return r.Min, r.Max
}

func inside(p, lo, hi f32.Point) bool {
	return p.X >= lo.X && p.X < hi.X && p.Y >= lo.Y && p.Y < hi.Y
}

const third = float32(1) / 3

func defaultRegions() []Region {
	var rs []Region
	for _, m := range []ViewMode{Normal, Slideshow} {
		rs = append(rs,
			Region{Label: "Previous", Action: Action{Kind: ActPrevious}, Min: f32.Pt(0, 0), Max: f32.Pt(third, 1), Mode: m},
			Region{Label: "Next", Action: Action{Kind: ActNext}, Min: f32.Pt(2*third, 0), Max: f32.Pt(1, 1), Mode: m},
		)
	}
	rs = append(rs,
		Region{Label: "1:1", Action: Action{Kind: ActOneToOne}, Min: f32.Pt(0, 0), Max: f32.Pt(1, third), Mode: Normal},
		Region{Label: "Fit", Action: Action{Kind: ActFit}, Min: f32.Pt(0, 2*third), Max: f32.Pt(1, 1), Mode: Normal},
		Region{Label: "Pause", Action: Action{Kind: ActPause}, Space: Centered, Min: f32.Pt(.5, .5), Max: f32.Pt(200, 200), Mode: Slideshow},
	)
	return rs
}

// menuEntries are shown in Thumbs when the menu is open.
var menuEntries = []struct {
	label  string
	action Action
}{
	{"Reverse", Action{Kind: ActReverse}},
	{"Date", Action{Kind: ActSort, Sort: collection.SortDate}},
	{"File size", Action{Kind: ActSort, Sort: collection.SortSize}},
	{"Area", Action{Kind: ActSort, Sort: collection.SortPixels}},
	{"Width", Action{Kind: ActSort, Sort: collection.SortWidth}},
	{"Height", Action{Kind: ActSort, Sort: collection.SortHeight}},
	{"Random", Action{Kind: ActSort, Sort: collection.SortRandom}},
	{"Filename", Action{Kind: ActSort, Sort: collection.SortName}},
	{"Filename caseless", Action{Kind: ActSort, Sort: collection.SortCaseName}},
}

// rebuildRegions recomputes the screen space regions that depend on the
// window size and text height.
func (c *Controller) rebuildRegions() {
	c.regions = append(c.regions[:0], defaultRegions()...)
	th := c.lineH
	c.regions = append(c.regions, Region{
		Label:  "Menu",
		Action: Action{Kind: ActToggleMenu},
		Space:  Screen,
		Min:    f32.Pt(c.winW-2*th, 0),
		Max:    f32.Pt(c.winW, 2*th),
		Mode:   Thumbs,
	})

	c.menu = c.menu[:0]
	if !c.menuOpen {
		return
	}
	y := 2 * th
	for _, e := range menuEntries {
		c.menu = append(c.menu, Region{
			Label:  e.label,
			Action: e.action,
			Space:  Screen,
			Min:    f32.Pt(c.winW-c.menuW, y),
			Max:    f32.Pt(c.winW, y+th),
			Mode:   Thumbs,
		})
		y += th
	}
}

// Regions returns the current persistent regions.
func (c *Controller) Regions() []Region { return c.regions }

// Resolve maps a pointer position to an action. Tag and selection boxes
// come first (single image view only), then the regions of the current
// mode, then open menu entries. In Thumbs a click on nothing else views
// the image under the pointer.
func (c *Controller) Resolve(at f32.Point) Action {
	if c.mode == Normal {
		for _, b := range c.tagBoxes {
			if inside(at, b.Min, b.Max) {
				return b.Action
			}
		}
		for _, b := range c.selBoxes {
			if inside(at, b.Min, b.Max) {
				return b.Action
			}
		}
	}

	view := c.screen.Invert().Transform(at)
	vw, vh := c.viewSize()
	for _, r := range c.regions {
		if r.Mode != AnyMode && r.Mode != c.mode {
			continue
		}
		p := at
		w, h := c.winW, c.winH
		if r.Space == Normalized {
			p, w, h = view, vw, vh
		}
		lo, hi := r.rect(w, h)
		if inside(p, lo, hi) {
			return r.Action
		}
	}
	for _, r := range c.menu {
		if inside(at, r.Min, r.Max) {
			return r.Action
		}
	}
	if c.mode == Thumbs {
		return Action{Kind: ActViewAt, At: at}
	}
	return Action{}
}
