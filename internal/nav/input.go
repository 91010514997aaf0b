package nav

import (
	"gioui.org/f32"
	"gioui.org/io/key"
	"gioui.org/io/pointer"
)

// Move records the pointer position for later zoom anchors.
func (c *Controller) Move(at f32.Point) {
	c.pointer = at
}

// Click handles a button release at a window point.
func (c *Controller) Click(at f32.Point, buttons pointer.Buttons) {
	c.pointer = at
	if c.mode == Help {
		c.Dispatch(Action{Kind: ActHelp})
		return
	}
	switch {
	case buttons.Contain(pointer.ButtonSecondary):
		if c.mode == Normal {
			c.oneToOne(at)
			c.host.Redraw()
		}
	case buttons.Contain(pointer.ButtonPrimary):
		a := c.Resolve(at)
		switch a.Kind {
		case ActOneToOne, ActZoomIn, ActZoomOut:
			a.At = at
		}
		c.Dispatch(a)
	}
}

// Wheel handles one scroll step; up is away from the user.
func (c *Controller) Wheel(up bool, at f32.Point, mods key.Modifiers) {
	c.pointer = at
	switch c.mode {
	case Thumbs:
		c.wheelThumbs(up, at)
	case Normal, Slideshow:
		c.wheelNormal(up, at, mods)
	default:
		return
	}
	c.host.Redraw()
}

func (c *Controller) wheelThumbs(up bool, at f32.Point) {
	if up {
		// Open the hovered image once its thumbnail is already large.
		p := c.thumbs.Invert().Transform(at)
		if i := c.active.ChildAt(p); i >= 0 {
			child := c.active.Child(i)
			s := xNorm(c.thumbs)
			if child.IsLeaf() && (child.Width*s > c.winW*2/3 || child.Height*s > c.winH*2/3) {
				c.selectImage(i, 1)
				c.mode = Normal
				c.lastViewJump = 1
				c.rebuildRegions()
				return
			}
		}
		c.thumbs = c.thumbs.Scale(at, f32.Pt(1/wheelStep, 1/wheelStep))
		return
	}
	c.thumbs = c.thumbs.Scale(at, f32.Pt(wheelStep, wheelStep))
}

func (c *Controller) wheelNormal(up bool, at f32.Point, mods key.Modifiers) {
	switch c.Resolve(at).Kind {
	case ActNext, ActPrevious:
		if up {
			c.previous()
		} else {
			c.next()
		}
		return
	}
	if mods.Contain(key.ModCtrl) {
		s := float32(wheelStep)
		if up {
			s = 1 / wheelStep
		}
		c.zoom(at, s)
		return
	}
	if up {
		return
	}
	c.pause()
	c.mode = Thumbs
	c.prepareZone(c.active)
	if c.lastViewJump == 1 {
		c.centerThumbAt(at)
	}
	c.lastViewJump = 0
	c.rebuildRegions()
}

// centerThumbAt scrolls the thumbnail canvas so the current thumbnail sits
// under a window point.
func (c *Controller) centerThumbAt(at f32.Point) {
	n := c.CurrentNode()
	if n == nil {
		return
	}
	mid := c.thumbs.Transform(f32.Pt(n.X+n.Width/2, n.Y+n.Height/2))
	c.thumbs = c.thumbs.Offset(at.Sub(mid))
}

// Drag pans the image or the thumbnail canvas by a window delta.
func (c *Controller) Drag(delta f32.Point) {
	switch c.mode {
	case Thumbs:
		c.thumbs = c.thumbs.Offset(delta)
	case Normal, Slideshow:
		r := c.currentRecord()
		if r == nil {
			return
		}
		// Deltas are in window space; rotate them into view space.
		inv := c.screen.Invert()
		dv := inv.Transform(delta).Sub(inv.Transform(f32.Point{}))
		r.SetTransform(c.transformOf(r).Offset(dv))
	default:
		return
	}
	c.host.Redraw()
}
