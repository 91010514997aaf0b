package collection

import (
	"gioui.org/f32"

	"github.com/justyntemme/liv/internal/debug"
	"github.com/justyntemme/liv/internal/record"
)

// PreviewSize bounds the synthesized box of a child whose preview is not ready.
const PreviewSize = 256

// LayoutMode selects how children are packed.
type LayoutMode int

const (
	// LayoutFill wraps rows at the node's own width.
	LayoutFill LayoutMode = iota
	// LayoutSingleRow puts every child in one row.
	LayoutSingleRow
)

const unboundedWidth = 1e7

// Layout packs the children left to right into rows and updates the
// aggregate size and ScaleToKids. Children are placed at their content
// size; the gap only separates cells.
func (n *Node) Layout(mode LayoutMode) {
	n.mode = mode
	maxW := n.Width
	if mode == LayoutSingleRow || maxW <= 0 {
		maxW = unboundedWidth
	}

	var cx, cy, rowH, wholeW, wholeH float32
	rowStart := true
	for _, c := range n.children {
		w, h := c.contentSize()
		cellW, cellH := w+n.Gap, h+n.Gap
		if !rowStart && cx+cellW > maxW {
			cy += rowH
			wholeH += rowH
			cx, rowH = 0, 0
		}
		c.X, c.Y, c.Width, c.Height = cx, cy, w, h
		cx += cellW
		rowH = max(rowH, cellH)
		wholeW = max(wholeW, cx)
		rowStart = false
	}
	wholeH += rowH
	n.KidsWidth, n.KidsHeight = wholeW, wholeH

	if len(n.children) == 0 {
		return
	}
	if n.Width <= 0 {
		n.Width = wholeW
	}
	if n.Height <= 0 {
		n.Height = wholeH
	}
	if n.KidsHeight/n.KidsWidth > n.Height/n.Width {
		n.ScaleToKids = n.Height / n.KidsHeight
	} else {
		n.ScaleToKids = n.Width / n.KidsWidth
	}
	debug.Log(debug.LAYOUT, "%s %q: %d kids in %.0fx%.0f, scale %.3f",
		n.Kind, n.Name, len(n.children), n.KidsWidth, n.KidsHeight, n.ScaleToKids)
}

// Relayout lays n out again with its last mode and then every ancestor up
// to the root.
func (n *Node) Relayout() {
	for a := n; a != nil; a = a.parent {
		a.Layout(a.mode)
	}
}

// contentSize is the box this node wants inside its parent.
func (n *Node) contentSize() (w, h float32) {
	if n.FixedWidth > 0 && n.FixedHeight > 0 {
		return n.FixedWidth, n.FixedHeight
	}
	if n.IsLeaf() {
		return leafSize(n.Record)
	}
	if n.KidsWidth > 0 && n.KidsHeight > 0 {
		return fitSquare(n.KidsWidth, n.KidsHeight)
	}
	return PreviewSize, PreviewSize
}

func leafSize(r *record.Record) (w, h float32) {
	if r == nil {
		return fitSquare(100, 100)
	}
	if res, ok := r.Preview(); ok && res.Err == nil && res.Size.X > 0 && res.Size.Y > 0 {
		return float32(res.Size.X), float32(res.Size.Y)
	}
	iw, ih := r.KnownDimensions()
	if iw <= 0 || ih <= 0 {
		iw, ih = 100, 100
	}
	return fitSquare(float32(iw), float32(ih))
}

// fitSquare scales w x h so its longer side is PreviewSize.
func fitSquare(w, h float32) (float32, float32) {
	if w > h {
		return PreviewSize, h * PreviewSize / w
	}
	return w * PreviewSize / h, PreviewSize
}

// Bounds returns the child box in the parent's canvas space.
func (n *Node) Bounds() (p0, p1 f32.Point) {
	return f32.Pt(n.X, n.Y), f32.Pt(n.X+n.Width, n.Y+n.Height)
}

// ChildAt returns the index of the child whose box contains p, given in
// this node's kid canvas space, or -1.
func (n *Node) ChildAt(p f32.Point) int {
	for i, c := range n.children {
		if p.X >= c.X && p.X < c.X+c.Width && p.Y >= c.Y && p.Y < c.Y+c.Height {
			return i
		}
	}
	return -1
}
