package nav

import (
	"fmt"
	"image"
	"path/filepath"
	"strings"

	"gioui.org/f32"
	"github.com/dustin/go-humanize"

	"github.com/justyntemme/liv/internal/collection"
	"github.com/justyntemme/liv/internal/record"
)

// Picture is something the renderer can put pixels on screen for. Image is
// used when set; otherwise the renderer loads Path itself.
type Picture struct {
	Key   string
	Image image.Image
	Path  string
	Size  image.Point
}

// Renderer draws one frame. Coordinates are window pixels.
type Renderer interface {
	// DrawImage draws p with its pixel space mapped through m.
	DrawImage(p Picture, m f32.Affine2D)
	// DrawBox outlines a rectangle with an optional centered label; it
	// stands in for images that cannot be shown.
	DrawBox(min, max f32.Point, label string)
	DrawText(s string, at f32.Point)
	MeasureText(s string) f32.Point
}

const miniThumb = 48

// Draw renders the current mode and rebuilds the overlay hit boxes.
func (c *Controller) Draw(r Renderer) {
	if h := r.MeasureText("Mg").Y; h > 0 && h != c.lineH {
		c.lineH = h
		c.rebuildRegions()
	}
	c.tagBoxes = c.tagBoxes[:0]
	c.selBoxes = c.selBoxes[:0]

	switch c.mode {
	case Help:
		c.drawHelp(r)
		return
	case Thumbs:
		c.drawThumbs(r)
	default:
		c.drawImage(r)
		c.layoutTagBoxes(r)
		c.layoutSelectionBoxes(r)
		for _, b := range c.tagBoxes {
			r.DrawBox(b.Min, b.Max, b.Label)
		}
		for _, b := range c.selBoxes {
			c.drawSelectionBox(r, b)
		}
	}
	c.drawInfo(r)
	if c.verbose {
		c.drawRegions(r)
	}
}

func (c *Controller) drawImage(r Renderer) {
	n := c.CurrentNode()
	if n == nil {
		msg := "No images"
		sz := r.MeasureText(msg)
		r.DrawText(msg, f32.Pt((c.winW-sz.X)/2, (c.winH-sz.Y)/2))
		return
	}
	rec := n.Record
	m := c.Transform()
	if rec == nil || rec.Image() == nil {
		iw, ih := float32(100), float32(100)
		if rec != nil {
			iw, ih = imageSize(rec)
		}
		lo := m.Transform(f32.Point{})
		hi := m.Transform(f32.Pt(iw, ih))
		r.DrawBox(minPt(lo, hi), maxPt(lo, hi), nodeLabel(n))
		return
	}
	r.DrawImage(Picture{Key: rec.Path(), Image: rec.Image(), Path: rec.Path(), Size: rec.Image().Bounds().Size()}, m)
}

func (c *Controller) drawThumbs(r Renderer) {
	for i, child := range c.active.Children() {
		lo := c.thumbs.Transform(f32.Pt(child.X, child.Y))
		hi := c.thumbs.Transform(f32.Pt(child.X+child.Width, child.Y+child.Height))
		if hi.X < 0 || hi.Y < 0 || lo.X > c.winW || lo.Y > c.winH {
			continue
		}
		if !c.drawThumb(r, child) {
			r.DrawBox(lo, hi, nodeLabel(child))
		}
		if i == c.current {
			r.DrawBox(lo.Sub(f32.Pt(2, 2)), hi.Add(f32.Pt(2, 2)), "")
		}
	}
	for _, e := range c.regions {
		if e.Mode == Thumbs && e.Space == Screen {
			r.DrawText("≡", e.Min.Add(f32.Pt(c.lineH/2, c.lineH/2)))
		}
	}
	for _, e := range c.menu {
		label := e.Label
		if e.Action.Kind == ActSort && e.Action.Sort == c.sortKey {
			label = "* " + label
		}
		r.DrawText(label, e.Min)
	}
}

// drawThumb draws a leaf's preview, requesting it on first sight. It
// reports false when a box should be drawn instead.
func (c *Controller) drawThumb(r Renderer, n *collection.Node) bool {
	rec := n.Record
	if rec == nil {
		return false
	}
	pic, ok := c.previewPicture(rec)
	if !ok {
		return false
	}
	sx := n.Width / float32(pic.Size.X)
	sy := n.Height / float32(pic.Size.Y)
	m := f32.Affine2D{}.Scale(f32.Point{}, f32.Pt(sx, sy)).Offset(f32.Pt(n.X, n.Y))
	r.DrawImage(pic, c.thumbs.Mul(m))
	return true
}

func (c *Controller) previewPicture(rec *record.Record) (Picture, bool) {
	if rec.PreviewState() == record.NotRequested && c.previews != nil {
		rec.RequestPreview(c.previews)
	}
	res, ok := rec.Preview()
	if !ok || res.Err != nil || res.Size.X <= 0 || res.Size.Y <= 0 {
		return Picture{}, false
	}
	key := res.Path
	if key == "" {
		key = "mem:" + rec.Path()
	}
	return Picture{Key: key, Image: res.Image, Path: res.Path, Size: res.Size}, true
}

func nodeLabel(n *collection.Node) string {
	if n.Record != nil {
		return filepath.Base(n.Record.Path())
	}
	name := n.Name
	if n.Kind == collection.KindDirectory || n.Kind == collection.KindFile {
		name = filepath.Base(name)
	}
	return fmt.Sprintf("%s (%d)", name, n.Len())
}

// layoutTagBoxes lists the current image's tags down the left edge,
// starting a new column when the window bottom is reached.
func (c *Controller) layoutTagBoxes(r Renderer) {
	rec := c.currentRecord()
	if rec == nil {
		return
	}
	th := c.lineH
	top := float32(infoLines+1) * th
	x, y := float32(0), top
	colW := float32(0)
	for i, tag := range rec.AllTags() {
		sz := r.MeasureText(tag)
		w := sz.X + th
		if y+th > c.winH && y > top {
			x += colW
			y, colW = top, 0
		}
		c.tagBoxes = append(c.tagBoxes, Region{
			Label:  tag,
			Action: Action{Kind: ActEditTag, Index: i, Text: tag},
			Space:  Screen,
			Min:    f32.Pt(x, y),
			Max:    f32.Pt(x+w, y+th),
		})
		colW = max(colW, w)
		y += th
	}
}

// layoutSelectionBoxes builds the panel at the bottom right: the select
// toggle, the selection count and one small thumbnail per selected image.
func (c *Controller) layoutSelectionBoxes(r Renderer) {
	rec := c.currentRecord()
	if rec == nil {
		return
	}
	th := c.lineH
	sel := c.zones.Selection

	label := "Select"
	if sel.IndexOfRecord(rec) >= 0 {
		label = "Deselect"
	}
	x := c.winW
	y := c.winH - th
	if sel.Len() > 0 {
		y -= miniThumb
	}
	for _, b := range []struct {
		label string
		kind  ActionKind
	}{
		{label, ActSelect},
		{fmt.Sprintf("%d selected", sel.Len()), ActShowAllSelected},
	} {
		if b.kind == ActShowAllSelected && sel.Len() == 0 {
			continue
		}
		w := r.MeasureText(b.label).X + th
		c.selBoxes = append(c.selBoxes, Region{
			Label:  b.label,
			Action: Action{Kind: b.kind},
			Space:  Screen,
			Min:    f32.Pt(x-w, y),
			Max:    f32.Pt(x, y+th),
		})
		x -= w
	}

	x = c.winW
	for i := sel.Len() - 1; i >= 0; i-- {
		if x-miniThumb < 0 {
			break
		}
		c.selBoxes = append(c.selBoxes, Region{
			Action: Action{Kind: ActShowSelectedImage, Index: i},
			Space:  Screen,
			Min:    f32.Pt(x-miniThumb, c.winH-miniThumb),
			Max:    f32.Pt(x, c.winH),
		})
		x -= miniThumb
	}
}

func (c *Controller) drawSelectionBox(r Renderer, b Region) {
	if b.Action.Kind != ActShowSelectedImage {
		r.DrawBox(b.Min, b.Max, b.Label)
		return
	}
	n := c.zones.Selection.Child(b.Action.Index)
	if n == nil || n.Record == nil {
		return
	}
	pic, ok := c.previewPicture(n.Record)
	if !ok {
		r.DrawBox(b.Min, b.Max, "")
		return
	}
	s := min(miniThumb/float32(pic.Size.X), miniThumb/float32(pic.Size.Y))
	m := f32.Affine2D{}.Scale(f32.Point{}, f32.Pt(s, s)).Offset(b.Min)
	r.DrawImage(pic, m)
}

// infoLines is the number of single line fields the info overlay can show
// above the tag boxes.
const infoLines = 4

// InfoText returns the info overlay lines for the current image.
func (c *Controller) InfoText() []string {
	n := c.CurrentNode()
	if n == nil || c.info == 0 {
		return nil
	}
	var lines []string
	rec := n.Record
	if c.info&InfoFilename != 0 {
		if rec != nil {
			lines = append(lines, rec.Path())
		} else {
			lines = append(lines, n.Name)
		}
	}
	if c.info&InfoIndex != 0 {
		lines = append(lines, fmt.Sprintf("%d/%d", c.current+1, c.active.Len()))
	}
	if rec == nil {
		return lines
	}
	if c.info&InfoSize != 0 && rec.Has(record.HasStat) {
		lines = append(lines, fmt.Sprintf("%s, %s", humanize.Bytes(uint64(rec.Size())), humanize.Time(rec.ModTime())))
	}
	if c.info&InfoDims != 0 {
		if w, h := rec.KnownDimensions(); w > 0 {
			lines = append(lines, fmt.Sprintf("%dx%d (%s pixels)", w, h, humanize.SIWithDigits(float64(w*h), 1, "")))
		}
	}
	if c.info&InfoTags != 0 {
		if tags := rec.AllTags(); len(tags) > 0 {
			lines = append(lines, strings.Join(tags, " "))
		}
	}
	return lines
}

// MetaText returns the metadata overlay lines, when it is on.
func (c *Controller) MetaText() []string {
	rec := c.currentRecord()
	if !c.showMeta || rec == nil {
		return nil
	}
	var lines []string
	if t := rec.Title(); t != "" {
		lines = append(lines, t)
	}
	if d := rec.Description(); d != "" {
		lines = append(lines, strings.Split(d, "\n")...)
	}
	for _, f := range rec.Metadata().Fields {
		lines = append(lines, f.Key+": "+f.Value)
	}
	return lines
}

func (c *Controller) drawInfo(r Renderer) {
	y := float32(0)
	for _, l := range c.InfoText() {
		r.DrawText(l, f32.Pt(0, y))
		y += c.lineH
	}
	meta := c.MetaText()
	for i, l := range meta {
		sz := r.MeasureText(l)
		r.DrawText(l, f32.Pt(c.winW-sz.X, float32(i)*c.lineH))
	}
}

func (c *Controller) drawRegions(r Renderer) {
	vw, vh := c.viewSize()
	for _, reg := range c.regions {
		if reg.Mode != AnyMode && reg.Mode != c.mode {
			continue
		}
		var lo, hi f32.Point
		if reg.Space == Normalized {
			lo, hi = reg.rect(vw, vh)
			lo, hi = c.screen.Transform(lo), c.screen.Transform(hi)
			lo, hi = minPt(lo, hi), maxPt(lo, hi)
		} else {
			lo, hi = reg.rect(c.winW, c.winH)
		}
		r.DrawBox(lo, hi, reg.Label)
	}
}

func (c *Controller) drawHelp(r Renderer) {
	y := c.lineH
	for _, l := range c.help {
		r.DrawText(l, f32.Pt(c.lineH, y))
		y += c.lineH
	}
}

func minPt(a, b f32.Point) f32.Point { return f32.Pt(min(a.X, b.X), min(a.Y, b.Y)) }

func maxPt(a, b f32.Point) f32.Point { return f32.Pt(max(a.X, b.X), max(a.Y, b.Y)) }
