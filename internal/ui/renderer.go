// Package ui draws the browser with Gio and turns window input into
// navigation controller calls.
package ui

import (
	"image"
	"image/color"

	"gioui.org/f32"
	"gioui.org/font"
	"gioui.org/layout"
	"gioui.org/op"
	"gioui.org/op/clip"
	"gioui.org/op/paint"
	"gioui.org/text"
	"gioui.org/unit"
	"gioui.org/widget"
	"gioui.org/widget/material"
	"golang.org/x/image/math/fixed"

	"github.com/justyntemme/liv/internal/config"
	"github.com/justyntemme/liv/internal/nav"
)

// textMax bounds the width a single overlay line may take.
const textMax = 1 << 16

// Renderer implements nav.Renderer on top of a Gio frame. Draw calls are
// only valid while Frame runs.
type Renderer struct {
	Theme    *material.Theme
	TextSize unit.Sp

	// OnSaved is called after the collection was written through the save
	// prompt.
	OnSaved func(path string)

	cache  *PictureCache
	keymap *config.Keymap
	bg, fg color.NRGBA
	font   font.Font

	gtx layout.Context

	toast  Toast
	prompt Prompt
	input  inputState
}

// NewRenderer returns a renderer painting bg behind every frame.
func NewRenderer(cache *PictureCache, keymap *config.Keymap, bg color.NRGBA) *Renderer {
	return &Renderer{
		Theme:    material.NewTheme(),
		TextSize: 14,
		cache:    cache,
		keymap:   keymap,
		bg:       bg,
		fg:       colWhite,
	}
}

// Frame handles the input of one frame and draws c.
func (r *Renderer) Frame(gtx layout.Context, c *nav.Controller) {
	r.gtx = gtx
	size := gtx.Constraints.Max
	c.Resize(float32(size.X), float32(size.Y))

	paint.FillShape(gtx.Ops, r.bg, clip.Rect{Max: size}.Op())
	r.processInput(gtx, c)
	c.Draw(r)
	r.layoutPrompt(gtx, c)
	r.layoutToast(gtx)
}

// DrawImage paints p through m. Ops loaded at a different size than p.Size
// are stretched to it. Pictures still loading are outlined.
func (r *Renderer) DrawImage(p nav.Picture, m f32.Affine2D) {
	img, ok := r.cache.Lookup(p)
	if !ok {
		lo := m.Transform(f32.Point{})
		hi := m.Transform(f32.Pt(float32(p.Size.X), float32(p.Size.Y)))
		r.DrawBox(f32.Pt(min(lo.X, hi.X), min(lo.Y, hi.Y)), f32.Pt(max(lo.X, hi.X), max(lo.Y, hi.Y)), "")
		return
	}
	ops := r.gtx.Ops
	sz := img.Size()
	if p.Size != (image.Point{}) && p.Size != sz && sz.X > 0 && sz.Y > 0 {
		s := f32.Pt(float32(p.Size.X)/float32(sz.X), float32(p.Size.Y)/float32(sz.Y))
		m = m.Mul(f32.Affine2D{}.Scale(f32.Point{}, s))
	}
	img.Filter = paint.FilterLinear

	defer op.Affine(m).Push(ops).Pop()
	defer clip.Rect{Max: sz}.Push(ops).Pop()
	img.Add(ops)
	paint.PaintOp{}.Add(ops)
}

// DrawBox outlines a rectangle, with label centered and clipped to it.
func (r *Renderer) DrawBox(lo, hi f32.Point, label string) {
	ops := r.gtx.Ops
	rect := clip.Rect{Min: lo.Round(), Max: hi.Round()}
	paint.FillShape(ops, r.fg, clip.Stroke{Path: rect.Path(), Width: 1}.Op())
	if label == "" {
		return
	}
	defer rect.Push(ops).Pop()
	sz := r.MeasureText(label)
	at := f32.Pt((lo.X+hi.X-sz.X)/2, (lo.Y+hi.Y-sz.Y)/2)
	r.DrawText(label, f32.Pt(max(at.X, lo.X), at.Y))
}

// DrawText draws a single line with its top left corner at at, over a
// dark backdrop.
func (r *Renderer) DrawText(s string, at f32.Point) {
	gtx := r.gtx
	ops := gtx.Ops
	sz := r.MeasureText(s)

	defer op.Offset(at.Round()).Push(ops).Pop()
	paint.FillShape(ops, colBackdrop, clip.Rect{Max: image.Pt(int(sz.X+0.5), int(sz.Y+0.5))}.Op())

	gtx.Constraints = layout.Constraints{Max: image.Pt(textMax, textMax)}
	macro := op.Record(ops)
	paint.ColorOp{Color: r.fg}.Add(ops)
	textColor := macro.Stop()
	widget.Label{MaxLines: 1}.Layout(gtx, r.Theme.Shaper, r.font, r.TextSize, s, textColor)
}

// MeasureText returns the size of s on a single line.
func (r *Renderer) MeasureText(s string) f32.Point {
	if s == "" {
		return f32.Point{}
	}
	sh := r.Theme.Shaper
	sh.LayoutString(text.Parameters{
		Font:     r.font,
		PxPerEm:  fixed.I(r.gtx.Sp(r.TextSize)),
		MaxLines: 1,
		MaxWidth: textMax,
	}, s)
	var adv, ascent, descent fixed.Int26_6
	for g, ok := sh.NextGlyph(); ok; g, ok = sh.NextGlyph() {
		adv += g.Advance
		ascent = max(ascent, g.Ascent)
		descent = max(descent, g.Descent)
	}
	return f32.Pt(float32(adv.Ceil()), float32((ascent + descent).Ceil()))
}

// Stop releases the picture cache loader.
func (r *Renderer) Stop() {
	r.cache.Stop()
}
