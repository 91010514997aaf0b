package ui

import (
	"fmt"
	"image"
	"strings"

	"gioui.org/io/key"
	"gioui.org/layout"
	"gioui.org/op"
	"gioui.org/op/clip"
	"gioui.org/op/paint"
	"gioui.org/unit"
	"gioui.org/widget"
	"gioui.org/widget/material"

	"github.com/justyntemme/liv/internal/debug"
	"github.com/justyntemme/liv/internal/nav"
	"github.com/justyntemme/liv/internal/record"
)

type promptKind int

const (
	promptNone promptKind = iota
	promptTag
	promptSave
)

// Prompt is the one line editor used for tags and file names.
type Prompt struct {
	kind    promptKind
	title   string
	editor  widget.Editor
	record  *record.Record
	old     string
	focused bool
}

func (p *Prompt) open() bool { return p.kind != promptNone }

func (p *Prompt) start(kind promptKind, title, initial string) {
	p.kind = kind
	p.title = title
	p.editor.SingleLine = true
	p.editor.Submit = true
	p.editor.SetText(initial)
	p.editor.SetCaret(len([]rune(initial)), len([]rune(initial)))
	p.focused = false
}

func (p *Prompt) close() {
	p.kind = promptNone
	p.record = nil
	p.old = ""
}

// AskTag opens the tag prompt for rec, prefilled with old.
func (r *Renderer) AskTag(rec *record.Record, old string) {
	title := "New tag"
	if old != "" {
		title = "Edit tag (empty removes it)"
	}
	r.prompt.start(promptTag, title, old)
	r.prompt.record = rec
	r.prompt.old = old
}

// AskSave opens the save prompt, prefilled with suggest.
func (r *Renderer) AskSave(suggest string) {
	r.prompt.start(promptSave, "Save collection as", suggest)
}

// Prompting reports whether a prompt has the keyboard.
func (r *Renderer) Prompting() bool { return r.prompt.open() }

func (r *Renderer) layoutPrompt(gtx layout.Context, c *nav.Controller) {
	p := &r.prompt
	if !p.open() {
		return
	}
	if !p.focused {
		gtx.Execute(key.FocusCmd{Tag: &p.editor})
		p.focused = true
	}

	for {
		ev, ok := gtx.Event(key.Filter{Focus: &p.editor, Name: key.NameEscape})
		if !ok {
			break
		}
		if e, ok := ev.(key.Event); ok && e.State == key.Press {
			debug.Log(debug.UI, "prompt: cancelled")
			p.close()
			return
		}
	}
	for {
		ev, ok := p.editor.Update(gtx)
		if !ok {
			break
		}
		if _, ok := ev.(widget.SubmitEvent); ok {
			r.submitPrompt(c)
			return
		}
	}

	layout.S.Layout(gtx, func(gtx layout.Context) layout.Dimensions {
		gtx.Constraints.Min = image.Point{}
		gtx.Constraints.Max.X = min(gtx.Constraints.Max.X, gtx.Dp(unit.Dp(600)))
		macro := op.Record(gtx.Ops)
		dims := layout.UniformInset(unit.Dp(12)).Layout(gtx, func(gtx layout.Context) layout.Dimensions {
			return layout.Flex{Axis: layout.Vertical}.Layout(gtx,
				layout.Rigid(func(gtx layout.Context) layout.Dimensions {
					lbl := material.Body2(r.Theme, p.title)
					lbl.Color = colWhite
					return lbl.Layout(gtx)
				}),
				layout.Rigid(layout.Spacer{Height: unit.Dp(6)}.Layout),
				layout.Rigid(func(gtx layout.Context) layout.Dimensions {
					gtx.Constraints.Min.X = gtx.Constraints.Max.X
					return widget.Border{Color: colPromptBorder, Width: unit.Dp(1), CornerRadius: unit.Dp(4)}.Layout(gtx, func(gtx layout.Context) layout.Dimensions {
						return layout.UniformInset(unit.Dp(6)).Layout(gtx, func(gtx layout.Context) layout.Dimensions {
							ed := material.Editor(r.Theme, &p.editor, "")
							ed.Color = colWhite
							return ed.Layout(gtx)
						})
					})
				}),
			)
		})
		call := macro.Stop()
		paint.FillShape(gtx.Ops, colPromptBg, clip.Rect{Max: dims.Size}.Op())
		call.Add(gtx.Ops)
		return dims
	})
}

func (r *Renderer) submitPrompt(c *nav.Controller) {
	p := &r.prompt
	text := strings.TrimSpace(p.editor.Text())
	kind, rec, old := p.kind, p.record, p.old
	p.close()

	switch kind {
	case promptTag:
		if rec != nil && (text != "" || old != "") {
			c.ApplyTag(rec, old, text)
		}
	case promptSave:
		if text == "" {
			return
		}
		if err := c.SaveTo(text); err != nil {
			r.ShowError(fmt.Sprintf("Save failed: %v", err))
			return
		}
		r.ShowSuccess("Saved " + text)
		if r.OnSaved != nil {
			r.OnSaved(text)
		}
	}
}
