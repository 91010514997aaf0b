package ui

import (
	"math"

	"gioui.org/f32"
	"gioui.org/io/event"
	"gioui.org/io/key"
	"gioui.org/io/pointer"
	"gioui.org/layout"
	"gioui.org/op/clip"
	"gioui.org/unit"

	"github.com/justyntemme/liv/internal/debug"
	"github.com/justyntemme/liv/internal/nav"
)

// dragSlop is how far a pressed pointer moves before the press is a drag
// rather than a click.
const dragSlop = unit.Dp(3)

type inputState struct {
	tag      struct{}
	press    f32.Point
	last     f32.Point
	buttons  pointer.Buttons
	pressed  bool
	dragging bool
}

func (r *Renderer) processInput(gtx layout.Context, c *nav.Controller) {
	area := clip.Rect{Max: gtx.Constraints.Max}.Push(gtx.Ops)
	event.Op(gtx.Ops, &r.input.tag)
	area.Pop()

	r.processPointer(gtx, c)
	r.processKeys(gtx, c)
}

func (r *Renderer) processPointer(gtx layout.Context, c *nav.Controller) {
	in := &r.input
	slop := float32(gtx.Dp(dragSlop))
	for {
		ev, ok := gtx.Event(pointer.Filter{
			Target:  &in.tag,
			Kinds:   pointer.Move | pointer.Press | pointer.Drag | pointer.Release | pointer.Cancel | pointer.Scroll,
			ScrollY: pointer.ScrollRange{Min: math.MinInt32, Max: math.MaxInt32},
		})
		if !ok {
			break
		}
		e, ok := ev.(pointer.Event)
		if !ok {
			continue
		}
		if r.prompt.open() {
			continue
		}
		debug.Log(debug.UI_EVENT, "pointer %v at %v buttons=%v", e.Kind, e.Position, e.Buttons)

		switch e.Kind {
		case pointer.Move:
			c.Move(e.Position)
		case pointer.Press:
			in.press, in.last = e.Position, e.Position
			in.buttons = e.Buttons
			in.pressed, in.dragging = true, false
		case pointer.Drag:
			if !in.pressed {
				continue
			}
			if !in.dragging {
				d := e.Position.Sub(in.press)
				if d.X*d.X+d.Y*d.Y < slop*slop {
					continue
				}
				in.dragging = true
			}
			c.Drag(e.Position.Sub(in.last))
			in.last = e.Position
		case pointer.Release:
			if in.pressed && !in.dragging {
				c.Click(e.Position, in.buttons)
			}
			in.pressed, in.dragging = false, false
		case pointer.Cancel:
			in.pressed, in.dragging = false, false
		case pointer.Scroll:
			if e.Scroll.Y != 0 {
				c.Wheel(e.Scroll.Y < 0, e.Position, e.Modifiers)
			}
		}
	}
}

func (r *Renderer) processKeys(gtx layout.Context, c *nav.Controller) {
	if r.keymap == nil {
		return
	}
	filters := r.keymap.Filters(nil)
	for {
		ev, ok := gtx.Event(filters...)
		if !ok {
			break
		}
		k, ok := ev.(key.Event)
		if !ok || k.State != key.Press {
			continue
		}
		// The prompt editor owns the keyboard while it is open.
		if r.prompt.open() {
			continue
		}
		name, ok := r.keymap.Lookup(k, c.Mode().String())
		if !ok {
			continue
		}
		a, err := nav.ParseAction(name)
		if err != nil {
			debug.Log(debug.HOTKEY, "binding %q: %v", name, err)
			continue
		}
		debug.Log(debug.HOTKEY, "key %q mods=0x%x -> %s", k.Name, k.Modifiers, a)
		c.Dispatch(a)
	}
}
