package ui

import (
	"image"
	"sync"
	"time"

	"gioui.org/layout"
	"gioui.org/op"
	"gioui.org/op/clip"
	"gioui.org/op/paint"
	"gioui.org/unit"
	"gioui.org/widget/material"
)

// ToastType selects the toast colors.
type ToastType int

const (
	ToastInfo ToastType = iota
	ToastSuccess
	ToastError
)

// Toast is a short lived message at the bottom of the window.
type Toast struct {
	mu        sync.Mutex
	Message   string
	Type      ToastType
	ExpiresAt time.Time
}

const toastDuration = 3 * time.Second

// ShowToast displays message until it expires. Safe from any goroutine.
func (r *Renderer) ShowToast(message string, t ToastType) {
	r.toast.mu.Lock()
	r.toast.Message = message
	r.toast.Type = t
	r.toast.ExpiresAt = time.Now().Add(toastDuration)
	r.toast.mu.Unlock()
}

func (r *Renderer) ShowError(message string) {
	r.ShowToast(message, ToastError)
}

func (r *Renderer) ShowSuccess(message string) {
	r.ShowToast(message, ToastSuccess)
}

func (r *Renderer) layoutToast(gtx layout.Context) layout.Dimensions {
	r.toast.mu.Lock()
	message, kind, expires := r.toast.Message, r.toast.Type, r.toast.ExpiresAt
	r.toast.mu.Unlock()

	if message == "" || time.Now().After(expires) {
		return layout.Dimensions{}
	}
	gtx.Execute(op.InvalidateCmd{At: expires})

	bg := colToastInfo
	switch kind {
	case ToastError:
		bg = colToastError
	case ToastSuccess:
		bg = colToastSuccess
	}

	return layout.S.Layout(gtx, func(gtx layout.Context) layout.Dimensions {
		return layout.Inset{Bottom: unit.Dp(20), Left: unit.Dp(20), Right: unit.Dp(20)}.Layout(gtx, func(gtx layout.Context) layout.Dimensions {
			gtx.Constraints.Max.X = min(gtx.Constraints.Max.X, gtx.Dp(unit.Dp(500)))
			gtx.Constraints.Min = image.Point{}

			macro := op.Record(gtx.Ops)
			dims := layout.UniformInset(unit.Dp(12)).Layout(gtx, func(gtx layout.Context) layout.Dimensions {
				label := material.Body1(r.Theme, message)
				label.Color = colToastText
				return label.Layout(gtx)
			})
			call := macro.Stop()

			rr := gtx.Dp(unit.Dp(8))
			paint.FillShape(gtx.Ops, bg, clip.RRect{
				Rect: image.Rectangle{Max: dims.Size},
				NE:   rr, NW: rr, SE: rr, SW: rr,
			}.Op(gtx.Ops))
			call.Add(gtx.Ops)
			return dims
		})
	})
}
