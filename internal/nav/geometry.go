package nav

import (
	"math"

	"gioui.org/f32"

	"github.com/justyntemme/liv/internal/debug"
	"github.com/justyntemme/liv/internal/record"
)

// Zoom limits for the single image view.
const (
	zoomStep    = 1.2
	wheelStep   = 0.85
	maxXNorm    = 4
	minXNorm    = 0.01
	tooBigRatio = 9 // squared: on-screen diagonal may reach 3x the window's
)

// screenMatrix maps view space onto the window for a rotation in quarter
// turns.
func screenMatrix(rot int, w, h float32) f32.Affine2D {
	switch rot & 3 {
	case 1:
		return f32.NewAffine2D(0, -1, w, 1, 0, 0)
	case 2:
		return f32.NewAffine2D(-1, 0, w, 0, -1, h)
	case 3:
		return f32.NewAffine2D(0, 1, 0, -1, 0, h)
	}
	return f32.Affine2D{}
}

// viewSize is the window size as seen from view space.
func (c *Controller) viewSize() (float32, float32) {
	if c.screenRot&1 == 1 {
		return c.winH, c.winW
	}
	return c.winW, c.winH
}

// toView maps a window point into view space.
func (c *Controller) toView(p f32.Point) f32.Point {
	return c.screen.Invert().Transform(p)
}

// xNorm is the length of the image x axis after m, i.e. the zoom factor.
func xNorm(m f32.Affine2D) float32 {
	sx, _, _, hy, _, _ := m.Elems()
	return float32(math.Hypot(float64(sx), float64(hy)))
}

func imageSize(r *record.Record) (float32, float32) {
	w, h := r.KnownDimensions()
	if w <= 0 || h <= 0 {
		w, h = r.Dimensions()
	}
	if w <= 0 || h <= 0 {
		return 100, 100
	}
	return float32(w), float32(h)
}

// zoom scales the current image by s about a window point. It refuses to
// grow an already huge image or shrink one to nearly nothing.
func (c *Controller) zoom(at f32.Point, s float32) bool {
	r := c.currentRecord()
	if r == nil {
		return false
	}
	m := c.transformOf(r)
	n := xNorm(m)
	if s > 1 && n > maxXNorm {
		iw, ih := imageSize(r)
		diag2 := n * n * (iw*iw + ih*ih)
		if diag2 > tooBigRatio*(c.winW*c.winW+c.winH*c.winH) {
			debug.Log(debug.NAV, "zoom in refused at %.2f", n)
			return false
		}
	}
	if s < 1 && n < minXNorm {
		debug.Log(debug.NAV, "zoom out refused at %.4f", n)
		return false
	}
	pv := c.toView(at)
	r.SetTransform(m.Scale(pv, f32.Pt(s, s)))
	return true
}

// oneToOne sets the zoom to one image pixel per window pixel, keeping the
// image point under at in place.
func (c *Controller) oneToOne(at f32.Point) {
	r := c.currentRecord()
	if r == nil {
		return
	}
	m := c.transformOf(r)
	n := xNorm(m)
	if n == 0 {
		return
	}
	pv := c.toView(at)
	r.SetTransform(m.Scale(pv, f32.Pt(1/n, 1/n)))
}

// rotation is the image's rotation in radians, taken from its x axis.
func rotation(m f32.Affine2D) float64 {
	sx, _, _, hy, _, _ := m.Elems()
	return math.Atan2(float64(hy), float64(sx))
}

// quarterTurns rounds an angle to whole quarter turns.
func quarterTurns(a float64) int {
	q := int(math.Round(a / (math.Pi / 2)))
	return ((q % 4) + 4) % 4
}

// fitMatrix scales r into the view without distortion, keeping its
// rotation, and centers it.
func (c *Controller) fitMatrix(r *record.Record) f32.Affine2D {
	iw, ih := imageSize(r)
	vw, vh := c.viewSize()
	q := quarterTurns(rotation(r.Transform()))
	bw, bh := iw, ih
	if q&1 == 1 {
		bw, bh = ih, iw
	}
	s := min(vw/bw, vh/bh)
	var m f32.Affine2D
	m = m.Offset(f32.Pt(-iw/2, -ih/2))
	m = m.Rotate(f32.Pt(0, 0), float32(q)*math.Pi/2)
	m = m.Scale(f32.Pt(0, 0), f32.Pt(s, s))
	m = m.Offset(f32.Pt(vw/2, vh/2))
	return cleanMatrix(m)
}

// centerMatrix moves the image center to the view center, keeping zoom and rotation.
func (c *Controller) centerMatrix(r *record.Record) f32.Affine2D {
	iw, ih := imageSize(r)
	vw, vh := c.viewSize()
	m := c.transformOf(r)
	at := m.Transform(f32.Pt(iw/2, ih/2))
	return m.Offset(f32.Pt(vw/2, vh/2).Sub(at))
}

// rotateImage turns the image a quarter turn about its center.
func (c *Controller) rotateImage(dir int) {
	r := c.currentRecord()
	if r == nil {
		return
	}
	iw, ih := imageSize(r)
	m := c.transformOf(r)
	center := m.Transform(f32.Pt(iw/2, ih/2))
	r.SetTransform(cleanMatrix(m.Rotate(center, float32(dir)*math.Pi/2)))
}

// rotateScreen turns the whole view a quarter turn and refits.
func (c *Controller) rotateScreen(dir int) {
	c.screenRot = ((c.screenRot+dir)%4 + 4) % 4
	c.screen = screenMatrix(c.screenRot, c.winW, c.winH)
	if r := c.currentRecord(); r != nil {
		r.SetTransform(c.fitMatrix(r))
	}
	debug.Log(debug.NAV, "screen rotation %d", c.screenRot*90)
}

// cleanMatrix snaps the tiny residues left by quarter turn rotations to zero.
func cleanMatrix(m f32.Affine2D) f32.Affine2D {
	sx, hx, ox, hy, sy, oy := m.Elems()
	snap := func(v float32) float32 {
		if v > -1e-6 && v < 1e-6 {
			return 0
		}
		return v
	}
	return f32.NewAffine2D(snap(sx), snap(hx), ox, snap(hy), snap(sy), oy)
}
