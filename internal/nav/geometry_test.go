package nav

import (
	"math"
	"testing"

	"gioui.org/f32"
)

func near(a, b f32.Point) bool {
	return math.Abs(float64(a.X-b.X)) < 1e-3 && math.Abs(float64(a.Y-b.Y)) < 1e-3
}

func TestScreenMatrix(t *testing.T) {
	const w, h = 300, 200
	testCases := []struct {
		rot    int
		origin f32.Point
		unitX  f32.Point
	}{
		{0, f32.Pt(0, 0), f32.Pt(1, 0)},
		{1, f32.Pt(w, 0), f32.Pt(w, 1)},
		{2, f32.Pt(w, h), f32.Pt(w-1, h)},
		{3, f32.Pt(0, h), f32.Pt(0, h-1)},
		{-1, f32.Pt(0, h), f32.Pt(0, h-1)},
	}
	for _, tc := range testCases {
		m := screenMatrix(tc.rot, w, h)
		if got := m.Transform(f32.Pt(0, 0)); !near(got, tc.origin) {
			t.Errorf("screenMatrix(%d) origin: expected %v, got %v", tc.rot, tc.origin, got)
		}
		if got := m.Transform(f32.Pt(1, 0)); !near(got, tc.unitX) {
			t.Errorf("screenMatrix(%d) x axis: expected %v, got %v", tc.rot, tc.unitX, got)
		}
	}
}

func TestQuarterTurns(t *testing.T) {
	testCases := []struct {
		angle float64
		want  int
	}{
		{0, 0},
		{math.Pi / 2, 1},
		{math.Pi, 2},
		{-math.Pi / 2, 3},
		{0.1, 0},
	}
	for _, tc := range testCases {
		if got := quarterTurns(tc.angle); got != tc.want {
			t.Errorf("quarterTurns(%v): expected %d, got %d", tc.angle, tc.want, got)
		}
	}
}

func TestFitOnFirstShow(t *testing.T) {
	c, _ := newController(t, decodable("a.jpg"), Options{}, "a.jpg")
	m := c.Transform()
	if got := m.Transform(f32.Pt(0, 0)); !near(got, f32.Pt(0, 0)) {
		t.Errorf("top left: expected (0,0), got %v", got)
	}
	if got := m.Transform(f32.Pt(600, 400)); !near(got, f32.Pt(winW, winH)) {
		t.Errorf("bottom right: expected (%d,%d), got %v", winW, winH, got)
	}
}

func TestOneToOneOption(t *testing.T) {
	c, _ := newController(t, decodable("a.jpg"), Options{OneToOne: true}, "a.jpg")
	if got := xNorm(c.Transform()); math.Abs(float64(got-1)) > 1e-4 {
		t.Errorf("xNorm: expected 1, got %v", got)
	}
	if got := c.Transform().Transform(f32.Pt(300, 200)); !near(got, f32.Pt(winW/2, winH/2)) {
		t.Errorf("image center: expected window center, got %v", got)
	}
}

func TestRotateScreenRefits(t *testing.T) {
	c, _ := newController(t, decodable("a.jpg"), Options{}, "a.jpg")
	c.Dispatch(Action{Kind: ActRotateScreen})
	m := c.Transform()
	if got := m.Transform(f32.Pt(300, 200)); !near(got, f32.Pt(winW/2, winH/2)) {
		t.Errorf("image center: expected window center, got %v", got)
	}
	if got := xNorm(m); math.Abs(float64(got-float32(1)/3)) > 1e-4 {
		t.Errorf("scale: expected 1/3, got %v", got)
	}
}

func TestRotateImageFullTurn(t *testing.T) {
	c, _ := newController(t, decodable("a.jpg"), Options{}, "a.jpg")
	before := c.Transform()
	for range 4 {
		c.Dispatch(Action{Kind: ActRotateImage})
	}
	after := c.Transform()
	for _, p := range []f32.Point{{}, f32.Pt(600, 0), f32.Pt(600, 400)} {
		if !near(before.Transform(p), after.Transform(p)) {
			t.Errorf("point %v: expected %v, got %v", p, before.Transform(p), after.Transform(p))
		}
	}
	c.Dispatch(Action{Kind: ActRotateImage})
	if q := quarterTurns(rotation(c.CurrentRecord().Transform())); q != 1 {
		t.Errorf("rotation: expected 1 quarter turn, got %d", q)
	}
}

func TestZoomIsClamped(t *testing.T) {
	c, _ := newController(t, decodable("a.jpg"), Options{}, "a.jpg")
	for range 40 {
		c.Dispatch(Action{Kind: ActZoomIn})
	}
	if n := xNorm(c.Transform()); n <= maxXNorm || n > maxXNorm*zoomStep {
		t.Errorf("zoom in: expected to stop just past %v, got %v", maxXNorm, n)
	}
	for range 80 {
		c.Dispatch(Action{Kind: ActZoomOut})
	}
	if n := xNorm(c.Transform()); n >= minXNorm || n < minXNorm/zoomStep {
		t.Errorf("zoom out: expected to stop just below %v, got %v", minXNorm, n)
	}
}

func TestDragPansImage(t *testing.T) {
	c, _ := newController(t, decodable("a.jpg"), Options{}, "a.jpg")
	c.Drag(f32.Pt(10, 5))
	if got := c.Transform().Transform(f32.Pt(0, 0)); !near(got, f32.Pt(10, 5)) {
		t.Errorf("Drag: expected origin at (10,5), got %v", got)
	}
}
