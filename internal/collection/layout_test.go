package collection

import (
	"image"
	"testing"

	"gioui.org/f32"

	"github.com/justyntemme/liv/internal/record"
)

type box struct{ x, y, w, h float32 }

func boxes(n *Node) []box {
	var out []box
	for _, c := range n.Children() {
		out = append(out, box{c.X, c.Y, c.Width, c.Height})
	}
	return out
}

func TestLayoutRowPacking(t *testing.T) {
	lib := record.NewLibrary(fakeDecoder{}, nil)
	set := leaves(t, lib, image.Pt(100, 100), "a", "b", "c")
	set.Width, set.Height = 250, 250
	set.Layout(LayoutFill)

	want := []box{{0, 0, 100, 100}, {100, 0, 100, 100}, {0, 100, 100, 100}}
	got := boxes(set)
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("child %d: expected %v, got %v", i, want[i], got[i])
		}
	}
	if set.KidsWidth != 200 || set.KidsHeight != 200 {
		t.Errorf("kids size: expected 200x200, got %vx%v", set.KidsWidth, set.KidsHeight)
	}
	if set.ScaleToKids != 1.25 {
		t.Errorf("ScaleToKids: expected 1.25, got %v", set.ScaleToKids)
	}
}

func TestLayoutOversizedChild(t *testing.T) {
	lib := record.NewLibrary(fakeDecoder{}, nil)
	set := leaves(t, lib, image.Pt(400, 100), "wide", "next")
	set.Width, set.Height = 300, 300
	set.Layout(LayoutFill)

	got := boxes(set)
	if got[0] != (box{0, 0, 400, 100}) {
		t.Errorf("oversized child: expected placed at origin, got %v", got[0])
	}
	if got[1] != (box{0, 100, 400, 100}) {
		t.Errorf("second child: expected its own row, got %v", got[1])
	}
}

func TestLayoutGapAndSingleRow(t *testing.T) {
	lib := record.NewLibrary(fakeDecoder{}, nil)
	set := leaves(t, lib, image.Pt(100, 50), "a", "b", "c")
	set.Gap = 10
	set.Width, set.Height = 200, 100
	set.Layout(LayoutSingleRow)

	got := boxes(set)
	if got[2] != (box{220, 0, 100, 50}) {
		t.Errorf("third child in single row: expected x=220, got %v", got[2])
	}
	if set.KidsWidth != 330 || set.KidsHeight != 60 {
		t.Errorf("kids size: expected 330x60, got %vx%v", set.KidsWidth, set.KidsHeight)
	}
}

func TestLayoutIdempotent(t *testing.T) {
	lib := record.NewLibrary(fakeDecoder{}, nil)
	set := leaves(t, lib, image.Pt(120, 80), "a", "b", "c", "d", "e")
	set.Width, set.Height = 300, 200
	set.Layout(LayoutFill)
	first := boxes(set)
	k1 := [3]float32{set.KidsWidth, set.KidsHeight, set.ScaleToKids}
	set.Layout(LayoutFill)
	second := boxes(set)
	for i := range first {
		if first[i] != second[i] {
			t.Errorf("child %d moved: %v then %v", i, first[i], second[i])
		}
	}
	if k2 := [3]float32{set.KidsWidth, set.KidsHeight, set.ScaleToKids}; k1 != k2 {
		t.Errorf("aggregate changed: %v then %v", k1, k2)
	}
}

func TestLayoutPlaceholderSizes(t *testing.T) {
	lib := record.NewLibrary(fakeDecoder{"tall.png": {50, 100}}, nil)
	set := NewSet(KindSet, "s")
	unknown, _ := lib.Get("/pics/unknown.jpg")
	tall, _ := lib.Get("/pics/tall.png")
	tall.EnsureDecoded()
	set.AddLeaf(unknown, -1)
	set.AddLeaf(tall, -1)
	set.Layout(LayoutSingleRow)

	got := boxes(set)
	if got[0].w != PreviewSize || got[0].h != PreviewSize {
		t.Errorf("unknown size: expected %v square, got %v", PreviewSize, got[0])
	}
	if got[1].w != 128 || got[1].h != 256 {
		t.Errorf("decoded 50x100: expected 128x256, got %v", got[1])
	}
}

func TestLayoutEmptyKeepsScale(t *testing.T) {
	set := NewSet(KindSet, "empty")
	set.ScaleToKids = 0.5
	set.Width, set.Height = 100, 100
	set.Layout(LayoutFill)
	if set.KidsWidth != 0 || set.KidsHeight != 0 || set.ScaleToKids != 0.5 {
		t.Errorf("empty layout: got kids %vx%v scale %v", set.KidsWidth, set.KidsHeight, set.ScaleToKids)
	}
}

func TestRelayoutPropagates(t *testing.T) {
	lib := record.NewLibrary(fakeDecoder{}, nil)
	z := NewZones(1000, 1000)
	inner := leaves(t, lib, image.Pt(100, 100), "a", "b")
	z.Collection.AddChild(inner, -1)
	z.Collection.Layout(LayoutFill)
	inner.Layout(LayoutSingleRow)

	before := inner.Width
	inner.Relayout()
	// inner now has a 200x100 canvas, so its box in the zone is 256x128.
	if inner.Width != 256 || inner.Height != 128 {
		t.Errorf("after relayout inner box: expected 256x128, got %vx%v (was %v)", inner.Width, inner.Height, before)
	}
	if z.Root.KidsWidth == 0 {
		t.Error("root was not laid out")
	}
}

func TestChildAt(t *testing.T) {
	lib := record.NewLibrary(fakeDecoder{}, nil)
	set := leaves(t, lib, image.Pt(100, 100), "a", "b", "c")
	set.Width, set.Height = 250, 250
	set.Layout(LayoutFill)
	testCases := []struct {
		x, y float32
		want int
	}{
		{50, 50, 0}, {150, 10, 1}, {10, 150, 2}, {240, 10, -1}, {150, 150, -1},
	}
	for _, tc := range testCases {
		if got := set.ChildAt(f32.Pt(tc.x, tc.y)); got != tc.want {
			t.Errorf("ChildAt(%v,%v): expected %d, got %d", tc.x, tc.y, tc.want, got)
		}
	}
}
