package collection

import (
	"errors"
	"image"
	"slices"
	"testing"

	"github.com/justyntemme/liv/internal/record"
)

func TestAddChildRules(t *testing.T) {
	lib := record.NewLibrary(fakeDecoder{}, nil)
	root := NewSet(KindSet, "root")
	a := NewSet(KindSet, "a")
	b := NewSet(KindSet, "b")

	if err := root.AddChild(a, -1); err != nil {
		t.Fatalf("AddChild: %v", err)
	}
	if err := a.AddChild(b, -1); err != nil {
		t.Fatalf("AddChild: %v", err)
	}
	if err := root.AddChild(b, -1); !errors.Is(err, ErrAlreadyOwned) {
		t.Errorf("adding owned node: expected ErrAlreadyOwned, got %v", err)
	}
	if err := b.AddChild(root, -1); !errors.Is(err, ErrCycle) {
		t.Errorf("adding ancestor: expected ErrCycle, got %v", err)
	}
	if err := a.AddChild(a, -1); !errors.Is(err, ErrCycle) {
		t.Errorf("adding self: expected ErrCycle, got %v", err)
	}
	loose := NewSet(KindSet, "loose")
	if err := loose.AddChild(loose, -1); !errors.Is(err, ErrCycle) || loose.Len() != 0 {
		t.Errorf("adding unowned self: expected ErrCycle, got %v", err)
	}
	r, _ := lib.Get("/pics/x.jpg")
	leaf, _ := b.AddLeaf(r, -1)
	if err := leaf.AddChild(NewSet(KindSet, "c"), -1); !errors.Is(err, ErrNotSet) {
		t.Errorf("adding to leaf: expected ErrNotSet, got %v", err)
	}
	if root.Len() != 1 || a.Len() != 1 || b.Len() != 1 {
		t.Error("failed additions changed the tree")
	}
}

func TestAddChildPosition(t *testing.T) {
	lib := record.NewLibrary(fakeDecoder{}, nil)
	set := leaves(t, lib, image.Point{}, "a", "c")
	mid := NewSet(KindSet, "b")
	set.AddChild(mid, 1)
	if got := names(set); !slices.Equal(got, []string{"a", "b", "c"}) {
		t.Errorf("insert at 1: expected [a b c], got %v", got)
	}
	set.AddChild(NewSet(KindSet, "z"), 99)
	if got := names(set); got[len(got)-1] != "z" {
		t.Errorf("out of range position should append, got %v", got)
	}
}

func TestRemoveAndRelease(t *testing.T) {
	lib := record.NewLibrary(fakeDecoder{}, nil)
	set := leaves(t, lib, image.Point{}, "a", "b")
	r := set.Child(0).Record
	other, _ := NewSet(KindSet, "other").AddLeaf(r, -1)

	if r.Refs() != 2 {
		t.Fatalf("Refs: expected 2, got %d", r.Refs())
	}
	removed, err := set.RemoveChild(0)
	if err != nil {
		t.Fatalf("RemoveChild: %v", err)
	}
	if removed.Parent() != nil {
		t.Error("removed child still has a parent")
	}
	if r.Refs() != 2 {
		t.Error("RemoveChild must not drop references by itself")
	}
	removed.Release()
	if r.Refs() != 1 || other.Record != r {
		t.Errorf("Refs after release: expected 1, got %d", r.Refs())
	}
	if _, err := set.RemoveChild(5); !errors.Is(err, ErrIndex) {
		t.Errorf("RemoveChild(5): expected ErrIndex, got %v", err)
	}

	set.Clear()
	lib.Prune()
	if lib.Len() != 1 {
		t.Errorf("library after Clear and Prune: expected 1 record, got %d", lib.Len())
	}
}

func TestZones(t *testing.T) {
	z := NewZones(1000, 800)
	if z.Root.Len() != 3 {
		t.Fatalf("root: expected 3 zones, got %d", z.Root.Len())
	}
	if z.Collection.X != 1100 || z.Collection.Width != 1000 {
		t.Errorf("collection zone placed at %v width %v", z.Collection.X, z.Collection.Width)
	}
	z.Resize(500, 400)
	if z.Filesystem.X != 1100 || z.Filesystem.Height != 400 {
		t.Errorf("after resize filesystem at %v height %v", z.Filesystem.X, z.Filesystem.Height)
	}
	if !z.Contains(z.Selection) || z.Contains(z.Root) {
		t.Error("Contains misreports zones")
	}
}
