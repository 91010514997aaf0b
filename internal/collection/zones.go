package collection

// Zones is the invisible root and the three areas laid out side by side on it.
type Zones struct {
	Root       *Node
	Selection  *Node
	Collection *Node
	Filesystem *Node
}

// NewZones builds the root with zones of the given screen size.
func NewZones(w, h float32) *Zones {
	z := &Zones{
		Root:       NewSet(KindSet, "root"),
		Selection:  NewSet(KindSet, "selection"),
		Collection: NewSet(KindSet, "collection"),
		Filesystem: NewSet(KindSet, "filesystem"),
	}
	for _, zone := range []*Node{z.Selection, z.Collection, z.Filesystem} {
		z.Root.AddChild(zone, -1)
	}
	z.Resize(w, h)
	return z
}

// Resize gives every zone a new screen size and lays the root out again.
func (z *Zones) Resize(w, h float32) {
	for _, zone := range z.Root.children {
		zone.FixedWidth, zone.FixedHeight = w, h
		zone.Width, zone.Height = w, h
	}
	z.Root.Gap = w / 10
	z.Root.Width, z.Root.Height = 0, 0
	z.Root.Layout(LayoutSingleRow)
}

// Contains reports whether n is one of the three zones.
func (z *Zones) Contains(n *Node) bool {
	return n == z.Selection || n == z.Collection || n == z.Filesystem
}
