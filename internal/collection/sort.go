package collection

import (
	"errors"
	"fmt"
	"math/rand/v2"
	"slices"
	"sort"
	"strings"
	"time"
)

// SortKey names an ordering of a set's direct children.
type SortKey int

const (
	SortNone SortKey = iota
	SortDate
	SortSize
	SortPixels
	SortWidth
	SortHeight
	SortName
	SortCaseName
	SortRandom
)

// ErrUnknownSortKey is returned by ParseSortKey.
var ErrUnknownSortKey = errors.New("collection: unknown sort key")

var sortNames = []string{
	SortNone:     "none",
	SortDate:     "date",
	SortSize:     "size",
	SortPixels:   "pixels",
	SortWidth:    "width",
	SortHeight:   "height",
	SortName:     "name",
	SortCaseName: "casename",
	SortRandom:   "random",
}

func (k SortKey) String() string {
	if k >= 0 && int(k) < len(sortNames) {
		return sortNames[k]
	}
	return fmt.Sprintf("SortKey(%d)", int(k))
}

// ParseSortKey reads the first comma separated term of s, ignoring case.
func ParseSortKey(s string) (SortKey, error) {
	term, _, _ := strings.Cut(s, ",")
	term = strings.ToLower(strings.TrimSpace(term))
	for k, name := range sortNames {
		if SortKey(k) != SortNone && name == term {
			return SortKey(k), nil
		}
	}
	return SortNone, fmt.Errorf("%w: %q", ErrUnknownSortKey, s)
}

type sortItem struct {
	node *Node
	num  float64
	when time.Time
	name string
}

// Sort reorders the direct children by key. Equal keys keep their relative
// order. Sets sort as if they were empty files named after the set.
func (n *Node) Sort(key SortKey) error {
	switch key {
	case SortNone:
		return nil
	case SortRandom:
		n.Shuffle(nil)
		return nil
	}
	if key < 0 || int(key) >= len(sortNames) {
		return fmt.Errorf("%w: %v", ErrUnknownSortKey, key)
	}

	items := make([]sortItem, len(n.children))
	for i, c := range n.children {
		items[i] = sortValue(c, key)
	}

	var less func(a, b sortItem) bool
	switch key {
	case SortDate:
		less = func(a, b sortItem) bool { return a.when.Before(b.when) }
	case SortName, SortCaseName:
		less = func(a, b sortItem) bool { return a.name < b.name }
	default:
		less = func(a, b sortItem) bool { return a.num < b.num }
	}
	sort.SliceStable(items, func(i, j int) bool { return less(items[i], items[j]) })

	for i := range items {
		n.children[i] = items[i].node
	}
	n.Relayout()
	return nil
}

func sortValue(c *Node, key SortKey) sortItem {
	it := sortItem{node: c, name: c.Name}
	r := c.Record
	if r != nil {
		it.name = r.Path()
	}
	if key == SortCaseName {
		it.name = strings.ToLower(it.name)
	}
	if r == nil {
		return it
	}
	switch key {
	case SortDate:
		it.when = r.CaptureTime()
	case SortSize:
		r.EnsureStat()
		it.num = float64(r.Size())
	case SortPixels, SortWidth, SortHeight:
		w, h := r.Dimensions()
		switch key {
		case SortPixels:
			it.num = float64(w) * float64(h)
		case SortWidth:
			it.num = float64(w)
		default:
			it.num = float64(h)
		}
	}
	return it
}

// Shuffle puts the children in uniformly random order. A nil rng uses the
// global source.
func (n *Node) Shuffle(rng *rand.Rand) {
	intN := rand.IntN
	if rng != nil {
		intN = rng.IntN
	}
	for i := len(n.children) - 1; i > 0; i-- {
		j := intN(i + 1)
		n.children[i], n.children[j] = n.children[j], n.children[i]
	}
	n.Relayout()
}

// Reverse flips the child order.
func (n *Node) Reverse() {
	slices.Reverse(n.children)
	n.Relayout()
}
