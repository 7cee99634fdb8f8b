// ABOUTME: Introspection entry points and checked-mode invariant assertions
// ABOUTME: Nothing here mutates collector state except through panics on broken invariants

package gc

import (
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/prateek/gengc/arena"
	"github.com/prateek/gengc/object"
)

// Space names a region of the managed heap.
type Space int

const (
	Unmanaged Space = iota
	Gen0
	Fromspace
	Tospace
)

func (s Space) String() string {
	switch s {
	case Gen0:
		return "GEN0-SPACE"
	case Fromspace:
		return "FROM-SPACE"
	case Tospace:
		return "TO-SPACE"
	default:
		return "UNMANAGED SPACE"
	}
}

// Locate returns the space a lies in.
func (c *Collector) Locate(a object.Addr) Space {
	switch {
	case c.gen0.Contains(a):
		return Gen0
	case c.from.Contains(a):
		return Fromspace
	case c.to.Contains(a):
		return Tospace
	default:
		return Unmanaged
	}
}

// SpaceInfo describes the bounds and frontier of one space.
type SpaceInfo struct {
	Space Space
	Start object.Addr
	End   object.Addr
	Next  object.Addr
}

// Used returns the allocated bytes of the space.
func (s SpaceInfo) Used() uint64 { return uint64(s.Next - s.Start) }

// Spaces describes every space in address order of role: nursery,
// fromspace, tospace.
func (c *Collector) Spaces() []SpaceInfo {
	info := func(s Space, a *arena.Arena) SpaceInfo {
		return SpaceInfo{Space: s, Start: a.Start(), End: a.End(), Next: a.Next()}
	}
	return []SpaceInfo{info(Gen0, c.gen0), info(Fromspace, c.from), info(Tospace, c.to)}
}

// Walk calls fn for every allocated object of space (Gen0 or Fromspace) in
// address order until fn returns false.
func (c *Collector) Walk(space Space, fn func(obj object.Addr, h object.Header) bool) {
	var a *arena.Arena
	switch space {
	case Gen0:
		a = c.gen0
	case Fromspace:
		a = c.from
	default:
		return
	}
	for obj := a.Start(); obj < a.Next(); {
		h := object.LoadHeader(c.mem, obj)
		if !fn(obj, h) {
			return
		}
		obj = obj.Add(h.Footprint())
	}
}

// WriteState prints the bounds and occupancy of every space.
func (c *Collector) WriteState(w io.Writer) error {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "SPACE\tSTART\tEND\tNEXT\tUSED\tSIZE")
	for _, s := range c.Spaces() {
		fmt.Fprintf(tw, "%s\t%v\t%v\t%v\t%d\t%d\n",
			s.Space, s.Start, s.End, s.Next, s.Used(), uint64(s.End-s.Start))
	}
	return tw.Flush()
}

// WriteRoots prints every registered root slot and the value it holds.
func (c *Collector) WriteRoots(w io.Writer) error {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintf(tw, "ROOTS\t%d of %d\t\n", len(c.roots), c.cfg.MaxRoots)
	for i, slot := range c.roots {
		fmt.Fprintf(tw, "%d\t%p\t%v\t%s\n", i, slot, *slot, c.Locate(*slot))
	}
	return tw.Flush()
}

// copyObject copies size bytes of the object at src to dst and, in checked
// mode, verifies the copy.
func (c *Collector) copyObject(dst, src object.Addr, size uint64) {
	c.mem.Copy(dst, src, size)
	if !c.cfg.Checked {
		return
	}
	hs, hd := object.LoadHeader(c.mem, src), object.LoadHeader(c.mem, dst)
	if hs != hd || hd.Footprint() != size {
		panic(object.Invariantf("copy of %v to %v: header %#x became %#x", src, dst, uint64(hs), uint64(hd)))
	}
	for i := 0; i < hs.FieldCount(); i++ {
		if c.mem.Load(src.Field(i)) != c.mem.Load(dst.Field(i)) {
			panic(object.Invariantf("copy of %v to %v: field %d differs", src, dst, i))
		}
	}
}

// checkDestination asserts that the marker at src points into space.
func (c *Collector) checkDestination(src, dest object.Addr, space *arena.Arena) {
	if !c.cfg.Checked {
		return
	}
	if !space.Contains(dest) || dest >= space.Next() {
		panic(object.Invariantf("forwarding marker at %v points at %v outside %s", src, dest, space))
	}
	if object.IsForward(c.mem, dest) {
		panic(object.Invariantf("forwarding marker at %v points at another marker %v", src, dest))
	}
}

func (c *Collector) verifyAfterMinor() {
	for i, slot := range c.roots {
		if c.gen0.Contains(*slot) {
			panic(object.Invariantf("root %d still points into the nursery at %v", i, *slot))
		}
	}
	if left := c.scanForRoots(nil, c.from, c.gen0.Contains); len(left) > 0 {
		panic(object.Invariantf("%d generation 1 slots still point into the nursery, first at %v", len(left), left[0]))
	}
}

func (c *Collector) verifyAfterMajor() {
	for i, slot := range c.roots {
		if c.to.Contains(*slot) {
			panic(object.Invariantf("root %d still points into tospace at %v", i, *slot))
		}
	}
	if left := c.scanForRoots(nil, c.from, c.to.Contains); len(left) > 0 {
		panic(object.Invariantf("%d generation 1 slots still point into tospace, first at %v", len(left), left[0]))
	}
	if left := c.scanForRoots(nil, c.gen0, c.to.Contains); len(left) > 0 {
		panic(object.Invariantf("%d nursery slots still point into tospace, first at %v", len(left), left[0]))
	}
}
