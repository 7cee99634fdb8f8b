// ABOUTME: Full-scan discovery of cross-generation references
// ABOUTME: Stands in for a write barrier by walking a whole space before each collection

package gc

import (
	"github.com/prateek/gengc/arena"
	"github.com/prateek/gengc/object"
)

// scanForRoots appends to dst the address of every field slot in the
// allocated part of space whose value satisfies target. Forwarding markers
// contribute only their destination slot; their other slots are dead.
//
// The cost is proportional to the size of space, not to the number of slots
// found. dst grows as needed.
func (c *Collector) scanForRoots(dst []object.Addr, space *arena.Arena, target func(object.Addr) bool) []object.Addr {
	obj := space.Start()
	for obj < space.Next() {
		h := object.LoadHeader(c.mem, obj)
		n := h.FieldCount()
		if h.Tag() == object.TagForward {
			n = 1
		}
		for i := 0; i < n; i++ {
			slot := obj.Field(i)
			if target(object.Addr(c.mem.Load(slot))) {
				dst = append(dst, slot)
			}
		}
		obj = obj.Add(h.Footprint())
	}
	if c.cfg.Checked && obj != space.Next() {
		panic(object.Invariantf("walk of %s stopped at %v past frontier %v", space.Name(), obj, space.Next()))
	}
	return dst
}
