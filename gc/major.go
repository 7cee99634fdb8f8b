// ABOUTME: Generation 1 collector: Cheney scan/copy between two semispaces
// ABOUTME: Roots are the root stack plus every nursery slot pointing into fromspace

package gc

import (
	"github.com/prateek/gengc/object"
)

// CollectMajor runs a major collection.
func (c *Collector) CollectMajor() {
	c.collectMajor()
}

func (c *Collector) collectMajor() {
	c.stats.MajorCollections++
	c.epoch++
	c.log.Debug("major collection start",
		"fromspace", c.from, "tospace", c.to, "gen0_used", c.gen0.Used(), "roots", len(c.roots))

	c.to.Reset()

	// The nursery may hold references into generation 1, including the
	// destinations of forwarding markers left by a minor collection that is
	// still in progress.
	c.gen0ToGen1 = c.scanForRoots(c.gen0ToGen1[:0], c.gen0, c.from.Contains)

	for _, slot := range c.roots {
		*slot = c.evacuate(*slot)
	}
	for _, slot := range c.gen0ToGen1 {
		c.mem.Store(slot, uint64(c.evacuate(object.Addr(c.mem.Load(slot)))))
	}

	scan := c.to.Start()
	for scan < c.to.Next() {
		h := object.LoadHeader(c.mem, scan)
		for i := 0; i < h.FieldCount(); i++ {
			slot := scan.Field(i)
			c.mem.Store(slot, uint64(c.evacuate(object.Addr(c.mem.Load(slot)))))
		}
		scan = scan.Add(h.Footprint())
	}
	if c.cfg.Checked && scan != c.to.Next() {
		panic(object.Invariantf("major scan cursor %v overran frontier %v", scan, c.to.Next()))
	}

	c.from, c.to = c.to, c.from
	c.stats.recordResidency(c.gen0.Used(), c.from.Used())
	if c.cfg.Checked {
		c.verifyAfterMajor()
	}
	c.log.Debug("major collection end", "fromspace", c.from, "live", c.from.Used())
}

// evacuate returns the post-collection value of a word: fromspace references
// are copied to tospace (or resolved through their forwarding marker), every
// other value is returned unchanged.
func (c *Collector) evacuate(v object.Addr) object.Addr {
	if !c.from.Contains(v) {
		return v
	}
	if dest, ok := object.AsForward(c.mem, v); ok {
		c.checkDestination(v, dest, c.to)
		return dest
	}
	c.chaseGen1(v)
	dest, ok := object.AsForward(c.mem, v)
	if !ok {
		panic(object.Invariantf("object %v not forwarded after copy", v))
	}
	c.checkDestination(v, dest, c.to)
	return dest
}

// chaseGen1 copies obj, then keeps copying the last unforwarded fromspace
// object referenced by the copy just made. This improves locality along one
// chain; the scan loop picks up every sibling.
func (c *Collector) chaseGen1(obj object.Addr) {
	for cur := obj; cur != object.Nil; {
		dest := c.move(cur)
		next := object.Nil
		n := object.LoadHeader(c.mem, dest).FieldCount()
		for i := 0; i < n; i++ {
			f := object.Addr(c.mem.Load(dest.Field(i)))
			if c.from.Contains(f) && !object.IsForward(c.mem, f) {
				next = f
			}
		}
		cur = next
	}
}

// move copies obj to the tospace frontier and leaves a forwarding marker.
func (c *Collector) move(obj object.Addr) object.Addr {
	size := object.LoadHeader(c.mem, obj).Footprint()
	dest, ok := c.to.TryAlloc(size)
	if !ok {
		// Live data never exceeds the fromspace it came from.
		panic(object.Invariantf("tospace exhausted copying %v (%d bytes)", obj, size))
	}
	c.copyObject(dest, obj, size)
	object.SetForward(c.mem, obj, dest)
	c.stats.CopiedObjects++
	c.stats.CopiedBytes += size
	if c.debug {
		c.log.Debug("copied", "from", obj, "to", dest, "size", size)
	}
	return dest
}
