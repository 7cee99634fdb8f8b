// ABOUTME: Generation 0 collector: promotes every reachable nursery object into generation 1
// ABOUTME: The nursery is emptied afterwards; nothing is ever copied within it

package gc

import (
	"fmt"

	"github.com/prateek/gengc/object"
)

// CollectMinor runs a minor collection.
func (c *Collector) CollectMinor() error {
	return c.collectMinor()
}

func (c *Collector) collectMinor() error {
	c.stats.MinorCollections++
	c.log.Debug("minor collection start",
		"gen0_used", c.gen0.Used(), "gen1_used", c.from.Used(), "roots", len(c.roots))

	epoch := c.epoch
	c.minorScan = c.from.Next()

	// An older object may have been mutated to point at a newer one.
	c.gen1ToGen0 = c.scanForRoots(c.gen1ToGen0[:0], c.from, c.gen0.Contains)

	// moved is set once a major collection relocated generation 1 under us.
	// Slot addresses gathered before that point are stale, and the scan
	// restarts from the base of the new fromspace, which revisits every
	// generation 1 object and so covers them.
	moved := func() bool {
		if c.epoch == epoch {
			return false
		}
		epoch = c.epoch
		c.minorScan = c.from.Start()
		return true
	}

	stale := false
	for _, slot := range c.roots {
		v, err := c.promoteValue(*slot)
		if err != nil {
			return fmt.Errorf("minor collection: %w", err)
		}
		*slot = v
		if moved() {
			stale = true
		}
	}

	for _, slot := range c.gen1ToGen0 {
		if stale {
			break
		}
		v, err := c.promoteValue(object.Addr(c.mem.Load(slot)))
		if err != nil {
			return fmt.Errorf("minor collection: %w", err)
		}
		if moved() {
			stale = true
			break
		}
		c.mem.Store(slot, uint64(v))
	}

	if err := c.scanPromoted(moved); err != nil {
		return fmt.Errorf("minor collection: %w", err)
	}

	c.gen0.Reset()
	c.stats.recordResidency(c.gen0.Used(), c.from.Used())
	if c.cfg.Checked {
		c.verifyAfterMinor()
	}
	c.log.Debug("minor collection end", "gen1_used", c.from.Used(), "major_collections", c.stats.MajorCollections)
	return nil
}

// scanPromoted drains the Cheney cursor over generation 1 until it meets the
// allocation frontier, promoting whatever the scanned fields still reference
// in the nursery.
func (c *Collector) scanPromoted(moved func() bool) error {
	for c.minorScan < c.from.Next() {
		obj := c.minorScan
		h := object.LoadHeader(c.mem, obj)
		if c.cfg.Checked && h.Tag() == object.TagForward {
			panic(object.Invariantf("forwarding marker at %v in active generation 1", obj))
		}

		restarted := false
		for i := 0; i < h.FieldCount(); i++ {
			slot := obj.Field(i)
			v := object.Addr(c.mem.Load(slot))
			if !c.gen0.Contains(v) {
				continue
			}
			nv, err := c.promoteValue(v)
			if err != nil {
				return err
			}
			if moved() {
				restarted = true
				break
			}
			c.mem.Store(slot, uint64(nv))
		}
		if !restarted {
			c.minorScan = obj.Add(h.Footprint())
		}
	}
	if c.cfg.Checked && c.minorScan != c.from.Next() {
		panic(object.Invariantf("minor scan cursor %v overran frontier %v", c.minorScan, c.from.Next()))
	}
	return nil
}

// promoteValue returns the post-collection value of a word: nursery
// references are promoted (or resolved through their forwarding marker),
// every other value is returned unchanged.
func (c *Collector) promoteValue(v object.Addr) (object.Addr, error) {
	if !c.gen0.Contains(v) {
		return v, nil
	}
	if dest, ok := object.AsForward(c.mem, v); ok {
		c.checkDestination(v, dest, c.from)
		return dest, nil
	}
	if err := c.chaseGen0(v); err != nil {
		return object.Nil, err
	}
	dest, ok := object.AsForward(c.mem, v)
	if !ok {
		panic(object.Invariantf("object %v not forwarded after promotion", v))
	}
	c.checkDestination(v, dest, c.from)
	return dest, nil
}

// chaseGen0 promotes obj, then keeps promoting the last unforwarded nursery
// object referenced by the copy just made. Siblings are left to the scan.
func (c *Collector) chaseGen0(obj object.Addr) error {
	for cur := obj; cur != object.Nil; {
		dest, err := c.promote(cur)
		if err != nil {
			return err
		}
		next := object.Nil
		n := object.LoadHeader(c.mem, dest).FieldCount()
		for i := 0; i < n; i++ {
			f := object.Addr(c.mem.Load(dest.Field(i)))
			if c.gen0.Contains(f) && !object.IsForward(c.mem, f) {
				next = f
			}
		}
		cur = next
	}
	return nil
}

// promote copies obj into generation 1 and leaves a forwarding marker behind.
func (c *Collector) promote(obj object.Addr) (object.Addr, error) {
	size := object.LoadHeader(c.mem, obj).Footprint()
	dest, err := c.allocGen1(size)
	if err != nil {
		return object.Nil, fmt.Errorf("promoting %v: %w", obj, err)
	}
	c.copyObject(dest, obj, size)
	object.SetForward(c.mem, obj, dest)
	c.stats.PromotedObjects++
	c.stats.PromotedBytes += size
	if c.debug {
		c.log.Debug("promoted", "from", obj, "to", dest, "size", size)
	}
	return dest, nil
}

// allocGen1 bump-allocates in the active semispace, running a major
// collection first if the space is full or stress mode is on.
func (c *Collector) allocGen1(size uint64) (object.Addr, error) {
	if !c.cfg.Stress {
		if p, ok := c.from.TryAlloc(size); ok {
			return p, nil
		}
	}
	c.collectMajor()
	if p, ok := c.from.TryAlloc(size); ok {
		return p, nil
	}
	c.log.Error("out of memory in generation 1", "size", size, "used", c.from.Used(), "capacity", c.from.Size())
	return object.Nil, fmt.Errorf("allocating %d bytes in generation 1: %w", size, ErrOutOfMemory)
}
