// ABOUTME: Allocation frontend used by compiled code
// ABOUTME: Allocates in the nursery, collects once on exhaustion, otherwise reports out of memory

package gc

import (
	"fmt"

	"github.com/prateek/gengc/object"
)

// minObjectSize is a header plus the one field a forwarding marker needs.
const minObjectSize = 2 * object.WordSize

// Allocate returns size bytes of uninitialised nursery memory. size must be
// the footprint of an object with at least one field. The caller must write
// the header and every field before the next call into the collector.
func (c *Collector) Allocate(size uint64) (object.Addr, error) {
	if size < minObjectSize || size%object.WordSize != 0 {
		return object.Nil, fmt.Errorf("allocating %d bytes: %w", size, ErrInvalidSize)
	}

	if !c.cfg.Stress {
		if p, ok := c.gen0.TryAlloc(size); ok {
			c.recordAllocation(p, size)
			return p, nil
		}
		if c.debug {
			c.log.Debug("nursery exhausted", "size", size, "free", c.gen0.Free())
		}
	}

	if err := c.collectMinor(); err != nil {
		return object.Nil, fmt.Errorf("allocating %d bytes: %w", size, err)
	}

	if p, ok := c.gen0.TryAlloc(size); ok {
		c.recordAllocation(p, size)
		return p, nil
	}
	c.log.Error("out of memory in generation 0", "size", size, "capacity", c.gen0.Size())
	return object.Nil, fmt.Errorf("allocating %d bytes in generation 0: %w", size, ErrOutOfMemory)
}

// AllocObject allocates an object with the given tag and fieldCount fields,
// all set to Nil.
func (c *Collector) AllocObject(tag object.Tag, fieldCount int) (object.Addr, error) {
	if fieldCount < 1 {
		return object.Nil, fmt.Errorf("object with %d fields: %w", fieldCount, ErrInvalidSize)
	}
	h := object.MakeHeader(tag, fieldCount)
	p, err := c.Allocate(h.Footprint())
	if err != nil {
		return object.Nil, err
	}
	c.mem.Store(p, uint64(h))
	for i := 0; i < fieldCount; i++ {
		c.mem.Store(p.Field(i), uint64(object.Nil))
	}
	return p, nil
}

func (c *Collector) recordAllocation(p object.Addr, size uint64) {
	c.stats.AllocatedObjects++
	c.stats.AllocatedBytes += size
	c.stats.recordResidency(c.gen0.Used(), c.from.Used())
	if c.debug {
		c.log.Debug("allocated", "addr", p, "size", size, "gen0_next", c.gen0.Next())
	}
}

// MustAllocate is Allocate for generated code: any error goes to the fatal
// handler.
func (c *Collector) MustAllocate(size uint64) object.Addr {
	p, err := c.Allocate(size)
	if err != nil {
		c.cfg.Fatal(err)
		return object.Nil
	}
	return p
}

// MustPushRoot is PushRoot with errors sent to the fatal handler.
func (c *Collector) MustPushRoot(slot *object.Addr) {
	if err := c.PushRoot(slot); err != nil {
		c.cfg.Fatal(err)
	}
}

// MustPopRoot is PopRootSlot with errors sent to the fatal handler.
func (c *Collector) MustPopRoot(slot *object.Addr) {
	if err := c.PopRootSlot(slot); err != nil {
		c.cfg.Fatal(err)
	}
}
