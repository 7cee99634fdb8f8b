// ABOUTME: Explicit root stack registered by the mutator
// ABOUTME: Slots are pushed before a reference is held across an allocation and popped in LIFO order

package gc

import (
	"fmt"

	"github.com/prateek/gengc/object"
)

// PushRoot registers slot as a root. The collector rewrites *slot whenever
// the object it refers to moves.
func (c *Collector) PushRoot(slot *object.Addr) error {
	if slot == nil {
		return ErrNilRoot
	}
	if len(c.roots) >= c.cfg.MaxRoots {
		c.log.Error("root stack overflow", "slot", fmt.Sprintf("%p", slot), "max_roots", c.cfg.MaxRoots)
		return fmt.Errorf("pushing root %p: %w", slot, ErrRootOverflow)
	}
	c.roots = append(c.roots, slot)
	c.stats.recordRoots(len(c.roots))
	if c.debug {
		c.log.Debug("push root", "slot", fmt.Sprintf("%p", slot), "value", *slot, "depth", len(c.roots))
	}
	return nil
}

// PopRoot removes the most recently pushed root.
func (c *Collector) PopRoot() error {
	if len(c.roots) == 0 {
		return ErrRootUnderflow
	}
	top := len(c.roots) - 1
	c.roots[top] = nil
	c.roots = c.roots[:top]
	return nil
}

// PopRootSlot removes the most recently pushed root, which should be slot.
// In checked mode a different slot on top of the stack is an error and the
// stack is left unchanged.
func (c *Collector) PopRootSlot(slot *object.Addr) error {
	if len(c.roots) == 0 {
		return ErrRootUnderflow
	}
	if c.cfg.Checked && c.roots[len(c.roots)-1] != slot {
		return fmt.Errorf("popping %p with %p on top: %w", slot, c.roots[len(c.roots)-1], ErrRootMismatch)
	}
	return c.PopRoot()
}

// NumRoots returns the current depth of the root stack.
func (c *Collector) NumRoots() int { return len(c.roots) }

// Roots returns the registered slots, oldest first.
func (c *Collector) Roots() []*object.Addr {
	out := make([]*object.Addr, len(c.roots))
	copy(out, c.roots)
	return out
}
