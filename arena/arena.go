// ABOUTME: Bump allocated region of the managed heap
// ABOUTME: Hands out memory by advancing one frontier, fails when the region is full

package arena

import (
	"fmt"

	"github.com/prateek/gengc/object"
)

// Arena is a region [start, end) of a Memory with a bump pointer.
// Allocated memory is never zeroed.
type Arena struct {
	name  string
	start object.Addr
	end   object.Addr
	next  object.Addr
}

// New returns an empty arena covering size bytes of mem starting at start.
func New(name string, mem *Memory, start object.Addr, size uint64) (*Arena, error) {
	end := start.Add(size)
	if start < mem.Base() || end > mem.End() || end < start {
		return nil, fmt.Errorf("arena %s [%v, %v) outside memory [%v, %v)", name, start, end, mem.Base(), mem.End())
	}
	if !start.Aligned() || size%object.WordSize != 0 {
		return nil, fmt.Errorf("arena %s [%v, %v) is not word aligned", name, start, end)
	}
	return &Arena{name: name, start: start, end: end, next: start}, nil
}

// TryAlloc bumps the frontier by size bytes and returns the old frontier.
// It returns false, leaving the arena untouched, if the arena is too full.
func (a *Arena) TryAlloc(size uint64) (object.Addr, bool) {
	if size > uint64(a.end-a.next) {
		return object.Nil, false
	}
	p := a.next
	a.next = a.next.Add(size)
	return p, true
}

// Fits reports whether size more bytes can be allocated.
func (a *Arena) Fits(size uint64) bool {
	return size <= uint64(a.end-a.next)
}

// Reset empties the arena.
func (a *Arena) Reset() {
	a.next = a.start
}

// ResetTo moves the frontier to next, which must lie inside the arena.
func (a *Arena) ResetTo(next object.Addr) {
	if next < a.start || next > a.end {
		panic(object.Invariantf("frontier %v outside arena %s [%v, %v)", next, a.name, a.start, a.end))
	}
	a.next = next
}

// Contains reports whether p falls inside the arena, allocated or not.
func (a *Arena) Contains(p object.Addr) bool {
	return a.start <= p && p < a.end
}

// Name returns the arena label used in diagnostics.
func (a *Arena) Name() string { return a.name }

// Start returns the first address of the arena.
func (a *Arena) Start() object.Addr { return a.start }

// End returns the first address past the arena.
func (a *Arena) End() object.Addr { return a.end }

// Next returns the current frontier.
func (a *Arena) Next() object.Addr { return a.next }

// Size returns the capacity of the arena in bytes.
func (a *Arena) Size() uint64 { return uint64(a.end - a.start) }

// Used returns the number of allocated bytes.
func (a *Arena) Used() uint64 { return uint64(a.next - a.start) }

// Free returns the number of bytes still available.
func (a *Arena) Free() uint64 { return uint64(a.end - a.next) }

func (a *Arena) String() string {
	return fmt.Sprintf("%s [%v, %v) next=%v", a.name, a.start, a.end, a.next)
}
