// ABOUTME: Builds the heap described by a dump inside a live collector
// ABOUTME: Keeps every new object rooted while allocating so collections cannot lose them

package heapdump

import (
	"fmt"

	"github.com/prateek/gengc/object"
)

// Heap is the part of a collector needed to materialise a dump.
type Heap interface {
	AllocObject(tag object.Tag, fieldCount int) (object.Addr, error)
	SetField(obj object.Addr, i int, v object.Addr)
	PushRoot(slot *object.Addr) error
	PopRoot() error
}

// Loaded is a dump materialised in a heap. Roots holds one registered root
// slot per dump root, in dump order; the collector keeps them up to date.
type Loaded struct {
	Roots []object.Addr
	heap  Heap
}

// Load allocates every object of d in h, links the fields and registers the
// dump roots. Allocation may trigger collections; every object stays rooted
// until the graph is complete. Immediates must not fall inside the managed
// address range or they will be treated as references.
func (d *Dump) Load(h Heap) (*Loaded, error) {
	l := &Loaded{Roots: make([]object.Addr, len(d.Roots)), heap: h}
	objs := make([]object.Addr, len(d.Objects))

	pushed := 0
	unwind := func(err error) (*Loaded, error) {
		for ; pushed > 0; pushed-- {
			h.PopRoot()
		}
		return nil, err
	}

	for i := range l.Roots {
		if err := h.PushRoot(&l.Roots[i]); err != nil {
			return unwind(fmt.Errorf("registering dump root %d: %w", i, err))
		}
		pushed++
	}
	for i := range objs {
		if err := h.PushRoot(&objs[i]); err != nil {
			return unwind(fmt.Errorf("rooting dump object %d: %w", d.Objects[i].ID, err))
		}
		pushed++
	}

	index := make(map[uint64]int, len(d.Objects))
	for i, obj := range d.Objects {
		a, err := h.AllocObject(obj.Tag, len(obj.Fields))
		if err != nil {
			return unwind(fmt.Errorf("allocating dump object %d: %w", obj.ID, err))
		}
		objs[i] = a
		index[uint64(obj.ID)] = i
	}

	// No allocation happens from here on, so addresses stay put.
	for i, obj := range d.Objects {
		for j, f := range obj.Fields {
			v := object.Addr(f.Imm)
			if f.Ref != 0 {
				v = objs[index[uint64(f.Ref)]]
			}
			h.SetField(objs[i], j, v)
		}
	}
	for i, id := range d.Roots {
		if id != 0 {
			l.Roots[i] = objs[index[uint64(id)]]
		}
	}

	for range objs {
		if err := h.PopRoot(); err != nil {
			return nil, fmt.Errorf("unrooting dump objects: %w", err)
		}
	}
	return l, nil
}

// Release unregisters the dump roots. Nothing else may have been pushed
// since Load.
func (l *Loaded) Release() error {
	for range l.Roots {
		if err := l.heap.PopRoot(); err != nil {
			return err
		}
	}
	return nil
}
