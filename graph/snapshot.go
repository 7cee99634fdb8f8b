// ABOUTME: Builds an object graph from a live managed heap
// ABOUTME: Follows every reference reachable from the registered root slots

package graph

import (
	"fmt"

	"github.com/prateek/gengc/object"
)

// Heap is the read-only view of a managed heap needed to snapshot it.
type Heap interface {
	Roots() []*object.Addr
	IsManaged(a object.Addr) bool
	Header(obj object.Addr) object.Header
	Field(obj object.Addr, i int) object.Addr
}

// FromHeap returns the graph of every object reachable from h's roots. Object
// IDs are the objects' current addresses. Reaching a forwarding marker is an
// error: after a collection completes no reachable object may be one.
func FromHeap(h Heap) (*MemGraph, error) {
	g := NewMemGraph()

	slot := func(v object.Addr) Slot {
		if h.IsManaged(v) {
			return Slot{Ref: ObjID(v)}
		}
		return Slot{Imm: uint64(v)}
	}

	var roots Roots
	var queue []object.Addr
	for _, r := range h.Roots() {
		s := slot(*r)
		roots.Slots = append(roots.Slots, s)
		if s.IsRef() {
			queue = append(queue, *r)
		}
	}
	g.SetRoots(roots)

	for len(queue) > 0 {
		obj := queue[0]
		queue = queue[1:]
		if g.GetObject(ObjID(obj)) != nil {
			continue
		}

		hdr := h.Header(obj)
		if hdr.Tag() == object.TagForward {
			return nil, fmt.Errorf("reachable object at %v is a forwarding marker", obj)
		}
		o := &Object{
			ID:     ObjID(obj),
			Tag:    hdr.Tag(),
			Size:   hdr.Footprint(),
			Fields: make([]Slot, hdr.FieldCount()),
		}
		for i := range o.Fields {
			v := h.Field(obj, i)
			o.Fields[i] = slot(v)
			if o.Fields[i].IsRef() {
				queue = append(queue, v)
			}
		}
		g.AddObject(o)
	}

	return g, nil
}
