// ABOUTME: Core data types for heap object graphs
// ABOUTME: Defines Object, Slot, ObjID and Roots

package graph

import "github.com/prateek/gengc/object"

// ObjID identifies an object within one graph. Graphs built from a live heap
// use the object's address; fixture graphs use their own numbering.
type ObjID uint64

// Slot is the content of a field or root: either a reference to another
// object of the graph or an immediate word.
type Slot struct {
	Ref ObjID  // non-zero for references
	Imm uint64 // value of an immediate, zero for references
}

// IsRef reports whether s is a reference.
func (s Slot) IsRef() bool { return s.Ref != 0 }

// Object is a single heap object.
type Object struct {
	ID     ObjID
	Tag    object.Tag
	Size   uint64 // footprint in bytes
	Fields []Slot
}

// Ptrs returns the references held by o, in field order.
func (o *Object) Ptrs() []ObjID {
	var ptrs []ObjID
	for _, f := range o.Fields {
		if f.IsRef() {
			ptrs = append(ptrs, f.Ref)
		}
	}
	return ptrs
}

// Roots lists the root slots in root stack order.
type Roots struct {
	Slots []Slot
}

// IDs returns the objects referenced by roots, in order and with repeats.
func (r Roots) IDs() []ObjID {
	var ids []ObjID
	for _, s := range r.Slots {
		if s.IsRef() {
			ids = append(ids, s.Ref)
		}
	}
	return ids
}
