// ABOUTME: JSON heap dumps: a portable description of an object graph and its roots
// ABOUTME: Decodes and validates dumps, converts them to graphs and writes graphs back out

// Package heapdump reads and writes object graphs as JSON. A dump can be
// loaded into a collector to build the heap it describes, and a live heap
// snapshot can be written back out in the same format.
package heapdump

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"

	"github.com/prateek/gengc/graph"
	"github.com/prateek/gengc/object"
)

var (
	// ErrInvalidDump is returned when a dump does not describe a valid graph
	ErrInvalidDump = errors.New("invalid heap dump")
)

// Dump is the JSON form of a heap. Object IDs are local to the dump.
type Dump struct {
	Objects []Object      `json:"objects"`
	Roots   []graph.ObjID `json:"roots"` // 0 stands for a nil root
}

// Object is one object of a dump.
type Object struct {
	ID     graph.ObjID `json:"id"`
	Tag    object.Tag  `json:"tag"`
	Fields []Field     `json:"fields"`
}

// Field holds either a reference to another object or an immediate word.
type Field struct {
	Ref graph.ObjID `json:"ref,omitempty"`
	Imm uint64      `json:"imm,omitempty"`
}

// Decode reads and validates a dump.
func Decode(r io.Reader) (*Dump, error) {
	var d Dump

	decoder := json.NewDecoder(r)
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(&d); err != nil {
		return nil, fmt.Errorf("failed to decode JSON: %w", err)
	}
	if err := d.Validate(); err != nil {
		return nil, err
	}
	return &d, nil
}

// Validate checks IDs, tags, field counts and references.
func (d *Dump) Validate() error {
	ids := make(map[graph.ObjID]bool, len(d.Objects))
	for i, obj := range d.Objects {
		if obj.ID == 0 {
			return fmt.Errorf("object at index %d missing ID: %w", i, ErrInvalidDump)
		}
		if ids[obj.ID] {
			return fmt.Errorf("duplicate object ID %d: %w", obj.ID, ErrInvalidDump)
		}
		ids[obj.ID] = true
		if obj.Tag >= object.TagForward {
			return fmt.Errorf("object %d has reserved tag %d: %w", obj.ID, obj.Tag, ErrInvalidDump)
		}
		if len(obj.Fields) == 0 || len(obj.Fields) > object.MaxFieldCount {
			return fmt.Errorf("object %d has %d fields: %w", obj.ID, len(obj.Fields), ErrInvalidDump)
		}
	}

	for _, obj := range d.Objects {
		for j, f := range obj.Fields {
			if f.Ref != 0 && f.Imm != 0 {
				return fmt.Errorf("object %d field %d is both a reference and an immediate: %w", obj.ID, j, ErrInvalidDump)
			}
			if f.Ref != 0 && !ids[f.Ref] {
				return fmt.Errorf("object %d field %d references unknown object %d: %w", obj.ID, j, f.Ref, ErrInvalidDump)
			}
		}
	}
	for i, id := range d.Roots {
		if id != 0 && !ids[id] {
			return fmt.Errorf("root %d references unknown object %d: %w", i, id, ErrInvalidDump)
		}
	}
	return nil
}

// Graph converts the dump into a graph keyed by dump IDs.
func (d *Dump) Graph() *graph.MemGraph {
	g := graph.NewMemGraph()
	for _, obj := range d.Objects {
		o := &graph.Object{
			ID:     obj.ID,
			Tag:    obj.Tag,
			Size:   uint64(1+len(obj.Fields)) * object.WordSize,
			Fields: make([]graph.Slot, len(obj.Fields)),
		}
		for j, f := range obj.Fields {
			o.Fields[j] = graph.Slot{Ref: f.Ref, Imm: f.Imm}
		}
		g.AddObject(o)
	}

	var roots graph.Roots
	for _, id := range d.Roots {
		roots.Slots = append(roots.Slots, graph.Slot{Ref: id})
	}
	g.SetRoots(roots)
	return g
}

// FromGraph builds a dump of g, renumbering objects 1..n in ID order.
func FromGraph(g graph.Graph) *Dump {
	renumber := make(map[graph.ObjID]graph.ObjID, g.NumObjects())
	g.ForEachObject(func(obj *graph.Object) {
		renumber[obj.ID] = graph.ObjID(len(renumber) + 1)
	})

	d := &Dump{Objects: make([]Object, 0, len(renumber)), Roots: []graph.ObjID{}}
	g.ForEachObject(func(obj *graph.Object) {
		o := Object{ID: renumber[obj.ID], Tag: obj.Tag, Fields: make([]Field, len(obj.Fields))}
		for j, s := range obj.Fields {
			if s.IsRef() {
				o.Fields[j] = Field{Ref: renumber[s.Ref]}
			} else {
				o.Fields[j] = Field{Imm: s.Imm}
			}
		}
		d.Objects = append(d.Objects, o)
	})
	for _, s := range g.GetRoots().Slots {
		// Immediate roots other than nil have no JSON form and are dropped.
		if s.IsRef() {
			d.Roots = append(d.Roots, renumber[s.Ref])
		} else if s.Imm == 0 {
			d.Roots = append(d.Roots, 0)
		}
	}
	return d
}

// Encode writes d as indented JSON.
func (d *Dump) Encode(w io.Writer) error {
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	if err := encoder.Encode(d); err != nil {
		return fmt.Errorf("failed to encode JSON: %w", err)
	}
	return nil
}
