// ABOUTME: Shared builders for graph tests
// ABOUTME: Keeps fixtures short: node(id, tag, fields...) and rootsOf(ids...)

package graph

import "github.com/prateek/gengc/object"

func ref(id ObjID) Slot { return Slot{Ref: id} }

func imm(v uint64) Slot { return Slot{Imm: v} }

func node(id ObjID, tag object.Tag, fields ...Slot) *Object {
	if len(fields) == 0 {
		fields = []Slot{imm(0)}
	}
	return &Object{
		ID:     id,
		Tag:    tag,
		Size:   uint64(1+len(fields)) * object.WordSize,
		Fields: fields,
	}
}

func rootsOf(ids ...ObjID) Roots {
	var r Roots
	for _, id := range ids {
		r.Slots = append(r.Slots, ref(id))
	}
	return r
}

func build(roots Roots, objs ...*Object) *MemGraph {
	g := NewMemGraph()
	for _, o := range objs {
		g.AddObject(o)
	}
	g.SetRoots(roots)
	return g
}
