// ABOUTME: Structural comparison of two object graphs seen from their roots
// ABOUTME: Used to check that a collection preserved the reachable graph

package graph

import "fmt"

// Isomorphic checks that the parts of a and b reachable from their roots have
// the same shape: roots pair up in order, and paired objects carry the same
// tag, size and immediates, with references pairing up field by field. The
// pairing must be a bijection, so sharing and cycles must match too.
// It returns nil on success and a description of the first difference
// otherwise.
func Isomorphic(a, b Graph) error {
	ra, rb := a.GetRoots().Slots, b.GetRoots().Slots
	if len(ra) != len(rb) {
		return fmt.Errorf("root count %d != %d", len(ra), len(rb))
	}

	aToB := make(map[ObjID]ObjID)
	bToA := make(map[ObjID]ObjID)
	type pair struct{ a, b ObjID }
	var queue []pair

	match := func(where string, sa, sb Slot) error {
		if sa.IsRef() != sb.IsRef() {
			return fmt.Errorf("%s: reference/immediate mismatch (%+v vs %+v)", where, sa, sb)
		}
		if !sa.IsRef() {
			if sa.Imm != sb.Imm {
				return fmt.Errorf("%s: immediate %#x != %#x", where, sa.Imm, sb.Imm)
			}
			return nil
		}
		pa, okA := aToB[sa.Ref]
		pb, okB := bToA[sb.Ref]
		switch {
		case okA && pa != sb.Ref, okB && pb != sa.Ref:
			return fmt.Errorf("%s: %#x and %#x are not paired with each other", where, uint64(sa.Ref), uint64(sb.Ref))
		case !okA:
			aToB[sa.Ref] = sb.Ref
			bToA[sb.Ref] = sa.Ref
			queue = append(queue, pair{sa.Ref, sb.Ref})
		}
		return nil
	}

	for i := range ra {
		if err := match(fmt.Sprintf("root %d", i), ra[i], rb[i]); err != nil {
			return err
		}
	}

	for len(queue) > 0 {
		p := queue[0]
		queue = queue[1:]
		oa, ob := a.GetObject(p.a), b.GetObject(p.b)
		if oa == nil || ob == nil {
			return fmt.Errorf("object %#x/%#x missing from graph", uint64(p.a), uint64(p.b))
		}
		if oa.Tag != ob.Tag || oa.Size != ob.Size || len(oa.Fields) != len(ob.Fields) {
			return fmt.Errorf("object %#x (%v, %d bytes) differs from %#x (%v, %d bytes)",
				uint64(p.a), oa.Tag, oa.Size, uint64(p.b), ob.Tag, ob.Size)
		}
		for i := range oa.Fields {
			where := fmt.Sprintf("object %#x field %d", uint64(p.a), i)
			if err := match(where, oa.Fields[i], ob.Fields[i]); err != nil {
				return err
			}
		}
	}

	return nil
}
