// ABOUTME: Forwarding markers written over relocated objects
// ABOUTME: A marker keeps the field count, sets TagForward and stores the destination in field 0

package object

// AsForward returns the destination recorded at obj and true if obj carries a
// forwarding marker.
func AsForward(mem Memory, obj Addr) (Addr, bool) {
	h := LoadHeader(mem, obj)
	if h.Tag() != TagForward {
		return Nil, false
	}
	if h.FieldCount() < 1 {
		panic(invariantf("forwarding marker at %v has no field slot", obj))
	}
	return Addr(mem.Load(obj.Field(0))), true
}

// IsForward reports whether obj carries a forwarding marker.
func IsForward(mem Memory, obj Addr) bool {
	_, ok := AsForward(mem, obj)
	return ok
}

// SetForward overwrites the record at obj with a marker pointing at dest.
// The record must have at least one field slot.
func SetForward(mem Memory, obj, dest Addr) {
	h := LoadHeader(mem, obj)
	if h.FieldCount() < 1 {
		panic(invariantf("cannot forward %v: object has no field slot", obj))
	}
	mem.Store(obj, uint64(h.WithTag(TagForward)))
	mem.Store(obj.Field(0), uint64(dest))

	if got, ok := AsForward(mem, obj); !ok || got != dest {
		panic(invariantf("forwarding marker at %v reads back %v, want %v", obj, got, dest))
	}
}
