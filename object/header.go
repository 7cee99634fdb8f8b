// ABOUTME: Header word codec for heap object records
// ABOUTME: Packs a tag and a field count into one word and computes footprints

package object

import "fmt"

// Header bit layout.
const (
	TagBits        = 4
	FieldCountBits = 28

	TagMask       = 1<<TagBits - 1
	MaxFieldCount = 1<<FieldCountBits - 1
)

// TagForward marks a record that has been relocated.
const TagForward Tag = TagMask

// Tag identifies the runtime shape of an object. The collector treats every
// value except TagForward as opaque.
type Tag uint8

func (t Tag) String() string {
	if t == TagForward {
		return "FWD"
	}
	return fmt.Sprintf("tag(%d)", uint8(t))
}

// Header is the first word of every object record.
type Header uint64

// MakeHeader encodes tag and fieldCount into a header word.
// It panics if either value does not fit its bits.
func MakeHeader(tag Tag, fieldCount int) Header {
	if uint64(tag) > TagMask {
		panic(invariantf("tag %d does not fit in %d bits", tag, TagBits))
	}
	if fieldCount < 0 || fieldCount > MaxFieldCount {
		panic(invariantf("field count %d does not fit in %d bits", fieldCount, FieldCountBits))
	}
	h := Header(uint64(tag) | uint64(fieldCount)<<TagBits)
	if h.Tag() != tag || h.FieldCount() != fieldCount {
		panic(invariantf("header %#x does not round-trip (%v, %d)", uint64(h), tag, fieldCount))
	}
	return h
}

// TagOf returns the tag stored in h.
func TagOf(h Header) Tag {
	return Tag(h & TagMask)
}

// FieldCountOf returns the number of field slots described by h.
func FieldCountOf(h Header) int {
	return int(uint64(h)>>TagBits) & MaxFieldCount
}

// Footprint is the total size in bytes of an object with header h.
func Footprint(h Header) uint64 {
	return uint64(1+FieldCountOf(h)) * WordSize
}

// Tag returns the tag stored in h.
func (h Header) Tag() Tag { return TagOf(h) }

// FieldCount returns the number of field slots described by h.
func (h Header) FieldCount() int { return FieldCountOf(h) }

// Footprint is the total size in bytes of an object with header h.
func (h Header) Footprint() uint64 { return Footprint(h) }

// WithTag returns h with its tag replaced and its field count kept.
func (h Header) WithTag(tag Tag) Header {
	return Header(uint64(h)&^TagMask | uint64(tag)&TagMask)
}

// LoadHeader reads the header of the object at obj.
func LoadHeader(mem Memory, obj Addr) Header {
	return Header(mem.Load(obj))
}
