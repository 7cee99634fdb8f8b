// ABOUTME: Tests for the header codec
// ABOUTME: Round trips, bit limits, footprints and fuzzing of the encode/decode pair

package object

import (
	"errors"
	"testing"
)

func TestMakeHeader(t *testing.T) {
	tests := []struct {
		name          string
		tag           Tag
		fields        int
		wantFootprint uint64
	}{
		{name: "one field", tag: 1, fields: 1, wantFootprint: 16},
		{name: "zero fields", tag: 0, fields: 0, wantFootprint: 8},
		{name: "tuple", tag: 7, fields: 3, wantFootprint: 32},
		{name: "largest tag", tag: TagForward, fields: 2, wantFootprint: 24},
		{name: "largest field count", tag: 3, fields: MaxFieldCount, wantFootprint: (1 + MaxFieldCount) * WordSize},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := MakeHeader(tt.tag, tt.fields)
			if got := TagOf(h); got != tt.tag {
				t.Errorf("TagOf() = %v, want %v", got, tt.tag)
			}
			if got := FieldCountOf(h); got != tt.fields {
				t.Errorf("FieldCountOf() = %d, want %d", got, tt.fields)
			}
			if got := Footprint(h); got != tt.wantFootprint {
				t.Errorf("Footprint() = %d, want %d", got, tt.wantFootprint)
			}
			if uint64(h)>>32 != 0 {
				t.Errorf("header %#x uses the upper half word", uint64(h))
			}
		})
	}
}

func TestMakeHeaderPanicsOnOverflow(t *testing.T) {
	tests := []struct {
		name   string
		tag    Tag
		fields int
	}{
		{name: "tag too wide", tag: TagMask + 1, fields: 1},
		{name: "too many fields", tag: 1, fields: MaxFieldCount + 1},
		{name: "negative fields", tag: 1, fields: -1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			defer func() {
				r := recover()
				err, ok := r.(error)
				var inv *InvariantError
				if !ok || !errors.As(err, &inv) {
					t.Errorf("Expected InvariantError panic, got %v", r)
				}
			}()
			MakeHeader(tt.tag, tt.fields)
		})
	}
}

func TestWithTagKeepsFieldCount(t *testing.T) {
	h := MakeHeader(3, 5).WithTag(TagForward)
	if h.Tag() != TagForward || h.FieldCount() != 5 {
		t.Errorf("WithTag() = (%v, %d), want (FWD, 5)", h.Tag(), h.FieldCount())
	}
}

func TestAddrHelpers(t *testing.T) {
	a := Addr(0x1000)
	if got := a.Field(0); got != 0x1008 {
		t.Errorf("Field(0) = %v, want 0x1008", got)
	}
	if got := a.Field(2); got != 0x1018 {
		t.Errorf("Field(2) = %v, want 0x1018", got)
	}
	if !a.Aligned() || Addr(0x1004).Aligned() {
		t.Error("Aligned() misreports alignment")
	}
	if got := a.String(); got != "0x1000" {
		t.Errorf("String() = %q, want 0x1000", got)
	}
}

func FuzzHeaderRoundTrip(f *testing.F) {
	f.Add(uint8(0), uint32(1))
	f.Add(uint8(14), uint32(MaxFieldCount))
	f.Add(uint8(15), uint32(0))

	f.Fuzz(func(t *testing.T, tag uint8, fields uint32) {
		tag &= TagMask
		fields &= MaxFieldCount
		h := MakeHeader(Tag(tag), int(fields))
		if h.Tag() != Tag(tag) || h.FieldCount() != int(fields) {
			t.Fatalf("(%d, %d) round-tripped to (%d, %d)", tag, fields, h.Tag(), h.FieldCount())
		}
		if h.Footprint() != uint64(fields+1)*WordSize {
			t.Fatalf("footprint %d for %d fields", h.Footprint(), fields)
		}
	})
}
