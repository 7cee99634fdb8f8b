// ABOUTME: Word store backing the whole managed address space
// ABOUTME: Maps byte addresses starting at a non-zero base onto a word slice

// Package arena provides the backing store of the managed heap and the bump
// allocated regions carved out of it.
package arena

import (
	"fmt"

	"github.com/prateek/gengc/object"
)

// Memory is a contiguous, word aligned address range [base, base+size).
type Memory struct {
	base  object.Addr
	words []uint64
}

var _ object.Memory = (*Memory)(nil)

// NewMemory reserves size bytes starting at base. Both must be word aligned
// and base must be non-zero so that Nil and small integers stay unmanaged.
func NewMemory(base object.Addr, size uint64) (*Memory, error) {
	if base == object.Nil {
		return nil, fmt.Errorf("memory base must be non-zero")
	}
	if !base.Aligned() || size%object.WordSize != 0 {
		return nil, fmt.Errorf("memory [%v, +%#x) is not word aligned", base, size)
	}
	if uint64(base)+size < uint64(base) {
		return nil, fmt.Errorf("memory [%v, +%#x) overflows the address space", base, size)
	}
	return &Memory{
		base:  base,
		words: make([]uint64, size/object.WordSize),
	}, nil
}

// Base returns the first address of the memory.
func (m *Memory) Base() object.Addr { return m.base }

// End returns the first address past the memory.
func (m *Memory) End() object.Addr {
	return m.base.Add(uint64(len(m.words)) * object.WordSize)
}

// Size returns the size of the memory in bytes.
func (m *Memory) Size() uint64 {
	return uint64(len(m.words)) * object.WordSize
}

func (m *Memory) index(a object.Addr) int {
	if a < m.base || a >= m.End() || !a.Aligned() {
		panic(object.Invariantf("address %v outside memory [%v, %v) or unaligned", a, m.base, m.End()))
	}
	return int((a - m.base) / object.WordSize)
}

// Load reads the word at a.
func (m *Memory) Load(a object.Addr) uint64 {
	return m.words[m.index(a)]
}

// Store writes the word at a.
func (m *Memory) Store(a object.Addr, w uint64) {
	m.words[m.index(a)] = w
}

// Copy moves size bytes from src to dst. The ranges must not overlap.
func (m *Memory) Copy(dst, src object.Addr, size uint64) {
	if size == 0 {
		return
	}
	n := int(size / object.WordSize)
	d, s := m.index(dst), m.index(src)
	if d+n > len(m.words) || s+n > len(m.words) {
		panic(object.Invariantf("copy of %#x bytes from %v to %v leaves memory", size, src, dst))
	}
	copy(m.words[d:d+n], m.words[s:s+n])
}
