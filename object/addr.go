// ABOUTME: Heap addresses and the word store contract shared by all heap code
// ABOUTME: Defines Addr, the word size and the Memory interface

// Package object defines the layout of heap object records: the header word,
// the field slots that follow it and the forwarding marker that overlays a
// relocated record.
package object

import "fmt"

// WordSize is the size in bytes of a header word and of every field slot.
const WordSize = 8

// Addr is a byte address in the managed address space.
type Addr uint64

// Nil is the zero address. It is never inside a managed space.
const Nil Addr = 0

// Add returns the address n bytes past a.
func (a Addr) Add(n uint64) Addr {
	return a + Addr(n)
}

// Field returns the address of the i-th field slot of the object at a.
func (a Addr) Field(i int) Addr {
	return a + Addr(WordSize*(1+uint64(i)))
}

// Aligned reports whether a is word aligned.
func (a Addr) Aligned() bool {
	return a%WordSize == 0
}

func (a Addr) String() string {
	return fmt.Sprintf("%#x", uint64(a))
}

// Memory is a word-addressed store.
type Memory interface {
	// Load reads the word at a
	Load(a Addr) uint64

	// Store writes the word at a
	Store(a Addr, w uint64)
}
