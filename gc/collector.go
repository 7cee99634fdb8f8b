// ABOUTME: Collector state: the heap memory, its three spaces and the root stack
// ABOUTME: Also holds the address-range test that decides what counts as a pointer

// Package gc implements a generational copying garbage collector over a
// simulated word-addressed heap.
//
// Generation 0 is a single bump-allocated nursery. A minor collection
// promotes every reachable nursery object into generation 1 and empties the
// nursery. Generation 1 is a pair of semispaces collected with Cheney's
// algorithm. There is no write barrier: before every collection the other
// generation is scanned in full for slots that point into the generation
// being collected.
//
// Pointers are identified structurally. A word is a reference only if its
// value falls inside one of the tracked spaces; every other value is left
// alone. A Collector is not safe for concurrent use.
package gc

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/prateek/gengc/arena"
	"github.com/prateek/gengc/object"
)

// Collector owns the managed heap.
type Collector struct {
	cfg   Config
	log   *slog.Logger
	debug bool

	mem  *arena.Memory
	gen0 *arena.Arena
	from *arena.Arena
	to   *arena.Arena

	roots []*object.Addr

	// scratch slot lists, one per generation so that a major collection
	// nested in a minor one does not clobber the minor's list
	gen1ToGen0 []object.Addr
	gen0ToGen1 []object.Addr

	// minorScan is the Cheney cursor of a minor collection over the
	// promoted region of generation 1
	minorScan object.Addr

	// epoch counts major collections; a minor collection uses it to notice
	// that generation 1 moved underneath it
	epoch uint64

	stats Stats
}

// New allocates the heap described by cfg.
func New(cfg Config) (*Collector, error) {
	cfg = cfg.withDefaults()
	if err := cfg.validate(); err != nil {
		return nil, err
	}

	gen0Size, semiSize := cfg.Gen0Size(), cfg.SemispaceSize()
	mem, err := arena.NewMemory(cfg.HeapBase, gen0Size+2*semiSize)
	if err != nil {
		return nil, fmt.Errorf("reserving heap: %w", err)
	}

	base := mem.Base()
	gen0, err := arena.New(Gen0.String(), mem, base, gen0Size)
	if err != nil {
		return nil, err
	}
	from, err := arena.New("SEMISPACE-A", mem, base.Add(gen0Size), semiSize)
	if err != nil {
		return nil, err
	}
	to, err := arena.New("SEMISPACE-B", mem, base.Add(gen0Size+semiSize), semiSize)
	if err != nil {
		return nil, err
	}

	c := &Collector{
		cfg:   cfg,
		log:   cfg.Logger,
		debug: cfg.Logger.Enabled(context.Background(), slog.LevelDebug),
		mem:   mem,
		gen0:  gen0,
		from:  from,
		to:    to,
		roots: make([]*object.Addr, 0, 64),
	}
	c.log.Debug("heap initialized",
		"gen0", gen0, "fromspace", from, "tospace", to, "max_roots", cfg.MaxRoots)
	return c, nil
}

// Config returns the effective configuration.
func (c *Collector) Config() Config { return c.cfg }

// Memory exposes the backing word store for read-only inspection.
func (c *Collector) Memory() object.Memory { return c.mem }

// IsManaged reports whether a lies inside any tracked space.
func (c *Collector) IsManaged(a object.Addr) bool {
	return c.gen0.Contains(a) || c.from.Contains(a) || c.to.Contains(a)
}

// InGen0 reports whether a lies in the nursery.
func (c *Collector) InGen0(a object.Addr) bool { return c.gen0.Contains(a) }

// InGen1 reports whether a lies in the active generation 1 semispace.
func (c *Collector) InGen1(a object.Addr) bool { return c.from.Contains(a) }

// Header returns the header of obj.
func (c *Collector) Header(obj object.Addr) object.Header {
	return object.LoadHeader(c.mem, obj)
}

// Field returns the i-th field of obj.
func (c *Collector) Field(obj object.Addr, i int) object.Addr {
	c.checkField(obj, i)
	return object.Addr(c.mem.Load(obj.Field(i)))
}

// SetField stores v in the i-th field of obj. No barrier work is done.
func (c *Collector) SetField(obj object.Addr, i int, v object.Addr) {
	c.checkField(obj, i)
	c.mem.Store(obj.Field(i), uint64(v))
}

// SetHeader writes the header of an object returned by Allocate.
func (c *Collector) SetHeader(obj object.Addr, h object.Header) {
	c.mem.Store(obj, uint64(h))
}

func (c *Collector) checkField(obj object.Addr, i int) {
	if n := c.Header(obj).FieldCount(); i < 0 || i >= n {
		panic(fmt.Sprintf("gc: field %d out of range for object %v with %d fields", i, obj, n))
	}
}

// ReadBarrier is called by generated code before reading a field.
// The collector needs no read barrier.
func (c *Collector) ReadBarrier(obj object.Addr, i int) {}

// WriteBarrier is called by generated code before storing v into a field.
// Cross-generation references are rediscovered by scanning instead.
func (c *Collector) WriteBarrier(obj object.Addr, i int, v object.Addr) {}
