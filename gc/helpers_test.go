// ABOUTME: Shared helpers for collector tests
// ABOUTME: Quiet checked collectors, fatal recorders, heap snapshots and list builders

package gc

import (
	"io"
	"log/slog"
	"testing"

	"github.com/prateek/gengc/graph"
	"github.com/prateek/gengc/object"
)

// smallHeap gives a 1 KiB nursery and two 2 KiB semispaces.
const smallHeap = 3 * KiB

const (
	tagCons object.Tag = 11
	tagLeaf object.Tag = 2
)

type fatalRecorder struct {
	errs []error
}

func (f *fatalRecorder) record(err error) { f.errs = append(f.errs, err) }

func newCollector(t *testing.T, heapSize uint64, opts ...func(*Config)) (*Collector, *fatalRecorder) {
	t.Helper()
	fatals := &fatalRecorder{}
	cfg := Config{
		HeapSize: heapSize,
		Checked:  true,
		Logger:   slog.New(slog.NewTextHandler(io.Discard, nil)),
		Fatal:    fatals.record,
	}
	for _, opt := range opts {
		opt(&cfg)
	}
	c, err := New(cfg)
	if err != nil {
		t.Fatalf("New() error: %v", err)
	}
	return c, fatals
}

func snapshot(t *testing.T, c *Collector) *graph.MemGraph {
	t.Helper()
	g, err := graph.FromHeap(c)
	if err != nil {
		t.Fatalf("FromHeap() error: %v", err)
	}
	return g
}

func mustAlloc(t *testing.T, c *Collector, tag object.Tag, fields int) object.Addr {
	t.Helper()
	p, err := c.AllocObject(tag, fields)
	if err != nil {
		t.Fatalf("AllocObject(%v, %d) error: %v", tag, fields, err)
	}
	return p
}

func mustPush(t *testing.T, c *Collector, slot *object.Addr) {
	t.Helper()
	if err := c.PushRoot(slot); err != nil {
		t.Fatalf("PushRoot() error: %v", err)
	}
}

// buildList prepends n cons cells holding immediates 1..n onto *head, which
// must be a registered root. Each cell is 24 bytes.
func buildList(t *testing.T, c *Collector, head *object.Addr, n int) {
	t.Helper()
	for i := 1; i <= n; i++ {
		cell := mustAlloc(t, c, tagCons, 2)
		c.SetField(cell, 0, object.Addr(i))
		c.SetField(cell, 1, *head)
		*head = cell
	}
}

// listValues walks a list built by buildList.
func listValues(c *Collector, head object.Addr) []uint64 {
	var out []uint64
	for p := head; c.IsManaged(p); p = c.Field(p, 1) {
		out = append(out, uint64(c.Field(p, 0)))
	}
	return out
}

func assertIsomorphic(t *testing.T, before, after graph.Graph) {
	t.Helper()
	if err := graph.Isomorphic(before, after); err != nil {
		t.Fatalf("heap graph changed shape: %v", err)
	}
}

func liveBytes(g graph.Graph) uint64 {
	var n uint64
	g.ForEachObject(func(obj *graph.Object) { n += obj.Size })
	return n
}
