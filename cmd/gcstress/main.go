// ABOUTME: Stress driver for the collector: runs allocation-heavy workloads and prints statistics
// ABOUTME: Configuration comes from GENGC_* environment variables; fatal collector errors exit with status 1

// Gcstress allocates lists or binary trees through the collector's
// process-facing entry points, verifies what it built, and prints the
// collector statistics.
//
// Usage:
//
//	gcstress [-workload list|tree] [-n iterations] [-size n] [-dump fixture.json] [-out heap.json] [-v] [-why addr]
package main

import (
	"flag"
	"fmt"
	"io"
	"os"
	"strconv"
	"time"

	"github.com/prateek/gengc"
	"github.com/prateek/gengc/gc"
	"github.com/prateek/gengc/graph"
	"github.com/prateek/gengc/heapdump"
	"github.com/prateek/gengc/object"
)

const (
	tagCons object.Tag = 1
	tagNode object.Tag = 2
	tagLeaf object.Tag = 3
)

// fatal carries an unrecoverable collector error out of the workload.
type fatal struct{ err error }

func main() {
	os.Exit(run(os.Args[1:], os.Getenv, os.Stdout, os.Stderr))
}

func run(args []string, getenv func(string) string, stdout, stderr io.Writer) (code int) {
	fs := flag.NewFlagSet("gcstress", flag.ContinueOnError)
	fs.SetOutput(stderr)
	kind := fs.String("workload", "list", "workload to run: list or tree")
	n := fs.Int("n", 10000, "number of iterations")
	size := fs.Int("size", 100, "list window length or tree depth")
	dumpPath := fs.String("dump", "", "load this JSON heap fixture and keep it alive during the workload")
	outPath := fs.String("out", "", "write the reachable heap as JSON to this file when done")
	verbose := fs.Bool("v", false, "print space and root tables")
	why := fs.String("why", "", "print paths from the object at this address to the roots")
	fs.Usage = func() {
		fmt.Fprintf(stderr, "gcstress %s\n\nusage: gcstress [flags]\n\n", gengc.Version)
		fs.PrintDefaults()
	}
	if err := fs.Parse(args); err != nil {
		return 2
	}
	if *size < 1 || *n < 0 {
		fmt.Fprintln(stderr, "gcstress: -size must be positive and -n non-negative")
		return 2
	}
	if *kind != "list" && *kind != "tree" {
		fmt.Fprintf(stderr, "gcstress: unknown workload %q\n", *kind)
		return 2
	}

	cfg, err := gc.ConfigFromEnv(getenv)
	if err != nil {
		fmt.Fprintf(stderr, "gcstress: %v\n", err)
		return 2
	}
	cfg.Fatal = func(err error) { panic(fatal{err}) }

	defer func() {
		if r := recover(); r != nil {
			f, ok := r.(fatal)
			if !ok {
				panic(r)
			}
			fmt.Fprintf(stderr, "gcstress: %v\n", f.err)
			code = 1
		}
	}()

	c, err := gc.New(cfg)
	if err != nil {
		fmt.Fprintf(stderr, "gcstress: %v\n", err)
		return 2
	}

	var fixture *heapdump.Dump
	var loaded *heapdump.Loaded
	if *dumpPath != "" {
		fixture, loaded, err = loadFixture(c, *dumpPath)
		if err != nil {
			fmt.Fprintf(stderr, "gcstress: %v\n", err)
			return 1
		}
	}

	w := &workload{c: c}
	start := time.Now()
	if *kind == "list" {
		err = w.list(*n, *size)
	} else {
		err = w.trees(*n, *size)
	}
	if err != nil {
		fmt.Fprintf(stderr, "gcstress: %v\n", err)
		return 1
	}
	cfg.Logger.Info("workload finished", "workload", *kind, "iterations", *n, "elapsed", time.Since(start))

	live, err := graph.FromHeap(c)
	if err != nil {
		fmt.Fprintf(stderr, "gcstress: %v\n", err)
		return 1
	}
	if fixture != nil {
		if err := graph.Isomorphic(fixture.Graph(), live); err != nil {
			fmt.Fprintf(stderr, "gcstress: fixture %s did not survive: %v\n", *dumpPath, err)
			return 1
		}
	}

	var liveBytes uint64
	live.ForEachObject(func(obj *graph.Object) { liveBytes += obj.Size })
	fmt.Fprintf(stdout, "Live after workload:             %d bytes (%d objects)\n", liveBytes, len(graph.Reachable(live)))
	if err := c.WriteStats(stdout); err != nil {
		fmt.Fprintf(stderr, "gcstress: %v\n", err)
		return 1
	}
	if *verbose {
		fmt.Fprintln(stdout)
		c.WriteState(stdout)
		fmt.Fprintln(stdout)
		c.WriteRoots(stdout)
	}
	if *why != "" {
		if err := printPaths(stdout, live, *why); err != nil {
			fmt.Fprintf(stderr, "gcstress: %v\n", err)
			return 1
		}
	}
	if *outPath != "" {
		if err := writeDump(*outPath, live); err != nil {
			fmt.Fprintf(stderr, "gcstress: %v\n", err)
			return 1
		}
	}

	if loaded != nil {
		if err := loaded.Release(); err != nil {
			fmt.Fprintf(stderr, "gcstress: %v\n", err)
			return 1
		}
	}
	return 0
}

func loadFixture(c *gc.Collector, path string) (*heapdump.Dump, *heapdump.Loaded, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, nil, err
	}
	defer f.Close()

	d, err := heapdump.Decode(f)
	if err != nil {
		return nil, nil, fmt.Errorf("%s: %w", path, err)
	}
	l, err := d.Load(c)
	if err != nil {
		return nil, nil, fmt.Errorf("loading %s: %w", path, err)
	}
	return d, l, nil
}

func writeDump(path string, g graph.Graph) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := heapdump.FromGraph(g).Encode(f); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

func printPaths(w io.Writer, g graph.Graph, addr string) error {
	a, err := strconv.ParseUint(addr, 0, 64)
	if err != nil {
		return fmt.Errorf("-why %q: %w", addr, err)
	}
	paths := graph.PathsToRoots(g, graph.ObjID(a), 3)
	if len(paths) == 0 {
		fmt.Fprintf(w, "%#x is not reachable\n", a)
		return nil
	}
	for i, p := range paths {
		fmt.Fprintf(w, "path %d:", i+1)
		for _, id := range p.IDs {
			fmt.Fprintf(w, " %#x", uint64(id))
		}
		fmt.Fprintln(w)
	}
	return nil
}

// workload drives the collector the way compiled code would: raw
// allocation, header initialisation, and explicit root push/pop around every
// reference held across an allocation.
type workload struct {
	c *gc.Collector
}

func (w *workload) alloc(tag object.Tag, fields int) object.Addr {
	h := object.MakeHeader(tag, fields)
	p := w.c.MustAllocate(h.Footprint())
	w.c.SetHeader(p, h)
	for i := 0; i < fields; i++ {
		w.c.SetField(p, i, object.Nil)
	}
	return p
}

// list builds lists of window cells holding 1..n, checks each one and then
// drops it.
func (w *workload) list(n, window int) error {
	var head object.Addr
	w.c.MustPushRoot(&head)

	length := 0
	for i := 1; i <= n; i++ {
		cell := w.alloc(tagCons, 2)
		w.c.SetField(cell, 0, object.Addr(i))
		w.c.SetField(cell, 1, head)
		head = cell
		length++

		if length == window || i == n {
			var sum, want uint64
			for k := i - length + 1; k <= i; k++ {
				want += uint64(k)
			}
			for p := head; p != object.Nil; p = w.c.Field(p, 1) {
				sum += uint64(w.c.Field(p, 0))
			}
			if sum != want {
				return fmt.Errorf("list ending at %d: sum %d, want %d", i, sum, want)
			}
			head, length = object.Nil, 0
		}
	}
	w.c.MustPopRoot(&head)
	return nil
}

// trees keeps one tree of the given depth alive while building and checking
// n short-lived trees of the same depth.
func (w *workload) trees(n, depth int) error {
	want := 1<<(depth+1) - 1

	longLived := w.tree(depth)
	w.c.MustPushRoot(&longLived)

	for i := 0; i < n; i++ {
		t := w.tree(depth)
		if got := w.count(t); got != want {
			return fmt.Errorf("tree %d has %d nodes, want %d", i, got, want)
		}
	}
	if got := w.count(longLived); got != want {
		return fmt.Errorf("long-lived tree has %d nodes, want %d", got, want)
	}
	w.c.MustPopRoot(&longLived)
	return nil
}

func (w *workload) tree(depth int) object.Addr {
	if depth == 0 {
		return w.alloc(tagLeaf, 2)
	}
	left := w.tree(depth - 1)
	w.c.MustPushRoot(&left)
	right := w.tree(depth - 1)
	w.c.MustPushRoot(&right)

	node := w.alloc(tagNode, 2)
	w.c.SetField(node, 0, left)
	w.c.SetField(node, 1, right)

	w.c.MustPopRoot(&right)
	w.c.MustPopRoot(&left)
	return node
}

func (w *workload) count(t object.Addr) int {
	n := 0
	stack := []object.Addr{t}
	for len(stack) > 0 {
		p := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if p == object.Nil {
			continue
		}
		n++
		stack = append(stack, w.c.Field(p, 0), w.c.Field(p, 1))
	}
	return n
}
