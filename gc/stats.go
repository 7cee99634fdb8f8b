// ABOUTME: Allocation and collection statistics
// ABOUTME: Passive counters; nothing here influences collection

package gc

import (
	"fmt"
	"io"
)

// Stats are cumulative counters since the collector was created.
type Stats struct {
	AllocatedObjects uint64
	AllocatedBytes   uint64

	PromotedObjects uint64
	PromotedBytes   uint64
	CopiedObjects   uint64 // by major collections
	CopiedBytes     uint64

	MinorCollections uint64
	MajorCollections uint64

	MaxRoots         int
	MaxGen0Residency uint64
	MaxGen1Residency uint64
	MaxResidency     uint64
}

// Collections returns the total number of collection cycles.
func (s Stats) Collections() uint64 {
	return s.MinorCollections + s.MajorCollections
}

func (s *Stats) recordRoots(depth int) {
	if depth > s.MaxRoots {
		s.MaxRoots = depth
	}
}

func (s *Stats) recordResidency(gen0, gen1 uint64) {
	s.MaxGen0Residency = max(s.MaxGen0Residency, gen0)
	s.MaxGen1Residency = max(s.MaxGen1Residency, gen1)
	s.MaxResidency = max(s.MaxResidency, gen0+gen1)
}

// Stats returns a snapshot of the counters.
func (c *Collector) Stats() Stats {
	return c.stats
}

// WriteStats prints the counters in a human readable report.
func (c *Collector) WriteStats(w io.Writer) error {
	s := c.stats
	_, err := fmt.Fprintf(w, `Heap size:                       %d bytes
    Gen0 space size:             %d bytes
    Gen1 space size:             %d bytes
Total memory allocation:         %d bytes (%d objects)
Maximum residency:               %d bytes
    Gen0:                        %d bytes
    Gen1:                        %d bytes
Total number of GC cycles:       %d times
    Gen0 cycles:                 %d times
    Gen1 cycles:                 %d times
Promoted:                        %d bytes (%d objects)
Copied by Gen1 cycles:           %d bytes (%d objects)
Maximum number of roots:         %d
`,
		c.cfg.HeapSize, c.gen0.Size(), c.from.Size(),
		s.AllocatedBytes, s.AllocatedObjects,
		s.MaxResidency, s.MaxGen0Residency, s.MaxGen1Residency,
		s.Collections(), s.MinorCollections, s.MajorCollections,
		s.PromotedBytes, s.PromotedObjects,
		s.CopiedBytes, s.CopiedObjects,
		s.MaxRoots)
	return err
}
