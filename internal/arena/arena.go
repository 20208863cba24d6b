// Package arena provides a contiguous float64 buffer that is handed out as
// non-overlapping matrix views.
//
// An Arena is resized with hysteresis: it grows whenever a request exceeds its
// capacity and shrinks only when a request needs less than a tenth of it, so a
// training loop with a fixed or near-fixed batch size allocates once.
package arena

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/mat"
)

// ShrinkFraction is the fraction of capacity below which a request causes
// the arena to be reallocated smaller.
const ShrinkFraction = 0.1

// Arena is one contiguous block of memory subdivided into views.
type Arena struct {
	buf         []float64
	allocations int
}

// Capacity returns the number of elements in the current block.
func (a *Arena) Capacity() int {
	return len(a.buf)
}

// Allocations returns how many times the block has been (re)allocated.
func (a *Arena) Allocations() int {
	return a.allocations
}

// NeedsRealloc reports whether a request for n elements falls outside the
// hysteresis band around the current capacity.
func (a *Arena) NeedsRealloc(n int) bool {
	return n > len(a.buf) || n < int(math.Floor(ShrinkFraction*float64(len(a.buf))))
}

// Reserve makes sure the arena can hold n elements, replacing the block if n
// is outside the hysteresis band. It reports whether a new block was made.
// Existing contents are not preserved across a reallocation.
func (a *Arena) Reserve(n int) bool {
	if !a.NeedsRealloc(n) {
		return false
	}
	a.buf = make([]float64, n)
	a.allocations++
	return true
}

// Release drops the block. The allocation counter is kept.
func (a *Arena) Release() {
	a.buf = nil
}

// Views re-slices the arena into one batch×size view per entry of sizes, at
// successive offsets in order. Each views[i] is overwritten in place so that
// pointers held elsewhere observe the new alias. A zero-sized entry yields an
// empty matrix.
//
// Views panics if the requested views do not fit in the arena.
func (a *Arena) Views(sizes []int, batch int, views []*mat.Dense) {
	if len(sizes) != len(views) {
		panic(fmt.Sprintf("arena: %d sizes for %d views", len(sizes), len(views)))
	}
	start := 0
	for i, size := range sizes {
		n := size * batch
		if start+n > len(a.buf) {
			panic(fmt.Sprintf("arena: creating alias outside bounds: view %d needs [%d, %d) of %d elements",
				i, start, start+n, len(a.buf)))
		}
		if views[i] == nil {
			views[i] = &mat.Dense{}
		}
		if n == 0 {
			*views[i] = mat.Dense{}
			continue
		}
		*views[i] = *mat.NewDense(batch, size, a.buf[start:start+n:start+n])
		start += n
	}
}

// Slices cuts buf into consecutive sub-slices of the given lengths without
// copying. It panics unless the lengths tile buf exactly.
func Slices(buf []float64, sizes []int) [][]float64 {
	out := make([][]float64, len(sizes))
	start := 0
	for i, size := range sizes {
		if start+size > len(buf) {
			panic(fmt.Sprintf("arena: slice %d needs [%d, %d) of %d elements",
				i, start, start+size, len(buf)))
		}
		out[i] = buf[start : start+size : start+size]
		start += size
	}
	if start != len(buf) {
		panic(fmt.Sprintf("arena: slices cover %d of %d elements", start, len(buf)))
	}
	return out
}
