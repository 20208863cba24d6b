package arena

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/mat"
)

func TestReserveHysteresis(t *testing.T) {
	var a Arena

	require.True(t, a.Reserve(1000))
	assert.Equal(t, 1000, a.Capacity())
	assert.Equal(t, 1, a.Allocations())

	// Anything in [100, 1000] keeps the block.
	for _, n := range []int{1000, 999, 500, 100} {
		assert.False(t, a.Reserve(n), "reserve %d", n)
	}
	assert.Equal(t, 1, a.Allocations())
	assert.Equal(t, 1000, a.Capacity())

	// Growing reallocates exactly once.
	assert.True(t, a.Reserve(1001))
	assert.False(t, a.Reserve(1001))
	assert.Equal(t, 2, a.Allocations())

	// Far below a tenth shrinks.
	assert.True(t, a.Reserve(99))
	assert.Equal(t, 99, a.Capacity())
	assert.Equal(t, 3, a.Allocations())
}

func TestRelease(t *testing.T) {
	var a Arena
	a.Reserve(50)
	a.Release()
	assert.Zero(t, a.Capacity())
	assert.Equal(t, 1, a.Allocations())

	// Any non-empty request allocates again.
	assert.True(t, a.NeedsRealloc(1))
	assert.True(t, a.Reserve(50))
	assert.Equal(t, 2, a.Allocations())
}

func TestViewsTileTheBlock(t *testing.T) {
	var a Arena
	sizes := []int{3, 2, 4}
	batch := 5
	a.Reserve(batch * 9)

	views := make([]*mat.Dense, len(sizes))
	a.Views(sizes, batch, views)

	for i, v := range views {
		r, c := v.Dims()
		assert.Equal(t, batch, r)
		assert.Equal(t, sizes[i], c)
	}

	// Writes through a view land in the shared block at the expected offset.
	views[1].Set(0, 0, 42)
	assert.Equal(t, 42.0, a.buf[batch*3])

	// Views are disjoint.
	for i := range views {
		views[i].Apply(func(_, _ int, _ float64) float64 { return float64(i + 1) }, views[i])
	}
	for i, v := range views {
		r, c := v.Dims()
		for j := 0; j < r; j++ {
			for k := 0; k < c; k++ {
				require.Equal(t, float64(i+1), v.At(j, k))
			}
		}
	}
}

func TestViewsReAliasInPlace(t *testing.T) {
	var a Arena
	a.Reserve(6)
	views := make([]*mat.Dense, 2)
	a.Views([]int{1, 2}, 2, views)
	held := views[1]

	a.Reserve(600)
	a.Views([]int{1, 2}, 200, views)

	assert.Same(t, held, views[1])
	r, c := held.Dims()
	assert.Equal(t, 200, r)
	assert.Equal(t, 2, c)
}

func TestViewsOutOfBoundsPanics(t *testing.T) {
	var a Arena
	a.Reserve(4)
	views := make([]*mat.Dense, 2)
	assert.Panics(t, func() { a.Views([]int{2, 2}, 2, views) })
}

func TestSlices(t *testing.T) {
	buf := []float64{1, 2, 3, 4, 5}
	parts := Slices(buf, []int{2, 0, 3})
	require.Len(t, parts, 3)
	assert.Equal(t, []float64{1, 2}, parts[0])
	assert.Empty(t, parts[1])
	assert.Equal(t, []float64{3, 4, 5}, parts[2])

	parts[2][0] = 30
	assert.Equal(t, 30.0, buf[2])

	assert.Panics(t, func() { Slices(buf, []int{2, 2}) })
	assert.Panics(t, func() { Slices(buf, []int{4, 2}) })
}
