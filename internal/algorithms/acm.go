// Accumulated cost matrix construction
package algorithms

import (
	"fmt"
	"math"

	"seam-carving/internal/core"
	"seam-carving/internal/parallel"
)

// FirstAccumulatedRow is the first row computed by the recurrence. Rows 0
// and 1 are copied from the energy map.
const FirstAccumulatedRow = 2

// sentinel stands in for border and out-of-range predecessors so they are
// never chosen.
var sentinel = math.Inf(1)

// ACMBuilder turns an energy map into an accumulated cost matrix where
//
//	acm[y][x] = energy[y][x] + min(acm[y-1][x-1], acm[y-1][x], acm[y-1][x+1])
//
// for interior columns of rows FirstAccumulatedRow..height-1. Border columns
// keep their energy and act as sentinels for their neighbours.
type ACMBuilder interface {
	Name() string
	// Build writes the cost matrix for energy into acm. acm must have the
	// same dimensions as energy.
	Build(energy, acm *core.Grid[float64])
}

// Band is the half-open row range [Low, High) owned by one worker.
type Band struct {
	Low  int
	High int
}

// Len returns the number of rows in the band.
func (b Band) Len() int {
	return b.High - b.Low
}

// BandRows splits the accumulated rows of a height-row matrix into count
// contiguous bands of height/count rows. The last band absorbs the remainder
// and leading bands overlapping the seeded rows are clipped, possibly to
// empty.
func BandRows(height, count int) []Band {
	count = max(count, 1)
	sep := height / count
	bands := make([]Band, count)
	for t := range count {
		low, high := t*sep, (t+1)*sep
		if t == count-1 {
			high = height
		}
		low = max(low, FirstAccumulatedRow)
		high = max(high, low)
		bands[t] = Band{Low: low, High: high}
	}
	return bands
}

// SequentialACM computes rows one after another on the caller's goroutine.
// It is the reference the parallel builders are compared against.
type SequentialACM struct{}

// Name implements ACMBuilder.
func (SequentialACM) Name() string { return "sequential" }

// Build implements ACMBuilder.
func (SequentialACM) Build(energy, acm *core.Grid[float64]) {
	seed(energy, acm, nil)
	accumulateBand(acm, Band{Low: FirstAccumulatedRow, High: acm.Height()}, nil)
}

// WavefrontACM advances one row at a time and splits each row's interior
// columns across the pool. Cell (x, y) reads (x+1, y-1), so no anti-diagonal
// is free of dependencies; the row is the widest independent front. The pool
// region join is the barrier between fronts.
type WavefrontACM struct {
	Pool *parallel.Pool
}

// Name implements ACMBuilder.
func (*WavefrontACM) Name() string { return "wavefront" }

// Build implements ACMBuilder.
func (b *WavefrontACM) Build(energy, acm *core.Grid[float64]) {
	seed(energy, acm, b.Pool)

	interior := acm.Width() - 2
	for y := FirstAccumulatedRow; y < acm.Height(); y++ {
		above, out := acm.Row(y-1), acm.Row(y)
		b.Pool.ParallelFor(interior, func(start, end int) {
			for x := start + 1; x < end+1; x++ {
				upLeft, up, upRight := predecessors(above, x)
				out[x] += min(upLeft, up, upRight)
			}
		})
	}
}

// BandedACM keeps the row-band decomposition: one contiguous band of rows
// per worker, each computed with a cached copy of the row above. A band's
// first row depends on the last row of the band above it, so every band
// waits on its predecessor's ready channel before it starts. Results are
// identical to SequentialACM; the bands run back to back rather than
// overlapping.
type BandedACM struct {
	Pool *parallel.Pool
}

// Name implements ACMBuilder.
func (*BandedACM) Name() string { return "banded" }

// Build implements ACMBuilder.
func (b *BandedACM) Build(energy, acm *core.Grid[float64]) {
	seed(energy, acm, b.Pool)

	bands := BandRows(acm.Height(), b.Pool.NumWorkers())
	ready := make([]chan struct{}, len(bands))
	for i := range ready {
		ready[i] = make(chan struct{})
	}

	b.Pool.ParallelForAtomic(len(bands), func(i int) {
		defer close(ready[i])
		if i > 0 {
			<-ready[i-1]
		}
		accumulateBand(acm, bands[i], nil)
	})
}

// seed copies energy into acm, which becomes rows 0 and 1 and the border
// columns of the result.
func seed(energy, acm *core.Grid[float64], pool *parallel.Pool) {
	acm.Resize(energy.Width())
	copyRows := func(start, end int) {
		for y := start; y < end; y++ {
			copy(acm.Row(y), energy.Row(y))
		}
	}
	if pool == nil {
		copyRows(0, energy.Height())
		return
	}
	pool.ParallelFor(energy.Height(), copyRows)
}

// accumulateBand applies the recurrence to the rows of band, reading each
// row above through a cached copy whose border cells hold the sentinel.
func accumulateBand(acm *core.Grid[float64], band Band, buf []float64) {
	w := acm.Width()
	if w < 3 || band.Len() <= 0 {
		return
	}
	if cap(buf) < w {
		buf = make([]float64, w)
	}
	buf = buf[:w]

	for y := band.Low; y < band.High; y++ {
		copy(buf, acm.Row(y-1))
		buf[0], buf[w-1] = sentinel, sentinel

		out := acm.Row(y)
		for x := 1; x < w-1; x++ {
			out[x] += min(buf[x-1], buf[x], buf[x+1])
		}
	}
}

// predecessors returns the three candidate cells above column x, with
// border columns replaced by the sentinel.
func predecessors(above []float64, x int) (upLeft, up, upRight float64) {
	w := len(above)
	upLeft, up, upRight = sentinel, above[x], sentinel
	if x-1 >= 1 {
		upLeft = above[x-1]
	}
	if x+1 <= w-2 {
		upRight = above[x+1]
	}
	return upLeft, up, upRight
}

// CheckCostMatrix reports NaN or negative cells as core.ErrInvariant.
func CheckCostMatrix(acm *core.Grid[float64]) error {
	for y := 0; y < acm.Height(); y++ {
		for x, v := range acm.Row(y) {
			if math.IsNaN(v) || v < 0 {
				return fmt.Errorf("%w: cost matrix cell (%d,%d) = %v", core.ErrInvariant, x, y, v)
			}
		}
	}
	return nil
}
