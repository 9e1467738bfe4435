// Seam selection and backtracking over an accumulated cost matrix
package algorithms

import (
	"fmt"

	"gonum.org/v1/gonum/floats"

	"seam-carving/internal/core"
)

// Tracer picks a seam from an accumulated cost matrix.
type Tracer interface {
	Name() string
	// Trace writes one column per row into seam, which must have length
	// acm.Height(), and returns it.
	Trace(acm *core.Grid[float64], seam Seam) (Seam, error)
}

// scanRow is the row the start column is chosen on. The first and last rows
// are pinned borders with the same energy in every column; scanning the last
// one would only smear the minimum of the row above onto its neighbours and
// break ties towards a diagonal exit. Pinned rows inherit their neighbour's
// column instead.
func scanRow(height int) int {
	if height >= 3 {
		return height - 2
	}
	return height - 1
}

// ExactTracer starts at the cheapest interior cell of the scan row, lowest
// column first on ties, and follows the cheapest predecessor upward.
type ExactTracer struct{}

// Name implements Tracer.
func (ExactTracer) Name() string { return "exact" }

// Trace implements Tracer.
func (ExactTracer) Trace(acm *core.Grid[float64], seam Seam) (Seam, error) {
	if err := checkTraceable(acm, seam); err != nil {
		return nil, err
	}
	row := acm.Row(scanRow(acm.Height()))
	start := floats.MinIdx(row[1:acm.Width()-1]) + 1
	backtrack(acm, start, seam)
	return seam, nil
}

// BandAveragedTracer approximates the start column by averaging, per column,
// the cost at each band's boundary row instead of using the scan row alone.
// It does not guarantee the cheapest seam. With a single band it reduces to
// ExactTracer.
type BandAveragedTracer struct {
	Bands int

	sums []float64
}

// Name implements Tracer.
func (*BandAveragedTracer) Name() string { return "band_averaged" }

// Trace implements Tracer.
func (t *BandAveragedTracer) Trace(acm *core.Grid[float64], seam Seam) (Seam, error) {
	if err := checkTraceable(acm, seam); err != nil {
		return nil, err
	}

	last := scanRow(acm.Height())
	interior := acm.Width() - 2
	if cap(t.sums) < interior {
		t.sums = make([]float64, interior)
	}
	sums := t.sums[:interior]
	clear(sums)

	bands := BandRows(acm.Height(), t.Bands)
	for i, band := range bands {
		boundary := band.High - 1
		if i == len(bands)-1 || boundary > last {
			boundary = last
		}
		floats.Add(sums, acm.Row(boundary)[1:acm.Width()-1])
	}
	floats.Scale(1/float64(len(bands)), sums)

	backtrack(acm, floats.MinIdx(sums)+1, seam)
	return seam, nil
}

func checkTraceable(acm *core.Grid[float64], seam Seam) error {
	if acm.Width() < 3 {
		return fmt.Errorf("%w: cannot trace a seam through width %d", core.ErrInvariant, acm.Width())
	}
	if len(seam) != acm.Height() {
		return fmt.Errorf("%w: seam buffer has %d rows, matrix has %d", core.ErrInvariant, len(seam), acm.Height())
	}
	return nil
}

// backtrack fills seam from the scan row upward. Each step prefers the
// upper-left predecessor, then the upper-right, then straight up. Rows 0 and
// 1 are seeded, not accumulated, so row 0 has no predecessor link and copies
// row 1; the bottom border row copies the scan row.
func backtrack(acm *core.Grid[float64], start int, seam Seam) {
	h := acm.Height()
	last := scanRow(h)

	col := start
	seam[last] = col
	for y := last; y >= FirstAccumulatedRow; y-- {
		upLeft, up, upRight := predecessors(acm.Row(y-1), col)
		smallest := min(upLeft, up, upRight)
		switch smallest {
		case upLeft:
			col--
		case upRight:
			col++
		}
		seam[y-1] = col
	}

	if last >= 1 {
		seam[0] = seam[1]
	}
	for y := last + 1; y < h; y++ {
		seam[y] = seam[last]
	}
}
