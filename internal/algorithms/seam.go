package algorithms

import (
	"fmt"

	"seam-carving/internal/core"
)

// Seam holds one column index per row, top to bottom.
type Seam []int

// Validate checks that the seam covers height rows and stays inside
// [0, width). It reports a violation as core.ErrInvariant.
func (s Seam) Validate(width, height int) error {
	if len(s) != height {
		return fmt.Errorf("%w: seam has %d rows, image has %d", core.ErrInvariant, len(s), height)
	}
	for y, x := range s {
		if x < 0 || x >= width {
			return fmt.Errorf("%w: seam column %d at row %d outside [0,%d)", core.ErrInvariant, x, y, width)
		}
	}
	return nil
}

// Connected reports whether adjacent rows differ by at most one column.
func (s Seam) Connected() bool {
	for y := 1; y < len(s); y++ {
		if d := s[y] - s[y-1]; d < -1 || d > 1 {
			return false
		}
	}
	return true
}

// Clone returns a copy of s.
func (s Seam) Clone() Seam {
	return append(Seam(nil), s...)
}
