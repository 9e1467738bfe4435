// Gradient energy: per-pixel importance from local colour differences
package algorithms

import (
	"fmt"

	"seam-carving/internal/core"
	"seam-carving/internal/parallel"
)

// GradientMode selects which neighbours contribute to a pixel's energy.
type GradientMode int

const (
	// GradientHorizontal sums |right - left| over the three channels.
	GradientHorizontal GradientMode = iota
	// GradientFull adds |down - up| to the horizontal term.
	GradientFull
)

const (
	// BorderEnergy is pinned on the first and last row and column.
	BorderEnergy = 1.0

	// RefreshRadius is the half-width of the column band recomputed around a
	// removed seam.
	RefreshRadius = 2

	horizontalNorm = 3 * 255.0
	fullNorm       = 2 * 3 * 255.0
)

func (m GradientMode) String() string {
	switch m {
	case GradientFull:
		return "full"
	default:
		return "horizontal"
	}
}

// ParseGradientMode maps a config name to a GradientMode.
func ParseGradientMode(name string) (GradientMode, error) {
	switch name {
	case "", "horizontal":
		return GradientHorizontal, nil
	case "full":
		return GradientFull, nil
	}
	return 0, fmt.Errorf("%w: unknown gradient mode %q", core.ErrConfig, name)
}

// EnergyComputer produces and maintains an energy map for an image.
type EnergyComputer interface {
	// Compute fills energy for every pixel. energy must have the image's
	// dimensions.
	Compute(img *core.Image, energy *core.Grid[float64])

	// Refresh recomputes the cells within RefreshRadius of seam in every row.
	// img and energy must already have had seam removed.
	Refresh(img *core.Image, energy *core.Grid[float64], seam Seam)
}

// GradientEnergy is the host implementation of EnergyComputer. Rows are
// independent and are spread over the pool.
type GradientEnergy struct {
	Mode GradientMode
	Pool *parallel.Pool
}

// NewGradientEnergy creates a host energy computer.
func NewGradientEnergy(mode GradientMode, pool *parallel.Pool) *GradientEnergy {
	return &GradientEnergy{Mode: mode, Pool: pool}
}

// Compute implements EnergyComputer.
func (e *GradientEnergy) Compute(img *core.Image, energy *core.Grid[float64]) {
	w := img.Width()
	e.Pool.ParallelFor(img.Height(), func(start, end int) {
		for y := start; y < end; y++ {
			row := energy.Row(y)
			for x := 0; x < w; x++ {
				row[x] = PixelEnergy(img, x, y, e.Mode)
			}
		}
	})
}

// Refresh implements EnergyComputer.
func (e *GradientEnergy) Refresh(img *core.Image, energy *core.Grid[float64], seam Seam) {
	w := img.Width()
	e.Pool.ParallelFor(img.Height(), func(start, end int) {
		for y := start; y < end; y++ {
			row := energy.Row(y)
			lo := max(seam[y]-RefreshRadius, 0)
			hi := min(seam[y]+RefreshRadius, w-1)
			for x := lo; x <= hi; x++ {
				row[x] = PixelEnergy(img, x, y, e.Mode)
			}
		}
	})
}

// PixelEnergy returns the normalised gradient energy of one pixel in [0,1].
// Border pixels return BorderEnergy.
func PixelEnergy(img *core.Image, x, y int, mode GradientMode) float64 {
	w, h := img.Width(), img.Height()
	if x == 0 || y == 0 || x == w-1 || y == h-1 {
		return BorderEnergy
	}

	delta := 0
	for _, plane := range img.Planes() {
		row := plane.Row(y)
		delta += absDiff(row[x+1], row[x-1])
	}
	if mode == GradientHorizontal {
		return float64(delta) / horizontalNorm
	}

	for _, plane := range img.Planes() {
		delta += absDiff(plane.At(x, y+1), plane.At(x, y-1))
	}
	return float64(delta) / fullNorm
}

func absDiff(a, b uint8) int {
	if a > b {
		return int(a - b)
	}
	return int(b - a)
}
