package algorithms

import (
	"math/rand/v2"

	"seam-carving/internal/core"
	"seam-carving/internal/parallel"
)

// columnImage builds a grey image whose column x has value cols[x] in every
// row.
func columnImage(cols []uint8, height int) *core.Image {
	img := core.NewImage(len(cols), height)
	for y := 0; y < height; y++ {
		for x, v := range cols {
			img.SetRGB(x, y, v, v, v)
		}
	}
	return img
}

func randomImage(width, height int, seed uint64) *core.Image {
	rng := rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))
	img := core.NewImage(width, height)
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			img.SetRGB(x, y, uint8(rng.IntN(256)), uint8(rng.IntN(256)), uint8(rng.IntN(256)))
		}
	}
	return img
}

func energyOf(img *core.Image, mode GradientMode) *core.Grid[float64] {
	pool := parallel.New(1)
	defer pool.Close()

	energy := core.NewGrid[float64](img.Width(), img.Height())
	NewGradientEnergy(mode, pool).Compute(img, energy)
	return energy
}

func costOf(energy *core.Grid[float64]) *core.Grid[float64] {
	acm := core.NewGrid[float64](energy.Width(), energy.Height())
	SequentialACM{}.Build(energy, acm)
	return acm
}

// centerColumnImage is a 5x5 image whose flat centre column sits between
// two strong vertical edges.
func centerColumnImage() *core.Image {
	return columnImage([]uint8{0, 200, 255, 200, 0}, 5)
}
