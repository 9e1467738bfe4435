//go:build opencv

// Package accel holds energy computers backed by native libraries. Build
// with -tags opencv to enable it.
package accel

import (
	"image"

	"gocv.io/x/gocv"

	"seam-carving/internal/algorithms"
	"seam-carving/internal/core"
)

// OpenCVEnergy computes the full energy map with OpenCV's Filter2D and
// hands windowed refreshes to the host computer, which implements the same
// formula.
type OpenCVEnergy struct {
	host *algorithms.GradientEnergy
}

// NewOpenCVEnergy wraps host, whose Mode also selects the kernels.
func NewOpenCVEnergy(host *algorithms.GradientEnergy) *OpenCVEnergy {
	return &OpenCVEnergy{host: host}
}

// Compute implements algorithms.EnergyComputer. If OpenCV rejects the input
// the host computer fills the map instead.
func (e *OpenCVEnergy) Compute(img *core.Image, energy *core.Grid[float64]) {
	if err := e.compute(img, energy); err != nil {
		e.host.Compute(img, energy)
	}
}

// Refresh implements algorithms.EnergyComputer.
func (e *OpenCVEnergy) Refresh(img *core.Image, energy *core.Grid[float64], seam algorithms.Seam) {
	e.host.Refresh(img, energy, seam)
}

func (e *OpenCVEnergy) compute(img *core.Image, energy *core.Grid[float64]) error {
	w, h := img.Width(), img.Height()

	interleaved := make([]byte, 0, w*h*3)
	for y := 0; y < h; y++ {
		rs, gs, bs := img.R.Row(y), img.G.Row(y), img.B.Row(y)
		for x := 0; x < w; x++ {
			interleaved = append(interleaved, rs[x], gs[x], bs[x])
		}
	}

	src, err := gocv.NewMatFromBytes(h, w, gocv.MatTypeCV8UC3, interleaved)
	if err != nil {
		return err
	}
	defer src.Close()

	dx, err := gradient(src, 1, 3)
	if err != nil {
		return err
	}

	norm := 3 * 255.0
	var dy []int16
	if e.host.Mode == algorithms.GradientFull {
		norm *= 2
		if dy, err = gradient(src, 3, 1); err != nil {
			return err
		}
	}

	for y := 0; y < h; y++ {
		row := energy.Row(y)
		for x := 0; x < w; x++ {
			if x == 0 || y == 0 || x == w-1 || y == h-1 {
				row[x] = algorithms.BorderEnergy
				continue
			}
			i := (y*w + x) * 3
			delta := abs16(dx[i]) + abs16(dx[i+1]) + abs16(dx[i+2])
			if dy != nil {
				delta += abs16(dy[i]) + abs16(dy[i+1]) + abs16(dy[i+2])
			}
			row[x] = float64(delta) / norm
		}
	}

	return nil
}

// gradient correlates src with a centred [-1 0 1] kernel laid out as
// rows x cols and returns the signed per-channel responses.
func gradient(src gocv.Mat, rows, cols int) ([]int16, error) {
	kernel := gocv.NewMatWithSize(rows, cols, gocv.MatTypeCV32F)
	defer kernel.Close()
	kernel.SetFloatAt(0, 0, -1)
	kernel.SetFloatAt(rows/2, cols/2, 0)
	kernel.SetFloatAt(rows-1, cols-1, 1)

	dst := gocv.NewMat()
	defer dst.Close()
	if err := gocv.Filter2D(src, &dst, gocv.MatTypeCV16S, kernel, image.Point{X: -1, Y: -1}, 0, gocv.BorderReplicate); err != nil {
		return nil, err
	}

	data, err := dst.DataPtrInt16()
	if err != nil {
		return nil, err
	}
	return append([]int16(nil), data...), nil
}

func abs16(v int16) int {
	if v < 0 {
		return -int(v)
	}
	return int(v)
}
