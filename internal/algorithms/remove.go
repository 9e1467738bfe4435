// Seam removal: per-row compaction of planes and maps
package algorithms

import (
	"seam-carving/internal/core"
	"seam-carving/internal/parallel"
)

// RemoveSeam deletes seam[y] from every row of g and narrows g by one.
// Rows are compacted in place and in parallel; no row reads another.
func RemoveSeam[T any](g *core.Grid[T], seam Seam, pool *parallel.Pool) {
	pool.ParallelFor(g.Height(), func(start, end int) {
		for y := start; y < end; y++ {
			g.DeleteColumn(seam[y], y)
		}
	})
	g.Narrow()
}

// RemoveSeamFromImage deletes seam from the three channel planes in a single
// parallel region.
func RemoveSeamFromImage(img *core.Image, seam Seam, pool *parallel.Pool) {
	planes := img.Planes()
	pool.ParallelFor(img.Height(), func(start, end int) {
		for y := start; y < end; y++ {
			for _, plane := range planes {
				plane.DeleteColumn(seam[y], y)
			}
		}
	})
	img.Narrow()
}
