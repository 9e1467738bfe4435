// Row-major 2D buffer shared by image planes, energy maps and cost matrices
package core

import "fmt"

// Grid is a row-major 2D view over an owned contiguous buffer.
//
// The stride is fixed at allocation time. Narrowing the grid only shrinks the
// logical width, so rows keep their original offsets and can be compacted in
// place by independent goroutines.
type Grid[T any] struct {
	data   []T
	width  int
	height int
	stride int
}

// NewGrid allocates a zeroed width x height grid.
func NewGrid[T any](width, height int) *Grid[T] {
	if width <= 0 || height <= 0 {
		return &Grid[T]{}
	}
	return &Grid[T]{
		data:   make([]T, width*height),
		width:  width,
		height: height,
		stride: width,
	}
}

// Width returns the current logical width.
func (g *Grid[T]) Width() int {
	return g.width
}

// Height returns the number of rows.
func (g *Grid[T]) Height() int {
	return g.height
}

// Stride returns the number of elements between the starts of two rows.
func (g *Grid[T]) Stride() int {
	return g.stride
}

// Row returns the mutable slice for row y, limited to the logical width.
func (g *Grid[T]) Row(y int) []T {
	if y < 0 || y >= g.height {
		return nil
	}
	start := y * g.stride
	return g.data[start : start+g.width : start+g.stride]
}

// At returns the element at column x, row y.
func (g *Grid[T]) At(x, y int) T {
	return g.data[y*g.stride+x]
}

// Set stores v at column x, row y.
func (g *Grid[T]) Set(x, y int, v T) {
	g.data[y*g.stride+x] = v
}

// Fill sets every element inside the logical bounds to v.
func (g *Grid[T]) Fill(v T) {
	for y := 0; y < g.height; y++ {
		row := g.Row(y)
		for x := range row {
			row[x] = v
		}
	}
}

// Clone returns a compact copy (stride == width) of the logical contents.
func (g *Grid[T]) Clone() *Grid[T] {
	out := NewGrid[T](g.width, g.height)
	for y := 0; y < g.height; y++ {
		copy(out.Row(y), g.Row(y))
	}
	return out
}

// CopyFrom copies src into g, resizing g's logical width to match.
// The source must fit inside g's stride and have the same height.
func (g *Grid[T]) CopyFrom(src *Grid[T]) error {
	if src.height != g.height || src.width > g.stride {
		return fmt.Errorf("grid %dx%d (stride %d) cannot hold %dx%d",
			g.width, g.height, g.stride, src.width, src.height)
	}
	g.width = src.width
	for y := 0; y < g.height; y++ {
		copy(g.Row(y), src.Row(y))
	}
	return nil
}

// Resize sets the logical width. It never reallocates, so width must not
// exceed the stride.
func (g *Grid[T]) Resize(width int) {
	if width < 0 || width > g.stride {
		panic(fmt.Sprintf("core: resize to %d outside stride %d", width, g.stride))
	}
	g.width = width
}

// DeleteColumn removes column x from row y by shifting the tail of the row
// left by one. The last logical element of the row is left stale until the
// grid is narrowed.
func (g *Grid[T]) DeleteColumn(x, y int) {
	row := g.Row(y)
	copy(row[x:], row[x+1:])
}

// Narrow drops the last logical column.
func (g *Grid[T]) Narrow() {
	g.Resize(g.width - 1)
}
