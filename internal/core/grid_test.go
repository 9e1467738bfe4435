package core

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewGrid(t *testing.T) {
	g := NewGrid[float64](4, 3)
	assert.Equal(t, 4, g.Width())
	assert.Equal(t, 3, g.Height())
	assert.Equal(t, 4, g.Stride())
	assert.Len(t, g.Row(2), 4)
	assert.Nil(t, g.Row(3))
	assert.Nil(t, g.Row(-1))

	empty := NewGrid[int](0, 5)
	assert.Equal(t, 0, empty.Width())
	assert.Equal(t, 0, empty.Height())
}

func TestGridAtSet(t *testing.T) {
	g := NewGrid[int](3, 2)
	g.Set(2, 1, 7)
	assert.Equal(t, 7, g.At(2, 1))
	assert.Equal(t, []int{0, 0, 7}, g.Row(1))
}

func TestGridDeleteColumnAndNarrow(t *testing.T) {
	g := NewGrid[int](5, 2)
	for y := 0; y < 2; y++ {
		for x := 0; x < 5; x++ {
			g.Set(x, y, y*10+x)
		}
	}

	g.DeleteColumn(1, 0)
	g.DeleteColumn(4, 1)
	g.Narrow()

	assert.Equal(t, 4, g.Width())
	assert.Equal(t, 5, g.Stride())
	assert.Equal(t, []int{0, 2, 3, 4}, g.Row(0))
	assert.Equal(t, []int{10, 11, 12, 13}, g.Row(1))
}

func TestGridCloneIsCompact(t *testing.T) {
	g := NewGrid[int](4, 2)
	g.Fill(3)
	g.Narrow()

	c := g.Clone()
	assert.Equal(t, 3, c.Stride())
	assert.Equal(t, []int{3, 3, 3}, c.Row(1))

	c.Set(0, 0, 9)
	assert.Equal(t, 3, g.At(0, 0))
}

func TestGridCopyFrom(t *testing.T) {
	dst := NewGrid[int](5, 2)
	src := NewGrid[int](3, 2)
	src.Fill(1)

	require.NoError(t, dst.CopyFrom(src))
	assert.Equal(t, 3, dst.Width())
	assert.Equal(t, []int{1, 1, 1}, dst.Row(1))

	tooWide := NewGrid[int](6, 2)
	assert.Error(t, dst.CopyFrom(tooWide))
}

func TestGridResizeOutsideStridePanics(t *testing.T) {
	g := NewGrid[int](2, 2)
	assert.Panics(t, func() { g.Resize(3) })
}
