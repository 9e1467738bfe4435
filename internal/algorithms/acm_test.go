package algorithms

import (
	"fmt"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"seam-carving/internal/core"
	"seam-carving/internal/parallel"
)

func TestBandRows(t *testing.T) {
	tests := []struct {
		height, count int
		want          []Band
	}{
		{10, 4, []Band{{2, 2}, {2, 4}, {4, 6}, {6, 10}}},
		{100, 3, []Band{{2, 33}, {33, 66}, {66, 100}}},
		{7, 1, []Band{{2, 7}}},
		{7, 0, []Band{{2, 7}}},
		{3, 5, []Band{{2, 2}, {2, 2}, {2, 2}, {2, 2}, {2, 3}}},
		{1, 2, []Band{{2, 2}, {2, 2}}},
	}

	for _, tt := range tests {
		got := BandRows(tt.height, tt.count)
		assert.Equal(t, tt.want, got, "BandRows(%d, %d)", tt.height, tt.count)

		covered := 0
		for _, b := range got {
			covered += b.Len()
		}
		assert.Equal(t, max(tt.height-FirstAccumulatedRow, 0), covered)
	}
}

func TestSequentialACMKnownValues(t *testing.T) {
	acm := costOf(energyOf(centerColumnImage(), GradientHorizontal))

	want := [][]float64{
		{1, 1, 1, 1, 1},
		{1, 1, 0, 1, 1},
		{1, 1, 0, 1, 1},
		{1, 1, 0, 1, 1},
		{1, 1, 1, 1, 1},
	}
	for y, row := range want {
		assert.Equal(t, row, acm.Row(y), "row %d", y)
	}
}

func TestParallelBuildersMatchSequential(t *testing.T) {
	sizes := [][2]int{{3, 9}, {4, 2}, {17, 33}, {64, 40}, {5, 1}}

	for _, size := range sizes {
		energy := energyOf(randomImage(size[0], size[1], uint64(size[0]*size[1])), GradientFull)
		want := costOf(energy)

		for _, workers := range []int{1, 2, 3, 7, 16} {
			pool := parallel.New(workers)
			for _, name := range []string{"wavefront", "banded"} {
				builder, err := NewACMBuilder(name, pool)
				require.NoError(t, err)

				got := core.NewGrid[float64](energy.Width(), energy.Height())
				builder.Build(energy, got)
				for y := 0; y < got.Height(); y++ {
					require.Equal(t, want.Row(y), got.Row(y),
						"%s %dx%d workers=%d row %d", name, size[0], size[1], workers, y)
				}
			}
			pool.Close()
		}
	}
}

func TestBuildReusesNarrowedBuffer(t *testing.T) {
	pool := parallel.New(2)
	defer pool.Close()

	acm := core.NewGrid[float64](12, 6)
	energy := energyOf(randomImage(9, 6, 1), GradientHorizontal)

	(&BandedACM{Pool: pool}).Build(energy, acm)
	assert.Equal(t, 9, acm.Width())
	want := costOf(energy)
	for y := 0; y < 6; y++ {
		assert.Equal(t, want.Row(y), acm.Row(y))
	}
}

func TestCheckCostMatrix(t *testing.T) {
	acm := costOf(energyOf(randomImage(6, 6, 2), GradientHorizontal))
	require.NoError(t, CheckCostMatrix(acm))

	acm.Set(3, 3, math.NaN())
	assert.ErrorIs(t, CheckCostMatrix(acm), core.ErrInvariant)

	acm.Set(3, 3, -0.5)
	assert.ErrorIs(t, CheckCostMatrix(acm), core.ErrInvariant)
}

func TestNewACMBuilderUnknown(t *testing.T) {
	_, err := NewACMBuilder("racy", nil)
	assert.ErrorIs(t, err, core.ErrConfig)
	assert.Equal(t, []string{"banded", "sequential", "wavefront"}, BuilderNames())
	assert.True(t, IsValidBuilder("wavefront"))
}

func BenchmarkACMBuilders(b *testing.B) {
	energy := energyOf(randomImage(512, 384, 5), GradientHorizontal)
	pool := parallel.New(0)
	defer pool.Close()

	for _, name := range BuilderNames() {
		builder, err := NewACMBuilder(name, pool)
		if err != nil {
			b.Fatal(err)
		}
		acm := core.NewGrid[float64](energy.Width(), energy.Height())
		b.Run(fmt.Sprintf("%s/%dx%d", name, energy.Width(), energy.Height()), func(b *testing.B) {
			for i := 0; i < b.N; i++ {
				builder.Build(energy, acm)
			}
		})
	}
}
