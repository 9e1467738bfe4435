package pipeline

import (
	"math/rand/v2"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"seam-carving/internal/algorithms"
	"seam-carving/internal/core"
	"seam-carving/internal/metrics"
	"seam-carving/internal/parallel"
)

func randomImage(width, height int, seed uint64) *core.Image {
	rng := rand.New(rand.NewPCG(seed, seed+1))
	img := core.NewImage(width, height)
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			img.SetRGB(x, y, uint8(rng.IntN(256)), uint8(rng.IntN(256)), uint8(rng.IntN(256)))
		}
	}
	return img
}

func newTestPipeline(t *testing.T, cfg Config, opts ...Option) *Pipeline {
	t.Helper()
	pool := parallel.New(cfg.Workers)
	t.Cleanup(pool.Close)

	logger, _ := test.NewNullLogger()
	p, err := New(cfg, pool, logger, opts...)
	require.NoError(t, err)
	return p
}

func TestRunShrinksWidth(t *testing.T) {
	img := randomImage(24, 16, 1)
	cfg := DefaultConfig()
	cfg.Workers = 3
	cfg.Seams = 10
	cfg.CheckInvariants = true

	result, err := newTestPipeline(t, cfg).Run(img)
	require.NoError(t, err)

	assert.Equal(t, 14, result.Image.Width())
	assert.Equal(t, 16, result.Image.Height())
	assert.Equal(t, 24, img.Width(), "input image is not modified")
	assert.Len(t, result.Seams, 10)
	assert.Equal(t, 24, result.Energy.Width())
}

func TestRunRemovedSeamsAreDistinctInputColumns(t *testing.T) {
	img := randomImage(20, 12, 2)
	cfg := DefaultConfig()
	cfg.Workers = 2
	cfg.Seams = 17

	result, err := newTestPipeline(t, cfg).Run(img)
	require.NoError(t, err)
	require.Equal(t, 3, result.Image.Width())

	for y := 0; y < 12; y++ {
		seen := map[int]bool{}
		for _, seam := range result.Seams {
			x := seam[y]
			require.False(t, seen[x], "column %d removed twice in row %d", x, y)
			require.Greater(t, x, 0)
			require.Less(t, x, 19)
			seen[x] = true
		}

		// The surviving pixels are the untouched input columns in order.
		var kept []uint8
		for x := 0; x < 20; x++ {
			if !seen[x] {
				kept = append(kept, img.R.At(x, y))
			}
		}
		assert.Equal(t, kept, result.Image.R.Row(y))
	}
}

func TestRunStrategiesAgree(t *testing.T) {
	img := randomImage(32, 20, 3)

	base := DefaultConfig()
	base.Workers = 1
	base.Seams = 12
	base.Builder = "sequential"
	base.Refresh = RefreshFull
	want, err := newTestPipeline(t, base).Run(img)
	require.NoError(t, err)

	for _, builder := range []string{"sequential", "wavefront", "banded"} {
		for _, refresh := range []string{RefreshWindowed, RefreshFull} {
			cfg := base
			cfg.Workers = 4
			cfg.Builder = builder
			cfg.Refresh = refresh

			got, err := newTestPipeline(t, cfg).Run(img)
			require.NoError(t, err)
			assert.True(t, want.Image.Equal(got.Image), "%s/%s", builder, refresh)
			assert.Equal(t, want.Seams, got.Seams, "%s/%s", builder, refresh)
		}
	}
}

func TestRunFullGradientWindowedMatchesFull(t *testing.T) {
	img := randomImage(28, 18, 4)
	cfg := DefaultConfig()
	cfg.Workers = 2
	cfg.Seams = 9
	cfg.Gradient = "full"
	cfg.Tracer = "band_averaged"

	windowed, err := newTestPipeline(t, cfg).Run(img)
	require.NoError(t, err)

	cfg.Refresh = RefreshFull
	full, err := newTestPipeline(t, cfg).Run(img)
	require.NoError(t, err)

	assert.True(t, windowed.Image.Equal(full.Image))
}

func TestRunCenterColumn(t *testing.T) {
	img := core.NewImage(5, 5)
	for y := 0; y < 5; y++ {
		for x, v := range []uint8{0, 200, 255, 200, 0} {
			img.SetRGB(x, y, v, v, v)
		}
	}
	cfg := DefaultConfig()
	cfg.Seams = 1

	result, err := newTestPipeline(t, cfg).Run(img)
	require.NoError(t, err)
	assert.Equal(t, []algorithms.Seam{{2, 2, 2, 2, 2}}, result.Seams)
	assert.Equal(t, []uint8{0, 200, 200, 0}, result.Image.G.Row(3))
}

func TestRunRejectsTooManySeams(t *testing.T) {
	img := randomImage(10, 4, 5)
	for _, seams := range []int{8, 10, 25} {
		cfg := DefaultConfig()
		cfg.Seams = seams

		_, err := newTestPipeline(t, cfg).Run(img)
		assert.ErrorIs(t, err, core.ErrConfig, "seams=%d", seams)
	}
	assert.Equal(t, 10, img.Width())

	cfg := DefaultConfig()
	cfg.Seams = 7
	result, err := newTestPipeline(t, cfg).Run(img)
	require.NoError(t, err)
	assert.Equal(t, 3, result.Image.Width())
}

func TestRunZeroSeams(t *testing.T) {
	img := randomImage(2, 2, 6)
	cfg := DefaultConfig()
	cfg.Seams = 0

	result, err := newTestPipeline(t, cfg).Run(img)
	require.NoError(t, err)
	assert.True(t, img.Equal(result.Image))
}

func TestRunRejectsInvalidImage(t *testing.T) {
	_, err := newTestPipeline(t, DefaultConfig()).Run(core.NewImage(0, 0))
	assert.ErrorIs(t, err, core.ErrInput)
}

// brokenEnergy produces negative costs, which the invariant checks catch.
type brokenEnergy struct{}

func (brokenEnergy) Compute(img *core.Image, energy *core.Grid[float64]) {
	energy.Fill(-1)
}

func (brokenEnergy) Refresh(*core.Image, *core.Grid[float64], algorithms.Seam) {}

func TestRunInvariantViolation(t *testing.T) {
	cfg := DefaultConfig()
	cfg.CheckInvariants = true
	_, err := newTestPipeline(t, cfg, WithEnergyComputer(brokenEnergy{})).Run(randomImage(6, 6, 7))
	assert.ErrorIs(t, err, core.ErrInvariant)
}

func TestNewRequiresSuppliedBackend(t *testing.T) {
	pool := parallel.New(1)
	defer pool.Close()

	cfg := DefaultConfig()
	cfg.Backend = BackendOpenCV
	_, err := New(cfg, pool, logrus.New())
	assert.ErrorIs(t, err, core.ErrConfig)

	_, err = New(cfg, pool, logrus.New(), WithEnergyComputer(algorithms.NewGradientEnergy(algorithms.GradientHorizontal, pool)))
	assert.NoError(t, err)
}

func TestRunRecordsTimings(t *testing.T) {
	timings := metrics.NewTimings()
	cfg := DefaultConfig()
	cfg.Seams = 3

	_, err := newTestPipeline(t, cfg, WithTimings(timings)).Run(randomImage(12, 8, 8))
	require.NoError(t, err)

	summary := timings.Summary()
	for stage, count := range map[metrics.Stage]int{
		metrics.StageEnergy:  1,
		metrics.StageACM:     3,
		metrics.StageSeam:    3,
		metrics.StageRemoval: 3,
		metrics.StageRefresh: 3,
		metrics.StageCompute: 1,
	} {
		ss, ok := summary.Get(stage)
		require.True(t, ok, stage)
		assert.Equal(t, count, ss.Count, stage)
	}
}

func TestRunLogsProgress(t *testing.T) {
	pool := parallel.New(1)
	defer pool.Close()
	logger, hook := test.NewNullLogger()
	logger.SetLevel(logrus.DebugLevel)

	cfg := DefaultConfig()
	cfg.Seams = 2
	p, err := New(cfg, pool, logger)
	require.NoError(t, err)
	_, err = p.Run(randomImage(8, 6, 9))
	require.NoError(t, err)

	var debug int
	for _, entry := range hook.AllEntries() {
		if entry.Level == logrus.DebugLevel {
			debug++
		}
	}
	assert.Equal(t, 2, debug)
	assert.Equal(t, "Seam removal complete", hook.LastEntry().Message)
}
