// Seam carving pipeline: energy, cost matrix, trace, remove, refresh
package pipeline

import (
	"fmt"
	"time"

	"github.com/sirupsen/logrus"

	"seam-carving/internal/algorithms"
	"seam-carving/internal/core"
	"seam-carving/internal/metrics"
	"seam-carving/internal/parallel"
)

// Pipeline removes a fixed number of vertical seams from an image. All
// parallel steps share one pool; iterations never overlap.
type Pipeline struct {
	cfg     Config
	pool    *parallel.Pool
	logger  logrus.FieldLogger
	timings *metrics.Timings

	energy  algorithms.EnergyComputer
	builder algorithms.ACMBuilder
	tracer  algorithms.Tracer
}

// Option customises a Pipeline.
type Option func(*Pipeline)

// WithEnergyComputer replaces the host gradient computer, e.g. with an
// accelerated backend.
func WithEnergyComputer(ec algorithms.EnergyComputer) Option {
	return func(p *Pipeline) {
		p.energy = ec
	}
}

// WithTimings records stage durations into t instead of a private collector.
func WithTimings(t *metrics.Timings) Option {
	return func(p *Pipeline) {
		p.timings = t
	}
}

// Result is the outcome of a run.
type Result struct {
	// Image is the narrowed image.
	Image *core.Image
	// Energy is the energy map of the input image.
	Energy *core.Grid[float64]
	// Seams lists the removed seams in removal order, in the column
	// coordinates of the input image.
	Seams []algorithms.Seam
}

// New validates cfg and assembles a pipeline on top of pool.
func New(cfg Config, pool *parallel.Pool, logger logrus.FieldLogger, opts ...Option) (*Pipeline, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	p := &Pipeline{
		cfg:    cfg,
		pool:   pool,
		logger: logger,
	}
	for _, opt := range opts {
		opt(p)
	}

	if p.timings == nil {
		p.timings = metrics.NewTimings()
	}

	if p.energy == nil {
		if cfg.Backend != BackendHost {
			return nil, fmt.Errorf("%w: backend %q needs an energy computer supplied by the caller", core.ErrConfig, cfg.Backend)
		}
		mode, err := algorithms.ParseGradientMode(cfg.Gradient)
		if err != nil {
			return nil, err
		}
		p.energy = algorithms.NewGradientEnergy(mode, pool)
	}

	var err error
	if p.builder, err = algorithms.NewACMBuilder(cfg.Builder, pool); err != nil {
		return nil, err
	}
	if p.tracer, err = algorithms.NewTracer(cfg.Tracer, pool.NumWorkers()); err != nil {
		return nil, err
	}

	return p, nil
}

// Timings returns the stage duration collector.
func (p *Pipeline) Timings() *metrics.Timings {
	return p.timings
}

// Run carves cfg.Seams seams out of a copy of img. img is left untouched.
// The seam count is checked against the image width before any buffer is
// allocated.
func (p *Pipeline) Run(img *core.Image) (*Result, error) {
	if err := core.ValidateImage(img); err != nil {
		return nil, err
	}
	if err := p.cfg.ValidateFor(img.Width()); err != nil {
		return nil, err
	}

	start := time.Now()
	defer func() {
		p.timings.Observe(metrics.StageCompute, time.Since(start))
	}()

	w, h := img.Width(), img.Height()
	p.logger.WithFields(logrus.Fields{
		"width":   w,
		"height":  h,
		"seams":   p.cfg.Seams,
		"workers": p.pool.NumWorkers(),
		"acm":     p.builder.Name(),
		"tracer":  p.tracer.Name(),
		"refresh": p.cfg.Refresh,
	}).Info("Starting seam removal")

	work := img.Clone()
	energy := core.NewGrid[float64](w, h)
	p.timings.Time(metrics.StageEnergy, func() {
		p.energy.Compute(work, energy)
	})
	result := &Result{
		Energy: energy.Clone(),
		Seams:  make([]algorithms.Seam, 0, p.cfg.Seams),
	}

	it := newIteration(w, h)
	for s := 0; s < p.cfg.Seams; s++ {
		removed, err := p.removeOne(work, energy, it)
		if err != nil {
			return nil, fmt.Errorf("seam %d: %w", s, err)
		}
		result.Seams = append(result.Seams, removed)

		p.logger.WithFields(logrus.Fields{
			"seam":   s,
			"width":  work.Width(),
			"column": removed[h-1],
		}).Debug("Seam removed")
	}

	result.Image = work
	p.logger.WithFields(logrus.Fields{
		"width":    work.Width(),
		"height":   work.Height(),
		"duration": time.Since(start).String(),
	}).Info("Seam removal complete")

	return result, nil
}

// iteration holds the scratch buffers borrowed by one seam removal. They are
// sized for the input width and narrowed with the image, so nothing is
// reallocated between iterations.
type iteration struct {
	acm    *core.Grid[float64]
	seam   algorithms.Seam
	origin *core.Grid[int]
}

func newIteration(width, height int) *iteration {
	origin := core.NewGrid[int](width, height)
	for y := 0; y < height; y++ {
		for x := range origin.Row(y) {
			origin.Set(x, y, x)
		}
	}
	return &iteration{
		acm:    core.NewGrid[float64](width, height),
		seam:   make(algorithms.Seam, height),
		origin: origin,
	}
}

// removeOne runs one full iteration and returns the removed seam in input
// image coordinates.
func (p *Pipeline) removeOne(work *core.Image, energy *core.Grid[float64], it *iteration) (algorithms.Seam, error) {
	p.timings.Time(metrics.StageACM, func() {
		p.builder.Build(energy, it.acm)
	})
	if p.cfg.CheckInvariants {
		if err := algorithms.CheckCostMatrix(it.acm); err != nil {
			return nil, err
		}
	}

	var err error
	p.timings.Time(metrics.StageSeam, func() {
		_, err = p.tracer.Trace(it.acm, it.seam)
	})
	if err != nil {
		return nil, err
	}
	if p.cfg.CheckInvariants {
		if err := it.seam.Validate(work.Width(), work.Height()); err != nil {
			return nil, err
		}
		if !it.seam.Connected() {
			return nil, fmt.Errorf("%w: seam is not 8-connected: %v", core.ErrInvariant, it.seam)
		}
	}

	removed := make(algorithms.Seam, len(it.seam))
	for y, x := range it.seam {
		removed[y] = it.origin.At(x, y)
	}

	p.timings.Time(metrics.StageRemoval, func() {
		algorithms.RemoveSeamFromImage(work, it.seam, p.pool)
		algorithms.RemoveSeam(energy, it.seam, p.pool)
		algorithms.RemoveSeam(it.origin, it.seam, p.pool)
	})

	p.timings.Time(metrics.StageRefresh, func() {
		if p.cfg.Refresh == RefreshFull {
			p.energy.Compute(work, energy)
			return
		}
		p.energy.Refresh(work, energy, it.seam)
	})

	return removed, nil
}
