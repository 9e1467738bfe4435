// Strategy registry for cost matrix builders and seam tracers
package algorithms

import (
	"fmt"
	"slices"

	"seam-carving/internal/core"
	"seam-carving/internal/parallel"
)

// BuilderFactory creates an ACMBuilder bound to a pool.
type BuilderFactory func(pool *parallel.Pool) ACMBuilder

// TracerFactory creates a Tracer for a given band count.
type TracerFactory func(bands int) Tracer

var (
	builders = make(map[string]BuilderFactory)
	tracers  = make(map[string]TracerFactory)
)

func RegisterBuilder(name string, factory BuilderFactory) {
	builders[name] = factory
}

func RegisterTracer(name string, factory TracerFactory) {
	tracers[name] = factory
}

// NewACMBuilder returns the named builder.
func NewACMBuilder(name string, pool *parallel.Pool) (ACMBuilder, error) {
	factory, exists := builders[name]
	if !exists {
		return nil, fmt.Errorf("%w: unknown cost matrix builder %q (have %v)", core.ErrConfig, name, BuilderNames())
	}
	return factory(pool), nil
}

// NewTracer returns the named tracer.
func NewTracer(name string, bands int) (Tracer, error) {
	factory, exists := tracers[name]
	if !exists {
		return nil, fmt.Errorf("%w: unknown seam tracer %q (have %v)", core.ErrConfig, name, TracerNames())
	}
	return factory(bands), nil
}

func IsValidBuilder(name string) bool {
	_, exists := builders[name]
	return exists
}

func IsValidTracer(name string) bool {
	_, exists := tracers[name]
	return exists
}

func BuilderNames() []string {
	return sortedKeys(builders)
}

func TracerNames() []string {
	return sortedKeys(tracers)
}

func sortedKeys[V any](m map[string]V) []string {
	names := make([]string, 0, len(m))
	for name := range m {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}

func init() {
	RegisterBuilder("sequential", func(*parallel.Pool) ACMBuilder { return SequentialACM{} })
	RegisterBuilder("wavefront", func(pool *parallel.Pool) ACMBuilder { return &WavefrontACM{Pool: pool} })
	RegisterBuilder("banded", func(pool *parallel.Pool) ACMBuilder { return &BandedACM{Pool: pool} })

	RegisterTracer("exact", func(int) Tracer { return ExactTracer{} })
	RegisterTracer("band_averaged", func(bands int) Tracer { return &BandAveragedTracer{Bands: bands} })
}
