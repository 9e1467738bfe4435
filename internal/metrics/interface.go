// Stage timing collection for the carving pipeline
package metrics

import (
	"sync"
	"time"
)

// Stage names one timed phase of the pipeline.
type Stage string

const (
	StageInit    Stage = "Initialization"
	StageEnergy  Stage = "Energy"
	StageACM     Stage = "ACM"
	StageSeam    Stage = "Generate"
	StageRemoval Stage = "Remove"
	StageRefresh Stage = "Refresh"
	StageCompute Stage = "Computation"
)

// Stages lists every stage in reporting order.
var Stages = []Stage{StageInit, StageEnergy, StageACM, StageSeam, StageRemoval, StageRefresh, StageCompute}

// Timings accumulates per-stage duration samples. It is safe for concurrent
// use.
type Timings struct {
	mu      sync.Mutex
	samples map[Stage][]time.Duration
}

// NewTimings creates an empty collector.
func NewTimings() *Timings {
	return &Timings{
		samples: make(map[Stage][]time.Duration),
	}
}

// Observe records one sample for stage.
func (t *Timings) Observe(stage Stage, d time.Duration) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.samples[stage] = append(t.samples[stage], d)
}

// Time runs fn and records its duration under stage.
func (t *Timings) Time(stage Stage, fn func()) {
	start := time.Now()
	fn()
	t.Observe(stage, time.Since(start))
}

// Samples returns a copy of the samples recorded for stage.
func (t *Timings) Samples(stage Stage) []time.Duration {
	t.mu.Lock()
	defer t.mu.Unlock()
	return append([]time.Duration(nil), t.samples[stage]...)
}

// Reset drops all samples.
func (t *Timings) Reset() {
	t.mu.Lock()
	defer t.mu.Unlock()
	clear(t.samples)
}
