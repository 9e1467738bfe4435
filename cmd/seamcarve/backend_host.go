//go:build !opencv

package main

import (
	"fmt"

	"seam-carving/internal/algorithms"
	"seam-carving/internal/core"
	"seam-carving/internal/parallel"
	"seam-carving/internal/pipeline"
)

// newEnergyComputer returns nil for the host backend, letting the pipeline
// build its own gradient computer.
func newEnergyComputer(cfg pipeline.Config, _ *parallel.Pool) (algorithms.EnergyComputer, error) {
	if cfg.Backend == pipeline.BackendOpenCV {
		return nil, fmt.Errorf("%w: backend %q is not available; rebuild with -tags opencv", core.ErrConfig, cfg.Backend)
	}
	return nil, nil
}
