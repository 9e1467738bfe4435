//go:build opencv

package main

import (
	"seam-carving/internal/accel"
	"seam-carving/internal/algorithms"
	"seam-carving/internal/parallel"
	"seam-carving/internal/pipeline"
)

func newEnergyComputer(cfg pipeline.Config, pool *parallel.Pool) (algorithms.EnergyComputer, error) {
	if cfg.Backend != pipeline.BackendOpenCV {
		return nil, nil
	}
	mode, err := algorithms.ParseGradientMode(cfg.Gradient)
	if err != nil {
		return nil, err
	}
	return accel.NewOpenCVEnergy(algorithms.NewGradientEnergy(mode, pool)), nil
}
