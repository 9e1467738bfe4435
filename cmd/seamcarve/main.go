// Seam carving command line tool
// Narrows an image by removing low-energy vertical seams.

package main

import (
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/spf13/pflag"
	"golang.org/x/sync/errgroup"

	"seam-carving/internal/core"
	imageio "seam-carving/internal/io"
	"seam-carving/internal/metrics"
	"seam-carving/internal/parallel"
	"seam-carving/internal/pipeline"
)

const (
	AppName    = "seamcarve"
	AppVersion = "1.0.0"
)

// Exit codes.
const (
	exitOK        = 0
	exitInput     = 1
	exitInvariant = 2
)

func main() {
	os.Exit(run(os.Args[1:], os.Stdout))
}

// run executes one carving job and returns the process exit code. Logs,
// diagnostics and the timing summary all go to stdout.
func run(args []string, stdout io.Writer) int {
	start := time.Now()

	cfg, err := parseArgs(args, stdout)
	if err != nil {
		if errors.Is(err, pflag.ErrHelp) {
			return exitOK
		}
		fmt.Fprintf(stdout, "%s: %v\n", AppName, err)
		return exitInput
	}

	logger := initLogger(cfg.Debug, stdout)
	logger.WithFields(logrus.Fields{
		"version": AppVersion,
		"input":   cfg.InputPath,
		"output":  cfg.OutputPath,
	}).Info("Starting seam carving")

	if err := carve(cfg, logger, stdout, start); err != nil {
		logger.WithError(err).Error("Seam carving failed")
		fmt.Fprintf(stdout, "%s: %v\n", AppName, err)
		if errors.Is(err, core.ErrInvariant) {
			return exitInvariant
		}
		return exitInput
	}

	return exitOK
}

func carve(cfg pipeline.Config, logger *logrus.Logger, stdout io.Writer, start time.Time) error {
	if cfg.InputPath == "" {
		return fmt.Errorf("%w: no input file given (use -f)", core.ErrInput)
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	loader := imageio.NewImageLoader(logger)
	img, err := loader.LoadImage(cfg.InputPath)
	if err != nil {
		return err
	}

	pool := parallel.New(cfg.Workers)
	defer pool.Close()

	energy, err := newEnergyComputer(cfg, pool)
	if err != nil {
		return err
	}

	timings := metrics.NewTimings()
	opts := []pipeline.Option{pipeline.WithTimings(timings)}
	if energy != nil {
		opts = append(opts, pipeline.WithEnergyComputer(energy))
	}
	p, err := pipeline.New(cfg, pool, logger, opts...)
	if err != nil {
		return err
	}
	timings.Observe(metrics.StageInit, time.Since(start))

	result, err := p.Run(img)
	if err != nil {
		return err
	}

	if err := writeOutputs(cfg, loader, img, result); err != nil {
		return err
	}

	summary := timings.Summary()
	if _, err := summary.WriteTo(stdout); err != nil {
		return err
	}
	summary.Log(logger)

	return nil
}

// writeOutputs saves the carved image and the optional visualisations
// concurrently.
func writeOutputs(cfg pipeline.Config, loader *imageio.ImageLoader, original *core.Image, result *pipeline.Result) error {
	var g errgroup.Group

	g.Go(func() error {
		return loader.SaveImage(result.Image, cfg.OutputPath)
	})
	if cfg.EnergyOutputPath != "" {
		g.Go(func() error {
			return loader.SaveRaster(imageio.EnergyImage(result.Energy), cfg.EnergyOutputPath)
		})
	}
	if cfg.SeamOverlayPath != "" {
		g.Go(func() error {
			return loader.SaveRaster(imageio.SeamOverlay(original, result.Seams), cfg.SeamOverlayPath)
		})
	}

	return g.Wait()
}

// parseArgs builds the run configuration. A --config file is applied on top
// of the defaults and flags given explicitly override it.
func parseArgs(args []string, output io.Writer) (pipeline.Config, error) {
	fs := pflag.NewFlagSet(AppName, pflag.ContinueOnError)
	fs.SetOutput(output)

	flags := pipeline.DefaultConfig()
	var configPath string
	fs.StringVarP(&flags.InputPath, "file", "f", "", "input image (.txt interchange format or a raster image)")
	fs.StringVarP(&flags.OutputPath, "output", "o", flags.OutputPath, "output image; format follows the extension")
	fs.IntVarP(&flags.Workers, "workers", "n", flags.Workers, "worker thread count (0 = one per CPU)")
	fs.IntVarP(&flags.Seams, "seams", "s", flags.Seams, "number of vertical seams to remove")
	fs.StringVar(&flags.Tracer, "tracer", flags.Tracer, "seam tracer: exact or band_averaged")
	fs.StringVar(&flags.Builder, "acm", flags.Builder, "cost matrix strategy: sequential, wavefront or banded")
	fs.StringVar(&flags.Gradient, "gradient", flags.Gradient, "energy gradient: horizontal or full")
	fs.StringVar(&flags.Refresh, "refresh", flags.Refresh, "energy refresh after each seam: windowed or full")
	fs.StringVar(&flags.Backend, "backend", flags.Backend, "energy backend: host or opencv")
	fs.BoolVar(&flags.CheckInvariants, "check-invariants", false, "validate every cost matrix and seam")
	fs.StringVar(&flags.EnergyOutputPath, "energy-out", "", "write the initial energy map as a grayscale image")
	fs.StringVar(&flags.SeamOverlayPath, "seams-out", "", "write the removed seams drawn over the input")
	fs.BoolVar(&flags.Debug, "debug", false, "enable debug mode with verbose logging")
	fs.StringVar(&configPath, "config", "", "YAML configuration file")

	if err := fs.Parse(args); err != nil {
		if errors.Is(err, pflag.ErrHelp) {
			return pipeline.Config{}, err
		}
		return pipeline.Config{}, fmt.Errorf("%w: %v", core.ErrConfig, err)
	}
	if fs.NArg() > 0 {
		return pipeline.Config{}, fmt.Errorf("%w: unexpected arguments %v", core.ErrConfig, fs.Args())
	}

	if configPath == "" {
		return flags, nil
	}

	cfg, err := pipeline.LoadConfig(configPath)
	if err != nil {
		return pipeline.Config{}, err
	}
	fs.Visit(func(f *pflag.Flag) {
		switch f.Name {
		case "file":
			cfg.InputPath = flags.InputPath
		case "output":
			cfg.OutputPath = flags.OutputPath
		case "workers":
			cfg.Workers = flags.Workers
		case "seams":
			cfg.Seams = flags.Seams
		case "tracer":
			cfg.Tracer = flags.Tracer
		case "acm":
			cfg.Builder = flags.Builder
		case "gradient":
			cfg.Gradient = flags.Gradient
		case "refresh":
			cfg.Refresh = flags.Refresh
		case "backend":
			cfg.Backend = flags.Backend
		case "check-invariants":
			cfg.CheckInvariants = flags.CheckInvariants
		case "energy-out":
			cfg.EnergyOutputPath = flags.EnergyOutputPath
		case "seams-out":
			cfg.SeamOverlayPath = flags.SeamOverlayPath
		case "debug":
			cfg.Debug = flags.Debug
		}
	})
	return cfg, nil
}

// initLogger initializes the logger with appropriate level
func initLogger(debugMode bool, output io.Writer) *logrus.Logger {
	logger := logrus.New()
	logger.SetOutput(output)

	if debugMode {
		logger.SetLevel(logrus.DebugLevel)
		logger.SetFormatter(&logrus.TextFormatter{
			FullTimestamp: true,
		})
		logger.Debug("Debug logging enabled")
	} else {
		logger.SetLevel(logrus.InfoLevel)
		logger.SetFormatter(&logrus.JSONFormatter{
			TimestampFormat: "2006-01-02 15:04:05",
		})
	}

	return logger
}
