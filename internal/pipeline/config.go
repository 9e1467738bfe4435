// Pipeline configuration: defaults, YAML file loading and validation
package pipeline

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"

	"seam-carving/internal/algorithms"
	"seam-carving/internal/core"
)

// MinWidth is the narrowest image the pipeline leaves behind: one interior
// column between the two pinned border columns.
const MinWidth = 3

// Energy refresh policies.
const (
	RefreshWindowed = "windowed"
	RefreshFull     = "full"
)

// Energy backends.
const (
	BackendHost   = "host"
	BackendOpenCV = "opencv"
)

// Config is built once by the caller and passed into the pipeline by value.
type Config struct {
	InputPath  string `yaml:"input"`
	OutputPath string `yaml:"output"`

	// Workers is the pool size; 0 means GOMAXPROCS.
	Workers int `yaml:"workers"`
	Seams   int `yaml:"seams"`

	Tracer   string `yaml:"tracer"`
	Builder  string `yaml:"acm"`
	Gradient string `yaml:"gradient"`
	Refresh  string `yaml:"refresh"`
	Backend  string `yaml:"backend"`

	// CheckInvariants validates every cost matrix and seam and fails the
	// run with core.ErrInvariant on a violation.
	CheckInvariants bool `yaml:"check_invariants"`

	EnergyOutputPath string `yaml:"energy_output"`
	SeamOverlayPath  string `yaml:"seam_overlay"`

	Debug bool `yaml:"debug"`
}

// DefaultConfig returns the configuration used when nothing is overridden.
func DefaultConfig() Config {
	return Config{
		OutputPath: "outputImage.txt",
		Workers:    1,
		Seams:      1,
		Tracer:     "exact",
		Builder:    "wavefront",
		Gradient:   "horizontal",
		Refresh:    RefreshWindowed,
		Backend:    BackendHost,
	}
}

// LoadConfig reads a YAML file on top of DefaultConfig. Unknown keys are
// rejected.
func LoadConfig(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("%w: reading config: %v", core.ErrConfig, err)
	}
	return ParseConfig(data)
}

// ParseConfig decodes YAML config data on top of DefaultConfig.
func ParseConfig(data []byte) (Config, error) {
	cfg := DefaultConfig()
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&cfg); err != nil && !errors.Is(err, io.EOF) {
		return Config{}, fmt.Errorf("%w: parsing config: %v", core.ErrConfig, err)
	}
	return cfg, nil
}

// Validate checks the fields that do not depend on the image.
func (c Config) Validate() error {
	if c.Workers < 0 {
		return fmt.Errorf("%w: workers must be >= 0, got %d", core.ErrConfig, c.Workers)
	}
	if c.Seams < 0 {
		return fmt.Errorf("%w: seam count must be >= 0, got %d", core.ErrConfig, c.Seams)
	}
	if !algorithms.IsValidTracer(c.Tracer) {
		return fmt.Errorf("%w: unknown tracer %q (have %v)", core.ErrConfig, c.Tracer, algorithms.TracerNames())
	}
	if !algorithms.IsValidBuilder(c.Builder) {
		return fmt.Errorf("%w: unknown acm builder %q (have %v)", core.ErrConfig, c.Builder, algorithms.BuilderNames())
	}
	if _, err := algorithms.ParseGradientMode(c.Gradient); err != nil {
		return err
	}
	switch c.Refresh {
	case RefreshWindowed, RefreshFull:
	default:
		return fmt.Errorf("%w: unknown refresh policy %q", core.ErrConfig, c.Refresh)
	}
	switch c.Backend {
	case BackendHost, BackendOpenCV:
	default:
		return fmt.Errorf("%w: unknown backend %q", core.ErrConfig, c.Backend)
	}
	return nil
}

// ValidateFor checks that the seam count can be carried out on an image of
// the given width. It runs before any buffer is narrowed.
func (c Config) ValidateFor(width int) error {
	if c.Seams > 0 && width-c.Seams < MinWidth {
		return fmt.Errorf("%w: cannot remove %d seams from a %d-column image; at most %d keeps the %d columns seam removal needs",
			core.ErrConfig, c.Seams, width, max(width-MinWidth, 0), MinWidth)
	}
	return nil
}
