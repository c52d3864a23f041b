package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"slices"
	"strings"

	"github.com/dixieflatline76/getnative/pkg/kernel"
	"gopkg.in/yaml.v3"
)

// Plot scalings accepted by PlotScaling.
const (
	PlotScalingLog    = "log"
	PlotScalingLinear = "linear"
)

// PlotFormats lists the image formats a plot can be written as.
var PlotFormats = []string{"png", "jpg", "jpeg", "gif", "tif", "tiff", "bmp"}

// ErrInvalid marks a configuration value that cannot be used.
var ErrInvalid = errors.New("invalid configuration")

// Config holds every user facing option of a run. The zero value is not
// useful; start from Default.
type Config struct {
	Start   int `yaml:"start"`
	End     int `yaml:"end"` // -1 means the frame count of the input
	Samples int `yaml:"samples"`
	Passes  int `yaml:"passes"`

	Kernel      string `yaml:"kernel"`
	BicubicB    string `yaml:"bicubic_b"`
	BicubicC    string `yaml:"bicubic_c"`
	LanczosTaps int    `yaml:"lanczos_taps"`
	Mode        string `yaml:"mode"` // runs a kernel preset instead of Kernel when set

	AspectRatio         float64 `yaml:"aspect_ratio"`
	MinHeight           int     `yaml:"min_height"`
	MaxHeight           int     `yaml:"max_height"`
	UpperBoundThreshold int     `yaml:"ub_thr"`
	Steps               int     `yaml:"steps"`

	OutputMask  bool   `yaml:"output_mask"`
	PlotScaling string `yaml:"plot_scaling"`
	PlotFormat  string `yaml:"plot_format"`
	ShowPlotGUI bool   `yaml:"show_plot_gui"`
	NoSave      bool   `yaml:"no_save"`
	OutputDir   string `yaml:"output_dir"`

	IsImage     bool   `yaml:"is_image"`
	Workers     int    `yaml:"workers"` // 0 means one per CPU
	MetricsFile string `yaml:"metrics_file"`
	Verbose     bool   `yaml:"verbose"`
}

// Default returns the stock configuration.
func Default() Config {
	return Config{
		End:                 -1,
		Samples:             5,
		Passes:              3,
		Kernel:              "bicubic",
		BicubicB:            "1/3",
		BicubicC:            "1/3",
		LanczosTaps:         3,
		MinHeight:           -1,
		MaxHeight:           -1,
		UpperBoundThreshold: 10,
		Steps:               1,
		PlotScaling:         PlotScalingLog,
		PlotFormat:          "png",
	}
}

// LoadFile reads a YAML file over the defaults. Unknown keys are rejected.
func LoadFile(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("reading config %s: %w", path, err)
	}
	cfg, err := Parse(data)
	if err != nil {
		return Config{}, fmt.Errorf("%s: %w", path, err)
	}
	return cfg, nil
}

// Parse decodes YAML over the defaults.
func Parse(data []byte) (Config, error) {
	cfg := Default()
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&cfg); err != nil && !errors.Is(err, io.EOF) {
		return Config{}, fmt.Errorf("%w: %v", ErrInvalid, err)
	}
	return cfg, nil
}

// Validate checks the values that do not depend on the input.
func (c Config) Validate() error {
	if c.Samples <= 0 {
		return fmt.Errorf("%w: samples must be positive, got %d", ErrInvalid, c.Samples)
	}
	if c.Passes < 0 {
		return fmt.Errorf("%w: passes must not be negative, got %d", ErrInvalid, c.Passes)
	}
	if c.Steps < 1 {
		return fmt.Errorf("%w: steps must be positive, got %d", ErrInvalid, c.Steps)
	}
	if c.Workers < 0 {
		return fmt.Errorf("%w: workers must not be negative, got %d", ErrInvalid, c.Workers)
	}
	if c.PlotScaling != PlotScalingLog && c.PlotScaling != PlotScalingLinear {
		return fmt.Errorf("%w: plot scaling %q, want %s or %s", ErrInvalid, c.PlotScaling, PlotScalingLog, PlotScalingLinear)
	}
	if _, err := c.PlotFormats(); err != nil {
		return err
	}
	if _, err := c.Kernels(); err != nil {
		return err
	}
	return nil
}

// PlotFormats splits the comma separated plot format list.
func (c Config) PlotFormats() ([]string, error) {
	var formats []string
	for _, f := range strings.Split(c.PlotFormat, ",") {
		f = strings.ToLower(strings.TrimSpace(f))
		if f == "" {
			continue
		}
		if !slices.Contains(PlotFormats, f) {
			return nil, fmt.Errorf("%w: plot format %q, want one of %s", ErrInvalid, f, strings.Join(PlotFormats, ", "))
		}
		formats = append(formats, f)
	}
	if len(formats) == 0 {
		return nil, fmt.Errorf("%w: no plot format", ErrInvalid)
	}
	return formats, nil
}

// Kernels returns the kernels to run: the Mode preset when set, otherwise the
// single configured Kernel.
func (c Config) Kernels() ([]kernel.Kernel, error) {
	if c.Mode != "" {
		ks, err := kernel.Preset(c.Mode)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrInvalid, err)
		}
		return ks, nil
	}
	b, err := kernel.ParseFloat(c.BicubicB)
	if err != nil {
		return nil, fmt.Errorf("%w: bicubic b %q: %v", ErrInvalid, c.BicubicB, err)
	}
	cc, err := kernel.ParseFloat(c.BicubicC)
	if err != nil {
		return nil, fmt.Errorf("%w: bicubic c %q: %v", ErrInvalid, c.BicubicC, err)
	}
	k, err := kernel.New(c.Kernel, b, cc, c.LanczosTaps)
	if err != nil {
		return nil, err
	}
	return []kernel.Kernel{k}, nil
}
