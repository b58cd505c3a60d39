// Package config loads command line defaults from a YAML file.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"runtime"
	"strconv"

	"github.com/woozymasta/squeeze"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"
)

// Subsampling names accepted in the config file.
const (
	SubsamplingAuto = "auto"
	Subsampling420  = "420"
	Subsampling444  = "444"
)

// ErrInvalidConfig is wrapped by every validation failure.
var ErrInvalidConfig = errors.New("invalid configuration")

// Config holds settings shared by all commands.
type Config struct {
	Quality          int    `yaml:"quality"`           // Quality strategy level (0-100)
	OptimizedQuality int    `yaml:"optimized_quality"` // Optimized strategy level (0-100)
	Ratio            int    `yaml:"ratio"`             // Dimension strategy divisor
	SampleFactor     int    `yaml:"sample_factor"`     // Sample-rate strategy factor
	Subsampling      string `yaml:"subsampling"`       // Chroma mode: auto, 420, 444
	MaxPixels        int    `yaml:"max_pixels"`        // Largest accepted source
	Jobs             int    `yaml:"jobs"`              // Batch worker count
	FileMode         string `yaml:"file_mode"`         // Octal mode of written files
}

// Default returns a Config with the library defaults.
func Default() *Config {
	return &Config{
		Quality:          squeeze.DefaultQuality,
		OptimizedQuality: squeeze.DefaultOptimizedQuality,
		Ratio:            squeeze.DefaultRatio,
		SampleFactor:     4,
		Subsampling:      SubsamplingAuto,
		MaxPixels:        squeeze.DefaultMaxPixels,
		Jobs:             runtime.NumCPU(),
		FileMode:         "0644",
	}
}

// Load reads path over the defaults. Keys missing from the file keep their
// default values.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("error reading config file: %w", err)
	}

	cfg := Default()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("error parsing config file: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Validate checks value ranges.
func (c *Config) Validate() error {
	if c.Quality < 0 || c.Quality > 100 {
		return fmt.Errorf("%w: quality must be between 0 and 100", ErrInvalidConfig)
	}
	if c.OptimizedQuality < 0 || c.OptimizedQuality > 100 {
		return fmt.Errorf("%w: optimized_quality must be between 0 and 100", ErrInvalidConfig)
	}
	if c.Ratio < 1 {
		return fmt.Errorf("%w: ratio must be at least 1", ErrInvalidConfig)
	}
	if c.SampleFactor < 1 {
		return fmt.Errorf("%w: sample_factor must be at least 1", ErrInvalidConfig)
	}
	if _, err := c.chroma(); err != nil {
		return err
	}
	if c.MaxPixels < 0 {
		return fmt.Errorf("%w: max_pixels must not be negative", ErrInvalidConfig)
	}
	if c.Jobs < 1 {
		return fmt.Errorf("%w: jobs must be at least 1", ErrInvalidConfig)
	}
	if _, err := c.Mode(); err != nil {
		return err
	}

	return nil
}

// Mode parses FileMode. An empty value yields squeeze.DefaultFileMode.
func (c *Config) Mode() (fs.FileMode, error) {
	if c.FileMode == "" {
		return squeeze.DefaultFileMode, nil
	}

	mode, err := strconv.ParseUint(c.FileMode, 8, 32)
	if err != nil || mode == 0 || mode > 0o777 {
		return 0, fmt.Errorf("%w: file_mode %q is not an octal permission", ErrInvalidConfig, c.FileMode)
	}

	return fs.FileMode(mode), nil
}

func (c *Config) chroma() (squeeze.ChromaSubsampling, error) {
	switch c.Subsampling {
	case "", SubsamplingAuto:
		return squeeze.ChromaAuto, nil
	case Subsampling420:
		return squeeze.Chroma420, nil
	case Subsampling444:
		return squeeze.Chroma444, nil
	default:
		return 0, fmt.Errorf("%w: subsampling %q (want auto, 420 or 444)", ErrInvalidConfig, c.Subsampling)
	}
}

// Options builds compressor options. The config must be valid.
func (c *Config) Options(logger *zap.Logger) (*squeeze.Options, error) {
	chroma, err := c.chroma()
	if err != nil {
		return nil, err
	}
	mode, err := c.Mode()
	if err != nil {
		return nil, err
	}

	return &squeeze.Options{
		Codec: squeeze.NewJPEGCodec(&squeeze.CodecOptions{
			Subsampling: chroma,
			MaxPixels:   c.MaxPixels,
		}),
		Logger:           logger,
		Quality:          c.Quality,
		OptimizedQuality: c.OptimizedQuality,
		Ratio:            c.Ratio,
		FileMode:         mode,
	}, nil
}
