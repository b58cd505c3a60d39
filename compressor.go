package squeeze

import (
	"io/fs"

	"go.uber.org/zap"
)

// Fixed defaults of the path-based entry points.
const (
	// DefaultQuality is used by quality compression.
	DefaultQuality = 10
	// DefaultOptimizedQuality is used by optimized compression.
	DefaultOptimizedQuality = 20
	// DefaultRatio is used by dimension compression.
	DefaultRatio = 8
	// LosslessQuality re-encodes downscaled images with the finest quantizer.
	LosslessQuality = 100
)

// Options configures a Compressor. Zero fields take their defaults.
type Options struct {
	// Codec performs encode and decode. Nil uses NewJPEGCodec(nil).
	Codec Codec
	// Logger receives per-strategy debug records. Nil disables logging.
	Logger *zap.Logger
	// Quality of CompressByQuality; 0 uses DefaultQuality.
	Quality int
	// OptimizedQuality of CompressOptimized; 0 uses DefaultOptimizedQuality.
	OptimizedQuality int
	// Ratio of CompressByDimension; 0 uses DefaultRatio.
	Ratio int
	// FileMode of created destination files; 0 uses DefaultFileMode.
	FileMode fs.FileMode
}

// DefaultOptions returns the options New(nil) uses.
func DefaultOptions() *Options {
	return &Options{
		Codec:            NewJPEGCodec(nil),
		Logger:           zap.NewNop(),
		Quality:          DefaultQuality,
		OptimizedQuality: DefaultOptimizedQuality,
		Ratio:            DefaultRatio,
		FileMode:         DefaultFileMode,
	}
}

// Compressor runs compression strategies. It holds no per-request state and
// is safe for concurrent use.
type Compressor struct {
	codec            Codec
	log              *zap.Logger
	quality          int
	optimizedQuality int
	ratio            int
	fileMode         fs.FileMode
}

// New creates a Compressor. Nil opts uses DefaultOptions.
func New(opts *Options) *Compressor {
	def := DefaultOptions()
	if opts == nil {
		opts = def
	}

	c := &Compressor{
		codec:            opts.Codec,
		log:              opts.Logger,
		quality:          opts.Quality,
		optimizedQuality: opts.OptimizedQuality,
		ratio:            opts.Ratio,
		fileMode:         opts.FileMode,
	}
	if c.codec == nil {
		c.codec = def.Codec
	}
	if c.log == nil {
		c.log = def.Logger
	}
	if c.quality == 0 {
		c.quality = def.Quality
	}
	if c.optimizedQuality == 0 {
		c.optimizedQuality = def.OptimizedQuality
	}
	if c.ratio == 0 {
		c.ratio = def.Ratio
	}
	if c.fileMode == 0 {
		c.fileMode = def.FileMode
	}

	return c
}

// Codec returns the codec the compressor encodes with.
func (c *Compressor) Codec() Codec {
	return c.codec
}

func (c *Compressor) fileSink(path string) *FileSink {
	return &FileSink{Path: path, Mode: c.fileMode}
}
