package squeeze

import (
	"fmt"
	"os"
	"strings"

	"go.uber.org/zap"
)

// Strategy names one of the compression pipelines.
type Strategy int

const (
	// StrategyQuality re-encodes at a lower quality, keeping dimensions.
	StrategyQuality Strategy = iota + 1
	// StrategyDimension downscales by a ratio, then encodes at quality 100.
	StrategyDimension
	// StrategySampleRate sub-samples while decoding, then encodes at quality 100.
	StrategySampleRate
	// StrategyOptimized encodes with image-specific Huffman tables.
	StrategyOptimized
)

// String returns the strategy name used by ParseStrategy.
func (s Strategy) String() string {
	switch s {
	case StrategyQuality:
		return "quality"
	case StrategyDimension:
		return "dimension"
	case StrategySampleRate:
		return "sample"
	case StrategyOptimized:
		return "optimized"
	default:
		return fmt.Sprintf("Strategy(%d)", int(s))
	}
}

// ParseStrategy resolves a strategy name. "huffman" and "optimize" are
// accepted for StrategyOptimized, "ratio" for StrategyDimension.
func ParseStrategy(name string) (Strategy, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "quality":
		return StrategyQuality, nil
	case "dimension", "ratio":
		return StrategyDimension, nil
	case "sample", "samplerate", "sample-rate":
		return StrategySampleRate, nil
	case "optimized", "optimize", "huffman":
		return StrategyOptimized, nil
	default:
		return 0, fmt.Errorf("%w: %q", ErrUnknownStrategy, name)
	}
}

// Result describes one finished compression.
type Result struct {
	Strategy     Strategy
	SourceWidth  int
	SourceHeight int
	Width        int
	Height       int
	// Size is the number of encoded bytes handed to the sink.
	Size int
}

// Request is the generic input of Compress. Exactly one of Source and
// SourcePath must be set. Zero Quality and Ratio take the compressor
// defaults; SampleFactor is required for StrategySampleRate.
type Request struct {
	Strategy     Strategy
	Source       *PixelBuffer
	SourcePath   string
	Sink         Sink
	Quality      int
	Ratio        int
	SampleFactor int
}

// Validate checks the request shape without touching the source.
func (r *Request) Validate() error {
	if r == nil || (r.Source == nil) == (r.SourcePath == "") {
		return ErrAmbiguousSource
	}
	if err := checkSink(r.Sink); err != nil {
		return err
	}
	switch r.Strategy {
	case StrategyQuality, StrategyDimension, StrategyOptimized:
	case StrategySampleRate:
		if r.SampleFactor < 1 {
			return fmt.Errorf("%w: %w: %d", ErrInvalidDimension, ErrInvalidSampleFactor, r.SampleFactor)
		}
	default:
		return fmt.Errorf("%w: %d", ErrUnknownStrategy, int(r.Strategy))
	}

	return nil
}

// Compress dispatches req to its strategy. Buffer strategies given a path
// decode the file first; StrategySampleRate given a buffer falls back to an
// area-average resample.
func (c *Compressor) Compress(req *Request) (Result, error) {
	if err := req.Validate(); err != nil {
		return Result{}, err
	}

	if req.Strategy == StrategySampleRate {
		if req.SourcePath != "" {
			return c.SampleRate(req.SourcePath, req.Sink, req.SampleFactor)
		}
		return c.sampleBuffer(req.Source, req.Sink, req.SampleFactor)
	}

	buf := req.Source
	if buf == nil {
		var err error
		if buf, err = c.readFile(req.SourcePath); err != nil {
			return Result{}, err
		}
	}

	switch req.Strategy {
	case StrategyQuality:
		return c.Quality(buf, req.Sink, orDefault(req.Quality, c.quality))
	case StrategyDimension:
		return c.Dimension(buf, req.Sink, orDefault(req.Ratio, c.ratio))
	default:
		return c.Optimized(buf, req.Sink, orDefault(req.Quality, c.optimizedQuality))
	}
}

// Quality encodes buf at quality without touching its dimensions.
func (c *Compressor) Quality(buf *PixelBuffer, sink Sink, quality int) (Result, error) {
	if err := checkSink(sink); err != nil {
		return Result{}, err
	}

	return c.emit(StrategyQuality, buf, buf, sink, quality, false)
}

// Dimension shrinks buf to floor(W/ratio) x floor(H/ratio) with area
// averaging and encodes the result at quality 100.
func (c *Compressor) Dimension(buf *PixelBuffer, sink Sink, ratio int) (Result, error) {
	if err := checkSink(sink); err != nil {
		return Result{}, err
	}
	if ratio < 1 {
		return Result{}, c.fail(StrategyDimension, fmt.Errorf("%w: %w: %d", ErrInvalidDimension, ErrInvalidRatio, ratio))
	}
	if err := buf.Validate(); err != nil {
		return Result{}, c.fail(StrategyDimension, fmt.Errorf("%w: %w", ErrInvalidDimension, err))
	}

	small, err := Resample(buf, buf.Width/ratio, buf.Height/ratio)
	if err != nil {
		return Result{}, c.fail(StrategyDimension, err)
	}

	return c.emit(StrategyDimension, buf, small, sink, LosslessQuality, false)
}

// SampleRate decodes sourcePath keeping one pixel per factor x factor block
// and encodes the result at quality 100.
func (c *Compressor) SampleRate(sourcePath string, sink Sink, factor int) (Result, error) {
	if err := checkSink(sink); err != nil {
		return Result{}, err
	}
	if factor < 1 {
		return Result{}, c.fail(StrategySampleRate, fmt.Errorf("%w: %w: %d", ErrInvalidDimension, ErrInvalidSampleFactor, factor))
	}

	data, err := readSource(sourcePath)
	if err != nil {
		return Result{}, c.fail(StrategySampleRate, err)
	}
	small, info, err := c.codec.DecodeSampled(data, factor)
	if err != nil {
		return Result{}, c.fail(StrategySampleRate, err)
	}

	res, err := c.emit(StrategySampleRate, small, small, sink, LosslessQuality, false)
	if err != nil {
		return res, err
	}
	res.SourceWidth, res.SourceHeight = info.Width, info.Height

	return res, nil
}

// Optimized encodes buf at quality with two-pass Huffman optimisation.
func (c *Compressor) Optimized(buf *PixelBuffer, sink Sink, quality int) (Result, error) {
	if err := checkSink(sink); err != nil {
		return Result{}, err
	}

	return c.emit(StrategyOptimized, buf, buf, sink, quality, true)
}

// sampleBuffer applies sample-rate semantics to an already decoded buffer.
func (c *Compressor) sampleBuffer(buf *PixelBuffer, sink Sink, factor int) (Result, error) {
	if err := buf.Validate(); err != nil {
		return Result{}, c.fail(StrategySampleRate, fmt.Errorf("%w: %w", ErrInvalidDimension, err))
	}
	w, h, err := ScaledDimensions(buf.Width, buf.Height, factor)
	if err != nil {
		return Result{}, c.fail(StrategySampleRate, err)
	}

	small, err := Resample(buf, w, h)
	if err != nil {
		return Result{}, c.fail(StrategySampleRate, err)
	}

	return c.emit(StrategySampleRate, buf, small, sink, LosslessQuality, false)
}

// emit encodes out and hands the complete byte sequence to sink. Nothing is
// written when encoding fails.
func (c *Compressor) emit(s Strategy, src, out *PixelBuffer, sink Sink, quality int, optimize bool) (Result, error) {
	data, err := c.codec.Encode(out, quality, optimize)
	if err != nil {
		return Result{}, c.fail(s, err)
	}
	if err := sink.Put(data); err != nil {
		return Result{}, c.fail(s, err)
	}

	res := Result{
		Strategy:     s,
		SourceWidth:  src.Width,
		SourceHeight: src.Height,
		Width:        out.Width,
		Height:       out.Height,
		Size:         len(data),
	}
	c.log.Debug("image compressed",
		zap.Stringer("strategy", s),
		zap.Int("source_width", res.SourceWidth),
		zap.Int("source_height", res.SourceHeight),
		zap.Int("width", res.Width),
		zap.Int("height", res.Height),
		zap.Int("quality", quality),
		zap.Int("bytes", res.Size),
	)

	return res, nil
}

func (c *Compressor) fail(s Strategy, err error) error {
	c.log.Warn("compression failed", zap.Stringer("strategy", s), zap.Error(err))
	return err
}

// readFile decodes a source file with the compressor's codec.
func (c *Compressor) readFile(path string) (*PixelBuffer, error) {
	data, err := readSource(path)
	if err != nil {
		return nil, err
	}

	return c.codec.Decode(data)
}

func readSource(path string) ([]byte, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %w: %q: %v", ErrIO, ErrReadFile, path, err)
	}

	return data, nil
}

func checkSink(sink Sink) error {
	if sink == nil {
		return fmt.Errorf("%w: %w", ErrIO, ErrMissingSink)
	}
	return nil
}

func orDefault(v, def int) int {
	if v == 0 {
		return def
	}
	return v
}
