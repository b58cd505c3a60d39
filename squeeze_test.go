package squeeze

import (
	"bytes"
	"errors"
	"image"
	"image/color"
	"image/jpeg"
	"image/png"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/noxer/bytewriter"
)

// patternBuffer builds a deterministic RGBA buffer with mixed frequencies.
func patternBuffer(t testing.TB, width, height int) *PixelBuffer {
	t.Helper()

	buf, err := NewPixelBuffer(width, height, ChannelsRGBA)
	if err != nil {
		t.Fatalf("NewPixelBuffer: %v", err)
	}
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			i := y*buf.Stride() + x*4
			buf.Pix[i] = uint8((x*7 + y*3) & 0xff)          //nolint:gosec // bounded by mask
			buf.Pix[i+1] = uint8((x*13 + y*5) & 0xff)       //nolint:gosec // bounded by mask
			buf.Pix[i+2] = uint8((x ^ y ^ (x >> 2)) & 0xff) //nolint:gosec // bounded by mask
			buf.Pix[i+3] = 255
		}
	}

	return buf
}

// gradientBuffer builds a smooth RGBA buffer.
func gradientBuffer(t testing.TB, width, height int) *PixelBuffer {
	t.Helper()

	buf, err := NewPixelBuffer(width, height, ChannelsRGBA)
	if err != nil {
		t.Fatalf("NewPixelBuffer: %v", err)
	}
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			i := y*buf.Stride() + x*4
			buf.Pix[i] = uint8(x * 255 / max(width-1, 1))    //nolint:gosec // bounded
			buf.Pix[i+1] = uint8(y * 255 / max(height-1, 1)) //nolint:gosec // bounded
			buf.Pix[i+2] = 96
			buf.Pix[i+3] = 255
		}
	}

	return buf
}

func decodeFile(t *testing.T, path string) image.Image {
	t.Helper()

	f, err := os.Open(path)
	if err != nil {
		t.Fatalf("open %s: %v", path, err)
	}
	defer func() { _ = f.Close() }()

	img, err := jpeg.Decode(f)
	if err != nil {
		t.Fatalf("decode %s: %v", path, err)
	}

	return img
}

func writeJPEGSource(t *testing.T, buf *PixelBuffer, quality int) string {
	t.Helper()

	data, err := NewJPEGCodec(nil).Encode(buf, quality, false)
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}
	path := filepath.Join(t.TempDir(), "source.jpg")
	if err := os.WriteFile(path, data, 0o644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}

	return path
}

func TestCompressByDimensionEndToEnd(t *testing.T) {
	t.Parallel()

	buf := patternBuffer(t, 800, 600)
	path := filepath.Join(t.TempDir(), "dimension.jpg")

	if err := CompressByDimension(buf, path); err != nil {
		t.Fatalf("CompressByDimension: %v", err)
	}

	got := decodeFile(t, path)
	if got.Bounds().Dx() != 100 || got.Bounds().Dy() != 75 {
		t.Fatalf("unexpected size: %dx%d", got.Bounds().Dx(), got.Bounds().Dy())
	}
}

func TestCompressBySampleRateEndToEnd(t *testing.T) {
	t.Parallel()

	src := writeJPEGSource(t, gradientBuffer(t, 1600, 1200), 75)
	dst := filepath.Join(t.TempDir(), "sample.jpg")

	if err := CompressBySampleRate(src, dst, 4); err != nil {
		t.Fatalf("CompressBySampleRate: %v", err)
	}

	got := decodeFile(t, dst)
	if got.Bounds().Dx() != 400 || got.Bounds().Dy() != 300 {
		t.Fatalf("unexpected size: %dx%d", got.Bounds().Dx(), got.Bounds().Dy())
	}
}

func TestCompressByQualityKeepsDimensionsAndInput(t *testing.T) {
	t.Parallel()

	buf := patternBuffer(t, 120, 90)
	before := buf.Clone()
	path := filepath.Join(t.TempDir(), "quality.jpg")

	if err := CompressByQuality(buf, path); err != nil {
		t.Fatalf("CompressByQuality: %v", err)
	}

	got := decodeFile(t, path)
	if got.Bounds().Dx() != 120 || got.Bounds().Dy() != 90 {
		t.Fatalf("unexpected size: %dx%d", got.Bounds().Dx(), got.Bounds().Dy())
	}
	if !bytes.Equal(buf.Pix, before.Pix) {
		t.Fatalf("input buffer was modified")
	}
}

func TestCompressOptimizedSmallest(t *testing.T) {
	t.Parallel()

	c := New(nil)
	buf := patternBuffer(t, 160, 120)

	for _, quality := range []int{10, 20, 60} {
		var plain, optimized BufferSink
		if _, err := c.Quality(buf, &plain, quality); err != nil {
			t.Fatalf("Quality: %v", err)
		}
		res, err := c.Optimized(buf, &optimized, quality)
		if err != nil {
			t.Fatalf("Optimized: %v", err)
		}
		if res.Size != optimized.Len() {
			t.Fatalf("result size %d, sink holds %d", res.Size, optimized.Len())
		}
		if !IsJPEG(optimized.Bytes()) || !IsJPEG(plain.Bytes()) {
			t.Fatalf("quality %d: output is not a JPEG stream", quality)
		}
		if optimized.Len() > plain.Len() {
			t.Fatalf("quality %d: optimized %d > plain %d", quality, optimized.Len(), plain.Len())
		}

		got, err := jpeg.Decode(bytes.NewReader(optimized.Bytes()))
		if err != nil {
			t.Fatalf("decode optimized: %v", err)
		}
		if got.Bounds().Dx() != 160 || got.Bounds().Dy() != 120 {
			t.Fatalf("unexpected size: %v", got.Bounds())
		}
	}

	path := filepath.Join(t.TempDir(), "optimized.jpg")
	if err := CompressOptimized(buf, path); err != nil {
		t.Fatalf("CompressOptimized: %v", err)
	}
	_ = decodeFile(t, path)
}

func TestEncodeDecodeRoundTrip(t *testing.T) {
	t.Parallel()

	codec := NewJPEGCodec(nil)
	buf := gradientBuffer(t, 64, 40)

	data, err := codec.Encode(buf, 100, false)
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}
	got, err := codec.Decode(data)
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if got.Width != buf.Width || got.Height != buf.Height || got.Channels != ChannelsRGBA {
		t.Fatalf("unexpected buffer: %dx%dx%d", got.Width, got.Height, got.Channels)
	}

	for i := range buf.Pix {
		d := int(buf.Pix[i]) - int(got.Pix[i])
		if d < -8 || d > 8 {
			t.Fatalf("sample %d differs by %d", i, d)
		}
	}
}

func TestEncodeSizeMonotonicInQuality(t *testing.T) {
	t.Parallel()

	codec := NewJPEGCodec(nil)
	for _, buf := range []*PixelBuffer{
		patternBuffer(t, 96, 64),
		gradientBuffer(t, 96, 64),
		patternBuffer(t, 33, 17),
	} {
		low, err := codec.Encode(buf, 10, false)
		if err != nil {
			t.Fatalf("Encode q10: %v", err)
		}
		high, err := codec.Encode(buf, 90, false)
		if err != nil {
			t.Fatalf("Encode q90: %v", err)
		}
		if len(low) > len(high) {
			t.Fatalf("%dx%d: q10 %d bytes > q90 %d bytes", buf.Width, buf.Height, len(low), len(high))
		}
	}
}

func TestEncodeErrors(t *testing.T) {
	t.Parallel()

	codec := NewJPEGCodec(nil)
	valid := patternBuffer(t, 8, 8)

	tests := []struct {
		name    string
		buf     *PixelBuffer
		quality int
		wantErr []error
	}{
		{name: "quality-150", buf: valid, quality: 150, wantErr: []error{ErrEncode, ErrQualityRange}},
		{name: "quality-negative", buf: valid, quality: -1, wantErr: []error{ErrEncode, ErrQualityRange}},
		{name: "nil-buffer", buf: nil, quality: 50, wantErr: []error{ErrEncode, ErrInvalidDimension}},
		{name: "zero-width", buf: &PixelBuffer{Width: 0, Height: 4, Channels: 4}, quality: 50, wantErr: []error{ErrEncode, ErrInvalidDimension}},
		{name: "two-channels", buf: &PixelBuffer{Width: 2, Height: 2, Channels: 2, Pix: make([]byte, 8)}, quality: 50, wantErr: []error{ErrEncode, ErrUnsupportedChannels}},
		{name: "short-pix", buf: &PixelBuffer{Width: 2, Height: 2, Channels: 4, Pix: make([]byte, 15)}, quality: 50, wantErr: []error{ErrEncode, ErrPixelLength}},
	}

	for _, tc := range tests {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			_, err := codec.Encode(tc.buf, tc.quality, false)
			for _, want := range tc.wantErr {
				if !errors.Is(err, want) {
					t.Fatalf("expected error %v, got %v", want, err)
				}
			}
		})
	}
}

func TestDecodeErrors(t *testing.T) {
	t.Parallel()

	codec := NewJPEGCodec(nil)
	valid, err := codec.Encode(patternBuffer(t, 32, 32), 50, false)
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}

	tests := []struct {
		name string
		data []byte
	}{
		{name: "empty", data: nil},
		{name: "zero-length", data: []byte{}},
		{name: "garbage", data: []byte("definitely not an image")},
		{name: "truncated", data: valid[:len(valid)/2]},
		{name: "header-only", data: valid[:2]},
	}

	for _, tc := range tests {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			buf, err := codec.Decode(tc.data)
			if !errors.Is(err, ErrDecode) {
				t.Fatalf("expected ErrDecode, got %v", err)
			}
			if buf != nil {
				t.Fatalf("expected nil buffer, got %dx%d", buf.Width, buf.Height)
			}
		})
	}

	if _, err := codec.Decode(nil); !errors.Is(err, ErrEmptyInput) {
		t.Fatalf("expected ErrEmptyInput, got %v", err)
	}
}

func TestDecodeMaxPixels(t *testing.T) {
	t.Parallel()

	data, err := NewJPEGCodec(nil).Encode(patternBuffer(t, 20, 20), 50, false)
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}

	_, err = NewJPEGCodec(&CodecOptions{MaxPixels: 100}).Decode(data)
	if !errors.Is(err, ErrDecode) || !errors.Is(err, ErrSourceTooLarge) {
		t.Fatalf("expected ErrSourceTooLarge, got %v", err)
	}
}

func TestDecodeSampled(t *testing.T) {
	t.Parallel()

	codec := NewJPEGCodec(nil)
	color420, err := codec.Encode(gradientBuffer(t, 50, 30), 75, false)
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}

	grayBuf, err := NewPixelBuffer(50, 30, ChannelsGray)
	if err != nil {
		t.Fatalf("NewPixelBuffer: %v", err)
	}
	for i := range grayBuf.Pix {
		grayBuf.Pix[i] = uint8(i % 251) //nolint:gosec // bounded
	}
	gray, err := codec.Encode(grayBuf, 90, false)
	if err != nil {
		t.Fatalf("Encode gray: %v", err)
	}

	var pngData bytes.Buffer
	if err := png.Encode(&pngData, gradientBuffer(t, 50, 30).Image()); err != nil {
		t.Fatalf("png.Encode: %v", err)
	}

	tests := []struct {
		name         string
		format       string
		data         []byte
		factor       int
		wantW, wantH int
		wantChannels int
	}{
		{name: "ycbcr-2", format: FormatJPEG, data: color420, factor: 2, wantW: 25, wantH: 15, wantChannels: ChannelsRGBA},
		{name: "ycbcr-4", format: FormatJPEG, data: color420, factor: 4, wantW: 12, wantH: 7, wantChannels: ChannelsRGBA},
		{name: "ycbcr-1", format: FormatJPEG, data: color420, factor: 1, wantW: 50, wantH: 30, wantChannels: ChannelsRGBA},
		{name: "ycbcr-oversized", format: FormatJPEG, data: color420, factor: 64, wantW: 1, wantH: 1, wantChannels: ChannelsRGBA},
		{name: "gray-3", format: FormatJPEG, data: gray, factor: 3, wantW: 16, wantH: 10, wantChannels: ChannelsGray},
		{name: "png-4", format: "png", data: pngData.Bytes(), factor: 4, wantW: 12, wantH: 7, wantChannels: ChannelsRGBA},
	}

	for _, tc := range tests {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			got, info, err := codec.DecodeSampled(tc.data, tc.factor)
			if err != nil {
				t.Fatalf("DecodeSampled: %v", err)
			}
			if info.Format != tc.format || info.Width != 50 || info.Height != 30 {
				t.Fatalf("unexpected source info %+v", info)
			}
			if got.Width != tc.wantW || got.Height != tc.wantH || got.Channels != tc.wantChannels {
				t.Fatalf("got %dx%dx%d, want %dx%dx%d", got.Width, got.Height, got.Channels, tc.wantW, tc.wantH, tc.wantChannels)
			}
			if err := got.Validate(); err != nil {
				t.Fatalf("Validate: %v", err)
			}
		})
	}

	if _, _, err := codec.DecodeSampled(color420, 0); !errors.Is(err, ErrInvalidSampleFactor) {
		t.Fatalf("expected ErrInvalidSampleFactor, got %v", err)
	}
}

func TestEncodeFailureLeavesDestinationUntouched(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "keep.jpg")
	if err := os.WriteFile(path, []byte("old"), 0o644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}

	c := New(nil)
	if _, err := c.Quality(patternBuffer(t, 8, 8), NewFileSink(path), 150); !errors.Is(err, ErrEncode) {
		t.Fatalf("expected ErrEncode, got %v", err)
	}

	got, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("ReadFile: %v", err)
	}
	if string(got) != "old" {
		t.Fatalf("destination changed: %q", got)
	}
}

func TestFileSinkReplacesExisting(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "out.jpg")
	if err := os.WriteFile(path, bytes.Repeat([]byte{1}, 4096), 0o600); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}

	if err := NewFileSink(path).Put([]byte("new")); err != nil {
		t.Fatalf("Put: %v", err)
	}

	got, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("ReadFile: %v", err)
	}
	if string(got) != "new" {
		t.Fatalf("unexpected content: %q", got)
	}
}

func TestFileSinkErrors(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	tests := []struct {
		name    string
		path    string
		wantErr error
	}{
		{name: "missing-dir", path: filepath.Join(dir, "nope", "out.jpg"), wantErr: ErrCreateFile},
		{name: "directory", path: dir, wantErr: ErrRemoveFile},
	}

	// A non-empty directory cannot be removed.
	if err := os.WriteFile(filepath.Join(dir, "child"), []byte("x"), 0o644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}

	for _, tc := range tests {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			err := NewFileSink(tc.path).Put([]byte("data"))
			if !errors.Is(err, ErrIO) || !errors.Is(err, tc.wantErr) {
				t.Fatalf("expected %v, got %v", tc.wantErr, err)
			}
		})
	}
}

func TestWriterSinkFixedBuffer(t *testing.T) {
	t.Parallel()

	backing := make([]byte, 1<<20)
	res, err := New(nil).Optimized(gradientBuffer(t, 48, 32), WriterSink{W: bytewriter.New(backing)}, 30)
	if err != nil {
		t.Fatalf("Optimized: %v", err)
	}

	got, err := jpeg.Decode(bytes.NewReader(backing[:res.Size]))
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if got.Bounds().Dx() != 48 || got.Bounds().Dy() != 32 {
		t.Fatalf("unexpected size: %v", got.Bounds())
	}
}

func TestRequestValidate(t *testing.T) {
	t.Parallel()

	buf := patternBuffer(t, 8, 8)
	sink := &BufferSink{}

	tests := []struct {
		name    string
		req     *Request
		wantErr error
	}{
		{name: "nil", req: nil, wantErr: ErrAmbiguousSource},
		{name: "no-source", req: &Request{Strategy: StrategyQuality, Sink: sink}, wantErr: ErrAmbiguousSource},
		{name: "both-sources", req: &Request{Strategy: StrategyQuality, Source: buf, SourcePath: "x.jpg", Sink: sink}, wantErr: ErrAmbiguousSource},
		{name: "no-sink", req: &Request{Strategy: StrategyQuality, Source: buf}, wantErr: ErrMissingSink},
		{name: "unknown-strategy", req: &Request{Strategy: 42, Source: buf, Sink: sink}, wantErr: ErrUnknownStrategy},
		{name: "sample-factor-zero", req: &Request{Strategy: StrategySampleRate, Source: buf, Sink: sink}, wantErr: ErrInvalidSampleFactor},
	}

	for _, tc := range tests {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			if _, err := New(nil).Compress(tc.req); !errors.Is(err, tc.wantErr) {
				t.Fatalf("expected error %v, got %v", tc.wantErr, err)
			}
		})
	}
}

func TestCompressRequest(t *testing.T) {
	t.Parallel()

	src := writeJPEGSource(t, gradientBuffer(t, 64, 48), 90)
	buf := gradientBuffer(t, 64, 48)
	c := New(&Options{Ratio: 4})

	tests := []struct {
		name         string
		req          Request
		wantW, wantH int
	}{
		{name: "quality-buffer", req: Request{Strategy: StrategyQuality, Source: buf}, wantW: 64, wantH: 48},
		{name: "quality-path", req: Request{Strategy: StrategyQuality, SourcePath: src, Quality: 50}, wantW: 64, wantH: 48},
		{name: "dimension-default-ratio", req: Request{Strategy: StrategyDimension, Source: buf}, wantW: 16, wantH: 12},
		{name: "dimension-path", req: Request{Strategy: StrategyDimension, SourcePath: src, Ratio: 8}, wantW: 8, wantH: 6},
		{name: "sample-path", req: Request{Strategy: StrategySampleRate, SourcePath: src, SampleFactor: 2}, wantW: 32, wantH: 24},
		{name: "sample-buffer", req: Request{Strategy: StrategySampleRate, Source: buf, SampleFactor: 3}, wantW: 21, wantH: 16},
		{name: "optimized-path", req: Request{Strategy: StrategyOptimized, SourcePath: src}, wantW: 64, wantH: 48},
	}

	for _, tc := range tests {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			sink := &BufferSink{}
			req := tc.req
			req.Sink = sink

			res, err := c.Compress(&req)
			if err != nil {
				t.Fatalf("Compress: %v", err)
			}
			if res.Strategy != tc.req.Strategy {
				t.Fatalf("strategy %v, want %v", res.Strategy, tc.req.Strategy)
			}

			cfg, err := jpeg.DecodeConfig(bytes.NewReader(sink.Bytes()))
			if err != nil {
				t.Fatalf("DecodeConfig: %v", err)
			}
			if cfg.Width != tc.wantW || cfg.Height != tc.wantH || res.Width != tc.wantW || res.Height != tc.wantH {
				t.Fatalf("got %dx%d (result %dx%d), want %dx%d", cfg.Width, cfg.Height, res.Width, res.Height, tc.wantW, tc.wantH)
			}
			if res.SourceWidth != 64 || res.SourceHeight != 48 {
				t.Fatalf("source %dx%d, want 64x48", res.SourceWidth, res.SourceHeight)
			}
		})
	}
}

func TestStrategyErrors(t *testing.T) {
	t.Parallel()

	c := New(nil)
	buf := patternBuffer(t, 16, 16)
	sink := &BufferSink{}

	if _, err := c.Dimension(buf, sink, 0); !errors.Is(err, ErrInvalidRatio) || !errors.Is(err, ErrInvalidDimension) {
		t.Fatalf("expected ErrInvalidRatio, got %v", err)
	}
	if _, err := c.Dimension(buf, sink, 32); !errors.Is(err, ErrInvalidDimension) {
		t.Fatalf("expected ErrInvalidDimension, got %v", err)
	}
	if _, err := c.SampleRate(filepath.Join(t.TempDir(), "missing.jpg"), sink, 2); !errors.Is(err, ErrIO) {
		t.Fatalf("expected ErrIO, got %v", err)
	}
	garbage := filepath.Join(t.TempDir(), "garbage.jpg")
	if err := os.WriteFile(garbage, []byte("not an image"), 0o644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
	if _, err := c.SampleRate(garbage, sink, 2); !errors.Is(err, ErrDecode) {
		t.Fatalf("expected ErrDecode, got %v", err)
	}
	if _, err := c.Quality(buf, nil, 50); !errors.Is(err, ErrMissingSink) {
		t.Fatalf("expected ErrMissingSink, got %v", err)
	}
	if sink.Len() != 0 {
		t.Fatalf("sink written on failure: %d bytes", sink.Len())
	}
}

func TestParseStrategy(t *testing.T) {
	t.Parallel()

	tests := []struct {
		in   string
		want Strategy
	}{
		{in: "quality", want: StrategyQuality},
		{in: "Dimension", want: StrategyDimension},
		{in: " sample ", want: StrategySampleRate},
		{in: "huffman", want: StrategyOptimized},
		{in: "optimized", want: StrategyOptimized},
	}

	for _, tc := range tests {
		got, err := ParseStrategy(tc.in)
		if err != nil || got != tc.want {
			t.Fatalf("ParseStrategy(%q) = %v, %v; want %v", tc.in, got, err, tc.want)
		}
		if back, _ := ParseStrategy(got.String()); back != got {
			t.Fatalf("String round trip failed for %v", got)
		}
	}

	if _, err := ParseStrategy("zip"); !errors.Is(err, ErrUnknownStrategy) {
		t.Fatalf("expected ErrUnknownStrategy, got %v", err)
	}
}

func TestConcurrentStrategies(t *testing.T) {
	t.Parallel()

	c := New(nil)
	src := writeJPEGSource(t, gradientBuffer(t, 64, 64), 80)

	var wg sync.WaitGroup
	errs := make(chan error, 16)
	for i := 0; i < 4; i++ {
		buf := patternBuffer(t, 64, 64)
		wg.Add(4)
		go func() {
			defer wg.Done()
			_, err := c.Quality(buf, &BufferSink{}, 10)
			errs <- err
		}()
		go func() {
			defer wg.Done()
			_, err := c.Dimension(buf, &BufferSink{}, 8)
			errs <- err
		}()
		go func() {
			defer wg.Done()
			_, err := c.SampleRate(src, &BufferSink{}, 4)
			errs <- err
		}()
		go func() {
			defer wg.Done()
			_, err := c.Optimized(buf, &BufferSink{}, 20)
			errs <- err
		}()
	}
	wg.Wait()
	close(errs)

	for err := range errs {
		if err != nil {
			t.Fatalf("concurrent strategy: %v", err)
		}
	}
}

func TestReadAndReadConfig(t *testing.T) {
	t.Parallel()

	path := writeJPEGSource(t, gradientBuffer(t, 40, 24), 90)

	cfg, format, err := ReadConfig(path)
	if err != nil {
		t.Fatalf("ReadConfig: %v", err)
	}
	if format != FormatJPEG || cfg.Width != 40 || cfg.Height != 24 {
		t.Fatalf("unexpected config: %s %dx%d", format, cfg.Width, cfg.Height)
	}

	buf, err := Read(path)
	if err != nil {
		t.Fatalf("Read: %v", err)
	}
	if buf.Width != 40 || buf.Height != 24 {
		t.Fatalf("unexpected size: %dx%d", buf.Width, buf.Height)
	}

	if _, err := Read(filepath.Join(t.TempDir(), "missing.png")); !errors.Is(err, ErrIO) {
		t.Fatalf("expected ErrIO, got %v", err)
	}
	if _, _, err := ReadConfig(filepath.Join(t.TempDir(), "missing.png")); !errors.Is(err, ErrOpenFile) {
		t.Fatalf("expected ErrOpenFile, got %v", err)
	}
}

func TestPixelBuffer(t *testing.T) {
	t.Parallel()

	if _, err := NewPixelBuffer(0, 3, ChannelsRGBA); !errors.Is(err, ErrInvalidDimension) {
		t.Fatalf("expected ErrInvalidDimension, got %v", err)
	}
	if _, err := NewPixelBuffer(3, 3, 5); !errors.Is(err, ErrUnsupportedChannels) {
		t.Fatalf("expected ErrUnsupportedChannels, got %v", err)
	}

	gray := image.NewGray(image.Rect(2, 3, 7, 6))
	for i := range gray.Pix {
		gray.Pix[i] = uint8(i) //nolint:gosec // bounded
	}
	buf, err := FromImage(gray.SubImage(image.Rect(3, 4, 7, 6)))
	if err != nil {
		t.Fatalf("FromImage gray: %v", err)
	}
	if buf.Channels != ChannelsGray || buf.Width != 4 || buf.Height != 2 {
		t.Fatalf("unexpected gray buffer %dx%dx%d", buf.Width, buf.Height, buf.Channels)
	}
	if buf.Pix[0] != gray.GrayAt(3, 4).Y || buf.Pix[5] != gray.GrayAt(4, 5).Y {
		t.Fatalf("gray samples not copied from sub-image")
	}

	rgba := image.NewRGBA(image.Rect(0, 0, 2, 1))
	rgba.SetRGBA(1, 0, color.RGBA{R: 10, G: 20, B: 30, A: 255})
	buf, err = FromImage(rgba)
	if err != nil {
		t.Fatalf("FromImage rgba: %v", err)
	}
	if buf.Channels != ChannelsRGBA || !bytes.Equal(buf.Pix[4:8], []byte{10, 20, 30, 255}) {
		t.Fatalf("unexpected rgba buffer %v", buf.Pix)
	}

	rgb := &PixelBuffer{Width: 1, Height: 1, Channels: ChannelsRGB, Pix: []byte{1, 2, 3}}
	if c := rgb.Image().(*image.NRGBA).NRGBAAt(0, 0); c != (color.NRGBA{R: 1, G: 2, B: 3, A: 255}) {
		t.Fatalf("unexpected RGB expansion %v", c)
	}
}

func TestDetectFormat(t *testing.T) {
	t.Parallel()

	data, err := NewJPEGCodec(nil).Encode(gradientBuffer(t, 24, 10), 50, false)
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}

	format, cfg, err := DetectFormat(data)
	if err != nil {
		t.Fatalf("DetectFormat: %v", err)
	}
	if format != FormatJPEG || cfg.Width != 24 || cfg.Height != 10 {
		t.Fatalf("unexpected result: %s %dx%d", format, cfg.Width, cfg.Height)
	}

	if _, _, err := DetectFormat(nil); !errors.Is(err, ErrEmptyInput) {
		t.Fatalf("expected ErrEmptyInput, got %v", err)
	}
}
