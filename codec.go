package squeeze

import (
	"bytes"
	"fmt"
	"image"
	"image/color"

	"github.com/woozymasta/squeeze/internal/jfif"
)

// DefaultMaxPixels bounds the pixel count of decoded sources (256 MiP).
const DefaultMaxPixels = 1 << 28

// Codec converts between pixel buffers and a compressed byte format.
// Implementations must be safe for concurrent use.
type Codec interface {
	// Encode compresses buf at quality 0..100. optimize selects the two-pass
	// encoder with image-specific entropy tables.
	Encode(buf *PixelBuffer, quality int, optimize bool) ([]byte, error)
	// Decode decompresses a complete byte stream.
	Decode(data []byte) (*PixelBuffer, error)
	// DecodeSampled decompresses data averaging each factor x factor block
	// into one pixel, producing floor(W/factor) x floor(H/factor) pixels
	// (at least 1). It also reports the source dimensions and format read
	// from the header.
	DecodeSampled(data []byte, factor int) (*PixelBuffer, SourceInfo, error)
}

// SourceInfo describes a decoded source stream.
type SourceInfo struct {
	Format string
	Width  int
	Height int
}

// ChromaSubsampling selects the chroma resolution of encoded color images.
type ChromaSubsampling int

const (
	// ChromaAuto keeps full chroma at quality 90 and above, halves it below.
	ChromaAuto ChromaSubsampling = iota
	// Chroma420 halves chroma resolution horizontally and vertically.
	Chroma420
	// Chroma444 keeps full chroma resolution.
	Chroma444
)

// CodecOptions configures a JPEGCodec.
type CodecOptions struct {
	// Subsampling of chroma planes for color images.
	Subsampling ChromaSubsampling
	// MaxPixels rejects larger sources before decoding. 0 uses DefaultMaxPixels.
	MaxPixels int
}

// JPEGCodec encodes baseline JPEG and decodes any registered image format
// (JPEG, PNG, GIF, BMP, TIFF, WebP).
type JPEGCodec struct {
	subsampling jfif.Subsampling
	maxPixels   int
}

// NewJPEGCodec creates a codec. Nil opts uses defaults.
func NewJPEGCodec(opts *CodecOptions) *JPEGCodec {
	c := &JPEGCodec{subsampling: jfif.SubsamplingAuto, maxPixels: DefaultMaxPixels}
	if opts == nil {
		return c
	}

	switch opts.Subsampling {
	case Chroma420:
		c.subsampling = jfif.Subsampling420
	case Chroma444:
		c.subsampling = jfif.Subsampling444
	}
	if opts.MaxPixels > 0 {
		c.maxPixels = opts.MaxPixels
	}

	return c
}

// Encode implements Codec.
func (c *JPEGCodec) Encode(buf *PixelBuffer, quality int, optimize bool) ([]byte, error) {
	if quality < 0 || quality > 100 {
		return nil, fmt.Errorf("%w: %w: %d", ErrEncode, ErrQualityRange, quality)
	}
	if buf == nil || buf.Width <= 0 || buf.Height <= 0 {
		return nil, fmt.Errorf("%w: %w", ErrEncode, ErrInvalidDimension)
	}
	if err := buf.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrEncode, err)
	}

	var out bytes.Buffer
	out.Grow(len(buf.Pix) / 8)
	err := jfif.Encode(&out, buf.Image(), &jfif.Options{
		Quality:         quality,
		OptimizeHuffman: optimize,
		Subsampling:     c.subsampling,
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrEncode, err)
	}

	return out.Bytes(), nil
}

// Decode implements Codec.
func (c *JPEGCodec) Decode(data []byte) (*PixelBuffer, error) {
	img, _, err := c.decodeImage(data)
	if err != nil {
		return nil, err
	}

	buf, err := FromImage(img)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrDecode, err)
	}

	return buf, nil
}

// DecodeSampled implements Codec. image/jpeg has no DCT-domain scaling, so
// the source is fully decoded first; the cost is one full-size decode plus a
// single pass over the planes. YCbCr and Gray sources are averaged directly
// on their planes so color conversion runs once per output pixel, and no
// full-size RGBA buffer is allocated.
func (c *JPEGCodec) DecodeSampled(data []byte, factor int) (*PixelBuffer, SourceInfo, error) {
	if factor < 1 {
		return nil, SourceInfo{}, fmt.Errorf("%w: %w: %d", ErrInvalidDimension, ErrInvalidSampleFactor, factor)
	}

	img, info, err := c.decodeImage(data)
	if err != nil {
		return nil, SourceInfo{}, err
	}

	b := img.Bounds()
	w, h := scaledDimension(b.Dx(), factor), scaledDimension(b.Dy(), factor)

	var buf *PixelBuffer
	switch src := img.(type) {
	case *image.YCbCr:
		buf, err = sampleYCbCr(src, w, h, factor)
	case *image.Gray:
		buf, err = sampleGray(src, w, h, factor)
	default:
		if buf, err = FromImage(img); err != nil {
			return nil, SourceInfo{}, fmt.Errorf("%w: %w", ErrDecode, err)
		}
		if factor > 1 {
			buf, err = Resample(buf, w, h)
		}
	}
	if err != nil {
		return nil, SourceInfo{}, err
	}

	return buf, info, nil
}

// decodeImage checks the header against the pixel limit, then decodes.
func (c *JPEGCodec) decodeImage(data []byte) (image.Image, SourceInfo, error) {
	if len(data) == 0 {
		return nil, SourceInfo{}, fmt.Errorf("%w: %w", ErrDecode, ErrEmptyInput)
	}

	cfg, format, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return nil, SourceInfo{}, fmt.Errorf("%w: %v", ErrDecode, err)
	}
	if cfg.Width <= 0 || cfg.Height <= 0 {
		return nil, SourceInfo{}, fmt.Errorf("%w: %w: %dx%d", ErrDecode, ErrInvalidDimension, cfg.Width, cfg.Height)
	}
	if n, err := mulInt(cfg.Width, cfg.Height); err != nil || n > c.maxPixels {
		return nil, SourceInfo{}, fmt.Errorf("%w: %w: %s %dx%d", ErrDecode, ErrSourceTooLarge, format, cfg.Width, cfg.Height)
	}

	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, SourceInfo{}, fmt.Errorf("%w: %s: %v", ErrDecode, format, err)
	}
	if b := img.Bounds(); b.Dx() <= 0 || b.Dy() <= 0 {
		return nil, SourceInfo{}, fmt.Errorf("%w: %w: %dx%d", ErrDecode, ErrInvalidDimension, b.Dx(), b.Dy())
	}

	return img, SourceInfo{Format: format, Width: cfg.Width, Height: cfg.Height}, nil
}

// blockSpan returns the source range averaged into output index o.
func blockSpan(o, factor, limit int) (int, int) {
	lo := o * factor
	hi := min(lo+factor, limit)
	return lo, hi
}

func sampleYCbCr(src *image.YCbCr, w, h, factor int) (*PixelBuffer, error) {
	out, err := NewPixelBuffer(w, h, ChannelsRGBA)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrDecode, err)
	}

	b := src.Rect
	for oy := 0; oy < h; oy++ {
		y0, y1 := blockSpan(oy, factor, b.Dy())
		for ox := 0; ox < w; ox++ {
			x0, x1 := blockSpan(ox, factor, b.Dx())
			var sy, scb, scr, n int
			for y := y0; y < y1; y++ {
				for x := x0; x < x1; x++ {
					sy += int(src.Y[src.YOffset(b.Min.X+x, b.Min.Y+y)])
					ci := src.COffset(b.Min.X+x, b.Min.Y+y)
					scb += int(src.Cb[ci])
					scr += int(src.Cr[ci])
					n++
				}
			}
			r, g, bl := color.YCbCrToRGB(
				uint8((sy+n/2)/n),  //nolint:gosec // average of uint8
				uint8((scb+n/2)/n), //nolint:gosec // average of uint8
				uint8((scr+n/2)/n), //nolint:gosec // average of uint8
			)
			i := oy*out.Stride() + ox*4
			out.Pix[i], out.Pix[i+1], out.Pix[i+2], out.Pix[i+3] = r, g, bl, 0xff
		}
	}

	return out, nil
}

func sampleGray(src *image.Gray, w, h, factor int) (*PixelBuffer, error) {
	out, err := NewPixelBuffer(w, h, ChannelsGray)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrDecode, err)
	}

	b := src.Rect
	for oy := 0; oy < h; oy++ {
		y0, y1 := blockSpan(oy, factor, b.Dy())
		for ox := 0; ox < w; ox++ {
			x0, x1 := blockSpan(ox, factor, b.Dx())
			var sum, n int
			for y := y0; y < y1; y++ {
				row := src.Pix[src.PixOffset(b.Min.X, b.Min.Y+y):]
				for x := x0; x < x1; x++ {
					sum += int(row[x])
					n++
				}
			}
			out.Pix[oy*w+ox] = uint8((sum + n/2) / n) //nolint:gosec // average of uint8
		}
	}

	return out, nil
}
