package squeeze

import (
	"fmt"
	"image"

	"golang.org/x/image/draw"
)

// ScaledDimensions divides both dimensions by the same divisor, truncating.
// Results are clamped to 1 so a tiny source never yields an empty target.
func ScaledDimensions(width, height, divisor int) (int, int, error) {
	if divisor < 1 {
		return 0, 0, fmt.Errorf("%w: %w: %d", ErrInvalidDimension, ErrInvalidRatio, divisor)
	}

	return scaledDimension(width, divisor), scaledDimension(height, divisor), nil
}

// scaledDimension calculates one dimension of a downscaled image.
func scaledDimension(base, divisor int) int {
	result := base / divisor
	if result < 1 {
		return 1
	}

	return result
}

// Resample returns a new buffer of exactly width x height pixels with the
// same channel count. Shrinking averages the source area each destination
// pixel covers; any enlargement uses bilinear interpolation. Aspect ratio is
// not preserved automatically.
func Resample(buf *PixelBuffer, width, height int) (*PixelBuffer, error) {
	if width <= 0 || height <= 0 {
		return nil, fmt.Errorf("%w: target %dx%d", ErrInvalidDimension, width, height)
	}
	if err := buf.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidDimension, err)
	}

	switch {
	case width == buf.Width && height == buf.Height:
		return buf.Clone(), nil
	case width <= buf.Width && height <= buf.Height:
		return areaAverage(buf, width, height)
	default:
		return bilinear(buf, width, height)
	}
}

// contrib lists the source pixels feeding one destination pixel along an
// axis. weights[i] applies to source index first+i.
type contrib struct {
	first   int
	weights []uint64
}

// areaWeights computes exact coverage weights for shrinking src samples into
// dst samples. In units where a source sample spans dst and a destination
// sample spans src, destination d covers [d*src, (d+1)*src); weights of each
// destination sum to src.
func areaWeights(src, dst int) []contrib {
	out := make([]contrib, dst)
	for d := 0; d < dst; d++ {
		lo := d * src
		hi := lo + src
		first := lo / dst
		last := (hi - 1) / dst
		c := contrib{first: first, weights: make([]uint64, 0, last-first+1)}
		for i := first; i <= last; i++ {
			w := min(hi, (i+1)*dst) - max(lo, i*dst)
			c.weights = append(c.weights, uint64(w))
		}
		out[d] = c
	}

	return out
}

// areaAverage shrinks buf with a separable box filter: a horizontal pass
// into weighted row sums followed by a vertical pass with rounding.
func areaAverage(buf *PixelBuffer, width, height int) (*PixelBuffer, error) {
	out, err := NewPixelBuffer(width, height, buf.Channels)
	if err != nil {
		return nil, err
	}

	ch := buf.Channels
	xw := areaWeights(buf.Width, width)
	yw := areaWeights(buf.Height, height)

	// rows[y][x*ch+c] = sum of source samples weighted along x.
	rows := make([]uint64, buf.Height*width*ch)
	for y := 0; y < buf.Height; y++ {
		src := buf.Pix[y*buf.Stride():]
		dst := rows[y*width*ch:]
		for x, c := range xw {
			for i, w := range c.weights {
				s := src[(c.first+i)*ch:]
				for k := 0; k < ch; k++ {
					dst[x*ch+k] += w * uint64(s[k])
				}
			}
		}
	}

	den := uint64(buf.Width) * uint64(buf.Height)
	acc := make([]uint64, width*ch)
	for y, c := range yw {
		clear(acc)
		for i, w := range c.weights {
			row := rows[(c.first+i)*width*ch:]
			for j := range acc {
				acc[j] += w * row[j]
			}
		}
		dst := out.Pix[y*out.Stride():]
		for j, v := range acc {
			dst[j] = uint8((v + den/2) / den)
		}
	}

	return out, nil
}

// bilinear scales buf through golang.org/x/image/draw.
func bilinear(buf *PixelBuffer, width, height int) (*PixelBuffer, error) {
	src := buf.Image()
	rect := image.Rect(0, 0, width, height)

	if buf.Channels == ChannelsGray {
		dst := image.NewGray(rect)
		draw.BiLinear.Scale(dst, rect, src, src.Bounds(), draw.Src, nil)
		return &PixelBuffer{Width: width, Height: height, Channels: ChannelsGray, Pix: dst.Pix}, nil
	}

	dst := image.NewNRGBA(rect)
	draw.BiLinear.Scale(dst, rect, src, src.Bounds(), draw.Src, nil)
	if buf.Channels == ChannelsRGBA {
		return &PixelBuffer{Width: width, Height: height, Channels: ChannelsRGBA, Pix: dst.Pix}, nil
	}

	out, err := NewPixelBuffer(width, height, ChannelsRGB)
	if err != nil {
		return nil, err
	}
	for i, j := 0, 0; j < len(out.Pix); i, j = i+4, j+3 {
		out.Pix[j] = dst.Pix[i]
		out.Pix[j+1] = dst.Pix[i+1]
		out.Pix[j+2] = dst.Pix[i+2]
	}

	return out, nil
}
