package squeeze

import (
	"fmt"
	"image"

	"golang.org/x/image/draw"
)

// Supported channel layouts.
const (
	// ChannelsGray is one 8-bit luminance sample per pixel.
	ChannelsGray = 1
	// ChannelsRGB is three 8-bit samples per pixel: red, green, blue.
	ChannelsRGB = 3
	// ChannelsRGBA is four 8-bit samples per pixel, alpha not premultiplied.
	ChannelsRGBA = 4
)

// PixelBuffer is a decoded raster image. Pix holds Height rows of
// Width*Channels samples each. A buffer handed to a strategy must not be
// modified while the strategy runs; strategies never modify it.
type PixelBuffer struct {
	Width    int
	Height   int
	Channels int
	Pix      []byte
}

// NewPixelBuffer allocates a zeroed buffer.
func NewPixelBuffer(width, height, channels int) (*PixelBuffer, error) {
	if width <= 0 || height <= 0 {
		return nil, fmt.Errorf("%w: %dx%d", ErrInvalidDimension, width, height)
	}
	if !validChannels(channels) {
		return nil, fmt.Errorf("%w: %w: %d", ErrInvalidDimension, ErrUnsupportedChannels, channels)
	}
	n, err := bufferLen(width, height, channels)
	if err != nil {
		return nil, fmt.Errorf("%w: %w: %dx%dx%d", ErrInvalidDimension, err, width, height, channels)
	}

	return &PixelBuffer{Width: width, Height: height, Channels: channels, Pix: make([]byte, n)}, nil
}

// FromImage copies img into a new buffer. Grayscale images become
// 1-channel buffers; everything else becomes 4-channel RGBA.
func FromImage(img image.Image) (*PixelBuffer, error) {
	b := img.Bounds()

	if g, ok := img.(*image.Gray); ok {
		buf, err := NewPixelBuffer(b.Dx(), b.Dy(), ChannelsGray)
		if err != nil {
			return nil, err
		}
		for y := 0; y < b.Dy(); y++ {
			off := g.PixOffset(b.Min.X, b.Min.Y+y)
			copy(buf.Pix[y*buf.Width:(y+1)*buf.Width], g.Pix[off:off+b.Dx()])
		}
		return buf, nil
	}

	buf, err := NewPixelBuffer(b.Dx(), b.Dy(), ChannelsRGBA)
	if err != nil {
		return nil, err
	}
	dst := &image.NRGBA{Pix: buf.Pix, Stride: buf.Stride(), Rect: image.Rect(0, 0, buf.Width, buf.Height)}
	draw.Draw(dst, dst.Rect, img, b.Min, draw.Src)

	return buf, nil
}

// Validate checks the buffer invariants.
func (b *PixelBuffer) Validate() error {
	if b == nil {
		return fmt.Errorf("%w: nil buffer", ErrInvalidDimension)
	}
	if b.Width <= 0 || b.Height <= 0 {
		return fmt.Errorf("%w: %dx%d", ErrInvalidDimension, b.Width, b.Height)
	}
	if !validChannels(b.Channels) {
		return fmt.Errorf("%w: %d", ErrUnsupportedChannels, b.Channels)
	}
	n, err := bufferLen(b.Width, b.Height, b.Channels)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidDimension, err)
	}
	if len(b.Pix) != n {
		return fmt.Errorf("%w: expected %d, got %d", ErrPixelLength, n, len(b.Pix))
	}

	return nil
}

// Stride returns the distance in bytes between vertically adjacent pixels.
func (b *PixelBuffer) Stride() int {
	return b.Width * b.Channels
}

// Bounds returns the buffer rectangle anchored at the origin.
func (b *PixelBuffer) Bounds() image.Rectangle {
	return image.Rect(0, 0, b.Width, b.Height)
}

// Image exposes the buffer as an image.Image. Gray and RGBA buffers share
// their pixel memory with the result; RGB buffers are expanded into a copy.
func (b *PixelBuffer) Image() image.Image {
	switch b.Channels {
	case ChannelsGray:
		return &image.Gray{Pix: b.Pix, Stride: b.Stride(), Rect: b.Bounds()}
	case ChannelsRGB:
		dst := image.NewNRGBA(b.Bounds())
		for i, j := 0, 0; i < len(b.Pix); i, j = i+3, j+4 {
			dst.Pix[j] = b.Pix[i]
			dst.Pix[j+1] = b.Pix[i+1]
			dst.Pix[j+2] = b.Pix[i+2]
			dst.Pix[j+3] = 0xff
		}
		return dst
	default:
		return &image.NRGBA{Pix: b.Pix, Stride: b.Stride(), Rect: b.Bounds()}
	}
}

// Clone returns a deep copy.
func (b *PixelBuffer) Clone() *PixelBuffer {
	pix := make([]byte, len(b.Pix))
	copy(pix, b.Pix)

	return &PixelBuffer{Width: b.Width, Height: b.Height, Channels: b.Channels, Pix: pix}
}

func validChannels(n int) bool {
	return n == ChannelsGray || n == ChannelsRGB || n == ChannelsRGBA
}
