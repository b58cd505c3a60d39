package squeeze

import (
	"bytes"
	"fmt"
	"image"
	_ "image/gif"  // GIF sources.
	_ "image/jpeg" // JPEG sources.
	_ "image/png"  // PNG sources.

	_ "golang.org/x/image/bmp"  // BMP sources.
	_ "golang.org/x/image/tiff" // TIFF sources.
	_ "golang.org/x/image/webp" // WebP sources.
)

// FormatJPEG is the name image.DecodeConfig reports for JPEG streams and the
// only format this package emits.
const FormatJPEG = "jpeg"

// jpegMagic is the SOI marker every JPEG stream starts with.
var jpegMagic = []byte{0xff, 0xd8}

// DetectFormat returns the registered format name and dimensions of data
// without decoding pixels.
func DetectFormat(data []byte) (string, image.Config, error) {
	if len(data) == 0 {
		return "", image.Config{}, fmt.Errorf("%w: %w", ErrDecode, ErrEmptyInput)
	}

	cfg, format, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return "", image.Config{}, fmt.Errorf("%w: %v", ErrDecode, err)
	}

	return format, cfg, nil
}

// IsJPEG reports whether data starts with a JPEG SOI marker.
func IsJPEG(data []byte) bool {
	return bytes.HasPrefix(data, jpegMagic)
}
