package squeeze

import (
	"fmt"
	"image"
	"os"
)

// ReadConfig reads a source file's format and dimensions without decoding
// pixel data.
func ReadConfig(path string) (image.Config, string, error) {
	f, err := os.Open(path)
	if err != nil {
		return image.Config{}, "", fmt.Errorf("%w: %w: %q: %v", ErrIO, ErrOpenFile, path, err)
	}
	defer func() { _ = f.Close() }()

	cfg, format, err := image.DecodeConfig(f)
	if err != nil {
		return image.Config{}, "", fmt.Errorf("%w: %q: %v", ErrDecode, path, err)
	}

	return cfg, format, nil
}

// Read reads and decodes a source file into a pixel buffer.
func Read(path string) (*PixelBuffer, error) {
	return ReadWithCodec(path, nil)
}

// ReadWithCodec reads and decodes a source file with the given codec.
// Nil codec uses NewJPEGCodec(nil).
func ReadWithCodec(path string, codec Codec) (*PixelBuffer, error) {
	if codec == nil {
		codec = NewJPEGCodec(nil)
	}

	data, err := readSource(path)
	if err != nil {
		return nil, err
	}

	return codec.Decode(data)
}
