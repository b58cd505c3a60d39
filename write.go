package squeeze

// defaultCompressor backs the package-level entry points.
var defaultCompressor = New(nil)

// CompressByQuality writes buf to destinationPath at DefaultQuality.
func CompressByQuality(buf *PixelBuffer, destinationPath string) error {
	_, err := defaultCompressor.CompressByQuality(buf, destinationPath)
	return err
}

// CompressByDimension writes buf downscaled by DefaultRatio to destinationPath.
func CompressByDimension(buf *PixelBuffer, destinationPath string) error {
	_, err := defaultCompressor.CompressByDimension(buf, destinationPath)
	return err
}

// CompressBySampleRate decodes sourcePath sub-sampled by sampleFactor and
// writes the result to destinationPath.
func CompressBySampleRate(sourcePath, destinationPath string, sampleFactor int) error {
	_, err := defaultCompressor.CompressBySampleRate(sourcePath, destinationPath, sampleFactor)
	return err
}

// CompressOptimized writes buf to destinationPath at DefaultOptimizedQuality
// with optimized Huffman tables.
func CompressOptimized(buf *PixelBuffer, destinationPath string) error {
	_, err := defaultCompressor.CompressOptimized(buf, destinationPath)
	return err
}

// CompressByQuality writes buf to destinationPath at the configured quality.
// An existing destination is replaced.
func (c *Compressor) CompressByQuality(buf *PixelBuffer, destinationPath string) (Result, error) {
	return c.Quality(buf, c.fileSink(destinationPath), c.quality)
}

// CompressByDimension writes buf downscaled by the configured ratio.
func (c *Compressor) CompressByDimension(buf *PixelBuffer, destinationPath string) (Result, error) {
	return c.Dimension(buf, c.fileSink(destinationPath), c.ratio)
}

// CompressBySampleRate sub-samples sourcePath by sampleFactor while decoding.
func (c *Compressor) CompressBySampleRate(sourcePath, destinationPath string, sampleFactor int) (Result, error) {
	return c.SampleRate(sourcePath, c.fileSink(destinationPath), sampleFactor)
}

// CompressOptimized writes buf at the configured optimized quality.
func (c *Compressor) CompressOptimized(buf *PixelBuffer, destinationPath string) (Result, error) {
	return c.Optimized(buf, c.fileSink(destinationPath), c.optimizedQuality)
}
