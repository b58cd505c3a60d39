/*
Package squeeze shrinks decoded raster images into baseline JPEG files.

Four independent strategies trade file size against fidelity and CPU:

  - quality: re-encode at a low quality, keeping dimensions;
  - dimension: area-average downscale by a ratio, encode at quality 100;
  - sample rate: sub-sample while decoding a source file, encode at quality 100;
  - optimized: encode with Huffman tables built from the image's own symbol
    statistics (two passes, smallest output, highest CPU cost).

Each strategy is a self-contained pipeline: optional resample, encode, then
one write of the complete byte sequence to a Sink. Nothing is written when an
earlier stage fails. The Codec is injected into the Compressor; the default
JPEGCodec writes JPEG and reads JPEG, PNG, GIF, BMP, TIFF and WebP sources.
*/
package squeeze
