// Package jfif writes baseline (sequential DCT, Huffman) JPEG streams in a
// JFIF container. Streams use either the Annex K default Huffman tables or
// tables optimised for the image in a second pass over its coefficients.
package jfif

import (
	"bufio"
	"errors"
	"fmt"
	"image"
	"image/color"
	"io"
	"math"
)

// DefaultQuality is used when Encode is given nil options.
const DefaultQuality = 75

// maxDimension is the largest width or height a SOF0 header can carry.
const maxDimension = 1<<16 - 1

var (
	// ErrInvalidQuality indicates a quality outside [0,100].
	ErrInvalidQuality = errors.New("quality out of range")
	// ErrEmptyImage indicates an image without pixels.
	ErrEmptyImage = errors.New("empty image")
	// ErrImageTooLarge indicates a dimension beyond what JPEG can describe.
	ErrImageTooLarge = errors.New("image too large")
)

// Subsampling selects the chroma sampling layout of color images.
type Subsampling int

const (
	// SubsamplingAuto uses 4:4:4 at quality 90 and above, 4:2:0 below.
	SubsamplingAuto Subsampling = iota
	// Subsampling420 halves chroma resolution in both directions.
	Subsampling420
	// Subsampling444 keeps full chroma resolution.
	Subsampling444
)

// autoFullChromaQuality is the quality from which SubsamplingAuto keeps
// full-resolution chroma.
const autoFullChromaQuality = 90

// Options are the encoding parameters.
type Options struct {
	// Quality ranges from 0 to 100 inclusive, higher is better.
	Quality int
	// OptimizeHuffman builds per-image Huffman tables in a second pass.
	OptimizeHuffman bool
	// Subsampling selects the chroma layout; ignored for grayscale.
	Subsampling Subsampling
}

// component describes one color channel of the frame.
type component struct {
	id    uint8
	h, v  int // sampling factors
	table int // quantization and Huffman table destination
}

// unit is one quantized 8x8 block in zig-zag order.
type unit struct {
	comp int
	coef [blockSize]int32
}

// plane is an edge-padded sample plane.
type plane struct {
	w, h int
	pix  []uint8
}

type encoder struct {
	quant [nQuantIndex][blockSize]byte
	comps []component
	units []unit
	specs []huffmanSpec
}

// Encode writes m to w as a baseline JPEG.
func Encode(w io.Writer, m image.Image, o *Options) error {
	b := m.Bounds()
	if b.Dx() <= 0 || b.Dy() <= 0 {
		return fmt.Errorf("%w: %dx%d", ErrEmptyImage, b.Dx(), b.Dy())
	}
	if b.Dx() > maxDimension || b.Dy() > maxDimension {
		return fmt.Errorf("%w: %dx%d", ErrImageTooLarge, b.Dx(), b.Dy())
	}

	quality := DefaultQuality
	optimize := false
	sub := SubsamplingAuto
	if o != nil {
		if o.Quality < 0 || o.Quality > 100 {
			return fmt.Errorf("%w: %d", ErrInvalidQuality, o.Quality)
		}
		quality = o.Quality
		optimize = o.OptimizeHuffman
		sub = o.Subsampling
	}
	if sub == SubsamplingAuto {
		sub = Subsampling420
		if quality >= autoFullChromaQuality {
			sub = Subsampling444
		}
	}

	e := &encoder{quant: scaleQuant(quality)}
	e.prepare(m, sub)

	nTables := 1
	if len(e.comps) > 1 {
		nTables = 2
	}
	e.specs = make([]huffmanSpec, 2*nTables)
	if optimize {
		var counter symbolCounter
		e.scan(&counter)
		for i := range e.specs {
			e.specs[i] = optimalSpec(&counter.freq[i])
		}
	} else {
		copy(e.specs, defaultHuffmanSpec[:])
	}

	bw := &bitWriter{w: bufio.NewWriter(w)}
	luts := make([]huffmanLUT, len(e.specs))
	for i, s := range e.specs {
		luts[i].init(s)
		bw.lut[i] = &luts[i]
	}

	bw.writeMarker(markerSOI)
	bw.writeAPP0()
	bw.writeDQT(&e.quant, nTables)
	bw.writeSOF(b.Dx(), b.Dy(), e.comps)
	bw.writeDHT(e.specs)
	bw.writeSOSHeader(e.comps)
	e.scan(bw)
	bw.padScan()
	bw.writeMarker(markerEOI)
	bw.flush()

	return bw.err
}

// prepare converts m into padded planes and transforms them into quantized
// blocks in MCU order.
func (e *encoder) prepare(m image.Image, sub Subsampling) {
	b := m.Bounds()
	gray := isGray(m)

	if gray {
		e.comps = []component{{id: 1, h: 1, v: 1, table: 0}}
	} else {
		yh := 1
		if sub == Subsampling420 {
			yh = 2
		}
		e.comps = []component{
			{id: 1, h: yh, v: yh, table: 0},
			{id: 2, h: 1, v: 1, table: 1},
			{id: 3, h: 1, v: 1, table: 1},
		}
	}

	mcuW, mcuH := 8*e.comps[0].h, 8*e.comps[0].v
	mcuCols := (b.Dx() + mcuW - 1) / mcuW
	mcuRows := (b.Dy() + mcuH - 1) / mcuH
	padW, padH := mcuCols*mcuW, mcuRows*mcuH

	planes := extractPlanes(m, gray, padW, padH)
	if !gray && sub == Subsampling420 {
		planes[1] = halve(planes[1])
		planes[2] = halve(planes[2])
	}

	total := 0
	for _, c := range e.comps {
		total += c.h * c.v
	}
	e.units = make([]unit, 0, mcuCols*mcuRows*total)

	for my := 0; my < mcuRows; my++ {
		for mx := 0; mx < mcuCols; mx++ {
			for ci, c := range e.comps {
				q := quantIndex(c.table)
				for by := 0; by < c.v; by++ {
					for bx := 0; bx < c.h; bx++ {
						x0 := (mx*c.h + bx) * 8
						y0 := (my*c.v + by) * 8
						e.units = append(e.units, unit{comp: ci})
						e.transform(&e.units[len(e.units)-1], planes[ci], x0, y0, q)
					}
				}
			}
		}
	}
}

// transform runs FDCT and quantization for the block at (x0, y0).
func (e *encoder) transform(u *unit, p *plane, x0, y0 int, q quantIndex) {
	var src, dst [blockSize]float64
	for y := 0; y < 8; y++ {
		row := p.pix[(y0+y)*p.w+x0:]
		for x := 0; x < 8; x++ {
			src[y*8+x] = float64(row[x]) - 128
		}
	}
	fdct(&src, &dst)

	for k := 0; k < blockSize; k++ {
		v := math.Round(dst[zigzag[k]] / float64(e.quant[q][k]))
		lo, hi := -1023.0, 1023.0
		if k == 0 {
			// DC differences must stay within the 11-bit category.
			lo = -1024
		}
		if v > hi {
			v = hi
		} else if v < lo {
			v = lo
		}
		u.coef[k] = int32(v)
	}
}

// scan walks every unit and feeds its DC difference and AC run/size symbols
// to s. The same walk drives the statistics pass and the output pass.
func (e *encoder) scan(s symbolSink) {
	prevDC := make([]int32, len(e.comps))
	for i := range e.units {
		u := &e.units[i]
		dc := huffIndex(2 * e.comps[u.comp].table)
		ac := dc + 1

		emitValue(s, dc, 0, u.coef[0]-prevDC[u.comp])
		prevDC[u.comp] = u.coef[0]

		run := int32(0)
		for k := 1; k < blockSize; k++ {
			v := u.coef[k]
			if v == 0 {
				run++
				continue
			}
			for run > 15 {
				s.huff(ac, 0xf0)
				run -= 16
			}
			emitValue(s, ac, run, v)
			run = 0
		}
		if run > 0 {
			s.huff(ac, 0x00)
		}
	}
}

func isGray(m image.Image) bool {
	switch m.(type) {
	case *image.Gray, *image.Gray16:
		return true
	}
	return false
}

// extractPlanes converts m into Y (and Cb, Cr) planes of padW x padH,
// replicating the last row and column into the padding.
func extractPlanes(m image.Image, gray bool, padW, padH int) []*plane {
	b := m.Bounds()
	n := 3
	if gray {
		n = 1
	}
	planes := make([]*plane, n)
	for i := range planes {
		planes[i] = &plane{w: padW, h: padH, pix: make([]uint8, padW*padH)}
	}

	for y := 0; y < padH; y++ {
		sy := b.Min.Y + min(y, b.Dy()-1)
		for x := 0; x < padW; x++ {
			sx := b.Min.X + min(x, b.Dx()-1)
			off := y*padW + x
			if gray {
				planes[0].pix[off] = grayAt(m, sx, sy)
				continue
			}
			r, g, bl := rgbAt(m, sx, sy)
			yy, cb, cr := color.RGBToYCbCr(r, g, bl)
			planes[0].pix[off] = yy
			planes[1].pix[off] = cb
			planes[2].pix[off] = cr
		}
	}

	return planes
}

func grayAt(m image.Image, x, y int) uint8 {
	if g, ok := m.(*image.Gray); ok {
		return g.Pix[g.PixOffset(x, y)]
	}
	return color.GrayModel.Convert(m.At(x, y)).(color.Gray).Y
}

func rgbAt(m image.Image, x, y int) (uint8, uint8, uint8) {
	switch src := m.(type) {
	case *image.NRGBA:
		i := src.PixOffset(x, y)
		return src.Pix[i], src.Pix[i+1], src.Pix[i+2]
	case *image.RGBA:
		i := src.PixOffset(x, y)
		return src.Pix[i], src.Pix[i+1], src.Pix[i+2]
	}
	r, g, b, _ := m.At(x, y).RGBA()
	return uint8(r >> 8), uint8(g >> 8), uint8(b >> 8)
}

// halve averages 2x2 neighbourhoods of an even-sized plane.
func halve(p *plane) *plane {
	out := &plane{w: p.w / 2, h: p.h / 2}
	out.pix = make([]uint8, out.w*out.h)
	for y := 0; y < out.h; y++ {
		r0 := p.pix[2*y*p.w:]
		r1 := p.pix[(2*y+1)*p.w:]
		for x := 0; x < out.w; x++ {
			sum := int(r0[2*x]) + int(r0[2*x+1]) + int(r1[2*x]) + int(r1[2*x+1])
			out.pix[y*out.w+x] = uint8((sum + 2) / 4)
		}
	}
	return out
}
