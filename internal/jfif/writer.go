package jfif

import (
	"bufio"
	"math/bits"
)

// JPEG marker codes.
const (
	markerSOF0 = 0xc0
	markerDHT  = 0xc4
	markerSOI  = 0xd8
	markerEOI  = 0xd9
	markerSOS  = 0xda
	markerDQT  = 0xdb
	markerAPP0 = 0xe0
)

// bitWriter packs entropy-coded bits into bytes with 0xff stuffing. All
// writes after the first error become no-ops.
type bitWriter struct {
	w   *bufio.Writer
	err error
	// buf is a scratch buffer.
	buf [16]byte
	// bits and nBits are accumulated bits not yet written.
	bits, nBits uint32
	lut         [nHuffIndex]*huffmanLUT
}

func (e *bitWriter) write(p []byte) {
	if e.err != nil {
		return
	}
	_, e.err = e.w.Write(p)
}

func (e *bitWriter) writeByte(b byte) {
	if e.err != nil {
		return
	}
	e.err = e.w.WriteByte(b)
}

func (e *bitWriter) flush() {
	if e.err != nil {
		return
	}
	e.err = e.w.Flush()
}

// emit emits the least significant nBits bits of bits to the bit-stream.
// The precondition is bits < 1<<nBits && nBits <= 16.
func (e *bitWriter) emit(bits, nBits uint32) {
	nBits += e.nBits
	bits <<= 32 - nBits
	bits |= e.bits
	for nBits >= 8 {
		b := uint8(bits >> 24)
		e.writeByte(b)
		if b == 0xff {
			e.writeByte(0x00)
		}
		bits <<= 8
		nBits -= 8
	}
	e.bits, e.nBits = bits, nBits
}

// huff implements symbolSink.
func (e *bitWriter) huff(h huffIndex, sym uint8) {
	x := e.lut[h][sym]
	e.emit(x&(1<<24-1), x>>24)
}

// raw implements symbolSink.
func (e *bitWriter) raw(v, n uint32) {
	e.emit(v, n)
}

// padScan fills the last partial byte with one bits.
func (e *bitWriter) padScan() {
	e.emit(0x7f, 7)
}

func (e *bitWriter) writeMarkerHeader(marker uint8, markerlen int) {
	e.buf[0] = 0xff
	e.buf[1] = marker
	e.buf[2] = uint8(markerlen >> 8)
	e.buf[3] = uint8(markerlen & 0xff)
	e.write(e.buf[:4])
}

func (e *bitWriter) writeMarker(marker uint8) {
	e.buf[0] = 0xff
	e.buf[1] = marker
	e.write(e.buf[:2])
}

// writeAPP0 writes a JFIF 1.01 header with a 1:1 pixel aspect ratio.
func (e *bitWriter) writeAPP0() {
	e.writeMarkerHeader(markerAPP0, 16)
	e.write([]byte{'J', 'F', 'I', 'F', 0, 1, 1, 0, 0, 1, 0, 1, 0, 0})
}

func (e *bitWriter) writeDQT(quant *[nQuantIndex][blockSize]byte, n int) {
	e.writeMarkerHeader(markerDQT, 2+n*(1+blockSize))
	for i := 0; i < n; i++ {
		e.writeByte(uint8(i))
		e.write(quant[i][:])
	}
}

func (e *bitWriter) writeSOF(width, height int, comps []component) {
	e.writeMarkerHeader(markerSOF0, 8+3*len(comps))
	e.buf[0] = 8 // 8-bit color.
	e.buf[1] = uint8(height >> 8)
	e.buf[2] = uint8(height & 0xff)
	e.buf[3] = uint8(width >> 8)
	e.buf[4] = uint8(width & 0xff)
	e.buf[5] = uint8(len(comps))
	e.write(e.buf[:6])
	for _, c := range comps {
		e.buf[0] = c.id
		e.buf[1] = uint8(c.h<<4 | c.v)
		e.buf[2] = uint8(c.table)
		e.write(e.buf[:3])
	}
}

func (e *bitWriter) writeDHT(specs []huffmanSpec) {
	markerlen := 2
	for _, s := range specs {
		markerlen += 1 + 16 + len(s.value)
	}
	e.writeMarkerHeader(markerDHT, markerlen)
	for i, s := range specs {
		// Table i is class i%2 (0 = DC, 1 = AC) with destination i/2.
		e.writeByte(uint8((i%2)<<4 | i/2))
		e.write(s.count[:])
		e.write(s.value)
	}
}

func (e *bitWriter) writeSOSHeader(comps []component) {
	e.writeMarkerHeader(markerSOS, 6+2*len(comps))
	e.writeByte(uint8(len(comps)))
	for _, c := range comps {
		e.writeByte(c.id)
		e.writeByte(uint8(c.table<<4 | c.table))
	}
	// Spectral selection 0..63, no successive approximation.
	e.write([]byte{0x00, 0x3f, 0x00})
}

// symbolSink receives the entropy-coding symbol stream of a scan.
type symbolSink interface {
	huff(h huffIndex, sym uint8)
	raw(v, n uint32)
}

// symbolCounter tallies symbol frequencies per table and ignores raw bits.
type symbolCounter struct {
	freq [nHuffIndex][256]int
}

func (c *symbolCounter) huff(h huffIndex, sym uint8) { c.freq[h][sym]++ }
func (c *symbolCounter) raw(uint32, uint32)          {}

// emitValue emits a run/size symbol followed by the value's magnitude bits.
func emitValue(s symbolSink, h huffIndex, run, value int32) {
	a, b := value, value
	if a < 0 {
		a, b = -value, value-1
	}
	n := uint32(bits.Len32(uint32(a)))
	s.huff(h, uint8(run<<4|int32(n)))
	if n > 0 {
		s.raw(uint32(b)&(1<<n-1), n)
	}
}
