package jfif

import "math"

// dctBasis[u][x] is C(u)/2 * cos((2x+1)uπ/16), so that a row pass followed by
// a column pass yields the JPEG normalised 2-D DCT-II.
var dctBasis [8][8]float64

func init() {
	for u := 0; u < 8; u++ {
		c := 0.5
		if u == 0 {
			c = 0.5 / math.Sqrt2
		}
		for x := 0; x < 8; x++ {
			dctBasis[u][x] = c * math.Cos(float64(2*x+1)*float64(u)*math.Pi/16)
		}
	}
}

// fdct computes the forward DCT of a level-shifted block. Both src and dst
// are in natural order.
func fdct(src, dst *[blockSize]float64) {
	var tmp [blockSize]float64
	for y := 0; y < 8; y++ {
		row := src[y*8 : y*8+8]
		for u := 0; u < 8; u++ {
			var s float64
			for x := 0; x < 8; x++ {
				s += row[x] * dctBasis[u][x]
			}
			tmp[y*8+u] = s
		}
	}

	for v := 0; v < 8; v++ {
		for u := 0; u < 8; u++ {
			var s float64
			for y := 0; y < 8; y++ {
				s += dctBasis[v][y] * tmp[y*8+u]
			}
			dst[v*8+u] = s
		}
	}
}
