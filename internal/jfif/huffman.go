package jfif

import (
	"container/heap"
	"sort"
)

// maxCodeLength is the longest codeword a baseline DHT segment can describe.
const maxCodeLength = 16

type huffIndex int

const (
	huffIndexLuminanceDC huffIndex = iota
	huffIndexLuminanceAC
	huffIndexChrominanceDC
	huffIndexChrominanceAC
	nHuffIndex
)

// huffmanSpec specifies a Huffman encoding in DHT form.
type huffmanSpec struct {
	// count[i] is the number of codes of length i+1 bits.
	count [maxCodeLength]byte
	// value[i] is the decoded value of the i'th codeword.
	value []byte
}

// defaultHuffmanSpec holds the Annex K.3 tables. DC tables carry 12
// categories; AC tables carry 162 run/size symbols including EOB and ZRL.
var defaultHuffmanSpec = [nHuffIndex]huffmanSpec{
	// Luminance DC.
	{
		[16]byte{0, 1, 5, 1, 1, 1, 1, 1, 1, 0, 0, 0, 0, 0, 0, 0},
		[]byte{0, 1, 2, 3, 4, 5, 6, 7, 8, 9, 10, 11},
	},
	// Luminance AC.
	{
		[16]byte{0, 2, 1, 3, 3, 2, 4, 3, 5, 5, 4, 4, 0, 0, 1, 125},
		[]byte{
			0x01, 0x02, 0x03, 0x00, 0x04, 0x11, 0x05, 0x12,
			0x21, 0x31, 0x41, 0x06, 0x13, 0x51, 0x61, 0x07,
			0x22, 0x71, 0x14, 0x32, 0x81, 0x91, 0xa1, 0x08,
			0x23, 0x42, 0xb1, 0xc1, 0x15, 0x52, 0xd1, 0xf0,
			0x24, 0x33, 0x62, 0x72, 0x82, 0x09, 0x0a, 0x16,
			0x17, 0x18, 0x19, 0x1a, 0x25, 0x26, 0x27, 0x28,
			0x29, 0x2a, 0x34, 0x35, 0x36, 0x37, 0x38, 0x39,
			0x3a, 0x43, 0x44, 0x45, 0x46, 0x47, 0x48, 0x49,
			0x4a, 0x53, 0x54, 0x55, 0x56, 0x57, 0x58, 0x59,
			0x5a, 0x63, 0x64, 0x65, 0x66, 0x67, 0x68, 0x69,
			0x6a, 0x73, 0x74, 0x75, 0x76, 0x77, 0x78, 0x79,
			0x7a, 0x83, 0x84, 0x85, 0x86, 0x87, 0x88, 0x89,
			0x8a, 0x92, 0x93, 0x94, 0x95, 0x96, 0x97, 0x98,
			0x99, 0x9a, 0xa2, 0xa3, 0xa4, 0xa5, 0xa6, 0xa7,
			0xa8, 0xa9, 0xaa, 0xb2, 0xb3, 0xb4, 0xb5, 0xb6,
			0xb7, 0xb8, 0xb9, 0xba, 0xc2, 0xc3, 0xc4, 0xc5,
			0xc6, 0xc7, 0xc8, 0xc9, 0xca, 0xd2, 0xd3, 0xd4,
			0xd5, 0xd6, 0xd7, 0xd8, 0xd9, 0xda, 0xe1, 0xe2,
			0xe3, 0xe4, 0xe5, 0xe6, 0xe7, 0xe8, 0xe9, 0xea,
			0xf1, 0xf2, 0xf3, 0xf4, 0xf5, 0xf6, 0xf7, 0xf8,
			0xf9, 0xfa,
		},
	},
	// Chrominance DC.
	{
		[16]byte{0, 3, 1, 1, 1, 1, 1, 1, 1, 1, 1, 0, 0, 0, 0, 0},
		[]byte{0, 1, 2, 3, 4, 5, 6, 7, 8, 9, 10, 11},
	},
	// Chrominance AC.
	{
		[16]byte{0, 2, 1, 2, 4, 4, 3, 4, 7, 5, 4, 4, 0, 1, 2, 119},
		[]byte{
			0x00, 0x01, 0x02, 0x03, 0x11, 0x04, 0x05, 0x21,
			0x31, 0x06, 0x12, 0x41, 0x51, 0x07, 0x61, 0x71,
			0x13, 0x22, 0x32, 0x81, 0x08, 0x14, 0x42, 0x91,
			0xa1, 0xb1, 0xc1, 0x09, 0x23, 0x33, 0x52, 0xf0,
			0x15, 0x62, 0x72, 0xd1, 0x0a, 0x16, 0x24, 0x34,
			0xe1, 0x25, 0xf1, 0x17, 0x18, 0x19, 0x1a, 0x26,
			0x27, 0x28, 0x29, 0x2a, 0x35, 0x36, 0x37, 0x38,
			0x39, 0x3a, 0x43, 0x44, 0x45, 0x46, 0x47, 0x48,
			0x49, 0x4a, 0x53, 0x54, 0x55, 0x56, 0x57, 0x58,
			0x59, 0x5a, 0x63, 0x64, 0x65, 0x66, 0x67, 0x68,
			0x69, 0x6a, 0x73, 0x74, 0x75, 0x76, 0x77, 0x78,
			0x79, 0x7a, 0x82, 0x83, 0x84, 0x85, 0x86, 0x87,
			0x88, 0x89, 0x8a, 0x92, 0x93, 0x94, 0x95, 0x96,
			0x97, 0x98, 0x99, 0x9a, 0xa2, 0xa3, 0xa4, 0xa5,
			0xa6, 0xa7, 0xa8, 0xa9, 0xaa, 0xb2, 0xb3, 0xb4,
			0xb5, 0xb6, 0xb7, 0xb8, 0xb9, 0xba, 0xc2, 0xc3,
			0xc4, 0xc5, 0xc6, 0xc7, 0xc8, 0xc9, 0xca, 0xd2,
			0xd3, 0xd4, 0xd5, 0xd6, 0xd7, 0xd8, 0xd9, 0xda,
			0xe2, 0xe3, 0xe4, 0xe5, 0xe6, 0xe7, 0xe8, 0xe9,
			0xea, 0xf2, 0xf3, 0xf4, 0xf5, 0xf6, 0xf7, 0xf8,
			0xf9, 0xfa,
		},
	},
}

// huffmanLUT maps a symbol to a uint32 whose 8 most significant bits hold the
// codeword size and whose 24 least significant bits hold the codeword.
type huffmanLUT [256]uint32

func (h *huffmanLUT) init(s huffmanSpec) {
	*h = huffmanLUT{}
	code, k := uint32(0), 0
	for i := 0; i < len(s.count); i++ {
		nBits := uint32(i+1) << 24
		for j := byte(0); j < s.count[i]; j++ {
			h[s.value[k]] = nBits | code
			code++
			k++
		}
		code <<= 1
	}
}

// huffNode is a subtree in the greedy merge. symbols lists every leaf below it.
type huffNode struct {
	weight  int
	order   int
	symbols []int
}

type nodeHeap []*huffNode

func (h nodeHeap) Len() int { return len(h) }
func (h nodeHeap) Less(i, j int) bool {
	if h[i].weight != h[j].weight {
		return h[i].weight < h[j].weight
	}
	return h[i].order < h[j].order
}
func (h nodeHeap) Swap(i, j int) { h[i], h[j] = h[j], h[i] }
func (h *nodeHeap) Push(x any)   { *h = append(*h, x.(*huffNode)) }
func (h *nodeHeap) Pop() any {
	old := *h
	n := old[len(old)-1]
	*h = old[:len(old)-1]
	return n
}

// huffmanLengths returns unrestricted Huffman code lengths for freq. Symbols
// with zero frequency get length 0. A lone symbol gets length 1.
func huffmanLengths(freq []int) []int {
	lengths := make([]int, len(freq))
	h := make(nodeHeap, 0, len(freq))
	// Among equal weights, higher symbols merge first and end up deeper.
	for s, f := range freq {
		if f > 0 {
			h = append(h, &huffNode{weight: f, order: len(freq) - s, symbols: []int{s}})
		}
	}
	if len(h) == 0 {
		return lengths
	}
	if len(h) == 1 {
		lengths[h[0].symbols[0]] = 1
		return lengths
	}

	heap.Init(&h)
	order := len(freq) + 1
	for h.Len() > 1 {
		a := heap.Pop(&h).(*huffNode)
		b := heap.Pop(&h).(*huffNode)
		for _, s := range a.symbols {
			lengths[s]++
		}
		for _, s := range b.symbols {
			lengths[s]++
		}
		merged := make([]int, 0, len(a.symbols)+len(b.symbols))
		merged = append(merged, a.symbols...)
		merged = append(merged, b.symbols...)
		heap.Push(&h, &huffNode{weight: a.weight + b.weight, order: order, symbols: merged})
		order++
	}

	return lengths
}

// limitLengths folds a code-length histogram so no code exceeds limit bits
// (Annex K.2, Figure K.3). bits[i] is the number of codes of length i.
func limitLengths(bits []int, limit int) {
	for i := len(bits) - 1; i > limit; i-- {
		for bits[i] > 0 {
			j := i - 2
			for bits[j] == 0 {
				j--
			}
			bits[i] -= 2
			bits[i-1]++
			bits[j+1] += 2
			bits[j]--
		}
	}
}

// optimalSpec builds a length-limited Huffman table for the observed symbol
// frequencies. A reserved pseudo-symbol of weight 1 keeps the all-ones
// codeword out of the table, which JPEG forbids.
func optimalSpec(freq *[256]int) huffmanSpec {
	weights := make([]int, 257)
	copy(weights, freq[:])
	weights[256] = 1

	lengths := huffmanLengths(weights)
	longest := 0
	for _, l := range lengths {
		if l > longest {
			longest = l
		}
	}
	if longest < maxCodeLength {
		longest = maxCodeLength
	}

	bits := make([]int, longest+1)
	for _, l := range lengths {
		if l > 0 {
			bits[l]++
		}
	}
	limitLengths(bits, maxCodeLength)

	// Drop the reserved codeword from the longest populated length.
	for i := maxCodeLength; i > 0; i-- {
		if bits[i] > 0 {
			bits[i]--
			break
		}
	}

	symbols := make([]int, 0, 256)
	for s := 0; s < 256; s++ {
		if lengths[s] > 0 {
			symbols = append(symbols, s)
		}
	}
	sort.SliceStable(symbols, func(i, j int) bool {
		a, b := symbols[i], symbols[j]
		if lengths[a] != lengths[b] {
			return lengths[a] < lengths[b]
		}
		return weights[a] > weights[b]
	})

	var spec huffmanSpec
	for i := 1; i <= maxCodeLength; i++ {
		spec.count[i-1] = byte(bits[i])
	}
	spec.value = make([]byte, len(symbols))
	for i, s := range symbols {
		spec.value[i] = byte(s)
	}

	return spec
}

// specLengths expands a spec into per-symbol code lengths.
func specLengths(s huffmanSpec) [256]int {
	var lengths [256]int
	k := 0
	for i, n := range s.count {
		for j := byte(0); j < n; j++ {
			lengths[s.value[k]] = i + 1
			k++
		}
	}
	return lengths
}
